package sqlite

import (
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
)

type Credential struct {
	TenantID string `db:"tenant_id"`
	Provider string `db:"provider"`
	Token    string `db:"token"`
}

func (c Credential) Convert() (*oauth2.Token, error) {
	var tok oauth2.Token
	err := json.Unmarshal([]byte(c.Token), &tok)
	if err != nil {
		return nil, fmt.Errorf("sqlite: decoding token for %s/%s: %w", c.Provider, c.TenantID, err)
	}
	return &tok, nil
}
