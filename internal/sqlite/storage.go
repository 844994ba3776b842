package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/guilherme-santos/calremind"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

const DriverName = "sqlite3"

// Storage persists one oauth token per (tenant, provider) pair. Load and
// Save are single statements, so a concurrent Load never observes a
// partial write.
type Storage struct {
	db       *sqlx.DB
	provider string
}

func NewStorage(db *sql.DB, provider string) *Storage {
	s := &Storage{
		db:       sqlx.NewDb(db, DriverName),
		provider: provider,
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) Load(ctx context.Context, tenant calremind.Tenant) (*oauth2.Token, error) {
	var cred Credential

	err := s.db.GetContext(ctx, &cred, `
		SELECT tenant_id, provider, token
		FROM credentials
		WHERE tenant_id = ? AND provider = ?
	`, tenant.String(), s.provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, calremind.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return cred.Convert()
}

func (s Storage) Save(ctx context.Context, tenant calremind.Tenant, token *oauth2.Token) error {
	blob, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("sqlite: encoding token: %w", err)
	}
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (tenant_id, provider, token, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id, provider) DO UPDATE SET token=?, updated_at=?;
	`, tenant.String(), s.provider, string(blob), now, string(blob), now)
	return err
}
