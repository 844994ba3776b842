// Package authflow drives the out-of-band oauth grant exchange and keeps
// the per-tenant authorization state. A human visits the consent URL and
// comes back with a one-time code through the chat command surface, so
// the flow is re-entrant and cheap to query on every scheduler tick.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/guilherme-santos/calremind"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

type State string

const (
	StateUnauthorized State = "unauthorized"
	StatePendingGrant State = "pending_grant"
	StateAuthorized   State = "authorized"
)

// ConfigFromCredentials parses an installed-app credentials JSON blob into
// the oauth config used by the flow, requesting read-only calendar access.
func ConfigFromCredentials(credJSON []byte) (*oauth2.Config, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("authflow: parsing credentials file: %w", err)
	}
	return oauthCfg, nil
}

type Flow struct {
	oauthCfg *oauth2.Config
	store    calremind.CredentialStore
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[calremind.Tenant]string
	revoked map[calremind.Tenant]bool
}

func New(oauthCfg *oauth2.Config, store calremind.CredentialStore, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		oauthCfg: oauthCfg,
		store:    store,
		logger:   logger,
		pending:  make(map[calremind.Tenant]string),
		revoked:  make(map[calremind.Tenant]bool),
	}
}

// BeginGrant issues a consent URL for the tenant and marks the grant as
// pending. Calling it again replaces the previous pending grant.
func (f *Flow) BeginGrant(_ context.Context, tenant calremind.Tenant) (string, error) {
	state := "calremind-" + uuid.NewString()

	f.mu.Lock()
	f.pending[tenant] = state
	f.mu.Unlock()

	url := f.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	f.logger.Info("consent URL issued", "tenant", tenant)
	return url, nil
}

// CompleteGrant exchanges the one-time code for a token and persists it.
// The credential is saved before the state transition: a persistence
// failure keeps the grant pending and is returned to the caller.
func (f *Flow) CompleteGrant(ctx context.Context, tenant calremind.Tenant, code string) error {
	token, err := f.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("authflow: exchanging code: %w", err)
	}

	if err := f.store.Save(ctx, tenant, token); err != nil {
		return fmt.Errorf("authflow: persisting credential: %w", err)
	}

	f.mu.Lock()
	delete(f.pending, tenant)
	delete(f.revoked, tenant)
	f.mu.Unlock()

	f.logger.Info("tenant authorized, credential persisted", "tenant", tenant)
	return nil
}

// State reports where the tenant sits in the grant lifecycle. Pending
// grants and revocations live in memory only; a restart mid-flow starts
// over at login.
func (f *Flow) State(ctx context.Context, tenant calremind.Tenant) State {
	f.mu.Lock()
	_, pending := f.pending[tenant]
	revoked := f.revoked[tenant]
	f.mu.Unlock()
	if pending {
		return StatePendingGrant
	}
	if revoked {
		return StateUnauthorized
	}

	_, err := f.store.Load(ctx, tenant)
	if err != nil {
		return StateUnauthorized
	}
	return StateAuthorized
}

func (f *Flow) IsAuthorized(ctx context.Context, tenant calremind.Tenant) bool {
	return f.State(ctx, tenant) == StateAuthorized
}

// Token returns a credential valid for API calls, renewing through the
// refresh grant when the stored access token expired. A renewed token is
// persisted before being handed out; a rejected refresh grant surfaces
// as ErrNotAuthorized and drops the tenant back to unauthorized.
func (f *Flow) Token(ctx context.Context, tenant calremind.Tenant) (*oauth2.Token, error) {
	stored, err := f.store.Load(ctx, tenant)
	if errors.Is(err, calremind.ErrCredentialNotFound) {
		return nil, calremind.ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("authflow: loading credential: %w", err)
	}

	if stored.Valid() {
		return stored, nil
	}

	renewed, err := f.oauthCfg.TokenSource(ctx, stored).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// The refresh grant itself is dead; the tenant has to link again.
			f.mu.Lock()
			f.revoked[tenant] = true
			f.mu.Unlock()
			f.logger.Warn("refresh grant rejected by provider",
				"tenant", tenant,
				"error", retrieveErr.Error(),
			)
			return nil, fmt.Errorf("authflow: refresh grant rejected: %w", calremind.ErrNotAuthorized)
		}
		return nil, fmt.Errorf("authflow: renewing token: %w", err)
	}

	// The provider may omit the refresh token on renewal; keep the one
	// we already have so the next renewal still works.
	if renewed.RefreshToken == "" {
		renewed.RefreshToken = stored.RefreshToken
	}

	if err := f.store.Save(ctx, tenant, renewed); err != nil {
		// The renewed token is still usable for this tick; the next tick
		// renews again from the stored credential.
		f.logger.Warn("unable to persist renewed credential",
			"tenant", tenant,
			"error", err,
		)
	} else {
		f.logger.Info("credential renewed", "tenant", tenant)
	}
	return renewed, nil
}
