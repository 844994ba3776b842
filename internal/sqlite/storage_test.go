package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/guilherme-santos/calremind"
	"github.com/guilherme-santos/calremind/internal/sqlite"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	db, err := sql.Open(sqlite.DriverName, filepath.Join(t.TempDir(), "calremind.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlite.NewStorage(db, "google")
}

func TestStorage_LoadNotFound(t *testing.T) {
	storage := newStorage(t)

	_, err := storage.Load(context.Background(), "guild-1")
	assert.ErrorIs(t, err, calremind.ErrCredentialNotFound)
}

func TestStorage_SaveLoad(t *testing.T) {
	storage := newStorage(t)
	ctx := context.Background()

	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, storage.Save(ctx, "guild-1", tok))

	got, err := storage.Load(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, tok.AccessToken, got.AccessToken)
	assert.Equal(t, tok.RefreshToken, got.RefreshToken)
	assert.WithinDuration(t, tok.Expiry, got.Expiry, time.Second)
}

func TestStorage_SaveOverwrites(t *testing.T) {
	storage := newStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, "guild-1", &oauth2.Token{AccessToken: "old"}))
	require.NoError(t, storage.Save(ctx, "guild-1", &oauth2.Token{AccessToken: "new"}))

	got, err := storage.Load(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
}

func TestStorage_TenantsAreIsolated(t *testing.T) {
	storage := newStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, "guild-1", &oauth2.Token{AccessToken: "a"}))

	_, err := storage.Load(ctx, "guild-2")
	assert.ErrorIs(t, err, calremind.ErrCredentialNotFound)
}
