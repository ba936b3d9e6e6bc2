package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshare/examshare-client/internal/model"
)

func TestSession_EmptyStore(t *testing.T) {
	ctx := context.Background()
	s := NewSession(NewMemoryStore(), "")

	access, err := s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)

	creds, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())
}

func TestSession_SaveReplaceClear(t *testing.T) {
	ctx := context.Background()
	s := NewSession(NewMemoryStore(), "")

	require.NoError(t, s.Save(ctx, model.Credentials{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, s.ReplaceAccess(ctx, "A2"))

	creds, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Credentials{AccessToken: "A2", RefreshToken: "R1"}, creds)

	require.NoError(t, s.Clear(ctx))
	creds, err = s.Credentials(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())
}

func TestSession_SaveRequiresBothTokens(t *testing.T) {
	s := NewSession(NewMemoryStore(), "")
	require.Error(t, s.Save(context.Background(), model.Credentials{AccessToken: "A1"}))
	require.Error(t, s.ReplaceAccess(context.Background(), ""))
}

func TestSession_Namespace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	work := NewSession(store, "work")
	home := NewSession(store, "")

	require.NoError(t, work.Save(ctx, model.Credentials{AccessToken: "W", RefreshToken: "WR"}))

	raw, err := store.Get(ctx, "work:"+model.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "W", raw)

	access, err := home.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)
}

type failingStore struct{ model.CredentialStore }

func (failingStore) Get(context.Context, string) (string, error) { return "", errors.New("boom") }
func (failingStore) Remove(context.Context, string) error        { return errors.New("boom") }

func TestSession_StoreErrors(t *testing.T) {
	s := NewSession(failingStore{}, "")

	_, err := s.AccessToken(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)

	err = s.Clear(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear credentials")
}
