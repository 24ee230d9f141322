package account

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, s.Ensure())
	return s
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpdateUserModel(&UserRecord{
		Username:    "alice",
		Password:    "alicepass",
		Type:        TypeLocal,
		DisplayName: "Alice",
		Roles:       []string{"admin"},
	}))

	rec, err := s.GetUserModel("alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Alice", rec.DisplayName)
	assert.Equal(t, []string{"admin"}, rec.Roles)
	assert.False(t, rec.CreatedAt.IsZero())

	missing, err := s.GetUserModel("nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// A second store on the same file sees the persisted record.
	s2 := NewFileStore(s.Path())
	rec, err = s2.GetUserModel("alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "alice", rec.Username)
}

func TestUpdateRequiresUsername(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.UpdateUserModel(&UserRecord{}))
	assert.Error(t, s.UpdateUserModel(nil))
}

func TestIsLocalAccount(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpdateUserModel(&UserRecord{Username: "local", Password: "pw", Type: TypeLocal}))
	require.NoError(t, s.UpdateUserModel(&UserRecord{Username: "ext", Password: ExternalSentinel, Type: TypeExternal}))

	assert.True(t, s.IsLocalAccount("local"))
	assert.False(t, s.IsLocalAccount("ext"))
	assert.False(t, s.IsLocalAccount("nobody"))
}

func TestAuthenticateLocal(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateUserModel(&UserRecord{Username: "bob", Password: "bobpass", Type: TypeLocal}))

	rec, err := s.Authenticate("bob", "bobpass")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.Cookie, "cookie assigned on first successful login")

	// The cookie is persisted and stable across logins.
	again, err := s.Authenticate("bob", "bobpass")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, rec.Cookie, again.Cookie)

	rec, err = s.Authenticate("bob", "wrong")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = s.Authenticate("nobody", "pw")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestAuthenticateRefusesExternalRecords(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateUserModel(&UserRecord{
		Username: "ext",
		Password: ExternalSentinel,
		Type:     TypeExternal,
	}))

	rec, err := s.Authenticate("ext", ExternalSentinel)
	require.NoError(t, err)
	assert.Nil(t, rec, "the sentinel must never verify as a password")
}

func TestLocalPasswordMaybeHashed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateUserModel(&UserRecord{
		Username: "carol",
		Password: "{SHA}W6ph5Mm5Pz8GgiULbPgzG37mj9g=", // "password"
		Type:     TypeLocal,
	}))

	rec, err := s.Authenticate("carol", "password")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestEnsureCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "users.json")
	s := NewFileStore(path)
	require.NoError(t, s.Ensure())

	_, err := os.Stat(path)
	assert.NoError(t, err)

	names, err := s.Usernames()
	require.NoError(t, err)
	assert.Empty(t, names)
}
