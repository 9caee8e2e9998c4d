package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/remote"
)

func TestLoginFailuresAreGeneric(t *testing.T) {
	s, _, _ := newTestStore(t)

	// Wrong username and wrong password yield the same error.
	assert.ErrorIs(t, s.LoginAdmin("nobody", defaultAdminCredentials.Password), ErrInvalidCredentials)
	assert.ErrorIs(t, s.LoginAdmin(defaultAdminCredentials.Username, "wrong"), ErrInvalidCredentials)
	assert.False(t, s.IsAdmin())
}

func TestLoginEmptyUsernameNeverMatches(t *testing.T) {
	// Before any settings snapshot arrives the stored credentials are zero
	// values; empty input must not equal them.
	s := New(remote.NewMemoryDriver(), localstore.NewMemStore())

	assert.ErrorIs(t, s.LoginAdmin("", ""), ErrInvalidCredentials)
	assert.False(t, s.IsAdmin())
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t)

	require.NoError(t, s.LoginAdmin(defaultAdminCredentials.Username, defaultAdminCredentials.Password))
	assert.True(t, s.IsAdmin())

	s.LogoutAdmin()
	assert.False(t, s.IsAdmin())
}

func TestAdminSessionSurvivesRestart(t *testing.T) {
	driver := remote.NewMemoryDriver()
	local := localstore.NewMemStore()

	s := New(driver, local)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.LoginAdmin(defaultAdminCredentials.Username, defaultAdminCredentials.Password))
	s.Close()

	s2 := New(driver, local)
	require.NoError(t, s2.Start(context.Background()))
	t.Cleanup(s2.Close)
	assert.True(t, s2.IsAdmin())
}

func TestUpdateAdminCredentialsTakesEffect(t *testing.T) {
	s, _, _ := newTestStore(t)

	require.NoError(t, s.UpdateAdminCredentials(context.Background(), "owner", "s3cret"))

	// The old pair stops working, the new one logs in.
	assert.ErrorIs(t, s.LoginAdmin(defaultAdminCredentials.Username, defaultAdminCredentials.Password), ErrInvalidCredentials)
	require.NoError(t, s.LoginAdmin("owner", "s3cret"))
}

func TestUpdateAdminCredentialsValidation(t *testing.T) {
	s, _, _ := newTestStore(t)

	err := s.UpdateAdminCredentials(context.Background(), "", "pw")
	require.True(t, IsValidation(err))

	err = s.UpdateAdminCredentials(context.Background(), "user", "")
	require.True(t, IsValidation(err))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
}

func TestUpdateCredentialsCreatesMissingSingleton(t *testing.T) {
	// A store whose settings were never seeded: wipe the learned ids by
	// starting against a pre-populated settings collection lacking "admin".
	driver := remote.NewMemoryDriver()
	_, err := driver.Create(context.Background(), remote.Settings, map[string]any{"key": "payment", "text": "pay"})
	require.NoError(t, err)

	s := New(driver, localstore.NewMemStore())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	require.NoError(t, s.UpdateAdminCredentials(context.Background(), "root", "pw"))
	require.NoError(t, s.LoginAdmin("root", "pw"))
}
