package service

import (
	"testing"
	"time"

	"sygil/config"

	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "sygil-test",
		},
	}
}

func TestRegisterWithoutUsername(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(testConfig(), env.userRepo)

	// Username is optional at signup; two accounts that skip it must not
	// collide on the unique index.
	first, access, refresh, err := svc.Register("one@example.com", "", "hunter22", "User")
	require.NoError(t, err)
	require.Nil(t, first.Username)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	second, _, _, err := svc.Register("two@example.com", "", "hunter22", "User")
	require.NoError(t, err)
	require.Nil(t, second.Username)
}

func TestRegisterUsernameTaken(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(testConfig(), env.userRepo)

	u, _, _, err := svc.Register("one@example.com", "casey", "hunter22", "User")
	require.NoError(t, err)
	require.Equal(t, "casey", u.Handle())

	_, _, _, err = svc.Register("two@example.com", "casey", "hunter22", "User")
	require.ErrorIs(t, err, ErrUsernameExists)
}
