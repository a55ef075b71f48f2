package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthBackend_MethodPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config Config
		want   authMethod
	}{
		{
			name:   "client token wins over everything",
			config: Config{Token: "t", GitHubToken: "gh", RoleID: "r", SecretID: "s"},
			want:   authClientToken,
		},
		{
			name:   "github before approle",
			config: Config{GitHubToken: "gh", RoleID: "r", SecretID: "s"},
			want:   authGitHub,
		},
		{
			name:   "approle needs both ids",
			config: Config{RoleID: "r", SecretID: "s"},
			want:   authAppRole,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := newAuthBackend(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.method)
		})
	}
}

func TestNewAuthBackend_RejectsPartialAppRole(t *testing.T) {
	t.Parallel()

	_, err := newAuthBackend(Config{RoleID: "r"})
	assert.Error(t, err)
}

func TestAuthBackend_LoginPaths(t *testing.T) {
	t.Parallel()

	github, err := newAuthBackend(Config{GitHubToken: "gh"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/auth/github/login", github.loginPath())
	assert.Equal(t, map[string]string{"token": "gh"}, github.loginPayload())

	approle, err := newAuthBackend(Config{RoleID: "r", SecretID: "s"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/auth/approle/login", approle.loginPath())
	assert.Equal(t, map[string]string{"role_id": "r", "secret_id": "s"}, approle.loginPayload())

	token, err := newAuthBackend(Config{Token: "t"})
	require.NoError(t, err)
	assert.Empty(t, token.loginPath())
	assert.Nil(t, token.loginPayload())
}

func TestAuthBackend_Expiry(t *testing.T) {
	t.Parallel()

	b, err := newAuthBackend(Config{GitHubToken: "gh"})
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	assert.True(t, b.expired(), "no credentials means a login is needed")

	b.setCredentials("tok", 60)
	assert.False(t, b.expired())
	assert.Equal(t, "tok", b.clientToken())

	now = now.Add(2 * time.Minute)
	assert.True(t, b.expired())
}

func TestAuthBackend_ZeroLeaseNeverExpires(t *testing.T) {
	t.Parallel()

	b, err := newAuthBackend(Config{GitHubToken: "gh"})
	require.NoError(t, err)

	b.setCredentials("tok", 0)
	assert.False(t, b.expired())
}

func TestAuthBackend_ClientTokenNeverExpires(t *testing.T) {
	t.Parallel()

	b, err := newAuthBackend(Config{Token: "t"})
	require.NoError(t, err)
	assert.False(t, b.canExpire())

	b.setCredentials("t", 0)
	assert.False(t, b.expired())
}
