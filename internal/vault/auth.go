package vault

import (
	"time"

	dserrors "github.com/systmms/kubevault/internal/errors"
)

type authMethod int

const (
	authClientToken authMethod = iota
	authGitHub
	authAppRole
)

// credentials is a client token together with its expiry. A zero expiry means the
// token never expires.
type credentials struct {
	token   string
	expires time.Time
}

// authBackend selects the login method and tracks the current credentials.
type authBackend struct {
	method authMethod
	config Config
	creds  *credentials

	// now is swapped in tests to control expiry.
	now func() time.Time
}

func newAuthBackend(cfg Config) (*authBackend, error) {
	b := &authBackend{config: cfg, now: time.Now}
	switch {
	case cfg.Token != "":
		b.method = authClientToken
	case cfg.GitHubToken != "":
		b.method = authGitHub
	case cfg.RoleID != "" && cfg.SecretID != "":
		b.method = authAppRole
	default:
		return nil, dserrors.ConfigError{
			Field:      "auth",
			Message:    "no authentication method configured",
			Suggestion: "Provide a client token, a GitHub token, or an AppRole role and secret ID",
		}
	}
	return b, nil
}

// loginPath returns the auth endpoint for methods that log in. Client tokens are
// used directly and never log in.
func (b *authBackend) loginPath() string {
	switch b.method {
	case authGitHub:
		return "/v1/auth/github/login"
	case authAppRole:
		return "/v1/auth/approle/login"
	default:
		return ""
	}
}

func (b *authBackend) loginPayload() map[string]string {
	switch b.method {
	case authGitHub:
		return map[string]string{"token": b.config.GitHubToken}
	case authAppRole:
		return map[string]string{
			"role_id":   b.config.RoleID,
			"secret_id": b.config.SecretID,
		}
	default:
		return nil
	}
}

func (b *authBackend) canExpire() bool {
	return b.method != authClientToken
}

// expired reports whether a login (or the initial token install) is needed before
// the next request.
func (b *authBackend) expired() bool {
	if b.creds == nil {
		return true
	}
	if !b.canExpire() {
		return false
	}
	if b.creds.expires.IsZero() {
		return false
	}
	return b.creds.expires.Before(b.now())
}

// setCredentials installs a freshly obtained token. A positive lease duration
// sets the expiry; zero or negative leases never expire.
func (b *authBackend) setCredentials(token string, leaseSeconds int64) {
	creds := &credentials{token: token}
	if leaseSeconds > 0 {
		creds.expires = b.now().Add(time.Duration(leaseSeconds) * time.Second)
	}
	b.creds = creds
}

func (b *authBackend) clientToken() string {
	if b.creds == nil {
		return ""
	}
	return b.creds.token
}
