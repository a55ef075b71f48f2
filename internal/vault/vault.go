// Package vault implements the key/value store client: a thin HTTP wrapper around
// the Vault KV v2 API with an authentication backend that logs in and refreshes
// client tokens as needed.
package vault

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"strings"
	"time"

	dserrors "github.com/systmms/kubevault/internal/errors"
)

const DefaultTimeout = 30 * time.Second

// KV is the store capability consumed by verification and generation. FetchAll
// returns every key/value pair stored at a path; ListKeys returns the child key
// names under a path.
type KV interface {
	FetchAll(ctx context.Context, engine, path string) (map[string]string, error)
	ListKeys(ctx context.Context, engine, path string) ([]string, error)
}

// Config holds everything the client needs. It is built explicitly (usually via
// ConfigFromEnv) and passed to NewClient rather than read from ambient state.
type Config struct {
	Address   string
	Namespace string

	// Exactly one auth method is used, in this precedence order.
	Token       string // pre-obtained client token, never refreshed
	GitHubToken string // exchanged for a client token via the github auth method
	RoleID      string // approle login, together with SecretID
	SecretID    string

	TLSSkip bool
	Timeout time.Duration
}

// ConfigFromEnv builds a Config from the process environment.
//
// VAULT_ADDR is required. Authentication comes from VAULT_TOKEN,
// VAULT_GITHUB_TOKEN, or VAULT_ROLE_TOKEN + VAULT_SECRET_TOKEN; when none is set,
// a token previously stored with 'kubevault login' is used.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Address:   os.Getenv("VAULT_ADDR"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Timeout:   DefaultTimeout,
	}
	if cfg.Address == "" {
		return Config{}, dserrors.ConfigError{
			Field:      "address",
			Message:    "Vault address is required",
			Suggestion: "Set the VAULT_ADDR environment variable",
		}
	}
	if skip := os.Getenv("VAULT_SKIP_VERIFY"); skip == "1" || strings.EqualFold(skip, "true") {
		cfg.TLSSkip = true
	}

	switch {
	case os.Getenv("VAULT_TOKEN") != "":
		cfg.Token = os.Getenv("VAULT_TOKEN")
	case os.Getenv("VAULT_GITHUB_TOKEN") != "":
		cfg.GitHubToken = os.Getenv("VAULT_GITHUB_TOKEN")
	case os.Getenv("VAULT_ROLE_TOKEN") != "" && os.Getenv("VAULT_SECRET_TOKEN") != "":
		cfg.RoleID = os.Getenv("VAULT_ROLE_TOKEN")
		cfg.SecretID = os.Getenv("VAULT_SECRET_TOKEN")
	default:
		token, err := storedToken()
		if err != nil || token == "" {
			return Config{}, dserrors.ConfigError{
				Field:      "auth",
				Message:    "no Vault credentials found in environment or keyring",
				Suggestion: "Set VAULT_TOKEN, VAULT_GITHUB_TOKEN, or VAULT_ROLE_TOKEN and VAULT_SECRET_TOKEN, or run 'kubevault login'",
			}
		}
		cfg.Token = token
	}

	return cfg, nil
}

// Client talks to one Vault instance. It implements KV.
type Client struct {
	config Config
	http   *http.Client
	auth   *authBackend
}

// NewClient creates a client for the configured address and auth method.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Address == "" {
		return nil, dserrors.ConfigError{
			Field:      "address",
			Message:    "Vault address is required",
			Suggestion: "Set the VAULT_ADDR environment variable",
		}
	}
	auth, err := newAuthBackend(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.TLSSkip {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{config: cfg, http: httpClient, auth: auth}, nil
}

// Address returns the base Vault URL.
func (c *Client) Address() string {
	return c.config.Address
}

// ErrorSuggestion maps common Vault failures to a next step for the user.
func ErrorSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "connection refused"):
		return "Check that the Vault server is running and VAULT_ADDR is correct"
	case strings.Contains(errStr, "permission denied"):
		return "Check your Vault token permissions for this path"
	case strings.Contains(errStr, "invalid token"), strings.Contains(errStr, "403"):
		return "Your Vault token may be expired or invalid. Log in again"
	case strings.Contains(errStr, "tls"):
		return "Check TLS configuration, or set VAULT_SKIP_VERIFY=true for testing"
	default:
		return "Check your Vault configuration and connectivity"
	}
}
