package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// NotFoundError reports that nothing is stored at a path.
type NotFoundError struct {
	Engine string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no secret found at %s:%s", e.Engine, e.Path)
}

// vaultResponse is the envelope Vault wraps around every API response.
type vaultResponse struct {
	Data json.RawMessage `json:"data"`
	Auth *struct {
		ClientToken   string `json:"client_token"`
		LeaseDuration int64  `json:"lease_duration"`
	} `json:"auth"`
}

// FetchAll returns every key/value pair stored at path in the given KV v2 engine.
func (c *Client) FetchAll(ctx context.Context, engine, path string) (map[string]string, error) {
	url := c.apiURL(engine, "data", path)

	var resp vaultResponse
	if err := c.request(ctx, "GET", url, nil, &resp); err != nil {
		return nil, err
	}

	var payload struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode secret data: %w", err)
	}
	if payload.Data == nil {
		return nil, &NotFoundError{Engine: engine, Path: path}
	}

	data := make(map[string]string, len(payload.Data))
	for k, v := range payload.Data {
		data[k] = stringifyValue(v)
	}
	return data, nil
}

// ListKeys returns the child key names stored under path in the given engine.
func (c *Client) ListKeys(ctx context.Context, engine, path string) ([]string, error) {
	url := c.apiURL(engine, "metadata", path)

	var resp vaultResponse
	if err := c.request(ctx, "LIST", url, nil, &resp); err != nil {
		return nil, err
	}

	var payload struct {
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode key listing: %w", err)
	}
	return payload.Keys, nil
}

// apiURL builds a KV v2 URL. The engine sits between /v1/ and the data or
// metadata segment; leading slashes on the secret path are stripped.
func (c *Client) apiURL(engine, segment, path string) string {
	return strings.TrimSuffix(c.config.Address, "/") +
		"/v1/" + strings.Trim(engine, "/") +
		"/" + segment +
		"/" + strings.TrimLeft(path, "/")
}

// request performs an authenticated API call, logging in first when the current
// credentials are missing or expired.
func (c *Client) request(ctx context.Context, method, url string, body io.Reader, out *vaultResponse) error {
	if err := c.refreshCredentials(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Vault-Token", c.auth.clientToken())
	if c.config.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", c.config.Namespace)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach vault: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		engine, path := splitAPIURL(url)
		return &NotFoundError{Engine: engine, Path: path}
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vault returned status %d: %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// refreshCredentials ensures a valid client token, performing a login for
// backends that support it.
func (c *Client) refreshCredentials(ctx context.Context) error {
	if !c.auth.expired() {
		return nil
	}
	if c.auth.method == authClientToken {
		c.auth.setCredentials(c.config.Token, 0)
		return nil
	}

	url := strings.TrimSuffix(c.config.Address, "/") + c.auth.loginPath()
	payload, err := json.Marshal(c.auth.loginPayload())
	if err != nil {
		return fmt.Errorf("failed to marshal login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", c.config.Namespace)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach vault for login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(msg))
	}

	var loginResp vaultResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if loginResp.Auth == nil || loginResp.Auth.ClientToken == "" {
		return fmt.Errorf("no client token received from vault")
	}

	c.auth.setCredentials(loginResp.Auth.ClientToken, loginResp.Auth.LeaseDuration)
	return nil
}

// splitAPIURL recovers the engine and secret path from a KV v2 URL for error
// reporting.
func splitAPIURL(url string) (engine, path string) {
	_, rest, ok := strings.Cut(url, "/v1/")
	if !ok {
		return "", url
	}
	engine, rest, ok = strings.Cut(rest, "/")
	if !ok {
		return engine, ""
	}
	// Drop the data/ or metadata/ segment.
	_, path, _ = strings.Cut(rest, "/")
	return engine, path
}

// stringifyValue renders a stored value as a string. Vault data is JSON, so
// non-string values can appear even in KV stores used as string maps.
func stringifyValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case nil:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
