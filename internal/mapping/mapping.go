// Package mapping connects Kubernetes secret names to their store locations,
// either from explicit flag values or by listing children under a store path.
package mapping

import (
	"context"
	"fmt"
	"strings"

	dserrors "github.com/systmms/kubevault/internal/errors"
	"github.com/systmms/kubevault/internal/vault"
)

// SecretMapping ties one Kubernetes secret name to the engine and path holding
// its data in the store.
type SecretMapping struct {
	KubernetesName string
	Engine         string
	Path           string
}

// Location renders the store side of the mapping as engine:path.
func (m SecretMapping) Location() string {
	return m.Engine + ":" + m.Path
}

// Parse parses one mapping flag of the form name=engine:/path.
func Parse(s string) (SecretMapping, error) {
	kubeName, storePart, ok := strings.Cut(s, "=")
	if !ok {
		return SecretMapping{}, dserrors.ConfigError{
			Field:      "mapping",
			Value:      s,
			Message:    "missing '=' between secret name and store location",
			Suggestion: "Use the form my-secrets=engine-name:/apps/my-app",
		}
	}
	engine, path, ok := strings.Cut(storePart, ":")
	if !ok {
		return SecretMapping{}, dserrors.ConfigError{
			Field:      "mapping",
			Value:      s,
			Message:    fmt.Sprintf("missing store engine for secret '%s'", kubeName),
			Suggestion: "Use the form my-secrets=engine-name:/apps/my-app",
		}
	}
	return SecretMapping{KubernetesName: kubeName, Engine: engine, Path: path}, nil
}

// ParseAll parses every mapping flag, failing on the first invalid one.
func ParseAll(flags []string) ([]SecretMapping, error) {
	mappings := make([]SecretMapping, 0, len(flags))
	for _, flag := range flags {
		m, err := Parse(flag)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

// ParseLocation parses an engine:/path store location without a Kubernetes name.
func ParseLocation(s string) (engine, path string, err error) {
	engine, path, ok := strings.Cut(s, ":")
	if !ok || engine == "" {
		return "", "", dserrors.ConfigError{
			Field:      "store-path",
			Value:      s,
			Message:    "missing store engine",
			Suggestion: "Use the form engine-name:/apps/my-app",
		}
	}
	return engine, path, nil
}

// Join appends a child key to a store path.
func Join(path, key string) string {
	if strings.HasSuffix(path, "/") {
		return path + key
	}
	return path + "/" + key
}

// DiscoverFromPath builds one mapping per child key listed under the given store
// path, naming each mapping after its key. Used when the caller supplies no
// explicit name-to-path mappings.
func DiscoverFromPath(ctx context.Context, kv vault.KV, engine, path string) ([]SecretMapping, error) {
	keys, err := kv.ListKeys(ctx, engine, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets under %s:%s: %w", engine, path, err)
	}
	mappings := make([]SecretMapping, 0, len(keys))
	for _, key := range keys {
		mappings = append(mappings, SecretMapping{
			KubernetesName: strings.TrimSuffix(key, "/"),
			Engine:         engine,
			Path:           Join(path, strings.TrimSuffix(key, "/")),
		})
	}
	return mappings, nil
}

// ByKubernetesName finds the mapping for a Kubernetes secret name.
func ByKubernetesName(mappings []SecretMapping, name string) (SecretMapping, bool) {
	for _, m := range mappings {
		if m.KubernetesName == name {
			return m, true
		}
	}
	return SecretMapping{}, false
}
