// Package generate renders Kubernetes Secret manifests from resolved store data.
package generate

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/systmms/kubevault/internal/mapping"
	"github.com/systmms/kubevault/internal/vault"
)

// secretTemplate produces one Secret document per store mapping. Annotations
// record where the data came from so generated manifests stay traceable to the
// store.
const secretTemplate = `---
apiVersion: v1
kind: Secret
metadata:
  name: {{ .SecretName }}
  namespace: {{ .Namespace }}
  annotations:
    kubevault.systmms.com/vault-addr: "{{ .VaultAddr }}"
    kubevault.systmms.com/vault-engine: "{{ .Engine }}"
    kubevault.systmms.com/vault-path: "{{ .Path | leadingSlash }}"
type: Opaque
data:
{{- range $key, $value := .Data }}
  {{ $key }}: {{ $value | b64enc }}
{{- end }}
`

// Secret is the data rendered into one Secret manifest.
type Secret struct {
	SecretName string
	Namespace  string
	VaultAddr  string
	Engine     string
	Path       string
	Data       map[string]string
}

// Renderer renders Secret manifests.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer builds the renderer with its template helpers.
func NewRenderer() *Renderer {
	tmpl := template.Must(template.New("secret").Funcs(template.FuncMap{
		"b64enc":       base64Encode,
		"indent":       indent,
		"leadingSlash": leadingSlash,
	}).Parse(secretTemplate))
	return &Renderer{tmpl: tmpl}
}

// RenderSecret writes one Secret manifest. Data keys render in sorted order.
func (r *Renderer) RenderSecret(w io.Writer, s Secret) error {
	if err := r.tmpl.Execute(w, s); err != nil {
		return fmt.Errorf("failed to render secret '%s': %w", s.SecretName, err)
	}
	return nil
}

// FromStore fetches each mapping's data from the store and renders one Secret
// manifest per mapping, in mapping order.
func FromStore(ctx context.Context, w io.Writer, kv vault.KV, vaultAddr, namespace string, mappings []mapping.SecretMapping) error {
	renderer := NewRenderer()
	for _, m := range mappings {
		data, err := kv.FetchAll(ctx, m.Engine, m.Path)
		if err != nil {
			return fmt.Errorf("failed to fetch data for secret '%s': %w", m.KubernetesName, err)
		}
		secret := Secret{
			SecretName: m.KubernetesName,
			Namespace:  namespace,
			VaultAddr:  vaultAddr,
			Engine:     m.Engine,
			Path:       m.Path,
			Data:       data,
		}
		if err := renderer.RenderSecret(w, secret); err != nil {
			return err
		}
	}
	return nil
}

func base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// indent prefixes every non-empty line of s.
func indent(prefix, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" || i < len(lines)-1 {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// leadingSlash normalizes a store path for display.
func leadingSlash(s string) string {
	if !strings.HasPrefix(s, "/") {
		return "/" + s
	}
	return s
}
