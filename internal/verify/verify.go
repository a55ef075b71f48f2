// Package verify checks that every secret a manifest set references actually
// exists in the key/value store.
package verify

import (
	"context"
	"fmt"
	"sort"

	"github.com/systmms/kubevault/internal/corpus"
	"github.com/systmms/kubevault/internal/manifest"
	"github.com/systmms/kubevault/internal/mapping"
	"github.com/systmms/kubevault/internal/vault"
)

// Report accumulates the outcome of one verification run. Problems never abort
// the run; every referenced secret is checked and reported.
type Report struct {
	Verified []string
	Problems []string
}

// OK reports whether verification found no problems.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Secrets verifies the corpus against the store using the given name-to-path
// mappings.
//
// Env-key references are verified key by key against the mapped path's data.
// Secrets referenced only as a whole (envFrom or volumes) are verified at path
// level: the mapped path must hold at least one key.
func Secrets(ctx context.Context, kv vault.KV, c *corpus.Corpus, mappings []mapping.SecretMapping) Report {
	var report Report

	envSecrets := manifest.GroupEnvKeysBySecret(manifest.FindEnvKeyRefs(c))
	for _, secretName := range sortedNames(envSecrets) {
		m, ok := mapping.ByKubernetesName(mappings, secretName)
		if !ok {
			report.Problems = append(report.Problems,
				fmt.Sprintf("no store mapping for kubernetes secret '%s'", secretName))
			continue
		}
		data, err := kv.FetchAll(ctx, m.Engine, m.Path)
		if err != nil {
			report.Problems = append(report.Problems,
				fmt.Sprintf("store error for secret '%s': %v", secretName, err))
			continue
		}
		for _, key := range envSecrets[secretName] {
			if _, exists := data[key]; exists {
				report.Verified = append(report.Verified,
					fmt.Sprintf("%s:%s maps to %s/%s", secretName, key, m.Location(), key))
			} else {
				report.Problems = append(report.Problems,
					fmt.Sprintf("key '%s' for secret '%s' not found in %s", key, secretName, m.Location()))
			}
		}
	}

	// Secrets referenced without naming individual keys only need to exist.
	for _, secretName := range manifest.ReferencedSecretNames(c) {
		if _, isEnv := envSecrets[secretName]; isEnv {
			continue
		}
		m, ok := mapping.ByKubernetesName(mappings, secretName)
		if !ok {
			report.Problems = append(report.Problems,
				fmt.Sprintf("no store mapping for kubernetes secret '%s'", secretName))
			continue
		}
		data, err := kv.FetchAll(ctx, m.Engine, m.Path)
		if err != nil {
			report.Problems = append(report.Problems,
				fmt.Sprintf("store error for secret '%s': %v", secretName, err))
			continue
		}
		if len(data) == 0 {
			report.Problems = append(report.Problems,
				fmt.Sprintf("secret '%s' at %s holds no keys", secretName, m.Location()))
			continue
		}
		report.Verified = append(report.Verified,
			fmt.Sprintf("%s maps to %s (%d keys)", secretName, m.Location(), len(data)))
	}

	return report
}

func sortedNames(grouped map[string][]string) []string {
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
