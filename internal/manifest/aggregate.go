package manifest

import (
	"sort"

	"github.com/systmms/kubevault/internal/corpus"
)

// GroupEnvKeysBySecret folds env-key references into a secret-name keyed lookup.
// Keys appear in first-seen order within each group.
func GroupEnvKeysBySecret(refs []EnvKeyRef) map[string][]string {
	grouped := make(map[string][]string)
	for _, ref := range refs {
		grouped[ref.SecretName] = append(grouped[ref.SecretName], ref.Key)
	}
	return grouped
}

// SecretRefNames returns the secret names of whole-secret references, in
// discovery order.
func SecretRefNames(refs []SecretRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.SecretName)
	}
	return names
}

// GroupUsagesBySecret folds volume usages into a secret-name keyed lookup.
func GroupUsagesBySecret(usages []VolumeUsage) map[string][]VolumeUsage {
	grouped := make(map[string][]VolumeUsage)
	for _, u := range usages {
		grouped[u.SecretName] = append(grouped[u.SecretName], u)
	}
	return grouped
}

// ReferencedSecretNames returns every distinct secret name the corpus references by
// any mechanism: env-key, whole-secret, or volume. The result is sorted so callers
// get deterministic output.
func ReferencedSecretNames(c *corpus.Corpus) []string {
	seen := make(map[string]struct{})
	for _, ref := range FindEnvKeyRefs(c) {
		seen[ref.SecretName] = struct{}{}
	}
	for _, ref := range FindSecretRefs(c) {
		seen[ref.SecretName] = struct{}{}
	}
	for _, vs := range FindVolumeSecrets(c) {
		seen[vs.SecretName] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
