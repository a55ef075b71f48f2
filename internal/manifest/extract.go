// Package manifest recognizes secret-reference shapes inside rendered Kubernetes
// manifests and correlates volume-mounted secrets with the containers using them.
// Matching is structural, not schema-driven: any node that does not fit a shape is
// silently skipped.
package manifest

import (
	"gopkg.in/yaml.v3"

	"github.com/systmms/kubevault/internal/corpus"
)

// EnvKeyRef is a reference to one key of a named secret, consumed as an
// environment variable via secretKeyRef.
type EnvKeyRef struct {
	SecretName string
	Key        string
}

// SecretRef is a reference to an entire named secret consumed as an environment
// source via secretRef (envFrom).
type SecretRef struct {
	SecretName string
}

// VolumeSecret is a pod volume backed by a named secret.
type VolumeSecret struct {
	VolumeName string
	SecretName string
}

// FindEnvKeyRefs returns every secretKeyRef-shaped reference in the corpus, in
// document and nesting order.
func FindEnvKeyRefs(c *corpus.Corpus) []EnvKeyRef {
	return corpus.FilterMapMappings(c, func(m *yaml.Node) (EnvKeyRef, bool) {
		ref, ok := corpus.MapGet(m, "secretKeyRef")
		if !ok {
			return EnvKeyRef{}, false
		}
		name, ok := corpus.MapGetString(ref, "name")
		if !ok {
			return EnvKeyRef{}, false
		}
		key, ok := corpus.MapGetString(ref, "key")
		if !ok {
			return EnvKeyRef{}, false
		}
		return EnvKeyRef{SecretName: name, Key: key}, true
	})
}

// FindSecretRefs returns every whole-secret environment reference in the corpus.
func FindSecretRefs(c *corpus.Corpus) []SecretRef {
	return corpus.FilterMapMappings(c, func(m *yaml.Node) (SecretRef, bool) {
		ref, ok := corpus.MapGet(m, "secretRef")
		if !ok {
			return SecretRef{}, false
		}
		name, ok := corpus.MapGetString(ref, "name")
		if !ok {
			return SecretRef{}, false
		}
		return SecretRef{SecretName: name}, true
	})
}

// FindVolumeSecrets returns every secret-backed volume declared in the corpus. A
// single pod spec may declare several; each volumes sequence yields all of its
// matching entries in order.
func FindVolumeSecrets(c *corpus.Corpus) []VolumeSecret {
	nested := corpus.FilterMapMappings(c, func(m *yaml.Node) ([]VolumeSecret, bool) {
		volumes, ok := corpus.MapGet(m, "volumes")
		if !ok {
			return nil, false
		}
		items, ok := corpus.SequenceItems(volumes)
		if !ok {
			return nil, false
		}
		var found []VolumeSecret
		for _, item := range items {
			secret, ok := corpus.MapGet(item, "secret")
			if !ok {
				continue
			}
			volName, ok := corpus.MapGetString(item, "name")
			if !ok {
				continue
			}
			secretName, ok := corpus.MapGetString(secret, "secretName")
			if !ok {
				continue
			}
			found = append(found, VolumeSecret{VolumeName: volName, SecretName: secretName})
		}
		return found, true
	})

	var flat []VolumeSecret
	for _, group := range nested {
		flat = append(flat, group...)
	}
	return flat
}
