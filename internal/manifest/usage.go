package manifest

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/systmms/kubevault/internal/corpus"
)

// VolumeUsage correlates one secret-backed volume with one container that mounts
// it. Usages holds every string value inside the container definition that
// references a mount path with a trailing path segment.
type VolumeUsage struct {
	VolumeName string
	SecretName string
	// MountedIn is the container name, or its image reference when the container
	// has no name field.
	MountedIn  string
	MountPaths []string
	Usages     []string
}

// FindVolumeUsages scans every containers sequence in the corpus and reports each
// container that mounts the given volume. Containers with no matching mount produce
// no record.
func FindVolumeUsages(c *corpus.Corpus, vs VolumeSecret) []VolumeUsage {
	nested := corpus.FilterMapMappings(c, func(m *yaml.Node) ([]VolumeUsage, bool) {
		containers, ok := corpus.MapGet(m, "containers")
		if !ok {
			return nil, false
		}
		items, ok := corpus.SequenceItems(containers)
		if !ok {
			return nil, false
		}
		var found []VolumeUsage
		for _, container := range items {
			if usage, ok := containerUsage(container, vs); ok {
				found = append(found, usage)
			}
		}
		return found, true
	})

	var flat []VolumeUsage
	for _, group := range nested {
		flat = append(flat, group...)
	}
	return flat
}

// FindAllVolumeUsages correlates every discovered volume secret against every
// container in the corpus.
func FindAllVolumeUsages(c *corpus.Corpus, secrets []VolumeSecret) []VolumeUsage {
	var all []VolumeUsage
	for _, vs := range secrets {
		all = append(all, FindVolumeUsages(c, vs)...)
	}
	return all
}

// containerUsage builds the usage record for one container node, reporting false
// when the container does not mount the volume or is too malformed to identify.
func containerUsage(container *yaml.Node, vs VolumeSecret) (VolumeUsage, bool) {
	name, ok := corpus.MapGetString(container, "name")
	if !ok {
		// Minimal specs may omit name; fall back to the image reference.
		name, ok = corpus.MapGetString(container, "image")
		if !ok {
			return VolumeUsage{}, false
		}
	}

	mountPaths := volumeMountPaths(container, vs.VolumeName)
	if len(mountPaths) == 0 {
		return VolumeUsage{}, false
	}

	// A mount path only counts as used when it is followed by another path
	// segment: /secrets/db matches /secrets/db/password, not a bare /secrets/db.
	usages := corpus.FilterMapValuesFrom(container, func(v *yaml.Node) (string, bool) {
		s, ok := corpus.AsString(v)
		if !ok {
			return "", false
		}
		for _, p := range mountPaths {
			if strings.Contains(s, p+"/") {
				return s, true
			}
		}
		return "", false
	})

	return VolumeUsage{
		VolumeName: vs.VolumeName,
		SecretName: vs.SecretName,
		MountedIn:  name,
		MountPaths: mountPaths,
		Usages:     usages,
	}, true
}

// volumeMountPaths collects the mountPath of every volumeMounts entry that names
// the given volume.
func volumeMountPaths(container *yaml.Node, volumeName string) []string {
	mounts, ok := corpus.MapGet(container, "volumeMounts")
	if !ok {
		return nil
	}
	items, ok := corpus.SequenceItems(mounts)
	if !ok {
		return nil
	}
	var paths []string
	for _, mount := range items {
		name, ok := corpus.MapGetString(mount, "name")
		if !ok || name != volumeName {
			continue
		}
		if path, ok := corpus.MapGetString(mount, "mountPath"); ok {
			paths = append(paths, path)
		}
	}
	return paths
}
