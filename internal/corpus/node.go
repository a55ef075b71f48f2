package corpus

import "gopkg.in/yaml.v3"

// Node accessors for predicates. Every accessor treats an unexpected kind as
// not-found so predicates can chain lookups over arbitrary shapes without
// panicking.

// IsMapping reports whether n is a mapping node.
func IsMapping(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.MappingNode
}

// IsSequence reports whether n is a sequence node.
func IsSequence(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.SequenceNode
}

// MapGet looks up key in a mapping node. It returns false when n is not a mapping
// or the key is absent.
func MapGet(n *yaml.Node, key string) (*yaml.Node, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolve(n.Content[i])
		if k != nil && k.Kind == yaml.ScalarNode && k.Value == key {
			return resolve(n.Content[i+1]), true
		}
	}
	return nil, false
}

// MapGetString looks up key and additionally requires a string scalar value.
func MapGetString(n *yaml.Node, key string) (string, bool) {
	v, ok := MapGet(n, key)
	if !ok {
		return "", false
	}
	return AsString(v)
}

// AsString returns the value of a string scalar node. Numbers, booleans, nulls,
// and collection nodes report false.
func AsString(n *yaml.Node) (string, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!str" {
		return "", false
	}
	return n.Value, true
}

// SequenceItems returns the elements of a sequence node in order.
func SequenceItems(n *yaml.Node) ([]*yaml.Node, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil, false
	}
	return n.Content, true
}
