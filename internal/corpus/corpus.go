// Package corpus parses multi-document YAML streams into generic node trees and
// provides filter-map traversals over them. Documents are treated as untyped: callers
// match shapes with predicates instead of unmarshalling into structs.
package corpus

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Corpus holds every parsed document from one input stream. It is immutable after
// construction and safe for any number of concurrent read-only traversals.
type Corpus struct {
	documents []*yaml.Node
}

// ParseError reports a document that failed to parse. Document is the 1-based index
// of the failing segment, counting only segments that survive the blank/comment
// filter.
type ParseError struct {
	Document int
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("document %d is not valid YAML: %v", e.Document, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// New reads the full stream and parses it into a Corpus. See Parse.
func New(r io.Reader) (*Corpus, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest stream: %w", err)
	}
	return Parse(data)
}

// Parse splits the input on the literal delimiter "---", drops segments that contain
// only blank lines and comments, and parses each surviving segment as one YAML
// document. Either every segment parses or the whole corpus fails; there is no
// partial result.
func Parse(data []byte) (*Corpus, error) {
	var docs []*yaml.Node
	for _, segment := range strings.Split(string(data), "---") {
		if !nonemptyDocument(segment) {
			continue
		}
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(segment), &doc); err != nil {
			return nil, &ParseError{Document: len(docs) + 1, Err: err}
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
			return nil, &ParseError{Document: len(docs) + 1, Err: fmt.Errorf("empty document node")}
		}
		docs = append(docs, doc.Content[0])
	}
	return &Corpus{documents: docs}, nil
}

// Len returns the number of parsed documents.
func (c *Corpus) Len() int {
	return len(c.documents)
}

// Documents returns the top-level document nodes in input order. Callers must not
// mutate them.
func (c *Corpus) Documents() []*yaml.Node {
	return c.documents
}

// nonemptyDocument reports whether a segment has at least one line that is neither
// blank nor a comment.
func nonemptyDocument(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return true
		}
	}
	return false
}

// FilterMapMappings walks every document pre-order, depth-first, applying fn to each
// mapping node. When fn reports a match, its result is appended in encounter order.
// Recursion descends into mapping values (not keys) and sequence elements; scalars
// are terminal.
func FilterMapMappings[T any](c *Corpus, fn func(m *yaml.Node) (T, bool)) []T {
	var acc []T
	for _, doc := range c.documents {
		visitMappings(doc, &acc, fn)
	}
	return acc
}

// FilterMapValuesFrom walks the subtree rooted at root with the same order as
// FilterMapMappings, but applies fn to every node regardless of kind. The root
// itself is visited before its descendants.
func FilterMapValuesFrom[T any](root *yaml.Node, fn func(v *yaml.Node) (T, bool)) []T {
	var acc []T
	visitValues(root, &acc, fn)
	return acc
}

func visitMappings[T any](n *yaml.Node, acc *[]T, fn func(m *yaml.Node) (T, bool)) {
	n = resolve(n)
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.MappingNode:
		if v, ok := fn(n); ok {
			*acc = append(*acc, v)
		}
		for i := 1; i < len(n.Content); i += 2 {
			visitMappings(n.Content[i], acc, fn)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			visitMappings(item, acc, fn)
		}
	}
}

func visitValues[T any](n *yaml.Node, acc *[]T, fn func(v *yaml.Node) (T, bool)) {
	n = resolve(n)
	if n == nil {
		return
	}
	if v, ok := fn(n); ok {
		*acc = append(*acc, v)
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			visitValues(n.Content[i], acc, fn)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			visitValues(item, acc, fn)
		}
	}
}

// resolve follows alias nodes to their anchor so predicates always see concrete
// scalar, mapping, or sequence nodes.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
