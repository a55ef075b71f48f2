package corpus_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/systmms/kubevault/internal/corpus"
)

const testStream = `---
a: "foo"
nested:
  - name: a
  - name: b
---
- b: "bar"
- b: baz
- c:
    b: 4
    d: 1
    e: 2
`

func mustParse(t *testing.T, text string) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Parse([]byte(text))
	require.NoError(t, err)
	return c
}

func TestParse_SplitsDocuments(t *testing.T) {
	t.Parallel()

	c := mustParse(t, testStream)
	require.Equal(t, 2, c.Len())

	docs := c.Documents()
	assert.True(t, corpus.IsMapping(docs[0]), "first document should be a mapping")
	assert.True(t, corpus.IsSequence(docs[1]), "second document should be a sequence")

	_, ok := corpus.MapGet(docs[0], "a")
	assert.True(t, ok, "key 'a' should be in the first document")

	items, ok := corpus.SequenceItems(docs[1])
	require.True(t, ok)
	assert.Len(t, items, 3)
}

func TestParse_DropsBlankAndCommentOnlySegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{
			name: "leading delimiter",
			text: "---\na: 1\n",
			want: 1,
		},
		{
			name: "comment only segment",
			text: "# generated\n---\na: 1\n---\n# trailing comment\n\n",
			want: 1,
		},
		{
			name: "blank segments between documents",
			text: "a: 1\n---\n\n---\nb: 2\n",
			want: 2,
		},
		{
			name: "empty input",
			text: "",
			want: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := mustParse(t, tt.text)
			assert.Equal(t, tt.want, c.Len())
		})
	}
}

func TestParse_TopLevelScalarAndSequenceAreValid(t *testing.T) {
	t.Parallel()

	c := mustParse(t, "just a scalar\n---\n- 1\n- 2\n")
	require.Equal(t, 2, c.Len())

	s, ok := corpus.AsString(c.Documents()[0])
	require.True(t, ok)
	assert.Equal(t, "just a scalar", s)
	assert.True(t, corpus.IsSequence(c.Documents()[1]))
}

func TestParse_ErrorIdentifiesDocument(t *testing.T) {
	t.Parallel()

	_, err := corpus.Parse([]byte("a: 1\n---\nkey: [unclosed\n"))
	require.Error(t, err)

	var parseErr *corpus.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Document)
	assert.Contains(t, err.Error(), "document 2")
}

func TestFilterMapMappings_VisitsEveryMapping(t *testing.T) {
	t.Parallel()

	c := mustParse(t, testStream)
	count := len(corpus.FilterMapMappings(c, func(m *yaml.Node) (int, bool) {
		return 1, true
	}))
	assert.Equal(t, 7, count, "unexpected number of mappings")
}

func TestFilterMapMappings_CountsNestedFixture(t *testing.T) {
	t.Parallel()

	// Document one: a top-level mapping holding a 2-element sequence of 1-key
	// mappings (3 mappings). Document two: a 3-element sequence with 2 mappings
	// and a scalar. Total: 5.
	text := `top:
  - x: 1
  - y: 2
---
- a: 1
- plain
- b: 2
`
	c := mustParse(t, text)
	count := len(corpus.FilterMapMappings(c, func(m *yaml.Node) (int, bool) {
		return 1, true
	}))
	assert.Equal(t, 5, count)
}

func TestFilterMapMappings_PredicateOrder(t *testing.T) {
	t.Parallel()

	c := mustParse(t, `a: "foo"
nested:
  - name: x
  - name: y
`)
	values := corpus.FilterMapMappings(c, func(m *yaml.Node) (string, bool) {
		return corpus.MapGetString(m, "name")
	})
	assert.Equal(t, []string{"x", "y"}, values)
}

func TestFilterMapMappings_FiltersByKey(t *testing.T) {
	t.Parallel()

	c := mustParse(t, testStream)
	count := len(corpus.FilterMapMappings(c, func(m *yaml.Node) (int, bool) {
		if _, ok := corpus.MapGet(m, "b"); ok {
			return 1, true
		}
		return 0, false
	}))
	assert.Equal(t, 3, count, "unexpected count of 'b' keys")
}

func TestFilterMapValuesFrom_IncludesRootFirst(t *testing.T) {
	t.Parallel()

	c := mustParse(t, `name: root
children:
  - name: child
`)
	root := c.Documents()[0]

	var kinds []yaml.Kind
	corpus.FilterMapValuesFrom(root, func(v *yaml.Node) (struct{}, bool) {
		kinds = append(kinds, v.Kind)
		return struct{}{}, false
	})

	require.NotEmpty(t, kinds)
	assert.Equal(t, yaml.MappingNode, kinds[0], "root must be visited first")
}

func TestFilterMapValuesFrom_VisitsEveryNodeKind(t *testing.T) {
	t.Parallel()

	c := mustParse(t, `args:
  - /etc/config/app.conf
  - --verbose
port: 8080
`)
	root := c.Documents()[0]

	strs := corpus.FilterMapValuesFrom(root, func(v *yaml.Node) (string, bool) {
		return corpus.AsString(v)
	})
	assert.Equal(t, []string{"/etc/config/app.conf", "--verbose"}, strs)

	total := len(corpus.FilterMapValuesFrom(root, func(v *yaml.Node) (int, bool) {
		return 1, true
	}))
	// Root mapping, args sequence, two scalars, and the port scalar.
	assert.Equal(t, 5, total)
}

func TestTraversal_ResolvesAliases(t *testing.T) {
	t.Parallel()

	c := mustParse(t, `base: &ref
  name: shared
copy: *ref
`)
	values := corpus.FilterMapMappings(c, func(m *yaml.Node) (string, bool) {
		return corpus.MapGetString(m, "name")
	})
	assert.Equal(t, []string{"shared", "shared"}, values)
}

func TestNew_ReadsFromReader(t *testing.T) {
	t.Parallel()

	c, err := corpus.New(strings.NewReader("a: 1\n---\nb: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}
