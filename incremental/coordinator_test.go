package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/cangjie/parser"
)

const document = `package demo

func first(): Int64 {
	return 1
}

func second(): Int64 {
	return 2
}

func third(): Int64 {
	return 3
}
`

// apply rewrites src according to the edit and returns the new document
// together with the edit record the coordinator expects.
func apply(src string, start, oldEnd int, replacement string) ([]byte, Edit) {
	out := src[:start] + replacement + src[oldEnd:]
	return []byte(out), Edit{
		Start:  start,
		OldEnd: oldEnd,
		NewEnd: start + len(replacement),
	}
}

func TestUpdateMatchesFreshParse(t *testing.T) {
	start := 44 // the "1" in "return 1"
	require.Equal(t, "1", document[start:start+1])

	tests := []struct {
		name        string
		replacement string
	}{
		{"same length", "9"},
		{"longer", "100 + 200"},
		{"shorter to empty call", "f()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.Parse([]byte(document))

			newSrc, edit := apply(document, start, start+1, tt.replacement)
			res, err := s.Update(newSrc, edit)
			require.NoError(t, err)

			fresh := parser.Parse(newSrc)
			assert.True(t, res.Root.EqualExact(fresh.Root),
				"updated tree differs from fresh parse\nupdated:\n%s\nfresh:\n%s",
				res.Root.String(), fresh.Root.String())
			assert.Equal(t, len(fresh.Errors), len(res.Errors))
		})
	}
}

func TestUpdateReusesSuffix(t *testing.T) {
	s := NewSession()
	first := s.Parse([]byte(document))

	decls := first.Root.Children
	require.GreaterOrEqual(t, len(decls), 4)
	third := decls[len(decls)-1]
	oldStart := third.Span.Start

	// Grow the body of first(); second() and third() are untouched.
	start := 44
	newSrc, edit := apply(document, start, start+1, "1 + 41")
	res, err := s.Update(newSrc, edit)
	require.NoError(t, err)

	updated := res.Root.Children[len(res.Root.Children)-1]
	assert.Same(t, third, updated, "suffix declaration should be reused by reference")
	assert.Equal(t, oldStart+edit.Delta(), updated.Span.Start,
		"reused declaration should be shifted by the edit delta")

	fresh := parser.Parse(newSrc)
	assert.True(t, res.Root.EqualExact(fresh.Root))
}

func TestUpdatePrefixUntouched(t *testing.T) {
	s := NewSession()
	first := s.Parse([]byte(document))
	pkg := first.Root.Children[0]
	require.Equal(t, parser.KindPackageDecl, pkg.Kind)

	// Edit the last function only.
	start := len(document) - 4 // the "3" in "return 3"
	require.Equal(t, "3", document[start:start+1])
	newSrc, edit := apply(document, start, start+1, "33")
	res, err := s.Update(newSrc, edit)
	require.NoError(t, err)

	assert.Same(t, pkg, res.Root.Children[0], "prefix should be reused by reference")
	assert.Equal(t, 0, res.Root.Children[0].Span.Start)

	fresh := parser.Parse(newSrc)
	assert.True(t, res.Root.EqualExact(fresh.Root))
}

func TestUpdateEditAtDocumentStart(t *testing.T) {
	s := NewSession()
	s.Parse([]byte(document))

	newSrc, edit := apply(document, 0, 0, "// leading comment\n")
	res, err := s.Update(newSrc, edit)
	require.NoError(t, err)

	fresh := parser.Parse(newSrc)
	assert.True(t, res.Root.EqualExact(fresh.Root))
}

func TestUpdateBrokenEditFallsBack(t *testing.T) {
	s := NewSession()
	s.Parse([]byte(document))

	// Remove the closing brace of second(); third() must survive.
	start := 82
	require.Equal(t, "}", document[start:start+1])
	newSrc, edit := apply(document, start, start+1, "")
	res, err := s.Update(newSrc, edit)
	require.NoError(t, err)

	fresh := parser.Parse(newSrc)
	assert.True(t, res.Root.EqualExact(fresh.Root),
		"updated:\n%s\nfresh:\n%s", res.Root.String(), fresh.Root.String())
	assert.NotEmpty(t, res.Errors)
}

func TestUpdateRawStringSwallowsSuffix(t *testing.T) {
	src := "let a = 1\nlet b = 2\nlet c = 3\n"
	s := NewSession()
	s.Parse([]byte(src))

	// Open a raw string in b's initializer. Everything after it becomes
	// literal text, so no boundary converges and the coordinator falls
	// back to a longer reparse.
	start := 18 // the "2"
	newSrc, edit := apply(src, start, start+1, `r#"swallow`)
	res, err := s.Update(newSrc, edit)
	require.NoError(t, err)

	fresh := parser.Parse(newSrc)
	assert.True(t, res.Root.EqualExact(fresh.Root),
		"updated:\n%s\nfresh:\n%s", res.Root.String(), fresh.Root.String())
}

func TestUpdateBeforeParse(t *testing.T) {
	s := NewSession()
	_, err := s.Update([]byte("let x = 1"), Edit{})
	assert.ErrorIs(t, err, ErrNoParse)
}

func TestSessionAccessors(t *testing.T) {
	s := NewSession(WithMaxIndentDepth(10))
	assert.Nil(t, s.Tree())

	src := []byte("let x = 1\n")
	s.Parse(src)
	require.NotNil(t, s.Tree())
	assert.Equal(t, src, s.Source())
}

func TestUpdateSequence(t *testing.T) {
	s := NewSession()
	s.Parse([]byte(document))

	current := document
	edits := []struct {
		start, oldEnd int
		replacement   string
	}{
		{44, 45, "10"},
		{14, 14, "import std.math\n\n"},
	}
	for _, e := range edits {
		newSrc, edit := apply(current, e.start, e.oldEnd, e.replacement)
		res, err := s.Update(newSrc, edit)
		require.NoError(t, err)
		fresh := parser.Parse(newSrc)
		require.True(t, res.Root.EqualExact(fresh.Root),
			"updated:\n%s\nfresh:\n%s", res.Root.String(), fresh.Root.String())
		current = string(newSrc)
	}
}
