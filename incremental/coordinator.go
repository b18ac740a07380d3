// Package incremental coordinates reparsing after edits. A Session owns a
// document, its concrete syntax tree and the scanner-state checkpoints of
// the last parse; Update reparses only the region an edit disturbed and
// splices the surviving tree parts back together.
package incremental

import (
	"bytes"
	"errors"

	"github.com/dhamidi/cangjie/parser"
)

// ErrNoParse is returned by Update when the session has no tree yet.
var ErrNoParse = errors.New("incremental: Update before Parse")

// Edit describes one contiguous text change: the byte range it replaced
// in the old document and the end of the replacement in the new one.
type Edit struct {
	Start  int
	OldEnd int
	NewEnd int
}

// Delta is the signed size change the edit applied.
func (e Edit) Delta() int {
	return e.NewEnd - e.OldEnd
}

// Option configures a Session.
type Option func(*Session)

// WithMaxIndentDepth bounds the indentation stack of every parse the
// session runs.
func WithMaxIndentDepth(n int) Option {
	return func(s *Session) {
		s.maxDepth = n
	}
}

// Session is the reparse coordinator for one document. The session owns
// every tree it returns: callers read them but never mutate, because an
// Update may shift spans of reused nodes in place.
//
// A Session is not safe for concurrent use.
type Session struct {
	maxDepth int
	src      []byte
	result   *parser.Result
}

func NewSession(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the document the current tree describes.
func (s *Session) Source() []byte {
	return s.src
}

// Tree returns the current root, nil before the first Parse.
func (s *Session) Tree() *parser.Node {
	if s.result == nil {
		return nil
	}
	return s.result.Root
}

// Parse parses the whole document fresh and makes it the session state.
func (s *Session) Parse(src []byte) *parser.Result {
	s.src = append([]byte(nil), src...)
	s.result = parser.Parse(s.src, parser.WithMaxIndentDepth(s.maxDepth))
	return s.result
}

// Update applies one edit and reparses as little as possible. The
// resulting tree is byte-for-byte equivalent to a fresh parse of newSrc:
// reuse is an optimization, never a semantic difference.
//
// A batch of edits is applied as a sequence of Update calls, oldest
// first, each carrying the full document text after that edit. Within one
// document the calls must be serialized by the caller.
//
// The strategy restarts at the last checkpoint at or before the first
// top-level declaration the edit overlaps, reparses forward, and checks
// for convergence at the first declaration boundary past the edit: when
// the serialized scanner state there matches the old checkpoint, the old
// suffix is reused by reference with its spans shifted.
func (s *Session) Update(newSrc []byte, edit Edit) (*parser.Result, error) {
	if s.result == nil {
		return nil, ErrNoParse
	}
	old := s.result
	delta := edit.Delta()

	restart, state, ok := s.restartPoint(edit)
	if !ok {
		return s.Parse(newSrc), nil
	}

	prefix, suffixStart := s.splitDecls(restart, edit)

	boundary, boundaryState, converged := s.convergenceTarget(suffixStart)
	if converged {
		fragment := parser.Parse(newSrc[:boundary+delta],
			parser.WithMaxIndentDepth(s.maxDepth),
			parser.WithScannerState(state),
			parser.WithStartOffset(restart))
		// A diagnostic in the fragment can mean an unclosed construct
		// whose recovery would have consumed tokens past the boundary,
		// so only an error-free fragment is safe to splice.
		if fragmentState, ok := checkpointAt(fragment, boundary+delta); ok &&
			len(fragment.Errors) == 0 &&
			bytes.Equal(fragmentState, boundaryState) {
			s.src = append([]byte(nil), newSrc...)
			s.result = s.splice(old, prefix, fragment, boundary, delta, len(newSrc))
			return s.result, nil
		}
	}

	// No boundary converged: reparse from the restart point to the end.
	tail := parser.Parse(newSrc,
		parser.WithMaxIndentDepth(s.maxDepth),
		parser.WithScannerState(state),
		parser.WithStartOffset(restart))
	s.src = append([]byte(nil), newSrc...)
	s.result = s.splice(old, prefix, tail, -1, delta, len(newSrc))
	return s.result, nil
}

// restartPoint picks the checkpoint to resume lexing from: the greatest
// checkpoint offset not past the start of the first top-level declaration
// the edit overlaps. A restart at offset 0 falls back to a full parse.
func (s *Session) restartPoint(edit Edit) (int, *parser.ScannerState, bool) {
	target := 0
	for _, decl := range s.result.Root.Children {
		if decl.Span.End >= edit.Start {
			target = decl.Span.Start
			break
		}
		target = decl.Span.End
	}

	var best *parser.Checkpoint
	for i := range s.result.Checkpoints {
		cp := &s.result.Checkpoints[i]
		if cp.Offset <= target && (best == nil || cp.Offset > best.Offset) {
			best = cp
		}
	}
	if best == nil || best.Offset == 0 {
		return 0, nil, false
	}
	state, err := parser.RestoreScannerState(best.State, s.maxDepth)
	if err != nil {
		// Checkpoints are session-produced; a corrupt one means the
		// session state is gone, so reparse from scratch.
		return 0, nil, false
	}
	return best.Offset, state, true
}

// splitDecls partitions the old top-level declarations into the reusable
// prefix (wholly before the restart point) and the index of the first
// declaration starting at or after the edited range in the old document.
func (s *Session) splitDecls(restart int, edit Edit) (prefix []*parser.Node, suffixStart int) {
	decls := s.result.Root.Children
	suffixStart = len(decls)
	for i, decl := range decls {
		if decl.Span.End <= restart {
			prefix = decls[:i+1]
			continue
		}
		if decl.Span.Start >= edit.OldEnd && decl.Span.Start > restart {
			suffixStart = i
			break
		}
	}
	return prefix, suffixStart
}

// convergenceTarget returns the old-document offset of the first
// declaration boundary past the edit that has a checkpoint exactly at its
// start, along with that checkpoint's serialized state.
func (s *Session) convergenceTarget(suffixStart int) (int, []byte, bool) {
	decls := s.result.Root.Children
	if suffixStart >= len(decls) {
		return 0, nil, false
	}
	boundary := decls[suffixStart].Span.Start
	for _, cp := range s.result.Checkpoints {
		if cp.Offset == boundary {
			return boundary, cp.State, true
		}
	}
	return 0, nil, false
}

func checkpointAt(res *parser.Result, offset int) ([]byte, bool) {
	for _, cp := range res.Checkpoints {
		if cp.Offset == offset {
			return cp.State, true
		}
	}
	return nil, false
}

// splice assembles the updated result: reused prefix declarations, the
// freshly parsed middle, and (when boundary >= 0) the old suffix shifted
// by delta. Reused nodes are mutated in place; the session owns them.
func (s *Session) splice(old *parser.Result, prefix []*parser.Node, fresh *parser.Result, boundary, delta, newLen int) *parser.Result {
	root := &parser.Node{
		Kind: parser.KindSourceFile,
		Span: parser.Span{Start: 0, End: newLen},
	}
	for _, decl := range prefix {
		root.AddChild(decl)
	}
	for _, decl := range fresh.Root.Children {
		root.AddChild(decl)
	}

	res := &parser.Result{Root: root}

	prefixEnd := 0
	if len(prefix) > 0 {
		prefixEnd = prefix[len(prefix)-1].Span.End
	}
	for _, d := range old.Errors {
		if d.Span.End <= prefixEnd {
			res.Errors = append(res.Errors, d)
		}
	}
	res.Errors = append(res.Errors, fresh.Errors...)

	for _, cp := range old.Checkpoints {
		if cp.Offset <= prefixEnd {
			res.Checkpoints = append(res.Checkpoints, cp)
		}
	}
	for _, cp := range fresh.Checkpoints {
		if cp.Offset > prefixEnd {
			res.Checkpoints = append(res.Checkpoints, cp)
		}
	}

	if boundary >= 0 {
		for _, decl := range old.Root.Children {
			if decl.Span.Start >= boundary {
				shiftSpans(decl, delta)
				root.AddChild(decl)
			}
		}
		for _, d := range old.Errors {
			if d.Span.Start >= boundary {
				d.Span.Start += delta
				d.Span.End += delta
				res.Errors = append(res.Errors, d)
			}
		}
		for _, cp := range old.Checkpoints {
			if cp.Offset > boundary {
				res.Checkpoints = append(res.Checkpoints, parser.Checkpoint{
					Offset: cp.Offset + delta,
					State:  cp.State,
				})
			}
		}
	}

	return res
}

// shiftSpans moves a reused subtree by delta bytes, tokens included.
func shiftSpans(n *parser.Node, delta int) {
	if delta == 0 {
		return
	}
	n.Span.Start += delta
	n.Span.End += delta
	if n.Token != nil {
		n.Token.Span.Start += delta
		n.Token.Span.End += delta
	}
	if n.Err != nil && n.Err.Got != nil {
		n.Err.Got.Span.Start += delta
		n.Err.Got.Span.End += delta
	}
	for _, child := range n.Children {
		shiftSpans(child, delta)
	}
}
