package parser

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DefaultMaxIndentDepth bounds the indent stack. Exceeding it is a hard
// error, never silent truncation.
const DefaultMaxIndentDepth = 100

// tabWidth is the column width of a tab when measuring indentation.
const tabWidth = 4

const scannerStateVersion = 1

var (
	ErrDepthExceeded   = errors.New("scanner: indent depth exceeds configured maximum")
	ErrBadCheckpoint   = errors.New("scanner: malformed state checkpoint")
	ErrBadVersion      = errors.New("scanner: unsupported checkpoint version")
	errIndentMismatch  = errors.New("scanner: no indent level matches dedent column")
	errUnterminatedRaw = errors.New("scanner: unterminated raw string literal")
)

// ScannerState is the cross-line state of the external scanner: the stack
// of open indentation columns (bottom always 0, strictly increasing) and
// whether the cursor sits at the start of a logical line. One instance
// belongs to one parse session; it is never shared between documents.
type ScannerState struct {
	indents     []uint16
	atLineStart bool
	maxDepth    int
}

func NewScannerState(maxDepth int) *ScannerState {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxIndentDepth
	}
	return &ScannerState{
		indents:     []uint16{0},
		atLineStart: true,
		maxDepth:    maxDepth,
	}
}

func (s *ScannerState) Depth() int {
	return len(s.indents)
}

func (s *ScannerState) top() int {
	return int(s.indents[len(s.indents)-1])
}

func (s *ScannerState) push(col int) error {
	if len(s.indents) >= s.maxDepth {
		return ErrDepthExceeded
	}
	s.indents = append(s.indents, uint16(col))
	return nil
}

// pop removes the top indent level. The base level 0 is never popped.
func (s *ScannerState) pop() {
	if len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
	}
}

func (s *ScannerState) Clone() *ScannerState {
	c := &ScannerState{
		indents:     make([]uint16, len(s.indents)),
		atLineStart: s.atLineStart,
		maxDepth:    s.maxDepth,
	}
	copy(c.indents, s.indents)
	return c
}

// Serialize encodes the state into a fixed-layout byte buffer:
// version u8, flags u8 (bit 0 = atLineStart), depth u16, then depth
// big-endian u16 column entries.
func (s *ScannerState) Serialize() ([]byte, error) {
	if len(s.indents) > s.maxDepth {
		return nil, ErrDepthExceeded
	}
	buf := make([]byte, 4+2*len(s.indents))
	buf[0] = scannerStateVersion
	if s.atLineStart {
		buf[1] = 1
	}
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(s.indents)))
	for i, col := range s.indents {
		binary.BigEndian.PutUint16(buf[4+2*i:], col)
	}
	return buf, nil
}

// RestoreScannerState rebuilds a state from a checkpoint buffer written by
// Serialize. Wrong versions, short buffers, and depths above the bound all
// fail loudly.
func RestoreScannerState(buf []byte, maxDepth int) (*ScannerState, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxIndentDepth
	}
	if len(buf) < 4 {
		return nil, ErrBadCheckpoint
	}
	if buf[0] != scannerStateVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadVersion, buf[0], scannerStateVersion)
	}
	depth := int(binary.BigEndian.Uint16(buf[2:4]))
	if depth < 1 || depth > maxDepth {
		return nil, fmt.Errorf("%w: depth %d outside [1, %d]", ErrBadCheckpoint, depth, maxDepth)
	}
	if len(buf) != 4+2*depth {
		return nil, ErrBadCheckpoint
	}
	s := &ScannerState{
		indents:     make([]uint16, depth),
		atLineStart: buf[1]&1 != 0,
		maxDepth:    maxDepth,
	}
	for i := range s.indents {
		s.indents[i] = binary.BigEndian.Uint16(buf[4+2*i:])
	}
	if s.indents[0] != 0 {
		return nil, fmt.Errorf("%w: base level is %d, want 0", ErrBadCheckpoint, s.indents[0])
	}
	for i := 1; i < depth; i++ {
		if s.indents[i] <= s.indents[i-1] {
			return nil, fmt.Errorf("%w: indent stack not strictly increasing", ErrBadCheckpoint)
		}
	}
	return s, nil
}

// ValidTokens is the set of scanner token kinds the grammar accepts at the
// current position.
type ValidTokens struct {
	Newline   bool
	Indent    bool
	Dedent    bool
	RawString bool
}

// AllScannerTokens accepts every scanner-supplied kind.
var AllScannerTokens = ValidTokens{Newline: true, Indent: true, Dedent: true, RawString: true}

// ScanResult describes one successful scanner recognition. Err is set for
// recognitions that also carry a diagnostic (indentation mismatch, depth
// overflow, unterminated raw string); the token is still produced so that
// every input yields some tree.
type ScanResult struct {
	Kind TokenKind
	Span Span
	Err  error
}

// Scan attempts to recognize exactly one scanner-supplied token at pos.
// Rules apply in priority order: line terminator, indent/dedent, raw
// string. The boolean result reports whether a token was recognized; on
// false the caller falls back to fixed-pattern tokenizing.
//
// Scan mutates the state at most once per invocation. Bytes committed as
// consumed are never rolled back.
func (s *ScannerState) Scan(input []byte, pos int, valid ValidTokens) (ScanResult, bool) {
	if pos >= len(input) {
		// Settle the indent stack before EOF: one DEDENT per call.
		if valid.Dedent && len(s.indents) > 1 {
			s.pop()
			return ScanResult{Kind: TokenDedent, Span: Span{Start: pos, End: pos}}, true
		}
		return ScanResult{}, false
	}

	b := input[pos]

	// Rule 1: line terminator. \r\n is consumed as one unit.
	if valid.Newline && (b == '\n' || b == '\r') {
		end := pos + 1
		if b == '\r' && end < len(input) && input[end] == '\n' {
			end++
		}
		s.atLineStart = true
		return ScanResult{Kind: TokenNewline, Span: Span{Start: pos, End: end}}, true
	}

	// Rule 2: indent / dedent, only at the start of a line.
	if s.atLineStart && (valid.Indent || valid.Dedent) {
		if res, ok := s.scanIndent(input, pos, valid); ok {
			return res, true
		}
	}

	// Rule 3: delimiter-counted raw string.
	if valid.RawString && isRawStringStart(input, pos) {
		return s.scanRawString(input, pos), true
	}

	return ScanResult{}, false
}

// scanIndent measures the leading whitespace of the line at pos and
// compares it against the indent stack. It emits at most one INDENT or
// DEDENT per call; when several DEDENTs are pending, atLineStart stays set
// so the next call continues settling the stack.
func (s *ScannerState) scanIndent(input []byte, pos int, valid ValidTokens) (ScanResult, bool) {
	col := 0
	i := pos
	for i < len(input) {
		switch input[i] {
		case ' ':
			col++
		case '\t':
			col += tabWidth
		default:
			goto measured
		}
		i++
	}
measured:
	// Blank lines and comment-only lines do not affect block structure.
	if i >= len(input) || input[i] == '\n' || input[i] == '\r' || isCommentStart(input, i) {
		s.atLineStart = false
		return ScanResult{}, false
	}

	top := s.top()
	switch {
	case col > top && valid.Indent:
		s.atLineStart = false
		if err := s.push(col); err != nil {
			return ScanResult{Kind: TokenIndent, Span: Span{Start: pos, End: pos}, Err: err}, true
		}
		return ScanResult{Kind: TokenIndent, Span: Span{Start: pos, End: pos}}, true
	case col < top && valid.Dedent:
		s.pop()
		newTop := s.top()
		res := ScanResult{Kind: TokenDedent, Span: Span{Start: pos, End: pos}}
		switch {
		case newTop == col:
			s.atLineStart = false
		case newTop > col:
			// More DEDENTs pending; the grammar invokes the scanner again.
		default:
			// No stack entry equals the dedented-to column. Resync to the
			// nearest level strictly below and report the mismatch.
			s.atLineStart = false
			res.Err = fmt.Errorf("%w: column %d, resynced to %d", errIndentMismatch, col, newTop)
		}
		return res, true
	default:
		s.atLineStart = false
		return ScanResult{}, false
	}
}

func isRawStringStart(input []byte, pos int) bool {
	if pos < len(input) && input[pos] == 'r' {
		pos++
	}
	if pos >= len(input) || input[pos] != '#' {
		return false
	}
	for pos < len(input) && input[pos] == '#' {
		pos++
	}
	return pos < len(input) && (input[pos] == '"' || input[pos] == '\'')
}

// scanRawString recognizes a delimiter-counted raw string: an optional r
// prefix, N >= 1 hashes, a quote, verbatim content with no escape
// processing, then the same quote followed by exactly N hashes. Reaching
// end of input first is an unterminated-literal error covering the rest of
// the document.
func (s *ScannerState) scanRawString(input []byte, pos int) ScanResult {
	start := pos
	i := pos
	if input[i] == 'r' {
		i++
	}
	hashes := 0
	for i < len(input) && input[i] == '#' {
		hashes++
		i++
	}
	quote := input[i]
	i++
	for i < len(input) {
		if input[i] != quote {
			i++
			continue
		}
		j := i + 1
		n := 0
		for j < len(input) && input[j] == '#' && n < hashes {
			n++
			j++
		}
		if n == hashes {
			return ScanResult{Kind: TokenRawString, Span: Span{Start: start, End: j}}
		}
		i++
	}
	return ScanResult{
		Kind: TokenRawString,
		Span: Span{Start: start, End: len(input)},
		Err:  errUnterminatedRaw,
	}
}

func isCommentStart(input []byte, pos int) bool {
	return pos+1 < len(input) && input[pos] == '/' &&
		(input[pos+1] == '/' || input[pos+1] == '*')
}
