package parser

import (
	"bytes"
	"errors"
	"testing"
)

func layoutTokens(t *testing.T, input string) []TokenKind {
	t.Helper()
	tokens, _ := Tokenize([]byte(input))
	var got []TokenKind
	for _, tok := range tokens {
		if tok.Kind == TokenIndent || tok.Kind == TokenDedent {
			got = append(got, tok.Kind)
		}
	}
	return got
}

func TestScannerIndentDedent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenKind
	}{
		{
			"flat",
			"a\nb\nc\n",
			nil,
		},
		{
			"single level",
			"a\n    b\nc\n",
			[]TokenKind{TokenIndent, TokenDedent},
		},
		{
			"nested then unwind",
			"a\n    b\n        c\n    d\ne\n",
			[]TokenKind{TokenIndent, TokenIndent, TokenDedent, TokenDedent},
		},
		{
			"two dedents at once",
			"a\n    b\n        c\nd\n",
			[]TokenKind{TokenIndent, TokenIndent, TokenDedent, TokenDedent},
		},
		{
			"blank lines do not affect structure",
			"a\n    b\n\n   \n    c\nd\n",
			[]TokenKind{TokenIndent, TokenDedent},
		},
		{
			"comment-only lines do not affect structure",
			"a\n    b\n        // comment\n    c\nd\n",
			[]TokenKind{TokenIndent, TokenDedent},
		},
		{
			"tab counts as four columns",
			"a\n\tb\n    c\nd\n",
			[]TokenKind{TokenIndent, TokenDedent},
		},
		{
			"dedent settles at end of input",
			"a\n    b\n        c",
			[]TokenKind{TokenIndent, TokenIndent, TokenDedent, TokenDedent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := layoutTokens(t, tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestScannerIndentMismatch(t *testing.T) {
	// Line at column 2 matches no open level; the scanner resyncs to the
	// nearest level below and reports a diagnostic.
	_, diags := Tokenize([]byte("a\n    b\n  c\nd\n"))
	found := false
	for _, d := range diags {
		if d.Kind == DiagIndentMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an indent mismatch diagnostic, got %v", diags)
	}
}

func TestScannerDepthExceeded(t *testing.T) {
	s := NewScannerState(2)
	if err := s.push(4); err != nil {
		t.Fatalf("push(4) = %v", err)
	}
	if err := s.push(8); !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("push(8) = %v, want ErrDepthExceeded", err)
	}
	if s.Depth() != 2 {
		t.Errorf("Depth() = %d after failed push, want 2", s.Depth())
	}
}

func TestScannerRawStrings(t *testing.T) {
	tests := []struct {
		input string
		lit   string
	}{
		{`r#"hello"#`, `r#"hello"#`},
		{`r#"a"b"#`, `r#"a"b"#`},
		{`r##"a"#b"##`, `r##"a"#b"##`},
		{`#"plain"#`, `#"plain"#`},
		{`r###"x"###`, `r###"x"###`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, diags := Tokenize([]byte(tt.input))
			if len(diags) != 0 {
				t.Fatalf("diagnostics: %v", diags)
			}
			if len(tokens) != 2 || tokens[0].Kind != TokenRawString {
				t.Fatalf("tokens = %v, want RawString EOF", tokens)
			}
			if tokens[0].Literal != tt.lit {
				t.Errorf("literal = %q, want %q", tokens[0].Literal, tt.lit)
			}
		})
	}
}

func TestScannerRawStringUnterminated(t *testing.T) {
	tokens, diags := Tokenize([]byte(`r##"open"#`))
	if len(tokens) != 2 || tokens[0].Kind != TokenRawString {
		t.Fatalf("tokens = %v, want RawString EOF", tokens)
	}
	if tokens[0].Span.End != len(`r##"open"#`) {
		t.Errorf("span end = %d, want end of input", tokens[0].Span.End)
	}
	found := false
	for _, d := range diags {
		if d.Kind == DiagUnterminatedLiteral {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unterminated-literal diagnostic, got %v", diags)
	}
}

func TestScannerStateSerializeRoundTrip(t *testing.T) {
	s := NewScannerState(0)
	for _, col := range []int{4, 8, 12} {
		if err := s.push(col); err != nil {
			t.Fatalf("push(%d) = %v", col, err)
		}
	}
	s.atLineStart = true

	buf, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize() = %v", err)
	}
	restored, err := RestoreScannerState(buf, 0)
	if err != nil {
		t.Fatalf("RestoreScannerState() = %v", err)
	}
	if restored.Depth() != s.Depth() {
		t.Errorf("Depth() = %d, want %d", restored.Depth(), s.Depth())
	}
	if restored.atLineStart != s.atLineStart {
		t.Errorf("atLineStart = %v, want %v", restored.atLineStart, s.atLineStart)
	}
	buf2, err := restored.Serialize()
	if err != nil {
		t.Fatalf("Serialize() after restore = %v", err)
	}
	if !bytes.Equal(buf, buf2) {
		t.Errorf("serialized forms differ: %v vs %v", buf, buf2)
	}
}

func TestRestoreScannerStateRejectsBadInput(t *testing.T) {
	good, err := NewScannerState(0).Serialize()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"empty", nil, ErrBadCheckpoint},
		{"short", good[:2], ErrBadCheckpoint},
		{"wrong version", append([]byte{99}, good[1:]...), ErrBadVersion},
		{"zero depth", []byte{1, 0, 0, 0}, ErrBadCheckpoint},
		{"truncated entries", []byte{1, 0, 0, 2, 0, 0}, ErrBadCheckpoint},
		{"nonzero base", []byte{1, 0, 0, 1, 0, 4}, ErrBadCheckpoint},
		{"not increasing", []byte{1, 0, 0, 3, 0, 0, 0, 8, 0, 4}, ErrBadCheckpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RestoreScannerState(tt.buf, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("RestoreScannerState() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRestoreScannerStateDepthBound(t *testing.T) {
	s := NewScannerState(0)
	for col := 4; col <= 40; col += 4 {
		if err := s.push(col); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := s.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := RestoreScannerState(buf, 5); !errors.Is(err, ErrBadCheckpoint) {
		t.Errorf("RestoreScannerState() = %v, want ErrBadCheckpoint", err)
	}
	if _, err := RestoreScannerState(buf, 0); err != nil {
		t.Errorf("RestoreScannerState() with default bound = %v", err)
	}
}

func TestScannerOneDedentPerCall(t *testing.T) {
	input := []byte("a\n" + "    b\n" + "        c\n" + "d\n")
	s := NewScannerState(0)
	pos := 0
	var kinds []TokenKind
	for pos <= len(input) {
		res, ok := s.Scan(input, pos, AllScannerTokens)
		if !ok {
			if pos >= len(input) {
				break
			}
			// Fixed-pattern region: skip one identifier byte.
			pos++
			continue
		}
		kinds = append(kinds, res.Kind)
		if res.Span.End > pos {
			pos = res.Span.End
		}
	}
	want := []TokenKind{
		TokenNewline,
		TokenIndent, TokenNewline,
		TokenIndent, TokenNewline,
		TokenDedent, TokenDedent, TokenNewline,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range kinds {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}
