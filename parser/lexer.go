package parser

import (
	"unicode"
	"unicode/utf8"
)

// Lexer combines fixed-pattern tokenizing with the stateful external
// scanner. The scanner is consulted first on every call so that line
// terminators, indentation and raw strings take priority over ordinary
// patterns.
type Lexer struct {
	input []byte
	pos   int
	state *ScannerState
	valid ValidTokens

	// errs collects lex-level diagnostics (indentation mismatch, depth
	// overflow, unterminated literals, unrecognized characters).
	errs []Diagnostic
}

func NewLexer(input []byte, state *ScannerState) *Lexer {
	if state == nil {
		state = NewScannerState(0)
	}
	return &Lexer{
		input: input,
		state: state,
		valid: AllScannerTokens,
	}
}

// SetStart positions the lexer at offset, used when resuming a parse
// mid-document from a restored scanner state.
func (l *Lexer) SetStart(offset int) {
	l.pos = offset
}

func (l *Lexer) State() *ScannerState {
	return l.state
}

func (l *Lexer) Errors() []Diagnostic {
	return l.errs
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	return ch
}

func (l *Lexer) advanceN(n int) {
	l.pos += n
	if l.pos > len(l.input) {
		l.pos = len(l.input)
	}
}

// NextToken produces the next token, consulting the external scanner
// before fixed-pattern matching. Whitespace and comments are skipped, but
// never across a line terminator: the scanner owns newlines.
func (l *Lexer) NextToken() Token {
	for {
		if res, ok := l.state.Scan(l.input, l.pos, l.valid); ok {
			l.pos = res.Span.End
			if res.Err != nil {
				l.errs = append(l.errs, diagnosticFor(res))
			}
			return Token{
				Kind:    res.Kind,
				Span:    res.Span,
				Literal: string(l.input[res.Span.Start:res.Span.End]),
			}
		}

		if l.skipBlank() {
			continue
		}
		break
	}

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}
	}

	ch := l.peek()

	if _, ok := letterAt(l.input, l.pos); ok {
		return l.scanIdentOrKeyword(start)
	}
	if isDigit(ch) {
		return l.scanNumber(start)
	}
	if ch == '\'' {
		return l.scanRuneLiteral(start)
	}
	if ch == '"' {
		if l.peekN(1) == '"' && l.peekN(2) == '"' {
			return l.scanMultilineString(start)
		}
		return l.scanStringLiteral(start)
	}

	return l.scanOperator(start)
}

// skipBlank consumes horizontal whitespace and comments. Line terminators
// are left for the scanner. Returns true if anything was consumed.
func (l *Lexer) skipBlank() bool {
	start := l.pos
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' {
			l.advance()
			continue
		}
		if ch == '/' && l.peekN(1) == '/' {
			for l.peek() != 0 && l.peek() != '\n' && l.peek() != '\r' {
				l.advance()
			}
			continue
		}
		if ch == '/' && l.peekN(1) == '*' {
			l.skipBlockComment()
			continue
		}
		break
	}
	return l.pos > start
}

// Block comments nest.
func (l *Lexer) skipBlockComment() {
	l.advanceN(2)
	depth := 1
	for depth > 0 && l.peek() != 0 {
		if l.peek() == '/' && l.peekN(1) == '*' {
			depth++
			l.advanceN(2)
			continue
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			depth--
			l.advanceN(2)
			continue
		}
		l.advance()
	}
}

func (l *Lexer) scanIdentOrKeyword(start int) Token {
	// A leading r can begin a rune literal (r'a').
	if l.peek() == 'r' && l.peekN(1) == '\'' {
		l.advance()
		return l.scanRuneLiteral(start)
	}
	for {
		w, ok := letterOrDigitAt(l.input, l.pos)
		if !ok {
			break
		}
		l.advanceN(w)
	}
	literal := string(l.input[start:l.pos])
	return Token{
		Kind:    LookupKeyword(literal),
		Span:    Span{Start: start, End: l.pos},
		Literal: literal,
	}
}

func (l *Lexer) scanNumber(start int) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		return l.token(TokenIntLiteral, start)
	}
	if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		l.advanceN(2)
		for l.peek() == '0' || l.peek() == '1' || l.peek() == '_' {
			l.advance()
		}
		return l.token(TokenIntLiteral, start)
	}
	if l.peek() == '0' && (l.peekN(1) == 'o' || l.peekN(1) == 'O') {
		l.advanceN(2)
		for l.peek() >= '0' && l.peek() <= '7' || l.peek() == '_' {
			l.advance()
		}
		return l.token(TokenIntLiteral, start)
	}

	isFloat := false
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	// A dot begins a fraction only when followed by a digit; 1..2 is a
	// range expression, not a float.
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	// Width suffixes: i8 i16 i32 i64 u8 u16 u32 u64 f16 f32 f64.
	switch l.peek() {
	case 'i', 'u':
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	case 'f':
		isFloat = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if isFloat {
		return l.token(TokenFloatLiteral, start)
	}
	return l.token(TokenIntLiteral, start)
}

func (l *Lexer) scanRuneLiteral(start int) Token {
	l.advance() // opening quote
	for l.peek() != 0 && l.peek() != '\'' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.peek() == '\'' {
		l.advance()
	} else {
		l.errorAt(DiagUnterminatedLiteral, start, "unterminated rune literal")
	}
	return l.token(TokenRuneLiteral, start)
}

func (l *Lexer) scanStringLiteral(start int) Token {
	l.advance() // opening quote
	for l.peek() != 0 && l.peek() != '"' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
			l.advance()
			continue
		}
		if l.peek() == '$' && l.peekN(1) == '{' {
			l.advanceN(2)
			l.skipInterpolation()
			continue
		}
		l.advance()
	}
	if l.peek() == '"' {
		l.advance()
	} else {
		l.errorAt(DiagUnterminatedLiteral, start, "unterminated string literal")
	}
	return l.token(TokenStringLiteral, start)
}

func (l *Lexer) scanMultilineString(start int) Token {
	l.advanceN(3)
	for l.peek() != 0 {
		if l.peek() == '"' && l.peekN(1) == '"' && l.peekN(2) == '"' {
			l.advanceN(3)
			return l.token(TokenMultilineString, start)
		}
		if l.peek() == '\\' {
			l.advance()
		}
		if l.peek() == '$' && l.peekN(1) == '{' {
			l.advanceN(2)
			l.skipInterpolation()
			continue
		}
		l.advance()
	}
	l.errorAt(DiagUnterminatedLiteral, start, "unterminated multi-line string")
	return l.token(TokenMultilineString, start)
}

// skipInterpolation consumes a ${...} interpolation body, tracking brace
// depth and nested string forms so an embedded "}" does not end it early.
func (l *Lexer) skipInterpolation() {
	depth := 1
	for l.peek() != 0 && depth > 0 {
		switch l.peek() {
		case '{':
			depth++
			l.advance()
		case '}':
			depth--
			l.advance()
		case '"':
			l.advance()
			for l.peek() != 0 && l.peek() != '"' && l.peek() != '\n' {
				if l.peek() == '\\' {
					l.advance()
				}
				l.advance()
			}
			if l.peek() == '"' {
				l.advance()
			}
		case '\'':
			l.advance()
			for l.peek() != 0 && l.peek() != '\'' && l.peek() != '\n' {
				if l.peek() == '\\' {
					l.advance()
				}
				l.advance()
			}
			if l.peek() == '\'' {
				l.advance()
			}
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanOperator(start int) Token {
	ch := l.peek()

	switch ch {
	case '(':
		l.advance()
		return l.token(TokenLParen, start)
	case ')':
		l.advance()
		return l.token(TokenRParen, start)
	case '{':
		l.advance()
		return l.token(TokenLBrace, start)
	case '}':
		l.advance()
		return l.token(TokenRBrace, start)
	case '[':
		l.advance()
		return l.token(TokenLBracket, start)
	case ']':
		l.advance()
		return l.token(TokenRBracket, start)
	case ',':
		l.advance()
		return l.token(TokenComma, start)
	case ';':
		l.advance()
		return l.token(TokenSemicolon, start)
	case ':':
		l.advance()
		return l.token(TokenColon, start)
	case '@':
		l.advance()
		return l.token(TokenAt, start)
	case '`':
		l.advance()
		return l.token(TokenBacktick, start)

	case '.':
		if l.peekN(1) == '.' {
			if l.peekN(2) == '.' {
				l.advanceN(3)
				return l.token(TokenEllipsis, start)
			}
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenRangeEq, start)
			}
			l.advanceN(2)
			return l.token(TokenRange, start)
		}
		l.advance()
		return l.token(TokenDot, start)

	case '?':
		if l.peekN(1) == '?' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenCoalesceAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenCoalesce, start)
		}
		if l.peekN(1) == '.' {
			l.advanceN(2)
			return l.token(TokenQuestionDot, start)
		}
		l.advance()
		return l.token(TokenQuestion, start)

	case '=':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenEQ, start)
		}
		if l.peekN(1) == '>' {
			l.advanceN(2)
			return l.token(TokenFatArrow, start)
		}
		l.advance()
		return l.token(TokenAssign, start)

	case '!':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenNE, start)
		}
		l.advance()
		return l.token(TokenNot, start)

	case '<':
		if l.peekN(1) == '<' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenShlAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenShl, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenLE, start)
		}
		if l.peekN(1) == ':' {
			l.advanceN(2)
			return l.token(TokenSubtype, start)
		}
		l.advance()
		return l.token(TokenLT, start)

	case '>':
		if l.peekN(1) == '>' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenShrAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenShr, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenGE, start)
		}
		l.advance()
		return l.token(TokenGT, start)

	case '&':
		if l.peekN(1) == '&' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenLogAndAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenAnd, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenAndAssign, start)
		}
		l.advance()
		return l.token(TokenBitAnd, start)

	case '|':
		if l.peekN(1) == '|' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenLogOrAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenOr, start)
		}
		if l.peekN(1) == '>' {
			l.advanceN(2)
			return l.token(TokenPipeline, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenOrAssign, start)
		}
		l.advance()
		return l.token(TokenBitOr, start)

	case '^':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenXorAssign, start)
		}
		l.advance()
		return l.token(TokenBitXor, start)

	case '~':
		if l.peekN(1) == '>' {
			l.advanceN(2)
			return l.token(TokenFlow, start)
		}

	case '+':
		if l.peekN(1) == '+' {
			l.advanceN(2)
			return l.token(TokenIncrement, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenPlusAssign, start)
		}
		l.advance()
		return l.token(TokenPlus, start)

	case '-':
		if l.peekN(1) == '-' {
			l.advanceN(2)
			return l.token(TokenDecrement, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenMinusAssign, start)
		}
		if l.peekN(1) == '>' {
			l.advanceN(2)
			return l.token(TokenArrow, start)
		}
		l.advance()
		return l.token(TokenMinus, start)

	case '*':
		if l.peekN(1) == '*' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenPowerAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenPower, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenStarAssign, start)
		}
		l.advance()
		return l.token(TokenStar, start)

	case '/':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenSlashAssign, start)
		}
		l.advance()
		return l.token(TokenSlash, start)

	case '%':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenPercentAssign, start)
		}
		l.advance()
		return l.token(TokenPercent, start)
	}

	// Unrecognized byte: single-character error token.
	l.advance()
	tok := l.token(TokenError, start)
	l.errorAt(DiagUnexpectedChar, start, "unexpected character "+tok.Literal)
	return tok
}

func (l *Lexer) token(kind TokenKind, start int) Token {
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: l.pos},
		Literal: string(l.input[start:l.pos]),
	}
}

func (l *Lexer) errorAt(kind DiagKind, start int, msg string) {
	l.errs = append(l.errs, Diagnostic{
		Kind:    kind,
		Span:    Span{Start: start, End: l.pos},
		Message: msg,
	})
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// letterAt decodes the full rune at pos and reports whether it can start
// an identifier, along with its byte width.
func letterAt(input []byte, pos int) (int, bool) {
	if pos >= len(input) {
		return 0, false
	}
	ch := input[pos]
	if ch < utf8.RuneSelf {
		return 1, (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
	}
	r, w := utf8.DecodeRune(input[pos:])
	return w, r != utf8.RuneError && unicode.IsLetter(r)
}

func letterOrDigitAt(input []byte, pos int) (int, bool) {
	if pos < len(input) && isDigit(input[pos]) {
		return 1, true
	}
	if w, ok := letterAt(input, pos); ok {
		return w, true
	}
	if pos < len(input) && input[pos] >= utf8.RuneSelf {
		r, w := utf8.DecodeRune(input[pos:])
		if r != utf8.RuneError && unicode.IsDigit(r) {
			return w, true
		}
	}
	return 0, false
}
