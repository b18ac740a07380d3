package parser

// Option configures a parse.
type Option func(*Parser)

// WithMaxIndentDepth bounds the indentation stack for this session.
func WithMaxIndentDepth(n int) Option {
	return func(p *Parser) {
		p.maxDepth = n
	}
}

// WithScannerState resumes lexing from a previously checkpointed scanner
// state instead of a fresh one. Used together with WithStartOffset when an
// incremental session reparses a region mid-document.
func WithScannerState(state *ScannerState) Option {
	return func(p *Parser) {
		p.scanState = state
	}
}

// WithStartOffset begins lexing at the given byte offset of the input.
// The parse then covers only declarations; the package and import clauses
// belong to the document prefix.
func WithStartOffset(offset int) Option {
	return func(p *Parser) {
		p.startOffset = offset
	}
}

// Checkpoint records the serialized scanner state in force at a byte
// offset (always a line start). The incremental coordinator restores from
// these to reparse a region without relexing the whole document.
type Checkpoint struct {
	Offset int
	State  []byte
}

// Result is the output contract: a concrete syntax tree plus the list of
// lex and parse errors, and the scanner-state checkpoints recorded along
// the way.
type Result struct {
	Root        *Node
	Errors      []Diagnostic
	Checkpoints []Checkpoint
}

type parseFunc func(*Parser) *Node

type Parser struct {
	input       []byte
	maxDepth    int
	startOffset int
	scanState   *ScannerState
	entry       parseFunc

	tokens      []Token
	pos         int
	parenDepth  int
	errs        []Diagnostic
	checkpoints []Checkpoint
}

// Parse parses a whole document.
func Parse(input []byte, opts ...Option) *Result {
	p := &Parser{
		input: input,
		entry: (*Parser).parseSourceFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p.run()
}

// ParseExpression parses a single expression, mainly for tests and tools.
func ParseExpression(input []byte, opts ...Option) *Result {
	p := &Parser{
		input: input,
		entry: (*Parser).parseExpressionEntry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p.run()
}

// Tokenize runs only the lexer, keeping every token including the
// scanner-supplied NEWLINE/INDENT/DEDENT layout tokens.
func Tokenize(input []byte, opts ...Option) ([]Token, []Diagnostic) {
	p := &Parser{input: input}
	for _, opt := range opts {
		opt(p)
	}
	lexer := p.newLexer()
	var tokens []Token
	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
	return tokens, lexer.Errors()
}

func (p *Parser) newLexer() *Lexer {
	state := p.scanState
	if state == nil {
		state = NewScannerState(p.maxDepth)
	}
	lexer := NewLexer(p.input, state)
	lexer.SetStart(p.startOffset)
	return lexer
}

func (p *Parser) run() *Result {
	p.tokenize()
	root := p.entry(p)
	return &Result{
		Root:        root,
		Errors:      p.errs,
		Checkpoints: p.checkpoints,
	}
}

// tokenize drives the lexer over the whole input. NEWLINE tokens are kept
// because they terminate statements; INDENT/DEDENT are layout tokens that
// brace-delimited constructs treat as trivia, so they are dropped here
// (Tokenize surfaces them for tools). A checkpoint is recorded at every
// line start.
func (p *Parser) tokenize() {
	lexer := p.newLexer()
	p.checkpoint(p.startOffset, lexer.State())
	for {
		tok := lexer.NextToken()
		switch tok.Kind {
		case TokenIndent, TokenDedent:
			continue
		case TokenNewline:
			p.tokens = append(p.tokens, tok)
			p.checkpoint(tok.Span.End, lexer.State())
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
	p.errs = append(p.errs, lexer.Errors()...)
}

func (p *Parser) checkpoint(offset int, state *ScannerState) {
	buf, err := state.Serialize()
	if err != nil {
		// Depth is bounded at push time, so the stack always fits.
		return
	}
	p.checkpoints = append(p.checkpoints, Checkpoint{Offset: offset, State: buf})
}

// sync makes newlines transparent inside parenthesized and bracketed
// contexts.
func (p *Parser) sync() {
	if p.parenDepth == 0 {
		return
	}
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == TokenNewline {
		p.pos++
	}
}

func (p *Parser) peek() Token {
	p.sync()
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.pos]
}

// peekN looks n significant tokens ahead, never counting newlines.
func (p *Parser) peekN(n int) Token {
	p.sync()
	i := p.pos
	for ; i < len(p.tokens); i++ {
		if p.tokens[i].Kind == TokenNewline {
			continue
		}
		if n == 0 {
			return p.tokens[i]
		}
		n--
	}
	return Token{Kind: TokenEOF}
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

// expect consumes the next token when it has the wanted kind. A mismatch
// records a diagnostic and leaves the token in place for recovery.
func (p *Parser) expect(kind TokenKind) *Token {
	tok := p.peek()
	if tok.Kind == kind {
		p.advance()
		return &tok
	}
	p.errs = append(p.errs, Diagnostic{
		Kind:    DiagUnexpectedToken,
		Span:    tok.Span,
		Message: "expected " + kind.String() + ", got " + tok.Kind.String(),
	})
	return nil
}

// literalError reports a lexer diagnostic covering exactly this token,
// such as an unterminated raw string running to the end of input. Such a
// token becomes an ERROR node rather than an ordinary literal.
func (p *Parser) literalError(tok Token) *Diagnostic {
	for i := range p.errs {
		d := &p.errs[i]
		if d.Kind == DiagUnterminatedLiteral && d.Span == tok.Span {
			return d
		}
	}
	return nil
}

// skipNewlines consumes newline and semicolon separators.
func (p *Parser) skipNewlines() {
	for p.check(TokenNewline) || p.check(TokenSemicolon) {
		p.advance()
	}
}

// skipNL consumes newlines only, for continuation points such as after a
// binary operator or a comma.
func (p *Parser) skipNL() {
	for p.check(TokenNewline) {
		p.advance()
	}
}

// mustProgress guards loops against stalling on unexpected tokens: call it
// at the top of an iteration, then the returned func at the bottom.
func (p *Parser) mustProgress() func() bool {
	saved := p.pos
	return func() bool {
		if p.pos == saved {
			if !p.check(TokenEOF) {
				p.advance()
			}
			return false
		}
		return true
	}
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.peek().Span.Start},
	}
}

func (p *Parser) finishNode(n *Node) *Node {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		n.Span.End = p.tokens[p.pos-1].Span.End
	} else if len(p.tokens) > 0 {
		n.Span.End = p.tokens[len(p.tokens)-1].Span.End
	}
	if n.Span.End < n.Span.Start {
		n.Span.End = n.Span.Start
	}
	return n
}

// identNode consumes an identifier and returns its leaf, or nil without
// consuming or reporting anything. Call sites own the failure handling.
func (p *Parser) identNode() *Node {
	if !p.check(TokenIdent) {
		return nil
	}
	tok := p.advance()
	return &Node{Kind: KindIdentifier, Token: &tok, Span: tok.Span}
}

func (p *Parser) leaf(kind NodeKind) *Node {
	tok := p.advance()
	return &Node{Kind: kind, Token: &tok, Span: tok.Span}
}

// errorNode records a diagnostic, produces a localized ERROR node and
// resynchronizes to one of the given token kinds. The rest of the document
// keeps parsing: a failure is never whole-document.
func (p *Parser) errorNode(msg string, recoverTo []TokenKind, expected ...TokenKind) *Node {
	tok := p.peek()
	node := &Node{
		Kind: KindError,
		Span: Span{Start: tok.Span.Start, End: tok.Span.End},
		Err: &NodeError{
			Message:  msg,
			Expected: expected,
			Got:      &tok,
		},
	}
	p.errs = append(p.errs, Diagnostic{
		Kind:    DiagUnexpectedToken,
		Span:    node.Span,
		Message: msg,
	})
	p.recoverTo(recoverTo)
	node.Span.End = p.lastEnd(node.Span.End)
	return node
}

func (p *Parser) lastEnd(fallback int) int {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return fallback
}

func (p *Parser) recoverTo(kinds []TokenKind) {
	if !p.check(TokenEOF) {
		p.advance()
	}
	if len(kinds) == 0 {
		return
	}
	for !p.check(TokenEOF) {
		for _, kind := range kinds {
			if p.check(kind) {
				return
			}
		}
		p.advance()
	}
}

var declSync = []TokenKind{
	TokenNewline, TokenSemicolon, TokenRBrace,
	TokenLet, TokenVar, TokenFunc, TokenClass, TokenStruct,
	TokenEnum, TokenInterface, TokenExtend, TokenType, TokenMacro,
	TokenImport, TokenPackage,
}

func (p *Parser) parseExpressionEntry() *Node {
	p.skipNewlines()
	return p.parseExpression()
}

func (p *Parser) parseSourceFile() *Node {
	node := p.startNode(KindSourceFile)
	node.Span.Start = p.startOffset
	p.skipNewlines()

	if p.startOffset == 0 {
		if p.check(TokenPackage) {
			node.AddChild(p.parsePackageDecl())
			p.skipNewlines()
		}
		for p.check(TokenImport) {
			node.AddChild(p.parseImportDecl())
			p.skipNewlines()
		}
	}

	for !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseDecl())
		p.skipNewlines()
		if !progress() {
			break
		}
	}

	p.finishNode(node)
	node.Span.End = len(p.input)
	return node
}

func (p *Parser) parsePackageDecl() *Node {
	node := p.startNode(KindPackageDecl)
	p.expect(TokenPackage)
	node.AddField("name", p.parseQualifiedName())
	p.expectTerminator()
	return p.finishNode(node)
}

// parseImportDecl covers "import a.b.c", "import a.b as d" and the
// grouped form "import a.{b, c}".
func (p *Parser) parseImportDecl() *Node {
	node := p.startNode(KindImportDecl)
	p.expect(TokenImport)

	path := p.startNode(KindQualifiedName)
	for {
		if p.check(TokenLBrace) {
			p.advance()
			p.parenDepth++
			for !p.check(TokenRBrace) && !p.check(TokenEOF) {
				progress := p.mustProgress()
				if tok := p.expect(TokenIdent); tok != nil {
					path.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
				}
				if p.check(TokenComma) {
					p.advance()
				}
				if !progress() {
					break
				}
			}
			p.parenDepth--
			p.expect(TokenRBrace)
			break
		}
		if tok := p.peek(); tok.Kind == TokenIdent || tok.Kind == TokenStar {
			p.advance()
			path.AddChild(&Node{Kind: KindIdentifier, Token: &tok, Span: tok.Span})
			if tok.Kind == TokenStar {
				break
			}
		} else {
			p.expect(TokenIdent)
			break
		}
		if !p.check(TokenDot) {
			break
		}
		p.advance()
	}
	node.AddField("path", p.finishNode(path))

	if p.check(TokenAs) {
		p.advance()
		if tok := p.expect(TokenIdent); tok != nil {
			node.AddField("alias", &Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
		}
	}
	p.expectTerminator()
	return p.finishNode(node)
}

// expectTerminator requires a statement boundary: newline, semicolon,
// closing brace or end of input.
func (p *Parser) expectTerminator() {
	switch p.peek().Kind {
	case TokenNewline, TokenSemicolon:
		p.advance()
	case TokenRBrace, TokenEOF:
	default:
		tok := p.peek()
		p.errs = append(p.errs, Diagnostic{
			Kind:    DiagUnexpectedToken,
			Span:    tok.Span,
			Message: "expected end of statement, got " + tok.Kind.String(),
		})
	}
}

func (p *Parser) parseQualifiedName() *Node {
	node := p.startNode(KindQualifiedName)
	if id := p.identNode(); id != nil {
		node.AddChild(id)
	} else {
		return p.errorNode("expected identifier", declSync, TokenIdent)
	}
	for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
		p.advance()
		tok := p.advance()
		node.AddChild(&Node{Kind: KindIdentifier, Token: &tok, Span: tok.Span})
	}
	if len(node.Children) == 1 {
		return node.Children[0]
	}
	return p.finishNode(node)
}

// parseBlock parses a brace-delimited statement sequence. Statements are
// declarations or expressions, terminated by newlines or semicolons.
func (p *Parser) parseBlock() *Node {
	node := p.startNode(KindBlock)
	if !p.check(TokenLBrace) {
		return p.errorNode("expected block", declSync, TokenLBrace)
	}
	p.advance()
	p.skipNewlines()
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseStatement())
		p.skipNewlines()
		if !progress() {
			break
		}
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

// parseStatement chooses between a declaration and an expression
// statement. An identifier at statement start is inconclusive, so the
// expression-vs-declaration conflict site's candidate order decides.
func (p *Parser) parseStatement() *Node {
	if p.atDeclStart() {
		return p.parseDecl()
	}
	if !preferFirst(conflictStmtStart, KindExprStmt) {
		return p.parseDecl()
	}
	node := p.startNode(KindExprStmt)
	node.AddField("expression", p.parseExpression())
	p.expectTerminator()
	return p.finishNode(node)
}

// atDeclStart probes whether the upcoming tokens begin a declaration,
// skipping over annotations and modifiers without committing.
func (p *Parser) atDeclStart() bool {
	i := p.pos
	// Skip an annotation/macro prefix: @name or @name(...).
	for i < len(p.tokens) && p.tokens[i].Kind == TokenAt {
		i++
		if i < len(p.tokens) && p.tokens[i].Kind == TokenIdent {
			i++
		}
		if i < len(p.tokens) && p.tokens[i].Kind == TokenLBracket {
			i = p.skipBalanced(i, TokenLBracket, TokenRBracket)
		}
		if i < len(p.tokens) && p.tokens[i].Kind == TokenLParen {
			i = p.skipBalanced(i, TokenLParen, TokenRParen)
		}
		for i < len(p.tokens) && p.tokens[i].Kind == TokenNewline {
			i++
		}
	}
	for i < len(p.tokens) && p.tokens[i].Kind.IsModifier() {
		// "const x" declares; "unsafe {" is an expression.
		if p.tokens[i].Kind == TokenConst {
			return true
		}
		if p.tokens[i].Kind == TokenUnsafe && i+1 < len(p.tokens) &&
			p.tokens[i+1].Kind == TokenLBrace {
			return false
		}
		i++
	}
	if i >= len(p.tokens) {
		return false
	}
	switch p.tokens[i].Kind {
	case TokenLet, TokenVar, TokenFunc, TokenMain, TokenOperator,
		TokenClass, TokenStruct, TokenEnum, TokenInterface,
		TokenExtend, TokenType, TokenMacro, TokenImport,
		TokenProp, TokenInit:
		return true
	}
	return false
}

// skipBalanced returns the index just past the token matching the opener
// at index i. Unbalanced input stops at EOF.
func (p *Parser) skipBalanced(i int, open, close TokenKind) int {
	depth := 0
	for ; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		case TokenEOF:
			return i
		}
	}
	return i
}
