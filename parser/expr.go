package parser

// probeLimit bounds every lookahead probe. A conflict site that has not
// resolved within this many tokens falls back to its first-listed
// candidate.
const probeLimit = 128

// parseExpression parses from the loosest tier, assignment, down.
func (p *Parser) parseExpression() *Node {
	return p.parseTier(len(PrecedenceLadder) - 1)
}

// parseTier parses one precedence tier by index into PrecedenceLadder.
// Tier 0 is unary, which is prefix rather than binary.
func (p *Parser) parseTier(tier int) *Node {
	if tier == 0 {
		return p.parseUnaryExpr()
	}
	level := PrecedenceLadder[tier]
	left := p.parseTier(tier - 1)

	if !p.operatorInLevel(level) {
		return left
	}

	switch level.Assoc {
	case AssocRight:
		op := p.operatorLeaf()
		p.skipNL()
		node := &Node{Kind: p.tierKind(level), Span: Span{Start: left.Span.Start}}
		node.AddField("left", left)
		node.AddField("operator", op)
		node.AddField("right", p.parseTier(tier))
		return p.finishNode(node)

	case AssocNone:
		node := p.parseNonAssoc(tier, level, left)
		return node

	default:
		for p.operatorInLevel(level) {
			op := p.operatorLeaf()
			p.skipNL()
			node := &Node{Kind: p.tierKind(level), Span: Span{Start: left.Span.Start}}
			node.AddField("left", left)
			node.AddField("operator", op)
			node.AddField("right", p.parseTier(tier-1))
			left = p.finishNode(node)
		}
		return left
	}
}

// parseNonAssoc parses a single application of a non-associative tier and
// contains any chained use in an ERROR node so the statement keeps its
// shape.
func (p *Parser) parseNonAssoc(tier int, level PrecedenceLevel, left *Node) *Node {
	node := p.applyNonAssocOp(tier, level, left)
	for p.operatorInLevel(level) {
		bad := p.peek()
		p.errs = append(p.errs, Diagnostic{
			Kind:    DiagNonAssociative,
			Span:    bad.Span,
			Message: "operator " + bad.Kind.String() + " is non-associative and cannot be chained",
		})
		wrap := &Node{
			Kind: KindError,
			Span: Span{Start: node.Span.Start},
			Err: &NodeError{
				Message: "non-associative operator chained",
				Got:     &bad,
			},
		}
		wrap.AddChild(node)
		node = p.applyNonAssocOp(tier, level, wrap)
		if node == wrap {
			break
		}
	}
	return node
}

func (p *Parser) applyNonAssocOp(tier int, level PrecedenceLevel, left *Node) *Node {
	if !p.operatorInLevel(level) {
		return left
	}
	opTok := p.peek()
	op := p.operatorLeaf()
	p.skipNL()

	switch opTok.Kind {
	case TokenIs, TokenAs:
		kind := KindIsExpr
		if opTok.Kind == TokenAs {
			kind = KindAsExpr
		}
		node := &Node{Kind: kind, Span: Span{Start: left.Span.Start}}
		node.AddField("value", left)
		node.AddField("type", p.parseType())
		return p.finishNode(node)
	case TokenRange, TokenRangeEq:
		node := &Node{Kind: KindRangeExpr, Span: Span{Start: left.Span.Start}}
		node.AddField("start", left)
		node.AddField("operator", op)
		node.AddField("end", p.parseTier(tier-1))
		return p.finishNode(node)
	}
	node := &Node{Kind: KindBinaryExpr, Span: Span{Start: left.Span.Start}}
	node.AddField("left", left)
	node.AddField("operator", op)
	node.AddField("right", p.parseTier(tier-1))
	return p.finishNode(node)
}

func (p *Parser) tierKind(level PrecedenceLevel) NodeKind {
	if level.Rank == 16 {
		return KindAssignExpr
	}
	return KindBinaryExpr
}

func (p *Parser) operatorInLevel(level PrecedenceLevel) bool {
	kind := p.peek().Kind
	for _, op := range level.Operators {
		if op == kind {
			return true
		}
	}
	return false
}

func (p *Parser) operatorLeaf() *Node {
	tok := p.advance()
	return &Node{Kind: KindOperator, Token: &tok, Span: tok.Span}
}

func (p *Parser) parseUnaryExpr() *Node {
	if p.match(TokenMinus, TokenNot) {
		node := p.startNode(KindUnaryExpr)
		node.AddField("operator", p.operatorLeaf())
		node.AddField("operand", p.parseUnaryExpr())
		return p.finishNode(node)
	}
	return p.parsePostfixExpr()
}

// parsePostfixExpr parses a primary followed by member access, calls,
// indexing, increment/decrement and generic-call suffixes.
func (p *Parser) parsePostfixExpr() *Node {
	left := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case TokenDot, TokenQuestionDot:
			op := p.advance()
			node := &Node{Kind: KindMemberAccess, Span: Span{Start: left.Span.Start}}
			node.AddField("object", left)
			if op.Kind == TokenQuestionDot {
				node.AddField("operator", &Node{Kind: KindOperator, Token: &op, Span: op.Span})
			}
			switch p.peek().Kind {
			case TokenIdent, TokenIntLiteral:
				node.AddField("field", p.leaf(KindIdentifier))
			default:
				node.AddChild(p.errorNode("expected member name after "+op.Kind.String(),
					[]TokenKind{TokenNewline, TokenSemicolon, TokenRBrace}, TokenIdent))
			}
			left = p.finishNode(node)

		case TokenLParen:
			node := &Node{Kind: KindCallExpr, Span: Span{Start: left.Span.Start}}
			node.AddField("function", left)
			node.AddField("arguments", p.parseArguments())
			if p.check(TokenLBrace) {
				node.AddField("trailing_lambda", p.parseTrailingLambda())
			}
			left = p.finishNode(node)

		case TokenLBracket:
			node := &Node{Kind: KindIndexExpr, Span: Span{Start: left.Span.Start}}
			node.AddField("object", left)
			p.advance()
			p.parenDepth++
			node.AddField("index", p.parseExpression())
			for p.check(TokenComma) {
				p.advance()
				node.AddChild(p.parseExpression())
			}
			p.parenDepth--
			p.expect(TokenRBracket)
			left = p.finishNode(node)

		case TokenIncrement, TokenDecrement:
			node := &Node{Kind: KindPostfixExpr, Span: Span{Start: left.Span.Start}}
			node.AddField("operand", left)
			node.AddField("operator", p.operatorLeaf())
			left = p.finishNode(node)

		case TokenLT:
			if !p.probeTypeArguments() {
				return left
			}
			typeArgs := p.parseTypeArguments()
			node := &Node{Kind: KindCallExpr, Span: Span{Start: left.Span.Start}}
			node.AddField("function", left)
			node.AddField("type_arguments", typeArgs)
			if p.check(TokenLParen) {
				node.AddField("arguments", p.parseArguments())
			}
			if p.check(TokenLBrace) {
				node.AddField("trailing_lambda", p.parseTrailingLambda())
			}
			left = p.finishNode(node)

		case TokenLBrace:
			if !isCallee(left) || !preferFirst(conflictTrailingLambda, KindTrailingLambda) {
				return left
			}
			node := &Node{Kind: KindCallExpr, Span: Span{Start: left.Span.Start}}
			node.AddField("function", left)
			node.AddField("trailing_lambda", p.parseTrailingLambda())
			left = p.finishNode(node)

		default:
			return left
		}
	}
}

// isCallee reports whether a trailing-lambda brace may attach to the
// expression. Restricting the shapes keeps blocks of control constructs
// out of reach.
func isCallee(n *Node) bool {
	switch n.Kind {
	case KindIdentifier, KindMemberAccess, KindCallExpr, KindIndexExpr:
		return true
	}
	return false
}

// probeTypeArguments decides the generic-call-versus-comparison conflict
// for "foo<...". It scans raw tokens for a well-formed type argument list
// whose closing angle is immediately followed by "(". A token no type
// argument list may contain resolves to comparison; exhausting the probe
// limit is inconclusive and falls to the declared candidate order.
func (p *Parser) probeTypeArguments() bool {
	p.sync()
	i := p.pos
	if i >= len(p.tokens) || p.tokens[i].Kind != TokenLT {
		return false
	}
	depth := 0
	for steps := 0; i < len(p.tokens) && steps < probeLimit; steps++ {
		switch p.tokens[i].Kind {
		case TokenLT:
			depth++
		case TokenGT:
			depth--
		case TokenShr:
			depth -= 2
		case TokenIdent, TokenDot, TokenComma, TokenQuestion,
			TokenLParen, TokenRParen, TokenArrow, TokenNewline,
			TokenUnderscore:
			// Tokens a type argument list may contain.
		default:
			return false
		}
		if depth <= 0 {
			i++
			for i < len(p.tokens) && p.tokens[i].Kind == TokenNewline {
				i++
			}
			return i < len(p.tokens) && p.tokens[i].Kind == TokenLParen
		}
		i++
	}
	return preferFirst(conflictTypeArgsVsLess, KindGenericType)
}

// parseArguments parses a parenthesized argument list. "name: value"
// arguments keep the name in a field.
func (p *Parser) parseArguments() *Node {
	node := p.startNode(KindArguments)
	p.expect(TokenLParen)
	p.parenDepth++
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseArgument())
		if p.check(TokenComma) {
			p.advance()
		} else if !p.check(TokenRParen) {
			node.AddChild(p.errorNode("expected , or ) in argument list",
				[]TokenKind{TokenComma, TokenRParen}, TokenComma, TokenRParen))
		}
		if !progress() {
			break
		}
	}
	p.parenDepth--
	p.expect(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseArgument() *Node {
	node := p.startNode(KindArgument)
	if p.check(TokenIdent) && p.peekN(1).Kind == TokenColon {
		name := p.advance()
		node.AddField("name", &Node{Kind: KindIdentifier, Token: &name, Span: name.Span})
		p.expect(TokenColon)
	}
	if p.check(TokenIdent) && p.peek().Literal == "inout" {
		node.AddChild(p.leaf(KindIdentifier))
	}
	node.AddField("value", p.parseExpression())
	return p.finishNode(node)
}

func (p *Parser) parseTrailingLambda() *Node {
	node := p.startNode(KindTrailingLambda)
	node.AddField("lambda", p.parseLambdaExpr())
	return p.finishNode(node)
}

func (p *Parser) parsePrimary() *Node {
	switch p.peek().Kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenRuneLiteral,
		TokenStringLiteral, TokenMultilineString, TokenRawString,
		TokenTrue, TokenFalse:
		if d := p.literalError(p.peek()); d != nil {
			tok := p.advance()
			return &Node{
				Kind: KindError,
				Span: tok.Span,
				Err:  &NodeError{Message: d.Message, Got: &tok},
			}
		}
		return p.leaf(KindLiteral)
	case TokenIdent:
		return p.leaf(KindIdentifier)
	case TokenUnderscore:
		return p.leaf(KindIdentifier)
	case TokenThis:
		return p.leaf(KindThis)
	case TokenSuper:
		return p.leaf(KindSuper)
	case TokenLParen:
		return p.parseParenForm()
	case TokenLBracket:
		return p.parseArrayLiteral()
	case TokenLBrace:
		return p.parseLambdaExpr()
	case TokenIf:
		return p.parseIfExpr()
	case TokenMatch:
		return p.parseMatchExpr()
	case TokenWhile:
		return p.parseWhileExpr()
	case TokenDo:
		return p.parseDoWhileExpr()
	case TokenFor:
		return p.parseForInExpr()
	case TokenTry:
		return p.parseTryExpr()
	case TokenSpawn:
		return p.parseSpawnExpr()
	case TokenSynchronized:
		return p.parseSynchronizedExpr()
	case TokenQuote:
		return p.parseQuoteExpr()
	case TokenUnsafe:
		return p.parseUnsafeExpr()
	case TokenReturn:
		return p.parseReturnExpr()
	case TokenBreak:
		return p.leaf(KindBreakExpr)
	case TokenContinue:
		return p.leaf(KindContinueExpr)
	case TokenThrow:
		return p.parseThrowExpr()
	}
	return p.errorNode("expected expression, got "+p.peek().Kind.String(),
		[]TokenKind{TokenNewline, TokenSemicolon, TokenRBrace, TokenRParen, TokenComma})
}

// parseParenForm disambiguates "()", "(e)" and "(a, b)": unit literal,
// parenthesized expression and tuple.
func (p *Parser) parseParenForm() *Node {
	node := p.startNode(KindParenExpr)
	p.expect(TokenLParen)
	p.parenDepth++
	if p.check(TokenRParen) {
		p.parenDepth--
		p.advance()
		node.Kind = KindUnitLiteral
		return p.finishNode(node)
	}
	node.AddChild(p.parseExpression())
	for p.check(TokenComma) {
		node.Kind = KindTupleExpr
		p.advance()
		if p.check(TokenRParen) {
			break
		}
		node.AddChild(p.parseExpression())
	}
	p.parenDepth--
	p.expect(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseArrayLiteral() *Node {
	node := p.startNode(KindArrayLiteral)
	p.expect(TokenLBracket)
	p.parenDepth++
	for !p.check(TokenRBracket) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseExpression())
		if p.check(TokenComma) {
			p.advance()
		}
		if !progress() {
			break
		}
	}
	p.parenDepth--
	p.expect(TokenRBracket)
	return p.finishNode(node)
}

// parseLambdaExpr parses "{ params => body }" and the parameterless
// "{ body }" form. The parameter probe looks for "=>" before anything a
// parameter list could not contain.
func (p *Parser) parseLambdaExpr() *Node {
	node := p.startNode(KindLambdaExpr)
	p.expect(TokenLBrace)
	p.skipNL()

	if p.probeLambdaParams() {
		params := p.startNode(KindParameters)
		for !p.check(TokenFatArrow) && !p.check(TokenEOF) {
			progress := p.mustProgress()
			param := p.startNode(KindParameter)
			switch p.peek().Kind {
			case TokenIdent:
				param.AddField("name", p.leaf(KindIdentifier))
			case TokenUnderscore:
				param.AddField("name", p.leaf(KindWildcardPattern))
			default:
				params.AddChild(p.errorNode("expected lambda parameter",
					[]TokenKind{TokenComma, TokenFatArrow}, TokenIdent))
				continue
			}
			if p.check(TokenColon) {
				p.advance()
				param.AddField("type", p.parseType())
			}
			params.AddChild(p.finishNode(param))
			if p.check(TokenComma) {
				p.advance()
			}
			if !progress() {
				break
			}
		}
		node.AddField("parameters", p.finishNode(params))
		p.expect(TokenFatArrow)
		p.skipNL()
	} else if p.check(TokenFatArrow) {
		node.AddField("parameters", p.finishNode(p.startNode(KindParameters)))
		p.advance()
		p.skipNL()
	}

	body := p.startNode(KindBlock)
	p.skipNewlines()
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		body.AddChild(p.parseStatement())
		p.skipNewlines()
		if !progress() {
			break
		}
	}
	node.AddField("body", p.finishNode(body))
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

// probeLambdaParams reports whether a "=>" closes a parameter list ahead
// of the cursor.
func (p *Parser) probeLambdaParams() bool {
	i := p.pos
	for steps := 0; i < len(p.tokens) && steps < probeLimit; steps++ {
		switch p.tokens[i].Kind {
		case TokenFatArrow:
			return i > p.pos
		case TokenIdent, TokenUnderscore, TokenComma, TokenColon,
			TokenQuestion, TokenDot, TokenLT, TokenGT, TokenShr,
			TokenLParen, TokenRParen, TokenArrow, TokenNewline:
			// Tokens a parameter list may contain.
		default:
			return false
		}
		i++
	}
	return false
}

func (p *Parser) parseIfExpr() *Node {
	node := p.startNode(KindIfExpr)
	p.expect(TokenIf)
	p.expect(TokenLParen)
	p.parenDepth++
	node.AddField("condition", p.parseCondition())
	p.parenDepth--
	p.expect(TokenRParen)
	node.AddField("consequence", p.parseBlock())
	if p.check(TokenElse) {
		p.advance()
		if p.check(TokenIf) {
			node.AddField("alternative", p.parseIfExpr())
		} else {
			node.AddField("alternative", p.parseBlock())
		}
	}
	return p.finishNode(node)
}

// parseCondition handles the "let pattern <- expr" binding condition of
// if and while alongside plain boolean expressions.
func (p *Parser) parseCondition() *Node {
	if p.check(TokenLet) {
		node := p.startNode(KindVarDecl)
		kw := p.advance()
		node.Token = &kw
		node.AddField("pattern", p.parsePattern())
		// The binding arrow "<-" arrives as two tokens.
		if p.expect(TokenLT) != nil {
			p.expect(TokenMinus)
			node.AddField("value", p.parseExpression())
		} else if p.expect(TokenAssign) != nil {
			node.AddField("value", p.parseExpression())
		}
		return p.finishNode(node)
	}
	return p.parseExpression()
}

func (p *Parser) parseMatchExpr() *Node {
	node := p.startNode(KindMatchExpr)
	p.expect(TokenMatch)
	if p.check(TokenLParen) {
		p.advance()
		p.parenDepth++
		node.AddField("value", p.parseExpression())
		p.parenDepth--
		p.expect(TokenRParen)
	}
	if !p.check(TokenLBrace) {
		node.AddChild(p.errorNode("expected match body", declSync, TokenLBrace))
		return p.finishNode(node)
	}
	p.advance()
	p.skipNewlines()
	for p.check(TokenCase) {
		progress := p.mustProgress()
		node.AddChild(p.parseMatchCase())
		p.skipNewlines()
		if !progress() {
			break
		}
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

// parseMatchCase parses "case pattern | pattern where guard => body". The
// body runs until the next case or the closing brace.
func (p *Parser) parseMatchCase() *Node {
	node := p.startNode(KindMatchCase)
	p.expect(TokenCase)
	node.AddField("pattern", p.parsePattern())
	for p.check(TokenBitOr) {
		p.advance()
		p.skipNL()
		node.AddChild(p.parsePattern())
	}
	if p.check(TokenWhere) {
		p.advance()
		node.AddField("guard", p.parseExpression())
	}
	p.expect(TokenFatArrow)
	p.skipNL()

	body := p.startNode(KindBlock)
	for !p.check(TokenCase) && !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		body.AddChild(p.parseStatement())
		p.skipNewlines()
		if !progress() {
			break
		}
	}
	node.AddField("body", p.finishNode(body))
	return p.finishNode(node)
}

func (p *Parser) parseWhileExpr() *Node {
	node := p.startNode(KindWhileExpr)
	p.expect(TokenWhile)
	p.expect(TokenLParen)
	p.parenDepth++
	node.AddField("condition", p.parseCondition())
	p.parenDepth--
	p.expect(TokenRParen)
	node.AddField("body", p.parseBlock())
	return p.finishNode(node)
}

func (p *Parser) parseDoWhileExpr() *Node {
	node := p.startNode(KindDoWhileExpr)
	p.expect(TokenDo)
	node.AddField("body", p.parseBlock())
	p.expect(TokenWhile)
	p.expect(TokenLParen)
	p.parenDepth++
	node.AddField("condition", p.parseExpression())
	p.parenDepth--
	p.expect(TokenRParen)
	return p.finishNode(node)
}

// parseForInExpr parses "for (pattern in iterable where guard) body".
func (p *Parser) parseForInExpr() *Node {
	node := p.startNode(KindForInExpr)
	p.expect(TokenFor)
	p.expect(TokenLParen)
	p.parenDepth++
	node.AddField("pattern", p.parsePattern())
	p.expect(TokenIn)
	node.AddField("iterable", p.parseExpression())
	if p.check(TokenWhere) {
		p.advance()
		node.AddField("guard", p.parseExpression())
	}
	p.parenDepth--
	p.expect(TokenRParen)
	node.AddField("body", p.parseBlock())
	return p.finishNode(node)
}

func (p *Parser) parseTryExpr() *Node {
	node := p.startNode(KindTryExpr)
	p.expect(TokenTry)
	if p.check(TokenLParen) {
		p.advance()
		p.parenDepth++
		node.AddField("resources", p.parseCondition())
		p.parenDepth--
		p.expect(TokenRParen)
	}
	node.AddField("body", p.parseBlock())
	for p.check(TokenCatch) {
		clause := p.startNode(KindCatchClause)
		p.advance()
		if p.check(TokenLParen) {
			p.advance()
			p.parenDepth++
			clause.AddField("pattern", p.parsePattern())
			p.parenDepth--
			p.expect(TokenRParen)
		}
		clause.AddField("body", p.parseBlock())
		node.AddChild(p.finishNode(clause))
	}
	if p.check(TokenFinally) {
		clause := p.startNode(KindFinallyClause)
		p.advance()
		clause.AddField("body", p.parseBlock())
		node.AddField("finally", p.finishNode(clause))
	}
	return p.finishNode(node)
}

func (p *Parser) parseSpawnExpr() *Node {
	node := p.startNode(KindSpawnExpr)
	p.expect(TokenSpawn)
	if p.check(TokenLParen) {
		p.advance()
		p.parenDepth++
		node.AddField("context", p.parseExpression())
		p.parenDepth--
		p.expect(TokenRParen)
	}
	node.AddField("body", p.parseLambdaExpr())
	return p.finishNode(node)
}

func (p *Parser) parseSynchronizedExpr() *Node {
	node := p.startNode(KindSynchronizedExpr)
	p.expect(TokenSynchronized)
	p.expect(TokenLParen)
	p.parenDepth++
	node.AddField("mutex", p.parseExpression())
	p.parenDepth--
	p.expect(TokenRParen)
	node.AddField("body", p.parseBlock())
	return p.finishNode(node)
}

// parseQuoteExpr captures the quoted token stream verbatim: the body is
// not parsed as Cangjie, only bracket-balanced.
func (p *Parser) parseQuoteExpr() *Node {
	node := p.startNode(KindQuoteExpr)
	p.expect(TokenQuote)
	open := p.peek().Kind
	var closer TokenKind
	switch open {
	case TokenLParen:
		closer = TokenRParen
	case TokenLBrace:
		closer = TokenRBrace
	default:
		node.AddChild(p.errorNode("expected ( or { after quote",
			[]TokenKind{TokenNewline, TokenSemicolon, TokenRBrace}, TokenLParen, TokenLBrace))
		return p.finishNode(node)
	}
	p.advance()
	depth := 1
	for depth > 0 && !p.check(TokenEOF) {
		switch p.peek().Kind {
		case open:
			depth++
		case closer:
			depth--
		}
		p.advance()
	}
	return p.finishNode(node)
}

func (p *Parser) parseUnsafeExpr() *Node {
	node := p.startNode(KindUnsafeExpr)
	p.expect(TokenUnsafe)
	node.AddField("body", p.parseBlock())
	return p.finishNode(node)
}

func (p *Parser) parseReturnExpr() *Node {
	node := p.startNode(KindReturnExpr)
	p.expect(TokenReturn)
	switch p.peek().Kind {
	case TokenNewline, TokenSemicolon, TokenRBrace, TokenRParen, TokenEOF, TokenComma:
	default:
		node.AddField("value", p.parseExpression())
	}
	return p.finishNode(node)
}

func (p *Parser) parseThrowExpr() *Node {
	node := p.startNode(KindThrowExpr)
	p.expect(TokenThrow)
	node.AddField("value", p.parseExpression())
	return p.finishNode(node)
}
