package parser

// parseType parses a type expression: named and qualified types, generic
// instantiations, tuple and function types, and "?T" options.
func (p *Parser) parseType() *Node {
	switch p.peek().Kind {
	case TokenQuestion:
		node := p.startNode(KindOptionType)
		p.advance()
		node.AddField("type", p.parseType())
		return p.finishNode(node)

	case TokenLParen:
		return p.parseParenOrFuncType()

	case TokenIdent:
		return p.parseNamedType()

	case TokenThis:
		// "This" as a return type of open class methods.
		return p.leaf(KindTypeRef)
	}
	return p.errorNode("expected type, got "+p.peek().Kind.String(),
		[]TokenKind{TokenNewline, TokenSemicolon, TokenComma, TokenRParen, TokenRBrace, TokenGT, TokenAssign, TokenLBrace})
}

// parseNamedType parses "a.b.C<X, Y>" with any mix of qualification and
// generic arguments.
func (p *Parser) parseNamedType() *Node {
	node := p.startNode(KindTypeRef)
	tok := p.advance()
	node.Token = &tok
	p.finishNode(node)

	for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
		qual := &Node{Kind: KindQualifiedType, Span: Span{Start: node.Span.Start}}
		qual.AddField("package", node)
		p.advance()
		name := p.advance()
		qual.AddField("name", &Node{Kind: KindTypeRef, Token: &name, Span: name.Span})
		node = p.finishNode(qual)
	}

	if p.check(TokenLT) {
		generic := &Node{Kind: KindGenericType, Span: Span{Start: node.Span.Start}}
		generic.AddField("type", node)
		generic.AddField("arguments", p.parseTypeArguments())
		node = p.finishNode(generic)
	}
	return node
}

// parseTypeArguments parses "<T, U>". The closing angle may be half of a
// ">>" token when generic lists nest.
func (p *Parser) parseTypeArguments() *Node {
	node := p.startNode(KindTypeArguments)
	p.expect(TokenLT)
	p.parenDepth++
	for !p.atCloseAngle() && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseType())
		if p.check(TokenComma) {
			p.advance()
		}
		if !progress() {
			break
		}
	}
	p.parenDepth--
	p.expectCloseAngle()
	return p.finishNode(node)
}

func (p *Parser) atCloseAngle() bool {
	switch p.peek().Kind {
	case TokenGT, TokenShr, TokenGE, TokenShrAssign:
		return true
	}
	return false
}

// expectCloseAngle consumes one closing ">". When the lexer produced a
// compound token starting with ">", the token is split in place: the
// leading angle closes this list and the remainder stays current for the
// enclosing context.
func (p *Parser) expectCloseAngle() {
	p.sync()
	if p.pos >= len(p.tokens) {
		return
	}
	tok := p.tokens[p.pos]
	switch tok.Kind {
	case TokenGT:
		p.pos++
	case TokenShr:
		p.tokens[p.pos] = Token{
			Kind:    TokenGT,
			Span:    Span{Start: tok.Span.Start + 1, End: tok.Span.End},
			Literal: ">",
		}
	case TokenGE:
		p.tokens[p.pos] = Token{
			Kind:    TokenAssign,
			Span:    Span{Start: tok.Span.Start + 1, End: tok.Span.End},
			Literal: "=",
		}
	case TokenShrAssign:
		p.tokens[p.pos] = Token{
			Kind:    TokenGE,
			Span:    Span{Start: tok.Span.Start + 1, End: tok.Span.End},
			Literal: ">=",
		}
	default:
		p.errs = append(p.errs, Diagnostic{
			Kind:    DiagUnexpectedToken,
			Span:    tok.Span,
			Message: "expected > to close type arguments, got " + tok.Kind.String(),
		})
	}
}

// parseParenOrFuncType parses "()", "(T)", "(T, U)" and the function
// forms "(T) -> U".
func (p *Parser) parseParenOrFuncType() *Node {
	node := p.startNode(KindParenType)
	p.expect(TokenLParen)
	p.parenDepth++
	var elems []*Node
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		elems = append(elems, p.parseType())
		if p.check(TokenComma) {
			p.advance()
		}
		if !progress() {
			break
		}
	}
	p.parenDepth--
	p.expect(TokenRParen)

	if p.check(TokenArrow) {
		fn := &Node{Kind: KindFuncType, Span: node.Span}
		params := &Node{Kind: KindTupleType, Span: node.Span}
		for _, e := range elems {
			params.AddChild(e)
		}
		p.finishNode(params)
		fn.AddField("parameters", params)
		p.advance()
		fn.AddField("return_type", p.parseType())
		return p.finishNode(fn)
	}

	switch len(elems) {
	case 0:
		node.Kind = KindTupleType
	case 1:
		node.AddChild(elems[0])
	default:
		node.Kind = KindTupleType
		for _, e := range elems {
			node.AddChild(e)
		}
	}
	return p.finishNode(node)
}
