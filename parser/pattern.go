package parser

// parsePattern parses a match or binding pattern, including an optional
// ": Type" suffix which wraps the result in a type pattern.
func (p *Parser) parsePattern() *Node {
	pat := p.parsePatternNoType()
	if p.check(TokenColon) {
		node := &Node{Kind: KindTypePattern, Span: Span{Start: pat.Span.Start}}
		node.AddField("pattern", pat)
		p.advance()
		node.AddField("type", p.parseType())
		return p.finishNode(node)
	}
	return pat
}

func (p *Parser) parsePatternNoType() *Node {
	switch p.peek().Kind {
	case TokenUnderscore:
		return p.leaf(KindWildcardPattern)

	case TokenIntLiteral, TokenFloatLiteral, TokenRuneLiteral,
		TokenStringLiteral, TokenMultilineString, TokenRawString,
		TokenTrue, TokenFalse:
		return p.leaf(KindConstantPattern)

	case TokenMinus:
		// Negative numeric constants.
		node := p.startNode(KindConstantPattern)
		p.advance()
		if p.match(TokenIntLiteral, TokenFloatLiteral) {
			tok := p.advance()
			node.Token = &tok
		}
		return p.finishNode(node)

	case TokenLParen:
		return p.parseTuplePattern()

	case TokenLBracket:
		return p.parseArrayPattern()

	case TokenIdent:
		return p.parseNamePattern()
	}
	return p.errorNode("expected pattern, got "+p.peek().Kind.String(),
		[]TokenKind{TokenFatArrow, TokenComma, TokenRParen, TokenNewline})
}

// parseTuplePattern parses "(a, b)" and the degenerate "(a)", which stays
// a tuple of one so destructuring keeps a uniform shape.
func (p *Parser) parseTuplePattern() *Node {
	node := p.startNode(KindTuplePattern)
	p.expect(TokenLParen)
	p.parenDepth++
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parsePattern())
		if p.check(TokenComma) {
			p.advance()
		}
		if !progress() {
			break
		}
	}
	p.parenDepth--
	p.expect(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseArrayPattern() *Node {
	node := p.startNode(KindArrayPattern)
	p.expect(TokenLBracket)
	p.parenDepth++
	for !p.check(TokenRBracket) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		if p.check(TokenEllipsis) {
			node.AddChild(p.leaf(KindWildcardPattern))
		} else {
			node.AddChild(p.parsePattern())
		}
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

// parseNamePattern decides between a plain binding, an enum constructor
// pattern and a struct pattern. A name followed by "(", "." or "{" is a
// constructor form; otherwise it binds.
func (p *Parser) parseNamePattern() *Node {
	switch p.peekN(1).Kind {
	case TokenLParen:
		return p.parseEnumPattern()
	case TokenDot:
		return p.parseEnumPattern()
	case TokenLBrace:
		return p.parseStructPattern()
	}
	return p.leaf(KindBindingPattern)
}

// parseEnumPattern parses "Some(x)", "Result.Ok(v)" and bare qualified
// constructors like "Color.Red".
func (p *Parser) parseEnumPattern() *Node {
	node := p.startNode(KindEnumPattern)
	node.AddField("name", p.parseQualifiedName())
	if p.check(TokenLParen) {
		args := p.startNode(KindTuplePattern)
		p.advance()
		p.parenDepth++
		for !p.check(TokenRParen) && !p.check(TokenEOF) {
			progress := p.mustProgress()
			args.AddChild(p.parsePattern())
			if p.check(TokenComma) {
				p.advance()
			}
			if !progress() {
				break
			}
		}
		p.parenDepth--
		p.expect(TokenRParen)
		node.AddField("arguments", p.finishNode(args))
	}
	return p.finishNode(node)
}

// parseStructPattern parses "Point { x: px, y }".
func (p *Parser) parseStructPattern() *Node {
	node := p.startNode(KindStructPattern)
	node.AddField("name", p.parseQualifiedName())
	p.expect(TokenLBrace)
	p.parenDepth++
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		field := p.startNode(KindFieldPattern)
		if id := p.identNode(); id != nil {
			field.AddField("name", id)
		} else {
			node.AddChild(p.errorNode("expected field name",
				[]TokenKind{TokenComma, TokenRBrace}, TokenIdent))
			continue
		}
		if p.check(TokenColon) {
			p.advance()
			field.AddField("pattern", p.parsePattern())
		}
		node.AddChild(p.finishNode(field))
		if p.check(TokenComma) {
			p.advance()
		}
		if !progress() {
			break
		}
	}
	p.parenDepth--
	p.expect(TokenRBrace)
	return p.finishNode(node)
}
