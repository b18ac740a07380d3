package parser

// parseDecl dispatches on the keyword after any annotation and modifier
// prefix. Anything that is not a declaration falls through to an
// expression statement.
func (p *Parser) parseDecl() *Node {
	if p.check(TokenAt) {
		return p.parseAnnotated()
	}
	var mods *Node
	if p.peek().Kind.IsModifier() && !p.modifierIsExprStart() {
		mods = p.parseModifiers()
	}
	return p.parseDeclBody(mods)
}

// modifierIsExprStart recognizes the modifier keywords that open
// expressions or declarations of their own: "unsafe {" and "const x".
func (p *Parser) modifierIsExprStart() bool {
	switch p.peek().Kind {
	case TokenUnsafe:
		return p.peekN(1).Kind == TokenLBrace
	case TokenConst:
		switch p.peekN(1).Kind {
		case TokenIdent, TokenUnderscore, TokenLParen:
			return true
		}
	}
	return false
}

// parseAnnotated wraps a declaration in its annotation or macro
// invocation prefix. A bare annotation followed by a non-declaration is a
// macro invocation over the next item.
func (p *Parser) parseAnnotated() *Node {
	ann := p.parseAnnotation()
	p.skipNL()
	if p.check(TokenEOF) || p.check(TokenRBrace) {
		return ann
	}
	inner := p.parseDecl()
	if ann.Kind == KindMacroInvocation {
		ann.AddField("item", inner)
		return p.finishNode(ann)
	}
	inner.Children = append([]*Node{ann}, inner.Children...)
	if inner.Fields != nil {
		for name, idx := range inner.Fields {
			inner.Fields[name] = idx + 1
		}
	}
	inner.Fields = addFieldIndex(inner.Fields, "annotation", 0)
	if ann.Span.Start < inner.Span.Start {
		inner.Span.Start = ann.Span.Start
	}
	return inner
}

func addFieldIndex(fields map[string]int, name string, idx int) map[string]int {
	if fields == nil {
		fields = make(map[string]int)
	}
	fields[name] = idx
	return fields
}

// parseAnnotation parses @Name or @Name(...) or @Name[...]. Attribute
// macros carry bracket arguments, which makes them invocations rather
// than plain annotations.
func (p *Parser) parseAnnotation() *Node {
	node := p.startNode(KindAnnotation)
	p.expect(TokenAt)
	if id := p.identNode(); id != nil {
		node.AddField("name", id)
	} else {
		return p.errorNode("expected annotation name", declSync, TokenIdent)
	}
	if p.check(TokenLBracket) {
		node.Kind = KindMacroInvocation
		node.AddField("attributes", p.parseBracketGroup())
	}
	if p.check(TokenLParen) {
		node.AddField("arguments", p.parseArguments())
	}
	return p.finishNode(node)
}

func (p *Parser) parseBracketGroup() *Node {
	node := p.startNode(KindArguments)
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

func (p *Parser) parseModifiers() *Node {
	node := p.startNode(KindModifiers)
	for p.peek().Kind.IsModifier() && !p.modifierIsExprStart() {
		node.AddChild(p.leaf(KindIdentifier))
	}
	return p.finishNode(node)
}

func (p *Parser) parseDeclBody(mods *Node) *Node {
	switch p.peek().Kind {
	case TokenLet, TokenVar, TokenConst:
		return p.parseVarDecl(mods)
	case TokenFunc:
		return p.parseFuncDecl(mods)
	case TokenMain:
		return p.parseMainDecl(mods)
	case TokenOperator:
		return p.parseOperatorDecl(mods)
	case TokenClass:
		return p.parseTypeDecl(mods, KindClassDecl, TokenClass)
	case TokenStruct:
		return p.parseTypeDecl(mods, KindStructDecl, TokenStruct)
	case TokenInterface:
		return p.parseTypeDecl(mods, KindInterfaceDecl, TokenInterface)
	case TokenEnum:
		return p.parseEnumDecl(mods)
	case TokenExtend:
		return p.parseExtendDecl(mods)
	case TokenType:
		return p.parseTypeAliasDecl(mods)
	case TokenMacro:
		return p.parseMacroDecl(mods)
	case TokenProp:
		return p.parsePropDecl(mods)
	case TokenInit:
		return p.parseInitDecl(mods)
	case TokenImport:
		return p.parseImportDecl()
	case TokenPackage:
		return p.parsePackageDecl()
	}
	if mods != nil {
		// Modifiers with no declaration behind them.
		return p.errorNode("expected declaration after modifiers", declSync)
	}
	node := p.startNode(KindExprStmt)
	node.AddField("expression", p.parseExpression())
	p.expectTerminator()
	return p.finishNode(node)
}

func attachModifiers(node *Node, mods *Node) {
	if mods == nil {
		return
	}
	node.AddField("modifiers", mods)
	if mods.Span.Start < node.Span.Start {
		node.Span.Start = mods.Span.Start
	}
}

// parseVarDecl parses let/var declarations. The left side is a full
// pattern so tuple and enum destructuring bind here too; a leading
// identifier with no following "(" is a plain binding.
func (p *Parser) parseVarDecl(mods *Node) *Node {
	node := p.startNode(KindVarDecl)
	attachModifiers(node, mods)
	kw := p.advance()
	node.Token = &kw

	node.AddField("pattern", p.parseBindingSite())

	if p.check(TokenColon) {
		p.advance()
		node.AddField("type", p.parseType())
	}
	if p.check(TokenAssign) {
		p.advance()
		p.skipNL()
		node.AddField("value", p.parseExpression())
	}
	p.expectTerminator()
	return p.finishNode(node)
}

// parseBindingSite parses the pattern position of a var declaration
// without consuming a ": Type" suffix, which belongs to the declaration.
func (p *Parser) parseBindingSite() *Node {
	switch p.peek().Kind {
	case TokenIdent:
		if p.peekN(1).Kind == TokenLParen || p.peekN(1).Kind == TokenDot {
			return p.parsePatternNoType()
		}
		return p.leaf(KindBindingPattern)
	case TokenUnderscore:
		return p.leaf(KindWildcardPattern)
	case TokenLParen, TokenLBracket:
		return p.parsePatternNoType()
	}
	return p.errorNode("expected binding pattern", declSync, TokenIdent)
}

func (p *Parser) parseFuncDecl(mods *Node) *Node {
	node := p.startNode(KindFuncDecl)
	attachModifiers(node, mods)
	p.expect(TokenFunc)
	if id := p.identNode(); id != nil {
		node.AddField("name", id)
	} else {
		node.AddChild(p.errorNode("expected function name", []TokenKind{TokenLParen, TokenLBrace}, TokenIdent))
	}
	p.parseFuncTail(node)
	return p.finishNode(node)
}

// parseFuncTail parses the shared suffix of function-like declarations:
// type parameters, parameter list, return type, where clause and body.
func (p *Parser) parseFuncTail(node *Node) {
	if p.check(TokenLT) {
		node.AddField("type_parameters", p.parseTypeParameters())
	}
	if p.check(TokenLParen) {
		node.AddField("parameters", p.parseParameters())
	}
	if p.check(TokenColon) {
		p.advance()
		node.AddField("return_type", p.parseType())
	}
	if p.check(TokenWhere) {
		node.AddField("constraints", p.parseGenericConstraints())
	}
	if p.check(TokenLBrace) {
		node.AddField("body", p.parseBlock())
	} else {
		p.expectTerminator()
	}
}

func (p *Parser) parseMainDecl(mods *Node) *Node {
	node := p.startNode(KindMainDecl)
	attachModifiers(node, mods)
	p.expect(TokenMain)
	if p.check(TokenLParen) {
		node.AddField("parameters", p.parseParameters())
	}
	if p.check(TokenColon) {
		p.advance()
		node.AddField("return_type", p.parseType())
	}
	node.AddField("body", p.parseBlock())
	return p.finishNode(node)
}

// parseOperatorDecl parses "operator func +(rhs: T): T { ... }". The
// operator token itself names the declaration.
func (p *Parser) parseOperatorDecl(mods *Node) *Node {
	node := p.startNode(KindOperatorDecl)
	attachModifiers(node, mods)
	p.expect(TokenOperator)
	p.expect(TokenFunc)
	op := p.advance()
	node.AddField("name", &Node{Kind: KindIdentifier, Token: &op, Span: op.Span})
	// Index operator "[]" arrives as two tokens.
	if op.Kind == TokenLBracket && p.check(TokenRBracket) {
		p.advance()
	}
	p.parseFuncTail(node)
	return p.finishNode(node)
}

func (p *Parser) parseTypeDecl(mods *Node, kind NodeKind, kw TokenKind) *Node {
	node := p.startNode(kind)
	attachModifiers(node, mods)
	p.expect(kw)
	if id := p.identNode(); id != nil {
		node.AddField("name", id)
	} else {
		node.AddChild(p.errorNode("expected type name", []TokenKind{TokenLBrace}, TokenIdent))
	}
	if p.check(TokenLT) {
		node.AddField("type_parameters", p.parseTypeParameters())
	}
	if p.check(TokenSubtype) {
		node.AddField("super_types", p.parseSuperTypes())
	}
	if p.check(TokenWhere) {
		node.AddField("constraints", p.parseGenericConstraints())
	}
	node.AddField("body", p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseSuperTypes() *Node {
	node := p.startNode(KindSuperTypes)
	p.expect(TokenSubtype)
	for {
		progress := p.mustProgress()
		node.AddChild(p.parseType())
		if !p.check(TokenBitAnd) {
			break
		}
		p.advance()
		p.skipNL()
		if !progress() {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseClassBody() *Node {
	node := p.startNode(KindClassBody)
	if !p.check(TokenLBrace) {
		return p.errorNode("expected body", declSync, TokenLBrace)
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

// parseEnumDecl parses an enum whose body lists |-separated constructor
// cases followed by ordinary member declarations.
func (p *Parser) parseEnumDecl(mods *Node) *Node {
	node := p.startNode(KindEnumDecl)
	attachModifiers(node, mods)
	p.expect(TokenEnum)
	if tok := p.expect(TokenIdent); tok != nil {
		node.AddField("name", &Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	if p.check(TokenLT) {
		node.AddField("type_parameters", p.parseTypeParameters())
	}
	if p.check(TokenSubtype) {
		node.AddField("super_types", p.parseSuperTypes())
	}
	node.AddField("body", p.parseEnumBody())
	return p.finishNode(node)
}

func (p *Parser) parseEnumBody() *Node {
	node := p.startNode(KindEnumBody)
	if !p.check(TokenLBrace) {
		return p.errorNode("expected enum body", declSync, TokenLBrace)
	}
	p.advance()
	p.skipNewlines()
	if p.check(TokenBitOr) {
		p.advance()
		p.skipNL()
	}
	for p.check(TokenIdent) {
		progress := p.mustProgress()
		node.AddChild(p.parseEnumCase())
		p.skipNewlines()
		if p.check(TokenBitOr) {
			p.advance()
			p.skipNL()
			continue
		}
		if !progress() {
			break
		}
		// A case on its own line without a leading pipe still belongs
		// to the case list only if the next token reads like one.
		next := p.peekN(1).Kind
		if next != TokenNewline && next != TokenBitOr && next != TokenLParen &&
			next != TokenRBrace && next != TokenSemicolon && next != TokenEOF {
			break
		}
	}
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

func (p *Parser) parseEnumCase() *Node {
	node := p.startNode(KindEnumCase)
	tok := p.advance()
	node.AddField("name", &Node{Kind: KindIdentifier, Token: &tok, Span: tok.Span})
	if p.check(TokenLParen) {
		params := p.startNode(KindTypeArguments)
		p.advance()
		p.parenDepth++
		for !p.check(TokenRParen) && !p.check(TokenEOF) {
			progress := p.mustProgress()
			params.AddChild(p.parseType())
			if p.check(TokenComma) {
				p.advance()
			}
			if !progress() {
				break
			}
		}
		p.parenDepth--
		p.expect(TokenRParen)
		node.AddField("parameters", p.finishNode(params))
	}
	return p.finishNode(node)
}

func (p *Parser) parseExtendDecl(mods *Node) *Node {
	node := p.startNode(KindExtendDecl)
	attachModifiers(node, mods)
	p.expect(TokenExtend)
	if p.check(TokenLT) {
		node.AddField("type_parameters", p.parseTypeParameters())
	}
	node.AddField("type", p.parseType())
	if p.check(TokenSubtype) {
		node.AddField("super_types", p.parseSuperTypes())
	}
	if p.check(TokenWhere) {
		node.AddField("constraints", p.parseGenericConstraints())
	}
	node.AddField("body", p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseTypeAliasDecl(mods *Node) *Node {
	node := p.startNode(KindTypeAliasDecl)
	attachModifiers(node, mods)
	p.expect(TokenType)
	if tok := p.expect(TokenIdent); tok != nil {
		node.AddField("name", &Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	if p.check(TokenLT) {
		node.AddField("type_parameters", p.parseTypeParameters())
	}
	if p.expect(TokenAssign) != nil {
		node.AddField("value", p.parseType())
	}
	p.expectTerminator()
	return p.finishNode(node)
}

func (p *Parser) parseMacroDecl(mods *Node) *Node {
	node := p.startNode(KindMacroDecl)
	attachModifiers(node, mods)
	p.expect(TokenMacro)
	if tok := p.expect(TokenIdent); tok != nil {
		node.AddField("name", &Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	p.parseFuncTail(node)
	return p.finishNode(node)
}

// parsePropDecl parses a property with optional get/set accessor blocks.
func (p *Parser) parsePropDecl(mods *Node) *Node {
	node := p.startNode(KindPropDecl)
	attachModifiers(node, mods)
	p.expect(TokenProp)
	if tok := p.expect(TokenIdent); tok != nil {
		node.AddField("name", &Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	if p.check(TokenColon) {
		p.advance()
		node.AddField("type", p.parseType())
	}
	if p.check(TokenLBrace) {
		node.AddField("body", p.parsePropBody())
	} else {
		p.expectTerminator()
	}
	return p.finishNode(node)
}

func (p *Parser) parsePropBody() *Node {
	node := p.startNode(KindBlock)
	p.expect(TokenLBrace)
	p.skipNewlines()
	for p.check(TokenIdent) && (p.peek().Literal == "get" || p.peek().Literal == "set") {
		accessor := p.startNode(KindFuncDecl)
		tok := p.advance()
		accessor.AddField("name", &Node{Kind: KindIdentifier, Token: &tok, Span: tok.Span})
		if p.check(TokenLParen) {
			accessor.AddField("parameters", p.parseParameters())
		}
		accessor.AddField("body", p.parseBlock())
		node.AddChild(p.finishNode(accessor))
		p.skipNewlines()
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseInitDecl(mods *Node) *Node {
	node := p.startNode(KindInitDecl)
	attachModifiers(node, mods)
	p.expect(TokenInit)
	if p.check(TokenLParen) {
		node.AddField("parameters", p.parseParameters())
	}
	node.AddField("body", p.parseBlock())
	return p.finishNode(node)
}

func (p *Parser) parseTypeParameters() *Node {
	node := p.startNode(KindTypeParameters)
	p.expect(TokenLT)
	p.parenDepth++
	for !p.check(TokenGT) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		param := p.startNode(KindTypeParameter)
		if id := p.identNode(); id != nil {
			param.AddField("name", id)
		} else {
			node.AddChild(p.errorNode("expected type parameter", []TokenKind{TokenGT, TokenComma}, TokenIdent))
			continue
		}
		if p.check(TokenSubtype) {
			p.advance()
			param.AddField("bound", p.parseType())
		}
		node.AddChild(p.finishNode(param))
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

func (p *Parser) parseGenericConstraints() *Node {
	node := p.startNode(KindGenericConstraints)
	p.expect(TokenWhere)
	for {
		progress := p.mustProgress()
		constraint := p.startNode(KindGenericConstraint)
		constraint.AddField("type", p.parseType())
		if p.expect(TokenSubtype) != nil {
			constraint.AddField("bound", p.parseType())
			for p.check(TokenBitAnd) {
				p.advance()
				constraint.AddChild(p.parseType())
			}
		}
		node.AddChild(p.finishNode(constraint))
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		p.skipNL()
		if !progress() {
			break
		}
	}
	return p.finishNode(node)
}

// parseParameters parses "(a: T, b!: U = v, inout c: V)". Named
// parameters carry a "!" marker after the name.
func (p *Parser) parseParameters() *Node {
	node := p.startNode(KindParameters)
	p.expect(TokenLParen)
	p.parenDepth++
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseParameter())
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

func (p *Parser) parseParameter() *Node {
	node := p.startNode(KindParameter)
	for p.peek().Kind.IsModifier() || (p.check(TokenIdent) && p.peek().Literal == "inout") {
		node.AddChild(p.leaf(KindIdentifier))
	}
	if id := p.identNode(); id != nil {
		node.AddField("name", id)
	} else if p.check(TokenUnderscore) {
		node.AddField("name", p.leaf(KindWildcardPattern))
	} else {
		return p.errorNode("expected parameter name", []TokenKind{TokenComma, TokenRParen}, TokenIdent)
	}
	if p.check(TokenNot) {
		bang := p.advance()
		node.AddField("named", &Node{Kind: KindIdentifier, Token: &bang, Span: bang.Span})
	}
	if p.expect(TokenColon) != nil {
		node.AddField("type", p.parseType())
	}
	if p.check(TokenAssign) {
		p.advance()
		node.AddField("default", p.parseExpression())
	}
	return p.finishNode(node)
}
