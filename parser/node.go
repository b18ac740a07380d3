package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota

	// File level
	KindSourceFile
	KindPackageDecl
	KindImportDecl

	// Declarations
	KindVarDecl
	KindFuncDecl
	KindMainDecl
	KindClassDecl
	KindStructDecl
	KindEnumDecl
	KindEnumCase
	KindInterfaceDecl
	KindExtendDecl
	KindTypeAliasDecl
	KindOperatorDecl
	KindMacroDecl
	KindPropDecl
	KindInitDecl

	// Declaration components
	KindModifiers
	KindAnnotation
	KindMacroInvocation
	KindTypeParameters
	KindTypeParameter
	KindGenericConstraints
	KindGenericConstraint
	KindParameters
	KindParameter
	KindClassBody
	KindEnumBody
	KindSuperTypes

	// Types
	KindTypeRef
	KindQualifiedType
	KindGenericType
	KindTypeArguments
	KindTupleType
	KindFuncType
	KindParenType
	KindOptionType

	// Statements
	KindBlock
	KindExprStmt

	// Expressions
	KindAssignExpr
	KindBinaryExpr
	KindRangeExpr
	KindUnaryExpr
	KindPostfixExpr
	KindIsExpr
	KindAsExpr
	KindCallExpr
	KindArguments
	KindArgument
	KindMemberAccess
	KindIndexExpr
	KindLambdaExpr
	KindTrailingLambda
	KindParenExpr
	KindTupleExpr
	KindArrayLiteral
	KindLiteral
	KindOperator
	KindIdentifier
	KindQualifiedName
	KindThis
	KindSuper
	KindUnitLiteral
	KindIfExpr
	KindMatchExpr
	KindMatchCase
	KindWhileExpr
	KindDoWhileExpr
	KindForInExpr
	KindTryExpr
	KindCatchClause
	KindFinallyClause
	KindSpawnExpr
	KindSynchronizedExpr
	KindQuoteExpr
	KindUnsafeExpr
	KindReturnExpr
	KindBreakExpr
	KindContinueExpr
	KindThrowExpr

	// Patterns
	KindWildcardPattern
	KindBindingPattern
	KindTuplePattern
	KindEnumPattern
	KindTypePattern
	KindConstantPattern
	KindStructPattern
	KindArrayPattern
	KindFieldPattern
)

var nodeKindNames = map[NodeKind]string{
	KindError:              "ERROR",
	KindSourceFile:         "SourceFile",
	KindPackageDecl:        "PackageDecl",
	KindImportDecl:         "ImportDecl",
	KindVarDecl:            "VarDecl",
	KindFuncDecl:           "FuncDecl",
	KindMainDecl:           "MainDecl",
	KindClassDecl:          "ClassDecl",
	KindStructDecl:         "StructDecl",
	KindEnumDecl:           "EnumDecl",
	KindEnumCase:           "EnumCase",
	KindInterfaceDecl:      "InterfaceDecl",
	KindExtendDecl:         "ExtendDecl",
	KindTypeAliasDecl:      "TypeAliasDecl",
	KindOperatorDecl:       "OperatorDecl",
	KindMacroDecl:          "MacroDecl",
	KindPropDecl:           "PropDecl",
	KindInitDecl:           "InitDecl",
	KindModifiers:          "Modifiers",
	KindAnnotation:         "Annotation",
	KindMacroInvocation:    "MacroInvocation",
	KindTypeParameters:     "TypeParameters",
	KindTypeParameter:      "TypeParameter",
	KindGenericConstraints: "GenericConstraints",
	KindGenericConstraint:  "GenericConstraint",
	KindParameters:         "Parameters",
	KindParameter:          "Parameter",
	KindClassBody:          "ClassBody",
	KindEnumBody:           "EnumBody",
	KindSuperTypes:         "SuperTypes",
	KindTypeRef:            "TypeRef",
	KindQualifiedType:      "QualifiedType",
	KindGenericType:        "GenericType",
	KindTypeArguments:      "TypeArguments",
	KindTupleType:          "TupleType",
	KindFuncType:           "FuncType",
	KindParenType:          "ParenType",
	KindOptionType:         "OptionType",
	KindBlock:              "Block",
	KindExprStmt:           "ExprStmt",
	KindAssignExpr:         "AssignExpr",
	KindBinaryExpr:         "BinaryExpr",
	KindRangeExpr:          "RangeExpr",
	KindUnaryExpr:          "UnaryExpr",
	KindPostfixExpr:        "PostfixExpr",
	KindIsExpr:             "IsExpr",
	KindAsExpr:             "AsExpr",
	KindCallExpr:           "CallExpr",
	KindArguments:          "Arguments",
	KindArgument:           "Argument",
	KindMemberAccess:       "MemberAccess",
	KindIndexExpr:          "IndexExpr",
	KindLambdaExpr:         "LambdaExpr",
	KindTrailingLambda:     "TrailingLambda",
	KindParenExpr:          "ParenExpr",
	KindTupleExpr:          "TupleExpr",
	KindArrayLiteral:       "ArrayLiteral",
	KindLiteral:            "Literal",
	KindOperator:           "Operator",
	KindIdentifier:         "Identifier",
	KindQualifiedName:      "QualifiedName",
	KindThis:               "This",
	KindSuper:              "Super",
	KindUnitLiteral:        "UnitLiteral",
	KindIfExpr:             "IfExpr",
	KindMatchExpr:          "MatchExpr",
	KindMatchCase:          "MatchCase",
	KindWhileExpr:          "WhileExpr",
	KindDoWhileExpr:        "DoWhileExpr",
	KindForInExpr:          "ForInExpr",
	KindTryExpr:            "TryExpr",
	KindCatchClause:        "CatchClause",
	KindFinallyClause:      "FinallyClause",
	KindSpawnExpr:          "SpawnExpr",
	KindSynchronizedExpr:   "SynchronizedExpr",
	KindQuoteExpr:          "QuoteExpr",
	KindUnsafeExpr:         "UnsafeExpr",
	KindReturnExpr:         "ReturnExpr",
	KindBreakExpr:          "BreakExpr",
	KindContinueExpr:       "ContinueExpr",
	KindThrowExpr:          "ThrowExpr",
	KindWildcardPattern:    "WildcardPattern",
	KindBindingPattern:     "BindingPattern",
	KindTuplePattern:       "TuplePattern",
	KindEnumPattern:        "EnumPattern",
	KindTypePattern:        "TypePattern",
	KindConstantPattern:    "ConstantPattern",
	KindStructPattern:      "StructPattern",
	KindArrayPattern:       "ArrayPattern",
	KindFieldPattern:       "FieldPattern",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type NodeError struct {
	Message  string
	Expected []TokenKind
	Got      *Token
}

// Node is one concrete-syntax-tree node. Leaf nodes carry a Token.
// Fields maps a field name to a position in Children; node kind names and
// field names are a stable wire contract for downstream tooling.
//
// Trees are owned by whoever produced them (a parse result or an
// incremental session) and referenced read-only by everyone else.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Fields   map[string]int
	Token    *Token
	Err      *NodeError
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

// AddField appends child and records it under the given field name.
func (n *Node) AddField(name string, child *Node) {
	if child == nil {
		return
	}
	if n.Fields == nil {
		n.Fields = make(map[string]int)
	}
	n.Fields[name] = len(n.Children)
	n.Children = append(n.Children, child)
}

// Field returns the child filling the named field, or nil.
func (n *Node) Field(name string) *Node {
	if n.Fields == nil {
		return nil
	}
	i, ok := n.Fields[name]
	if !ok || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// FieldName returns the field name of the i-th child, if it has one.
func (n *Node) FieldName(i int) string {
	for name, pos := range n.Fields {
		if pos == i {
			return name
		}
	}
	return ""
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Equal reports structural equality: same kinds, same field assignments,
// same child order, same token kinds and literals. Spans are ignored; use
// EqualExact when positions matter.
func (n *Node) Equal(o *Node) bool {
	return nodesEqual(n, o, false)
}

// EqualExact is Equal plus byte-exact span comparison. An incremental
// update must leave the tree EqualExact to a fresh parse of the edited
// document.
func (n *Node) EqualExact(o *Node) bool {
	return nodesEqual(n, o, true)
}

func nodesEqual(a, b *Node, spans bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || len(a.Children) != len(b.Children) {
		return false
	}
	if spans && a.Span != b.Span {
		return false
	}
	if (a.Token == nil) != (b.Token == nil) {
		return false
	}
	if a.Token != nil && (a.Token.Kind != b.Token.Kind || a.Token.Literal != b.Token.Literal) {
		return false
	}
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for name, i := range a.Fields {
		if j, ok := b.Fields[name]; !ok || i != j {
			return false
		}
	}
	for i := range a.Children {
		if !nodesEqual(a.Children[i], b.Children[i], spans) {
			return false
		}
	}
	return true
}

// Tokens appends every token in the subtree, in document order.
func (n *Node) Tokens(out []*Token) []*Token {
	if n.Token != nil {
		out = append(out, n.Token)
	}
	for _, child := range n.Children {
		out = child.Tokens(out)
	}
	return out
}

func (n *Node) String() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0)
	return sb.String()
}

func (n *Node) writeIndent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
	sb.WriteString(n.Kind.String())
	if n.Token != nil {
		sb.WriteString(" ")
		sb.WriteString(n.Token.Literal)
	}
	if n.Err != nil {
		sb.WriteString(" ERROR: ")
		sb.WriteString(n.Err.Message)
	}
	sb.WriteString("\n")
	for i, child := range n.Children {
		if name := n.FieldName(i); name != "" {
			for j := 0; j < depth+1; j++ {
				sb.WriteString("  ")
			}
			sb.WriteString(name)
			sb.WriteString(":\n")
			child.writeIndent(sb, depth+2)
			continue
		}
		child.writeIndent(sb, depth+1)
	}
}
