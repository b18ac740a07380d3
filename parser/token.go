package parser

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError

	// Scanner-supplied tokens. These depend on cross-line state and are
	// produced by the external scanner, not by fixed-pattern matching.
	TokenNewline
	TokenIndent
	TokenDedent
	TokenRawString

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	TokenRuneLiteral
	TokenStringLiteral
	TokenMultilineString
	TokenTrue
	TokenFalse

	// Keywords
	TokenAs
	TokenBreak
	TokenCase
	TokenCatch
	TokenClass
	TokenConst
	TokenContinue
	TokenDo
	TokenElse
	TokenEnum
	TokenExtend
	TokenFinally
	TokenFor
	TokenForeign
	TokenFunc
	TokenIf
	TokenImport
	TokenIn
	TokenInit
	TokenInterface
	TokenIs
	TokenLet
	TokenMacro
	TokenMain
	TokenMatch
	TokenOperator
	TokenPackage
	TokenProp
	TokenQuote
	TokenReturn
	TokenSpawn
	TokenStruct
	TokenSuper
	TokenSynchronized
	TokenThis
	TokenThrow
	TokenTry
	TokenType
	TokenUnsafe
	TokenVar
	TokenWhere
	TokenWhile

	// Modifier keywords
	TokenAbstract
	TokenInternal
	TokenMut
	TokenOpen
	TokenOverride
	TokenPrivate
	TokenProtected
	TokenPublic
	TokenRedef
	TokenSealed
	TokenStatic

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenSemicolon
	TokenColon
	TokenDot
	TokenQuestionDot
	TokenQuestion
	TokenAt
	TokenArrow
	TokenFatArrow
	TokenEllipsis
	TokenBacktick
	TokenSubtype
	TokenUnderscore

	// Operators
	TokenAssign
	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenAnd
	TokenOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenBitXor
	TokenShl
	TokenShr
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenPower
	TokenIncrement
	TokenDecrement
	TokenRange
	TokenRangeEq
	TokenCoalesce
	TokenPipeline
	TokenFlow
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenPercentAssign
	TokenPowerAssign
	TokenAndAssign
	TokenOrAssign
	TokenXorAssign
	TokenShlAssign
	TokenShrAssign
	TokenLogAndAssign
	TokenLogOrAssign
	TokenCoalesceAssign
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:             "EOF",
	TokenError:           "Error",
	TokenNewline:         "NEWLINE",
	TokenIndent:          "INDENT",
	TokenDedent:          "DEDENT",
	TokenRawString:       "RawString",
	TokenIdent:           "Identifier",
	TokenIntLiteral:      "IntLiteral",
	TokenFloatLiteral:    "FloatLiteral",
	TokenRuneLiteral:     "RuneLiteral",
	TokenStringLiteral:   "StringLiteral",
	TokenMultilineString: "MultilineString",
	TokenTrue:            "true",
	TokenFalse:           "false",
	TokenAs:              "as",
	TokenBreak:           "break",
	TokenCase:            "case",
	TokenCatch:           "catch",
	TokenClass:           "class",
	TokenConst:           "const",
	TokenContinue:        "continue",
	TokenDo:              "do",
	TokenElse:            "else",
	TokenEnum:            "enum",
	TokenExtend:          "extend",
	TokenFinally:         "finally",
	TokenFor:             "for",
	TokenForeign:         "foreign",
	TokenFunc:            "func",
	TokenIf:              "if",
	TokenImport:          "import",
	TokenIn:              "in",
	TokenInit:            "init",
	TokenInterface:       "interface",
	TokenIs:              "is",
	TokenLet:             "let",
	TokenMacro:           "macro",
	TokenMain:            "main",
	TokenMatch:           "match",
	TokenOperator:        "operator",
	TokenPackage:         "package",
	TokenProp:            "prop",
	TokenQuote:           "quote",
	TokenReturn:          "return",
	TokenSpawn:           "spawn",
	TokenStruct:          "struct",
	TokenSuper:           "super",
	TokenSynchronized:    "synchronized",
	TokenThis:            "this",
	TokenThrow:           "throw",
	TokenTry:             "try",
	TokenType:            "type",
	TokenUnsafe:          "unsafe",
	TokenVar:             "var",
	TokenWhere:           "where",
	TokenWhile:           "while",
	TokenAbstract:        "abstract",
	TokenInternal:        "internal",
	TokenMut:             "mut",
	TokenOpen:            "open",
	TokenOverride:        "override",
	TokenPrivate:         "private",
	TokenProtected:       "protected",
	TokenPublic:          "public",
	TokenRedef:           "redef",
	TokenSealed:          "sealed",
	TokenStatic:          "static",
	TokenLParen:          "(",
	TokenRParen:          ")",
	TokenLBrace:          "{",
	TokenRBrace:          "}",
	TokenLBracket:        "[",
	TokenRBracket:        "]",
	TokenComma:           ",",
	TokenSemicolon:       ";",
	TokenColon:           ":",
	TokenDot:             ".",
	TokenQuestionDot:     "?.",
	TokenQuestion:        "?",
	TokenAt:              "@",
	TokenArrow:           "->",
	TokenFatArrow:        "=>",
	TokenEllipsis:        "...",
	TokenBacktick:        "`",
	TokenSubtype:         "<:",
	TokenUnderscore:      "_",
	TokenAssign:          "=",
	TokenEQ:              "==",
	TokenNE:              "!=",
	TokenLT:              "<",
	TokenLE:              "<=",
	TokenGT:              ">",
	TokenGE:              ">=",
	TokenAnd:             "&&",
	TokenOr:              "||",
	TokenNot:             "!",
	TokenBitAnd:          "&",
	TokenBitOr:           "|",
	TokenBitXor:          "^",
	TokenShl:             "<<",
	TokenShr:             ">>",
	TokenPlus:            "+",
	TokenMinus:           "-",
	TokenStar:            "*",
	TokenSlash:           "/",
	TokenPercent:         "%",
	TokenPower:           "**",
	TokenIncrement:       "++",
	TokenDecrement:       "--",
	TokenRange:           "..",
	TokenRangeEq:         "..=",
	TokenCoalesce:        "??",
	TokenPipeline:        "|>",
	TokenFlow:            "~>",
	TokenPlusAssign:      "+=",
	TokenMinusAssign:     "-=",
	TokenStarAssign:      "*=",
	TokenSlashAssign:     "/=",
	TokenPercentAssign:   "%=",
	TokenPowerAssign:     "**=",
	TokenAndAssign:       "&=",
	TokenOrAssign:        "|=",
	TokenXorAssign:       "^=",
	TokenShlAssign:       "<<=",
	TokenShrAssign:       ">>=",
	TokenLogAndAssign:    "&&=",
	TokenLogOrAssign:     "||=",
	TokenCoalesceAssign:  "??=",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is an atomic lexical unit. Immutable once produced.
type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

var keywords = map[string]TokenKind{
	"as":           TokenAs,
	"break":        TokenBreak,
	"case":         TokenCase,
	"catch":        TokenCatch,
	"class":        TokenClass,
	"const":        TokenConst,
	"continue":     TokenContinue,
	"do":           TokenDo,
	"else":         TokenElse,
	"enum":         TokenEnum,
	"extend":       TokenExtend,
	"false":        TokenFalse,
	"finally":      TokenFinally,
	"for":          TokenFor,
	"foreign":      TokenForeign,
	"func":         TokenFunc,
	"if":           TokenIf,
	"import":       TokenImport,
	"in":           TokenIn,
	"init":         TokenInit,
	"interface":    TokenInterface,
	"is":           TokenIs,
	"let":          TokenLet,
	"macro":        TokenMacro,
	"main":         TokenMain,
	"match":        TokenMatch,
	"operator":     TokenOperator,
	"package":      TokenPackage,
	"prop":         TokenProp,
	"quote":        TokenQuote,
	"return":       TokenReturn,
	"spawn":        TokenSpawn,
	"struct":       TokenStruct,
	"super":        TokenSuper,
	"synchronized": TokenSynchronized,
	"this":         TokenThis,
	"throw":        TokenThrow,
	"true":         TokenTrue,
	"try":          TokenTry,
	"type":         TokenType,
	"unsafe":       TokenUnsafe,
	"_":            TokenUnderscore,
	"var":          TokenVar,
	"where":        TokenWhere,
	"while":        TokenWhile,
	"abstract":     TokenAbstract,
	"internal":     TokenInternal,
	"mut":          TokenMut,
	"open":         TokenOpen,
	"override":     TokenOverride,
	"private":      TokenPrivate,
	"protected":    TokenProtected,
	"public":       TokenPublic,
	"redef":        TokenRedef,
	"sealed":       TokenSealed,
	"static":       TokenStatic,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

// IsModifier reports whether the token kind is a declaration modifier.
// Modifiers are order-insensitive; duplicates and conflicts are accepted
// syntactically and left to a later semantic pass.
func (k TokenKind) IsModifier() bool {
	switch k {
	case TokenPublic, TokenPrivate, TokenProtected, TokenInternal,
		TokenStatic, TokenOpen, TokenOverride, TokenMut,
		TokenForeign, TokenUnsafe, TokenSealed, TokenAbstract,
		TokenConst, TokenRedef:
		return true
	}
	return false
}
