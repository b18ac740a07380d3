package parser

// PrecedenceLevel is one tier of the expression ladder. Rank 1 binds
// tightest (unary), rank 16 loosest (assignment).
type PrecedenceLevel struct {
	Rank      int
	Name      string
	Assoc     Assoc
	Operators []TokenKind
}

type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
	AssocNone
)

// PrecedenceLadder lists all 16 tiers, tightest to loosest. The relational
// and equality tiers are non-associative: chaining them is rejected, which
// keeps a < b < c from colliding with generic angle brackets.
var PrecedenceLadder = []PrecedenceLevel{
	{1, "unary", AssocRight, []TokenKind{TokenMinus, TokenNot}},
	{2, "power", AssocRight, []TokenKind{TokenPower}},
	{3, "multiplicative", AssocLeft, []TokenKind{TokenStar, TokenSlash, TokenPercent}},
	{4, "additive", AssocLeft, []TokenKind{TokenPlus, TokenMinus}},
	{5, "shift", AssocLeft, []TokenKind{TokenShl, TokenShr}},
	{6, "range", AssocNone, []TokenKind{TokenRange, TokenRangeEq}},
	{7, "relational", AssocNone, []TokenKind{TokenLT, TokenLE, TokenGT, TokenGE, TokenIs, TokenAs}},
	{8, "equality", AssocNone, []TokenKind{TokenEQ, TokenNE}},
	{9, "bitand", AssocLeft, []TokenKind{TokenBitAnd}},
	{10, "bitxor", AssocLeft, []TokenKind{TokenBitXor}},
	{11, "bitor", AssocLeft, []TokenKind{TokenBitOr}},
	{12, "logand", AssocLeft, []TokenKind{TokenAnd}},
	{13, "logor", AssocLeft, []TokenKind{TokenOr}},
	{14, "coalescing", AssocLeft, []TokenKind{TokenCoalesce}},
	{15, "pipeline", AssocLeft, []TokenKind{TokenPipeline, TokenFlow}},
	{16, "assignment", AssocRight, []TokenKind{
		TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign,
		TokenSlashAssign, TokenPercentAssign, TokenPowerAssign,
		TokenAndAssign, TokenOrAssign, TokenXorAssign,
		TokenShlAssign, TokenShrAssign,
		TokenLogAndAssign, TokenLogOrAssign, TokenCoalesceAssign,
	}},
}

// ConflictSite is a declared grammar position where more than one
// production matches the same prefix. Candidates are ordered; when a
// bounded lookahead probe cannot decide, the first-listed candidate wins.
// The list is fixed and exhaustive: there is no backtracking outside these
// sites, so every probe is bounded by construction.
type ConflictSite struct {
	Name       string
	Candidates []NodeKind
}

const (
	conflictTypeArgsVsLess = iota
	conflictLetEnumPattern
	conflictAnnotationVsMacro
	conflictTrailingLambda
	conflictParenForm
	conflictParenPattern
	conflictShrInTypeArgs
	conflictStmtStart
	conflictCaseEnumPattern
	conflictExprBrace
	conflictLineContinuation
	conflictQuestionPostfix
)

var ConflictSites = [...]ConflictSite{
	conflictTypeArgsVsLess:    {"type-arguments-vs-less-than", []NodeKind{KindBinaryExpr, KindGenericType}},
	conflictLetEnumPattern:    {"let-enum-pattern-vs-binding-call", []NodeKind{KindEnumPattern, KindBindingPattern}},
	conflictAnnotationVsMacro: {"annotation-vs-macro-invocation", []NodeKind{KindAnnotation, KindMacroInvocation}},
	conflictTrailingLambda:    {"trailing-lambda-vs-block", []NodeKind{KindTrailingLambda, KindBlock}},
	conflictParenForm:         {"paren-vs-tuple-vs-unit", []NodeKind{KindParenExpr, KindTupleExpr, KindUnitLiteral}},
	conflictParenPattern:      {"paren-pattern-vs-tuple-pattern", []NodeKind{KindTuplePattern, KindEnumPattern}},
	conflictShrInTypeArgs:     {"shift-vs-closing-angles", []NodeKind{KindTypeArguments, KindBinaryExpr}},
	conflictStmtStart:         {"expression-vs-declaration-statement", []NodeKind{KindExprStmt, KindVarDecl}},
	conflictCaseEnumPattern:   {"case-enum-pattern-vs-binding", []NodeKind{KindEnumPattern, KindBindingPattern}},
	conflictExprBrace:         {"trailing-struct-init-vs-block", []NodeKind{KindCallExpr, KindBlock}},
	conflictLineContinuation:  {"unary-start-vs-binary-continuation", []NodeKind{KindUnaryExpr, KindBinaryExpr}},
	conflictQuestionPostfix:   {"optional-chain-vs-coalesce", []NodeKind{KindMemberAccess, KindBinaryExpr}},
}

// preferFirst reports whether kind is the first-listed candidate at the
// declared site. Probe sites consult it when bounded lookahead is
// inconclusive, so the declared order and the parser cannot drift apart.
func preferFirst(site int, kind NodeKind) bool {
	return ConflictSites[site].Candidates[0] == kind
}
