package parser

import (
	"testing"
)

func lexKinds(input string) []TokenKind {
	tokens, _ := Tokenize([]byte(input))
	var got []TokenKind
	for _, tok := range tokens {
		got = append(got, tok.Kind)
	}
	return got
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", []TokenKind{TokenEOF}},
		{"func", []TokenKind{TokenFunc, TokenEOF}},
		{"public class Point {}", []TokenKind{TokenPublic, TokenClass, TokenIdent, TokenLBrace, TokenRBrace, TokenEOF}},
		{"let x = 1", []TokenKind{TokenLet, TokenIdent, TokenAssign, TokenIntLiteral, TokenEOF}},
		{"123", []TokenKind{TokenIntLiteral, TokenEOF}},
		{"0x1F", []TokenKind{TokenIntLiteral, TokenEOF}},
		{"0b1010", []TokenKind{TokenIntLiteral, TokenEOF}},
		{"1_000_000", []TokenKind{TokenIntLiteral, TokenEOF}},
		{"3.14", []TokenKind{TokenFloatLiteral, TokenEOF}},
		{"1e10", []TokenKind{TokenFloatLiteral, TokenEOF}},
		{"42i64", []TokenKind{TokenIntLiteral, TokenEOF}},
		{"2.5f32", []TokenKind{TokenFloatLiteral, TokenEOF}},
		{"1..2", []TokenKind{TokenIntLiteral, TokenRange, TokenIntLiteral, TokenEOF}},
		{"1..=2", []TokenKind{TokenIntLiteral, TokenRangeEq, TokenIntLiteral, TokenEOF}},
		{`"hello"`, []TokenKind{TokenStringLiteral, TokenEOF}},
		{`"a${b}c"`, []TokenKind{TokenStringLiteral, TokenEOF}},
		{`"""multi"""`, []TokenKind{TokenMultilineString, TokenEOF}},
		{"'a'", []TokenKind{TokenRuneLiteral, TokenEOF}},
		{"r'a'", []TokenKind{TokenRuneLiteral, TokenEOF}},
		{"// comment\nfunc", []TokenKind{TokenNewline, TokenFunc, TokenEOF}},
		{"/* block */ func", []TokenKind{TokenFunc, TokenEOF}},
		{"/* outer /* inner */ still */ func", []TokenKind{TokenFunc, TokenEOF}},
		{"+ - * / %", []TokenKind{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent, TokenEOF}},
		{"== != < <= > >=", []TokenKind{TokenEQ, TokenNE, TokenLT, TokenLE, TokenGT, TokenGE, TokenEOF}},
		{"&& || !", []TokenKind{TokenAnd, TokenOr, TokenNot, TokenEOF}},
		{"<< >>", []TokenKind{TokenShl, TokenShr, TokenEOF}},
		{"** **=", []TokenKind{TokenPower, TokenPowerAssign, TokenEOF}},
		{"?? ??= ?.", []TokenKind{TokenCoalesce, TokenCoalesceAssign, TokenQuestionDot, TokenEOF}},
		{"|> ~>", []TokenKind{TokenPipeline, TokenFlow, TokenEOF}},
		{"&&= ||=", []TokenKind{TokenLogAndAssign, TokenLogOrAssign, TokenEOF}},
		{"++ --", []TokenKind{TokenIncrement, TokenDecrement, TokenEOF}},
		{"-> =>", []TokenKind{TokenArrow, TokenFatArrow, TokenEOF}},
		{"<:", []TokenKind{TokenSubtype, TokenEOF}},
		{"_", []TokenKind{TokenUnderscore, TokenEOF}},
		{"_name", []TokenKind{TokenIdent, TokenEOF}},
		{"...", []TokenKind{TokenEllipsis, TokenEOF}},
		{"@", []TokenKind{TokenAt, TokenEOF}},
		{"spawn synchronized quote unsafe", []TokenKind{TokenSpawn, TokenSynchronized, TokenQuote, TokenUnsafe, TokenEOF}},
		{"match case where", []TokenKind{TokenMatch, TokenCase, TokenWhere, TokenEOF}},
		{"a\nb", []TokenKind{TokenIdent, TokenNewline, TokenIdent, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := lexKinds(tt.input)
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

func TestLexerKeywords(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
	}{
		{"let", TokenLet},
		{"var", TokenVar},
		{"func", TokenFunc},
		{"main", TokenMain},
		{"class", TokenClass},
		{"struct", TokenStruct},
		{"enum", TokenEnum},
		{"interface", TokenInterface},
		{"extend", TokenExtend},
		{"type", TokenType},
		{"operator", TokenOperator},
		{"macro", TokenMacro},
		{"prop", TokenProp},
		{"init", TokenInit},
		{"this", TokenThis},
		{"super", TokenSuper},
		{"is", TokenIs},
		{"as", TokenAs},
		{"in", TokenIn},
		{"if", TokenIf},
		{"else", TokenElse},
		{"while", TokenWhile},
		{"do", TokenDo},
		{"for", TokenFor},
		{"try", TokenTry},
		{"catch", TokenCatch},
		{"finally", TokenFinally},
		{"throw", TokenThrow},
		{"return", TokenReturn},
		{"break", TokenBreak},
		{"continue", TokenContinue},
		{"true", TokenTrue},
		{"false", TokenFalse},
		{"public", TokenPublic},
		{"private", TokenPrivate},
		{"protected", TokenProtected},
		{"internal", TokenInternal},
		{"static", TokenStatic},
		{"open", TokenOpen},
		{"override", TokenOverride},
		{"mut", TokenMut},
		{"sealed", TokenSealed},
		{"abstract", TokenAbstract},
		{"redef", TokenRedef},
		{"foreign", TokenForeign},
		{"const", TokenConst},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := lexKinds(tt.input)
			if len(got) != 2 || got[0] != tt.kind {
				t.Errorf("got %v, want [%v EOF]", got, tt.kind)
			}
		})
	}
}

func TestLexerSpans(t *testing.T) {
	input := "let x = 10"
	tokens, _ := Tokenize([]byte(input))
	for _, tok := range tokens {
		if tok.Kind == TokenEOF {
			continue
		}
		if got := input[tok.Span.Start:tok.Span.End]; got != tok.Literal {
			t.Errorf("span %v slices to %q, literal is %q", tok.Span, got, tok.Literal)
		}
	}
}

func TestLexerUnexpectedChar(t *testing.T) {
	tokens, diags := Tokenize([]byte("let \x01 x"))
	found := false
	for _, tok := range tokens {
		if tok.Kind == TokenError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error token, got %v", tokens)
	}
	if len(diags) == 0 || diags[0].Kind != DiagUnexpectedChar {
		t.Errorf("diagnostics = %v, want unexpected character", diags)
	}
}

func TestLexerInterpolationNesting(t *testing.T) {
	input := `"outer ${f("${inner}")} tail"`
	got := lexKinds(input)
	want := []TokenKind{TokenStringLiteral, TokenEOF}
	if len(got) != len(want) || got[0] != want[0] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLexerUnicodeIdentifiers(t *testing.T) {
	tokens, diags := Tokenize([]byte("let 变量 = 宽度1\n"))
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v", diags)
	}
	want := []TokenKind{TokenLet, TokenIdent, TokenAssign, TokenIdent, TokenNewline, TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want kinds %v", tokens, want)
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d = %v, want %v", i, tokens[i].Kind, kind)
		}
	}
	if tokens[1].Literal != "变量" {
		t.Errorf("literal = %q, want the full identifier", tokens[1].Literal)
	}
	if tokens[3].Literal != "宽度1" {
		t.Errorf("literal = %q, want letters and trailing digit together", tokens[3].Literal)
	}
}
