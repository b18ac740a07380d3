package parser

import (
	"strings"
	"testing"
)

func parseFile(t *testing.T, input string) *Result {
	t.Helper()
	res := Parse([]byte(input))
	if res.Root == nil {
		t.Fatal("Parse returned nil root")
	}
	return res
}

func firstDecl(t *testing.T, input string) *Node {
	t.Helper()
	res := parseFile(t, input)
	if len(res.Root.Children) == 0 {
		t.Fatalf("no declarations parsed from %q", input)
	}
	return res.Root.Children[0]
}

func TestParseDeclarations(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"let x = 1", KindVarDecl},
		{"var y: Int64 = 2", KindVarDecl},
		{"let (a, b) = pair", KindVarDecl},
		{"func add(a: Int64, b: Int64): Int64 { return a + b }", KindFuncDecl},
		{"func id<T>(x: T): T { return x }", KindFuncDecl},
		{"main() { println(1) }", KindMainDecl},
		{"class Point { let x: Int64 = 0 }", KindClassDecl},
		{"public open class Shape {}", KindClassDecl},
		{"struct Vec2 { let x: Float64 = 0.0 }", KindStructDecl},
		{"enum Color { | Red | Green | Blue }", KindEnumDecl},
		{"enum Option<T> { | Some(T) | None }", KindEnumDecl},
		{"interface Drawable { func draw(): Unit }", KindInterfaceDecl},
		{"extend Int64 { func double(): Int64 { return this * 2 } }", KindExtendDecl},
		{"type Meters = Float64", KindTypeAliasDecl},
		{"operator func +(rhs: Vec2): Vec2 { return rhs }", KindOperatorDecl},
		{"macro twice(input: Tokens): Tokens { return input }", KindMacroDecl},
		{"x + 1", KindExprStmt},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			decl := firstDecl(t, tt.input)
			if decl.Kind != tt.kind {
				t.Errorf("got %v, want %v\n%s", decl.Kind, tt.kind, decl.String())
			}
		})
	}
}

func TestParsePackageAndImports(t *testing.T) {
	src := `package geometry

import std.math
import std.collections.HashMap as Map
import std.io.{Reader, Writer}

func area(r: Float64): Float64 { return 3.14 * r ** 2 }
`
	res := parseFile(t, src)
	if len(res.Errors) != 0 {
		t.Fatalf("errors: %v", res.Errors)
	}
	if pkg := res.Root.FirstChildOfKind(KindPackageDecl); pkg == nil {
		t.Error("missing package declaration")
	}
	imports := res.Root.ChildrenOfKind(KindImportDecl)
	if len(imports) != 3 {
		t.Fatalf("got %d imports, want 3", len(imports))
	}
	if imports[1].Field("alias") == nil {
		t.Error("second import should carry an alias")
	}
}

func TestParseFuncFields(t *testing.T) {
	decl := firstDecl(t, "func add(a: Int64, b!: Int64 = 0): Int64 { return a + b }")
	if got := decl.Field("name").TokenLiteral(); got != "add" {
		t.Errorf("name = %q, want %q", got, "add")
	}
	params := decl.Field("parameters")
	if params == nil || len(params.Children) != 2 {
		t.Fatalf("parameters = %v", params)
	}
	second := params.Children[1]
	if second.Field("named") == nil {
		t.Error("second parameter should be marked named")
	}
	if second.Field("default") == nil {
		t.Error("second parameter should carry a default")
	}
	if decl.Field("return_type") == nil {
		t.Error("missing return type")
	}
	if decl.Field("body") == nil {
		t.Error("missing body")
	}
}

func TestParseClassMembers(t *testing.T) {
	src := `class Counter <: Resettable {
	private var count: Int64 = 0

	init(start: Int64) {
		count = start
	}

	public func increment(): Unit {
		count++
	}

	prop value: Int64 {
		get() { return count }
	}
}`
	decl := firstDecl(t, src)
	if decl.Kind != KindClassDecl {
		t.Fatalf("got %v, want class", decl.Kind)
	}
	if decl.Field("super_types") == nil {
		t.Error("missing super types")
	}
	body := decl.Field("body")
	if body == nil {
		t.Fatal("missing body")
	}
	var kinds []NodeKind
	for _, member := range body.Children {
		kinds = append(kinds, member.Kind)
	}
	want := []NodeKind{KindVarDecl, KindInitDecl, KindFuncDecl, KindPropDecl}
	if len(kinds) != len(want) {
		t.Fatalf("members = %v, want %v", kinds, want)
	}
	for i := range kinds {
		if kinds[i] != want[i] {
			t.Errorf("member %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestParseEnumCases(t *testing.T) {
	decl := firstDecl(t, `enum Shape {
	| Circle(Float64)
	| Rect(Float64, Float64)
	| Empty

	func describe(): String { return "shape" }
}`)
	body := decl.Field("body")
	if body == nil {
		t.Fatal("missing enum body")
	}
	cases := body.ChildrenOfKind(KindEnumCase)
	if len(cases) != 3 {
		t.Fatalf("got %d cases, want 3", len(cases))
	}
	if cases[0].Field("parameters") == nil {
		t.Error("Circle should carry a payload type")
	}
	if cases[2].Field("parameters") != nil {
		t.Error("Empty should not carry a payload type")
	}
	if body.FirstChildOfKind(KindFuncDecl) == nil {
		t.Error("missing member function after case list")
	}
}

func TestParseAnnotatedDecl(t *testing.T) {
	decl := firstDecl(t, "@Deprecated\npublic func old(): Unit {}")
	if decl.Kind != KindFuncDecl {
		t.Fatalf("got %v, want func", decl.Kind)
	}
	if decl.Field("annotation") == nil {
		t.Error("missing annotation field")
	}
	if decl.Field("modifiers") == nil {
		t.Error("missing modifiers field")
	}
}

func TestParseMacroInvocation(t *testing.T) {
	decl := firstDecl(t, "@Attribute[custom]\nfunc f(): Unit {}")
	if decl.Kind != KindMacroInvocation {
		t.Fatalf("got %v, want macro invocation\n%s", decl.Kind, decl.String())
	}
	if decl.Field("item") == nil {
		t.Error("missing wrapped item")
	}
}

func TestParseErrorContainment(t *testing.T) {
	src := `func good(): Unit {}

func bad( { }

func alsoGood(): Unit {}
`
	res := parseFile(t, src)
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
	funcs := res.Root.ChildrenOfKind(KindFuncDecl)
	if len(funcs) < 2 {
		t.Errorf("got %d function declarations, want the good ones to survive\n%s",
			len(funcs), res.Root.String())
	}
	hasError := false
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.IsError() {
			hasError = true
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(res.Root)
	if !hasError {
		t.Error("expected an ERROR node in the tree")
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"}",
		")))",
		"func",
		"let = =",
		"class { {",
		"match (",
		"\x00\x01\x02",
		"enum E { | }",
		"a <",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			res := Parse([]byte(input))
			if res.Root == nil {
				t.Error("nil root")
			}
		})
	}
}

func TestParseStatementTerminators(t *testing.T) {
	// Newlines and semicolons are interchangeable statement terminators.
	byNewline := parseFile(t, "let a = 1\nlet b = 2\n")
	bySemi := parseFile(t, "let a = 1; let b = 2;")
	if len(byNewline.Root.Children) != 2 || len(bySemi.Root.Children) != 2 {
		t.Fatalf("got %d and %d declarations, want 2 and 2",
			len(byNewline.Root.Children), len(bySemi.Root.Children))
	}
	if !byNewline.Root.Equal(bySemi.Root) {
		t.Error("newline-form and semicolon-form trees differ")
	}
}

func TestParseNewlinesInsideParens(t *testing.T) {
	src := "let total = sum(\n\t1,\n\t2,\n\t3,\n)\n"
	res := parseFile(t, src)
	if len(res.Errors) != 0 {
		t.Fatalf("errors: %v", res.Errors)
	}
	decl := res.Root.Children[0]
	call := decl.Field("value")
	if call == nil || call.Kind != KindCallExpr {
		t.Fatalf("value = %v, want call", call)
	}
	if args := call.Field("arguments"); args == nil || len(args.Children) != 3 {
		t.Errorf("arguments = %v, want 3", args)
	}
}

func TestParseCheckpoints(t *testing.T) {
	src := "let a = 1\nlet b = 2\n"
	res := parseFile(t, src)
	if len(res.Checkpoints) != 3 {
		t.Fatalf("got %d checkpoints, want 3", len(res.Checkpoints))
	}
	wantOffsets := []int{0, 10, 20}
	for i, cp := range res.Checkpoints {
		if cp.Offset != wantOffsets[i] {
			t.Errorf("checkpoint %d at offset %d, want %d", i, cp.Offset, wantOffsets[i])
		}
		if _, err := RestoreScannerState(cp.State, 0); err != nil {
			t.Errorf("checkpoint %d does not restore: %v", i, err)
		}
	}
}

func TestParseResume(t *testing.T) {
	src := "let a = 1\nlet b = 2\n"
	full := parseFile(t, src)

	state, err := RestoreScannerState(full.Checkpoints[1].State, 0)
	if err != nil {
		t.Fatal(err)
	}
	resumed := Parse([]byte(src), WithScannerState(state), WithStartOffset(10))
	if len(resumed.Root.Children) != 1 {
		t.Fatalf("resumed parse has %d declarations, want 1\n%s",
			len(resumed.Root.Children), resumed.Root.String())
	}
	if !resumed.Root.Children[0].Equal(full.Root.Children[1]) {
		t.Error("resumed declaration differs from the full parse")
	}
}

func TestParseRoundTripTokens(t *testing.T) {
	src := `package demo

func greet(name: String): String {
	return "hello ${name}"
}
`
	res := parseFile(t, src)
	var toks []*Token
	toks = res.Root.Tokens(toks)
	var sb strings.Builder
	last := 0
	for _, tok := range toks {
		if tok.Span.Start > last {
			sb.WriteString(src[last:tok.Span.Start])
		}
		sb.WriteString(tok.Literal)
		last = tok.Span.End
	}
	sb.WriteString(src[last:])
	again := Parse([]byte(sb.String()))
	if !res.Root.Equal(again.Root) {
		t.Error("reconstructed source parses to a different tree")
	}
}

func TestParseExpressionEntry(t *testing.T) {
	res := ParseExpression([]byte("1 + 2 * 3"))
	if res.Root == nil || res.Root.Kind != KindBinaryExpr {
		t.Fatalf("root = %v, want binary expression", res.Root)
	}
	if len(res.Errors) != 0 {
		t.Errorf("errors: %v", res.Errors)
	}
}

func TestParseMissingCloseBrace(t *testing.T) {
	src := "func f() {\n\treturn 1\n\nfunc g(): Int64 {\n\treturn 2\n}\n"
	res := Parse([]byte(src))
	if len(res.Errors) == 0 {
		t.Fatal("expected a diagnostic for the missing closing brace")
	}
}

func TestParseUnterminatedRawStringBecomesError(t *testing.T) {
	src := []byte("let a = 1\nlet b = r#\"oops")
	res := Parse(src)
	if len(res.Root.Children) != 2 {
		t.Fatalf("children = %d, want 2 declarations", len(res.Root.Children))
	}
	val := res.Root.Children[1].Field("value")
	if val == nil || val.Kind != KindError {
		t.Fatalf("value = %v, want an Error node", val)
	}
	if val.Span.End != len(src) {
		t.Errorf("error node ends at %d, want end of input %d", val.Span.End, len(src))
	}
	found := false
	for _, d := range res.Errors {
		if d.Kind == DiagUnterminatedLiteral {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want an unterminated-literal entry", res.Errors)
	}
}
