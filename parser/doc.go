// Package parser provides an error-tolerant parser for Cangjie source code.
//
// # Overview
//
// The parser turns bytes into a concrete syntax tree (CST) whose nodes
// carry byte-offset spans and named fields. Malformed input never aborts a
// parse: errors are contained in ERROR nodes and the rest of the document
// keeps its shape, which makes the package suitable for editors and other
// tooling that sees incomplete code most of the time.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │   (CST)     │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           │
//	                           ▼
//	                    ┌─────────────┐
//	                    │   Scanner   │
//	                    │  (layout)   │
//	                    └─────────────┘
//
// The scanner is the stateful part of lexing. It owns the indentation
// stack and emits NEWLINE, INDENT and DEDENT tokens plus delimiter-counted
// raw strings; everything else in the token stream is stateless. Scanner
// state serializes to a compact checkpoint so a later parse can resume
// mid-document, which is what the incremental package builds on.
//
// The grammar is brace-delimited, so the parser keeps NEWLINE tokens as
// statement terminators but discards INDENT and DEDENT before parsing.
// Tokenize still surfaces them, and the indentation stack they maintain is
// what makes checkpointed resumption sound.
//
// # Error Recovery
//
// The parser never panics on malformed input. An unexpected token becomes
// an ERROR node that records the message, the expected token kinds and the
// offending token, then the parser resynchronizes at the next statement or
// declaration boundary.
//
// # Entry Points
//
//	// Parse parses a whole document.
//	func Parse(input []byte, opts ...Option) *Result
//
//	// ParseExpression parses a standalone expression.
//	func ParseExpression(input []byte, opts ...Option) *Result
//
//	// Tokenize runs only the lexer, layout tokens included.
//	func Tokenize(input []byte, opts ...Option) ([]Token, []Diagnostic)
//
// # Spans
//
// Spans are byte offsets only. Use LineIndex to convert an offset to a
// line and column for display:
//
//	idx := parser.NewLineIndex(src)
//	line, col := idx.Locate(node.Span.Start)
//
// # Thread Safety
//
// A Parser instance is not safe for concurrent use. Parse and
// ParseExpression create a fresh instance per call, so the package-level
// entry points may be called concurrently.
//
// # Example Usage
//
//	res := parser.Parse(src)
//	for _, d := range res.Errors {
//	    fmt.Println(d.Message)
//	}
//	fmt.Println(res.Root.String())
package parser
