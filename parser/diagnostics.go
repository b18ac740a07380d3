package parser

import "errors"

type DiagKind int

const (
	DiagUnexpectedToken DiagKind = iota
	DiagUnexpectedChar
	DiagUnterminatedLiteral
	DiagIndentMismatch
	DiagIndentTooDeep
	DiagNonAssociative
)

var diagKindNames = map[DiagKind]string{
	DiagUnexpectedToken:     "UnexpectedToken",
	DiagUnexpectedChar:      "UnexpectedChar",
	DiagUnterminatedLiteral: "UnterminatedLiteral",
	DiagIndentMismatch:      "IndentMismatch",
	DiagIndentTooDeep:       "IndentTooDeep",
	DiagNonAssociative:      "NonAssociative",
}

func (k DiagKind) String() string {
	if name, ok := diagKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Diagnostic is one lex- or parse-level problem. Diagnostics never abort
// the parse; every input produces some tree.
type Diagnostic struct {
	Kind    DiagKind
	Span    Span
	Message string
}

func diagnosticFor(res ScanResult) Diagnostic {
	kind := DiagUnexpectedChar
	switch {
	case errors.Is(res.Err, errIndentMismatch):
		kind = DiagIndentMismatch
	case errors.Is(res.Err, ErrDepthExceeded):
		kind = DiagIndentTooDeep
	case errors.Is(res.Err, errUnterminatedRaw):
		kind = DiagUnterminatedLiteral
	}
	return Diagnostic{Kind: kind, Span: res.Span, Message: res.Err.Error()}
}
