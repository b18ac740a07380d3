package parser

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNodeFields(t *testing.T) {
	res := Parse([]byte("func add(a: Int64): Int64 { return a }"))
	decl := res.Root.Children[0]

	if decl.Field("name") == nil {
		t.Error("Field(name) = nil")
	}
	if decl.Field("no_such_field") != nil {
		t.Error("Field on unknown name should be nil")
	}
	for i, child := range decl.Children {
		name := decl.FieldName(i)
		if name == "" {
			continue
		}
		if decl.Field(name) != child {
			t.Errorf("Field(%q) does not round-trip through FieldName", name)
		}
	}
}

func TestNodeEqual(t *testing.T) {
	a := Parse([]byte("let x = 1 + 2")).Root
	b := Parse([]byte("let x = 1 + 2")).Root
	c := Parse([]byte("let x = 1 + 3")).Root
	shifted := Parse([]byte("  let x = 1 + 2")).Root

	if !a.Equal(b) {
		t.Error("identical sources should be Equal")
	}
	if !a.EqualExact(b) {
		t.Error("identical sources should be EqualExact")
	}
	if a.Equal(c) {
		t.Error("different literals should not be Equal")
	}
	if !a.Equal(shifted) {
		t.Error("Equal should ignore spans")
	}
	if a.EqualExact(shifted) {
		t.Error("EqualExact should compare spans")
	}
}

func TestNodeString(t *testing.T) {
	res := Parse([]byte("let x = 1"))
	out := res.Root.String()
	for _, want := range []string{"SourceFile", "VarDecl", "pattern:", "value:"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
}

func TestNodeJSON(t *testing.T) {
	res := Parse([]byte("let x = 1"))
	data, err := json.Marshal(res.Root)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if decoded["kind"] != "SourceFile" {
		t.Errorf("kind = %v, want SourceFile", decoded["kind"])
	}
	if !strings.Contains(string(data), `"field":"value"`) {
		t.Errorf("JSON should carry field names:\n%s", data)
	}
}

func TestNodeJSONError(t *testing.T) {
	res := Parse([]byte("let = 1"))
	data, err := json.Marshal(res.Root)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	if !strings.Contains(string(data), `"error"`) {
		t.Errorf("JSON should include the error payload:\n%s", data)
	}
}

func TestLineIndex(t *testing.T) {
	src := []byte("ab\ncd\n\nef")
	idx := NewLineIndex(src)
	tests := []struct {
		offset, line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
	}
	for _, tt := range tests {
		line, col := idx.Locate(tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("Locate(%d) = (%d, %d), want (%d, %d)",
				tt.offset, line, col, tt.line, tt.col)
		}
	}
}
