package ast

import (
	"testing"

	"ucc/internal/types"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  types.Type
	}{
		{"int", types.IntType},
		{"float", types.FloatType},
		{"void", types.VoidType},
		{"int[4]", types.NewArray(types.IntType, 4)},
		{"char[3][2]", types.NewArray(types.NewArray(types.CharType, 3), 2)},
		{"int*", types.NewPointer(types.IntType)},
		{"int[4]*", types.NewPointer(types.NewArray(types.IntType, 4))},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.input)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", tt.input, err)
		}
		if !got.Equals(tt.want) {
			t.Errorf("ParseType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, input := range []string{"", "double", "int[", "int[x]", "int)"} {
		if _, err := ParseType(input); err == nil {
			t.Errorf("ParseType(%q) should fail", input)
		}
	}
}

func TestDecodeProgram(t *testing.T) {
	data := []byte(`{
		"kind": "Program",
		"name": "sum",
		"decls": [
			{"kind": "VarDecl", "name": "total", "type": "int", "global": true,
			 "init": {"kind": "IntConstant", "value": 0}},
			{"kind": "FuncDef", "name": "main", "return": "int", "params": [],
			 "body": {"kind": "Compound", "items": [
				{"kind": "Return", "value": {"kind": "IntConstant", "value": 0}}
			 ]}}
		]
	}`)

	prog, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if prog.Name != "sum" {
		t.Errorf("program name = %q", prog.Name)
	}
	if len(prog.Decls) != 2 {
		t.Fatalf("decoded %d decls, want 2", len(prog.Decls))
	}

	decl, ok := prog.Decls[0].(*VarDecl)
	if !ok {
		t.Fatalf("first decl is %T", prog.Decls[0])
	}
	if !decl.Global || decl.Name != "total" || !decl.Type.Equals(types.IntType) {
		t.Errorf("unexpected global decl %+v", decl)
	}
	if c, ok := decl.Init.(*IntConstant); !ok || c.Value != 0 {
		t.Errorf("unexpected initializer %#v", decl.Init)
	}

	def, ok := prog.Decls[1].(*FuncDef)
	if !ok {
		t.Fatalf("second decl is %T", prog.Decls[1])
	}
	if def.Name != "main" || !def.Return.Equals(types.IntType) || len(def.Params) != 0 {
		t.Errorf("unexpected function %+v", def)
	}
	if len(def.Body.Items) != 1 {
		t.Fatalf("body has %d items", len(def.Body.Items))
	}
	ret, ok := def.Body.Items[0].(*Return)
	if !ok {
		t.Fatalf("body item is %T", def.Body.Items[0])
	}
	if c, ok := ret.Value.(*IntConstant); !ok || c.Value != 0 {
		t.Errorf("unexpected return value %#v", ret.Value)
	}
}

func TestDecodeExpressions(t *testing.T) {
	data := []byte(`{
		"kind": "Assignment", "type": "int",
		"target": {"kind": "ArrayRef", "type": "int",
			"array": {"kind": "ID", "name": "v", "type": "int[4]"},
			"index": {"kind": "IntConstant", "value": 2}},
		"value": {"kind": "BinaryOp", "op": "+", "type": "int",
			"left": {"kind": "IntConstant", "value": 1},
			"right": {"kind": "CharConstant", "value": "A"}}
	}`)

	node, err := decodeNode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a, ok := node.(*Assignment)
	if !ok {
		t.Fatalf("decoded %T", node)
	}

	ref, ok := a.Target.(*ArrayRef)
	if !ok {
		t.Fatalf("target is %T", a.Target)
	}
	id, ok := ref.Array.(*ID)
	if !ok || id.Name != "v" || !id.Type.Equals(types.NewArray(types.IntType, 4)) {
		t.Errorf("unexpected array %#v", ref.Array)
	}

	bin, ok := a.Value.(*BinaryOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("value is %#v", a.Value)
	}
	if ch, ok := bin.Right.(*CharConstant); !ok || ch.Value != 'A' {
		t.Errorf("unexpected char constant %#v", bin.Right)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	if _, err := Decode([]byte(`{"kind": "Goto"}`)); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := Decode([]byte(`{"kind": "IntConstant", "value": 1}`)); err == nil {
		t.Error("non-Program root should fail")
	}
}
