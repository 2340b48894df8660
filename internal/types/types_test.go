package types

import (
	"testing"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{IntType, "int"},
		{FloatType, "float"},
		{CharType, "char"},
		{BoolType, "bool"},
		{VoidType, "void"},
		{StringType, "string"},
		{NewArray(IntType, 4), "int[4]"},
		{NewArray(NewArray(CharType, 3), 2), "char[3][2]"},
		{NewPointer(FloatType), "float*"},
		{NewFunction("max", IntType, IntType, IntType), "int(int, int)"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTypeEquals(t *testing.T) {
	tests := []struct {
		t1    Type
		t2    Type
		equal bool
	}{
		{IntType, IntType, true},
		{IntType, FloatType, false},
		{VoidType, VoidType, true},
		{NewArray(IntType, 4), NewArray(IntType, 4), true},
		{NewArray(IntType, 4), NewArray(IntType, 5), false},
		{NewArray(IntType, 4), NewArray(CharType, 4), false},
		{NewPointer(IntType), NewPointer(IntType), true},
		{NewPointer(IntType), IntType, false},
		{NewFunction("f", IntType, IntType), NewFunction("g", IntType, IntType), true},
		{NewFunction("f", IntType, IntType), NewFunction("f", IntType, FloatType), false},
	}

	for _, tt := range tests {
		if got := tt.t1.Equals(tt.t2); got != tt.equal {
			t.Errorf("%s.Equals(%s) = %v, want %v", tt.t1, tt.t2, got, tt.equal)
		}
	}
}

func TestTypeSizeof(t *testing.T) {
	tests := []struct {
		typ  Type
		want int
	}{
		{IntType, 1},
		{FloatType, 1},
		{CharType, 1},
		{BoolType, 1},
		{VoidType, 0},
		{StringType, 0}, // extent comes from the literal
		{NewArray(IntType, 4), 4},
		{NewArray(NewArray(IntType, 3), 2), 6},
		{NewPointer(NewArray(IntType, 10)), 1},
		{NewFunction("f", VoidType), 1},
	}

	for _, tt := range tests {
		if got := tt.typ.Sizeof(); got != tt.want {
			t.Errorf("%s.Sizeof() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestPrimitiveLookup(t *testing.T) {
	for _, name := range []string{"int", "float", "char", "bool", "string", "void"} {
		typ, ok := Primitive(name)
		if !ok {
			t.Fatalf("Primitive(%q) not found", name)
		}
		if typ.String() != name {
			t.Errorf("Primitive(%q).String() = %q", name, typ.String())
		}
	}
	if _, ok := Primitive("double"); ok {
		t.Error("Primitive(\"double\") should not resolve")
	}
}

func TestIsPrimitive(t *testing.T) {
	if !IsPrimitive(IntType) {
		t.Error("IsPrimitive(IntType) = false")
	}
	if IsPrimitive(NewArray(IntType, 2)) {
		t.Error("IsPrimitive(array) = true")
	}
	if IsPrimitive(VoidType) {
		t.Error("IsPrimitive(VoidType) = true")
	}
}
