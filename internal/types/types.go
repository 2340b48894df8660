package types

import (
	"fmt"
	"strings"
)

// Type is the semantic representation of uC types.
//
// Design principles:
// - Types are immutable after creation
// - Type equality is structural (deep comparison)
// - Sizeof is measured in storage units (memory slots), not bytes:
//   every scalar occupies exactly one slot
type Type interface {
	// String returns the type name as used in instruction suffixes
	String() string

	// Equals checks structural equality with another type
	Equals(other Type) bool

	// Sizeof returns the size in storage units
	Sizeof() int

	// isType is a marker method to prevent external implementation
	isType()
}

// PrimitiveType represents built-in scalar types (int, float, char, bool).
type PrimitiveType struct {
	name string
}

func (p *PrimitiveType) String() string { return p.name }
func (p *PrimitiveType) Sizeof() int    { return 1 }
func (p *PrimitiveType) isType()        {}
func (p *PrimitiveType) Equals(other Type) bool {
	o, ok := other.(*PrimitiveType)
	return ok && p.name == o.name
}

// Singleton instances for the primitive types.
var (
	IntType   = &PrimitiveType{name: "int"}
	FloatType = &PrimitiveType{name: "float"}
	CharType  = &PrimitiveType{name: "char"}
	BoolType  = &PrimitiveType{name: "bool"}
)

// voidType is the absent-value type for functions without a result.
type voidType struct{}

func (v *voidType) String() string         { return "void" }
func (v *voidType) Sizeof() int            { return 0 }
func (v *voidType) isType()                {}
func (v *voidType) Equals(other Type) bool { _, ok := other.(*voidType); return ok }

var VoidType Type = &voidType{}

// stringType is the type of string literals placed in the text section.
// A string's storage extent is the literal's length, so Sizeof reports
// zero and consumers size the allocation from the value itself.
type stringType struct{}

func (s *stringType) String() string         { return "string" }
func (s *stringType) Sizeof() int            { return 0 }
func (s *stringType) isType()                {}
func (s *stringType) Equals(other Type) bool { _, ok := other.(*stringType); return ok }

var StringType Type = &stringType{}

// ArrayType is a fixed-length sequence of Elem values.
type ArrayType struct {
	Elem Type
	Len  int
}

func NewArray(elem Type, length int) *ArrayType {
	return &ArrayType{Elem: elem, Len: length}
}

func (a *ArrayType) String() string { return fmt.Sprintf("%s[%d]", a.Elem, a.Len) }
func (a *ArrayType) Sizeof() int    { return a.Len * a.Elem.Sizeof() }
func (a *ArrayType) isType()        {}
func (a *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && a.Len == o.Len && a.Elem.Equals(o.Elem)
}

// PointerType is the address of an Inner value. Pointers fit in one slot.
type PointerType struct {
	Inner Type
}

func NewPointer(inner Type) *PointerType {
	return &PointerType{Inner: inner}
}

func (p *PointerType) String() string { return fmt.Sprintf("%s*", p.Inner) }
func (p *PointerType) Sizeof() int    { return 1 }
func (p *PointerType) isType()        {}
func (p *PointerType) Equals(other Type) bool {
	o, ok := other.(*PointerType)
	return ok && p.Inner.Equals(o.Inner)
}

// FunctionType carries a function's name and full signature.
type FunctionType struct {
	FuncName string
	Return   Type
	Params   []Type
}

func NewFunction(name string, ret Type, params ...Type) *FunctionType {
	return &FunctionType{FuncName: name, Return: ret, Params: params}
}

func (f *FunctionType) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", f.Return, strings.Join(params, ", "))
}

func (f *FunctionType) Sizeof() int { return 1 }
func (f *FunctionType) isType()     {}
func (f *FunctionType) Equals(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok || !f.Return.Equals(o.Return) || len(f.Params) != len(o.Params) {
		return false
	}
	for i, p := range f.Params {
		if !p.Equals(o.Params[i]) {
			return false
		}
	}
	return true
}

// IsPrimitive reports whether t is one of the scalar primitive types.
func IsPrimitive(t Type) bool {
	_, ok := t.(*PrimitiveType)
	return ok
}

// Primitive looks up a primitive (or void/string) type by name. It is the
// inverse of String for scalar types, used when decoding serialized ASTs.
func Primitive(name string) (Type, bool) {
	switch name {
	case "int":
		return IntType, true
	case "float":
		return FloatType, true
	case "char":
		return CharType, true
	case "bool":
		return BoolType, true
	case "string":
		return StringType, true
	case "void":
		return VoidType, true
	default:
		return nil, false
	}
}
