// Package ast defines the typed abstract syntax tree consumed by the IR
// generator. Trees are produced by an external parser and semantic pass:
// every expression node arrives annotated with a resolved type and every
// identifier with its global/local binding. The generator has no fallback
// when that contract is violated.
package ast

import "ucc/internal/types"

// Node is implemented by every AST node.
type Node interface {
	astNode()
}

// Expr is an AST node that produces a value.
type Expr interface {
	Node
	// ExprType returns the resolved type annotated by semantic analysis.
	ExprType() types.Type
}

// Program is the root of a compilation unit.
type Program struct {
	Name  string
	Decls []Node
}

func (*Program) astNode() {}

// VarDecl declares a scalar or array variable, optionally initialized.
// Global is true for declarations bound to the data section.
type VarDecl struct {
	Name   string
	Type   types.Type
	Init   Expr
	Global bool
}

func (*VarDecl) astNode() {}

// Param is one formal parameter of a function definition.
type Param struct {
	Name string
	Type types.Type
}

// FuncDef defines a function with its signature and body.
type FuncDef struct {
	Name   string
	Return types.Type
	Params []Param
	Body   *Compound
}

func (*FuncDef) astNode() {}

// # # # # # # #
// STATEMENTS

// Compound is a brace-delimited sequence of declarations and statements.
type Compound struct {
	Items []Node
}

func (*Compound) astNode() {}

// If executes Then when Cond is truthy, otherwise Else (which may be nil).
type If struct {
	Cond Expr
	Then Node
	Else Node
}

func (*If) astNode() {}

// While repeats Body while Cond holds.
type While struct {
	Cond Expr
	Body Node
}

func (*While) astNode() {}

// For is the classic three-clause loop. Init and Next may be nil.
type For struct {
	Init Node
	Cond Expr
	Next Node
	Body Node
}

func (*For) astNode() {}

// Break exits the innermost enclosing loop.
type Break struct{}

func (*Break) astNode() {}

// Return leaves the current function, optionally yielding Value.
type Return struct {
	Value Expr
}

func (*Return) astNode() {}

// Print writes each argument in order with no separators. An empty
// argument list prints a bare newline.
type Print struct {
	Args []Expr
}

func (*Print) astNode() {}

// Read parses one input token into each argument, type-directed.
type Read struct {
	Args []Expr
}

func (*Read) astNode() {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	X Expr
}

func (*ExprStmt) astNode() {}

// # # # # # # # #
// EXPRESSIONS

// ID references a declared identifier. Global reflects the binding
// decided by semantic analysis.
type ID struct {
	Name   string
	Type   types.Type
	Global bool
}

func (*ID) astNode()               {}
func (e *ID) ExprType() types.Type { return e.Type }

// Assignment stores Value into the location denoted by Target. Value is
// evaluated before the target location is resolved.
type Assignment struct {
	Target Expr
	Value  Expr
	Type   types.Type
}

func (*Assignment) astNode()               {}
func (e *Assignment) ExprType() types.Type { return e.Type }

// BinaryOp is an arithmetic, relational or logical two-operand
// expression. Operands are always both evaluated; && and || do not
// short-circuit.
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
	Type  types.Type
}

func (*BinaryOp) astNode()               {}
func (e *BinaryOp) ExprType() types.Type { return e.Type }

// UnaryOp is a one-operand expression ("!", "-", "+").
type UnaryOp struct {
	Op   string
	X    Expr
	Type types.Type
}

func (*UnaryOp) astNode()               {}
func (e *UnaryOp) ExprType() types.Type { return e.Type }

// AddressOp takes an address ("&") or dereferences one ("*").
type AddressOp struct {
	Op   string
	X    Expr
	Type types.Type
}

func (*AddressOp) astNode()               {}
func (e *AddressOp) ExprType() types.Type { return e.Type }

// ArrayRef indexes an array. Type is the element type.
type ArrayRef struct {
	Array Expr
	Index Expr
	Type  types.Type
}

func (*ArrayRef) astNode()               {}
func (e *ArrayRef) ExprType() types.Type { return e.Type }

// FuncCall invokes Callee with Args in left-to-right order.
type FuncCall struct {
	Callee Expr
	Args   []Expr
	Type   types.Type
}

func (*FuncCall) astNode()               {}
func (e *FuncCall) ExprType() types.Type { return e.Type }

// InitList is a brace initializer for array declarations.
type InitList struct {
	Items []Expr
	Type  types.Type
}

func (*InitList) astNode()               {}
func (e *InitList) ExprType() types.Type { return e.Type }

// # # # # # # #
// CONSTANTS

// IntConstant is an integer literal.
type IntConstant struct {
	Value int
}

func (*IntConstant) astNode()               {}
func (e *IntConstant) ExprType() types.Type { return types.IntType }

// FloatConstant is a floating-point literal.
type FloatConstant struct {
	Value float64
}

func (*FloatConstant) astNode()               {}
func (e *FloatConstant) ExprType() types.Type { return types.FloatType }

// CharConstant is a character literal.
type CharConstant struct {
	Value rune
}

func (*CharConstant) astNode()               {}
func (e *CharConstant) ExprType() types.Type { return types.CharType }

// BoolConstant is a boolean literal.
type BoolConstant struct {
	Value bool
}

func (*BoolConstant) astNode()               {}
func (e *BoolConstant) ExprType() types.Type { return types.BoolType }

// StringConstant is a string literal destined for the text section.
type StringConstant struct {
	Value string
}

func (*StringConstant) astNode()               {}
func (e *StringConstant) ExprType() types.Type { return types.StringType }
