package interp

import (
	"bytes"
	"strings"
	"testing"

	"ucc/internal/ast"
	"ucc/internal/diagnostics"
	"ucc/internal/ir"
	"ucc/internal/irgen"
	"ucc/internal/types"
)

type result struct {
	output string
	status int
	errors string
}

func run(t *testing.T, prog *ast.Program, input string) result {
	t.Helper()
	code := ir.Emit(irgen.Generate(prog))

	var out, errs bytes.Buffer
	machine := New(Options{
		Input:    strings.NewReader(input),
		Output:   &out,
		Reporter: diagnostics.NewReporter(&errs),
	})
	status, err := machine.Run(code)
	if err != nil {
		t.Fatalf("Run: %v\nlisting:\n%s", err, ir.FormatProgram(code))
	}
	return result{output: out.String(), status: status, errors: errs.String()}
}

func mainWith(items ...ast.Node) *ast.Program {
	return &ast.Program{
		Name: "test",
		Decls: []ast.Node{
			&ast.FuncDef{
				Name:   "main",
				Return: types.IntType,
				Body:   &ast.Compound{Items: items},
			},
		},
	}
}

func intVar(name string) *ast.ID {
	return &ast.ID{Name: name, Type: types.IntType}
}

func intLit(v int) *ast.IntConstant { return &ast.IntConstant{Value: v} }

func assign(target *ast.ID, value ast.Expr) ast.Node {
	return &ast.ExprStmt{X: &ast.Assignment{Type: types.IntType, Target: target, Value: value}}
}

func binop(op string, left, right ast.Expr, ty types.Type) *ast.BinaryOp {
	return &ast.BinaryOp{Op: op, Left: left, Right: right, Type: ty}
}

func printOf(args ...ast.Expr) ast.Node { return &ast.Print{Args: args} }

func TestRunArithmetic(t *testing.T) {
	got := run(t, mainWith(
		printOf(binop("+", intLit(1), intLit(2), types.IntType)),
		&ast.Return{Value: intLit(0)},
	), "")
	if got.output != "3" {
		t.Errorf("output = %q, want %q", got.output, "3")
	}
	if got.status != 0 {
		t.Errorf("status = %d, want 0", got.status)
	}
}

func TestRunDivision(t *testing.T) {
	tests := []struct {
		op    string
		left  ast.Expr
		right ast.Expr
		ty    types.Type
		want  string
	}{
		{"/", intLit(7), intLit(2), types.IntType, "3"},
		{"/", &ast.FloatConstant{Value: 7}, &ast.FloatConstant{Value: 2}, types.FloatType, "3.5"},
		{"%", intLit(7), intLit(2), types.IntType, "1"},
		{"-", intLit(2), intLit(7), types.IntType, "-5"},
	}

	for _, tt := range tests {
		got := run(t, mainWith(
			printOf(binop(tt.op, tt.left, tt.right, tt.ty)),
			&ast.Return{Value: intLit(0)},
		), "")
		if got.output != tt.want {
			t.Errorf("%s: output = %q, want %q", tt.op, got.output, tt.want)
		}
	}
}

func TestRunExitStatus(t *testing.T) {
	got := run(t, mainWith(&ast.Return{Value: intLit(7)}), "")
	if got.status != 7 {
		t.Errorf("status = %d, want 7", got.status)
	}
}

func TestRunFunctionCall(t *testing.T) {
	addType := types.NewFunction("add", types.IntType, types.IntType, types.IntType)
	prog := &ast.Program{
		Name: "test",
		Decls: []ast.Node{
			&ast.FuncDef{
				Name:   "add",
				Return: types.IntType,
				Params: []ast.Param{
					{Name: "a", Type: types.IntType},
					{Name: "b", Type: types.IntType},
				},
				Body: &ast.Compound{Items: []ast.Node{
					&ast.Return{Value: binop("+", intVar("a"), intVar("b"), types.IntType)},
				}},
			},
			&ast.FuncDef{
				Name:   "main",
				Return: types.IntType,
				Body: &ast.Compound{Items: []ast.Node{
					printOf(&ast.FuncCall{
						Callee: &ast.ID{Name: "add", Type: addType, Global: true},
						Args:   []ast.Expr{intLit(2), intLit(3)},
						Type:   types.IntType,
					}),
					&ast.Return{Value: intLit(0)},
				}},
			},
		},
	}

	got := run(t, prog, "")
	if got.output != "5" {
		t.Errorf("output = %q, want %q", got.output, "5")
	}
}

func TestRunRecursion(t *testing.T) {
	factType := types.NewFunction("fact", types.IntType, types.IntType)
	callFact := func(arg ast.Expr) *ast.FuncCall {
		return &ast.FuncCall{
			Callee: &ast.ID{Name: "fact", Type: factType, Global: true},
			Args:   []ast.Expr{arg},
			Type:   types.IntType,
		}
	}

	prog := &ast.Program{
		Name: "test",
		Decls: []ast.Node{
			&ast.FuncDef{
				Name:   "fact",
				Return: types.IntType,
				Params: []ast.Param{{Name: "n", Type: types.IntType}},
				Body: &ast.Compound{Items: []ast.Node{
					&ast.If{
						Cond: binop("<=", intVar("n"), intLit(1), types.BoolType),
						Then: &ast.Return{Value: intLit(1)},
					},
					&ast.Return{Value: binop("*", intVar("n"),
						callFact(binop("-", intVar("n"), intLit(1), types.IntType)),
						types.IntType)},
				}},
			},
			&ast.FuncDef{
				Name:   "main",
				Return: types.IntType,
				Body: &ast.Compound{Items: []ast.Node{
					printOf(callFact(intLit(5))),
					&ast.Return{Value: intLit(0)},
				}},
			},
		},
	}

	got := run(t, prog, "")
	if got.output != "120" {
		t.Errorf("output = %q, want %q", got.output, "120")
	}
}

func TestRunWhileLoop(t *testing.T) {
	// s = 0; i = 1; while (i <= 5) { s = s + i; i = i + 1 } print s
	got := run(t, mainWith(
		&ast.VarDecl{Name: "s", Type: types.IntType, Init: intLit(0)},
		&ast.VarDecl{Name: "i", Type: types.IntType, Init: intLit(1)},
		&ast.While{
			Cond: binop("<=", intVar("i"), intLit(5), types.BoolType),
			Body: &ast.Compound{Items: []ast.Node{
				assign(intVar("s"), binop("+", intVar("s"), intVar("i"), types.IntType)),
				assign(intVar("i"), binop("+", intVar("i"), intLit(1), types.IntType)),
			}},
		},
		printOf(intVar("s")),
		&ast.Return{Value: intLit(0)},
	), "")
	if got.output != "15" {
		t.Errorf("output = %q, want %q", got.output, "15")
	}
}

func TestRunGlobalsAndArrays(t *testing.T) {
	arr := types.NewArray(types.IntType, 3)
	prog := &ast.Program{
		Name: "test",
		Decls: []ast.Node{
			&ast.VarDecl{Name: "v", Type: arr, Global: true, Init: &ast.InitList{
				Type:  arr,
				Items: []ast.Expr{intLit(10), intLit(20), intLit(30)},
			}},
			&ast.FuncDef{
				Name:   "main",
				Return: types.IntType,
				Body: &ast.Compound{Items: []ast.Node{
					printOf(&ast.ArrayRef{
						Array: &ast.ID{Name: "v", Type: arr, Global: true},
						Index: intLit(1),
						Type:  types.IntType,
					}),
					&ast.Return{Value: intLit(0)},
				}},
			},
		},
	}

	got := run(t, prog, "")
	if got.output != "20" {
		t.Errorf("output = %q, want %q", got.output, "20")
	}
}

func TestRunLocalArrayInit(t *testing.T) {
	arr := types.NewArray(types.IntType, 3)
	ref := func(i int) *ast.ArrayRef {
		return &ast.ArrayRef{
			Array: &ast.ID{Name: "v", Type: arr},
			Index: intLit(i),
			Type:  types.IntType,
		}
	}
	got := run(t, mainWith(
		&ast.VarDecl{Name: "v", Type: arr, Init: &ast.InitList{
			Type:  arr,
			Items: []ast.Expr{intLit(7), intLit(8), intLit(9)},
		}},
		printOf(binop("+", ref(0), ref(2), types.IntType)),
		&ast.Return{Value: intLit(0)},
	), "")
	if got.output != "16" {
		t.Errorf("output = %q, want %q", got.output, "16")
	}
}

func TestRunUninitialized(t *testing.T) {
	// an unwritten variable prints the marker and absorbs arithmetic
	got := run(t, mainWith(
		&ast.VarDecl{Name: "x", Type: types.IntType},
		printOf(intVar("x")),
		printOf(binop("+", intVar("x"), intLit(1), types.IntType)),
		&ast.Return{Value: intLit(0)},
	), "")
	if got.output != "XXXXXXXX" {
		t.Errorf("output = %q, want %q", got.output, "XXXXXXXX")
	}
}

func TestRunUninitializedComparesFalse(t *testing.T) {
	// both x == 0 and x != 0 are false for unwritten x
	for _, op := range []string{"==", "!=", "<", ">="} {
		got := run(t, mainWith(
			&ast.VarDecl{Name: "x", Type: types.IntType},
			&ast.If{
				Cond: binop(op, intVar("x"), intLit(0), types.BoolType),
				Then: printOf(intLit(1)),
				Else: printOf(intLit(2)),
			},
			&ast.Return{Value: intLit(0)},
		), "")
		if got.output != "2" {
			t.Errorf("op %s: output = %q, want %q", op, got.output, "2")
		}
	}
}

func TestRunPrintForms(t *testing.T) {
	got := run(t, mainWith(
		printOf(&ast.StringConstant{Value: "hi "}),
		printOf(&ast.FloatConstant{Value: 2}),
		&ast.Print{}, // bare newline
		printOf(&ast.CharConstant{Value: 'A'}),
		printOf(&ast.BoolConstant{Value: true}),
		&ast.Return{Value: intLit(0)},
	), "")
	want := "hi 2.0\nAtrue"
	if got.output != want {
		t.Errorf("output = %q, want %q", got.output, want)
	}
}

func TestRunRead(t *testing.T) {
	got := run(t, mainWith(
		&ast.VarDecl{Name: "x", Type: types.IntType},
		&ast.VarDecl{Name: "y", Type: types.IntType},
		&ast.Read{Args: []ast.Expr{intVar("x"), intVar("y")}},
		printOf(binop("+", intVar("x"), intVar("y"), types.IntType)),
		&ast.Return{Value: intLit(0)},
	), "40 2\n")
	if got.output != "42" {
		t.Errorf("output = %q, want %q", got.output, "42")
	}
}

func TestRunReadAcrossLines(t *testing.T) {
	got := run(t, mainWith(
		&ast.VarDecl{Name: "x", Type: types.IntType},
		&ast.VarDecl{Name: "y", Type: types.IntType},
		&ast.Read{Args: []ast.Expr{intVar("x"), intVar("y")}},
		printOf(binop("*", intVar("x"), intVar("y"), types.IntType)),
		&ast.Return{Value: intLit(0)},
	), "6\n7\n")
	if got.output != "42" {
		t.Errorf("output = %q, want %q", got.output, "42")
	}
}

func TestRunReadIllegalInput(t *testing.T) {
	got := run(t, mainWith(
		&ast.VarDecl{Name: "x", Type: types.IntType},
		&ast.Read{Args: []ast.Expr{intVar("x")}},
		printOf(intVar("x")),
		&ast.Return{Value: intLit(0)},
	), "abc\n")
	// the destination keeps its previous contents and execution continues
	if got.output != "XXXX" {
		t.Errorf("output = %q, want %q", got.output, "XXXX")
	}
	if !strings.Contains(got.errors, "illegal input") {
		t.Errorf("diagnostics = %q, want illegal input report", got.errors)
	}
}

func TestRunReadEndOfInput(t *testing.T) {
	got := run(t, mainWith(
		&ast.VarDecl{Name: "x", Type: types.IntType},
		&ast.Read{Args: []ast.Expr{intVar("x")}},
		printOf(intVar("x")),
		&ast.Return{Value: intLit(0)},
	), "")
	if got.output != "XXXX" {
		t.Errorf("output = %q, want %q", got.output, "XXXX")
	}
	if !strings.Contains(got.errors, "end of input") {
		t.Errorf("diagnostics = %q, want end-of-input report", got.errors)
	}
}

func TestRunReadChar(t *testing.T) {
	got := run(t, mainWith(
		&ast.VarDecl{Name: "c", Type: types.CharType},
		&ast.Read{Args: []ast.Expr{&ast.ID{Name: "c", Type: types.CharType}}},
		printOf(&ast.ID{Name: "c", Type: types.CharType}),
		&ast.Return{Value: intLit(0)},
	), "z\n")
	if got.output != "z" {
		t.Errorf("output = %q, want %q", got.output, "z")
	}
}

func TestRunPointers(t *testing.T) {
	// x = 1; p = &x; *p = 9; print x
	ptr := types.NewPointer(types.IntType)
	pVar := &ast.ID{Name: "p", Type: ptr}
	got := run(t, mainWith(
		&ast.VarDecl{Name: "x", Type: types.IntType, Init: intLit(1)},
		&ast.VarDecl{Name: "p", Type: ptr, Init: &ast.AddressOp{Op: "&", X: intVar("x"), Type: ptr}},
		&ast.ExprStmt{X: &ast.Assignment{
			Type:   types.IntType,
			Target: &ast.AddressOp{Op: "*", X: pVar, Type: types.IntType},
			Value:  intLit(9),
		}},
		printOf(intVar("x")),
		&ast.Return{Value: intLit(0)},
	), "")
	if got.output != "9" {
		t.Errorf("output = %q, want %q", got.output, "9")
	}
}

func TestRunLogicalNoShortCircuit(t *testing.T) {
	// && evaluates both sides and yields the deciding operand's value
	got := run(t, mainWith(
		&ast.If{
			Cond: binop("&&", intLit(1), intLit(0), types.BoolType),
			Then: printOf(intLit(1)),
			Else: printOf(intLit(2)),
		},
		&ast.Return{Value: intLit(0)},
	), "")
	if got.output != "2" {
		t.Errorf("output = %q, want %q", got.output, "2")
	}
}

func TestRunUnbalancedReturn(t *testing.T) {
	code := []ir.Instr{
		&ir.DefineInstr{Type: types.VoidType, Source: ir.GlobalVariable{Name: ".start"}},
		&ir.ReturnInstr{Type: types.VoidType},
		&ir.ReturnInstr{Type: types.VoidType},
	}
	machine := New(Options{
		Input:    strings.NewReader(""),
		Output:   &bytes.Buffer{},
		Reporter: diagnostics.NewReporter(&bytes.Buffer{}),
	})
	if _, err := machine.Run(code); err == nil {
		t.Error("return without a caller should fail")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{0, false},
		{1, true},
		{-1, true},
		{0.0, false},
		{0.5, true},
		{false, false},
		{true, true},
		{rune(0), false},
		{'a', true},
		{Uninit, false},
	}
	for _, tt := range tests {
		if got := truthy(tt.v); got != tt.want {
			t.Errorf("truthy(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
