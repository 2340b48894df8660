// Package irgen walks a typed AST and emits three-address instructions
// into basic blocks, producing the block tree consumed by flattening.
package irgen

import (
	"fmt"

	"ucc/internal/ast"
	"ucc/internal/ir"
	"ucc/internal/types"
)

// binaryOps maps source operators to their IR opcodes.
var binaryOps = map[string]ir.BinaryOp{
	"+":  ir.Add,
	"-":  ir.Sub,
	"*":  ir.Mul,
	"/":  ir.Div,
	"%":  ir.Mod,
	"<":  ir.Lt,
	"<=": ir.Le,
	">":  ir.Gt,
	">=": ir.Ge,
	"==": ir.Eq,
	"!=": ir.Ne,
	"&&": ir.And,
	"||": ir.Or,
}

// Generator emits IR for one program. A missing dispatch case or an AST
// node violating the input contract is an internal-consistency defect
// and panics; there is no recovery path.
type Generator struct {
	glob    *ir.GlobalBlock
	fn      *ir.FunctionBlock
	current *ir.BasicBlock

	// exit labels of enclosing loops, innermost last
	loops []ir.LabelName
}

// Generate builds the block tree for a typed program. When the program
// defines a main function, a ".start" wrapper is synthesized that calls
// it and exits with its result.
func Generate(prog *ast.Program) *ir.GlobalBlock {
	gen := &Generator{glob: ir.NewGlobalBlock()}

	var mainDef *ast.FuncDef
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			gen.genGlobalDecl(d)
		case *ast.FuncDef:
			gen.genFuncDef(d)
			if d.Name == "main" {
				mainDef = d
			}
		default:
			panic(fmt.Sprintf("irgen: no handler for declaration %T", decl))
		}
	}

	if mainDef != nil {
		gen.genStartWrapper(mainDef)
	}
	return gen.glob
}

// # # # # # # # #
// DECLARATIONS

func (g *Generator) genGlobalDecl(decl *ast.VarDecl) {
	g.glob.NewGlobal(decl.Name, decl.Type, constValue(decl.Init))
}

// constValue evaluates a global initializer, which must be a constant
// expression per the input contract.
func constValue(init ast.Expr) any {
	switch e := init.(type) {
	case nil:
		return nil
	case *ast.IntConstant:
		return e.Value
	case *ast.FloatConstant:
		return e.Value
	case *ast.CharConstant:
		return e.Value
	case *ast.BoolConstant:
		return e.Value
	case *ast.StringConstant:
		return e.Value
	case *ast.InitList:
		items := make([]any, len(e.Items))
		for i, item := range e.Items {
			items[i] = constValue(item)
		}
		return items
	default:
		panic(fmt.Sprintf("irgen: global initializer %T is not constant", init))
	}
}

func (g *Generator) genFuncDef(def *ast.FuncDef) {
	params := make([]types.Type, len(def.Params))
	for i, param := range def.Params {
		params[i] = param.Type
	}
	sig := types.NewFunction(def.Name, def.Return, params...)

	g.fn = g.glob.NewFunction(sig)
	g.current = g.fn.Entry

	// spill parameter temporaries into named locals
	for i, param := range def.Params {
		varname := ir.NamedVariable{Name: param.Name}
		g.emit(&ir.AllocInstr{Type: param.Type, Varname: varname})
		g.emit(&ir.StoreInstr{
			Type:   param.Type,
			Source: g.fn.Define.Args[i].Name,
			Target: varname,
		})
	}

	g.genStmt(def.Body)

	// a body that falls off the end still needs to unwind the call
	if !g.terminated() {
		g.emit(&ir.ReturnInstr{Type: def.Return})
	}
	g.fn = nil
	g.current = nil
}

// genStartWrapper emits the ".start" entry function: call main, then
// exit with its result (or zero for a void main).
func (g *Generator) genStartWrapper(mainDef *ast.FuncDef) {
	g.fn = g.glob.NewFunction(types.NewFunction(".start", types.VoidType))
	g.current = g.fn.Entry

	callee := g.fn.NewTemp()
	g.emit(&ir.GetInstr{
		Type:   mainDef.Return,
		Source: ir.GlobalVariable{Name: "main"},
		Target: callee,
	})

	if mainDef.Return.Equals(types.VoidType) {
		g.emit(&ir.CallInstr{Type: mainDef.Return, Source: callee})
		status := g.newConstant(types.IntType, 0)
		g.emit(&ir.ExitInstr{Source: status})
	} else {
		result := g.fn.NewTemp()
		g.emit(&ir.CallInstr{Type: mainDef.Return, Source: callee, Target: result})
		g.emit(&ir.ExitInstr{Source: result})
	}
	g.fn = nil
	g.current = nil
}

func (g *Generator) genLocalDecl(decl *ast.VarDecl) {
	varname := ir.NamedVariable{Name: decl.Name}

	if arr, ok := decl.Type.(*types.ArrayType); ok {
		g.genArrayDecl(decl, varname, arr)
		return
	}

	g.emit(&ir.AllocInstr{Type: decl.Type, Varname: varname})
	if decl.Init != nil {
		value := g.genExpr(decl.Init)
		g.emit(&ir.StoreInstr{Type: decl.Type, Source: value, Target: varname})
	}
}

// genArrayDecl reserves a pointer slot plus backing storage, stores the
// backing address through the pointer, and copies any initializer
// element by element.
func (g *Generator) genArrayDecl(decl *ast.VarDecl, varname ir.NamedVariable, arr *types.ArrayType) {
	data := ir.NamedVariable{Name: fmt.Sprintf(".%s.content", decl.Name)}
	g.emit(&ir.AllocInstr{Type: types.IntType, Varname: varname})
	g.emit(&ir.AllocInstr{Type: arr, Varname: data})

	pointer := g.fn.NewTemp()
	g.emit(&ir.GetInstr{Type: arr, Source: data, Target: pointer})
	g.emit(&ir.StoreInstr{Type: types.IntType, Source: pointer, Target: varname})

	switch init := decl.Init.(type) {
	case nil:
	case *ast.InitList:
		for i, item := range init.Items {
			value := g.genExpr(item)
			g.genElemStore(arr.Elem, pointer, i, value)
		}
	case *ast.StringConstant:
		for i, ch := range init.Value {
			value := g.newConstant(types.CharType, ch)
			g.genElemStore(arr.Elem, pointer, i, value)
		}
	default:
		panic(fmt.Sprintf("irgen: array initializer %T not supported", decl.Init))
	}
}

// genElemStore writes value into element index of the array at pointer.
// The index is scaled at generation time.
func (g *Generator) genElemStore(elem types.Type, pointer ir.Variable, index int, value ir.Variable) {
	offset := g.newConstant(types.IntType, index*elem.Sizeof())
	addr := g.fn.NewTemp()
	g.emit(&ir.BinaryInstr{Op: ir.Add, Type: elem, Left: pointer, Right: offset, Target: addr})
	g.emit(&ir.StoreInstr{Type: elem, Source: value, Target: addr})
}

// # # # # # # #
// STATEMENTS

func (g *Generator) genStmt(node ast.Node) {
	switch n := node.(type) {
	case *ast.VarDecl:
		g.genLocalDecl(n)
	case *ast.Compound:
		for _, item := range n.Items {
			g.genStmt(item)
		}
	case *ast.If:
		g.genIf(n)
	case *ast.While:
		g.genWhile(n)
	case *ast.For:
		g.genFor(n)
	case *ast.Break:
		g.genBreak()
	case *ast.Return:
		g.genReturn(n)
	case *ast.Print:
		g.genPrint(n)
	case *ast.Read:
		g.genRead(n)
	case *ast.ExprStmt:
		g.genExpr(n.X)
	default:
		panic(fmt.Sprintf("irgen: no handler for statement %T", node))
	}
}

func (g *Generator) genIf(stmt *ast.If) {
	cond := g.genExpr(stmt.Cond)

	thenBlock := g.fn.NewBlock("")
	var elseBlock *ir.BasicBlock
	if stmt.Else != nil {
		elseBlock = g.fn.NewBlock("")
	}
	endBlock := g.fn.NewBlock("")

	falseTarget := endBlock.Label()
	if elseBlock != nil {
		falseTarget = elseBlock.Label()
	}
	g.emit(&ir.CBranchInstr{Test: cond, TrueTarget: thenBlock.Label(), FalseTarget: falseTarget})

	g.current = thenBlock
	g.genStmt(stmt.Then)
	if !g.terminated() {
		g.emit(&ir.JumpInstr{Target: endBlock.Label()})
	}

	if elseBlock != nil {
		g.current = elseBlock
		g.genStmt(stmt.Else)
		if !g.terminated() {
			g.emit(&ir.JumpInstr{Target: endBlock.Label()})
		}
	}
	g.current = endBlock
}

func (g *Generator) genWhile(stmt *ast.While) {
	testBlock := g.fn.NewBlock("")
	bodyBlock := g.fn.NewBlock("")
	endBlock := g.fn.NewBlock("")

	g.emit(&ir.JumpInstr{Target: testBlock.Label()})
	g.current = testBlock
	cond := g.genExpr(stmt.Cond)
	g.emit(&ir.CBranchInstr{Test: cond, TrueTarget: bodyBlock.Label(), FalseTarget: endBlock.Label()})

	g.loops = append(g.loops, endBlock.Label())
	g.current = bodyBlock
	g.genStmt(stmt.Body)
	if !g.terminated() {
		g.emit(&ir.JumpInstr{Target: testBlock.Label()})
	}
	g.loops = g.loops[:len(g.loops)-1]

	g.current = endBlock
}

func (g *Generator) genFor(stmt *ast.For) {
	if stmt.Init != nil {
		g.genStmt(stmt.Init)
	}

	testBlock := g.fn.NewBlock("")
	bodyBlock := g.fn.NewBlock("")
	endBlock := g.fn.NewBlock("")

	g.emit(&ir.JumpInstr{Target: testBlock.Label()})
	g.current = testBlock
	if stmt.Cond != nil {
		cond := g.genExpr(stmt.Cond)
		g.emit(&ir.CBranchInstr{Test: cond, TrueTarget: bodyBlock.Label(), FalseTarget: endBlock.Label()})
	}

	g.loops = append(g.loops, endBlock.Label())
	g.current = bodyBlock
	g.genStmt(stmt.Body)
	if stmt.Next != nil {
		g.genStmt(stmt.Next)
	}
	if !g.terminated() {
		g.emit(&ir.JumpInstr{Target: testBlock.Label()})
	}
	g.loops = g.loops[:len(g.loops)-1]

	g.current = endBlock
}

func (g *Generator) genBreak() {
	if len(g.loops) == 0 {
		panic("irgen: break outside of loop")
	}
	g.emit(&ir.JumpInstr{Target: g.loops[len(g.loops)-1]})
}

func (g *Generator) genReturn(stmt *ast.Return) {
	ret := &ir.ReturnInstr{Type: types.VoidType}
	if stmt.Value != nil {
		ret = &ir.ReturnInstr{Type: stmt.Value.ExprType(), Target: g.genExpr(stmt.Value)}
	}
	g.emit(ret)
}

func (g *Generator) genPrint(stmt *ast.Print) {
	if len(stmt.Args) == 0 {
		g.emit(&ir.PrintInstr{})
		return
	}
	for _, arg := range stmt.Args {
		value := g.genExpr(arg)
		g.emit(&ir.PrintInstr{Type: arg.ExprType(), Source: value})
	}
}

func (g *Generator) genRead(stmt *ast.Read) {
	for _, arg := range stmt.Args {
		var source ir.Variable
		if id, ok := arg.(*ast.ID); ok {
			source = g.varname(id)
		} else {
			source = g.genRef(arg)
		}
		g.emit(&ir.ReadInstr{Type: arg.ExprType(), Source: source})
	}
}

// # # # # # # # #
// EXPRESSIONS

// genExpr emits code for an rvalue and returns the variable holding it.
func (g *Generator) genExpr(expr ast.Expr) ir.Variable {
	return g.gen(expr, false)
}

// genRef emits code producing the expression's address instead of its
// loaded value.
func (g *Generator) genRef(expr ast.Expr) ir.Variable {
	return g.gen(expr, true)
}

func (g *Generator) gen(expr ast.Expr, ref bool) ir.Variable {
	switch e := expr.(type) {
	case *ast.ID:
		return g.genID(e, ref)
	case *ast.Assignment:
		return g.genAssignment(e)
	case *ast.BinaryOp:
		return g.genBinaryOp(e)
	case *ast.UnaryOp:
		return g.genUnaryOp(e)
	case *ast.AddressOp:
		return g.genAddressOp(e, ref)
	case *ast.ArrayRef:
		return g.genArrayRef(e, ref)
	case *ast.FuncCall:
		return g.genFuncCall(e)
	case *ast.IntConstant:
		return g.newConstant(types.IntType, e.Value)
	case *ast.FloatConstant:
		return g.newConstant(types.FloatType, e.Value)
	case *ast.CharConstant:
		return g.newConstant(types.CharType, e.Value)
	case *ast.BoolConstant:
		return g.newConstant(types.BoolType, e.Value)
	case *ast.StringConstant:
		return g.glob.NewLiteral(types.StringType, e.Value)
	default:
		panic(fmt.Sprintf("irgen: no handler for expression %T", expr))
	}
}

// varname resolves an identifier to its storage symbol according to the
// binding decided by semantic analysis.
func (g *Generator) varname(id *ast.ID) ir.Variable {
	if id.Global {
		return ir.GlobalVariable{Name: id.Name}
	}
	return ir.NamedVariable{Name: id.Name}
}

func (g *Generator) genID(id *ast.ID, ref bool) ir.Variable {
	stackvar := g.varname(id)
	register := g.fn.NewTemp()
	if ref {
		g.emit(&ir.GetInstr{Type: id.Type, Source: stackvar, Target: register})
	} else {
		g.emit(&ir.LoadInstr{Type: id.Type, Varname: stackvar, Target: register})
	}
	return register
}

// genAssignment evaluates the stored value first; a plain identifier
// target takes a direct store, any other target is resolved to an
// address and stored through.
func (g *Generator) genAssignment(a *ast.Assignment) ir.Variable {
	value := g.genExpr(a.Value)
	if id, ok := a.Target.(*ast.ID); ok {
		g.emit(&ir.StoreInstr{Type: a.Type, Source: value, Target: g.varname(id)})
	} else {
		target := g.genRef(a.Target)
		g.emit(&ir.StoreInstr{Type: a.Type, Source: value, Target: target})
	}
	return value
}

func (g *Generator) genBinaryOp(b *ast.BinaryOp) ir.Variable {
	op, ok := binaryOps[b.Op]
	if !ok {
		panic(fmt.Sprintf("irgen: no opcode for operator %q", b.Op))
	}
	left := g.genExpr(b.Left)
	right := g.genExpr(b.Right)
	target := g.fn.NewTemp()
	g.emit(&ir.BinaryInstr{Op: op, Type: b.Type, Left: left, Right: right, Target: target})
	return target
}

func (g *Generator) genUnaryOp(u *ast.UnaryOp) ir.Variable {
	switch u.Op {
	case "+":
		return g.genExpr(u.X)
	case "-":
		// 0 - x keeps negation inside the two-operand instruction set
		zero := g.newConstant(u.Type, zeroOf(u.Type))
		value := g.genExpr(u.X)
		target := g.fn.NewTemp()
		g.emit(&ir.BinaryInstr{Op: ir.Sub, Type: u.Type, Left: zero, Right: value, Target: target})
		return target
	case "!":
		value := g.genExpr(u.X)
		target := g.fn.NewTemp()
		g.emit(&ir.NotInstr{Type: u.Type, Expr: value, Target: target})
		return target
	default:
		panic(fmt.Sprintf("irgen: no handler for unary operator %q", u.Op))
	}
}

func zeroOf(ty types.Type) any {
	if ty.Equals(types.FloatType) {
		return 0.0
	}
	return 0
}

// genAddressOp handles "&" and "*". Address-of resolves its operand in
// reference mode. Dereference evaluates the pointer as a value: in
// reference mode that value is the address stored through, otherwise an
// element fetch at offset zero loads the pointed-to slot.
func (g *Generator) genAddressOp(a *ast.AddressOp, ref bool) ir.Variable {
	if a.Op == "&" {
		return g.genRef(a.X)
	}
	source := g.genExpr(a.X)
	if ref {
		return source
	}
	index := g.newConstant(types.IntType, 0)
	target := g.fn.NewTemp()
	g.emit(&ir.ElemInstr{Type: a.Type, Source: source, Index: index, Target: target})
	return target
}

// genArrayRef scales the index by the element size unless that size is
// one storage unit, then produces either the element address (reference
// or compound element type) or the loaded element value.
func (g *Generator) genArrayRef(r *ast.ArrayRef, ref bool) ir.Variable {
	source := g.genArrayBase(r.Array)
	index := g.genExpr(r.Index)

	offset := index
	if r.Type.Sizeof() != 1 {
		size := g.newConstant(types.IntType, r.Type.Sizeof())
		scaled := g.fn.NewTemp()
		g.emit(&ir.BinaryInstr{Op: ir.Mul, Type: types.IntType, Left: size, Right: index, Target: scaled})
		offset = scaled
	}

	if ref || !types.IsPrimitive(r.Type) {
		address := g.fn.NewTemp()
		g.emit(&ir.BinaryInstr{Op: ir.Add, Type: r.Type, Left: source, Right: offset, Target: address})
		return address
	}
	value := g.fn.NewTemp()
	g.emit(&ir.ElemInstr{Type: r.Type, Source: source, Index: offset, Target: value})
	return value
}

// genArrayBase produces the base address of an indexed expression.
// Global arrays occupy their data-section region directly, so their
// base is the symbol's address; local arrays live behind a pointer
// slot, so their base is the loaded pointer.
func (g *Generator) genArrayBase(array ast.Expr) ir.Variable {
	if id, ok := array.(*ast.ID); ok && id.Global {
		if _, isArray := id.Type.(*types.ArrayType); isArray {
			return g.genRef(id)
		}
	}
	return g.genExpr(array)
}

// genFuncCall evaluates the callee's address, pushes actuals in
// left-to-right order, then emits the call with a fresh result register.
func (g *Generator) genFuncCall(c *ast.FuncCall) ir.Variable {
	source := g.genRef(c.Callee)
	for _, arg := range c.Args {
		value := g.genExpr(arg)
		g.emit(&ir.ParamInstr{Type: arg.ExprType(), Source: value})
	}
	target := g.fn.NewTemp()
	g.emit(&ir.CallInstr{Type: c.Type, Source: source, Target: target})
	return target
}

func (g *Generator) newConstant(ty types.Type, value any) ir.Variable {
	target := g.fn.NewTemp()
	g.emit(&ir.LiteralInstr{Type: ty, Value: value, Target: target})
	return target
}

// # # # # # #
// HELPERS

func (g *Generator) emit(instr ir.Instr) {
	g.current.Append(instr)
}

// terminated reports whether the current block already ends in an
// unconditional control transfer.
func (g *Generator) terminated() bool {
	if len(g.current.Instr) == 0 {
		return false
	}
	switch g.current.Instr[len(g.current.Instr)-1].(type) {
	case *ir.JumpInstr, *ir.ReturnInstr, *ir.ExitInstr:
		return true
	}
	return false
}
