package interp

import (
	"fmt"

	"ucc/internal/ir"
	"ucc/internal/types"
)

// step executes one instruction. Labels are no-ops at runtime; any
// instruction without a handler is reported and skipped.
func (it *Interpreter) step(instr ir.Instr) error {
	switch n := instr.(type) {
	case *ir.AllocInstr:
		return it.runAlloc(n)
	case *ir.LoadInstr:
		return it.runLoad(n)
	case *ir.StoreInstr:
		return it.runStore(n)
	case *ir.LiteralInstr:
		it.setRegister(n.Target, n.Value)
		return nil
	case *ir.ElemInstr:
		return it.runElem(n)
	case *ir.GetInstr:
		return it.runGet(n)
	case *ir.BinaryInstr:
		return it.runBinary(n)
	case *ir.NotInstr:
		return it.runNot(n)
	case *ir.LabelInstr:
		return nil
	case *ir.JumpInstr:
		return it.runJump(n)
	case *ir.CBranchInstr:
		return it.runCBranch(n)
	case *ir.DefineInstr:
		return it.runDefine(n)
	case *ir.CallInstr:
		return it.runCall(n)
	case *ir.ReturnInstr:
		return it.runReturn(n)
	case *ir.ParamInstr:
		return it.runParam(n)
	case *ir.ReadInstr:
		return it.runRead(n)
	case *ir.PrintInstr:
		return it.runPrint(n)
	case *ir.ExitInstr:
		return it.runExit(n)
	default:
		it.rep.Warningf("no handler for instruction %s", instr.Opname())
		return nil
	}
}

// runAlloc reserves storage and binds the target to its base address:
// named locals through the scope table, temporaries through a register.
func (it *Interpreter) runAlloc(n *ir.AllocInstr) error {
	addr := it.allocData(n.Type.Sizeof())
	if temp, ok := n.Varname.(ir.TempVariable); ok {
		it.registers[it.regIndex(temp.Version)] = addr
		return nil
	}
	it.vars[n.Varname] = addr
	return nil
}

// runLoad reads memory through the address the operand resolves to.
func (it *Interpreter) runLoad(n *ir.LoadInstr) error {
	addr, err := it.value(n.Varname)
	if err != nil {
		return err
	}
	i, ok := addr.(int)
	if !ok {
		it.setRegister(n.Target, Uninit)
		return nil
	}
	it.setRegister(n.Target, it.mem[i])
	return nil
}

// runStore writes the source value through the address the target
// resolves to.
func (it *Interpreter) runStore(n *ir.StoreInstr) error {
	value, err := it.value(n.Source)
	if err != nil {
		return err
	}
	addr, err := it.value(n.Target)
	if err != nil {
		return err
	}
	i, ok := addr.(int)
	if !ok {
		it.rep.Warningf("store through uninitialized address, skipped")
		return nil
	}
	it.mem[i] = value
	return nil
}

// runElem indexes off a base address and loads the slot.
func (it *Interpreter) runElem(n *ir.ElemInstr) error {
	base, err := it.value(n.Source)
	if err != nil {
		return err
	}
	index, err := it.value(n.Index)
	if err != nil {
		return err
	}
	b, bok := base.(int)
	i, iok := index.(int)
	if !bok || !iok {
		it.setRegister(n.Target, Uninit)
		return nil
	}
	it.setRegister(n.Target, it.mem[b+i])
	return nil
}

// runGet loads the address of a memory variable into a register.
func (it *Interpreter) runGet(n *ir.GetInstr) error {
	addr, err := it.labelAddr(n.Source)
	if err != nil {
		return err
	}
	it.setRegister(n.Target, addr)
	return nil
}

func (it *Interpreter) runJump(n *ir.JumpInstr) error {
	addr, ok := it.vars[n.Target]
	if !ok {
		return fmt.Errorf("interp: unresolved label %s", n.Target)
	}
	it.pc = addr
	return nil
}

func (it *Interpreter) runCBranch(n *ir.CBranchInstr) error {
	test, err := it.value(n.Test)
	if err != nil {
		return err
	}
	label := n.FalseTarget
	if truthy(test) {
		label = n.TrueTarget
	}
	addr, ok := it.vars[label]
	if !ok {
		return fmt.Errorf("interp: unresolved label %s", label)
	}
	it.pc = addr
	return nil
}

// runDefine enters a function: queued actuals move into the parameter
// registers, a fresh scope replaces the caller's, and every label of
// the function is bound to its absolute address.
func (it *Interpreter) runDefine(n *ir.DefineInstr) error {
	for i := len(n.Args) - 1; i >= 0; i-- {
		reg := it.regIndex(n.Args[i].Name.Version)
		if len(it.params) > 0 {
			it.registers[reg] = it.params[len(it.params)-1]
			it.params = it.params[:len(it.params)-1]
		}
	}
	it.params = nil

	it.vars = make(map[ir.Variable]int)
	for _, lo := range it.labels[n.Source] {
		it.vars[lo.label] = it.pc + lo.offset
	}
	return nil
}

// runCall saves the caller and transfers to the entry index stored in
// the callee's data slot.
func (it *Interpreter) runCall(n *ir.CallInstr) error {
	addr, err := it.value(n.Source)
	if err != nil {
		return err
	}
	a, ok := addr.(int)
	if !ok {
		return fmt.Errorf("interp: call through non-address value %v", addr)
	}
	entry, ok := it.mem[a].(int)
	if !ok {
		return fmt.Errorf("interp: %s does not hold a function entry", n.Source)
	}
	it.push(n.Target)
	it.pc = entry
	return nil
}

// runReturn places the result in register zero by convention, then
// restores the caller.
func (it *Interpreter) runReturn(n *ir.ReturnInstr) error {
	if n.Target != nil {
		value, err := it.value(n.Target)
		if err != nil {
			return err
		}
		it.registers[it.regIndex(0)] = value
	} else {
		it.regIndex(0)
	}
	return it.pop()
}

func (it *Interpreter) runParam(n *ir.ParamInstr) error {
	value, err := it.value(n.Source)
	if err != nil {
		return err
	}
	it.params = append(it.params, value)
	return nil
}

// runExit ends the program with the operand as process status.
func (it *Interpreter) runExit(n *ir.ExitInstr) error {
	value, err := it.value(n.Source)
	if err != nil {
		return err
	}
	status, ok := value.(int)
	if !ok {
		status = 0
	}
	return errExit{status: status}
}

// # # # # # # # # # #
// VALUE SEMANTICS

// truthy follows C conventions: zero and Uninit are false, everything
// else is true.
func truthy(v Value) bool {
	switch x := v.(type) {
	case uninitialized:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case float64:
		return x != 0
	case rune:
		return x != 0
	default:
		return true
	}
}

// asInt normalizes a value to int where possible; characters count as
// their code points.
func asInt(v Value) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case rune:
		return int(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func asFloat(v Value) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func isFloat(v Value) bool {
	_, ok := v.(float64)
	return ok
}

// runBinary applies a two-operand operation. Uninit absorbs arithmetic
// and makes every ordered or equality comparison false. Division on
// the float variant is true division, otherwise it truncates.
func (it *Interpreter) runBinary(n *ir.BinaryInstr) error {
	left, err := it.value(n.Left)
	if err != nil {
		return err
	}
	right, err := it.value(n.Right)
	if err != nil {
		return err
	}
	it.setRegister(n.Target, binaryValue(n.Op, n.Type, left, right))
	return nil
}

func binaryValue(op ir.BinaryOp, ty types.Type, left, right Value) Value {
	switch op {
	case ir.And:
		if !truthy(left) {
			return left
		}
		return right
	case ir.Or:
		if truthy(left) {
			return left
		}
		return right
	}

	if left == Value(Uninit) || right == Value(Uninit) {
		switch op {
		case ir.Lt, ir.Le, ir.Gt, ir.Ge, ir.Eq, ir.Ne:
			return false
		default:
			return Uninit
		}
	}

	if isFloat(left) || isFloat(right) || ty == types.FloatType {
		lf, lok := asFloat(left)
		rf, rok := asFloat(right)
		if !lok || !rok {
			return Uninit
		}
		return floatOp(op, lf, rf)
	}

	li, lok := asInt(left)
	ri, rok := asInt(right)
	if !lok || !rok {
		return Uninit
	}
	return intOp(op, li, ri)
}

func intOp(op ir.BinaryOp, x, y int) Value {
	switch op {
	case ir.Add:
		return x + y
	case ir.Sub:
		return x - y
	case ir.Mul:
		return x * y
	case ir.Div:
		if y == 0 {
			return Uninit
		}
		return x / y
	case ir.Mod:
		if y == 0 {
			return Uninit
		}
		return x % y
	case ir.Lt:
		return x < y
	case ir.Le:
		return x <= y
	case ir.Gt:
		return x > y
	case ir.Ge:
		return x >= y
	case ir.Eq:
		return x == y
	case ir.Ne:
		return x != y
	}
	return Uninit
}

func floatOp(op ir.BinaryOp, x, y float64) Value {
	switch op {
	case ir.Add:
		return x + y
	case ir.Sub:
		return x - y
	case ir.Mul:
		return x * y
	case ir.Div:
		if y == 0 {
			return Uninit
		}
		return x / y
	case ir.Mod:
		if y == 0 {
			return Uninit
		}
		return float64(int(x) % int(y))
	case ir.Lt:
		return x < y
	case ir.Le:
		return x <= y
	case ir.Gt:
		return x > y
	case ir.Ge:
		return x >= y
	case ir.Eq:
		return x == y
	case ir.Ne:
		return x != y
	}
	return Uninit
}

func (it *Interpreter) runNot(n *ir.NotInstr) error {
	value, err := it.value(n.Expr)
	if err != nil {
		return err
	}
	it.setRegister(n.Target, !truthy(value))
	return nil
}
