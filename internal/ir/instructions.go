package ir

import (
	"fmt"
	"strconv"
	"strings"

	"ucc/internal/types"
)

// Instr is the base interface for IR instructions. Instructions are
// immutable once constructed.
type Instr interface {
	// Opname returns the base opcode name, without the type suffix.
	Opname() string
	// Format renders the instruction as one line of the IR listing.
	Format() string
	irInstr()
}

// operation fuses the opcode with its optional type suffix, forming the
// textual operation name used in the listing (e.g. "add_int").
func operation(opname string, ty types.Type) string {
	if ty == nil {
		return opname
	}
	return opname + "_" + ty.String()
}

// formatLine renders "<target> = <operation> <operands...>", prefixed by a
// two-space indent unless the line is a label or section declaration.
func formatLine(indent bool, target, op string, operands ...string) string {
	var b strings.Builder
	if indent {
		b.WriteString("  ")
	}
	if target != "" {
		b.WriteString(target)
		b.WriteString(" = ")
	}
	b.WriteString(op)
	for _, operand := range operands {
		if operand != "" {
			b.WriteString(" ")
			b.WriteString(operand)
		}
	}
	return b.String()
}

// FormatValue renders a literal operand value for the IR listing.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case rune:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatFloat(val)
	case bool:
		return strconv.FormatBool(val)
	case Variable:
		return val.String()
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// # # # # # # # # # #
// Variables & Values

// AllocInstr reserves storage sized by Type for Varname.
type AllocInstr struct {
	Type    types.Type
	Varname Variable
}

func (i *AllocInstr) Opname() string { return "alloc" }
func (i *AllocInstr) Format() string {
	return formatLine(true, i.Varname.String(), operation("alloc", i.Type))
}
func (i *AllocInstr) irInstr() {}

// GlobalInstr reserves and optionally initializes a global or constant on
// the data or text section. Value may be nil.
type GlobalInstr struct {
	Type    types.Type
	Varname Variable
	Value   any
}

func (i *GlobalInstr) Opname() string { return "global" }
func (i *GlobalInstr) Format() string {
	value := FormatValue(i.Value)
	if i.Value != nil && i.Type.Equals(types.StringType) {
		value = "'" + value + "'"
	}
	return formatLine(false, i.Varname.String(), operation("global", i.Type), value)
}
func (i *GlobalInstr) irInstr() {}

// LoadInstr reads the value at Varname into Target.
type LoadInstr struct {
	Type    types.Type
	Varname Variable
	Target  Variable
}

func (i *LoadInstr) Opname() string { return "load" }
func (i *LoadInstr) Format() string {
	return formatLine(true, i.Target.String(), operation("load", i.Type), i.Varname.String())
}
func (i *LoadInstr) irInstr() {}

// StoreInstr writes Source's value to the address Target.
type StoreInstr struct {
	Type   types.Type
	Source Variable
	Target Variable
}

func (i *StoreInstr) Opname() string { return "store" }
func (i *StoreInstr) Format() string {
	return formatLine(true, "", operation("store", i.Type), i.Source.String(), i.Target.String())
}
func (i *StoreInstr) irInstr() {}

// LiteralInstr materializes an immediate value into Target.
type LiteralInstr struct {
	Type   types.Type
	Value  any
	Target Variable
}

func (i *LiteralInstr) Opname() string { return "literal" }
func (i *LiteralInstr) Format() string {
	return formatLine(true, i.Target.String(), operation("literal", i.Type), FormatValue(i.Value))
}
func (i *LiteralInstr) irInstr() {}

// ElemInstr loads into Target the value at Source indexed by Index.
type ElemInstr struct {
	Type   types.Type
	Source Variable
	Index  Variable
	Target Variable
}

func (i *ElemInstr) Opname() string { return "elem" }
func (i *ElemInstr) Format() string {
	return formatLine(true, i.Target.String(), operation("elem", i.Type),
		i.Source.String(), i.Index.String())
}
func (i *ElemInstr) irInstr() {}

// GetInstr stores into Target the address of Source.
type GetInstr struct {
	Type   types.Type
	Source Variable
	Target Variable
}

func (i *GetInstr) Opname() string { return "get" }
func (i *GetInstr) Format() string {
	return formatLine(true, i.Target.String(), operation("get", i.Type), i.Source.String())
}
func (i *GetInstr) irInstr() {}

// # # # # # # # # # # # # # # #
// Binary, Relational & Logical

// BinaryOp identifies a two-operand operation.
type BinaryOp string

const (
	Add BinaryOp = "add"
	Sub BinaryOp = "sub"
	Mul BinaryOp = "mul"
	Div BinaryOp = "div"
	Mod BinaryOp = "mod"
	Lt  BinaryOp = "lt"
	Le  BinaryOp = "le"
	Gt  BinaryOp = "gt"
	Ge  BinaryOp = "ge"
	Eq  BinaryOp = "eq"
	Ne  BinaryOp = "ne"
	And BinaryOp = "and"
	Or  BinaryOp = "or"
)

// BinaryInstr computes Target = Left <op> Right. Both operands are always
// evaluated before the instruction runs; and/or never short-circuit.
type BinaryInstr struct {
	Op     BinaryOp
	Type   types.Type
	Left   Variable
	Right  Variable
	Target Variable
}

func (i *BinaryInstr) Opname() string { return string(i.Op) }
func (i *BinaryInstr) Format() string {
	return formatLine(true, i.Target.String(), operation(string(i.Op), i.Type),
		i.Left.String(), i.Right.String())
}
func (i *BinaryInstr) irInstr() {}

// NotInstr computes Target = !Expr.
type NotInstr struct {
	Type   types.Type
	Expr   Variable
	Target Variable
}

func (i *NotInstr) Opname() string { return "not" }
func (i *NotInstr) Format() string {
	return formatLine(true, i.Target.String(), operation("not", i.Type), i.Expr.String())
}
func (i *NotInstr) irInstr() {}

// # # # # # # # # # #
// Labels & Branches

// LabelInstr marks a block entry point. It is a no-op at execution time.
type LabelInstr struct {
	Label string
}

func (i *LabelInstr) Opname() string { return i.Label + ":" }
func (i *LabelInstr) Format() string { return i.Label + ":" }
func (i *LabelInstr) irInstr()       {}

// JumpInstr transfers control unconditionally to Target.
type JumpInstr struct {
	Target LabelName
}

func (i *JumpInstr) Opname() string { return "jump" }
func (i *JumpInstr) Format() string {
	return formatLine(true, "", "jump", i.Target.String())
}
func (i *JumpInstr) irInstr() {}

// CBranchInstr transfers control to TrueTarget if Test is truthy, else to
// FalseTarget.
type CBranchInstr struct {
	Test        Variable
	TrueTarget  LabelName
	FalseTarget LabelName
}

func (i *CBranchInstr) Opname() string { return "cbranch" }
func (i *CBranchInstr) Format() string {
	return formatLine(true, "", "cbranch",
		i.Test.String(), i.TrueTarget.String(), i.FalseTarget.String())
}
func (i *CBranchInstr) irInstr() {}

// # # # # # # # # # # # #
// Functions & Builtins

// DefineParam is one formal parameter of a define instruction.
type DefineParam struct {
	Type types.Type
	Name TempVariable
}

func (p DefineParam) String() string { return p.Type.String() + " " + p.Name.String() }

// DefineInstr marks a function entry, binding formals to temporaries.
type DefineInstr struct {
	Type   types.Type
	Source GlobalVariable
	Args   []DefineParam
}

func (i *DefineInstr) Opname() string { return "define" }
func (i *DefineInstr) Format() string {
	params := make([]string, len(i.Args))
	for idx, arg := range i.Args {
		params[idx] = arg.String()
	}
	args := "(" + strings.Join(params, ", ") + ")"
	return "\n" + formatLine(false, "", operation("define", i.Type), i.Source.String(), args)
}
func (i *DefineInstr) irInstr() {}

// CallInstr invokes the function whose data slot is addressed by Source.
// Target is nil for calls whose result is discarded.
type CallInstr struct {
	Type   types.Type
	Source Variable
	Target Variable
}

func (i *CallInstr) Opname() string { return "call" }
func (i *CallInstr) Format() string {
	target := ""
	if i.Target != nil {
		target = i.Target.String()
	}
	return formatLine(true, target, operation("call", i.Type), i.Source.String())
}
func (i *CallInstr) irInstr() {}

// ReturnInstr returns from the current function. Target is nil for void
// returns.
type ReturnInstr struct {
	Type   types.Type
	Target Variable
}

func (i *ReturnInstr) Opname() string { return "return" }
func (i *ReturnInstr) Format() string {
	target := ""
	if i.Target != nil {
		target = i.Target.String()
	}
	return formatLine(true, "", operation("return", i.Type), target)
}
func (i *ReturnInstr) irInstr() {}

// ParamInstr pushes one actual argument for the next call.
type ParamInstr struct {
	Type   types.Type
	Source Variable
}

func (i *ParamInstr) Opname() string { return "param" }
func (i *ParamInstr) Format() string {
	return formatLine(true, "", operation("param", i.Type), i.Source.String())
}
func (i *ParamInstr) irInstr() {}

// ReadInstr reads one input token into Source, parsing it by Type.
type ReadInstr struct {
	Type   types.Type
	Source Variable
}

func (i *ReadInstr) Opname() string { return "read" }
func (i *ReadInstr) Format() string {
	return formatLine(true, "", operation("read", i.Type), i.Source.String())
}
func (i *ReadInstr) irInstr() {}

// PrintInstr prints Source's value, or a bare newline when Source is nil.
type PrintInstr struct {
	Type   types.Type
	Source Variable
}

func (i *PrintInstr) Opname() string { return "print" }
func (i *PrintInstr) Format() string {
	source := ""
	if i.Source != nil {
		source = i.Source.String()
	}
	return formatLine(true, "", operation("print", i.Type), source)
}
func (i *PrintInstr) irInstr() {}

// ExitInstr terminates the program with the status held in Source.
type ExitInstr struct {
	Source Variable
}

func (i *ExitInstr) Opname() string { return "exit" }
func (i *ExitInstr) Format() string {
	return formatLine(true, "", "exit", i.Source.String())
}
func (i *ExitInstr) irInstr() {}
