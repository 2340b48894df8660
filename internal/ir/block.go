package ir

import (
	"fmt"

	"ucc/internal/types"
)

// counter hands out monotonically increasing versions per key.
type counter map[string]int

func (c counter) next(key string) int {
	value := c[key]
	c[key] = value + 1
	return value
}

// constKey identifies a deduplicated text constant by type and rendered
// value.
type constKey struct {
	typename string
	value    string
}

// GlobalBlock is the program scope: it owns the function list, the data
// section and the deduplicated text section.
type GlobalBlock struct {
	count counter

	// Text holds literal constants, Data global variable declarations.
	Text []*GlobalInstr
	Data []*GlobalInstr
	// Functions in creation order.
	Functions []*FunctionBlock

	consts map[constKey]TextVariable
}

func NewGlobalBlock() *GlobalBlock {
	return &GlobalBlock{
		count:  make(counter),
		consts: make(map[constKey]TextVariable),
	}
}

// NewFunction creates a function block for the given signature, registers
// it in program order and creates its entry block. Formal parameters are
// bound to the first temporaries, in declaration order.
func (g *GlobalBlock) NewFunction(sig *types.FunctionType) *FunctionBlock {
	fn := &FunctionBlock{
		count:  make(counter),
		parent: g,
	}
	args := make([]DefineParam, len(sig.Params))
	for i, param := range sig.Params {
		args[i] = DefineParam{Type: param, Name: fn.NewTemp()}
	}
	fn.Define = &DefineInstr{
		Type:   sig.Return,
		Source: GlobalVariable{Name: sig.FuncName},
		Args:   args,
	}
	fn.Entry = fn.NewBlock("entry")
	g.Functions = append(g.Functions, fn)
	return fn
}

// NewGlobal appends a global variable declaration to the data section.
func (g *GlobalBlock) NewGlobal(name string, ty types.Type, init any) GlobalVariable {
	varname := GlobalVariable{Name: name}
	g.Data = append(g.Data, &GlobalInstr{Type: ty, Varname: varname, Value: init})
	return varname
}

// NewLiteral places a literal constant on the text section, returning the
// previously registered symbol when an identical (type, value) pair was
// already interned.
func (g *GlobalBlock) NewLiteral(ty types.Type, value any) TextVariable {
	key := constKey{typename: ty.String(), value: FormatValue(value)}
	if varname, ok := g.consts[key]; ok {
		return varname
	}

	name := sanitize(ty.String())
	varname := TextVariable{Name: name, Version: g.count.next(name)}
	g.Text = append(g.Text, &GlobalInstr{Type: ty, Varname: varname, Value: value})
	g.consts[key] = varname
	return varname
}

// sanitize keeps only alphanumeric characters of a type name, replacing
// the rest so the result is usable inside a constant symbol.
func sanitize(typename string) string {
	out := make([]byte, len(typename))
	for i := 0; i < len(typename); i++ {
		ch := typename[i]
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' {
			out[i] = ch
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}

// FunctionBlock owns a function's define instruction and its basic blocks.
// Temporary and label counters are independent of other functions.
type FunctionBlock struct {
	count  counter
	parent *GlobalBlock

	Define *DefineInstr
	Entry  *BasicBlock
	Blocks []*BasicBlock
}

// Name returns the function's name, without the global sigil.
func (f *FunctionBlock) Name() string { return f.Define.Source.Name }

// NewTemp returns the next unused temporary for this function.
func (f *FunctionBlock) NewTemp() TempVariable {
	return TempVariable{Version: f.count.next("temp")}
}

// NewBlock creates a block within this function. Unnamed blocks receive a
// generated ".L<n>" label.
func (f *FunctionBlock) NewBlock(name string) *BasicBlock {
	if name == "" {
		name = fmt.Sprintf(".L%d", f.count.next("label"))
	}
	block := &BasicBlock{
		function: f,
		labelDef: &LabelInstr{Label: name},
	}
	f.Blocks = append(f.Blocks, block)
	return block
}

// BasicBlock is an append-only straight-line instruction sequence headed
// by an implicit label. Control falls through to the next block in
// creation order unless the block ends in a jump, branch or return.
type BasicBlock struct {
	function *FunctionBlock
	labelDef *LabelInstr

	Instr []Instr
}

// Name returns the block's label name.
func (b *BasicBlock) Name() string { return b.labelDef.Label }

// Label returns the block's label as a branch operand.
func (b *BasicBlock) Label() LabelName { return LabelName{Name: b.Name()} }

// Function returns the owning function block.
func (b *BasicBlock) Function() *FunctionBlock { return b.function }

// Append adds an instruction at the end of the block.
func (b *BasicBlock) Append(instr Instr) { b.Instr = append(b.Instr, instr) }

// NewTemp returns a fresh temporary from the owning function.
func (b *BasicBlock) NewTemp() TempVariable { return b.function.NewTemp() }

// NewLiteral interns a literal constant on the program's text section.
func (b *BasicBlock) NewLiteral(ty types.Type, value any) TextVariable {
	return b.function.parent.NewLiteral(ty, value)
}
