// Package interp executes flat uC IR: a register/stack machine over a
// single addressable memory array, with a call stack of saved scopes.
package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"ucc/internal/diagnostics"
	"ucc/internal/ir"
)

// memorySize is the fixed extent of the data memory, sized generously
// for the teaching programs this interpreter targets.
const memorySize = 10000

// Uninit is the absorbing marker held by never-written storage. It
// propagates through arithmetic, compares as false against everything
// and is falsy in boolean context, so a buggy program runs to a visible
// wrong output instead of crashing the interpreter.
type uninitialized struct{}

func (uninitialized) String() string { return "XXXX" }

var Uninit = uninitialized{}

// Value is one memory or register slot: int, float64, rune, bool or the
// Uninit marker.
type Value any

// frame saves a caller's scope across a call.
type frame struct {
	vars      map[ir.Variable]int
	registers []Value
}

type labelOffset struct {
	label  ir.LabelName
	offset int
}

// Options configures an Interpreter. Zero values select standard
// streams and a stderr reporter.
type Options struct {
	Debug    bool
	Input    io.Reader
	Output   io.Writer
	Reporter *diagnostics.Reporter
}

// Interpreter runs one flat instruction list. All mutable state is
// scoped to the instance, so independent interpreters can coexist.
type Interpreter struct {
	code []ir.Instr

	mem       []Value
	registers []Value
	// fixed offsets of globals and constants
	globals map[ir.Variable]int
	// offsets of locals and label addresses, replaced on each call
	vars map[ir.Variable]int
	// label offsets per function, relative to its define instruction
	labels map[ir.GlobalVariable][]labelOffset
	// storage extent per base address, for string-typed printing
	extents map[int]int

	// allocation high-water mark
	offset int
	// caller scopes, return registers and return program counters
	stack   []frame
	sp      []int
	retval  []int
	returns []int
	// queued actual arguments for the next call
	params []Value

	pc     int
	lastpc int
	start  int

	in    *bufio.Reader
	input string
	out   io.Writer
	rep    *diagnostics.Reporter
	debug  bool
}

// New creates an interpreter with its own memory.
func New(opts Options) *Interpreter {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Reporter == nil {
		opts.Reporter = diagnostics.NewReporter(nil)
	}

	mem := make([]Value, memorySize)
	for i := range mem {
		mem[i] = Uninit
	}
	return &Interpreter{
		mem:       mem,
		registers: []Value{Uninit},
		globals:   make(map[ir.Variable]int),
		vars:      make(map[ir.Variable]int),
		labels:    make(map[ir.GlobalVariable][]labelOffset),
		extents:   make(map[int]int),
		in:        bufio.NewReader(opts.Input),
		out:       opts.Output,
		rep:       opts.Reporter,
		debug:     opts.Debug,
	}
}

// ErrUnbalancedReturn is reported for a return with no matching call.
var ErrUnbalancedReturn = errors.New("interp: return with no active call")

// errExit carries the status of an explicit exit instruction out of the
// execution loop.
type errExit struct {
	status int
}

func (e errExit) Error() string { return fmt.Sprintf("exit %d", e.status) }

// Run executes the flat instruction list and returns the program's exit
// status. The status comes from the terminating instruction, or is zero
// when the program counter runs past the end of the list.
func (it *Interpreter) Run(code []ir.Instr) (int, error) {
	it.code = code
	it.offset = 0
	it.start = -1
	it.lastpc = it.prepareGlobals()

	if it.start >= 0 {
		it.pc = it.start
	} else {
		it.pc = it.lastpc
	}

	dbg := newDebugger(it)
	if it.debug {
		dbg.printHelp()
	}
	defer dbg.close()

	for {
		if it.pc < 0 || it.pc >= len(it.code) {
			return 0, nil
		}
		if it.debug {
			if err := dbg.pause(); err != nil {
				if exit := (errExit{}); errors.As(err, &exit) {
					return exit.status, nil
				}
				return 0, err
			}
		}
		instr := it.code[it.pc]
		it.pc++
		if err := it.step(instr); err != nil {
			if exit := (errExit{}); errors.As(err, &exit) {
				return exit.status, nil
			}
			return 0, err
		}
	}
}

// prepareGlobals scans the code once before execution: it allocates one
// memory region per global declaration (writing initializers), stores
// each function's entry index in its data slot, and records every label
// offset relative to its function's define instruction. The function
// named ".start" becomes the entry point.
func (it *Interpreter) prepareGlobals() int {
	var current ir.GlobalVariable
	fnStart := 0

	for pc, instr := range it.code {
		switch n := instr.(type) {
		case *ir.GlobalInstr:
			it.globals[n.Varname] = it.offset
			size := n.Type.Sizeof()
			if n.Value != nil {
				values := it.splitData(n.Value)
				it.storeMultiple(it.offset, values)
				if size < len(values) {
					size = len(values)
				}
			}
			it.extents[it.offset] = size
			it.offset += size

		case *ir.DefineInstr:
			current = n.Source
			fnStart = pc
			it.globals[n.Source] = it.offset
			it.labels[n.Source] = nil
			it.mem[it.offset] = pc
			it.offset++
			if n.Source.Name == ".start" {
				it.start = pc
			}

		case *ir.LabelInstr:
			label := ir.LabelName{Name: n.Label}
			it.labels[current] = append(it.labels[current],
				labelOffset{label: label, offset: pc - fnStart})
		}
	}
	return len(it.code)
}

// splitData flattens a global initializer into memory slots: strings
// become one character per slot, nested lists are flattened in order,
// and a reference to another global becomes its address.
func (it *Interpreter) splitData(value any) []Value {
	switch v := value.(type) {
	case ir.GlobalVariable:
		return []Value{it.globals[v]}
	case string:
		values := make([]Value, 0, len(v))
		for _, ch := range v {
			values = append(values, ch)
		}
		return values
	case []any:
		var values []Value
		for _, item := range v {
			values = append(values, it.splitData(item)...)
		}
		return values
	case nil:
		return nil
	default:
		return []Value{v}
	}
}

// # # # # # # # # # # #
// MEMORY & REGISTERS

// allocData reserves size slots and returns their base address.
func (it *Interpreter) allocData(size int) int {
	offset := it.offset
	it.offset += size
	return offset
}

// regIndex grows the register bank to cover the temporary and returns
// its index.
func (it *Interpreter) regIndex(reg int) int {
	for len(it.registers) <= reg {
		it.registers = append(it.registers, Uninit)
	}
	return reg
}

// labelAddr resolves a memory variable or label to its address: globals
// and constants from the fixed table, locals and labels from the
// current scope.
func (it *Interpreter) labelAddr(v ir.Variable) (int, error) {
	if addr, ok := it.globals[v]; ok {
		return addr, nil
	}
	if addr, ok := it.vars[v]; ok {
		return addr, nil
	}
	return 0, fmt.Errorf("interp: unresolved variable %s", v)
}

// value reads a variable: temporaries from the register bank, memory
// variables as their address.
func (it *Interpreter) value(v ir.Variable) (Value, error) {
	if temp, ok := v.(ir.TempVariable); ok {
		return it.registers[it.regIndex(temp.Version)], nil
	}
	addr, err := it.labelAddr(v)
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (it *Interpreter) setRegister(v ir.Variable, value Value) {
	temp, ok := v.(ir.TempVariable)
	if !ok {
		panic(fmt.Sprintf("interp: %s is not a register", v))
	}
	it.registers[it.regIndex(temp.Version)] = value
}

func (it *Interpreter) storeMultiple(addr int, values []Value) {
	copy(it.mem[addr:addr+len(values)], values)
}

// # # # # # # # #
// CALL PROTOCOL

// push saves the caller's scope before transferring to a callee. The
// target register for the eventual return value lives in the caller's
// bank and is recorded by index.
func (it *Interpreter) push(target ir.Variable) {
	reg := 0
	if temp, ok := target.(ir.TempVariable); ok {
		reg = temp.Version
	}
	reg = it.regIndex(reg)

	it.stack = append(it.stack, frame{vars: it.vars, registers: it.registers})
	it.registers = nil
	it.sp = append(it.sp, it.offset)
	it.retval = append(it.retval, reg)
	it.returns = append(it.returns, it.pc)
}

// pop restores the caller's scope after a return, delivering the value
// left in register zero of the callee bank and rolling the allocation
// mark back to the caller's.
func (it *Interpreter) pop() error {
	if len(it.stack) == 0 {
		return ErrUnbalancedReturn
	}

	retval := it.registers[it.regIndex(0)]

	top := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	it.vars = top.vars
	it.registers = top.registers

	reg := it.retval[len(it.retval)-1]
	it.retval = it.retval[:len(it.retval)-1]
	it.registers[it.regIndex(reg)] = retval

	it.offset = it.sp[len(it.sp)-1]
	it.sp = it.sp[:len(it.sp)-1]

	it.pc = it.returns[len(it.returns)-1]
	it.returns = it.returns[:len(it.returns)-1]
	return nil
}
