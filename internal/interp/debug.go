package interp

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"ucc/internal/ir"
)

// debugger is a single-stepping shell over a running interpreter,
// entered before each instruction when debug mode is on.
type debugger struct {
	it   *Interpreter
	line *liner.State

	// stopAt pauses the next time the counter reaches it; negative
	// means pause on every instruction
	stopAt  int
	running bool
}

func newDebugger(it *Interpreter) *debugger {
	d := &debugger{it: it, stopAt: -1}
	if it.debug {
		d.line = liner.NewLiner()
		d.line.SetCtrlCAborts(true)
	}
	return d
}

func (d *debugger) close() {
	if d.line != nil {
		d.line.Close()
	}
}

func (d *debugger) printHelp() {
	io.WriteString(d.it.out, `commands:
  s            step one instruction
  g <pc>       continue until the given instruction index
  l [n [m]]    list instructions around the counter, or a range
  e <loc>      examine a location (%temp, %name, @global, [addr])
  a <loc> <v>  assign an int value to a location
  v            view registers and the scope tables
  r            run to completion
  q            quit the program
  h            this help
`)
}

// pause is called before each instruction; it prompts until a command
// resumes execution.
func (d *debugger) pause() error {
	if d.running {
		return nil
	}
	if d.stopAt >= 0 && d.it.pc != d.stopAt {
		return nil
	}
	d.stopAt = -1
	d.list(d.it.pc-2, d.it.pc+3)

	for {
		input, err := d.line.Prompt("idb> ")
		if err != nil {
			return errExit{status: 0}
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		d.line.AppendHistory(input)

		fields := strings.Fields(input)
		switch fields[0] {
		case "s":
			return nil
		case "g":
			if len(fields) < 2 {
				fmt.Fprintln(d.it.out, "usage: g <pc>")
				continue
			}
			pc, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintln(d.it.out, "usage: g <pc>")
				continue
			}
			d.stopAt = pc
			return nil
		case "l":
			start, end := d.it.pc-4, d.it.pc+5
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					start, end = n, n+10
				}
			}
			if len(fields) > 2 {
				if n, err := strconv.Atoi(fields[2]); err == nil {
					end = n + 1
				}
			}
			d.list(start, end)
		case "e":
			if len(fields) < 2 {
				fmt.Fprintln(d.it.out, "usage: e <loc>")
				continue
			}
			d.examine(fields[1])
		case "a":
			if len(fields) < 3 {
				fmt.Fprintln(d.it.out, "usage: a <loc> <value>")
				continue
			}
			d.assign(fields[1], fields[2])
		case "v":
			d.view()
		case "r":
			d.running = true
			return nil
		case "q":
			return errExit{status: 0}
		case "h":
			d.printHelp()
		default:
			fmt.Fprintf(d.it.out, "unknown command %q, h for help\n", fields[0])
		}
	}
}

// list prints instructions in [start, end), marking the counter.
func (d *debugger) list(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(d.it.code) {
		end = len(d.it.code)
	}
	for pc := start; pc < end; pc++ {
		marker := "  "
		if pc == d.it.pc {
			marker = ">>"
		}
		fmt.Fprintf(d.it.out, "%s %4d %s\n", marker, pc, strings.TrimPrefix(d.it.code[pc].Format(), "\n"))
	}
}

// resolve maps a location spelling to a memory address: %name and
// @name through the scope tables, [n] as a raw address, %n as the
// address held by a temporary.
func (d *debugger) resolve(loc string) (int, bool) {
	switch {
	case strings.HasPrefix(loc, "[") && strings.HasSuffix(loc, "]"):
		addr, err := strconv.Atoi(loc[1 : len(loc)-1])
		if err != nil || addr < 0 || addr >= len(d.it.mem) {
			return 0, false
		}
		return addr, true
	case strings.HasPrefix(loc, "@"):
		addr, ok := d.it.globals[ir.GlobalVariable{Name: loc[1:]}]
		return addr, ok
	case strings.HasPrefix(loc, "%"):
		if version, err := strconv.Atoi(loc[1:]); err == nil {
			addr, ok := d.it.registers[d.it.regIndex(version)].(int)
			return addr, ok
		}
		if addr, ok := d.it.vars[ir.NamedVariable{Name: loc[1:]}]; ok {
			return addr, true
		}
	}
	return 0, false
}

func (d *debugger) examine(loc string) {
	if strings.HasPrefix(loc, "%") {
		if version, err := strconv.Atoi(loc[1:]); err == nil {
			fmt.Fprintf(d.it.out, "%s = %s\n", loc, formatRuntime(d.it.registers[d.it.regIndex(version)]))
			return
		}
	}
	addr, ok := d.resolve(loc)
	if !ok {
		fmt.Fprintf(d.it.out, "cannot resolve %s\n", loc)
		return
	}
	fmt.Fprintf(d.it.out, "%s [%d] = %s\n", loc, addr, formatRuntime(d.it.mem[addr]))
}

func (d *debugger) assign(loc, raw string) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintf(d.it.out, "cannot parse value %q\n", raw)
		return
	}
	if strings.HasPrefix(loc, "%") {
		if version, err := strconv.Atoi(loc[1:]); err == nil {
			d.it.registers[d.it.regIndex(version)] = value
			return
		}
	}
	addr, ok := d.resolve(loc)
	if !ok {
		fmt.Fprintf(d.it.out, "cannot resolve %s\n", loc)
		return
	}
	d.it.mem[addr] = value
}

func (d *debugger) view() {
	fmt.Fprintf(d.it.out, "pc=%d offset=%d depth=%d\n", d.it.pc, d.it.offset, len(d.it.stack))
	for i, reg := range d.it.registers {
		fmt.Fprintf(d.it.out, "  %%%d = %s\n", i, formatRuntime(reg))
	}
	for v, addr := range d.it.vars {
		fmt.Fprintf(d.it.out, "  %s [%d] = %s\n", v, addr, formatRuntime(d.it.mem[addr]))
	}
}
