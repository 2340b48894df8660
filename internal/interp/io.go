package interp

import (
	"fmt"
	"strconv"
	"strings"

	"ucc/internal/ir"
	"ucc/internal/types"
)

// readLine yields the next non-empty input line, consuming buffered
// input first. Exhausted input is reported once per read attempt and
// leaves the destination untouched.
func (it *Interpreter) readLine() (string, bool) {
	for it.input == "" {
		line, err := it.in.ReadString('\n')
		if err != nil && line == "" {
			it.rep.Errorf("unexpected end of input")
			return "", false
		}
		it.input = strings.TrimRight(line, "\r\n")
	}
	line := it.input
	it.input = ""
	return line, true
}

// readWord yields the next whitespace-delimited token, keeping the rest
// of the line buffered for later reads.
func (it *Interpreter) readWord() (string, bool) {
	line, ok := it.readLine()
	if !ok {
		return "", false
	}
	word, rest, _ := strings.Cut(line, " ")
	it.input = strings.TrimLeft(rest, " ")
	return word, true
}

// readChar yields a single character, consuming the line character by
// character.
func (it *Interpreter) readChar() (rune, bool) {
	line, ok := it.readLine()
	if !ok {
		return 0, false
	}
	runes := []rune(line)
	it.input = string(runes[1:])
	return runes[0], true
}

// runRead parses one typed value from input and stores it through the
// destination's address. A malformed value is reported and the
// destination keeps its previous contents.
func (it *Interpreter) runRead(n *ir.ReadInstr) error {
	addr, err := it.value(n.Source)
	if err != nil {
		return err
	}
	dest, ok := addr.(int)
	if !ok {
		it.rep.Warningf("read into uninitialized address, skipped")
		return nil
	}

	switch n.Type {
	case types.IntType:
		word, ok := it.readWord()
		if !ok {
			return nil
		}
		value, err := strconv.Atoi(word)
		if err != nil {
			it.rep.Errorf("illegal input value %q", word)
			return nil
		}
		it.mem[dest] = value

	case types.FloatType:
		word, ok := it.readWord()
		if !ok {
			return nil
		}
		value, err := strconv.ParseFloat(word, 64)
		if err != nil {
			it.rep.Errorf("illegal input value %q", word)
			return nil
		}
		it.mem[dest] = value

	case types.CharType:
		ch, ok := it.readChar()
		if !ok {
			return nil
		}
		it.mem[dest] = ch

	default:
		line, ok := it.readLine()
		if !ok {
			return nil
		}
		values := make([]Value, 0, len(line))
		for _, ch := range line {
			values = append(values, ch)
		}
		it.storeMultiple(dest, values)
		it.extents[dest] = len(values)
	}
	return nil
}

// runPrint writes one value, or a newline when the instruction carries
// no operand. String-typed operands print the character run stored at
// the operand's address.
func (it *Interpreter) runPrint(n *ir.PrintInstr) error {
	if n.Source == nil {
		fmt.Fprintln(it.out)
		return nil
	}
	value, err := it.value(n.Source)
	if err != nil {
		return err
	}
	if n.Type == types.StringType {
		addr, ok := value.(int)
		if !ok {
			fmt.Fprint(it.out, Uninit.String())
			return nil
		}
		fmt.Fprint(it.out, it.stringAt(addr))
		return nil
	}
	fmt.Fprint(it.out, formatRuntime(value))
	return nil
}

// stringAt renders the character run based at addr, bounded by the
// recorded extent or the first slot that is not a character.
func (it *Interpreter) stringAt(addr int) string {
	var b strings.Builder
	end := len(it.mem)
	if extent, ok := it.extents[addr]; ok {
		end = addr + extent
	}
	for i := addr; i < end; i++ {
		ch, ok := it.mem[i].(rune)
		if !ok {
			break
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// formatRuntime renders a runtime value for print: characters as
// themselves, floats always with a decimal part.
func formatRuntime(v Value) string {
	switch x := v.(type) {
	case rune:
		return string(x)
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(x)
	case uninitialized:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
