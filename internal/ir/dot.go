package ir

import (
	"fmt"
	"io"
	"strings"
)

// WriteDot renders the block tree as a Graphviz digraph with one
// record-shaped node per basic block and envelope nodes for the program
// and each function. Edges follow creation order, which is also the
// fall-through order of the emitted code. The export reads the tree and
// never mutates it.
func WriteDot(glob *GlobalBlock, w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph g {"); err != nil {
		return err
	}
	fmt.Fprintln(w, `	node [shape=record];`)

	writeNode(w, ".text", recordLabel(".text", globalInstrs(glob.Text)))
	writeNode(w, ".data", recordLabel(".data", globalInstrs(glob.Data)))
	writeNode(w, ":global:", recordLabel(":global:", nil))
	writeEdge(w, ":global:", ".text")
	writeEdge(w, ":global:", ".data")

	for _, fn := range glob.Functions {
		writeNode(w, fn.Name(), recordLabel(fn.Name(), nil))
		writeEdge(w, ":global:", fn.Name())

		prev := ""
		for _, block := range fn.Blocks {
			name := fmt.Sprintf("<%s>%s", fn.Name(), block.Name())
			writeNode(w, name, recordLabel(block.Name()+":", block.Instr))
			if prev == "" {
				writeEdge(w, fn.Name(), name)
			} else {
				writeEdge(w, prev, name)
			}
			prev = name
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func globalInstrs(decls []*GlobalInstr) []Instr {
	instrs := make([]Instr, len(decls))
	for i, decl := range decls {
		instrs[i] = decl
	}
	return instrs
}

// recordLabel joins a header and instruction lines in the record syntax,
// left-aligning each line.
func recordLabel(header string, instrs []Instr) string {
	parts := []string{"{" + header}
	for _, instr := range instrs {
		parts = append(parts, escapeRecord(strings.TrimSpace(instr.Format())))
	}
	parts = append(parts, "}")
	return strings.Join(parts, `\l\t`)
}

func escapeRecord(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`{`, `\{`,
		`}`, `\}`,
		`|`, `\|`,
		`<`, `\<`,
		`>`, `\>`,
	)
	return replacer.Replace(s)
}

// writeNode emits the label verbatim: record text carries \l and \t
// escapes that must reach the file unmangled.
func writeNode(w io.Writer, name, label string) {
	fmt.Fprintf(w, "	%q [label=\"%s\"];\n", name, label)
}

func writeEdge(w io.Writer, from, to string) {
	fmt.Fprintf(w, "	%q -> %q;\n", from, to)
}
