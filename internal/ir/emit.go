package ir

import "strings"

// Emit linearizes the block tree into one flat ordered instruction list:
// text section, data section, then each function in creation order with
// its define instruction followed by every block's label and body. The
// result is the sole artifact consumed by the interpreter and printed as
// the textual listing. Emission is deterministic and order-preserving.
func Emit(glob *GlobalBlock) []Instr {
	var code []Instr
	for _, instr := range glob.Text {
		code = append(code, instr)
	}
	for _, instr := range glob.Data {
		code = append(code, instr)
	}
	for _, fn := range glob.Functions {
		code = append(code, fn.Define)
		for _, block := range fn.Blocks {
			code = append(code, block.labelDef)
			code = append(code, block.Instr...)
		}
	}
	return code
}

// FormatProgram renders a flat instruction list as the textual IR
// listing, one instruction per line.
func FormatProgram(code []Instr) string {
	var b strings.Builder
	for _, instr := range code {
		b.WriteString(instr.Format())
		b.WriteString("\n")
	}
	return b.String()
}
