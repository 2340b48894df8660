package ir

import (
	"strings"
	"testing"

	"ucc/internal/types"
)

func TestVariableString(t *testing.T) {
	tests := []struct {
		v    Variable
		want string
	}{
		{NamedVariable{Name: "x"}, "%x"},
		{TempVariable{Version: 3}, "%3"},
		{GlobalVariable{Name: "total"}, "@total"},
		{TextVariable{Name: "int", Version: 0}, "@.const_int.0"},
		{TextVariable{Name: "char_4_", Version: 2}, "@.const_char_4_.2"},
		{LabelName{Name: ".L1"}, "label .L1"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNewTempSequence(t *testing.T) {
	glob := NewGlobalBlock()
	fn := glob.NewFunction(types.NewFunction("max", types.IntType, types.IntType, types.IntType))

	// the two formals consumed %0 and %1
	if got := fn.NewTemp(); got.Version != 2 {
		t.Fatalf("first temp after params = %%%d, want %%2", got.Version)
	}
	if got := fn.NewTemp(); got.Version != 3 {
		t.Fatalf("second temp = %%%d, want %%3", got.Version)
	}

	other := glob.NewFunction(types.NewFunction("zero", types.IntType))
	if got := other.NewTemp(); got.Version != 0 {
		t.Errorf("temp counter leaked across functions: got %%%d", got.Version)
	}
}

func TestDefineParams(t *testing.T) {
	glob := NewGlobalBlock()
	fn := glob.NewFunction(types.NewFunction("max", types.IntType, types.IntType, types.IntType))

	want := "\ndefine_int @max (int %0, int %1)"
	if got := fn.Define.Format(); got != want {
		t.Errorf("Define.Format() = %q, want %q", got, want)
	}
	if fn.Name() != "max" {
		t.Errorf("Name() = %q, want %q", fn.Name(), "max")
	}
}

func TestNewBlockLabels(t *testing.T) {
	glob := NewGlobalBlock()
	fn := glob.NewFunction(types.NewFunction("f", types.VoidType))

	if fn.Entry.Name() != "entry" {
		t.Fatalf("entry block named %q", fn.Entry.Name())
	}
	if got := fn.NewBlock("").Name(); got != ".L0" {
		t.Errorf("first generated label = %q, want .L0", got)
	}
	if got := fn.NewBlock("").Name(); got != ".L1" {
		t.Errorf("second generated label = %q, want .L1", got)
	}
	if got := fn.NewBlock("if.end").Name(); got != "if.end" {
		t.Errorf("named block = %q", got)
	}
	// named blocks must not consume the generated counter
	if got := fn.NewBlock("").Name(); got != ".L2" {
		t.Errorf("third generated label = %q, want .L2", got)
	}
}

func TestLiteralDedup(t *testing.T) {
	glob := NewGlobalBlock()

	a := glob.NewLiteral(types.StringType, "hello")
	b := glob.NewLiteral(types.StringType, "hello")
	if a != b {
		t.Errorf("identical literals interned twice: %s vs %s", a, b)
	}

	c := glob.NewLiteral(types.StringType, "world")
	if a == c {
		t.Errorf("distinct literals shared a symbol: %s", c)
	}
	if c.Version != 1 {
		t.Errorf("second string constant version = %d, want 1", c.Version)
	}
	if len(glob.Text) != 2 {
		t.Fatalf("text section holds %d entries, want 2", len(glob.Text))
	}
}

func TestLiteralNameSanitized(t *testing.T) {
	glob := NewGlobalBlock()
	v := glob.NewLiteral(types.NewArray(types.IntType, 4), []any{1, 2, 3, 4})
	if got := v.String(); got != "@.const_int_4_.0" {
		t.Errorf("array constant symbol = %q, want @.const_int_4_.0", got)
	}
}

func TestLiteralDedupIsPerType(t *testing.T) {
	glob := NewGlobalBlock()
	a := glob.NewLiteral(types.IntType, 65)
	b := glob.NewLiteral(types.CharType, 65)
	if len(glob.Text) != 2 {
		t.Errorf("constants of different types collapsed: %s, %s", a, b)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{7, "7"},
		{2.5, "2.5"},
		{3.0, "3.0"},
		{'A', "A"},
		{true, "true"},
		{"spam", "spam"},
		{[]any{1, 2, 3}, "[1, 2, 3]"},
		{NamedVariable{Name: "x"}, "%x"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.value); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestInstrFormat(t *testing.T) {
	tests := []struct {
		instr Instr
		want  string
	}{
		{
			&AllocInstr{Type: types.IntType, Varname: NamedVariable{Name: "x"}},
			"  %x = alloc_int",
		},
		{
			&GlobalInstr{Type: types.IntType, Varname: GlobalVariable{Name: "n"}, Value: 10},
			"@n = global_int 10",
		},
		{
			&GlobalInstr{Type: types.StringType, Varname: TextVariable{Name: "string", Version: 0}, Value: "hi"},
			"@.const_string.0 = global_string 'hi'",
		},
		{
			&StoreInstr{Type: types.IntType, Source: TempVariable{Version: 1}, Target: NamedVariable{Name: "x"}},
			"  store_int %1 %x",
		},
		{
			&LoadInstr{Type: types.IntType, Varname: NamedVariable{Name: "x"}, Target: TempVariable{Version: 2}},
			"  %2 = load_int %x",
		},
		{
			&LiteralInstr{Type: types.FloatType, Value: 1.0, Target: TempVariable{Version: 0}},
			"  %0 = literal_float 1.0",
		},
		{
			&BinaryInstr{Op: Add, Type: types.IntType, Left: TempVariable{Version: 0}, Right: TempVariable{Version: 1}, Target: TempVariable{Version: 2}},
			"  %2 = add_int %0 %1",
		},
		{
			&CBranchInstr{Test: TempVariable{Version: 3}, TrueTarget: LabelName{Name: "body"}, FalseTarget: LabelName{Name: "end"}},
			"  cbranch %3 label body label end",
		},
		{
			&JumpInstr{Target: LabelName{Name: "test"}},
			"  jump label test",
		},
		{
			&LabelInstr{Label: ".L0"},
			".L0:",
		},
		{
			&CallInstr{Type: types.IntType, Source: TempVariable{Version: 4}, Target: TempVariable{Version: 5}},
			"  %5 = call_int %4",
		},
		{
			&CallInstr{Type: types.VoidType, Source: TempVariable{Version: 4}},
			"  call_void %4",
		},
		{
			&ReturnInstr{Type: types.VoidType},
			"  return_void",
		},
		{
			&PrintInstr{},
			"  print",
		},
		{
			&ExitInstr{Source: TempVariable{Version: 0}},
			"  exit %0",
		},
	}

	for _, tt := range tests {
		if got := tt.instr.Format(); got != tt.want {
			t.Errorf("Format() = %q, want %q", got, tt.want)
		}
	}
}

func TestEmitOrder(t *testing.T) {
	glob := NewGlobalBlock()
	glob.NewLiteral(types.StringType, "hi")
	glob.NewGlobal("n", types.IntType, 3)

	fn := glob.NewFunction(types.NewFunction("main", types.IntType))
	end := fn.NewBlock("")
	fn.Entry.Append(&JumpInstr{Target: end.Label()})
	ret := fn.NewTemp()
	end.Append(&LiteralInstr{Type: types.IntType, Value: 0, Target: ret})
	end.Append(&ReturnInstr{Type: types.IntType, Target: ret})

	code := Emit(glob)

	var ops []string
	for _, instr := range code {
		ops = append(ops, instr.Opname())
	}
	want := []string{"global", "global", "define", "entry:", "jump", ".L0:", "literal", "return"}
	if len(ops) != len(want) {
		t.Fatalf("Emit produced %d instructions, want %d: %v", len(ops), len(want), ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("instruction %d is %q, want %q (all: %v)", i, ops[i], want[i], ops)
		}
	}
}

func TestFormatProgram(t *testing.T) {
	glob := NewGlobalBlock()
	glob.NewGlobal("n", types.IntType, 3)
	fn := glob.NewFunction(types.NewFunction("f", types.VoidType))
	fn.Entry.Append(&ReturnInstr{Type: types.VoidType})

	got := FormatProgram(Emit(glob))
	want := strings.Join([]string{
		"@n = global_int 3",
		"",
		"define_void @f ()",
		"entry:",
		"  return_void",
		"",
	}, "\n")
	if got != want {
		t.Errorf("FormatProgram() =\n%q\nwant\n%q", got, want)
	}
}
