package ir

import "fmt"

// Variable is a symbolic storage location or register. Variables are
// immutable values: equality and map-key identity are by kind plus the
// identifying payload (name or number), never by pointer.
type Variable interface {
	fmt.Stringer
	irVariable()
}

// NamedVariable is a user-declared identifier scoped to a function.
type NamedVariable struct {
	Name string
}

func (v NamedVariable) String() string { return "%" + v.Name }
func (v NamedVariable) irVariable()    {}

// TempVariable is a compiler-generated register, unique within its
// owning function.
type TempVariable struct {
	Version int
}

func (v TempVariable) String() string { return fmt.Sprintf("%%%d", v.Version) }
func (v TempVariable) irVariable()    {}

// GlobalVariable lives on the data section and is visible program-wide.
type GlobalVariable struct {
	Name string
}

func (v GlobalVariable) String() string { return "@" + v.Name }
func (v GlobalVariable) irVariable()    {}

// TextVariable is a deduplicated literal constant on the text section.
type TextVariable struct {
	Name    string
	Version int
}

func (v TextVariable) String() string { return fmt.Sprintf("@.const_%s.%d", v.Name, v.Version) }
func (v TextVariable) irVariable()    {}

// LabelName names a basic block as a branch target.
type LabelName struct {
	Name string
}

func (v LabelName) String() string { return "label " + v.Name }
func (v LabelName) irVariable()    {}
