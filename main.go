package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"ucc/colors"
	"ucc/internal/ast"
	"ucc/internal/diagnostics"
	"ucc/internal/interp"
	"ucc/internal/ir"
	"ucc/internal/irgen"
)

const version = "0.1.0"

func main() {
	// Define flags
	showIR := flag.Bool("i", false, "Print the generated code and exit")
	cfgFile := flag.String("c", "", "Write the control-flow graph as Graphviz dot to a file")
	debug := flag.Bool("d", false, "Run under the interactive debugger")
	showVersion := flag.Bool("v", false, "Show version")
	flag.BoolVar(showIR, "ir", false, "Print the generated code and exit")
	flag.StringVar(cfgFile, "cfg", "", "Write the control-flow graph as Graphviz dot to a file")
	flag.BoolVar(debug, "debug", false, "Run under the interactive debugger")
	flag.BoolVar(showVersion, "version", false, "Show version")

	flag.Parse()

	// Handle version
	if *showVersion {
		fmt.Printf("ucc version %s\n", version)
		atexit.Exit(0)
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ucc [options] <program.json>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	rep := diagnostics.NewReporter(nil)

	data, err := os.ReadFile(args[0])
	if err != nil {
		rep.Errorf("%v", err)
		atexit.Exit(1)
	}

	prog, err := ast.Decode(data)
	if err != nil {
		rep.Errorf("%s: %v", args[0], err)
		atexit.Exit(1)
	}

	glob, err := generate(prog)
	if err != nil {
		rep.Errorf("%s: %v", args[0], err)
		atexit.Exit(1)
	}

	if *cfgFile != "" {
		f, err := os.Create(*cfgFile)
		if err != nil {
			rep.Errorf("%v", err)
			atexit.Exit(1)
		}
		if err := ir.WriteDot(glob, f); err != nil {
			rep.Errorf("%v", err)
			atexit.Exit(1)
		}
		if err := f.Close(); err != nil {
			rep.Errorf("%v", err)
			atexit.Exit(1)
		}
		colors.GREEN.Printf("wrote %s\n", *cfgFile)
	}

	code := ir.Emit(glob)

	if *showIR {
		fmt.Print(ir.FormatProgram(code))
		atexit.Exit(0)
	}

	machine := interp.New(interp.Options{Debug: *debug, Reporter: rep})
	status, err := machine.Run(code)
	if err != nil {
		rep.Errorf("%v", err)
		atexit.Exit(1)
	}
	atexit.Exit(status)
}

// generate recovers code generation panics into ordinary errors so a
// malformed program reports instead of crashing.
func generate(prog *ast.Program) (glob *ir.GlobalBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return irgen.Generate(prog), nil
}
