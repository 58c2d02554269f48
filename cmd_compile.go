package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/idlhub/holyc-bpf-compiler/ast"
	"github.com/idlhub/holyc-bpf-compiler/compiler"
	"github.com/idlhub/holyc-bpf-compiler/internal/config"
	"github.com/idlhub/holyc-bpf-compiler/lexer"
	"github.com/idlhub/holyc-bpf-compiler/parser"
)

// compileCmd implements spec.md §6.5's `compile` subcommand: the single
// synchronous compile(source, options) entry point from §6.1, wired to
// files instead of in-process strings.
type compileCmd struct {
	input      string
	output     string
	configPath string
	emitAsm    bool
	emitAST    bool
	optLevel   int
	verbose    bool
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a HolyC-like source file to eBPF bytecode" }
func (*compileCmd) Usage() string {
	return `compile -i IN -o OUT [-S] [--emit-ast] [-v] [-config FILE]:
  Compile a source file into a flat eBPF instruction stream.
`
}

func (cmd *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.input, "i", "", "input source file")
	f.StringVar(&cmd.output, "o", "", "output bytecode file")
	f.StringVar(&cmd.configPath, "config", "", "YAML config file supplying default options (CLI flags override it)")
	f.BoolVar(&cmd.emitAsm, "S", false, "also print a disassembly listing to stdout")
	f.BoolVar(&cmd.emitAST, "emit-ast", false, "also print the parsed AST as JSON to stdout")
	f.IntVar(&cmd.optLevel, "opt", 0, "optimization level, accepted but ignored (0-3)")
	f.BoolVar(&cmd.verbose, "v", false, "verbose diagnostics")
}

func (cmd *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if cmd.input == "" {
		fmt.Fprintf(os.Stderr, "💥 -i input file is required\n")
		return subcommands.ExitUsageError
	}

	opts, err := cmd.resolveOptions(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	data, err := os.ReadFile(cmd.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", cmd.input, err)
		return subcommands.ExitFailure
	}

	program, err := lexAndParse(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if opts.EmitAST {
		out, err := parser.PrintJSON(program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to render AST: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(out)
	}

	bytecode, err := compiler.Compile(program, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if opts.EmitAsm {
		listing, err := compiler.Disassemble(bytecode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to disassemble: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(listing)
	}

	if cmd.output != "" {
		if err := os.WriteFile(cmd.output, bytecode, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write %s: %v\n", cmd.output, err)
			return subcommands.ExitFailure
		}
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "compiled %d bytes (%d instructions)\n", len(bytecode), len(bytecode)/8)
	}

	return subcommands.ExitSuccess
}

// resolveOptions layers this invocation's explicitly-passed flags on top of
// a config file's defaults (or spec.md §6.1's zero-value defaults when no
// config file is given), the way the teacher's fixtures let a structured
// file supply a baseline that a specific test case then overrides.
func (cmd *compileCmd) resolveOptions(f *flag.FlagSet) (compiler.Options, error) {
	doc := config.Default()
	if cmd.configPath != "" {
		loaded, err := config.Load(cmd.configPath)
		if err != nil {
			return compiler.Options{}, err
		}
		doc = loaded
	}
	opts := doc.CompilerOptions()

	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "S":
			opts.EmitAsm = cmd.emitAsm
		case "emit-ast":
			opts.EmitAST = cmd.emitAST
		case "opt":
			opts.OptLevel = cmd.optLevel
		case "v":
			opts.Verbose = cmd.verbose
		}
	})
	return opts, nil
}

// lexAndParse runs the lex and parse stages in sequence, the way every
// front-end-consuming subcommand needs to.
func lexAndParse(source string) (program ast.Program, err error) {
	toks, err := lexer.New(source).Scan()
	if err != nil {
		return program, fmt.Errorf("💥 lex error: %w", err)
	}
	program, err = parser.Parse(toks)
	if err != nil {
		return program, fmt.Errorf("💥 parse error: %w", err)
	}
	return program, nil
}
