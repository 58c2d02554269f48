package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/idlhub/holyc-bpf-compiler/lexer"
	"github.com/idlhub/holyc-bpf-compiler/parser"
)

// parseCmd implements spec.md §6.5's `parse -i IN [--json]` subcommand: the
// parse(tokens) -> Program secondary operation from §6.1.
type parseCmd struct {
	input   string
	useJSON bool
}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "Parse a source file and print its AST" }
func (*parseCmd) Usage() string {
	return `parse -i IN [--json]:
  Parse a source file and print its AST.
`
}

func (cmd *parseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.input, "i", "", "input source file")
	f.BoolVar(&cmd.useJSON, "json", false, "print the AST as JSON")
}

func (cmd *parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if cmd.input == "" {
		fmt.Fprintf(os.Stderr, "💥 -i input file is required\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(cmd.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", cmd.input, err)
		return subcommands.ExitFailure
	}

	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 lex error: %v\n", err)
		return subcommands.ExitFailure
	}

	program, err := parser.Parse(tokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 parse error: %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.useJSON {
		out, err := parser.PrintJSON(program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to render AST: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(out)
		return subcommands.ExitSuccess
	}

	fmt.Printf("%d top-level items\n", len(program.Items))
	return subcommands.ExitSuccess
}
