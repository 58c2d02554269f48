package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/idlhub/holyc-bpf-compiler/lexer"
	"github.com/idlhub/holyc-bpf-compiler/token"
)

// lexCmd implements spec.md §6.5's `lex -i IN [--json]` subcommand: the
// lex(source) -> [(token, span)] secondary operation from §6.1.
type lexCmd struct {
	input   string
	useJSON bool
}

func (*lexCmd) Name() string     { return "lex" }
func (*lexCmd) Synopsis() string { return "Print the token stream for a source file" }
func (*lexCmd) Usage() string {
	return `lex -i IN [--json]:
  Print every token scanned from a source file.
`
}

func (cmd *lexCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.input, "i", "", "input source file")
	f.BoolVar(&cmd.useJSON, "json", false, "print tokens as JSON instead of plain text")
}

func (cmd *lexCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if cmd.useJSON {
		out, err := json.MarshalIndent(tokensToJSON(tokens), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to render tokens: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}

	for _, tok := range tokens {
		fmt.Println(tok.String())
	}
	return subcommands.ExitSuccess
}

func tokensToJSON(tokens []token.Token) []map[string]any {
	out := make([]map[string]any, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, map[string]any{
			"type":   string(tok.TokenType),
			"lexeme": tok.Lexeme,
			"start":  tok.Start,
			"end":    tok.End,
			"line":   tok.Line,
			"column": tok.Column,
		})
	}
	return out
}
