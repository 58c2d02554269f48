package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/idlhub/holyc-bpf-compiler/compiler"
	"github.com/idlhub/holyc-bpf-compiler/internal/config"
	"github.com/idlhub/holyc-bpf-compiler/lexer"
	"github.com/idlhub/holyc-bpf-compiler/parser"
	"github.com/idlhub/holyc-bpf-compiler/token"
	"github.com/idlhub/holyc-bpf-compiler/vm"
)

// replCmd is an enrichment beyond spec.md's CLI contract: an interactive
// line-editing session that buffers input lines until they form complete
// top-level items (functions, classes, globals), then lexes, parses,
// compiles, and runs them against the local VM, using readline the way the
// teacher's line-editing command did.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive compile-and-run session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session. Type "exit" to quit.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	historyFile := filepath.Join(os.TempDir(), ".holyc_bpf_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New()
	helpers := defaultHelpers(config.Default().HelperTable())
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer.Reset()
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, err := lexer.New(source).Scan()
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		program, err := parser.Parse(tokens)
		if err != nil {
			if awaitingMoreInput(err) {
				continue
			}
			fmt.Fprintf(os.Stdout, "parse error: %v\n", err)
			buffer.Reset()
			continue
		}

		bytecode, err := compiler.Compile(program, compiler.Options{})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			buffer.Reset()
			continue
		}

		result, err := machine.Run(bytecode, helpers)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			buffer.Reset()
			continue
		}

		fmt.Println(result)
		buffer.Reset()
	}
}

// isInputReady reports whether the buffered lines form a balanced,
// probably-complete program, the way the teacher's REPL decided whether to
// wait for more input before attempting a parse.
func isInputReady(tokens []token.Token) bool {
	balance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LBRACE:
			balance++
		case token.RBRACE:
			balance--
		}
	}
	return balance <= 0
}

// awaitingMoreInput reports whether a parse error is just the grammar
// running off the end of a not-yet-complete statement, in which case the
// REPL should keep buffering lines instead of reporting an error.
func awaitingMoreInput(err error) bool {
	parseErr, ok := err.(parser.ParseError)
	return ok && parseErr.Actual.TokenType == token.EOF
}
