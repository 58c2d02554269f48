package main

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/idlhub/holyc-bpf-compiler/lexer"
	"github.com/idlhub/holyc-bpf-compiler/parser"
)

func TestParsePrintJSONIdentityFunction(t *testing.T) {
	tokens, err := lexer.New("U64 id(U64 a) { return a; }").Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() error: %v", err)
	}
	program, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parser.Parse() error: %v", err)
	}
	out, err := parser.PrintJSON(program)
	if err != nil {
		t.Fatalf("PrintJSON() error: %v", err)
	}
	snaps.MatchSnapshot(t, "parse_identity_function", out)
}

func TestParsePrintJSONClassLayout(t *testing.T) {
	tokens, err := lexer.New(`
		class Point { U64 x; U64 y; };
		U64 sum(Point *p) { return p->x + p->y; }
	`).Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() error: %v", err)
	}
	program, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parser.Parse() error: %v", err)
	}
	out, err := parser.PrintJSON(program)
	if err != nil {
		t.Fatalf("PrintJSON() error: %v", err)
	}
	snaps.MatchSnapshot(t, "parse_class_layout", out)
}
