package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/idlhub/holyc-bpf-compiler/internal/accountlayout"
	"github.com/idlhub/holyc-bpf-compiler/internal/hostabi"
)

// infoCmd implements spec.md §6.5's `info` subcommand: a static summary of
// the documented host-runtime contract (§6.3, §6.4) this build targets.
type infoCmd struct{}

func (*infoCmd) Name() string     { return "info" }
func (*infoCmd) Synopsis() string { return "Print the host-runtime ABI this build targets" }
func (*infoCmd) Usage() string {
	return `info:
  Print the recognized helper table and the CAccountInfo field layout.
`
}
func (*infoCmd) SetFlags(f *flag.FlagSet) {}

func (*infoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("helper functions:")
	for _, h := range hostabi.Table {
		fmt.Printf("  %-16s id=%d\n", h.Name, h.ID)
	}

	fmt.Println("CAccountInfo layout (104 bytes):")
	for _, f := range accountlayout.Fields {
		fmt.Printf("  %-12s offset=%-3d size=%d\n", f.Name, f.Offset, f.Size)
	}

	return subcommands.ExitSuccess
}
