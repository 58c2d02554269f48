// Package config loads the YAML document backing the CLI's default compile
// options and the host-runtime helper-id table, the way the teacher's
// fixtures loaded expected bytecode from structured files.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/idlhub/holyc-bpf-compiler/compiler"
	"github.com/idlhub/holyc-bpf-compiler/internal/hostabi"
)

// Options mirrors spec.md §6.1's compile options record. It is the
// flag-overlay base: a config file supplies the defaults, CLI flags
// override them.
type Options struct {
	EmitAsm  bool `yaml:"emit_asm"`
	EmitAST  bool `yaml:"emit_ast"`
	OptLevel int  `yaml:"opt_level"`
	Verbose  bool `yaml:"verbose"`
}

// HelperOverride lets a config document extend or remap the helper-id table
// hostabi ships with by default, without recompiling the binary.
type HelperOverride struct {
	Name string `yaml:"name"`
	ID   int32  `yaml:"id"`
}

// Document is the full shape of a config YAML file.
type Document struct {
	Options Options          `yaml:"options"`
	Helpers []HelperOverride `yaml:"helpers"`
}

// Default returns the document used when no config file is supplied:
// spec-default options and the unmodified hostabi table.
func Default() Document {
	return Document{
		Options: Options{OptLevel: 0},
	}
}

// Load reads and parses a config document from path.
func Load(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	doc := Default()
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return doc, nil
}

// CompilerOptions converts the loaded Options into compiler.Options, per
// spec.md §6.1's options record.
func (d Document) CompilerOptions() compiler.Options {
	return compiler.Options{
		EmitAsm:  d.Options.EmitAsm,
		EmitAST:  d.Options.EmitAST,
		OptLevel: d.Options.OptLevel,
		Verbose:  d.Options.Verbose,
	}
}

// HelperTable returns the effective name->id table: hostabi's defaults with
// any config-supplied overrides layered on top, last-wins by name.
func (d Document) HelperTable() map[string]int32 {
	table := make(map[string]int32, len(hostabi.Table)+len(d.Helpers))
	for _, h := range hostabi.Table {
		table[h.Name] = h.ID
	}
	for _, h := range d.Helpers {
		table[h.Name] = h.ID
	}
	return table
}

// Marshal renders v as YAML.
func Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}
