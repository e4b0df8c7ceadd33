package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blocks/internal/code"
	"blocks/internal/library"
)

// Document is a program file: the program itself, the optional libraries
// it asks for, and an optional test expectation.
type Document struct {
	Path      string
	Program   *code.Program
	Libraries []string
	Expect    *Expectation
	Positions map[Entity]Pos
}

// Expectation describes what running a document should produce.
type Expectation struct {
	Stdout        *string `yaml:"stdout,omitempty"`
	Error         string  `yaml:"error,omitempty"`
	ErrorContains string  `yaml:"error_contains,omitempty"`
	Input         string  `yaml:"input,omitempty"`
}

type EntityKind string

const (
	EntityClass    EntityKind = "class"
	EntityFunction EntityKind = "function"
	EntityAst      EntityKind = "ast"
	EntityBlock    EntityKind = "block"
)

// Entity names one definition in a document.
type Entity struct {
	Kind EntityKind
	ID   string
}

// Pos is a 1-based line and column.
type Pos struct {
	Line int
	Col  int
}

// DecodeError is a document problem with its location.
type DecodeError struct {
	File string
	Pos  Pos
	Msg  string
}

func (e *DecodeError) Error() string {
	file := e.File
	if file == "" {
		file = "<document>"
	}
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", file, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Pos.Line, e.Pos.Col, e.Msg)
}

// Load reads and decodes the document at path.
func Load(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.File = abs
		}
		return nil, err
	}
	doc.Path = abs
	if doc.Program.Name == "" {
		doc.Program.Name = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}
	return doc, nil
}

// Pos returns where an entity is defined, if known.
func (d *Document) Pos(kind EntityKind, id string) (Pos, bool) {
	p, ok := d.Positions[Entity{Kind: kind, ID: id}]
	return p, ok
}

// Libs resolves the document's library names. "std" is accepted and
// skipped since the standard library is always loaded.
func (d *Document) Libs() ([]library.Library, error) {
	return ResolveLibraries(d.Libraries)
}

func ResolveLibraries(names []string) ([]library.Library, error) {
	var out []library.Library
	for _, name := range names {
		if name == "std" {
			continue
		}
		lib, ok := library.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown library %q", name)
		}
		out = append(out, lib)
	}
	return out, nil
}
