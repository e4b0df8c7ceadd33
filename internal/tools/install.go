// Package tools builds the blocks binaries from a source checkout.
package tools

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Binary is one command of the module.
type Binary struct {
	Name string
	Pkg  string
}

var Binaries = []Binary{
	{Name: "blocks", Pkg: "./cmd/blocks"},
	{Name: "blocks-lsp", Pkg: "./cmd/blocks-lsp"},
}

type InstallOptions struct {
	BinDir string
	// Dir is the module root to build in; empty means the working directory.
	Dir    string
	Go     string
	Stdout io.Writer
	Stderr io.Writer
}

func (o InstallOptions) withDefaults() InstallOptions {
	if o.BinDir == "" {
		o.BinDir = "bin"
	}
	if o.Go == "" {
		o.Go = "go"
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// Install builds every binary into opts.BinDir and returns their paths.
func Install(opts InstallOptions) ([]string, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(opts.BinDir, 0o755); err != nil {
		return nil, err
	}
	var out []string
	for i, cmd := range buildCommands(opts) {
		if err := cmd.Run(); err != nil {
			return out, fmt.Errorf("build %s: %w", Binaries[i].Name, err)
		}
		out = append(out, cmd.Args[3])
	}
	return out, nil
}

func buildCommands(opts InstallOptions) []*exec.Cmd {
	cmds := make([]*exec.Cmd, 0, len(Binaries))
	for _, b := range Binaries {
		cmd := exec.Command(opts.Go, "build", "-o", filepath.Join(opts.BinDir, b.Name), b.Pkg)
		cmd.Dir = opts.Dir
		cmd.Stdout = opts.Stdout
		cmd.Stderr = opts.Stderr
		cmds = append(cmds, cmd)
	}
	return cmds
}
