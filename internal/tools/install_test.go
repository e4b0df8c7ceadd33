package tools

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildCommands(t *testing.T) {
	opts := InstallOptions{BinDir: "out", Dir: "/src/blocks"}.withDefaults()
	cmds := buildCommands(opts)
	if len(cmds) != len(Binaries) {
		t.Fatalf("expected %d commands, got %d", len(Binaries), len(cmds))
	}
	tests := []string{
		"go build -o " + filepath.Join("out", "blocks") + " ./cmd/blocks",
		"go build -o " + filepath.Join("out", "blocks-lsp") + " ./cmd/blocks-lsp",
	}
	for i, want := range tests {
		got := strings.Join(cmds[i].Args, " ")
		if got != want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, want, got)
		}
		if cmds[i].Dir != "/src/blocks" {
			t.Fatalf("tests[%d] - expected dir /src/blocks, got %q", i, cmds[i].Dir)
		}
	}
}

func TestDefaults(t *testing.T) {
	opts := InstallOptions{}.withDefaults()
	if opts.BinDir != "bin" || opts.Go != "go" || opts.Stdout == nil || opts.Stderr == nil {
		t.Fatalf("unexpected defaults %+v", opts)
	}
}
