package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"blocks/internal/code"
	"blocks/internal/config"
	"blocks/internal/diag"
	"blocks/internal/evaluator"
	"blocks/internal/gfx"
	"blocks/internal/library"
	"blocks/internal/lint"
	"blocks/internal/module"
	"blocks/internal/object"
	"blocks/internal/repl"
	"blocks/internal/scene"
	"blocks/internal/tools"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("blocks.cli")

const usage = `usage: blocks [-v N] [-max-recursion N] [-max-memory BYTES] [-record DB] <command> [args]

commands:
  run [file|dir]        run Main of a document or project
  check <path>...       validate documents
  dump [-all] <file>    print a document's code
  fmt [-w] <path>...    rewrite documents in canonical form
  test [-retained] [path]...
                        run documents that carry an expect section
  preview [file|dir]    show the scene in a window
  repl [file|dir]       open a console on a document
  history [list|show|clear]
                        inspect recorded runs
  init                  create blocks.yaml and a starter document
  tools install [-bin DIR]
                        build blocks and blocks-lsp
`

// cli carries the global flags shared by every command.
type cli struct {
	out io.Writer
	// in feeds the Input function; nil means stdin.
	in io.Reader

	maxRecursion int
	maxMemory    int64
	record       string
	// set holds the global flags given on the command line, which win over
	// the manifest.
	set map[string]bool
}

func main() {
	c, args, verbosity, err := parseGlobal(os.Stdout, os.Args[1:])
	if err != nil {
		fmt.Print(usage)
		os.Exit(2)
	}
	commonlog.Configure(verbosity, nil)
	os.Exit(c.dispatch(args))
}

func parseGlobal(out io.Writer, args []string) (*cli, []string, int, error) {
	fs := flag.NewFlagSet("blocks", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	verbose := fs.Int("v", 0, "log verbosity")
	maxRecursion := fs.Int("max-recursion", 0, "maximum call nesting (0 = unlimited)")
	maxMemory := fs.Int64("max-memory", 0, "allocation budget in bytes (0 = unlimited)")
	record := fs.String("record", "", "record runs in this history database")
	if err := fs.Parse(args); err != nil {
		return nil, nil, 0, err
	}
	if *maxRecursion < 0 || *maxMemory < 0 {
		return nil, nil, 0, errors.New("limits must not be negative")
	}
	c := &cli{
		out:          out,
		maxRecursion: *maxRecursion,
		maxMemory:    *maxMemory,
		record:       *record,
		set:          map[string]bool{},
	}
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })
	return c, fs.Args(), *verbose, nil
}

func (c *cli) dispatch(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		return c.runRun(rest)
	case "check":
		return c.runCheck(rest)
	case "dump":
		return c.runDump(rest)
	case "fmt":
		return c.runFmt(rest)
	case "test":
		return c.runTest(rest)
	case "preview":
		return c.runPreview(rest)
	case "repl":
		return c.runRepl(rest)
	case "history":
		return c.runHistory(rest)
	case "init":
		return c.runInit(rest)
	case "tools":
		return c.runTools(rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return 0
	}
	if ok, _ := pathExists(cmd); ok {
		return c.runRun(args)
	}
	fmt.Fprintln(c.out, "unknown command:", cmd)
	return 2
}

// target is a loaded document and the project it belongs to, if any.
type target struct {
	doc  *module.Document
	man  *config.Manifest
	libs []library.Library
}

// resolveRunTarget maps a command argument to a document path. A directory
// or a blocks.yaml file names a project whose entry is run.
func resolveRunTarget(path string) (string, *config.Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		man, err := config.FindManifest(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", nil, fmt.Errorf("%s has no %s", path, config.ManifestName)
			}
			return "", nil, err
		}
		return man.EntryPath(), man, nil
	}
	if filepath.Base(path) == config.ManifestName {
		man, err := config.LoadManifest(path)
		if err != nil {
			return "", nil, err
		}
		return man.EntryPath(), man, nil
	}
	return path, nil, nil
}

func loadTarget(path string) (*target, error) {
	docPath, man, err := resolveRunTarget(path)
	if err != nil {
		return nil, err
	}
	doc, err := module.Load(docPath)
	if err != nil {
		return nil, err
	}
	names := append([]string(nil), doc.Libraries...)
	if man != nil {
		names = append(names, man.Libraries...)
	}
	libs, err := module.ResolveLibraries(dedupe(names))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Path, err)
	}
	return &target{doc: doc, man: man, libs: libs}, nil
}

func dedupe(names []string) []string {
	seen := map[string]bool{}
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// limits returns the recursion and memory caps for t: flags first, then
// the manifest.
func (c *cli) limits(t *target) (int, int64) {
	rec, mem := c.maxRecursion, c.maxMemory
	if t.man != nil {
		if !c.set["max-recursion"] {
			rec = t.man.Limits.MaxRecursion
		}
		if !c.set["max-memory"] {
			mem = t.man.Limits.MaxMemory
		}
	}
	return rec, mem
}

func (c *cli) evalOptions(t *target, out io.Writer) []evaluator.Option {
	rec, mem := c.limits(t)
	opts := []evaluator.Option{
		evaluator.WithOutput(out),
		evaluator.WithLibraries(t.libs...),
		evaluator.WithMaxRecursion(rec),
		evaluator.WithMaxMemory(mem),
	}
	if c.in != nil {
		opts = append(opts, evaluator.WithInput(c.in))
	}
	return opts
}

func targetArg(args []string) (string, bool) {
	switch len(args) {
	case 0:
		return ".", true
	case 1:
		return args[0], true
	}
	return "", false
}

func (c *cli) runRun(args []string) int {
	path, ok := targetArg(args)
	if !ok {
		fmt.Fprintln(c.out, "usage: blocks run [file|dir]")
		return 2
	}
	t, err := loadTarget(path)
	if err != nil {
		fmt.Fprintln(c.out, "load error:", err)
		return 1
	}

	out := c.out
	var captured bytes.Buffer
	if c.record != "" {
		out = io.MultiWriter(c.out, &captured)
	}
	started := time.Now()
	in := evaluator.New(t.doc.Program, c.evalOptions(t, out)...)
	snap, err := in.Run()
	if c.record != "" {
		if rerr := c.recordRun(t, started, captured.String(), snap, err); rerr != nil {
			fmt.Fprintln(c.out, "history error:", rerr)
		}
	}
	if err != nil {
		c.printRunError(err)
		return 1
	}
	return 0
}

func (c *cli) printRunError(err error) {
	fmt.Fprintln(c.out, "run error:", err)
	var e *object.Error
	if errors.As(err, &e) && e.Stack != "" {
		if _, trace, ok := strings.Cut(e.Stack, "\n"); ok {
			fmt.Fprint(c.out, trace)
		}
	}
}

func (c *cli) runCheck(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "usage: blocks check <file|dir> [more...]")
		return 2
	}
	files, err := collectDocuments(args)
	if err != nil {
		fmt.Fprintln(c.out, "check error:", err)
		return 1
	}
	sort.Strings(files)

	hadErrors := false
	for _, path := range files {
		diags, err := checkFile(path)
		if err != nil {
			fmt.Fprintln(c.out, "check error:", err)
			hadErrors = true
			continue
		}
		for _, d := range diags {
			fmt.Fprintln(c.out, d.Format(path))
		}
		if diag.HasErrors(diags) {
			hadErrors = true
		}
	}
	if hadErrors {
		return 1
	}
	return 0
}

func checkFile(path string) ([]diag.Diagnostic, error) {
	doc, err := module.Load(path)
	if err != nil {
		return nil, err
	}
	libs, err := doc.Libs()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	diags := lint.Run(doc.Program, libs...)
	diag.Locate(diags, func(s diag.Subject) (int, int, bool) {
		p, ok := doc.Pos(module.EntityKind(s.Kind), s.ID)
		return p.Line, p.Col, ok
	})
	diag.Sort(diags)
	return diags, nil
}

func (c *cli) runDump(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	all := fs.Bool("all", false, "include the loaded libraries")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		fmt.Fprintln(c.out, "usage: blocks dump [-all] [file|dir]")
		return 2
	}
	path, _ := targetArg(fs.Args())
	t, err := loadTarget(path)
	if err != nil {
		fmt.Fprintln(c.out, "load error:", err)
		return 1
	}
	p := t.doc.Program
	if *all {
		p = evaluator.New(p, c.evalOptions(t, io.Discard)...).Program()
	}
	fmt.Fprint(c.out, code.Dump(&p.Code))
	return 0
}

func (c *cli) runFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	writeBack := fs.Bool("w", false, "write result to (source) file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(c.out, "usage: blocks fmt [-w] <path>...")
		return 2
	}
	targets := fs.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}
	files, err := collectDocuments(targets)
	if err != nil {
		fmt.Fprintln(c.out, "fmt error:", err)
		return 1
	}
	sort.Strings(files)

	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(c.out, "fmt error:", err)
			return 1
		}
		formatted, err := formatDocument(path, b)
		if err != nil {
			fmt.Fprintln(c.out, "fmt error:", err)
			return 1
		}
		if !*writeBack {
			fmt.Fprint(c.out, string(formatted))
			continue
		}
		if !bytes.Equal(b, formatted) {
			if err := writeFileAtomic(path, formatted); err != nil {
				fmt.Fprintln(c.out, "fmt error:", err)
				return 1
			}
		}
		fmt.Fprintf(c.out, "formatted %s\n", path)
	}
	return 0
}

func formatDocument(path string, src []byte) ([]byte, error) {
	doc, err := module.Parse(src)
	if err != nil {
		var de *module.DecodeError
		if errors.As(err, &de) {
			de.File = path
		}
		return nil, err
	}
	return module.Encode(doc)
}

func (c *cli) runPreview(args []string) int {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := gfx.DefaultOptions()
	fs.IntVar(&opts.Width, "width", opts.Width, "window width")
	fs.IntVar(&opts.Height, "height", opts.Height, "window height")
	scale := fs.Float64("scale", float64(opts.Scale), "shape scale")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		fmt.Fprintln(c.out, "usage: blocks preview [-width N] [-height N] [-scale F] [file|dir]")
		return 2
	}
	opts.Scale = float32(*scale)
	path, _ := targetArg(fs.Args())

	t, err := loadTarget(path)
	if err != nil {
		fmt.Fprintln(c.out, "load error:", err)
		return 1
	}
	opts.Title = "Blocks - " + t.doc.Program.Name

	// Each frame re-reads the document so edits show up on reload.
	frame := func() ([]scene.Rect, error) {
		t, err := loadTarget(path)
		if err != nil {
			return nil, err
		}
		t.libs = withoutScene(t.libs)
		return scene.Render(t.doc.Program, c.evalOptions(t, c.out)...)
	}
	if err := gfx.Run(opts, frame); err != nil {
		fmt.Fprintln(c.out, "preview error:", err)
		return 1
	}
	return 0
}

// withoutScene drops the scene library, which scene.Render loads itself.
func withoutScene(libs []library.Library) []library.Library {
	out := libs[:0:0]
	for _, lib := range libs {
		if lib.Name != "scene" {
			out = append(out, lib)
		}
	}
	return out
}

func (c *cli) runRepl(args []string) int {
	path, ok := targetArg(args)
	if !ok {
		fmt.Fprintln(c.out, "usage: blocks repl [file|dir]")
		return 2
	}
	t, err := loadTarget(path)
	if err != nil {
		fmt.Fprintln(c.out, "load error:", err)
		return 1
	}
	rec, mem := c.limits(t)
	var extra []library.Library
	if t.man != nil {
		extra, _ = module.ResolveLibraries(t.man.Libraries)
	}
	console, err := repl.NewConsole(t.doc, c.out,
		evaluator.WithLibraries(extra...),
		evaluator.WithMaxRecursion(rec),
		evaluator.WithMaxMemory(mem))
	if err != nil {
		fmt.Fprintln(c.out, "repl error:", err)
		return 1
	}
	histPath := ""
	if dir, err := os.UserCacheDir(); err == nil {
		histPath = filepath.Join(dir, "blocks", "repl_history")
		if err := ensureDir(histPath); err != nil {
			log.Warningf("repl history: %s", err)
			histPath = ""
		}
	}
	if err := repl.Start(console, c.out, histPath); err != nil {
		fmt.Fprintln(c.out, "repl error:", err)
		return 1
	}
	return 0
}

func (c *cli) runInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "project name")
	entry := fs.String("entry", "main.yaml", "entry document")
	force := fs.Bool("force", false, "overwrite existing files")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		fmt.Fprintln(c.out, "usage: blocks init [-name <name>] [-entry <file>] [-force] [dir]")
		return 2
	}
	if strings.TrimSpace(*entry) == "" {
		fmt.Fprintln(c.out, "init error: entry cannot be empty")
		return 2
	}
	dir := "."
	if fs.NArg() == 1 {
		dir = fs.Arg(0)
	}
	if err := initProject(dir, *name, *entry, *force); err != nil {
		fmt.Fprintln(c.out, "init error:", err)
		return 1
	}
	fmt.Fprintf(c.out, "created %s\n", filepath.Join(dir, config.ManifestName))
	return 0
}

func initProject(dir, name, entry string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	manifestPath := filepath.Join(dir, config.ManifestName)
	exists, err := pathExists(manifestPath)
	if err != nil {
		return err
	}
	if exists && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", config.ManifestName)
	}
	if err := os.WriteFile(manifestPath, []byte(buildManifest(name, entry)), 0o644); err != nil {
		return err
	}

	entryPath := filepath.Join(dir, entry)
	if err := ensureDir(entryPath); err != nil {
		return err
	}
	exists, err = pathExists(entryPath)
	if err != nil {
		return err
	}
	if !exists || force {
		return os.WriteFile(entryPath, []byte(starterProgram()), 0o644)
	}
	return nil
}

func (c *cli) runTools(args []string) int {
	if len(args) == 0 || args[0] != "install" {
		fmt.Fprintln(c.out, "usage: blocks tools install [-bin <dir>]")
		return 2
	}
	fs := flag.NewFlagSet("tools install", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	binDir := fs.String("bin", "bin", "output directory for tools")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 0 {
		fmt.Fprintln(c.out, "usage: blocks tools install [-bin <dir>]")
		return 2
	}
	built, err := tools.Install(tools.InstallOptions{BinDir: *binDir, Stdout: c.out, Stderr: c.out})
	if err != nil {
		fmt.Fprintln(c.out, "install error:", err)
		return 1
	}
	fmt.Fprintf(c.out, "installed: %s\n", strings.Join(built, ", "))
	return 0
}

func collectDocuments(targets []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				base := filepath.Base(path)
				if path != target && (strings.HasPrefix(base, ".") || base == "node_modules") {
					return filepath.SkipDir
				}
				return nil
			}
			if isDocument(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// isDocument reports whether path looks like a program document.
// Manifests share the extension and are skipped.
func isDocument(path string) bool {
	if filepath.Base(path) == config.ManifestName {
		return false
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".blocksfmt-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func buildManifest(name, entry string) string {
	var b strings.Builder
	if strings.TrimSpace(name) != "" {
		fmt.Fprintf(&b, "name: %q\n", name)
	}
	fmt.Fprintf(&b, "entry: %q\n", entry)
	return b.String()
}

func starterProgram() string {
	return `asts:
  Main: [greet]
blocks:
  greet: {kind: call, func: Print, args: {Value: hello}}
  hello: {kind: string, value: "hello, blocks"}
expect:
  stdout: "hello, blocks\n"
`
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
