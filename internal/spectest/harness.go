package spectest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"blocks/internal/evaluator"
	"blocks/internal/module"
	"blocks/internal/object"
)

// Mode picks how Main is evaluated. Both must agree on output and errors.
type Mode string

const (
	// ModeRun evaluates Main in its own frame and purges it afterwards.
	ModeRun Mode = "run"
	// ModeRetained evaluates Main's blocks directly in a caller-owned scope.
	ModeRetained Mode = "retained"
)

// CodeDecode is the error code reported when a document does not decode.
const CodeDecode = "DecodeError"

type Options struct {
	Mode         Mode
	Source       string
	Input        string
	MaxRecursion int
	MaxMemory    int64
}

type Expectation struct {
	Stdout         string
	StdoutContains string
	IgnoreStdout   bool
	ErrCode      string // an error kind name, e.g. "TypeMismatch"
	ErrContains  string
}

type Result struct {
	Stdout  string
	ErrCode string
	ErrMsg  string
}

func Run(t *testing.T, opts Options) Result {
	t.Helper()

	doc, err := module.Parse([]byte(opts.Source))
	if err != nil {
		return Result{ErrCode: CodeDecode, ErrMsg: err.Error()}
	}
	return runDocument(t, doc, opts)
}

func runDocument(t *testing.T, doc *module.Document, opts Options) Result {
	t.Helper()

	libs, err := doc.Libs()
	if err != nil {
		return Result{ErrCode: CodeDecode, ErrMsg: err.Error()}
	}
	var out bytes.Buffer
	evalOpts := []evaluator.Option{
		evaluator.WithOutput(&out),
		evaluator.WithInput(strings.NewReader(opts.Input)),
		evaluator.WithLibraries(libs...),
		evaluator.WithMaxRecursion(opts.MaxRecursion),
		evaluator.WithMaxMemory(opts.MaxMemory),
	}
	in := evaluator.New(doc.Program, evalOpts...)

	switch opts.Mode {
	case ModeRun, "":
		_, err = in.Run()
	case ModeRetained:
		_, err = in.RunInScope(object.NewScope())
	default:
		t.Fatalf("unknown mode: %q", opts.Mode)
	}

	res := Result{Stdout: out.String()}
	if err != nil {
		res.ErrCode, res.ErrMsg = classify(err)
	}
	return res
}

// RunDocument runs the document at path in mode and returns its own
// expectation alongside the result.
func RunDocument(t *testing.T, path string, mode Mode) (Result, Expectation) {
	t.Helper()

	doc, err := module.Load(path)
	if err != nil {
		t.Fatalf("failed to load %s: %v", filepath.Base(path), err)
	}
	if doc.Expect == nil {
		t.Fatalf("%s has no expect section", filepath.Base(path))
	}
	exp := Expectation{
		IgnoreStdout: doc.Expect.Stdout == nil,
		ErrCode:      doc.Expect.Error,
		ErrContains:  doc.Expect.ErrorContains,
	}
	if doc.Expect.Stdout != nil {
		exp.Stdout = *doc.Expect.Stdout
	}
	res := runDocument(t, doc, Options{Mode: mode, Input: doc.Expect.Input})
	return res, exp
}

func classify(err error) (string, string) {
	var e *object.Error
	if errors.As(err, &e) {
		return e.Kind.String(), e.Message
	}
	return "", err.Error()
}

func Assert(t *testing.T, res Result, exp Expectation) {
	t.Helper()

	if ok, reason := MatchStdout(res.Stdout, stdoutExpectation(exp)); !ok {
		t.Fatal(reason)
	}

	wantErr := exp.ErrCode != "" || exp.ErrContains != ""
	gotErr := res.ErrCode != "" || res.ErrMsg != ""

	if wantErr && !gotErr {
		t.Fatalf("expected error %q/%q, got none", exp.ErrCode, exp.ErrContains)
	}
	if !wantErr && gotErr {
		t.Fatalf("unexpected error: %s", FormatError(res.ErrCode, res.ErrMsg))
	}

	if exp.ErrCode != "" && res.ErrCode != exp.ErrCode {
		t.Fatalf("error code mismatch: expected %q, got %q", exp.ErrCode, res.ErrCode)
	}
	if exp.ErrContains != "" && !strings.Contains(res.ErrMsg, exp.ErrContains) {
		t.Fatalf("error message mismatch: expected to contain %q, got %q", exp.ErrContains, res.ErrMsg)
	}
}

func ExpectBoth(exp Expectation) map[Mode]Expectation {
	return map[Mode]Expectation{
		ModeRun:      exp,
		ModeRetained: exp,
	}
}

func Expect(mode Mode, exp Expectation) map[Mode]Expectation {
	return map[Mode]Expectation{mode: exp}
}

func FormatError(code, msg string) string {
	if code == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", code, msg)
}
