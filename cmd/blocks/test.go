package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"blocks/internal/evaluator"
	"blocks/internal/module"
	"blocks/internal/object"
	"blocks/internal/spectest"
)

func (c *cli) runTest(args []string) int {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	retained := fs.Bool("retained", false, "evaluate Main in a retained scope")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(c.out, "usage: blocks test [-retained] [path|dir]...")
		return 2
	}
	targets := fs.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	files, err := collectDocuments(targets)
	if err != nil {
		fmt.Fprintln(c.out, "test error:", err)
		return 1
	}

	passed, failed, skipped := 0, 0, 0
	for _, path := range files {
		doc, err := module.Load(path)
		if err != nil {
			failed++
			fmt.Fprintf(c.out, "FAIL %s: %s\n", path, err)
			continue
		}
		if doc.Expect == nil {
			skipped++
			continue
		}
		ok, reason := c.runTestDocument(doc, *retained)
		if ok {
			passed++
			continue
		}
		failed++
		fmt.Fprintf(c.out, "FAIL %s: %s\n", path, reason)
	}
	if passed+failed == 0 {
		fmt.Fprintln(c.out, "no tests found")
		return 0
	}
	fmt.Fprintf(c.out, "passed %d, failed %d", passed, failed)
	if skipped > 0 {
		fmt.Fprintf(c.out, ", skipped %d", skipped)
	}
	fmt.Fprintln(c.out)
	if failed > 0 {
		return 1
	}
	return 0
}

// runTestDocument runs doc against its expect section.
func (c *cli) runTestDocument(doc *module.Document, retained bool) (bool, string) {
	libs, err := doc.Libs()
	if err != nil {
		return false, err.Error()
	}
	t := &target{doc: doc, libs: libs}
	var out bytes.Buffer
	opts := append(c.evalOptions(t, &out), evaluator.WithInput(strings.NewReader(doc.Expect.Input)))
	in := evaluator.New(doc.Program, opts...)
	if retained {
		_, err = in.RunInScope(object.NewScope())
	} else {
		_, err = in.Run()
	}

	exp := doc.Expect
	switch {
	case exp.Error == "" && exp.ErrorContains == "":
		if err != nil {
			return false, "expected ok, got error: " + err.Error()
		}
	case err == nil:
		return false, "expected error, got ok"
	default:
		var e *object.Error
		if exp.Error != "" && (!errors.As(err, &e) || e.Kind.String() != exp.Error) {
			return false, fmt.Sprintf("error mismatch: expected %s, got %q", exp.Error, err.Error())
		}
		if !strings.Contains(err.Error(), exp.ErrorContains) {
			return false, fmt.Sprintf("error mismatch: expected to contain %q, got %q", exp.ErrorContains, err.Error())
		}
	}

	if exp.Stdout != nil {
		want := spectest.StdoutExpectation{Mode: spectest.StdoutExact, Value: *exp.Stdout}
		if ok, reason := spectest.MatchStdout(out.String(), want); !ok {
			return false, reason
		}
	}
	return true, ""
}
