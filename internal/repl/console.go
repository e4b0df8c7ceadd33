package repl

import (
	"fmt"
	"io"
	"strings"

	"blocks/internal/code"
	"blocks/internal/evaluator"
	"blocks/internal/module"
	"blocks/internal/object"
)

// Console evaluates one document interactively. Variables set by Main stay
// bound between commands until reset.
type Console struct {
	doc   *module.Document
	out   io.Writer
	opts  []evaluator.Option
	in    *evaluator.Interpreter
	scope object.Scope
}

func NewConsole(doc *module.Document, out io.Writer, opts ...evaluator.Option) (*Console, error) {
	c := &Console{doc: doc, out: out, opts: opts}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Console) reset() error {
	libs, err := c.doc.Libs()
	if err != nil {
		return err
	}
	opts := append([]evaluator.Option{evaluator.WithOutput(c.out), evaluator.WithLibraries(libs...)}, c.opts...)
	c.in = evaluator.New(c.doc.Program, opts...)
	c.scope = object.NewScope()
	return nil
}

// Interpreter exposes the live interpreter, mainly for tests.
func (c *Console) Interpreter() *evaluator.Interpreter { return c.in }

func (c *Console) Scope() object.Scope { return c.scope }

const help = `commands:
  run            run Main, keeping its variables
  eval <block>   evaluate one block in the current scope
  get <var>      show a variable or attribute (a.b.c)
  vars           list bound variables
  call <func>    call a function without arguments
  show <block>   describe a block
  reset          forget all variables
  reload         re-read the document and reset
  help           this text
  quit           leave
`

// Exec runs one command line. It reports whether the console should close.
func (c *Console) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, arg := fields[0], strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
	switch cmd {
	case "quit", "exit", ":q":
		return true
	case "help", "?":
		fmt.Fprint(c.out, help)
	case "run":
		it, err := c.in.RunInScope(c.scope)
		if err != nil {
			c.fail(err)
			return false
		}
		if _, ok := it.(*object.Break); ok {
			fmt.Fprintln(c.out, "(stopped by break)")
		}
	case "eval":
		if c.needArg(cmd, arg) {
			v, err := c.in.EvalBlock(code.BlockID(arg), c.scope)
			if err != nil {
				c.fail(err)
				return false
			}
			c.show(v)
		}
	case "get":
		if c.needArg(cmd, arg) {
			ref, err := code.ParseRef(arg)
			if err != nil {
				c.fail(err)
				return false
			}
			v, err := c.in.Lookup(c.scope, ref)
			if err != nil {
				c.fail(err)
				return false
			}
			c.show(v)
		}
	case "vars":
		c.vars()
	case "call":
		if c.needArg(cmd, arg) {
			v, err := c.in.EvalFunc(code.FuncID(arg), object.Args{})
			if err != nil {
				c.fail(err)
				return false
			}
			c.show(v)
		}
	case "show":
		if c.needArg(cmd, arg) {
			blk, ok := c.in.Program().Blocks[code.BlockID(arg)]
			if !ok {
				fmt.Fprintf(c.out, "no block %q\n", arg)
				return false
			}
			fmt.Fprintf(c.out, "%s: %s\n", arg, code.Describe(blk))
		}
	case "reset":
		if err := c.reset(); err != nil {
			c.fail(err)
		}
	case "reload":
		if c.doc.Path == "" {
			fmt.Fprintln(c.out, "document has no file to reload")
			return false
		}
		doc, err := module.Load(c.doc.Path)
		if err != nil {
			c.fail(err)
			return false
		}
		c.doc = doc
		if err := c.reset(); err != nil {
			c.fail(err)
		}
	default:
		fmt.Fprintf(c.out, "unknown command %q, type help\n", cmd)
	}
	return false
}

func (c *Console) needArg(cmd, arg string) bool {
	if arg == "" {
		fmt.Fprintf(c.out, "usage: %s <id>\n", cmd)
		return false
	}
	return true
}

func (c *Console) show(v object.Object) {
	switch o := v.(type) {
	case nil:
		fmt.Fprintln(c.out, "(no value)")
	case *object.ReturnValue:
		if o.Value == nil {
			fmt.Fprintln(c.out, "(return)")
			return
		}
		fmt.Fprintln(c.out, o.Value.Inspect())
	default:
		fmt.Fprintln(c.out, v.Inspect())
	}
}

func (c *Console) vars() {
	names := c.scope.Names()
	if len(names) == 0 {
		fmt.Fprintln(c.out, "(no variables)")
		return
	}
	for _, name := range names {
		v, ok := c.in.Store().Get(c.scope[name])
		if !ok {
			fmt.Fprintf(c.out, "%s = (unbound)\n", name)
			continue
		}
		fmt.Fprintf(c.out, "%s = %s\n", name, v.Inspect())
	}
}

func (c *Console) fail(err error) {
	fmt.Fprintf(c.out, "error: %s\n", err)
}
