package evaluator

import (
	"io"

	"github.com/tliron/commonlog"

	"blocks/internal/code"
	"blocks/internal/library"
	"blocks/internal/limits"
	"blocks/internal/object"
	"blocks/internal/runtimeio"
)

var log = commonlog.GetLogger("blocks.evaluator")

// Interpreter executes one program. It owns a private copy of the program's
// code and the runtime store; it is not safe for concurrent use.
type Interpreter struct {
	prog   *code.Program
	store  *object.Store
	out    io.Writer
	input  *runtimeio.LineReader
	depth  *limits.Depth
	budget *limits.Budget
	stack  []stackFrame
}

// New deep-copies program and merges the standard library plus any extra
// libraries into the copy. The caller's program is never mutated.
func New(program *code.Program, opts ...Option) *Interpreter {
	s := newSettings(opts)
	in := &Interpreter{
		prog:   program.Clone(),
		store:  object.NewStore(),
		out:    s.out,
		input:  s.input(),
		depth:  limits.NewDepth(s.maxRecursion),
		budget: limits.NewBudget(s.maxMemory),
		stack:  []stackFrame{{Func: mainFrame}},
	}
	libs := append([]library.Library{
		library.Standard(library.Host{Out: in.out, Input: in.input}),
	}, s.libs...)
	library.Load(&in.prog.Code, libs...)
	return in
}

// Program is the interpreter's merged copy of the program.
func (in *Interpreter) Program() *code.Program { return in.prog }

func (in *Interpreter) Store() *object.Store { return in.store }

// Run evaluates Main with an empty outer scope and returns what is left in
// the runtime store. Main's own variables are purged when it finishes.
func (in *Interpreter) Run() (object.Snapshot, error) {
	if !in.prog.HasMain() {
		return nil, in.errorf(object.MissingEntity, "program %q has no %s AST", in.prog.Name, code.MainAst)
	}
	log.Infof("run %s", in.prog.Name)
	if _, err := in.EvalAST(object.NewScope(), code.MainAst); err != nil {
		log.Infof("run %s failed: %s", in.prog.Name, err)
		return in.store.Snapshot(), err
	}
	log.Infof("run %s finished", in.prog.Name)
	return in.store.Snapshot(), nil
}

// RunInScope evaluates Main's blocks directly in scope. Bindings made by
// Main stay in scope and in the store, so a preview or console can inspect
// them afterwards.
func (in *Interpreter) RunInScope(scope object.Scope) (object.Interrupt, error) {
	ast, ok := in.prog.Asts[code.MainAst]
	if !ok {
		return nil, in.errorf(object.MissingEntity, "program %q has no %s AST", in.prog.Name, code.MainAst)
	}
	log.Infof("run %s (retained scope)", in.prog.Name)
	return in.evalBlocks(ast, scope)
}

// EvalAST evaluates the blocks of an AST in order inside a copy of outer.
// The first interrupt stops the AST and is returned. On every exit path the
// variables first bound in this frame are removed from the store.
func (in *Interpreter) EvalAST(outer object.Scope, id code.AstID) (object.Interrupt, error) {
	ast, ok := in.prog.Asts[id]
	if !ok {
		return nil, in.errorf(object.MissingEntity, "ast %q not found", id)
	}
	scope := outer.Copy()
	defer in.purge(outer, scope)
	return in.evalBlocks(ast, scope)
}

func (in *Interpreter) evalBlocks(ast code.Ast, scope object.Scope) (object.Interrupt, error) {
	for _, ref := range ast {
		res, err := in.EvalBlock(ref, scope)
		if err != nil {
			return nil, err
		}
		if intr, ok := res.(object.Interrupt); ok {
			return intr, nil
		}
	}
	return nil, nil
}

func (in *Interpreter) purge(outer, scope object.Scope) {
	for name, id := range scope {
		if _, ok := outer[name]; !ok {
			in.store.Delete(id)
		}
	}
}

// EvalBlock evaluates one block. The result is an object.Obj, an
// object.Interrupt, or nil when the block yields no value.
func (in *Interpreter) EvalBlock(ref code.BlockID, scope object.Scope) (object.Object, error) {
	blk, ok := in.prog.Blocks[ref]
	if !ok {
		return nil, in.errorf(object.MissingEntity, "block %q not found", ref)
	}
	restore := in.at(ref)
	defer restore()

	switch b := blk.(type) {
	case *code.BooleanLiteral:
		return in.alloc(&object.Boolean{Value: b.Value})

	case *code.StringLiteral:
		return in.alloc(&object.String{Value: b.Value})

	case *code.ArrayLiteral:
		elems := make([]object.Obj, 0, len(b.Elements))
		for _, el := range b.Elements {
			v, err := in.evalValue(el, scope)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return in.alloc(&object.Array{Elements: elems})

	case *code.Construct:
		args, err := in.evalArgs(b.Args, scope)
		if err != nil {
			return nil, err
		}
		inst, err := in.ConstructInstance(b.Class, args)
		if err != nil {
			return nil, err
		}
		return inst, nil

	case *code.Set:
		return nil, in.evalSet(b, scope)

	case *code.Get:
		v, err := in.Lookup(scope, b.Var)
		if err != nil {
			return nil, err
		}
		return v, nil

	case *code.FunctionCall:
		args, err := in.evalArgs(b.Args, scope)
		if err != nil {
			return nil, err
		}
		return objectOrNil(in.EvalFunc(b.Func, args))

	case *code.MethodCall:
		recv, err := in.evalValue(b.Receiver, scope)
		if err != nil {
			return nil, err
		}
		args, err := in.evalArgs(b.Args, scope)
		if err != nil {
			return nil, err
		}
		return objectOrNil(in.EvalMethod(recv, b.Method, args))

	case *code.Return:
		if b.Value == "" {
			return &object.ReturnValue{}, nil
		}
		v, err := in.evalValue(b.Value, scope)
		if err != nil {
			return nil, err
		}
		return &object.ReturnValue{Value: v}, nil

	case *code.If:
		cond, err := in.evalValue(b.Cond, scope)
		if err != nil {
			return nil, err
		}
		bv, ok := cond.(*object.Boolean)
		if !ok {
			return nil, in.errorf(object.TypeMismatch, "if condition must be BOOLEAN, got %s", cond.Type())
		}
		var branch code.AstID
		if bv.Value {
			branch = b.Then
		} else {
			branch = b.Else
		}
		if branch == "" {
			return nil, nil
		}
		return interruptOrNil(in.EvalAST(scope, branch))

	case *code.While:
		return in.evalWhile(b, scope)

	case *code.Break:
		return &object.Break{}, nil

	case *code.Defer:
		return nil, in.errorf(object.Unsupported, "defer blocks are not evaluated (block %q)", ref)
	}
	return nil, in.errorf(object.Unsupported, "unknown block kind %T", blk)
}

// evalWhile stops quietly when the condition is not a Boolean, unlike If.
// Break ends the loop; Return passes through to the enclosing function.
func (in *Interpreter) evalWhile(b *code.While, scope object.Scope) (object.Object, error) {
	for {
		cond, err := in.evalValue(b.Cond, scope)
		if err != nil {
			return nil, err
		}
		bv, ok := cond.(*object.Boolean)
		if !ok || !bv.Value {
			return nil, nil
		}
		intr, err := in.EvalAST(scope, b.Body)
		if err != nil {
			return nil, err
		}
		switch intr.(type) {
		case *object.Break:
			return nil, nil
		case *object.ReturnValue:
			return intr, nil
		}
	}
}

func (in *Interpreter) evalSet(b *code.Set, scope object.Scope) error {
	if b.Var.Attribute == nil {
		id, ok := scope[b.Var.Name]
		if !ok {
			id = in.store.Mint()
			scope[b.Var.Name] = id
		}
		v, err := in.evalValue(b.Value, scope)
		if err != nil {
			return err
		}
		in.store.Set(id, v)
		return nil
	}
	base, err := in.variable(scope, b.Var.Name)
	if err != nil {
		return err
	}
	v, err := in.evalValue(b.Value, scope)
	if err != nil {
		return err
	}
	return in.SetAttribute(base, *b.Var.Attribute, v)
}

// evalValue evaluates a block that must produce a value.
func (in *Interpreter) evalValue(ref code.BlockID, scope object.Scope) (object.Obj, error) {
	res, err := in.EvalBlock(ref, scope)
	if err != nil {
		return nil, err
	}
	switch v := res.(type) {
	case object.Obj:
		return v, nil
	case nil:
		return nil, in.errorf(object.TypeMismatch, "block %q yields no value", ref)
	default:
		return nil, in.errorf(object.TypeMismatch, "block %q yields %s where a value is expected", ref, v.Type())
	}
}

// evalArgs evaluates keyword arguments in name order.
func (in *Interpreter) evalArgs(args code.Args, scope object.Scope) (object.Args, error) {
	out := make(object.Args, len(args))
	for _, name := range args.Names() {
		v, err := in.evalValue(args[name], scope)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// Lookup resolves a variable reference, following its attribute chain.
func (in *Interpreter) Lookup(scope object.Scope, ref code.VariableRef) (object.Obj, error) {
	base, err := in.variable(scope, ref.Name)
	if err != nil {
		return nil, err
	}
	if ref.Attribute == nil {
		return base, nil
	}
	return in.GetAttribute(base, *ref.Attribute)
}

func (in *Interpreter) variable(scope object.Scope, name string) (object.Obj, error) {
	id, ok := scope[name]
	if !ok {
		return nil, in.errorf(object.MissingEntity, "variable %q is not defined", name)
	}
	v, ok := in.store.Get(id)
	if !ok {
		return nil, in.errorf(object.MissingEntity, "variable %q (%s) is not bound", name, id)
	}
	return v, nil
}

func objectOrNil(v object.Obj, err error) (object.Object, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

func interruptOrNil(v object.Interrupt, err error) (object.Object, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}
