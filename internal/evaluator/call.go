package evaluator

import (
	"fmt"

	"blocks/internal/code"
	"blocks/internal/object"
)

// EvalFunc calls a function with already evaluated arguments. An AST
// function gets a fresh scope holding one binding per argument; the
// bindings are removed again when it returns. A Return carrying a value
// becomes the result, anything else yields nil.
func (in *Interpreter) EvalFunc(id code.FuncID, args object.Args) (object.Obj, error) {
	return in.call(id, string(id), args)
}

// EvalMethod resolves name on recv's class chain and calls it with recv
// bound to Self.
func (in *Interpreter) EvalMethod(recv object.Obj, name string, args object.Args) (object.Obj, error) {
	if recv == nil {
		return nil, in.errorf(object.TypeMismatch, "method %q called on no value", name)
	}
	class := code.ClassName(recv.ClassName())
	id, err := in.resolveMethod(class, name)
	if err != nil {
		return nil, err
	}
	callArgs := args.Copy()
	callArgs[code.SelfArg] = recv
	log.Debugf("dispatch %s.%s -> %s", class, name, id)
	return in.call(id, fmt.Sprintf("%s.%s", class, name), callArgs)
}

func (in *Interpreter) callMethod(recv object.Obj, name string, args object.Args) (object.Obj, error) {
	return in.EvalMethod(recv, name, args)
}

func (in *Interpreter) call(id code.FuncID, label string, args object.Args) (object.Obj, error) {
	fn, ok := in.prog.Functions[id]
	if !ok {
		return nil, in.errorf(object.MissingEntity, "function %q not found", id)
	}
	if err := in.enter(label); err != nil {
		return nil, err
	}
	defer in.leave()

	if fn.Kind == code.FuncForeign {
		if fn.Execute == nil {
			return nil, in.errorf(object.MissingEntity, "foreign function %q has no implementation", id)
		}
		res, err := fn.Execute(args, in.callMethod)
		if err != nil {
			return nil, in.traced(err)
		}
		if res == nil {
			return nil, nil
		}
		if err := in.charge(object.Cost(res)); err != nil {
			return nil, err
		}
		return res, nil
	}

	scope := object.NewScope()
	for _, name := range args.Names() {
		rid := in.store.Mint()
		in.store.Set(rid, args[name])
		scope[name] = rid
	}
	defer func() {
		for _, rid := range scope {
			in.store.Delete(rid)
		}
	}()

	intr, err := in.EvalAST(scope, fn.Ast)
	if err != nil {
		return nil, err
	}
	if rv, ok := intr.(*object.ReturnValue); ok {
		return rv.Value, nil
	}
	return nil, nil
}

// resolveMethod returns the first definition of name on class or one of its
// ancestors.
func (in *Interpreter) resolveMethod(class code.ClassName, name string) (code.FuncID, error) {
	id, ok, err := in.findMethod(class, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", in.errorf(object.UserUndefinedMethod, "%s does not define method %q", class, name)
	}
	return id, nil
}

func (in *Interpreter) findMethod(class code.ClassName, name string) (code.FuncID, bool, error) {
	seen := map[code.ClassName]bool{}
	for cls := class; cls != ""; {
		if seen[cls] {
			return "", false, in.errorf(object.TypeMismatch, "cyclic superclass chain at %q", cls)
		}
		seen[cls] = true
		def, ok := in.prog.Classes[cls]
		if !ok {
			return "", false, in.errorf(object.MissingEntity, "class %q not found", cls)
		}
		if id, ok := def.Methods[name]; ok {
			return id, true, nil
		}
		cls = def.Super
	}
	return "", false, nil
}

// findDefaults looks up the optional Defaults method. A dangling or cyclic
// superclass ends the walk without error; Constructor resolution reports it.
func (in *Interpreter) findDefaults(class code.ClassName) (code.FuncID, bool) {
	seen := map[code.ClassName]bool{}
	for cls := class; cls != "" && !seen[cls]; {
		seen[cls] = true
		def, ok := in.prog.Classes[cls]
		if !ok {
			return "", false
		}
		if id, ok := def.Methods[code.DefaultsMethod]; ok {
			return id, true
		}
		cls = def.Super
	}
	return "", false
}

// IsSubclass reports whether class is ancestor or inherits from it.
// Broken or cyclic chains report false.
func (in *Interpreter) IsSubclass(class, ancestor code.ClassName) bool {
	seen := map[code.ClassName]bool{}
	for cls := class; cls != "" && !seen[cls]; {
		if cls == ancestor {
			return true
		}
		seen[cls] = true
		def, ok := in.prog.Classes[cls]
		if !ok {
			return false
		}
		cls = def.Super
	}
	return false
}

// ConstructInstance creates an instance of class, runs Defaults when the
// class chain defines it, then Constructor with args.
func (in *Interpreter) ConstructInstance(class code.ClassName, args object.Args) (*object.Instance, error) {
	if _, ok := in.prog.Classes[class]; !ok {
		return nil, in.errorf(object.MissingEntity, "class %q not found", class)
	}
	if err := in.charge(object.CostInstance()); err != nil {
		return nil, err
	}
	inst := object.NewInstance(string(class))
	log.Debugf("construct %s", class)

	if id, ok := in.findDefaults(class); ok {
		label := fmt.Sprintf("%s.%s", class, code.DefaultsMethod)
		if _, err := in.call(id, label, object.Args{code.SelfArg: inst}); err != nil {
			return nil, err
		}
	}
	if _, err := in.EvalMethod(inst, code.ConstructorMethod, args); err != nil {
		return nil, err
	}
	return inst, nil
}
