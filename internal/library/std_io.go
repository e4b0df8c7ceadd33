package library

import (
	"errors"
	"fmt"

	"blocks/internal/code"
	"blocks/internal/object"
	"blocks/internal/runtimeio"
)

// printFunc writes Value followed by a newline. Values that are not strings
// are rendered with their "To String" method.
func printFunc(host Host) code.Foreign {
	return func(args object.Args, call code.MethodCaller) (object.Obj, error) {
		v, err := Arg(args, "Value")
		if err != nil {
			return nil, err
		}
		s, err := toString(v, call)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Fprintln(host.Out, s); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func inputFunc(host Host) code.Foreign {
	return func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
		prompt := ""
		if _, ok := args["Prompt"]; ok {
			p, err := StringArg(args, "Prompt")
			if err != nil {
				return nil, err
			}
			prompt = p
		}
		line, err := host.Input.ReadLine(prompt)
		if err != nil {
			if errors.Is(err, runtimeio.ErrInputUnavailable) {
				return nil, object.Errorf(object.MissingArgument, "input: %v", err)
			}
			return nil, err
		}
		return &object.String{Value: line}, nil
	}
}

func notFunc(args object.Args, _ code.MethodCaller) (object.Obj, error) {
	v, err := BoolArg(args, "Value")
	if err != nil {
		return nil, err
	}
	return nativeBool(!v), nil
}
