package library

import (
	"strings"

	"blocks/internal/code"
	"blocks/internal/object"
)

func selfArray(args object.Args) (*object.Array, error) {
	self, err := Self(args)
	if err != nil {
		return nil, err
	}
	arr, ok := self.(*object.Array)
	if !ok {
		return nil, object.Errorf(object.TypeMismatch, "expected ARRAY receiver, got %s", self.Type())
	}
	return arr, nil
}

func arrayClass() ClassSpec {
	return ClassSpec{
		Name:  ArrayClass,
		Super: ObjectClass,
		Methods: map[string]*code.Func{
			code.ConstructorMethod: code.ForeignFunc(noop),
			"Length": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				arr, err := selfArray(args)
				if err != nil {
					return nil, err
				}
				return NewInteger(int64(len(arr.Elements))), nil
			}),
			"Get": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				arr, err := selfArray(args)
				if err != nil {
					return nil, err
				}
				idx, err := IntegerArg(args, "Index")
				if err != nil {
					return nil, err
				}
				if idx < 0 || idx >= int64(len(arr.Elements)) {
					return nil, object.Errorf(object.TypeMismatch, "index %d out of range [0, %d)", idx, len(arr.Elements))
				}
				return arr.Elements[idx], nil
			}),
			// Append leaves the receiver untouched and returns the longer copy.
			"Append": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				arr, err := selfArray(args)
				if err != nil {
					return nil, err
				}
				v, err := Arg(args, "Value")
				if err != nil {
					return nil, err
				}
				elems := make([]object.Obj, 0, len(arr.Elements)+1)
				elems = append(elems, arr.Elements...)
				return &object.Array{Elements: append(elems, v)}, nil
			}),
			"To String": code.ForeignFunc(func(args object.Args, call code.MethodCaller) (object.Obj, error) {
				arr, err := selfArray(args)
				if err != nil {
					return nil, err
				}
				parts := make([]string, 0, len(arr.Elements))
				for _, el := range arr.Elements {
					s, err := toString(el, call)
					if err != nil {
						return nil, err
					}
					parts = append(parts, s)
				}
				return &object.String{Value: "[" + strings.Join(parts, ", ") + "]"}, nil
			}),
		},
	}
}
