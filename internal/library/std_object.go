package library

import (
	"unicode/utf8"

	"blocks/internal/code"
	"blocks/internal/object"
)

func noop(object.Args, code.MethodCaller) (object.Obj, error) {
	return nil, nil
}

func objectClass() ClassSpec {
	return ClassSpec{
		Name: ObjectClass,
		Methods: map[string]*code.Func{
			code.ConstructorMethod: code.ForeignFunc(noop),
			"To String": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				self, err := Self(args)
				if err != nil {
					return nil, err
				}
				return &object.String{Value: self.ClassName() + " instance"}, nil
			}),
			"=": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				self, err := Self(args)
				if err != nil {
					return nil, err
				}
				other, err := Arg(args, "Other")
				if err != nil {
					return nil, err
				}
				return nativeBool(self == other), nil
			}),
			"Class Name": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				self, err := Self(args)
				if err != nil {
					return nil, err
				}
				return &object.String{Value: self.ClassName()}, nil
			}),
		},
	}
}

func selfBool(args object.Args) (bool, error) {
	self, err := Self(args)
	if err != nil {
		return false, err
	}
	b, ok := self.(*object.Boolean)
	if !ok {
		return false, object.Errorf(object.TypeMismatch, "expected BOOLEAN receiver, got %s", self.Type())
	}
	return b.Value, nil
}

func booleanClass() ClassSpec {
	binary := func(op func(a, b bool) bool) *code.Func {
		return code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
			a, err := selfBool(args)
			if err != nil {
				return nil, err
			}
			b, err := BoolArg(args, "Other")
			if err != nil {
				return nil, err
			}
			return nativeBool(op(a, b)), nil
		})
	}
	return ClassSpec{
		Name:  BooleanClass,
		Super: ObjectClass,
		Methods: map[string]*code.Func{
			code.ConstructorMethod: code.ForeignFunc(noop),
			"Not": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				v, err := selfBool(args)
				if err != nil {
					return nil, err
				}
				return nativeBool(!v), nil
			}),
			"And": binary(func(a, b bool) bool { return a && b }),
			"Or":  binary(func(a, b bool) bool { return a || b }),
			"=":   binary(func(a, b bool) bool { return a == b }),
			"To String": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				v, err := selfBool(args)
				if err != nil {
					return nil, err
				}
				if v {
					return &object.String{Value: "true"}, nil
				}
				return &object.String{Value: "false"}, nil
			}),
		},
	}
}

func selfString(args object.Args) (string, error) {
	self, err := Self(args)
	if err != nil {
		return "", err
	}
	s, ok := self.(*object.String)
	if !ok {
		return "", object.Errorf(object.TypeMismatch, "expected STRING receiver, got %s", self.Type())
	}
	return s.Value, nil
}

func stringClass() ClassSpec {
	return ClassSpec{
		Name:  StringClass,
		Super: ObjectClass,
		Methods: map[string]*code.Func{
			code.ConstructorMethod: code.ForeignFunc(noop),
			"To String": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				return Self(args)
			}),
			"Concat": code.ForeignFunc(func(args object.Args, call code.MethodCaller) (object.Obj, error) {
				s, err := selfString(args)
				if err != nil {
					return nil, err
				}
				other, err := Arg(args, "Other")
				if err != nil {
					return nil, err
				}
				tail, err := toString(other, call)
				if err != nil {
					return nil, err
				}
				return &object.String{Value: s + tail}, nil
			}),
			"Length": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				s, err := selfString(args)
				if err != nil {
					return nil, err
				}
				return NewInteger(int64(utf8.RuneCountInString(s))), nil
			}),
			"=": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				s, err := selfString(args)
				if err != nil {
					return nil, err
				}
				other, err := Arg(args, "Other")
				if err != nil {
					return nil, err
				}
				o, ok := other.(*object.String)
				return nativeBool(ok && o.Value == s), nil
			}),
		},
	}
}
