package library

import (
	"math"
	"strconv"

	"blocks/internal/code"
	"blocks/internal/object"
)

func integerClass() ClassSpec {
	arith := func(op func(a, b int64) (int64, error)) *code.Func {
		return code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
			self, err := Self(args)
			if err != nil {
				return nil, err
			}
			a, err := IntegerValue(self)
			if err != nil {
				return nil, err
			}
			b, err := IntegerArg(args, "Other")
			if err != nil {
				return nil, err
			}
			n, err := op(a, b)
			if err != nil {
				return nil, err
			}
			return NewInteger(n), nil
		})
	}
	compare := func(op func(a, b int64) bool) *code.Func {
		return code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
			self, err := Self(args)
			if err != nil {
				return nil, err
			}
			a, err := IntegerValue(self)
			if err != nil {
				return nil, err
			}
			b, err := IntegerArg(args, "Other")
			if err != nil {
				return nil, err
			}
			return nativeBool(op(a, b)), nil
		})
	}

	return ClassSpec{
		Name:  IntegerClass,
		Super: ObjectClass,
		Methods: map[string]*code.Func{
			code.DefaultsMethod: code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				self, err := SelfInstance(args)
				if err != nil {
					return nil, err
				}
				self.Attributes[integerValue] = &object.String{Value: "0"}
				return nil, nil
			}),
			code.ConstructorMethod: code.ForeignFunc(integerConstructor),
			"+": arith(addInt),
			"-": arith(subInt),
			"*": arith(mulInt),
			"/": arith(func(a, b int64) (int64, error) {
				if b == 0 {
					return 0, object.Errorf(object.TypeMismatch, "division by zero")
				}
				if a == math.MinInt64 && b == -1 {
					return 0, errOverflow("/", a, b)
				}
				return a / b, nil
			}),
			"=": compare(func(a, b int64) bool { return a == b }),
			"<": compare(func(a, b int64) bool { return a < b }),
			">": compare(func(a, b int64) bool { return a > b }),
			"To String": code.ForeignFunc(func(args object.Args, _ code.MethodCaller) (object.Obj, error) {
				self, err := Self(args)
				if err != nil {
					return nil, err
				}
				n, err := IntegerValue(self)
				if err != nil {
					return nil, err
				}
				return &object.String{Value: strconv.FormatInt(n, 10)}, nil
			}),
		},
	}
}

func errOverflow(op string, a, b int64) error {
	return object.Errorf(object.TypeMismatch, "integer overflow: %d %s %d", a, op, b)
}

func addInt(a, b int64) (int64, error) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, errOverflow("+", a, b)
	}
	return c, nil
}

func subInt(a, b int64) (int64, error) {
	c := a - b
	if (c < a) != (b > 0) {
		return 0, errOverflow("-", a, b)
	}
	return c, nil
}

func mulInt(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, errOverflow("*", a, b)
	}
	return c, nil
}

// integerConstructor accepts Value as decimal text or as another Integer.
// Without Value the default set by Defaults is kept.
func integerConstructor(args object.Args, _ code.MethodCaller) (object.Obj, error) {
	self, err := SelfInstance(args)
	if err != nil {
		return nil, err
	}
	v, ok := args[integerValue]
	if !ok {
		return nil, nil
	}
	var n int64
	switch val := v.(type) {
	case *object.String:
		n, err = strconv.ParseInt(val.Value, 10, 64)
		if err != nil {
			return nil, object.Errorf(object.TypeMismatch, "invalid integer %q", val.Value)
		}
	case *object.Instance:
		n, err = IntegerValue(val)
		if err != nil {
			return nil, err
		}
	default:
		return nil, object.Errorf(object.TypeMismatch, "Integer value must be STRING or Integer, got %s", v.Type())
	}
	self.Attributes[integerValue] = &object.String{Value: strconv.FormatInt(n, 10)}
	return nil, nil
}
