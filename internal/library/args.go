package library

import (
	"strconv"

	"blocks/internal/code"
	"blocks/internal/object"
)

func Arg(args object.Args, name string) (object.Obj, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, object.Errorf(object.MissingArgument, "missing argument %q", name)
	}
	return v, nil
}

func Self(args object.Args) (object.Obj, error) {
	return Arg(args, code.SelfArg)
}

func SelfInstance(args object.Args) (*object.Instance, error) {
	self, err := Self(args)
	if err != nil {
		return nil, err
	}
	inst, ok := self.(*object.Instance)
	if !ok {
		return nil, object.Errorf(object.TypeMismatch, "expected an instance, got %s", self.Type())
	}
	return inst, nil
}

func StringArg(args object.Args, name string) (string, error) {
	v, err := Arg(args, name)
	if err != nil {
		return "", err
	}
	s, ok := v.(*object.String)
	if !ok {
		return "", object.Errorf(object.TypeMismatch, "argument %q must be STRING, got %s", name, v.Type())
	}
	return s.Value, nil
}

func BoolArg(args object.Args, name string) (bool, error) {
	v, err := Arg(args, name)
	if err != nil {
		return false, err
	}
	b, ok := v.(*object.Boolean)
	if !ok {
		return false, object.Errorf(object.TypeMismatch, "argument %q must be BOOLEAN, got %s", name, v.Type())
	}
	return b.Value, nil
}

func IntegerArg(args object.Args, name string) (int64, error) {
	v, err := Arg(args, name)
	if err != nil {
		return 0, err
	}
	return IntegerValue(v)
}

// NewInteger builds a standard library Integer instance.
func NewInteger(n int64) *object.Instance {
	inst := object.NewInstance(IntegerClass)
	inst.Attributes[integerValue] = &object.String{Value: strconv.FormatInt(n, 10)}
	return inst
}

// IntegerValue reads the number held by an Integer instance.
func IntegerValue(o object.Obj) (int64, error) {
	inst, ok := o.(*object.Instance)
	if !ok {
		return 0, object.Errorf(object.TypeMismatch, "expected Integer, got %s", o.Type())
	}
	raw, ok := inst.Attributes[integerValue].(*object.String)
	if !ok {
		return 0, object.Errorf(object.TypeMismatch, "expected Integer, got %s instance", inst.Class)
	}
	n, err := strconv.ParseInt(raw.Value, 10, 64)
	if err != nil {
		return 0, object.Errorf(object.TypeMismatch, "invalid integer %q", raw.Value)
	}
	return n, nil
}

func nativeBool(b bool) *object.Boolean {
	return &object.Boolean{Value: b}
}

// toString renders any value through its "To String" method.
func toString(v object.Obj, call code.MethodCaller) (string, error) {
	if s, ok := v.(*object.String); ok {
		return s.Value, nil
	}
	res, err := call(v, "To String", nil)
	if err != nil {
		return "", err
	}
	s, ok := res.(*object.String)
	if !ok {
		return "", object.Errorf(object.TypeMismatch, "%q of %s must return STRING", "To String", v.ClassName())
	}
	return s.Value, nil
}
