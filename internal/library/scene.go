package library

import (
	"fmt"
	"strconv"

	"blocks/internal/code"
	"blocks/internal/object"
)

const ShapeClass code.ClassName = "Shape"

// ShapeAttributes are the attributes every Shape carries after Defaults.
var ShapeAttributes = []string{"X", "Y", "Width", "Height", "Color"}

// Scene is the optional library behind the preview window. Programs subclass
// Shape and keep instances in variables; the previewer draws every live one.
func Scene() Library {
	b := code.NewPrefixedBuilder("scene", "scene:")
	b.Class(ShapeClass, ObjectClass).
		Method(code.DefaultsMethod,
			b.Set("Self.X", b.Int(0)),
			b.Set("Self.Y", b.Int(0)),
			b.Set("Self.Width", b.Int(10)),
			b.Set("Self.Height", b.Int(10)),
			b.Set("Self.Color", b.Str("#ffffff")),
		).
		Foreign(code.ConstructorMethod, shapeConstructor).
		Method("Area",
			b.Return(b.Method(b.Get("Self.Width"), "*", code.Args{"Other": b.Get("Self.Height")})),
		).
		Foreign("To String", shapeString)
	return FromProgram("scene", b.Program())
}

// shapeConstructor copies whichever shape attributes were passed. Numbers
// may be given as Integers or as decimal text.
func shapeConstructor(args object.Args, _ code.MethodCaller) (object.Obj, error) {
	self, err := SelfInstance(args)
	if err != nil {
		return nil, err
	}
	for _, name := range ShapeAttributes {
		v, ok := args[name]
		if !ok {
			continue
		}
		if name == "Color" {
			s, err := StringArg(args, name)
			if err != nil {
				return nil, err
			}
			self.Attributes[name] = &object.String{Value: s}
			continue
		}
		n, err := shapeNumber(name, v)
		if err != nil {
			return nil, err
		}
		self.Attributes[name] = NewInteger(n)
	}
	return nil, nil
}

func shapeNumber(name string, v object.Obj) (int64, error) {
	if s, ok := v.(*object.String); ok {
		n, err := strconv.ParseInt(s.Value, 10, 64)
		if err != nil {
			return 0, object.Errorf(object.TypeMismatch, "argument %q: invalid integer %q", name, s.Value)
		}
		return n, nil
	}
	return IntegerValue(v)
}

func shapeString(args object.Args, _ code.MethodCaller) (object.Obj, error) {
	self, err := SelfInstance(args)
	if err != nil {
		return nil, err
	}
	g, err := ShapeGeometry(self)
	if err != nil {
		return nil, err
	}
	return &object.String{Value: fmt.Sprintf("%s(%d, %d, %dx%d, %s)", self.Class, g.X, g.Y, g.Width, g.Height, g.Color)}, nil
}

// Geometry is the drawable part of a Shape instance.
type Geometry struct {
	X, Y, Width, Height int64
	Color               string
}

// ShapeGeometry reads the geometry attributes of a Shape instance.
func ShapeGeometry(inst *object.Instance) (Geometry, error) {
	var g Geometry
	nums := []*int64{&g.X, &g.Y, &g.Width, &g.Height}
	for i, name := range ShapeAttributes[:4] {
		v, ok := inst.Attributes[name]
		if !ok {
			return g, object.Errorf(object.MissingEntity, "%s has no attribute %q", inst.Class, name)
		}
		n, err := IntegerValue(v)
		if err != nil {
			return g, err
		}
		*nums[i] = n
	}
	c, ok := inst.Attributes["Color"].(*object.String)
	if !ok {
		return g, object.Errorf(object.TypeMismatch, "%s attribute %q must be STRING", inst.Class, "Color")
	}
	g.Color = c.Value
	return g, nil
}
