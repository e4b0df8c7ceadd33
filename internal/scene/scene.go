// Package scene turns the live Shape instances of an evaluated program into
// drawable rectangles.
package scene

import (
	"image/color"
	"sort"
	"strconv"
	"strings"

	"blocks/internal/code"
	"blocks/internal/evaluator"
	"blocks/internal/library"
	"blocks/internal/object"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("blocks.scene")

type Rect struct {
	Name       string // variable path the shape was found under
	X, Y, W, H float32
	Color      color.RGBA
}

// Runtime is what Collect needs from an interpreter.
type Runtime interface {
	Store() *object.Store
	IsSubclass(class, ancestor code.ClassName) bool
}

// Render runs program with the scene library loaded and collects the shapes
// left in Main's scope.
func Render(program *code.Program, opts ...evaluator.Option) ([]Rect, error) {
	opts = append([]evaluator.Option{evaluator.WithLibraries(library.Scene())}, opts...)
	in := evaluator.New(program, opts...)
	scope := object.NewScope()
	if _, err := in.RunInScope(scope); err != nil {
		return nil, err
	}
	return Collect(in, scope)
}

// Collect walks the variables of scope in name order, descending into
// arrays and plain instances. Each Shape is reported once.
func Collect(rt Runtime, scope object.Scope) ([]Rect, error) {
	c := &collector{rt: rt, seen: map[object.Obj]bool{}}
	for _, name := range scope.Names() {
		v, ok := rt.Store().Get(scope[name])
		if !ok {
			continue
		}
		if err := c.visit(name, v); err != nil {
			return nil, err
		}
	}
	log.Debugf("collected %d shapes", len(c.out))
	return c.out, nil
}

type collector struct {
	rt   Runtime
	seen map[object.Obj]bool
	out  []Rect
}

func (c *collector) visit(path string, v object.Obj) error {
	switch o := v.(type) {
	case *object.Array:
		if c.seen[o] {
			return nil
		}
		c.seen[o] = true
		for i, el := range o.Elements {
			if err := c.visit(path+"["+strconv.Itoa(i)+"]", el); err != nil {
				return err
			}
		}
	case *object.Instance:
		if c.seen[o] {
			return nil
		}
		c.seen[o] = true
		if c.rt.IsSubclass(code.ClassName(o.Class), library.ShapeClass) {
			return c.shape(path, o)
		}
		names := make([]string, 0, len(o.Attributes))
		for name := range o.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := c.visit(path+"."+name, o.Attributes[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *collector) shape(path string, inst *object.Instance) error {
	g, err := library.ShapeGeometry(inst)
	if err != nil {
		return err
	}
	col, err := ParseColor(g.Color)
	if err != nil {
		return object.Errorf(object.TypeMismatch, "%s: invalid color %q", path, g.Color)
	}
	c.out = append(c.out, Rect{
		Name:  path,
		X:     float32(g.X),
		Y:     float32(g.Y),
		W:     float32(g.Width),
		H:     float32(g.Height),
		Color: col,
	})
	return nil
}

// ParseColor reads #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return color.RGBA{}, object.Errorf(object.TypeMismatch, "invalid color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, object.Errorf(object.TypeMismatch, "invalid color %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, object.Errorf(object.TypeMismatch, "invalid color %q", s)
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}
