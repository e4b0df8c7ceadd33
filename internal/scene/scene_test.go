package scene

import (
	"image/color"
	"io"
	"testing"

	"blocks/internal/code"
	"blocks/internal/evaluator"
	"blocks/internal/library"
	"blocks/internal/object"
)

func TestRenderCollectsShapes(t *testing.T) {
	b := code.NewBuilder("scene")
	b.Class("Box", library.ShapeClass)
	b.Main(
		b.Set("a", b.Construct("Box", code.Args{"X": b.Int(5), "Color": b.Str("#f00")})),
		b.Set("h", b.Construct(library.ObjectClass, nil)),
		b.Set("h.Item", b.Construct("Box", code.Args{"Y": b.Int(7)})),
		b.Set("list", b.Array(
			b.Construct(library.ShapeClass, code.Args{"Width": b.Int(3)}),
			b.Get("a"),
		)),
		b.Set("n", b.Str("not a shape")),
	)

	rects, err := Render(b.Program(), evaluator.WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Rect{
		{Name: "a", X: 5, W: 10, H: 10, Color: color.RGBA{R: 255, A: 255}},
		{Name: "h.Item", Y: 7, W: 10, H: 10, Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{Name: "list[0]", W: 3, H: 10, Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	}
	if len(rects) != len(want) {
		t.Fatalf("expected %d rects, got %+v", len(want), rects)
	}
	for i, tt := range want {
		if rects[i] != tt {
			t.Fatalf("tests[%d] - expected %+v, got %+v", i, tt, rects[i])
		}
	}
}

func TestRenderBadColor(t *testing.T) {
	b := code.NewBuilder("scene")
	b.Main(b.Set("s", b.Construct(library.ShapeClass, code.Args{"Color": b.Str("red")})))

	_, err := Render(b.Program(), evaluator.WithOutput(io.Discard))
	if kind, ok := object.KindOf(err); !ok || kind != object.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  color.RGBA
		ok    bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, true},
		{"#0a0b0c", color.RGBA{10, 11, 12, 255}, true},
		{"#abc", color.RGBA{0xaa, 0xbb, 0xcc, 255}, true},
		{"#00000080", color.RGBA{0, 0, 0, 128}, true},
		{"ffffff", color.RGBA{}, false},
		{"#12345", color.RGBA{}, false},
		{"#gggggg", color.RGBA{}, false},
	}
	for i, tt := range tests {
		got, err := ParseColor(tt.input)
		if (err == nil) != tt.ok {
			t.Fatalf("tests[%d] - unexpected error state: %v", i, err)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("tests[%d] - expected %v, got %v", i, tt.want, got)
		}
	}
}
