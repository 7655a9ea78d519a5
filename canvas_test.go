package geodraw

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"strings"
	"testing"
)

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	cv, err := NewCanvas(200, 100)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	return cv
}

func rectNear(a, b Rect, tol float64) bool {
	return math.Abs(a.MinX-b.MinX) <= tol && math.Abs(a.MinY-b.MinY) <= tol &&
		math.Abs(a.MaxX-b.MaxX) <= tol && math.Abs(a.MaxY-b.MaxY) <= tol
}

func TestNewCanvasValidation(t *testing.T) {
	for _, size := range [][2]float64{{0, 10}, {10, -1}, {math.Inf(1), 10}, {10, math.NaN()}} {
		if _, err := NewCanvas(size[0], size[1]); !errors.Is(err, ErrInvalidParam) {
			t.Errorf("NewCanvas(%v, %v) err = %v, want ErrInvalidParam", size[0], size[1], err)
		}
	}
}

func TestLineExtentsIncludeCaps(t *testing.T) {
	tests := []struct {
		cap  LineCap
		want Rect
	}{
		{CapButt, Rect{MinX: 0, MinY: -2, MaxX: 10, MaxY: 2}},
		{CapSquare, Rect{MinX: -2, MinY: -2, MaxX: 12, MaxY: 2}},
		{CapRound, Rect{MinX: -2, MinY: -2, MaxX: 12, MaxY: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.cap.String(), func(t *testing.T) {
			cv := newTestCanvas(t)
			if err := cv.DrawLine(0, 0, 10, 0, Style{Stroke: "#000", StrokeWidth: 4, LineCap: tt.cap}); err != nil {
				t.Fatal(err)
			}
			got, _ := cv.Extents()
			if !rectNear(got, tt.want, 1e-9) {
				t.Errorf("Extents() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtentsWithoutStroke(t *testing.T) {
	cv := newTestCanvas(t)
	if err := cv.DrawCircle(50, 50, 10, Style{Fill: "red"}); err != nil {
		t.Fatal(err)
	}
	got, _ := cv.Extents()
	want := Rect{MinX: 40, MinY: 40, MaxX: 60, MaxY: 60}
	if got != want {
		t.Errorf("Extents() = %+v, want %+v", got, want)
	}
}

func TestDrawValidationFailsFast(t *testing.T) {
	cv := newTestCanvas(t)
	tests := []struct {
		name string
		draw func() error
	}{
		{"negative radius", func() error { return cv.DrawCircle(0, 0, -1, Style{}) }},
		{"nan coordinate", func() error { return cv.DrawLine(math.NaN(), 0, 1, 1, Style{}) }},
		{"opacity above one", func() error { return cv.DrawRect(0, 0, 1, 1, Style{Opacity: Opacity(1.5)}) }},
		{"negative fill opacity", func() error { return cv.DrawEllipse(0, 0, 1, 1, Style{FillOpacity: Opacity(-0.1)}) }},
		{"bad paint", func() error { return cv.DrawRect(0, 0, 1, 1, Style{Fill: "#12"}) }},
		{"short polygon", func() error { return cv.DrawPolygon([]Point{{0, 0}}, Style{}) }},
		{"negative stroke", func() error { return cv.DrawLine(0, 0, 1, 1, Style{Stroke: "#000", StrokeWidth: -2}) }},
		{"text opacity", func() error {
			_, err := cv.DrawText(0, 0, "x", TextStyle{Opacity: Opacity(2)})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draw()
			if !errors.Is(err, ErrInvalidParam) {
				t.Fatalf("err = %v, want ErrInvalidParam", err)
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Op == "" {
				t.Errorf("err = %v, want *ParamError with Op", err)
			}
		})
	}
	if _, ok := cv.Extents(); ok {
		t.Error("rejected draw calls must not touch the extents")
	}
}

func TestDrawPathEmpty(t *testing.T) {
	cv := newTestCanvas(t)
	if err := cv.DrawPath(NewPathBuilder(), Style{}); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("DrawPath(empty) = %v, want ErrEmptyPath", err)
	}
}

func TestFinalizeViewBox(t *testing.T) {
	cv := newTestCanvas(t)
	if err := cv.DrawRect(0.5, 0.5, 9.7, 3.2, Style{Fill: "#000"}); err != nil {
		t.Fatal(err)
	}
	doc, err := cv.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}
	if doc.MinX != 0 || doc.MinY != 0 {
		t.Errorf("origin = (%d, %d), want (0, 0)", doc.MinX, doc.MinY)
	}
	if doc.Width != 11 || doc.Height != 4 {
		t.Errorf("size = %dx%d, want 11x4", doc.Width, doc.Height)
	}

	doc, _ = cv.Finalize(10)
	if doc.MinX != -10 || doc.MinY != -10 || doc.Width != 31 || doc.Height != 24 {
		t.Errorf("padded viewBox = %+v", doc.ViewBox())
	}
}

func TestFinalizeEmptyCanvasUsesNominalSize(t *testing.T) {
	cv := newTestCanvas(t)
	doc, err := cv.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Width != 200 || doc.Height != 100 {
		t.Errorf("size = %dx%d, want 200x100", doc.Width, doc.Height)
	}
}

func TestExtentContainment(t *testing.T) {
	cv := newTestCanvas(t)
	style := Style{Stroke: "#333", StrokeWidth: 3, LineCap: CapSquare}
	var boxes []Rect
	add := func(err error, r Rect) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		boxes = append(boxes, r)
	}
	add(cv.DrawLine(-20.3, 5, 40, 77.7, style), lineBounds(Pt(-20.3, 5), Pt(40, 77.7), 1.5, CapSquare))
	add(cv.DrawCircle(150, -12.25, 8, style), Rect{MinX: 140.5, MinY: -21.75, MaxX: 159.5, MaxY: -2.75})
	pb := NewPathBuilder().MoveTo(0, 0).BezierCurveTo(30, -50, 70, 150, 100, 0)
	add(cv.DrawPath(pb, style), Rect{MinX: -1.5, MinY: -51.5, MaxX: 101.5, MaxY: 151.5})
	r, err := cv.DrawText(210, 40, "label", TextStyle{Rotate: 30})
	add(err, r)

	doc, err := cv.Finalize(2)
	if err != nil {
		t.Fatal(err)
	}
	vb := doc.ViewBox()
	for i, b := range boxes {
		if !vb.ContainsRect(b) {
			t.Errorf("primitive %d box %+v escapes viewBox %+v", i, b, vb)
		}
	}
}

func TestTextBounds(t *testing.T) {
	got := TextBounds(100, 50, "AB", TextStyle{FontSize: 10, Anchor: AnchorMiddle})
	want := Rect{MinX: 93.2, MinY: 42, MaxX: 106.8, MaxY: 52}
	if !rectNear(got, want, 1e-9) {
		t.Errorf("TextBounds() = %+v, want %+v", got, want)
	}

	got = TextBounds(100, 50, "AB", TextStyle{FontSize: 10, Anchor: AnchorMiddle, Rotate: 90})
	want = Rect{MinX: 98, MinY: 43.2, MaxX: 108, MaxY: 56.8}
	if !rectNear(got, want, 1e-9) {
		t.Errorf("rotated TextBounds() = %+v, want %+v", got, want)
	}
}

func TestDrawTextMarkup(t *testing.T) {
	cv := newTestCanvas(t)
	if _, err := cv.DrawText(10, 20, "a<b", TextStyle{Anchor: AnchorMiddle, Halo: "#fff", HaloWidth: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := cv.DrawText(10, 60, "hello world", TextStyle{FontSize: 10, MaxWidth: 30}); err != nil {
		t.Fatal(err)
	}
	doc, _ := cv.Finalize(0)
	for _, want := range []string{
		"a&lt;b",
		`text-anchor="middle"`,
		`paint-order="stroke"`,
		`<tspan x="10">hello</tspan>`,
		`<tspan x="10" dy="12">world</tspan>`,
	} {
		if !strings.Contains(doc.Body, want) {
			t.Errorf("body missing %q:\n%s", want, doc.Body)
		}
	}
}

func TestDrawInClippedRegion(t *testing.T) {
	cv := newTestCanvas(t)
	if err := cv.DrawCircle(0, 0, 5, Style{Fill: "#000"}); err != nil {
		t.Fatal(err)
	}
	err := cv.DrawInClippedRegion(ClipRect{X: 0, Y: 0, W: 10, H: 10}, func(c *Canvas) error {
		return c.DrawRect(-1000, -1000, 2000, 2000, Style{Fill: "#eee"})
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := cv.Extents()
	want := Rect{MinX: -5, MinY: -5, MaxX: 10, MaxY: 10}
	if got != want {
		t.Errorf("Extents() = %+v, want %+v (clipped content must not inflate)", got, want)
	}

	doc, _ := cv.Finalize(0)
	if !strings.Contains(doc.Defs, `<clipPath id="clip1">`) {
		t.Errorf("defs missing clip path:\n%s", doc.Defs)
	}
	if !strings.Contains(doc.Body, `<g clip-path="url(#clip1)">`) {
		t.Errorf("body missing clip group:\n%s", doc.Body)
	}
	if strings.Index(doc.Body, "<circle") > strings.Index(doc.Body, "<g clip-path") {
		t.Error("clip group should follow earlier primitives in draw order")
	}
}

func TestDrawInClippedRegionErrorRollsBack(t *testing.T) {
	cv := newTestCanvas(t)
	boom := errors.New("boom")
	err := cv.DrawInClippedRegion(ClipCircle{CX: 0, CY: 0, R: 10}, func(c *Canvas) error {
		if err := c.DrawLine(0, 0, 500, 500, Style{Stroke: "#000"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, ok := cv.Extents(); ok {
		t.Error("extents should be restored after a failed clipped region")
	}
	doc, _ := cv.Finalize(0)
	if strings.Contains(doc.Body, "<line") || strings.Contains(doc.Defs, "clipPath") {
		t.Errorf("failed region left markup behind:\n%s%s", doc.Defs, doc.Body)
	}
}

func TestNestedClippedRegionsGetDistinctIDs(t *testing.T) {
	cv := newTestCanvas(t)
	err := cv.DrawInClippedRegion(ClipRect{W: 50, H: 50}, func(c *Canvas) error {
		return c.DrawInClippedRegion(ClipPolygon{{0, 0}, {20, 0}, {0, 20}}, func(c *Canvas) error {
			return c.DrawRect(0, 0, 100, 100, Style{Fill: "#000"})
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := cv.Finalize(0)
	if !strings.Contains(doc.Defs, `id="clip1"`) || !strings.Contains(doc.Defs, `id="clip2"`) {
		t.Errorf("defs = %s, want clip1 and clip2", doc.Defs)
	}
	got, _ := cv.Extents()
	want := Rect{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20}
	if got != want {
		t.Errorf("Extents() = %+v, want %+v", got, want)
	}
}

func TestDefinitions(t *testing.T) {
	cv := newTestCanvas(t)
	if err := cv.AddHatchPattern("hatch", Hatch{Angle: 45}); err != nil {
		t.Fatal(err)
	}
	if err := cv.AddHatchPattern("hatch", Hatch{}); !errors.Is(err, ErrDuplicateDef) {
		t.Errorf("duplicate id err = %v, want ErrDuplicateDef", err)
	}
	err := cv.AddLinearGradient("fade", LinearGradient{X2: 1, Stops: []GradientStop{
		{Offset: 0, Color: White},
		{Offset: 1, Color: RGBA{R: 0, G: 0, B: 1, A: 0.5}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	err = cv.AddRadialGradient("glow", RadialGradient{CX: 0.5, CY: 0.5, R: 0.5, Stops: []GradientStop{
		{Offset: 0.6, Color: White}, {Offset: 0.2, Color: Black},
	}})
	if !errors.Is(err, ErrInvalidParam) {
		t.Errorf("decreasing stops err = %v, want ErrInvalidParam", err)
	}
	if err := cv.AddArrowMarker("arrow", "#000", 6); err != nil {
		t.Fatal(err)
	}
	if err := cv.AddStyle(".label { font-weight: bold; }"); err != nil {
		t.Fatal(err)
	}

	doc, _ := cv.Finalize(0)
	for _, want := range []string{
		`<pattern id="hatch" patternUnits="userSpaceOnUse" width="6" height="6" patternTransform="rotate(45)">`,
		`<linearGradient id="fade"`,
		`stop-opacity="0.5"`,
		`<marker id="arrow"`,
		"font-weight",
	} {
		if !strings.Contains(doc.Defs, want) {
			t.Errorf("defs missing %q:\n%s", want, doc.Defs)
		}
	}
	if !cv.HasDef("arrow") || cv.HasDef("glow") {
		t.Error("HasDef should reflect registered definitions only")
	}
}

func TestDrawImageEmbedsData(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatal(err)
	}
	cv := newTestCanvas(t)
	if err := cv.DrawImage(5, 5, 0, 0, ImageSource{Data: buf.Bytes()}, ImageStyle{}); err != nil {
		t.Fatal(err)
	}
	doc, _ := cv.Finalize(0)
	if !strings.Contains(doc.Body, `width="3" height="2" href="data:image/png;base64,`) {
		t.Errorf("body = %s", doc.Body)
	}

	err := cv.DrawImage(0, 0, 1, 1, ImageSource{Data: []byte("not an image")}, ImageStyle{})
	if !errors.Is(err, ErrInvalidParam) {
		t.Errorf("garbage data err = %v, want ErrInvalidParam", err)
	}
	err = cv.DrawImage(0, 0, 1, 1, ImageSource{}, ImageStyle{})
	if !errors.Is(err, ErrInvalidParam) {
		t.Errorf("empty source err = %v, want ErrInvalidParam", err)
	}
}

func TestDrawRichTextMarkdown(t *testing.T) {
	cv := newTestCanvas(t)
	r, err := cv.DrawRichText(0, 0, 120, "**bold** text", RichTextStyle{})
	if err != nil {
		t.Fatal(err)
	}
	if r.Height() <= 0 {
		t.Errorf("estimated height = %v, want > 0", r.Height())
	}
	doc, _ := cv.Finalize(0)
	if !strings.Contains(doc.Body, "<strong>bold</strong>") || !strings.Contains(doc.Body, "<foreignObject") {
		t.Errorf("body = %s", doc.Body)
	}
}

func TestDrawLegend(t *testing.T) {
	cv := newTestCanvas(t)
	box, err := cv.DrawLegend(10, 10, []LegendEntry{
		{Label: "shaded", Fill: "#9cf"},
		{Label: "hatched", Fill: URL("hatch")},
	}, LegendStyle{Border: "#000"})
	if err != nil {
		t.Fatal(err)
	}
	ext, _ := cv.Extents()
	if !ext.ContainsRect(box) {
		t.Errorf("extents %+v should contain legend box %+v", ext, box)
	}
	if _, err := cv.DrawLegend(0, 0, nil, LegendStyle{}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("empty legend err = %v, want ErrInvalidParam", err)
	}
}

func TestDocumentString(t *testing.T) {
	cv, err := NewCanvas(100, 100, WithBackground("#ffffff"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cv.DrawLine(0, 0, 10, 10, Style{Stroke: "#000"}); err != nil {
		t.Fatal(err)
	}
	doc, _ := cv.Finalize(5)
	s := doc.String()
	for _, want := range []string{
		`<svg width="22" height="22"`,
		`viewBox="-6 -6 22 22"`,
		`<rect x="-6" y="-6" width="22" height="22" fill="#ffffff"/>`,
		`<line x1="0" y1="0" x2="10" y2="10" stroke="#000"/>`,
		"</svg>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("document missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "<defs>") {
		t.Error("document without definitions should not emit <defs>")
	}
}

func TestFinalizeDeterministic(t *testing.T) {
	render := func() string {
		cv := newTestCanvas(t)
		_ = cv.AddHatchPattern("h", Hatch{})
		_ = cv.DrawPolygon([]Point{{0, 0}, {10.12345, 3}, {4, 9}}, Style{Fill: URL("h")})
		_, _ = cv.DrawText(3, 3, "A", TextStyle{})
		doc, _ := cv.Finalize(4)
		return doc.String()
	}
	if a, b := render(), render(); a != b {
		t.Errorf("renders differ:\n%s\n---\n%s", a, b)
	}
}
