package geodraw

import (
	"html"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	strip "github.com/grokify/html-strip-tags-go"
)

// TextBounds returns the estimated box DrawText would record for text
// anchored at (x, y), including rotation and halo.
func TextBounds(x, y float64, text string, style TextStyle) Rect {
	fs := style.fontSize()
	lines := WrapText(text, fs, style.MaxWidth)
	var w float64
	for _, l := range lines {
		w = max(w, EstimateTextWidth(l, fs))
	}
	h := fs + float64(len(lines)-1)*fs*style.lineHeight()

	left := x
	switch style.Anchor {
	case AnchorMiddle:
		left = x - w/2
	case AnchorEnd:
		left = x - w
	}
	top := y - ascent*fs
	switch style.Baseline {
	case BaselineMiddle:
		top = y - fs/2
	case BaselineHanging:
		top = y
	}

	r := RectXYWH(left, top, w, h).Expand(style.HaloWidth / 2)
	if style.Rotate != 0 {
		r = RotateAbout(style.Rotate, x, y).TransformRect(r)
	}
	return r
}

// DrawText draws text anchored at (x, y). Text wider than
// style.MaxWidth is wrapped into tspan lines. It returns the box recorded
// in the extents.
func (cv *Canvas) DrawText(x, y float64, text string, style TextStyle) (Rect, error) {
	c := checker{op: "DrawText"}
	c.point("anchor", Pt(x, y))
	c.nonNegative("fontSize", style.FontSize)
	c.nonNegative("maxWidth", style.MaxWidth)
	c.nonNegative("lineHeight", style.LineHeight)
	c.nonNegative("haloWidth", style.HaloWidth)
	c.finite("rotate", style.Rotate)
	c.paint("fill", style.Fill)
	c.paint("halo", style.Halo)
	if style.Opacity != nil {
		c.unit("opacity", *style.Opacity)
	}
	if c.err != nil {
		return Rect{}, c.err
	}

	fs := style.fontSize()
	e := newElement("text").setNum("x", x).setNum("y", y)
	e.setNum("font-size", fs)
	family := style.FontFamily
	if family == "" {
		family = cv.opts.fontFamily
	}
	e.set("font-family", family)
	if style.FontWeight != "" {
		e.set("font-weight", style.FontWeight)
	}
	if style.FontStyle != "" {
		e.set("font-style", style.FontStyle)
	}
	if style.Anchor != AnchorStart {
		e.set("text-anchor", style.Anchor.String())
	}
	if style.Baseline != BaselineAlphabetic {
		e.set("dominant-baseline", style.Baseline.String())
	}
	fill := style.Fill
	if fill == "" {
		fill = Paint(Black.Hex())
	}
	e.set("fill", string(fill))
	if style.Halo.visible() && style.HaloWidth > 0 {
		e.set("stroke", string(style.Halo)).
			setNum("stroke-width", style.HaloWidth).
			set("stroke-linejoin", "round").
			set("paint-order", "stroke")
	}
	if style.Opacity != nil {
		e.setNum("opacity", *style.Opacity)
	}
	if style.Rotate != 0 {
		e.set("transform", "rotate("+ff(style.Rotate)+" "+ff(x)+" "+ff(y)+")")
	}
	if style.Class != "" {
		e.set("class", style.Class)
	}

	lines := WrapText(text, fs, style.MaxWidth)
	if len(lines) == 1 {
		e.text = lines[0]
	} else {
		for i, l := range lines {
			span := newElement("tspan").setNum("x", x)
			if i > 0 {
				span.setNum("dy", fs*style.lineHeight())
			}
			span.text = l
			e.append(span)
		}
	}

	bounds := TextBounds(x, y, text, style)
	cv.push(e, bounds)
	return bounds, nil
}

// RichFormat selects how DrawRichText interprets its content.
type RichFormat uint8

const (
	// FormatMarkdown renders CommonMark-style markdown to XHTML.
	FormatMarkdown RichFormat = iota
	// FormatHTML embeds the content as XHTML unchanged.
	FormatHTML
)

// RichTextStyle controls DrawRichText.
type RichTextStyle struct {
	Format     RichFormat
	FontSize   float64 // DefaultFontSize when zero
	FontFamily string
	Color      Paint
	Height     float64 // estimated from wrapped text when zero
	LineHeight float64
}

func renderMarkdown(src string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.UseXHTML})
	return string(markdown.ToHTML([]byte(src), p, r))
}

// DrawRichText embeds a block of rich text in a foreignObject of the
// given width. Layout inside the block is left to the SVG viewer; the
// extents use a height estimated from the tag-stripped text wrapped at
// width.
func (cv *Canvas) DrawRichText(x, y, width float64, content string, style RichTextStyle) (Rect, error) {
	c := checker{op: "DrawRichText"}
	c.point("origin", Pt(x, y))
	c.positive("width", width)
	c.nonNegative("height", style.Height)
	c.nonNegative("fontSize", style.FontSize)
	c.nonNegative("lineHeight", style.LineHeight)
	c.paint("color", style.Color)
	if c.err != nil {
		return Rect{}, c.err
	}

	markup := content
	if style.Format == FormatMarkdown {
		markup = renderMarkdown(content)
	}

	fs := style.FontSize
	if fs == 0 {
		fs = DefaultFontSize
	}
	lh := style.LineHeight
	if lh == 0 {
		lh = DefaultLineHeight
	}
	h := style.Height
	if h == 0 {
		plain := html.UnescapeString(strip.StripTags(markup))
		lines := WrapText(plain, fs, width)
		h = float64(len(lines)) * fs * lh
	}

	family := style.FontFamily
	if family == "" {
		family = cv.opts.fontFamily
	}
	css := "font-size:" + ff(fs) + "px;font-family:" + family + ";line-height:" + ff(lh)
	if style.Color != "" {
		css += ";color:" + string(style.Color)
	}
	div := newElement("div").
		set("xmlns", "http://www.w3.org/1999/xhtml").
		set("style", css).
		append(rawNode(markup))
	e := newElement("foreignObject").
		setNum("x", x).setNum("y", y).
		setNum("width", width).setNum("height", h).
		append(div)

	bounds := RectXYWH(x, y, width, h)
	cv.push(e, bounds)
	return bounds, nil
}
