package geodraw

// LegendEntry is one row of a legend: a swatch and its label.
type LegendEntry struct {
	Label  string
	Fill   Paint
	Stroke Paint
}

// LegendStyle controls DrawLegend. Zero fields take defaults.
type LegendStyle struct {
	FontSize   float64
	SwatchSize float64
	RowGap     float64
	Padding    float64
	Border     Paint
	Background Paint
}

func (s LegendStyle) withDefaults() LegendStyle {
	if s.FontSize == 0 {
		s.FontSize = 12
	}
	if s.SwatchSize == 0 {
		s.SwatchSize = 12
	}
	if s.RowGap == 0 {
		s.RowGap = 6
	}
	if s.Padding == 0 {
		s.Padding = 8
	}
	return s
}

// DrawLegend draws a boxed list of swatches with labels whose top-left
// corner is (x, y) and returns the legend's box.
func (cv *Canvas) DrawLegend(x, y float64, entries []LegendEntry, style LegendStyle) (Rect, error) {
	c := checker{op: "DrawLegend"}
	c.point("origin", Pt(x, y))
	c.nonNegative("fontSize", style.FontSize)
	c.nonNegative("swatchSize", style.SwatchSize)
	c.nonNegative("rowGap", style.RowGap)
	c.nonNegative("padding", style.Padding)
	c.paint("border", style.Border)
	c.paint("background", style.Background)
	if len(entries) == 0 {
		c.fail("entries", 0, "must not be empty")
	}
	for _, e := range entries {
		c.paint("entry.fill", e.Fill)
		c.paint("entry.stroke", e.Stroke)
	}
	if c.err != nil {
		return Rect{}, c.err
	}
	s := style.withDefaults()

	rowH := max(s.SwatchSize, s.FontSize)
	labelGap := s.SwatchSize / 2
	var labelW float64
	for _, e := range entries {
		labelW = max(labelW, EstimateTextWidth(e.Label, s.FontSize))
	}
	n := float64(len(entries))
	box := RectXYWH(x, y,
		2*s.Padding+s.SwatchSize+labelGap+labelW,
		2*s.Padding+n*rowH+(n-1)*s.RowGap)

	if s.Border.visible() || s.Background.visible() {
		frame := Style{Fill: s.Background, Stroke: s.Border}
		if frame.Fill == "" {
			frame.Fill = PaintNone
		}
		if err := cv.DrawRect(box.MinX, box.MinY, box.Width(), box.Height(), frame); err != nil {
			return Rect{}, err
		}
	}

	rowY := y + s.Padding
	for _, e := range entries {
		swatch := Style{Fill: e.Fill, Stroke: e.Stroke}
		sy := rowY + (rowH-s.SwatchSize)/2
		if err := cv.DrawRect(x+s.Padding, sy, s.SwatchSize, s.SwatchSize, swatch); err != nil {
			return Rect{}, err
		}
		_, err := cv.DrawText(x+s.Padding+s.SwatchSize+labelGap, rowY+rowH/2, e.Label, TextStyle{
			FontSize: s.FontSize,
			Baseline: BaselineMiddle,
		})
		if err != nil {
			return Rect{}, err
		}
		rowY += rowH + s.RowGap
	}

	return box, nil
}
