package geodraw

import (
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// countingWriter tracks bytes written and the first write error; the SVG
// writer itself does not report errors.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

// WriteTo writes the complete SVG document: the root element with
// explicit width, height and viewBox, the defs block, then the body.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	s := svg.New(cw)
	s.Startview(d.Width, d.Height, d.MinX, d.MinY, d.Width, d.Height)
	if d.Defs != "" {
		s.Def()
		_, _ = io.WriteString(s.Writer, d.Defs)
		s.DefEnd()
	}
	_, _ = io.WriteString(s.Writer, d.Body)
	s.End()
	return cw.n, cw.err
}

// String returns the complete SVG document.
func (d *Document) String() string {
	var sb strings.Builder
	_, _ = d.WriteTo(&sb)
	return sb.String()
}
