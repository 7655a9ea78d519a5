package geodraw

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageSource is either an external reference or raw encoded bytes that
// are embedded as a data URI.
type ImageSource struct {
	Href string
	Data []byte
}

// ImageStyle controls DrawImage.
type ImageStyle struct {
	Opacity             *float64
	PreserveAspectRatio string // SVG preserveAspectRatio, e.g. "xMidYMid meet"
}

// DrawImage draws an image into the box (x, y, w, h). For embedded data
// a zero w and h take the pixel size of the decoded image.
func (cv *Canvas) DrawImage(x, y, w, h float64, src ImageSource, style ImageStyle) error {
	c := checker{op: "DrawImage"}
	c.point("origin", Pt(x, y))
	c.nonNegative("width", w)
	c.nonNegative("height", h)
	if style.Opacity != nil {
		c.unit("opacity", *style.Opacity)
	}
	if (src.Href == "") == (len(src.Data) == 0) {
		c.fail("source", "", "exactly one of Href or Data must be set")
	}
	if c.err != nil {
		return c.err
	}

	href := src.Href
	if len(src.Data) > 0 {
		if !filetype.IsImage(src.Data) {
			return &ParamError{Op: "DrawImage", Param: "data", Value: len(src.Data), Reason: "is not a recognized image format"}
		}
		kind, err := filetype.Match(src.Data)
		if err != nil {
			return &ParamError{Op: "DrawImage", Param: "data", Value: len(src.Data), Reason: err.Error()}
		}
		if w == 0 && h == 0 {
			cfg, _, err := image.DecodeConfig(bytes.NewReader(src.Data))
			if err != nil {
				return &ParamError{Op: "DrawImage", Param: "data", Value: kind.MIME.Value, Reason: "size unknown: " + err.Error()}
			}
			w, h = float64(cfg.Width), float64(cfg.Height)
		}
		href = "data:" + kind.MIME.Value + ";base64," + base64.StdEncoding.EncodeToString(src.Data)
	}

	e := newElement("image").
		setNum("x", x).setNum("y", y).
		setNum("width", w).setNum("height", h).
		set("href", href)
	if style.PreserveAspectRatio != "" {
		e.set("preserveAspectRatio", style.PreserveAspectRatio)
	}
	if style.Opacity != nil {
		e.setNum("opacity", *style.Opacity)
	}
	cv.push(e, RectXYWH(x, y, w, h))
	return nil
}
