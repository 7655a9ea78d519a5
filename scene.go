package geodraw

import (
	"math"
	"strconv"
	"strings"
)

// The canvas keeps an ordered list of primitive records (the scene) and
// serializes it once in Finalize. Clipped regions are sub-lists of the
// scene moved into a wrapping group.

type node interface {
	writeXML(sb *strings.Builder, depth int)
}

type attr struct {
	key, val string
}

type element struct {
	name     string
	attrs    []attr
	text     string
	children []node
}

func newElement(name string) *element {
	return &element{name: name}
}

func (e *element) set(key, val string) *element {
	e.attrs = append(e.attrs, attr{key: key, val: val})
	return e
}

func (e *element) setNum(key string, v float64) *element {
	return e.set(key, ff(v))
}

func (e *element) append(children ...node) *element {
	e.children = append(e.children, children...)
	return e
}

func (e *element) writeXML(sb *strings.Builder, depth int) {
	indent(sb, depth)
	sb.WriteByte('<')
	sb.WriteString(e.name)
	for _, a := range e.attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.key)
		sb.WriteString(`="`)
		sb.WriteString(xmlEscaper.Replace(a.val))
		sb.WriteByte('"')
	}
	switch {
	case len(e.children) > 0:
		sb.WriteString(">\n")
		for _, c := range e.children {
			c.writeXML(sb, depth+1)
		}
		indent(sb, depth)
	case e.text != "":
		sb.WriteByte('>')
		sb.WriteString(xmlEscaper.Replace(e.text))
	default:
		sb.WriteString("/>\n")
		return
	}
	sb.WriteString("</")
	sb.WriteString(e.name)
	sb.WriteString(">\n")
}

// rawNode is pre-serialized markup inserted verbatim.
type rawNode string

func (r rawNode) writeXML(sb *strings.Builder, depth int) {
	indent(sb, depth)
	sb.WriteString(strings.TrimRight(string(r), "\n"))
	sb.WriteByte('\n')
}

func indent(sb *strings.Builder, depth int) {
	for range depth {
		sb.WriteString("  ")
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// ff formats a coordinate with at most three fractional digits so that
// repeated renders produce byte-identical output.
func ff(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		return "0" // also folds -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func serialize(nodes []node) string {
	var sb strings.Builder
	for _, n := range nodes {
		n.writeXML(&sb, 0)
	}
	return sb.String()
}
