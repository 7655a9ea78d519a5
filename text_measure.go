package geodraw

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// Text is measured without font metrics: every rune gets a fixed advance
// (in em) from its character class, so output never depends on fonts
// installed on the rendering machine.

const (
	// DefaultFontSize is used when a text style leaves FontSize zero.
	DefaultFontSize = 14.0

	// DefaultLineHeight is the line advance as a multiple of the font size.
	DefaultLineHeight = 1.2

	// ascent is the portion of the font size above the alphabetic baseline.
	ascent = 0.8
)

const (
	advanceNarrow  = 0.3
	advanceSpace   = 0.28
	advanceDefault = 0.55
	advanceDigit   = 0.56
	advanceUpper   = 0.68
	advanceWide    = 0.85
	advanceFull    = 1.0
)

// runeAdvance returns the estimated advance of r in em.
func runeAdvance(r rune) float64 {
	switch runewidth.RuneWidth(r) {
	case 0:
		return 0
	case 2:
		return advanceFull
	}
	switch {
	case r == ' ':
		return advanceSpace
	case strings.ContainsRune("il.,:;'|!`j()[]", r):
		return advanceNarrow
	case strings.ContainsRune("mwMW@%", r):
		return advanceWide
	case unicode.IsDigit(r):
		return advanceDigit
	case unicode.IsUpper(r):
		return advanceUpper
	}
	return advanceDefault
}

// EstimateTextWidth returns the estimated rendered width of a single line.
func EstimateTextWidth(s string, fontSize float64) float64 {
	var em float64
	for _, r := range norm.NFC.String(s) {
		em += runeAdvance(r)
	}
	return em * fontSize
}

// TextSize estimates the box of (possibly multi-line) text. Lines are
// separated by '\n'.
func TextSize(s string, fontSize, lineHeight float64) (w, h float64) {
	if lineHeight <= 0 {
		lineHeight = DefaultLineHeight
	}
	lines := strings.Split(s, "\n")
	for _, l := range lines {
		w = max(w, EstimateTextWidth(l, fontSize))
	}
	h = fontSize + float64(len(lines)-1)*fontSize*lineHeight
	return w, h
}

// breakClass is a simplified UAX #14 line breaking class.
type breakClass uint8

const (
	breakOther breakClass = iota
	breakSpace
	breakOpen
	breakClose
	breakHyphen
	breakIdeographic
)

func classifyRune(r rune) breakClass {
	switch r {
	case ' ', '\t':
		return breakSpace
	case '(', '[', '{', '“', '‘':
		return breakOpen
	case ')', ']', '}', '”', '’':
		return breakClose
	case '-', '‐', '–', '—':
		return breakHyphen
	}
	if runewidth.RuneWidth(r) == 2 && unicode.IsLetter(r) {
		return breakIdeographic
	}
	return breakOther
}

// canBreakBefore reports whether a line may start at runes[i].
func canBreakBefore(runes []rune, i int) bool {
	prev, curr := classifyRune(runes[i-1]), classifyRune(runes[i])
	switch {
	case curr == breakClose || prev == breakOpen:
		return false
	case prev == breakSpace:
		return curr != breakSpace
	case prev == breakHyphen && curr != breakHyphen:
		return true
	case curr == breakIdeographic || prev == breakIdeographic:
		return true
	}
	return false
}

// WrapText greedily breaks s into lines no wider than maxWidth at word
// boundaries, falling back to character boundaries for words that do
// not fit on their own. Explicit newlines always break. maxWidth <= 0
// disables wrapping.
func WrapText(s string, fontSize, maxWidth float64) []string {
	s = norm.NFC.String(s)
	if maxWidth <= 0 {
		return strings.Split(s, "\n")
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, wrapParagraph([]rune(para), fontSize, maxWidth)...)
	}
	return lines
}

func wrapParagraph(runes []rune, fontSize, maxWidth float64) []string {
	if len(runes) == 0 {
		return []string{""}
	}
	var lines []string
	start := 0
	for start < len(runes) {
		end, lastBreak := start, -1
		width := 0.0
		for end < len(runes) {
			if end > start && canBreakBefore(runes, end) {
				lastBreak = end
			}
			adv := runeAdvance(runes[end]) * fontSize
			if width+adv > maxWidth && end > start {
				break
			}
			width += adv
			end++
		}
		if end < len(runes) && lastBreak > start {
			end = lastBreak
		}
		lines = append(lines, strings.TrimRight(string(runes[start:end]), " \t"))
		start = end
		for start < len(runes) && classifyRune(runes[start]) == breakSpace {
			start++
		}
	}
	return lines
}
