package geodraw

import (
	"errors"
	"fmt"
)

// Sentinel errors for the canvas.
var (
	// ErrInvalidParam is returned when a draw call receives a value outside
	// its documented range. The canvas never clamps.
	ErrInvalidParam = errors.New("geodraw: invalid parameter")

	// ErrDuplicateDef is returned when a definition id is registered twice.
	ErrDuplicateDef = errors.New("geodraw: duplicate definition id")

	// ErrEmptyPath is returned when drawing a path with no commands.
	ErrEmptyPath = errors.New("geodraw: empty path")
)

// ParamError describes a rejected numeric or textual draw parameter.
type ParamError struct {
	Op     string // draw operation, e.g. "DrawCircle"
	Param  string // parameter name
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("geodraw: %s: %s=%v %s", e.Op, e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParam }

// checker accumulates the first parameter violation of one draw call.
type checker struct {
	op  string
	err error
}

func (c *checker) fail(param string, v any, reason string) {
	if c.err == nil {
		c.err = &ParamError{Op: c.op, Param: param, Value: v, Reason: reason}
	}
}

func (c *checker) finite(param string, v float64) {
	if !isFinite(v) {
		c.fail(param, v, "must be finite")
	}
}

func (c *checker) nonNegative(param string, v float64) {
	c.finite(param, v)
	if v < 0 {
		c.fail(param, v, "must be >= 0")
	}
}

func (c *checker) positive(param string, v float64) {
	c.finite(param, v)
	if v <= 0 {
		c.fail(param, v, "must be > 0")
	}
}

func (c *checker) unit(param string, v float64) {
	c.finite(param, v)
	if v < 0 || v > 1 {
		c.fail(param, v, "must be in [0, 1]")
	}
}

func (c *checker) point(param string, p Point) {
	c.finite(param+".x", p.X)
	c.finite(param+".y", p.Y)
}

func (c *checker) paint(param string, p Paint) {
	if err := p.Validate(); err != nil {
		c.fail(param, string(p), "is not a valid paint")
	}
}

func (c *checker) id(param, id string) {
	if id == "" {
		c.fail(param, id, "must not be empty")
		return
	}
	for _, r := range id {
		if !(r == '-' || r == '_' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			c.fail(param, id, "must contain only letters, digits, '-', '_' or '.'")
			return
		}
	}
}
