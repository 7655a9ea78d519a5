package solver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// sexpr is a parsed S-expression: an atom or a list.
type sexpr struct {
	atom string
	list []sexpr
	leaf bool
}

func (e sexpr) String() string {
	if e.leaf {
		return e.atom
	}
	parts := make([]string, len(e.list))
	for i, c := range e.list {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

var errUnbalanced = errors.New("unbalanced parentheses")

// parseSexprs parses every top-level S-expression in src. String
// literals are kept with their quotes; comments are skipped.
func parseSexprs(src string) ([]sexpr, error) {
	p := sexprParser{src: src}
	var out []sexpr
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return out, nil
		}
		e, err := p.parse()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

type sexprParser struct {
	src string
	pos int
}

func (p *sexprParser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ';':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *sexprParser) parse() (sexpr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return sexpr{}, errUnbalanced
	}
	switch p.src[p.pos] {
	case '(':
		p.pos++
		var list []sexpr
		for {
			p.skipSpace()
			if p.pos >= len(p.src) {
				return sexpr{}, errUnbalanced
			}
			if p.src[p.pos] == ')' {
				p.pos++
				return sexpr{list: list}, nil
			}
			e, err := p.parse()
			if err != nil {
				return sexpr{}, err
			}
			list = append(list, e)
		}
	case ')':
		return sexpr{}, errUnbalanced
	case '"':
		start := p.pos
		p.pos++
		for p.pos < len(p.src) {
			if p.src[p.pos] == '"' {
				if p.pos+1 < len(p.src) && p.src[p.pos+1] == '"' {
					p.pos += 2
					continue
				}
				p.pos++
				return sexpr{atom: p.src[start:p.pos], leaf: true}, nil
			}
			p.pos++
		}
		return sexpr{}, errors.New("unterminated string")
	case '|':
		start := p.pos
		end := strings.IndexByte(p.src[p.pos+1:], '|')
		if end < 0 {
			return sexpr{}, errors.New("unterminated quoted symbol")
		}
		p.pos += end + 2
		return sexpr{atom: p.src[start:p.pos], leaf: true}, nil
	}
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '(' || c == ')' || c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ';' {
			break
		}
		p.pos++
	}
	return sexpr{atom: p.src[start:p.pos], leaf: true}, nil
}

// parseReal evaluates a model value: a decimal (optionally ending in '?'
// for an approximated algebraic number), (- x) or (/ a b). Algebraic
// numbers printed as root-obj are rejected.
func parseReal(e sexpr) (float64, error) {
	if e.leaf {
		s := strings.TrimSuffix(e.atom, "?")
		v, n := strconv.ParseFloat([]byte(s))
		if n == 0 || n != len(s) {
			return 0, fmt.Errorf("not a number")
		}
		return v, nil
	}
	if len(e.list) == 0 || !e.list[0].leaf {
		return 0, fmt.Errorf("unsupported term")
	}
	switch op := e.list[0].atom; op {
	case "-":
		switch len(e.list) {
		case 2:
			v, err := parseReal(e.list[1])
			return -v, err
		case 3:
			a, err := parseReal(e.list[1])
			if err != nil {
				return 0, err
			}
			b, err := parseReal(e.list[2])
			return a - b, err
		}
	case "/":
		if len(e.list) == 3 {
			a, err := parseReal(e.list[1])
			if err != nil {
				return 0, err
			}
			b, err := parseReal(e.list[2])
			if err != nil {
				return 0, err
			}
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a / b, nil
		}
	case "root-obj":
		return 0, fmt.Errorf("is an algebraic number without a decimal approximation")
	}
	return 0, fmt.Errorf("unsupported operator %q", e.list[0].atom)
}

// parseModel reads a get-value response into one value per variable of
// sys.
func parseModel(sys *System, resp sexpr) ([]float64, error) {
	if resp.leaf {
		return nil, &ModelError{Var: "model", Value: resp.atom, Reason: "is not a binding list"}
	}
	index := make(map[string]int, len(sys.Vars))
	for i := range sys.Vars {
		index[smtVarName(i)] = i
	}
	model := make([]float64, len(sys.Vars))
	bound := make([]bool, len(sys.Vars))
	for _, b := range resp.list {
		if b.leaf || len(b.list) != 2 || !b.list[0].leaf {
			return nil, &ModelError{Var: "model", Value: b.String(), Reason: "is not a binding"}
		}
		i, ok := index[b.list[0].atom]
		if !ok {
			continue
		}
		v, err := parseReal(b.list[1])
		if err != nil {
			return nil, &ModelError{Var: sys.Vars[i], Value: b.list[1].String(), Reason: err.Error()}
		}
		model[i] = v
		bound[i] = true
	}
	for i, ok := range bound {
		if !ok {
			return nil, &ModelError{Var: sys.Vars[i], Reason: "has no binding"}
		}
	}
	return model, nil
}
