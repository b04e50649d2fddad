package formula

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

// Evaluator evaluates derived PEG formulas against a period's aggregate
// series. Definitions are parsed and validated once, before any period data
// is touched; per-period evaluation can then only produce numbers or missing
// markers, never errors.
//
// The grammar is deliberately tiny: numeric literals, PEG identifiers,
// + - * / and parentheses. Formulas are never handed to a general-purpose
// evaluator.
type Evaluator struct {
	defs []compiledDef
}

type compiledDef struct {
	name string
	root node
}

// NewEvaluator parses and validates defs. knownPegs is the catalog of base
// PEG names; identifiers that are neither a known base PEG nor an earlier
// derived name fail with FormulaError. An empty catalog skips the reference
// check and leaves unknown names to propagate as missing. Later formulas may
// reference earlier derived names.
func NewEvaluator(defs []domain.DerivedPeg, knownPegs []string) (*Evaluator, error) {
	known := make(map[string]bool, len(knownPegs))
	for _, p := range knownPegs {
		known[p] = true
	}

	e := &Evaluator{defs: make([]compiledDef, 0, len(defs))}
	for _, def := range defs {
		root, refs, err := parse(def.Formula)
		if err != nil {
			return nil, &domain.FormulaError{Name: def.Name, Formula: def.Formula, Reason: err.Error()}
		}
		if len(known) > 0 {
			for _, ref := range refs {
				if !known[ref] {
					return nil, &domain.FormulaError{
						Name:    def.Name,
						Formula: def.Formula,
						Reason:  fmt.Sprintf("undefined peg name %q", ref),
					}
				}
			}
		}
		e.defs = append(e.defs, compiledDef{name: def.Name, root: root})
		known[def.Name] = true
	}
	return e, nil
}

// Extend returns a copy of series with every derived PEG appended. A derived
// value whose formula hit a missing input or a division by zero comes back as
// a failed (missing) value carrying the reason; the base entries are never
// modified.
func (e *Evaluator) Extend(series domain.PegSeries) domain.PegSeries {
	out := make(domain.PegSeries, len(series)+len(e.defs))
	for name, v := range series {
		out[name] = v
	}
	for _, def := range e.defs {
		v, fail := def.root.eval(out)
		if fail != nil {
			out[def.name] = domain.FailedValue(fail.reason)
			continue
		}
		out[def.name] = domain.NumberValue(v)
	}
	return out
}

// Names lists the derived PEG names in declaration order.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.defs))
	for _, def := range e.defs {
		names = append(names, def.name)
	}
	return names
}

// evalFailure is a value-level outcome, not an error: it becomes a failed
// missing value on the derived PEG.
type evalFailure struct {
	reason string
}

type node interface {
	eval(env domain.PegSeries) (float64, *evalFailure)
}

type literal struct {
	v float64
}

func (l literal) eval(domain.PegSeries) (float64, *evalFailure) {
	return l.v, nil
}

type ref struct {
	name string
}

func (r ref) eval(env domain.PegSeries) (float64, *evalFailure) {
	v, ok := env[r.name]
	if !ok || v.Missing {
		return 0, &evalFailure{reason: fmt.Sprintf("missing input: %s", r.name)}
	}
	return v.Value, nil
}

type binary struct {
	op    byte
	left  node
	right node
}

func (b binary) eval(env domain.PegSeries) (float64, *evalFailure) {
	l, fail := b.left.eval(env)
	if fail != nil {
		return 0, fail
	}
	r, fail := b.right.eval(env)
	if fail != nil {
		return 0, fail
	}
	switch b.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		if r == 0 {
			return 0, &evalFailure{reason: "division by zero"}
		}
		return l / r, nil
	}
}

type negate struct {
	inner node
}

func (n negate) eval(env domain.PegSeries) (float64, *evalFailure) {
	v, fail := n.inner.eval(env)
	if fail != nil {
		return 0, fail
	}
	return -v, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
		case unicode.IsDigit(c) || c == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, fmt.Errorf("invalid number %q at position %d", text, start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, pos: start})
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			return nil, fmt.Errorf("illegal character %q at position %d", string(c), i)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty formula")
	}
	return tokens, nil
}

// parser is a plain recursive-descent parser:
//
//	expr   := term (('+'|'-') term)*
//	term   := factor (('*'|'/') factor)*
//	factor := number | ident | '-' factor | '(' expr ')'
type parser struct {
	tokens []token
	pos    int
	refs   []string
}

func parse(expr string) (node, []string, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, nil, err
	}
	if p.pos != len(p.tokens) {
		t := p.tokens[p.pos]
		return nil, nil, fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
	}
	return root, p.refs, nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peekOp("+", "-") {
		op := p.next().text[0]
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peekOp("*", "/") {
		op := p.next().text[0]
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (node, error) {
	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("unexpected end of formula")
	}
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, _ := strconv.ParseFloat(t.text, 64)
		return literal{v: v}, nil
	case tokIdent:
		p.refs = append(p.refs, t.text)
		return ref{name: t.text}, nil
	case tokOp:
		if t.text == "-" {
			inner, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			return negate{inner: inner}, nil
		}
		return nil, fmt.Errorf("unexpected operator %q at position %d", t.text, t.pos)
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != tokRParen {
			return nil, fmt.Errorf("unbalanced parentheses")
		}
		p.pos++
		return inner, nil
	default:
		return nil, fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
	}
}

func (p *parser) peekOp(ops ...string) bool {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != tokOp {
		return false
	}
	for _, op := range ops {
		if p.tokens[p.pos].text == op {
			return true
		}
	}
	return false
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}
