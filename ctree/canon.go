package ctree

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrSyntax is returned by Parse for malformed canonical strings.
var ErrSyntax = errors.New("syntax error in tree string")

const specials = "(),\\"

// Key returns the canonical string of t. Structurally identical trees have
// identical keys.
func (t *Tree) Key() string {
	if t.Size() == 0 {
		return ""
	}
	var b strings.Builder
	t.encode(&b, 0)
	return b.String()
}

// Encode returns the canonical string of the subtree rooted at n.
func (t *Tree) Encode(n int) string {
	var b strings.Builder
	t.encode(&b, n)
	return b.String()
}

func (t *Tree) encode(b *strings.Builder, n int) {
	nd := &t.nodes[n]
	if nd.op == NoOperator {
		writeLabel(b, nd.label)
		return
	}
	b.WriteString(nd.op.Symbol())
	b.WriteByte('(')
	for i, ch := range nd.children {
		if i > 0 {
			b.WriteByte(',')
		}
		t.encode(b, ch)
	}
	b.WriteByte(')')
}

func writeLabel(b *strings.Builder, label string) {
	for _, r := range label {
		if strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
}

// Parse reads a canonical tree string, as produced by Key, into a tree.
// Labels may contain the characters '(', ')', ',' and '\' if escaped by '\'.
// Parse does not re-order unordered children; use Canonical for that.
func Parse(s string) (*Tree, error) {
	p := &parser{input: s}
	root, err := p.term()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("%w: trailing input at %d in %q", ErrSyntax, p.pos, s)
	}
	t := FromNested(root)
	tracer().Debugf("parsed tree %s", t.Key())
	return t, nil
}

// MustParse is like Parse, but panics on syntax errors.
func MustParse(s string) *Tree {
	t, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return t
}

type parser struct {
	input string
	pos   int
}

// token reads a label or operator symbol up to the next unescaped special character.
func (p *parser) token() string {
	var b strings.Builder
	for p.pos < len(p.input) {
		r, w := utf8.DecodeRuneInString(p.input[p.pos:])
		if r == '\\' && p.pos+w < len(p.input) {
			p.pos += w
			r, w = utf8.DecodeRuneInString(p.input[p.pos:])
		} else if strings.ContainsRune(specials, r) {
			break
		}
		b.WriteRune(r)
		p.pos += w
	}
	return b.String()
}

func (p *parser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *parser) term() (Nested, error) {
	start := p.pos
	tok := p.token()
	if p.peek() != '(' {
		if tok == "" {
			return Nested{}, fmt.Errorf("%w: empty label at %d", ErrSyntax, start)
		}
		return Leaf(tok), nil
	}
	op, ok := OperatorFromSymbol(tok)
	if !ok || p.pos-start != len(tok) { // escaped characters never form an operator
		return Nested{}, fmt.Errorf("%w: unknown operator %q at %d", ErrSyntax, tok, start)
	}
	p.pos++ // '('
	n := Nested{Op: op}
	if p.peek() == ')' {
		p.pos++
		return n, nil
	}
	for {
		ch, err := p.term()
		if err != nil {
			return Nested{}, err
		}
		n.Children = append(n.Children, ch)
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return n, nil
		default:
			return Nested{}, fmt.Errorf("%w: expected ',' or ')' at %d", ErrSyntax, p.pos)
		}
	}
}
