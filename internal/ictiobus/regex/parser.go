package regex

import (
	"github.com/dekarrin/sturgeon/internal/ictiobus/icterrors"
	"golang.org/x/text/unicode/norm"
)

// terminator is appended (wrapped in a group) around every parsed pattern
// so there is always exactly one leaf marking an accepting position.
const terminator = '#'

// Parse parses pattern into a syntax tree and assigns leaf position ids.
// The pattern is wrapped as "(pattern)#" before parsing, per §4.2, so the
// returned tree always has a unique, highest-numbered leaf for '#'.
//
// Supported syntax: literals, "(...)" grouping (matched by balanced-paren
// tracking, not last-occurrence), "[...]" character classes with '-'
// ranges, postfix '*' '?' '+', and infix '|'. Fails with MalformedRegex on
// an unmatched '(' or '[', an incomplete range, or a dangling quantifier.
func Parse(pattern string) (*Node, error) {
	pattern = norm.NFC.String(pattern)
	wrapped := []rune("(" + pattern + ")" + string(terminator))

	p := &parser{runes: wrapped}
	root, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.runes) {
		return nil, icterrors.NewMalformedRegex("unexpected %q at position %d", p.runes[p.pos], p.pos)
	}

	AssignIDs(root)
	return root, nil
}

type parser struct {
	runes []rune
	pos   int
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.runes)
}

func (p *parser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.runes[p.pos]
}

// parseAlt handles the lowest-precedence operator, infix '|'.
func (p *parser) parseAlt() (*Node, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	for p.peek() == '|' {
		p.pos++
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = newUnion(left, right)
	}

	return left, nil
}

// parseConcat handles left-associative juxtaposition of quantified atoms.
func (p *parser) parseConcat() (*Node, error) {
	var left *Node

	for !p.atEnd() && p.peek() != '|' && p.peek() != ')' {
		atom, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		if left == nil {
			left = atom
		} else {
			left = newConcat(left, atom)
		}
	}

	if left == nil {
		left = newEpsilon()
	}

	return left, nil
}

// parseQuantified handles at most one postfix '*', '?', or '+' on an atom.
func (p *parser) parseQuantified() (*Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	switch p.peek() {
	case '*':
		p.pos++
		atom = newStar(atom)
	case '?':
		p.pos++
		atom = newUnion(atom, newEpsilon())
	case '+':
		p.pos++
		atom = newConcat(atom, newStar(deepCopy(atom)))
	}

	return atom, nil
}

func (p *parser) parseAtom() (*Node, error) {
	if p.atEnd() {
		return nil, icterrors.NewMalformedRegex("unexpected end of pattern")
	}

	switch c := p.runes[p.pos]; c {
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case ')', ']', '|', '*', '?', '+':
		return nil, icterrors.NewMalformedRegex("unexpected %q at position %d", c, p.pos)
	default:
		p.pos++
		return newLeaf(c), nil
	}
}

// parseGroup parses a "(...)" group, locating the matching ')' by
// balanced-paren depth tracking rather than a last-occurrence search, so
// nested groups parse correctly.
func (p *parser) parseGroup() (*Node, error) {
	openAt := p.pos
	closeAt, err := findMatchingParen(p.runes, openAt)
	if err != nil {
		return nil, err
	}

	inner := &parser{runes: p.runes[openAt+1 : closeAt]}
	node, err := inner.parseAlt()
	if err != nil {
		return nil, err
	}
	if inner.pos != len(inner.runes) {
		return nil, icterrors.NewMalformedRegex("unexpected %q inside group starting at position %d", inner.runes[inner.pos], openAt)
	}

	p.pos = closeAt + 1
	return node, nil
}

func findMatchingParen(runes []rune, openAt int) (int, error) {
	depth := 0
	for i := openAt; i < len(runes); i++ {
		switch runes[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, icterrors.NewMalformedRegex("unmatched '(' at position %d", openAt)
}

// parseClass parses a "[...]" character class with literal members and
// inclusive code-point ranges "a-b".
func (p *parser) parseClass() (*Node, error) {
	openAt := p.pos
	p.pos++ // consume '['

	var elems []rune

	for {
		if p.atEnd() {
			return nil, icterrors.NewMalformedRegex("unmatched '[' at position %d", openAt)
		}
		if p.runes[p.pos] == ']' {
			p.pos++
			break
		}
		if p.runes[p.pos] == '-' {
			if len(elems) == 0 || p.pos+1 >= len(p.runes) || p.runes[p.pos+1] == ']' {
				return nil, icterrors.NewMalformedRegex("incomplete range in character class at position %d", p.pos)
			}
			a := elems[len(elems)-1]
			b := p.runes[p.pos+1]
			if b < a {
				return nil, icterrors.NewMalformedRegex("invalid range %q-%q in character class at position %d", a, b, p.pos)
			}
			for r := a + 1; r <= b; r++ {
				elems = append(elems, r)
			}
			p.pos += 2
		} else {
			elems = append(elems, p.runes[p.pos])
			p.pos++
		}
	}

	if len(elems) == 0 {
		return nil, icterrors.NewMalformedRegex("empty character class at position %d", openAt)
	}

	node := newLeaf(elems[0])
	for _, r := range elems[1:] {
		node = newUnion(node, newLeaf(r))
	}
	return node, nil
}
