// Package parse implements the predictive (LL(1)) and bottom-up (SLR(1))
// parsing algorithms driven by the tables built in package grammar.
package parse

import (
	"fmt"

	"github.com/dekarrin/sturgeon/internal/ictiobus/grammar"
	"github.com/dekarrin/sturgeon/internal/ictiobus/icterrors"
	"github.com/dekarrin/sturgeon/internal/util"
)

// LL1Parser drives a stack-based predictive parse over an LL(1) table.
type LL1Parser struct {
	table grammar.LL1Table
	g     grammar.Grammar
	trace func(s string)
}

// NewLL1Parser builds a predictive parser for g. Fails with
// GrammarLikelyLeftRecursive or AmbiguousGrammarLL if g is not LL(1).
func NewLL1Parser(g grammar.Grammar) (*LL1Parser, error) {
	table, err := g.LLParseTable()
	if err != nil {
		return nil, err
	}
	return &LL1Parser{table: table, g: g.Copy()}, nil
}

// NewLL1ParserFromTable builds a predictive parser directly from a
// previously-built table, skipping the FIRST/FOLLOW fixpoint and conflict
// checks in g.LLParseTable. Callers are responsible for table having
// actually come from g (or an equivalent grammar); this performs no
// validation of its own.
func NewLL1ParserFromTable(g grammar.Grammar, table grammar.LL1Table) *LL1Parser {
	return &LL1Parser{table: table, g: g.Copy()}
}

// RegisterTraceListener registers a callback invoked with a line of
// human-readable trace for every stack operation and table lookup made
// during Parse.
func (p *LL1Parser) RegisterTraceListener(listener func(s string)) {
	p.trace = listener
}

func (p *LL1Parser) notifyTrace(fmtStr string, args ...interface{}) {
	if p.trace != nil {
		p.trace(fmt.Sprintf(fmtStr, args...))
	}
}

// Parse drives the table over input, a sequence of terminal symbols
// terminated implicitly by "$". It returns the sequence of productions
// applied, in application order (a leftmost derivation), or a SyntaxError
// if input does not belong to the language of g.
func (p *LL1Parser) Parse(input []string) ([]grammar.Rule, error) {
	stack := util.Stack[string]{Of: []string{"$", p.g.StartSymbol()}}
	pos := 0

	peek := func() string {
		if pos >= len(input) {
			return "$"
		}
		return input[pos]
	}

	var derivation []grammar.Rule

	for !stack.Empty() {
		X := stack.Peek()
		next := peek()

		if X == "$" {
			if next != "$" {
				return derivation, icterrors.NewSyntaxError("end of input", next)
			}
			stack.Pop()
			break
		}

		if p.g.IsTerminal(X) {
			if X != next {
				return derivation, icterrors.NewSyntaxError(fmt.Sprintf("%q", X), next)
			}
			p.notifyTrace("match %q", X)
			stack.Pop()
			pos++
			continue
		}

		prod, ok := p.table.Get(X, next)
		if !ok {
			return derivation, icterrors.NewSyntaxError(fmt.Sprintf("symbol valid after %s", X), next)
		}
		p.notifyTrace("%s -> %s", X, prod.String())

		stack.Pop()
		for i := len(prod) - 1; i >= 0; i-- {
			if prod[i] == grammar.Epsilon[0] {
				continue
			}
			stack.Push(prod[i])
		}

		derivation = append(derivation, grammar.Rule{NonTerminal: X, Productions: []grammar.Production{prod}})
	}

	if pos != len(input) {
		return derivation, icterrors.NewSyntaxError("end of input", peek())
	}

	return derivation, nil
}
