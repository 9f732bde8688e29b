package grammar

import (
	"fmt"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/sturgeon/internal/ictiobus/icterrors"
	"github.com/dekarrin/sturgeon/internal/util"
)

// llCell is one occupant of an LL1Table cell. AltIndex identifies which
// alternative of the non-terminal's Productions produced it, so that two
// alternatives with textually identical bodies (e.g. "S -> a | a") are still
// recognized as distinct rules competing for the same cell. Fields are
// exported so rezi's reflection can still round-trip the table.
type llCell struct {
	Prod     Production
	AltIndex int
}

// LL1Table maps (non-terminal, terminal-or-$) to the production that should
// be expanded there.
type LL1Table map[string]map[string]llCell

func newLL1Table() LL1Table {
	return LL1Table{}
}

// Get returns the production for (nonTerminal, terminal), and whether a
// production is defined there at all.
func (t LL1Table) Get(nonTerminal, terminal string) (Production, bool) {
	row, ok := t[nonTerminal]
	if !ok {
		return nil, false
	}
	cell, ok := row[terminal]
	return cell.Prod, ok
}

// set assigns (nonTerminal, terminal) to the altIndex'th alternative, p. A
// cell already occupied by a different alternative is a conflict even if its
// production body is textually identical to p, since each alternative is a
// distinct rule. Re-assigning the same alternative to a cell it already
// occupies (altIndex matches) is not a conflict. If a different alternative
// is already assigned there, it returns that alternative's production and
// false.
func (t LL1Table) set(nonTerminal, terminal string, p Production, altIndex int) (Production, bool) {
	row, ok := t[nonTerminal]
	if !ok {
		row = map[string]llCell{}
		t[nonTerminal] = row
	}
	if existing, ok := row[terminal]; ok {
		if existing.AltIndex == altIndex {
			return nil, true
		}
		return existing.Prod, false
	}
	row[terminal] = llCell{Prod: p, AltIndex: altIndex}
	return nil, true
}

// String pretty-prints the table as a grid of non-terminals by terminals.
func (t LL1Table) String() string {
	ntSet := util.NewStringSet()
	termSet := util.NewStringSet()
	for nt, row := range t {
		ntSet.Add(nt)
		for term := range row {
			termSet.Add(term)
		}
	}

	ntList := util.Alphabetized(ntSet.Elements())
	termList := util.Alphabetized(termSet.Elements())

	headers := []string{"NT", "|"}
	for _, term := range termList {
		headers = append(headers, term)
	}
	data := [][]string{headers}

	for _, nt := range ntList {
		row := []string{nt, "|"}
		for _, term := range termList {
			cell := ""
			if p, ok := t.Get(nt, term); ok {
				cell = fmt.Sprintf("%s -> %s", nt, p.String())
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// LLParseTable builds the LL(1) predictive parsing table for g. For every
// rule A -> α, every terminal in FIRST(α)\{ε} is assigned to α; if ε is in
// FIRST(α), every terminal in FOLLOW(A) is assigned to α as well. Assigning
// a cell twice with different productions fails AmbiguousGrammarLL.
func (g *Grammar) LLParseTable() (table LL1Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rl, ok := r.(recursionLimitPanic); ok {
				table = nil
				err = icterrors.NewGrammarLikelyLeftRecursive(rl.msg)
				return
			}
			panic(r)
		}
	}()

	table = newLL1Table()

	for _, rule := range g.rules {
		for altIndex, p := range rule.Productions {
			first := g.first([]string(p), 0)
			for _, t := range first.Elements() {
				if t == "" {
					continue
				}
				if existing, ok := table.set(rule.NonTerminal, t, p, altIndex); !ok {
					return nil, icterrors.NewAmbiguousGrammarLL(rule.NonTerminal, t, fmt.Sprintf("%s -> %s", rule.NonTerminal, existing.String()), fmt.Sprintf("%s -> %s", rule.NonTerminal, p.String()))
				}
			}
			if first.Has("") {
				for _, t := range g.FOLLOW(rule.NonTerminal).Elements() {
					if existing, ok := table.set(rule.NonTerminal, t, p, altIndex); !ok {
						return nil, icterrors.NewAmbiguousGrammarLL(rule.NonTerminal, t, fmt.Sprintf("%s -> %s", rule.NonTerminal, existing.String()), fmt.Sprintf("%s -> %s", rule.NonTerminal, p.String()))
					}
				}
			}
		}
	}

	return table, nil
}

// IsLL1 reports whether g's LL(1) table can be built without conflicts.
func (g *Grammar) IsLL1() bool {
	_, err := g.LLParseTable()
	return err == nil
}
