// Package grammar implements the in-memory context-free grammar model used
// by the LL(1) and SLR(1) pipelines: rule storage, FIRST/FOLLOW, the LL(1)
// parse table, and the LR(0) item set used to build the SLR(1) automaton.
package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/sturgeon/internal/ictiobus/icterrors"
	"github.com/dekarrin/sturgeon/internal/util"
	"golang.org/x/crypto/blake2b"
)

// maxFollowDepth bounds the recursion depth of FIRST/FOLLOW. A grammar that
// exceeds it is reported as likely left-recursive rather than overflowing
// the platform stack.
const maxFollowDepth = 500

// recursionLimitPanic is recovered at the builder boundary (LLParseTable,
// the SLR table builder) and turned into an icterrors.GrammarLikelyLeftRecursive.
type recursionLimitPanic struct{ msg string }

// Production is a single rule body: an ordered sequence of symbols. The
// empty production (ε) is represented as Production{""} — see Epsilon.
type Production []string

// Epsilon is the canonical ε production: a body consisting of a single
// empty symbol.
var Epsilon = Production{""}

// HasEpsilon reports whether p is the ε production.
func (p Production) HasEpsilon() bool {
	return len(p) == 1 && p[0] == ""
}

// String joins the symbols of p with spaces, "ϵ" if p is the ε production.
func (p Production) String() string {
	if p.HasEpsilon() {
		return "ϵ"
	}
	return strings.Join([]string(p), " ")
}

// Equal reports whether o is a Production with the same symbols in the
// same order.
func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherSlice, ok := o.([]string)
		if !ok {
			return false
		}
		other = Production(otherSlice)
	}
	return util.EqualSlices([]string(p), []string(other))
}

// Rule groups every production alternative for a single non-terminal head,
// i.e. one "HEAD -> BODY1 | BODY2 | ..." line of BNF.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// String renders the rule in BNF form.
func (r Rule) String() string {
	bodies := make([]string, len(r.Productions))
	for i := range r.Productions {
		bodies[i] = r.Productions[i].String()
	}
	return fmt.Sprintf("%s -> %s", r.NonTerminal, strings.Join(bodies, " | "))
}

// Equal reports whether o is a Rule with the same head and the same
// productions in the same order.
func (r Rule) Equal(o any) bool {
	other, ok := o.(Rule)
	if !ok {
		return false
	}
	if r.NonTerminal != other.NonTerminal {
		return false
	}
	if len(r.Productions) != len(other.Productions) {
		return false
	}
	for i := range r.Productions {
		if !r.Productions[i].Equal(other.Productions[i]) {
			return false
		}
	}
	return true
}

// Grammar is an in-memory context-free grammar: an ordered sequence of
// rules (first-appearance order; the head of the first rule is the start
// symbol), classified terminal/non-terminal symbol sets, and memoized
// FIRST/FOLLOW computations. The LL(1) table is rebuilt on every call to
// LLParseTable.
//
// The zero value is an empty, usable grammar.
type Grammar struct {
	rules        []Rule
	nonTerminals []string
	ntIndex      map[string]int
	ntSet        util.StringSet
	manualTerms  util.StringSet
	terminals    []string
	termSet      util.StringSet
	termsDirty   bool

	firstCache  map[string]util.StringSet
	followCache map[string]util.StringSet
}

func (g *Grammar) ensureInit() {
	if g.ntIndex == nil {
		g.ntIndex = map[string]int{}
		g.ntSet = util.NewStringSet()
		g.manualTerms = util.NewStringSet()
		g.termSet = util.NewStringSet()
		g.firstCache = map[string]util.StringSet{}
		g.followCache = map[string]util.StringSet{}
	}
}

// AddRule adds a production alternative to nonTerminal's rule, creating the
// rule (and registering nonTerminal as a non-terminal, in first-appearance
// order) if this is the first time it has been seen. A nil/empty production
// is stored as Epsilon.
func (g *Grammar) AddRule(nonTerminal string, production ...string) {
	g.ensureInit()

	if !g.ntSet.Has(nonTerminal) {
		g.ntSet.Add(nonTerminal)
		g.nonTerminals = append(g.nonTerminals, nonTerminal)
		g.ntIndex[nonTerminal] = len(g.rules)
		g.rules = append(g.rules, Rule{NonTerminal: nonTerminal})
	}

	prod := Production(production)
	if len(prod) == 0 {
		prod = Epsilon
	}

	idx := g.ntIndex[nonTerminal]
	g.rules[idx].Productions = append(g.rules[idx].Productions, prod)
	g.termsDirty = true
	g.firstCache = map[string]util.StringSet{}
	g.followCache = map[string]util.StringSet{}
}

// AddTerm explicitly registers a symbol as a terminal even if it does not
// (yet) appear in any rule body. Mostly useful when constructing a Grammar
// by hand for tests.
func (g *Grammar) AddTerm(terminal string) {
	g.ensureInit()
	g.manualTerms.Add(terminal)
	g.termsDirty = true
}

func (g *Grammar) recomputeTerminals() {
	g.ensureInit()
	if !g.termsDirty {
		return
	}

	termSet := util.NewStringSet()
	termSet.AddAll(g.manualTerms)

	for _, r := range g.rules {
		for _, p := range r.Productions {
			for _, sym := range p {
				if sym == "" || g.ntSet.Has(sym) {
					continue
				}
				termSet.Add(sym)
			}
		}
	}

	g.termSet = termSet
	g.terminals = util.Alphabetized(termSet.Elements())
	g.termsDirty = false
}

// NonTerminals returns the grammar's non-terminals in first-appearance
// order.
func (g *Grammar) NonTerminals() []string {
	g.ensureInit()
	out := make([]string, len(g.nonTerminals))
	copy(out, g.nonTerminals)
	return out
}

// Terminals returns the grammar's terminals, sorted lexicographically.
func (g *Grammar) Terminals() []string {
	g.recomputeTerminals()
	out := make([]string, len(g.terminals))
	copy(out, g.terminals)
	return out
}

// IsTerminal reports whether s is a terminal symbol (or the empty symbol).
func (g *Grammar) IsTerminal(s string) bool {
	if s == "" {
		return true
	}
	g.recomputeTerminals()
	return g.termSet.Has(s)
}

// IsNonTerminal reports whether s is a non-terminal symbol.
func (g *Grammar) IsNonTerminal(s string) bool {
	g.ensureInit()
	return g.ntSet.Has(s)
}

// StartSymbol returns the head of rule 0.
func (g *Grammar) StartSymbol() string {
	g.ensureInit()
	if len(g.rules) == 0 {
		return ""
	}
	return g.rules[0].NonTerminal
}

// Rule returns the Rule for the given non-terminal, or the zero Rule if it
// has none.
func (g *Grammar) Rule(nonTerminal string) Rule {
	g.ensureInit()
	idx, ok := g.ntIndex[nonTerminal]
	if !ok {
		return Rule{}
	}
	return g.rules[idx]
}

// Rules returns every rule, in first-appearance order.
func (g *Grammar) Rules() []Rule {
	g.ensureInit()
	out := make([]Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Copy returns a deep copy of g.
func (g *Grammar) Copy() Grammar {
	g.ensureInit()
	cp := Grammar{}
	cp.ensureInit()
	for _, r := range g.rules {
		prods := make([]Production, len(r.Productions))
		for i := range r.Productions {
			prods[i] = append(Production{}, r.Productions[i]...)
		}
		cp.rules = append(cp.rules, Rule{NonTerminal: r.NonTerminal, Productions: prods})
		cp.nonTerminals = append(cp.nonTerminals, r.NonTerminal)
		cp.ntIndex[r.NonTerminal] = len(cp.rules) - 1
		cp.ntSet.Add(r.NonTerminal)
	}
	cp.manualTerms.AddAll(g.manualTerms)
	cp.termsDirty = true
	return cp
}

// String renders every rule, one per line, in BNF form.
func (g *Grammar) String() string {
	g.ensureInit()
	lines := make([]string, len(g.rules))
	for i, r := range g.rules {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// Checksum returns a hex-encoded blake2b-256 hash of the grammar's
// canonical text form, suitable as a cache key for compiled artifacts.
func (g *Grammar) Checksum() string {
	sum := blake2b.Sum256([]byte(g.String()))
	return fmt.Sprintf("%x", sum)
}

// Validate checks the well-formedness invariants of §3/§8.1: terminals and
// non-terminals are disjoint, the start symbol is the head of rule 0 (always
// true by construction), and every symbol in every body is terminal,
// non-terminal, or empty (always true by construction, since any
// unrecognized symbol is classified as a terminal). The one invariant that
// can actually be violated by a caller is disjointness, reachable if a
// symbol is both AddTerm'd and used as a rule head. A grammar with no rules
// is also rejected.
func (g *Grammar) Validate() error {
	g.recomputeTerminals()
	for _, nt := range g.nonTerminals {
		if g.manualTerms.Has(nt) {
			return icterrors.NewMalformedGrammar("symbol %q is used as both a terminal and a non-terminal", nt)
		}
	}
	if len(g.rules) == 0 {
		return icterrors.NewMalformedGrammar("grammar has no rules")
	}
	return nil
}

func (g *Grammar) guardDepth(depth int, what string) {
	if depth > maxFollowDepth {
		panic(recursionLimitPanic{fmt.Sprintf("recursion exceeded %d levels while computing %s; grammar is likely left-recursive", maxFollowDepth, what)})
	}
}

// FIRST computes FIRST(symbols): the set of terminals (plus possibly ε)
// that can begin some string derivable from the given symbol sequence.
func (g *Grammar) FIRST(symbols ...string) util.StringSet {
	g.recomputeTerminals()
	key := strings.Join(symbols, "\x00")
	if cached, ok := g.firstCache[key]; ok {
		return cached
	}
	result := g.first(symbols, 0)
	g.firstCache[key] = result
	return result
}

func (g *Grammar) first(symbols []string, depth int) util.StringSet {
	g.guardDepth(depth, "FIRST")

	if len(symbols) == 0 || (len(symbols) == 1 && symbols[0] == "") {
		return util.StringSetOf([]string{""})
	}

	if len(symbols) == 1 {
		sym := symbols[0]
		if g.IsTerminal(sym) {
			return util.StringSetOf([]string{sym})
		}
		result := util.NewStringSet()
		for _, p := range g.Rule(sym).Productions {
			sub := g.first([]string(p), depth+1)
			result.AddAll(sub)
		}
		return result
	}

	result := util.NewStringSet()
	hasEmpty := true
	for _, sym := range symbols {
		f := g.first([]string{sym}, depth+1)
		for _, x := range f.Elements() {
			if x != "" {
				result.Add(x)
			}
		}
		if !f.Has("") {
			hasEmpty = false
			break
		}
	}
	if hasEmpty {
		result.Add("")
	}
	return result
}

// FOLLOW computes FOLLOW(nonTerminal): the set of terminals (plus possibly
// $) that may immediately follow nonTerminal in some sentential form.
func (g *Grammar) FOLLOW(nonTerminal string) util.StringSet {
	g.recomputeTerminals()
	if cached, ok := g.followCache[nonTerminal]; ok {
		return cached
	}
	result := g.follow(nonTerminal, util.NewStringSet(), 0)
	g.followCache[nonTerminal] = result
	return result
}

func (g *Grammar) follow(nt string, visited util.StringSet, depth int) util.StringSet {
	g.guardDepth(depth, "FOLLOW("+nt+")")

	result := util.NewStringSet()
	if nt == g.StartSymbol() {
		result.Add("$")
	}

	for _, rule := range g.rules {
		for _, body := range rule.Productions {
			for i, sym := range body {
				if sym != nt {
					continue
				}

				var hasEmpty bool
				if i+1 < len(body) {
					rest := g.first(body[i+1:], depth+1)
					for _, x := range rest.Elements() {
						if x != "" {
							result.Add(x)
						}
					}
					hasEmpty = rest.Has("")
				} else {
					hasEmpty = true
				}

				if hasEmpty && rule.NonTerminal != nt && !visited.Has(nt) {
					nextVisited := util.NewStringSet()
					nextVisited.AddAll(visited)
					nextVisited.Add(nt)
					result.AddAll(g.follow(rule.NonTerminal, nextVisited, depth+1))
				}
			}
		}
	}

	return result
}

// Augmented returns a copy of g with a fresh start symbol S' and a new rule
// S' -> start inserted as rule 0. S' is the first name in
// {start+"'", "S", "START", "START'"} not already used by g; if none is
// free, it fails with CannotExtendGrammar.
func (g *Grammar) Augmented() (Grammar, error) {
	g.recomputeTerminals()
	start := g.StartSymbol()

	candidates := []string{start + "'", "S", "START", "START'"}
	var newStart string
	for _, c := range candidates {
		if !g.ntSet.Has(c) && !g.termSet.Has(c) {
			newStart = c
			break
		}
	}
	if newStart == "" {
		return Grammar{}, icterrors.NewCannotExtendGrammar("no free symbol name available to extend grammar with start symbol %q", start)
	}

	augmented := Grammar{}
	augmented.ensureInit()
	augmented.AddRule(newStart, start)
	for _, r := range g.rules {
		for _, p := range r.Productions {
			augmented.AddRule(r.NonTerminal, []string(p)...)
		}
	}
	augmented.manualTerms.AddAll(g.manualTerms)
	augmented.termsDirty = true

	return augmented, nil
}
