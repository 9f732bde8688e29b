package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/sturgeon/internal/ictiobus/automaton"
	"github.com/dekarrin/sturgeon/internal/ictiobus/grammar"
	"github.com/dekarrin/sturgeon/internal/ictiobus/icterrors"
	"github.com/dekarrin/sturgeon/internal/util"
)

// NewSLRParser returns a driver that uses SLR(1) bottom-up parsing to parse
// languages in g. Fails with AmbiguousGrammarSLR if g is not SLR(1).
func NewSLRParser(g grammar.Grammar) (*SLRDriver, error) {
	table, err := NewSLRTable(g)
	if err != nil {
		return nil, err
	}

	return &SLRDriver{table: table, gram: g.Copy()}, nil
}

// NewSLRTable constructs the SLR(1) ACTION/GOTO table for g. It augments g
// to g', builds the canonical collection of LR(0) item sets of g' (the
// subset-construction DFA over the item NFA), and fills ACTION/GOTO from
// it.
//
// This is an implementation of Algorithm 4.46, "Constructing an
// SLR-parsing table", from the purple dragon book. In the comments, most of
// which is lifted directly from the textbook, GOTO[i, A] refers to the
// value of the table's GOTO column at state i, symbol A, while GOTO(i, A)
// refers to the "precomputed GOTO function for grammar G'".
func NewSLRTable(g grammar.Grammar) (*SLRTable, error) {
	itemNFA, err := automaton.NewLR0ViablePrefixNFA(g)
	if err != nil {
		return nil, err
	}

	// "intuitively, the GOTO function is used to define the transitions in
	// the LR(0) automaton for a grammar" -- so the subset-construction DFA
	// over the item NFA already gives us GOTO.
	lr0Automaton := itemNFA.ToDFA()
	lr0Automaton.NumberStates()

	gPrime, err := g.Augmented()
	if err != nil {
		return nil, err
	}

	table := &SLRTable{
		gPrime:    gPrime,
		gStart:    g.StartSymbol(),
		gTerms:    g.Terminals(),
		gNonTerms: g.NonTerminals(),
		lr0:       lr0Automaton,
		itemCache: map[string]grammar.LR0Item{},
	}

	for _, item := range table.gPrime.LR0Items() {
		table.itemCache[item.String()] = item
	}

	// check ahead for ACTION conflicts so construction fails before any
	// caller can observe a half-built table.
	for _, i := range table.lr0.States().Elements() {
		allTerms := append(append([]string{}, table.gPrime.Terminals()...), "$")
		for _, a := range allTerms {
			if _, err := table.action(i, a); err != nil {
				return nil, err
			}
		}
	}

	return table, nil
}

// SLRTable is the ACTION/GOTO table built by NewSLRTable.
type SLRTable struct {
	gPrime    grammar.Grammar
	gStart    string
	lr0       automaton.DFA[util.SVSet[grammar.LR0Item]]
	itemCache map[string]grammar.LR0Item
	gTerms    []string
	gNonTerms []string
}

// GetDFA returns the LR(0) item-set DFA underlying the table, with each
// state's value flattened to the set of item strings it contains.
func (t *SLRTable) GetDFA() automaton.DFA[util.StringSet] {
	return automaton.TransformDFA(t.lr0, func(old util.SVSet[grammar.LR0Item]) util.StringSet {
		newSet := util.NewStringSet()
		for _, name := range old.Elements() {
			newSet.Add(old.Get(name).String())
		}
		return newSet
	})
}

func (t *SLRTable) String() string {
	stateRefs := map[string]string{}

	stateNames := t.lr0.States().Elements()
	sort.Strings(stateNames)

	for i := range stateNames {
		if stateNames[i] == t.lr0.Start {
			stateNames[0], stateNames[i] = stateNames[i], stateNames[0]
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := make([]string, len(t.gTerms))
	copy(allTerms, t.gTerms)
	allTerms = append(allTerms, "$")

	data := [][]string{}

	headers := []string{"S", "|"}
	for _, term := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", term))
	}
	headers = append(headers, "|")
	for _, nt := range t.gNonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for _, i := range stateNames {
		row := []string{stateRefs[i], "|"}

		for _, term := range allTerms {
			act, _ := t.action(i, term)

			cell := ""
			switch act.Type {
			case LRAccept:
				cell = "acc"
			case LRReduce:
				cell = fmt.Sprintf("r%s -> %s", act.Symbol, act.Production.String())
			case LRShift:
				cell = fmt.Sprintf("s%s", stateRefs[act.State])
			case LRError:
			}

			row = append(row, cell)
		}

		row = append(row, "|")

		for _, nt := range t.gNonTerms {
			cell := ""
			if gotoState, err := t.Goto(i, nt); err == nil {
				cell = stateRefs[gotoState]
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

// Initial returns the start state of the item-set DFA.
func (t *SLRTable) Initial() string {
	return t.lr0.Start
}

// Goto maps a state and a grammar symbol to another state, per step 3 of
// algorithm 4.46: if GOTO(Iᵢ, A) = Iⱼ, then GOTO[i, A] = j.
func (t *SLRTable) Goto(state, symbol string) (string, error) {
	newState := t.lr0.Next(state, symbol)
	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

// Action returns the ACTION table entry for (state, terminal). Callers that
// only need to read an already-built table should use this; action (the
// unexported twin) is also used during construction to detect conflicts.
func (t *SLRTable) Action(state, terminal string) LRAction {
	act, err := t.action(state, terminal)
	if err != nil {
		// the table was built successfully, so no conflict can occur here;
		// this can only mean a programmer error passed a bad state name.
		return LRAction{Type: LRError}
	}
	return act
}

// action computes ACTION[state, terminal] from scratch by scanning the
// item set at state, per step 2 of algorithm 4.46. Returns an error at the
// first conflicting assignment, which NewSLRTable uses to reject
// non-SLR(1) grammars.
func (t *SLRTable) action(i, a string) (LRAction, error) {
	itemSet := t.lr0.GetValue(i)

	var alreadySet bool
	var act LRAction

	for itemStr := range itemSet {
		item := t.itemCache[itemStr]

		A := item.NonTerminal
		alpha := item.Left
		beta := item.Right

		var followA util.ISet[string]
		if A != t.gPrime.StartSymbol() {
			followA = t.gPrime.FOLLOW(A)
		}

		// (a) If [A -> α.aβ] is in Iᵢ and GOTO(Iᵢ, a) = Iⱼ, set
		// ACTION[i, a] to "shift j". a must be a terminal.
		if t.gPrime.IsTerminal(a) && len(beta) > 0 && beta[0] == a {
			if j, err := t.Goto(i, a); err == nil {
				shiftAct := LRAction{Type: LRShift, State: j}
				if alreadySet && !shiftAct.Equal(act) {
					return LRAction{}, fmt.Errorf("grammar is not SLR(1): %w", icterrors.NewAmbiguousGrammarSLR(a, actionKind(act), act.String(), actionKind(shiftAct), shiftAct.String()))
				}
				act = shiftAct
				alreadySet = true
			}
		}

		// (b) If [A -> α.] is in Iᵢ, set ACTION[i, a] to "reduce A -> α"
		// for all a in FOLLOW(A). A may not be S'.
		if len(beta) == 0 && A != t.gPrime.StartSymbol() && followA.Has(a) {
			reduceAct := LRAction{Type: LRReduce, Symbol: A, Production: grammar.Production(alpha)}
			if alreadySet && !reduceAct.Equal(act) {
				return LRAction{}, fmt.Errorf("grammar is not SLR(1): %w", icterrors.NewAmbiguousGrammarSLR(a, actionKind(act), act.String(), actionKind(reduceAct), reduceAct.String()))
			}
			act = reduceAct
			alreadySet = true
		}

		// (c) If [S' -> S.] is in Iᵢ, set ACTION[i, $] to "accept".
		if a == "$" && A == t.gPrime.StartSymbol() && len(alpha) == 1 && alpha[0] == t.gStart && len(beta) == 0 {
			acceptAct := LRAction{Type: LRAccept}
			if alreadySet && !acceptAct.Equal(act) {
				return LRAction{}, fmt.Errorf("grammar is not SLR(1): %w", icterrors.NewAmbiguousGrammarSLR(a, actionKind(act), act.String(), actionKind(acceptAct), acceptAct.String()))
			}
			act = acceptAct
			alreadySet = true
		}
	}

	if !alreadySet {
		act.Type = LRError
	}

	return act, nil
}

func actionKind(act LRAction) string {
	switch act.Type {
	case LRShift:
		return "shift"
	case LRReduce:
		return "reduce"
	case LRAccept:
		return "accept"
	default:
		return "error"
	}
}
