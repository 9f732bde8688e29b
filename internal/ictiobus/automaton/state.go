package automaton

import (
	"fmt"
	"sort"
	"strings"
)

// FATransition is a single edge in a finite automaton: on reading input,
// go to next. An empty input denotes an ε-move.
type FATransition struct {
	input string
	next  string
}

// String renders the transition as "=(INPUT)=> NEXT", showing "ε" for an
// empty (epsilon) input.
func (t FATransition) String() string {
	input := t.input
	if input == "" {
		input = "ε"
	}
	return fmt.Sprintf("=(%s)=> %s", input, t.next)
}

// mustParseFATransition is parseFATransition but panics on error. Used by
// test helpers that build automatons from literal transition strings.
func mustParseFATransition(s string) FATransition {
	t, err := parseFATransition(s)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// parseFATransition parses the output of FATransition.String back into a
// FATransition.
func parseFATransition(s string) (FATransition, error) {
	s = strings.TrimSpace(s)
	arrowIdx := strings.Index(s, "=>")
	if arrowIdx < 0 {
		return FATransition{}, fmt.Errorf("malformed transition (missing '=>'): %q", s)
	}

	left := strings.TrimSpace(s[:arrowIdx])
	next := strings.TrimSpace(s[arrowIdx+2:])

	if !strings.HasPrefix(left, "=(") || !strings.HasSuffix(left, ")") {
		return FATransition{}, fmt.Errorf("malformed transition (missing '=(...)'): %q", s)
	}
	input := left[2 : len(left)-1]
	if input == "ε" {
		input = ""
	}

	if next == "" {
		return FATransition{}, fmt.Errorf("malformed transition (missing destination state): %q", s)
	}

	return FATransition{input: input, next: next}, nil
}

// DFAState is a single state of a DFA: its name, the value it carries, its
// deterministic transition function, whether it accepts, and the order in
// which it was added (used to keep output deterministic without requiring
// states to be named in that order).
type DFAState[E any] struct {
	name        string
	value       E
	transitions map[string]FATransition
	accepting   bool
	ordering    uint64
}

// Copy returns a duplicate of this state.
func (s DFAState[E]) Copy() DFAState[E] {
	copied := DFAState[E]{
		name:        s.name,
		value:       s.value,
		accepting:   s.accepting,
		ordering:    s.ordering,
		transitions: make(map[string]FATransition, len(s.transitions)),
	}
	for k := range s.transitions {
		copied.transitions[k] = s.transitions[k]
	}
	return copied
}

// String renders the state on a single line as its name, an acceptance
// marker, and its transitions sorted by input symbol, separated by spaces.
func (s DFAState[E]) String() string {
	var sb strings.Builder

	accept := ""
	if s.accepting {
		accept = "!"
	}

	sb.WriteString(fmt.Sprintf("(%s%s)", s.name, accept))

	symbols := make([]string, 0, len(s.transitions))
	for sym := range s.transitions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		sb.WriteString(" " + s.transitions[sym].String())
	}

	return sb.String()
}

// NFAState is a single state of an NFA: like DFAState, but each input symbol
// may transition to more than one destination state (including, under the
// empty-string symbol, ε-moves).
type NFAState[E any] struct {
	name        string
	value       E
	transitions map[string][]FATransition
	accepting   bool
	ordering    uint64
}

// Copy returns a duplicate of this state.
func (s NFAState[E]) Copy() NFAState[E] {
	copied := NFAState[E]{
		name:        s.name,
		value:       s.value,
		accepting:   s.accepting,
		ordering:    s.ordering,
		transitions: make(map[string][]FATransition, len(s.transitions)),
	}
	for k := range s.transitions {
		dup := make([]FATransition, len(s.transitions[k]))
		copy(dup, s.transitions[k])
		copied.transitions[k] = dup
	}
	return copied
}

// String renders the state on a single line as its name, an acceptance
// marker, and its transitions sorted by input symbol, separated by spaces.
func (s NFAState[E]) String() string {
	var sb strings.Builder

	accept := ""
	if s.accepting {
		accept = "!"
	}

	sb.WriteString(fmt.Sprintf("(%s%s)", s.name, accept))

	symbols := make([]string, 0, len(s.transitions))
	for sym := range s.transitions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		for _, t := range s.transitions[sym] {
			sb.WriteString(" " + t.String())
		}
	}

	return sb.String()
}
