package automaton

import (
	"testing"

	"github.com/dekarrin/sturgeon/internal/ictiobus/grammar"
	"github.com/stretchr/testify/assert"
)

func Test_NewLR0ViablePrefixNFA(t *testing.T) {
	assert := assert.New(t)

	g := grammar.MustParseBNF(`
		S -> C C
		C -> c C | d
	`)

	nfa, err := NewLR0ViablePrefixNFA(g)
	if !assert.NoError(err) {
		return
	}

	// the start item is the kernel item of the augmented grammar's sole
	// production, with the dot before the old start symbol.
	startItem := grammar.LR0Item{NonTerminal: "S'", Right: []string{"S"}}
	assert.Equal(startItem.String(), nfa.Start)

	closure := nfa.EpsilonClosure(nfa.Start)
	// ε-closure of the start item must reach every kernel item of S and C's
	// productions, since S and C both begin a viable prefix from the start.
	assert.True(closure.Has(grammar.LR0Item{NonTerminal: "S", Right: []string{"C", "C"}}.String()))
	assert.True(closure.Has(grammar.LR0Item{NonTerminal: "C", Right: []string{"c", "C"}}.String()))
	assert.True(closure.Has(grammar.LR0Item{NonTerminal: "C", Right: []string{"d"}}.String()))
}

func Test_LR0_ToDFA_NumberStates(t *testing.T) {
	assert := assert.New(t)

	g := grammar.MustParseBNF(`
		S -> C C
		C -> c C | d
	`)

	nfa, err := NewLR0ViablePrefixNFA(g)
	if !assert.NoError(err) {
		return
	}

	dfa := nfa.ToDFA()
	dfa.NumberStates()

	assert.Equal("0", dfa.Start)
	// every grammar symbol should drive a transition out of the start state.
	assert.NotEqual("", dfa.Next(dfa.Start, "c"))
	assert.NotEqual("", dfa.Next(dfa.Start, "d"))
	assert.NotEqual("", dfa.Next(dfa.Start, "C"))
}
