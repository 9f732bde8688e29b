package automaton

import (
	"testing"

	"github.com/dekarrin/sturgeon/internal/util"
	"github.com/stretchr/testify/assert"
)

func Test_DFA_NumberStates(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"q0": {"=(a)=> q1"},
		"q1": {"=(b)=> q2"},
		"q2": {},
	}, "q0", []string{"q2"})

	dfa.NumberStates()

	assert.Equal("0", dfa.Start)
	assert.True(dfa.IsAccepting(dfa.Next(dfa.Next(dfa.Start, "a"), "b")))
}

func Test_DFA_Next(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"q0": {"=(a)=> q1"},
		"q1": {"=(b)=> q0"},
	}, "q0", []string{})

	assert.Equal("q1", dfa.Next("q0", "a"))
	assert.Equal("q0", dfa.Next("q1", "b"))
	assert.Equal("", dfa.Next("q0", "b"))
	assert.Equal("", dfa.Next("nonexistent", "a"))
}

func Test_DFA_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		from      map[string][]string
		start     string
		expectErr bool
	}{
		{
			name: "well-formed",
			from: map[string][]string{
				"q0": {"=(a)=> q1"},
				"q1": {"=(a)=> q1"},
			},
			start: "q0",
		},
		{
			name: "unreachable state",
			from: map[string][]string{
				"q0": {"=(a)=> q0"},
				"q1": {},
			},
			start:     "q0",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			dfa := buildDFA(tc.from, tc.start, nil)
			err := dfa.Validate()
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_TransformDFA(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"q0": {"=(a)=> q1"},
		"q1": {},
	}, "q0", []string{"q1"})

	transformed := TransformDFA(dfa, func(old string) int { return len(old) })

	assert.Equal(dfa.Start, transformed.Start)
	assert.Equal(2, transformed.GetValue("q0"))
	assert.True(transformed.IsAccepting("q1"))
	assert.Equal("q1", transformed.Next("q0", "a"))
}

func Test_DFAToNFA(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"q0": {"=(a)=> q1"},
		"q1": {},
	}, "q0", []string{"q1"})

	nfa := DFAToNFA(dfa)

	assert.Equal(dfa.Start, nfa.Start)
	assert.ElementsMatch([]string{"q1"}, nfa.MOVE(util.StringSetOf([]string{"q0"}), "a").Elements())
	assert.True(nfa.AcceptingStates().Has("q1"))
}

func buildDFA(from map[string][]string, start string, acceptingStates []string) *DFA[string] {
	dfa := &DFA[string]{}

	acceptSet := util.StringSetOf(acceptingStates)

	for k := range from {
		dfa.AddState(k, acceptSet.Has(k))
		dfa.SetValue(k, k)
	}

	// add transitions AFTER all states are already in or it will cause a panic
	for k := range from {
		for i := range from[k] {
			transition := mustParseFATransition(from[k][i])
			dfa.AddTransition(k, transition.input, transition.next)
		}
	}

	dfa.Start = start

	return dfa
}
