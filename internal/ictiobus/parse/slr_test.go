package parse

import (
	"testing"

	"github.com/dekarrin/sturgeon/internal/ictiobus/grammar"
	"github.com/stretchr/testify/assert"
)

func Test_SLRParser_Parse(t *testing.T) {
	testCases := []struct {
		name        string
		grammarText string
		input       []string
		expectRules []string
		expectErr   bool
	}{
		{
			name: "purple dragon book expression grammar (4.1)",
			grammarText: `
				E -> E plus T | T
				T -> T times F | F
				F -> lparen E rparen | id
			`,
			input: []string{"id", "plus", "id", "times", "id"},
			expectRules: []string{
				"F -> id",
				"T -> F",
				"E -> T",
				"F -> id",
				"T -> F",
				"F -> id",
				"T -> T times F",
				"E -> E plus T",
			},
		},
		{
			name: "mismatched input fails",
			grammarText: `
				E -> E plus T | T
				T -> T times F | F
				F -> lparen E rparen | id
			`,
			input:     []string{"id", "plus", "plus"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := grammar.MustParseBNF(tc.grammarText)

			slr, err := NewSLRParser(g)
			if !assert.NoError(err) {
				return
			}

			derivation, err := slr.Parse(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}

			actual := make([]string, len(derivation))
			for i, r := range derivation {
				actual[i] = r.String()
			}
			assert.Equal(tc.expectRules, actual)
		})
	}
}

func Test_NewSLRParser_RejectsNonSLR1Grammar(t *testing.T) {
	assert := assert.New(t)

	// S -> A | B where A and B both derive the same string "a", forcing a
	// reduce/reduce conflict on $.
	g := grammar.MustParseBNF(`
		S -> A | B
		A -> a
		B -> a
	`)

	_, err := NewSLRParser(g)
	assert.Error(err)
}

func Test_SLRTable_String(t *testing.T) {
	assert := assert.New(t)

	g := grammar.MustParseBNF(`
		S -> C C
		C -> c C | d
	`)

	table, err := NewSLRTable(g)
	if !assert.NoError(err) {
		return
	}

	out := table.String()
	assert.Contains(out, "acc")
	assert.Contains(out, "A:c")
	assert.Contains(out, "G:C")
}
