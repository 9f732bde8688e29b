package parse

import (
	"testing"

	"github.com/dekarrin/sturgeon/internal/ictiobus/grammar"
	"github.com/stretchr/testify/assert"
)

func Test_LL1Parser_Parse(t *testing.T) {
	testCases := []struct {
		name        string
		grammarText string
		input       []string
		expectRules []string
		expectErr   bool
	}{
		{
			name: "aiken expression LL1 sample",
			grammarText: `
				S -> T X
				T -> lparen S rparen | int Y
				X -> plus S | ϵ
				Y -> times T | ϵ
			`,
			input: []string{"int", "times", "int"},
			expectRules: []string{
				"S -> T X",
				"T -> int Y",
				"Y -> times T",
				"T -> int Y",
				"Y -> ϵ",
				"X -> ϵ",
			},
		},
		{
			name: "mismatched terminal fails",
			grammarText: `
				S -> T X
				T -> lparen S rparen | int Y
				X -> plus S | ϵ
				Y -> times T | ϵ
			`,
			input:     []string{"lparen", "int"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := grammar.MustParseBNF(tc.grammarText)

			ll1, err := NewLL1Parser(g)
			if !assert.NoError(err) {
				return
			}

			derivation, err := ll1.Parse(tc.input)
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

func Test_LL1Parser_TraceListener(t *testing.T) {
	assert := assert.New(t)
	g := grammar.MustParseBNF(`
		S -> a S | ϵ
	`)

	ll1, err := NewLL1Parser(g)
	if !assert.NoError(err) {
		return
	}

	var trace []string
	ll1.RegisterTraceListener(func(s string) { trace = append(trace, s) })

	_, err = ll1.Parse([]string{"a", "a"})
	if !assert.NoError(err) {
		return
	}

	assert.NotEmpty(trace)
}
