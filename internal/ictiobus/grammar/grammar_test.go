package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Grammar_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		rules     []string
		terminals []string
		expectErr bool
	}{
		{
			name:      "empty grammar",
			expectErr: true,
		},
		{
			name: "terminal also used as non-terminal head",
			rules: []string{
				"S -> a",
				"a -> b",
			},
			terminals: []string{"a"},
			expectErr: true,
		},
		{
			name: "single rule grammar",
			rules: []string{
				"S -> int",
			},
			terminals: []string{"int"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)
			actual := g.Validate()
			if tc.expectErr {
				assert.Error(actual)
			} else {
				assert.NoError(actual)
			}
		})
	}
}

func Test_Grammar_FIRST(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		first     string
		expect    []string
	}{
		{
			name:      "first and follow sets explained example, T",
			terminals: []string{"p", "g", "b", "a", "q", "s", "d", "f", "m"},
			rules: []string{
				"S -> K L p | g Q K",
				"K -> b L Q T | ϵ",
				"L -> Q a K | Q K | q a",
				"Q -> d s | ϵ",
				"T -> g S f | m",
			},
			first:  "T",
			expect: []string{"g", "m"},
		},
		{
			name:      "first and follow sets explained example, Q",
			terminals: []string{"p", "g", "b", "a", "q", "s", "d", "f", "m"},
			rules: []string{
				"S -> K L p | g Q K",
				"K -> b L Q T | ϵ",
				"L -> Q a K | Q K | q a",
				"Q -> d s | ϵ",
				"T -> g S f | m",
			},
			first:  "Q",
			expect: []string{"d", ""},
		},
		{
			name:      "first and follow sets explained example, S",
			terminals: []string{"p", "g", "b", "a", "q", "s", "d", "f", "m"},
			rules: []string{
				"S -> K L p | g Q K",
				"K -> b L Q T | ϵ",
				"L -> Q a K | Q K | q a",
				"Q -> d s | ϵ",
				"T -> g S f | m",
			},
			first:  "S",
			expect: []string{"b", "d", "q", "a", "p", "g"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)
			actual := g.FIRST(tc.first)
			assert.ElementsMatch(tc.expect, actual.Elements())
		})
	}
}

func Test_Grammar_FOLLOW(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		follow    string
		expect    []string
	}{
		{
			name:      "example 1 - S",
			terminals: []string{"a", "h", "c", "b", "g", "f"},
			rules: []string{
				"S -> a B D h",
				"B -> c C",
				"C -> b C | ϵ",
				"D -> E F",
				"E -> g | ϵ",
				"F -> f | ϵ",
			},
			follow: "S",
			expect: []string{"$"},
		},
		{
			name:      "example 1 - B",
			terminals: []string{"a", "h", "c", "b", "g", "f"},
			rules: []string{
				"S -> a B D h",
				"B -> c C",
				"C -> b C | ϵ",
				"D -> E F",
				"E -> g | ϵ",
				"F -> f | ϵ",
			},
			follow: "B",
			expect: []string{"g", "f", "h"},
		},
		{
			name:      "aiken operations - T",
			terminals: []string{"int", "plus", "times", "lparen", "rparen"},
			rules:     []string{"S -> T X", "T -> lparen S rparen | int Y", "X -> plus S | ϵ", "Y -> times T | ϵ"},
			follow:    "T",
			expect:    []string{"plus", "$", "rparen"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)
			actual := g.FOLLOW(tc.follow)
			assert.ElementsMatch(tc.expect, actual.Elements())
		})
	}
}

func Test_Grammar_IsLL1(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		expect    bool
	}{
		{
			name:      "example 1",
			terminals: []string{"plus", "mult", "lp", "rp", "id"},
			rules: []string{
				"S -> T A",
				"A -> plus T A | ϵ",
				"T -> F B",
				"B -> mult F B | ϵ",
				"F -> lp S rp | id",
			},
			expect: true,
		},
		{
			name:      "same string in two prods",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> a | a b",
			},
			expect: false,
		},
		{
			name:      "duplicate identical alternative",
			terminals: []string{"a"},
			rules: []string{
				"S -> a | a",
			},
			expect: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)
			assert.Equal(tc.expect, g.IsLL1())
		})
	}
}

func Test_Grammar_LLParseTable(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		expect    map[string]map[string]Production
	}{
		{
			name:      "aiken example",
			terminals: []string{"int", "lparen", "rparen", "p", "m"},
			rules: []string{
				"S -> T X",
				"T -> lparen S rparen | int Y",
				"X -> p S | ϵ",
				"Y -> m T | ϵ",
			},
			expect: map[string]map[string]Production{
				"S": {"int": {"T", "X"}, "lparen": {"T", "X"}},
				"X": {"p": {"p", "S"}, "rparen": Epsilon, "$": Epsilon},
				"T": {"int": {"int", "Y"}, "lparen": {"lparen", "S", "rparen"}},
				"Y": {"m": {"m", "T"}, "p": Epsilon, "rparen": Epsilon, "$": Epsilon},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)

			actual, err := g.LLParseTable()
			if !assert.NoError(err) {
				return
			}

			for nt, row := range tc.expect {
				for term, prod := range row {
					got, ok := actual.Get(nt, term)
					if assert.Truef(ok, "missing entry M[%q, %q]", nt, term) {
						assert.Truef(prod.Equal(got), "M[%q, %q]: expected %q, got %q", nt, term, prod.String(), got.String())
					}
				}
			}
		})
	}
}

func Test_Grammar_Augmented(t *testing.T) {
	assert := assert.New(t)
	g := setupGrammar([]string{"a"}, []string{"S -> a"})

	aug, err := g.Augmented()
	if !assert.NoError(err) {
		return
	}

	assert.Equal("S'", aug.StartSymbol())
	assert.Equal([]Production{{"S"}}, aug.Rule("S'").Productions)
}

func mustParseRule(s string) Rule {
	g := MustParseBNF(s)
	return g.Rule(g.StartSymbol())
}

func setupGrammar(terminals []string, rules []string) Grammar {
	var g Grammar
	for _, term := range terminals {
		g.AddTerm(term)
	}
	for _, r := range rules {
		parsed := mustParseRule(r)
		for _, alts := range parsed.Productions {
			g.AddRule(parsed.NonTerminal, []string(alts)...)
		}
	}
	return g
}
