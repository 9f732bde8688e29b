package grammar

import (
	"testing"

	"github.com/dekarrin/sturgeon/internal/ictiobus/icterrors"
	"github.com/stretchr/testify/assert"
)

func Test_ParseBNF(t *testing.T) {
	assert := assert.New(t)

	g, err := ParseBNF(`
		# a comment line is ignored
		S -> a S b | ϵ
	`)
	if !assert.NoError(err) {
		return
	}

	assert.Equal("S", g.StartSymbol())
	assert.ElementsMatch([]string{"a", "b"}, g.Terminals())
	assert.Len(g.Rule("S").Productions, 2)
}

func Test_ParseBNF_MalformedGrammar(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{
			name: "line missing arrow",
			text: "X",
		},
		{
			name: "empty head",
			text: "-> a",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := ParseBNF(tc.text)
			if !assert.Error(err) {
				return
			}
			assert.Equal(icterrors.MalformedGrammar, err.(*icterrors.Error).Kind)
		})
	}
}

func Test_MustParseBNF_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustParseBNF("not a grammar")
	})
}
