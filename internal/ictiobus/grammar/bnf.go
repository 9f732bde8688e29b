package grammar

import (
	"strings"

	"github.com/dekarrin/sturgeon/internal/ictiobus/icterrors"
	"golang.org/x/text/unicode/norm"
)

// epsilonToken is the literal BNF token denoting the empty production.
const epsilonToken = "ϵ"

// ParseBNF parses textual BNF into a Grammar. One rule per non-empty,
// non-comment line ('#' at line start). Format: "HEAD -> BODY1 | BODY2 | ...".
// Each body is whitespace-tokenized; the literal "ϵ" or an empty body
// denotes the ε-production. Heads are registered as non-terminals in
// first-appearance order; any other body symbol becomes a terminal.
//
// Fails with MalformedGrammar if a line lacks "->" or has an empty head.
func ParseBNF(text string) (Grammar, error) {
	text = norm.NFC.String(text)

	var g Grammar

	for lineNo, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sides := strings.SplitN(line, "->", 2)
		if len(sides) != 2 {
			return Grammar{}, icterrors.NewMalformedGrammar("line %d: missing '->': %q", lineNo+1, rawLine)
		}

		head := strings.TrimSpace(sides[0])
		if head == "" {
			return Grammar{}, icterrors.NewMalformedGrammar("line %d: empty rule head: %q", lineNo+1, rawLine)
		}

		for _, altStr := range strings.Split(sides[1], "|") {
			body := strings.Fields(altStr)
			for i, sym := range body {
				if sym == epsilonToken {
					body[i] = ""
				}
			}
			if len(body) == 0 {
				g.AddRule(head)
			} else {
				g.AddRule(head, body...)
			}
		}
	}

	if err := g.Validate(); err != nil {
		return Grammar{}, err
	}

	return g, nil
}

// MustParseBNF is like ParseBNF but panics on error. Intended for tests and
// for constructing grammars from literal text known to be valid.
func MustParseBNF(text string) Grammar {
	g, err := ParseBNF(text)
	if err != nil {
		panic(err.Error())
	}
	return g
}
