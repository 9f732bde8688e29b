package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// accepts runs s through dfa, returning whether s is in the accepted
// language. BuildDFA only guarantees totality over the pattern's own
// alphabet (§4.3); a character the pattern never mentions has no
// transition at all, which this treats as a rejection.
func accepts(t *testing.T, pattern, s string) bool {
	t.Helper()
	root, err := Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	dfa := BuildDFA(root)

	state := dfa.Start
	for _, r := range s {
		state = dfa.Next(state, string(r))
		if state == "" {
			return false
		}
	}
	return dfa.IsAccepting(state)
}

func Test_BuildDFA_AcceptsLanguage(t *testing.T) {
	testCases := []struct {
		name    string
		pattern string
		accept  []string
		reject  []string
	}{
		{
			name:    "a(b|c)*",
			pattern: "a(b|c)*",
			accept:  []string{"a", "ab", "ac", "abcbc", "abbbbb"},
			reject:  []string{"", "b", "ba", "aa", "abd"},
		},
		{
			name:    "[a-c]+d?",
			pattern: "[a-c]+d?",
			accept:  []string{"a", "abc", "ccc", "ad", "abcd", "bad"},
			reject:  []string{"", "d", "e", "abe"},
		},
		{
			name:    "optional",
			pattern: "ab?c",
			accept:  []string{"ac", "abc"},
			reject:  []string{"a", "abbc", "b"},
		},
		{
			name:    "nested groups",
			pattern: "(a(b|c)d)*",
			accept:  []string{"", "abd", "acdabd"},
			reject:  []string{"abdx", "ab"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, s := range tc.accept {
				assert.Truef(t, accepts(t, tc.pattern, s), "%q should match %q", tc.pattern, s)
			}
			for _, s := range tc.reject {
				assert.Falsef(t, accepts(t, tc.pattern, s), "%q should not match %q", tc.pattern, s)
			}
		})
	}
}

func Test_BuildDFA_TotalAndDeterministic(t *testing.T) {
	root, err := Parse("a(b|c)*")
	if !assert.NoError(t, err) {
		return
	}
	dfa := BuildDFA(root)

	alphabet := []string{"a", "b", "c"}
	for _, s := range dfa.States().Elements() {
		for _, a := range alphabet {
			next := dfa.Next(s, a)
			assert.NotEqualf(t, "", next, "state %q must have a defined transition on %q", s, a)
		}
	}
}

func Test_BuildDFA_SinkIsNonAcceptingAndSelfLooping(t *testing.T) {
	root, err := Parse("ab")
	if !assert.NoError(t, err) {
		return
	}
	dfa := BuildDFA(root)

	s := dfa.Start
	s = dfa.Next(s, "a")
	s = dfa.Next(s, "b")
	// "ab" is fully consumed and accepted; one more "a" has no follow set
	// and must route to the sink.
	assert.True(t, dfa.IsAccepting(s))
	sink := dfa.Next(s, "a")
	assert.False(t, dfa.IsAccepting(sink))
	assert.Equal(t, sink, dfa.Next(sink, "a"))
	assert.Equal(t, sink, dfa.Next(sink, "b"))
}

func Test_Parse_MalformedRegex(t *testing.T) {
	testCases := []string{
		"(a",
		"a)",
		"[a-",
		"[]",
		"*a",
	}

	for _, p := range testCases {
		t.Run(p, func(t *testing.T) {
			_, err := Parse(p)
			assert.Error(t, err)
		})
	}
}

func Test_AssignIDs_SkipsEpsilonLeaves(t *testing.T) {
	root, err := Parse("a?")
	if !assert.NoError(t, err) {
		return
	}
	// root is now (a?)# wrapped as Concat(Union(Leaf(a), Epsilon), Leaf(#)):
	// the ε leaf must keep ID 0 since it never occupies a followpos position.
	union := root.Left
	assert.Equal(t, Union, union.Kind)
	assert.True(t, union.Right.Epsilon)
	assert.Equal(t, 0, union.Right.ID)
	assert.NotEqual(t, 0, union.Left.ID)
}
