package regex

import (
	"fmt"
	"sort"

	"github.com/dekarrin/sturgeon/internal/ictiobus/automaton"
	"github.com/dekarrin/sturgeon/internal/util"
)

// positions is the value carried at each DFA state built by this package:
// the set of regex-tree leaf positions that state represents.
type positions = util.KeySet[int]

// BuildDFA computes the DFA accepting L(root) via the position-based
// followpos construction (§4.3): a single post-order pass computes
// nullable/firstpos/lastpos/followpos for every node, then the DFA is
// discovered by subset construction over positions, with no ε-moves ever
// materialized.
//
// States are named in BFS discovery order: the start is "q0", subsequent
// states "q1", "q2", ...; a state's transitions to the empty position set
// are routed to a synthetic sink "X" (self-looping, non-accepting) rather
// than left undefined, so the resulting DFA is total over its alphabet.
func BuildDFA(root *Node) automaton.DFA[positions] {
	b := &dfaBuilder{
		nullableMemo: map[*Node]bool{},
		firstMemo:    map[*Node]positions{},
		lastMemo:     map[*Node]positions{},
		followpos:    map[int]positions{},
		chars:        map[int]rune{},
	}
	b.walk(root)

	terminalPos := -1
	for pos, ch := range b.chars {
		if ch == terminator {
			terminalPos = pos
			break
		}
	}

	alphabetSet := map[rune]bool{}
	for _, ch := range b.chars {
		if ch != terminator {
			alphabetSet[ch] = true
		}
	}
	alphabet := make([]rune, 0, len(alphabetSet))
	for ch := range alphabetSet {
		alphabet = append(alphabet, ch)
	}
	sort.Slice(alphabet, func(i, j int) bool { return alphabet[i] < alphabet[j] })

	dfa := automaton.DFA[positions]{}

	startSet := b.firstpos(root)
	startKey := stateKey(startSet)

	nameOf := map[string]string{startKey: "q0"}
	setOf := map[string]positions{startKey: startSet}
	counter := 1

	dfa.AddState("q0", startSet.Has(terminalPos))
	dfa.SetValue("q0", startSet)
	dfa.Start = "q0"

	queue := []string{startKey}
	needsSink := false

	for len(queue) > 0 {
		curKey := queue[0]
		queue = queue[1:]
		curName := nameOf[curKey]
		curSet := setOf[curKey]

		for _, a := range alphabet {
			next := util.NewKeySet[int]()
			for pos := range curSet {
				if b.chars[pos] == a {
					for followed := range b.followpos[pos] {
						next.Add(followed)
					}
				}
			}

			if len(next) == 0 {
				needsSink = true
				dfa.AddTransition(curName, string(a), "X")
				continue
			}

			key := stateKey(next)
			name, ok := nameOf[key]
			if !ok {
				name = fmt.Sprintf("q%d", counter)
				counter++
				nameOf[key] = name
				setOf[key] = next
				dfa.AddState(name, next.Has(terminalPos))
				dfa.SetValue(name, next)
				queue = append(queue, key)
			}

			dfa.AddTransition(curName, string(a), name)
		}
	}

	if needsSink {
		dfa.AddState("X", false)
		dfa.SetValue("X", util.NewKeySet[int]())
		for _, a := range alphabet {
			dfa.AddTransition("X", string(a), "X")
		}
	}

	return dfa
}

type dfaBuilder struct {
	nullableMemo map[*Node]bool
	firstMemo    map[*Node]positions
	lastMemo     map[*Node]positions
	followpos    map[int]positions
	chars        map[int]rune
}

func (b *dfaBuilder) nullable(n *Node) bool {
	if v, ok := b.nullableMemo[n]; ok {
		return v
	}
	var res bool
	switch n.Kind {
	case Leaf:
		res = n.Epsilon
	case Union:
		res = b.nullable(n.Left) || b.nullable(n.Right)
	case Concat:
		res = b.nullable(n.Left) && b.nullable(n.Right)
	case Star:
		res = true
	}
	b.nullableMemo[n] = res
	return res
}

func (b *dfaBuilder) firstpos(n *Node) positions {
	if v, ok := b.firstMemo[n]; ok {
		return v
	}
	res := util.NewKeySet[int]()
	switch n.Kind {
	case Leaf:
		if !n.Epsilon {
			res.Add(n.ID)
		}
	case Union:
		res.AddAll(b.firstpos(n.Left))
		res.AddAll(b.firstpos(n.Right))
	case Concat:
		res.AddAll(b.firstpos(n.Left))
		if b.nullable(n.Left) {
			res.AddAll(b.firstpos(n.Right))
		}
	case Star:
		res.AddAll(b.firstpos(n.Left))
	}
	b.firstMemo[n] = res
	return res
}

func (b *dfaBuilder) lastpos(n *Node) positions {
	if v, ok := b.lastMemo[n]; ok {
		return v
	}
	res := util.NewKeySet[int]()
	switch n.Kind {
	case Leaf:
		if !n.Epsilon {
			res.Add(n.ID)
		}
	case Union:
		res.AddAll(b.lastpos(n.Left))
		res.AddAll(b.lastpos(n.Right))
	case Concat:
		res.AddAll(b.lastpos(n.Right))
		if b.nullable(n.Right) {
			res.AddAll(b.lastpos(n.Left))
		}
	case Star:
		res.AddAll(b.lastpos(n.Left))
	}
	b.lastMemo[n] = res
	return res
}

func (b *dfaBuilder) addFollow(pos int, others positions) {
	set, ok := b.followpos[pos]
	if !ok {
		set = util.NewKeySet[int]()
		b.followpos[pos] = set
	}
	set.AddAll(others)
}

// walk performs the single post-order pass computing followpos and the
// leaf-id-to-character mapping.
func (b *dfaBuilder) walk(n *Node) {
	switch n.Kind {
	case Concat:
		b.walk(n.Left)
		b.walk(n.Right)
		r := b.firstpos(n.Right)
		for i := range b.lastpos(n.Left) {
			b.addFollow(i, r)
		}
	case Union:
		b.walk(n.Left)
		b.walk(n.Right)
	case Star:
		b.walk(n.Left)
		r := b.firstpos(n)
		for i := range b.lastpos(n) {
			b.addFollow(i, r)
		}
	case Leaf:
		if !n.Epsilon {
			b.chars[n.ID] = n.Ch
		}
	}
}

func stateKey(s positions) string {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	key := ""
	for i, id := range ids {
		if i > 0 {
			key += ","
		}
		key += fmt.Sprintf("%d", id)
	}
	return key
}
