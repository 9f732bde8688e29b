package grammar

import "fmt"

// LR0Item is a production with a dot marker: NonTerminal -> Left . Right.
// An ε-production is normalized to Left == Right == nil (dot == 0 is its
// only, immediately reducible, position) rather than carrying a one-element
// ε body — see the design note on this in DESIGN.md.
type LR0Item struct {
	NonTerminal string
	Left        []string
	Right       []string
}

// Equal reports whether o is an LR0Item with the same head and the same
// dotted production.
func (item LR0Item) Equal(o any) bool {
	other, ok := o.(LR0Item)
	if !ok {
		return false
	}
	if item.NonTerminal != other.NonTerminal {
		return false
	}
	if len(item.Left) != len(other.Left) || len(item.Right) != len(other.Right) {
		return false
	}
	for i := range item.Left {
		if item.Left[i] != other.Left[i] {
			return false
		}
	}
	for i := range item.Right {
		if item.Right[i] != other.Right[i] {
			return false
		}
	}
	return true
}

// String renders the item as "NonTerminal -> Left . Right".
func (item LR0Item) String() string {
	nonTermPhrase := ""
	if item.NonTerminal != "" {
		nonTermPhrase = fmt.Sprintf("%s -> ", item.NonTerminal)
	}

	left := joinSyms(item.Left)
	right := joinSyms(item.Right)

	if len(left) > 0 {
		left += " "
	}
	if len(right) > 0 {
		right = " " + right
	}

	return fmt.Sprintf("%s%s.%s", nonTermPhrase, left, right)
}

func joinSyms(syms []string) string {
	out := ""
	for i, s := range syms {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

// LR0Items returns every LR0Item derivable from g's rules: for each
// production of length n, the items at dot positions 0..n; for an
// ε-production, the single normalized item at dot 0.
func (g *Grammar) LR0Items() []LR0Item {
	var items []LR0Item

	for _, rule := range g.rules {
		for _, p := range rule.Productions {
			if p.HasEpsilon() {
				items = append(items, LR0Item{NonTerminal: rule.NonTerminal})
				continue
			}

			body := []string(p)
			for dot := 0; dot <= len(body); dot++ {
				left := append([]string{}, body[:dot]...)
				right := append([]string{}, body[dot:]...)
				items = append(items, LR0Item{NonTerminal: rule.NonTerminal, Left: left, Right: right})
			}
		}
	}

	return items
}
