package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/sturgeon/internal/ictiobus/grammar"
	"github.com/dekarrin/sturgeon/internal/ictiobus/icterrors"
	"github.com/dekarrin/sturgeon/internal/util"
)

// SLRDriver drives a shift-reduce parse over an SLR(1) table.
type SLRDriver struct {
	table *SLRTable
	gram  grammar.Grammar
	trace func(s string)
}

// RegisterTraceListener registers a callback invoked with a line of
// human-readable trace for every stack operation, shift, and reduce made
// during Parse.
func (lr *SLRDriver) RegisterTraceListener(listener func(s string)) {
	lr.trace = listener
}

// TableString returns the ACTION/GOTO table's printed form.
func (lr *SLRDriver) TableString() string {
	return lr.table.String()
}

func (lr *SLRDriver) notifyTraceFn(fn func() string) {
	if lr.trace != nil {
		lr.trace(fn())
	}
}

func (lr *SLRDriver) notifyTrace(fmtStr string, args ...interface{}) {
	lr.notifyTraceFn(func() string { return fmt.Sprintf(fmtStr, args...) })
}

func (lr *SLRDriver) notifyStatePeek(s string) { lr.notifyTrace("states.peek(): %s", s) }
func (lr *SLRDriver) notifyStatePush(s string) { lr.notifyTrace("states.push(): %s", s) }
func (lr *SLRDriver) notifyStatePop(s string) {
	if s == "" {
		lr.notifyTrace("states.pop()")
	} else {
		lr.notifyTrace("states.pop(): %s", s)
	}
}
func (lr *SLRDriver) notifyAction(act LRAction) { lr.notifyTrace("Action: %s", act.Type.String()) }
func (lr *SLRDriver) notifySymbolStack(st util.Stack[string]) {
	lr.notifyTraceFn(func() string {
		var sb strings.Builder
		for i := range st.Of {
			sb.WriteString(st.Of[i])
			if i+1 < len(st.Of) {
				sb.WriteString(", ")
			}
		}
		if st.Empty() {
			sb.WriteString("(empty)")
		}
		return "Symbol stack: " + sb.String()
	})
}

// Parse drives the table over input, a sequence of terminal symbols
// terminated implicitly by "$". It returns the sequence of reductions
// applied, in application order (a rightmost derivation in reverse), or a
// SyntaxError if input does not belong to the language of the grammar the
// table was built from.
//
// This is an implementation of Algorithm 4.44, "LR-parsing algorithm",
// from the purple dragon book.
func (lr *SLRDriver) Parse(input []string) ([]grammar.Rule, error) {
	stateStack := util.Stack[string]{Of: []string{lr.table.Initial()}}
	symbolBuffer := util.Stack[string]{}

	pos := 0
	next := func() string {
		if pos >= len(input) {
			return "$"
		}
		return input[pos]
	}

	a := next()
	lr.notifyTrace("Got next symbol: %s", a)

	var derivation []grammar.Rule

	for {
		lr.notifySymbolStack(symbolBuffer)

		s := stateStack.Peek()
		lr.notifyStatePeek(s)

		ACTION := lr.table.Action(s, a)
		lr.notifyAction(ACTION)

		switch ACTION.Type {
		case LRShift:
			symbolBuffer.Push(a)

			t := ACTION.State
			stateStack.Push(t)
			lr.notifyStatePush(t)

			pos++
			a = next()
			lr.notifyTrace("Got next symbol: %s", a)
		case LRReduce:
			A := ACTION.Symbol
			beta := ACTION.Production

			for i := 0; i < len(beta); i++ {
				symbolBuffer.Pop()
				stateStack.Pop()
				lr.notifyStatePop("")
			}

			t := stateStack.Peek()
			lr.notifyStatePeek(t)

			toPush, err := lr.table.Goto(t, A)
			if err != nil {
				return derivation, icterrors.NewSyntaxError(fmt.Sprintf("symbol valid after reducing to %s", A), a)
			}
			stateStack.Push(toPush)
			lr.notifyStatePush(toPush)
			symbolBuffer.Push(A)

			derivation = append(derivation, grammar.Rule{NonTerminal: A, Productions: []grammar.Production{beta}})
		case LRAccept:
			return derivation, nil
		case LRError:
			expMessage := lr.getExpectedString(s)
			return derivation, icterrors.NewSyntaxError(expMessage, a)
		}
	}
}

func (lr *SLRDriver) getExpectedString(stateName string) string {
	expected := lr.findExpectedTerminals(stateName)

	var sb strings.Builder
	for i, t := range expected {
		if i > 0 {
			if i+1 == len(expected) {
				sb.WriteString(" or ")
			} else {
				sb.WriteString(", ")
			}
		}
		sb.WriteString(t)
	}
	if sb.Len() == 0 {
		return "nothing further"
	}
	return sb.String()
}

// findExpectedTerminals returns every terminal that has a non-error ACTION
// entry at stateName.
func (lr *SLRDriver) findExpectedTerminals(stateName string) []string {
	terms := lr.gram.Terminals()

	expected := make([]string, 0, len(terms)+1)
	allTerms := append(append([]string{}, terms...), "$")
	for _, t := range allTerms {
		if lr.table.Action(stateName, t).Type != LRError {
			expected = append(expected, t)
		}
	}

	return expected
}
