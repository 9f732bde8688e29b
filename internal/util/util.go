package util

import (
	"sort"
	"strings"
)

// OrderedKeys returns the keys of m sorted alphabetically. Used wherever a
// map must be iterated in deterministic order (symbol tables, ACTION/GOTO
// columns, etc).
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Alphabetized returns a sorted copy of sl; sl itself is left untouched.
func Alphabetized[T ~string](sl []T) []T {
	sorted := make([]T, len(sl))
	copy(sorted, sl)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// InSlice returns whether v is present in sl.
func InSlice[T comparable](v T, sl []T) bool {
	for i := range sl {
		if sl[i] == v {
			return true
		}
	}
	return false
}

// EqualSlices returns whether a and b contain the same elements in the same
// order.
func EqualSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ArticleFor returns "a" or "an" depending on whether word begins with a
// vowel letter (a, e, i, o, u in either case). capitalize capitalizes the returned article.
func ArticleFor(word string, capitalize bool) string {
	article := "a"
	if len(word) > 0 {
		switch word[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}
	if capitalize {
		return strings.ToUpper(article[:1]) + article[1:]
	}
	return article
}

// MakeTextList gives a nice list of things based on their display name.
//
// TODO: turn this into a generic function that accepts displayable OR ~string
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " and " + items[1]
	} else {
		// if its more than two, use an oxford comma
		items[len(items)-1] = "and " + items[len(items)-1]
		output += strings.Join(items, ", ")
	}

	return output
}
