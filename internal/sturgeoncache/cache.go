// Package sturgeoncache caches compiled grammar/regex artifacts on disk,
// keyed by a content hash of their source text, so that repeated
// invocations of cmd/sturgeon over the same input skip recomputation.
//
// This is pure CLI scaffolding: nothing in the grammar, regex, automaton,
// or parse packages knows this exists.
package sturgeoncache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/rezi"
	"github.com/dekarrin/sturgeon/internal/ictiobus/grammar"
	"golang.org/x/crypto/blake2b"
)

// Kind identifies which pipeline produced a cached Entry.
type Kind string

const (
	KindRegexDFA Kind = "regex-dfa"
	KindLL1      Kind = "ll1"
	KindSLR1     Kind = "slr1"
)

// Entry is the rezi-encoded unit stored under a cache directory. Dump is
// the artifact's own String() form, always populated so a cache hit can be
// echoed back to the user without rebuilding anything.
//
// LLTable additionally lets the LL1 pipeline skip rebuilding entirely: an
// LL1Table is made of plain maps and []string bodies, so rezi's reflection
// can round-trip it exactly. DFA[E] and SLRTable carry unexported state
// (the automaton package never exports raw transition maps), so the regex
// and SLR1 kinds cache Dump only and the caller still rebuilds the working
// structures from source.
type Entry struct {
	Kind     Kind
	Checksum string
	Dump     string
	LLTable  grammar.LL1Table
}

// PatternChecksum hashes a regex pattern's source text the same way
// grammar.Grammar.Checksum hashes a grammar's canonical text, so the two
// pipelines share one cache-keying scheme.
func PatternChecksum(pattern string) string {
	sum := blake2b.Sum256([]byte(pattern))
	return fmt.Sprintf("%x", sum)
}

func entryPath(dir string, kind Kind, checksum string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.rezi", kind, checksum))
}

// Load returns the cached entry for kind/checksum, or ok=false if dir is
// empty, nothing is cached yet, or the cached file is stale or corrupt.
func Load(dir string, kind Kind, checksum string) (entry Entry, ok bool) {
	if dir == "" {
		return Entry{}, false
	}

	data, err := os.ReadFile(entryPath(dir, kind, checksum))
	if err != nil {
		return Entry{}, false
	}

	var e Entry
	n, err := rezi.DecBinary(data, &e)
	if err != nil || n != len(data) {
		return Entry{}, false
	}
	if e.Checksum != checksum || e.Kind != kind {
		return Entry{}, false
	}

	return e, true
}

// Store persists e under dir. A no-op if dir is empty.
func Store(dir string, e Entry) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0770); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data := rezi.EncBinary(&e)
	if err := os.WriteFile(entryPath(dir, e.Kind, e.Checksum), data, 0660); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}
