/*
Sturgeon compiles a BNF grammar into a predictive or SLR(1) parser, or a
regular expression into its equivalent DFA, and prints the result.

Usage:

	sturgeon [flags]

The flags are:

	-b, --bnf FILE
		Read a BNF grammar from FILE and build a parser for it.

	-r, --regex PATTERN
		Build a DFA for the given regular expression.

	-p, --parser ll1|slr1
		Which driver to build for --bnf. Defaults to "ll1".

	-i, --repl
		Start an interactive readline session instead of processing a single
		--bnf/--regex input. A line prefixed with "/" is built as one regex
		pattern; any other non-blank line is treated as a grammar rule
		(accumulated until a blank line). "quit" ends the session.

	-c, --config FILE
		Read defaults for --parser, --cache-dir, and --trace from a TOML
		config file.

	--cache-dir DIR
		Cache compiled artifacts under DIR, keyed by a hash of their source
		text, so that re-running over unchanged input skips recomputation
		where possible.

	-t, --trace
		Print a trace line for every parser stack operation, tagged with
		this run's session ID.

This is scaffolding only: all grammar/regex/parsing logic lives in the
internal packages. main wires flags and config to them and prints their own
String() forms.
*/
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chzyer/readline"
	"github.com/dekarrin/sturgeon/internal/ictiobus/grammar"
	"github.com/dekarrin/sturgeon/internal/ictiobus/regex"
	"github.com/dekarrin/sturgeon/internal/ictiobus/types"
	"github.com/dekarrin/sturgeon/internal/sturgeoncache"

	ictioparse "github.com/dekarrin/sturgeon/internal/ictiobus/parse"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates the flags given don't select a valid pipeline.
	ExitUsageError

	// ExitBuildError indicates the grammar or regex itself was rejected
	// (malformed input, not LL(1)/SLR(1), etc).
	ExitBuildError

	// ExitInitError indicates a problem reading a file or config needed to
	// even attempt a build.
	ExitInitError
)

var (
	returnCode int = ExitSuccess

	bnfFile     *string = pflag.StringP("bnf", "b", "", "Read a BNF grammar from this file")
	regexArg    *string = pflag.StringP("regex", "r", "", "Build a DFA for this regular expression")
	parserKind  *string = pflag.StringP("parser", "p", "ll1", `Which driver to build for --bnf: "ll1" or "slr1"`)
	replMode    *bool   = pflag.BoolP("repl", "i", false, "Start an interactive readline session")
	configFile  *string = pflag.StringP("config", "c", "", "Path to a TOML config file")
	cacheDir    *string = pflag.String("cache-dir", "", "Cache compiled artifacts under this directory")
	traceFlag   *bool   = pflag.BoolP("trace", "t", false, "Print a trace line for every parser operation")
)

// fileConfig is the shape of an optional TOML config file. Flags always
// override a value set here.
type fileConfig struct {
	Parser   string `toml:"parser"`
	CacheDir string `toml:"cache_dir"`
	Trace    bool   `toml:"trace"`
}

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *configFile != "" {
		var cfg fileConfig
		if _, err := toml.DecodeFile(*configFile, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: read config: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		if !pflag.CommandLine.Changed("parser") && cfg.Parser != "" {
			*parserKind = cfg.Parser
		}
		if !pflag.CommandLine.Changed("cache-dir") && cfg.CacheDir != "" {
			*cacheDir = cfg.CacheDir
		}
		if !pflag.CommandLine.Changed("trace") && cfg.Trace {
			*traceFlag = true
		}
	}

	sessionID, err := uuid.NewRandom()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: generate session ID: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	var tracer func(string)
	if *traceFlag {
		logger := log.New(os.Stderr, "", log.LstdFlags)
		tracer = func(s string) {
			logger.Printf("TRACE [%s] %s", sessionID, s)
		}
	}

	switch {
	case *replMode:
		runRepl(tracer)
	case *bnfFile != "":
		data, readErr := os.ReadFile(*bnfFile)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", readErr.Error())
			returnCode = ExitInitError
			return
		}
		if err := runGrammar(string(data), *parserKind, *cacheDir, pflag.Args(), tracer); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitBuildError
			return
		}
	case *regexArg != "":
		if err := runRegex(*regexArg, *cacheDir); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitBuildError
			return
		}
	default:
		fmt.Fprintln(os.Stderr, "ERROR: one of --bnf, --regex, or --repl is required")
		returnCode = ExitUsageError
		return
	}
}

// runGrammar parses src as BNF, builds the requested driver, prints the
// resulting table, and if input tokens were given on the command line,
// drives a parse over them and prints the derivation.
func runGrammar(src, kind, cache string, input []string, tracer func(string)) error {
	g, err := grammar.ParseBNF(src)
	if err != nil {
		return err
	}
	checksum := g.Checksum()

	pt, err := parserTypeFor(kind)
	if err != nil {
		return err
	}
	fmt.Printf("# building %s parser\n", pt)

	switch pt {
	case types.ParserLL1:
		return runLL1(g, checksum, cache, input, tracer)
	case types.ParserSLR1:
		return runSLR1(g, checksum, cache, input, tracer)
	default:
		return fmt.Errorf("unhandled parser type %q", pt)
	}
}

// parserTypeFor maps the --parser flag's CLI spelling to the type used for
// display and cache labeling.
func parserTypeFor(kind string) (types.ParserType, error) {
	switch kind {
	case "ll1":
		return types.ParserLL1, nil
	case "slr1":
		return types.ParserSLR1, nil
	default:
		return "", fmt.Errorf("unknown --parser %q (want \"ll1\" or \"slr1\")", kind)
	}
}

func runLL1(g grammar.Grammar, checksum, cache string, input []string, tracer func(string)) error {
	var table grammar.LL1Table

	if entry, ok := sturgeoncache.Load(cache, sturgeoncache.KindLL1, checksum); ok && entry.LLTable != nil {
		fmt.Println("# using cached LL(1) table")
		table = entry.LLTable
	} else {
		built, err := g.LLParseTable()
		if err != nil {
			return err
		}
		table = built
		fmt.Println(table.String())

		if storeErr := sturgeoncache.Store(cache, sturgeoncache.Entry{
			Kind:     sturgeoncache.KindLL1,
			Checksum: checksum,
			Dump:     table.String(),
			LLTable:  table,
		}); storeErr != nil {
			fmt.Fprintf(os.Stderr, "WARN  could not cache table: %s\n", storeErr.Error())
		}
	}

	if len(input) == 0 {
		return nil
	}

	parser := ictioparse.NewLL1ParserFromTable(g, table)
	if tracer != nil {
		parser.RegisterTraceListener(tracer)
	}

	derivation, err := parser.Parse(input)
	if err != nil {
		return err
	}
	printDerivation(derivation)
	return nil
}

func runSLR1(g grammar.Grammar, checksum, cache string, input []string, tracer func(string)) error {
	if entry, ok := sturgeoncache.Load(cache, sturgeoncache.KindSLR1, checksum); ok {
		fmt.Println("# cached build found; rebuilding working table from source (SLR tables carry unexported state rezi cannot round-trip):")
		fmt.Println(entry.Dump)
	}

	parser, err := ictioparse.NewSLRParser(g)
	if err != nil {
		return err
	}
	fmt.Println(parser.TableString())

	if storeErr := sturgeoncache.Store(cache, sturgeoncache.Entry{
		Kind:     sturgeoncache.KindSLR1,
		Checksum: checksum,
		Dump:     parser.TableString(),
	}); storeErr != nil {
		fmt.Fprintf(os.Stderr, "WARN  could not cache table: %s\n", storeErr.Error())
	}

	if len(input) == 0 {
		return nil
	}

	if tracer != nil {
		parser.RegisterTraceListener(tracer)
	}

	derivation, err := parser.Parse(input)
	if err != nil {
		return err
	}
	printDerivation(derivation)
	return nil
}

func printDerivation(derivation []grammar.Rule) {
	fmt.Println("# derivation")
	for _, r := range derivation {
		fmt.Println(r.String())
	}
}

// runRegex parses pattern, builds its DFA, and prints it.
func runRegex(pattern, cache string) error {
	checksum := sturgeoncache.PatternChecksum(pattern)

	if entry, ok := sturgeoncache.Load(cache, sturgeoncache.KindRegexDFA, checksum); ok {
		fmt.Println("# cached build found; rebuilding DFA from source (regex DFAs carry unexported state rezi cannot round-trip):")
		fmt.Println(entry.Dump)
	}

	root, err := regex.Parse(pattern)
	if err != nil {
		return err
	}
	dfa := regex.BuildDFA(root)
	dfa.NumberStates()
	fmt.Println(dfa.String())

	if storeErr := sturgeoncache.Store(cache, sturgeoncache.Entry{
		Kind:     sturgeoncache.KindRegexDFA,
		Checksum: checksum,
		Dump:     dfa.String(),
	}); storeErr != nil {
		fmt.Fprintf(os.Stderr, "WARN  could not cache DFA: %s\n", storeErr.Error())
	}

	return nil
}

// runRepl starts an interactive session: --regex-style single lines build a
// DFA immediately, while a run of non-blank lines is accumulated as BNF
// grammar text and built on the following blank line.
func runRepl(tracer func(string)) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "sturgeon> ",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: start readline: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer rl.Close()

	fmt.Println(`Enter a regex prefixed with "/" to build its DFA, or BNF rule lines` +
		` (blank line to build the grammar so far), or "quit" to exit.`)

	var grammarLines []string

	for {
		line, rlErr := rl.Readline()
		if rlErr != nil {
			return
		}
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "quit":
			return
		case strings.HasPrefix(trimmed, "/"):
			if err := runRegex(strings.TrimPrefix(trimmed, "/"), *cacheDir); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			}
		case trimmed == "" && len(grammarLines) > 0:
			src := strings.Join(grammarLines, "\n")
			grammarLines = nil
			if err := runGrammar(src, *parserKind, *cacheDir, nil, tracer); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			}
		case trimmed != "":
			grammarLines = append(grammarLines, line)
		}
	}
}
