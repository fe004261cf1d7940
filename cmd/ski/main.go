package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/gitrdm/goski/pkg/corpus"
	"github.com/gitrdm/goski/pkg/notation"
	"github.com/gitrdm/goski/pkg/prelude"
	"github.com/gitrdm/goski/pkg/ski"
)

const (
	appName      = "ski"
	defaultLimit = 10000
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

// colorEnabled reports whether f is a terminal that should get ANSI colours.
func colorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "eval":
		os.Exit(cmdEval(os.Args[2:]))
	case "trace":
		os.Exit(cmdTrace(os.Args[2:]))
	case "bcl":
		os.Exit(cmdBCL(os.Args[2:]))
	case "decode":
		os.Exit(cmdDecode(os.Args[2:]))
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		os.Exit(cmdVersion(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`goski %s

Usage:
  %s eval [flags] <term>            Normalize a term and print its normal form.
  %s trace [-limit n] <term>        Print every normal-order step.
  %s bcl <term>                     Print the canonical encoding.
  %s decode <hex>                   Decode a canonical encoding.
  %s run [flags] <corpus.yaml ...>  Run corpus files and report.
  %s repl                           Start the REPL.
  %s version [-json]                Print version and build details.

Terms use S, K, 'variables', parentheses and the standard combinators
(I T F B C M Y pair fst snd nil cons head tail isnil). Use - to read stdin.

`, ski.GetVersion(), appName, appName, appName, appName, appName, appName, appName)
}

func cmdVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print version details as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := writeVersion(os.Stdout, ski.GetVersionInfo(), *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "%s version: %v\n", appName, err)
		return 1
	}
	return 0
}

// writeVersion prints info as one line of text or as indented JSON.
func writeVersion(w io.Writer, info ski.VersionInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	line := fmt.Sprintf("goski %s (%s)", info.Version, info.GoVersion)
	if info.GitCommit != "" {
		line += " commit " + info.GitCommit
	}
	if info.BuildDate != "" {
		line += " built " + info.BuildDate
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// termEnv returns the environment terms are parsed in.
func termEnv(noPrelude bool) *notation.Env {
	if noPrelude {
		return notation.NewEnv()
	}
	return prelude.Env()
}

// readTerm parses the remaining arguments as one term; "-" reads stdin.
func readTerm(args []string, env *notation.Env) (ski.Term, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing term")
	}
	src := strings.Join(args, " ")
	if src == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		src = string(data)
	}
	return notation.Parse(src, env)
}

// -----------------------------------------------------------------------------
// eval
// -----------------------------------------------------------------------------

func cmdEval(args []string) int {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	limit := fs.Int("limit", defaultLimit, "step limit")
	eager := fs.Bool("eager-k", false, "fire K redexes eagerly")
	noSpec := fs.Bool("no-speculate", false, "do not pre-normalize duplicated S arguments")
	stats := fs.Bool("stats", false, "print normalizer statistics")
	trace := fs.Bool("trace", false, "log normalizer decisions to stderr")
	noPrelude := fs.Bool("no-prelude", false, "do not preload the standard combinators")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	env := termEnv(*noPrelude)
	term, err := readTerm(fs.Args(), env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s eval: %v\n", appName, err)
		return 2
	}

	n := ski.NewNormalizer(&ski.Config{EagerK: *eager, Speculate: !*noSpec, Trace: *trace})
	res := n.Normalize(term, *limit)

	color := colorEnabled(os.Stdout)
	fmt.Println(formatResult(res, env, color))
	if *stats {
		s := n.Stats()
		fmt.Fprintf(os.Stderr, "steps=%d hits=%d misses=%d cycles=%d speculations=%d/%d cached=%d\n",
			s.Steps, s.CacheHits, s.CacheMisses, s.CyclesProven, s.SpeculationsUsed, s.Speculations, s.CachedTerms)
	}
	if res.Outcome != ski.Normalized {
		return 1
	}
	return 0
}

// formatResult renders a normalization result on one line.
func formatResult(res ski.Result, env *notation.Env, color bool) string {
	paint := func(f func(string) string, s string) string {
		if color {
			return f(s)
		}
		return s
	}
	switch res.Outcome {
	case ski.Normalized:
		return fmt.Sprintf("%s  %s", paint(blue, notation.Format(res.Term, env)), paint(green, fmt.Sprintf("(%d steps)", res.Steps)))
	default:
		return paint(red, fmt.Sprintf("%s after %d steps", res.Outcome, res.Steps))
	}
}

// -----------------------------------------------------------------------------
// trace
// -----------------------------------------------------------------------------

func cmdTrace(args []string) int {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	limit := fs.Int("limit", 100, "maximum number of steps to print")
	noPrelude := fs.Bool("no-prelude", false, "do not preload the standard combinators")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	term, err := readTerm(fs.Args(), termEnv(*noPrelude))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s trace: %v\n", appName, err)
		return 2
	}
	if !writeTrace(os.Stdout, term, *limit) {
		return 1
	}
	return 0
}

// writeTrace prints each step of a normal-order reduction and reports
// whether a normal form was reached.
func writeTrace(w io.Writer, term ski.Term, limit int) bool {
	_, normal := ski.Trace(term, limit, func(step int, t ski.Term) {
		fmt.Fprintf(w, "%4d  %s\n", step, t)
	})
	if !normal {
		fmt.Fprintf(w, "stopped after %d steps\n", limit)
	}
	return normal
}

// -----------------------------------------------------------------------------
// bcl / decode
// -----------------------------------------------------------------------------

func cmdBCL(args []string) int {
	fs := flag.NewFlagSet("bcl", flag.ContinueOnError)
	noPrelude := fs.Bool("no-prelude", false, "do not preload the standard combinators")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	term, err := readTerm(fs.Args(), termEnv(*noPrelude))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s bcl: %v\n", appName, err)
		return 2
	}
	writeBCL(os.Stdout, term)
	return 0
}

func writeBCL(w io.Writer, term ski.Term) {
	enc := ski.Encode(term)
	fmt.Fprintln(w, ski.FormatBits(enc))
	fmt.Fprintln(w, hex.EncodeToString(enc))
}

func cmdDecode(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s decode <hex>\n", appName)
		return 2
	}
	data, err := hex.DecodeString(strings.TrimSpace(args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s decode: %v\n", appName, err)
		return 2
	}
	term, err := ski.Decode(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}
	fmt.Println(term)
	return 0
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	workers := fs.Int("workers", 0, "parallel normalizations (0 = one per CPU)")
	colorMode := fs.String("color", "auto", "colour output: auto, always or never")
	eager := fs.Bool("eager-k", false, "fire K redexes eagerly")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s run [flags] <corpus.yaml ...>\n", appName)
		return 2
	}

	style := corpus.DefaultStyle()
	switch *colorMode {
	case "auto":
		style.Color = colorEnabled(os.Stdout)
	case "always":
		style.Color = true
	case "never":
	default:
		fmt.Fprintf(os.Stderr, "%s run: unknown colour mode %q\n", appName, *colorMode)
		return 2
	}

	cfg := ski.DefaultConfig()
	cfg.EagerK = *eager
	opts := &corpus.Options{MaxWorkers: *workers, Config: cfg}

	failed := false
	for _, path := range fs.Args() {
		c, err := corpus.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			failed = true
			continue
		}
		report, err := corpus.Run(context.Background(), c, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, red(err.Error()))
			failed = true
			continue
		}
		fmt.Printf("== %s\n", path)
		if err := corpus.WriteReport(os.Stdout, report, style); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}
		if !report.OK() {
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}
