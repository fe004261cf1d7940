package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/gitrdm/goski/pkg/notation"
	"github.com/gitrdm/goski/pkg/prelude"
	"github.com/gitrdm/goski/pkg/ski"
)

const (
	historyFile = ".goski_history"
	promptMain  = "ski> "
)

var (
	banner   = fmt.Sprintf("goski %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.", ski.Version)
	helpText = `
  <term>             Normalize a term.
  name = <term>      Define name for later terms.
  :trace <term>      Print every normal-order step.
  :bcl <term>        Print the canonical encoding.
  :names             List defined names.
  :limit [n]         Show or set the step limit.
  :stats             Show normalizer statistics.
  :reset             Forget memoized results.
  :quit              Exit the REPL.
`
)

// session is the REPL state: definitions, the step limit and a normalizer
// whose memo table persists between inputs.
type session struct {
	env   *notation.Env
	norm  *ski.Normalizer
	limit int
	out   io.Writer
	color bool
}

func newSession(out io.Writer, color bool) *session {
	return &session{
		env:   prelude.Env(),
		norm:  ski.NewNormalizer(nil),
		limit: defaultLimit,
		out:   out,
		color: color,
	}
}

func (s *session) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.color {
		msg = red(msg)
	}
	fmt.Fprintln(s.out, msg)
}

// handle executes one line of input and reports whether the REPL should
// exit.
func (s *session) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}

	if strings.HasPrefix(line, ":") {
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch strings.ToLower(cmd) {
		case ":quit", ":q":
			return true
		case ":help":
			fmt.Fprint(s.out, helpText)
		case ":trace":
			if t, ok := s.parse(rest); ok {
				writeTrace(s.out, t, min(s.limit, 1000))
			}
		case ":bcl":
			if t, ok := s.parse(rest); ok {
				writeBCL(s.out, t)
			}
		case ":names":
			names := s.env.Names()
			sort.Strings(names)
			fmt.Fprintln(s.out, strings.Join(names, " "))
		case ":limit":
			if rest == "" {
				fmt.Fprintln(s.out, s.limit)
				break
			}
			n, err := strconv.Atoi(rest)
			if err != nil || n <= 0 {
				s.errorf("limit must be a positive integer")
				break
			}
			s.limit = n
		case ":stats":
			st := s.norm.Stats()
			fmt.Fprintf(s.out, "calls=%d steps=%d hits=%d misses=%d cycles=%d cached=%d\n",
				st.Calls, st.Steps, st.CacheHits, st.CacheMisses, st.CyclesProven, st.CachedTerms)
		case ":reset":
			s.norm.Reset()
		default:
			s.errorf("unknown command %s. Type :help for commands.", cmd)
		}
		return false
	}

	if name, src, ok := strings.Cut(line, "="); ok {
		name = strings.TrimSpace(name)
		if notation.IsIdentifier(name) {
			if _, err := s.env.DefineSource(name, src); err != nil {
				s.errorf("%v", err)
			}
			return false
		}
	}

	if t, ok := s.parse(line); ok {
		fmt.Fprintln(s.out, formatResult(s.norm.Normalize(t, s.limit), s.env, s.color))
	}
	return false
}

func (s *session) parse(src string) (ski.Term, bool) {
	t, err := notation.Parse(src, s.env)
	if err != nil {
		s.errorf("%v", err)
		return nil, false
	}
	return t, true
}

func cmdRepl(_ []string) (ret int) {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := newSession(os.Stdout, colorEnabled(os.Stdout))
	ln.SetCompleter(func(line string) []string {
		start := strings.LastIndexAny(line, " (") + 1
		prefix := line[start:]
		var out []string
		for _, name := range s.env.Names() {
			if strings.HasPrefix(name, prefix) {
				out = append(out, line[:start]+name)
			}
		}
		return out
	})

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if s.handle(line) {
			return 0
		}
	}
}
