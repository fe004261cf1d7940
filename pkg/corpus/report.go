package corpus

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
	"github.com/mattn/go-runewidth"

	"github.com/gitrdm/goski/pkg/ski"
)

// Style controls how a report is written.
type Style struct {
	// Color wraps PASS and FAIL in ANSI colours.
	Color bool

	// TimeLayout is a strftime layout for the header timestamp.
	TimeLayout string

	// MaxTermWidth truncates normal forms wider than this many columns.
	// Zero means no limit.
	MaxTermWidth int
}

// DefaultStyle returns a plain style with an ISO-like timestamp.
func DefaultStyle() Style {
	return Style{
		TimeLayout:   "%Y-%m-%d %H:%M:%S",
		MaxTermWidth: 60,
	}
}

func (s Style) paint(code, text string) string {
	if !s.Color {
		return text
	}
	return "\x1b[" + code + "m" + text + "\x1b[0m"
}

// WriteReport writes one aligned line per case followed by a summary.
//
//	corpus run 2026-01-02 15:04:05, 2 cases in 1.2ms
//	PASS  identity    normalized  3    x
//	FAIL  omega       limit       500  expected divergent
//	1 passed, 1 failed
func WriteReport(w io.Writer, r *Report, style Style) error {
	layout := style.TimeLayout
	if layout == "" {
		layout = DefaultStyle().TimeLayout
	}

	rows := make([][4]string, len(r.Results))
	var widths [3]int
	for i, cr := range r.Results {
		steps := "-"
		if cr.Ran {
			steps = strconv.Itoa(cr.Result.Steps)
		}
		row := [4]string{cr.Case.Name, outcomeLabel(cr), steps, detail(cr, style)}
		for c := 0; c < 3; c++ {
			widths[c] = max(widths[c], runewidth.StringWidth(row[c]))
		}
		rows[i] = row
	}

	var b strings.Builder
	fmt.Fprintf(&b, "corpus run %s, %d cases in %s\n", timefmt.Format(r.Started, layout), len(r.Results), r.Elapsed.Round(time.Microsecond))
	for i, cr := range r.Results {
		status := style.paint("32", "PASS")
		if !cr.Pass {
			status = style.paint("31", "FAIL")
		}
		row := rows[i]
		line := status + "  " +
			runewidth.FillRight(row[0], widths[0]) + "  " +
			runewidth.FillRight(row[1], widths[1]) + "  " +
			runewidth.FillRight(row[2], widths[2]) + "  " +
			row[3]
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d passed, %d failed\n", r.Passed(), r.Failed())

	_, err := io.WriteString(w, b.String())
	return err
}

func outcomeLabel(cr CaseResult) string {
	if !cr.Ran {
		return "error"
	}
	switch cr.Result.Outcome {
	case ski.Normalized:
		return "normalized"
	case ski.ProvenDivergent:
		return "divergent"
	}
	return "limit"
}

func detail(cr CaseResult, style Style) string {
	if cr.Err != nil {
		return cr.Err.Error()
	}
	var got string
	if cr.Result.Term != nil {
		got = cr.Result.Term.String()
		if style.MaxTermWidth > 0 {
			got = runewidth.Truncate(got, style.MaxTermWidth, "…")
		}
	}
	switch {
	case cr.Pass:
		return got
	case got != "":
		return "expected " + cr.Case.Expect + ", got " + got
	}
	return "expected " + cr.Case.Expect
}
