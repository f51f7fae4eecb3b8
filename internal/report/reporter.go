// Package report renders the final compatibility report after a run.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"nuverify/internal/analyzer"
)

const summaryElapsedPrecision = 100 * time.Millisecond

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	pathStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Reporter writes the run report to one destination.
type Reporter struct {
	out     io.Writer
	verbose bool
}

// New creates a reporter. Verbose mode also lists every compatible script.
func New(out io.Writer, verbose bool) *Reporter {
	return &Reporter{out: out, verbose: verbose}
}

// Print renders the full report: incompatible scripts with their issues
// first, then failures, then (in verbose mode) the compatible scripts, and
// finally the run summary.
func (r *Reporter) Print(analyses []analyzer.Analysis, summary analyzer.Summary) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, titleStyle.Render("Nushell Compatibility Report"))
	fmt.Fprintln(r.out, dimStyle.Render("target version: "+summary.TargetVersion))
	fmt.Fprintln(r.out)

	var incompatible, failed, compatible []analyzer.Analysis
	for _, a := range analyses {
		switch {
		case a.Err != nil:
			failed = append(failed, a)
		case a.IsCompatible:
			compatible = append(compatible, a)
		default:
			incompatible = append(incompatible, a)
		}
	}

	if len(incompatible) > 0 {
		fmt.Fprintln(r.out, sectionStyle.Render(fmt.Sprintf("Incompatible scripts (%d)", len(incompatible))))
		for _, a := range incompatible {
			r.printIncompatible(a)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintln(r.out, sectionStyle.Render(fmt.Sprintf("Analysis failures (%d)", len(failed))))
		for _, a := range failed {
			fmt.Fprintf(r.out, "  %s %s\n", errorStyle.Render("!"), pathStyle.Render(a.Script.Path))
			fmt.Fprintf(r.out, "    %s\n", dimStyle.Render(a.Err.Error()))
		}
		fmt.Fprintln(r.out)
	}

	if r.verbose && len(compatible) > 0 {
		fmt.Fprintln(r.out, sectionStyle.Render(fmt.Sprintf("Compatible scripts (%d)", len(compatible))))
		for _, a := range compatible {
			note := "analyzed"
			if a.Skipped {
				note = "skipped"
			}
			fmt.Fprintf(r.out, "  %s %s %s\n",
				okStyle.Render("✓"), a.Script.Path,
				dimStyle.Render(fmt.Sprintf("(%s, from %s)", note, a.Script.Method)))
		}
		fmt.Fprintln(r.out)
	}

	r.printSummary(summary)
}

func (r *Reporter) printIncompatible(a analyzer.Analysis) {
	fmt.Fprintf(r.out, "  %s %s %s\n",
		errorStyle.Render("✗"),
		pathStyle.Render(a.Script.Path),
		dimStyle.Render(fmt.Sprintf("(known compatible: %s)", a.Script.CompatibleVersion)))
	for _, iss := range a.Issues {
		fmt.Fprintf(r.out, "    %s %s\n", severityTag(iss.Severity), iss.Description)
		if iss.SuggestedFix != "" {
			fmt.Fprintf(r.out, "      %s\n", dimStyle.Render("fix: "+iss.SuggestedFix))
		}
	}
	fmt.Fprintln(r.out)
}

func severityTag(s analyzer.Severity) string {
	switch s {
	case analyzer.SeverityError:
		return errorStyle.Render("[error]")
	case analyzer.SeverityInfo:
		return infoStyle.Render("[info]")
	default:
		return warningStyle.Render("[warning]")
	}
}

func (r *Reporter) printSummary(summary analyzer.Summary) {
	var verdict string
	switch {
	case summary.Total == 0:
		verdict = dimStyle.Render("no Nushell scripts found")
	case summary.Incompatible == 0 && summary.Failed == 0:
		verdict = okStyle.Render("all scripts compatible")
	default:
		verdict = errorStyle.Render(fmt.Sprintf("%d of %d scripts need attention",
			summary.Incompatible+summary.Failed, summary.Total))
	}

	parts := []string{
		fmt.Sprintf("%d scanned", summary.Total),
		fmt.Sprintf("%d compatible", summary.Compatible),
		fmt.Sprintf("%d incompatible", summary.Incompatible),
	}
	if summary.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", summary.Failed))
	}
	if summary.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d stamps updated", summary.Updated))
	}
	parts = append(parts,
		fmt.Sprintf("cache %d hit / %d miss", summary.CacheHits, summary.CacheMisses),
		summary.Elapsed.Round(summaryElapsedPrecision).String())

	fmt.Fprintln(r.out, verdict)
	fmt.Fprintln(r.out, dimStyle.Render(strings.Join(parts, " · ")))
}
