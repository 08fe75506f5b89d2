// Package reporter renders audit reports and class statistics for the
// terminal.
package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/atelierweb/webaudit"
	"github.com/atelierweb/webaudit/internal/analyzer"
)

// Reporter formats audit results for a terminal or CI log.
type Reporter struct {
	w         io.Writer
	useColors bool
	verbose   bool
}

// New creates a reporter. forceColors overrides auto-detection.
func New(w io.Writer, forceColors, verbose bool) *Reporter {
	return &Reporter{
		w:         w,
		useColors: forceColors || shouldUseColors(),
		verbose:   verbose,
	}
}

// shouldUseColors determines if colors should be enabled
func shouldUseColors() bool {
	// Check for FORCE_COLOR environment variable (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// GitHub Actions supports colors
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	// Auto-detect TTY
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		return true
	}

	return false
}

// PrintReport writes the per-analyzer scores, and in verbose mode the
// criterion breakdown and improvement hints behind each one.
func (r *Reporter) PrintReport(report *webaudit.AuditReport) {
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(r.w, "")
	cyan.Fprintf(r.w, "Audit %s\n", report.ProjectURL)
	fmt.Fprintln(r.w, "=========================")

	scores := report.Scores()
	for _, key := range webaudit.ScoreKeys {
		result := scores[key]
		grade := RenderStyle(gradeStyle(result.Grade), result.Grade, r.useColors)
		fmt.Fprintf(r.w, "%-18s %3d/100  %s\n", key, result.Total, grade)

		if !r.verbose {
			continue
		}
		for _, name := range sortedCriteria(result.Breakdown) {
			c := result.Breakdown[name]
			line := fmt.Sprintf("    %-24s %2d/%-2d  %s", name, c.Score, c.Max, c.Details)
			fmt.Fprintln(r.w, RenderStyle(StyleGray, line, r.useColors))
		}
	}

	r.printImprovements(scores)

	if len(report.ValidationErrors) > 0 {
		fmt.Fprintln(r.w, "")
		redHeader := color.New(color.FgRed, color.Bold)
		redHeader.Fprintf(r.w, "Erreurs de validation (%d)\n", len(report.ValidationErrors))
		for _, msg := range report.ValidationErrors {
			fmt.Fprintf(r.w, "  - %s\n", msg)
		}
	}
}

// printImprovements lists the improvement hints of every analyzer that
// produced some, grouped under one section.
func (r *Reporter) printImprovements(scores map[string]analyzer.ScoreResult) {
	total := 0
	for _, key := range webaudit.ScoreKeys {
		total += len(scores[key].Improvements)
	}
	if total == 0 {
		return
	}

	green := color.New(color.FgGreen, color.Bold)
	fmt.Fprintln(r.w, "")
	green.Fprintln(r.w, "🎯 PISTES D'AMÉLIORATION")
	fmt.Fprintln(r.w, "------------------------")
	for _, key := range webaudit.ScoreKeys {
		for _, hint := range scores[key].Improvements {
			fmt.Fprintf(r.w, "  [%s] %s\n", key, hint)
		}
	}
}

func sortedCriteria(breakdown map[string]analyzer.Criterion) []string {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PrintStats renders class-wide aggregates as a table.
func (r *Reporter) PrintStats(stats webaudit.ClassStats) {
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(r.w, "")
	cyan.Fprintf(r.w, "Statistiques de la classe (%d projets)\n", stats.Projects)

	table := tablewriter.NewWriter(r.w)
	table.Header([]string{"Critère", "Moyenne", "Médiane", "Min", "Max"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var rows [][]string
	rows = append(rows, statsRow(stats.Overall))
	for _, s := range stats.ByKey {
		rows = append(rows, statsRow(s))
	}
	if err := table.Bulk(rows); err == nil {
		table.Render()
	}
}

func statsRow(s webaudit.ScoreStats) []string {
	return []string{
		s.Key,
		fmt.Sprintf("%.1f", s.Mean),
		fmt.Sprintf("%.1f", s.Median),
		fmt.Sprintf("%d", s.Min),
		fmt.Sprintf("%d", s.Max),
	}
}
