package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelierweb/webaudit"
	"github.com/atelierweb/webaudit/internal/reporter"
	"github.com/atelierweb/webaudit/internal/site"
)

var auditCmd = &cobra.Command{
	Use:   "audit <url|directory>",
	Short: "Audit one project and store its report",
	Long: `Fetch a project's pages and stylesheets, run every analyzer and
print the graded result. With --local the argument is a directory of
HTML and CSS files instead of a URL.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runAudit,
}

func init() {
	f := auditCmd.Flags()
	f.Bool("local", false, "Audit a local directory instead of a URL")
	f.Int("max-pages", 5, "Maximum pages to crawl from the entry page")
	f.Int("timeout", 15, "HTTP timeout in seconds")
	f.Bool("no-save", false, "Do not write the JSON report")
	f.Bool("json", false, "Print the report as JSON instead of text")
}

func runAudit(cmd *cobra.Command, args []string) error {
	target := args[0]
	quiet := getBoolWithFallback("quiet", "quiet", false)

	input, err := collectInput(cmd.Context(), target)
	if err != nil {
		return err
	}

	timeout := time.Duration(getIntWithFallback("timeout", "audit.timeout", 15)) * time.Second
	report := webaudit.New(&http.Client{Timeout: timeout}).Run(input)

	if !getBoolWithFallback("no-save", "audit.no-save", false) {
		store := webaudit.NewStore(getStringWithFallback("reports-dir", "reports.dir", "reports"))
		path, err := store.Save(report)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", path)
		}
	}

	if quiet {
		return nil
	}
	if getBoolWithFallback("json", "audit.json", false) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	r := reporter.New(os.Stdout,
		getBoolWithFallback("color", "color", false),
		getBoolWithFallback("verbose", "verbose", false))
	r.PrintReport(report)
	return nil
}

func collectInput(ctx context.Context, target string) (webaudit.ProjectInput, error) {
	if getBoolWithFallback("local", "audit.local", false) {
		input, stats, err := site.LoadLocal(target)
		if err != nil {
			return input, err
		}
		if getBoolWithFallback("verbose", "verbose", false) && stats.FilesSkipped > 0 {
			fmt.Fprintf(os.Stderr, "✓ Scanned %d files (skipped %d generated/ignored files)\n",
				stats.FilesScanned, stats.FilesSkipped)
		}
		return input, nil
	}

	timeout := time.Duration(getIntWithFallback("timeout", "audit.timeout", 15)) * time.Second
	return site.FetchProject(ctx, target, &site.Options{
		Client:   &http.Client{Timeout: timeout},
		MaxPages: getIntWithFallback("max-pages", "audit.max-pages", 5),
	})
}
