package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atelierweb/webaudit"
	"github.com/atelierweb/webaudit/internal/reporter"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate stored reports into class-wide statistics",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		store := webaudit.NewStore(getStringWithFallback("reports-dir", "reports.dir", "reports"))
		reports, err := store.LoadAll()
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			return fmt.Errorf("no reports found in %s", store.Dir)
		}

		stats := webaudit.ComputeStats(reports)
		if getBoolWithFallback("json", "stats.json", false) {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		r := reporter.New(os.Stdout,
			getBoolWithFallback("color", "color", false),
			getBoolWithFallback("verbose", "verbose", false))
		r.PrintStats(stats)
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print statistics as JSON")
}
