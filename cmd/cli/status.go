package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-pilot/internal/core"
)

var (
	outputJSON  bool
	statusLimit int
	statusRef   string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows recent review runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		appInstance, _, err := initApp(cmd)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		var runs []core.RunRecord
		if statusRef != "" {
			rec, refErr := appInstance.Runs.LatestRunForRef(cmd.Context(), statusRef)
			if refErr != nil {
				return refErr
			}
			runs = []core.RunRecord{*rec}
		} else {
			runs, err = appInstance.Runs.ListRecentRuns(cmd.Context(), statusLimit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(runs)
		}

		if len(runs) == 0 {
			fmt.Println("No review runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RUN\tSOURCE\tSTATUS\tDECISION\tCOMMENTS\tFINISHED")
		for _, run := range runs {
			decision := run.Decision
			if decision == "" {
				decision = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				shortID(run.RunID),
				run.SourceRef,
				run.Status,
				decision,
				run.CommentCount,
				run.FinishedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output status as JSON")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "Number of runs to show")
	statusCmd.Flags().StringVar(&statusRef, "ref", "", "Show only the latest run for this pull request URL")
	rootCmd.AddCommand(statusCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
