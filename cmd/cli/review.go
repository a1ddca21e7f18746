package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/review-pilot/internal/core"
)

var verbose bool

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Run a context-aware review for a GitHub Pull Request",
	Long: `Run a context-aware review for a GitHub Pull Request.

The review command fetches the PR diff, resolves ticket and documentation
context, and uses an LLM to generate a structured review. The result is
posted to the pull request and printed here.

Examples:
  pilot-cli review https://github.com/owner/repo/pull/123
  pilot-cli review --verbose https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	prURL := args[0]

	titleColor.Println("Review Pilot - PR Review")
	dimColor.Printf("   Target: %s\n\n", prURL)

	appInstance, _, err := initApp(cmd)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	overallStart := time.Now()
	fmt.Println("Running review...")

	st := appInstance.Runner.Run(cmd.Context(), core.ReviewRequest{SourceRef: prURL})

	if appInstance.Runs != nil {
		if saveErr := appInstance.Runs.SaveRun(cmd.Context(), core.RecordFromRunState(st)); saveErr != nil {
			dimColor.Printf("   (could not persist run record: %v)\n", saveErr)
		}
	}

	if verbose {
		printTimings(st)
		dimColor.Printf("\nTotal time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}

	if st.Err != nil {
		errorColor.Printf("\nReview failed: %v\n", st.Err)
		return fmt.Errorf("review of %s did not complete", prURL)
	}

	printVerdict(st.Verdict)
	return nil
}

func printTimings(st *core.RunState) {
	fmt.Println()
	dimColor.Printf("Run %s\n", st.RunID)
	for _, t := range st.Timings {
		dimColor.Printf("   %-20s %s\n", t.State, t.Duration.Round(time.Millisecond))
	}
}

func printVerdict(verdict *core.ReviewVerdict) {
	separator := strings.Repeat("=", 60)
	thinSeparator := strings.Repeat("-", 60)

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Printf("REVIEW VERDICT: %s\n", verdict.Decision)
	titleColor.Println(separator)
	fmt.Println()
	infoColor.Println(verdict.Summary)

	if len(verdict.Comments) == 0 {
		fmt.Println()
		successColor.Println("No line comments.")
		return
	}

	fmt.Println()
	warnColor.Println(thinSeparator)
	warnColor.Printf("COMMENTS (%d)\n", len(verdict.Comments))
	warnColor.Println(thinSeparator)

	for i, c := range verdict.Comments {
		fmt.Println()
		printSeverityBadge(c.Severity)
		boldColor.Printf(" %s", c.FilePath)
		if c.Line > 0 {
			dimColor.Printf(":%d", c.Line)
		}
		fmt.Println()
		fmt.Println()
		infoColor.Printf("%s\n", c.Body)

		if i < len(verdict.Comments)-1 {
			fmt.Println()
			dimColor.Println(strings.Repeat("-", 40))
		}
	}
	fmt.Println()
}

func printSeverityBadge(severity string) {
	switch severity {
	case "Critical":
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", severity)
	case "High":
		color.New(color.BgHiRed, color.FgWhite).Printf(" %s ", severity)
	case "Medium":
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", severity)
	case "Low":
		color.New(color.BgGreen, color.FgWhite).Printf(" %s ", severity)
	default:
		color.New(color.BgWhite, color.FgBlack).Printf(" %s ", severity)
	}
}
