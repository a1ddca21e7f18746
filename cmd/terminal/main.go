// Command terminal is an interactive viewer for a single review run.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/review-pilot/internal/app"
	"github.com/sevigo/review-pilot/internal/config"
	"github.com/sevigo/review-pilot/internal/core"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [pr-url]\n\nRuns one review and shows its progress and verdict.\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	prURL := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; application logs would tear the screen.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	application, err := app.NewApp(context.Background(), cfg, log)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	p := tea.NewProgram(initialModel(prURL), tea.WithAltScreen())

	go func() {
		st := application.Runner.Run(context.Background(), core.ReviewRequest{SourceRef: prURL})
		if application.Runs != nil {
			_ = application.Runs.SaveRun(context.Background(), core.RecordFromRunState(st))
		}
		p.Send(runFinishedMsg{state: st})
	}()

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
