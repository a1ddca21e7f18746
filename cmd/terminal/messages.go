package main

import (
	"time"

	"github.com/sevigo/review-pilot/internal/core"
)

// runFinishedMsg carries the terminal state of the review run into the UI.
type runFinishedMsg struct {
	state *core.RunState
}

// tickMsg drives the elapsed-time display while the run is in flight.
type tickMsg time.Time
