package engine

import (
	"log/slog"
	"time"
)

// Ticker drives turn advancement on a wall-clock interval. Game turns are
// coarse (a minute or more of real time each), so a simple sleep loop is
// enough; Speed scales the interval for accelerated test sessions.
type Ticker struct {
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base turn interval
	Running  bool

	// OnTurn is called with each new turn number. Populated during setup.
	OnTurn func(turn int) error

	sim *Simulation
}

// NewTicker creates a ticker over a simulation with the given base interval.
func NewTicker(sim *Simulation, interval time.Duration) *Ticker {
	return &Ticker{
		Speed:    1.0,
		Interval: interval,
		sim:      sim,
	}
}

// Run starts the turn loop. Blocks until Stop() is called.
func (t *Ticker) Run() {
	t.Running = true
	slog.Info("turn ticker started", "turn", t.sim.CurrentTurn(), "interval", t.Interval, "speed", t.Speed)

	for t.Running {
		if t.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		next := t.sim.CurrentTurn() + 1
		if err := t.sim.AdvanceTurn(next); err != nil {
			slog.Error("turn advance failed", "turn", next, "error", err)
		} else if t.OnTurn != nil {
			if err := t.OnTurn(next); err != nil {
				slog.Error("turn callback failed", "turn", next, "error", err)
			}
		}

		// Sleep for the remainder of the interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(t.Interval) / t.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("turn ticker stopped", "turn", t.sim.CurrentTurn())
}

// Stop halts the turn loop after the current turn finishes.
func (t *Ticker) Stop() {
	t.Running = false
}
