package sim

import (
	"math/rand"
	"testing"
)

// constSource returns the same draw forever.
type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

// newRunningEngine configures and starts an engine, failing the test on error.
func newRunningEngine(t *testing.T, cfg SimulationConfig, seed int64) *Engine {
	t.Helper()
	e := NewEngine(rand.New(rand.NewSource(seed)))
	if err := e.Configure(cfg); err != nil {
		t.Fatalf("Configure(%+v): %v", cfg, err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return e
}

// runToStop steps e until it stops or limit steps have been taken.
func runToStop(t *testing.T, e *Engine, limit int) []StepResult {
	t.Helper()
	var results []StepResult
	for i := 0; i < limit; i++ {
		res, err := e.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		results = append(results, res)
		if res.Stopped {
			return results
		}
	}
	t.Fatalf("engine did not stop within %d steps", limit)
	return nil
}
