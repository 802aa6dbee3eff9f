// sim/engine.go
package sim

import (
	"fmt"
	"math"

	"github.com/queue-sim/queue-sim/sim/distribution"
)

// EngineState is the lifecycle state of an Engine.
type EngineState string

const (
	StateIdle    EngineState = "idle"
	StateRunning EngineState = "running"
	StatePaused  EngineState = "paused"
	StateStopped EngineState = "stopped"
)

// StopReason records why an engine left the running state for good.
type StopReason string

const (
	StopReasonNone      StopReason = ""
	StopReasonThreshold StopReason = "threshold" // cumulative probability exceeded the threshold
	StopReasonRequested StopReason = "requested" // Stop() was called
)

// StepResult is the outcome of one Engine.Step call.
type StepResult struct {
	Customer              Customer
	CumulativeProbability float64
	Stopped               bool
	// Candidates holds every server's NextAvailable at selection time,
	// indexed by server. Customer.Server is the argmin.
	Candidates []float64
}

// Engine owns the state of one queueing simulation run: the arrival clock,
// the customer sequence, per-server state and the stopping counter.
//
// Lifecycle: Configure → Start → Step* → Summarize. Reset returns to idle
// with the same configuration.
//
// Thread-safety: NOT thread-safe. Concurrent simulations must each own an
// Engine and an independent Source.
type Engine struct {
	cfg        resolvedConfig
	configured bool
	src        distribution.Source
	arrivals   distribution.Sampler
	service    distribution.Sampler

	state      EngineState
	stopReason StopReason
	clock      float64
	nextID     int
	cp         float64
	servers    []ServerState
	customers  CustomerLog
}

// NewEngine creates an unconfigured engine drawing from src.
func NewEngine(src distribution.Source) *Engine {
	if src == nil {
		panic("NewEngine: src must not be nil")
	}
	return &Engine{src: src, state: StateIdle, nextID: 1}
}

// Configure validates cfg, builds the arrival and service samplers and
// resets the engine. On error the engine is left unchanged.
func (e *Engine) Configure(cfg SimulationConfig) error {
	rc, err := cfg.resolve()
	if err != nil {
		return err
	}
	arrivals, err := distribution.NewExponential(rc.ArrivalRate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	service, err := distribution.NewSampler(distribution.ServiceSpec(rc.kind, rc.ServiceRate))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	e.cfg = rc
	e.arrivals = arrivals
	e.service = service
	e.configured = true
	e.Reset()
	return nil
}

// Reset clears all run state and returns the engine to idle. The
// configuration, if any, is kept.
func (e *Engine) Reset() {
	e.state = StateIdle
	e.stopReason = StopReasonNone
	e.clock = 0
	e.nextID = 1
	e.cp = 0
	e.customers.Clear()
	if e.configured {
		e.servers = make([]ServerState, e.cfg.Servers)
	} else {
		e.servers = nil
	}
}

// Start moves a configured, idle engine to running.
func (e *Engine) Start() error {
	if !e.configured {
		return fmt.Errorf("%w: start before configure", ErrInvalidState)
	}
	if e.state != StateIdle {
		return fmt.Errorf("%w: start requires %s, engine is %s", ErrInvalidState, StateIdle, e.state)
	}
	e.state = StateRunning
	return nil
}

// Step simulates exactly one arrival:
//  1. sample the interarrival gap and advance the arrival clock
//  2. sample the service time
//  3. pick the least-available server (lowest index on ties)
//  4. compute start/end/wait/turnaround and book the server
//  5. append the customer
//  6. update the cumulative probability and stop if it crosses the threshold
func (e *Engine) Step() (StepResult, error) {
	if e.state != StateRunning {
		return StepResult{}, fmt.Errorf("%w: step requires %s, engine is %s", ErrInvalidState, StateRunning, e.state)
	}

	gap := e.arrivals.Sample(e.src)
	svc := e.service.Sample(e.src)
	arrival := e.clock + gap.Value

	candidates := make([]float64, len(e.servers))
	for i, s := range e.servers {
		candidates[i] = s.NextAvailable
	}
	idx := LeastAvailable(e.servers)
	start, end := assign(&e.servers[idx], arrival, svc.Value)

	c := Customer{
		ID:               e.nextID,
		InterarrivalTime: gap.Value,
		ArrivalTime:      arrival,
		ServiceTime:      svc.Value,
		Server:           idx,
		StartTime:        start,
		EndTime:          end,
		WaitTime:         start - arrival,
		TurnaroundTime:   end - arrival,
		ArrivalUniform:   gap.Uniform,
		ServiceUniform:   svc.Uniform,
	}
	e.customers.Append(c)
	e.nextID++
	e.clock = arrival

	stopped := e.advanceProbability(gap.Uniform)
	if stopped {
		e.state = StateStopped
		e.stopReason = StopReasonThreshold
	}
	return StepResult{
		Customer:              c,
		CumulativeProbability: e.cp,
		Stopped:               stopped,
		Candidates:            candidates,
	}, nil
}

// advanceProbability updates the cumulative probability counter after an
// arrival and reports whether the run has reached its stopping point.
func (e *Engine) advanceProbability(arrivalUniform float64) bool {
	switch e.cfg.StopRule {
	case StopRuleUniformSum:
		if e.cp+arrivalUniform > e.cfg.StopThreshold {
			return true
		}
		e.cp += arrivalUniform
		return false
	default:
		// -expm1(-x) == 1 - exp(-x) without cancellation for small x.
		e.cp = -math.Expm1(-e.cfg.ArrivalRate * e.clock)
		return e.cp > e.cfg.StopThreshold
	}
}

// Pause suspends a running engine. No-op in any other state.
func (e *Engine) Pause() {
	if e.state == StateRunning {
		e.state = StatePaused
	}
}

// Resume continues a paused engine.
func (e *Engine) Resume() error {
	if e.state != StatePaused {
		return fmt.Errorf("%w: resume requires %s, engine is %s", ErrInvalidState, StatePaused, e.state)
	}
	e.state = StateRunning
	return nil
}

// Stop ends a started run. Accumulated customers and server state are kept
// for Summarize. No-op when idle or already stopped.
func (e *Engine) Stop() {
	if e.state == StateRunning || e.state == StatePaused {
		e.state = StateStopped
		e.stopReason = StopReasonRequested
	}
}

// State returns the engine's lifecycle state.
func (e *Engine) State() EngineState {
	return e.state
}

// StopReason returns why the engine stopped, or StopReasonNone.
func (e *Engine) StopReason() StopReason {
	return e.stopReason
}

// Config returns the effective configuration, with defaults applied.
// The zero value is returned before Configure succeeds.
func (e *Engine) Config() SimulationConfig {
	return e.cfg.SimulationConfig
}

// Clock returns the current arrival clock.
func (e *Engine) Clock() float64 {
	return e.clock
}

// CumulativeProbability returns the current stopping counter.
func (e *Engine) CumulativeProbability() float64 {
	return e.cp
}

// Customers returns a copy of the customer log.
func (e *Engine) Customers() []Customer {
	return e.customers.Snapshot()
}

// Servers returns a copy of the per-server state.
func (e *Engine) Servers() []ServerState {
	out := make([]ServerState, len(e.servers))
	copy(out, e.servers)
	return out
}

// Summarize aggregates the customers simulated so far.
// Returns ErrEmptyResult if there are none.
func (e *Engine) Summarize() (Summary, error) {
	if e.customers.Len() == 0 {
		return Summary{}, ErrEmptyResult
	}
	s := summarize(e.customers.Items(), e.servers)
	s.StopReason = e.stopReason
	return s, nil
}
