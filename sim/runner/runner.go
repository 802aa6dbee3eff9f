// Package runner drives a sim.Engine: it steps the engine until it stops,
// forwards each customer to optional recorders and traces, and runs
// independent replications concurrently.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/queue-sim/queue-sim/sim"
	"github.com/queue-sim/queue-sim/sim/trace"
)

// Recorder receives every simulated customer in id order.
type Recorder interface {
	Record(c sim.Customer) error
	Flush() error
}

// Options configures a single run.
type Options struct {
	MaxCustomers int                    // stop the engine after this many customers (0 = no cap)
	Recorder     Recorder               // optional customer sink
	Trace        *trace.SimulationTrace // optional assignment trace
	OnStep       func(sim.StepResult)   // optional observer, called after recording
}

// Result is the outcome of Run.
type Result struct {
	Customers             []sim.Customer
	Summary               sim.Summary // zero value if no customer was simulated
	Steps                 int
	CumulativeProbability float64
	Cancelled             bool
}

// Run steps e until it stops on its own, MaxCustomers is reached, or ctx is
// cancelled. An idle engine is started and a paused one resumed. Cancellation
// is checked between steps only and pauses the engine; the partial result is
// returned together with ctx.Err().
func Run(ctx context.Context, e *sim.Engine, opts Options) (*Result, error) {
	switch e.State() {
	case sim.StateIdle:
		if err := e.Start(); err != nil {
			return nil, err
		}
	case sim.StatePaused:
		if err := e.Resume(); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	for e.State() == sim.StateRunning {
		if err := ctx.Err(); err != nil {
			e.Pause()
			result.Cancelled = true
			logrus.Infof("Run cancelled after %d customers: %v", result.Steps, err)
			break
		}

		res, err := e.Step()
		if err != nil {
			return nil, err
		}
		result.Steps++
		c := res.Customer
		logrus.Debugf("Customer %d: Arrived at %.6f, Assigned to Server %d, Start: %.6f, End: %.6f, CP: %.6f",
			c.ID, c.ArrivalTime, c.Server+1, c.StartTime, c.EndTime, res.CumulativeProbability)

		if opts.Recorder != nil {
			if err := opts.Recorder.Record(c); err != nil {
				return nil, fmt.Errorf("record customer %d: %w", c.ID, err)
			}
		}
		if opts.Trace != nil {
			opts.Trace.RecordAssignment(trace.NewAssignmentRecord(c.ID, c.ArrivalTime, c.Server, res.Candidates))
		}
		if opts.OnStep != nil {
			opts.OnStep(res)
		}

		if res.Stopped {
			logrus.Infof("Simulation stopped at CP %.6f (final arrival %.6f)", res.CumulativeProbability, c.ArrivalTime)
			break
		}
		if opts.MaxCustomers > 0 && result.Steps >= opts.MaxCustomers {
			logrus.Infof("Reached max customers (%d); stopping", opts.MaxCustomers)
			e.Stop()
		}
	}

	if opts.Recorder != nil {
		if err := opts.Recorder.Flush(); err != nil {
			return nil, fmt.Errorf("flush recorder: %w", err)
		}
	}

	result.Customers = e.Customers()
	result.CumulativeProbability = e.CumulativeProbability()
	summary, err := e.Summarize()
	switch {
	case err == nil:
		result.Summary = summary
	case !errors.Is(err, sim.ErrEmptyResult):
		return nil, err
	}

	if result.Cancelled {
		return result, ctx.Err()
	}
	return result, nil
}
