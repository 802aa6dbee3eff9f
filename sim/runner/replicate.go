package runner

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/queue-sim/queue-sim/sim"
)

// ReplicationConfig describes a batch of independent runs of one model.
type ReplicationConfig struct {
	Sim          sim.SimulationConfig
	Replications int   // number of independent runs (must be >= 1)
	Seed         int64 // master seed; replica i draws from SubsystemReplica(i)
	Parallelism  int   // max concurrent runs (0 = GOMAXPROCS)
	MaxCustomers int   // per-run cap, see Options.MaxCustomers
}

// Aggregate holds the arithmetic means of replica summaries.
type Aggregate struct {
	Replications      int
	MeanCustomers     float64
	MeanTotalTime     float64
	MeanAvgWait       float64
	MeanAvgService    float64
	MeanAvgTurnaround float64
	MeanUtilization   []float64 // per server
}

// Replicate runs rc.Replications engines concurrently. Each engine owns an
// RNG derived from the master seed on the calling goroutine, so results
// depend only on rc and not on scheduling. Results are indexed by replica.
func Replicate(ctx context.Context, rc ReplicationConfig) ([]*Result, Aggregate, error) {
	if rc.Replications < 1 {
		return nil, Aggregate{}, fmt.Errorf("%w: replications must be >= 1, got %d", sim.ErrValidation, rc.Replications)
	}
	if err := rc.Sim.Validate(); err != nil {
		return nil, Aggregate{}, err
	}
	parallelism := rc.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(rc.Seed))
	engines := make([]*sim.Engine, rc.Replications)
	for i := range engines {
		engines[i] = sim.NewEngine(rng.ForSubsystem(sim.SubsystemReplica(i)))
		if err := engines[i].Configure(rc.Sim); err != nil {
			return nil, Aggregate{}, err
		}
	}

	logrus.Infof("Running %d replications (parallelism=%d, seed=%d)", rc.Replications, parallelism, rc.Seed)

	results := make([]*Result, rc.Replications)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, e := range engines {
		i, e := i, e // per-iteration copies (module targets go 1.21 loop semantics)
		g.Go(func() error {
			res, err := Run(gctx, e, Options{MaxCustomers: rc.MaxCustomers})
			if err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			logrus.WithField("replica", i).Debugf("completed with %d customers", res.Steps)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Aggregate{}, err
	}
	return results, aggregate(results, rc.Sim.Servers), nil
}

// aggregate averages replica summaries with equal weight.
func aggregate(results []*Result, servers int) Aggregate {
	n := len(results)
	customers := make([]float64, n)
	totals := make([]float64, n)
	waits := make([]float64, n)
	services := make([]float64, n)
	turnarounds := make([]float64, n)
	utilization := make([][]float64, servers)
	for s := range utilization {
		utilization[s] = make([]float64, n)
	}
	for i, r := range results {
		customers[i] = float64(r.Summary.Customers)
		totals[i] = r.Summary.TotalTime
		waits[i] = r.Summary.AvgWait
		services[i] = r.Summary.AvgService
		turnarounds[i] = r.Summary.AvgTurnaround
		for s, u := range r.Summary.Utilization {
			utilization[s][i] = u
		}
	}

	agg := Aggregate{
		Replications:      n,
		MeanCustomers:     stat.Mean(customers, nil),
		MeanTotalTime:     stat.Mean(totals, nil),
		MeanAvgWait:       stat.Mean(waits, nil),
		MeanAvgService:    stat.Mean(services, nil),
		MeanAvgTurnaround: stat.Mean(turnarounds, nil),
		MeanUtilization:   make([]float64, servers),
	}
	for s := range utilization {
		agg.MeanUtilization[s] = stat.Mean(utilization[s], nil)
	}
	return agg
}
