// Aggregates per-customer timings and per-server busy time into a run summary.

package sim

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates statistics about a simulation run for final reporting.
type Summary struct {
	TotalTime     float64   // max over servers of NextAvailable
	Customers     int       // number of customers simulated
	AvgWait       float64   // mean of WaitTime
	AvgService    float64   // mean of ServiceTime
	AvgTurnaround float64   // mean of TurnaroundTime
	MaxWait       float64   // largest WaitTime
	P50Wait       float64
	P95Wait       float64
	P95Turnaround float64
	Utilization   []float64 // BusyTime / TotalTime per server, in [0, 1]
	Served        []int     // customers per server
	StopReason    StopReason
}

// summarize computes a Summary. customers must be non-empty.
func summarize(customers []Customer, servers []ServerState) Summary {
	n := len(customers)
	waits := make([]float64, n)
	services := make([]float64, n)
	turnarounds := make([]float64, n)
	for i, c := range customers {
		waits[i] = c.WaitTime
		services[i] = c.ServiceTime
		turnarounds[i] = c.TurnaroundTime
	}

	ends := make([]float64, len(servers))
	for i, s := range servers {
		ends[i] = s.NextAvailable
	}
	total := floats.Max(ends)
	sortedWaits := sortedCopy(waits)
	sortedTurnarounds := sortedCopy(turnarounds)

	util := make([]float64, len(servers))
	served := make([]int, len(servers))
	for i, s := range servers {
		served[i] = s.Served
		if total > 0 {
			util[i] = s.BusyTime / total
		}
	}

	return Summary{
		TotalTime:     total,
		Customers:     n,
		AvgWait:       stat.Mean(waits, nil),
		AvgService:    stat.Mean(services, nil),
		AvgTurnaround: stat.Mean(turnarounds, nil),
		MaxWait:       floats.Max(waits),
		P50Wait:       CalculatePercentile(sortedWaits, 50),
		P95Wait:       CalculatePercentile(sortedWaits, 95),
		P95Turnaround: CalculatePercentile(sortedTurnarounds, 95),
		Utilization:   util,
		Served:        served,
	}
}

// Print writes the summary in the same layout the CLI reports it.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Summary ===")
	fmt.Fprintf(w, "Total Simulation Time : %.6f\n", s.TotalTime)
	fmt.Fprintf(w, "Total Customers       : %d\n", s.Customers)
	fmt.Fprintf(w, "Average Wait Time     : %.6f\n", s.AvgWait)
	fmt.Fprintf(w, "Average Service Time  : %.6f\n", s.AvgService)
	fmt.Fprintf(w, "Average Turnaround    : %.6f\n", s.AvgTurnaround)
	fmt.Fprintf(w, "Max Wait Time         : %.6f\n", s.MaxWait)
	fmt.Fprintf(w, "P50 / P95 Wait Time   : %.6f / %.6f\n", s.P50Wait, s.P95Wait)
	fmt.Fprintf(w, "P95 Turnaround        : %.6f\n", s.P95Turnaround)
	if s.StopReason != StopReasonNone {
		fmt.Fprintf(w, "Stop Reason           : %s\n", s.StopReason)
	}
	fmt.Fprintln(w, "Server Utilization:")
	for i, u := range s.Utilization {
		fmt.Fprintf(w, "  Server %d: %6.2f%% (%d customers)\n", i+1, u*100, s.Served[i])
	}
}
