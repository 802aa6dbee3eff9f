package cmd

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/queue-sim/queue-sim/sim"
	"github.com/queue-sim/queue-sim/sim/runner"
	"github.com/queue-sim/queue-sim/sim/trace"
)

// PrintCustomers writes one row per customer, in arrival order.
func PrintCustomers(w io.Writer, customers []sim.Customer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tInterarrival\tArrival\tService\tServer\tStart\tEnd\tWait\tTurnaround\t")
	for _, c := range customers {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t\n",
			c.ID, c.InterarrivalTime, c.ArrivalTime, c.ServiceTime, c.Server+1,
			c.StartTime, c.EndTime, c.WaitTime, c.TurnaroundTime)
	}
	tw.Flush()
}

// PrintTraceSummary writes the assignment trace statistics.
func PrintTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Assignment Trace ===")
	fmt.Fprintf(w, "Decisions        : %d\n", ts.TotalDecisions)
	fmt.Fprintf(w, "Immediate starts : %d\n", ts.ImmediateStarts)
	fmt.Fprintf(w, "Delayed starts   : %d\n", ts.DelayedStarts)
	fmt.Fprintf(w, "Mean delay       : %.4f\n", ts.MeanDelay)
	fmt.Fprintf(w, "Max delay        : %.4f\n", ts.MaxDelay)

	ids := make([]int, 0, len(ts.ServerDistribution))
	for id := range ts.ServerDistribution {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  Server %d: %d assignments\n", id+1, ts.ServerDistribution[id])
	}
}

// PrintReplications writes one line per replica followed by the averages.
func PrintReplications(w io.Writer, results []*runner.Result, agg runner.Aggregate) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Replica\tCustomers\tTotal Time\tAvg Wait\tAvg Service\tAvg Turnaround\t")
	for i, r := range results {
		s := r.Summary
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t\n",
			i, s.Customers, s.TotalTime, s.AvgWait, s.AvgService, s.AvgTurnaround)
	}
	tw.Flush()

	fmt.Fprintf(w, "=== Replication Averages (%d runs) ===\n", agg.Replications)
	fmt.Fprintf(w, "Customers      : %.2f\n", agg.MeanCustomers)
	fmt.Fprintf(w, "Total time     : %.4f\n", agg.MeanTotalTime)
	fmt.Fprintf(w, "Avg wait       : %.4f\n", agg.MeanAvgWait)
	fmt.Fprintf(w, "Avg service    : %.4f\n", agg.MeanAvgService)
	fmt.Fprintf(w, "Avg turnaround : %.4f\n", agg.MeanAvgTurnaround)
	for i, u := range agg.MeanUtilization {
		fmt.Fprintf(w, "  Server %d: %6.2f%%\n", i+1, u*100)
	}
}
