// Package trace provides assignment-decision recording for server selection analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import "fmt"

// AssignmentRecord captures a single server-selection decision.
type AssignmentRecord struct {
	CustomerID   int
	Clock        float64   // arrival time of the customer
	ChosenServer int       // 0-based server index
	Reason       string    // human-readable explanation
	Candidates   []float64 // every server's next-available time at selection (nil when not captured)
	Delay        float64   // how long the customer waits for the chosen server; 0 if idle
	IdleServers  int       // servers already free at Clock
}

// NewAssignmentRecord builds a record from the candidate snapshot taken at
// selection time. candidates must contain chosen.
func NewAssignmentRecord(customerID int, clock float64, chosen int, candidates []float64) AssignmentRecord {
	idle := 0
	for _, avail := range candidates {
		if avail <= clock {
			idle++
		}
	}
	delay := 0.0
	if candidates[chosen] > clock {
		delay = candidates[chosen] - clock
	}
	snapshot := make([]float64, len(candidates))
	copy(snapshot, candidates)
	return AssignmentRecord{
		CustomerID:   customerID,
		Clock:        clock,
		ChosenServer: chosen,
		Reason:       fmt.Sprintf("least-available (free at %.6f)", candidates[chosen]),
		Candidates:   snapshot,
		Delay:        delay,
		IdleServers:  idle,
	}
}
