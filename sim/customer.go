// Defines the Customer record produced once per simulated arrival and the
// append-only log that holds them.

package sim

import (
	"fmt"
	"strings"
)

// Customer is one simulated arrival. Records are never mutated after creation.
type Customer struct {
	ID               int     // 1-based sequence number
	InterarrivalTime float64 // gap since the previous arrival
	ArrivalTime      float64 // arrival clock after adding InterarrivalTime
	ServiceTime      float64
	Server           int // 0-based index of the server that served this customer
	StartTime        float64
	EndTime          float64
	WaitTime         float64 // StartTime - ArrivalTime
	TurnaroundTime   float64 // EndTime - ArrivalTime

	ArrivalUniform float64 // raw uniform behind InterarrivalTime
	ServiceUniform float64 // raw uniform behind ServiceTime
}

func (c Customer) String() string {
	return fmt.Sprintf("C%d@%.4f(s%d)", c.ID, c.ArrivalTime, c.Server)
}

// CustomerLog is the append-only record of simulated customers, in id order.
type CustomerLog struct {
	customers []Customer
}

// Append adds a customer to the end of the log.
func (cl *CustomerLog) Append(c Customer) {
	cl.customers = append(cl.customers, c)
}

// Len returns the number of customers in the log.
func (cl *CustomerLog) Len() int {
	return len(cl.customers)
}

// Last returns the most recent customer, or false if the log is empty.
func (cl *CustomerLog) Last() (Customer, bool) {
	if len(cl.customers) == 0 {
		return Customer{}, false
	}
	return cl.customers[len(cl.customers)-1], true
}

// Items returns the log contents for iteration.
// The returned slice is the log's internal storage: callers within the
// sim package may read it but MUST NOT append to or modify it.
func (cl *CustomerLog) Items() []Customer {
	return cl.customers
}

// Snapshot returns a copy of the log safe to hand outside the package.
func (cl *CustomerLog) Snapshot() []Customer {
	out := make([]Customer, len(cl.customers))
	copy(out, cl.customers)
	return out
}

// Clear drops every record.
func (cl *CustomerLog) Clear() {
	cl.customers = nil
}

func (cl *CustomerLog) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range cl.customers {
		sb.WriteString(c.String())
		if i < len(cl.customers)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
