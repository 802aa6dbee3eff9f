// Package sim provides the discrete-event queueing engine for qsim.
//
// # Reading Guide
//
// Start with these files:
//   - config.go: SimulationConfig, stop rules and validation
//   - engine.go: the Engine lifecycle (idle → running ⇄ paused → stopped) and Step
//   - server.go: ServerState and least-available server selection
//   - metrics.go: the run Summary
//
// # Model
//
// Arrivals form a Poisson process with rate λ. Each arrival samples a
// service time from an exponential, uniform or normal distribution derived
// from μ (see sim/distribution) and is booked on the server that frees up
// first. Servers=1 gives the classic single-server chain where a customer
// starts at max(arrival, previous customer's end).
//
// The run ends when the cumulative probability counter crosses its
// threshold, or when the driver calls Stop.
//
// # Sub-packages
//   - sim/distribution: samplers that report the raw uniform behind each value
//   - sim/trace: assignment decision records
//   - sim/store: SQLite export of a run's customer log
//   - sim/runner: the stepping loop and concurrent replications
//
// The engine never logs; drivers in sim/runner and cmd do.
package sim
