package sim

// ServerState tracks one server slot. Created once per run and updated in
// place by the engine's assignment step.
type ServerState struct {
	NextAvailable float64 // clock value when the server becomes free
	BusyTime      float64 // sum of service durations assigned so far
	Served        int     // customers assigned so far
}

// LeastAvailable returns the index of the server with the smallest
// NextAvailable. Ties are broken by lowest index (strict <).
// Panics on an empty slice; the engine always holds at least one server.
func LeastAvailable(servers []ServerState) int {
	if len(servers) == 0 {
		panic("LeastAvailable: empty server list")
	}
	best := 0
	for i := 1; i < len(servers); i++ {
		if servers[i].NextAvailable < servers[best].NextAvailable {
			best = i
		}
	}
	return best
}

// assign books a customer arriving at arrival with the given service time
// on s and returns its start and end times.
func assign(s *ServerState, arrival, service float64) (start, end float64) {
	start = max(arrival, s.NextAvailable)
	end = start + service
	s.NextAvailable = end
	s.BusyTime += service
	s.Served++
	return start, end
}
