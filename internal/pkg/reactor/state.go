package reactor

// State is a point-in-time view of a phase
type State struct {
	Name      string `json:"name"`
	InFlight  int64  `json:"in_flight"`
	Forked    uint64 `json:"forked"`
	Completed uint64 `json:"completed"`
	Drained   bool   `json:"drained"`
	Errors    int    `json:"errors"`
}

// Snapshot returns the current state of the phase
func (p *Phase) Snapshot() State {
	return State{
		Name:      p.name,
		InFlight:  p.InFlight(),
		Forked:    p.Forked(),
		Completed: p.Completed(),
		Drained:   p.drained.Load(),
		Errors:    len(p.Errors()),
	}
}
