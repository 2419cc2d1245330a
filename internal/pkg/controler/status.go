package controler

import "github.com/canvas-downloader/canvas-downloader/internal/pkg/reactor"

// Status is a point-in-time view of a run
type Status struct {
	RunID string         `json:"run_id"`
	State string         `json:"state"`
	Phase *reactor.State `json:"phase,omitempty"`
	Gate  *GateStatus    `json:"gate,omitempty"`
}

// GateStatus reports the tickets of the admission gate
type GateStatus struct {
	Capacity int `json:"capacity"`
	InUse    int `json:"in_use"`
	Peak     int `json:"peak"`
}

// startPhase creates the phase of the next step and makes it the one
// reported by Status
func (c *Controler) startPhase(name string) *reactor.Phase {
	phase := reactor.NewPhase(name, c.gate)

	c.mu.Lock()
	c.phase = phase
	c.mu.Unlock()

	return phase
}

// Status returns the state of the run and of its latest phase
func (c *Controler) Status() Status {
	c.mu.Lock()
	state, phase := c.state, c.phase
	c.mu.Unlock()

	status := Status{RunID: c.runID, State: state.String()}
	if phase == nil {
		return status
	}

	snapshot := phase.Snapshot()
	status.Phase = &snapshot

	if gate := phase.Gate(); gate != nil {
		status.Gate = &GateStatus{
			Capacity: gate.Capacity(),
			InUse:    gate.InUse(),
			Peak:     gate.Peak(),
		}
	}

	return status
}
