package controler

import "fmt"

// State is a step of a download run
type State int

const (
	StateIdle State = iota
	StateDiscoveryRunning
	StateDiscoveryBarrier
	StateAwaitingConfirmation
	StateTransferRunning
	StateTransferBarrier
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscoveryRunning:
		return "discovery running"
	case StateDiscoveryBarrier:
		return "discovery barrier"
	case StateAwaitingConfirmation:
		return "awaiting confirmation"
	case StateTransferRunning:
		return "transfer running"
	case StateTransferBarrier:
		return "transfer barrier"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateIdle:                 {StateDiscoveryRunning},
	StateDiscoveryRunning:     {StateDiscoveryBarrier},
	StateDiscoveryBarrier:     {StateAwaitingConfirmation, StateDone},
	StateAwaitingConfirmation: {StateTransferRunning, StateDone},
	StateTransferRunning:      {StateTransferBarrier},
	StateTransferBarrier:      {StateDone},
}

func (c *Controler) transition(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, allowed := range transitions[c.state] {
		if allowed == to {
			c.logger.Debug("state changed", "from", c.state.String(), "to", to.String())
			c.state = to
			c.history = append(c.history, to)
			return nil
		}
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, to)
}

// State returns the current state
func (c *Controler) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// History returns every state entered so far, starting with StateIdle
func (c *Controler) History() []State {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := make([]State, len(c.history))
	copy(history, c.history)
	return history
}
