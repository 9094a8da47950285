package session

import (
	"fmt"
	"slices"

	"github.com/gravadigital/navidad-api/internal/domain/tally"
)

var transitions = map[Phase][]Phase{
	PhaseUnauthenticated: {PhaseAuthenticating},
	PhaseAuthenticating:  {PhaseUnauthenticated, PhaseNotVoted, PhaseVoted, PhaseAllVoted},
	PhaseNotVoted:        {PhaseVoted, PhaseAllVoted, PhaseUnauthenticated},
	PhaseVoted:           {PhaseAllVoted, PhaseUnauthenticated},
	PhaseAllVoted:        {PhaseUnauthenticated},
}

// CanTransition reports whether the flow allows moving from one phase to
// another outside of a ledger reset.
func CanTransition(from, to Phase) bool {
	return from == to || slices.Contains(transitions[from], to)
}

// Machine follows one participant's session across ledger snapshots.
// Voted and AllVoted are sticky: only a ledger reset moves a participant
// back to NotVoted. A Machine is not safe for concurrent use.
type Machine struct {
	phase     Phase
	lastTotal int
	// sawOwn is set once a snapshot has carried the participant's ballot
	sawOwn bool
}

// NewMachine starts a session in PhaseUnauthenticated
func NewMachine() *Machine {
	return &Machine{}
}

// Phase returns the current phase
func (m *Machine) Phase() Phase {
	return m.phase
}

// BeginAuth marks a login attempt in flight
func (m *Machine) BeginAuth() error {
	return m.move(PhaseAuthenticating)
}

// AuthFailed returns a pending login to PhaseUnauthenticated
func (m *Machine) AuthFailed() error {
	if m.phase != PhaseAuthenticating {
		return fmt.Errorf("cannot fail authentication from %s", m.phase)
	}
	m.phase = PhaseUnauthenticated
	return nil
}

// Authenticated completes a login and routes by the participant's ballot
// and the round's completion.
func (m *Machine) Authenticated(voted bool, res tally.Result) (Phase, error) {
	if m.phase != PhaseAuthenticating {
		return m.phase, fmt.Errorf("cannot complete authentication from %s", m.phase)
	}
	m.phase = Route(true, voted, res.AllVoted)
	m.lastTotal = res.Total
	m.sawOwn = voted
	return m.phase, nil
}

// VoteCast records a ballot accepted by the ledger. It relies on the
// ledger's own acknowledgement rather than a re-read of the snapshot.
func (m *Machine) VoteCast() (Phase, error) {
	switch m.phase {
	case PhaseNotVoted:
		m.phase = PhaseVoted
	case PhaseVoted, PhaseAllVoted:
	default:
		return m.phase, fmt.Errorf("cannot vote from %s", m.phase)
	}
	return m.phase, nil
}

// Observe re-evaluates the phase from a fresh snapshot. Ballots are never
// removed except by a reset, so any of these is read as one: the total
// shrank, a completed round is no longer complete, or the participant's own
// ballot was seen and is now gone. Snapshots may be coalesced, so the total
// alone can hide a reset. A reset is the only way out of Voted or AllVoted.
func (m *Machine) Observe(voted bool, res tally.Result) Phase {
	if m.phase == PhaseUnauthenticated || m.phase == PhaseAuthenticating {
		return m.phase
	}

	reset := res.Total < m.lastTotal ||
		(m.phase == PhaseAllVoted && !res.AllVoted) ||
		(m.sawOwn && !voted)
	m.lastTotal = res.Total
	m.sawOwn = voted

	next := Route(true, voted, res.AllVoted)
	switch {
	case reset:
		m.phase = next
	case m.phase == PhaseAllVoted:
	case m.phase == PhaseVoted && next == PhaseNotVoted:
		// own ballot not yet visible in the snapshot
	default:
		m.phase = next
	}
	return m.phase
}

// Logout ends the session from any phase
func (m *Machine) Logout() {
	m.phase = PhaseUnauthenticated
	m.lastTotal = 0
	m.sawOwn = false
}

func (m *Machine) move(to Phase) error {
	if !CanTransition(m.phase, to) {
		return fmt.Errorf("cannot transition from %s to %s", m.phase, to)
	}
	m.phase = to
	return nil
}
