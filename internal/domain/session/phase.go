// Package session routes a participant to the phase of the voting flow
// matching the shared ledger state.
package session

import "fmt"

// Phase is where a participant stands in the flow
type Phase byte

const (
	PhaseUnauthenticated Phase = iota
	PhaseAuthenticating
	PhaseNotVoted
	PhaseVoted
	PhaseAllVoted
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseNotVoted:
		return "not_voted"
	case PhaseVoted:
		return "voted"
	case PhaseAllVoted:
		return "all_voted"
	default:
		return "unknown"
	}
}

// Page is the screen a client renders for the phase
func (p Phase) Page() string {
	switch p {
	case PhaseNotVoted:
		return "proposals"
	case PhaseVoted:
		return "waiting"
	case PhaseAllVoted:
		return "results"
	default:
		return "login"
	}
}

// MarshalJSON implements json.Marshaler
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Phase) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	phase, valid := PhaseFromString(str)
	if !valid {
		return fmt.Errorf("invalid phase: %s", str)
	}
	*p = phase
	return nil
}

// PhaseFromString converts a string to a Phase
func PhaseFromString(s string) (Phase, bool) {
	switch s {
	case "unauthenticated":
		return PhaseUnauthenticated, true
	case "authenticating":
		return PhaseAuthenticating, true
	case "not_voted":
		return PhaseNotVoted, true
	case "voted":
		return PhaseVoted, true
	case "all_voted":
		return PhaseAllVoted, true
	default:
		return PhaseUnauthenticated, false
	}
}

// Route is the stateless phase for a participant. Completion of the round
// outranks the participant's own ballot: once everyone has voted, results
// are final even for a participant without a vote.
func Route(authenticated, voted, allVoted bool) Phase {
	switch {
	case !authenticated:
		return PhaseUnauthenticated
	case allVoted:
		return PhaseAllVoted
	case voted:
		return PhaseVoted
	default:
		return PhaseNotVoted
	}
}
