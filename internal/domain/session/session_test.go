package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/navidad-api/internal/domain/tally"
)

func result(total, rosterSize int) tally.Result {
	return tally.Result{
		Total:      total,
		RosterSize: rosterSize,
		Remaining:  max(0, rosterSize-total),
		AllVoted:   total == rosterSize,
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		authenticated, voted, allVoted bool
		want                           Phase
	}{
		{false, false, false, PhaseUnauthenticated},
		{false, true, true, PhaseUnauthenticated},
		{true, false, false, PhaseNotVoted},
		{true, true, false, PhaseVoted},
		{true, true, true, PhaseAllVoted},
		{true, false, true, PhaseAllVoted},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Route(tt.authenticated, tt.voted, tt.allVoted),
			"authenticated=%v voted=%v allVoted=%v", tt.authenticated, tt.voted, tt.allVoted)
	}
}

func TestPhase_JSON(t *testing.T) {
	for _, p := range []Phase{PhaseUnauthenticated, PhaseAuthenticating, PhaseNotVoted, PhaseVoted, PhaseAllVoted} {
		data, err := json.Marshal(p)
		require.NoError(t, err)

		var got Phase
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, p, got)
	}

	var p Phase
	assert.Error(t, json.Unmarshal([]byte(`"lobby"`), &p))
}

func TestPhase_Page(t *testing.T) {
	assert.Equal(t, "login", PhaseUnauthenticated.Page())
	assert.Equal(t, "login", PhaseAuthenticating.Page())
	assert.Equal(t, "proposals", PhaseNotVoted.Page())
	assert.Equal(t, "waiting", PhaseVoted.Page())
	assert.Equal(t, "results", PhaseAllVoted.Page())
}

func loggedIn(t *testing.T, voted bool, res tally.Result) *Machine {
	t.Helper()
	m := NewMachine()
	require.NoError(t, m.BeginAuth())
	_, err := m.Authenticated(voted, res)
	require.NoError(t, err)
	return m
}

func TestMachine_Login(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, PhaseUnauthenticated, m.Phase())

	_, err := m.Authenticated(false, result(0, 4))
	assert.Error(t, err, "login must begin first")

	require.NoError(t, m.BeginAuth())
	assert.Equal(t, PhaseAuthenticating, m.Phase())

	require.NoError(t, m.AuthFailed())
	assert.Equal(t, PhaseUnauthenticated, m.Phase())

	require.NoError(t, m.BeginAuth())
	phase, err := m.Authenticated(true, result(2, 4))
	require.NoError(t, err)
	assert.Equal(t, PhaseVoted, phase)

	assert.Error(t, m.BeginAuth())
}

func TestMachine_VoteFlow(t *testing.T) {
	m := loggedIn(t, false, result(1, 4))
	assert.Equal(t, PhaseNotVoted, m.Phase())

	phase, err := m.VoteCast()
	require.NoError(t, err)
	assert.Equal(t, PhaseVoted, phase)

	// snapshot lags behind the acknowledged ballot
	assert.Equal(t, PhaseVoted, m.Observe(false, result(1, 4)))

	assert.Equal(t, PhaseVoted, m.Observe(true, result(3, 4)))
	assert.Equal(t, PhaseAllVoted, m.Observe(true, result(4, 4)))
}

func TestMachine_AllVotedReachesNonVoter(t *testing.T) {
	m := loggedIn(t, false, result(3, 4))
	assert.Equal(t, PhaseAllVoted, m.Observe(false, result(4, 4)))
}

func TestMachine_AllVotedIsTerminalUntilReset(t *testing.T) {
	m := loggedIn(t, true, result(4, 4))
	assert.Equal(t, PhaseAllVoted, m.Phase())

	phase, err := m.VoteCast()
	require.NoError(t, err)
	assert.Equal(t, PhaseAllVoted, phase)

	assert.Equal(t, PhaseAllVoted, m.Observe(true, result(4, 4)))

	// reset empties the ledger
	assert.Equal(t, PhaseNotVoted, m.Observe(false, result(0, 4)))
}

func TestMachine_ResetSeenAfterOthersVotedAgain(t *testing.T) {
	m := loggedIn(t, true, result(4, 4))

	// the empty snapshot was coalesced away; two new ballots already landed
	assert.Equal(t, PhaseNotVoted, m.Observe(false, result(2, 4)))
}

func TestMachine_VotedRegressesOnlyOnReset(t *testing.T) {
	m := loggedIn(t, false, result(1, 4))
	_, err := m.VoteCast()
	require.NoError(t, err)

	// the ballot was acknowledged but never seen, so its absence is lag
	assert.Equal(t, PhaseVoted, m.Observe(false, result(1, 4)))
	assert.Equal(t, PhaseVoted, m.Observe(false, result(3, 4)))
	assert.Equal(t, PhaseNotVoted, m.Observe(false, result(0, 4)))
}

func TestMachine_OwnBallotGoneIsReset(t *testing.T) {
	m := loggedIn(t, false, result(1, 4))
	_, err := m.VoteCast()
	require.NoError(t, err)
	assert.Equal(t, PhaseVoted, m.Observe(true, result(2, 4)))

	// reset plus two new ballots coalesced into one snapshot: same total
	phase := m.Observe(false, result(2, 4))
	assert.Equal(t, PhaseNotVoted, phase)
	assert.Equal(t, Route(true, false, false), phase)

	phase, err = m.VoteCast()
	require.NoError(t, err)
	assert.Equal(t, PhaseVoted, phase)
}

func TestMachine_OwnBallotSeenAtLogin(t *testing.T) {
	m := loggedIn(t, true, result(2, 4))
	assert.Equal(t, PhaseVoted, m.Observe(true, result(3, 4)))
	assert.Equal(t, PhaseNotVoted, m.Observe(false, result(3, 4)))
}

func TestMachine_Logout(t *testing.T) {
	m := loggedIn(t, true, result(4, 4))
	m.Logout()
	assert.Equal(t, PhaseUnauthenticated, m.Phase())

	// snapshots do not move a logged-out session
	assert.Equal(t, PhaseUnauthenticated, m.Observe(true, result(4, 4)))

	_, err := m.VoteCast()
	assert.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PhaseNotVoted, PhaseVoted))
	assert.True(t, CanTransition(PhaseVoted, PhaseAllVoted))
	assert.False(t, CanTransition(PhaseVoted, PhaseNotVoted))
	assert.False(t, CanTransition(PhaseAllVoted, PhaseVoted))
	assert.False(t, CanTransition(PhaseUnauthenticated, PhaseVoted))
}
