package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoteScoring(t *testing.T) {
	up := &Vote{Type: VoteUp}
	down := &Vote{Type: VoteDown}
	accept := &Vote{Type: VoteAccept}

	assert.Equal(t, 1, up.Score())
	assert.Equal(t, 10, up.Reputation())
	assert.Equal(t, 0, up.VoterReputation())

	assert.Equal(t, -1, down.Score())
	assert.Equal(t, -2, down.Reputation())
	assert.Equal(t, -1, down.VoterReputation())

	// Accepting never changes the post score, only reputations.
	assert.Equal(t, 0, accept.Score())
	assert.Equal(t, 15, accept.Reputation())
	assert.Equal(t, 2, accept.VoterReputation())
}

func TestOpposingVotes(t *testing.T) {
	assert.Equal(t, VoteType(VoteDown), OpposingVotes[VoteUp])
	assert.Equal(t, VoteType(VoteUp), OpposingVotes[VoteDown])

	_, hasOpposite := OpposingVotes[VoteAccept]
	assert.False(t, hasOpposite)
}
