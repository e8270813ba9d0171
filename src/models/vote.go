package models

type VoteType int

const (
	VoteUp VoteType = iota
	VoteDown
	VoteAccept
)

// Mutually exclusive vote types. Casting one auto-retracts the other.
var OpposingVotes = map[VoteType]VoteType{
	VoteUp:   VoteDown,
	VoteDown: VoteUp,
}

// post score changes
var postScore = map[VoteType]int{
	VoteUp:   1,
	VoteDown: -1,
}

// post author reputation changes
var authorReputation = map[VoteType]int{
	VoteUp:     10,
	VoteDown:   -2,
	VoteAccept: 15,
}

// voter reputation changes
var voterReputation = map[VoteType]int{
	VoteDown:   -1,
	VoteAccept: 2,
}

// At most one active vote exists per (author, post, type); the vote table
// has a unique constraint to match.
type Vote struct {
	ID int `db:"id"`

	AuthorID int      `db:"author_id"`
	PostID   int      `db:"post_id"`
	Type     VoteType `db:"type"`
}

// The change to the target post's score when this vote is applied.
func (v *Vote) Score() int {
	return postScore[v.Type]
}

// The change to the post author's reputation when this vote is applied.
func (v *Vote) Reputation() int {
	return authorReputation[v.Type]
}

// The change to the voter's own reputation when this vote is applied.
func (v *Vote) VoterReputation() int {
	return voterReputation[v.Type]
}
