package biodata

import (
	"context"

	"git.biostar.network/biostar/biostar/src/db"
)

/*
Direction of an effect application. Every effect-bearing record gets exactly
one ApplyEffects(Apply) when it is created through the normal application
flow, and exactly one ApplyEffects(Unapply) when it is deleted, using the
record's state from before the deletion. The two must compose to the identity
on every touched counter.
*/
type Direction int

const (
	Apply   Direction = 1
	Unapply Direction = -1
)

/*
The capability implemented by every effect-bearing record type. Implementations
must only issue atomic increment/decrement statements (SET x = x + n), never
read-modify-write, so that concurrent transactions cannot lose updates.

The transaction that creates or deletes the record calls ApplyEffects
explicitly; there is no hidden dispatch. The full set of participating types
is fixed at compile time:

	vote     -> post.score, post author reputation, voter reputation, accept flags
	award    -> recipient badge-tier tallies, badge award count
	comment  -> parent post comment_count
	answer   -> question answer_count
	revision -> post revision_count
*/
type Appliable interface {
	ApplyEffects(ctx context.Context, tx db.ConnOrTx, dir Direction) error
}

var _ = [...]Appliable{
	voteEffect{},
	awardEffect{},
	commentEffect{},
	answerEffect{},
	revisionEffect{},
}
