package biodata

import (
	"context"
	"errors"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
)

type voteEffect struct {
	Vote *models.Vote
}

func (e voteEffect) ApplyEffects(ctx context.Context, tx db.ConnOrTx, dir Direction) error {
	v := e.Vote

	if change := v.Reputation(); change != 0 {
		_, err := tx.Exec(ctx,
			`
			---- Update post author reputation
			UPDATE biostar_user
			SET score = score + $1
			WHERE id = (SELECT author_id FROM post WHERE id = $2)
			`,
			int(dir)*change,
			v.PostID,
		)
		if err != nil {
			return oops.New(err, "failed to update post author reputation")
		}
	}

	if change := v.VoterReputation(); change != 0 {
		_, err := tx.Exec(ctx,
			`
			---- Update voter reputation
			UPDATE biostar_user
			SET score = score + $1
			WHERE id = $2
			`,
			int(dir)*change,
			v.AuthorID,
		)
		if err != nil {
			return oops.New(err, "failed to update voter reputation")
		}
	}

	if change := v.Score(); change != 0 {
		_, err := tx.Exec(ctx,
			`
			---- Update post score
			UPDATE post
			SET score = score + $1
			WHERE id = $2
			`,
			int(dir)*change,
			v.PostID,
		)
		if err != nil {
			return oops.New(err, "failed to update post score")
		}
	}

	if v.Type == models.VoteAccept {
		accepted := dir == Apply
		questionId, err := db.QueryOneScalar[int](ctx, tx,
			`
			---- Flag the answer as accepted
			UPDATE answer
			SET accepted = $1
			WHERE post_id = $2
			RETURNING question_id
			`,
			accepted,
			v.PostID,
		)
		if err != nil {
			return oops.New(err, "failed to update answer accepted state")
		}
		_, err = tx.Exec(ctx,
			`
			---- Flag the question as having an accepted answer
			UPDATE question
			SET answer_accepted = $1
			WHERE id = $2
			`,
			accepted,
			questionId,
		)
		if err != nil {
			return oops.New(err, "failed to update question accepted state")
		}
	}

	return nil
}

/*
Inserts a vote record. When applyEffects is true (the normal application
path), the vote's score and reputation effects are applied in the same
transaction. Bulk imports pass false because the imported counters already
include the vote's effects.

A nonzero vote.ID is preserved (used by snapshot import).
*/
func CreateVoteRecord(ctx context.Context, tx db.ConnOrTx, vote *models.Vote, applyEffects bool) (*models.Vote, error) {
	var created *models.Vote
	var err error
	if vote.ID == 0 {
		created, err = db.QueryOne[models.Vote](ctx, tx,
			`
			INSERT INTO vote (author_id, post_id, type)
			VALUES ($1, $2, $3)
			RETURNING $columns
			`,
			vote.AuthorID, vote.PostID, vote.Type,
		)
	} else {
		created, err = db.QueryOne[models.Vote](ctx, tx,
			`
			INSERT INTO vote (id, author_id, post_id, type)
			VALUES ($1, $2, $3, $4)
			RETURNING $columns
			`,
			vote.ID, vote.AuthorID, vote.PostID, vote.Type,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create vote")
	}

	if applyEffects {
		err = voteEffect{created}.ApplyEffects(ctx, tx, Apply)
		if err != nil {
			return nil, err
		}
	}

	return created, nil
}

// Unapplies a vote's effects and deletes the record.
func DeleteVoteRecord(ctx context.Context, tx db.ConnOrTx, voteId int) error {
	vote, err := db.QueryOne[models.Vote](ctx, tx,
		`SELECT $columns FROM vote WHERE id = $1`,
		voteId,
	)
	if err != nil {
		return oops.New(err, "failed to fetch vote for deletion")
	}

	err = voteEffect{vote}.ApplyEffects(ctx, tx, Unapply)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM vote WHERE id = $1`, voteId)
	if err != nil {
		return oops.New(err, "failed to delete vote")
	}

	return nil
}

// Unapplies and deletes every vote on a post, for use when deleting the post.
func deleteVotesOnPost(ctx context.Context, tx db.ConnOrTx, postId int) error {
	voteIds, err := db.QueryScalar[int](ctx, tx,
		`SELECT id FROM vote WHERE post_id = $1`,
		postId,
	)
	if err != nil {
		return oops.New(err, "failed to fetch votes on post %d", postId)
	}

	for _, voteId := range voteIds {
		err = DeleteVoteRecord(ctx, tx, voteId)
		if err != nil {
			return err
		}
	}

	return nil
}

/*
Casts a vote by voter on the given post. This is the entry point for all user
voting:

  - Casting the same vote twice is a no-op; the existing vote is returned.
  - Casting a vote whose opposing type is active (up vs. down) retracts the
    opposing vote first, in the same transaction.
  - An accept vote targets an answer's post. Any previously accepted answer
    of the same question has its accept vote retracted first, so at most one
    answer per question is accepted at a time.
*/
func CastVote(ctx context.Context, conn db.ConnOrTx, voter *models.User, postId int, voteType models.VoteType) (*models.Vote, error) {
	if voter == nil {
		return nil, ErrInvalidActor
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	existing, err := FindVote(ctx, tx, voter, postId, voteType)
	if err == nil {
		// Voting twice changes nothing.
		err = tx.Commit(ctx)
		if err != nil {
			return nil, oops.New(err, "failed to commit transaction")
		}
		return existing, nil
	} else if !errors.Is(err, db.NotFound) {
		return nil, err
	}

	if opposing, ok := models.OpposingVotes[voteType]; ok {
		_, err := RetractVote(ctx, tx, voter, postId, opposing)
		if err != nil {
			return nil, err
		}
	}

	if voteType == models.VoteAccept {
		err = retractAcceptedAnswer(ctx, tx, postId)
		if err != nil {
			return nil, err
		}
	}

	vote, err := CreateVoteRecord(ctx, tx, &models.Vote{
		AuthorID: voter.ID,
		PostID:   postId,
		Type:     voteType,
	}, true)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit transaction")
	}

	return vote, nil
}

/*
Retracts the accept votes on whichever answer of postId's question is
currently accepted, if any. postId must be an answer's post.
*/
func retractAcceptedAnswer(ctx context.Context, tx db.ConnOrTx, postId int) error {
	answer, err := db.QueryOne[models.Answer](ctx, tx,
		`SELECT $columns FROM answer WHERE post_id = $1`,
		postId,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return oops.New(nil, "accept votes may only target answers (post %d is not an answer)", postId)
		}
		return oops.New(err, "failed to fetch answer for post %d", postId)
	}

	acceptVoteIds, err := db.QueryScalar[int](ctx, tx,
		`
		---- Find accept votes on the currently accepted answer
		SELECT v.id
		FROM
			vote AS v
			JOIN answer AS a ON a.post_id = v.post_id
		WHERE
			a.question_id = $1
			AND a.accepted
			AND a.id != $2
			AND v.type = $3
		`,
		answer.QuestionID,
		answer.ID,
		models.VoteAccept,
	)
	if err != nil {
		return oops.New(err, "failed to fetch accept votes for question %d", answer.QuestionID)
	}

	for _, voteId := range acceptVoteIds {
		err = DeleteVoteRecord(ctx, tx, voteId)
		if err != nil {
			return err
		}
	}

	return nil
}

/*
Fetches the voter's active vote of the given type on a post. Returns
db.NotFound if no such vote exists; anonymous voters never have votes.
*/
func FindVote(ctx context.Context, conn db.ConnOrTx, voter *models.User, postId int, voteType models.VoteType) (*models.Vote, error) {
	if voter == nil {
		return nil, db.NotFound
	}

	return db.QueryOne[models.Vote](ctx, conn,
		`
		SELECT $columns
		FROM vote
		WHERE
			author_id = $1
			AND post_id = $2
			AND type = $3
		`,
		voter.ID, postId, voteType,
	)
}

/*
Retracts the voter's active vote of the given type on a post, unapplying its
effects. Reports whether a vote was actually retracted; retracting a vote
that does not exist is not an error.
*/
func RetractVote(ctx context.Context, conn db.ConnOrTx, voter *models.User, postId int, voteType models.VoteType) (bool, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	vote, err := FindVote(ctx, tx, voter, postId, voteType)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return false, nil
		}
		return false, err
	}

	err = DeleteVoteRecord(ctx, tx, vote.ID)
	if err != nil {
		return false, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return false, oops.New(err, "failed to commit transaction")
	}

	return true, nil
}
