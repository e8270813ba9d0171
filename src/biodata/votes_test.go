package biodata

import (
	"context"
	"testing"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVote(t *testing.T) {
	t.Run("upvote and retract round-trip", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		voter := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang")

		_, err := CastVote(ctx, tx, voter, question.PostID, models.VoteUp)
		require.NoError(t, err)

		post, err := FetchPost(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, 1, post.Score)
		assertUserScore(t, ctx, tx, author.ID, 10)
		assertUserScore(t, ctx, tx, voter.ID, 0)

		retracted, err := RetractVote(ctx, tx, voter, question.PostID, models.VoteUp)
		require.NoError(t, err)
		assert.True(t, retracted)

		post, err = FetchPost(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, 0, post.Score)
		assertUserScore(t, ctx, tx, author.ID, 0)
		assertUserScore(t, ctx, tx, voter.ID, 0)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("downvote costs the voter too", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		voter := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang")

		_, err := CastVote(ctx, tx, voter, question.PostID, models.VoteDown)
		require.NoError(t, err)

		post, err := FetchPost(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, -1, post.Score)
		assertUserScore(t, ctx, tx, author.ID, -2)
		assertUserScore(t, ctx, tx, voter.ID, -1)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("voting twice is a no-op", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		voter := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang")

		first, err := CastVote(ctx, tx, voter, question.PostID, models.VoteUp)
		require.NoError(t, err)
		second, err := CastVote(ctx, tx, voter, question.PostID, models.VoteUp)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		post, err := FetchPost(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, 1, post.Score)
		assertUserScore(t, ctx, tx, author.ID, 10)
	})

	t.Run("switching direction retracts the opposing vote", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		voter := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang")

		_, err := CastVote(ctx, tx, voter, question.PostID, models.VoteUp)
		require.NoError(t, err)
		_, err = CastVote(ctx, tx, voter, question.PostID, models.VoteDown)
		require.NoError(t, err)

		// Only the downvote should remain.
		_, err = FindVote(ctx, tx, voter, question.PostID, models.VoteUp)
		assert.ErrorIs(t, err, db.NotFound)

		post, err := FetchPost(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, -1, post.Score)
		assertUserScore(t, ctx, tx, author.ID, -2)
		assertUserScore(t, ctx, tx, voter.ID, -1)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("anonymous users cannot vote", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang")

		_, err := CastVote(ctx, tx, nil, question.PostID, models.VoteUp)
		assert.ErrorIs(t, err, ErrInvalidActor)

		retracted, err := RetractVote(ctx, tx, nil, question.PostID, models.VoteUp)
		require.NoError(t, err)
		assert.False(t, retracted)
	})
}

func TestAcceptVote(t *testing.T) {
	t.Run("accepting an answer", func(t *testing.T) {
		ctx, tx := beginTest(t)
		asker := seedTestUser(t, ctx, tx)
		answerer := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, asker, "golang")
		answer := seedTestAnswer(t, ctx, tx, question, answerer)

		_, err := CastVote(ctx, tx, asker, answer.PostID, models.VoteAccept)
		require.NoError(t, err)

		answerNow, err := db.QueryOne[models.Answer](ctx, tx, `SELECT $columns FROM answer WHERE id = $1`, answer.ID)
		require.NoError(t, err)
		assert.True(t, answerNow.Accepted)

		questionNow, err := FetchQuestion(ctx, tx, question.ID)
		require.NoError(t, err)
		assert.True(t, questionNow.Question.AnswerAccepted)

		// Accepting moves reputation but not the post score.
		post, err := FetchPost(ctx, tx, answer.PostID)
		require.NoError(t, err)
		assert.Equal(t, 0, post.Score)
		assertUserScore(t, ctx, tx, answerer.ID, 15)
		assertUserScore(t, ctx, tx, asker.ID, 2)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("retracting an accept clears the flags", func(t *testing.T) {
		ctx, tx := beginTest(t)
		asker := seedTestUser(t, ctx, tx)
		answerer := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, asker, "golang")
		answer := seedTestAnswer(t, ctx, tx, question, answerer)

		_, err := CastVote(ctx, tx, asker, answer.PostID, models.VoteAccept)
		require.NoError(t, err)
		retracted, err := RetractVote(ctx, tx, asker, answer.PostID, models.VoteAccept)
		require.NoError(t, err)
		assert.True(t, retracted)

		answerNow, err := db.QueryOne[models.Answer](ctx, tx, `SELECT $columns FROM answer WHERE id = $1`, answer.ID)
		require.NoError(t, err)
		assert.False(t, answerNow.Accepted)

		questionNow, err := FetchQuestion(ctx, tx, question.ID)
		require.NoError(t, err)
		assert.False(t, questionNow.Question.AnswerAccepted)

		assertUserScore(t, ctx, tx, answerer.ID, 0)
		assertUserScore(t, ctx, tx, asker.ID, 0)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("at most one accepted answer per question", func(t *testing.T) {
		ctx, tx := beginTest(t)
		asker := seedTestUser(t, ctx, tx)
		answerer1 := seedTestUser(t, ctx, tx)
		answerer2 := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, asker, "golang")
		answer1 := seedTestAnswer(t, ctx, tx, question, answerer1)
		answer2 := seedTestAnswer(t, ctx, tx, question, answerer2)

		_, err := CastVote(ctx, tx, asker, answer1.PostID, models.VoteAccept)
		require.NoError(t, err)
		_, err = CastVote(ctx, tx, asker, answer2.PostID, models.VoteAccept)
		require.NoError(t, err)

		answer1Now, err := db.QueryOne[models.Answer](ctx, tx, `SELECT $columns FROM answer WHERE id = $1`, answer1.ID)
		require.NoError(t, err)
		assert.False(t, answer1Now.Accepted)
		answer2Now, err := db.QueryOne[models.Answer](ctx, tx, `SELECT $columns FROM answer WHERE id = $1`, answer2.ID)
		require.NoError(t, err)
		assert.True(t, answer2Now.Accepted)

		questionNow, err := FetchQuestion(ctx, tx, question.ID)
		require.NoError(t, err)
		assert.True(t, questionNow.Question.AnswerAccepted)

		// The first answerer's reputation went away with their accept.
		assertUserScore(t, ctx, tx, answerer1.ID, 0)
		assertUserScore(t, ctx, tx, answerer2.ID, 15)
		assertUserScore(t, ctx, tx, asker.ID, 2)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("accept votes may only target answers", func(t *testing.T) {
		ctx, tx := beginTest(t)
		asker := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, asker, "golang")

		_, err := CastVote(ctx, tx, asker, question.PostID, models.VoteAccept)
		assert.Error(t, err)
	})
}

func assertUserScore(t *testing.T, ctx context.Context, tx pgx.Tx, userId int, expected int) {
	t.Helper()

	user, err := FetchUser(ctx, tx, userId)
	require.NoError(t, err)
	assert.Equal(t, expected, user.Score)
}
