package biodata

import (
	"testing"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuestion(t *testing.T) {
	ctx, tx := beginTest(t)
	author := seedTestUser(t, ctx, tx)

	question, err := CreateQuestion(ctx, tx, author.ID,
		"Why is my goroutine leaking?",
		"It never *stops*.",
		"golang concurrency",
	)
	require.NoError(t, err)

	q, err := FetchQuestion(ctx, tx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, "Why is my goroutine leaking?", q.Post.Title)
	assert.Contains(t, q.Post.HTML, "<em>stops</em>")
	assert.Equal(t, "golang concurrency", q.Post.Tags)
	assert.Equal(t, author.ID, q.Author.ID)
	assert.Equal(t, 0, q.Question.AnswerCount)
	assert.Equal(t, 1, q.Post.RevisionCount)

	requireNoDrift(t, ctx, tx)
}

func TestAnswers(t *testing.T) {
	t.Run("answers count against their question", func(t *testing.T) {
		ctx, tx := beginTest(t)
		asker := seedTestUser(t, ctx, tx)
		answerer := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, asker, "golang")

		answer := seedTestAnswer(t, ctx, tx, question, answerer)
		seedTestAnswer(t, ctx, tx, question, asker)

		q, err := FetchQuestion(ctx, tx, question.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, q.Question.AnswerCount)

		err = DeleteAnswerRecord(ctx, tx, answer.ID)
		require.NoError(t, err)

		q, err = FetchQuestion(ctx, tx, question.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, q.Question.AnswerCount)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("deleting a voted answer restores reputation", func(t *testing.T) {
		ctx, tx := beginTest(t)
		asker := seedTestUser(t, ctx, tx)
		answerer := seedTestUser(t, ctx, tx)
		voter := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, asker, "golang")
		answer := seedTestAnswer(t, ctx, tx, question, answerer)

		_, err := CastVote(ctx, tx, voter, answer.PostID, models.VoteUp)
		require.NoError(t, err)
		_, err = CastVote(ctx, tx, asker, answer.PostID, models.VoteAccept)
		require.NoError(t, err)
		assertUserScore(t, ctx, tx, answerer.ID, 25)

		err = DeleteAnswerRecord(ctx, tx, answer.ID)
		require.NoError(t, err)

		assertUserScore(t, ctx, tx, answerer.ID, 0)
		assertUserScore(t, ctx, tx, asker.ID, 0)

		q, err := FetchQuestion(ctx, tx, question.ID)
		require.NoError(t, err)
		assert.False(t, q.Question.AnswerAccepted)

		requireNoDrift(t, ctx, tx)
	})
}

func TestComments(t *testing.T) {
	t.Run("comments count against their parent", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		commenter := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang")

		comment, err := CreateComment(ctx, tx, question.PostID, commenter.ID, "Needs more detail.")
		require.NoError(t, err)
		_, err = CreateComment(ctx, tx, question.PostID, author.ID, "Will do.")
		require.NoError(t, err)

		post, err := FetchPost(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, 2, post.CommentCount)

		comments, err := FetchComments(ctx, tx, question.PostID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, commenter.ID, comments[0].Author.ID)

		err = DeleteCommentRecord(ctx, tx, comment.ID)
		require.NoError(t, err)

		post, err = FetchPost(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, 1, post.CommentCount)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("deleting a comment takes its replies along", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang")

		comment, err := CreateComment(ctx, tx, question.PostID, author.ID, "A comment.")
		require.NoError(t, err)
		reply, err := CreateComment(ctx, tx, comment.PostID, author.ID, "A reply to the comment.")
		require.NoError(t, err)

		err = DeleteCommentRecord(ctx, tx, comment.ID)
		require.NoError(t, err)

		_, err = db.QueryOne[models.Comment](ctx, tx, `SELECT $columns FROM comment WHERE id = $1`, reply.ID)
		assert.ErrorIs(t, err, db.NotFound)

		requireNoDrift(t, ctx, tx)
	})
}

func TestAuthorizePostEdit(t *testing.T) {
	ctx, tx := beginTest(t)
	author := seedTestUser(t, ctx, tx)
	other := seedTestUser(t, ctx, tx)
	staff := seedTestUser(t, ctx, tx)
	_, err := tx.Exec(ctx, `UPDATE biostar_user SET is_staff = TRUE WHERE id = $1`, staff.ID)
	require.NoError(t, err)
	staff.IsStaff = true
	question := seedTestQuestion(t, ctx, tx, author, "golang")

	allowed, err := AuthorizePostEdit(ctx, tx, author, question.PostID, false)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = AuthorizePostEdit(ctx, tx, staff, question.PostID, false)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = AuthorizePostEdit(ctx, tx, other, question.PostID, false)
	require.NoError(t, err)
	assert.False(t, allowed)

	_, err = AuthorizePostEdit(ctx, tx, other, question.PostID, true)
	assert.ErrorIs(t, err, ErrAccessDenied)

	allowed, err = AuthorizePostEdit(ctx, tx, nil, question.PostID, false)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestVerifyCountersDetectsDrift(t *testing.T) {
	ctx, tx := beginTest(t)
	author := seedTestUser(t, ctx, tx)
	question := seedTestQuestion(t, ctx, tx, author, "golang")

	requireNoDrift(t, ctx, tx)

	// Corrupt a counter behind the engine's back.
	_, err := tx.Exec(ctx, `UPDATE post SET comment_count = 42 WHERE id = $1`, question.PostID)
	require.NoError(t, err)

	drifts, err := VerifyCounters(ctx, tx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, "post", drifts[0].Entity)
	assert.Equal(t, "comment_count", drifts[0].Counter)
	assert.Equal(t, 42, drifts[0].Stored)
	assert.Equal(t, 0, drifts[0].Actual)
}
