package biodata

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTagCount(t *testing.T, ctx context.Context, tx pgx.Tx, name string, expected int) {
	t.Helper()

	tags, err := FetchTags(ctx, tx, TagQuery{Names: []string{name}})
	require.NoError(t, err)
	require.Len(t, tags, 1, "tag %q should exist", name)
	assert.Equal(t, expected, tags[0].Count, "tag %q has the wrong count", name)
}

func TestDiffTagNames(t *testing.T) {
	t.Run("no change", func(t *testing.T) {
		added, removed := diffTagNames([]string{"a", "b"}, []string{"a", "b"})
		assert.Empty(t, added)
		assert.Empty(t, removed)
	})
	t.Run("reorder is not a change", func(t *testing.T) {
		added, removed := diffTagNames([]string{"a", "b"}, []string{"b", "a"})
		assert.Empty(t, added)
		assert.Empty(t, removed)
	})
	t.Run("swap", func(t *testing.T) {
		added, removed := diffTagNames([]string{"a", "b"}, []string{"b", "c"})
		assert.Equal(t, []string{"c"}, added)
		assert.Equal(t, []string{"a"}, removed)
	})
	t.Run("from nothing and to nothing", func(t *testing.T) {
		added, removed := diffTagNames(nil, []string{"a"})
		assert.Equal(t, []string{"a"}, added)
		assert.Empty(t, removed)

		added, removed = diffTagNames([]string{"a"}, nil)
		assert.Empty(t, added)
		assert.Equal(t, []string{"a"}, removed)
	})
}

func TestSetPostTags(t *testing.T) {
	t.Run("counts track membership exactly", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		q1 := seedTestQuestion(t, ctx, tx, author, "golang postgres")
		q2 := seedTestQuestion(t, ctx, tx, author, "golang")

		assertTagCount(t, ctx, tx, "golang", 2)
		assertTagCount(t, ctx, tx, "postgres", 1)

		// Setting the same tags again changes nothing.
		err := SetPostTags(ctx, tx, q1.PostID, "postgres golang")
		require.NoError(t, err)
		assertTagCount(t, ctx, tx, "golang", 2)
		assertTagCount(t, ctx, tx, "postgres", 1)

		// Swap a tag on one post only.
		err = SetPostTags(ctx, tx, q1.PostID, "golang testing")
		require.NoError(t, err)
		assertTagCount(t, ctx, tx, "golang", 2)
		assertTagCount(t, ctx, tx, "postgres", 0)
		assertTagCount(t, ctx, tx, "testing", 1)

		// Clear everything.
		err = SetPostTags(ctx, tx, q1.PostID, "")
		require.NoError(t, err)
		err = SetPostTags(ctx, tx, q2.PostID, "")
		require.NoError(t, err)
		assertTagCount(t, ctx, tx, "golang", 0)
		assertTagCount(t, ctx, tx, "testing", 0)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("duplicates in the tag string collapse", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang golang golang")

		assertTagCount(t, ctx, tx, "golang", 1)

		names, err := PostTags(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, []string{"golang"}, names)
	})

	t.Run("tag order is preserved", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "zebra alpha middle")

		names, err := PostTags(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, []string{"zebra", "alpha", "middle"}, names)
	})

	t.Run("invalid tag names are rejected", func(t *testing.T) {
		ctx, tx := beginTest(t)
		author := seedTestUser(t, ctx, tx)
		question := seedTestQuestion(t, ctx, tx, author, "golang")

		err := SetPostTags(ctx, tx, question.PostID, "No_Caps_Or_Underscores")
		assert.Error(t, err)

		// The failed edit must not have touched anything.
		assertTagCount(t, ctx, tx, "golang", 1)
		names, err := PostTags(ctx, tx, question.PostID)
		require.NoError(t, err)
		assert.Equal(t, []string{"golang"}, names)
	})
}
