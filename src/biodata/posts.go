package biodata

import (
	"context"
	"time"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
	"git.biostar.network/biostar/biostar/src/utils"
)

/*
Inserts the bare post row underlying a question, answer or comment. The post
starts with empty content; callers immediately create the first revision,
which fills in content, title and tags.

A nonzero post.ID is preserved (used by snapshot import).
*/
func CreatePostRecord(ctx context.Context, tx db.ConnOrTx, post *models.Post) (*models.Post, error) {
	now := time.Now()
	creationDate := utils.OrDefault(post.CreationDate, now)
	editDate := utils.OrDefault(post.LastEditDate, creationDate)
	editUserId := utils.OrDefault(post.LastEditUserID, post.AuthorID)

	var created *models.Post
	var err error
	if post.ID == 0 {
		created, err = db.QueryOne[models.Post](ctx, tx,
			`
			INSERT INTO post (
				author_id,
				content, html, title, tags,
				views, score, comment_count, revision_count,
				creation_date, lastedit_date, lastedit_user_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING $columns
			`,
			post.AuthorID,
			post.Content, post.HTML, post.Title, post.Tags,
			post.Views, post.Score, post.CommentCount, post.RevisionCount,
			creationDate, editDate, editUserId,
		)
	} else {
		created, err = db.QueryOne[models.Post](ctx, tx,
			`
			INSERT INTO post (
				id, author_id,
				content, html, title, tags,
				views, score, comment_count, revision_count,
				creation_date, lastedit_date, lastedit_user_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING $columns
			`,
			post.ID, post.AuthorID,
			post.Content, post.HTML, post.Title, post.Tags,
			post.Views, post.Score, post.CommentCount, post.RevisionCount,
			creationDate, editDate, editUserId,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create post")
	}

	return created, nil
}

func FetchPost(ctx context.Context, conn db.ConnOrTx, postId int) (*models.Post, error) {
	return db.QueryOne[models.Post](ctx, conn,
		`SELECT $columns FROM post WHERE id = $1`,
		postId,
	)
}

type PostAndAuthor struct {
	Post   models.Post `db:"post"`
	Author models.User `db:"author"`
}

func FetchPostAndAuthor(ctx context.Context, conn db.ConnOrTx, postId int) (*PostAndAuthor, error) {
	return db.QueryOne[PostAndAuthor](ctx, conn,
		`
		SELECT $columns
		FROM
			post
			JOIN biostar_user AS author ON author.id = post.author_id
		WHERE post.id = $1
		`,
		postId,
	)
}

/*
Reports whether user may edit the given post. Staff may edit anything;
otherwise only the post's author may edit it. With strict set, a negative
result is returned as ErrAccessDenied so callers can propagate it directly.
*/
func AuthorizePostEdit(ctx context.Context, conn db.ConnOrTx, user *models.User, postId int, strict bool) (bool, error) {
	if user != nil && user.IsStaff {
		return true, nil
	}

	authorId, err := db.QueryOneScalar[int](ctx, conn,
		`SELECT author_id FROM post WHERE id = $1`,
		postId,
	)
	if err != nil {
		return false, oops.New(err, "failed to fetch author of post %d", postId)
	}

	allowed := user != nil && user.ID == authorId
	if !allowed && strict {
		return false, ErrAccessDenied
	}

	return allowed, nil
}

// A straight atomic increment; views are not part of the apply protocol.
func IncrementPostViews(ctx context.Context, conn db.ConnOrTx, postId int) error {
	_, err := conn.Exec(ctx,
		`UPDATE post SET views = views + 1 WHERE id = $1`,
		postId,
	)
	if err != nil {
		return oops.New(err, "failed to increment views of post %d", postId)
	}

	return nil
}
