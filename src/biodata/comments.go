package biodata

import (
	"context"
	"time"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
	"git.biostar.network/biostar/biostar/src/utils"
)

type commentEffect struct {
	Comment *models.Comment
}

func (e commentEffect) ApplyEffects(ctx context.Context, tx db.ConnOrTx, dir Direction) error {
	_, err := tx.Exec(ctx,
		`
		---- Update parent post comment count
		UPDATE post
		SET comment_count = comment_count + $1
		WHERE id = $2
		`,
		int(dir),
		e.Comment.ParentID,
	)
	if err != nil {
		return oops.New(err, "failed to update post comment count")
	}

	return nil
}

type CommentAndStuff struct {
	Comment models.Comment `db:"comment"`
	Post    models.Post    `db:"post"`
	Author  models.User    `db:"author"`
}

func FetchComments(ctx context.Context, conn db.ConnOrTx, parentPostId int) ([]*CommentAndStuff, error) {
	comments, err := db.Query[CommentAndStuff](ctx, conn,
		`
		SELECT $columns
		FROM
			comment
			JOIN post ON post.id = comment.post_id
			JOIN biostar_user AS author ON author.id = post.author_id
		WHERE comment.parent_id = $1
		ORDER BY post.creation_date ASC
		`,
		parentPostId,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch comments for post %d", parentPostId)
	}

	return comments, nil
}

/*
Inserts a comment record, incrementing the parent post's comment count when
applyEffects is true. A nonzero comment.ID is preserved (used by snapshot
import).
*/
func CreateCommentRecord(ctx context.Context, tx db.ConnOrTx, comment *models.Comment, applyEffects bool) (*models.Comment, error) {
	editDate := utils.OrDefault(comment.LastEditDate, time.Now())

	var created *models.Comment
	var err error
	if comment.ID == 0 {
		created, err = db.QueryOne[models.Comment](ctx, tx,
			`
			INSERT INTO comment (parent_id, post_id, lastedit_date)
			VALUES ($1, $2, $3)
			RETURNING $columns
			`,
			comment.ParentID, comment.PostID, editDate,
		)
	} else {
		created, err = db.QueryOne[models.Comment](ctx, tx,
			`
			INSERT INTO comment (id, parent_id, post_id, lastedit_date)
			VALUES ($1, $2, $3, $4)
			RETURNING $columns
			`,
			comment.ID, comment.ParentID, comment.PostID, editDate,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create comment")
	}

	if applyEffects {
		err = commentEffect{created}.ApplyEffects(ctx, tx, Apply)
		if err != nil {
			return nil, err
		}
	}

	return created, nil
}

// Deletes every comment on a post, for use when deleting the post.
func deleteCommentsOnPost(ctx context.Context, tx db.ConnOrTx, parentPostId int) error {
	commentIds, err := db.QueryScalar[int](ctx, tx,
		`SELECT id FROM comment WHERE parent_id = $1`,
		parentPostId,
	)
	if err != nil {
		return oops.New(err, "failed to fetch comments on post %d", parentPostId)
	}

	for _, commentId := range commentIds {
		err = DeleteCommentRecord(ctx, tx, commentId)
		if err != nil {
			return err
		}
	}

	return nil
}

// Comments on a post (a question's or an answer's) with a new post.
func CreateComment(ctx context.Context, conn db.ConnOrTx, parentPostId int, authorId int, content string) (*models.Comment, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err := CreatePostRecord(ctx, tx, &models.Post{AuthorID: authorId})
	if err != nil {
		return nil, err
	}

	comment, err := CreateCommentRecord(ctx, tx, &models.Comment{
		ParentID: parentPostId,
		PostID:   post.ID,
	}, true)
	if err != nil {
		return nil, err
	}

	_, err = CreateRevision(ctx, tx, post.ID, RevisionOptions{
		Content: &content,
	})
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit transaction")
	}

	return comment, nil
}

/*
Deletes a comment along with its post, unapplying the parent's comment count
and the effects of any votes on the comment or replies to it.
*/
func DeleteCommentRecord(ctx context.Context, conn db.ConnOrTx, commentId int) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	comment, err := db.QueryOne[models.Comment](ctx, tx,
		`SELECT $columns FROM comment WHERE id = $1`,
		commentId,
	)
	if err != nil {
		return oops.New(err, "failed to fetch comment for deletion")
	}

	err = deleteVotesOnPost(ctx, tx, comment.PostID)
	if err != nil {
		return err
	}
	err = deleteCommentsOnPost(ctx, tx, comment.PostID)
	if err != nil {
		return err
	}

	err = commentEffect{comment}.ApplyEffects(ctx, tx, Unapply)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM comment WHERE id = $1`, commentId)
	if err != nil {
		return oops.New(err, "failed to delete comment")
	}
	_, err = tx.Exec(ctx, `DELETE FROM post WHERE id = $1`, comment.PostID)
	if err != nil {
		return oops.New(err, "failed to delete comment post")
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit transaction")
	}

	return nil
}
