package biodata

import (
	"context"
	"strings"
	"time"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
	"git.biostar.network/biostar/biostar/src/parsing"
	"git.biostar.network/biostar/biostar/src/utils"
)

type revisionEffect struct {
	Revision *models.PostRevision
}

func (e revisionEffect) ApplyEffects(ctx context.Context, tx db.ConnOrTx, dir Direction) error {
	_, err := tx.Exec(ctx,
		`
		---- Update post revision count
		UPDATE post
		SET revision_count = revision_count + $1
		WHERE id = $2
		`,
		int(dir),
		e.Revision.PostID,
	)
	if err != nil {
		return oops.New(err, "failed to update post revision count")
	}

	return nil
}

/*
Fields to change in an edit. Nil fields keep the post's current value, so a
pure retag is RevisionOptions{TagString: &tags} and so on. AuthorID is the
editor and defaults to the post's author; Date defaults to now.
*/
type RevisionOptions struct {
	Content   *string
	Title     *string
	TagString *string

	AuthorID *int
	Date     *time.Time
}

/*
Edits a post: appends an immutable revision snapshot and brings the post's
live fields up to date, all in one transaction.

The snapshot stores the content exactly as submitted. The post itself stores
the line-ending-normalized content plus the HTML rendered from it, and its
tag set is diffed via SetPostTags so tag usage counts stay exact.
*/
func CreateRevision(ctx context.Context, conn db.ConnOrTx, postId int, opts RevisionOptions) (*models.PostRevision, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err := db.QueryOne[models.Post](ctx, tx,
		`SELECT $columns FROM post WHERE id = $1 FOR UPDATE`,
		postId,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch post %d for editing", postId)
	}

	content := post.Content
	if opts.Content != nil {
		content = *opts.Content
	}
	title := post.Title
	if opts.Title != nil {
		title = *opts.Title
	}
	tagString := post.Tags
	if opts.TagString != nil {
		tagString = *opts.TagString
	}
	authorId := post.AuthorID
	if opts.AuthorID != nil {
		authorId = *opts.AuthorID
	}
	date := time.Now()
	if opts.Date != nil {
		date = *opts.Date
	}

	revision, err := CreateRevisionRecord(ctx, tx, &models.PostRevision{
		PostID:   postId,
		Content:  content,
		Title:    title,
		Tags:     models.TagString(models.ParseTagString(tagString)),
		AuthorID: authorId,
		Date:     date,
	}, true)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeLineEndings(content)
	_, err = tx.Exec(ctx,
		`
		UPDATE post
		SET
			content = $1,
			html = $2,
			title = $3,
			lastedit_date = $4,
			lastedit_user_id = $5
		WHERE id = $6
		`,
		normalized,
		parsing.ParsePostInput(normalized),
		title,
		date,
		authorId,
		postId,
	)
	if err != nil {
		return nil, oops.New(err, "failed to update post %d from revision", postId)
	}

	err = SetPostTags(ctx, tx, postId, tagString)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit transaction")
	}

	return revision, nil
}

/*
Inserts a revision record, incrementing the post's revision count when
applyEffects is true. A nonzero revision.ID is preserved (used by snapshot
import). This does not touch the post's live fields; use CreateRevision for
actual edits.
*/
func CreateRevisionRecord(ctx context.Context, tx db.ConnOrTx, revision *models.PostRevision, applyEffects bool) (*models.PostRevision, error) {
	date := utils.OrDefault(revision.Date, time.Now())

	var created *models.PostRevision
	var err error
	if revision.ID == 0 {
		created, err = db.QueryOne[models.PostRevision](ctx, tx,
			`
			INSERT INTO post_revision (post_id, content, title, tags, author_id, date)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING $columns
			`,
			revision.PostID, revision.Content, revision.Title, revision.Tags, revision.AuthorID, date,
		)
	} else {
		created, err = db.QueryOne[models.PostRevision](ctx, tx,
			`
			INSERT INTO post_revision (id, post_id, content, title, tags, author_id, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING $columns
			`,
			revision.ID, revision.PostID, revision.Content, revision.Title, revision.Tags, revision.AuthorID, date,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create post revision")
	}

	if applyEffects {
		err = revisionEffect{created}.ApplyEffects(ctx, tx, Apply)
		if err != nil {
			return nil, err
		}
	}

	return created, nil
}

/*
The revision the post's live fields were last updated from: the one with the
latest date, breaking ties by id. Returns db.NotFound for posts with no
revisions (which only happens for posts mid-creation).
*/
func CurrentRevision(ctx context.Context, conn db.ConnOrTx, postId int) (*models.PostRevision, error) {
	return db.QueryOne[models.PostRevision](ctx, conn,
		`
		SELECT $columns
		FROM post_revision
		WHERE post_id = $1
		ORDER BY date DESC, id DESC
		LIMIT 1
		`,
		postId,
	)
}

func FetchRevisions(ctx context.Context, conn db.ConnOrTx, postId int) ([]*models.PostRevision, error) {
	revisions, err := db.Query[models.PostRevision](ctx, conn,
		`
		SELECT $columns
		FROM post_revision
		WHERE post_id = $1
		ORDER BY date ASC, id ASC
		`,
		postId,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch revisions of post %d", postId)
	}

	return revisions, nil
}

// Renders a historical revision the same way the live post is rendered.
func RevisionHTML(revision *models.PostRevision) string {
	return parsing.ParsePostInput(NormalizeLineEndings(revision.Content))
}

// Converts all line endings to bare newlines.
func NormalizeLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return content
}
