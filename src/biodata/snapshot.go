package biodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
)

/*
A complete dump of the site's content, counters included. Snapshots round-trip:
importing an exported snapshot reproduces every table exactly, because import
inserts all records with effects disabled rather than replaying them.
*/
type Snapshot struct {
	Users     []*models.User         `json:"users"`
	Posts     []*models.Post         `json:"posts"`
	Questions []*models.Question     `json:"questions"`
	Answers   []*models.Answer       `json:"answers"`
	Comments  []*models.Comment      `json:"comments"`
	Tags      []*models.Tag          `json:"tags"`
	PostTags  []*models.PostTag      `json:"post_tags"`
	Votes     []*models.Vote         `json:"votes"`
	Badges    []*models.Badge        `json:"badges"`
	Awards    []*models.Award        `json:"awards"`
	Revisions []*models.PostRevision `json:"revisions"`
}

func ExportSnapshot(ctx context.Context, conn db.ConnOrTx, w io.Writer) error {
	var snapshot Snapshot
	var err error

	snapshot.Users, err = db.Query[models.User](ctx, conn, `SELECT $columns FROM biostar_user ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export users")
	}
	snapshot.Posts, err = db.Query[models.Post](ctx, conn, `SELECT $columns FROM post ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export posts")
	}
	snapshot.Questions, err = db.Query[models.Question](ctx, conn, `SELECT $columns FROM question ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export questions")
	}
	snapshot.Answers, err = db.Query[models.Answer](ctx, conn, `SELECT $columns FROM answer ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export answers")
	}
	snapshot.Comments, err = db.Query[models.Comment](ctx, conn, `SELECT $columns FROM comment ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export comments")
	}
	snapshot.Tags, err = db.Query[models.Tag](ctx, conn, `SELECT $columns FROM tag ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export tags")
	}
	snapshot.PostTags, err = db.Query[models.PostTag](ctx, conn, `SELECT $columns FROM post_tag ORDER BY post_id, tag_id`)
	if err != nil {
		return oops.New(err, "failed to export post tags")
	}
	snapshot.Votes, err = db.Query[models.Vote](ctx, conn, `SELECT $columns FROM vote ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export votes")
	}
	snapshot.Badges, err = db.Query[models.Badge](ctx, conn, `SELECT $columns FROM badge ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export badges")
	}
	snapshot.Awards, err = db.Query[models.Award](ctx, conn, `SELECT $columns FROM award ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export awards")
	}
	snapshot.Revisions, err = db.Query[models.PostRevision](ctx, conn, `SELECT $columns FROM post_revision ORDER BY id`)
	if err != nil {
		return oops.New(err, "failed to export revisions")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	err = enc.Encode(snapshot)
	if err != nil {
		return oops.New(err, "failed to encode snapshot")
	}

	return nil
}

/*
Loads a snapshot into an empty database. Every record is inserted with its
original id and with effects disabled; the exported counters are already the
result of every effect, so replaying them would double-count. Runs in one
transaction, so a failed import leaves nothing behind.
*/
func ImportSnapshot(ctx context.Context, conn db.ConnOrTx, r io.Reader) error {
	var snapshot Snapshot
	err := json.NewDecoder(r).Decode(&snapshot)
	if err != nil {
		return oops.New(err, "failed to decode snapshot")
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	for _, user := range snapshot.Users {
		_, err = CreateUserRecord(ctx, tx, user)
		if err != nil {
			return err
		}
	}
	for _, post := range snapshot.Posts {
		_, err = CreatePostRecord(ctx, tx, post)
		if err != nil {
			return err
		}
	}
	for _, question := range snapshot.Questions {
		_, err = CreateQuestionRecord(ctx, tx, question)
		if err != nil {
			return err
		}
	}
	for _, answer := range snapshot.Answers {
		_, err = CreateAnswerRecord(ctx, tx, answer, false)
		if err != nil {
			return err
		}
	}
	for _, comment := range snapshot.Comments {
		_, err = CreateCommentRecord(ctx, tx, comment, false)
		if err != nil {
			return err
		}
	}
	for _, tag := range snapshot.Tags {
		_, err = tx.Exec(ctx,
			`INSERT INTO tag (id, name, count) VALUES ($1, $2, $3)`,
			tag.ID, tag.Name, tag.Count,
		)
		if err != nil {
			return oops.New(err, "failed to import tag %q", tag.Name)
		}
	}
	for _, postTag := range snapshot.PostTags {
		_, err = tx.Exec(ctx,
			`INSERT INTO post_tag (post_id, tag_id) VALUES ($1, $2)`,
			postTag.PostID, postTag.TagID,
		)
		if err != nil {
			return oops.New(err, "failed to import post tag")
		}
	}
	for _, vote := range snapshot.Votes {
		_, err = CreateVoteRecord(ctx, tx, vote, false)
		if err != nil {
			return err
		}
	}
	for _, badge := range snapshot.Badges {
		_, err = CreateBadge(ctx, tx, badge)
		if err != nil {
			return err
		}
	}
	for _, award := range snapshot.Awards {
		_, err = CreateAwardRecord(ctx, tx, award, false)
		if err != nil {
			return err
		}
	}
	for _, revision := range snapshot.Revisions {
		_, err = CreateRevisionRecord(ctx, tx, revision, false)
		if err != nil {
			return err
		}
	}

	// Records went in with explicit ids, so the sequences never advanced.
	for _, table := range []string{
		"biostar_user", "post", "question", "answer", "comment",
		"tag", "vote", "badge", "award", "post_revision",
	} {
		_, err = tx.Exec(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 0) + 1 FROM %s), false)`,
			table, table,
		))
		if err != nil {
			return oops.New(err, "failed to reset id sequence for %s", table)
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit transaction")
	}

	return nil
}
