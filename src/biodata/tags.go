package biodata

import (
	"context"
	"errors"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
)

type TagQuery struct {
	IDs   []int
	Names []string

	Limit, Offset int
}

func FetchTags(ctx context.Context, conn db.ConnOrTx, q TagQuery) ([]*models.Tag, error) {
	var qb db.QueryBuilder
	qb.Add(
		`
		SELECT $columns
		FROM tag
		WHERE TRUE
		`,
	)
	if len(q.IDs) > 0 {
		qb.Add(`AND id = ANY ($?)`, q.IDs)
	}
	if len(q.Names) > 0 {
		qb.Add(`AND name = ANY ($?)`, q.Names)
	}
	qb.Add(`ORDER BY count DESC, name ASC`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	tags, err := db.Query[models.Tag](ctx, conn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch tags")
	}

	return tags, nil
}

// The ordered tag names of a post, parsed from its canonical tag string.
func PostTags(ctx context.Context, conn db.ConnOrTx, postId int) ([]string, error) {
	tagString, err := db.QueryOneScalar[string](ctx, conn,
		`SELECT tags FROM post WHERE id = $1`,
		postId,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch tags for post %d", postId)
	}

	return models.ParseTagString(tagString), nil
}

/*
Replaces a post's tag set with the tags named in tagString, diffing against
the current set so that each tag's usage count changes by exactly the
difference. Invalid tag names are rejected. Setting the same tags twice in a
row changes nothing.
*/
func SetPostTags(ctx context.Context, conn db.ConnOrTx, postId int, tagString string) error {
	newNames := models.ParseTagString(tagString)
	for _, name := range newNames {
		if !models.ValidateTagName(name) {
			return oops.New(nil, "invalid tag name: %q", name)
		}
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	// The post row is the canonical record of its tag set; lock it so
	// concurrent edits of the same post serialize.
	oldTagString, err := db.QueryOneScalar[string](ctx, tx,
		`SELECT tags FROM post WHERE id = $1 FOR UPDATE`,
		postId,
	)
	if err != nil {
		return oops.New(err, "failed to fetch post %d for tagging", postId)
	}
	oldNames := models.ParseTagString(oldTagString)

	added, removed := diffTagNames(oldNames, newNames)

	if len(removed) > 0 {
		_, err = tx.Exec(ctx,
			`
			---- Decrement usage counts of removed tags
			UPDATE tag
			SET count = GREATEST(count - 1, 0)
			WHERE name = ANY ($1)
			`,
			removed,
		)
		if err != nil {
			return oops.New(err, "failed to decrement tag counts")
		}
		_, err = tx.Exec(ctx,
			`
			DELETE FROM post_tag
			WHERE
				post_id = $1
				AND tag_id IN (SELECT id FROM tag WHERE name = ANY ($2))
			`,
			postId, removed,
		)
		if err != nil {
			return oops.New(err, "failed to remove tags from post")
		}
	}

	for _, name := range added {
		tag, err := fetchOrCreateTag(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`
			---- Increment usage count of added tag
			UPDATE tag
			SET count = count + 1
			WHERE id = $1
			`,
			tag.ID,
		)
		if err != nil {
			return oops.New(err, "failed to increment tag count")
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO post_tag (post_id, tag_id) VALUES ($1, $2)`,
			postId, tag.ID,
		)
		if err != nil {
			return oops.New(err, "failed to add tag to post")
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE post SET tags = $1 WHERE id = $2`,
		models.TagString(newNames),
		postId,
	)
	if err != nil {
		return oops.New(err, "failed to update post tag string")
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit transaction")
	}

	return nil
}

/*
Computes the set difference between two lists of unique tag names. added
preserves the order of newNames.
*/
func diffTagNames(oldNames, newNames []string) (added, removed []string) {
	inOld := make(map[string]bool, len(oldNames))
	for _, name := range oldNames {
		inOld[name] = true
	}
	inNew := make(map[string]bool, len(newNames))
	for _, name := range newNames {
		inNew[name] = true
	}

	for _, name := range newNames {
		if !inOld[name] {
			added = append(added, name)
		}
	}
	for _, name := range oldNames {
		if !inNew[name] {
			removed = append(removed, name)
		}
	}

	return added, removed
}

/*
Fetches the tag with the given name, creating it with a count of zero if it
does not exist yet. The ON CONFLICT dance returns the existing row when a
concurrent transaction creates the tag first.
*/
func fetchOrCreateTag(ctx context.Context, tx db.ConnOrTx, name string) (*models.Tag, error) {
	tag, err := db.QueryOne[models.Tag](ctx, tx,
		`SELECT $columns FROM tag WHERE name = $1`,
		name,
	)
	if err == nil {
		return tag, nil
	} else if !errors.Is(err, db.NotFound) {
		return nil, oops.New(err, "failed to fetch tag %q", name)
	}

	tag, err = db.QueryOne[models.Tag](ctx, tx,
		`
		INSERT INTO tag (name, count)
		VALUES ($1, 0)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING $columns
		`,
		name,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create tag %q", name)
	}

	return tag, nil
}
