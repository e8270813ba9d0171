/*
This package contains lowish-level APIs for making database queries to our Postgres database. It streamlines the process of mapping query results to Go types, while allowing you to write arbitrary SQL queries.

The primary functions are Query and QueryIterator. See the package and function examples for detailed usage.

# Query syntax

This package allows a few small extensions to SQL syntax to streamline the interaction between Go and Postgres.

Arguments can be provided using placeholders like $1, $2, etc. All arguments will be safely escaped and mapped from their Go type to the correct Postgres type. (This is a direct proxy to pgx.)

	postIDs, err := db.Query[int](ctx, conn,
		`
		SELECT id
		FROM post
		WHERE
			author_id = ANY($1)
			AND score >= $2
		`,
		[]int{1, 2, 3},
		10,
	)

(This also demonstrates a useful tip: if you want to use a slice in your query, use Postgres arrays instead of IN.)

When querying individual fields, you can simply select the field like so:

	ids, err := db.Query[int](ctx, conn, `SELECT id FROM post`)

To query multiple columns at once, you may use a struct type with `db:"column_name"` tags, and the special $columns placeholder:

	type Tag struct {
		ID    int    `db:"id"`
		Name  string `db:"name"`
		Count int    `db:"count"`
	}
	tags, err := db.Query[Tag](ctx, conn, `SELECT $columns FROM ...`)
	// Resulting query:
	// SELECT id, name, count FROM ...

Sometimes a table name prefix is required on each column to disambiguate between column names, especially when performing a JOIN. In those situations, you can include the prefix in the $columns placeholder like $columns{prefix}:

	danglingTags, err := db.Query[Tag](ctx, conn, `
		SELECT $columns{tag}
		FROM
			tag
			LEFT JOIN post_tag ON post_tag.tag_id = tag.id
		WHERE
			post_tag.post_id IS NULL
	`)
	// Resulting query:
	// SELECT tag.id, tag.name, tag.count FROM ...
*/
package db
