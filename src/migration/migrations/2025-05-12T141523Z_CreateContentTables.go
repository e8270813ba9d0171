package migrations

import (
	"context"
	"time"

	"git.biostar.network/biostar/biostar/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(CreateContentTables{})
}

type CreateContentTables struct{}

func (m CreateContentTables) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 5, 12, 14, 15, 23, 0, time.UTC))
}

func (m CreateContentTables) Name() string {
	return "CreateContentTables"
}

func (m CreateContentTables) Description() string {
	return "Creates users, posts, questions, answers, comments, tags, votes and revisions"
}

func (m CreateContentTables) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE biostar_user (
			id SERIAL NOT NULL PRIMARY KEY,
			username VARCHAR(150) NOT NULL UNIQUE,
			email VARCHAR(254) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			is_staff BOOLEAN NOT NULL DEFAULT FALSE,
			score INT NOT NULL DEFAULT 0,
			date_joined TIMESTAMP WITH TIME ZONE NOT NULL,
			last_visited TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE TABLE post (
			id SERIAL NOT NULL PRIMARY KEY,
			author_id INT NOT NULL REFERENCES biostar_user (id) ON DELETE CASCADE,
			content TEXT NOT NULL DEFAULT '',
			html TEXT NOT NULL DEFAULT '',
			title VARCHAR(255) NOT NULL DEFAULT '',
			tags VARCHAR(255) NOT NULL DEFAULT '',
			views INT NOT NULL DEFAULT 0,
			score INT NOT NULL DEFAULT 0,
			comment_count INT NOT NULL DEFAULT 0,
			revision_count INT NOT NULL DEFAULT 0,
			creation_date TIMESTAMP WITH TIME ZONE NOT NULL,
			lastedit_date TIMESTAMP WITH TIME ZONE NOT NULL,
			lastedit_user_id INT NOT NULL REFERENCES biostar_user (id) ON DELETE CASCADE
		);
		CREATE INDEX post_author ON post (author_id);

		CREATE TABLE question (
			id SERIAL NOT NULL PRIMARY KEY,
			post_id INT NOT NULL UNIQUE REFERENCES post (id) ON DELETE CASCADE,
			answer_count INT NOT NULL DEFAULT 0,
			answer_accepted BOOLEAN NOT NULL DEFAULT FALSE,
			lastedit_date TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE TABLE answer (
			id SERIAL NOT NULL PRIMARY KEY,
			question_id INT NOT NULL REFERENCES question (id) ON DELETE CASCADE,
			post_id INT NOT NULL UNIQUE REFERENCES post (id) ON DELETE CASCADE,
			accepted BOOLEAN NOT NULL DEFAULT FALSE,
			lastedit_date TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX answer_question ON answer (question_id);

		CREATE TABLE comment (
			id SERIAL NOT NULL PRIMARY KEY,
			parent_id INT NOT NULL REFERENCES post (id) ON DELETE CASCADE,
			post_id INT NOT NULL UNIQUE REFERENCES post (id) ON DELETE CASCADE,
			lastedit_date TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX comment_parent ON comment (parent_id);

		CREATE TABLE tag (
			id SERIAL NOT NULL PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE,
			count INT NOT NULL DEFAULT 0
		);

		CREATE TABLE post_tag (
			post_id INT NOT NULL REFERENCES post (id) ON DELETE CASCADE,
			tag_id INT NOT NULL REFERENCES tag (id) ON DELETE CASCADE,
			PRIMARY KEY (post_id, tag_id)
		);

		CREATE TABLE vote (
			id SERIAL NOT NULL PRIMARY KEY,
			author_id INT NOT NULL REFERENCES biostar_user (id) ON DELETE CASCADE,
			post_id INT NOT NULL REFERENCES post (id) ON DELETE CASCADE,
			type INT NOT NULL
		);
		CREATE INDEX vote_post ON vote (post_id);

		CREATE TABLE post_revision (
			id SERIAL NOT NULL PRIMARY KEY,
			post_id INT NOT NULL REFERENCES post (id) ON DELETE CASCADE,
			content TEXT NOT NULL DEFAULT '',
			title VARCHAR(255) NOT NULL DEFAULT '',
			tags VARCHAR(255) NOT NULL DEFAULT '',
			author_id INT NOT NULL REFERENCES biostar_user (id) ON DELETE CASCADE,
			date TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX post_revision_post ON post_revision (post_id, date);
	`)
	return err
}

func (m CreateContentTables) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE post_revision;
		DROP TABLE vote;
		DROP TABLE post_tag;
		DROP TABLE tag;
		DROP TABLE comment;
		DROP TABLE answer;
		DROP TABLE question;
		DROP TABLE post;
		DROP TABLE biostar_user;
	`)
	return err
}
