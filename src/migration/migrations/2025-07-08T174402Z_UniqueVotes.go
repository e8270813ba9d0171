package migrations

import (
	"context"
	"time"

	"git.biostar.network/biostar/biostar/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(UniqueVotes{})
}

type UniqueVotes struct{}

func (m UniqueVotes) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 7, 8, 17, 44, 2, 0, time.UTC))
}

func (m UniqueVotes) Name() string {
	return "UniqueVotes"
}

func (m UniqueVotes) Description() string {
	return "Enforces at most one active vote per user, post and type"
}

func (m UniqueVotes) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM vote
		WHERE id NOT IN (
			SELECT MIN(id)
			FROM vote
			GROUP BY author_id, post_id, type
		);

		ALTER TABLE vote
			ADD CONSTRAINT vote_unique_per_user_and_type UNIQUE (author_id, post_id, type);
	`)
	return err
}

func (m UniqueVotes) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE vote
			DROP CONSTRAINT vote_unique_per_user_and_type;
	`)
	return err
}
