package migrations

import (
	"context"
	"time"

	"git.biostar.network/biostar/biostar/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddBadges{})
}

type AddBadges struct{}

func (m AddBadges) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 6, 2, 9, 12, 7, 0, time.UTC))
}

func (m AddBadges) Name() string {
	return "AddBadges"
}

func (m AddBadges) Description() string {
	return "Adds badges, awards, and per-user badge tallies"
}

func (m AddBadges) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE badge (
			id SERIAL NOT NULL PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			description VARCHAR(200) NOT NULL DEFAULT '',
			tier INT NOT NULL DEFAULT 0,
			unique_award BOOLEAN NOT NULL DEFAULT FALSE,
			secret BOOLEAN NOT NULL DEFAULT FALSE,
			count INT NOT NULL DEFAULT 0
		);

		CREATE TABLE award (
			id SERIAL NOT NULL PRIMARY KEY,
			badge_id INT NOT NULL REFERENCES badge (id) ON DELETE CASCADE,
			user_id INT NOT NULL REFERENCES biostar_user (id) ON DELETE CASCADE,
			date TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX award_user ON award (user_id);
		CREATE INDEX award_badge ON award (badge_id);

		ALTER TABLE biostar_user
			ADD COLUMN bronze_badges INT NOT NULL DEFAULT 0,
			ADD COLUMN silver_badges INT NOT NULL DEFAULT 0,
			ADD COLUMN gold_badges INT NOT NULL DEFAULT 0;
	`)
	return err
}

func (m AddBadges) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE biostar_user
			DROP COLUMN bronze_badges,
			DROP COLUMN silver_badges,
			DROP COLUMN gold_badges;

		DROP TABLE award;
		DROP TABLE badge;
	`)
	return err
}
