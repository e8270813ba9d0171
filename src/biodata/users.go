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
Inserts a user record. Reputation and badge tallies normally start at zero
and are only ever touched by vote and award effects; snapshot import passes
users whose counters already include all effects, along with their ids.
*/
func CreateUserRecord(ctx context.Context, tx db.ConnOrTx, user *models.User) (*models.User, error) {
	now := time.Now()
	dateJoined := utils.OrDefault(user.DateJoined, now)
	lastVisited := utils.OrDefault(user.LastVisited, dateJoined)

	var created *models.User
	var err error
	if user.ID == 0 {
		created, err = db.QueryOne[models.User](ctx, tx,
			`
			INSERT INTO biostar_user (
				username, email, name, is_staff,
				score, bronze_badges, silver_badges, gold_badges,
				date_joined, last_visited
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING $columns
			`,
			user.Username, user.Email, user.Name, user.IsStaff,
			user.Score, user.BronzeBadges, user.SilverBadges, user.GoldBadges,
			dateJoined, lastVisited,
		)
	} else {
		created, err = db.QueryOne[models.User](ctx, tx,
			`
			INSERT INTO biostar_user (
				id, username, email, name, is_staff,
				score, bronze_badges, silver_badges, gold_badges,
				date_joined, last_visited
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING $columns
			`,
			user.ID, user.Username, user.Email, user.Name, user.IsStaff,
			user.Score, user.BronzeBadges, user.SilverBadges, user.GoldBadges,
			dateJoined, lastVisited,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create user")
	}

	return created, nil
}

func FetchUser(ctx context.Context, conn db.ConnOrTx, userId int) (*models.User, error) {
	return db.QueryOne[models.User](ctx, conn,
		`SELECT $columns FROM biostar_user WHERE id = $1`,
		userId,
	)
}

// Returns db.NotFound if no user has that username.
func FetchUserByUsername(ctx context.Context, conn db.ConnOrTx, username string) (*models.User, error) {
	return db.QueryOne[models.User](ctx, conn,
		`SELECT $columns FROM biostar_user WHERE LOWER(username) = LOWER($1)`,
		username,
	)
}

func TouchUserLastVisited(ctx context.Context, conn db.ConnOrTx, userId int) error {
	_, err := conn.Exec(ctx,
		`UPDATE biostar_user SET last_visited = $1 WHERE id = $2`,
		time.Now(),
		userId,
	)
	if err != nil {
		return oops.New(err, "failed to update user last visited time")
	}

	return nil
}
