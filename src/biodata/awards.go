package biodata

import (
	"context"
	"time"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
	"git.biostar.network/biostar/biostar/src/utils"
)

type awardEffect struct {
	Award *models.Award
}

func (e awardEffect) ApplyEffects(ctx context.Context, tx db.ConnOrTx, dir Direction) error {
	_, err := tx.Exec(ctx,
		`
		---- Update recipient badge tallies
		UPDATE biostar_user
		SET
			bronze_badges = bronze_badges + (CASE WHEN badge.tier = $1 THEN $4 ELSE 0 END),
			silver_badges = silver_badges + (CASE WHEN badge.tier = $2 THEN $4 ELSE 0 END),
			gold_badges = gold_badges + (CASE WHEN badge.tier = $3 THEN $4 ELSE 0 END)
		FROM badge
		WHERE
			biostar_user.id = $5
			AND badge.id = $6
		`,
		models.BadgeBronze, models.BadgeSilver, models.BadgeGold,
		int(dir),
		e.Award.UserID,
		e.Award.BadgeID,
	)
	if err != nil {
		return oops.New(err, "failed to update user badge tallies")
	}

	_, err = tx.Exec(ctx,
		`
		---- Update badge award count
		UPDATE badge
		SET count = count + $1
		WHERE id = $2
		`,
		int(dir),
		e.Award.BadgeID,
	)
	if err != nil {
		return oops.New(err, "failed to update badge award count")
	}

	return nil
}

type BadgeQuery struct {
	IDs   []int
	Names []string

	IncludeSecret bool

	Limit, Offset int
}

func FetchBadges(ctx context.Context, conn db.ConnOrTx, q BadgeQuery) ([]*models.Badge, error) {
	var qb db.QueryBuilder
	qb.Add(
		`
		SELECT $columns
		FROM badge
		WHERE TRUE
		`,
	)
	if len(q.IDs) > 0 {
		qb.Add(`AND id = ANY ($?)`, q.IDs)
	}
	if len(q.Names) > 0 {
		qb.Add(`AND name = ANY ($?)`, q.Names)
	}
	if !q.IncludeSecret {
		qb.Add(`AND NOT secret`)
	}
	qb.Add(`ORDER BY tier DESC, name ASC`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	badges, err := db.Query[models.Badge](ctx, conn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch badges")
	}

	return badges, nil
}

func CreateBadge(ctx context.Context, conn db.ConnOrTx, badge *models.Badge) (*models.Badge, error) {
	var created *models.Badge
	var err error
	if badge.ID == 0 {
		created, err = db.QueryOne[models.Badge](ctx, conn,
			`
			INSERT INTO badge (name, description, tier, unique_award, secret, count)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING $columns
			`,
			badge.Name, badge.Description, badge.Tier, badge.Unique, badge.Secret, badge.Count,
		)
	} else {
		created, err = db.QueryOne[models.Badge](ctx, conn,
			`
			INSERT INTO badge (id, name, description, tier, unique_award, secret, count)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING $columns
			`,
			badge.ID, badge.Name, badge.Description, badge.Tier, badge.Unique, badge.Secret, badge.Count,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create badge")
	}

	return created, nil
}

/*
Awards a badge to a user. Unique badges are enforced here: the badge row is
locked for the duration of the transaction, so two concurrent grants of the
same unique badge cannot both pass the existence check. Granting a unique
badge the user already has returns ErrDuplicateAward.
*/
func GrantAward(ctx context.Context, conn db.ConnOrTx, badgeId int, userId int, date time.Time) (*models.Award, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	badge, err := db.QueryOne[models.Badge](ctx, tx,
		`SELECT $columns FROM badge WHERE id = $1 FOR UPDATE`,
		badgeId,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch badge %d", badgeId)
	}

	if badge.Unique {
		numExisting, err := db.QueryOneScalar[int](ctx, tx,
			`SELECT COUNT(*) FROM award WHERE badge_id = $1 AND user_id = $2`,
			badgeId, userId,
		)
		if err != nil {
			return nil, oops.New(err, "failed to check for existing award")
		}
		if numExisting > 0 {
			return nil, ErrDuplicateAward
		}
	}

	award, err := CreateAwardRecord(ctx, tx, &models.Award{
		BadgeID: badgeId,
		UserID:  userId,
		Date:    date,
	}, true)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit transaction")
	}

	return award, nil
}

/*
Inserts an award record, updating the recipient's tier tally and the badge's
award count when applyEffects is true. A nonzero award.ID is preserved (used
by snapshot import). Unlike GrantAward, this does not enforce uniqueness.
*/
func CreateAwardRecord(ctx context.Context, tx db.ConnOrTx, award *models.Award, applyEffects bool) (*models.Award, error) {
	date := utils.OrDefault(award.Date, time.Now())

	var created *models.Award
	var err error
	if award.ID == 0 {
		created, err = db.QueryOne[models.Award](ctx, tx,
			`
			INSERT INTO award (badge_id, user_id, date)
			VALUES ($1, $2, $3)
			RETURNING $columns
			`,
			award.BadgeID, award.UserID, date,
		)
	} else {
		created, err = db.QueryOne[models.Award](ctx, tx,
			`
			INSERT INTO award (id, badge_id, user_id, date)
			VALUES ($1, $2, $3, $4)
			RETURNING $columns
			`,
			award.ID, award.BadgeID, award.UserID, date,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create award")
	}

	if applyEffects {
		err = awardEffect{created}.ApplyEffects(ctx, tx, Apply)
		if err != nil {
			return nil, err
		}
	}

	return created, nil
}

// Unapplies an award's effects and deletes the record.
func DeleteAwardRecord(ctx context.Context, conn db.ConnOrTx, awardId int) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	award, err := db.QueryOne[models.Award](ctx, tx,
		`SELECT $columns FROM award WHERE id = $1`,
		awardId,
	)
	if err != nil {
		return oops.New(err, "failed to fetch award for deletion")
	}

	err = awardEffect{award}.ApplyEffects(ctx, tx, Unapply)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM award WHERE id = $1`, awardId)
	if err != nil {
		return oops.New(err, "failed to delete award")
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit transaction")
	}

	return nil
}
