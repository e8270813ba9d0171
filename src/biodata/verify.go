package biodata

import (
	"context"
	"fmt"
	"time"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/jobs"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
	"git.biostar.network/biostar/biostar/src/utils"
	"github.com/jackc/pgx/v5/pgxpool"
)

// A denormalized counter whose stored value disagrees with a recount from
// the underlying records.
type CounterDrift struct {
	Entity  string
	ID      int
	Counter string
	Stored  int
	Actual  int
}

func (d CounterDrift) String() string {
	return fmt.Sprintf("%s %d: %s is %d, should be %d", d.Entity, d.ID, d.Counter, d.Stored, d.Actual)
}

/*
Recomputes every denormalized counter from first principles and reports all
mismatches. A healthy database returns an empty slice. These queries are
aggregates over whole tables; run this from an admin task, not a request.
*/
func VerifyCounters(ctx context.Context, conn db.ConnOrTx) ([]CounterDrift, error) {
	var drifts []CounterDrift

	checks := []struct {
		entity, counter, query string
	}{
		{"tag", "count", `
			SELECT t.id, t.count, COUNT(pt.post_id)
			FROM
				tag AS t
				LEFT JOIN post_tag AS pt ON pt.tag_id = t.id
			GROUP BY t.id
		`},
		{"post", "score", fmt.Sprintf(`
			SELECT p.id, p.score, COALESCE(SUM(CASE v.type WHEN %d THEN 1 WHEN %d THEN -1 ELSE 0 END), 0)
			FROM
				post AS p
				LEFT JOIN vote AS v ON v.post_id = p.id
			GROUP BY p.id
		`, models.VoteUp, models.VoteDown)},
		{"post", "comment_count", `
			SELECT p.id, p.comment_count, COUNT(c.id)
			FROM
				post AS p
				LEFT JOIN comment AS c ON c.parent_id = p.id
			GROUP BY p.id
		`},
		{"post", "revision_count", `
			SELECT p.id, p.revision_count, COUNT(r.id)
			FROM
				post AS p
				LEFT JOIN post_revision AS r ON r.post_id = p.id
			GROUP BY p.id
		`},
		{"question", "answer_count", `
			SELECT q.id, q.answer_count, COUNT(a.id)
			FROM
				question AS q
				LEFT JOIN answer AS a ON a.question_id = q.id
			GROUP BY q.id
		`},
		{"user", "score", fmt.Sprintf(`
			SELECT
				u.id,
				u.score,
				COALESCE((
					SELECT SUM(CASE v.type WHEN %d THEN 10 WHEN %d THEN -2 WHEN %d THEN 15 ELSE 0 END)
					FROM vote AS v JOIN post AS p ON p.id = v.post_id
					WHERE p.author_id = u.id
				), 0)
				+ COALESCE((
					SELECT SUM(CASE v.type WHEN %d THEN -1 WHEN %d THEN 2 ELSE 0 END)
					FROM vote AS v
					WHERE v.author_id = u.id
				), 0)
			FROM biostar_user AS u
		`, models.VoteUp, models.VoteDown, models.VoteAccept, models.VoteDown, models.VoteAccept)},
		{"badge", "count", `
			SELECT b.id, b.count, COUNT(a.id)
			FROM
				badge AS b
				LEFT JOIN award AS a ON a.badge_id = b.id
			GROUP BY b.id
		`},
	}

	for tier, counter := range map[models.BadgeTier]string{
		models.BadgeBronze: "bronze_badges",
		models.BadgeSilver: "silver_badges",
		models.BadgeGold:   "gold_badges",
	} {
		checks = append(checks, struct {
			entity, counter, query string
		}{"user", counter, fmt.Sprintf(`
			SELECT u.id, u.%s, COALESCE((
				SELECT COUNT(*)
				FROM award AS a JOIN badge AS b ON b.id = a.badge_id
				WHERE a.user_id = u.id AND b.tier = %d
			), 0)
			FROM biostar_user AS u
		`, counter, tier)},
		)
	}

	for _, check := range checks {
		found, err := runCounterCheck(ctx, conn, check.entity, check.counter, check.query)
		if err != nil {
			return nil, err
		}
		drifts = append(drifts, found...)
	}

	return drifts, nil
}

// Audits all counters once a day. Drift means some write path skipped the
// apply protocol and needs fixing.
func PeriodicallyVerifyCounters(conn *pgxpool.Pool) *jobs.Job {
	job := jobs.New("periodically verify counters")
	go func() {
		defer job.Finish()

		t := time.NewTicker(24 * time.Hour)
		defer t.Stop()
		for {
			err := func() (err error) {
				defer utils.RecoverPanicAsError(&err)

				drifts, err := VerifyCounters(job.Ctx, conn)
				if err != nil {
					return err
				}
				for _, drift := range drifts {
					job.Logger.Error().Str("counter", drift.String()).Msg("Counter drift detected")
				}
				if len(drifts) == 0 {
					job.Logger.Info().Msg("All counters check out")
				}
				return nil
			}()
			if err != nil {
				job.Logger.Error().Err(err).Msg("Failed to verify counters")
			}

			select {
			case <-t.C:
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}

func runCounterCheck(ctx context.Context, conn db.ConnOrTx, entity, counter, query string) ([]CounterDrift, error) {
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, oops.New(err, "failed to verify %s.%s", entity, counter)
	}
	defer rows.Close()

	var drifts []CounterDrift
	for rows.Next() {
		var id, stored, actual int
		err = rows.Scan(&id, &stored, &actual)
		if err != nil {
			return nil, oops.New(err, "failed to scan %s.%s row", entity, counter)
		}
		if stored != actual {
			drifts = append(drifts, CounterDrift{
				Entity:  entity,
				ID:      id,
				Counter: counter,
				Stored:  stored,
				Actual:  actual,
			})
		}
	}
	if rows.Err() != nil {
		return nil, oops.New(rows.Err(), "failed while verifying %s.%s", entity, counter)
	}

	return drifts, nil
}
