package site

import (
	"context"
	"os"
	"os/signal"
	"time"

	"git.biostar.network/biostar/biostar/src/biodata"
	"git.biostar.network/biostar/biostar/src/config"
	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/jobs"
	"git.biostar.network/biostar/biostar/src/logging"
	"git.biostar.network/biostar/biostar/src/utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jpillora/backoff"
	"github.com/spf13/cobra"
)

var SiteCommand = &cobra.Command{
	Short: "Run the Biostar content engine",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)
		logging.Info().Msg("Hello, Biostar!")

		conn := db.NewConnPool()
		defer conn.Close()

		if !waitForDatabase(conn) {
			return
		}

		backgroundJobs := jobs.Jobs{
			biodata.PeriodicallyVerifyCounters(conn),
		}

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		<-signals // First SIGINT (start shutdown)
		logging.Info().Msg("Shutting down")

		go func() {
			<-signals // Second SIGINT (force quit)
			logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the site")
			os.Exit(1)
		}()

		unfinished := backgroundJobs.CancelAndWait(10 * time.Second)
		if len(unfinished) == 0 {
			logging.Info().Msg("Background jobs closed gracefully")
		} else {
			logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
		}
	},
}

// The database may still be coming up when we are. Reports false if we got
// interrupted while waiting.
func waitForDatabase(conn *pgxpool.Pool) bool {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	boff := backoff.Backoff{
		Min: 250 * time.Millisecond,
		Max: 30 * time.Second,
	}
	for {
		err := conn.Ping(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return false
		}
		dur := boff.Duration()
		logging.Error().
			Err(err).
			Dur("retrying after", dur).
			Msg("database is not available yet")
		utils.SleepContext(ctx, dur)
	}
	logging.Info().
		Str("host", config.Config.Postgres.Hostname).
		Str("dbname", config.Config.Postgres.DbName).
		Msg("Connected to the database")

	return true
}
