package migration

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"time"

	"git.biostar.network/biostar/biostar/src/biodata"
	"git.biostar.network/biostar/biostar/src/config"
	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/utils"
	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/tracelog"
)

// Applies a cloned db to the local db.
// NOTE: The db role specified in the config must have the CREATEDB attribute! `ALTER ROLE biostar WITH CREATEDB;`
func SeedFromFile(seedFile string) {
	file, err := os.Open(seedFile)
	if err != nil {
		panic(fmt.Errorf("couldn't open seed file %s: %w", seedFile, err))
	}
	file.Close()

	ResetDB()
	Migrate(LatestVersion())

	fmt.Println("Executing seed...")
	cmd := exec.Command("pg_restore",
		"--single-transaction",
		"--data-only",
		"--dbname", config.Config.Postgres.DSN(),
		seedFile,
	)
	fmt.Println("Running command:", cmd)
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Print(string(output))
		panic(fmt.Errorf("failed to execute seed: %w", err))
	}

	fmt.Println("Done! You may want to migrate forward from here.")
	ListMigrations()
}

func ResetDB() {
	fmt.Println("Resetting database...")

	ctx := context.Background()
	// We connect to db "template1", because we have to connect to something
	// other than our own db in order to drop it. template1 always exists in
	// postgres; it's the db that gets cloned when you create new ones.
	template1DSN := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s",
		config.Config.Postgres.User,
		config.Config.Postgres.Password,
		config.Config.Postgres.Hostname,
		config.Config.Postgres.Port,
		"template1",
	)
	// We have to use the low-level API of pgconn, because the pgx Exec always
	// wraps the query in a transaction and you cannot drop databases inside one.
	lowLevelConn, err := pgconn.Connect(ctx, template1DSN)
	if err != nil {
		panic(fmt.Errorf("failed to connect to db: %w", err))
	}
	defer lowLevelConn.Close(ctx)

	result := lowLevelConn.ExecParams(ctx, fmt.Sprintf("DROP DATABASE %s", config.Config.Postgres.DbName), nil, nil, nil, nil)
	_, err = result.Close()
	pgErr, isPgError := err.(*pgconn.PgError)
	if err != nil {
		if !(isPgError && pgErr.SQLState() == "3D000") { // 3D000 means "Database does not exist"
			panic(fmt.Errorf("failed to drop db: %w", err))
		}
	}

	result = lowLevelConn.ExecParams(ctx, fmt.Sprintf("CREATE DATABASE %s", config.Config.Postgres.DbName), nil, nil, nil, nil)
	_, err = result.Close()
	if err != nil {
		panic(fmt.Errorf("failed to create db: %w", err))
	}
}

// Creates only what's necessary to get the site running: the schema and the
// standard badges. Sample data makes local dev a lot better.
func BareMinimumSeed() {
	ResetDB()
	Migrate(LatestVersion())

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		panic(err)
	}
	defer tx.Rollback(ctx)

	fmt.Println("Creating standard badges...")
	for _, badge := range []models.Badge{
		{Name: "Autobiographer", Description: "Has filled out their profile", Tier: models.BadgeBronze, Unique: true},
		{Name: "Student", Description: "Asked a question that was upvoted", Tier: models.BadgeBronze, Unique: true},
		{Name: "Teacher", Description: "Gave an answer that was upvoted", Tier: models.BadgeBronze, Unique: true},
		{Name: "Scholar", Description: "Accepted an answer", Tier: models.BadgeBronze, Unique: true},
		{Name: "Supporter", Description: "Voted at least 25 times", Tier: models.BadgeSilver, Unique: true},
		{Name: "Guru", Description: "Gave an accepted answer with a score of 40 or more", Tier: models.BadgeGold},
	} {
		_, err := biodata.CreateBadge(ctx, tx, &badge)
		if err != nil {
			panic(err)
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		panic(err)
	}
}

// Seeds the database with sample data for local dev.
func SampleSeed() {
	BareMinimumSeed()

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		panic(err)
	}
	defer tx.Rollback(ctx)

	fmt.Println("Creating admin user \"admin\"...")
	seedUser(ctx, tx, models.User{Username: "admin", Email: "admin@biostar.network", IsStaff: true})

	fmt.Println("Creating normal users...")
	alice := seedUser(ctx, tx, models.User{Username: "alice", Name: "Alice"})
	bob := seedUser(ctx, tx, models.User{Username: "bob", Name: "Bob"})
	charlie := seedUser(ctx, tx, models.User{Username: "charlie", Name: "Charlie"})
	users := []*models.User{alice, bob, charlie}

	fmt.Println("Creating questions, answers and comments...")
	tagNames := []string{"alignment", "rna-seq", "variant-calling", "bwa", "samtools", "python", "statistics"}
	for i := 0; i < 10; i++ {
		asker := users[rand.Intn(len(users))]
		question := utils.Must1(biodata.CreateQuestion(ctx, tx, asker.ID,
			lorem.Sentence(4, 10)+"?",
			lorem.Paragraph(1, 3),
			randomTagString(tagNames),
		))

		for a := 0; a < rand.Intn(3); a++ {
			answerer := users[rand.Intn(len(users))]
			answer := utils.Must1(biodata.CreateAnswer(ctx, tx, question.ID, answerer.ID, lorem.Paragraph(1, 2)))

			for _, voter := range users {
				if voter.ID == answerer.ID || !randomBool() {
					continue
				}
				utils.Must1(biodata.CastVote(ctx, tx, voter, answer.PostID, models.VoteUp))
			}
			if randomBool() {
				utils.Must1(biodata.CreateComment(ctx, tx, answer.PostID, asker.ID, lorem.Sentence(3, 12)))
			}
		}

		for _, voter := range users {
			if voter.ID == asker.ID || !randomBool() {
				continue
			}
			utils.Must1(biodata.CastVote(ctx, tx, voter, question.PostID, models.VoteUp))
		}
	}

	fmt.Println("Awarding badges...")
	scholar := utils.Must1(biodata.FetchBadges(ctx, tx, biodata.BadgeQuery{Names: []string{"Scholar"}}))[0]
	for _, user := range users {
		if randomBool() {
			utils.Must1(biodata.GrantAward(ctx, tx, scholar.ID, user.ID, time.Now()))
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		panic(err)
	}
}

func seedUser(ctx context.Context, conn db.ConnOrTx, input models.User) *models.User {
	input.Name = utils.OrDefault(input.Name, randomName())
	input.Email = utils.OrDefault(input.Email, fmt.Sprintf("%s@example.com", input.Username))

	user, err := biodata.CreateUserRecord(ctx, conn, &input)
	if err != nil {
		panic(err)
	}

	return user
}

func randomName() string {
	return "John Doe" // chosen by fair dice roll. guaranteed to be random.
}

func randomBool() bool {
	return rand.Intn(2) == 1
}

func randomTagString(names []string) string {
	n := 1 + rand.Intn(3)
	picked := make([]string, 0, n)
	for _, i := range rand.Perm(len(names))[:n] {
		picked = append(picked, names[i])
	}
	return models.TagString(picked)
}
