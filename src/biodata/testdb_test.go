package biodata

import (
	"context"
	"fmt"
	"os"
	"testing"

	"git.biostar.network/biostar/biostar/src/models"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

/*
Database tests run against a real Postgres with the schema migrated, pointed
at by BIOSTAR_TEST_DSN, e.g.:

	BIOSTAR_TEST_DSN='user=biostar password=password host=localhost port=5432 dbname=biostar_test' go test ./...

They are skipped otherwise. Every test runs inside a transaction that is
rolled back at the end, so the test database is never actually modified;
the data operations' own transactions become savepoints inside it.
*/
func beginTest(t *testing.T) (context.Context, pgx.Tx) {
	t.Helper()

	dsn := os.Getenv("BIOSTAR_TEST_DSN")
	if dsn == "" {
		t.Skip("set BIOSTAR_TEST_DSN to run database tests")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close(ctx)
	})

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		tx.Rollback(ctx)
	})

	return ctx, tx
}

var testUserCounter int

func seedTestUser(t *testing.T, ctx context.Context, tx pgx.Tx) *models.User {
	t.Helper()

	testUserCounter++
	user, err := CreateUserRecord(ctx, tx, &models.User{
		Username: fmt.Sprintf("testuser%d", testUserCounter),
		Email:    fmt.Sprintf("testuser%d@example.com", testUserCounter),
	})
	require.NoError(t, err)

	return user
}

func seedTestQuestion(t *testing.T, ctx context.Context, tx pgx.Tx, author *models.User, tagString string) *models.Question {
	t.Helper()

	question, err := CreateQuestion(ctx, tx, author.ID,
		"How do I frobnicate the widget?",
		"I have tried turning it off and on again.",
		tagString,
	)
	require.NoError(t, err)

	return question
}

func seedTestAnswer(t *testing.T, ctx context.Context, tx pgx.Tx, question *models.Question, author *models.User) *models.Answer {
	t.Helper()

	answer, err := CreateAnswer(ctx, tx, question.ID, author.ID, "Have you tried frobnicating harder?")
	require.NoError(t, err)

	return answer
}

func requireNoDrift(t *testing.T, ctx context.Context, tx pgx.Tx) {
	t.Helper()

	drifts, err := VerifyCounters(ctx, tx)
	require.NoError(t, err)
	for _, drift := range drifts {
		t.Errorf("counter drift: %s", drift)
	}
}
