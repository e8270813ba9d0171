package biodata

import (
	"context"
	"time"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
	"git.biostar.network/biostar/biostar/src/utils"
)

type answerEffect struct {
	Answer *models.Answer
}

func (e answerEffect) ApplyEffects(ctx context.Context, tx db.ConnOrTx, dir Direction) error {
	_, err := tx.Exec(ctx,
		`
		---- Update question answer count
		UPDATE question
		SET answer_count = answer_count + $1
		WHERE id = $2
		`,
		int(dir),
		e.Answer.QuestionID,
	)
	if err != nil {
		return oops.New(err, "failed to update question answer count")
	}

	return nil
}

type AnswerAndStuff struct {
	Answer models.Answer `db:"answer"`
	Post   models.Post   `db:"post"`
	Author models.User   `db:"author"`
}

func FetchAnswers(ctx context.Context, conn db.ConnOrTx, questionId int) ([]*AnswerAndStuff, error) {
	answers, err := db.Query[AnswerAndStuff](ctx, conn,
		`
		SELECT $columns
		FROM
			answer
			JOIN post ON post.id = answer.post_id
			JOIN biostar_user AS author ON author.id = post.author_id
		WHERE answer.question_id = $1
		ORDER BY answer.accepted DESC, post.score DESC, post.creation_date ASC
		`,
		questionId,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch answers for question %d", questionId)
	}

	return answers, nil
}

/*
Inserts an answer record, incrementing the question's answer count when
applyEffects is true. A nonzero answer.ID is preserved (used by snapshot
import).
*/
func CreateAnswerRecord(ctx context.Context, tx db.ConnOrTx, answer *models.Answer, applyEffects bool) (*models.Answer, error) {
	editDate := utils.OrDefault(answer.LastEditDate, time.Now())

	var created *models.Answer
	var err error
	if answer.ID == 0 {
		created, err = db.QueryOne[models.Answer](ctx, tx,
			`
			INSERT INTO answer (question_id, post_id, accepted, lastedit_date)
			VALUES ($1, $2, $3, $4)
			RETURNING $columns
			`,
			answer.QuestionID, answer.PostID, answer.Accepted, editDate,
		)
	} else {
		created, err = db.QueryOne[models.Answer](ctx, tx,
			`
			INSERT INTO answer (id, question_id, post_id, accepted, lastedit_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING $columns
			`,
			answer.ID, answer.QuestionID, answer.PostID, answer.Accepted, editDate,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create answer")
	}

	if applyEffects {
		err = answerEffect{created}.ApplyEffects(ctx, tx, Apply)
		if err != nil {
			return nil, err
		}
	}

	return created, nil
}

// Answers a question with a new post.
func CreateAnswer(ctx context.Context, conn db.ConnOrTx, questionId int, authorId int, content string) (*models.Answer, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err := CreatePostRecord(ctx, tx, &models.Post{AuthorID: authorId})
	if err != nil {
		return nil, err
	}

	answer, err := CreateAnswerRecord(ctx, tx, &models.Answer{
		QuestionID: questionId,
		PostID:     post.ID,
	}, true)
	if err != nil {
		return nil, err
	}

	_, err = CreateRevision(ctx, tx, post.ID, RevisionOptions{
		Content: &content,
	})
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit transaction")
	}

	return answer, nil
}

/*
Deletes an answer along with its underlying post, its comments, and the votes
on it. Every effect-bearing record goes through its own unapply, so counters
(including the voters' and author's reputation) end up as if the answer had
never existed.
*/
func DeleteAnswerRecord(ctx context.Context, conn db.ConnOrTx, answerId int) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	answer, err := db.QueryOne[models.Answer](ctx, tx,
		`SELECT $columns FROM answer WHERE id = $1`,
		answerId,
	)
	if err != nil {
		return oops.New(err, "failed to fetch answer for deletion")
	}

	err = deleteVotesOnPost(ctx, tx, answer.PostID)
	if err != nil {
		return err
	}
	err = deleteCommentsOnPost(ctx, tx, answer.PostID)
	if err != nil {
		return err
	}

	err = answerEffect{answer}.ApplyEffects(ctx, tx, Unapply)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM answer WHERE id = $1`, answerId)
	if err != nil {
		return oops.New(err, "failed to delete answer")
	}
	_, err = tx.Exec(ctx, `DELETE FROM post WHERE id = $1`, answer.PostID)
	if err != nil {
		return oops.New(err, "failed to delete answer post")
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit transaction")
	}

	return nil
}
