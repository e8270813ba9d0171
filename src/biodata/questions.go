package biodata

import (
	"context"
	"time"

	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/oops"
	"git.biostar.network/biostar/biostar/src/utils"
)

type QuestionAndStuff struct {
	Question models.Question `db:"question"`
	Post     models.Post     `db:"post"`
	Author   models.User     `db:"author"`
}

type QuestionsQuery struct {
	IDs     []int
	PostIDs []int

	Limit, Offset int
}

func FetchQuestions(ctx context.Context, conn db.ConnOrTx, q QuestionsQuery) ([]*QuestionAndStuff, error) {
	var qb db.QueryBuilder
	qb.Add(
		`
		SELECT $columns
		FROM
			question
			JOIN post ON post.id = question.post_id
			JOIN biostar_user AS author ON author.id = post.author_id
		WHERE TRUE
		`,
	)
	if len(q.IDs) > 0 {
		qb.Add(`AND question.id = ANY ($?)`, q.IDs)
	}
	if len(q.PostIDs) > 0 {
		qb.Add(`AND question.post_id = ANY ($?)`, q.PostIDs)
	}
	qb.Add(`ORDER BY post.creation_date DESC, question.id DESC`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	questions, err := db.Query[QuestionAndStuff](ctx, conn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch questions")
	}

	return questions, nil
}

func FetchQuestion(ctx context.Context, conn db.ConnOrTx, questionId int) (*QuestionAndStuff, error) {
	questions, err := FetchQuestions(ctx, conn, QuestionsQuery{
		IDs:   []int{questionId},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, db.NotFound
	}

	return questions[0], nil
}

/*
Inserts a question record wrapping an existing post. Questions bear no
effects themselves; answer_count and answer_accepted start at their zero
values and are maintained by the answer and vote effects.
*/
func CreateQuestionRecord(ctx context.Context, tx db.ConnOrTx, question *models.Question) (*models.Question, error) {
	editDate := utils.OrDefault(question.LastEditDate, time.Now())

	var created *models.Question
	var err error
	if question.ID == 0 {
		created, err = db.QueryOne[models.Question](ctx, tx,
			`
			INSERT INTO question (post_id, answer_count, answer_accepted, lastedit_date)
			VALUES ($1, $2, $3, $4)
			RETURNING $columns
			`,
			question.PostID, question.AnswerCount, question.AnswerAccepted, editDate,
		)
	} else {
		created, err = db.QueryOne[models.Question](ctx, tx,
			`
			INSERT INTO question (id, post_id, answer_count, answer_accepted, lastedit_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING $columns
			`,
			question.ID, question.PostID, question.AnswerCount, question.AnswerAccepted, editDate,
		)
	}
	if err != nil {
		return nil, oops.New(err, "failed to create question")
	}

	return created, nil
}

/*
Asks a new question: creates the underlying post and the question record,
then runs the initial edit so content, title, tags and the first revision all
go through the normal editing path.
*/
func CreateQuestion(ctx context.Context, conn db.ConnOrTx, authorId int, title, content, tagString string) (*models.Question, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err := CreatePostRecord(ctx, tx, &models.Post{AuthorID: authorId})
	if err != nil {
		return nil, err
	}

	question, err := CreateQuestionRecord(ctx, tx, &models.Question{PostID: post.ID})
	if err != nil {
		return nil, err
	}

	_, err = CreateRevision(ctx, tx, post.ID, RevisionOptions{
		Content:   &content,
		Title:     &title,
		TagString: &tagString,
	})
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit transaction")
	}

	return question, nil
}
