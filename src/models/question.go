package models

import "time"

// A question is a post with answers.
type Question struct {
	ID     int `db:"id"`
	PostID int `db:"post_id"`

	AnswerCount    int  `db:"answer_count"`
	AnswerAccepted bool `db:"answer_accepted"`

	LastEditDate time.Time `db:"lastedit_date"`
}
