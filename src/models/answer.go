package models

import "time"

type Answer struct {
	ID         int `db:"id"`
	QuestionID int `db:"question_id"`
	PostID     int `db:"post_id"`

	Accepted bool `db:"accepted"`

	LastEditDate time.Time `db:"lastedit_date"`
}
