package models

import "time"

/*
A comment on any post (question or answer). The comment's own text lives in
its own post row (PostID); ParentID is the post being commented on.
*/
type Comment struct {
	ID       int `db:"id"`
	ParentID int `db:"parent_id"`
	PostID   int `db:"post_id"`

	LastEditDate time.Time `db:"lastedit_date"`
}
