package models

import "time"

/*
A post is the basic unit of content. Questions, answers and comments all wrap
a post; the post carries the actual text and the denormalized counters.
*/
type Post struct {
	ID int `db:"id"`

	AuthorID int `db:"author_id"`

	Content string `db:"content"` // the underlying Markdown
	HTML    string `db:"html"`    // the sanitized HTML for display
	Title   string `db:"title"`
	Tags    string `db:"tags"` // the canonical, space-separated form of the post's tags

	Views         int `db:"views"`
	Score         int `db:"score"`
	CommentCount  int `db:"comment_count"`
	RevisionCount int `db:"revision_count"`

	CreationDate   time.Time `db:"creation_date"`
	LastEditDate   time.Time `db:"lastedit_date"`
	LastEditUserID int       `db:"lastedit_user_id"`
}
