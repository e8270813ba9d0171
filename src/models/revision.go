package models

import "time"

/*
An immutable snapshot of a post at the time of an edit. Revisions are only
ever appended; editing a post creates a new revision and updates the post's
live fields.
*/
type PostRevision struct {
	ID     int `db:"id"`
	PostID int `db:"post_id"`

	Content string `db:"content"` // raw content as submitted, before line-ending normalization
	Title   string `db:"title"`
	Tags    string `db:"tags"`

	AuthorID int       `db:"author_id"`
	Date     time.Time `db:"date"`
}

func (r *PostRevision) TagNames() []string {
	return ParseTagString(r.Tags)
}
