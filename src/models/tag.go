package models

import (
	"regexp"
	"strings"
)

type Tag struct {
	ID   int    `db:"id"`
	Name string `db:"name"`

	// Number of posts whose current tag set includes this tag. Maintained
	// by biodata.SetPostTags; never goes below zero.
	Count int `db:"count"`
}

// Membership row linking a post to a tag. The ordering of a post's tags
// lives in the post's canonical tag string, not here.
type PostTag struct {
	PostID int `db:"post_id"`
	TagID  int `db:"tag_id"`
}

var REValidTag = regexp.MustCompile(`^[a-z0-9.+#]+(-[a-z0-9.+#]+)*$`)

func ValidateTagName(name string) bool {
	if name == "" {
		return false
	}

	if len(name) > 50 {
		return false
	}
	if !REValidTag.MatchString(name) {
		return false
	}

	return true
}

/*
Parses a canonical tag string into an ordered list of tag names. Tags are
separated by whitespace; duplicates keep their first position.
*/
func ParseTagString(tagString string) []string {
	fields := strings.Fields(tagString)

	var names []string
	seen := make(map[string]bool, len(fields))
	for _, name := range fields {
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names
}

// The inverse of ParseTagString.
func TagString(names []string) string {
	return strings.Join(names, " ")
}
