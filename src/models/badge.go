package models

import "time"

type BadgeTier int

const (
	BadgeBronze BadgeTier = iota
	BadgeSilver
	BadgeGold
)

type Badge struct {
	ID int `db:"id"`

	Name        string    `db:"name"`
	Description string    `db:"description"`
	Tier        BadgeTier `db:"tier"`

	Unique bool `db:"unique_award"` // unique badges may be earned only once
	Secret bool `db:"secret"`       // secret badges are not shown on the public badge list

	Count int `db:"count"` // total number of times awarded
}

/*
A badge being awarded to a user. This cannot be a plain join table because
non-unique badges may be earned multiple times.
*/
type Award struct {
	ID int `db:"id"`

	BadgeID int       `db:"badge_id"`
	UserID  int       `db:"user_id"`
	Date    time.Time `db:"date"`
}
