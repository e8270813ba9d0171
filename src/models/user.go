package models

import (
	"reflect"
	"time"
)

var UserType = reflect.TypeOf(User{})

type User struct {
	ID int `db:"id"`

	Username string `db:"username"`
	Email    string `db:"email"`
	Name     string `db:"name"`

	IsStaff bool `db:"is_staff"`

	// Denormalized reputation and badge tallies. Only ever mutated through
	// the apply protocol in biodata.
	Score        int `db:"score"`
	BronzeBadges int `db:"bronze_badges"`
	SilverBadges int `db:"silver_badges"`
	GoldBadges   int `db:"gold_badges"`

	DateJoined  time.Time `db:"date_joined"`
	LastVisited time.Time `db:"last_visited"`
}

func (u *User) BestName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
