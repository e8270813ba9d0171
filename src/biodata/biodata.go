/*
Package biodata contains all the data operations of the Q&A platform, and in
particular the consistency engine that keeps denormalized counters (post
scores, user reputation, badge tallies, tag usage counts, comment/answer/
revision counts) in sync with the records that produce them.

Every operation that mutates counters runs inside a single transaction; all
counter changes are plain SQL increments so concurrent requests never lose
updates. See apply.go for the apply/unapply protocol.
*/
package biodata

import "errors"

// Anonymous (nil) users cannot cast votes or perform other attributed actions.
var ErrInvalidActor = errors.New("action requires a signed-in user")

// Returned by strict authorization checks.
var ErrAccessDenied = errors.New("access denied")

// Returned when a unique badge is granted twice to the same user.
var ErrDuplicateAward = errors.New("unique badge already awarded to this user")
