package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder(t *testing.T) {
	t.Run("renumbers placeholders", func(t *testing.T) {
		var qb QueryBuilder
		qb.Add(`SELECT stuff FROM thing WHERE id = $? AND foo = $?`, 3, "bar")
		qb.Add(`AND baz = $?`, true)

		assert.Equal(t, "SELECT stuff FROM thing WHERE id = $1 AND foo = $2\nAND baz = $3\n", qb.String())
		assert.Equal(t, []interface{}{3, "bar", true}, qb.Args())
	})
	t.Run("no args", func(t *testing.T) {
		var qb QueryBuilder
		qb.Add(`SELECT stuff FROM thing`)

		assert.Equal(t, "SELECT stuff FROM thing\n", qb.String())
		assert.Empty(t, qb.Args())
	})
	t.Run("panics on argument count mismatch", func(t *testing.T) {
		var qb QueryBuilder
		assert.Panics(t, func() {
			qb.Add(`WHERE id = $?`)
		})
		assert.Panics(t, func() {
			qb.Add(`WHERE id = $?`, 1, 2)
		})
	})
}
