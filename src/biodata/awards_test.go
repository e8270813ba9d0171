package biodata

import (
	"testing"
	"time"

	"git.biostar.network/biostar/biostar/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantAward(t *testing.T) {
	t.Run("awards update tallies on both sides", func(t *testing.T) {
		ctx, tx := beginTest(t)
		user := seedTestUser(t, ctx, tx)
		badge, err := CreateBadge(ctx, tx, &models.Badge{
			Name: "Good Question",
			Tier: models.BadgeGold,
		})
		require.NoError(t, err)

		_, err = GrantAward(ctx, tx, badge.ID, user.ID, time.Now())
		require.NoError(t, err)

		userNow, err := FetchUser(ctx, tx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, userNow.GoldBadges)
		assert.Equal(t, 0, userNow.BronzeBadges)
		assert.Equal(t, 0, userNow.SilverBadges)

		badges, err := FetchBadges(ctx, tx, BadgeQuery{IDs: []int{badge.ID}})
		require.NoError(t, err)
		require.Len(t, badges, 1)
		assert.Equal(t, 1, badges[0].Count)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("non-unique badges can be earned repeatedly", func(t *testing.T) {
		ctx, tx := beginTest(t)
		user := seedTestUser(t, ctx, tx)
		badge, err := CreateBadge(ctx, tx, &models.Badge{
			Name: "Popular Answer",
			Tier: models.BadgeBronze,
		})
		require.NoError(t, err)

		_, err = GrantAward(ctx, tx, badge.ID, user.ID, time.Now())
		require.NoError(t, err)
		_, err = GrantAward(ctx, tx, badge.ID, user.ID, time.Now())
		require.NoError(t, err)

		userNow, err := FetchUser(ctx, tx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, userNow.BronzeBadges)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("unique badges can only be earned once", func(t *testing.T) {
		ctx, tx := beginTest(t)
		user := seedTestUser(t, ctx, tx)
		other := seedTestUser(t, ctx, tx)
		badge, err := CreateBadge(ctx, tx, &models.Badge{
			Name:   "Autobiographer",
			Tier:   models.BadgeBronze,
			Unique: true,
		})
		require.NoError(t, err)

		_, err = GrantAward(ctx, tx, badge.ID, user.ID, time.Now())
		require.NoError(t, err)
		_, err = GrantAward(ctx, tx, badge.ID, user.ID, time.Now())
		assert.ErrorIs(t, err, ErrDuplicateAward)

		// A duplicate grant must not leave partial effects behind.
		userNow, err := FetchUser(ctx, tx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, userNow.BronzeBadges)

		// But other users can still earn it.
		_, err = GrantAward(ctx, tx, badge.ID, other.ID, time.Now())
		require.NoError(t, err)

		requireNoDrift(t, ctx, tx)
	})

	t.Run("deleting an award reverses it", func(t *testing.T) {
		ctx, tx := beginTest(t)
		user := seedTestUser(t, ctx, tx)
		badge, err := CreateBadge(ctx, tx, &models.Badge{
			Name: "Teacher",
			Tier: models.BadgeSilver,
		})
		require.NoError(t, err)

		award, err := GrantAward(ctx, tx, badge.ID, user.ID, time.Now())
		require.NoError(t, err)
		err = DeleteAwardRecord(ctx, tx, award.ID)
		require.NoError(t, err)

		userNow, err := FetchUser(ctx, tx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, userNow.SilverBadges)

		badges, err := FetchBadges(ctx, tx, BadgeQuery{IDs: []int{badge.ID}})
		require.NoError(t, err)
		require.Len(t, badges, 1)
		assert.Equal(t, 0, badges[0].Count)

		requireNoDrift(t, ctx, tx)
	})
}

func TestFetchBadges(t *testing.T) {
	ctx, tx := beginTest(t)

	_, err := CreateBadge(ctx, tx, &models.Badge{Name: "Public Badge", Tier: models.BadgeBronze})
	require.NoError(t, err)
	_, err = CreateBadge(ctx, tx, &models.Badge{Name: "Secret Badge", Tier: models.BadgeBronze, Secret: true})
	require.NoError(t, err)

	badges, err := FetchBadges(ctx, tx, BadgeQuery{Names: []string{"Public Badge", "Secret Badge"}})
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "Public Badge", badges[0].Name)

	badges, err = FetchBadges(ctx, tx, BadgeQuery{Names: []string{"Public Badge", "Secret Badge"}, IncludeSecret: true})
	require.NoError(t, err)
	assert.Len(t, badges, 2)
}
