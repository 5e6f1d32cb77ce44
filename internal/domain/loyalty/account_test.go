//go:build unit

package loyalty_test

import (
	"testing"
	"time"

	"cinebooking/internal/domain/loyalty"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankFor(t *testing.T) {
	cases := []struct {
		spending int64
		want     loyalty.Rank
	}{
		{0, loyalty.RankStandard},
		{999_999, loyalty.RankStandard},
		{1_000_000, loyalty.RankSilver},
		{4_999_999, loyalty.RankSilver},
		{5_000_000, loyalty.RankGold},
		{10_000_000, loyalty.RankDiamond},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, loyalty.RankFor(tc.spending), "spending %d", tc.spending)
	}
}

func TestAccrue(t *testing.T) {
	at := time.Now()

	t.Run("five percent points rounded down", func(t *testing.T) {
		acc := loyalty.NewAccount(uuid.New())
		a, err := acc.Accrue(280_019, at)
		require.NoError(t, err)

		assert.Equal(t, int64(14_000), a.Points)
		assert.Equal(t, int64(14_000), acc.Points())
		assert.Equal(t, int64(280_019), acc.Spending())
		assert.False(t, a.Promoted())
	})

	t.Run("crossing a threshold promotes", func(t *testing.T) {
		acc := loyalty.Reconstruct(uuid.New(), 900_000, 0, loyalty.RankStandard, at)
		a, err := acc.Accrue(100_000, at)
		require.NoError(t, err)

		assert.True(t, a.Promoted())
		assert.Equal(t, loyalty.RankSilver, acc.Rank())
	})

	t.Run("rank never drops", func(t *testing.T) {
		acc := loyalty.Reconstruct(uuid.New(), 100, 0, loyalty.RankGold, at)
		_, err := acc.Accrue(1, at)
		require.NoError(t, err)
		assert.Equal(t, loyalty.RankGold, acc.Rank())
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := loyalty.NewAccount(uuid.New()).Accrue(-1, at)
		assert.ErrorIs(t, err, loyalty.ErrNegativeAmount)
	})
}
