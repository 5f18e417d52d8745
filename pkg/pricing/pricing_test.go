package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentora_backend/pkg/pricing"
)

var rates = pricing.Rates{Day: 10, Week: 60, Month: 200}

func TestAmount(t *testing.T) {
	amount, err := pricing.Amount(rates, pricing.PeriodWeek, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(120), amount)

	amount, err = pricing.Amount(rates, pricing.PeriodDay, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(50), amount)

	amount, err = pricing.Amount(rates, pricing.PeriodMonth, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(200), amount)
}

func TestAmountLinearity(t *testing.T) {
	for _, period := range []pricing.Period{pricing.PeriodDay, pricing.PeriodWeek, pricing.PeriodMonth} {
		unit, err := pricing.Amount(rates, period, 1)
		require.NoError(t, err)

		for qty := 1; qty <= 12; qty++ {
			amount, err := pricing.Amount(rates, period, qty)
			require.NoError(t, err)
			assert.Equal(t, int64(qty)*unit, amount, "period %s qty %d", period, qty)
		}
	}
}

func TestAmountDeterministic(t *testing.T) {
	first, err := pricing.Amount(rates, pricing.PeriodMonth, 3)
	require.NoError(t, err)

	// call order must not matter: history replays depend on it
	_, _ = pricing.Amount(rates, pricing.PeriodDay, 9)
	_, _ = pricing.Amount(rates, pricing.PeriodWeek, 1)

	again, err := pricing.Amount(rates, pricing.PeriodMonth, 3)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestAmountInvalidPeriod(t *testing.T) {
	_, err := pricing.Amount(rates, pricing.Period("year"), 1)
	assert.ErrorIs(t, err, pricing.ErrInvalidPeriod)

	_, err = pricing.Amount(rates, pricing.Period(""), 1)
	assert.ErrorIs(t, err, pricing.ErrInvalidPeriod)
}

func TestAmountInvalidQuantity(t *testing.T) {
	_, err := pricing.Amount(rates, pricing.PeriodDay, 0)
	assert.ErrorIs(t, err, pricing.ErrInvalidQuantity)

	_, err = pricing.Amount(rates, pricing.PeriodDay, -3)
	assert.ErrorIs(t, err, pricing.ErrInvalidQuantity)
}

func TestDuration(t *testing.T) {
	cases := []struct {
		period   pricing.Period
		quantity int
		want     time.Duration
	}{
		{pricing.PeriodDay, 1, 24 * time.Hour},
		{pricing.PeriodDay, 3, 72 * time.Hour},
		{pricing.PeriodWeek, 1, 7 * 24 * time.Hour},
		{pricing.PeriodWeek, 2, 14 * 24 * time.Hour},
		{pricing.PeriodMonth, 1, 30 * 24 * time.Hour},
		{pricing.PeriodMonth, 2, 60 * 24 * time.Hour},
	}

	for _, tc := range cases {
		got, err := pricing.Duration(tc.period, tc.quantity)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s x%d", tc.period, tc.quantity)
	}
}

func TestDurationInvalid(t *testing.T) {
	_, err := pricing.Duration(pricing.Period("fortnight"), 1)
	assert.ErrorIs(t, err, pricing.ErrInvalidPeriod)

	_, err = pricing.Duration(pricing.PeriodWeek, 0)
	assert.ErrorIs(t, err, pricing.ErrInvalidQuantity)
}

func TestValid(t *testing.T) {
	assert.True(t, pricing.Valid(pricing.PeriodDay))
	assert.True(t, pricing.Valid(pricing.PeriodWeek))
	assert.True(t, pricing.Valid(pricing.PeriodMonth))
	assert.False(t, pricing.Valid(pricing.Period("deleted")))
}
