package domain_test

import (
	"testing"

	"github.com/govalues/decimal"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestDiscountSet(t *testing.T) {
	var set domain.DiscountSet

	assert.False(t, set.Has(domain.DiscountTime10))
	assert.Equal(t, "", set.String())

	set = set.With(domain.DiscountTime10)
	set = set.With(domain.DiscountFrequent5)
	set = set.With(domain.DiscountTime10) // second add is a no-op

	assert.True(t, set.Has(domain.DiscountTime10))
	assert.True(t, set.Has(domain.DiscountFrequent5))
	assert.False(t, set.Has(domain.DiscountRandom50))
	assert.Len(t, set, 2)

	// insertion order must not leak into the serialized form
	other := domain.DiscountSet{}.With(domain.DiscountFrequent5).With(domain.DiscountTime10)
	assert.Equal(t, set.String(), other.String())

	parsed, err := domain.ParseDiscountSet(set.String())
	assert.NoError(t, err)
	assert.Equal(t, set, parsed)
}

func TestParseDiscountSet(t *testing.T) {
	parsed, err := domain.ParseDiscountSet("")
	assert.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = domain.ParseDiscountSet("HALF_PRICE")
	assert.ErrorIs(t, err, domain.ErrBadDiscountType)
}

func TestEvaluateDiscount(t *testing.T) {
	subtotal := decimal.MustParse("100")

	tests := []struct {
		name string
		tags domain.DiscountSet
		exp  string
	}{
		{name: "no tags", tags: nil, exp: "0"},
		{name: "frequent only", tags: domain.DiscountSet{domain.DiscountFrequent5}, exp: "5"},
		{name: "time only", tags: domain.DiscountSet{domain.DiscountTime10}, exp: "10"},
		{name: "random only", tags: domain.DiscountSet{domain.DiscountRandom50}, exp: "50"},
		{
			// Stacking is additive against the original subtotal, not
			// compounded: 5% + 10% of 100 is 15, not 14.50.
			name: "frequent plus time",
			tags: domain.DiscountSet{}.With(domain.DiscountFrequent5).With(domain.DiscountTime10),
			exp:  "15",
		},
		{
			name: "all three",
			tags: domain.DiscountSet{}.With(domain.DiscountFrequent5).With(domain.DiscountTime10).With(domain.DiscountRandom50),
			exp:  "65",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := domain.EvaluateDiscount(subtotal, test.tags)
			assert.NoError(t, err)
			assert.Zero(t, got.Cmp(decimal.MustParse(test.exp)), "got %s, want %s", got, test.exp)
			assert.GreaterOrEqual(t, got.Cmp(decimal.Zero), 0)

			// identical inputs give identical results on recomputation
			again, err := domain.EvaluateDiscount(subtotal, test.tags)
			assert.NoError(t, err)
			assert.Zero(t, got.Cmp(again))
		})
	}
}

func TestEvaluateDiscountRounding(t *testing.T) {
	subtotal := decimal.MustParse("33.33")

	got, err := domain.EvaluateDiscount(subtotal, domain.DiscountSet{domain.DiscountFrequent5})
	assert.NoError(t, err)
	// 5% of 33.33 is 1.6665, rounds to cents
	assert.Zero(t, got.Cmp(decimal.MustParse("1.67")), "got %s", got)
}
