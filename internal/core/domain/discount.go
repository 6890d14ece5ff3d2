package domain

import (
	"sort"
	"strings"

	"github.com/govalues/decimal"
)

type DiscountType string

const (
	// DiscountRandom50 is the 50% batch-campaign discount; the number names
	// the percentage, not the selection probability.
	DiscountRandom50 DiscountType = "RANDOM_50"
	// DiscountTime10 is the flat 10% window-campaign discount.
	DiscountTime10 DiscountType = "TIME_10"
	// DiscountFrequent5 is the standing 5% loyalty discount.
	DiscountFrequent5 DiscountType = "FREQUENT_5"
)

var discountPercent = map[DiscountType]decimal.Decimal{
	DiscountRandom50:  decimal.MustParse("50"),
	DiscountTime10:    decimal.MustParse("10"),
	DiscountFrequent5: decimal.MustParse("5"),
}

func (t DiscountType) Valid() bool {
	_, ok := discountPercent[t]
	return ok
}

// DiscountSet is the set of discount tags carried by one order. Tags are
// kept sorted and unique so two sets with the same members always compare
// and serialize identically.
type DiscountSet []DiscountType

func (s DiscountSet) Has(t DiscountType) bool {
	for _, m := range s {
		if m == t {
			return true
		}
	}
	return false
}

// With returns a set extended by t. The receiver is not modified.
func (s DiscountSet) With(t DiscountType) DiscountSet {
	if s.Has(t) {
		return s
	}
	out := make(DiscountSet, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, t)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s DiscountSet) String() string {
	parts := make([]string, 0, len(s))
	for _, m := range s {
		parts = append(parts, string(m))
	}
	return strings.Join(parts, ",")
}

func ParseDiscountSet(raw string) (DiscountSet, error) {
	if raw == "" {
		return nil, nil
	}
	var set DiscountSet
	for _, p := range strings.Split(raw, ",") {
		t := DiscountType(strings.TrimSpace(p))
		if !t.Valid() {
			return nil, ErrBadDiscountType
		}
		set = set.With(t)
	}
	return set, nil
}

// EvaluateDiscount computes the amount to subtract for the given tag set.
// Tags stack additively against the original subtotal: FREQUENT_5 plus
// TIME_10 on 100.00 takes 15.00 off, never 5% of an already discounted
// total. The result is rounded to cents and never exceeds the subtotal.
func EvaluateDiscount(subtotal decimal.Decimal, tags DiscountSet) (decimal.Decimal, error) {
	pct := decimal.Zero
	for _, t := range tags {
		p, ok := discountPercent[t]
		if !ok {
			return decimal.Decimal{}, ErrBadDiscountType
		}
		var err error
		pct, err = pct.Add(p)
		if err != nil {
			return decimal.Decimal{}, err
		}
	}

	raw, err := subtotal.Mul(pct)
	if err != nil {
		return decimal.Decimal{}, err
	}
	amount, err := raw.Quo(decimal.Hundred)
	if err != nil {
		return decimal.Decimal{}, err
	}
	amount = amount.Round(2)

	if amount.Cmp(subtotal) > 0 {
		return subtotal, nil
	}
	return amount, nil
}
