package domain_test

import (
	"testing"

	"github.com/govalues/decimal"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestOrderTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     domain.OrderStatus
		to       domain.OrderStatus
		expError error
	}{
		{name: "pending to approved", from: domain.OrderStatusPending, to: domain.OrderStatusApproved},
		{name: "pending to rejected", from: domain.OrderStatusPending, to: domain.OrderStatusRejected},
		{name: "pending to deleted", from: domain.OrderStatusPending, to: domain.OrderStatusDeleted},
		{name: "approved to deleted", from: domain.OrderStatusApproved, to: domain.OrderStatusDeleted},
		{name: "rejected to deleted", from: domain.OrderStatusRejected, to: domain.OrderStatusDeleted},
		{name: "approved back to pending", from: domain.OrderStatusApproved, to: domain.OrderStatusPending, expError: domain.ErrInvalidTransition},
		{name: "approve approved", from: domain.OrderStatusApproved, to: domain.OrderStatusApproved, expError: domain.ErrAlreadyFinalized},
		{name: "reject rejected", from: domain.OrderStatusRejected, to: domain.OrderStatusRejected, expError: domain.ErrAlreadyFinalized},
		{name: "approve rejected", from: domain.OrderStatusRejected, to: domain.OrderStatusApproved, expError: domain.ErrAlreadyFinalized},
		{name: "approve deleted", from: domain.OrderStatusDeleted, to: domain.OrderStatusApproved, expError: domain.ErrAlreadyFinalized},
		{name: "delete deleted", from: domain.OrderStatusDeleted, to: domain.OrderStatusDeleted, expError: domain.ErrAlreadyFinalized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			order := domain.Order{Status: test.from, IsVisible: true}

			err := order.Transition(test.to)

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Equal(t, test.from, order.Status, "failed transition must not change status")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.to, order.Status)
			if test.to == domain.OrderStatusDeleted {
				assert.False(t, order.IsVisible, "deleted order must become a tombstone")
			}
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, domain.OrderStatusPending.Terminal())
	assert.True(t, domain.OrderStatusApproved.Terminal())
	assert.True(t, domain.OrderStatusRejected.Terminal())
	assert.True(t, domain.OrderStatusDeleted.Terminal())
}

func TestOrderHoldsReleasableStock(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.OrderStatus
		released bool
		exp      bool
	}{
		{name: "rejected holds", status: domain.OrderStatusRejected, exp: true},
		{name: "deleted holds", status: domain.OrderStatusDeleted, exp: true},
		{name: "approved keeps stock committed", status: domain.OrderStatusApproved, exp: false},
		{name: "pending keeps its reservation", status: domain.OrderStatusPending, exp: false},
		{name: "rejected already released", status: domain.OrderStatusRejected, released: true, exp: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			order := domain.Order{Status: test.status, StockReleased: test.released}
			assert.Equal(t, test.exp, order.HoldsReleasableStock())
		})
	}
}

func TestOrderApplyDiscounts(t *testing.T) {
	order := domain.Order{
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.MustParse("30")},
			{ProductID: 2, Quantity: 1, UnitPrice: decimal.MustParse("40")},
		},
	}

	err := order.ApplyDiscounts()
	assert.NoError(t, err)
	assert.Zero(t, order.DiscountApplied.Cmp(decimal.Zero))
	assert.Zero(t, order.TotalAmount.Cmp(decimal.MustParse("100")))

	order.Discounts = order.Discounts.With(domain.DiscountFrequent5).With(domain.DiscountTime10)
	err = order.ApplyDiscounts()
	assert.NoError(t, err)
	assert.Zero(t, order.DiscountApplied.Cmp(decimal.MustParse("15")))
	assert.Zero(t, order.TotalAmount.Cmp(decimal.MustParse("85")))

	// the money invariant: total = subtotal - discount
	subtotal, err := order.Subtotal()
	assert.NoError(t, err)
	want, err := subtotal.Sub(order.DiscountApplied)
	assert.NoError(t, err)
	assert.Zero(t, order.TotalAmount.Cmp(want))
}

func TestParseOrderStatus(t *testing.T) {
	status, err := domain.ParseOrderStatus("APPROVED")
	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusApproved, status)

	_, err = domain.ParseOrderStatus("SHIPPED")
	assert.ErrorIs(t, err, domain.ErrBadOrderStatus)
}
