package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusApproved OrderStatus = "APPROVED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusDeleted  OrderStatus = "DELETED"
)

// Terminal reports whether s permits no further approve/reject decision.
// Terminal states still allow the universal move to DELETED, except
// DELETED itself.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusApproved || s == OrderStatusRejected || s == OrderStatusDeleted
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected, OrderStatusDeleted:
		return OrderStatus(s), nil
	}
	return "", ErrBadOrderStatus
}

type OrderItem struct {
	ProductID   uint64
	ProductName string
	Quantity    int32
	// UnitPrice is captured from the catalog at order creation and never
	// re-read, so later catalog price changes do not rewrite history.
	UnitPrice decimal.Decimal
}

func (i OrderItem) Subtotal() (decimal.Decimal, error) {
	q, err := decimal.New(int64(i.Quantity), 0)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return i.UnitPrice.Mul(q)
}

type Order struct {
	ID              uuid.UUID
	UserID          uint64
	Items           []OrderItem
	Status          OrderStatus
	OrderDate       time.Time
	TotalAmount     decimal.Decimal
	DiscountApplied decimal.Decimal
	Discounts       DiscountSet
	// StockReleased guards the single credit-back of this order's
	// reservations. Storage returns stock only on the false -> true flip.
	StockReleased bool
	IsVisible     bool
	CreatedAt     time.Time
	User          *User
}

func (o *Order) Subtotal() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, item := range o.Items {
		line, err := item.Subtotal()
		if err != nil {
			return decimal.Decimal{}, err
		}
		sum, err = sum.Add(line)
		if err != nil {
			return decimal.Decimal{}, err
		}
	}
	return sum, nil
}

// Transition moves the order to the requested status or reports why it
// cannot. PENDING goes to any of APPROVED/REJECTED/DELETED, APPROVED and
// REJECTED only to DELETED, DELETED nowhere.
func (o *Order) Transition(to OrderStatus) error {
	switch to {
	case OrderStatusApproved, OrderStatusRejected:
		if o.Status.Terminal() {
			return ErrAlreadyFinalized
		}
	case OrderStatusDeleted:
		if o.Status == OrderStatusDeleted {
			return ErrAlreadyFinalized
		}
	default:
		return ErrInvalidTransition
	}

	o.Status = to
	if to == OrderStatusDeleted {
		o.IsVisible = false
	}
	return nil
}

// HoldsReleasableStock reports whether the order's reservations are due
// back to the ledger: rejected and deleted orders return stock, approved
// orders keep it committed.
func (o *Order) HoldsReleasableStock() bool {
	return (o.Status == OrderStatusRejected || o.Status == OrderStatusDeleted) && !o.StockReleased
}

// ApplyDiscounts recomputes the money fields from the immutable line items
// and the current tag set.
func (o *Order) ApplyDiscounts() error {
	subtotal, err := o.Subtotal()
	if err != nil {
		return err
	}
	discount, err := EvaluateDiscount(subtotal, o.Discounts)
	if err != nil {
		return err
	}
	total, err := subtotal.Sub(discount)
	if err != nil {
		return err
	}
	o.DiscountApplied = discount
	o.TotalAmount = total
	return nil
}
