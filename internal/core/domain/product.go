package domain

import (
	"time"

	"github.com/govalues/decimal"
)

// Product is owned by the catalog collaborator. The engine reads it and
// mutates stock only through the ledger's reserve/release operations.
type Product struct {
	ID       uint64
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int64
	IsActive bool
}

// ProductSales is a row of the top-selling report: units of one product
// across approved, visible orders.
type ProductSales struct {
	ProductName string
	UnitsSold   int64
}

// CustomerOrders is a row of the frequent-customers report.
type CustomerOrders struct {
	UserID uint64
	Login  string
	Orders int64
}

// AuditRecord is one entry of the engine's audit trail. Deleted orders are
// tombstones, so auditors still reach them through these records.
type AuditRecord struct {
	Entity   string
	EntityID string
	Action   string
	ActorID  uint64
	OldValue string
	NewValue string
	LoggedAt time.Time
}
