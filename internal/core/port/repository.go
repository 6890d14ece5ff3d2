package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopmart/orderengine/internal/core/domain"
)

// UpdateOrderFn mutates an order inside the repository's transaction.
// When it flips Order.StockReleased from false to true, the repository
// credits the order's unreleased reservations back to the ledger in the
// same transaction.
type UpdateOrderFn func(*domain.Order) error

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// User
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	GetUser(ctx context.Context, id uint64) (*domain.User, error)

	// Product catalog (read side)
	GetProduct(ctx context.Context, id uint64) (*domain.Product, error)
	ListActiveProducts(ctx context.Context) ([]*domain.Product, error)

	// Order + stock ledger. CreateOrder persists the order and reserves
	// stock for every line item in one transaction: if any item lacks
	// stock, nothing is decremented and ErrInsufficientStock is returned.
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, fn UpdateOrderFn) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID uint64) ([]*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	// ListOrdersForCampaign returns visible PENDING orders whose order
	// date falls inside [start, end].
	ListOrdersForCampaign(ctx context.Context, start, end time.Time) ([]*domain.Order, error)

	// Reports
	TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
	FrequentCustomers(ctx context.Context, limit int) ([]domain.CustomerOrders, error)

	// Audit
	AppendAudit(ctx context.Context, rec *domain.AuditRecord) error
}
