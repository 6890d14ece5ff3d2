package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopmart/orderengine/internal/core/domain"
)

// NewOrderItem is the creation-time shape of a line item: the unit price
// is captured from the catalog by the engine, never taken from the caller.
type NewOrderItem struct {
	ProductID uint64
	Quantity  int32
}

type Service interface {
	RegisterUser(ctx context.Context, user *domain.User) (*domain.User, error)
	LoginUser(ctx context.Context, login string, password string) (string, error)

	CreateOrder(ctx context.Context, principal domain.Principal, userID uint64, items []NewOrderItem) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, principal domain.Principal, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) error
	GetOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, principal domain.Principal, userID uint64) ([]*domain.Order, error)
	ListOrders(ctx context.Context, principal domain.Principal) ([]*domain.Order, error)

	ApplyRandomDiscount(ctx context.Context, principal domain.Principal, start, end time.Time) (int, error)
	ApplyTimeDiscount(ctx context.Context, principal domain.Principal, start, end time.Time) (int, error)

	ListActiveProducts(ctx context.Context, principal domain.Principal) ([]*domain.Product, error)
	TopSellingProducts(ctx context.Context, principal domain.Principal) ([]domain.ProductSales, error)
	FrequentCustomers(ctx context.Context, principal domain.Principal) ([]domain.CustomerOrders, error)
}
