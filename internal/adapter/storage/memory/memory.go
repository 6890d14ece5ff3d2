// Package memory holds an in-process Repository with the same ledger
// semantics as the Postgres adapter: all-or-nothing reservation, stock
// never below zero, release credited exactly once per order. It backs the
// test suite and DSN-less local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
)

type reservation struct {
	productID uint64
	quantity  int32
	released  bool
}

type Repository struct {
	mu           sync.Mutex
	users        map[uint64]*domain.User
	usersByLogin map[string]uint64
	products     map[uint64]*domain.Product
	orders       map[uuid.UUID]*domain.Order
	orderSeq     []uuid.UUID
	reservations map[uuid.UUID][]reservation
	audit        []domain.AuditRecord
	nextUserID   uint64
}

func NewRepository() *Repository {
	return &Repository{
		users:        make(map[uint64]*domain.User),
		usersByLogin: make(map[string]uint64),
		products:     make(map[uint64]*domain.Product),
		orders:       make(map[uuid.UUID]*domain.Order),
		reservations: make(map[uuid.UUID][]reservation),
		nextUserID:   1,
	}
}

func (r *Repository) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByLogin[user.Login]; exists {
		return nil, domain.ErrConflictingData
	}
	user.ID = r.nextUserID
	r.nextUserID++

	stored := *user
	r.users[user.ID] = &stored
	r.usersByLogin[user.Login] = user.ID
	return user, nil
}

func (r *Repository) GetUserByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.usersByLogin[login]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	u := *r.users[id]
	return &u, nil
}

func (r *Repository) GetUser(_ context.Context, id uint64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	u := *user
	return &u, nil
}

// PutUser replaces a stored user in place. The user profile is owned by
// an external collaborator, so this is the adapter's stand-in for its
// write side, used for flags like IsFrequentCustomer.
func (r *Repository) PutUser(user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *user
	r.users[user.ID] = &stored
	r.usersByLogin[user.Login] = user.ID
}

// PutProduct seeds or replaces a catalog entry. The catalog is an external
// collaborator, so this is the adapter's stand-in for its write side.
func (r *Repository) PutProduct(product *domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *product
	r.products[product.ID] = &stored
}

func (r *Repository) GetProduct(_ context.Context, id uint64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	p := *product
	return &p, nil
}

func (r *Repository) ListActiveProducts(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.IsActive {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// CreateOrder reserves stock for every line item and stores the order
// under one lock acquisition: either all items decrement or none do.
func (r *Repository) CreateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// sum per product first so repeated lines for one product cannot pass
	// the check individually and overdraw during the decrement
	needed := make(map[uint64]int64, len(order.Items))
	for _, item := range order.Items {
		needed[item.ProductID] += int64(item.Quantity)
	}
	for productID, quantity := range needed {
		product, ok := r.products[productID]
		if !ok || !product.IsActive || product.Stock < quantity {
			return nil, domain.ErrInsufficientStock
		}
	}

	res := make([]reservation, 0, len(order.Items))
	for _, item := range order.Items {
		r.products[item.ProductID].Stock -= int64(item.Quantity)
		res = append(res, reservation{productID: item.ProductID, quantity: item.Quantity})
	}

	order.CreatedAt = time.Now()
	stored := cloneOrder(order)
	r.orders[order.ID] = stored
	r.orderSeq = append(r.orderSeq, order.ID)
	r.reservations[order.ID] = res
	return cloneOrder(stored), nil
}

func (r *Repository) ReadOrder(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) UpdateOrder(_ context.Context, orderID uuid.UUID, fn port.UpdateOrderFn) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}

	updated := cloneOrder(order)
	wasReleased := updated.StockReleased
	if err := fn(updated); err != nil {
		return nil, err
	}

	if !wasReleased && updated.StockReleased {
		res := r.reservations[orderID]
		for i := range res {
			if res[i].released {
				continue
			}
			if product, ok := r.products[res[i].productID]; ok {
				product.Stock += int64(res[i].quantity)
			}
			res[i].released = true
		}
	}

	r.orders[orderID] = cloneOrder(updated)
	return updated, nil
}

func (r *Repository) ListOrdersByUser(_ context.Context, userID uint64) ([]*domain.Order, error) {
	return r.selectOrders(func(o *domain.Order) bool {
		return o.UserID == userID && o.IsVisible
	}), nil
}

func (r *Repository) ListOrders(_ context.Context) ([]*domain.Order, error) {
	return r.selectOrders(func(o *domain.Order) bool {
		return o.IsVisible
	}), nil
}

func (r *Repository) ListOrdersForCampaign(_ context.Context, start, end time.Time) ([]*domain.Order, error) {
	return r.selectOrders(func(o *domain.Order) bool {
		return o.Status == domain.OrderStatusPending && o.IsVisible &&
			!o.OrderDate.Before(start) && !o.OrderDate.After(end)
	}), nil
}

func (r *Repository) selectOrders(match func(*domain.Order) bool) []*domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*domain.Order, 0)
	for _, id := range r.orderSeq {
		if o := r.orders[id]; match(o) {
			list = append(list, cloneOrder(o))
		}
	}
	return list
}

func (r *Repository) TopSellingProducts(_ context.Context, limit int) ([]domain.ProductSales, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	units := make(map[string]int64)
	for _, o := range r.orders {
		if o.Status != domain.OrderStatusApproved {
			continue
		}
		for _, item := range o.Items {
			units[item.ProductName] += int64(item.Quantity)
		}
	}

	list := make([]domain.ProductSales, 0, len(units))
	for name, sold := range units {
		list = append(list, domain.ProductSales{ProductName: name, UnitsSold: sold})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UnitsSold != list[j].UnitsSold {
			return list[i].UnitsSold > list[j].UnitsSold
		}
		return list[i].ProductName < list[j].ProductName
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *Repository) FrequentCustomers(_ context.Context, limit int) ([]domain.CustomerOrders, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[uint64]int64)
	for _, o := range r.orders {
		if o.Status == domain.OrderStatusApproved {
			counts[o.UserID]++
		}
	}

	list := make([]domain.CustomerOrders, 0, len(counts))
	for userID, n := range counts {
		row := domain.CustomerOrders{UserID: userID, Orders: n}
		if u, ok := r.users[userID]; ok {
			row.Login = u.Login
		}
		list = append(list, row)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Orders != list[j].Orders {
			return list[i].Orders > list[j].Orders
		}
		return list[i].UserID < list[j].UserID
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *Repository) AppendAudit(_ context.Context, rec *domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.audit = append(r.audit, *rec)
	return nil
}

// AuditTrail returns a copy of the recorded audit entries, oldest first.
func (r *Repository) AuditTrail() []domain.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.AuditRecord, len(r.audit))
	copy(out, r.audit)
	return out
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = make([]domain.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.Discounts = make(domain.DiscountSet, len(o.Discounts))
	copy(cp.Discounts, o.Discounts)
	return &cp
}
