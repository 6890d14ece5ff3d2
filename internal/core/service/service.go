package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
	"github.com/shopmart/orderengine/internal/core/utils"
	"go.uber.org/zap"
)

// Service is the boundary the transport layer talks to. It sequences
// authorization, validation, the stock ledger and the order state machine
// per request.
type Service struct {
	repo         port.Repository
	tokenService port.TokenService
	authz        port.Authorizer
	logger       *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(repo port.Repository, tokenService port.TokenService,
	authz port.Authorizer, logger *zap.Logger) (*Service, error) {
	return &Service{
		repo:         repo,
		tokenService: tokenService,
		authz:        authz,
		logger:       logger,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// SetRandSource replaces the campaign selection source. Used by tests to
// pin the random campaign's draws.
func (s *Service) SetRandSource(src rand.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd = rand.New(src)
}

func (s *Service) RegisterUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	exUser, err := s.repo.GetUserByLogin(ctx, user.Login)
	if err != nil && !errors.Is(err, domain.ErrDataNotFound) {
		s.logger.Error("Get user", zap.Error(err))
		return nil, domain.ErrInternal
	}
	if exUser != nil {
		return nil, domain.ErrConflictingData
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		s.logger.Error("Hash password", zap.Error(err))
		return nil, domain.ErrInternal
	}
	user.Password = hashed
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}

	newUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrConflictingData) {
			return nil, domain.ErrConflictingData
		}
		s.logger.Error("Create user", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return newUser, nil
}

func (s *Service) LoginUser(ctx context.Context, login string, password string) (string, error) {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", domain.ErrInternal
	}

	if err := utils.ComparePassword(password, user.Password); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokenService.CreateToken(user)
	if err != nil {
		s.logger.Error("Create token", zap.Error(err))
		return "", domain.ErrTokenCreation
	}
	return token, nil
}

// CreateOrder validates the request, captures catalog prices, reserves
// stock and persists the order in PENDING. Reservation and persistence
// happen in one repository transaction, so a failed creation never leaves
// a partial decrement behind. Only the standing loyalty discount applies
// here; campaign discounts are retroactive.
func (s *Service) CreateOrder(ctx context.Context, principal domain.Principal,
	userID uint64, items []port.NewOrderItem) (*domain.Order, error) {
	if err := s.authz.Enforce(principal, port.ResourceOrders, port.ActionCreate); err != nil {
		return nil, err
	}
	if principal.Role != domain.RoleAdmin && principal.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if len(items) == 0 {
		return nil, domain.ErrValidation
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, domain.ErrValidation
		}
	}

	// collapse duplicate product lines so the ledger sees exactly one
	// reservation per product, keeping the all-or-nothing check sound
	merged := make([]port.NewOrderItem, 0, len(items))
	lineIndex := make(map[uint64]int, len(items))
	for _, item := range items {
		if i, ok := lineIndex[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		lineIndex[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.ErrValidation
		}
		return nil, err
	}

	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		OrderDate: time.Now(),
		IsVisible: true,
		Items:     make([]domain.OrderItem, 0, len(merged)),
	}
	for _, item := range merged {
		product, err := s.repo.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrDataNotFound) {
				return nil, domain.ErrValidation
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, domain.ErrProductInactive
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		})
	}

	if user.IsFrequentCustomer {
		order.Discounts = order.Discounts.With(domain.DiscountFrequent5)
	}
	if err := order.ApplyDiscounts(); err != nil {
		s.logger.Error("Compute order total", zap.Error(err))
		return nil, domain.ErrInternal
	}

	newOrder, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, domain.ErrInsufficientStock
		}
		s.logger.Error("Create order", zap.Error(err))
		return nil, err
	}

	s.audit(ctx, "Order", newOrder.ID.String(), "CREATE", principal.UserID,
		"", fmt.Sprintf("status=%s total=%s", newOrder.Status, newOrder.TotalAmount))
	return newOrder, nil
}

// UpdateOrderStatus runs one state machine step. Rejection credits the
// order's reserved stock back to the ledger in the same transaction,
// guarded by the StockReleased flag so a replay cannot double-credit.
func (s *Service) UpdateOrderStatus(ctx context.Context, principal domain.Principal,
	orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if err := s.authz.Enforce(principal, port.ResourceOrders, port.ActionDecide); err != nil {
		return nil, err
	}

	var oldStatus domain.OrderStatus
	order, err := s.repo.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		oldStatus = o.Status
		if err := o.Transition(status); err != nil {
			return err
		}
		if o.HoldsReleasableStock() {
			o.StockReleased = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "Order", orderID.String(), "STATUS_UPDATE", principal.UserID,
		string(oldStatus), string(order.Status))
	return order, nil
}

// DeleteOrder tombstones the order. The record stays for auditors but
// drops out of listings, and any still-held stock goes back to the
// ledger, so deleting an APPROVED order returns its committed units.
func (s *Service) DeleteOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) error {
	if err := s.authz.Enforce(principal, port.ResourceOrders, port.ActionDelete); err != nil {
		return err
	}

	var oldStatus domain.OrderStatus
	_, err := s.repo.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		oldStatus = o.Status
		if err := o.Transition(domain.OrderStatusDeleted); err != nil {
			return err
		}
		if o.HoldsReleasableStock() {
			o.StockReleased = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, "Order", orderID.String(), "DELETE", principal.UserID, string(oldStatus), string(domain.OrderStatusDeleted))
	return nil
}

func (s *Service) GetOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*domain.Order, error) {
	if err := s.authz.Enforce(principal, port.ResourceOrders, port.ActionRead); err != nil {
		return nil, err
	}
	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if principal.Role != domain.RoleAdmin && order.UserID != principal.UserID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *Service) ListOrdersByUser(ctx context.Context, principal domain.Principal, userID uint64) ([]*domain.Order, error) {
	if err := s.authz.Enforce(principal, port.ResourceOrders, port.ActionRead); err != nil {
		return nil, err
	}
	if principal.Role != domain.RoleAdmin && principal.UserID != userID {
		return nil, domain.ErrForbidden
	}
	list, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Get orders for user", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *Service) ListOrders(ctx context.Context, principal domain.Principal) ([]*domain.Order, error) {
	if principal.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	list, err := s.repo.ListOrders(ctx)
	if err != nil {
		s.logger.Error("List orders", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *Service) ListActiveProducts(ctx context.Context, principal domain.Principal) ([]*domain.Product, error) {
	if err := s.authz.Enforce(principal, port.ResourceProducts, port.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.ListActiveProducts(ctx)
}

const reportLimit = 5

func (s *Service) TopSellingProducts(ctx context.Context, principal domain.Principal) ([]domain.ProductSales, error) {
	if err := s.authz.Enforce(principal, port.ResourceReports, port.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.TopSellingProducts(ctx, reportLimit)
}

func (s *Service) FrequentCustomers(ctx context.Context, principal domain.Principal) ([]domain.CustomerOrders, error) {
	if err := s.authz.Enforce(principal, port.ResourceReports, port.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.FrequentCustomers(ctx, reportLimit)
}

// audit is best effort: a failed trail write is logged, never surfaced.
func (s *Service) audit(ctx context.Context, entity, entityID, action string, actorID uint64, oldVal, newVal string) {
	rec := &domain.AuditRecord{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		ActorID:  actorID,
		OldValue: oldVal,
		NewValue: newVal,
		LoggedAt: time.Now(),
	}
	if err := s.repo.AppendAudit(ctx, rec); err != nil {
		s.logger.Error("Append audit record", zap.Error(err),
			zap.String("entity", entity), zap.String("entity_id", entityID))
	}
}
