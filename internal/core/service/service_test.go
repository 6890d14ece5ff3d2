package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/shopmart/orderengine/internal/adapter/auth"
	"github.com/shopmart/orderengine/internal/adapter/authz"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
	"github.com/shopmart/orderengine/internal/core/port/mock"
	"github.com/shopmart/orderengine/internal/core/service"
	"github.com/shopmart/orderengine/internal/core/utils"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type prepareMocks func(repo *mock.MockRepository)

var (
	adminPrincipal    = domain.Principal{UserID: 42, Role: domain.RoleAdmin}
	customerPrincipal = domain.Principal{UserID: 1, Role: domain.RoleCustomer}
)

func newTestService(t *testing.T, repo port.Repository) *service.Service {
	t.Helper()

	logger, _ := zap.NewProduction()
	ts, err := auth.New()
	assert.NoError(t, err)
	enforcer, err := authz.New()
	assert.NoError(t, err)

	s, err := service.NewService(repo, ts, enforcer, logger)
	assert.NoError(t, err)
	return s
}

func TestService_RegisterUser(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type userRegisterTest struct {
		name      string
		user      domain.User
		mock      prepareMocks
		expError  error
		expResult *domain.User
	}

	hashedPass, _ := utils.HashPassword("test")
	user := domain.User{
		Login:    "test",
		Password: hashedPass,
		Role:     domain.RoleCustomer,
		ID:       1,
	}

	tests := []userRegisterTest{
		{
			name: "Register good",
			user: domain.User{Login: user.Login, Password: "test"},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUserByLogin(gomock.Any(), user.Login).Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *domain.User) (*domain.User, error) {
						assert.Equal(t, domain.RoleCustomer, u.Role)
						assert.NotEqual(t, "test", u.Password)
						return &user, nil
					})
			},
			expError:  nil,
			expResult: &user,
		},
		{
			name: "Register already exists",
			user: domain.User{Login: user.Login, Password: "test"},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUserByLogin(gomock.Any(), user.Login).Return(&user, nil)
			},
			expError:  domain.ErrConflictingData,
			expResult: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			test.mock(repo)

			s := newTestService(t, repo)

			result, err := s.RegisterUser(context.Background(), &test.user)

			assert.Equal(t, test.expResult, result)
			assert.Equal(t, test.expError, err)
		})
	}
}

func TestService_LoginUser(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type userLoginTest struct {
		name     string
		user     domain.User
		mock     prepareMocks
		expError error
	}

	hashedPass, _ := utils.HashPassword("test")
	user := domain.User{
		Login:    "test",
		Password: hashedPass,
		Role:     domain.RoleCustomer,
		ID:       1,
	}

	tests := []userLoginTest{
		{
			name: "Login good",
			user: domain.User{Login: user.Login, Password: "test", ID: 1},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUserByLogin(gomock.Any(), user.Login).Return(&user, nil)
			},
			expError: nil,
		},
		{
			name: "Password bad",
			user: domain.User{Login: user.Login, Password: "hacker"},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUserByLogin(gomock.Any(), user.Login).Return(&user, nil)
			},
			expError: domain.ErrInvalidCredentials,
		},
		{
			name: "Login bad",
			user: domain.User{Login: "hacker", Password: "test"},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUserByLogin(gomock.Any(), "hacker").Return(nil, domain.ErrDataNotFound)
			},
			expError: domain.ErrInvalidCredentials,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			test.mock(repo)

			logger, _ := zap.NewProduction()
			ts, err := auth.New()
			assert.NoError(t, err)
			enforcer, err := authz.New()
			assert.NoError(t, err)

			s, err := service.NewService(repo, ts, enforcer, logger)
			assert.NoError(t, err)

			token, err := s.LoginUser(context.Background(), test.user.Login, test.user.Password)
			assert.Equal(t, test.expError, err)

			if token != "" {
				payload, err := ts.VerifyToken(token)
				assert.NoError(t, err)
				assert.Equal(t, payload.UserID, test.user.ID)
				assert.Equal(t, payload.Role, user.Role)
			}
		})
	}
}

func TestService_CreateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	customer := domain.User{ID: 1, Login: "buyer", Role: domain.RoleCustomer}
	frequent := domain.User{ID: 2, Login: "regular", Role: domain.RoleCustomer, IsFrequentCustomer: true}
	lamp := domain.Product{ID: 10, Name: "Lamp", Price: decimal.MustParse("25.00"), Stock: 5, IsActive: true}
	chair := domain.Product{ID: 11, Name: "Chair", Price: decimal.MustParse("50.00"), Stock: 2, IsActive: true}
	retired := domain.Product{ID: 12, Name: "Retired lamp", Price: decimal.MustParse("9.99"), Stock: 3, IsActive: false}

	type createOrderTest struct {
		name        string
		principal   domain.Principal
		userID      uint64
		items       []port.NewOrderItem
		mock        prepareMocks
		expError    error
		expTotal    string
		expDiscount string
		expTags     domain.DiscountSet
	}

	echoCreate := func(repo *mock.MockRepository) {
		repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
				return o, nil
			})
		repo.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(nil)
	}

	tests := []createOrderTest{
		{
			name:      "Create good order",
			principal: customerPrincipal,
			userID:    customer.ID,
			items: []port.NewOrderItem{
				{ProductID: lamp.ID, Quantity: 2},
				{ProductID: chair.ID, Quantity: 1},
			},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUser(gomock.Any(), customer.ID).Return(&customer, nil)
				repo.EXPECT().GetProduct(gomock.Any(), lamp.ID).Return(&lamp, nil)
				repo.EXPECT().GetProduct(gomock.Any(), chair.ID).Return(&chair, nil)
				echoCreate(repo)
			},
			expTotal:    "100.00",
			expDiscount: "0.00",
		},
		{
			name:      "Frequent customer gets the loyalty discount",
			principal: domain.Principal{UserID: frequent.ID, Role: domain.RoleCustomer},
			userID:    frequent.ID,
			items:     []port.NewOrderItem{{ProductID: chair.ID, Quantity: 2}},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUser(gomock.Any(), frequent.ID).Return(&frequent, nil)
				repo.EXPECT().GetProduct(gomock.Any(), chair.ID).Return(&chair, nil)
				echoCreate(repo)
			},
			expTotal:    "95.00",
			expDiscount: "5.00",
			expTags:     domain.DiscountSet{domain.DiscountFrequent5},
		},
		{
			name:      "Duplicate product lines are merged",
			principal: customerPrincipal,
			userID:    customer.ID,
			items: []port.NewOrderItem{
				{ProductID: lamp.ID, Quantity: 1},
				{ProductID: lamp.ID, Quantity: 2},
			},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUser(gomock.Any(), customer.ID).Return(&customer, nil)
				repo.EXPECT().GetProduct(gomock.Any(), lamp.ID).Return(&lamp, nil)
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						assert.Len(t, o.Items, 1)
						assert.Equal(t, int32(3), o.Items[0].Quantity)
						return o, nil
					})
				repo.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(nil)
			},
			expTotal:    "75.00",
			expDiscount: "0.00",
		},
		{
			name:      "Insufficient stock",
			principal: customerPrincipal,
			userID:    customer.ID,
			items:     []port.NewOrderItem{{ProductID: chair.ID, Quantity: 3}},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUser(gomock.Any(), customer.ID).Return(&customer, nil)
				repo.EXPECT().GetProduct(gomock.Any(), chair.ID).Return(&chair, nil)
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrInsufficientStock)
			},
			expError: domain.ErrInsufficientStock,
		},
		{
			name:      "Inactive product",
			principal: customerPrincipal,
			userID:    customer.ID,
			items:     []port.NewOrderItem{{ProductID: retired.ID, Quantity: 1}},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUser(gomock.Any(), customer.ID).Return(&customer, nil)
				repo.EXPECT().GetProduct(gomock.Any(), retired.ID).Return(&retired, nil)
			},
			expError: domain.ErrProductInactive,
		},
		{
			name:      "Zero quantity",
			principal: customerPrincipal,
			userID:    customer.ID,
			items:     []port.NewOrderItem{{ProductID: lamp.ID, Quantity: 0}},
			mock:      func(repo *mock.MockRepository) {},
			expError:  domain.ErrValidation,
		},
		{
			name:      "No items",
			principal: customerPrincipal,
			userID:    customer.ID,
			items:     nil,
			mock:      func(repo *mock.MockRepository) {},
			expError:  domain.ErrValidation,
		},
		{
			name:      "Customer cannot order for another user",
			principal: customerPrincipal,
			userID:    frequent.ID,
			items:     []port.NewOrderItem{{ProductID: lamp.ID, Quantity: 1}},
			mock:      func(repo *mock.MockRepository) {},
			expError:  domain.ErrForbidden,
		},
		{
			name:      "Admin orders on behalf of a customer",
			principal: adminPrincipal,
			userID:    customer.ID,
			items:     []port.NewOrderItem{{ProductID: lamp.ID, Quantity: 1}},
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().GetUser(gomock.Any(), customer.ID).Return(&customer, nil)
				repo.EXPECT().GetProduct(gomock.Any(), lamp.ID).Return(&lamp, nil)
				echoCreate(repo)
			},
			expTotal:    "25.00",
			expDiscount: "0.00",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			test.mock(repo)

			s := newTestService(t, repo)

			result, err := s.CreateOrder(context.Background(), test.principal, test.userID, test.items)

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, result)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, domain.OrderStatusPending, result.Status)
			assert.True(t, result.IsVisible)
			assert.Zero(t, result.TotalAmount.Cmp(decimal.MustParse(test.expTotal)))
			assert.Zero(t, result.DiscountApplied.Cmp(decimal.MustParse(test.expDiscount)))
			assert.Equal(t, test.expTags, result.Discounts)
		})
	}
}

func TestService_UpdateOrderStatus(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	orderID := uuid.New()
	pendingOrder := func() domain.Order {
		return domain.Order{
			ID:     orderID,
			UserID: 1,
			Status: domain.OrderStatusPending,
			Items: []domain.OrderItem{
				{ProductID: 10, ProductName: "Lamp", Quantity: 2, UnitPrice: decimal.MustParse("25.00")},
			},
			IsVisible: true,
		}
	}

	// applyFn drives the mock the way the repository would: load the row,
	// run the caller's mutation, hand back the result.
	applyFn := func(base domain.Order) func(context.Context, uuid.UUID, port.UpdateOrderFn) (*domain.Order, error) {
		return func(_ context.Context, _ uuid.UUID, fn port.UpdateOrderFn) (*domain.Order, error) {
			o := base
			if err := fn(&o); err != nil {
				return nil, err
			}
			return &o, nil
		}
	}

	type statusTest struct {
		name        string
		principal   domain.Principal
		status      domain.OrderStatus
		mock        prepareMocks
		expError    error
		expStatus   domain.OrderStatus
		expReleased bool
	}

	tests := []statusTest{
		{
			name:      "Approve pending",
			principal: adminPrincipal,
			status:    domain.OrderStatusApproved,
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().UpdateOrder(gomock.Any(), orderID, gomock.Any()).
					DoAndReturn(applyFn(pendingOrder()))
				repo.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(nil)
			},
			expStatus:   domain.OrderStatusApproved,
			expReleased: false,
		},
		{
			name:      "Reject pending releases stock",
			principal: adminPrincipal,
			status:    domain.OrderStatusRejected,
			mock: func(repo *mock.MockRepository) {
				repo.EXPECT().UpdateOrder(gomock.Any(), orderID, gomock.Any()).
					DoAndReturn(applyFn(pendingOrder()))
				repo.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(nil)
			},
			expStatus:   domain.OrderStatusRejected,
			expReleased: true,
		},
		{
			name:      "Reject already rejected",
			principal: adminPrincipal,
			status:    domain.OrderStatusRejected,
			mock: func(repo *mock.MockRepository) {
				rejected := pendingOrder()
				rejected.Status = domain.OrderStatusRejected
				rejected.StockReleased = true
				repo.EXPECT().UpdateOrder(gomock.Any(), orderID, gomock.Any()).
					DoAndReturn(applyFn(rejected))
			},
			expError: domain.ErrAlreadyFinalized,
		},
		{
			name:      "Customer cannot decide",
			principal: customerPrincipal,
			status:    domain.OrderStatusApproved,
			mock:      func(repo *mock.MockRepository) {},
			expError:  domain.ErrForbidden,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			test.mock(repo)

			s := newTestService(t, repo)

			result, err := s.UpdateOrderStatus(context.Background(), test.principal, orderID, test.status)

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, result)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expStatus, result.Status)
			assert.Equal(t, test.expReleased, result.StockReleased)
		})
	}
}

func TestService_DeleteOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	orderID := uuid.New()

	t.Run("Delete approved releases stock and hides the order", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		approved := domain.Order{ID: orderID, UserID: 1, Status: domain.OrderStatusApproved, IsVisible: true}
		repo.EXPECT().UpdateOrder(gomock.Any(), orderID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, fn port.UpdateOrderFn) (*domain.Order, error) {
				o := approved
				if err := fn(&o); err != nil {
					return nil, err
				}
				assert.Equal(t, domain.OrderStatusDeleted, o.Status)
				assert.False(t, o.IsVisible)
				assert.True(t, o.StockReleased)
				return &o, nil
			})
		repo.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(nil)

		s := newTestService(t, repo)

		err := s.DeleteOrder(context.Background(), adminPrincipal, orderID)
		assert.NoError(t, err)
	})

	t.Run("Delete deleted", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		deleted := domain.Order{ID: orderID, Status: domain.OrderStatusDeleted, StockReleased: true}
		repo.EXPECT().UpdateOrder(gomock.Any(), orderID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, fn port.UpdateOrderFn) (*domain.Order, error) {
				o := deleted
				if err := fn(&o); err != nil {
					return nil, err
				}
				return &o, nil
			})

		s := newTestService(t, repo)

		err := s.DeleteOrder(context.Background(), adminPrincipal, orderID)
		assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	})

	t.Run("Customer cannot delete", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)

		s := newTestService(t, repo)

		err := s.DeleteOrder(context.Background(), customerPrincipal, orderID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestService_OrderVisibility(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	orderID := uuid.New()
	order := domain.Order{ID: orderID, UserID: 1, Status: domain.OrderStatusPending, IsVisible: true}

	t.Run("Owner reads own order", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(&order, nil)

		s := newTestService(t, repo)

		got, err := s.GetOrder(context.Background(), customerPrincipal, orderID)
		assert.NoError(t, err)
		assert.Equal(t, &order, got)
	})

	t.Run("Stranger cannot read someone else's order", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(&order, nil)

		s := newTestService(t, repo)

		got, err := s.GetOrder(context.Background(), domain.Principal{UserID: 99, Role: domain.RoleCustomer}, orderID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Nil(t, got)
	})

	t.Run("Customer cannot list another user's orders", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)

		s := newTestService(t, repo)

		_, err := s.ListOrdersByUser(context.Background(), customerPrincipal, 99)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Customer cannot list all orders", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)

		s := newTestService(t, repo)

		_, err := s.ListOrders(context.Background(), customerPrincipal)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestService_CreateOrderDuplicateLines(t *testing.T) {
	f := newCampaignFixture(t)
	f.repo.PutProduct(&domain.Product{
		ID:       1,
		Name:     "Lamp",
		Price:    decimal.MustParse("10.00"),
		Stock:    5,
		IsActive: true,
	})
	user := f.newCustomer(t, "buyer", false)
	principal := domain.Principal{UserID: user.ID, Role: user.Role}

	// two lines asking 3+3 against stock 5 must fail whole and leave the
	// ledger untouched
	_, err := f.svc.CreateOrder(context.Background(), principal, user.ID,
		[]port.NewOrderItem{{ProductID: 1, Quantity: 3}, {ProductID: 1, Quantity: 3}})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	product, err := f.repo.GetProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), product.Stock)

	order, err := f.svc.CreateOrder(context.Background(), principal, user.ID,
		[]port.NewOrderItem{{ProductID: 1, Quantity: 2}, {ProductID: 1, Quantity: 2}})
	assert.NoError(t, err)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, int32(4), order.Items[0].Quantity)

	product, err = f.repo.GetProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), product.Stock)
}

func TestService_Reports(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sales := []domain.ProductSales{{ProductName: "Lamp", UnitsSold: 7}}
	customers := []domain.CustomerOrders{{UserID: 1, Login: "buyer", Orders: 3}}

	t.Run("Top selling products", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		repo.EXPECT().TopSellingProducts(gomock.Any(), 5).Return(sales, nil)

		s := newTestService(t, repo)

		got, err := s.TopSellingProducts(context.Background(), adminPrincipal)
		assert.NoError(t, err)
		assert.Equal(t, sales, got)
	})

	t.Run("Frequent customers", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		repo.EXPECT().FrequentCustomers(gomock.Any(), 5).Return(customers, nil)

		s := newTestService(t, repo)

		got, err := s.FrequentCustomers(context.Background(), adminPrincipal)
		assert.NoError(t, err)
		assert.Equal(t, customers, got)
	})
}
