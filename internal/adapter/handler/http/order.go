package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type orderItemReq struct {
	ProductID uint64 `json:"product_id" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required"`
}

type createOrderReq struct {
	UserID uint64         `json:"user_id" binding:"required"`
	Items  []orderItemReq `json:"items" binding:"required"`
}

type orderItemResp struct {
	ProductID   uint64          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type orderResp struct {
	ID              string          `json:"id"`
	UserID          uint64          `json:"user_id"`
	Status          string          `json:"status"`
	OrderDate       time.Time       `json:"order_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	DiscountTypes   []string        `json:"discount_types,omitempty"`
	Items           []orderItemResp `json:"items"`
}

func newOrderResp(o *domain.Order) orderResp {
	resp := orderResp{
		ID:              o.ID.String(),
		UserID:          o.UserID,
		Status:          string(o.Status),
		OrderDate:       o.OrderDate,
		TotalAmount:     o.TotalAmount,
		DiscountApplied: o.DiscountApplied,
		Items:           make([]orderItemResp, 0, len(o.Items)),
	}
	for _, t := range o.Discounts {
		resp.DiscountTypes = append(resp.DiscountTypes, string(t))
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResp{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return resp
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	var req createOrderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	items := make([]port.NewOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, port.NewOrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := oh.service.CreateOrder(ctx, principal, req.UserID, items)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, newOrderResp(order), http.StatusCreated)
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (oh *OrderHandler) UpdateOrderStatus(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	var req updateStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.UpdateOrderStatus(ctx, principal, orderID, status)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResp(order))
}

func (oh *OrderHandler) DeleteOrder(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	if err := oh.service.DeleteOrder(ctx, principal, orderID); err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, nil, http.StatusNoContent)
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.service.GetOrder(ctx, principal, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResp(order))
}

func (oh *OrderHandler) ListOrders(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	list, err := oh.service.ListOrders(ctx, principal)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result := make([]orderResp, 0, len(list))
	for _, o := range list {
		result = append(result, newOrderResp(o))
	}
	oh.handleSuccess(ctx, result)
}

func (oh *OrderHandler) ListOrdersByUser(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	userID, err := strconv.ParseUint(ctx.Param("userID"), 10, 64)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	list, err := oh.service.ListOrdersByUser(ctx, principal, userID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result := make([]orderResp, 0, len(list))
	for _, o := range list {
		result = append(result, newOrderResp(o))
	}
	oh.handleSuccess(ctx, result)
}
