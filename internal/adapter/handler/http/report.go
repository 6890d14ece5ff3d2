package http

import (
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/shopmart/orderengine/internal/core/port"
	"go.uber.org/zap"
)

type ReportHandler struct {
	Handler
	service port.Service
}

func NewReportHandler(service port.Service, logger *zap.Logger) (*ReportHandler, error) {
	return &ReportHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type productResp struct {
	ID       uint64          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int64           `json:"stock"`
}

func (rh *ReportHandler) ListProducts(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	list, err := rh.service.ListActiveProducts(ctx, principal)
	if err != nil {
		rh.handleError(ctx, err)
		return
	}

	result := make([]productResp, 0, len(list))
	for _, p := range list {
		result = append(result, productResp{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			Stock:    p.Stock,
		})
	}
	rh.handleSuccess(ctx, result)
}

type productSalesResp struct {
	ProductName string `json:"product_name"`
	UnitsSold   int64  `json:"units_sold"`
}

func (rh *ReportHandler) TopSellingProducts(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	list, err := rh.service.TopSellingProducts(ctx, principal)
	if err != nil {
		rh.handleError(ctx, err)
		return
	}

	result := make([]productSalesResp, 0, len(list))
	for _, row := range list {
		result = append(result, productSalesResp{ProductName: row.ProductName, UnitsSold: row.UnitsSold})
	}
	rh.handleSuccess(ctx, result)
}

type customerOrdersResp struct {
	UserID uint64 `json:"user_id"`
	Login  string `json:"login"`
	Orders int64  `json:"orders"`
}

func (rh *ReportHandler) FrequentCustomers(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	list, err := rh.service.FrequentCustomers(ctx, principal)
	if err != nil {
		rh.handleError(ctx, err)
		return
	}

	result := make([]customerOrdersResp, 0, len(list))
	for _, row := range list {
		result = append(result, customerOrdersResp{UserID: row.UserID, Login: row.Login, Orders: row.Orders})
	}
	rh.handleSuccess(ctx, result)
}
