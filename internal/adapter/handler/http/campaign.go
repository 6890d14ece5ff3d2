package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopmart/orderengine/internal/adapter/metrics"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	Handler
	service port.Service
	metrics *metrics.Engine
}

func NewCampaignHandler(service port.Service, m *metrics.Engine, logger *zap.Logger) (*CampaignHandler, error) {
	return &CampaignHandler{
		Handler: *NewHandler(logger),
		service: service,
		metrics: m,
	}, nil
}

type campaignResp struct {
	UpdatedOrders int `json:"updated_orders"`
}

// parseWindow reads the campaign date range from the startDate/endDate
// query parameters, RFC 3339.
func parseWindow(ctx *gin.Context) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, ctx.Query("startDate"))
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrBadRequest
	}
	end, err := time.Parse(time.RFC3339, ctx.Query("endDate"))
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrBadRequest
	}
	return start, end, nil
}

func (ch *CampaignHandler) ApplyRandomDiscount(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	start, end, err := parseWindow(ctx)
	if err != nil {
		ch.handleValidationError(ctx, err)
		return
	}

	updated, err := ch.service.ApplyRandomDiscount(ctx, principal, start, end)
	if err != nil {
		ch.handleError(ctx, err)
		return
	}

	ch.metrics.CampaignOrders.WithLabelValues(string(domain.DiscountRandom50)).Add(float64(updated))
	ch.handleSuccess(ctx, campaignResp{UpdatedOrders: updated})
}

func (ch *CampaignHandler) ApplyTimeDiscount(ctx *gin.Context) {
	principal := getPrincipal(ctx)

	start, end, err := parseWindow(ctx)
	if err != nil {
		ch.handleValidationError(ctx, err)
		return
	}

	updated, err := ch.service.ApplyTimeDiscount(ctx, principal, start, end)
	if err != nil {
		ch.handleError(ctx, err)
		return
	}

	ch.metrics.CampaignOrders.WithLabelValues(string(domain.DiscountTime10)).Add(float64(updated))
	ch.handleSuccess(ctx, campaignResp{UpdatedOrders: updated})
}
