package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
	"go.uber.org/zap"
)

type UserHandler struct {
	Handler
	service port.Service
}

func NewUserHandler(service port.Service, logger *zap.Logger) (*UserHandler, error) {
	return &UserHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type registerReq struct {
	Login              string `json:"login" binding:"required"`
	Password           string `json:"password" binding:"required"`
	Role               string `json:"role"`
	IsFrequentCustomer bool   `json:"is_frequent_customer"`
}

type userResp struct {
	ID                 uint64 `json:"id"`
	Login              string `json:"login"`
	Role               string `json:"role"`
	IsFrequentCustomer bool   `json:"is_frequent_customer"`
}

func (uh *UserHandler) RegisterUser(ctx *gin.Context) {
	var req registerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		uh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	user := &domain.User{
		Login:              req.Login,
		Password:           req.Password,
		IsFrequentCustomer: req.IsFrequentCustomer,
	}
	if req.Role != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			uh.handleValidationError(ctx, domain.ErrValidation)
			return
		}
		user.Role = role
	}

	newUser, err := uh.service.RegisterUser(ctx, user)
	if err != nil {
		uh.handleError(ctx, err)
		return
	}

	uh.handleSuccessWithStatus(ctx, userResp{
		ID:                 newUser.ID,
		Login:              newUser.Login,
		Role:               string(newUser.Role),
		IsFrequentCustomer: newUser.IsFrequentCustomer,
	}, http.StatusCreated)
}

type loginReq struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResp struct {
	Token string `json:"token"`
}

func (uh *UserHandler) LoginUser(ctx *gin.Context) {
	var req loginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		uh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	token, err := uh.service.LoginUser(ctx, req.Login, req.Password)
	if err != nil {
		uh.handleError(ctx, err)
		return
	}

	uh.handleSuccess(ctx, loginResp{Token: token})
}
