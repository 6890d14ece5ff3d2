package http

import (
	"github.com/gin-gonic/gin"
	"github.com/shopmart/orderengine/internal/adapter/config"
	"github.com/shopmart/orderengine/internal/adapter/metrics"
	"github.com/shopmart/orderengine/internal/core/port"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.HTTP,
	tokenService port.TokenService,
	userHandler *UserHandler,
	orderHandler *OrderHandler,
	campaignHandler *CampaignHandler,
	reportHandler *ReportHandler) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery())

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", userHandler.RegisterUser)
			auth.POST("/login", userHandler.LoginUser)
		}

		orders := api.Group("/orders")
		{
			orders.Use(authCheck(tokenService))
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/user/:userID", orderHandler.ListOrdersByUser)
			orders.GET("/frequent-customers", reportHandler.FrequentCustomers)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
			orders.DELETE("/:id", orderHandler.DeleteOrder)

			orders.POST("/apply-random-discount", campaignHandler.ApplyRandomDiscount)
			orders.POST("/apply-time-discount", campaignHandler.ApplyTimeDiscount)
		}

		products := api.Group("/products")
		{
			products.Use(authCheck(tokenService))
			products.GET("", reportHandler.ListProducts)
			products.GET("/top-selling", reportHandler.TopSellingProducts)
		}
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
