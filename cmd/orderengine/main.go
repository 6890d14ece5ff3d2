package main

import (
	"context"
	"fmt"

	"github.com/shopmart/orderengine/internal/adapter/auth"
	"github.com/shopmart/orderengine/internal/adapter/authz"
	"github.com/shopmart/orderengine/internal/adapter/config"
	"github.com/shopmart/orderengine/internal/adapter/handler/http"
	"github.com/shopmart/orderengine/internal/adapter/logger"
	"github.com/shopmart/orderengine/internal/adapter/metrics"
	"github.com/shopmart/orderengine/internal/adapter/storage"
	"github.com/shopmart/orderengine/internal/adapter/storage/memory"
	"github.com/shopmart/orderengine/internal/adapter/storage/repository"
	"github.com/shopmart/orderengine/internal/core/port"
	"github.com/shopmart/orderengine/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()
	engineMetrics := metrics.NewEngine()

	var repo port.Repository
	if conf.Database.DSN == "" {
		log.Warn("no database DSN configured, using in-memory store")
		repo = memory.NewRepository()
	} else {
		db, err := storage.NewDBStorage(ctx, conf.Database)
		if err != nil {
			log.Error("database error", zap.Error(err))
			return
		}
		err = db.RunMigrations()
		if err != nil {
			log.Error("database migration error", zap.Error(err))
			return
		}
		repo, err = repository.NewRepository(db, engineMetrics)
		if err != nil {
			log.Error("repository creating error", zap.Error(err))
			return
		}
	}

	tokenService, err := auth.New()
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}

	enforcer, err := authz.New()
	if err != nil {
		log.Error("authorizer creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, tokenService, enforcer, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	userHandler, err := http.NewUserHandler(svc, log.Named("User handler"))
	if err != nil {
		log.Error("user handler creating error", zap.Error(err))
		return
	}
	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	campaignHandler, err := http.NewCampaignHandler(svc, engineMetrics, log.Named("Campaign handler"))
	if err != nil {
		log.Error("campaign handler creating error", zap.Error(err))
		return
	}
	reportHandler, err := http.NewReportHandler(svc, log.Named("Report handler"))
	if err != nil {
		log.Error("report handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, tokenService, userHandler, orderHandler, campaignHandler, reportHandler)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
