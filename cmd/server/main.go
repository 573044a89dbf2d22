package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gavel/config"
	"gavel/internal/database"
	"gavel/internal/repository"
	"gavel/internal/router"
	"gavel/internal/scheduler"
	"gavel/internal/service"
	"gavel/internal/ws"
	"gavel/pkg/cloudinary"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	logrus.SetOutput(os.Stdout)

	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logrus.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("redis: %v", err)
	}

	var cloud cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			logrus.Fatalf("cloudinary: %v", err)
		}
	} else {
		logrus.Warn("image uploads disabled: set CLOUDINARY_CLOUD_NAME to enable")
	}

	hub := ws.NewHub()
	storeDB := repository.NewDB(db)
	notifSvc := service.NewNotificationService(storeDB, hub)
	settlementSvc := service.NewSettlementService(storeDB, notifSvc)

	engine := router.Setup(router.Deps{
		Cfg:           cfg,
		DB:            db,
		Redis:         rdb,
		Cloud:         cloud,
		Hub:           hub,
		SettlementSvc: settlementSvc,
		NotifSvc:      notifSvc,
	})

	schedCtx, stopSched := context.WithCancel(context.Background())
	go scheduler.New(settlementSvc, cfg.Settlement.Interval).Run(schedCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logrus.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down...")
	stopSched()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("server shutdown: %v", err)
	}
	logrus.Info("server stopped")
}
