package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/config"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/database"
	httpapi "github.com/abhithakur89/Covid19TemperatureAPI/internal/http"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/hub"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/logger"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/notify"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/sensetime"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/service"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/store"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/summary"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/tracing"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "c19server")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	topologyRepo := repository.NewPostgresTopologyRepo(db, log)
	recordsRepo := repository.NewPostgresRecordsRepo(db, log)
	employeesRepo := repository.NewPostgresEmployeesRepo(db, log)
	configRepo := repository.NewPostgresConfigRepo(db, log)

	resolver := settings.NewResolver(configRepo, cfg.Defaults, log)
	images := sensetime.NewClient(
		cfg.Sensetime.BaseURL, cfg.Sensetime.Username, cfg.Sensetime.Password,
		kv, cfg.Sensetime.ImageCacheTTL, log,
	)

	tracingSvc := tracing.NewService(recordsRepo, employeesRepo, topologyRepo, resolver, images, log)
	summarySvc := summary.NewService(topologyRepo, recordsRepo, resolver, images, log)

	sms := notify.NewSMSSender(cfg.Nexmo.APIKey, cfg.Nexmo.APISecret, log)
	email := notify.NewEmailSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromAddress, log)
	notifier := notify.NewNotifier(sms, email, resolver, configRepo, topologyRepo, log)

	eventHub := hub.NewHub(resolver, notifier, log)

	router := httpapi.NewRouter(log)
	router.RegisterTracingRoutes(httpapi.NewTracingHandler(tracingSvc, log))
	router.RegisterSiteRoutes(httpapi.NewSiteHandler(summarySvc, log))
	router.RegisterSettingsRoutes(httpapi.NewSettingsHandler(resolver, topologyRepo, log))
	router.RegisterNotificationRoutes(httpapi.NewNotificationConfigHandler(configRepo, log))
	router.RegisterHubRoutes(eventHub)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go eventHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server exited", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	_ = database.Close(db)
}
