package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pccr10001/ofonomock/internal/api"
	"github.com/pccr10001/ofonomock/internal/auth"
	"github.com/pccr10001/ofonomock/internal/bus"
	"github.com/pccr10001/ofonomock/internal/config"
	"github.com/pccr10001/ofonomock/internal/logic"
	"github.com/pccr10001/ofonomock/internal/ofono"
	"github.com/pccr10001/ofonomock/internal/repository"
	"github.com/pccr10001/ofonomock/internal/service"
	"github.com/pccr10001/ofonomock/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Config
	config.LoadConfig()
	cfg := config.AppConfig

	// 2. Init Logger
	logger.InitLogger(cfg.Log.Level)
	defer logger.Sync()
	logger.Log.Info("Starting oFono mock...")

	// 3. Init Database
	db, err := repository.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Log.Fatalf("Failed to open database: %v", err)
	}
	calls := repository.NewCallRepository(db)
	signals := repository.NewSignalRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	// 4. Build the object tree and its listeners
	svc := service.New(calls, signals)
	hub := api.NewSignalHub()
	svc.Subscribe(hub.Publish)
	svc.Subscribe(logic.NewWebhookService(webhookRepo).Dispatch)

	opts := ofono.Options{NoModem: cfg.Mock.NoModem, ModemName: cfg.Mock.ModemName}
	if err := svc.Start(opts); err != nil {
		logger.Log.Fatalf("Failed to start mock: %v", err)
	}

	// 5. Serve on D-Bus
	conn, err := bus.Connect(cfg.Bus.Type)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to %s bus: %v", cfg.Bus.Type, err)
	}
	busServer := bus.NewServer(conn, svc, cfg.Bus.Name)
	if err := busServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to serve on D-Bus: %v", err)
	}
	defer busServer.Stop()

	// 6. Admin API
	authn := auth.NewAuthenticator(cfg.Admin.JWTSecret, 24*time.Hour)
	if authn.Enabled() {
		token, err := authn.GenerateToken("harness")
		if err != nil {
			logger.Log.Fatalf("Failed to generate admin token: %v", err)
		}
		logger.Log.Warnf("ADMIN API TOKEN: %s", token)
	}

	if cfg.Admin.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(api.RouterConfig{
		Service:  svc,
		Calls:    calls,
		Signals:  signals,
		Webhooks: webhookRepo,
		Hub:      hub,
		Auth:     authn,
	})
	httpServer := &http.Server{Addr: cfg.Admin.Port, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Infof("Admin API listening on %s", cfg.Admin.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Errorf("Exited with error: %v", err)
	} else {
		logger.Log.Info("Shut down cleanly")
	}
}
