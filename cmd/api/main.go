package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/inficare/inficare/config"
	"github.com/inficare/inficare/internal/draft"
	v1 "github.com/inficare/inficare/internal/handler/v1"
	"github.com/inficare/inficare/internal/history"
	"github.com/inficare/inficare/internal/repository"
	"github.com/inficare/inficare/internal/service"
	"github.com/inficare/inficare/internal/storage/blob"
	"github.com/inficare/inficare/pkg/auth"
	"github.com/inficare/inficare/pkg/database"
	"github.com/inficare/inficare/pkg/logger"
	"github.com/inficare/inficare/pkg/metrics"
	"github.com/inficare/inficare/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("starting inficare api",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	var tracerProvider interface {
		Shutdown(ctx context.Context) error
	}
	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			log.Fatal("failed to initialize tracer", zap.Error(err))
		}
		tracerProvider = tp
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	collector := metrics.NewCollector(cfg.App.Name)
	jwtManager := auth.NewJWTManager(cfg.JWT)

	blobStore := blob.NewLocal(cfg.Storage)
	draftStore := draft.NewStore(blobStore, recordRepo, log)
	historyView := history.NewView(recordRepo)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	authSvc := service.NewAuthService(userRepo, profileRepo, jwtManager, collector, log)
	profileSvc := service.NewProfileService(profileRepo, log)
	recordSvc := service.NewRecordService(draftStore, historyView, recordRepo, auditSvc, collector, log)

	router := v1.NewRouter(cfg, v1.Handlers{
		Auth:      v1.NewAuthHandler(authSvc, log),
		Profile:   v1.NewProfileHandler(profileSvc, log),
		Smartcard: v1.NewSmartcardHandler(cfg.Smartcard, log),
		Draft:     v1.NewDraftHandler(draftStore, recordSvc, collector, log),
		Record:    v1.NewRecordHandler(recordSvc, log),
	}, jwtManager, collector)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	auditSvc.Shutdown()

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("tracer shutdown failed", zap.Error(err))
		}
	}

	log.Info("stopped")
}
