package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/yungbote/baseapi-backend/internal/data/capture"
	"github.com/yungbote/baseapi-backend/internal/data/db"
	"github.com/yungbote/baseapi-backend/internal/data/uow"
	"github.com/yungbote/baseapi-backend/internal/observability"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
)

// App holds the process-wide resources the commands share.
type App struct {
	Log  *logger.Logger
	DB   *gorm.DB
	Cfg  Config
	UoWs *uow.Factory

	shutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	bootLog, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := LoadConfig(bootLog)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdown := observability.InitOTel(ctx, log, cfg.Otel)

	theDB, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}

	hooks, err := uow.NewOTelHooks(otel.GetMeterProvider())
	if err != nil {
		log.Warn("otel hooks unavailable (continuing without metrics)", "error", err)
	}
	factory := uow.NewFactory(theDB, log,
		uow.WithHooks(hooks),
		uow.WithCapturer(capture.New(log, capture.WithSource(cfg.AuditSource))),
	)

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		UoWs:     factory,
		shutdown: shutdown,
	}, nil
}

// Close flushes telemetry and closes the connection pool.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
