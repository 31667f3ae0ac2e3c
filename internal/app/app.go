package app

import (
	"context"
	"errors"
	"net/http"

	datahub "github.com/Lucartis/PrecisionAgriculture"
	"github.com/Lucartis/PrecisionAgriculture/internal/handlers/httpapi"
	"github.com/Lucartis/PrecisionAgriculture/internal/handlers/wireless"
	"github.com/Lucartis/PrecisionAgriculture/internal/interfaces"
	"github.com/Lucartis/PrecisionAgriculture/internal/observability"
	"github.com/Lucartis/PrecisionAgriculture/internal/repository"
	"github.com/Lucartis/PrecisionAgriculture/internal/services"
	"github.com/Lucartis/PrecisionAgriculture/internal/usecases"
	"github.com/gorilla/mux"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func New() *fx.App {
	return fx.New(
		fx.Provide(
			// Config
			datahub.LoadConfig,
			newLogger,
			observability.NewMetrics,

			// Repository
			repository.NewPostgresDatabase,
			repository.NewSensorRepository,

			// Services
			services.NewSensorAnalyzer,
			services.NewKafkaPublisher,
			services.NewTelegramNotifier,

			// Usecases
			usecases.NewSensorPipeline,

			// Ingress
			httpapi.NewHandler,
			httpapi.NewRouter,
			wireless.NewServer,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			startHTTPServer,
			startWirelessServer,
			registerClosers,
		),
	)
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func startHTTPServer(lifecycle fx.Lifecycle, cfg *datahub.Config, router *mux.Router, log *zap.Logger) {
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("🌱 http ingress listening", zap.String("addr", cfg.HTTPAddr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func startWirelessServer(lifecycle fx.Lifecycle, server *wireless.Server) {
	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return server.Start()
		},
		OnStop: func(context.Context) error {
			server.Stop()
			return nil
		},
	})
}

func registerClosers(lifecycle fx.Lifecycle, db *gorm.DB, publisher interfaces.EventPublisher) {
	lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := publisher.Close(); err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}
