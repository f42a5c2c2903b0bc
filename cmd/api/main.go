// @title                       Permit Portal API
// @version                     1.0
// @description                 Municipal permit applications, document library and staff review.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	_ "github.com/quincy-permits/permit-portal/docs"
	"github.com/quincy-permits/permit-portal/internal/api"
	"github.com/quincy-permits/permit-portal/internal/api/handler"
	"github.com/quincy-permits/permit-portal/internal/api/metrics"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
	"github.com/quincy-permits/permit-portal/internal/core/service"
	"github.com/quincy-permits/permit-portal/internal/infrastructure/config"
	mongodb "github.com/quincy-permits/permit-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/quincy-permits/permit-portal/internal/infrastructure/db/redis"
	"github.com/quincy-permits/permit-portal/internal/infrastructure/storage"
	"github.com/quincy-permits/permit-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "permit-portal",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	repos := mongodb.NewRepositories(db)
	if err := repos.EnsureIndexes(ctx); err != nil {
		return err
	}

	health := []handler.Pinger{mongodb.Pinger{Client: client}}

	var denylist ports.TokenDenylist
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		denylist = redisdb.NewTokenDenylist(rdb)
		health = append(health, redisdb.Pinger{Client: rdb})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token revocation enabled")
	}

	files, err := storage.NewDiskStorage(cfg.Uploads.Dir)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	if cfg.Seed.Enabled {
		seeder := service.NewSeeder(repos.PermitTypes, repos.Properties, repos.Users, log)
		if err := seeder.Seed(ctx, service.SeedAdmin{Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword}); err != nil {
			return err
		}
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, denylist, log)
	e := api.NewRouter(api.Deps{
		Tokens:         tokens,
		Auth:           service.NewAuthService(repos.Users, tokens, recorder, log),
		Applications:   service.NewApplicationService(repos.Applications, repos.Users, repos.PermitTypes, recorder, log),
		PermitTypes:    service.NewPermitTypeService(repos.PermitTypes),
		Properties:     service.NewPropertyRecordService(repos.Properties),
		Documents:      service.NewDocumentService(repos.Documents, repos.Applications, repos.Users, files, cfg.Uploads.MaxBytes, recorder, log),
		Users:          service.NewUserService(repos.Users, log),
		Statistics:     service.NewStatisticsService(repos.Applications, repos.Users),
		Health:         health,
		Registry:       registry,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
		Log:            log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
