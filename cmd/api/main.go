// Command api runs the delivery marketplace HTTP server.
//
// @title        Delivery Marketplace API
// @version      1.0
// @description  Peer-to-peer package delivery marketplace: travelers carry packages published by senders.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/entregas/delivery-marketplace/internal/api"
	"github.com/entregas/delivery-marketplace/internal/infrastructure/config"
	mongorepo "github.com/entregas/delivery-marketplace/internal/infrastructure/db/mongo"
	redisrepo "github.com/entregas/delivery-marketplace/internal/infrastructure/db/redis"
	"github.com/entregas/delivery-marketplace/internal/infrastructure/queue"
	"github.com/entregas/delivery-marketplace/internal/infrastructure/storage"
	"github.com/entregas/delivery-marketplace/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongorepo.Connect(ctx, mongorepo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisrepo.Connect(ctx, redisrepo.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}
	if err := mongorepo.SeedPermissions(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("permission seeding failed")
	}

	files, err := storage.NewDiskStore(cfg.ImageDir)
	if err != nil {
		log.Fatal().Err(err).Msg("image store init failed")
	}

	auditRepo := mongorepo.NewAuditRepository(db)
	dispatcher := queue.NewDispatcher(cfg.EventWorkers, auditRepo, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, files, dispatcher, auditRepo, cfg, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	type indexed interface {
		EnsureIndexes(ctx context.Context) error
	}
	for _, r := range []indexed{
		mongorepo.NewPackageRepository(db),
		mongorepo.NewTravelRepository(db),
		mongorepo.NewUserRepository(db),
		mongorepo.NewEmployeeRepository(db),
		mongorepo.NewLocalRepository(db),
		mongorepo.NewPermissionRepository(db),
		mongorepo.NewAuditRepository(db),
	} {
		if err := r.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
