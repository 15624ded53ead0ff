package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ledes.com/labportal/internal/bootstrap"
	"ledes.com/labportal/internal/config"
	"ledes.com/labportal/internal/server"
	"ledes.com/labportal/pkg/database"
	"ledes.com/labportal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default().WithError(err).Fatal("invalid configuration")
	}
	logger.InitLogger(cfg.LogLevel, cfg.IsProduction())
	log := logger.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DSN(), cfg.LogLevel == "debug")
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	if cfg.ShouldSeed() {
		if err := bootstrap.Seed(ctx, db); err != nil {
			log.WithError(err).Fatal("seed failed")
		}
	}

	deps, err := server.NewDependencies(ctx, cfg, db)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize dependencies")
	}

	srv, err := server.NewServer(cfg, deps)
	if err != nil {
		log.WithError(err).Fatal("failed to build server")
	}
	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
	log.Info("server stopped")
}
