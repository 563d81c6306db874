package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"locallisting/internal/config"
	"locallisting/internal/database"
	"locallisting/internal/repository"
	"locallisting/internal/service"
	"locallisting/internal/storage"
)

func App(ctx context.Context, cfg *config.Config, log *logrus.Logger) (database.MethodsDB, *service.Service) {
	// connection DB, migrations are applied on connect
	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to the database")
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize MinIO")
	}

	repo := repository.NewRepository(db.DB)

	services := service.NewService(repo, cfg, minioClient, log)

	return db, services
}
