// Package bootstrap собирает зависимости по конфигурации. Общий для сервера и arbiterctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-arbitration/internal/config"
	"github.com/ignatzorin/freelance-arbitration/internal/db"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/memory"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/mongo"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/postgres"
	"github.com/ignatzorin/freelance-arbitration/internal/scoring"
	"github.com/ignatzorin/freelance-arbitration/internal/storage"
)

// Ping проверяет доступность хранилища.
type Ping func(ctx context.Context) error

// StoreOptions управляет подготовкой хранилища.
type StoreOptions struct {
	// Migrate применяет миграции Postgres при подключении.
	Migrate bool
}

// OpenStore открывает хранилище записей по cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config, opts StoreOptions) (repository.RecordStore, Ping, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if opts.Migrate {
			applied, err := db.RunMigrations(ctx, conn, cfg.MigrationsPath)
			if err != nil {
				_ = conn.Close()
				return nil, nil, err
			}
			if len(applied) > 0 {
				logger.With(logrus.Fields{"migrations": applied}).Info("миграции применены")
			}
		}
		return postgres.NewStore(conn), conn.PingContext, nil

	case config.StoreMongo:
		database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		store := mongo.NewStore(database)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(context.Background())
			return nil, nil, err
		}
		ping := func(ctx context.Context) error { return database.Client().Ping(ctx, nil) }
		return store, ping, nil

	case config.StoreMemory:
		logger.L().Warn("используется хранилище в памяти, записи не переживут перезапуск")
		return memory.NewStore(), func(context.Context) error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("bootstrap: неизвестный драйвер хранилища %q", cfg.StoreDriver)
}

// NewScorer возвращает AI-оценщик, если он настроен, иначе словарный.
func NewScorer(cfg *config.Config) scoring.Scorer {
	if cfg.AIBaseURL != "" && cfg.AIModel != "" {
		logger.With(logrus.Fields{"model": cfg.AIModel}).Info("оценка отзывов через AI")
		return scoring.NewAIScorer(cfg.AIBaseURL, cfg.AIModel)
	}
	return scoring.NewKeywordScorer()
}

// NewEvidenceStorage создаёт хранилище файлов доказательств по cfg.EvidenceStorage.
func NewEvidenceStorage(ctx context.Context, cfg *config.Config) (storage.EvidenceStorage, error) {
	if cfg.EvidenceStorage == config.EvidenceMinio {
		s, err := storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:    cfg.MinioEndpoint,
			AccessKey:   cfg.MinioAccessKey,
			SecretKey:   cfg.MinioSecretKey,
			Bucket:      cfg.MinioBucket,
			UseSSL:      cfg.MinioUseSSL,
			MaxUploadMB: cfg.MaxUploadSizeMB,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := storage.NewLocalStorage(cfg.EvidenceStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		return nil, err
	}
	return s, nil
}
