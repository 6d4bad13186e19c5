// Package commands содержит команды arbiterctl.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ignatzorin/freelance-arbitration/internal/bootstrap"
	"github.com/ignatzorin/freelance-arbitration/internal/config"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
)

// loadConfig читает конфигурацию и настраивает логгер под консоль.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init("warn")
	logger.SetTextFormatter()
	return cfg, nil
}

// withStore открывает хранилище на время выполнения fn.
func withStore(ctx context.Context, cfg *config.Config, fn func(store repository.RecordStore) error) error {
	store, _, err := bootstrap.OpenStore(ctx, cfg, bootstrap.StoreOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.L().WithError(err).Warn("arbiterctl: ошибка закрытия хранилища")
		}
	}()
	return fn(store)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("arbiterctl: не удалось вывести JSON: %w", err)
	}
	return nil
}
