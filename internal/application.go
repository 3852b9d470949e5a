package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ruthgard/18TUI/internal/app"
	"github.com/ruthgard/18TUI/internal/config"
	"github.com/ruthgard/18TUI/internal/loader"
	"github.com/ruthgard/18TUI/internal/repository"
	"github.com/ruthgard/18TUI/internal/repository/storage"
	"github.com/ruthgard/18TUI/internal/resource"
	"github.com/ruthgard/18TUI/internal/transport/console"
	"github.com/ruthgard/18TUI/internal/usecase"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "application")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	saveRepo, closeStorage, err := openSaveRepository(ctx, logger, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeStorage(); err != nil {
			log.Error("could not close save storage", "error", err)
		}
	}()

	manifestPath := conf.GetManifestPath()

	metadata, _, err := resource.LoadMetadata(manifestPath)
	if err != nil {
		log.Warn("ignoring unreadable manifest", "path", manifestPath, "error", err)
	}

	catalog := loader.New(logger, conf.SessionsDir, metadata)
	saveManager := usecase.NewSaveManager(logger, saveRepo)

	tui := app.New(logger, catalog, saveManager, os.Stdout)
	tui.Init(ctx)

	group, groupCtx := errgroup.WithContext(ctx)
	input := make(chan console.Event)
	syncs := make(chan resource.Event, 1)

	group.Go(func() error {
		return console.NewPoller(logger, os.Stdin, conf.TickRate).Run(groupCtx, input)
	})

	if conf.SyncOnStart {
		group.Go(func() error {
			resource.Run(groupCtx, resource.NewLocalSync(logger, conf.SessionsDir, manifestPath), syncs)
			return nil
		})
	}

	group.Go(func() error {
		defer stop()
		return tui.Run(groupCtx, input, syncs)
	})

	log.Info("18TUI started", "storage", conf.Storage, "sessions_dir", conf.SessionsDir)

	if err = group.Wait(); err != nil {
		return fmt.Errorf("application stopped: %w", err)
	}

	log.Info("18TUI stopped")

	return nil
}

// openSaveRepository picks the save backend named in the config.
func openSaveRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.SaveRepository, func() error, error) {
	switch conf.Storage {
	case config.StorageRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewRedisSaveRepository(logger, redisStorage.Connection), redisStorage.Close, nil
	case config.StorageSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteSaveRepository(logger, sqliteStorage.Connection), sqliteStorage.Close, nil
	default:
		return repository.NewFileSaveRepository(logger, conf.SaveDir), func() error { return nil }, nil
	}
}
