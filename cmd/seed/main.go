package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/config"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/registry"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/repository"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/seed"
)

func main() {
	var op int
	var clients int
	var workers int
	var weekStart string
	var fill float64

	flag.IntVar(&op, "op", 0, "operation (1: write a random registry, 2: commit a random week)")
	flag.IntVar(&clients, "clients", 10, "number of clients in the random registry")
	flag.IntVar(&workers, "workers", 60, "number of workers in the random registry")
	flag.StringVar(&weekStart, "week", domain.DateOf(time.Now()).String(), "first day of the random week (YYYY-MM-DD)")
	flag.Float64Var(&fill, "fill", 0.8, "share of required positions to staff")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// load config
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// run operation
	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if clients <= 0 || workers <= 0 {
			slog.Error("client and worker counts must be positive")
			return
		}

		data, err := registry.Marshal(seed.RandomRegistry(clients, workers))
		if err != nil {
			slog.Error("failed to generate registry", slog.String("error", err.Error()))
			return
		}
		if err := os.WriteFile(cfg.Registry.Path, data, 0o644); err != nil {
			slog.Error("failed to write registry", slog.String("error", err.Error()))
			return
		}

		slog.Info("registry written", slog.String("path", cfg.Registry.Path), slog.Int("clients", clients), slog.Int("workers", workers))
	case 2:
		start, err := domain.ParseDate(weekStart)
		if err != nil {
			slog.Error("invalid week start", slog.String("error", err.Error()))
			return
		}
		if cfg.Database.Driver == config.DriverMemory {
			slog.Error("the memory driver cannot store a schedule")
			return
		}

		reg, err := registry.LoadFile(cfg.Registry.Path)
		if err != nil {
			slog.Error("failed to load registry", slog.String("error", err.Error()))
			return
		}

		// open connection pool
		dbpool, err := repository.Open(cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			return
		}
		defer dbpool.Close()

		// create repository
		repo := repository.NewRepository(cfg, dbpool)

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.TransactionTimeout)*time.Second)
		defer cancel()

		if err := repo.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database schema", slog.String("error", err.Error()))
			return
		}

		store := schedule.NewStore(repo)
		if err := store.Load(ctx); err != nil {
			slog.Error("failed to load schedule", slog.String("error", err.Error()))
			return
		}

		doc := registry.Document{Clients: reg.Clients(), Workers: reg.Workers()}
		changes := seed.RandomWeek(doc, start, fill, seed.Bookings(store.Snapshot().Slots()))
		version, err := store.ApplyAtomic(ctx, changes, store.CurrentVersion())
		if err != nil {
			slog.Error("failed to commit random week", slog.String("error", err.Error()))
			return
		}

		slog.Info("random week committed", slog.String("week", start.String()), slog.Int("changes", len(changes)), slog.Int64("version", version))
	default:
		slog.Error("unknown operation")
	}
}
