package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/config"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/drafts"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/events"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/handler"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/metrics"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/registry"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/repository"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/simulation"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/utils"
)

func main() {
	/**********************************************
	 * create logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * load config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	/**********************************************
	 * connect database and load the committed schedule
	 **********************************************/
	var persister schedule.Persister
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage, the schedule is lost on restart")
	} else {
		dbpool, err := repository.Open(cfg)
		if err != nil {
			logger.Error("failed to connect to database", "driver", cfg.Database.Driver, "error", err)
			return
		}
		defer dbpool.Close()

		repo := repository.NewRepository(cfg, dbpool)
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.TransactionTimeout)*time.Second)
		err = repo.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Error("failed to migrate database schema", "error", err)
			return
		}
		persister = repo
	}

	store := schedule.NewStore(persister)
	loadCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.QueryTimeout)*time.Second)
	err = store.Load(loadCtx)
	cancel()
	if err != nil {
		logger.Error("failed to load schedule", "error", err)
		return
	}
	logger.Info("schedule loaded", "version", store.CurrentVersion(), "slots", len(store.Snapshot().Slots()))

	/**********************************************
	 * load client and worker registry
	 **********************************************/
	reg, err := registry.LoadFile(cfg.Registry.Path)
	if err != nil {
		logger.Error("failed to load registry", "path", cfg.Registry.Path, "error", err)
		return
	}
	// committed slots may reference ids dropped from the registry; log only
	for _, err := range utils.ValidateSlotsWithRegistry(store.Snapshot().Slots(), reg) {
		logger.Warn("schedule does not match registry", "error", err)
	}

	/**********************************************
	 * create metrics
	 **********************************************/
	var rec *metrics.Recorder
	var observer simulation.Observer
	if cfg.Metrics.Enabled {
		rec = metrics.NewRecorder()
		rec.SetVersion(store.CurrentVersion())
		observer = rec
	}

	/**********************************************
	 * connect redis
	 **********************************************/
	var draftStore simulation.DraftStore
	if cfg.Redis.Host != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			return
		}
		draftStore = drafts.NewRedisStore(rdb, time.Duration(cfg.Redis.DraftExpiration)*time.Second)
	}

	/**********************************************
	 * connect rabbitmq
	 **********************************************/
	var notifier simulation.Notifier
	if cfg.RabbitMQ.DSN != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			return
		}
		defer conn.Close()

		// open channel
		ch, err := conn.Channel()
		if err != nil {
			logger.Error("failed to open channel", "error", err)
			return
		}
		defer ch.Close()

		// declare queue
		if _, err := events.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			logger.Error("failed to declare queue", "error", err)
			return
		}
		notifier = events.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	}

	/**********************************************
	 * create simulation session manager
	 **********************************************/
	coordinator := simulation.NewCoordinator(store, notifier, observer)
	sessions := simulation.NewManager(store, coordinator, draftStore, observer)

	/**********************************************
	 * create handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, store, sessions, reg, rec)
	if err != nil {
		logger.Error("failed to create handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * start HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down server", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
