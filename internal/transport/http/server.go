package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog"

	"bloodconnect/internal/config"
	"bloodconnect/internal/database"
	"bloodconnect/internal/firebaseapp"
	"bloodconnect/internal/firestore"
	"bloodconnect/internal/handler"
	"bloodconnect/internal/logger"
	"bloodconnect/internal/queue"
	"bloodconnect/internal/redis"
	"bloodconnect/internal/repository"
	"bloodconnect/internal/service"
	"bloodconnect/internal/storage"
	"bloodconnect/internal/worker"
)

const shutdownTimeout = 15 * time.Second

// stores is the repository set for the configured backend.
type stores struct {
	users         repository.UserRepository
	tokens        repository.DeviceTokenRepository
	ledger        repository.LedgerRepository
	notifications repository.NotificationRepository
	activity      repository.DonorActivityRepository
	requests      repository.BloodRequestRepository
	close         func() error
}

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	if !cfg.EnvFileLoaded {
		log.Debug().Msg("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Firebase app, shared by Firestore and FCM
	var app *firebase.App
	if cfg.StoreBackend == config.StoreFirestore || cfg.PushProvider == config.PushFCM {
		app, err = firebaseapp.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize firebase: %w", err)
		}
	}

	// 3. Stores
	st, err := openStores(ctx, cfg, app, log)
	if err != nil {
		return err
	}
	defer st.close()

	// 4. Push transport
	push, err := newPushTransport(ctx, cfg, app, log)
	if err != nil {
		return err
	}

	// 5. Redis (optional): dispatch guard and async activity
	var activitySink service.ActivitySink = st.activity
	var workers *worker.Manager
	var guard service.InFlightGuard
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer rdb.Close()

		if err := rdb.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		guard = redis.NewDispatchLock(rdb.Client, cfg.DispatchLockTTL, logger.Component(log, "dispatch_lock"))

		if cfg.ActivityAsync {
			activitySink = queue.NewActivitySink(queue.NewPublisher(rdb.Client, logger.Component(log, "publisher")))

			workers = worker.NewManager(
				queue.NewConsumer(rdb.Client, logger.Component(log, "consumer")),
				worker.NewHandler(st.activity, logger.Component(log, "worker")),
				worker.ManagerConfig{WorkerCount: cfg.WorkerCount},
				logger.Component(log, "workers"),
			)
			if err := workers.Start(ctx); err != nil {
				return fmt.Errorf("failed to start activity workers: %w", err)
			}
			defer workers.Stop()
		}
		log.Info().Bool("activity_async", cfg.ActivityAsync).Msg("redis enabled")
	}

	// 6. Object storage (optional)
	var objects service.ObjectStore
	if cfg.ObjectStorageEnabled() {
		r2, err := storage.NewR2Store(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		objects = r2
	}

	// 7. Services
	resolver := service.NewTokenResolver(st.users, st.tokens)
	recorder := service.NewActivityRecorder(activitySink)
	dispatcher := service.NewDispatcher(
		resolver,
		service.NewLedger(st.ledger),
		push,
		st.notifications,
		recorder,
		logger.Component(log, "dispatcher"),
	)
	dispatcher.SetCallTimeout(cfg.CallTimeout)
	if guard != nil {
		dispatcher.SetInFlightGuard(guard)
	}

	reporting := service.NewReportingService(st.requests, st.activity, st.notifications, objects)
	devices := service.NewNotificationService(st.tokens)

	// 8. Router and server
	router := NewRouter(RouterConfig{
		DispatchHandler: handler.NewDispatchHandler(dispatcher, recorder),
		AdminHandler:    handler.NewAdminHandler(reporting),
		DeviceHandler:   handler.NewDeviceHandler(devices),
		APIKey:          cfg.APIKey,
		Logger:          logger.Component(log, "http"),
		RequestTimeout:  cfg.RequestTimeout,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.ServerPort).
			Str("store", cfg.StoreBackend).
			Str("push", cfg.PushProvider).
			Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, app *firebase.App, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.Connect(cfg, logger.Component(log, "database"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx, db, logger.Component(log, "database")); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return &stores{
			users:         repository.NewUserRepository(db),
			tokens:        repository.NewDeviceTokenRepository(db),
			ledger:        repository.NewLedgerRepository(db),
			notifications: repository.NewNotificationRepository(db),
			activity:      repository.NewDonorActivityRepository(db),
			requests:      repository.NewBloodRequestRepository(db),
			close:         db.Close,
		}, nil

	default:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open firestore: %w", err)
		}
		fs := firestore.NewStore(client)
		return &stores{
			users:         fs.Users(),
			tokens:        fs.DeviceTokens(),
			ledger:        fs.Ledger(),
			notifications: fs.Notifications(),
			activity:      fs.DonorActivity(),
			requests:      fs.BloodRequests(),
			close:         fs.Close,
		}, nil
	}
}

func newPushTransport(ctx context.Context, cfg *config.Config, app *firebase.App, log zerolog.Logger) (service.PushTransport, error) {
	var push service.PushTransport
	switch cfg.PushProvider {
	case config.PushExpo:
		push = service.NewExpoPushClient(service.ExpoPushURL, cfg.CallTimeout, logger.Component(log, "expo"))
	default:
		client, err := app.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize messaging: %w", err)
		}
		push = service.NewFCMClient(client, logger.Component(log, "fcm"))
	}
	return service.NewRateLimitedTransport(push, cfg.PushRatePerSec), nil
}
