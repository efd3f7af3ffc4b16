package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/gocomet/carpool/internal/api/dto"
	"github.com/gocomet/carpool/internal/api/handlers"
	"github.com/gocomet/carpool/internal/api/routes"
	"github.com/gocomet/carpool/internal/config"
	"github.com/gocomet/carpool/internal/domain/car"
	"github.com/gocomet/carpool/internal/domain/rating"
	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
	"github.com/gocomet/carpool/internal/events"
	"github.com/gocomet/carpool/internal/service/booking"
	"github.com/gocomet/carpool/internal/service/capacity"
	"github.com/gocomet/carpool/internal/service/completion"
	"github.com/gocomet/carpool/internal/service/feedback"
	"github.com/gocomet/carpool/internal/service/policy"
	"github.com/gocomet/carpool/internal/storage/memory"
	"github.com/gocomet/carpool/internal/storage/postgres"
	"github.com/gocomet/carpool/pkg/cache"
	"github.com/gocomet/carpool/pkg/database"
	"github.com/gocomet/carpool/pkg/kafka"
	"github.com/gocomet/carpool/pkg/logger"
	"github.com/gocomet/carpool/pkg/monitoring"
	"github.com/gocomet/carpool/pkg/websocket"
)

// stores groups the repositories of the selected storage driver
type stores struct {
	rides        ride.Repository
	reservations reservation.Repository
	ratings      rating.Repository
	cars         car.Lookup
	db           *sql.DB
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting carpool booking service",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("lock_backend", cfg.Lock.Backend),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
		LogLevel:   cfg.NewRelic.LogLevel,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp = monitoring.Disabled()
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized", logger.String("app_name", cfg.NewRelic.AppName))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", logger.Err(err))
	}
	if st.db != nil {
		defer st.db.Close()
	}

	// Per-ride lock backend
	var locker capacity.Locker = capacity.NewLocalLocker()
	var redisClient *redis.Client
	if cfg.Lock.Backend == config.LockRedis {
		redisClient, err = cache.NewRedisClient(ctx, cache.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			MaxRetries:  cfg.Redis.MaxRetries,
			PoolSize:    cfg.Redis.PoolSize,
			MinIdleConn: cfg.Redis.MinIdleConn,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
		})
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
		}
		defer cache.Close(redisClient)
		locker = cache.NewRedisLocker(redisClient, cache.LockConfig{
			TTL:        cfg.Lock.TTL,
			RetryDelay: cfg.Lock.RetryDelay,
		}, appLogger)
		appLogger.Info("Using Redis ride locks")
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run()
	defer wsHub.Stop()

	// Event fan-out
	eventHandlers := []events.Handler{events.NewPushHandler(wsHub, appLogger)}
	if nrApp.IsEnabled() {
		eventHandlers = append(eventHandlers, events.NewAPMHandler(nrApp))
	}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		if err != nil {
			appLogger.Fatal("Failed to create Kafka producer", logger.Err(err))
		}
		defer producer.Close()
		eventHandlers = append(eventHandlers, events.NewStreamHandler(producer))
		appLogger.Info("Publishing booking events to Kafka", logger.String("topic", cfg.Kafka.Topic))
	}
	dispatcher := events.NewDispatcher(cfg.Events.BufferSize, cfg.Events.HandlerTimeout, appLogger, eventHandlers...)
	dispatcher.Start()

	// Services
	svc := newServices(cfg, st, locker, dispatcher, appLogger)

	sweeper := completion.NewSweeper(st.rides, cfg.Completion.Interval, appLogger).WithReporter(nrApp)
	go sweeper.Run(ctx)

	if nrApp.IsEnabled() {
		go reportPoolStats(ctx, nrApp, st.db, redisClient)
	}

	// HTTP
	if err := dto.RegisterValidators(); err != nil {
		appLogger.Fatal("Failed to register validators", logger.Err(err))
	}
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.NewHandlers(svc.bookings, svc.ratings, svc.gate, wsHub, appLogger)
	h.Upgrader = handlers.NewUpgrader(cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize, cfg.WebSocket.AllowedOrigins)

	router := gin.New()
	var nrApplication *newrelic.Application
	if nrApp.IsEnabled() {
		nrApplication = nrApp.Application
	}
	routes.SetupRoutes(router, h, cfg.JWT.Secret, nrApplication)

	srv := &http.Server{
		Addr:           cfg.Address(),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		appLogger.Warn("Event queue not fully drained", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}

func openStores(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		db := memory.NewDB()
		appLogger.Warn("Using in-memory storage; data is lost on restart")
		seeds, err := cfg.Storage.SeedCars()
		if err != nil {
			return nil, err
		}
		seedCars(db.Cars(), seeds)
		if len(seeds) == 0 {
			appLogger.Warn("No cars registered; set MEMORY_CARS to offer rides")
		} else {
			appLogger.Info("Registered cars", logger.Int("count", len(seeds)))
		}
		return &stores{
			rides:        db.Rides(),
			reservations: db.Reservations(),
			ratings:      db.Ratings(),
			cars:         db.Cars(),
		}, nil
	}

	db, err := database.NewPostgresDB(ctx, database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConnections,
		MaxIdle:         cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.MaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	appLogger.Info("Connected to PostgreSQL", logger.String("database", cfg.Database.Name))

	return &stores{
		rides:        postgres.NewRideRepository(db),
		reservations: postgres.NewReservationRepository(db),
		ratings:      postgres.NewRatingRepository(db),
		cars:         postgres.NewCarRepository(db),
		db:           db,
	}, nil
}

// seedCars registers the configured cars with the memory car store
func seedCars(cars *memory.CarStore, seeds []config.SeedCar) {
	for _, seed := range seeds {
		cars.Put(car.Car{ID: seed.CarID, OwnerID: seed.OwnerID})
	}
}

// services holds the application services shared by the HTTP handlers
type services struct {
	bookings *booking.Service
	ratings  *feedback.Service
	gate     *feedback.Gate
}

func newServices(cfg *config.Config, st *stores, locker capacity.Locker, emitter events.Emitter, appLogger *logger.Logger) *services {
	gate := feedback.NewGate(st.ratings, appLogger)
	return &services{
		bookings: booking.NewService(booking.Deps{
			Rides:        st.rides,
			Reservations: st.reservations,
			Cars:         st.cars,
			Accountant:   capacity.NewAccountant(locker, st.rides, st.reservations, appLogger),
			Evaluator: policy.NewEvaluator(policy.Config{
				KickWindow:         cfg.Policy.KickWindow,
				CancellationCutoff: cfg.Policy.CancellationCutoff,
				EditCutoff:         cfg.Policy.EditCutoff,
			}),
			Gate:   gate,
			Events: emitter,
			Logger: appLogger,
		}),
		ratings: feedback.NewService(st.ratings, st.rides, st.reservations, appLogger),
		gate:    gate,
	}
}

// reportPoolStats forwards connection pool statistics to APM
func reportPoolStats(ctx context.Context, nrApp *monitoring.NewRelicApp, db *sql.DB, redisClient *redis.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if db != nil {
				nrApp.RecordDatabasePoolStats(database.PoolStats(db))
			}
			if redisClient != nil {
				nrApp.RecordRedisPoolStats(cache.GetClientStats(redisClient))
			}
		}
	}
}
