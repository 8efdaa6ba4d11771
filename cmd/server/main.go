package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/room-booking/internal/config"
	"github.com/iliyamo/room-booking/internal/database"
	"github.com/iliyamo/room-booking/internal/handler"
	"github.com/iliyamo/room-booking/internal/logger"
	"github.com/iliyamo/room-booking/internal/middleware"
	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/queue"
	"github.com/iliyamo/room-booking/internal/repository"
	"github.com/iliyamo/room-booking/internal/router"
	"github.com/iliyamo/room-booking/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded; using process environment")
	}
	cfg := config.Load() // Load environment config
	lg := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, catalog, db := openStores(ctx, cfg, lg)
	if db != nil {
		defer db.Close()
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		lg.Warn("redis unavailable; rate limiting and catalog cache disabled")
	} else {
		defer rdb.Close()
	}
	catalog = repository.NewCachedCatalog(catalog, rdb, config.LoadCatalogCacheConfig(), lg)

	opts := []service.Option{service.WithLocation(cfg.Location), service.WithLogger(lg)}
	if cfg.EventsEnabled {
		opts = append(opts, service.WithPublisher(queue.NewPublisher(cfg.AMQPURL, lg)))
	}
	svc := service.NewBookingService(catalog, store, opts...)

	if cfg.AuditConsumerEnabled {
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.AMQPURL, cfg.AuditLogPath, lg); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: middleware.NewRequestID}))
	e.Use(middleware.RequestLogger(lg))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	var pinger handler.Pinger
	if db != nil {
		pinger = db
	}
	router.RegisterRoutes(e, pinger)
	router.RegisterBookings(e, handler.NewBookingHandler(svc, lg), router.BookingRoutes{
		JWTSecret:          cfg.JWTSecret,
		AdminRole:          cfg.AdminRole,
		AllowGuestBookings: cfg.AllowGuestBookings,
		CreateLimiter:      middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			lg.Error("http shutdown failed", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	lg.Info("listening", "addr", addr, "env", cfg.Env, "db_driver", cfg.DBDriver, "timezone", cfg.Location.String())
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err) // Log and exit if server fails
	}
	lg.Info("server stopped")
}

// openStores returns the booking store and room catalog for cfg.DBDriver.
// db is nil for the in-memory store.
func openStores(ctx context.Context, cfg config.Config, lg *slog.Logger) (service.BookingStore, repository.RoomCatalog, *sql.DB) {
	if cfg.DBDriver == "memory" {
		lg.Warn("using in-memory store; bookings are lost on restart")
		mem := repository.NewMemoryStore(demoRooms()...)
		return mem, mem, nil
	}

	dialect, err := repository.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: open %s: %v", cfg.DBDriver, err)
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			log.Fatalf("database: migrate: %v", err)
		}
		lg.Info("schema applied", "driver", cfg.DBDriver)
	}
	return repository.NewBookingRepo(db, dialect), repository.NewRoomRepo(db, dialect), db
}

func demoRooms() []model.Room {
	return []model.Room{
		{ID: 1, Name: "Standard Single", MaxGuests: 1, Price: 8900},
		{ID: 2, Name: "Deluxe Double", MaxGuests: 2, Price: 14500},
		{ID: 3, Name: "Family Suite", MaxGuests: 4, Price: 26000},
	}
}
