package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/cache"
	"github.com/movietix/booking-api/internal/config"
	"github.com/movietix/booking-api/internal/database"
	"github.com/movietix/booking-api/internal/handler"
	"github.com/movietix/booking-api/internal/ledger"
	"github.com/movietix/booking-api/internal/middleware"
	"github.com/movietix/booking-api/internal/notify"
	"github.com/movietix/booking-api/internal/payment"
	"github.com/movietix/booking-api/internal/queue"
	"github.com/movietix/booking-api/internal/repository"
	"github.com/movietix/booking-api/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	seats := repository.NewSeatRepo(db)
	if err := seats.EnsureCatalogue(ctx, cfg.SeatRows, cfg.SeatCols); err != nil {
		log.Fatalf("seat catalogue: %v", err)
	}

	users := repository.NewUserRepo(db)
	theaters := repository.NewTheaterRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	bookings := repository.NewBookingRepo(db)
	store := repository.NewStore(db)

	gateway := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentTimeout, cfg.PaymentAttempts, cfg.PaymentBackoff)

	var notifier ledger.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		notifier = notify.NewAMQPNotifier(cfg.AMQPURL)
		go queue.StartConsumer(cfg.AMQPURL)
	} else {
		log.Println("AMQP_URL not set; booking events logged locally")
	}

	l := ledger.New(store, gateway, notifier)

	sweeper := &ledger.Sweeper{
		Ledger:   l,
		Interval: cfg.SweepInterval,
		MaxAge:   cfg.PendingTTL,
		Batch:    cfg.SweepBatch,
	}
	go sweeper.Run(ctx)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and availability cache disabled")
	}
	av := cache.NewAvailability(rdb, config.LoadAvailabilityCacheConfig())
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(showtimes, l, av), limit)
	router.RegisterCustomer(e, handler.NewBookingHandler(l, bookings, av), cfg.JWTSecret, limit)
	router.RegisterManager(e, handler.NewManagerHandler(theaters, showtimes, bookings), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
