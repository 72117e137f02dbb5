package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"venuebook/internal/cache"
	"venuebook/internal/config"
	"venuebook/internal/database"
	"venuebook/internal/middleware"
	"venuebook/internal/modules/auth"
	"venuebook/internal/modules/booking"
	"venuebook/internal/modules/venue"
	jwtsvc "venuebook/internal/pkg/jwt"
	"venuebook/internal/queue"
	"venuebook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}
	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		// Partial unique index: cancelled rows must not block rebooking.
		db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_no_double_book
			ON bookings (venue_id, date, start_time)
			WHERE status = 'confirmed'`)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}
	defer rdb.Close()

	userRepo := repository.NewUserRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	locks := cache.NewLockManager(rdb, cfg.LockTTL)
	schedule := cache.NewScheduleCache(rdb, cfg.ScheduleTTL, cache.SlotPlan{
		Open:     cfg.SlotOpen,
		Close:    cfg.SlotClose,
		Interval: cfg.SlotInterval,
	})
	confirmer := cache.NewConfirmer(rdb)
	venueCache := cache.NewVenueCache(rdb, cfg.VenueTTL)
	producer := queue.NewProducer(rdb, cfg.BookingStream)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	venueService := venue.NewService(venueRepo, venueCache)
	venueHandler := venue.NewHandler(venueService)

	bookingService := booking.NewService(
		bookingRepo, venueRepo, locks, schedule, confirmer, venueCache, producer,
	)
	bookingHandler := booking.NewHandler(bookingService)

	r := gin.Default()
	r.Use(middleware.ErrorLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		venueHandler.RegisterRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			venueHandler.RegisterProtectedRoutes(protected)
		}
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()
	log.Println("API listening on", cfg.HTTPAddr)

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
