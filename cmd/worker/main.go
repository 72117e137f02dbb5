package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"venuebook/internal/cache"
	"venuebook/internal/config"
	"venuebook/internal/database"
	"venuebook/internal/modules/booking"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}
	defer rdb.Close()

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

	bookingService := booking.NewService(
		bookingRepo, venueRepo, locks, schedule, confirmer, venueCache, producer,
	)

	// Each process needs a distinct consumer name or Redis treats replicas as
	// the same group member.
	consumer := cfg.ConsumerName
	if consumer == "" {
		consumer = "worker-" + uuid.NewString()[:8]
	}

	worker := queue.NewWorker(rdb, queue.WorkerOptions{
		Stream:   cfg.BookingStream,
		Group:    cfg.BookingGroup,
		Consumer: consumer,
		Batch:    cfg.WorkerBatch,
		Block:    cfg.WorkerBlock,
	}, func(ctx context.Context, req queue.ConfirmRequest) error {
		_, err := bookingService.CreateBooking(ctx, booking.CreateBookingRequest{
			VenueID:   req.VenueID,
			UserID:    req.UserID,
			Date:      req.Date,
			StartTime: req.StartTime,
			Duration:  req.Duration,
		})
		return err
	}, log.Default())

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Println("worker stopped")
}
