package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/clock"
	"github.com/iliyamo/event-ticket-booking/internal/config"
	"github.com/iliyamo/event-ticket-booking/internal/database"
	"github.com/iliyamo/event-ticket-booking/internal/handler"
	"github.com/iliyamo/event-ticket-booking/internal/queue"
	"github.com/iliyamo/event-ticket-booking/internal/repository"
	"github.com/iliyamo/event-ticket-booking/internal/router"
	"github.com/iliyamo/event-ticket-booking/internal/service"
	"github.com/iliyamo/event-ticket-booking/migrations"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// Redis is optional: a nil client turns off the availability cache
	// and the rate limiter but bookings keep working.
	rdb := config.NewRedisClient()

	store := repository.NewStore(db)
	clk := clock.NewSystem()
	publisher := queue.NewPublisher()

	availability := service.NewAvailabilityService(store, rdb)
	bookings := service.NewBookingService(store, clk, publisher, availability, cfg.BookingGrace)
	waitlist := service.NewWaitlistService(store, clk)
	sweeper := service.NewSweeper(store, bookings, clk, cfg.SweepInterval)

	go sweeper.Run(ctx)

	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.RegisterPublic(e, handler.NewAvailabilityHandler(availability))
	router.RegisterBookings(e, handler.NewBookingHandler(bookings), cfg.JWTSecret, rdb, cfg.BookingRateLimit)
	router.RegisterWaitlist(e, handler.NewWaitlistHandler(waitlist), cfg.JWTSecret)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := e.Shutdown(context.Background()); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Println(err)
	}
}
