package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/config"
	"github.com/harentsoaR/booking-api/internal/handlers"
	"github.com/harentsoaR/booking-api/internal/middleware"
	"github.com/harentsoaR/booking-api/internal/services"
	"github.com/harentsoaR/booking-api/internal/storage"
	"github.com/harentsoaR/booking-api/internal/storage/memstore"
	"github.com/harentsoaR/booking-api/internal/storage/mongostore"
	"github.com/harentsoaR/booking-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.LogSummary()

	// --- Store ---
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	// --- Initialize Services ---
	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize tokens: %v", err)
	}
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	policy := services.BookingPolicy{
		Location:      cfg.Business.Location(),
		OpenHour:      cfg.Business.OpenHour,
		LastStartHour: cfg.Business.LastStartHour,
		CancelCutoff:  cfg.CancellationCutoff,
	}

	var notifier services.BookingNotifier
	if sms := services.NewNotificationService(cfg.Twilio, policy.Location); sms != nil {
		notifier = sms
	}
	bookings := services.NewBookingService(store, policy, notifier, time.Now)
	accounts := services.NewAccountService(store, hasher, tokens, bookings, time.Now)
	catalog := services.NewCatalogService(store)
	specialists := services.NewSpecialistService(store, hasher, time.Now)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := accounts.SeedAdmin(seedCtx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Printf("Failed to seed admin account: %v", err)
	}
	cancel()

	h := handlers.NewHandler(accounts, bookings, catalog, specialists)

	// --- Gin Router ---
	r := gin.Default()

	// ---  Middleware ---
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestLogger(200*time.Millisecond), middleware.ErrorHandler())

	// --- Routes ---
	h.Routes(r.Group("/api"), tokens)

	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

func openStore(cfg config.Config) (storage.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Println("Using the in-memory store; data is lost on restart.")
		return memstore.New(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnectTimeout)
	defer cancel()
	store, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoConnectTimeout)
	if err != nil {
		return nil, err
	}
	log.Println("Successfully connected to MongoDB!")
	return store, nil
}
