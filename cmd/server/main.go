package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"rentalcar/internal/api"
	"rentalcar/internal/auth"
	"rentalcar/internal/config"
	"rentalcar/internal/events"
	"rentalcar/internal/repository"
	"rentalcar/internal/service"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := repository.Migrate(database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(database)
	carRepo := repository.NewCarRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)
	jobRepo := repository.NewJobRepository(database)
	adminAuthRepo := repository.NewAdminAuthRepository(database)

	stripeService := service.NewStripeService(cfg.StripeSecretKey)
	paymentService := service.NewPaymentService(stripeService, paymentRepo)
	sink := events.NewDispatcher(5*time.Second, events.LogSink{}, service.NewNotifierSink())
	bookingService := service.NewBookingService(bookingRepo, carRepo, paymentService, sink, cfg.Currency)
	jobService := service.NewJobService(jobRepo, bookingService)
	adminAuthService := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)

	bookingHandler := api.NewBookingHandler(bookingService)
	adminHandler := api.NewAdminHandler(bookingService, carRepo)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthService)
	stripeHandler := api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, paymentService, bookingService)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/bookings", bookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{id}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{id}", bookingHandler.CancelBooking).Methods("DELETE")
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("GET")
	r.HandleFunc("/api/holders/{id}/bookings", bookingHandler.ListHolderBookings).Methods("GET")
	r.HandleFunc("/api/cars", bookingHandler.ListCars).Methods("GET")
	r.HandleFunc("/api/cars/{id}", bookingHandler.GetCar).Methods("GET")
	r.HandleFunc("/api/cars/{id}/busy-dates", bookingHandler.GetBusyDates).Methods("GET")
	r.HandleFunc("/api/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{id}/status", adminHandler.UpdateBookingStatus).Methods("PATCH")
	admin.HandleFunc("/cars/{id}/availability", adminHandler.SetCarAvailability).Methods("PUT")

	c := cron.New()
	c.AddFunc("@every 10m", func() {
		if err := jobService.CompleteFinishedBookings(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	if cfg.PendingTTL > 0 {
		c.AddFunc("@every 10m", func() {
			if err := jobService.ExpireStalePendingBookings(cfg.PendingTTL); err != nil {
				log.Printf("Cron Job error: %v", err)
			}
		})
	}
	c.Start()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.AllowedOrigins}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Server running on port %s", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, cors(r)))
}
