package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facility-dashboard-api/internal/application/dispatch"
	"github.com/facility-dashboard-api/internal/application/scheduler"
	syncapp "github.com/facility-dashboard-api/internal/application/sync"
	"github.com/facility-dashboard-api/internal/config"
	"github.com/facility-dashboard-api/internal/infrastructure/absher"
	"github.com/facility-dashboard-api/internal/infrastructure/dynamo"
	"github.com/facility-dashboard-api/internal/infrastructure/smtp"
	webpushinfra "github.com/facility-dashboard-api/internal/infrastructure/webpush"
	transporthttp "github.com/facility-dashboard-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	vehicleRepo := dynamo.NewVehicleRepo(dynamoClient, cfg.DynamoTables.Vehicles)
	rentalRepo := dynamo.NewRentalRepo(dynamoClient, cfg.DynamoTables.HomeRents)
	billRepo := dynamo.NewBillRepo(dynamoClient, cfg.DynamoTables.ElectricityBills)
	subscriberRepo := dynamo.NewSubscriberRepo(dynamoClient, cfg.DynamoTables.PushSubscribers)

	// External insurance API client with its shared token cache.
	tokenSource := absher.NewTokenSource(cfg)
	insuranceClient := absher.NewClient(cfg, tokenSource)

	syncSvc := syncapp.NewService(syncapp.ServiceDeps{
		Vehicles:  vehicleRepo,
		Insurance: insuranceClient,
		Delay:     time.Duration(cfg.SyncDelayMillis) * time.Millisecond,
	})

	// SMTP mailer (degrades to "not configured" when credentials are absent).
	mailer := smtp.NewMailer(cfg)

	// Web Push sender (optional — graceful fallback without VAPID keys).
	var pushSender webpushinfra.Sender
	if sender, err := webpushinfra.NewSender(cfg); err == nil {
		pushSender = sender
	} else {
		log.Printf("WARN: push sender not available: %v", err)
	}

	dispatchSvc := dispatch.NewService(dispatch.ServiceDeps{
		Subscribers: subscriberRepo,
		Push:        pushSender,
		Mail:        mailer,
	})

	sched := scheduler.New(scheduler.Deps{
		Hour:          cfg.NotifyHour,
		ThresholdDays: cfg.ExpiryThresholdDays,
		Vehicles:      vehicleRepo,
		Rentals:       rentalRepo,
		Bills:         billRepo,
		Dispatcher:    dispatchSvc,
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	deps := &transporthttp.Deps{
		VehicleRepo:    vehicleRepo,
		RentalRepo:     rentalRepo,
		BillRepo:       billRepo,
		SubscriberRepo: subscriberRepo,
		SyncService:    syncSvc,
		DispatchSvc:    dispatchSvc,
		Scheduler:      sched,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	sched.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
