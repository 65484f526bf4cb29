package http

import (
	"net/http"

	"github.com/facility-dashboard-api/internal/application/dispatch"
	"github.com/facility-dashboard-api/internal/application/scheduler"
	"github.com/facility-dashboard-api/internal/application/subscriber"
	syncapp "github.com/facility-dashboard-api/internal/application/sync"
	"github.com/facility-dashboard-api/internal/config"
	"github.com/facility-dashboard-api/internal/infrastructure/dynamo"
	"github.com/facility-dashboard-api/internal/transport/http/handler"
	appmiddleware "github.com/facility-dashboard-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	VehicleRepo    *dynamo.VehicleRepo
	RentalRepo     *dynamo.RentalRepo
	BillRepo       *dynamo.BillRepo
	SubscriberRepo *dynamo.SubscriberRepo
	SyncService    syncapp.Service
	DispatchSvc    dispatch.Service
	Scheduler      *scheduler.Scheduler
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to public subscription endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	subscriberSvc := subscriber.NewService(deps.SubscriberRepo)

	healthH := handler.NewHealthHandler()
	vehicleH := handler.NewVehicleHandler(deps.VehicleRepo, deps.SyncService)
	rentalH := handler.NewRentalHandler(deps.RentalRepo)
	billH := handler.NewBillHandler(deps.BillRepo)
	notifH := handler.NewNotificationHandler(subscriberSvc, deps.DispatchSvc, deps.Scheduler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", vehicleH.List)
			r.Post("/", vehicleH.Create)
			r.Post("/sync", vehicleH.SyncAll)
			r.Get("/{id}", vehicleH.Get)
			r.Put("/{id}", vehicleH.Update)
			r.Delete("/{id}", vehicleH.Delete)
			r.Post("/{id}/sync", vehicleH.SyncOne)
		})

		r.Route("/home-rents", func(r chi.Router) {
			r.Get("/", rentalH.List)
			r.Post("/", rentalH.Create)
			r.Get("/{id}", rentalH.Get)
			r.Put("/{id}", rentalH.Update)
			r.Delete("/{id}", rentalH.Delete)
		})

		r.Route("/electricity-bills", func(r chi.Router) {
			r.Get("/", billH.List)
			r.Post("/", billH.Create)
			r.Get("/{id}", billH.Get)
			r.Put("/{id}", billH.Update)
			r.Delete("/{id}", billH.Delete)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/subscribe", notifH.Subscribe)
			r.With(sensitiveRL.Limit).Post("/unsubscribe", notifH.Unsubscribe)
			r.Post("/check", notifH.Check)
			r.Post("/test", notifH.Test)
		})
	})

	return r
}
