package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfwise/bookstore-backend/api/controllers"
	"github.com/shelfwise/bookstore-backend/api/middleware"
	"github.com/shelfwise/bookstore-backend/internal/fulfillment"
	"github.com/shelfwise/bookstore-backend/internal/orders"
	"github.com/shelfwise/bookstore-backend/internal/warehouse"
	"github.com/shelfwise/bookstore-backend/pkg/config"
	"github.com/shelfwise/bookstore-backend/pkg/logger"
	pkgredis "github.com/shelfwise/bookstore-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs. Pingers and
// the idempotency store are optional so workers and tests can wire a
// partial set.
type RouterParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	WarehouseService warehouse.Service
	OrdersService    orders.Service
	FulfillService   fulfillment.Service
	IdempotencyStore pkgredis.IdempotencyStore
	Pingers          map[string]controllers.Pinger
	MetricsHandler   http.Handler
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Pingers))
	})

	metricsHandler := p.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		if p.IdempotencyStore != nil {
			r.Use(middleware.Idempotency(p.IdempotencyStore, p.Logger))
		}

		r.Route("/warehouse", func(r chi.Router) {
			r.Put("/{bookId}/{shelfId}/{count}", controllers.Restock(p.WarehouseService, p.Logger))
			r.Get("/{bookId}", controllers.FindShelves(p.WarehouseService, p.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(p.OrdersService, p.Logger))
			r.Get("/", controllers.ListOrders(p.OrdersService, p.Logger))
			r.Get("/{orderId}", controllers.GetOrder(p.OrdersService, p.Logger))
			r.Put("/{orderId}/fulfil", controllers.FulfilOrder(p.FulfillService, p.Logger))
			r.Post("/{orderId}/allocation", controllers.PlanAllocation(p.FulfillService, p.Logger))
		})
	})

	return r
}
