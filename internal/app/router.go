package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kurier-ops/kurier-ops/internal/cashdesk"
	"github.com/kurier-ops/kurier-ops/internal/clients"
	"github.com/kurier-ops/kurier-ops/internal/deliveries"
	"github.com/kurier-ops/kurier-ops/internal/drivers"
	"github.com/kurier-ops/kurier-ops/internal/expenses"
	"github.com/kurier-ops/kurier-ops/internal/ledger"
	"github.com/kurier-ops/kurier-ops/internal/products"
	"github.com/kurier-ops/kurier-ops/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	DriversHandler    *drivers.Handler
	ClientsHandler    *clients.Handler
	DeliveriesHandler *deliveries.Handler
	ExpensesHandler   *expenses.Handler
	CashdeskHandler   *cashdesk.Handler
	LedgerHandler     *ledger.Handler
	ProductsHandler   *products.Handler
	ReportHandler     *report.Handler
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/drivers", params.DriversHandler.MountRoutes)
	r.Route("/clients", func(r chi.Router) {
		params.ClientsHandler.MountRoutes(r)
		params.DeliveriesHandler.MountClientRoutes(r)
	})
	r.Route("/accounting", func(r chi.Router) {
		params.DeliveriesHandler.MountRoutes(r)
		params.ExpensesHandler.MountRoutes(r)
		params.CashdeskHandler.MountRoutes(r)
		params.LedgerHandler.MountRoutes(r)
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(r)
		}
	})
	r.Route("/products", params.ProductsHandler.MountRoutes)

	return r
}
