package deliveries

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// Handler manages delivery HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers delivery routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/deliveries", h.list)
	r.Post("/deliveries", h.create)
	r.Get("/deliveries/{id}", h.show)
	r.Put("/deliveries/{id}", h.update)
	r.Delete("/deliveries/{id}", h.delete)

	r.Get("/drivers/{driverID}/deliveries", h.listByDriverDay)
	r.Get("/drivers/{driverID}/cash-total", h.cashTotal)
	r.Post("/drivers/{driverID}/days/{date}/reassign", h.reassignDay)
	r.Post("/drivers/{driverID}/days/{date}/move", h.moveDay)
	r.Delete("/drivers/{driverID}/days/{date}", h.deleteDay)
}

// MountClientRoutes registers the client-scoped delivery listing. Mounted
// under the clients subtree to keep URLs aligned with the rest of the client
// API.
func (h *Handler) MountClientRoutes(r chi.Router) {
	r.Get("/{id}/deliveries", h.listByClient)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var day *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := shared.ParseDay(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
			return
		}
		day = &parsed
	}
	deliveries, err := h.service.List(r.Context(), day)
	if err != nil {
		h.logger.Error("list deliveries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if deliveries == nil {
		deliveries = []Delivery{}
	}
	httpx.JSON(w, http.StatusOK, deliveries)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	delivery, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, delivery)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req DeliveryInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	delivery, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create delivery", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, delivery)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req DeliveryInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	delivery, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, delivery)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "delivery deleted"})
}

func (h *Handler) listByDriverDay(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: date query parameter required", httpx.ErrValidation))
		return
	}
	deliveries, err := h.service.ListByDriverDay(r.Context(), chi.URLParam(r, "driverID"), day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if deliveries == nil {
		deliveries = []Delivery{}
	}
	httpx.JSON(w, http.StatusOK, deliveries)
}

func (h *Handler) cashTotal(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: date query parameter required", httpx.ErrValidation))
		return
	}
	total, err := h.service.CashTotal(r.Context(), chi.URLParam(r, "driverID"), day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"totalCash": total})
}

func (h *Handler) listByClient(w http.ResponseWriter, r *http.Request) {
	deliveries, err := h.service.ListByClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if deliveries == nil {
		deliveries = []Delivery{}
	}
	httpx.JSON(w, http.StatusOK, deliveries)
}

func (h *Handler) reassignDay(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	var req ReassignDayRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.service.ReassignDay(r.Context(), chi.URLParam(r, "driverID"), day, req.NewDriverID); err != nil {
		h.logger.Error("reassign day", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "day reassigned"})
}

func (h *Handler) moveDay(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	var req MoveDayRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.service.MoveDay(r.Context(), chi.URLParam(r, "driverID"), day, req.NewDate); err != nil {
		h.logger.Error("move day", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "day moved"})
}

func (h *Handler) deleteDay(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.service.DeleteDay(r.Context(), chi.URLParam(r, "driverID"), day); err != nil {
		h.logger.Error("delete day", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "day deleted"})
}
