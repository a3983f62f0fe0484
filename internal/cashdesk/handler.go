package cashdesk

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

// Handler manages cash-reconciliation HTTP endpoints.
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

// MountRoutes registers cashdesk routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/driver-day-status", h.get)
	r.Put("/driver-day-status", h.upsert)
	r.Get("/driver-day-statuses", h.listMerged)
	r.Get("/driver-day-total-cash", h.totalCash)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	driverID := r.URL.Query().Get("driverId")
	if driverID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: driverId query parameter required", httpx.ErrValidation))
		return
	}
	day, err := shared.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: date query parameter required", httpx.ErrValidation))
		return
	}
	view, err := h.service.Get(r.Context(), driverID, day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertDayStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	view, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		h.logger.Error("upsert day status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) listMerged(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := shared.ParseDay(q.Get("date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: date query parameter required", httpx.ErrValidation))
		return
	}
	end := start.Add(24 * time.Hour)
	if raw := q.Get("endDate"); raw != "" {
		parsed, err := shared.ParseDay(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
			return
		}
		end = parsed.Add(24 * time.Hour)
	}

	var driverID *string
	if raw := q.Get("driverId"); raw != "" {
		driverID = &raw
	}

	statuses, err := h.service.ListMerged(r.Context(), start, end, driverID, q.Get("source"))
	if err != nil {
		h.logger.Error("list day statuses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if statuses == nil {
		statuses = []DayStatus{}
	}
	httpx.JSON(w, http.StatusOK, statuses)
}

func (h *Handler) totalCash(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: date query parameter required", httpx.ErrValidation))
		return
	}
	total, err := h.service.TotalCashPaid(r.Context(), day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"totalCash": total})
}
