package expenses

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

// Handler manages driver-expense HTTP endpoints.
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

// MountRoutes registers expense routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/driver-expenses", h.list)
	r.Post("/driver-expenses", h.create)
	r.Put("/driver-expenses/{id}", h.update)
	r.Delete("/driver-expenses/{id}", h.delete)

	r.Get("/drivers/{driverID}/expenses", h.listByDriverDay)
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
	expenses, err := h.service.List(r.Context(), day)
	if err != nil {
		h.logger.Error("list expenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if expenses == nil {
		expenses = []Expense{}
	}
	httpx.JSON(w, http.StatusOK, expenses)
}

func (h *Handler) listByDriverDay(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: date query parameter required", httpx.ErrValidation))
		return
	}
	expenses, err := h.service.ListByDriverDay(r.Context(), chi.URLParam(r, "driverID"), day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if expenses == nil {
		expenses = []Expense{}
	}
	httpx.JSON(w, http.StatusOK, expenses)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	expense, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create expense", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	expense, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}
