package ledger

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

// Handler manages bookkeeping HTTP endpoints.
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

// MountRoutes registers ledger routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/daily-incomes", h.listKind(KindIncome))
	r.Post("/daily-incomes", h.createKind(KindIncome))
	r.Put("/daily-incomes/{id}", h.updateKind(KindIncome))
	r.Delete("/daily-incomes/{id}", h.deleteKind(KindIncome))

	r.Get("/daily-expenses", h.listKind(KindExpense))
	r.Post("/daily-expenses", h.createKind(KindExpense))
	r.Put("/daily-expenses/{id}", h.updateKind(KindExpense))
	r.Delete("/daily-expenses/{id}", h.deleteKind(KindExpense))

	r.Get("/summary", h.summary)
	r.Get("/transactions/export", h.export)
}

// parseRange reads date and optional endDate query parameters into a
// [start, end) window.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := shared.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date query parameter required", httpx.ErrValidation)
	}
	end := start.Add(24 * time.Hour)
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		parsed, err := shared.ParseDay(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		end = parsed.Add(24 * time.Hour)
	}
	return start, end, nil
}

func (h *Handler) listKind(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := parseRange(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		entries, err := h.service.List(r.Context(), kind, start, end)
		if err != nil {
			h.logger.Error("list entries", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		httpx.JSON(w, http.StatusOK, entries)
	}
}

func (h *Handler) createKind(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEntryRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
			return
		}
		entry, err := h.service.Create(r.Context(), kind, req)
		if err != nil {
			h.logger.Error("create entry", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, entry)
	}
}

func (h *Handler) updateKind(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateEntryRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
			return
		}
		entry, err := h.service.Update(r.Context(), kind, chi.URLParam(r, "id"), req)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, entry)
	}
}

func (h *Handler) deleteKind(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sum, err := h.service.Summary(r.Context(), start, end)
	if err != nil {
		h.logger.Error("build summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sum, err := h.service.Summary(r.Context(), start, end)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	buf, err := ExportXLSX(sum)
	if err != nil {
		h.logger.Error("export transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("transactions_%s.xlsx", start.Format(shared.DayFormat))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
