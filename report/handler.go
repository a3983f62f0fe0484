package report

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// Handler manages report endpoints.
type Handler struct {
	logger        *slog.Logger
	builder       *Builder
	client        *Client
	publicBaseURL string
}

// NewHandler creates a report handler. client may be nil when no converter
// is configured; PDF requests then fail with 502.
func NewHandler(logger *slog.Logger, builder *Builder, client *Client, publicBaseURL string) *Handler {
	return &Handler{
		logger:        logger,
		builder:       builder,
		client:        client,
		publicBaseURL: publicBaseURL,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/drivers/{driverID}/report/{date}", h.json)
	r.Get("/drivers/{driverID}/report/{date}/pdf", h.pdf)
}

func (h *Handler) json(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	rep, err := h.builder.Build(r.Context(), chi.URLParam(r, "driverID"), day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *Handler) permalink(driverID, date string) string {
	if h.publicBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/accounting/drivers/%s/report/%s", h.publicBaseURL, driverID, date)
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	day, err := shared.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if h.client == nil {
		httpx.RespondError(w, fmt.Errorf("report: no converter configured: %w", httpx.ErrUpstream))
		return
	}
	driverID := chi.URLParam(r, "driverID")
	rep, err := h.builder.Build(r.Context(), driverID, day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	html, err := RenderReportHTML(rep, h.permalink(driverID, rep.Date))
	if err != nil {
		h.logger.Error("render report html", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("convert report pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=report_%s_%s.pdf", driverID, rep.Date))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
