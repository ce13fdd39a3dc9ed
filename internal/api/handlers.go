package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/seasonal-greetings/internal/calendar"
	"github.com/zapponejosh/seasonal-greetings/internal/greeting"
	"github.com/zapponejosh/seasonal-greetings/internal/imaging"
	"github.com/zapponejosh/seasonal-greetings/internal/logger"
)

// ArtifactFilename is the download name advertised for /get-image.
const ArtifactFilename = "output.jpg"

// Greeter is the service surface the handlers need.
type Greeter interface {
	NextImage(ctx context.Context) (*greeting.Image, error)
	NextMessage(ctx context.Context) (string, error)
	Greeting(ctx context.Context) (*greeting.Greeting, error)
	Status(ctx context.Context) (*greeting.Status, error)
	ResetSeason(ctx context.Context, season calendar.Season) error
	Health(ctx context.Context) error
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	svc    Greeter
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc Greeter, logger *slog.Logger) *Handlers {
	return &Handlers{
		svc:    svc,
		logger: logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.svc.Health(ctx); err != nil {
		h.log(r).Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Service unhealthy", CodeHealthCheck)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// GetImage handles GET /get-image
func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.svc.NextImage(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", imaging.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ArtifactFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		h.log(r).Warn("failed to write image body", slog.Any("error", err))
	}
}

// GetMessage handles GET /get-message
func (h *Handlers) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.NextMessage(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"message": msg,
	})
}

// Greeting handles GET /greeting
func (h *Handlers) Greeting(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Greeting(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, g)
}

// Status handles GET /admin/status
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, st)
}

// ResetSeason handles POST /admin/tracker/{season}/reset
func (h *Handlers) ResetSeason(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "season")
	season, ok := calendar.ParseSeason(raw)
	if !ok {
		WriteBadRequest(w, fmt.Sprintf("Unknown season: %s", raw))
		return
	}

	if err := h.svc.ResetSeason(r.Context(), season); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"season": season,
		"reset":  true,
	})
}

// writeServiceError maps a service error to its status code. The full error
// goes to the log; the client only sees the public message.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	msg := greeting.PublicMessage(err)

	switch greeting.KindOf(err) {
	case greeting.KindUnknownSeason:
		h.log(r).Warn("request rejected", slog.Any("error", err))
		WriteError(w, http.StatusBadRequest, msg, CodeUnknownSeason)
	case greeting.KindNotFound:
		h.log(r).Error("request failed", slog.Any("error", err))
		WriteError(w, http.StatusInternalServerError, msg, CodeNotFound)
	default:
		h.log(r).Error("request failed", slog.Any("error", err))
		WriteInternalError(w, msg)
	}
}

func (h *Handlers) log(r *http.Request) *slog.Logger {
	return logger.FromContext(r.Context(), h.logger)
}
