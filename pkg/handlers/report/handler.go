package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/adapters"
	"github.com/de-tools/weekly-pulse/pkg/models/api"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	reportsvc "github.com/de-tools/weekly-pulse/pkg/services/report"
	"github.com/de-tools/weekly-pulse/pkg/services/week"
	reportstore "github.com/de-tools/weekly-pulse/pkg/store/duckdb/report"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	maxRequestBytes = 32 << 20
	defaultLimit    = 20
)

type Builder interface {
	Build(ctx context.Context, in reportsvc.Input) (*domain.WeeklyReport, error)
}

type History interface {
	Save(ctx context.Context, r *domain.WeeklyReport) error
	Get(ctx context.Context, w domain.ISOWeek) (*domain.WeeklyReport, error)
	List(ctx context.Context, limit int) ([]api.ReportSummary, error)
}

type Publisher interface {
	PublishReport(ctx context.Context, r *domain.WeeklyReport) ([]string, error)
}

type Handler struct {
	builder   Builder
	history   History
	publisher Publisher
	now       func() time.Time
}

// NewHandler serves report building and week lookups. history may be nil,
// in which case reports are not stored and history endpoints answer 404.
func NewHandler(builder Builder, history History, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		builder: builder,
		history: history,
		now:     now,
	}
}

// WithPublisher uploads every created report
func (h *Handler) WithPublisher(p Publisher) *Handler {
	h.publisher = p
	return h
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(ctx).Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(ctx, w, status, api.ErrorResponse{Error: err.Error()})
}

func statusOf(err error) int {
	var invalid *domain.InvalidWeekError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, reportstore.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.ReportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := api.Validate(req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	in, err := adapters.MapReportRequestApiToInput(req, h.now())
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	weekly, err := h.builder.Build(ctx, in)
	if err != nil {
		writeError(ctx, w, statusOf(err), err)
		return
	}

	if h.history != nil {
		if err := h.history.Save(ctx, weekly); err != nil {
			logger.Error().Err(err).Str("report_id", weekly.ID).Msg("failed to store report")
		}
	}
	if h.publisher != nil {
		uris, err := h.publisher.PublishReport(ctx, weekly)
		if err != nil {
			logger.Error().Err(err).Str("report_id", weekly.ID).Msg("failed to publish report")
		} else {
			logger.Info().Strs("uris", uris).Str("report_id", weekly.ID).Msg("report published")
		}
	}

	res, err := adapters.MapWeeklyReportDomainToApi(weekly)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, res)
}

func weekParams(r *http.Request) (domain.ISOWeek, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return domain.ISOWeek{}, fmt.Errorf("invalid year %q", chi.URLParam(r, "year"))
	}
	wk, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		return domain.ISOWeek{}, fmt.Errorf("invalid week %q", chi.URLParam(r, "week"))
	}
	return domain.ISOWeek{Year: year, Week: wk}, nil
}

func (h *Handler) writeWeek(w http.ResponseWriter, r *http.Request, target domain.ISOWeek) {
	ctx := r.Context()
	res, err := adapters.MapWeekToApiResponse(target)
	if err != nil {
		writeError(ctx, w, statusOf(err), err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, res)
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	target, err := weekParams(r)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	h.writeWeek(w, r, target)
}

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	h.writeWeek(w, r, week.CurrentWeek(h.now()))
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.history == nil {
		writeError(ctx, w, http.StatusNotFound, fmt.Errorf("report history is not configured"))
		return
	}

	target, err := weekParams(r)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	if err := week.Validate(target); err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	weekly, err := h.history.Get(ctx, target)
	if err != nil {
		writeError(ctx, w, statusOf(err), err)
		return
	}
	res, err := adapters.MapWeeklyReportDomainToApi(weekly)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, res)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.history == nil {
		writeError(ctx, w, http.StatusNotFound, fmt.Errorf("report history is not configured"))
		return
	}

	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	reports, err := h.history.List(ctx, limit)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, reports)
}
