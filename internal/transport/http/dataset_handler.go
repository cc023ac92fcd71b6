package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "epicli/internal/errors"
	"epicli/internal/middleware"
	"epicli/internal/services"
	api "epicli/pkg/contracts/api/v1"
	"epicli/pkg/contracts/domain"
)

const maxRecordPage = 10000

// DatasetHandler serves the dataset API
type DatasetHandler struct {
	service      DatasetServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *middleware.RequestValidator
	query        *middleware.QueryParamValidator
	maxBodyBytes int64
}

// NewDatasetHandler creates a dataset handler. maxBodyBytes limits load
// request bodies; zero means no limit.
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxBodyBytes int64) *DatasetHandler {
	logger = logger.With(slog.String("component", "dataset_handler"))
	return &DatasetHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		validator:    middleware.NewRequestValidator(),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.ContentTypeValidator(h.errorHandler,
		"application/json", "text/csv", "text/plain")).Post("/", h.Load)
	r.Get("/", h.GetSummary)
	r.Get("/records", h.GetRecords)
	r.Get("/monthly", h.GetMonthly)
	r.Get("/statistics", h.GetStatistics)
	r.Get("/locations", h.GetLocations)
	r.Get("/trend", h.GetTrend)
	r.Get("/series/{metric}", h.GetSeries)
	r.Get("/structure", h.GetStructure)
	r.Get("/export", h.Export)
	r.Post("/export", h.SaveExport)
	r.Get("/files", h.GetFiles)

	return r
}

// Load handles POST /api/dataset. A JSON body names content or a file; a
// text/csv or text/plain body is the table itself.
func (h *DatasetHandler) Load(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	req, err := h.decodeLoadRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset load requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", req.Path),
		slog.Int("content_bytes", len(req.Content)))

	var summary domain.LoadSummary
	if req.Path != "" {
		summary, err = h.service.LoadFile(r.Context(), req.Path)
	} else {
		summary, err = h.service.LoadContent(r.Context(), req.Source, req.Content)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	respond(w, r, summary)
}

func (h *DatasetHandler) decodeLoadRequest(r *http.Request) (api.LoadRequest, error) {
	var req api.LoadRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, bodyError(err)
		}
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return req, bodyError(err)
		}
		req.Content = string(body)
		req.Source = r.URL.Query().Get("source")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return req, err
	}
	return req, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierrors.ErrPayloadTooLarge.WithDetails(map[string]int64{"limit_bytes": tooLarge.Limit})
	}
	return apierrors.InvalidRequestWithError(err)
}

// GetSummary handles GET /api/dataset
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	h.write(w, r, summary, err)
}

// GetRecords handles GET /api/dataset/records?location=&offset=&limit=
func (h *DatasetHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	offset, err := intParam(r, "offset", 0, -1)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", 0, maxRecordPage)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.Records(r.Context(), services.RecordQuery{
		Location: r.URL.Query().Get("location"),
		Offset:   offset,
		Limit:    limit,
	})
	h.write(w, r, page, err)
}

// GetMonthly handles GET /api/dataset/monthly
func (h *DatasetHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	monthly, err := h.service.Monthly(r.Context())
	h.write(w, r, monthly, err)
}

// GetStatistics handles GET /api/dataset/statistics
func (h *DatasetHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	h.write(w, r, stats, err)
}

// GetLocations handles GET /api/dataset/locations
func (h *DatasetHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.Locations(r.Context())
	h.write(w, r, locations, err)
}

// GetTrend handles GET /api/dataset/trend
func (h *DatasetHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.Trend(r.Context())
	h.write(w, r, trend, err)
}

// GetSeries handles GET /api/dataset/series/{metric}
func (h *DatasetHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.Series(r.Context(), chi.URLParam(r, "metric"))
	h.write(w, r, series, err)
}

// GetStructure handles GET /api/dataset/structure
func (h *DatasetHandler) GetStructure(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Structure(r.Context())
	h.write(w, r, report, err)
}

// Export handles GET /api/dataset/export?format=csv|xlsx. The file is built
// in memory so a failure can still be answered with a problem response.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", services.ExportFormats, services.FormatCSV)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, format); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == services.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="records.%s"`, format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export response interrupted",
			slog.String("error", err.Error()))
	}
}

// SaveExport handles POST /api/dataset/export?format=csv|xlsx and writes
// the file into the export directory.
func (h *DatasetHandler) SaveExport(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", services.ExportFormats, services.FormatCSV)
	if !ok {
		return
	}

	path, err := h.service.SaveExport(r.Context(), format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	respond(w, r, api.ExportResponse{Path: path, Format: format})
}

// GetFiles handles GET /api/dataset/files
func (h *DatasetHandler) GetFiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.DataFiles(r.Context())
	h.write(w, r, list, err)
}

func (h *DatasetHandler) write(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, data)
}

func respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, api.Response{Status: api.StatusSuccess, Data: data})
}

// intParam reads a non-negative integer query parameter. upper < 0 means
// unbounded.
func intParam(r *http.Request, name string, defaultValue, upper int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apierrors.ErrValidation(name, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	if upper >= 0 && v > upper {
		return 0, apierrors.ErrValidation(name, fmt.Sprintf("%s must be at most %d", name, upper))
	}
	return v, nil
}
