// Package handler exposes the publishing pipeline over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"obligo/internal/publishing/models"
	"obligo/internal/publishing/override"
	id "obligo/pkg/domain"
	dErrors "obligo/pkg/domain-errors"
	"obligo/pkg/platform/httputil"
	"obligo/pkg/requestcontext"
)

// Service defines the publishing operations the handler calls.
type Service interface {
	Preview(ctx context.Context, req models.PreviewRequest) ([]models.PreviewRow, error)
	Resolve(ctx context.Context, req models.ResolveRequest) (*override.Resolution, error)
	Publish(ctx context.Context, req models.PublishRequest) (*models.PublishResult, error)
	GetBatch(ctx context.Context, batchID id.BatchID) (*models.PublishBatch, error)
	ListBatches(ctx context.Context, limit int) ([]*models.PublishBatch, error)
}

// Handler wires publishing endpoints to the publishing service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts publishing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/legal-publish", h.HandlePreview)
	r.Post("/legal-publish", h.HandlePublish)
	r.Post("/legal-publish/resolve", h.HandleResolve)
	r.Get("/legal-publish/batches", h.HandleListBatches)
	r.Get("/legal-publish/batches/{batchID}", h.HandleGetBatch)
}

// HandlePreview handles GET /legal-publish.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	query := previewQueryFrom(r.URL.Query())
	if err := query.Validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid preview query",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	rows, err := h.service.Preview(ctx, query.ToModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "preview failed",
			"request_id", requestID,
			"mode", query.Mode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "preview computed",
		"request_id", requestID,
		"operator_id", requestcontext.OperatorID(ctx),
		"mode", query.Mode,
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromPreview(rows))
}

// HandleResolve handles POST /legal-publish/resolve.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Resolve(ctx, req.ToModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromResolution(res))
}

// HandlePublish handles POST /legal-publish.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	operatorID := requestcontext.OperatorID(ctx)
	if operatorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[PublishRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Publish(ctx, req.ToModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "publish failed",
			"request_id", requestID,
			"operator_id", operatorID,
			"assignments", len(req.Assignments),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "assignments published",
		"request_id", requestID,
		"operator_id", operatorID,
		"batch_id", result.Batch.ID,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"dropped", result.Dropped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromPublishResult(result))
}

// HandleGetBatch handles GET /legal-publish/batches/{batchID}.
func (h *Handler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	batchID, err := id.ParseBatchID(chi.URLParam(r, "batchID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	batch, err := h.service.GetBatch(ctx, batchID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "get batch failed",
				"request_id", requestID,
				"batch_id", batchID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromBatch(batch))
}

// HandleListBatches handles GET /legal-publish/batches.
func (h *Handler) HandleListBatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	batches, err := h.service.ListBatches(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list batches failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromBatches(batches))
}
