package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sndot/internal/donor/models"
	"sndot/internal/donor/service"
	"sndot/internal/platform/metrics"
	"sndot/internal/platform/middleware"
	id "sndot/pkg/domain"
	dErrors "sndot/pkg/domain-errors"
	"sndot/pkg/platform/httputil"
	"sndot/pkg/platform/middleware/metadata"
	"sndot/pkg/platform/middleware/requesttime"
	"sndot/pkg/requestcontext"
)

// Service is the registrar surface the HTTP layer needs.
type Service interface {
	Register(ctx context.Context, fields models.Fields, intent *models.IntentPayload) (*service.Registration, error)
	Edit(ctx context.Context, donorID id.DonorID, fields models.Fields, intent *models.IntentPayload) (*service.Registration, error)
	Get(ctx context.Context, donorID id.DonorID) (*service.Registration, error)
	GetByNationalID(ctx context.Context, raw string) (*service.Registration, error)
	List(ctx context.Context) ([]*models.Donor, error)
	Delete(ctx context.Context, donorID id.DonorID) error
	ListOrgans(ctx context.Context) ([]*models.Organ, error)
}

// Handler serves the donor and organ endpoints.
type Handler struct {
	logger  *slog.Logger
	donors  Service
	metrics *metrics.Metrics
	timeout time.Duration
}

func New(donors Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		donors:  donors,
		metrics: m,
		timeout: 30 * time.Second,
	}
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(chimw.RequestID)
	router.Use(metadata.ClientMetadata)
	router.Use(requesttime.Middleware)
	router.Use(middleware.Logger(h.logger))
	router.Use(chimw.Timeout(h.timeout))
	router.Use(middleware.Latency(h.metrics))

	router.Route("/donors", func(r chi.Router) {
		r.With(middleware.ContentTypeJSON).Post("/", h.handleRegister)
		r.Get("/", h.handleList)
		r.Get("/by-national-id/{nationalID}", h.handleGetByNationalID)
		r.Get("/{id}", h.handleGet)
		r.With(middleware.ContentTypeJSON).Put("/{id}", h.handleEdit)
		r.Delete("/{id}", h.handleDelete)
	})
	router.Get("/organs", h.handleListOrgans)

	r.Mount("/", router)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	reg, err := h.donors.Register(ctx, req.Donor, req.Intent)
	if err != nil {
		h.fail(ctx, w, "register donor", err)
		return
	}
	status := http.StatusOK
	if reg.Created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, toResponse(reg))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donorID, ok := h.donorID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	reg, err := h.donors.Edit(ctx, donorID, req.Donor, req.Intent)
	if err != nil {
		h.fail(ctx, w, "edit donor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(reg))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donorID, ok := h.donorID(w, r)
	if !ok {
		return
	}
	reg, err := h.donors.Get(ctx, donorID)
	if err != nil {
		h.fail(ctx, w, "get donor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(reg))
}

func (h *Handler) handleGetByNationalID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reg, err := h.donors.GetByNationalID(ctx, chi.URLParam(r, "nationalID"))
	if err != nil {
		h.fail(ctx, w, "get donor by national id", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(reg))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donors, err := h.donors.List(ctx)
	if err != nil {
		h.fail(ctx, w, "list donors", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Donors: donors, Count: len(donors)})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donorID, ok := h.donorID(w, r)
	if !ok {
		return
	}
	if err := h.donors.Delete(ctx, donorID); err != nil {
		h.fail(ctx, w, "delete donor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListOrgans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	organs, err := h.donors.ListOrgans(ctx)
	if err != nil {
		h.fail(ctx, w, "list organs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, organsResponse{Organs: organs})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*registrationRequest, bool) {
	var req registrationRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "invalid donor request",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if req.Donor == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "donor is required"))
		return nil, false
	}
	return &req, true
}

func (h *Handler) donorID(w http.ResponseWriter, r *http.Request) (id.DonorID, bool) {
	donorID, err := id.ParseDonorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid donor id"))
		return id.DonorID{}, false
	}
	return donorID, true
}

// fail logs at a level that matches the error class and writes the response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, "failed to "+op, attrs...)
	default:
		h.logger.InfoContext(ctx, op+" rejected", attrs...)
	}
	httputil.WriteError(w, err)
}
