// Package handler exposes the member-facing privacy surface: the personal
// data export and correction/deletion request submission. All routes act on
// the authenticated member only; there is no way to address another account.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"memberport/internal/dsr"
	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
	"memberport/pkg/platform/httputil"
	authmw "memberport/pkg/platform/middleware/auth"
	"memberport/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/privacy-mocks.go -package=mocks DSRService

// DSRService is the data subject request surface the handler fronts.
type DSRService interface {
	Export(ctx context.Context, memberID id.MemberID) (*dsr.ExportBundle, error)
	Submit(ctx context.Context, memberID id.MemberID, kind dsr.Kind, detail string) error
}

type Handler struct {
	logger    *slog.Logger
	dsr       DSRService
	validator authmw.TokenValidator
}

func New(service DSRService, validator authmw.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, dsr: service, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/privacy", func(r chi.Router) {
		r.Use(authmw.RequireAuth(h.validator, h.logger))

		r.Get("/my-data", h.handleMyData)
		r.Post("/request-correction", h.handleRequestCorrection)
		r.Post("/request-deletion", h.handleRequestDeletion)
	})
}

func (h *Handler) handleMyData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID := requestcontext.MemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	bundle, err := h.dsr.Export(ctx, memberID)
	if err != nil {
		h.logger.ErrorContext(ctx, "data export failed", "member_id", memberID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bundle)
}

func (h *Handler) handleRequestCorrection(w http.ResponseWriter, r *http.Request) {
	h.handleSubmit(w, r, dsr.KindCorrection)
}

func (h *Handler) handleRequestDeletion(w http.ResponseWriter, r *http.Request) {
	h.handleSubmit(w, r, dsr.KindDeletion)
}

type submitRequest struct {
	Detail string `json:"detail"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request, kind dsr.Kind) {
	ctx := r.Context()

	memberID := requestcontext.MemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	// The body is optional; an empty request is a valid bare submission.
	var req submitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	if err := h.dsr.Submit(ctx, memberID, kind, req.Detail); err != nil {
		h.logger.ErrorContext(ctx, "data subject request failed",
			"member_id", memberID, "kind", kind, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"status": "submitted",
	})
}
