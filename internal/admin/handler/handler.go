// Package handler exposes the administrative compliance surface consumed by
// the dashboard. Every route requires an authenticated admin; non-admin
// callers are rejected before any work happens.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"memberport/internal/audit"
	"memberport/internal/document"
	"memberport/internal/member/models"
	"memberport/internal/message"
	"memberport/internal/retention"
	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
	"memberport/pkg/platform/httputil"
	adminmw "memberport/pkg/platform/middleware/admin"
	authmw "memberport/pkg/platform/middleware/auth"
)

// RetentionRunner triggers one synchronous retention run.
type RetentionRunner interface {
	Run(ctx context.Context) (retention.Stats, error)
}

// ComplianceService provides the dashboard's read-only aggregates.
type ComplianceService interface {
	RetentionStats(ctx context.Context) (models.RetentionCounts, error)
	ConsentStats(ctx context.Context) (models.ConsentCounts, error)
	AuditLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

// MemberService provides the manual account lifecycle operations.
type MemberService interface {
	Deactivate(ctx context.Context, target id.MemberID) error
	Restore(ctx context.Context, target id.MemberID) (*models.Member, error)
	ListDeleted(ctx context.Context) ([]*models.Member, error)
}

// DSRService lists classified data subject requests.
type DSRService interface {
	ListRequests(ctx context.Context) ([]*message.Message, error)
}

// DocumentService applies staff verification decisions.
type DocumentService interface {
	Decide(ctx context.Context, docID id.DocumentID, decision document.VerificationStatus) (*document.Document, error)
}

type Handler struct {
	logger     *slog.Logger
	engine     RetentionRunner
	compliance ComplianceService
	members    MemberService
	dsr        DSRService
	documents  DocumentService
	validator  authmw.TokenValidator
}

func New(
	engine RetentionRunner,
	compliance ComplianceService,
	members MemberService,
	dsr DSRService,
	documents DocumentService,
	validator authmw.TokenValidator,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		logger:     logger,
		engine:     engine,
		compliance: compliance,
		members:    members,
		dsr:        dsr,
		documents:  documents,
		validator:  validator,
	}
}

// Register mounts the admin routes. Auth runs before the admin check so an
// unauthenticated caller gets 401, an authenticated non-admin gets 403.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authmw.RequireAuth(h.validator, h.logger))
		r.Use(adminmw.RequireAdmin(h.logger))

		r.Post("/retention/purge", h.handlePurge)
		r.Get("/retention/stats", h.handleRetentionStats)
		r.Get("/consent-stats", h.handleConsentStats)
		r.Get("/audit-logs", h.handleAuditLogs)
		r.Get("/dsr-requests", h.handleDSRRequests)
		r.Get("/users/deleted", h.handleListDeleted)
		r.Post("/users/{userID}/restore", h.handleRestore)
		r.Post("/users/{userID}/deactivate", h.handleDeactivate)
		r.Post("/documents/{documentID}/decision", h.handleDocumentDecision)
	})
}

// handlePurge runs the retention engine synchronously and returns its stats.
func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.engine.Run(ctx)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "retention run failed", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "retention run failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleRetentionStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := h.compliance.RetentionStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "retention stats query failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) handleConsentStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := h.compliance.ConsentStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "consent stats query failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := auditFilterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.compliance.AuditLogs(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit log query failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"entries": auditEntriesResponse(entries),
		"limit":   filter.Normalize().Limit,
		"offset":  filter.Normalize().Offset,
	})
}

func (h *Handler) handleDSRRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	msgs, err := h.dsr.ListRequests(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dsr request query failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"requests": dsrRequestsResponse(msgs),
	})
}

func (h *Handler) handleListDeleted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	members, err := h.members.ListDeleted(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "deleted user query failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"users": deletedMembersResponse(members),
	})
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, err := id.ParseMemberID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	m, err := h.members.Restore(ctx, target)
	if err != nil {
		h.logger.WarnContext(ctx, "restore rejected", "member_id", target, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, memberResponse(m))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, err := id.ParseMemberID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.members.Deactivate(ctx, target); err != nil {
		h.logger.WarnContext(ctx, "deactivation rejected", "member_id", target, "error", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type documentDecisionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleDocumentDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}

	var req documentDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	decision, err := document.ParseDecision(req.Status)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "status must be approved or rejected"))
		return
	}

	doc, err := h.documents.Decide(ctx, docID, decision)
	if err != nil {
		h.logger.WarnContext(ctx, "document decision rejected", "document_id", docID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, documentResponse(doc))
}

// auditFilterFromQuery parses the audit log query parameters. Dates accept
// RFC 3339 or plain YYYY-MM-DD; an end date without a time component covers
// the whole day.
func auditFilterFromQuery(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{Event: q.Get("event")}

	if raw := q.Get("userId"); raw != "" {
		memberID, err := id.ParseMemberID(raw)
		if err != nil {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid userId filter")
		}
		filter.MemberID = &memberID
	}
	if raw := q.Get("startDate"); raw != "" {
		t, err := parseDate(raw, false)
		if err != nil {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid startDate filter")
		}
		filter.Start = t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := parseDate(raw, true)
		if err != nil {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid endDate filter")
		}
		filter.End = t
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid limit")
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid offset")
		}
		filter.Offset = n
	}
	return filter, nil
}

func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
