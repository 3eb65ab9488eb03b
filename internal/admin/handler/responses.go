package handler

import (
	"strconv"
	"time"

	"memberport/internal/audit"
	"memberport/internal/document"
	"memberport/internal/member/models"
	"memberport/internal/message"
)

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

type auditEntryResponse struct {
	ID        string         `json:"id"`
	Event     string         `json:"event"`
	ActorID   *string        `json:"actorId"`
	TargetID  *string        `json:"targetId"`
	Details   map[string]any `json:"details,omitempty"`
	SourceIP  string         `json:"sourceIp,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func auditEntriesResponse(entries []audit.Entry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := auditEntryResponse{
			ID:        e.ID.String(),
			Event:     e.Event,
			Details:   e.Details,
			SourceIP:  e.SourceIP,
			UserAgent: e.UserAgent,
			CreatedAt: e.CreatedAt,
		}
		if e.ActorID != nil {
			s := e.ActorID.String()
			resp.ActorID = &s
		}
		if e.TargetID != nil {
			s := e.TargetID.String()
			resp.TargetID = &s
		}
		out = append(out, resp)
	}
	return out
}

type dsrRequestResponse struct {
	MessageID string     `json:"messageId"`
	SenderID  string     `json:"senderId"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	SentAt    time.Time  `json:"sentAt"`
	ReadAt    *time.Time `json:"readAt"`
}

func dsrRequestsResponse(msgs []*message.Message) []dsrRequestResponse {
	out := make([]dsrRequestResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, dsrRequestResponse{
			MessageID: m.ID.String(),
			SenderID:  m.SenderID.String(),
			Subject:   m.Subject,
			Body:      m.Body,
			SentAt:    m.SentAt,
			ReadAt:    m.ReadAt,
		})
	}
	return out
}

type memberSummaryResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	MembershipStatus string     `json:"membershipStatus"`
	Anonymized       bool       `json:"anonymized"`
	DeletedAt        *time.Time `json:"deletedAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func memberResponse(m *models.Member) memberSummaryResponse {
	return memberSummaryResponse{
		ID:               m.ID.String(),
		Email:            m.Email,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		MembershipStatus: string(m.Status),
		Anonymized:       m.IsAnonymized(),
		DeletedAt:        m.DeletedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type documentDecisionResponse struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"memberId"`
	FileName   string    `json:"fileName"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func documentResponse(d *document.Document) documentDecisionResponse {
	return documentDecisionResponse{
		ID:         d.ID.String(),
		MemberID:   d.MemberID.String(),
		FileName:   d.FileName,
		Status:     string(d.Status),
		UploadedAt: d.UploadedAt,
	}
}

func deletedMembersResponse(members []*models.Member) []memberSummaryResponse {
	out := make([]memberSummaryResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse(m))
	}
	return out
}
