// Package dsr implements data subject request handling: keyword
// classification of inbound messages, self-service personal data export,
// and member-initiated correction/deletion request submission.
package dsr

import (
	"strings"

	"memberport/internal/message"
)

// classificationKeywords is the fixed keyword set matched case-insensitively
// against message subjects and bodies. Matching is a heuristic surface for
// compliance staff; matched messages are never acted on automatically.
var classificationKeywords = []string{
	"correction",
	"deletion",
	"deactivate",
	"data correction",
	"delete my account",
	"deactivate my account",
}

// Kind labels a classified request for reporting.
type Kind string

const (
	KindCorrection Kind = "correction"
	KindDeletion   Kind = "deletion"
)

// Matches reports whether the message's subject or body contains any
// classification keyword.
func Matches(m *message.Message) bool {
	subject := strings.ToLower(m.Subject)
	body := strings.ToLower(m.Body)
	for _, kw := range classificationKeywords {
		if strings.Contains(subject, kw) || strings.Contains(body, kw) {
			return true
		}
	}
	return false
}

// Classify filters the message corpus down to DSR candidates. Requests are
// derived, not stored; their lifecycle is that of the underlying message.
func Classify(msgs []*message.Message) []*message.Message {
	var out []*message.Message
	for _, m := range msgs {
		if Matches(m) {
			out = append(out, m)
		}
	}
	return out
}
