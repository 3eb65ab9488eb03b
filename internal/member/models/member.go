package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
)

// Anonymization sentinels. A member whose first name equals the sentinel has
// been irreversibly anonymized and must never be processed again.
const (
	AnonymizedFirstName = "Deleted"
	AnonymizedLastName  = "User"
)

// Member is a portal member account. PII fields are pointers so that
// anonymization can null them out while keeping the row and its foreign keys
// intact.
type Member struct {
	ID        id.MemberID
	Email     string
	FirstName string
	LastName  string
	Phone     *string
	Address   *string
	// RegistrationNumber is the professional registration identifier.
	RegistrationNumber *string

	Status id.MembershipStatus
	Role   id.Role

	MarketingConsent      bool
	DataProcessingConsent bool

	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
	// DeletedAt marks a soft-deleted account; nil means live.
	DeletedAt *time.Time
}

// NewMember constructs a pending member account.
func NewMember(memberID id.MemberID, email, firstName, lastName string, now time.Time) (*Member, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if firstName == "" || lastName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return &Member{
		ID:        memberID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Status:    id.MembershipPending,
		Role:      id.RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetPassword hashes and stores the password.
func (m *Member) SetPassword(plaintext string) error {
	if len(plaintext) < 8 {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	m.PasswordHash = string(hash)
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (m *Member) VerifyPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(plaintext)) == nil
}

// IsSoftDeleted reports whether the account carries a soft-delete marker.
func (m *Member) IsSoftDeleted() bool { return m.DeletedAt != nil }

// IsAnonymized reports whether the account has been through the irreversible
// anonymization pass.
func (m *Member) IsAnonymized() bool { return m.FirstName == AnonymizedFirstName }

// SoftDelete marks the account deleted. Reversible via Restore.
func (m *Member) SoftDelete(now time.Time) {
	m.DeletedAt = &now
	m.UpdatedAt = now
}

// CanRestore returns an error when the account cannot be restored.
// Anonymization is terminal; "restoring" would resurrect sentinel data.
func (m *Member) CanRestore() error {
	if m.IsAnonymized() {
		return dErrors.New(dErrors.CodeConflict, "cannot restore anonymized account")
	}
	if !m.IsSoftDeleted() {
		return dErrors.New(dErrors.CodeConflict, "account is not deleted")
	}
	return nil
}

// Restore clears the soft-delete marker. Callers must check CanRestore first.
func (m *Member) Restore(now time.Time) {
	m.DeletedAt = nil
	m.UpdatedAt = now
}

// Anonymize irreversibly overwrites all personally-identifying fields with
// sentinel values. The row identifier survives so registrations, payments and
// invoices referencing this member stay relationally valid.
func (m *Member) Anonymize(now time.Time, emailDomain string) {
	m.Email = anonymizedEmail(now, emailDomain)
	m.FirstName = AnonymizedFirstName
	m.LastName = AnonymizedLastName
	m.Phone = nil
	m.Address = nil
	m.RegistrationNumber = nil
	m.PasswordHash = ""
	m.MarketingConsent = false
	m.UpdatedAt = now
}

// anonymizedEmail generates a unique sentinel address of the form
// deleted_<shortid>_<epochMillis>@deleted.<domain>. Uniqueness preserves the
// email column's unique constraint across many anonymized rows.
func anonymizedEmail(now time.Time, domain string) string {
	short := uuid.NewString()[:8]
	return fmt.Sprintf("deleted_%s_%d@deleted.%s", short, now.UnixMilli(), domain)
}
