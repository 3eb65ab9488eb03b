package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "memberport/pkg/domain"
)

func newTestMember(t *testing.T) *Member {
	t.Helper()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	m, err := NewMember(id.NewMemberID(), "kaisa@example.com", "Kaisa", "Järvinen", now)
	require.NoError(t, err)
	return m
}

func TestNewMemberValidation(t *testing.T) {
	now := time.Now()
	_, err := NewMember(id.NewMemberID(), "", "A", "B", now)
	assert.Error(t, err)

	_, err = NewMember(id.NewMemberID(), "a@example.com", "", "B", now)
	assert.Error(t, err)
}

func TestPasswordRoundTrip(t *testing.T) {
	m := newTestMember(t)

	require.Error(t, m.SetPassword("short"))
	require.NoError(t, m.SetPassword("correct horse battery"))

	assert.True(t, m.VerifyPassword("correct horse battery"))
	assert.False(t, m.VerifyPassword("wrong"))
	assert.NotContains(t, m.PasswordHash, "correct horse")
}

func TestAnonymizeScrubsEverything(t *testing.T) {
	m := newTestMember(t)
	phone := "+358001"
	addr := "Mannerheimintie 1"
	regNo := "FI-12345"
	m.Phone, m.Address, m.RegistrationNumber = &phone, &addr, &regNo
	m.MarketingConsent = true
	require.NoError(t, m.SetPassword("correct horse battery"))
	originalID := m.ID

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	m.SoftDelete(now.Add(-400 * 24 * time.Hour))
	m.Anonymize(now, "memberport.org")

	assert.True(t, strings.HasPrefix(m.Email, "deleted_"))
	assert.True(t, strings.HasSuffix(m.Email, "@deleted.memberport.org"))
	assert.Equal(t, AnonymizedFirstName, m.FirstName)
	assert.Equal(t, AnonymizedLastName, m.LastName)
	assert.Nil(t, m.Phone)
	assert.Nil(t, m.Address)
	assert.Nil(t, m.RegistrationNumber)
	assert.Empty(t, m.PasswordHash)
	assert.False(t, m.MarketingConsent)
	assert.True(t, m.IsAnonymized())

	// the identifier survives so foreign keys stay valid
	assert.Equal(t, originalID, m.ID)
	assert.NotNil(t, m.DeletedAt)
}

func TestAnonymizedEmailsAreUnique(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for range 100 {
		email := anonymizedEmail(now, "memberport.org")
		require.False(t, seen[email], "generated duplicate email %s", email)
		seen[email] = true
	}
}

func TestRestoreGuards(t *testing.T) {
	now := time.Now().UTC()

	t.Run("live account cannot be restored", func(t *testing.T) {
		m := newTestMember(t)
		assert.Error(t, m.CanRestore())
	})

	t.Run("soft deleted account can be restored", func(t *testing.T) {
		m := newTestMember(t)
		m.SoftDelete(now)
		require.NoError(t, m.CanRestore())
		m.Restore(now)
		assert.Nil(t, m.DeletedAt)
	})

	t.Run("anonymized account cannot be restored", func(t *testing.T) {
		m := newTestMember(t)
		m.SoftDelete(now)
		m.Anonymize(now, "memberport.org")
		err := m.CanRestore()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot restore anonymized account")
	})
}
