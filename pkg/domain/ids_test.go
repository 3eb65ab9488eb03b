package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemberID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseMemberID("")
		require.Error(t, err)
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseMemberID("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		u := uuid.New()
		id, err := ParseMemberID(u.String())
		require.NoError(t, err)
		assert.Equal(t, MemberID(u), id)
	})

	t.Run("round trips through String", func(t *testing.T) {
		id := NewMemberID()
		parsed, err := ParseMemberID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("rejects attack vectors", func(t *testing.T) {
		for _, input := range []string{
			"'; DROP TABLE members;--",
			"../../../etc/passwd",
			"550e8400\x00-e29b-41d4-a716-446655440000",
		} {
			_, err := ParseMemberID(input)
			require.Error(t, err, "input %q should be rejected", input)
		}
	})
}

func TestIDNilChecks(t *testing.T) {
	assert.True(t, MemberID{}.IsNil())
	assert.True(t, DocumentID{}.IsNil())
	assert.True(t, MessageID{}.IsNil())
	assert.True(t, RegistrationID{}.IsNil())
	assert.False(t, NewMemberID().IsNil())
}

// TestTypeDistinction verifies the compiler keeps entity IDs apart.
// If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	memberID := MemberID(uuid.New())
	documentID := DocumentID(uuid.New())

	// These would fail to compile if the types were interchangeable:
	// var _ MemberID = documentID   // type mismatch
	// var _ DocumentID = memberID   // type mismatch

	assert.NotEqual(t, uuid.UUID(memberID), uuid.UUID(documentID))
}
