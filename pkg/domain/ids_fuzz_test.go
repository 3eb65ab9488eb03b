//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseMemberID checks that parsing never panics on arbitrary input
// and that accepted values round-trip through String.
func FuzzParseMemberID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE members;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseMemberID(input)
		if err == nil {
			roundTrip, err2 := ParseMemberID(id.String())
			if err2 != nil {
				t.Errorf("accepted ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
			if !utf8.ValidString(input) {
				t.Error("non-UTF8 input was accepted")
			}
		}
	})
}
