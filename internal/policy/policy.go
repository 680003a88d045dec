// Package policy holds the pure validation and authorization rules shared
// by the comment service. All functions are side-effect free.
package policy

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/google/uuid"

	"proto-review-api/internal/domain"
)

// IsAuthenticated reports whether the caller carries a verified identity.
func IsAuthenticated(ident domain.Identity) bool {
	return ident.ID != uuid.Nil
}

// CanDelete reports whether the caller may delete the comment.
// Deletion is owner-only.
func CanDelete(ident domain.Identity, comment *domain.Comment) bool {
	return ident.ID == comment.AuthorID
}

// CanMutate reports whether the caller may edit, move, resolve or reopen
// the comment. Any authenticated caller may: the collaborative-edit policy
// is intentionally weaker than the delete policy.
func CanMutate(ident domain.Identity, _ *domain.Comment) bool {
	return IsAuthenticated(ident)
}

// SanitizeContent trims the content and reports whether anything remains.
func SanitizeContent(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	return trimmed, trimmed != ""
}

// RoundPosition rounds a coordinate to the nearest integer and clamps it
// to zero. Marker positions are content-area pixel offsets and are never
// negative.
func RoundPosition(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	return rounded
}

// SanitizePosition interprets a decoded JSON value as a coordinate.
// Non-numeric and non-finite values are rejected (the caller ignores the
// field rather than failing the request); numeric values are rounded.
func SanitizePosition(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return RoundPosition(n), true
	case int:
		return RoundPosition(float64(n)), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return RoundPosition(f), true
	default:
		return 0, false
	}
}
