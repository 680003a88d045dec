package policy

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"proto-review-api/internal/domain"
)

func TestIsAuthenticated(t *testing.T) {
	assert.False(t, IsAuthenticated(domain.Identity{}))
	assert.True(t, IsAuthenticated(domain.Identity{ID: uuid.New()}))
}

func TestCanDelete_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	comment := &domain.Comment{AuthorID: owner}

	assert.True(t, CanDelete(domain.Identity{ID: owner}, comment))
	assert.False(t, CanDelete(domain.Identity{ID: uuid.New()}, comment))
}

func TestCanMutate_AnyAuthenticatedCaller(t *testing.T) {
	comment := &domain.Comment{AuthorID: uuid.New()}

	// Edit/resolve is open to all authenticated callers, unlike delete
	assert.True(t, CanMutate(domain.Identity{ID: uuid.New()}, comment))
	assert.False(t, CanMutate(domain.Identity{}, comment))
}

func TestSanitizeContent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantOK  bool
	}{
		{"plain content", "fix this spacing", "fix this spacing", true},
		{"leading and trailing whitespace", "  fix this spacing \n", "fix this spacing", true},
		{"empty", "", "", false},
		{"whitespace only", " \t\n ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizeContent(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizePosition(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		want   int
		wantOK bool
	}{
		{"float rounds up", 10.7, 11, true},
		{"float rounds down", 10.2, 10, true},
		{"integer float", 340.0, 340, true},
		{"negative clamps to zero", -4.2, 0, true},
		{"string rejected", "abc", 0, false},
		{"nil rejected", nil, 0, false},
		{"bool rejected", true, 0, false},
		{"NaN rejected", math.NaN(), 0, false},
		{"Inf rejected", math.Inf(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizePosition(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// For any content string, sanitizing is idempotent and never returns
// leading/trailing whitespace; all-whitespace input is always rejected.
func TestProperty_SanitizeContentTrimInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("sanitized content equals its own trim", prop.ForAll(
		func(s string) bool {
			trimmed, ok := SanitizeContent(s)
			if !ok {
				return trimmed == ""
			}
			again, okAgain := SanitizeContent(trimmed)
			return okAgain && again == trimmed
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// For any finite coordinate, the stored value is the nearest non-negative
// integer and differs from the input by at most 0.5.
func TestProperty_PositionRounding(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("rounding is nearest-integer and non-negative", prop.ForAll(
		func(v float64) bool {
			got, ok := SanitizePosition(v)
			if !ok {
				return false
			}
			if got < 0 {
				return false
			}
			if v <= 0 {
				return got == 0 || math.Abs(float64(got)-v) <= 0.5
			}
			return math.Abs(float64(got)-v) <= 0.5
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}
