package domain

import "github.com/google/uuid"

// Identity is the authenticated caller attached to a request, extracted
// from the bearer token by the auth middleware.
type Identity struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarURL string
}

// Label returns the display label used for resolved_by stamps:
// email, else name, else "Unknown".
func (i Identity) Label() string {
	if i.Email != "" {
		return i.Email
	}
	if i.Name != "" {
		return i.Name
	}
	return "Unknown"
}
