package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID uniquely identifies a user within the system.
// It is a thin wrapper around uuid.UUID to provide type safety at the domain layer.
type UserID uuid.UUID

// String returns the canonical textual form of the ID.
func (id UserID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the ID has not been assigned yet.
func (id UserID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses the canonical textual form of a user ID.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err //nolint: wrapcheck
	}

	return UserID(id), nil
}

// User is a registered person identified by a unique identity document.
type User struct {
	// ID is assigned by the storage when the user is created; zero until then.
	ID UserID `json:"id"`
	// Name is the display name of the user.
	Name string `json:"name"`
	// DocumentID is the identity document number. It is unique across all users.
	DocumentID string `json:"documentId"`
	// CreatedAt is the time when the user was stored.
	CreatedAt time.Time `json:"createdAt"`
}
