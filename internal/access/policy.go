// Package access decides what role a user holds on a secret. It is a pure
// policy: no I/O, no side effects.
package access

import "passvault/internal/models"

// Role is the relationship between a user and a secret.
type Role string

const (
	// RoleOwner may read, update, delete, and offer shares of the secret.
	RoleOwner Role = "owner"
	// RoleReader may read the decrypted secret.
	RoleReader Role = "reader"
	// RoleNone grants nothing.
	RoleNone Role = "none"
)

// RoleOf returns the role userID holds on s. The owner is implicitly always
// a reader, so callers gating reads should accept both RoleOwner and
// RoleReader.
func RoleOf(userID string, s *models.Secret) Role {
	if s == nil || userID == "" {
		return RoleNone
	}
	if s.OwnerID == userID {
		return RoleOwner
	}
	for _, r := range s.Readers {
		if r == userID {
			return RoleReader
		}
	}
	return RoleNone
}
