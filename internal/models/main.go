// Package models defines the core data structures for users, secrets,
// and share requests.
package models

import "time"

// User represents an application user identity. Users are provisioned by the
// external authenticator; this service only reads them.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the login name chosen by the user. Unique, case-sensitive.
	Username string `json:"username"`
}

// Secret holds one encrypted credential together with its ownership data.
type Secret struct {
	// ID is the unique identifier for the secret.
	ID string `json:"id"`
	// OwnerID is the ID of the user that created the secret.
	OwnerID string `json:"owner_id"`
	// Locator identifies what the secret is for, e.g. a site URL.
	Locator string `json:"locator"`
	// Ciphertext is the encrypted credential. Never exposed in responses.
	Ciphertext []byte `json:"-"`
	// Readers is the set of user IDs granted read access through an
	// accepted share request. The owner is never listed here.
	Readers []string `json:"readers,omitempty"`
	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// DecryptedSecret is one element of a listing: secret metadata plus either
// the decrypted plaintext or an explicit decryption-failure marker. A corrupt
// record never aborts the listing of the others.
type DecryptedSecret struct {
	Secret
	// Plaintext is the decrypted credential, empty when DecryptFailed is set.
	Plaintext string `json:"plaintext,omitempty"`
	// DecryptFailed marks a record whose stored ciphertext could not be
	// decrypted with the current key.
	DecryptFailed bool `json:"decrypt_failed,omitempty"`
}

// ShareStatus is the state of a share request.
type ShareStatus string

const (
	// SharePending is the initial state of every share request.
	SharePending ShareStatus = "pending"
	// ShareAccepted is the terminal state granting the recipient read access.
	ShareAccepted ShareStatus = "accepted"
	// ShareRejected is the terminal state declining the offer.
	ShareRejected ShareStatus = "rejected"
)

// Valid reports whether s is one of the known share states.
func (s ShareStatus) Valid() bool {
	switch s {
	case SharePending, ShareAccepted, ShareRejected:
		return true
	}
	return false
}

// Terminal reports whether s is a state no further transition may leave.
func (s ShareStatus) Terminal() bool {
	return s == ShareAccepted || s == ShareRejected
}

// ShareRequest represents one offer to share read access to exactly one secret.
// Requests are retained after reaching a terminal state for audit history.
type ShareRequest struct {
	// ID is the unique identifier for the request.
	ID string `json:"id"`
	// SecretID is the secret being shared.
	SecretID string `json:"secret_id"`
	// FromUserID is the offering user, the secret's owner at creation time.
	FromUserID string `json:"from_user_id"`
	// ToUserID is the recipient, resolved from a username at creation time.
	ToUserID string `json:"to_user_id"`
	// Status is pending, accepted, or rejected.
	Status ShareStatus `json:"status"`
	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// ShareRequestDetail is a share request enriched for recipient review:
// the secret's locator, the usernames involved, and the credential decrypted
// when the recipient is entitled to see it.
type ShareRequestDetail struct {
	ID string `json:"id"`
	// Locator of the referenced secret.
	Locator string `json:"locator"`
	// OwnerUsername is the username of the secret's owner.
	OwnerUsername string `json:"owner"`
	// FromUsername is the username of the offering user.
	FromUsername string `json:"from"`
	// Ciphertext of the referenced secret, decrypted by the service layer.
	Ciphertext []byte      `json:"-"`
	Status     ShareStatus `json:"status"`
	// Plaintext is the decrypted credential, empty when DecryptFailed is set
	// or when the status does not entitle the recipient to it.
	Plaintext string `json:"plaintext,omitempty"`
	// DecryptFailed marks a record whose ciphertext could not be decrypted.
	DecryptFailed bool `json:"decrypt_failed,omitempty"`
}
