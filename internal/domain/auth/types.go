// Package auth contains the domain types and logic for authenticating
// callers of the decision API.
package auth

// Identity represents an authenticated caller of the decision API.
type Identity struct {
	// ID is the unique identifier for this identity.
	ID string
	// Name is the display name for this identity.
	Name string
}

// APIKey is a stored credential mapping a key hash to an identity.
type APIKey struct {
	// Key is the stored hash: "sha256:<hex>" or an Argon2id encoded hash.
	Key string
	// IdentityID references the identity this key authenticates as.
	IdentityID string
	// Revoked disables the key without deleting it.
	Revoked bool
}
