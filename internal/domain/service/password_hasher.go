// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// No other component compares plaintext passwords.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash to see if they match.
	Check(password, hash string) bool

	// DummyHash returns a valid hash at the configured cost that matches no real password.
	// Checking against it keeps the unknown-account login path as slow as a wrong password.
	DummyHash() string
}
