package service

// PasswordHasher abstracts password hashing so the use cases never see the
// hashing algorithm or its parameters.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored hash.
	Check(password, hash string) bool

	// ValidatePasswordStrength rejects passwords below the configured bar.
	ValidatePasswordStrength(password string) error
}
