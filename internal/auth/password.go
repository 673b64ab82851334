package auth

import "golang.org/x/crypto/bcrypt"

// MinHashCost is the lowest bcrypt cost accepted for stored credentials.
const MinHashCost = 10

// HashPassword hashes a plaintext password with the configured cost.
// Costs below MinHashCost are raised to it.
func HashPassword(password string, cost int) (string, error) {
	if cost < MinHashCost {
		cost = MinHashCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its stored bcrypt hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
