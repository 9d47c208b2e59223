package auth

import "github.com/reelnet/backend/internal/models"

// TokenValidator defines the contract for session validation. This enables
// mocking for unit tests without requiring a real database.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.User, error)
}

// Ensure Service implements TokenValidator
var _ TokenValidator = (*Service)(nil)
