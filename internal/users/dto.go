package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
)

// Summary is the user shape returned on auth responses.
type Summary struct {
	ID        uuid.UUID      `json:"id"`
	Email     *string        `json:"email,omitempty"`
	Name      string         `json:"name"`
	Role      enums.UserRole `json:"role"`
	Provider  string         `json:"provider"`
	CreatedAt time.Time      `json:"created_at"`
}

// FromModel maps a persisted user onto the API summary shape.
func FromModel(user *models.User) Summary {
	if user == nil {
		return Summary{}
	}
	return Summary{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Provider:  user.Provider.String(),
		CreatedAt: user.CreatedAt,
	}
}
