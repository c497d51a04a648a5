package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	Email     *string
	Role      enums.UserRole
	Name      string
	CreatedAt time.Time
}

// AccessTokenClaims is the typed JWT issued to clients. Handlers trust the
// decoded claims as-is; a role or name change is only visible after the
// client obtains a fresh token.
type AccessTokenClaims struct {
	UserID        uuid.UUID      `json:"id"`
	Email         *string        `json:"email,omitempty"`
	Role          enums.UserRole `json:"role"`
	Name          string         `json:"name"`
	AccountOpened time.Time      `json:"createdAt"`
	jwt.RegisteredClaims
}
