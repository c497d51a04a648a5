package devices

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/db"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	apperrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

// RegisterDeviceRequest carries the FCM token from the client.
type RegisterDeviceRequest struct {
	FCMToken string `json:"fcm_token" validate:"required,min=10"`
}

// RegisterDeviceResponse acknowledges the registration.
type RegisterDeviceResponse struct {
	Message string `json:"message"`
}

// Service registers client devices for push delivery.
type Service interface {
	Register(ctx context.Context, userID uuid.UUID, req RegisterDeviceRequest) (*RegisterDeviceResponse, error)
}

type deviceRepository interface {
	Create(ctx context.Context, device *models.UserDevice) error
}

type service struct {
	repo deviceRepository
	logg *logger.Logger
}

// ServiceParams bundles the device service dependencies.
type ServiceParams struct {
	Repo   deviceRepository
	Logger *logger.Logger
}

// NewService constructs the device service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

// Register stores the token. Re-registering the same token for the same
// user is a no-op rather than an error so clients can call it on every
// launch.
func (s *service) Register(ctx context.Context, userID uuid.UUID, req RegisterDeviceRequest) (*RegisterDeviceResponse, error) {
	token := strings.TrimSpace(req.FCMToken)
	if token == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "fcm_token is required")
	}

	device := &models.UserDevice{UserID: userID, FCMToken: token}
	if err := s.repo.Create(ctx, device); err != nil {
		if db.IsUniqueViolation(err, "ux_user_devices_user_token") {
			return &RegisterDeviceResponse{Message: "device already registered"}, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to register device")
	}
	return &RegisterDeviceResponse{Message: "device registered"}, nil
}
