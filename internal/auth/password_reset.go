package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/outbox/payloads"
	"github.com/spot2go/spot2go-backend/pkg/security"
)

const (
	resetTokenTTL = time.Hour

	// The request endpoint answers identically whether or not the email
	// exists, so the response never leaks account presence.
	resetRequestedMessage = "if that email is registered, a reset link is on its way"
	resetCompletedMessage = "password updated"
)

// PasswordResetService issues and redeems single-use reset tokens.
type PasswordResetService interface {
	Request(ctx context.Context, req RequestPasswordResetRequest) (string, error)
	Reset(ctx context.Context, req ResetPasswordRequest) (*ResetPasswordResponse, error)
}

type resetUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetTokenHash(ctx context.Context, digest string, now time.Time) (*models.User, error)
	SetResetToken(ctx context.Context, tx *gorm.DB, id uuid.UUID, digest string, expires time.Time) error
	CompletePasswordReset(ctx context.Context, tx *gorm.DB, id uuid.UUID, passwordHash string) error
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type passwordResetService struct {
	users  resetUserRepository
	tx     transactor
	events eventEmitter
	jwtCfg config.JWTConfig
	logg   *logger.Logger
}

// PasswordResetServiceParams bundles the reset flow dependencies.
type PasswordResetServiceParams struct {
	UserRepo   resetUserRepository
	Transactor transactor
	Events     eventEmitter
	JWTConfig  config.JWTConfig
	Logger     *logger.Logger
}

// NewPasswordResetService constructs the reset flow service.
func NewPasswordResetService(params PasswordResetServiceParams) (PasswordResetService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Transactor == nil {
		return nil, fmt.Errorf("transactor is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	return &passwordResetService{
		users:  params.UserRepo,
		tx:     params.Transactor,
		events: params.Events,
		jwtCfg: params.JWTConfig,
		logg:   params.Logger,
	}, nil
}

// Request stores a hashed single-use token and queues the reset email.
// The returned message is the same for unknown emails and OAuth-only
// accounts.
func (s *passwordResetService) Request(ctx context.Context, req RequestPasswordResetRequest) (string, error) {
	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resetRequestedMessage, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.Provider != enums.AuthProviderLocal {
		// Social accounts reset nothing here. Keep the generic reply.
		return resetRequestedMessage, nil
	}

	token, digest, err := security.GenerateResetToken()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	expires := time.Now().UTC().Add(resetTokenTTL)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.SetResetToken(ctx, tx, user.ID, digest, expires); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPasswordResetRequested,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data: payloads.PasswordResetRequestedEvent{
				UserID:    user.ID,
				Email:     email,
				Token:     token,
				ExpiresAt: expires,
			},
		})
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}
	return resetRequestedMessage, nil
}

// Reset redeems a token, swaps the password and logs the user in.
func (s *passwordResetService) Reset(ctx context.Context, req ResetPasswordRequest) (*ResetPasswordResponse, error) {
	digest := security.HashResetToken(req.Token)
	user, err := s.users.FindByResetTokenHash(ctx, digest, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired reset token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.CompletePasswordReset(ctx, tx, user.ID, hash); err != nil {
			return err
		}
		email := ""
		if user.Email != nil {
			email = *user.Email
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPasswordResetCompleted,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID, Role: string(user.Role)},
			Data: payloads.PasswordResetCompletedEvent{
				UserID: user.ID,
				Email:  email,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete password reset")
	}

	token, err := mintToken(s.jwtCfg, user)
	if err != nil {
		return nil, err
	}
	return &ResetPasswordResponse{
		Message: resetCompletedMessage,
		Token:   token,
	}, nil
}
