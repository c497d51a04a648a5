package devices

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

type fakeDeviceRepo struct {
	created []*models.UserDevice
	seen    map[string]bool
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{seen: map[string]bool{}}
}

func (f *fakeDeviceRepo) Create(_ context.Context, device *models.UserDevice) error {
	k := device.UserID.String() + "|" + device.FCMToken
	if f.seen[k] {
		return errors.New(`duplicate key value violates unique constraint "ux_user_devices_user_token"`)
	}
	f.seen[k] = true
	f.created = append(f.created, device)
	return nil
}

func buildService(t *testing.T, repo *fakeDeviceRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestRegisterStoresToken(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := buildService(t, repo)
	userID := uuid.New()

	resp, err := svc.Register(context.Background(), userID, RegisterDeviceRequest{FCMToken: "  fcm-token-abcdef  "})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Message != "device registered" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if len(repo.created) != 1 || repo.created[0].FCMToken != "fcm-token-abcdef" {
		t.Fatalf("expected trimmed token stored, got %+v", repo.created)
	}
}

func TestRegisterRepeatTokenIsNoOp(t *testing.T) {
	repo := newFakeDeviceRepo()
	svc := buildService(t, repo)
	userID := uuid.New()
	req := RegisterDeviceRequest{FCMToken: "fcm-token-abcdef"}

	if _, err := svc.Register(context.Background(), userID, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	resp, err := svc.Register(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if resp.Message != "device already registered" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one stored row, got %d", len(repo.created))
	}
}

func TestRegisterBlankToken(t *testing.T) {
	svc := buildService(t, newFakeDeviceRepo())

	_, err := svc.Register(context.Background(), uuid.New(), RegisterDeviceRequest{FCMToken: "   "})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
