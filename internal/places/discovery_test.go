package places

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/pagination"
)

func TestListApprovedPaginates(t *testing.T) {
	repo := newFakePlaceRepo()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		repo.listApprove = append(repo.listApprove, models.Place{
			ID:        uuid.New(),
			Name:      "Place",
			Status:    enums.PlaceStatusApproved,
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}
	svc, err := NewDiscoveryService(repo)
	if err != nil {
		t.Fatalf("build discovery: %v", err)
	}

	resp, err := svc.ListApproved(context.Background(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(resp.Places) != 2 {
		t.Fatalf("expected capped page, got %d", len(resp.Places))
	}
	if resp.NextCursor == "" {
		t.Fatalf("expected next cursor when more rows exist")
	}

	cursor, err := pagination.ParseCursor(resp.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor.ID != resp.Places[1].ID {
		t.Fatalf("cursor should point at the last returned row")
	}
}

func TestListApprovedRejectsBadCursor(t *testing.T) {
	svc, _ := NewDiscoveryService(newFakePlaceRepo())

	_, err := svc.ListApproved(context.Background(), pagination.Params{Cursor: "not-base64!!"})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGetApprovedHidesPending(t *testing.T) {
	repo := newFakePlaceRepo()
	placeID := uuid.New()
	repo.byID[placeID] = &models.Place{ID: placeID, Status: enums.PlaceStatusPending}
	svc, _ := NewDiscoveryService(repo)

	_, err := svc.GetApproved(context.Background(), placeID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetApprovedReturnsMenu(t *testing.T) {
	repo := newFakePlaceRepo()
	placeID := uuid.New()
	repo.byID[placeID] = &models.Place{
		ID:     placeID,
		Status: enums.PlaceStatusApproved,
		MenuItems: []models.MenuItem{
			{ID: uuid.New(), PlaceID: placeID, Name: "Espresso", Available: true},
		},
	}
	svc, _ := NewDiscoveryService(repo)

	detail, err := svc.GetApproved(context.Background(), placeID)
	if err != nil {
		t.Fatalf("get approved: %v", err)
	}
	if len(detail.MenuItems) != 1 || detail.MenuItems[0].Name != "Espresso" {
		t.Fatalf("expected menu attached, got %+v", detail.MenuItems)
	}
}
