package places

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/pagination"
	"github.com/spot2go/spot2go-backend/pkg/types"
)

type fakePlaceRepo struct {
	byID        map[uuid.UUID]*models.Place
	created     []*models.Place
	saved       []*models.Place
	menuItems   []*models.MenuItem
	bundles     []*models.Bundle
	ownedItems  map[uuid.UUID]int64
	listApprove []models.Place
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{
		byID:       map[uuid.UUID]*models.Place{},
		ownedItems: map[uuid.UUID]int64{},
	}
}

func (f *fakePlaceRepo) Create(_ context.Context, _ *gorm.DB, place *models.Place) error {
	f.created = append(f.created, place)
	f.byID[place.ID] = place
	return nil
}

func (f *fakePlaceRepo) Save(_ context.Context, _ *gorm.DB, place *models.Place) error {
	f.saved = append(f.saved, place)
	f.byID[place.ID] = place
	return nil
}

func (f *fakePlaceRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Place, error) {
	place, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return place, nil
}

func (f *fakePlaceRepo) FindByIDWithMenu(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	return f.FindByID(ctx, id)
}

func (f *fakePlaceRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Place, error) {
	var out []models.Place
	for _, place := range f.byID {
		if place.OwnerID == ownerID {
			out = append(out, *place)
		}
	}
	return out, nil
}

func (f *fakePlaceRepo) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	item.ID = uuid.New()
	f.menuItems = append(f.menuItems, item)
	return nil
}

func (f *fakePlaceRepo) CountMenuItems(_ context.Context, placeID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return f.ownedItems[placeID], nil
}

func (f *fakePlaceRepo) CreateBundle(_ context.Context, _ *gorm.DB, bundle *models.Bundle, items []models.BundleItem) error {
	bundle.ID = uuid.New()
	bundle.Items = items
	f.bundles = append(f.bundles, bundle)
	return nil
}

func (f *fakePlaceRepo) ListApproved(_ context.Context, _ *pagination.Cursor, limit int) ([]models.Place, error) {
	if limit > len(f.listApprove) {
		limit = len(f.listApprove)
	}
	return f.listApprove[:limit], nil
}

func (f *fakePlaceRepo) FindApprovedByID(_ context.Context, id uuid.UUID) (*models.Place, error) {
	place, ok := f.byID[id]
	if !ok || place.Status != enums.PlaceStatusApproved {
		return nil, gorm.ErrRecordNotFound
	}
	return place, nil
}

type fakeUploader struct {
	objects []string
	err     error
}

func (f *fakeUploader) UploadObject(_ context.Context, object, _ string, _ io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.objects = append(f.objects, object)
	return "https://storage.googleapis.com/spot2go-images/" + object, nil
}

type fakeTransactor struct{}

func (fakeTransactor) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func buildService(t *testing.T, repo *fakePlaceRepo, uploader *fakeUploader, emitter *fakeEmitter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Uploader: uploader,
		Tx:       fakeTransactor{},
		Events:   emitter,
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func sampleInput() CreatePlaceInput {
	return CreatePlaceInput{
		Name:       "Quiet Corner",
		Type:       "cafe",
		Amenities:  []string{"wifi", "outlets"},
		Location:   types.Location{Address: "12 Main St", Lat: 40.1, Lng: -73.9},
		Reservable: true,
		Images: []ImageUpload{
			{Filename: "Front Door.PNG", ContentType: "image/png", Data: []byte("png-bytes")},
		},
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestCreatePlacePendingWithUploadedImages(t *testing.T) {
	repo := newFakePlaceRepo()
	uploader := &fakeUploader{}
	emitter := &fakeEmitter{}
	svc := buildService(t, repo, uploader, emitter)

	ownerID := uuid.New()
	resp, err := svc.CreatePlace(context.Background(), ownerID, sampleInput())
	if err != nil {
		t.Fatalf("create place: %v", err)
	}

	if resp.Status != enums.PlaceStatusPending {
		t.Fatalf("expected pending status, got %s", resp.Status)
	}
	if len(resp.Images) != 1 || !strings.HasPrefix(resp.Images[0], "https://storage.googleapis.com/spot2go-images/places/") {
		t.Fatalf("expected stored public image url, got %v", resp.Images)
	}
	if len(uploader.objects) != 1 || strings.Contains(uploader.objects[0], " ") {
		t.Fatalf("expected sanitized object name, got %v", uploader.objects)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventPlaceSubmitted {
		t.Fatalf("expected place_submitted event")
	}
}

func TestUpdatePlaceResetsStatusAndReplacesImages(t *testing.T) {
	repo := newFakePlaceRepo()
	ownerID := uuid.New()
	placeID := uuid.New()
	repo.byID[placeID] = &models.Place{
		ID:      placeID,
		OwnerID: ownerID,
		Name:    "Old Name",
		Status:  enums.PlaceStatusApproved,
		Images:  []string{"https://storage.googleapis.com/spot2go-images/places/old.png"},
	}
	uploader := &fakeUploader{}
	emitter := &fakeEmitter{}
	svc := buildService(t, repo, uploader, emitter)

	resp, err := svc.UpdatePlace(context.Background(), ownerID, placeID, UpdatePlaceInput{
		Name:     "New Name",
		Type:     "library",
		Location: types.Location{Address: "90 Side St", Lat: 41, Lng: -72},
		Images: []ImageUpload{
			{Filename: "extra.jpg", ContentType: "image/jpeg", Data: []byte("jpg")},
		},
	})
	if err != nil {
		t.Fatalf("update place: %v", err)
	}

	if resp.Status != enums.PlaceStatusPending {
		t.Fatalf("expected edit to reset status to pending, got %s", resp.Status)
	}
	if len(resp.Images) != 1 {
		t.Fatalf("expected new upload to replace the gallery, got %v", resp.Images)
	}
	if !strings.Contains(resp.Images[0], "extra.jpg") {
		t.Fatalf("expected the fresh upload in the gallery, got %v", resp.Images)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventPlaceSubmitted {
		t.Fatalf("expected resubmission event")
	}
}

func TestUpdatePlaceWithoutImagesKeepsGallery(t *testing.T) {
	repo := newFakePlaceRepo()
	ownerID := uuid.New()
	placeID := uuid.New()
	existing := "https://storage.googleapis.com/spot2go-images/places/old.png"
	repo.byID[placeID] = &models.Place{
		ID:      placeID,
		OwnerID: ownerID,
		Name:    "Old Name",
		Status:  enums.PlaceStatusApproved,
		Images:  []string{existing},
	}
	svc := buildService(t, repo, &fakeUploader{}, &fakeEmitter{})

	resp, err := svc.UpdatePlace(context.Background(), ownerID, placeID, UpdatePlaceInput{
		Name:     "New Name",
		Type:     "library",
		Location: types.Location{Address: "90 Side St", Lat: 41, Lng: -72},
	})
	if err != nil {
		t.Fatalf("update place: %v", err)
	}
	if len(resp.Images) != 1 || resp.Images[0] != existing {
		t.Fatalf("expected existing gallery to be retained, got %v", resp.Images)
	}
}

func TestUpdatePlaceOwnershipSplit(t *testing.T) {
	repo := newFakePlaceRepo()
	placeID := uuid.New()
	repo.byID[placeID] = &models.Place{ID: placeID, OwnerID: uuid.New()}
	svc := buildService(t, repo, &fakeUploader{}, &fakeEmitter{})

	_, err := svc.UpdatePlace(context.Background(), uuid.New(), placeID, UpdatePlaceInput{})
	expectCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.UpdatePlace(context.Background(), uuid.New(), uuid.New(), UpdatePlaceInput{})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateMenuItemDefaultsAvailable(t *testing.T) {
	repo := newFakePlaceRepo()
	ownerID := uuid.New()
	placeID := uuid.New()
	repo.byID[placeID] = &models.Place{ID: placeID, OwnerID: ownerID}
	svc := buildService(t, repo, &fakeUploader{}, &fakeEmitter{})

	resp, err := svc.CreateMenuItem(context.Background(), ownerID, placeID, CreateMenuItemInput{
		Name:  "Flat White",
		Price: decimal.RequireFromString("4.50"),
	})
	if err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	if !resp.Available {
		t.Fatalf("expected menu item to default to available")
	}
}

func TestCreateMenuItemNegativePrice(t *testing.T) {
	repo := newFakePlaceRepo()
	ownerID := uuid.New()
	placeID := uuid.New()
	repo.byID[placeID] = &models.Place{ID: placeID, OwnerID: ownerID}
	svc := buildService(t, repo, &fakeUploader{}, &fakeEmitter{})

	_, err := svc.CreateMenuItem(context.Background(), ownerID, placeID, CreateMenuItemInput{
		Name:  "Oops",
		Price: decimal.RequireFromString("-1"),
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateBundleRejectsForeignMenuItems(t *testing.T) {
	repo := newFakePlaceRepo()
	ownerID := uuid.New()
	placeID := uuid.New()
	repo.byID[placeID] = &models.Place{ID: placeID, OwnerID: ownerID}
	// the repo reports only one of the two referenced items as owned
	repo.ownedItems[placeID] = 1
	svc := buildService(t, repo, &fakeUploader{}, &fakeEmitter{})

	_, err := svc.CreateBundle(context.Background(), ownerID, placeID, CreateBundleInput{
		Name:  "Study Combo",
		Price: decimal.RequireFromString("12.00"),
		Items: []BundleItemInput{
			{MenuItemID: uuid.New()},
			{MenuItemID: uuid.New(), Quantity: 2},
		},
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateBundleDefaultsQuantity(t *testing.T) {
	repo := newFakePlaceRepo()
	ownerID := uuid.New()
	placeID := uuid.New()
	repo.byID[placeID] = &models.Place{ID: placeID, OwnerID: ownerID}
	repo.ownedItems[placeID] = 1
	svc := buildService(t, repo, &fakeUploader{}, &fakeEmitter{})

	resp, err := svc.CreateBundle(context.Background(), ownerID, placeID, CreateBundleInput{
		Name:  "Solo Combo",
		Price: decimal.RequireFromString("8.00"),
		Items: []BundleItemInput{{MenuItemID: uuid.New()}},
	})
	if err != nil {
		t.Fatalf("create bundle: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Quantity != 1 {
		t.Fatalf("expected quantity defaulted to 1, got %+v", resp.Items)
	}
}
