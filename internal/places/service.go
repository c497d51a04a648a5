package places

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/outbox/payloads"
)

// Service is the owner-facing surface: listings plus their menu and bundles.
type Service interface {
	CreatePlace(ctx context.Context, ownerID uuid.UUID, input CreatePlaceInput) (*PlaceResponse, error)
	UpdatePlace(ctx context.Context, ownerID, placeID uuid.UUID, input UpdatePlaceInput) (*PlaceResponse, error)
	ListOwnerPlaces(ctx context.Context, ownerID uuid.UUID) ([]PlaceResponse, error)
	GetOwnerPlace(ctx context.Context, ownerID, placeID uuid.UUID) (*PlaceDetailResponse, error)
	CreateMenuItem(ctx context.Context, ownerID, placeID uuid.UUID, input CreateMenuItemInput) (*MenuItemResponse, error)
	CreateBundle(ctx context.Context, ownerID, placeID uuid.UUID, input CreateBundleInput) (*BundleResponse, error)
}

type placeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, place *models.Place) error
	Save(ctx context.Context, tx *gorm.DB, place *models.Place) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Place, error)
	FindByIDWithMenu(ctx context.Context, id uuid.UUID) (*models.Place, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Place, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	CountMenuItems(ctx context.Context, placeID uuid.UUID, ids []uuid.UUID) (int64, error)
	CreateBundle(ctx context.Context, tx *gorm.DB, bundle *models.Bundle, items []models.BundleItem) error
}

type imageUploader interface {
	UploadObject(ctx context.Context, object, contentType string, body io.Reader) (string, error)
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     placeRepository
	uploader imageUploader
	tx       transactor
	events   eventEmitter
	logg     *logger.Logger
}

// ServiceParams bundles the owner service dependencies.
type ServiceParams struct {
	Repo     placeRepository
	Uploader imageUploader
	Tx       transactor
	Events   eventEmitter
	Logger   *logger.Logger
}

// NewService constructs the owner-facing place service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("place repository is required")
	}
	if params.Uploader == nil {
		return nil, fmt.Errorf("image uploader is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transactor is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	return &service{
		repo:     params.Repo,
		uploader: params.Uploader,
		tx:       params.Tx,
		events:   params.Events,
		logg:     params.Logger,
	}, nil
}

// CreatePlace uploads the images, then commits the pending listing and its
// moderation event atomically.
func (s *service) CreatePlace(ctx context.Context, ownerID uuid.UUID, input CreatePlaceInput) (*PlaceResponse, error) {
	placeID := uuid.New()
	urls, err := s.uploadImages(ctx, placeID, input.Images)
	if err != nil {
		return nil, err
	}

	place := &models.Place{
		ID:              placeID,
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(input.Name),
		Type:            strings.TrimSpace(input.Type),
		Description:     strings.TrimSpace(input.Description),
		Amenities:       input.Amenities,
		Images:          urls,
		Location:        input.Location,
		Status:          enums.PlaceStatusPending,
		Reservable:      input.Reservable,
		ReservableHours: input.ReservableHours,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, place); err != nil {
			return err
		}
		return s.emitSubmitted(ctx, tx, place, ownerID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create place")
	}

	resp := FromPlaceModel(place)
	return &resp, nil
}

// UpdatePlace rewrites the listing and throws it back into the moderation
// queue. Uploading images replaces the whole gallery; omitting them keeps
// the existing one.
func (s *service) UpdatePlace(ctx context.Context, ownerID, placeID uuid.UUID, input UpdatePlaceInput) (*PlaceResponse, error) {
	place, err := s.loadOwned(ctx, ownerID, placeID)
	if err != nil {
		return nil, err
	}

	urls, err := s.uploadImages(ctx, place.ID, input.Images)
	if err != nil {
		return nil, err
	}

	place.Name = strings.TrimSpace(input.Name)
	place.Type = strings.TrimSpace(input.Type)
	place.Description = strings.TrimSpace(input.Description)
	place.Amenities = input.Amenities
	place.Location = input.Location
	place.Reservable = input.Reservable
	place.ReservableHours = input.ReservableHours
	if len(urls) > 0 {
		place.Images = urls
	}
	place.Status = enums.PlaceStatusPending

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Save(ctx, tx, place); err != nil {
			return err
		}
		return s.emitSubmitted(ctx, tx, place, ownerID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update place")
	}

	resp := FromPlaceModel(place)
	return &resp, nil
}

func (s *service) ListOwnerPlaces(ctx context.Context, ownerID uuid.UUID) ([]PlaceResponse, error) {
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list owner places")
	}
	out := make([]PlaceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromPlaceModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetOwnerPlace(ctx context.Context, ownerID, placeID uuid.UUID) (*PlaceDetailResponse, error) {
	place, err := s.repo.FindByIDWithMenu(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load place")
	}
	if place.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "place belongs to another owner")
	}
	detail := FromPlaceDetail(place)
	return &detail, nil
}

func (s *service) CreateMenuItem(ctx context.Context, ownerID, placeID uuid.UUID, input CreateMenuItemInput) (*MenuItemResponse, error) {
	if _, err := s.loadOwned(ctx, ownerID, placeID); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	available := true
	if input.Available != nil {
		available = *input.Available
	}
	item := &models.MenuItem{
		PlaceID:   placeID,
		Name:      strings.TrimSpace(input.Name),
		Price:     input.Price,
		Available: available,
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create menu item")
	}
	resp := FromMenuItemModel(item)
	return &resp, nil
}

func (s *service) CreateBundle(ctx context.Context, ownerID, placeID uuid.UUID, input CreateBundleInput) (*BundleResponse, error) {
	if _, err := s.loadOwned(ctx, ownerID, placeID); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	items := make([]models.BundleItem, 0, len(input.Items))
	for _, item := range input.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		ids = append(ids, item.MenuItemID)
		items = append(items, models.BundleItem{
			MenuItemID: item.MenuItemID,
			Quantity:   quantity,
		})
	}
	if len(ids) > 0 {
		n, err := s.repo.CountMenuItems(ctx, placeID, ids)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check bundle items")
		}
		if n != int64(len(ids)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle references menu items outside this place")
		}
	}

	bundle := &models.Bundle{
		PlaceID: placeID,
		Name:    strings.TrimSpace(input.Name),
		Price:   input.Price,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateBundle(ctx, tx, bundle, items)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create bundle")
	}
	resp := FromBundleModel(bundle)
	return &resp, nil
}

// loadOwned resolves the explicit not-found versus wrong-owner split.
func (s *service) loadOwned(ctx context.Context, ownerID, placeID uuid.UUID) (*models.Place, error) {
	place, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load place")
	}
	if place.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "place belongs to another owner")
	}
	return place, nil
}

func (s *service) uploadImages(ctx context.Context, placeID uuid.UUID, images []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		object := imageObjectName(placeID, image.Filename)
		url, err := s.uploader.UploadObject(ctx, object, image.ContentType, bytes.NewReader(image.Data))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *service) emitSubmitted(ctx context.Context, tx *gorm.DB, place *models.Place, ownerID uuid.UUID) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPlaceSubmitted,
		AggregateType: enums.AggregatePlace,
		AggregateID:   place.ID,
		Actor:         &outbox.ActorRef{UserID: ownerID, Role: string(enums.UserRoleOwner)},
		Data: payloads.PlaceSubmittedEvent{
			PlaceID:   place.ID,
			OwnerID:   ownerID,
			PlaceName: place.Name,
		},
	})
}

func imageObjectName(placeID uuid.UUID, filename string) string {
	base := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("places/%s/%s-%s", placeID, uuid.NewString()[:8], base)
}
