package service

import (
	"context"
	"errors"
	"sync"
	"time"

	reserrors "reservo/internal/reservations/errors"
	"reservo/internal/reservations/repository"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
	"reservo/pkg/sanitizer"
)

type CatalogService interface {
	Create(ctx context.Context, resource *model.Resource) error
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	GetAll(ctx context.Context, orgID string, filter model.ResourceFilter, limit int, offset int64) ([]*model.Resource, int64, error)
	Delete(ctx context.Context, id string) error
}

type catalogService struct {
	repo        repository.ResourceRepository
	bookingRepo repository.BookingRepository
	cfg         *config.Config
}

func NewCatalogService(
	repo repository.ResourceRepository,
	bookingRepo repository.BookingRepository,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		repo:        repo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
	}
}

func (s *catalogService) Create(ctx context.Context, resource *model.Resource) error {
	resource.Name = sanitizer.SanitizeTitle(resource.Name)
	resource.Category = sanitizer.SanitizeLabel(resource.Category)
	resource.Location = sanitizer.SanitizeTitle(resource.Location)
	if resource.Status == "" {
		resource.Status = model.ResourceAvailable
	}
	resource.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if resource.Name == "" {
		return apperrors.InvalidInput("Resource name is required")
	}
	if resource.Kind != model.ResourceRoom && resource.Kind != model.ResourceAsset {
		return apperrors.InvalidInput("Resource kind must be room or asset")
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		return apperrors.Internal("Failed to create resource", err)
	}

	s.cfg.Log.Info("Resource created",
		"id", resource.ID,
		"name", resource.Name,
		"kind", resource.Kind,
	)
	return nil
}

func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrResourceNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}

	return resource, nil
}

func (s *catalogService) GetAll(ctx context.Context, orgID string, filter model.ResourceFilter, limit int, offset int64) ([]*model.Resource, int64, error) {
	filter.Category = sanitizer.SanitizeLabel(filter.Category)

	var count int64
	var resources []*model.Resource
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, orgID, filter)
	}()
	go func() {
		defer wg.Done()
		resources, errFind = s.repo.FindAll(ctx, orgID, filter, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve resources", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count resources", errCount)
	}

	return resources, count, nil
}

// Delete refuses while any non-terminal booking still references the
// resource; callers must cancel or wait out those bookings first.
func (s *catalogService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Resource ID cannot be empty")
	}

	active, err := s.bookingRepo.CountActiveByResource(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check resource usage", err)
	}
	if active > 0 {
		return apperrors.ResourceInUse(id, active)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, reserrors.ErrResourceNotFound) {
			return apperrors.NotFoundWithID("Resource", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid resource ID format")
		}
		return apperrors.Internal("Failed to delete resource", err)
	}

	s.cfg.Log.Info("Resource deleted", "id", id)
	return nil
}
