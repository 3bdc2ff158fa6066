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
	"reservo/pkg/events"
	"reservo/pkg/middleware"
	"reservo/pkg/model"
	"reservo/pkg/sanitizer"

	"github.com/google/uuid"
)

type ResolveConflictRequest struct {
	ResolvedBy string `json:"resolved_by" validate:"required"`
	Action     string `json:"action" validate:"required"`
	Notes      string `json:"notes,omitempty"`
}

type ConflictService interface {
	Record(ctx context.Context, conflict *model.BookingConflict) (*model.BookingConflict, error)
	RecordMaintenanceHold(ctx context.Context, hold *MaintenanceHold) (*model.BookingConflict, error)
	GetAll(ctx context.Context, orgID string, resolved *bool, limit int, offset int64) ([]*model.BookingConflict, int64, error)
	Resolve(ctx context.Context, id string, req *ResolveConflictRequest) (*model.BookingConflict, error)
}

// MaintenanceHold is the payload the facilities service publishes when a
// resource is pulled for maintenance over a window.
type MaintenanceHold struct {
	OrgID        string             `json:"org_id"`
	ResourceID   string             `json:"resource_id"`
	ResourceType model.ResourceKind `json:"resource_type"`
	StartTime    time.Time          `json:"start_time"`
	EndTime      time.Time          `json:"end_time"`
	Reason       string             `json:"reason,omitempty"`
}

type conflictService struct {
	repo        repository.ConflictRepository
	bookingRepo repository.BookingRepository
	publisher   EventPublisher
	cfg         *config.Config
}

func NewConflictService(
	repo repository.ConflictRepository,
	bookingRepo repository.BookingRepository,
	publisher EventPublisher,
	cfg *config.Config,
) ConflictService {
	return &conflictService{
		repo:        repo,
		bookingRepo: bookingRepo,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *conflictService) Record(ctx context.Context, conflict *model.BookingConflict) (*model.BookingConflict, error) {
	if conflict.ResourceID == "" {
		return nil, apperrors.InvalidInput("resource_id is required")
	}
	if conflict.ConflictType == "" {
		return nil, apperrors.InvalidInput("conflict_type is required")
	}
	if !conflict.PeriodEnd.After(conflict.PeriodStart) {
		return nil, apperrors.InvalidInput("period_end must be after period_start")
	}
	if conflict.ConflictType != model.ConflictMaintenance && conflict.Booking2ID == "" {
		return nil, apperrors.InvalidInput("booking2_id is required for booking-to-booking conflicts")
	}

	conflict.ID = uuid.NewString()
	conflict.Resolved = false
	conflict.Notes = sanitizer.SanitizeNotes(conflict.Notes)

	if err := s.repo.Create(ctx, conflict); err != nil {
		return nil, apperrors.Internal("Failed to record conflict", err)
	}

	s.publishConflictEvent(ctx, conflict)

	s.cfg.Log.Info("Conflict recorded",
		"id", conflict.ID,
		"resource_id", conflict.ResourceID,
		"conflict_type", conflict.ConflictType,
	)
	return conflict, nil
}

// RecordMaintenanceHold turns a maintenance window into conflict records for
// every booking it collides with. No bookings hit means nothing to record.
func (s *conflictService) RecordMaintenanceHold(ctx context.Context, hold *MaintenanceHold) (*model.BookingConflict, error) {
	if hold.ResourceID == "" {
		return nil, apperrors.InvalidInput("resource_id is required")
	}
	if !hold.EndTime.After(hold.StartTime) {
		return nil, apperrors.InvalidInput("maintenance window end must be after start")
	}

	colliding, err := s.bookingRepo.FindOverlapping(ctx, hold.ResourceID, hold.StartTime, hold.EndTime, "", s.cfg.OverlapScanLimit)
	if err != nil {
		return nil, apperrors.Internal("Failed to scan maintenance window", err)
	}
	if len(colliding) == 0 {
		return nil, nil
	}

	var last *model.BookingConflict
	for _, booking := range colliding {
		conflict := &model.BookingConflict{
			OrgID:        hold.OrgID,
			ResourceType: hold.ResourceType,
			ResourceID:   hold.ResourceID,
			Booking1ID:   booking.ID,
			PeriodStart:  hold.StartTime,
			PeriodEnd:    hold.EndTime,
			ConflictType: model.ConflictMaintenance,
			Notes:        sanitizer.SanitizeNotes(hold.Reason),
		}
		recorded, err := s.Record(ctx, conflict)
		if err != nil {
			return nil, err
		}
		last = recorded
	}

	s.cfg.Log.Info("Maintenance hold processed",
		"resource_id", hold.ResourceID,
		"conflicts_recorded", len(colliding),
	)
	return last, nil
}

func (s *conflictService) GetAll(ctx context.Context, orgID string, resolved *bool, limit int, offset int64) ([]*model.BookingConflict, int64, error) {
	var count int64
	var conflicts []*model.BookingConflict
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, orgID, resolved)
	}()
	go func() {
		defer wg.Done()
		conflicts, errFind = s.repo.FindAll(ctx, orgID, resolved, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve conflicts", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count conflicts", errCount)
	}

	return conflicts, count, nil
}

func (s *conflictService) Resolve(ctx context.Context, id string, req *ResolveConflictRequest) (*model.BookingConflict, error) {
	if req.ResolvedBy == "" {
		return nil, apperrors.InvalidInput("resolved_by is required")
	}
	if req.Action == "" {
		return nil, apperrors.InvalidInput("action is required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrConflictNotFound) {
			return nil, apperrors.NotFoundWithID("Conflict", id)
		}
		return nil, apperrors.Internal("Failed to retrieve conflict", err)
	}

	// Resolving twice is a no-op, matching cancel semantics.
	if existing.Resolved {
		return existing, nil
	}

	err = s.repo.Resolve(ctx, id, req.ResolvedBy, req.Action, sanitizer.SanitizeNotes(req.Notes))
	if err != nil {
		if errors.Is(err, reserrors.ErrConflictNotFound) {
			return nil, apperrors.NotFoundWithID("Conflict", id)
		}
		return nil, apperrors.Internal("Failed to resolve conflict", err)
	}

	resolved, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to reload conflict", err)
	}

	s.cfg.Log.Info("Conflict resolved",
		"id", id,
		"resolved_by", req.ResolvedBy,
		"action", req.Action,
	)
	return resolved, nil
}

func (s *conflictService) publishConflictEvent(ctx context.Context, conflict *model.BookingConflict) {
	if s.publisher == nil {
		return
	}

	msg := events.NewMessage().
		WithKey(conflict.ResourceID).
		WithEventType(events.EventConflictRecorded).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithValue(conflict).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish conflict event",
			"conflict_id", conflict.ID,
			"error", err,
		)
	}
}
