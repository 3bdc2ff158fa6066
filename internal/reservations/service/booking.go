package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	reserrors "reservo/internal/reservations/errors"
	"reservo/internal/reservations/repository"
	"reservo/internal/reservations/validator"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/events"
	"reservo/pkg/model"
	"reservo/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// SkippedOccurrence is one slot of a recurring request that could not be
// booked because existing bookings already occupy it.
type SkippedOccurrence struct {
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	CollidingBookingIDs []string  `json:"colliding_booking_ids"`
}

// CreateResult reports what a create request actually produced. A single
// booking yields one element in Bookings and an empty Skipped list; a
// recurring request may yield both.
type CreateResult struct {
	Bookings []*model.Booking    `json:"bookings"`
	Skipped  []SkippedOccurrence `json:"skipped,omitempty"`
}

type ReservationService interface {
	Create(ctx context.Context, booking *model.Booking) (*CreateResult, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, orgID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, id, cancelledBy, reason string) (*model.Booking, error)
	Approve(ctx context.Context, id, approvedBy string) (*model.Booking, error)
	SearchByResource(ctx context.Context, resourceID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	Checkout(ctx context.Context, id string, req *CheckoutRequest) (*model.Booking, error)
	Return(ctx context.Context, id string, req *ReturnRequest) (*model.Booking, error)
}

type reservationService struct {
	repo         repository.BookingRepository
	resourceRepo repository.ResourceRepository
	lockRepo     repository.SlotLockRepository
	validator    *validator.BookingValidator
	publisher    EventPublisher
	cfg          *config.Config
}

func NewReservationService(
	repo repository.BookingRepository,
	resourceRepo repository.ResourceRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:         repo,
		resourceRepo: resourceRepo,
		lockRepo:     lockRepo,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, booking *model.Booking) (*CreateResult, error) {
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	resource, err := s.loadResource(ctx, booking.ResourceID)
	if err != nil {
		return nil, err
	}
	if !resource.Bookable() {
		return nil, apperrors.PolicyViolation([]string{
			fmt.Sprintf("resource %q is not open for booking", resource.Name),
		})
	}

	s.applyDefaults(booking, resource)

	now := time.Now().UTC()
	slots := expandRecurrence(booking.Recurrence, booking.StartTime, booking.EndTime, s.cfg.MaxOccurrences)
	if len(slots) == 0 {
		return nil, apperrors.Validation("Recurrence pattern produces no occurrences", nil)
	}

	// Policy is all-or-nothing: one occurrence outside the rule rejects the
	// whole request.
	for _, slot := range slots {
		if violations := evaluatePolicy(resource.Rule, slot.Start, slot.End, now); len(violations) > 0 {
			return nil, apperrors.PolicyViolation(violations)
		}
	}

	recurring := booking.Recurrence != nil
	seriesID := ""
	if recurring {
		seriesID = uuid.NewString()
	}

	release, err := s.acquireSlotLock(ctx, booking.ResourceID)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &CreateResult{}
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, slot := range slots {
			colliding, err := s.collidingBookingIDs(sessCtx, booking.ResourceID, slot.Start, slot.End, "")
			if err != nil {
				return err
			}

			if len(colliding) > 0 {
				if !recurring {
					return apperrors.AvailabilityConflict(colliding)
				}
				result.Skipped = append(result.Skipped, SkippedOccurrence{
					StartTime:           slot.Start,
					EndTime:             slot.End,
					CollidingBookingIDs: colliding,
				})
				continue
			}

			b := s.materialize(booking, resource, slot, seriesID)
			if err := s.repo.Create(sessCtx, b); err != nil {
				return apperrors.Internal("Failed to create booking", err)
			}
			result.Bookings = append(result.Bookings, b)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"resource_id", booking.ResourceID,
			"error", err,
		)
		return nil, err
	}

	for _, b := range result.Bookings {
		s.publishBookingEvent(ctx, events.EventBookingCreated, b, b.BookedBy)
	}

	s.cfg.Log.Info("Booking request completed",
		"resource_id", booking.ResourceID,
		"created", len(result.Bookings),
		"skipped", len(result.Skipped),
		"series_id", seriesID,
	)
	return result, nil
}

// materialize builds the persisted booking for one occurrence. The caller's
// struct stays untouched so every occurrence starts from the same template.
func (s *reservationService) materialize(template *model.Booking, resource *model.Resource, slot occurrence, seriesID string) *model.Booking {
	b := *template
	b.ID = ""
	b.StartTime = slot.Start
	b.EndTime = slot.End
	b.SeriesID = seriesID
	b.EstimatedCost = estimatedCost(resource.HourlyRate, slot.Start, slot.End)

	if resource.Rule.RequiresApproval {
		b.Status = model.StatusTentative
	} else {
		b.Status = model.StatusConfirmed
	}
	return &b
}

func estimatedCost(hourlyRate float64, start, end time.Time) float64 {
	if hourlyRate <= 0 {
		return 0
	}
	return hourlyRate * end.Sub(start).Hours()
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id)
	}

	booking.Status = booking.EffectiveStatus(time.Now().UTC())
	return booking, nil
}

func (s *reservationService) GetAll(ctx context.Context, orgID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, orgID)
	}()
	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, orgID, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", errCount)
	}

	deriveStatuses(bookings)
	return bookings, count, nil
}

func (s *reservationService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if err := s.validator.ValidateUpdate(updates); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Booking update validation failed", map[string]any{
				"violations": verrs.Messages(),
			})
		}
		return nil, apperrors.Internal("Failed to validate update", err)
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id)
	}

	if booking.Status.IsTerminal() {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), "update")
	}
	if updates.ChangesInterval() && booking.Status == model.StatusCheckedOut {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), "reschedule")
	}

	applyUpdate(booking, updates)

	if !updates.ChangesInterval() {
		if err := s.repo.Update(ctx, id, booking); err != nil {
			return nil, s.translateRepoError(err, id)
		}
		return booking, nil
	}

	// Rescheduling re-runs the same policy and availability gauntlet as
	// create, with the booking's own previous slot excluded.
	resource, err := s.loadResource(ctx, booking.ResourceID)
	if err != nil {
		return nil, err
	}
	if violations := evaluatePolicy(resource.Rule, booking.StartTime, booking.EndTime, time.Now().UTC()); len(violations) > 0 {
		return nil, apperrors.PolicyViolation(violations)
	}
	booking.EstimatedCost = estimatedCost(resource.HourlyRate, booking.StartTime, booking.EndTime)

	release, err := s.acquireSlotLock(ctx, booking.ResourceID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		colliding, err := s.collidingBookingIDs(sessCtx, booking.ResourceID, booking.StartTime, booking.EndTime, id)
		if err != nil {
			return err
		}
		if len(colliding) > 0 {
			return apperrors.AvailabilityConflict(colliding)
		}
		return s.repo.Update(sessCtx, id, booking)
	})
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking rescheduled",
		"id", id,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	return booking, nil
}

func applyUpdate(booking *model.Booking, updates *model.BookingUpdate) {
	if updates.Title != "" {
		booking.Title = sanitizer.SanitizeTitle(updates.Title)
	}
	if updates.Purpose != nil {
		booking.Purpose = sanitizer.SanitizeTitle(*updates.Purpose)
	}
	if updates.StartTime != nil {
		booking.StartTime = updates.StartTime.UTC()
	}
	if updates.EndTime != nil {
		booking.EndTime = updates.EndTime.UTC()
	}
	if updates.AttendeeCount != nil {
		booking.AttendeeCount = *updates.AttendeeCount
	}
	if updates.Notes != nil {
		booking.Notes = sanitizer.SanitizeNotes(*updates.Notes)
	}
}

func (s *reservationService) Cancel(ctx context.Context, id, cancelledBy, reason string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id)
	}

	// Cancelling twice is a no-op, not an error.
	if booking.Status == model.StatusCancelled {
		return booking, nil
	}
	if booking.Status == model.StatusReturned {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), "cancel")
	}
	if booking.Status == model.StatusCheckedOut {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), "cancel")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.Status = model.StatusCancelled
	booking.CancelledAt = &now
	booking.CancelledBy = cancelledBy
	booking.CancellationReason = sanitizer.SanitizeNotes(reason)

	if err := s.repo.Update(ctx, id, booking); err != nil {
		return nil, s.translateRepoError(err, id)
	}

	s.publishBookingEvent(ctx, events.EventBookingCancelled, booking, cancelledBy)

	s.cfg.Log.Info("Booking cancelled",
		"id", id,
		"cancelled_by", cancelledBy,
	)
	return booking, nil
}

// Approve confirms a tentative booking. The slot is already held by the
// tentative booking, so no availability re-check is needed.
func (s *reservationService) Approve(ctx context.Context, id, approvedBy string) (*model.Booking, error) {
	if approvedBy == "" {
		return nil, apperrors.InvalidInput("approved_by is required")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id)
	}

	// Approving twice is a no-op, not an error.
	if booking.Status == model.StatusConfirmed {
		return booking, nil
	}
	if booking.Status != model.StatusTentative {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), "approve")
	}

	booking.Status = model.StatusConfirmed

	if err := s.repo.Update(ctx, id, booking); err != nil {
		return nil, s.translateRepoError(err, id)
	}

	s.publishBookingEvent(ctx, events.EventBookingConfirmed, booking, approvedBy)

	s.cfg.Log.Info("Booking approved",
		"id", id,
		"approved_by", approvedBy,
	)
	return booking, nil
}

func (s *reservationService) SearchByResource(ctx context.Context, resourceID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if resourceID == "" {
		return nil, 0, apperrors.InvalidInput("Resource ID cannot be empty")
	}
	if startTime != nil && endTime != nil && !endTime.After(*startTime) {
		return nil, 0, apperrors.InvalidInput("end_time must be after start_time")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByResource(ctx, resourceID, startTime, endTime)
	}()
	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByResource(ctx, resourceID, startTime, endTime, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to search bookings", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", errCount)
	}

	deriveStatuses(bookings)
	return bookings, count, nil
}

func deriveStatuses(bookings []*model.Booking) {
	now := time.Now().UTC()
	for _, b := range bookings {
		b.Status = b.EffectiveStatus(now)
	}
}

func (s *reservationService) sanitize(booking *model.Booking) {
	booking.Title = sanitizer.SanitizeTitle(booking.Title)
	booking.Purpose = sanitizer.SanitizeTitle(booking.Purpose)
	booking.Notes = sanitizer.SanitizeNotes(booking.Notes)
	booking.StartTime = booking.StartTime.UTC()
	booking.EndTime = booking.EndTime.UTC()
}

func (s *reservationService) applyDefaults(booking *model.Booking, resource *model.Resource) {
	if booking.BookingType == "" {
		booking.BookingType = model.BookingType(resource.Kind)
	}
	if booking.OrgID == "" {
		booking.OrgID = resource.OrgID
	}
}

func (s *reservationService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Booking validation failed", map[string]any{
				"violations": verrs.Messages(),
			})
		}
		return apperrors.Internal("Failed to validate booking", err)
	}
	return nil
}

func (s *reservationService) loadResource(ctx context.Context, resourceID string) (*model.Resource, error) {
	resource, err := s.resourceRepo.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, reserrors.ErrResourceNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", resourceID)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return resource, nil
}

// acquireSlotLock serializes writers per resource. A held lock means another
// request is mid-flight on the same resource; callers get a conflict rather
// than a wait.
func (s *reservationService) acquireSlotLock(ctx context.Context, resourceID string) (func(), error) {
	lockID := "slot_lock_" + resourceID
	err := s.lockRepo.Create(ctx, &model.SlotLock{ID: lockID})
	if err != nil {
		if s.lockRepo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Another booking request for this resource is in progress")
		}
		return nil, apperrors.Internal("Failed to acquire slot lock", err)
	}

	return func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}, nil
}

func (s *reservationService) translateRepoError(err error, id string) error {
	if errors.Is(err, reserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, reserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Booking operation failed", err)
}
