package service

import (
	"context"
	"time"

	"reservo/internal/reservations/repository"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
)

// BundleRequest books a room and/or a set of assets against one external
// domain record in a single call.
type BundleRequest struct {
	OrgID     string    `json:"org_id" validate:"required"`
	BookedBy  string    `json:"booked_by" validate:"required"`
	Title     string    `json:"title" validate:"required"`
	Purpose   string    `json:"purpose,omitempty"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`

	RoomID   string   `json:"room_id,omitempty"`
	AssetIDs []string `json:"asset_ids,omitempty"`
}

// BundleFailure explains why one resource in the bundle was not booked.
type BundleFailure struct {
	ResourceID string `json:"resource_id"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

// BundleResult reports partial success. Bookings that landed stay booked
// even when others in the same bundle failed; the caller decides whether to
// cancel the survivors.
type BundleResult struct {
	RecordID string           `json:"record_id"`
	Booked   []*model.Booking `json:"booked"`
	Failed   []BundleFailure  `json:"failed,omitempty"`
}

type BridgeService interface {
	BookForRecord(ctx context.Context, recordID string, req *BundleRequest) (*BundleResult, error)
	GetForRecord(ctx context.Context, recordID string) ([]*model.Booking, error)
	CancelForRecord(ctx context.Context, recordID, cancelledBy, reason string) ([]*model.Booking, error)
}

type bridgeService struct {
	reservations ReservationService
	repo         repository.BookingRepository
	cfg          *config.Config
}

func NewBridgeService(
	reservations ReservationService,
	repo repository.BookingRepository,
	cfg *config.Config,
) BridgeService {
	return &bridgeService{
		reservations: reservations,
		repo:         repo,
		cfg:          cfg,
	}
}

func (s *bridgeService) BookForRecord(ctx context.Context, recordID string, req *BundleRequest) (*BundleResult, error) {
	if recordID == "" {
		return nil, apperrors.InvalidInput("Record ID cannot be empty")
	}
	if req.RoomID == "" && len(req.AssetIDs) == 0 {
		return nil, apperrors.InvalidInput("Bundle must name a room or at least one asset")
	}

	resourceIDs := make([]string, 0, 1+len(req.AssetIDs))
	if req.RoomID != "" {
		resourceIDs = append(resourceIDs, req.RoomID)
	}
	resourceIDs = append(resourceIDs, req.AssetIDs...)

	result := &BundleResult{RecordID: recordID}

	// Each resource is booked independently; one failure never unwinds the
	// bookings that already landed.
	for _, resourceID := range resourceIDs {
		booking := &model.Booking{
			OrgID:           req.OrgID,
			ResourceID:      resourceID,
			BookedBy:        req.BookedBy,
			Title:           req.Title,
			Purpose:         req.Purpose,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			RelatedRecordID: recordID,
		}

		created, err := s.reservations.Create(ctx, booking)
		if err != nil {
			result.Failed = append(result.Failed, toBundleFailure(resourceID, err))
			continue
		}
		result.Booked = append(result.Booked, created.Bookings...)
	}

	s.cfg.Log.Info("Bundle booking completed",
		"record_id", recordID,
		"booked", len(result.Booked),
		"failed", len(result.Failed),
	)
	return result, nil
}

func toBundleFailure(resourceID string, err error) BundleFailure {
	appErr := apperrors.AsAppError(err)
	return BundleFailure{
		ResourceID: resourceID,
		Code:       appErr.Code,
		Reason:     appErr.Message,
	}
}

func (s *bridgeService) GetForRecord(ctx context.Context, recordID string) ([]*model.Booking, error) {
	if recordID == "" {
		return nil, apperrors.InvalidInput("Record ID cannot be empty")
	}

	bookings, err := s.repo.FindByRelatedRecord(ctx, recordID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve record bookings", err)
	}

	deriveStatuses(bookings)
	return bookings, nil
}

// CancelForRecord cancels every still-active booking tied to the record.
// Bookings already terminal are left alone rather than treated as errors, so
// the operation can be retried safely.
func (s *bridgeService) CancelForRecord(ctx context.Context, recordID, cancelledBy, reason string) ([]*model.Booking, error) {
	if recordID == "" {
		return nil, apperrors.InvalidInput("Record ID cannot be empty")
	}

	bookings, err := s.repo.FindByRelatedRecord(ctx, recordID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve record bookings", err)
	}

	var cancelled []*model.Booking
	for _, booking := range bookings {
		if booking.Status.IsTerminal() {
			continue
		}
		if booking.Status == model.StatusCheckedOut {
			s.cfg.Log.Warn("Skipping cancel of checked out booking",
				"booking_id", booking.ID,
				"record_id", recordID,
			)
			continue
		}

		b, err := s.reservations.Cancel(ctx, booking.ID, cancelledBy, reason)
		if err != nil {
			s.cfg.Log.Error("Failed to cancel record booking",
				"booking_id", booking.ID,
				"record_id", recordID,
				"error", err,
			)
			continue
		}
		cancelled = append(cancelled, b)
	}

	s.cfg.Log.Info("Record bookings cancelled",
		"record_id", recordID,
		"cancelled", len(cancelled),
		"total", len(bookings),
	)
	return cancelled, nil
}
