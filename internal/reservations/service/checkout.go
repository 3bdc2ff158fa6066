package service

import (
	"context"
	"time"

	apperrors "reservo/pkg/errors"
	"reservo/pkg/events"
	"reservo/pkg/model"
	"reservo/pkg/sanitizer"
)

type CheckoutRequest struct {
	CheckedOutBy string `json:"checked_out_by" validate:"required"`
	Condition    string `json:"condition,omitempty"`
}

type ReturnRequest struct {
	ReturnedBy        string `json:"returned_by" validate:"required"`
	Condition         string `json:"condition,omitempty"`
	DamageReported    bool   `json:"damage_reported,omitempty"`
	DamageDescription string `json:"damage_description,omitempty"`
}

// Checkout hands the asset to the requester. Only a confirmed asset booking
// can be checked out; rooms have no physical custody to transfer.
func (s *reservationService) Checkout(ctx context.Context, id string, req *CheckoutRequest) (*model.Booking, error) {
	if req.CheckedOutBy == "" {
		return nil, apperrors.InvalidInput("checked_out_by is required")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id)
	}

	if booking.BookingType != model.BookingAsset {
		return nil, apperrors.InvalidInput("Only asset bookings can be checked out")
	}

	resource, err := s.loadResource(ctx, booking.ResourceID)
	if err != nil {
		return nil, err
	}
	if !resource.Rule.CheckoutRequired {
		return nil, apperrors.InvalidInput("Resource does not track physical checkout")
	}

	if booking.Status != model.StatusConfirmed {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), "checkout")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.Status = model.StatusCheckedOut
	booking.CheckedOutAt = &now
	booking.CheckedOutBy = req.CheckedOutBy
	booking.ConditionOnCheckout = sanitizer.SanitizeNotes(req.Condition)

	if err := s.repo.Update(ctx, id, booking); err != nil {
		return nil, s.translateRepoError(err, id)
	}

	if err := s.resourceRepo.UpdateStatus(ctx, booking.ResourceID, model.ResourceInUse); err != nil {
		s.cfg.Log.Warn("Failed to mark resource in use",
			"resource_id", booking.ResourceID,
			"error", err,
		)
	}

	s.publishBookingEvent(ctx, events.EventAssetCheckedOut, booking, req.CheckedOutBy)

	s.cfg.Log.Info("Asset checked out",
		"id", id,
		"resource_id", booking.ResourceID,
		"checked_out_by", req.CheckedOutBy,
	)
	return booking, nil
}

// Return closes the custody loop. Overdue is a read-time view of checked_out,
// so an overdue asset returns through the same path.
func (s *reservationService) Return(ctx context.Context, id string, req *ReturnRequest) (*model.Booking, error) {
	if req.ReturnedBy == "" {
		return nil, apperrors.InvalidInput("returned_by is required")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id)
	}

	if booking.Status != model.StatusCheckedOut {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), "return")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.Status = model.StatusReturned
	booking.ReturnedAt = &now
	booking.ReturnedBy = req.ReturnedBy
	booking.ConditionOnReturn = sanitizer.SanitizeNotes(req.Condition)
	booking.DamageReported = req.DamageReported
	booking.DamageDescription = sanitizer.SanitizeNotes(req.DamageDescription)

	if err := s.repo.Update(ctx, id, booking); err != nil {
		return nil, s.translateRepoError(err, id)
	}

	if err := s.resourceRepo.UpdateStatus(ctx, booking.ResourceID, model.ResourceAvailable); err != nil {
		s.cfg.Log.Warn("Failed to mark resource available",
			"resource_id", booking.ResourceID,
			"error", err,
		)
	}

	s.publishBookingEvent(ctx, events.EventAssetReturned, booking, req.ReturnedBy)

	s.cfg.Log.Info("Asset returned",
		"id", id,
		"resource_id", booking.ResourceID,
		"returned_by", req.ReturnedBy,
		"damage_reported", req.DamageReported,
	)
	return booking, nil
}
