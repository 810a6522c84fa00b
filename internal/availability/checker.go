// Package availability answers read-only availability questions for
// courts, coaches and equipment. Answers are advisory: the booking
// transaction re-checks the court authoritatively before committing.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtside/internal/booking/repository"
	"courtside/internal/catalog"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

const (
	ReasonCourtBooked       = "court already booked for this time"
	ReasonCoachBooked       = "coach already booked for this time"
	ReasonEquipmentNotFound = "equipment not found"
	ReasonEquipmentShort    = "insufficient equipment available"
)

// Check is a single resource verdict within an availability report.
type Check struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Result is the full availability report for a candidate booking.
// Available is the conjunction of every per-resource check.
type Result struct {
	Available bool             `json:"available"`
	Court     Check            `json:"court"`
	Coach     *Check           `json:"coach,omitempty"`
	Equipment map[string]Check `json:"equipment,omitempty"`
}

// ReservationReader is the slice of the reservation repository the
// checker needs.
type ReservationReader interface {
	FindConfirmedCourtOverlap(ctx context.Context, courtID string, start, end time.Time) (*model.Reservation, error)
	FindConfirmedCoachOverlap(ctx context.Context, coachID string, start, end time.Time) (*model.Reservation, error)
	SumCommittedEquipment(ctx context.Context, equipmentID string) (int, error)
	SumCommittedEquipmentInWindow(ctx context.Context, equipmentID string, start, end time.Time) (int, error)
}

var _ ReservationReader = (repository.ReservationRepository)(nil)

type Checker struct {
	catalog      catalog.Repository
	reservations ReservationReader
	cfg          *config.Config
	log          *logger.Logger
}

func NewChecker(catalogRepo catalog.Repository, reservations ReservationReader, cfg *config.Config, log *logger.Logger) *Checker {
	return &Checker{
		catalog:      catalogRepo,
		reservations: reservations,
		cfg:          cfg,
		log:          log,
	}
}

// IsCourtAvailable reports whether the court has no confirmed
// reservation overlapping [start, end).
func (c *Checker) IsCourtAvailable(ctx context.Context, courtID string, start, end time.Time) (bool, error) {
	overlap, err := c.reservations.FindConfirmedCourtOverlap(ctx, courtID, start, end)
	if err != nil {
		return false, apperrors.Internal("Failed to check court availability", err)
	}
	return overlap == nil, nil
}

// IsCoachAvailable reports whether the coach has no confirmed
// reservation overlapping [start, end).
func (c *Checker) IsCoachAvailable(ctx context.Context, coachID string, start, end time.Time) (bool, error) {
	overlap, err := c.reservations.FindConfirmedCoachOverlap(ctx, coachID, start, end)
	if err != nil {
		return false, apperrors.Internal("Failed to check coach availability", err)
	}
	return overlap == nil, nil
}

// CheckEquipment verifies that the requested quantity of one
// equipment unit is still uncommitted. The committed sum spans all
// confirmed reservations unless EQUIPMENT_WINDOW_SCOPED restricts it
// to the requested window.
func (c *Checker) CheckEquipment(ctx context.Context, equipmentID string, qty int, start, end time.Time) error {
	equipment, err := c.catalog.GetEquipment(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalidID) {
			return apperrors.NotFoundWithID("Equipment", equipmentID)
		}
		return apperrors.Internal("Failed to load equipment", err)
	}

	var committed int
	if c.cfg.EquipmentWindowScoped {
		committed, err = c.reservations.SumCommittedEquipmentInWindow(ctx, equipmentID, start, end)
	} else {
		committed, err = c.reservations.SumCommittedEquipment(ctx, equipmentID)
	}
	if err != nil {
		return apperrors.Internal("Failed to check equipment availability", err)
	}

	remaining := equipment.TotalQuantity - committed
	if qty > remaining {
		return apperrors.Conflict(ReasonEquipmentShort).WithDetails(map[string]any{
			"equipment_id": equipmentID,
			"requested":    qty,
			"remaining":    remaining,
		})
	}

	return nil
}

// EnsureResourcesBookable runs the pre-transaction checks on the
// auxiliary resources of a booking request. A failure here rejects
// the request outright; only court contention routes to the waitlist.
func (c *Checker) EnsureResourcesBookable(ctx context.Context, req *model.ReservationRequest) error {
	if req.CoachID != "" {
		available, err := c.IsCoachAvailable(ctx, req.CoachID, req.StartTime, req.EndTime)
		if err != nil {
			return err
		}
		if !available {
			return apperrors.Conflict(ReasonCoachBooked).WithDetails(map[string]any{
				"coach_id": req.CoachID,
			})
		}
	}

	for equipmentID, qty := range req.EquipmentQty {
		if err := c.CheckEquipment(ctx, equipmentID, qty, req.StartTime, req.EndTime); err != nil {
			return err
		}
	}

	return nil
}

// CheckAvailability produces the full report for the availability
// endpoint. Resource lookups that fail with not-found are reported in
// the result rather than returned as errors.
func (c *Checker) CheckAvailability(ctx context.Context, req *model.ReservationRequest) (*Result, error) {
	result := &Result{Available: true}

	courtOK, err := c.IsCourtAvailable(ctx, req.CourtID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	result.Court = Check{Available: courtOK}
	if !courtOK {
		result.Court.Reason = ReasonCourtBooked
		result.Available = false
	}

	if req.CoachID != "" {
		coachOK, err := c.IsCoachAvailable(ctx, req.CoachID, req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
		check := Check{Available: coachOK}
		if !coachOK {
			check.Reason = ReasonCoachBooked
			result.Available = false
		}
		result.Coach = &check
	}

	if len(req.EquipmentQty) > 0 {
		result.Equipment = make(map[string]Check, len(req.EquipmentQty))
		for equipmentID, qty := range req.EquipmentQty {
			check := Check{Available: true}
			if err := c.CheckEquipment(ctx, equipmentID, qty, req.StartTime, req.EndTime); err != nil {
				appErr := apperrors.AsAppError(err)
				if appErr.Code == apperrors.CodeInternal {
					return nil, err
				}
				check.Available = false
				check.Reason = equipmentReason(appErr)
				result.Available = false
			}
			result.Equipment[equipmentID] = check
		}
	}

	return result, nil
}

func equipmentReason(appErr *apperrors.AppError) string {
	switch appErr.Code {
	case apperrors.CodeNotFound:
		return ReasonEquipmentNotFound
	case apperrors.CodeConflict:
		return ReasonEquipmentShort
	default:
		return fmt.Sprintf("equipment check failed: %s", appErr.Message)
	}
}
