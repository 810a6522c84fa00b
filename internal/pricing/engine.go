// Package pricing computes the price breakdown for a candidate
// reservation: the court's base price adjusted by the active rule
// set, plus equipment and coach fees.
package pricing

import (
	"context"
	"errors"
	"time"

	"courtside/internal/catalog"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

type Engine struct {
	catalog catalog.Repository
	log     *logger.Logger
}

func NewEngine(catalogRepo catalog.Repository, log *logger.Logger) *Engine {
	return &Engine{
		catalog: catalogRepo,
		log:     log,
	}
}

// CalculatePrice evaluates active pricing rules in storage order
// against the booking start time and court, then adds equipment and
// coach fees. Unknown equipment or coach ids are skipped silently;
// only an unresolved court is an error. Sums are raw floating point,
// no currency rounding.
func (e *Engine) CalculatePrice(ctx context.Context, courtID string, startTime time.Time, equipmentQty map[string]int, coachID string) (*model.PriceBreakdown, error) {
	court, err := e.catalog.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Court", courtID)
		}
		return nil, apperrors.Internal("Failed to load court", err)
	}

	rules, err := e.catalog.ListActivePricingRules(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load pricing rules", err)
	}

	basePrice := court.BasePrice
	breakdown := &model.PriceBreakdown{Base: court.BasePrice}

	hour := startTime.Hour()
	day := int(startTime.Weekday())

	for _, rule := range rules {
		switch rule.Kind {
		case model.RuleKindTimeRange:
			if rule.TimeRange == nil || hour < rule.TimeRange.StartHour || hour >= rule.TimeRange.EndHour {
				continue
			}
			before := basePrice
			basePrice *= rule.MultiplierOrDefault()
			// An explicit surcharge wins; otherwise the recorded
			// amount is the delta introduced by the multiplier.
			// Multiple matching time-range rules accumulate.
			amount := basePrice - before
			if rule.Surcharge != nil {
				amount = *rule.Surcharge
			}
			breakdown.PeakHour = addTo(breakdown.PeakHour, amount)

		case model.RuleKindDay:
			if rule.Days == nil || !containsDay(rule.Days.Days, day) {
				continue
			}
			surcharge := rule.SurchargeOrDefault()
			basePrice += surcharge
			// Last matching day rule wins the breakdown line.
			breakdown.Weekend = ptr(surcharge)

		case model.RuleKindCourtType:
			if rule.CourtType == nil || rule.CourtType.CourtType != court.Type {
				continue
			}
			surcharge := rule.SurchargeOrDefault()
			basePrice += surcharge
			breakdown.CourtType = ptr(surcharge)

		case model.RuleKindFixed:
			// Inert at evaluation time.
		}
	}

	var equipmentFee float64
	if len(equipmentQty) > 0 {
		for equipmentID, qty := range equipmentQty {
			equipment, err := e.catalog.GetEquipment(ctx, equipmentID)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalidID) {
					e.log.Debug("Skipping unknown equipment during fee calculation", "equipment_id", equipmentID)
					continue
				}
				return nil, apperrors.Internal("Failed to load equipment", err)
			}
			equipmentFee += equipment.RentalPrice * float64(qty)
		}
		breakdown.Equipment = ptr(equipmentFee)
	}

	var coachFee float64
	if coachID != "" {
		coach, err := e.catalog.GetCoach(ctx, coachID)
		switch {
		case err == nil:
			coachFee = coach.HourlyRate
		case errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalidID):
			e.log.Debug("Skipping unknown coach during fee calculation", "coach_id", coachID)
		default:
			return nil, apperrors.Internal("Failed to load coach", err)
		}
		breakdown.Coach = ptr(coachFee)
	}

	breakdown.Total = basePrice + equipmentFee + coachFee
	return breakdown, nil
}

func addTo(current *float64, amount float64) *float64 {
	if current == nil {
		return ptr(amount)
	}
	return ptr(*current + amount)
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func ptr(v float64) *float64 {
	return &v
}
