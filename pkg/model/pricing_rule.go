package model

import "time"

const (
	RuleKindTimeRange = "timeRange"
	RuleKindDay       = "day"
	RuleKindCourtType = "courtType"
	RuleKindFixed     = "fixed"
)

// TimeRangeParams matches bookings whose start hour falls in
// [StartHour, EndHour), local hours 0-23.
type TimeRangeParams struct {
	StartHour int `json:"start_hour" bson:"start_hour" validate:"gte=0,lte=23"`
	EndHour   int `json:"end_hour" bson:"end_hour" validate:"gte=0,lte=24,gtfield=StartHour"`
}

// DayOfWeekParams matches bookings starting on one of Days,
// 0=Sunday .. 6=Saturday.
type DayOfWeekParams struct {
	Days []int `json:"days" bson:"days" validate:"required,min=1,dive,gte=0,lte=6"`
}

type CourtTypeParams struct {
	CourtType string `json:"court_type" bson:"court_type" validate:"required,oneof=indoor outdoor"`
}

// PricingRule is a tagged variant: exactly one params field is set,
// matching Kind. Kind "fixed" carries no params and is inert during
// price evaluation.
type PricingRule struct {
	ID        string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string           `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Kind      string           `json:"kind" bson:"kind" validate:"required,oneof=timeRange day courtType fixed"`
	TimeRange *TimeRangeParams `json:"time_range,omitempty" bson:"time_range,omitempty"`
	Days      *DayOfWeekParams `json:"days,omitempty" bson:"days,omitempty"`
	CourtType *CourtTypeParams `json:"court_type,omitempty" bson:"court_type,omitempty"`
	Multiplier float64         `json:"multiplier" bson:"multiplier"`
	// Surcharge is nil when the rule has no explicit surcharge; for
	// timeRange rules the recorded surcharge then falls back to the
	// price delta introduced by the multiplier.
	Surcharge *float64  `json:"surcharge,omitempty" bson:"surcharge,omitempty"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// MultiplierOrDefault returns the configured multiplier, defaulting to 1.
func (r *PricingRule) MultiplierOrDefault() float64 {
	if r.Multiplier == 0 {
		return 1
	}
	return r.Multiplier
}

// SurchargeOrDefault returns the explicit surcharge, defaulting to 0.
func (r *PricingRule) SurchargeOrDefault() float64 {
	if r.Surcharge == nil {
		return 0
	}
	return *r.Surcharge
}
