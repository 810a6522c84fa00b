package pricing

import (
	"context"
	"testing"
	"time"

	"courtside/internal/catalog"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

// Mock catalog repository for testing
type mockCatalogRepository struct {
	getCourtFunc     func(ctx context.Context, id string) (*model.Court, error)
	getEquipmentFunc func(ctx context.Context, id string) (*model.Equipment, error)
	getCoachFunc     func(ctx context.Context, id string) (*model.Coach, error)
	listRulesFunc    func(ctx context.Context) ([]*model.PricingRule, error)
}

func (m *mockCatalogRepository) GetCourt(ctx context.Context, id string) (*model.Court, error) {
	if m.getCourtFunc != nil {
		return m.getCourtFunc(ctx, id)
	}
	return nil, catalog.ErrNotFound
}

func (m *mockCatalogRepository) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	if m.getEquipmentFunc != nil {
		return m.getEquipmentFunc(ctx, id)
	}
	return nil, catalog.ErrNotFound
}

func (m *mockCatalogRepository) GetCoach(ctx context.Context, id string) (*model.Coach, error) {
	if m.getCoachFunc != nil {
		return m.getCoachFunc(ctx, id)
	}
	return nil, catalog.ErrNotFound
}

func (m *mockCatalogRepository) ListActivePricingRules(ctx context.Context) ([]*model.PricingRule, error) {
	if m.listRulesFunc != nil {
		return m.listRulesFunc(ctx)
	}
	return nil, nil
}

func (m *mockCatalogRepository) InsertCourt(ctx context.Context, court *model.Court) error {
	return nil
}

func (m *mockCatalogRepository) InsertEquipment(ctx context.Context, equipment *model.Equipment) error {
	return nil
}

func (m *mockCatalogRepository) InsertCoach(ctx context.Context, coach *model.Coach) error {
	return nil
}

func (m *mockCatalogRepository) InsertPricingRule(ctx context.Context, rule *model.PricingRule) error {
	return nil
}

func (m *mockCatalogRepository) Reset(ctx context.Context) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func surcharge(v float64) *float64 {
	return &v
}

func indoorCourt(basePrice float64) func(ctx context.Context, id string) (*model.Court, error) {
	return func(ctx context.Context, id string) (*model.Court, error) {
		return &model.Court{ID: id, Name: "Court 1", Type: model.CourtTypeIndoor, BasePrice: basePrice, Active: true}, nil
	}
}

// Saturday 19:00, inside the 18-21 peak window.
var saturdayEvening = time.Date(2026, 1, 3, 19, 0, 0, 0, time.UTC)

func TestCalculatePrice_AllRuleKindsAndFees(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(15),
		listRulesFunc: func(ctx context.Context) ([]*model.PricingRule, error) {
			return []*model.PricingRule{
				{Name: "Peak Hours", Kind: model.RuleKindTimeRange, TimeRange: &model.TimeRangeParams{StartHour: 18, EndHour: 21}, Multiplier: 1.5, Active: true},
				{Name: "Weekend Surcharge", Kind: model.RuleKindDay, Days: &model.DayOfWeekParams{Days: []int{0, 6}}, Surcharge: surcharge(5), Active: true},
				{Name: "Indoor Premium", Kind: model.RuleKindCourtType, CourtType: &model.CourtTypeParams{CourtType: model.CourtTypeIndoor}, Surcharge: surcharge(3), Active: true},
			}, nil
		},
		getEquipmentFunc: func(ctx context.Context, id string) (*model.Equipment, error) {
			return &model.Equipment{ID: id, Name: "Racket", TotalQuantity: 8, RentalPrice: 5}, nil
		},
		getCoachFunc: func(ctx context.Context, id string) (*model.Coach, error) {
			return &model.Coach{ID: id, Name: "Coach A", HourlyRate: 20}, nil
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", saturdayEvening, map[string]int{"e1": 2}, "coach1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.Base != 15 {
		t.Errorf("expected base 15, got %v", breakdown.Base)
	}
	// 15 * 1.5 = 22.5, delta 7.5
	if breakdown.PeakHour == nil || *breakdown.PeakHour != 7.5 {
		t.Errorf("expected peak_hour 7.5, got %v", breakdown.PeakHour)
	}
	if breakdown.Weekend == nil || *breakdown.Weekend != 5 {
		t.Errorf("expected weekend 5, got %v", breakdown.Weekend)
	}
	if breakdown.CourtType == nil || *breakdown.CourtType != 3 {
		t.Errorf("expected court_type 3, got %v", breakdown.CourtType)
	}
	if breakdown.Equipment == nil || *breakdown.Equipment != 10 {
		t.Errorf("expected equipment fee 10, got %v", breakdown.Equipment)
	}
	if breakdown.Coach == nil || *breakdown.Coach != 20 {
		t.Errorf("expected coach fee 20, got %v", breakdown.Coach)
	}
	// 22.5 + 5 + 3 + 10 + 20
	if breakdown.Total != 60.5 {
		t.Errorf("expected total 60.5, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_NoMatchingRules(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
		listRulesFunc: func(ctx context.Context) ([]*model.PricingRule, error) {
			return []*model.PricingRule{
				{Name: "Peak Hours", Kind: model.RuleKindTimeRange, TimeRange: &model.TimeRangeParams{StartHour: 18, EndHour: 21}, Multiplier: 2, Active: true},
			}, nil
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	morning := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", morning, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.PeakHour != nil {
		t.Errorf("expected no peak_hour component, got %v", *breakdown.PeakHour)
	}
	if breakdown.Equipment != nil || breakdown.Coach != nil {
		t.Error("expected no fee components for a bare booking")
	}
	if breakdown.Total != 10 {
		t.Errorf("expected total 10, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_TimeRangeEndHourExclusive(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
		listRulesFunc: func(ctx context.Context) ([]*model.PricingRule, error) {
			return []*model.PricingRule{
				{Name: "Peak", Kind: model.RuleKindTimeRange, TimeRange: &model.TimeRangeParams{StartHour: 18, EndHour: 21}, Multiplier: 2, Active: true},
			}, nil
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	atEnd := time.Date(2026, 1, 5, 21, 0, 0, 0, time.UTC)
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", atEnd, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.Total != 10 {
		t.Errorf("expected 21:00 to fall outside [18,21), total 10, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_ExplicitSurchargeWinsOverMultiplierDelta(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
		listRulesFunc: func(ctx context.Context) ([]*model.PricingRule, error) {
			return []*model.PricingRule{
				{Name: "Peak", Kind: model.RuleKindTimeRange, TimeRange: &model.TimeRangeParams{StartHour: 18, EndHour: 21}, Multiplier: 1.5, Surcharge: surcharge(2), Active: true},
			}, nil
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", saturdayEvening, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Base still multiplied, but the recorded component is the
	// explicit surcharge, not the 5.0 delta.
	if breakdown.PeakHour == nil || *breakdown.PeakHour != 2 {
		t.Errorf("expected peak_hour 2, got %v", breakdown.PeakHour)
	}
	if breakdown.Total != 15 {
		t.Errorf("expected total 15, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_MultipleTimeRangeRulesCompoundAndAccumulate(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
		listRulesFunc: func(ctx context.Context) ([]*model.PricingRule, error) {
			return []*model.PricingRule{
				{Name: "Peak A", Kind: model.RuleKindTimeRange, TimeRange: &model.TimeRangeParams{StartHour: 18, EndHour: 21}, Multiplier: 1.5, Active: true},
				{Name: "Peak B", Kind: model.RuleKindTimeRange, TimeRange: &model.TimeRangeParams{StartHour: 19, EndHour: 20}, Multiplier: 2, Active: true},
			}, nil
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", saturdayEvening, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 10 -> 15 (delta 5) -> 30 (delta 15); component accumulates to 20.
	if breakdown.PeakHour == nil || *breakdown.PeakHour != 20 {
		t.Errorf("expected accumulated peak_hour 20, got %v", breakdown.PeakHour)
	}
	if breakdown.Total != 30 {
		t.Errorf("expected total 30, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_LastMatchingDayRuleWinsComponent(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
		listRulesFunc: func(ctx context.Context) ([]*model.PricingRule, error) {
			return []*model.PricingRule{
				{Name: "Weekend A", Kind: model.RuleKindDay, Days: &model.DayOfWeekParams{Days: []int{6}}, Surcharge: surcharge(5), Active: true},
				{Name: "Weekend B", Kind: model.RuleKindDay, Days: &model.DayOfWeekParams{Days: []int{0, 6}}, Surcharge: surcharge(7), Active: true},
			}, nil
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", saturdayEvening, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both surcharges are added to the price; the component records
	// only the last matching rule.
	if breakdown.Weekend == nil || *breakdown.Weekend != 7 {
		t.Errorf("expected weekend component 7, got %v", breakdown.Weekend)
	}
	if breakdown.Total != 22 {
		t.Errorf("expected total 22, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_ZeroMultiplierDefaultsToOne(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
		listRulesFunc: func(ctx context.Context) ([]*model.PricingRule, error) {
			return []*model.PricingRule{
				{Name: "Peak", Kind: model.RuleKindTimeRange, TimeRange: &model.TimeRangeParams{StartHour: 18, EndHour: 21}, Active: true},
			}, nil
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", saturdayEvening, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.Total != 10 {
		t.Errorf("expected unset multiplier to leave price at 10, got %v", breakdown.Total)
	}
	if breakdown.PeakHour == nil || *breakdown.PeakHour != 0 {
		t.Errorf("expected zero peak_hour component, got %v", breakdown.PeakHour)
	}
}

func TestCalculatePrice_FixedRuleIsInert(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
		listRulesFunc: func(ctx context.Context) ([]*model.PricingRule, error) {
			return []*model.PricingRule{
				{Name: "Fixed Fee", Kind: model.RuleKindFixed, Surcharge: surcharge(99), Active: true},
			}, nil
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", saturdayEvening, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.Total != 10 {
		t.Errorf("expected fixed rule to not affect total, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_UnknownEquipmentSkipped(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
		getEquipmentFunc: func(ctx context.Context, id string) (*model.Equipment, error) {
			if id == "known" {
				return &model.Equipment{ID: id, Name: "Racket", RentalPrice: 5}, nil
			}
			return nil, catalog.ErrNotFound
		},
	}

	engine := NewEngine(mockCatalog, testLogger())
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", saturdayEvening, map[string]int{"known": 2, "ghost": 3}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.Equipment == nil || *breakdown.Equipment != 10 {
		t.Errorf("expected equipment fee 10 with unknown id skipped, got %v", breakdown.Equipment)
	}
	if breakdown.Total != 20 {
		t.Errorf("expected total 20, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_UnknownCoachRecordedAsZero(t *testing.T) {
	mockCatalog := &mockCatalogRepository{
		getCourtFunc: indoorCourt(10),
	}

	engine := NewEngine(mockCatalog, testLogger())
	breakdown, err := engine.CalculatePrice(context.Background(), "c1", saturdayEvening, nil, "ghost-coach")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.Coach == nil || *breakdown.Coach != 0 {
		t.Errorf("expected zero coach fee for unknown coach, got %v", breakdown.Coach)
	}
	if breakdown.Total != 10 {
		t.Errorf("expected total 10, got %v", breakdown.Total)
	}
}

func TestCalculatePrice_CourtNotFound(t *testing.T) {
	engine := NewEngine(&mockCatalogRepository{}, testLogger())

	_, err := engine.CalculatePrice(context.Background(), "missing", saturdayEvening, nil, "")
	if err == nil {
		t.Fatal("expected error for missing court")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}
}
