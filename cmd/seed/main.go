package main

import (
	"context"
	"log"
	"time"

	"courtside/internal/catalog"
	"courtside/pkg/config"
	"courtside/pkg/model"
)

const JobName = "catalog-seed"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting catalog seed job")
	defer cfg.GracefulShutdown()

	repo := catalog.NewMongoCatalogRepository(cfg)
	if err := seed(ctx, repo); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	cfg.Log.Info("Seeding completed")
}

func seed(ctx context.Context, repo catalog.Repository) error {
	if err := repo.Reset(ctx); err != nil {
		return err
	}

	courts := []*model.Court{
		{Name: "Court 1", Type: model.CourtTypeIndoor, BasePrice: 15, Active: true},
		{Name: "Court 2", Type: model.CourtTypeIndoor, BasePrice: 15, Active: true},
		{Name: "Court 3", Type: model.CourtTypeOutdoor, BasePrice: 10, Active: true},
		{Name: "Court 4", Type: model.CourtTypeOutdoor, BasePrice: 10, Active: true},
	}
	for _, court := range courts {
		if err := repo.InsertCourt(ctx, court); err != nil {
			return err
		}
	}

	equipment := []*model.Equipment{
		{Name: "Racket", TotalQuantity: 8, RentalPrice: 5, Active: true},
		{Name: "Shoes", TotalQuantity: 6, RentalPrice: 3, Active: true},
	}
	for _, item := range equipment {
		if err := repo.InsertEquipment(ctx, item); err != nil {
			return err
		}
	}

	coaches := []*model.Coach{
		{Name: "Coach A", HourlyRate: 20, Active: true},
		{Name: "Coach B", HourlyRate: 25, Active: true},
		{Name: "Coach C", HourlyRate: 18, Active: true},
	}
	for _, coach := range coaches {
		if err := repo.InsertCoach(ctx, coach); err != nil {
			return err
		}
	}

	surcharge := func(v float64) *float64 { return &v }
	rules := []*model.PricingRule{
		{
			Name:       "Peak Hours",
			Kind:       model.RuleKindTimeRange,
			TimeRange:  &model.TimeRangeParams{StartHour: 18, EndHour: 21},
			Multiplier: 1.5,
			Active:     true,
		},
		{
			Name:      "Weekend Surcharge",
			Kind:      model.RuleKindDay,
			Days:      &model.DayOfWeekParams{Days: []int{0, 6}},
			Surcharge: surcharge(5),
			Active:    true,
		},
		{
			Name:      "Indoor Premium",
			Kind:      model.RuleKindCourtType,
			CourtType: &model.CourtTypeParams{CourtType: model.CourtTypeIndoor},
			Surcharge: surcharge(3),
			Active:    true,
		},
	}
	for _, rule := range rules {
		if err := repo.InsertPricingRule(ctx, rule); err != nil {
			return err
		}
	}

	return nil
}
