package validator

import (
	"strings"
	"testing"
	"time"

	"courtside/pkg/logger"
	"courtside/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func validRequest() *model.ReservationRequest {
	start := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	return &model.ReservationRequest{
		UserName:  "Alice",
		CourtID:   "65f000000000000000000001",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	v := NewBookingValidator(testLogger())

	if err := v.ValidateRequest(validRequest()); err != nil {
		t.Errorf("expected valid request, got: %v", err)
	}

	withExtras := validRequest()
	withExtras.CoachID = "65f000000000000000000002"
	withExtras.EquipmentQty = map[string]int{"65f000000000000000000003": 2}
	if err := v.ValidateRequest(withExtras); err != nil {
		t.Errorf("expected valid request with extras, got: %v", err)
	}
}

func TestValidateRequest_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(req *model.ReservationRequest)
		wantPart string
	}{
		{
			name:     "missing user name",
			mutate:   func(req *model.ReservationRequest) { req.UserName = "" },
			wantPart: "UserName",
		},
		{
			name:     "user name too short",
			mutate:   func(req *model.ReservationRequest) { req.UserName = "A" },
			wantPart: "UserName",
		},
		{
			name:     "missing court",
			mutate:   func(req *model.ReservationRequest) { req.CourtID = "" },
			wantPart: "CourtID",
		},
		{
			name:     "malformed court id",
			mutate:   func(req *model.ReservationRequest) { req.CourtID = "not-an-object-id" },
			wantPart: "CourtID",
		},
		{
			name:     "end before start",
			mutate:   func(req *model.ReservationRequest) { req.EndTime = req.StartTime.Add(-time.Hour) },
			wantPart: "EndTime",
		},
		{
			name:     "end equals start",
			mutate:   func(req *model.ReservationRequest) { req.EndTime = req.StartTime },
			wantPart: "EndTime",
		},
		{
			name: "zero equipment quantity",
			mutate: func(req *model.ReservationRequest) {
				req.EquipmentQty = map[string]int{"65f000000000000000000003": 0}
			},
			wantPart: "EquipmentQty",
		},
		{
			name: "negative equipment quantity",
			mutate: func(req *model.ReservationRequest) {
				req.EquipmentQty = map[string]int{"65f000000000000000000003": -1}
			},
			wantPart: "EquipmentQty",
		},
	}

	v := NewBookingValidator(testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.ValidateRequest(req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantPart) {
				t.Errorf("expected error mentioning %s, got: %v", tt.wantPart, err)
			}
		})
	}
}

func TestValidateRequest_EmptyEquipmentMapAllowed(t *testing.T) {
	v := NewBookingValidator(testLogger())

	req := validRequest()
	req.EquipmentQty = map[string]int{}
	if err := v.ValidateRequest(req); err != nil {
		t.Errorf("expected empty equipment map to pass, got: %v", err)
	}
}
