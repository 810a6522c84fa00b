package integrationtests

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"courtside/pkg/model"
	"courtside/test/common"
)

// These tests exercise a running bookings service against a seeded
// database. They are skipped unless TEST_SERVER_URL and TEST_COURT_ID
// are set.

var (
	httpClient *common.Client
	courtID    string
)

func setup(t *testing.T) {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	courtID = os.Getenv("TEST_COURT_ID")
	if serverURL == "" || courtID == "" {
		t.Skip("TEST_SERVER_URL and TEST_COURT_ID must be set for integration tests")
	}
	httpClient = common.NewClient(serverURL)
}

func bookingPayload(user string, start, end time.Time) map[string]any {
	return map[string]any{
		"user_name":  user,
		"court_id":   courtID,
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}
}

// Each test run uses a distinct far-future slot so runs do not
// interfere with each other or with leftover data.
func freshSlot() (time.Time, time.Time) {
	start := time.Now().UTC().Add(time.Duration(time.Now().UnixNano()%10000) * time.Hour).Truncate(time.Hour)
	return start, start.Add(time.Hour)
}

func decodeResult(t *testing.T, resp *common.Response) *model.BookingResult {
	t.Helper()
	var result struct {
		Data model.BookingResult `json:"data"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode booking result: %v", err)
	}
	return &result.Data
}

func TestBookingLifecycle(t *testing.T) {
	setup(t)
	start, end := freshSlot()

	// First request confirms.
	resp := httpClient.POST(t, "/api/v1/bookings", bookingPayload("Integration Alice", start, end))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, resp.Body)
	}
	first := decodeResult(t, resp)
	if first.Status != model.BookingStatusConfirmed || first.ReservationID == "" {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.Pricing == nil || first.Pricing.Total <= 0 {
		t.Errorf("expected positive pricing total, got %+v", first.Pricing)
	}

	// Second request on the same slot is waitlisted.
	resp = httpClient.POST(t, "/api/v1/bookings", bookingPayload("Integration Bob", start, end))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, resp.Body)
	}
	second := decodeResult(t, resp)
	if second.Status != model.BookingStatusWaitlisted || second.Position != 1 {
		t.Fatalf("unexpected second result: %+v", second)
	}

	// Availability reports the slot as taken.
	resp = httpClient.POST(t, "/api/v1/bookings/availability", bookingPayload("Integration Carol", start, end))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	var availability struct {
		Data struct {
			Available bool `json:"available"`
		} `json:"data"`
	}
	if err := resp.DecodeJSON(&availability); err != nil {
		t.Fatalf("failed to decode availability: %v", err)
	}
	if availability.Data.Available {
		t.Error("expected slot to be unavailable")
	}

	// Cancelling the confirmed booking promotes the waitlisted one.
	resp = httpClient.POST(t, fmt.Sprintf("/api/v1/bookings/id/%s/cancel", first.ReservationID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	var promotion struct {
		Data model.PromotionResult `json:"data"`
	}
	if err := resp.DecodeJSON(&promotion); err != nil {
		t.Fatalf("failed to decode promotion result: %v", err)
	}
	if !promotion.Data.Promoted || promotion.Data.PromotedUser != "Integration Bob" {
		t.Fatalf("unexpected promotion result: %+v", promotion.Data)
	}

	// The promoted reservation is retrievable and confirmed.
	resp = httpClient.GET(t, "/api/v1/bookings/id/"+promotion.Data.NewReservationID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	var reservation struct {
		Data model.Reservation `json:"data"`
	}
	if err := resp.DecodeJSON(&reservation); err != nil {
		t.Fatalf("failed to decode reservation: %v", err)
	}
	if reservation.Data.Status != model.StatusConfirmed {
		t.Errorf("expected promoted reservation confirmed, got %s", reservation.Data.Status)
	}
}

func TestBooking_ValidationRejected(t *testing.T) {
	setup(t)
	start, end := freshSlot()

	payload := bookingPayload("X", start, end)
	resp := httpClient.POST(t, "/api/v1/bookings", payload)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for one-letter name, got %d: %s", resp.StatusCode, resp.Body)
	}

	payload = bookingPayload("Integration Dana", end, start)
	resp = httpClient.POST(t, "/api/v1/bookings", payload)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for inverted interval, got %d: %s", resp.StatusCode, resp.Body)
	}
}

func TestBooking_PriceQuote(t *testing.T) {
	setup(t)
	start, end := freshSlot()

	resp := httpClient.POST(t, "/api/v1/bookings/price", bookingPayload("Integration Eve", start, end))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	var quote struct {
		Data model.PriceBreakdown `json:"data"`
	}
	if err := resp.DecodeJSON(&quote); err != nil {
		t.Fatalf("failed to decode price quote: %v", err)
	}
	if quote.Data.Total < quote.Data.Base || quote.Data.Base <= 0 {
		t.Errorf("implausible quote: %+v", quote.Data)
	}
}
