package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"courtside/internal/availability"
	bookingerrors "courtside/internal/booking/errors"
	"courtside/internal/booking/repository"
	"courtside/internal/booking/validator"
	"courtside/internal/events"
	"courtside/internal/pricing"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	// BookOrWaitlist atomically either confirms a reservation or
	// appends the request to the slot's waitlist. It never returns
	// both outcomes and never loses a request to a concurrent race.
	BookOrWaitlist(ctx context.Context, req *model.ReservationRequest) (*model.BookingResult, error)
	// CancelAndPromote cancels a confirmed reservation and, in the
	// same transaction, promotes the head of the slot's waitlist.
	CancelAndPromote(ctx context.Context, reservationID string) (*model.PromotionResult, error)
	CheckAvailability(ctx context.Context, req *model.ReservationRequest) (*availability.Result, error)
	CalculatePrice(ctx context.Context, req *model.ReservationRequest) (*model.PriceBreakdown, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetWaitlist(ctx context.Context, limit int, offset int64) ([]*model.WaitlistEntry, int64, error)
}

type bookingService struct {
	repo      repository.ReservationRepository
	waitlist  repository.WaitlistRepository
	lockRepo  repository.SlotLockRepository
	checker   *availability.Checker
	pricing   *pricing.Engine
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.ReservationRepository,
	waitlist repository.WaitlistRepository,
	lockRepo repository.SlotLockRepository,
	checker *availability.Checker,
	pricingEngine *pricing.Engine,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		waitlist:  waitlist,
		lockRepo:  lockRepo,
		checker:   checker,
		pricing:   pricingEngine,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) BookOrWaitlist(ctx context.Context, req *model.ReservationRequest) (*model.BookingResult, error) {
	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	// Coach and equipment conflicts reject the request outright;
	// only court contention routes to the waitlist.
	if err := s.checker.EnsureResourcesBookable(ctx, req); err != nil {
		return nil, err
	}

	lockID, err := s.acquireSlotLock(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var result *model.BookingResult
	var reservation *model.Reservation
	var entry *model.WaitlistEntry

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The in-transaction overlap check is authoritative; the lock
		// only serializes attempts on the same court.
		overlap, err := s.repo.FindConfirmedCourtOverlap(sessCtx, req.CourtID, req.StartTime, req.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check court availability", err)
		}

		if overlap != nil {
			entry, err = s.appendToWaitlist(sessCtx, req)
			if err != nil {
				return err
			}
			result = &model.BookingResult{
				Status:     model.BookingStatusWaitlisted,
				WaitlistID: entry.ID,
				Position:   entry.Position,
			}
			return nil
		}

		reservation, err = s.confirmReservation(sessCtx, req)
		if err != nil {
			return err
		}
		result = &model.BookingResult{
			Status:        model.BookingStatusConfirmed,
			ReservationID: reservation.ID,
			Pricing:       &reservation.Pricing,
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to book or waitlist",
			"court_id", req.CourtID,
			"start_time", req.StartTime,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking request settled",
		"status", result.Status,
		"court_id", req.CourtID,
		"start_time", req.StartTime,
		"user_name", req.UserName,
	)

	switch result.Status {
	case model.BookingStatusConfirmed:
		s.publishEvent(ctx, events.TypeReservationConfirmed, func(ctx context.Context) error {
			return s.publisher.PublishReservationConfirmed(ctx, reservation)
		})
	case model.BookingStatusWaitlisted:
		s.publishEvent(ctx, events.TypeReservationWaitlisted, func(ctx context.Context) error {
			return s.publisher.PublishWaitlisted(ctx, entry)
		})
	}

	return result, nil
}

func (s *bookingService) CancelAndPromote(ctx context.Context, reservationID string) (*model.PromotionResult, error) {
	if reservationID == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	// The pre-load resolves missing/malformed ids and supplies the
	// immutable slot fields; the status itself is only decided by the
	// conditional update inside the transaction.
	reservation, err := s.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != model.StatusConfirmed {
		return nil, apperrors.Conflict("Only confirmed reservations can be cancelled")
	}

	result := &model.PromotionResult{}
	var promotedEntry *model.WaitlistEntry
	var promotedReservation *model.Reservation

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.CancelConfirmed(sessCtx, reservationID); err != nil {
			if errors.Is(err, bookingerrors.ErrNotConfirmed) {
				return apperrors.Conflict("Only confirmed reservations can be cancelled")
			}
			return apperrors.Internal("Failed to cancel reservation", err)
		}

		head, err := s.waitlist.FindHeadBySlot(sessCtx, reservation.CourtID, reservation.StartTime)
		if err != nil {
			return apperrors.Internal("Failed to read waitlist head", err)
		}
		if head == nil {
			return nil
		}

		// Price is recomputed against the current rule set, not the
		// rules in force when the entry joined the waitlist.
		breakdown, err := s.pricing.CalculatePrice(sessCtx, head.CourtID, head.StartTime, head.EquipmentQty, head.CoachID)
		if err != nil {
			return err
		}

		promoted := &model.Reservation{
			UserName:     head.UserName,
			CourtID:      head.CourtID,
			CoachID:      head.CoachID,
			EquipmentQty: head.EquipmentQty,
			StartTime:    head.StartTime,
			EndTime:      head.EndTime,
			Status:       model.StatusConfirmed,
			Pricing:      *breakdown,
		}
		if err := s.repo.Create(sessCtx, promoted); err != nil {
			return apperrors.Internal("Failed to create promoted reservation", err)
		}

		if err := s.waitlist.Delete(sessCtx, head.ID); err != nil {
			return apperrors.Internal("Failed to remove promoted waitlist entry", err)
		}
		if err := s.waitlist.ShiftPositionsDown(sessCtx, head.CourtID, head.StartTime); err != nil {
			return apperrors.Internal("Failed to shift waitlist positions", err)
		}

		promotedEntry = head
		promotedReservation = promoted
		result.Promoted = true
		result.NewReservationID = promoted.ID
		result.PromotedUser = promoted.UserName
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel and promote", "id", reservationID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Reservation cancelled",
		"id", reservationID,
		"promoted", result.Promoted,
		"promoted_user", result.PromotedUser,
	)

	s.publishEvent(ctx, events.TypeReservationCancelled, func(ctx context.Context) error {
		return s.publisher.PublishReservationCancelled(ctx, reservation)
	})
	if result.Promoted {
		s.publishEvent(ctx, events.TypeWaitlistPromoted, func(ctx context.Context) error {
			return s.publisher.PublishPromoted(ctx, promotedEntry, promotedReservation.ID)
		})
	}

	return result, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, req *model.ReservationRequest) (*availability.Result, error) {
	if req.CourtID == "" {
		return nil, apperrors.InvalidInput("Court ID cannot be empty")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.InvalidInput("end_time must be after start_time")
	}

	return s.checker.CheckAvailability(ctx, req)
}

func (s *bookingService) CalculatePrice(ctx context.Context, req *model.ReservationRequest) (*model.PriceBreakdown, error) {
	if req.CourtID == "" {
		return nil, apperrors.InvalidInput("Court ID cannot be empty")
	}
	if req.StartTime.IsZero() {
		return nil, apperrors.InvalidInput("Start time is required")
	}

	return s.pricing.CalculatePrice(ctx, req.CourtID, req.StartTime, req.EquipmentQty, req.CoachID)
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *bookingService) GetWaitlist(ctx context.Context, limit int, offset int64) ([]*model.WaitlistEntry, int64, error) {

	var count int64
	var entries []*model.WaitlistEntry
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.waitlist.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count waitlist entries", "error", errCount)
			errCount = apperrors.Internal("Failed to count waitlist entries", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		entries, errFind = s.waitlist.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list waitlist entries", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve waitlist entries", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return entries, count, nil
}

// --- Helpers ---

func (s *bookingService) appendToWaitlist(ctx context.Context, req *model.ReservationRequest) (*model.WaitlistEntry, error) {
	count, err := s.waitlist.CountBySlot(ctx, req.CourtID, req.StartTime)
	if err != nil {
		return nil, apperrors.Internal("Failed to count waitlist entries", err)
	}

	entry := &model.WaitlistEntry{
		UserName:     req.UserName,
		CourtID:      req.CourtID,
		CoachID:      req.CoachID,
		EquipmentQty: req.EquipmentQty,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Position:     int(count) + 1,
	}
	if err := s.waitlist.Create(ctx, entry); err != nil {
		return nil, apperrors.Internal("Failed to create waitlist entry", err)
	}

	return entry, nil
}

func (s *bookingService) confirmReservation(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	breakdown, err := s.pricing.CalculatePrice(ctx, req.CourtID, req.StartTime, req.EquipmentQty, req.CoachID)
	if err != nil {
		return nil, err
	}

	reservation := &model.Reservation{
		UserName:     req.UserName,
		CourtID:      req.CourtID,
		CoachID:      req.CoachID,
		EquipmentQty: req.EquipmentQty,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       model.StatusConfirmed,
		Pricing:      *breakdown,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, apperrors.Internal("Failed to create reservation", err)
	}

	return reservation, nil
}

// acquireSlotLock serializes booking attempts per court. The key
// deliberately ignores the interval: overlapping but unequal
// intervals insert distinct documents, which snapshot isolation alone
// would let both commit. Contended requests poll until the holder
// finishes, so the loser of a race still reaches the transaction and
// lands on the waitlist instead of being bounced.
func (s *bookingService) acquireSlotLock(ctx context.Context, courtID string) (string, error) {
	lockID := repository.SlotLockID(courtID)
	deadline := time.Now().Add(s.cfg.SlotLockWaitTimeout)

	for {
		err := s.lockRepo.Acquire(ctx, lockID, s.cfg.SlotLockTTL)
		if err == nil {
			return lockID, nil
		}
		if !errors.Is(err, bookingerrors.ErrLockHeld) {
			return "", apperrors.Internal("Failed to acquire slot lock", err)
		}
		if time.Now().After(deadline) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Timeout("Request cancelled while waiting for slot lock")
		case <-time.After(s.cfg.SlotLockRetryInterval):
		}
	}
}

func (s *bookingService) sanitize(req *model.ReservationRequest) {
	req.UserName = sanitizer.SanitizeName(req.UserName)
	req.StartTime = req.StartTime.UTC()
	req.EndTime = req.EndTime.UTC()
}

func (s *bookingService) validate(req *model.ReservationRequest) error {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return apperrors.Validation("Booking request validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) publishEvent(ctx context.Context, eventType string, publish func(context.Context) error) {
	if err := publish(ctx); err != nil {
		s.cfg.Log.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}
