package attempt_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	engine "github.com/m04kA/SMC-CourtBooking/internal/availability"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/config"
	scheduleRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtBooking/internal/pricing"
)

// Исходы попытки для метрики booking_attempts_total
const (
	outcomeSuccess      = "success"
	outcomeSlotTaken    = "slot_taken"
	outcomePricingError = "pricing_error"
	outcomeRejected     = "rejected"
	outcomeError        = "error"
)

// Settings параметры бронирования из конфигурации сервиса
type Settings struct {
	DefaultHoldWindowMinutes int // если у площадки не задано окно удержания
	SerializationRetries     int // повторы при конфликте сериализации, не больше maxSerializationRetries
}

// maxSerializationRetries конфликт хранилища повторяется не больше одного раза
const maxSerializationRetries = 1

// UseCase use case для попытки бронирования корта (FREE -> PENDING)
type UseCase struct {
	reservationRepo ReservationRepository
	configRepo      ConfigRepository
	scheduleRepo    ScheduleRepository
	ratesRepo       RatesRepository
	facilityClient  FacilityClient
	resolver        PriceResolver
	availability    AvailabilityReader
	events          EventPublisher
	metrics         Metrics
	txManager       TransactionManager
	timeProvider    TimeProvider
	settings        Settings
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	configRepo ConfigRepository,
	scheduleRepo ScheduleRepository,
	ratesRepo RatesRepository,
	facilityClient FacilityClient,
	resolver PriceResolver,
	availability AvailabilityReader,
	events EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	timeProvider TimeProvider,
	settings Settings,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if settings.SerializationRetries < 0 {
		settings.SerializationRetries = 0
	}
	if settings.SerializationRetries > maxSerializationRetries {
		settings.SerializationRetries = maxSerializationRetries
	}
	return &UseCase{
		reservationRepo: reservationRepo,
		configRepo:      configRepo,
		scheduleRepo:    scheduleRepo,
		ratesRepo:       ratesRepo,
		facilityClient:  facilityClient,
		resolver:        resolver,
		availability:    availability,
		events:          events,
		metrics:         metrics,
		txManager:       txManager,
		timeProvider:    timeProvider,
		settings:        settings,
		logger:          logger,
	}
}

// Execute выполняет попытку бронирования
// Занятость перепроверяется в сериализуемой транзакции, а вставку двух активных броней
// одного слота запрещает уникальный индекс хранилища
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	t, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("AttemptBooking: validation failed: %v", err)
		return nil, uc.fail(outcomeRejected, err)
	}

	uc.logger.Info("AttemptBooking: customer=%d, facility=%d, sport=%d, court=%d, date=%s, slot=%s",
		req.CustomerID, t.facilityID, t.sportID, t.courtID, t.date.Format(domain.DateFormat), t.slot)

	// 2. Площадка и корт
	facility, err := uc.facilityClient.GetFacility(ctx, t.facilityID)
	if err != nil {
		if errors.Is(err, facilityservice.ErrFacilityNotFound) {
			uc.logger.Warn("AttemptBooking: facility id=%d not found", t.facilityID)
			return nil, uc.fail(outcomeRejected, ErrFacilityNotFound)
		}
		uc.logger.Error("AttemptBooking: failed to get facility id=%d: %v", t.facilityID, err)
		return nil, uc.fail(outcomeError, fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err))
	}

	if err := validateCourt(facility, t.courtID, t.sportID); err != nil {
		uc.logger.Warn("AttemptBooking: court id=%d rejected for facility=%d, sport=%d: %v",
			t.courtID, t.facilityID, t.sportID, err)
		return nil, uc.fail(outcomeRejected, err)
	}

	// 3. Конфигурация слотов с учетом иерархии
	config, err := uc.configRepo.GetConfigWithHierarchy(ctx, t.facilityID, &t.sportID)
	if err != nil {
		if !errors.Is(err, configRepo.ErrConfigNotFound) {
			uc.logger.Error("AttemptBooking: failed to get config: %v", err)
			return nil, uc.fail(outcomeError, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err))
		}
		config = domain.DefaultSlotConfig(t.facilityID, uc.settings.DefaultHoldWindowMinutes)
		uc.logger.Info("AttemptBooking: using default config for facility=%d, sport=%d", t.facilityID, t.sportID)
	}

	// 4. Окно бронирования и минимальный запас времени в часовом поясе площадки
	now := uc.timeProvider.Now()
	localNow := now.In(facility.Location())

	if err := config.CheckDate(t.date, localNow); err != nil {
		uc.logger.Warn("AttemptBooking: date validation failed: %v", err)
		return nil, uc.fail(outcomeRejected, fmt.Errorf("%w: %w", ErrInvalidDate, err))
	}

	if err := config.CheckNotice(t.date, t.slot.Start, localNow); err != nil {
		uc.logger.Warn("AttemptBooking: booking time validation failed: %v", err)
		return nil, uc.fail(outcomeRejected, fmt.Errorf("%w: %w", ErrTooLateToBook, err))
	}

	// 5. Слот должен входить в сетку дня
	if err := uc.checkGrid(ctx, t, config); err != nil {
		return nil, err
	}

	// 6. Цена для выбранного корта; без цены бронировать нельзя
	quote, err := uc.quote(ctx, t)
	if err != nil {
		return nil, err
	}

	// 7. Удержание слота, с повтором при конфликте сериализации
	hold := &domain.Reservation{
		FacilityID:    t.facilityID,
		SportID:       t.sportID,
		CourtID:       t.courtID,
		CustomerID:    req.CustomerID,
		Date:          t.date,
		StartTime:     t.slot.Start,
		EndTime:       t.slot.End,
		Status:        domain.StatusPending,
		Price:         quote.Price,
		DepositAmount: quote.DepositAmount,
	}
	if quote.Promotion != nil {
		promotionID := quote.Promotion.ID
		hold.AppliedPromotionID = &promotionID
		hold.GiftItem = quote.Promotion.GiftItem
	}
	holdWindow := time.Duration(holdWindowMinutes(config, uc.settings.DefaultHoldWindowMinutes)) * time.Minute
	expiresAt := now.Add(holdWindow)
	hold.ExpiresAt = &expiresAt

	var created *domain.Reservation
	maxAttempts := 1 + uc.settings.SerializationRetries
	for attempt := 1; ; attempt++ {
		created, err = uc.hold(ctx, t, hold, now)
		if err == nil || !bookingRepo.IsRetryable(err) || attempt >= maxAttempts {
			break
		}
		uc.logger.Warn("AttemptBooking: serialization conflict on attempt %d for court=%d, retrying: %v",
			attempt, t.courtID, err)
	}

	if err != nil {
		if errors.Is(err, domain.ErrSlotAlreadyTaken) || bookingRepo.IsUniqueViolation(err) {
			uc.logger.Warn("AttemptBooking: court=%d on %s at %s is already taken",
				t.courtID, t.date.Format(domain.DateFormat), t.slot)
			return nil, uc.fail(outcomeSlotTaken, uc.slotTaken(ctx, t))
		}
		uc.logger.Error("AttemptBooking: failed to hold court=%d: %v", t.courtID, err)
		return nil, uc.fail(outcomeError, fmt.Errorf("%w: failed to hold slot: %w", ErrInternal, err))
	}

	uc.record(outcomeSuccess)
	uc.logger.Info("AttemptBooking: successfully created reservation id=%d, expires at %s",
		created.ID, expiresAt.Format("15:04:05"))

	if uc.events != nil {
		uc.events.Held(ctx, created)
	}

	return toResponse(created), nil
}

// hold одна попытка транзакции удержания
func (uc *UseCase) hold(ctx context.Context, t *target, hold *domain.Reservation, now time.Time) (*domain.Reservation, error) {
	var created *domain.Reservation

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Постоянные брони этого корта на дату становятся строками таблицы
		materialized, err := uc.reservationRepo.MaterializeRecurring(txCtx, t.courtID, t.date, now)
		if err != nil {
			return fmt.Errorf("materialize recurring: %w", err)
		}
		if materialized > 0 {
			uc.logger.Info("AttemptBooking: materialized %d recurring occurrences for court=%d on %s",
				materialized, t.courtID, t.date.Format(domain.DateFormat))
		}

		// 7.2. Блокировка площадки или корта
		blackouts, err := uc.scheduleRepo.ListBlackouts(txCtx, t.facilityID, t.date)
		if err != nil {
			return fmt.Errorf("list blackouts: %w", err)
		}
		if b := blockingBlackout(blackouts, t.courtID); b != nil {
			uc.logger.Warn("AttemptBooking: court=%d is blacked out on %s (rule id=%d)",
				t.courtID, t.date.Format(domain.DateFormat), b.ID)
			return domain.ErrSlotAlreadyTaken
		}

		// 7.3. Активные брони, пересекающие слот (FOR UPDATE)
		overlapping, err := uc.reservationRepo.ListActiveOverlapping(txCtx, t.courtID, t.date, t.slot)
		if err != nil {
			return fmt.Errorf("list overlapping reservations: %w", err)
		}
		if len(overlapping) > 0 {
			return domain.ErrSlotAlreadyTaken
		}

		// 7.4. Вставка; гонку с параллельной вставкой решает уникальный индекс
		row := *hold
		created, err = uc.reservationRepo.Create(txCtx, &row)
		if err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		return nil
	})

	return created, err
}

// checkGrid проверяет, что слот совпадает со слотом сетки дня
func (uc *UseCase) checkGrid(ctx context.Context, t *target, config *domain.SlotConfig) error {
	template, err := uc.scheduleRepo.GetWeeklyTemplate(ctx, t.facilityID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
			uc.logger.Error("AttemptBooking: facility id=%d has no weekly template", t.facilityID)
			return uc.fail(outcomeError, fmt.Errorf("%w: facility %d has no weekly template", domain.ErrConfiguration, t.facilityID))
		}
		uc.logger.Error("AttemptBooking: failed to get weekly template: %v", err)
		return uc.fail(outcomeError, fmt.Errorf("%w: failed to get weekly template: %v", ErrInternal, err))
	}

	grid, err := engine.GenerateSlots(template, t.date, config.SlotDurationMinutes)
	if err != nil {
		uc.logger.Error("AttemptBooking: invalid schedule of facility=%d: %v", t.facilityID, err)
		return uc.fail(outcomeError, err)
	}

	if !engine.ContainsSlot(grid, t.slot) {
		uc.logger.Warn("AttemptBooking: slot %s is not in the grid of facility=%d on %s",
			t.slot, t.facilityID, t.date.Format(domain.DateFormat))
		return uc.fail(outcomeRejected, fmt.Errorf("%w: %s", ErrInvalidTimeSlot, t.slot))
	}

	return nil
}

// quote считает цену слота для выбранного корта
func (uc *UseCase) quote(ctx context.Context, t *target) (*domain.Quote, error) {
	rules, err := uc.ratesRepo.ListRateRules(ctx, t.facilityID, t.sportID)
	if err != nil {
		uc.logger.Error("AttemptBooking: failed to list rate rules: %v", err)
		return nil, uc.fail(outcomeError, fmt.Errorf("%w: failed to list rate rules: %v", ErrInternal, err))
	}

	promotions, err := uc.ratesRepo.ListActivePromotions(ctx, t.facilityID)
	if err != nil {
		uc.logger.Error("AttemptBooking: failed to list promotions: %v", err)
		return nil, uc.fail(outcomeError, fmt.Errorf("%w: failed to list promotions: %v", ErrInternal, err))
	}

	courtID := t.courtID
	quote, err := uc.resolver.Resolve(pricing.Input{
		FacilityID: t.facilityID,
		SportID:    t.sportID,
		CourtID:    &courtID,
		Date:       t.date,
		Slot:       t.slot,
		Rules:      rules,
		Promotions: promotions,
	})
	if err != nil {
		uc.logger.Warn("AttemptBooking: pricing failed for court=%d at %s: %v", t.courtID, t.slot, err)
		return nil, uc.fail(outcomePricingError, err)
	}

	return quote, nil
}

// slotTaken собирает ошибку конфликта со свежей доступностью слота
func (uc *UseCase) slotTaken(ctx context.Context, t *target) error {
	taken := &SlotTakenError{
		CourtID: t.courtID,
		Date:    t.date.Format(domain.DateFormat),
		Slot:    t.slot,
	}
	if uc.availability == nil {
		return taken
	}

	availability, err := uc.availability.GetSlotAvailability(ctx, t.facilityID, t.sportID, t.date, t.slot)
	if err != nil {
		uc.logger.Warn("AttemptBooking: failed to load fresh availability for %s: %v", t.slot, err)
		return taken
	}
	taken.Availability = availability
	return taken
}

func (uc *UseCase) fail(outcome string, err error) error {
	uc.record(outcome)
	return err
}

func (uc *UseCase) record(outcome string) {
	if uc.metrics != nil {
		uc.metrics.RecordBookingAttempt(outcome)
	}
}

func toResponse(r *domain.Reservation) *Response {
	resp := &Response{
		ID:                 r.ID,
		FacilityID:         r.FacilityID,
		SportID:            r.SportID,
		CourtID:            r.CourtID,
		CustomerID:         r.CustomerID,
		Date:               r.Date,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		Status:             string(r.Status),
		Price:              r.Price,
		DepositAmount:      r.DepositAmount,
		AppliedPromotionID: r.AppliedPromotionID,
		GiftItem:           r.GiftItem,
		CreatedAt:          r.CreatedAt,
	}
	if r.ExpiresAt != nil {
		resp.ExpiresAt = *r.ExpiresAt
	}
	return resp
}
