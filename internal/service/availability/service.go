package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	engine "github.com/m04kA/SMC-CourtBooking/internal/availability"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	configRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/config"
	scheduleRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtBooking/internal/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability/models"
)

// Service сервис доступности кортов
// Ответы носят справочный характер: окончательная проверка делается при бронировании
type Service struct {
	facilityClient    FacilityClient
	configRepo        ConfigRepository
	scheduleRepo      ScheduleRepository
	reservationRepo   ReservationRepository
	ratesRepo         RatesRepository
	resolver          PriceResolver
	timeProvider      TimeProvider
	logger            Logger
	defaultHoldWindow int
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	facilityClient FacilityClient,
	configRepo ConfigRepository,
	scheduleRepo ScheduleRepository,
	reservationRepo ReservationRepository,
	ratesRepo RatesRepository,
	resolver PriceResolver,
	timeProvider TimeProvider,
	defaultHoldWindowMinutes int,
	logger Logger,
) *Service {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &Service{
		facilityClient:    facilityClient,
		configRepo:        configRepo,
		scheduleRepo:      scheduleRepo,
		reservationRepo:   reservationRepo,
		ratesRepo:         ratesRepo,
		resolver:          resolver,
		timeProvider:      timeProvider,
		logger:            logger,
		defaultHoldWindow: defaultHoldWindowMinutes,
	}
}

// day всё прочитанное для одной площадки, вида спорта и даты
type day struct {
	facilityID int64
	sportID    int64
	date       time.Time
	localNow   time.Time
	config     *domain.SlotConfig
	grid       []domain.Slot
	courtIDs   []int64
	sources    engine.Sources
	rules      []*domain.RateRule
	promotions []*domain.Promotion
}

// GetDailyAvailability возвращает слоты дня со свободными кортами и ценами
// Слоты, которые уже нельзя забронировать из-за минимального уведомления, не возвращаются
func (s *Service) GetDailyAvailability(ctx context.Context, facilityID, sportID int64, date time.Time) (*models.DailyAvailability, error) {
	s.logger.Info("GetDailyAvailability: facility=%d, sport=%d, date=%s", facilityID, sportID, date.Format(domain.DateFormat))

	d, err := s.load(ctx, "GetDailyAvailability", facilityID, sportID, date)
	if err != nil {
		return nil, err
	}

	bookable := make([]domain.Slot, 0, len(d.grid))
	for _, slot := range d.grid {
		if d.config.CheckNotice(d.date, slot.Start, d.localNow) == nil {
			bookable = append(bookable, slot)
		}
	}

	slots := s.build(d, bookable)

	s.logger.Info("GetDailyAvailability: %d slots for facility=%d, sport=%d, date=%s",
		len(slots), facilityID, sportID, date.Format(domain.DateFormat))

	return &models.DailyAvailability{
		FacilityID:          facilityID,
		SportID:             sportID,
		Date:                d.date,
		SlotDurationMinutes: d.config.SlotDurationMinutes,
		Slots:               slots,
	}, nil
}

// GetSlotAvailability возвращает доступность одного слота сетки
func (s *Service) GetSlotAvailability(ctx context.Context, facilityID, sportID int64, date time.Time, slot domain.Slot) (*domain.SlotAvailability, error) {
	s.logger.Info("GetSlotAvailability: facility=%d, sport=%d, date=%s, slot=%s",
		facilityID, sportID, date.Format(domain.DateFormat), slot)

	if err := slot.Validate(); err != nil {
		s.logger.Warn("GetSlotAvailability: invalid slot %s: %v", slot, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	d, err := s.load(ctx, "GetSlotAvailability", facilityID, sportID, date)
	if err != nil {
		return nil, err
	}

	if !engine.ContainsSlot(d.grid, slot) {
		s.logger.Warn("GetSlotAvailability: slot %s is not in the grid of facility=%d on %s",
			slot, facilityID, date.Format(domain.DateFormat))
		return nil, ErrSlotNotInGrid
	}

	result := s.build(d, []domain.Slot{slot})
	return &result[0], nil
}

// GetMergedAvailability объединяет доступность нескольких площадок по ключу слота
// Площадки читаются параллельно; ошибка любой из них прерывает запрос
func (s *Service) GetMergedAvailability(ctx context.Context, date time.Time, candidates []models.Candidate) (*models.MergedAvailability, error) {
	s.logger.Info("GetMergedAvailability: %d candidates, date=%s", len(candidates), date.Format(domain.DateFormat))

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: at least one facility is required", ErrInvalidInput)
	}
	if len(candidates) > domain.MaxMergedSources {
		s.logger.Warn("GetMergedAvailability: too many candidates: %d", len(candidates))
		return nil, fmt.Errorf("%w: at most %d facilities can be merged", ErrInvalidInput, domain.MaxMergedSources)
	}

	days := make([]*day, len(candidates))
	slots := make([][]domain.SlotAvailability, len(candidates))
	occupancy := make([][]engine.SlotOccupancy, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			d, err := s.load(gctx, "GetMergedAvailability", c.FacilityID, c.SportID, date)
			if err != nil {
				return err
			}
			bookable := make([]domain.Slot, 0, len(d.grid))
			for _, slot := range d.grid {
				if d.config.CheckNotice(d.date, slot.Start, d.localNow) == nil {
					bookable = append(bookable, slot)
				}
			}
			days[i] = d
			occupancy[i] = engine.Merge(bookable, d.courtIDs, d.date, d.sources)
			slots[i] = s.build(d, bookable)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sources := make([]engine.Source, 0, len(candidates))
	priced := make(map[engine.SourceKey]map[string]*domain.SlotAvailability, len(candidates))
	for i, d := range days {
		key := engine.SourceKey{FacilityID: d.facilityID, SportID: d.sportID}
		sources = append(sources, engine.Source{
			Key:                key,
			GranularityMinutes: d.config.SlotDurationMinutes,
			Slots:              occupancy[i],
		})
		if _, ok := priced[key]; ok {
			continue
		}
		byKey := make(map[string]*domain.SlotAvailability, len(slots[i]))
		for j := range slots[i] {
			byKey[slots[i][j].Slot.Key()] = &slots[i][j]
		}
		priced[key] = byKey
	}

	merged, err := engine.MergeSources(sources)
	if err != nil {
		s.logger.Warn("GetMergedAvailability: %v", err)
		return nil, err
	}

	result := &models.MergedAvailability{
		Date:                domain.DateOnly(date),
		SlotDurationMinutes: days[0].config.SlotDurationMinutes,
		Slots:               make([]models.MergedSlot, 0, len(merged)),
	}
	for _, ms := range merged {
		slot := models.MergedSlot{Slot: ms.Slot, Sources: make([]models.MergedSource, 0, len(ms.Sources))}
		for _, src := range ms.Sources {
			source := models.MergedSource{FacilityID: src.Key.FacilityID, SportID: src.Key.SportID}
			sa := priced[src.Key][ms.Slot.Key()]
			if sa != nil {
				source.Quote = sa.Quote
				source.PricingError = sa.PricingError
			}
			for _, courtID := range src.FreeCourtIDs {
				source.FreeCourts = append(source.FreeCourts, courtQuote(sa, courtID))
			}
			slot.Sources = append(slot.Sources, source)
		}
		result.Slots = append(result.Slots, slot)
	}

	s.logger.Info("GetMergedAvailability: %d merged slots for %d candidates", len(result.Slots), len(candidates))
	return result, nil
}

// load читает конфигурацию, сетку и три источника занятости на дату
func (s *Service) load(ctx context.Context, op string, facilityID, sportID int64, date time.Time) (*day, error) {
	if facilityID <= 0 || sportID <= 0 {
		return nil, fmt.Errorf("%w: facilityID and sportID must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	date = domain.DateOnly(date)

	// 1. Площадка и её корты для вида спорта
	facility, err := s.facilityClient.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityservice.ErrFacilityNotFound) {
			s.logger.Warn("%s: facility id=%d not found", op, facilityID)
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("%s: failed to get facility id=%d: %v", op, facilityID, err)
		return nil, fmt.Errorf("%w: %s - get facility: %w", ErrInternal, op, err)
	}

	courts := facility.CourtsForSport(sportID)
	if len(courts) == 0 {
		s.logger.Warn("%s: facility id=%d has no active courts for sport=%d", op, facilityID, sportID)
		return nil, ErrSportNotOffered
	}
	courtIDs := make([]int64, 0, len(courts))
	for _, c := range courts {
		courtIDs = append(courtIDs, c.ID)
	}

	// 2. Конфигурация с учетом иерархии
	config, err := s.configRepo.GetConfigWithHierarchy(ctx, facilityID, &sportID)
	if err != nil {
		if !errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Error("%s: failed to get config: %v", op, err)
			return nil, fmt.Errorf("%w: %s - get config: %w", ErrInternal, op, err)
		}
		config = domain.DefaultSlotConfig(facilityID, s.defaultHoldWindow)
	}

	// 3. Окно бронирования в часовом поясе площадки
	localNow := s.timeProvider.Now().In(facility.Location())
	if err := config.CheckDate(date, localNow); err != nil {
		s.logger.Warn("%s: date %s rejected for facility=%d: %v", op, date.Format(domain.DateFormat), facilityID, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	// 4. Сетка слотов по недельному шаблону
	template, err := s.scheduleRepo.GetWeeklyTemplate(ctx, facilityID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
			s.logger.Error("%s: facility id=%d has no weekly template", op, facilityID)
			return nil, fmt.Errorf("%w: facility %d has no weekly template", domain.ErrConfiguration, facilityID)
		}
		s.logger.Error("%s: failed to get weekly template: %v", op, err)
		return nil, fmt.Errorf("%w: %s - get weekly template: %w", ErrInternal, op, err)
	}

	grid, err := engine.GenerateSlots(template, date, config.SlotDurationMinutes)
	if err != nil {
		s.logger.Error("%s: invalid schedule of facility=%d: %v", op, facilityID, err)
		return nil, err
	}

	d := &day{
		facilityID: facilityID,
		sportID:    sportID,
		date:       date,
		localNow:   localNow,
		config:     config,
		grid:       grid,
		courtIDs:   courtIDs,
	}
	if len(grid) == 0 {
		return d, nil
	}

	// 5. Источники занятости
	d.sources.Reservations, err = s.reservationRepo.List(ctx, domain.ReservationFilter{
		FacilityID: facilityID,
		Date:       date,
		CourtIDs:   courtIDs,
	})
	if err != nil {
		s.logger.Error("%s: failed to list reservations: %v", op, err)
		return nil, fmt.Errorf("%w: %s - list reservations: %w", ErrInternal, op, err)
	}

	d.sources.Recurring, err = s.scheduleRepo.ListRecurring(ctx, facilityID, date.Weekday(), nil)
	if err != nil {
		s.logger.Error("%s: failed to list recurring reservations: %v", op, err)
		return nil, fmt.Errorf("%w: %s - list recurring: %w", ErrInternal, op, err)
	}

	d.sources.Blackouts, err = s.scheduleRepo.ListBlackouts(ctx, facilityID, date)
	if err != nil {
		s.logger.Error("%s: failed to list blackouts: %v", op, err)
		return nil, fmt.Errorf("%w: %s - list blackouts: %w", ErrInternal, op, err)
	}

	// 6. Тарифы и промо
	d.rules, err = s.ratesRepo.ListRateRules(ctx, facilityID, sportID)
	if err != nil {
		s.logger.Error("%s: failed to list rate rules: %v", op, err)
		return nil, fmt.Errorf("%w: %s - list rate rules: %w", ErrInternal, op, err)
	}

	d.promotions, err = s.ratesRepo.ListActivePromotions(ctx, facilityID)
	if err != nil {
		s.logger.Error("%s: failed to list promotions: %v", op, err)
		return nil, fmt.Errorf("%w: %s - list promotions: %w", ErrInternal, op, err)
	}

	return d, nil
}

// build считает занятость и цены для выбранных слотов дня
func (s *Service) build(d *day, slots []domain.Slot) []domain.SlotAvailability {
	occupancy := engine.Merge(slots, d.courtIDs, d.date, d.sources)
	result := make([]domain.SlotAvailability, 0, len(occupancy))
	pricingFailures := 0

	for _, so := range occupancy {
		sa := domain.SlotAvailability{
			Slot:        so.Slot,
			FreeCourts:  make([]domain.FreeCourt, 0, len(so.Courts)),
			TotalCourts: len(so.Courts),
		}

		quote, err := s.resolver.Resolve(s.pricingInput(d, so.Slot, nil))
		if err != nil {
			sa.PricingError = err.Error()
			pricingFailures++
		} else {
			sa.Quote = quote
		}

		for _, courtID := range so.FreeCourtIDs() {
			id := courtID
			fc := domain.FreeCourt{CourtID: id}
			if q, err := s.resolver.Resolve(s.pricingInput(d, so.Slot, &id)); err == nil {
				fc.Quote = q
			}
			sa.FreeCourts = append(sa.FreeCourts, fc)
		}

		result = append(result, sa)
	}

	if pricingFailures > 0 {
		s.logger.Warn("pricing failed for %d of %d slots of facility=%d, sport=%d, date=%s",
			pricingFailures, len(occupancy), d.facilityID, d.sportID, d.date.Format(domain.DateFormat))
	}

	return result
}

func (s *Service) pricingInput(d *day, slot domain.Slot, courtID *int64) pricing.Input {
	return pricing.Input{
		FacilityID: d.facilityID,
		SportID:    d.sportID,
		CourtID:    courtID,
		Date:       d.date,
		Slot:       slot,
		Rules:      d.rules,
		Promotions: d.promotions,
	}
}

func courtQuote(sa *domain.SlotAvailability, courtID int64) domain.FreeCourt {
	if sa != nil {
		for _, fc := range sa.FreeCourts {
			if fc.CourtID == courtID {
				return fc
			}
		}
	}
	return domain.FreeCourt{CourtID: courtID}
}
