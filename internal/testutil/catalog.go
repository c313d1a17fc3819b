package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	configRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/config"
	scheduleRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/facilityservice"
)

// Catalog справочные данные площадок в памяти: справочник площадок,
// недельные шаблоны, блокировки, регулярные брони, конфигурация и тарифы
type Catalog struct {
	mu         sync.RWMutex
	Facilities map[int64]*domain.Facility
	Templates  map[int64]*domain.WeeklyTemplate
	Blackouts  []*domain.BlackoutRule
	Recurring  []*domain.RecurringReservation
	Configs    []*domain.SlotConfig
	RateRules  []*domain.RateRule
	Promotions []*domain.Promotion
}

func NewCatalog() *Catalog {
	return &Catalog{
		Facilities: make(map[int64]*domain.Facility),
		Templates:  make(map[int64]*domain.WeeklyTemplate),
	}
}

// AddBlackout добавляет блокировку, безопасно при параллельном чтении
func (c *Catalog) AddBlackout(b *domain.BlackoutRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Blackouts = append(c.Blackouts, b)
}

func (c *Catalog) GetFacility(_ context.Context, facilityID int64) (*domain.Facility, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.Facilities[facilityID]
	if !ok {
		return nil, facilityservice.ErrFacilityNotFound
	}
	copied := *f
	return &copied, nil
}

func (c *Catalog) GetWeeklyTemplate(_ context.Context, facilityID int64) (*domain.WeeklyTemplate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.Templates[facilityID]
	if !ok {
		return nil, scheduleRepo.ErrTemplateNotFound
	}
	return t, nil
}

func (c *Catalog) ListBlackouts(_ context.Context, facilityID int64, date time.Time) ([]*domain.BlackoutRule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*domain.BlackoutRule, 0)
	for _, b := range c.Blackouts {
		if b.FacilityID == facilityID && domain.SameDate(b.Date, date) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (c *Catalog) ListRecurring(_ context.Context, facilityID int64, weekday time.Weekday, courtID *int64) ([]*domain.RecurringReservation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*domain.RecurringReservation, 0)
	for _, rr := range c.Recurring {
		if rr.FacilityID != facilityID || rr.Weekday != weekday || !rr.IsActive {
			continue
		}
		if courtID != nil && rr.CourtID != *courtID {
			continue
		}
		result = append(result, rr)
	}
	return result, nil
}

func (c *Catalog) GetConfigWithHierarchy(_ context.Context, facilityID int64, sportID *int64) (*domain.SlotConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var facilityWide *domain.SlotConfig
	for _, cfg := range c.Configs {
		if cfg.FacilityID != facilityID {
			continue
		}
		if cfg.SportID == nil {
			facilityWide = cfg
			continue
		}
		if sportID != nil && *cfg.SportID == *sportID {
			return cfg, nil
		}
	}
	if facilityWide != nil {
		return facilityWide, nil
	}
	return nil, configRepo.ErrConfigNotFound
}

func (c *Catalog) ListRateRules(_ context.Context, facilityID, sportID int64) ([]*domain.RateRule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*domain.RateRule, 0)
	for _, r := range c.RateRules {
		if r.FacilityID == facilityID && r.SportID == sportID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (c *Catalog) ListActivePromotions(_ context.Context, facilityID int64) ([]*domain.Promotion, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*domain.Promotion, 0)
	for _, p := range c.Promotions {
		if p.FacilityID == facilityID && p.IsActive {
			result = append(result, p)
		}
	}
	return result, nil
}

func (c *Catalog) GetByFacilityAndSport(_ context.Context, facilityID int64, sportID *int64) (*domain.SlotConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.configIndex(facilityID, sportID); i >= 0 {
		copied := *c.Configs[i]
		return &copied, nil
	}
	return nil, configRepo.ErrConfigNotFound
}

func (c *Catalog) ListByFacility(_ context.Context, facilityID int64) ([]*domain.SlotConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*domain.SlotConfig, 0)
	for _, cfg := range c.Configs {
		if cfg.FacilityID != facilityID {
			continue
		}
		if cfg.SportID == nil {
			result = append([]*domain.SlotConfig{cfg}, result...)
			continue
		}
		result = append(result, cfg)
	}
	return result, nil
}

// Upsert заменяет уровень (facility, sport) или добавляет новый с очередным ID
func (c *Catalog) Upsert(_ context.Context, config *domain.SlotConfig) (*domain.SlotConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	saved := *config
	if i := c.configIndex(config.FacilityID, config.SportID); i >= 0 {
		saved.ID = c.Configs[i].ID
		saved.CreatedAt = c.Configs[i].CreatedAt
		c.Configs[i] = &saved
	} else {
		saved.ID = int64(len(c.Configs) + 1)
		c.Configs = append(c.Configs, &saved)
	}
	copied := saved
	return &copied, nil
}

func (c *Catalog) DeleteByFacilityAndSport(_ context.Context, facilityID int64, sportID *int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.configIndex(facilityID, sportID)
	if i < 0 {
		return configRepo.ErrConfigNotFound
	}
	c.Configs = append(c.Configs[:i], c.Configs[i+1:]...)
	return nil
}

func (c *Catalog) configIndex(facilityID int64, sportID *int64) int {
	for i, cfg := range c.Configs {
		if cfg.FacilityID != facilityID {
			continue
		}
		if sportID == nil && cfg.SportID == nil {
			return i
		}
		if sportID != nil && cfg.SportID != nil && *cfg.SportID == *sportID {
			return i
		}
	}
	return -1
}
