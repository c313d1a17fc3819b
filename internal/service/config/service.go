package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	configRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/config"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtBooking/internal/service/config/models"
)

// Service сервис для работы с конфигурацией слотов площадки
type Service struct {
	configRepo               ConfigRepository
	facilityClient           FacilityClient
	defaultHoldWindowMinutes int
	logger                   Logger
}

// NewService создает новый экземпляр сервиса конфигурации
// defaultHoldWindowMinutes подставляется, когда площадка не настроила окно удержания
func NewService(
	configRepo ConfigRepository,
	facilityClient FacilityClient,
	defaultHoldWindowMinutes int,
	logger Logger,
) *Service {
	return &Service{
		configRepo:               configRepo,
		facilityClient:           facilityClient,
		defaultHoldWindowMinutes: defaultHoldWindowMinutes,
		logger:                   logger,
	}
}

// GetEffective получает действующую конфигурацию для вида спорта
// Иерархия: вид спорта -> площадка -> значения по умолчанию
// Публичный метод, права не проверяются
func (s *Service) GetEffective(ctx context.Context, facilityID int64, sportID *int64) (*models.ConfigResponse, error) {
	s.logger.Info("GetEffective: facility=%d, sport=%v", facilityID, sportID)

	config, err := s.effective(ctx, "GetEffective", facilityID, sportID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainConfig(config), nil
}

// List получает все сохранённые уровни конфигурации площадки
// Доступно только менеджерам площадки
func (s *Service) List(ctx context.Context, facilityID int64, userID int64) (*models.ConfigListResponse, error) {
	s.logger.Info("List: facility=%d, user=%d", facilityID, userID)

	if _, err := s.checkManagerAccess(ctx, facilityID, userID); err != nil {
		return nil, err
	}

	configs, err := s.configRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		s.logger.Error("List: failed to list configs for facility=%d: %v", facilityID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainConfigList(configs), nil
}

// Update частично обновляет конфигурацию уровня (facility, sport)
// Если уровня ещё нет, он создаётся из действующей конфигурации с наложенными полями.
// Доступно только менеджерам площадки
func (s *Service) Update(ctx context.Context, facilityID int64, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Update: facility=%d, sport=%v by user=%d", facilityID, req.SportID, req.UserID)

	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	// 1. Проверяем права и вид спорта
	facility, err := s.checkManagerAccess(ctx, facilityID, req.UserID)
	if err != nil {
		return nil, err
	}
	if req.SportID != nil && !facility.OffersSport(*req.SportID) {
		s.logger.Warn("Update: sport=%d is not offered at facility=%d", *req.SportID, facilityID)
		return nil, ErrSportNotOffered
	}

	// 2. Берём существующий уровень или действующую конфигурацию как основу
	base, err := s.configRepo.GetByFacilityAndSport(ctx, facilityID, req.SportID)
	if err != nil {
		if !errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Error("Update: failed to get config for facility=%d: %v", facilityID, err)
			return nil, fmt.Errorf("%w: Update - get config: %v", ErrInternal, err)
		}
		if base, err = s.effective(ctx, "Update", facilityID, req.SportID); err != nil {
			return nil, err
		}
	}

	updated := *base
	updated.ID = 0
	updated.FacilityID = facilityID
	updated.SportID = req.SportID
	req.ApplyTo(&updated)

	// 3. Валидируем итоговые значения
	if err := validateConfig(&updated); err != nil {
		s.logger.Warn("Update: validation failed for facility=%d: %v", facilityID, err)
		return nil, err
	}

	// 4. Сохраняем
	saved, err := s.configRepo.Upsert(ctx, &updated)
	if err != nil {
		s.logger.Error("Update: failed to save config for facility=%d: %v", facilityID, err)
		return nil, fmt.Errorf("%w: Update - upsert: %v", ErrInternal, err)
	}

	s.logger.Info("Update: config id=%d saved for facility=%d, sport=%v", saved.ID, facilityID, req.SportID)
	return models.FromDomainConfig(saved), nil
}

// Delete удаляет уровень конфигурации, после чего действует уровень выше
// Доступно только менеджерам площадки
func (s *Service) Delete(ctx context.Context, facilityID int64, sportID *int64, userID int64) error {
	s.logger.Info("Delete: facility=%d, sport=%v by user=%d", facilityID, sportID, userID)

	if _, err := s.checkManagerAccess(ctx, facilityID, userID); err != nil {
		return err
	}

	if err := s.configRepo.DeleteByFacilityAndSport(ctx, facilityID, sportID); err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			return ErrConfigNotFound
		}
		s.logger.Error("Delete: failed to delete config for facility=%d: %v", facilityID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: config deleted for facility=%d, sport=%v", facilityID, sportID)
	return nil
}

// Вспомогательные методы

func (s *Service) effective(ctx context.Context, op string, facilityID int64, sportID *int64) (*domain.SlotConfig, error) {
	config, err := s.configRepo.GetConfigWithHierarchy(ctx, facilityID, sportID)
	if err == nil {
		return config, nil
	}
	if errors.Is(err, configRepo.ErrConfigNotFound) {
		return domain.DefaultSlotConfig(facilityID, s.defaultHoldWindowMinutes), nil
	}

	s.logger.Error("%s: failed to get config for facility=%d: %v", op, facilityID, err)
	return nil, fmt.Errorf("%w: %s - get config: %v", ErrInternal, op, err)
}

// checkManagerAccess проверяет, что пользователь является менеджером площадки
func (s *Service) checkManagerAccess(ctx context.Context, facilityID int64, userID int64) (*domain.Facility, error) {
	facility, err := s.facilityClient.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityservice.ErrFacilityNotFound) {
			s.logger.Warn("checkManagerAccess: facility id=%d not found", facilityID)
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get facility id=%d: %v", facilityID, err)
		return nil, fmt.Errorf("%w: checkManagerAccess - failed to get facility: %v", ErrInternal, err)
	}

	if !facility.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of facility=%d", userID, facilityID)
		return nil, ErrAccessDenied
	}
	return facility, nil
}

// validateConfig проверяет границы значений конфигурации
func validateConfig(c *domain.SlotConfig) error {
	if c.SlotDurationMinutes < domain.MinSlotDurationMinutes || c.SlotDurationMinutes > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}

	if c.HoldWindowMinutes < domain.MinHoldWindowMinutes || c.HoldWindowMinutes > domain.MaxHoldWindowMinutes {
		return fmt.Errorf("%w: hold window must be between %d and %d minutes",
			ErrInvalidInput, domain.MinHoldWindowMinutes, domain.MaxHoldWindowMinutes)
	}

	if c.AdvanceBookingDays < domain.MinAdvanceBookingDays || c.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advance booking days must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	if c.MinBookingNoticeMinutes < domain.MinBookingNoticeMinutes || c.MinBookingNoticeMinutes > domain.MaxBookingNoticeMinutes {
		return fmt.Errorf("%w: min booking notice must be between %d and %d minutes",
			ErrInvalidInput, domain.MinBookingNoticeMinutes, domain.MaxBookingNoticeMinutes)
	}

	return nil
}
