package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
)

// Service сервис для работы с бронями кортов
// Все переходы статусов выполняются условным обновлением в БД,
// поэтому параллельные подтверждение, отмена и истечение не затирают друг друга
type Service struct {
	reservationRepo ReservationRepository
	facilityClient  FacilityClient
	events          EventPublisher
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса броней
func NewService(
	reservationRepo ReservationRepository,
	facilityClient FacilityClient,
	events EventPublisher,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		facilityClient:  facilityClient,
		events:          events,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// GetByID получает бронь по ID
// Клиент видит только свою бронь, менеджер - любую бронь своей площадки
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	reservation, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, reservation, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainReservation(reservation), nil
}

// GetUserReservations получает брони пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations for user=%d, status=%v", req.UserID, req.Status)

	var status *domain.ReservationStatus
	if req.Status != nil {
		parsed, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserReservations: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &parsed
	}

	reservations, err := s.reservationRepo.ListByCustomer(ctx, req.UserID, status)
	if err != nil {
		s.logger.Error("GetUserReservations: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserReservations: fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations), nil
}

// GetFacilityReservations получает брони площадки на дату
// Доступно только менеджерам площадки
func (s *Service) GetFacilityReservations(ctx context.Context, req *models.GetFacilityReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetFacilityReservations: facility=%d, date=%s, user=%d",
		req.FacilityID, req.Date.Format(domain.DateFormat), req.UserID)

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := s.checkManagerAccess(ctx, req.FacilityID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetFacilityReservations: invalid filter for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	reservations, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetFacilityReservations: repository error for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: GetFacilityReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetFacilityReservations: fetched %d reservations for facility=%d", len(reservations), req.FacilityID)
	return models.FromDomainReservationList(reservations), nil
}

// Confirm переводит PENDING -> CONFIRMED
// Повторное подтверждение уже подтверждённой брони - успех без изменений.
// Если бронь успела истечь или быть отменённой, возвращает domain.ErrInvalidTransition.
func (s *Service) Confirm(ctx context.Context, id int64, req *models.ConfirmRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Confirm: confirming reservation id=%d, user=%v", id, req.UserID)

	// 1. Подтверждать вручную может только менеджер площадки
	if req.UserID != nil {
		current, err := s.get(ctx, "Confirm", id)
		if err != nil {
			return nil, err
		}
		if err := s.checkManagerAccess(ctx, current.FacilityID, *req.UserID); err != nil {
			return nil, err
		}
	}

	// 2. Условное обновление WHERE status = 'pending'
	confirmed, err := s.reservationRepo.Confirm(ctx, id, req.PaymentRef, s.timeProvider.Now())
	if err == nil {
		s.logger.Info("Confirm: reservation id=%d confirmed", id)
		s.events.Confirmed(ctx, confirmed)
		return models.FromDomainReservation(confirmed), nil
	}
	if !errors.Is(err, bookingRepo.ErrStatusConflict) {
		s.logger.Error("Confirm: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	// 3. Строка уже не в PENDING: смотрим, чем закончилась гонка
	current, err := s.get(ctx, "Confirm", id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.StatusConfirmed {
		s.logger.Info("Confirm: reservation id=%d is already confirmed", id)
		return models.FromDomainReservation(current), nil
	}

	s.logger.Warn("Confirm: reservation id=%d cannot be confirmed, status=%s", id, current.Status)
	return nil, fmt.Errorf("%w: reservation %d is %s", domain.ErrInvalidTransition, id, current.Status)
}

// Cancel переводит PENDING или CONFIRMED -> CANCELLED
// Клиент отменяет свою бронь (actor=customer), менеджер - любую бронь площадки (actor=admin),
// без пользователя отменяет система (actor=system). Повторная отмена - domain.ErrInvalidTransition.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d, user=%v", id, req.UserID)

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		s.logger.Warn("Cancel: reason is too long for reservation id=%d", id)
		return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	// 1. Получаем бронь
	current, err := s.get(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	// 2. Определяем, кто отменяет
	actor := domain.ActorSystem
	if req.UserID != nil {
		if current.CustomerID == *req.UserID {
			actor = domain.ActorCustomer
		} else {
			if err := s.checkManagerAccess(ctx, current.FacilityID, *req.UserID); err != nil {
				s.logger.Warn("Cancel: access denied for user=%d to cancel reservation id=%d", *req.UserID, id)
				return nil, err
			}
			actor = domain.ActorAdmin
		}
	}

	// 3. Проверяем переход, из CANCELLED/EXPIRED/COMPLETED выхода нет
	from := domain.ActiveStatuses
	if req.PendingOnly {
		from = []domain.ReservationStatus{domain.StatusPending}
	}
	if !current.Status.CanTransitionTo(domain.StatusCancelled) || !containsStatus(from, current.Status) {
		s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", id, current.Status)
		return nil, fmt.Errorf("%w: reservation %d is %s", domain.ErrInvalidTransition, id, current.Status)
	}

	// 4. Условное обновление WHERE status IN (from)
	cancelled, err := s.reservationRepo.Cancel(ctx, id, from, actor, req.Reason, s.timeProvider.Now())
	if err != nil {
		if !errors.Is(err, bookingRepo.ErrStatusConflict) {
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		latest, getErr := s.get(ctx, "Cancel", id)
		if getErr != nil {
			return nil, getErr
		}
		s.logger.Warn("Cancel: reservation id=%d changed to %s concurrently", id, latest.Status)
		return nil, fmt.Errorf("%w: reservation %d is %s", domain.ErrInvalidTransition, id, latest.Status)
	}

	s.logger.Info("Cancel: reservation id=%d cancelled by %s", id, actor)
	s.events.Cancelled(ctx, cancelled)
	return models.FromDomainReservation(cancelled), nil
}

// Complete переводит CONFIRMED -> COMPLETED
// Доступно только менеджерам площадки
func (s *Service) Complete(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("Complete: completing reservation id=%d by user=%d", id, userID)

	current, err := s.get(ctx, "Complete", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, current.FacilityID, userID); err != nil {
		return nil, err
	}

	completed, err := s.reservationRepo.Complete(ctx, id, s.timeProvider.Now())
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			s.logger.Warn("Complete: reservation id=%d cannot be completed, status=%s", id, current.Status)
			return nil, fmt.Errorf("%w: reservation %d is not confirmed", domain.ErrInvalidTransition, id)
		}
		s.logger.Error("Complete: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Complete: reservation id=%d completed", id)
	s.events.Completed(ctx, completed)
	return models.FromDomainReservation(completed), nil
}

// Вспомогательные методы

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return reservation, nil
}

// checkUserAccess проверяет, что пользователь имеет доступ к брони
// Пользователь может видеть свою бронь или любую бронь площадки, если он её менеджер
func (s *Service) checkUserAccess(ctx context.Context, reservation *domain.Reservation, userID int64) error {
	if reservation.CustomerID == userID {
		return nil
	}

	if err := s.checkManagerAccess(ctx, reservation.FacilityID, userID); err != nil {
		if errors.Is(err, ErrInternal) {
			return err
		}
		return ErrAccessDenied
	}

	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером площадки
func (s *Service) checkManagerAccess(ctx context.Context, facilityID int64, userID int64) error {
	facility, err := s.facilityClient.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityservice.ErrFacilityNotFound) {
			s.logger.Warn("checkManagerAccess: facility id=%d not found", facilityID)
			return ErrFacilityNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get facility id=%d: %v", facilityID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get facility: %v", ErrInternal, err)
	}

	if facility.IsManager(userID) {
		return nil
	}

	s.logger.Warn("checkManagerAccess: user=%d is not a manager of facility=%d", userID, facilityID)
	return ErrAccessDenied
}

func containsStatus(statuses []domain.ReservationStatus, status domain.ReservationStatus) bool {
	for _, st := range statuses {
		if st == status {
			return true
		}
	}
	return false
}
