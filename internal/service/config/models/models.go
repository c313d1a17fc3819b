package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Request модели

// UpdateConfigRequest запрос на изменение конфигурации уровня (facility, sport)
// SportID == nil - общая конфигурация площадки
// Все поля опциональны - обновляются только переданные значения
type UpdateConfigRequest struct {
	UserID                  int64  `json:"userId"`
	SportID                 *int64 `json:"sportId,omitempty"`
	SlotDurationMinutes     *int   `json:"slotDurationMinutes,omitempty"`
	HoldWindowMinutes       *int   `json:"holdWindowMinutes,omitempty"`
	AdvanceBookingDays      *int   `json:"advanceBookingDays,omitempty"`
	MinBookingNoticeMinutes *int   `json:"minBookingNoticeMinutes,omitempty"`
}

// IsEmpty true, если не передано ни одного поля
func (r *UpdateConfigRequest) IsEmpty() bool {
	return r.SlotDurationMinutes == nil && r.HoldWindowMinutes == nil &&
		r.AdvanceBookingDays == nil && r.MinBookingNoticeMinutes == nil
}

// ApplyTo переносит переданные поля в конфигурацию
func (r *UpdateConfigRequest) ApplyTo(config *domain.SlotConfig) {
	if r.SlotDurationMinutes != nil {
		config.SlotDurationMinutes = *r.SlotDurationMinutes
	}
	if r.HoldWindowMinutes != nil {
		config.HoldWindowMinutes = *r.HoldWindowMinutes
	}
	if r.AdvanceBookingDays != nil {
		config.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.MinBookingNoticeMinutes != nil {
		config.MinBookingNoticeMinutes = *r.MinBookingNoticeMinutes
	}
}

// Response модели

// ConfigResponse ответ с данными конфигурации слотов
// ID == 0 - встроенная конфигурация по умолчанию, в БД её нет
type ConfigResponse struct {
	ID                      int64      `json:"id"`
	FacilityID              int64      `json:"facilityId"`
	SportID                 *int64     `json:"sportId,omitempty"`
	SlotDurationMinutes     int        `json:"slotDurationMinutes"`
	HoldWindowMinutes       int        `json:"holdWindowMinutes"`
	AdvanceBookingDays      int        `json:"advanceBookingDays"`
	MinBookingNoticeMinutes int        `json:"minBookingNoticeMinutes"`
	IsDefault               bool       `json:"isDefault"`
	CreatedAt               *time.Time `json:"createdAt,omitempty"`
	UpdatedAt               *time.Time `json:"updatedAt,omitempty"`
}

// ConfigListResponse ответ со списком конфигураций
type ConfigListResponse struct {
	Configs []ConfigResponse `json:"configs"`
}

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.SlotConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	resp := &ConfigResponse{
		ID:                      c.ID,
		FacilityID:              c.FacilityID,
		SportID:                 c.SportID,
		SlotDurationMinutes:     c.SlotDurationMinutes,
		HoldWindowMinutes:       c.HoldWindowMinutes,
		AdvanceBookingDays:      c.AdvanceBookingDays,
		MinBookingNoticeMinutes: c.MinBookingNoticeMinutes,
		IsDefault:               c.IsDefault(),
	}
	if !c.IsDefault() {
		createdAt, updatedAt := c.CreatedAt, c.UpdatedAt
		resp.CreatedAt = &createdAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// FromDomainConfigList конвертирует список domain моделей в DTO
func FromDomainConfigList(configs []*domain.SlotConfig) *ConfigListResponse {
	resp := &ConfigListResponse{
		Configs: make([]ConfigResponse, 0, len(configs)),
	}

	for _, config := range configs {
		if configResp := FromDomainConfig(config); configResp != nil {
			resp.Configs = append(resp.Configs, *configResp)
		}
	}

	return resp
}
