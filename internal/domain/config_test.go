package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

func TestSlotConfig_CheckDate(t *testing.T) {
	cfg := &SlotConfig{AdvanceBookingDays: 7}
	now := time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC)

	assert.NoError(t, cfg.CheckDate(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), now))
	assert.NoError(t, cfg.CheckDate(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), now))
	assert.ErrorIs(t, cfg.CheckDate(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), now), ErrDateTooFar)
	assert.ErrorIs(t, cfg.CheckDate(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), now), ErrDateInPast)

	unlimited := &SlotConfig{}
	assert.NoError(t, unlimited.CheckDate(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestSlotConfig_CheckNotice(t *testing.T) {
	cfg := &SlotConfig{MinBookingNoticeMinutes: 60}
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 3, 9, 15, 0, 0, time.UTC)

	assert.ErrorIs(t, cfg.CheckNotice(date, types.MustTimeString("10:00"), now), ErrTooLateToBook)
	assert.NoError(t, cfg.CheckNotice(date, types.MustTimeString("10:15"), now))
	assert.NoError(t, cfg.CheckNotice(date.AddDate(0, 0, 1), types.MustTimeString("08:00"), now))
}

func TestSlotConfig_CheckNotice_FacilityLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	cfg := &SlotConfig{}
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	// 07:30 UTC = 10:30 местного времени
	now := time.Date(2025, 3, 3, 7, 30, 0, 0, time.UTC).In(loc)

	assert.ErrorIs(t, cfg.CheckNotice(date, types.MustTimeString("10:00"), now), ErrTooLateToBook)
	assert.NoError(t, cfg.CheckNotice(date, types.MustTimeString("11:00"), now))
}
