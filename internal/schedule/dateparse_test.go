package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDay_WithExplicitYear(t *testing.T) {
	got, err := ParseDay("17 марта 2025", date(2025, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 17), got)
}

func TestParseDay_ExplicitYearNotRolled(t *testing.T) {
	// Явный год уважаем, даже если дата давно в прошлом
	got, err := ParseDay("17 марта 2025", date(2025, time.December, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 17), got)
}

func TestParseDay_DefaultsToCurrentYear(t *testing.T) {
	got, err := ParseDay("17 марта", date(2025, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 17), got)
}

func TestParseDay_RollsToNextYear(t *testing.T) {
	// 17 марта без года, на дворе декабрь: до даты в текущем году
	// больше 60 дней в прошлом - значит это уже следующий год
	got, err := ParseDay("17 марта", date(2025, time.December, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 17), got)
}

func TestParseDay_RecentPastStaysInCurrentYear(t *testing.T) {
	// В прошлом, но меньше 60 дней - год не трогаем
	got, err := ParseDay("17 марта", date(2025, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 17), got)
}

func TestParseDay_IgnoresWeekdayPrefix(t *testing.T) {
	got, err := ParseDay("Пн, 17 марта 2025", date(2025, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 17), got)
}

func TestParseDay_Garbage(t *testing.T) {
	_, err := ParseDay("garbage", date(2025, time.March, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnparsableDate))
}

func TestParseDay_UnknownMonth(t *testing.T) {
	_, err := ParseDay("17 смарта", date(2025, time.March, 1))
	assert.True(t, errors.Is(err, ErrUnparsableDate))
}

func TestParseDay_NoSuchDay(t *testing.T) {
	_, err := ParseDay("32 января", date(2025, time.March, 1))
	assert.True(t, errors.Is(err, ErrUnparsableDate))
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, "Пн", Weekday("Пн, 17 марта"))
	assert.Equal(t, "17 марта", Weekday("17 марта"))
}
