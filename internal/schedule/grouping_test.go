package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maischedule/roomsync/internal/model"
)

func lesson(rowID int64, group string) model.Lesson {
	return model.Lesson{
		RowID:     rowID,
		Week:      5,
		Day:       "Пн, 17 марта",
		StartTime: "09:00",
		EndTime:   "10:30",
		Subject:   "Математический анализ",
		Teacher:   "Иванов И.И.",
		Room:      "ГУК Б-416",
		GroupName: group,
	}
}

func TestGroupLessons_CollapsesIdenticalSessions(t *testing.T) {
	res := GroupLessons([]model.Lesson{
		lesson(1, "М8О-110БВ-24"),
		lesson(2, "М8О-109БВ-24"),
	})

	require.Len(t, res.Sessions, 1)
	require.Empty(t, res.Dropped)

	sess := res.Sessions[0]
	assert.Equal(t, []string{"М8О-109БВ-24", "М8О-110БВ-24"}, sess.Groups)
	assert.ElementsMatch(t, []int64{1, 2}, sess.RowIDs)
	assert.Equal(t, "09:00 - 10:30", sess.Key.TimeRange)
}

func TestGroupLessons_DedupsRepeatedGroup(t *testing.T) {
	res := GroupLessons([]model.Lesson{
		lesson(1, "М8О-110БВ-24"),
		lesson(2, "М8О-110БВ-24"),
	})

	require.Len(t, res.Sessions, 1)
	assert.Equal(t, []string{"М8О-110БВ-24"}, res.Sessions[0].Groups)
	assert.Len(t, res.Sessions[0].RowIDs, 2)
}

func TestGroupLessons_DifferentRoomsStaySeparate(t *testing.T) {
	a := lesson(1, "М8О-110БВ-24")
	b := lesson(2, "М8О-110БВ-24")
	b.Room = "ГУК Б-422"

	res := GroupLessons([]model.Lesson{a, b})
	assert.Len(t, res.Sessions, 2)
}

func TestGroupLessons_FirstNonNilEventIDWins(t *testing.T) {
	a := lesson(1, "М8О-110БВ-24")
	b := lesson(2, "М8О-109БВ-24")
	id := "evt123"
	b.EventID = &id

	res := GroupLessons([]model.Lesson{a, b})
	require.Len(t, res.Sessions, 1)
	require.NotNil(t, res.Sessions[0].EventID)
	assert.Equal(t, "evt123", *res.Sessions[0].EventID)
}

func TestGroupLessons_EmptyEventIDIgnored(t *testing.T) {
	a := lesson(1, "М8О-110БВ-24")
	empty := ""
	a.EventID = &empty

	res := GroupLessons([]model.Lesson{a})
	require.Len(t, res.Sessions, 1)
	assert.Nil(t, res.Sessions[0].EventID)
}

func TestGroupLessons_DropsMalformedTimeRange(t *testing.T) {
	bad := lesson(7, "М8О-110БВ-24")
	bad.StartTime = "Неизвестно"
	bad.EndTime = "Неизвестно"

	res := GroupLessons([]model.Lesson{lesson(1, "М8О-110БВ-24"), bad})

	require.Len(t, res.Sessions, 1)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, int64(7), res.Dropped[0].RowID)
	assert.True(t, errors.Is(res.Dropped[0].Err, ErrMalformedTimeRange))
}

func TestGroupLessons_Deterministic(t *testing.T) {
	input := []model.Lesson{
		lesson(1, "М8О-110БВ-24"),
		lesson(2, "М8О-109БВ-24"),
		lesson(3, "М8О-111БВ-24"),
	}
	first := GroupLessons(input)
	second := GroupLessons(input)
	assert.Equal(t, first, second)
}

func TestFilterByDateRange(t *testing.T) {
	inRange := lesson(1, "М8О-110БВ-24")
	outOfRange := lesson(2, "М8О-110БВ-24")
	outOfRange.Day = "Пт, 25 апреля"
	bad := lesson(3, "М8О-110БВ-24")
	bad.Day = "когда-нибудь"

	today := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 22, 0, 0, 0, 0, time.UTC)

	kept, dropped := FilterByDateRange([]model.Lesson{inRange, outOfRange, bad}, from, to, today)

	require.Len(t, kept, 1)
	assert.Equal(t, int64(1), kept[0].RowID)
	require.Len(t, dropped, 1)
	assert.Equal(t, int64(3), dropped[0].RowID)
}

func TestFilterByDateRange_InclusiveBounds(t *testing.T) {
	onStart := lesson(1, "М8О-110БВ-24")
	onStart.Day = "Сб, 15 марта"
	onEnd := lesson(2, "М8О-110БВ-24")
	onEnd.Day = "Сб, 22 марта"

	today := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 22, 0, 0, 0, 0, time.UTC)

	kept, _ := FilterByDateRange([]model.Lesson{onStart, onEnd}, from, to, today)
	assert.Len(t, kept, 2)
}
