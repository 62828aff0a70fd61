package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Месяцы в родительном падеже, как они приходят со страницы расписания
var months = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var dayRe = regexp.MustCompile(`(\d{1,2})\s+([а-яА-Я]+)(?:\s+(\d{4}))?`)

// Если дата без года оказалась в прошлом дальше этого порога,
// считаем что неделя относится к следующему году
const rolloverDays = 60

// ParseDay разбирает строку вида "17 марта" или "17 марта 2025" в дату.
// Префикс дня недели до запятой ("Пн, 17 марта") игнорируется.
// Если год не указан - берётся текущий, и если дата давно в прошлом
// (>60 дней), переключаемся на следующий год.
func ParseDay(dayStr string, today time.Time) (time.Time, error) {
	m := dayRe.FindStringSubmatch(dayStr)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, dayStr)
	}

	dayNum, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, dayStr)
	}

	month, ok := months[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month in %q", ErrUnparsableDate, dayStr)
	}

	yearGiven := m[3] != ""
	year := today.Year()
	if yearGiven {
		year, _ = strconv.Atoi(m[3])
	}

	candidate := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
	// time.Date нормализует "32 января" в февраль - такие строки отбрасываем
	if candidate.Day() != dayNum || candidate.Month() != month {
		return time.Time{}, fmt.Errorf("%w: no such day %q", ErrUnparsableDate, dayStr)
	}

	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !yearGiven && candidate.Before(todayDate) && todayDate.Sub(candidate) > rolloverDays*24*time.Hour {
		candidate = time.Date(year+1, month, dayNum, 0, 0, 0, 0, time.UTC)
	}
	return candidate, nil
}

// Weekday возвращает префикс дня недели из строки вида "Пн, 17 марта"
func Weekday(dayStr string) string {
	if i := strings.Index(dayStr, ","); i >= 0 {
		return strings.TrimSpace(dayStr[:i])
	}
	return strings.TrimSpace(dayStr)
}
