package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/maischedule/roomsync/internal/model"
)

var timeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// DroppedRow строка, выброшенная из группировки с причиной
type DroppedRow struct {
	RowID int64
	Err   error
}

// GroupingResult канонические сессии плюс строки, не прошедшие разбор времени
type GroupingResult struct {
	Sessions []model.CanonicalSession
	Dropped  []DroppedRow
}

// GroupLessons схлопывает строки расписания в канонические сессии по SessionKey:
// одна пара, на которую ходят несколько групп, даёт несколько строк с одинаковым
// ключом. Группы и id строк объединяются, google_event_id берётся первый непустой
// (победитель при расхождении не фиксирован - см. DESIGN.md).
// Чистая свёртка без I/O: два вызова на одном снимке дают одинаковый результат.
func GroupLessons(lessons []model.Lesson) GroupingResult {
	var res GroupingResult

	buckets := make(map[model.SessionKey]*model.CanonicalSession)
	var order []model.SessionKey

	for i := range lessons {
		l := &lessons[i]

		if !timeRe.MatchString(l.StartTime) || !timeRe.MatchString(l.EndTime) {
			res.Dropped = append(res.Dropped, DroppedRow{
				RowID: l.RowID,
				Err:   fmt.Errorf("%w: %q", ErrMalformedTimeRange, l.TimeRange()),
			})
			continue
		}

		key := model.SessionKey{
			Week:      l.Week,
			Day:       l.Day,
			TimeRange: l.TimeRange(),
			Room:      l.Room,
			Subject:   l.Subject,
			Teacher:   l.Teacher,
		}

		sess, ok := buckets[key]
		if !ok {
			sess = &model.CanonicalSession{
				Key:       key,
				StartTime: l.StartTime,
				EndTime:   l.EndTime,
			}
			buckets[key] = sess
			order = append(order, key)
		}

		sess.Groups = append(sess.Groups, l.GroupName)
		sess.RowIDs = append(sess.RowIDs, l.RowID)
		if sess.EventID == nil && l.EventID != nil && *l.EventID != "" {
			sess.EventID = l.EventID
		}
	}

	for _, key := range order {
		sess := buckets[key]
		sess.Groups = dedupSorted(sess.Groups)
		res.Sessions = append(res.Sessions, *sess)
	}
	return res
}

// FilterByDateRange оставляет строки, чья дата попадает в [from..to] включительно.
// Дату приходится разбирать на каждой строке - в ключе группировки она
// остаётся сырой строкой. Строки с нераспознанной датой выбрасываются.
func FilterByDateRange(lessons []model.Lesson, from, to time.Time, today time.Time) ([]model.Lesson, []DroppedRow) {
	var kept []model.Lesson
	var dropped []DroppedRow

	for i := range lessons {
		l := lessons[i]
		date, err := ParseDay(l.Day, today)
		if err != nil {
			dropped = append(dropped, DroppedRow{RowID: l.RowID, Err: err})
			continue
		}
		if !date.Before(from) && !date.After(to) {
			kept = append(kept, l)
		}
	}
	return kept, dropped
}

func dedupSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
