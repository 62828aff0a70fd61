package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/maischedule/roomsync/internal/gcal"
	"github.com/maischedule/roomsync/internal/model"
	"github.com/maischedule/roomsync/internal/schedule"
)

// Московское время фиксированным смещением: от tzdata хоста не зависим
var moscowTZ = time.FixedZone("UTC+3", 3*60*60)

const moscowTZName = "Europe/Moscow"

// LessonStore источник строк расписания и хранилище привязок к событиям
type LessonStore interface {
	GetAll(ctx context.Context) ([]model.Lesson, error)
	GetByGroup(ctx context.Context, groupName string) ([]model.Lesson, error)
	GetByRooms(ctx context.Context, rooms []string) ([]model.Lesson, error)
	SetEventID(ctx context.Context, rowIDs []int64, eventID string) error
}

// RoomStore хранилище занятых и свободных аудиторий
type RoomStore interface {
	ReplaceAll(ctx context.Context, occupied []model.OccupiedSlot, free []model.FreeSlot) error
}

// SyncFilter ограничивает проход одной группой и/или диапазоном дат
type SyncFilter struct {
	Group string
	From  *time.Time
	To    *time.Time
}

// SyncService синхронизирует расписание с Google Calendar: каждой реальной
// паре - ровно одно событие, созданное один раз и дальше обновляемое.
type SyncService struct {
	lessons      LessonStore
	rooms        RoomStore
	cal          gcal.API
	allowedRooms []string
	logger       *zap.Logger

	workers     int
	callTimeout time.Duration
	retryBase   time.Duration
	now         func() time.Time
}

func NewSyncService(
	lessons LessonStore,
	rooms RoomStore,
	cal gcal.API,
	allowedRooms []string,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		lessons:      lessons,
		rooms:        rooms,
		cal:          cal,
		allowedRooms: allowedRooms,
		logger:       logger,
		workers:      4,
		callTimeout:  30 * time.Second,
		retryBase:    time.Second,
		now:          time.Now,
	}
}

// SyncPass один проход синхронизации: снимок расписания схлопывается в
// канонические сессии, для каждой делается insert или update в календаре,
// полученный id пишется на все строки-источники. Ошибка одной сессии не
// прерывает остальные; фатальна только невозможность записать привязку.
func (s *SyncService) SyncPass(ctx context.Context, filter SyncFilter) (*model.SyncReport, error) {
	report := &model.SyncReport{
		PassID:    uuid.NewString(),
		StartedAt: s.now(),
	}

	log := s.logger.With(zap.String("pass_id", report.PassID))
	log.Info("Starting sync pass",
		zap.String("group", filter.Group),
		zap.Bool("date_filtered", filter.From != nil))

	lessons, err := s.fetchLessons(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch lessons: %w", err)
	}

	if filter.From != nil && filter.To != nil {
		var dropped []schedule.DroppedRow
		lessons, dropped = schedule.FilterByDateRange(lessons, *filter.From, *filter.To, s.now())
		for _, d := range dropped {
			log.Warn("Row excluded from date filter", zap.Int64("row_id", d.RowID), zap.Error(d.Err))
		}
		report.DroppedRows += len(dropped)
	}

	grouping := schedule.GroupLessons(lessons)
	for _, d := range grouping.Dropped {
		log.Warn("Row dropped from grouping", zap.Int64("row_id", d.RowID), zap.Error(d.Err))
	}
	report.DroppedRows += len(grouping.Dropped)

	outcomes := make([]model.SessionOutcome, len(grouping.Sessions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sess := range grouping.Sessions {
		// граница кооперативной отмены - одна сессия
		if gctx.Err() != nil {
			break
		}
		i, sess := i, sess
		g.Go(func() error {
			out, err := s.reconcileSession(gctx, log, sess)
			outcomes[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		// сюда попадают только ошибки персистентности: уже записанные
		// привязки валидны и не откатываются
		return nil, err
	}

	report.Outcomes = outcomes
	report.FinishedAt = s.now()

	log.Info("Sync pass finished",
		zap.Int("created", report.Created()),
		zap.Int("updated", report.Updated()),
		zap.Int("skipped", report.Skipped()),
		zap.Int("failed", report.Failed()),
		zap.Int("dropped_rows", report.DroppedRows))

	return report, nil
}

func (s *SyncService) fetchLessons(ctx context.Context, filter SyncFilter) ([]model.Lesson, error) {
	if filter.Group != "" {
		return s.lessons.GetByGroup(ctx, filter.Group)
	}
	return s.lessons.GetAll(ctx)
}

func (s *SyncService) reconcileSession(ctx context.Context, log *zap.Logger, sess model.CanonicalSession) (model.SessionOutcome, error) {
	out := model.SessionOutcome{Key: sess.Key}

	date, err := schedule.ParseDay(sess.Key.Day, s.now())
	if err != nil {
		log.Warn("Session skipped: unparsable date",
			zap.String("day", sess.Key.Day), zap.Error(err))
		out.Status = model.SessionSkipped
		out.Reason = err.Error()
		return out, nil
	}

	ev := s.buildEvent(sess, date)

	if sess.EventID != nil {
		newID, err := s.callUpdate(ctx, *sess.EventID, ev)
		if err != nil {
			if gcal.IsNotFound(err) {
				// Событие убрали из календаря руками. Не пересоздаём:
				// автоматический recreate тихо плодил бы дубли истории
				log.Warn("Update target missing, leaving as is",
					zap.String("event_id", *sess.EventID))
				out.Status = model.SessionSkipped
				out.Reason = "event no longer exists"
				return out, nil
			}
			log.Error("Failed to update event",
				zap.String("event_id", *sess.EventID), zap.Error(err))
			out.Status = model.SessionFailed
			out.Reason = err.Error()
			return out, nil
		}
		out.Status = model.SessionUpdated
		out.EventID = newID
	} else {
		newID, err := s.callInsert(ctx, ev)
		if err != nil {
			log.Error("Failed to insert event",
				zap.String("subject", sess.Key.Subject), zap.Error(err))
			out.Status = model.SessionFailed
			out.Reason = err.Error()
			return out, nil
		}
		out.Status = model.SessionCreated
		out.EventID = newID
	}

	if err := s.lessons.SetEventID(ctx, sess.RowIDs, out.EventID); err != nil {
		// потерянная привязка означает дубль на следующем проходе,
		// поэтому ошибка записи фатальна для всего прохода
		return out, fmt.Errorf("persist event binding: %w", err)
	}

	return out, nil
}

func (s *SyncService) buildEvent(sess model.CanonicalSession, date time.Time) gcal.Event {
	subject := sess.Key.Subject
	if subject == "" {
		subject = "No Subject"
	}

	description := fmt.Sprintf("Преподаватель: %s\nГруппы: %s\nНеделя: %d",
		sess.Key.Teacher,
		strings.Join(sess.Groups, ", "),
		sess.Key.Week,
	)

	return gcal.Event{
		Summary:     subject,
		Location:    sess.Key.Room,
		Description: description,
		Start:       combineDateTime(date, sess.StartTime),
		End:         combineDateTime(date, sess.EndTime),
		Timezone:    moscowTZName,
	}
}

// combineDateTime собирает дату и "HH:MM" в момент времени в московской зоне.
// Формат времени уже проверен группировкой.
func combineDateTime(date time.Time, hhmm string) time.Time {
	t, _ := time.Parse("15:04", hhmm)
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, moscowTZ)
}

func (s *SyncService) callInsert(ctx context.Context, ev gcal.Event) (string, error) {
	var id string
	err := s.withRateLimitRetry(ctx, func(ctx context.Context) error {
		got, err := s.cal.Insert(ctx, ev)
		if err != nil {
			return err
		}
		id = got
		return nil
	})
	return id, err
}

func (s *SyncService) callUpdate(ctx context.Context, eventID string, ev gcal.Event) (string, error) {
	var id string
	err := s.withRateLimitRetry(ctx, func(ctx context.Context) error {
		got, err := s.cal.Update(ctx, eventID, ev)
		if err != nil {
			return err
		}
		id = got
		return nil
	})
	return id, err
}

// withRateLimitRetry до 3 попыток с паузами 1s/2s при превышении квоты,
// остальные ошибки отдаются сразу
func (s *SyncService) withRateLimitRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(s.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		err := fn(callCtx)
		if err != nil && gcal.IsRateLimited(err) {
			s.logger.Warn("Calendar rate limited, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}

// RefreshAvailability пересчитывает занятые и свободные аудитории: строки
// расписания по разрешённым аудиториям дедуплицируются по первичному ключу,
// дополнение по наблюдаемой сетке пишется в free_rooms. Обе таблицы
// заменяются целиком в одной транзакции.
func (s *SyncService) RefreshAvailability(ctx context.Context) (occupiedCount, freeCount int, err error) {
	lessons, err := s.lessons.GetByRooms(ctx, s.allowedRooms)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch lessons for rooms: %w", err)
	}

	occupied := make([]model.OccupiedSlot, 0, len(lessons))
	for _, l := range lessons {
		occupied = append(occupied, model.OccupiedSlot{
			SlotKey: model.SlotKey{
				Week:      l.Week,
				Day:       l.Day,
				StartTime: l.StartTime,
				EndTime:   l.EndTime,
				Room:      l.Room,
			},
			Subject:   l.Subject,
			Teacher:   l.Teacher,
			GroupName: l.GroupName,
			Weekday:   schedule.Weekday(l.Day),
		})
	}

	occupied = schedule.DedupOccupied(occupied)
	free := schedule.DeriveFree(occupied, s.allowedRooms)

	if err := s.rooms.ReplaceAll(ctx, occupied, free); err != nil {
		return 0, 0, fmt.Errorf("replace room tables: %w", err)
	}

	s.logger.Info("Availability refreshed",
		zap.Int("occupied", len(occupied)),
		zap.Int("free", len(free)))

	return len(occupied), len(free), nil
}
