package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/maischedule/roomsync/internal/gcal"
	"github.com/maischedule/roomsync/internal/model"
)

// CleanupService удаляет из календаря все события за диапазон дат.
// Используется перед полной перезаливкой семестра или для чистки тестовых
// прогонов.
type CleanupService struct {
	cal    gcal.API
	logger *zap.Logger

	deleteDelay time.Duration // пауза между удалениями, чтобы не упереться в burst-лимит
	callTimeout time.Duration
	retryBase   time.Duration
}

func NewCleanupService(cal gcal.API, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		cal:         cal,
		logger:      logger,
		deleteDelay: 100 * time.Millisecond,
		callTimeout: 30 * time.Second,
		retryBase:   time.Second,
	}
}

// DeleteRange удаляет события, начинающиеся в [from..to] включительно
// (границы - даты без времени). Конец диапазона включается расширением окна
// до полуночи следующего дня. Сначала выбираются ВСЕ страницы списка и только
// потом начинаются удаления: если удалять по ходу пагинации, параллельные
// изменения календаря могут спрятать часть событий.
func (s *CleanupService) DeleteRange(ctx context.Context, from, to time.Time) (*model.DeleteReport, error) {
	timeMin := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, moscowTZ)
	timeMax := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, moscowTZ).AddDate(0, 0, 1)

	s.logger.Info("Starting calendar cleanup",
		zap.Time("time_min", timeMin),
		zap.Time("time_max", timeMax))

	var events []gcal.Event
	pageToken := ""
	for {
		listCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		page, next, err := s.cal.List(listCtx, timeMin, timeMax, pageToken)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		events = append(events, page...)
		if next == "" {
			break
		}
		pageToken = next
	}

	report := &model.DeleteReport{From: timeMin, To: timeMax}
	if len(events) == 0 {
		s.logger.Info("No events in range")
		return report, nil
	}

	for i, ev := range events {
		if i > 0 {
			select {
			case <-time.After(s.deleteDelay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
		report.Outcomes = append(report.Outcomes, s.deleteOne(ctx, ev))
	}

	s.logger.Info("Calendar cleanup finished",
		zap.Int("deleted", report.Deleted()),
		zap.Int("failed", report.Failed()))

	return report, nil
}

// deleteOne до 3 попыток с паузами 1s/2s при превышении квоты;
// "не найдено" считается уже достигнутым состоянием, прочие ошибки
// оставляют событие в покое и помечают его как failed
func (s *CleanupService) deleteOne(ctx context.Context, ev gcal.Event) model.DeleteOutcome {
	out := model.DeleteOutcome{EventID: ev.ID, Summary: ev.Summary}

	notFound := false
	backoff := retry.WithMaxRetries(2, retry.NewExponential(s.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		err := s.cal.Delete(callCtx, ev.ID)
		switch {
		case err == nil:
			return nil
		case gcal.IsNotFound(err):
			notFound = true
			return nil
		case gcal.IsRateLimited(err):
			s.logger.Warn("Delete rate limited, retrying",
				zap.String("event_id", ev.ID))
			return retry.RetryableError(err)
		default:
			return err
		}
	})

	switch {
	case err != nil:
		s.logger.Error("Failed to delete event",
			zap.String("event_id", ev.ID), zap.Error(err))
		out.Status = model.DeleteFailed
		out.Reason = err.Error()
	case notFound:
		out.Status = model.DeleteNotFound
	default:
		s.logger.Info("Event deleted",
			zap.String("event_id", ev.ID),
			zap.String("summary", ev.Summary))
		out.Status = model.DeleteDone
	}
	return out
}
