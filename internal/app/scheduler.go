package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/maischedule/roomsync/internal/model"
	"github.com/maischedule/roomsync/internal/service"
)

// ReportNotifier доставка сводок; nil-безопасной заменой служит noopNotifier
type ReportNotifier interface {
	NotifySyncReport(ctx context.Context, report *model.SyncReport)
}

// Scheduler периодически запускает проход синхронизации и пересчёт
// свободных аудиторий
type Scheduler struct {
	syncService *service.SyncService
	notifier    ReportNotifier
	interval    time.Duration
	logger      *zap.Logger
	stopChan    chan struct{}
}

func NewScheduler(syncService *service.SyncService, notifier ReportNotifier, interval time.Duration, logger *zap.Logger) *Scheduler {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Scheduler{
		syncService: syncService,
		notifier:    notifier,
		interval:    interval,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start запускает фоновую задачу синхронизации
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Duration("interval", s.interval))

	go s.runSyncTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

func (s *Scheduler) runSyncTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runPass(ctx)
		case <-s.stopChan:
			s.logger.Info("Sync task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Sync task cancelled")
			return
		}
	}
}

// runPass один проход: синхронизация календаря, затем пересчёт занятости.
// Частичный прогресс при ошибке не откатывается - уже записанные привязки
// валидны для следующего прохода.
func (s *Scheduler) runPass(ctx context.Context) {
	report, err := s.syncService.SyncPass(ctx, service.SyncFilter{})
	if err != nil {
		s.logger.Error("Sync pass failed", zap.Error(err))
		return
	}

	s.notifier.NotifySyncReport(ctx, report)

	if _, _, err := s.syncService.RefreshAvailability(ctx); err != nil {
		s.logger.Error("Availability refresh failed", zap.Error(err))
	}
}

type noopNotifier struct{}

func (noopNotifier) NotifySyncReport(context.Context, *model.SyncReport) {}
