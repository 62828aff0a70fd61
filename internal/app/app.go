package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/maischedule/roomsync/internal/config"
	"github.com/maischedule/roomsync/internal/gcal"
	"github.com/maischedule/roomsync/internal/notifier"
	"github.com/maischedule/roomsync/internal/repository"
	"github.com/maischedule/roomsync/internal/service"
)

// App собирает сервис целиком: пул, миграции, календарь, репозитории
type App struct {
	SyncService    *service.SyncService
	CleanupService *service.CleanupService
	Notifier       *notifier.TelegramNotifier // nil, если уведомления выключены

	cfg       *config.Config
	logger    *zap.Logger
	pool      *pgxpool.Pool
	scheduler *Scheduler
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := NewMigrator(pool, "migrations")
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		pool.Close()
		return nil, err
	}
	migrator.Close()

	cal, err := gcal.NewClient(ctx, cfg.GoogleCredentialsFile, cfg.GoogleCalendarID)
	if err != nil {
		pool.Close()
		return nil, err
	}

	lessonRepo := repository.NewLessonRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)

	a := &App{
		SyncService:    service.NewSyncService(lessonRepo, roomRepo, cal, cfg.AllowedRooms, logger),
		CleanupService: service.NewCleanupService(cal, logger),
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
	}

	if cfg.NotificationsEnabled() {
		a.Notifier, err = notifier.New(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	return a, nil
}

// Run запускает периодическую синхронизацию и блокируется до отмены контекста
func (a *App) Run(ctx context.Context) {
	var rn ReportNotifier
	if a.Notifier != nil {
		rn = a.Notifier
	}
	a.scheduler = NewScheduler(
		a.SyncService,
		rn,
		time.Duration(a.cfg.SyncIntervalHours)*time.Hour,
		a.logger,
	)
	a.scheduler.Start(ctx)

	<-ctx.Done()
	a.scheduler.Stop()
}

// Close освобождает пул соединений
func (a *App) Close() {
	a.pool.Close()
}
