package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/maischedule/roomsync/internal/app"
	"github.com/maischedule/roomsync/internal/config"
	"github.com/maischedule/roomsync/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	cmd := "run"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "run":
		logger.Info("Starting roomsync service",
			zap.String("environment", cfg.Environment),
			zap.Int("allowed_rooms", len(cfg.AllowedRooms)),
			zap.Int("sync_interval_hours", cfg.SyncIntervalHours))
		a.Run(ctx)

	case "sync":
		if err := runSync(ctx, a, args); err != nil {
			logger.Fatal("Sync failed", zap.Error(err))
		}

	case "cleanup":
		if err := runCleanup(ctx, a, args); err != nil {
			logger.Fatal("Cleanup failed", zap.Error(err))
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected run, sync or cleanup)\n", cmd)
		os.Exit(2)
	}
}

// runSync один проход синхронизации, опционально по группе и диапазону дат
func runSync(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	group := fs.String("group", "", "синхронизировать только одну группу")
	fromStr := fs.String("from", "", "начало диапазона, DD.MM.YYYY")
	toStr := fs.String("to", "", "конец диапазона включительно, DD.MM.YYYY")
	fs.Parse(args)

	filter := service.SyncFilter{Group: *group}
	if *fromStr != "" || *toStr != "" {
		from, to, err := parseRange(*fromStr, *toStr)
		if err != nil {
			return err
		}
		filter.From = &from
		filter.To = &to
	}

	report, err := a.SyncService.SyncPass(ctx, filter)
	if err != nil {
		return err
	}
	if a.Notifier != nil {
		a.Notifier.NotifySyncReport(ctx, report)
	}

	if _, _, err := a.SyncService.RefreshAvailability(ctx); err != nil {
		return err
	}

	fmt.Printf("created=%d updated=%d skipped=%d failed=%d dropped=%d\n",
		report.Created(), report.Updated(), report.Skipped(), report.Failed(), report.DroppedRows)
	return nil
}

// runCleanup удаляет события календаря за диапазон дат
func runCleanup(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	fromStr := fs.String("from", "", "начало диапазона, DD.MM.YYYY")
	toStr := fs.String("to", "", "конец диапазона включительно, DD.MM.YYYY")
	fs.Parse(args)

	from, to, err := parseRange(*fromStr, *toStr)
	if err != nil {
		return err
	}

	report, err := a.CleanupService.DeleteRange(ctx, from, to)
	if err != nil {
		return err
	}
	if a.Notifier != nil {
		a.Notifier.NotifyDeleteReport(ctx, report)
	}

	fmt.Printf("deleted=%d failed=%d\n", report.Deleted(), report.Failed())
	return nil
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := time.Parse("02.01.2006", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse -from: %w", err)
	}
	to, err := time.Parse("02.01.2006", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse -to: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to is before -from")
	}
	return from, to, nil
}
