package notifier

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/maischedule/roomsync/internal/model"
)

// TelegramNotifier шлёт сводку прохода в служебный чат.
// Доставка уведомлений - не часть синхронизации: ошибка отправки
// логируется и не влияет на итог прохода.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID string
	logger *zap.Logger
}

func New(token, chatID string, logger *zap.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

// NotifySyncReport отправляет итоги прохода синхронизации
func (n *TelegramNotifier) NotifySyncReport(ctx context.Context, report *model.SyncReport) {
	text := fmt.Sprintf(
		"<b>🗓 Синхронизация расписания завершена</b>\n"+
			"Создано: %d\nОбновлено: %d\nПропущено: %d\nОшибок: %d\nОтброшено строк: %d",
		report.Created(),
		report.Updated(),
		report.Skipped(),
		report.Failed(),
		report.DroppedRows,
	)
	n.send(ctx, text)
}

// NotifyDeleteReport отправляет итоги чистки календаря
func (n *TelegramNotifier) NotifyDeleteReport(ctx context.Context, report *model.DeleteReport) {
	text := fmt.Sprintf(
		"<b>🗑 Чистка календаря завершена</b>\n"+
			"Диапазон: %s — %s\nУдалено: %d\nОшибок: %d",
		report.From.Format("02.01.2006"),
		report.To.AddDate(0, 0, -1).Format("02.01.2006"),
		report.Deleted(),
		report.Failed(),
	)
	n.send(ctx, text)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		n.logger.Error("Failed to send telegram notification", zap.Error(err))
		return
	}
	n.logger.Info("Telegram notification sent")
}
