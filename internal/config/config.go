package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Аудитории IT-центра по умолчанию; переопределяются через ALLOWED_ROOMS
var defaultAllowedRooms = []string{
	"ГУК Б-416", "ГУК Б-362", "ГУК Б-434", "ГУК Б-436", "ГУК Б-422",
	"ГУК Б-438", "ГУК Б-440", "ГУК Б-417", "ГУК Б-426", "ГУК Б-415",
	"ГУК Б-324", "ГУК Б-325", "ГУК Б-326", "ГУК Б-418", "ГУК Б-420",
}

type Config struct {
	DBDSN       string
	Environment string

	GoogleCalendarID      string
	GoogleCredentialsFile string

	TelegramToken  string
	TelegramChatID string

	SyncIntervalHours int
	AllowedRooms      []string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:                 os.Getenv("DB_DSN"),
		Environment:           os.Getenv("ENV"),
		GoogleCalendarID:      os.Getenv("GOOGLE_CALENDAR_ID"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:        os.Getenv("TELEGRAM_CHAT_ID"),
		SyncIntervalHours:     6,
		AllowedRooms:          defaultAllowedRooms,
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.GoogleCredentialsFile == "" {
		cfg.GoogleCredentialsFile = "service_account.json"
	}
	if v := os.Getenv("SYNC_INTERVAL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("SYNC_INTERVAL_HOURS must be a positive integer, got %q", v)
		}
		cfg.SyncIntervalHours = hours
	}
	if v := os.Getenv("ALLOWED_ROOMS"); v != "" {
		cfg.AllowedRooms = splitRooms(v)
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.GoogleCalendarID == "" {
		return nil, fmt.Errorf("GOOGLE_CALENDAR_ID is required but not set")
	}

	// Уведомления опциональны, но токен без чата бесполезен
	if cfg.TelegramToken != "" && cfg.TelegramChatID == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

// NotificationsEnabled включены ли Telegram-уведомления
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != ""
}

func splitRooms(v string) []string {
	var rooms []string
	for _, r := range strings.Split(v, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rooms = append(rooms, r)
		}
	}
	return rooms
}
