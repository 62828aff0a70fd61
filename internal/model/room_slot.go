package model

// SlotKey первичный ключ занятости аудитории
type SlotKey struct {
	Week      int
	Day       string
	StartTime string
	EndTime   string
	Room      string
}

// OccupiedSlot занятая аудитория с описательной частью
type OccupiedSlot struct {
	SlotKey
	Subject   string
	Teacher   string
	GroupName string
	Weekday   string // "Пн" - префикс дня до запятой
}

// FreeSlot свободная аудитория в наблюдаемой сетке недель/дней/слотов
type FreeSlot struct {
	SlotKey
}
