package model

// Lesson одна строка расписания, как её сохранил парсер
type Lesson struct {
	RowID     int64   `json:"row_id"`
	Week      int     `json:"week"`
	Day       string  `json:"day"` // "Пн, 17 марта" — дата в исходном виде, без нормализации
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Subject   string  `json:"subject"`
	Teacher   string  `json:"teacher"`
	Room      string  `json:"room"`
	GroupName string  `json:"group_name"`
	EventID   *string `json:"google_event_id"` // указатель - nil, пока событие не создано
}

// TimeRange возвращает диапазон времени в том виде, в котором он входит в ключ сессии
func (l *Lesson) TimeRange() string {
	return l.StartTime + " - " + l.EndTime
}

// SessionKey отпечаток занятия: строки с одинаковым ключом - одна и та же пара,
// на которую ходят несколько групп
type SessionKey struct {
	Week      int
	Day       string
	TimeRange string
	Room      string
	Subject   string
	Teacher   string
}

// CanonicalSession одна реальная пара после схлопывания строк по SessionKey
type CanonicalSession struct {
	Key       SessionKey
	StartTime string
	EndTime   string
	Groups    []string // отсортированы для детерминированного описания
	RowIDs    []int64  // все строки-источники, в которые пишется google_event_id
	EventID   *string  // первый непустой id среди строк-источников
}
