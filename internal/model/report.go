package model

import "time"

type SessionStatus string

const (
	SessionCreated SessionStatus = "created"
	SessionUpdated SessionStatus = "updated"
	SessionSkipped SessionStatus = "skipped"
	SessionFailed  SessionStatus = "failed"
)

// SessionOutcome итог обработки одной сессии в рамках прохода синхронизации
type SessionOutcome struct {
	Key     SessionKey
	Status  SessionStatus
	EventID string
	Reason  string // заполняется для skipped/failed
}

// SyncReport итог одного прохода синхронизации с календарём
type SyncReport struct {
	PassID     string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []SessionOutcome
	// Строки, выброшенные до группировки (нераспознанное время или дата)
	DroppedRows int
}

func (r *SyncReport) Count(status SessionStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

func (r *SyncReport) Created() int { return r.Count(SessionCreated) }
func (r *SyncReport) Updated() int { return r.Count(SessionUpdated) }
func (r *SyncReport) Skipped() int { return r.Count(SessionSkipped) }
func (r *SyncReport) Failed() int  { return r.Count(SessionFailed) }

type DeleteStatus string

const (
	DeleteDone     DeleteStatus = "deleted"
	DeleteNotFound DeleteStatus = "not_found" // уже удалено - считаем успехом
	DeleteFailed   DeleteStatus = "failed"
)

// DeleteOutcome итог удаления одного события
type DeleteOutcome struct {
	EventID string
	Summary string
	Status  DeleteStatus
	Reason  string
}

// DeleteReport итог чистки календаря за диапазон дат
type DeleteReport struct {
	From     time.Time
	To       time.Time
	Outcomes []DeleteOutcome
}

func (r *DeleteReport) Deleted() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == DeleteDone || o.Status == DeleteNotFound {
			n++
		}
	}
	return n
}

func (r *DeleteReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == DeleteFailed {
			n++
		}
	}
	return n
}
