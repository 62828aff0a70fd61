package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maischedule/roomsync/internal/model"
)

// LessonRepository доступ к таблице schedule: чтение сырых строк расписания
// и запись привязки google_event_id обратно на строки-источники.
// Саму таблицу наполняет внешний парсер, мы её только читаем.
type LessonRepository struct {
	pool *pgxpool.Pool
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

const lessonColumns = `id, week, day, start_time, end_time, subject, teacher, room, group_name, google_event_id`

// GetAll получает весь текущий снимок расписания
func (r *LessonRepository) GetAll(ctx context.Context) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM schedule
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get lessons: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

// GetByGroup получает строки расписания одной группы
func (r *LessonRepository) GetByGroup(ctx context.Context, groupName string) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM schedule
		WHERE group_name = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, groupName)
	if err != nil {
		return nil, fmt.Errorf("get lessons by group: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

// GetByRooms получает строки расписания по списку аудиторий
func (r *LessonRepository) GetByRooms(ctx context.Context, rooms []string) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM schedule
		WHERE room = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, rooms)
	if err != nil {
		return nil, fmt.Errorf("get lessons by rooms: %w", err)
	}
	defer rows.Close()

	return scanLessons(rows)
}

// SetEventID записывает id события календаря на все строки-источники сессии
func (r *LessonRepository) SetEventID(ctx context.Context, rowIDs []int64, eventID string) error {
	query := `
		UPDATE schedule
		SET google_event_id = $1
		WHERE id = ANY($2)
	`

	tag, err := r.pool.Exec(ctx, query, eventID, rowIDs)
	if err != nil {
		return fmt.Errorf("set event id: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set event id: no rows matched")
	}

	return nil
}

// GetEventID получает привязку события для одной строки
func (r *LessonRepository) GetEventID(ctx context.Context, rowID int64) (*string, error) {
	query := `
		SELECT google_event_id
		FROM schedule
		WHERE id = $1
	`

	var eventID *string
	err := r.pool.QueryRow(ctx, query, rowID).Scan(&eventID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get event id: %w", err)
	}

	return eventID, nil
}

func scanLessons(rows pgx.Rows) ([]model.Lesson, error) {
	var lessons []model.Lesson
	for rows.Next() {
		var l model.Lesson
		err := rows.Scan(
			&l.RowID,
			&l.Week,
			&l.Day,
			&l.StartTime,
			&l.EndTime,
			&l.Subject,
			&l.Teacher,
			&l.Room,
			&l.GroupName,
			&l.EventID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}
