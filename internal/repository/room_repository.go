package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maischedule/roomsync/internal/model"
)

// RoomRepository таблицы occupied_rooms и free_rooms.
// Обе таблицы - производные от schedule и перезаписываются целиком.
type RoomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// ReplaceAll атомарно заменяет содержимое обеих таблиц: очистка и вставка
// идут в одной транзакции, чтобы читатель не увидел полупустое состояние
func (r *RoomRepository) ReplaceAll(ctx context.Context, occupied []model.OccupiedSlot, free []model.FreeSlot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM occupied_rooms`); err != nil {
		return fmt.Errorf("clear occupied_rooms: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM free_rooms`); err != nil {
		return fmt.Errorf("clear free_rooms: %w", err)
	}

	batch := &pgx.Batch{}
	for _, o := range occupied {
		batch.Queue(`
			INSERT INTO occupied_rooms (week, day, start_time, end_time, room, subject, teacher, group_name, weekday)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT DO NOTHING`,
			o.Week, o.Day, o.StartTime, o.EndTime, o.Room, o.Subject, o.Teacher, o.GroupName, o.Weekday,
		)
	}
	for _, f := range free {
		batch.Queue(`
			INSERT INTO free_rooms (week, day, start_time, end_time, room)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING`,
			f.Week, f.Day, f.StartTime, f.EndTime, f.Room,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert slot: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// CountFree количество свободных слотов (для сводки после прохода)
func (r *RoomRepository) CountFree(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM free_rooms`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count free rooms: %w", err)
	}
	return n, nil
}
