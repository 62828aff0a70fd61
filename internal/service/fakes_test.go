package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/maischedule/roomsync/internal/gcal"
	"github.com/maischedule/roomsync/internal/model"
)

func notFoundErr() error {
	return &googleapi.Error{Code: 404, Message: "Not Found"}
}

func rateLimitErr() error {
	return &googleapi.Error{Code: 429, Message: "Rate Limit Exceeded"}
}

// fakeCalendar календарь в памяти с управляемыми ошибками на каждую операцию
type fakeCalendar struct {
	mu     sync.Mutex
	nextID int
	events map[string]gcal.Event

	inserts int
	updates int

	insertErrs []error            // очередь ошибок перед успешным insert
	updateErrs map[string][]error // очередь ошибок на update по id
	deleteErrs map[string][]error // очередь ошибок на delete по id

	deleteAttempts map[string]int
	ops            []string // порядок вызовов: "list", "delete:<id>"
	pageSize       int      // >0 включает пагинацию List
	lastTimeMin    time.Time
	lastTimeMax    time.Time
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{
		events:         make(map[string]gcal.Event),
		updateErrs:     make(map[string][]error),
		deleteErrs:     make(map[string][]error),
		deleteAttempts: make(map[string]int),
	}
}

func (f *fakeCalendar) addEvent(id string, start time.Time, summary string) {
	f.events[id] = gcal.Event{ID: id, Summary: summary, Start: start}
}

func (f *fakeCalendar) List(_ context.Context, timeMin, timeMax time.Time, pageToken string) ([]gcal.Event, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "list")
	f.lastTimeMin = timeMin
	f.lastTimeMax = timeMax

	var all []gcal.Event
	for _, ev := range f.events {
		if !ev.Start.Before(timeMin) && ev.Start.Before(timeMax) {
			all = append(all, ev)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if f.pageSize <= 0 {
		return all, "", nil
	}

	offset := 0
	if pageToken != "" {
		offset, _ = strconv.Atoi(pageToken)
	}
	end := offset + f.pageSize
	if end > len(all) {
		end = len(all)
	}
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return all[offset:end], next, nil
}

func (f *fakeCalendar) Insert(_ context.Context, ev gcal.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return "", err
		}
	}
	f.nextID++
	id := fmt.Sprintf("evt-%d", f.nextID)
	ev.ID = id
	f.events[id] = ev
	f.inserts++
	return id, nil
}

func (f *fakeCalendar) Update(_ context.Context, eventID string, ev gcal.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q := f.updateErrs[eventID]; len(q) > 0 {
		err := q[0]
		f.updateErrs[eventID] = q[1:]
		if err != nil {
			return "", err
		}
	}
	if _, ok := f.events[eventID]; !ok {
		return "", notFoundErr()
	}
	ev.ID = eventID
	f.events[eventID] = ev
	f.updates++
	return eventID, nil
}

func (f *fakeCalendar) Delete(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteAttempts[eventID]++
	if q := f.deleteErrs[eventID]; len(q) > 0 {
		err := q[0]
		f.deleteErrs[eventID] = q[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := f.events[eventID]; !ok {
		return notFoundErr()
	}
	delete(f.events, eventID)
	f.ops = append(f.ops, "delete:"+eventID)
	return nil
}

// fakeLessonStore таблица schedule в памяти
type fakeLessonStore struct {
	mu      sync.Mutex
	lessons []model.Lesson
	setErr  error
}

func (f *fakeLessonStore) GetAll(_ context.Context) ([]model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Lesson(nil), f.lessons...), nil
}

func (f *fakeLessonStore) GetByGroup(_ context.Context, groupName string) ([]model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Lesson
	for _, l := range f.lessons {
		if l.GroupName == groupName {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLessonStore) GetByRooms(_ context.Context, rooms []string) ([]model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		allowed[r] = struct{}{}
	}
	var out []model.Lesson
	for _, l := range f.lessons {
		if _, ok := allowed[l.Room]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLessonStore) SetEventID(_ context.Context, rowIDs []int64, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	ids := make(map[int64]struct{}, len(rowIDs))
	for _, id := range rowIDs {
		ids[id] = struct{}{}
	}
	for i := range f.lessons {
		if _, ok := ids[f.lessons[i].RowID]; ok {
			id := eventID
			f.lessons[i].EventID = &id
		}
	}
	return nil
}

// fakeRoomStore запоминает последний ReplaceAll
type fakeRoomStore struct {
	mu       sync.Mutex
	occupied []model.OccupiedSlot
	free     []model.FreeSlot
	replaces int
	err      error
}

func (f *fakeRoomStore) ReplaceAll(_ context.Context, occupied []model.OccupiedSlot, free []model.FreeSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.occupied = occupied
	f.free = free
	f.replaces++
	return nil
}
