package schedule

import (
	"sort"

	"github.com/maischedule/roomsync/internal/model"
)

// DedupOccupied убирает дубли по первичному ключу (week, day, start, end, room).
// При коллизии с разной описательной частью побеждает более поздняя строка.
func DedupOccupied(slots []model.OccupiedSlot) []model.OccupiedSlot {
	uniq := make(map[model.SlotKey]model.OccupiedSlot, len(slots))
	var order []model.SlotKey
	for _, s := range slots {
		if _, ok := uniq[s.SlotKey]; !ok {
			order = append(order, s.SlotKey)
		}
		uniq[s.SlotKey] = s
	}
	out := make([]model.OccupiedSlot, 0, len(order))
	for _, k := range order {
		out = append(out, uniq[k])
	}
	return out
}

// DeriveFree строит свободные комбинации строго для тех недель/дней/слотов,
// которые реально встретились в занятых: сетка наблюдаемая, а не теоретическая,
// иначе мы бы выдумывали свободные аудитории в дни без занятий вообще.
// Результат отсортирован и не пересекается с занятыми.
func DeriveFree(occupied []model.OccupiedSlot, allowedRooms []string) []model.FreeSlot {
	weekSet := make(map[int]struct{})
	daySet := make(map[string]struct{})
	type slot struct{ start, end string }
	slotSet := make(map[slot]struct{})
	occupiedSet := make(map[model.SlotKey]struct{}, len(occupied))

	for _, o := range occupied {
		weekSet[o.Week] = struct{}{}
		daySet[o.Day] = struct{}{}
		slotSet[slot{o.StartTime, o.EndTime}] = struct{}{}
		occupiedSet[o.SlotKey] = struct{}{}
	}

	weeks := make([]int, 0, len(weekSet))
	for w := range weekSet {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	days := make([]string, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Strings(days)

	slots := make([]slot, 0, len(slotSet))
	for s := range slotSet {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].start != slots[j].start {
			return slots[i].start < slots[j].start
		}
		return slots[i].end < slots[j].end
	})

	rooms := append([]string(nil), allowedRooms...)
	sort.Strings(rooms)

	// Полное произведение минус занятые: кардинальности маленькие
	// (десятки), так что материализация дешевле хитрого обхода
	var free []model.FreeSlot
	for _, w := range weeks {
		for _, d := range days {
			for _, s := range slots {
				for _, r := range rooms {
					key := model.SlotKey{Week: w, Day: d, StartTime: s.start, EndTime: s.end, Room: r}
					if _, busy := occupiedSet[key]; !busy {
						free = append(free, model.FreeSlot{SlotKey: key})
					}
				}
			}
		}
	}
	return free
}
