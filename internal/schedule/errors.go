package schedule

import "errors"

var (
	// ErrUnparsableDate дата вида "17 марта" не распознана
	ErrUnparsableDate = errors.New("unparsable date")
	// ErrMalformedTimeRange диапазон времени не распадается на два HH:MM
	ErrMalformedTimeRange = errors.New("malformed time range")
)
