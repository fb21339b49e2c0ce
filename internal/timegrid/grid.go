// Package timegrid enumerates the future departure times to query.
package timegrid

import (
	"errors"
	"fmt"
	"time"
)

// Options shapes the grid. Hours are inclusive on both ends.
type Options struct {
	Days      int
	StartHour int
	EndHour   int
	Interval  time.Duration
}

// DefaultOptions is seven days of quarter hours from 14:00 to 19:00.
func DefaultOptions() Options {
	return Options{
		Days:      7,
		StartHour: 14,
		EndHour:   19,
		Interval:  15 * time.Minute,
	}
}

func (o Options) validate() error {
	switch {
	case o.Days <= 0:
		return errors.New("days must be positive")
	case o.Interval <= 0:
		return errors.New("interval must be positive")
	case o.StartHour < 0 || o.EndHour > 23:
		return fmt.Errorf("hours %d-%d out of range", o.StartHour, o.EndHour)
	case o.StartHour >= o.EndHour:
		return fmt.Errorf("start hour %d not before end hour %d", o.StartHour, o.EndHour)
	}
	return nil
}

// Slot is one departure time with its display label.
type Slot struct {
	Label string
	Time  time.Time
}

// Grid is the ordered set of departure slots.
type Grid struct {
	Slots []Slot
}

// Generate builds the grid starting the day after now, moved forward to
// Monday when that day is a weekend. Times use now's location.
func Generate(now time.Time, opts Options) (Grid, error) {
	if err := opts.validate(); err != nil {
		return Grid{}, fmt.Errorf("time grid: %w", err)
	}

	first := FirstDay(now)
	var g Grid
	for d := 0; d < opts.Days; d++ {
		day := first.AddDate(0, 0, d)
		start := time.Date(day.Year(), day.Month(), day.Day(), opts.StartHour, 0, 0, 0, now.Location())
		end := time.Date(day.Year(), day.Month(), day.Day(), opts.EndHour, 0, 0, 0, now.Location())
		for t := start; !t.After(end); t = t.Add(opts.Interval) {
			g.Slots = append(g.Slots, Slot{Label: Label(t), Time: t})
		}
	}
	return g, nil
}

// FirstDay returns midnight of the first day to query.
func FirstDay(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	switch day.Weekday() {
	case time.Saturday:
		day = day.AddDate(0, 0, 2)
	case time.Sunday:
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// Label formats a slot as "{Weekday}_{HH:MM}".
func Label(t time.Time) string {
	return t.Weekday().String() + "_" + t.Format("15:04")
}

// Len returns the number of slots.
func (g Grid) Len() int { return len(g.Slots) }

// Times returns the slot timestamps in order.
func (g Grid) Times() []time.Time {
	out := make([]time.Time, len(g.Slots))
	for i, s := range g.Slots {
		out[i] = s.Time
	}
	return out
}

// Labels maps each label to its timestamp. A label that repeats across
// weeks keeps the last timestamp, so iterate Slots when that matters.
func (g Grid) Labels() map[string]time.Time {
	out := make(map[string]time.Time, len(g.Slots))
	for _, s := range g.Slots {
		out[s.Label] = s.Time
	}
	return out
}
