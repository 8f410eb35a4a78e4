package calendar

import (
	"sort"
	"time"

	"atelier/pkg/models"
)

// MaxMarks caps the event indicators drawn in one day cell
const MaxMarks = 3

// Day is one cell of the month grid
type Day struct {
	Number   int
	Date     time.Time
	Events   []models.Event
	Today    bool
	Selected bool
}

// Marks is the number of indicators to draw. The event list itself is never truncated.
func (d Day) Marks() int {
	if len(d.Events) > MaxMarks {
		return MaxMarks
	}
	return len(d.Events)
}

// Grid is the derived layout of one month
type Grid struct {
	Year    int
	Month   time.Month
	Leading int // blank cells before day 1, equal to its weekday (0=Sunday)
	Days    []Day
}

// Cells is the total number of laid-out cells
func (g Grid) Cells() int {
	return g.Leading + len(g.Days)
}

// Weeks splits the grid into rows of seven; blanks are nil
func (g Grid) Weeks() [][]*Day {
	var weeks [][]*Day
	row := make([]*Day, 0, 7)
	for i := 0; i < g.Leading; i++ {
		row = append(row, nil)
	}
	for i := range g.Days {
		row = append(row, &g.Days[i])
		if len(row) == 7 {
			weeks = append(weeks, row)
			row = make([]*Day, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, nil)
		}
		weeks = append(weeks, row)
	}
	return weeks
}

// Day returns the cell for day n, or nil when out of range
func (g Grid) Day(n int) *Day {
	if n < 1 || n > len(g.Days) {
		return nil
	}
	return &g.Days[n-1]
}

// Build lays out a month. Events are placed by their start date in loc, selected may be
// the zero time for no selection, and now drives the today flag.
func Build(year int, month time.Month, events []models.Event, selected, now time.Time, loc *time.Location) Grid {
	if loc == nil {
		loc = time.Local
	}

	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// normalise overflowing months the same way navigation does
	year, month = firstDay.Year(), firstDay.Month()
	daysInMonth := DaysIn(year, month)

	byDay := GroupByDay(events, loc)
	today := now.In(loc)

	var sel time.Time
	if !selected.IsZero() {
		sel = selected.In(loc)
	}

	g := Grid{
		Year:    year,
		Month:   month,
		Leading: int(firstDay.Weekday()),
		Days:    make([]Day, daysInMonth),
	}
	for n := 1; n <= daysInMonth; n++ {
		date := time.Date(year, month, n, 0, 0, 0, 0, loc)
		key := DayKey{Year: year, Month: month, Day: n}
		g.Days[n-1] = Day{
			Number:   n,
			Date:     date,
			Events:   byDay[key],
			Today:    sameDay(today, year, month, n),
			Selected: !sel.IsZero() && sameDay(sel, year, month, n),
		}
	}
	return g
}

// DayKey identifies a local calendar day
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// KeyOf returns the local calendar day of t
func KeyOf(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return DayKey{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

// GroupByDay partitions events by the local day of their start date.
// Each bucket keeps events in start order.
func GroupByDay(events []models.Event, loc *time.Location) map[DayKey][]models.Event {
	out := make(map[DayKey][]models.Event)
	for _, e := range events {
		k := KeyOf(e.StartDate, loc)
		out[k] = append(out[k], e)
	}
	for k := range out {
		bucket := out[k]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].StartDate.Before(bucket[j].StartDate)
		})
	}
	return out
}

// EventsOn returns the events starting on the local day of date
func EventsOn(events []models.Event, date time.Time, loc *time.Location) []models.Event {
	return GroupByDay(events, loc)[KeyOf(date, loc)]
}

// DaysIn returns the number of days in a month
func DaysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Shift moves delta months from (year, month), carrying the year
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// Next is the month after (year, month)
func Next(year int, month time.Month) (int, time.Month) {
	return Shift(year, month, 1)
}

// Prev is the month before (year, month)
func Prev(year int, month time.Month) (int, time.Month) {
	return Shift(year, month, -1)
}

// ClampDay moves date into (year, month), keeping its day number when it exists
func ClampDay(date time.Time, year int, month time.Month, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	day := date.In(loc).Day()
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func sameDay(t time.Time, year int, month time.Month, day int) bool {
	return t.Year() == year && t.Month() == month && t.Day() == day
}
