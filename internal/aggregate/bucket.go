// Package aggregate computes dashboard and report figures from in-memory
// snapshots of orders, customers and items. Everything here is pure: no I/O,
// no clocks, no shared state. Callers pass "now" explicitly.
package aggregate

import (
	"time"

	"invoiceflow/backend/internal/domain"
)

const dayKeyLayout = "2006-01-02"

// ParseTimestamp applies the backend timestamp rule: zone-less ISO strings are
// UTC. The zero time is returned for unparseable input.
func ParseTimestamp(raw string) time.Time {
	return domain.ParseTimestamp(raw)
}

// Bucketer slices time into calendar days of a fixed zone.
type Bucketer struct {
	loc *time.Location
}

func NewBucketer(loc *time.Location) Bucketer {
	if loc == nil {
		loc = time.UTC
	}
	return Bucketer{loc: loc}
}

func (b Bucketer) Location() *time.Location {
	if b.loc == nil {
		return time.UTC
	}
	return b.loc
}

// StartOfDay returns local midnight of the day containing t.
func (b Bucketer) StartOfDay(t time.Time) time.Time {
	loc := b.Location()
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DaysBack returns local midnight of the day `days` days before the day
// containing anchor.
func (b Bucketer) DaysBack(anchor time.Time, days int) time.Time {
	start := b.StartOfDay(anchor)
	return time.Date(start.Year(), start.Month(), start.Day()-days, 0, 0, 0, 0, b.Location())
}

// DayKey maps t to the YYYY-MM-DD key of its bucket. The invalid sentinel maps
// to "", which matches no bucket.
func (b Bucketer) DayKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(b.Location()).Format(dayKeyLayout)
}

// Days returns one zero-valued bucket per calendar day in [from, to], both
// ends inclusive. A reversed range yields an empty slice.
func (b Bucketer) Days(from time.Time, to time.Time) []domain.Bucket {
	if from.IsZero() || to.IsZero() {
		return []domain.Bucket{}
	}
	start := b.StartOfDay(from)
	end := b.StartOfDay(to)
	if start.After(end) {
		return []domain.Bucket{}
	}

	loc := b.Location()
	buckets := make([]domain.Bucket, 0, int(end.Sub(start).Hours()/24)+2)
	for i := 0; ; i++ {
		day := time.Date(start.Year(), start.Month(), start.Day()+i, 0, 0, 0, 0, loc)
		if day.After(end) {
			break
		}
		buckets = append(buckets, domain.Bucket{
			Date:  day,
			Key:   day.Format(dayKeyLayout),
			Label: day.Format("02/01"),
		})
	}
	return buckets
}

// Window is a half-open instant range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayWindow covers the calendar days [from, to] inclusive.
func (b Bucketer) DayWindow(from time.Time, to time.Time) Window {
	end := b.StartOfDay(to)
	return Window{
		Start: b.StartOfDay(from),
		End:   time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, b.Location()),
	}
}

// PrecedingWindow is the window covering the same number of calendar days
// that ends where w starts. Windows shorter than a day step back by duration.
func PrecedingWindow(w Window) Window {
	days := calendarDays(w.Start, w.End)
	if days <= 0 {
		return Window{Start: w.Start.Add(-w.End.Sub(w.Start)), End: w.Start}
	}
	y, m, d := w.Start.Date()
	h, mi, sec := w.Start.Clock()
	start := time.Date(y, m, d-days, h, mi, sec, w.Start.Nanosecond(), w.Start.Location())
	return Window{Start: start, End: w.Start}
}

// calendarDays counts date changes between a and b in a's zone.
func calendarDays(a time.Time, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
