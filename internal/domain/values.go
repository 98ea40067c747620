package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a money value decoded leniently from the backend. The backend
// serialises decimals as strings, older rows send plain numbers, and a few send
// garbage; anything unparseable decodes to zero instead of failing the payload.
type Amount struct {
	decimal.Decimal
}

func AmountFromString(v string) Amount {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return Amount{}
	}
	return Amount{Decimal: d}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(bytes.TrimSpace(data)); err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

func (a Amount) Float() float64 {
	return a.InexactFloat64()
}

var (
	isoNoZone  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(?::\d{2}(?:\.\d{1,6})?)?$`)
	hasZoneTag = regexp.MustCompile(`[zZ]|[+\-]\d{2}:?\d{2}$`)
)

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04-0700",
	"2006-01-02 15:04:05Z07:00",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// Layouts without zone information; these resolve in time.Local the same way
// a generic platform parser would.
var localLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// ParseTimestamp parses a backend timestamp. ISO strings without an offset are
// UTC (the backend emits naive UTC), so "Z" is appended before parsing. Every
// other string goes through the generic layouts unmodified. The zero time is
// returned when nothing matches.
func ParseTimestamp(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	if isoNoZone.MatchString(s) && !hasZoneTag.MatchString(s) {
		s += "Z"
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// Date-only ISO strings are UTC midnight.
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Timestamp decodes with ParseTimestamp. The zero time is the invalid-date
// sentinel: it never falls into a bucket or window. Present records that the
// payload carried a non-empty value, parseable or not.
type Timestamp struct {
	time.Time
	Present bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Present: !t.IsZero()}
}

func (t Timestamp) Valid() bool {
	return !t.IsZero()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Timestamp{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		t.Present = strings.TrimSpace(raw) != ""
		t.Time = ParseTimestamp(raw)
		return nil
	}
	t.Present = true
	// Epoch milliseconds.
	if ms, err := strconv.ParseFloat(string(data), 64); err == nil && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
		t.Time = time.UnixMilli(int64(ms)).UTC()
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// flexInt reads a JSON number or numeric string with parseInt semantics: the
// integer part is kept, fractions are truncated.
func flexInt(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	text := string(raw)
	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		text = strings.TrimSpace(quoted)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// flexFloat reads a JSON number or numeric string.
func flexFloat(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	text := string(raw)
	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		text = strings.TrimSpace(quoted)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
