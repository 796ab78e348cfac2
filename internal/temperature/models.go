package temperature

import (
	"strings"
	"time"
)

// RetentionDays is how many calendar days, today included, the aggregator considers.
const RetentionDays = 3

// Reading is one sensor sample.
type Reading struct {
	Timestamp time.Time
	Temp      float64
}

// Bounds is the weather temperature range observed during a day.
type Bounds struct {
	Min float64
	Max float64
}

// Widen extends the bounds to include temp.
func (b *Bounds) Widen(temp float64) {
	if temp < b.Min {
		b.Min = temp
	}
	if temp > b.Max {
		b.Max = temp
	}
}

// DayRecord holds everything recorded for one calendar day.
type DayRecord struct {
	Readings []Reading
	Weather  *Bounds
}

// Records maps a YYYY-MM-DD key to its day record.
type Records map[string]*DayRecord

// Clone returns a deep copy.
func (r Records) Clone() Records {
	out := make(Records, len(r))
	for day, rec := range r {
		cp := &DayRecord{Readings: append([]Reading(nil), rec.Readings...)}
		if rec.Weather != nil {
			w := *rec.Weather
			cp.Weather = &w
		}
		out[day] = cp
	}
	return out
}

// Repository loads and saves the full set of day records.
type Repository interface {
	Load() (Records, error)
	Save(Records) error
}

// Window is a named hour-of-day range, end exclusive.
type Window struct {
	Name  string
	Start int
	End   int
}

var (
	Morning   = Window{Name: "morning", Start: 8, End: 12}
	Afternoon = Window{Name: "afternoon", Start: 12, End: 18}
	AllDay    = Window{Name: "all", Start: 0, End: 24}
)

// Contains reports whether hour falls in [Start, End).
func (w Window) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// ParseWindow maps a window name to its range; unknown names mean the whole day.
func ParseWindow(name string) Window {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Morning.Name:
		return Morning
	case Afternoon.Name:
		return Afternoon
	default:
		return AllDay
	}
}

// DayDelta is the spread of sensor and weather temperatures for one day.
type DayDelta struct {
	Date         string   `json:"date"`
	SensorDelta  *float64 `json:"sensorDelta"`
	WeatherDelta *float64 `json:"weatherDelta"`
}
