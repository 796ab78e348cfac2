// Package temperature records sensor and weather temperatures per calendar day
// and computes rolling averages over hour-of-day windows.
package temperature

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/campusbot/internal/common"
)

// Aggregator is the in-memory owner of all day records. Every mutation is
// written back to the repository before returning.
type Aggregator struct {
	mu      sync.RWMutex
	records Records

	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock used to decide which days count as recent.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates an empty aggregator. repo may be nil.
func NewAggregator(repo Repository, opts ...Option) *Aggregator {
	a := &Aggregator{
		records: make(Records),
		repo:    repo,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open creates an aggregator filled from repo.
func Open(repo Repository, opts ...Option) (*Aggregator, error) {
	a := NewAggregator(repo, opts...)
	if repo == nil {
		return a, nil
	}
	records, err := repo.Load()
	if err != nil {
		return a, fmt.Errorf("load day records: %w", err)
	}
	if records != nil {
		a.records = records
	}
	return a, nil
}

// Record appends a sensor reading to the record for date.
func (a *Aggregator) Record(date string, ts time.Time, temp float64) error {
	if err := validDate(date); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.recordLocked(date, ts, temp)
	return a.persistLocked("record")
}

// RecordWeatherBounds widens the weather min/max for date.
func (a *Aggregator) RecordWeatherBounds(date string, temp float64) error {
	if err := validDate(date); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.boundsLocked(date, temp)
	return a.persistLocked("record weather bounds")
}

// Observe records a sensor reading and a weather temperature taken at ts in
// one step, persisting once.
func (a *Aggregator) Observe(ts time.Time, sensorTemp, weatherTemp float64) error {
	date := common.DayKey(ts)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.recordLocked(date, ts, sensorTemp)
	a.boundsLocked(date, weatherTemp)
	return a.persistLocked("observe")
}

// Average returns the mean sensor reading over the last RetentionDays days
// whose hour falls in w, rounded to one decimal. ok is false without readings.
func (a *Aggregator) Average(w Window) (avg float64, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var (
		sum float64
		n   int
	)
	for _, day := range recentDays(a.now()) {
		rec, exists := a.records[day]
		if !exists {
			continue
		}
		for _, r := range rec.Readings {
			if w.Contains(r.Timestamp.Hour()) {
				sum += r.Temp
				n++
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*10) / 10, true
}

// Compare returns the sensor and weather spreads for each recent day, today first.
func (a *Aggregator) Compare() []DayDelta {
	a.mu.RLock()
	defer a.mu.RUnlock()

	days := recentDays(a.now())
	out := make([]DayDelta, 0, len(days))
	for _, day := range days {
		d := DayDelta{Date: day}
		if rec, ok := a.records[day]; ok {
			if len(rec.Readings) > 0 {
				lo, hi := rec.Readings[0].Temp, rec.Readings[0].Temp
				for _, r := range rec.Readings[1:] {
					lo = math.Min(lo, r.Temp)
					hi = math.Max(hi, r.Temp)
				}
				d.SensorDelta = round1(hi - lo)
			}
			if rec.Weather != nil {
				d.WeatherDelta = round1(rec.Weather.Max - rec.Weather.Min)
			}
		}
		out = append(out, d)
	}
	return out
}

// Records returns a copy of every stored day record.
func (a *Aggregator) Records() Records {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.records.Clone()
}

func (a *Aggregator) recordLocked(date string, ts time.Time, temp float64) {
	rec, ok := a.records[date]
	if !ok {
		rec = &DayRecord{}
		a.records[date] = rec
	}
	rec.Readings = append(rec.Readings, Reading{Timestamp: ts.Truncate(time.Second), Temp: temp})
}

func (a *Aggregator) boundsLocked(date string, temp float64) {
	rec, ok := a.records[date]
	if !ok {
		rec = &DayRecord{}
		a.records[date] = rec
	}
	if rec.Weather == nil {
		rec.Weather = &Bounds{Min: temp, Max: temp}
		return
	}
	rec.Weather.Widen(temp)
}

func (a *Aggregator) persistLocked(op string) error {
	if a.repo == nil {
		return nil
	}
	if err := a.repo.Save(a.records); err != nil {
		a.logger.Error("failed to persist day records", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("persist day records: %w", err)
	}
	return nil
}

// recentDays returns the keys of today and the preceding days, newest first.
func recentDays(now time.Time) []string {
	days := make([]string, RetentionDays)
	for i := range days {
		days[i] = common.DayKey(now.AddDate(0, 0, -i))
	}
	return days
}

func validDate(date string) error {
	if _, err := time.Parse(common.DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	return nil
}

func round1(v float64) *float64 {
	r := math.Round(v*10) / 10
	return &r
}
