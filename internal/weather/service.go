package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MaxForecastDays is the furthest day ahead a forecast may be requested for.
const MaxForecastDays = 7

// Service orchestrates fetching from multiple providers.
type Service struct {
	providers []Provider
	geocoder  Geocoder
	country   string
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithGeocoder resolves cities to coordinates before providers are asked.
func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

// WithCountry sets the country code attached to every city lookup.
func WithCountry(code string) Option {
	return func(s *Service) { s.country = code }
}

// WithClock replaces the clock used for forecast date checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new Service.
func NewService(providers []Provider, opts ...Option) *Service {
	s := &Service{
		providers: providers,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current fetches current conditions from all providers concurrently and
// aggregates the successful readings.
func (s *Service) Current(ctx context.Context, city string) (Report, error) {
	if len(s.providers) == 0 {
		return Report{}, fmt.Errorf("%w: no weather providers configured", ErrUnavailable)
	}

	loc, err := s.locate(ctx, city)
	if err != nil {
		return Report{}, err
	}

	var wg sync.WaitGroup
	results := make([]*ProviderReading, len(s.providers))

	for i, p := range s.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// partial success is fine; one failing provider must not hide the others
				s.logger.Warn("provider fetch failed",
					zap.String("provider", p.Name()), zap.String("location", loc.Key()), zap.Error(err))
				return
			}
			results[i] = &r
		}()
	}
	wg.Wait()

	readings := collect(results)
	if len(readings) == 0 {
		return Report{}, fmt.Errorf("%w: no provider answered for %s", ErrUnavailable, loc.City)
	}
	return AggregateReadings(loc, readings), nil
}

// CurrentTemperature returns only the aggregated current temperature.
func (s *Service) CurrentTemperature(ctx context.Context, city string) (float64, error) {
	r, err := s.Current(ctx, city)
	if err != nil {
		return 0, err
	}
	return r.Temperature, nil
}

// Forecast returns the aggregated forecast for the calendar day of date.
// Dates before today yield ErrPastDate, dates more than MaxForecastDays ahead
// yield ErrTooFarAhead; neither touches the network.
func (s *Service) Forecast(ctx context.Context, city string, date time.Time) (Report, error) {
	days, err := CheckForecastDate(s.now(), date)
	if err != nil {
		return Report{}, err
	}

	loc, err := s.locate(ctx, city)
	if err != nil {
		return Report{}, err
	}

	var (
		wg      sync.WaitGroup
		results = make([][]ProviderReading, len(s.providers))
		capable int
	)

	for i, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}
		capable++

		wg.Add(1)
		go func() {
			defer wg.Done()

			readings, err := fp.FetchForecast(ctx, loc, days+1)
			if err != nil {
				s.logger.Warn("provider forecast failed",
					zap.String("provider", p.Name()), zap.String("location", loc.Key()), zap.Error(err))
				return
			}
			results[i] = readings
		}()
	}
	wg.Wait()

	if capable == 0 {
		return Report{}, fmt.Errorf("%w: no forecast providers configured", ErrUnavailable)
	}

	var (
		answered bool
		sameDay  []ProviderReading
		earliest time.Time
	)
	target := dayOf(date)
	for _, readings := range results {
		if readings == nil {
			continue
		}
		answered = true
		for _, r := range readings {
			if !dayOf(r.Timestamp.In(date.Location())).Equal(target) {
				continue
			}
			sameDay = append(sameDay, r)
			if earliest.IsZero() || r.Timestamp.Before(earliest) {
				earliest = r.Timestamp
			}
		}
	}

	if !answered {
		return Report{}, fmt.Errorf("%w: no forecast provider answered for %s", ErrUnavailable, loc.City)
	}
	if len(sameDay) == 0 {
		return Report{}, ErrNoForecast
	}

	report := AggregateReadings(loc, sameDay)
	report.ForecastTime = earliest.In(date.Location())
	report.DaysAhead = days
	return report, nil
}

// locate resolves coordinates when a geocoder is configured. Unknown cities
// fail; an unreachable geocoder only costs the coordinates.
func (s *Service) locate(ctx context.Context, city string) (Location, error) {
	loc := Location{City: city, Country: s.country}
	if s.geocoder == nil {
		return loc, nil
	}

	coords, err := s.geocoder.Coordinates(ctx, loc.Query())
	switch {
	case err == nil:
		loc.Coords = &coords
	case errors.Is(err, ErrLocationNotFound):
		return loc, err
	default:
		s.logger.Warn("geocoding failed; continuing without coordinates",
			zap.String("city", city), zap.Error(err))
	}
	return loc, nil
}

// CheckForecastDate returns how many calendar days date lies after now, or
// ErrPastDate / ErrTooFarAhead when it is outside the forecast window.
func CheckForecastDate(now, date time.Time) (int, error) {
	days := DaysAhead(now, date)
	switch {
	case days < 0:
		return days, ErrPastDate
	case days > MaxForecastDays:
		return days, ErrTooFarAhead
	}
	return days, nil
}

// DaysAhead counts calendar days from now's date to date's date.
func DaysAhead(now, date time.Time) int {
	return int(dayOf(date).Sub(dayOf(now)).Hours() / 24)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func collect(results []*ProviderReading) []ProviderReading {
	var out []ProviderReading
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
