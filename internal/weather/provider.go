package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable means no provider could be reached or none returned data.
	ErrUnavailable = errors.New("weather data unavailable")
	// ErrLocationNotFound is returned when geocoding knows no such city.
	ErrLocationNotFound = errors.New("location not found")
	// ErrPastDate is returned for forecasts of days before today.
	ErrPastDate = errors.New("date is in the past")
	// ErrTooFarAhead is returned for forecasts beyond MaxForecastDays.
	ErrTooFarAhead = errors.New("date is too far ahead")
	// ErrNoForecast is returned when providers have no entry for the requested day.
	ErrNoForecast = errors.New("no forecast for the requested date")
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a Report.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	HumidityPct  float64
	WindSpeedMS  float64
	PressureHpa  float64
	PrecipMm     float64
	Condition    Condition
	Description  string
}

// Provider abstracts a current-weather source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ForecastProvider is implemented by providers that can look days ahead.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, loc Location, days int) ([]ProviderReading, error)
}

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Coordinates(ctx context.Context, city string) (Coordinates, error)
}
