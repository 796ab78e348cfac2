package weather

import (
	"fmt"
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// germanConditions is used when no provider supplied a description.
var germanConditions = map[Condition]string{
	ConditionClear:  "klarer Himmel",
	ConditionCloudy: "bewölkt",
	ConditionRain:   "Regen",
	ConditionSnow:   "Schnee",
	ConditionStorm:  "Gewitter",
	ConditionMist:   "Nebel",
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location represents a place we look weather up for.
// City must be provided; Coords is filled in by geocoding when available.
type Location struct {
	City    string       `json:"city"`
	Country string       `json:"country,omitempty"`
	Coords  *Coordinates `json:"coords,omitempty"`
}

// Key returns a canonical string key for this location.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Query returns the "city,country" form accepted by most providers.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

// Report is the normalized, aggregated weather for a city, either current
// conditions or a forecast for one day.
type Report struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperatureC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`

	// Set for forecasts only.
	ForecastTime time.Time `json:"forecastTime,omitempty"`
	DaysAhead    int       `json:"daysAhead,omitempty"`

	Providers []ProviderContribution `json:"providers,omitempty"`
}

// IsForecast reports whether the report describes a future day.
func (r Report) IsForecast() bool {
	return !r.ForecastTime.IsZero()
}

// String renders the report as the chatbot prints it.
func (r Report) String() string {
	desc := r.Description
	if desc == "" {
		desc = germanConditions[r.Condition]
	}
	parts := []string{
		fmt.Sprintf("Temperatur: %.1f °C", r.Temperature),
		fmt.Sprintf("Beschreibung: %s", desc),
		fmt.Sprintf("Luftfeuchtigkeit: %.0f%%", r.Humidity),
	}
	if r.IsForecast() {
		parts = append(parts,
			fmt.Sprintf("Datum der Vorhersage: %s", r.ForecastTime.Format("2006-01-02 15:04:05")),
			fmt.Sprintf("Tage bis zur Vorhersage: %d Tag(e)", r.DaysAhead),
		)
	}
	return strings.Join(parts, ", ")
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}
