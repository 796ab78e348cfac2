package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/campusbot/internal/weather"
)

// OpenMeteoProvider implements weather.Provider and weather.ForecastProvider
// for Open-Meteo. It needs no API key but only works on geocoded locations.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuit: newCircuit("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	extra := url.Values{}
	extra.Set("current_weather", "true")

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			Time        string  `json:"time"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := p.get(ctx, loc, extra, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	// current_weather.time is an ISO8601 minute without zone, in UTC unless a timezone is requested
	ts, err := time.Parse("2006-01-02T15:04", payload.CurrentWeather.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		TemperatureC: payload.CurrentWeather.Temperature,
		// windspeed is reported in km/h
		WindSpeedMS: payload.CurrentWeather.WindSpeed / 3.6,
		Condition:   mapOpenMeteoCondition(payload.CurrentWeather.WeatherCode),
	}, nil
}

// FetchForecast returns one reading per day using the mean of the daily min and max.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	extra := url.Values{}
	extra.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode,precipitation_sum")
	extra.Set("forecast_days", fmt.Sprint(days))

	var payload struct {
		Daily struct {
			Time    []string  `json:"time"`
			TempMax []float64 `json:"temperature_2m_max"`
			TempMin []float64 `json:"temperature_2m_min"`
			Code    []int     `json:"weathercode"`
			Precip  []float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := p.get(ctx, loc, extra, &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	n := min(len(d.Time), len(d.TempMax), len(d.TempMin), len(d.Code))
	readings := make([]weather.ProviderReading, 0, n)
	for i := 0; i < n; i++ {
		day, err := time.Parse("2006-01-02", d.Time[i])
		if err != nil {
			continue
		}
		r := weather.ProviderReading{
			ProviderName: p.name,
			Timestamp:    day.Add(12 * time.Hour),
			TemperatureC: (d.TempMax[i] + d.TempMin[i]) / 2,
			Condition:    mapOpenMeteoCondition(d.Code[i]),
		}
		if i < len(d.Precip) {
			r.PrecipMm = d.Precip[i]
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func (p *OpenMeteoProvider) get(ctx context.Context, loc weather.Location, extra url.Values, out any) error {
	if loc.Coords == nil {
		return fmt.Errorf("%w: openmeteo requires latitude and longitude", weather.ErrUnavailable)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", loc.Coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", loc.Coords.Lon))
		for k, vs := range extra {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode openmeteo response: %v", weather.ErrUnavailable, err)
	}
	return nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on Open-Meteo weather codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
