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

// OpenWeatherProvider implements weather.Provider and weather.ForecastProvider
// for OpenWeatherMap. Descriptions are requested in German.
type OpenWeatherProvider struct {
	name        string
	apiKey      string
	currentURL  string
	forecastURL string
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:        "openweathermap",
		apiKey:      apiKey,
		currentURL:  "https://api.openweathermap.org/data/2.5/weather",
		forecastURL: "https://api.openweathermap.org/data/2.5/forecast",
		httpCfg:     HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuit:     newCircuit("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Weather []owmCondition `json:"weather"`
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	var payload owmEntry
	if err := p.get(ctx, p.currentURL, loc, nil, &payload); err != nil {
		return weather.ProviderReading{}, err
	}
	return p.toReading(payload), nil
}

// FetchForecast returns the 3-hourly forecast entries covering the next days.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	// the free forecast endpoint serves at most 40 three-hour slots
	cnt := days * 8
	if cnt <= 0 || cnt > 40 {
		cnt = 40
	}

	var payload struct {
		List []owmEntry `json:"list"`
	}
	extra := url.Values{}
	extra.Set("cnt", fmt.Sprint(cnt))
	if err := p.get(ctx, p.forecastURL, loc, extra, &payload); err != nil {
		return nil, err
	}

	readings := make([]weather.ProviderReading, 0, len(payload.List))
	for _, e := range payload.List {
		readings = append(readings, p.toReading(e))
	}
	return readings, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, base string, loc weather.Location, extra url.Values, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnavailable)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lang", "de")
		if loc.Coords != nil {
			values.Set("lat", fmt.Sprintf("%f", loc.Coords.Lat))
			values.Set("lon", fmt.Sprintf("%f", loc.Coords.Lon))
		} else {
			values.Set("q", loc.Query())
		}
		for k, vs := range extra {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", base, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode openweather response: %v", weather.ErrUnavailable, err)
	}
	return nil
}

func (p *OpenWeatherProvider) toReading(e owmEntry) weather.ProviderReading {
	ts := time.Unix(e.Dt, 0).UTC()
	if e.Dt == 0 {
		ts = time.Now().UTC()
	}

	precip := e.Rain.OneH
	if precip == 0 {
		precip = e.Rain.ThreeH
	}

	var desc string
	if len(e.Weather) > 0 {
		desc = e.Weather[0].Description
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: e.Main.Temp,
		HumidityPct:  e.Main.Humidity,
		WindSpeedMS:  e.Wind.Speed,
		PressureHpa:  e.Main.Pressure,
		PrecipMm:     precip,
		Condition:    mapOpenWeatherCondition(e.Weather),
		Description:  desc,
	}
}

func mapOpenWeatherCondition(items []owmCondition) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
