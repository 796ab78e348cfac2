package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/campusbot/internal/weather"
)

// OpenWeatherGeocoder resolves city names with OpenWeatherMap's direct geocoding API.
type OpenWeatherGeocoder struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherGeocoder(client *http.Client, apiKey string) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/geo/1.0/direct",
		httpCfg: HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuit: newCircuit("openweather-geo"),
	}
}

func (g *OpenWeatherGeocoder) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnavailable)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("limit", "1")
		values.Set("appid", g.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", g.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return weather.Coordinates{}, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: decode geocoding response: %v", weather.ErrUnavailable, err)
	}
	if len(payload) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, city)
	}
	return weather.Coordinates{Lat: payload[0].Lat, Lon: payload[0].Lon}, nil
}

// GoogleGeocoder resolves city names with the Google Maps geocoding API.
type GoogleGeocoder struct {
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder configures the process-wide Google API key used by the geocoder library.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{lookup: geocoder.Geocoding}
}

func (g *GoogleGeocoder) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	addr := geocoder.Address{City: city}
	if name, country, ok := strings.Cut(city, ","); ok {
		addr.City = strings.TrimSpace(name)
		addr.Country = strings.TrimSpace(country)
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	ch := make(chan result, 1)
	go func() {
		loc, err := g.lookup(addr)
		ch <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrUnavailable, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			if strings.Contains(r.err.Error(), "ZERO_RESULTS") {
				return weather.Coordinates{}, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, city)
			}
			return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrUnavailable, r.err)
		}
		return weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}

// CachingGeocoder remembers successful lookups; coordinates of a city do not change.
type CachingGeocoder struct {
	next  weather.Geocoder
	mu    sync.RWMutex
	cache map[string]weather.Coordinates
}

func NewCachingGeocoder(next weather.Geocoder) *CachingGeocoder {
	return &CachingGeocoder{next: next, cache: make(map[string]weather.Coordinates)}
}

func (c *CachingGeocoder) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	key := strings.ToLower(city)

	c.mu.RLock()
	coords, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return coords, nil
	}

	coords, err := c.next.Coordinates(ctx, city)
	if err != nil {
		return coords, err
	}

	c.mu.Lock()
	c.cache[key] = coords
	c.mu.Unlock()
	return coords, nil
}
