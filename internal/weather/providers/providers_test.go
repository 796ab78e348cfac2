package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/campusbot/internal/weather"
)

var fastBackoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

func testOpenWeather(srv *httptest.Server) *OpenWeatherProvider {
	p := NewOpenWeatherProvider(srv.Client(), "key")
	p.currentURL = srv.URL + "/weather"
	p.forecastURL = srv.URL + "/forecast"
	p.httpCfg.Backoff = fastBackoff
	return p
}

func TestOpenWeatherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "de", r.URL.Query().Get("lang"))
		assert.Equal(t, "Goslar,DE", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"dt":1746871200,"main":{"temp":12.5,"humidity":70,"pressure":1012},
			"wind":{"speed":3.2},"weather":[{"main":"Clouds","description":"Mäßig bewölkt"}]}`))
	}))
	defer srv.Close()

	r, err := testOpenWeather(srv).Fetch(context.Background(), weather.Location{City: "Goslar", Country: "DE"})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, r.TemperatureC, 1e-9)
	assert.Equal(t, weather.ConditionCloudy, r.Condition)
	assert.Equal(t, "Mäßig bewölkt", r.Description)
	assert.Equal(t, time.Unix(1746871200, 0).UTC(), r.Timestamp)
}

func TestOpenWeatherForecastUsesCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "16", r.URL.Query().Get("cnt"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.Empty(t, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"list":[
			{"dt":1746871200,"main":{"temp":10},"weather":[{"main":"Rain","description":"Regen"}]},
			{"dt":1746882000,"main":{"temp":14},"weather":[{"main":"Clear"}]}]}`))
	}))
	defer srv.Close()

	loc := weather.Location{City: "Goslar", Coords: &weather.Coordinates{Lat: 51.9, Lon: 10.4}}
	readings, err := testOpenWeather(srv).FetchForecast(context.Background(), loc, 2)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, weather.ConditionRain, readings[0].Condition)
	assert.Equal(t, weather.ConditionClear, readings[1].Condition)
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")
	_, err := p.Fetch(context.Background(), weather.Location{City: "Goslar"})
	assert.ErrorIs(t, err, weather.ErrUnavailable)
}

func TestResilienceRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"main":{"temp":1}}`))
	}))
	defer srv.Close()

	r, err := testOpenWeather(srv).Fetch(context.Background(), weather.Location{City: "Goslar"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.TemperatureC, 1e-9)
	assert.Equal(t, int32(3), hits.Load())
}

func TestResilienceDoesNotRetryNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testOpenWeather(srv).Fetch(context.Background(), weather.Location{City: "Atlantis"})
	assert.ErrorIs(t, err, weather.ErrUnavailable)
	assert.ErrorIs(t, err, errNotFound)
	assert.Equal(t, int32(1), hits.Load())
}

func TestResilienceGivesUpAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testOpenWeather(srv).Fetch(context.Background(), weather.Location{City: "Goslar"})
	assert.ErrorIs(t, err, weather.ErrUnavailable)
	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, int32(fastBackoff.MaxRetries+1), hits.Load())
}

func TestWeatherAPIForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`{"forecast":{"forecastday":[
			{"date_epoch":1746835200,"day":{"avgtemp_c":11.5,"avghumidity":65,"condition":{"text":"Leichter Regen"}}}]}}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "key")
	p.forecastURL = srv.URL
	p.httpCfg.Backoff = fastBackoff

	readings, err := p.FetchForecast(context.Background(), weather.Location{City: "Goslar"}, 3)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.InDelta(t, 11.5, readings[0].TemperatureC, 1e-9)
	assert.Equal(t, time.Unix(1746835200, 0).UTC().Add(12*time.Hour), readings[0].Timestamp)
}

func TestOpenMeteoNeedsCoordinates(t *testing.T) {
	p := NewOpenMeteoProvider(http.DefaultClient)
	_, err := p.Fetch(context.Background(), weather.Location{City: "Goslar"})
	assert.ErrorIs(t, err, weather.ErrUnavailable)
}

func TestOpenWeatherGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Atlantis" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":51.9,"lon":10.43}]`))
	}))
	defer srv.Close()

	g := NewOpenWeatherGeocoder(srv.Client(), "key")
	g.baseURL = srv.URL
	g.httpCfg.Backoff = fastBackoff

	c, err := g.Coordinates(context.Background(), "Goslar")
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: 51.9, Lon: 10.43}, c)

	_, err = g.Coordinates(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestGoogleGeocoder(t *testing.T) {
	var got geocoder.Address
	g := &GoogleGeocoder{lookup: func(a geocoder.Address) (geocoder.Location, error) {
		got = a
		if a.City == "Atlantis" {
			return geocoder.Location{}, errors.New("ZERO_RESULTS")
		}
		return geocoder.Location{Latitude: 51.9, Longitude: 10.43}, nil
	}}

	c, err := g.Coordinates(context.Background(), "Goslar, DE")
	require.NoError(t, err)
	assert.Equal(t, "Goslar", got.City)
	assert.Equal(t, "DE", got.Country)
	assert.InDelta(t, 10.43, c.Lon, 1e-9)

	_, err = g.Coordinates(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

type countingGeocoder struct {
	calls int
}

func (c *countingGeocoder) Coordinates(context.Context, string) (weather.Coordinates, error) {
	c.calls++
	return weather.Coordinates{Lat: 1, Lon: 2}, nil
}

func TestCachingGeocoder(t *testing.T) {
	next := &countingGeocoder{}
	g := NewCachingGeocoder(next)

	for _, city := range []string{"Goslar", "goslar", "GOSLAR"} {
		_, err := g.Coordinates(context.Background(), city)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, next.calls)
}
