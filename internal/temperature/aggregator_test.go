package temperature

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	saved   Records
	saves   int
	loadErr error
	saveErr error
}

func (m *memRepo) Load() (Records, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.saved.Clone(), nil
}

func (m *memRepo) Save(r Records) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = r.Clone()
	return nil
}

var today = time.Date(2025, 5, 10, 15, 0, 0, 0, time.Local)

func at(daysAgo, hour int) time.Time {
	d := today.AddDate(0, 0, -daysAgo)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.Local)
}

func newTestAggregator(repo Repository) *Aggregator {
	return NewAggregator(repo, WithClock(func() time.Time { return today }))
}

func TestAverageWindows(t *testing.T) {
	agg := newTestAggregator(nil)
	require.NoError(t, agg.Record("2025-05-10", at(0, 7), 10))
	require.NoError(t, agg.Record("2025-05-10", at(0, 9), 20))
	require.NoError(t, agg.Record("2025-05-10", at(0, 13), 30))
	require.NoError(t, agg.Record("2025-05-10", at(0, 20), 40))

	avg, ok := agg.Average(Morning)
	require.True(t, ok)
	assert.Equal(t, 20.0, avg)

	avg, ok = agg.Average(Afternoon)
	require.True(t, ok)
	assert.Equal(t, 30.0, avg)

	avg, ok = agg.Average(AllDay)
	require.True(t, ok)
	assert.Equal(t, 25.0, avg)
}

func TestAverageIgnoresOlderDays(t *testing.T) {
	agg := newTestAggregator(nil)
	require.NoError(t, agg.Record("2025-05-08", at(2, 9), 11))
	require.NoError(t, agg.Record("2025-05-09", at(1, 10), 12))
	require.NoError(t, agg.Record("2025-05-07", at(3, 9), 100))

	avg, ok := agg.Average(Morning)
	require.True(t, ok)
	assert.Equal(t, 11.5, avg)
}

func TestAverageRoundsToOneDecimal(t *testing.T) {
	agg := newTestAggregator(nil)
	for _, v := range []float64{20.1, 20.2, 20.2} {
		require.NoError(t, agg.Record("2025-05-10", at(0, 9), v))
	}
	avg, ok := agg.Average(Morning)
	require.True(t, ok)
	assert.Equal(t, 20.2, avg)
}

func TestAverageWithoutData(t *testing.T) {
	agg := newTestAggregator(nil)
	require.NoError(t, agg.Record("2025-05-10", at(0, 20), 18))

	_, ok := agg.Average(Morning)
	assert.False(t, ok)
}

func TestRecordRejectsBadDate(t *testing.T) {
	agg := newTestAggregator(nil)
	assert.Error(t, agg.Record("10.05.2025", today, 1))
	assert.Error(t, agg.RecordWeatherBounds("gestern", 1))
}

func TestWeatherBoundsWiden(t *testing.T) {
	agg := newTestAggregator(nil)
	for _, v := range []float64{12, 8, 15, 10} {
		require.NoError(t, agg.RecordWeatherBounds("2025-05-10", v))
	}
	rec := agg.Records()["2025-05-10"]
	require.NotNil(t, rec.Weather)
	assert.Equal(t, Bounds{Min: 8, Max: 15}, *rec.Weather)
}

func TestCompare(t *testing.T) {
	agg := newTestAggregator(nil)
	require.NoError(t, agg.Observe(at(0, 9), 20, 10))
	require.NoError(t, agg.Observe(at(0, 14), 23.5, 14.25))
	require.NoError(t, agg.Record("2025-05-08", at(2, 9), 19))

	deltas := agg.Compare()
	require.Len(t, deltas, RetentionDays)

	assert.Equal(t, "2025-05-10", deltas[0].Date)
	require.NotNil(t, deltas[0].SensorDelta)
	require.NotNil(t, deltas[0].WeatherDelta)
	assert.Equal(t, 3.5, *deltas[0].SensorDelta)
	assert.Equal(t, 4.3, *deltas[0].WeatherDelta)

	assert.Equal(t, "2025-05-09", deltas[1].Date)
	assert.Nil(t, deltas[1].SensorDelta)
	assert.Nil(t, deltas[1].WeatherDelta)

	require.NotNil(t, deltas[2].SensorDelta)
	assert.Equal(t, 0.0, *deltas[2].SensorDelta)
	assert.Nil(t, deltas[2].WeatherDelta)
}

func TestPersistenceRoundTrip(t *testing.T) {
	repo := &memRepo{}
	agg := newTestAggregator(repo)
	require.NoError(t, agg.Observe(at(0, 9), 21, 12))
	assert.Equal(t, 1, repo.saves)

	reopened, err := Open(repo, WithClock(func() time.Time { return today }))
	require.NoError(t, err)
	avg, ok := reopened.Average(Morning)
	require.True(t, ok)
	assert.Equal(t, 21.0, avg)
}

func TestPersistenceFailureKeepsMemory(t *testing.T) {
	repo := &memRepo{saveErr: errors.New("disk full")}
	agg := newTestAggregator(repo)

	err := agg.Record("2025-05-10", at(0, 9), 21)
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.saveErr)

	avg, ok := agg.Average(Morning)
	require.True(t, ok)
	assert.Equal(t, 21.0, avg)
}

func TestOpenLoadFailure(t *testing.T) {
	_, err := Open(&memRepo{loadErr: errors.New("corrupt")})
	assert.Error(t, err)
}

func TestParseWindow(t *testing.T) {
	assert.Equal(t, Morning, ParseWindow("Morning"))
	assert.Equal(t, Afternoon, ParseWindow(" afternoon "))
	assert.Equal(t, AllDay, ParseWindow(""))
	assert.Equal(t, AllDay, ParseWindow("night"))
}

type stubSensor struct {
	temp float64
	err  error
}

func (s stubSensor) Read(context.Context) (float64, error) { return s.temp, s.err }

type stubWeather struct {
	temp float64
	err  error
}

func (s stubWeather) CurrentTemperature(context.Context, string) (float64, error) { return s.temp, s.err }

func TestSamplerStoresBothValues(t *testing.T) {
	repo := &memRepo{}
	agg := newTestAggregator(repo)
	s := NewSampler(agg, stubSensor{temp: 22.4}, stubWeather{temp: 13.1}, "Goslar", nil)
	s.now = func() time.Time { return at(0, 10) }

	require.NoError(t, s.SampleAndStore(context.Background()))

	rec := agg.Records()["2025-05-10"]
	require.NotNil(t, rec)
	require.Len(t, rec.Readings, 1)
	assert.Equal(t, 22.4, rec.Readings[0].Temp)
	assert.Equal(t, Bounds{Min: 13.1, Max: 13.1}, *rec.Weather)
	assert.Equal(t, 1, repo.saves)
}

func TestSamplerSkipsUnavailableSources(t *testing.T) {
	cases := map[string]*Sampler{
		"no sensor":     NewSampler(nil, nil, stubWeather{temp: 1}, "Goslar", nil),
		"sensor error":  NewSampler(nil, stubSensor{err: errors.New("gone")}, stubWeather{temp: 1}, "Goslar", nil),
		"weather error": NewSampler(nil, stubSensor{temp: 1}, stubWeather{err: errors.New("offline")}, "Goslar", nil),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &memRepo{}
			s.agg = newTestAggregator(repo)
			require.NoError(t, s.SampleAndStore(context.Background()))
			assert.Empty(t, s.agg.Records())
			assert.Zero(t, repo.saves)
		})
	}
}

func TestSamplerReturnsPersistenceError(t *testing.T) {
	agg := newTestAggregator(&memRepo{saveErr: errors.New("read-only")})
	s := NewSampler(agg, stubSensor{temp: 20}, stubWeather{temp: 10}, "Goslar", nil)
	assert.Error(t, s.SampleAndStore(context.Background()))
}

func TestComparisonTable(t *testing.T) {
	spread := 3.5
	table := ComparisonTable([]DayDelta{
		{Date: "2025-05-10", SensorDelta: &spread},
		{Date: "2025-05-09"},
	})

	lines := strings.Split(table, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Sensor ΔT (°C)")
	assert.Equal(t, "2025-05-10   | 3.5              | No data", lines[2])
	assert.Equal(t, "2025-05-09   | No data          | No data", lines[3])
}
