package temperature

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SensorSource reads the local temperature in °C.
type SensorSource interface {
	Read(ctx context.Context) (float64, error)
}

// WeatherSource returns the current outside temperature for a city.
type WeatherSource interface {
	CurrentTemperature(ctx context.Context, city string) (float64, error)
}

// Sampler takes one paired sensor/weather sample per call.
type Sampler struct {
	agg     *Aggregator
	sensor  SensorSource
	weather WeatherSource
	city    string
	now     func() time.Time
	logger  *zap.Logger
}

// NewSampler wires a sampler. sensor and weather may be nil, in which case
// every sample is skipped.
func NewSampler(agg *Aggregator, sensor SensorSource, weather WeatherSource, city string, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		agg:     agg,
		sensor:  sensor,
		weather: weather,
		city:    city,
		now:     time.Now,
		logger:  logger,
	}
}

// SampleAndStore reads the sensor and the current weather temperature and
// records both. A missing value skips the sample without error; only
// persistence failures are returned.
func (s *Sampler) SampleAndStore(ctx context.Context) error {
	log := s.logger.With(zap.String("run_id", uuid.NewString()))

	if s.sensor == nil || s.weather == nil {
		log.Debug("sample skipped: no sensor or weather source")
		return nil
	}

	sensorTemp, err := s.sensor.Read(ctx)
	if err != nil {
		log.Warn("sample skipped: sensor unavailable", zap.Error(err))
		return nil
	}

	weatherTemp, err := s.weather.CurrentTemperature(ctx, s.city)
	if err != nil {
		log.Warn("sample skipped: weather unavailable", zap.String("city", s.city), zap.Error(err))
		return nil
	}

	ts := s.now()
	if err := s.agg.Observe(ts, sensorTemp, weatherTemp); err != nil {
		return err
	}
	log.Info("sample stored",
		zap.Time("timestamp", ts), zap.Float64("sensor", sensorTemp), zap.Float64("weather", weatherTemp))
	return nil
}
