package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/i474232898/campusbot/internal/answers"
	"github.com/i474232898/campusbot/internal/config"
	"github.com/i474232898/campusbot/internal/display"
	"github.com/i474232898/campusbot/internal/knowledge"
	"github.com/i474232898/campusbot/internal/resolver"
	"github.com/i474232898/campusbot/internal/sensor"
	"github.com/i474232898/campusbot/internal/store"
	"github.com/i474232898/campusbot/internal/temperature"
	"github.com/i474232898/campusbot/internal/weather"
	"github.com/i474232898/campusbot/internal/weather/providers"
)

// bot holds every wired component of one process.
type bot struct {
	cfg      *config.AppConfig
	kb       *knowledge.Base
	answers  *answers.Store
	weather  *weather.Service
	temps    *temperature.Aggregator
	sampler  *temperature.Sampler
	sensor   sensor.Source
	display  display.Sink
	resolver *resolver.Resolver

	closers []io.Closer
}

// newBot wires the components described by cfg. Terminal output of the
// display goes to out.
func newBot(cfg *config.AppConfig, out io.Writer, logger *zap.Logger) (*bot, error) {
	kb, err := knowledge.Load()
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	b := &bot{cfg: cfg, kb: kb}

	b.answers = openAnswers(cfg.AnswersCSV, kb, logger)
	b.weather = newWeatherService(cfg, logger)

	dayStore, err := b.openDayStore()
	if err != nil {
		return nil, err
	}
	b.temps, err = temperature.Open(dayStore, temperature.WithLogger(logger))
	if err != nil {
		logger.Warn("temperature log could not be loaded; starting empty", zap.Error(err))
	}

	if b.sensor, err = sensor.New(cfg.Sensor, cfg.SensorPath); err != nil {
		b.Close()
		return nil, err
	}
	if b.display, err = display.New(cfg.Display, out); err != nil {
		b.Close()
		return nil, err
	}

	var src temperature.SensorSource
	if b.sensor != nil {
		src = b.sensor
	}
	b.sampler = temperature.NewSampler(b.temps, src, b.weather, cfg.City, logger)

	b.resolver = resolver.New(b.answers, kb,
		resolver.WithWeather(b.weather),
		resolver.WithTemperatures(b.temps),
		resolver.WithCity(cfg.City),
		resolver.WithThreshold(cfg.FuzzyThreshold),
		resolver.WithLogger(logger),
	)
	return b, nil
}

// openAnswers loads the CSV answer table. The default table stays in place
// when the file is unreadable or holds too few questions.
func openAnswers(path string, kb *knowledge.Base, logger *zap.Logger) *answers.Store {
	repo := store.NewCSVAnswerStore(path, knowledge.AnswerTable(kb.SampleAnswers))
	s := answers.NewStore(repo, answers.WithLogger(logger))
	s.Replace(knowledge.AnswerTable(kb.Answers))

	table, err := repo.Load()
	if err != nil {
		logger.Warn("answer table not loaded", zap.String("path", path), zap.Error(err))
		return s
	}
	if len(table) < answers.MinImportQuestions {
		logger.Warn("answer table ignored: too few questions",
			zap.String("path", path), zap.Int("questions", len(table)))
		return s
	}
	s.Replace(table)
	logger.Info("answer table loaded", zap.String("path", path), zap.Int("questions", len(table)))
	return s
}

func newWeatherService(cfg *config.AppConfig, logger *zap.Logger) *weather.Service {
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey))
	}

	opts := []weather.Option{weather.WithLogger(logger)}
	var geo weather.Geocoder
	switch {
	case cfg.GoogleGeocoderKey != "":
		geo = providers.NewGoogleGeocoder(cfg.GoogleGeocoderKey)
	case cfg.OpenWeatherAPIKey != "":
		geo = providers.NewOpenWeatherGeocoder(client, cfg.OpenWeatherAPIKey)
	}
	if geo != nil {
		// Open-Meteo needs no key but resolves cities through the geocoder.
		provs = append(provs, providers.NewOpenMeteoProvider(client))
		opts = append(opts, weather.WithGeocoder(providers.NewCachingGeocoder(geo)))
	}
	if len(provs) == 0 {
		logger.Warn("no weather provider configured; weather answers will be unavailable")
	}
	return weather.NewService(provs, opts...)
}

func (b *bot) openDayStore() (temperature.Repository, error) {
	switch b.cfg.TemperatureStore {
	case config.StoreSQLite:
		s, err := store.OpenSQLiteDayStore(b.cfg.TemperatureDB)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s)
		return s, nil
	case config.StoreMemory:
		return store.NewMemoryDayStore(), nil
	default:
		return store.NewJSONDayStore(b.cfg.TemperatureFile), nil
	}
}

// Close releases the temperature store.
func (b *bot) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	b.closers = nil
	return errors.Join(errs...)
}
