package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Temperature store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GoogleGeocoderKey string

	// City is used for plain weather questions and for sampling.
	City string

	// SampleInterval controls how often the sensor and weather are sampled.
	SampleInterval time.Duration
	HTTPTimeout    time.Duration

	AnswersCSV string

	TemperatureStore string
	TemperatureFile  string
	TemperatureDB    string

	Sensor     string
	SensorPath string
	Display    string

	// FuzzyThreshold is the minimum similarity for "did you mean" answers.
	FuzzyThreshold float64

	Port string
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is applied first when present; the returned
// flag reports whether one was found.
func Load() (*AppConfig, bool, error) {
	envFile := godotenv.Load() == nil

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GoogleGeocoderKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.City = getenvDefault("WEATHER_CITY", "Goslar")

	interval, err := time.ParseDuration(getenvDefault("SAMPLE_INTERVAL", "5m"))
	if err != nil {
		return nil, envFile, fmt.Errorf("invalid SAMPLE_INTERVAL: %w", err)
	}
	cfg.SampleInterval = interval

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, envFile, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.AnswersCSV = getenvDefault("ANSWERS_CSV", "sample_data.csv")

	cfg.TemperatureStore = strings.ToLower(getenvDefault("TEMPERATURE_STORE", StoreJSON))
	switch cfg.TemperatureStore {
	case StoreJSON, StoreSQLite, StoreMemory:
	default:
		return nil, envFile, fmt.Errorf("invalid TEMPERATURE_STORE %q: want json, sqlite or memory", cfg.TemperatureStore)
	}
	cfg.TemperatureFile = getenvDefault("TEMPERATURE_FILE", "temperature_log.json")
	cfg.TemperatureDB = getenvDefault("TEMPERATURE_DB", "temperature.db")

	cfg.Sensor = strings.ToLower(getenvDefault("SENSOR", "none"))
	cfg.SensorPath = os.Getenv("SENSOR_PATH")
	cfg.Display = strings.ToLower(getenvDefault("DISPLAY", "none"))

	cfg.FuzzyThreshold = float64(getenvInt("FUZZY_THRESHOLD_PERCENT", 80)) / 100
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, envFile, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
