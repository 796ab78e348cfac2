package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/i474232898/campusbot/internal/temperature"
)

// jsonTimestampLayout is the local wall-clock form readings are stored in.
const jsonTimestampLayout = "2006-01-02 15:04:05"

type jsonReading struct {
	Timestamp string  `json:"timestamp"`
	Temp      float64 `json:"temp"`
}

type jsonBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type jsonDay struct {
	SensorReadings []jsonReading `json:"sensor_readings"`
	Weather        *jsonBounds   `json:"weather,omitempty"`
}

// JSONDayStore keeps all day records in one indented JSON file keyed by date.
type JSONDayStore struct {
	mu   sync.Mutex
	path string
}

func NewJSONDayStore(path string) *JSONDayStore {
	return &JSONDayStore{path: path}
}

// Load reads the file. A missing file yields empty records.
func (s *JSONDayStore) Load() (temperature.Records, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(temperature.Records), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var raw map[string]jsonDay
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}

	records := make(temperature.Records, len(raw))
	for date, day := range raw {
		rec := &temperature.DayRecord{}
		for _, r := range day.SensorReadings {
			ts, err := time.ParseInLocation(jsonTimestampLayout, r.Timestamp, time.Local)
			if err != nil {
				return nil, fmt.Errorf("decode %s: reading of %s: %w", s.path, date, err)
			}
			rec.Readings = append(rec.Readings, temperature.Reading{Timestamp: ts, Temp: r.Temp})
		}
		if day.Weather != nil {
			rec.Weather = &temperature.Bounds{Min: day.Weather.Min, Max: day.Weather.Max}
		}
		records[date] = rec
	}
	return records, nil
}

// Save rewrites the whole file.
func (s *JSONDayStore) Save(records temperature.Records) error {
	raw := make(map[string]jsonDay, len(records))
	for date, rec := range records {
		day := jsonDay{SensorReadings: make([]jsonReading, 0, len(rec.Readings))}
		for _, r := range rec.Readings {
			day.SensorReadings = append(day.SensorReadings, jsonReading{
				Timestamp: r.Timestamp.In(time.Local).Format(jsonTimestampLayout),
				Temp:      r.Temp,
			})
		}
		if rec.Weather != nil {
			day.Weather = &jsonBounds{Min: rec.Weather.Min, Max: rec.Weather.Max}
		}
		raw[date] = day
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeAtomic(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(raw)
	})
}
