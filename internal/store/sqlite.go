package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/campusbot/internal/temperature"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sensor_readings (
	day       TEXT    NOT NULL,
	taken_at  INTEGER NOT NULL,
	temp      REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sensor_readings_day ON sensor_readings(day);
CREATE TABLE IF NOT EXISTS weather_bounds (
	day      TEXT PRIMARY KEY,
	min_temp REAL NOT NULL,
	max_temp REAL NOT NULL
);`

// SQLiteDayStore persists day records in a SQLite database file.
type SQLiteDayStore struct {
	db      *sql.DB
	timeout time.Duration
}

// OpenSQLiteDayStore opens (and if needed creates) the database at path.
func OpenSQLiteDayStore(path string) (*SQLiteDayStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)

	s := &SQLiteDayStore{db: db, timeout: 10 * time.Second}
	ctx, cancel := s.ctx()
	defer cancel()
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *SQLiteDayStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteDayStore) Load() (temperature.Records, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	records := make(temperature.Records)
	day := func(d string) *temperature.DayRecord {
		rec, ok := records[d]
		if !ok {
			rec = &temperature.DayRecord{}
			records[d] = rec
		}
		return rec
	}

	rows, err := s.db.QueryContext(ctx, `SELECT day, taken_at, temp FROM sensor_readings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query sensor readings: %w", err)
	}
	for rows.Next() {
		var (
			d     string
			taken int64
			temp  float64
		)
		if err := rows.Scan(&d, &taken, &temp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sensor reading: %w", err)
		}
		rec := day(d)
		rec.Readings = append(rec.Readings, temperature.Reading{Timestamp: time.Unix(taken, 0), Temp: temp})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate sensor readings: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT day, min_temp, max_temp FROM weather_bounds`)
	if err != nil {
		return nil, fmt.Errorf("query weather bounds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			d string
			b temperature.Bounds
		)
		if err := rows.Scan(&d, &b.Min, &b.Max); err != nil {
			return nil, fmt.Errorf("scan weather bounds: %w", err)
		}
		day(d).Weather = &b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weather bounds: %w", err)
	}
	return records, nil
}

// Save replaces every stored row with records in one transaction.
func (s *SQLiteDayStore) Save(records temperature.Records) (err error) {
	ctx, cancel := s.ctx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM sensor_readings`); err != nil {
		return fmt.Errorf("clear sensor readings: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM weather_bounds`); err != nil {
		return fmt.Errorf("clear weather bounds: %w", err)
	}

	insertReading, err := tx.PrepareContext(ctx, `INSERT INTO sensor_readings (day, taken_at, temp) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare reading insert: %w", err)
	}
	defer insertReading.Close()

	for d, rec := range records {
		for _, r := range rec.Readings {
			if _, err = insertReading.ExecContext(ctx, d, r.Timestamp.Unix(), r.Temp); err != nil {
				return fmt.Errorf("insert reading for %s: %w", d, err)
			}
		}
		if rec.Weather != nil {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO weather_bounds (day, min_temp, max_temp) VALUES (?, ?, ?)`,
				d, rec.Weather.Min, rec.Weather.Max); err != nil {
				return fmt.Errorf("insert weather bounds for %s: %w", d, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteDayStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
