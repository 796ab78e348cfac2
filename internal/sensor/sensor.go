// Package sensor provides local temperature sources.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
)

// ErrUnavailable is returned when the sensor cannot be read.
var ErrUnavailable = errors.New("sensor unavailable")

// DefaultThermalZone is the first Linux thermal zone.
const DefaultThermalZone = "/sys/class/thermal/thermal_zone0/temp"

// Source reads the current temperature in °C.
type Source interface {
	Read(ctx context.Context) (float64, error)
}

// ThermalZone reads a sysfs thermal zone, which reports millidegrees Celsius.
type ThermalZone struct {
	Path string
}

func NewThermalZone(path string) *ThermalZone {
	if path == "" {
		path = DefaultThermalZone
	}
	return &ThermalZone{Path: path}
}

func (z *ThermalZone) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raw, err := os.ReadFile(z.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s: %v", ErrUnavailable, z.Path, err)
	}
	return round1(milli / 1000), nil
}

// Simulated returns Base plus uniform noise in [-Jitter, Jitter].
type Simulated struct {
	Base   float64
	Jitter float64
	rand   func() float64
}

func NewSimulated(base, jitter float64) *Simulated {
	return &Simulated{Base: base, Jitter: jitter, rand: rand.Float64}
}

func (s *Simulated) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	noise := (s.rand()*2 - 1) * s.Jitter
	return round1(s.Base + noise), nil
}

// New builds the source named by kind: "thermal", "simulated" or "none".
// "none" and the empty string return a nil Source.
func New(kind, path string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none":
		return nil, nil
	case "thermal":
		return NewThermalZone(path), nil
	case "simulated":
		return NewSimulated(21, 1.5), nil
	default:
		return nil, fmt.Errorf("unknown sensor %q", kind)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
