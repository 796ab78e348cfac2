package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/campusbot/internal/common"
	"github.com/i474232898/campusbot/internal/knowledge"
	"github.com/i474232898/campusbot/internal/temperature"
	"github.com/i474232898/campusbot/internal/weather"
)

const (
	msgBadDate       = "Falsches Datumsformat! (Beispiel: 2025-05-10)"
	msgPastDate      = "Für vergangene Daten benötigen Sie eine historische API!"
	msgTooFarAhead   = "Vorhersagen für mehr als 7 Tage sind nicht verfügbar!"
	msgNoForecast    = "Keine Vorhersage für das genaue Datum gefunden!"
	msgCityNotFound  = "Ort nicht gefunden!"
	msgWeatherFailed = "Fehler beim Abrufen des Wetters!"
	msgNoData        = "Keine Daten verfügbar"
)

var germanMonths = map[string]time.Month{
	"januar":    time.January,
	"februar":   time.February,
	"märz":      time.March,
	"maerz":     time.March,
	"april":     time.April,
	"mai":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"august":    time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"dezember":  time.December,
}

var (
	germanDateRe = regexp.MustCompile(`(?i)\b(\d{1,2})\.\s*(januar|februar|märz|maerz|april|mai|juni|juli|august|september|oktober|november|dezember)\s*(\d{4})\b`)
	isoDateRe    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	errBadDate = errors.New("malformed date")
)

// extractDate finds a "10. Mai 2025" or "2025-05-10" date in input.
// found is false when input holds neither form; err is errBadDate when a
// candidate names no real calendar day.
func extractDate(input string, loc *time.Location) (date time.Time, found bool, err error) {
	var y, d int
	var m time.Month

	if g := germanDateRe.FindStringSubmatch(input); g != nil {
		d, _ = strconv.Atoi(g[1])
		m = germanMonths[strings.ToLower(g[2])]
		y, _ = strconv.Atoi(g[3])
	} else if g := isoDateRe.FindStringSubmatch(input); g != nil {
		y, _ = strconv.Atoi(g[1])
		mm, _ := strconv.Atoi(g[2])
		m = time.Month(mm)
		d, _ = strconv.Atoi(g[3])
	} else {
		return time.Time{}, false, nil
	}

	date = time.Date(y, m, d, 0, 0, 0, 0, loc)
	if m < time.January || m > time.December || date.Day() != d || date.Month() != m {
		return time.Time{}, true, errBadDate
	}
	return date, true, nil
}

// detectWindow picks the averaging window from time-of-day words.
func detectWindow(input string) temperature.Window {
	switch {
	case common.HasAny(input, "morgen", "vormittag", "morning"):
		return temperature.Morning
	case common.HasAny(input, "nachmittag", "abend", "afternoon"):
		return temperature.Afternoon
	default:
		return temperature.AllDay
	}
}

func (r *Resolver) resolveLocation(ctx context.Context, input string, place knowledge.Location) Response {
	now := r.now()
	window := detectWindow(input)

	ans := &LocationAnswer{
		Info:    place,
		Time:    common.ClockTime(now),
		Weather: r.locationWeather(ctx, input, place.City, now),
		Window:  strings.ToUpper(window.Name[:1]) + window.Name[1:],
		Average: msgNoData,
	}
	if r.temps != nil {
		if avg, ok := r.temps.Average(window); ok {
			ans.Average = fmt.Sprintf("%.1f °C", avg)
		}
	}
	return Response{Kind: KindLocation, Source: SourceLocation, Location: ans}
}

// locationWeather returns the weather text, or a descriptive message when the
// date is unusable or the weather service fails.
func (r *Resolver) locationWeather(ctx context.Context, input, city string, now time.Time) string {
	date, found, err := extractDate(input, now.Location())
	if err != nil {
		return common.ClockTime(now) + " " + msgBadDate
	}

	if !found {
		if r.weather == nil {
			return common.ClockTime(now) + " " + msgWeatherFailed
		}
		report, err := r.weather.Current(ctx, city)
		if err != nil {
			return r.weatherError(now, city, err)
		}
		return report.String()
	}

	// out-of-range dates never reach the weather service
	if _, err := weather.CheckForecastDate(now, date); err != nil {
		return r.weatherError(now, city, err)
	}
	if r.weather == nil {
		return common.ClockTime(now) + " " + msgWeatherFailed
	}
	report, err := r.weather.Forecast(ctx, city, date)
	if err != nil {
		return r.weatherError(now, city, err)
	}
	return report.String()
}

func (r *Resolver) weatherError(now time.Time, city string, err error) string {
	var msg string
	switch {
	case errors.Is(err, weather.ErrPastDate):
		msg = msgPastDate
	case errors.Is(err, weather.ErrTooFarAhead):
		msg = msgTooFarAhead
	case errors.Is(err, weather.ErrNoForecast):
		msg = msgNoForecast
	case errors.Is(err, weather.ErrLocationNotFound):
		msg = msgCityNotFound
	default:
		msg = msgWeatherFailed
		r.logger.Warn("weather lookup failed", zap.String("city", city), zap.Error(err))
	}
	return common.ClockTime(now) + " " + msg
}
