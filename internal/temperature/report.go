package temperature

import (
	"fmt"
	"strings"
)

const noData = "No data"

// ComparisonTable renders deltas as the three-day sensor/forecast spread table.
func ComparisonTable(deltas []DayDelta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s | %-16s | %s\n", "Date", "Sensor ΔT (°C)", "Forecast ΔT (°C)")
	b.WriteString(strings.Repeat("-", 50))
	for _, d := range deltas {
		fmt.Fprintf(&b, "\n%-12s | %-16s | %s", d.Date, cell(d.SensorDelta), cell(d.WeatherDelta))
	}
	return b.String()
}

func cell(v *float64) string {
	if v == nil {
		return noData
	}
	return fmt.Sprintf("%.1f", *v)
}
