package weather

import "time"

// AggregateReadings combines multiple provider readings into a single Report.
// Numeric fields are averaged; the condition is the majority vote, ties going
// to the condition seen first. The description comes from the first reading
// that agrees with the chosen condition.
func AggregateReadings(loc Location, readings []ProviderReading) Report {
	if len(readings) == 0 {
		return Report{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
		sumPressure float64
		sumPrecip   float64
	)

	conditionCounts := make(map[Condition]int)
	var conditionOrder []Condition
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeedMS
		sumPressure += r.PressureHpa
		sumPrecip += r.PrecipMm

		if _, seen := conditionCounts[r.Condition]; !seen {
			conditionOrder = append(conditionOrder, r.Condition)
		}
		conditionCounts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))

	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range conditionOrder {
		if count := conditionCounts[cond]; count > bestCount {
			bestCount = count
			bestCond = cond
		}
	}

	desc := ""
	for _, r := range readings {
		if r.Description != "" && r.Condition == bestCond {
			desc = r.Description
			break
		}
	}
	if desc == "" {
		for _, r := range readings {
			if r.Description != "" {
				desc = r.Description
				break
			}
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	return Report{
		Location:    loc,
		Timestamp:   newestTS,
		Temperature: sumTemp / n,
		Humidity:    sumHumidity / n,
		WindSpeed:   sumWind / n,
		Pressure:    sumPressure / n,
		PrecipMM:    sumPrecip / n,
		Condition:   bestCond,
		Description: desc,
		Providers:   providers,
	}
}
