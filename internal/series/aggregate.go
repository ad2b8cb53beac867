package series

import (
	"gonum.org/v1/gonum/stat"

	"github.com/lkane/hearthwatch/internal/models"
)

// WeekdayOrder is the rendering order for weekday profiles. Days with no
// records are simply absent from the aggregate map, never zero-filled, so
// renderers iterate this and skip missing keys.
var WeekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ByHour returns the mean predicted CO2 for each hour of day that has at
// least one record. Empty input yields an empty map.
func ByHour(records []models.PredictionRecord) map[int]float64 {
	buckets := make(map[int][]float64)
	for _, r := range records {
		h := r.Timestamp.Hour()
		buckets[h] = append(buckets[h], r.PredictedCO2)
	}

	means := make(map[int]float64, len(buckets))
	for h, values := range buckets {
		means[h] = stat.Mean(values, nil)
	}
	return means
}

// ByWeekday returns the mean predicted CO2 for each weekday name that has at
// least one record. Keys match WeekdayOrder entries.
func ByWeekday(records []models.PredictionRecord) map[string]float64 {
	buckets := make(map[string][]float64)
	for _, r := range records {
		d := r.Timestamp.Weekday().String()
		buckets[d] = append(buckets[d], r.PredictedCO2)
	}

	means := make(map[string]float64, len(buckets))
	for d, values := range buckets {
		means[d] = stat.Mean(values, nil)
	}
	return means
}
