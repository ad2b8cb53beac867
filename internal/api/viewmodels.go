package api

import (
	"time"

	"github.com/lkane/hearthwatch/internal/series"
)

// PredictRequest mirrors the persisted column layout: one typed field per
// appliance, so an unknown or misspelled key is rejected by the decoder
// instead of reaching the model. Absent fields decode as 0W, which is the
// off state for every appliance.
type PredictRequest struct {
	TempC       float64 `json:"temp_c"`
	HumidityPct float64 `json:"humidity_p"`
	RainMM      float64 `json:"rain_mm"`
	KettleW     float64 `json:"kettle_w"`
	FridgeW     float64 `json:"fridge_w"`
	TVW         float64 `json:"tv_w"`
	WMW         float64 `json:"wm_w"`
	MWW         float64 `json:"mw_w"`
	DishwasherW float64 `json:"dishwasher_w"`
	ToasterW    float64 `json:"toaster_w"`
	HiFiW       float64 `json:"hifi_w"`
	OvenFanW    float64 `json:"oven_fan_w"`
}

// PredictResponse reports the prediction even when the save failed; losing
// the history row should not hide the result from the user.
type PredictResponse struct {
	PredictedCO2   float64 `json:"predicted_co2"`
	Recommendation string  `json:"recommendation"`
	Narrative      string  `json:"narrative,omitempty"`
	Timestamp      string  `json:"timestamp,omitempty"`
	Saved          bool    `json:"saved"`
	SaveError      string  `json:"save_error,omitempty"`
}

// ChartPoint is one point of the segmented history series. A nil CO2 marks a
// synthetic gap: charting libraries break the line there instead of
// interpolating across an idle period.
type ChartPoint struct {
	T   string   `json:"t"`
	CO2 *float64 `json:"co2"`
}

type HistoryResponse struct {
	Points   []ChartPoint `json:"points"`
	Records  int          `json:"records"`
	Segments int          `json:"segments"`
}

type ProfileBucket struct {
	Label   string  `json:"label"`
	MeanCO2 float64 `json:"mean_co2"`
}

type ProfileResponse struct {
	Hourly  []ProfileBucket `json:"hourly"`
	Weekday []ProfileBucket `json:"weekday"`
}

// buildChartPoints flattens segments into a single point series, inserting a
// null-valued marker one second before each later segment's start.
func buildChartPoints(segments []series.Segment) []ChartPoint {
	var points []ChartPoint
	for i, seg := range segments {
		if i > 0 {
			points = append(points, ChartPoint{
				T: seg.Start().Add(-time.Second).Format(time.RFC3339),
			})
		}
		for _, r := range seg.Records {
			co2 := r.PredictedCO2
			points = append(points, ChartPoint{
				T:   r.Timestamp.Format(time.RFC3339),
				CO2: &co2,
			})
		}
	}
	return points
}
