package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/lkane/hearthwatch/internal/advisor"
	"github.com/lkane/hearthwatch/internal/features"
	"github.com/lkane/hearthwatch/internal/metrics"
	"github.com/lkane/hearthwatch/internal/models"
	"github.com/lkane/hearthwatch/internal/series"
)

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req PredictRequest
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	reading := models.Reading{
		AppliancePower: map[models.Appliance]float64{
			models.FridgeFreezer:    req.FridgeW,
			models.WashingMachine:   req.WMW,
			models.Dishwasher:       req.DishwasherW,
			models.Television:       req.TVW,
			models.Microwave:        req.MWW,
			models.Toaster:          req.ToasterW,
			models.HiFi:             req.HiFiW,
			models.Kettle:           req.KettleW,
			models.OvenExtractorFan: req.OvenFanW,
		},
		TempC:       req.TempC,
		HumidityPct: req.HumidityPct,
		RainMM:      req.RainMM,
	}

	now := time.Now().In(s.loc)
	vector, err := features.Assemble(reading, now)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("schema_error").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.OpTimeout)
	defer cancel()

	start := time.Now()
	co2, err := s.model.Predict(ctx, vector)
	metrics.InferenceLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("inference_error").Inc()
		log.Printf("api: predict: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	metrics.PredictionsTotal.WithLabelValues("ok").Inc()

	resp := PredictResponse{
		PredictedCO2:   co2,
		Recommendation: advisor.Recommend(co2, reading.AppliancePower, s.cfg.CO2Threshold),
	}

	// Narrative is cosmetic: failures are logged, never surfaced.
	if s.narrator != nil {
		if narrative, err := s.narrator.Narrate(ctx, co2, resp.Recommendation, reading); err != nil {
			log.Printf("api: narrative: %v", err)
		} else {
			resp.Narrative = narrative
		}
	}

	rec, err := s.store.Append(ctx, co2, reading)
	if err != nil {
		metrics.HistoryAppends.WithLabelValues("error").Inc()
		log.Printf("api: append history: %v", err)
		resp.SaveError = err.Error()
	} else {
		metrics.HistoryAppends.WithLabelValues("ok").Inc()
		resp.Saved = true
		resp.Timestamp = rec.Timestamp.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.OpTimeout)
	defer cancel()

	start, end, err := parseRangeQuery(r, s.loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var records []models.PredictionRecord
	if start.IsZero() && end.IsZero() {
		records, err = s.store.All(ctx)
	} else {
		records, err = s.store.Range(ctx, start, end)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	segments := series.Split(records, s.cfg.GapThreshold)
	resp := HistoryResponse{
		Points:   buildChartPoints(segments),
		Records:  len(records),
		Segments: len(segments),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.OpTimeout)
	defer cancel()

	records, err := s.store.All(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := ProfileResponse{Hourly: []ProfileBucket{}, Weekday: []ProfileBucket{}}

	hourly := series.ByHour(records)
	hours := make([]int, 0, len(hourly))
	for h := range hourly {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		resp.Hourly = append(resp.Hourly, ProfileBucket{Label: strconv.Itoa(h), MeanCO2: hourly[h]})
	}

	weekday := series.ByWeekday(records)
	for _, day := range series.WeekdayOrder {
		if mean, ok := weekday[day]; ok {
			resp.Weekday = append(resp.Weekday, ProfileBucket{Label: day, MeanCO2: mean})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.OpTimeout)
	defer cancel()

	n, err := s.store.Count(ctx)
	status := "ok"
	if err != nil {
		status = "degraded"
		log.Printf("api: health: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"history": n,
	})
}

// parseRangeQuery reads optional start/end parameters, accepting either bare
// dates (the date-range picker) or RFC3339 instants. A bare end date is
// exclusive of nothing before midnight, so it is pushed to the next day.
func parseRangeQuery(r *http.Request, loc *time.Location) (start, end time.Time, err error) {
	parse := func(v string, endOfDay bool) (time.Time, error) {
		if t, perr := time.ParseInLocation("2006-01-02", v, loc); perr == nil {
			if endOfDay {
				t = t.AddDate(0, 0, 1)
			}
			return t, nil
		}
		return time.Parse(time.RFC3339, v)
	}

	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = parse(v, false); err != nil {
			return time.Time{}, time.Time{}, errors.New("bad start parameter: " + v)
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = parse(v, true); err != nil {
			return time.Time{}, time.Time{}, errors.New("bad end parameter: " + v)
		}
	}
	if !start.IsZero() && end.IsZero() {
		end = time.Now().In(loc).AddDate(0, 0, 1)
	}
	if start.IsZero() && !end.IsZero() {
		start = time.Unix(0, 0)
	}
	return start, end, nil
}
