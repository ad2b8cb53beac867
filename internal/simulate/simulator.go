package simulate

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/lkane/hearthwatch/internal/advisor"
	"github.com/lkane/hearthwatch/internal/features"
	"github.com/lkane/hearthwatch/internal/inference"
	"github.com/lkane/hearthwatch/internal/metrics"
	"github.com/lkane/hearthwatch/internal/models"
	"github.com/lkane/hearthwatch/internal/store"
)

// Simulator feeds synthetic sensor readings through the full prediction
// pipeline at a fixed interval, standing in for real appliance and weather
// sensors. Weather follows a bounded random walk; appliances follow rough
// household duty cycles.
type Simulator struct {
	store        *store.Store
	model        inference.Model
	loc          *time.Location
	interval     time.Duration
	co2Threshold float64
	opTimeout    time.Duration
	rng          *rand.Rand

	tempC       float64
	humidityPct float64
	rainMM      float64
	wmTicksLeft int // washing machine cycle, in ticks
	dwTicksLeft int // dishwasher cycle, in ticks
}

func New(st *store.Store, model inference.Model, loc *time.Location, interval time.Duration, co2Threshold float64) *Simulator {
	return &Simulator{
		store:        st,
		model:        model,
		loc:          loc,
		interval:     interval,
		co2Threshold: co2Threshold,
		opTimeout:    10 * time.Second,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		tempC:        15,
		humidityPct:  60,
	}
}

// Run ticks until the context is cancelled. Individual tick failures are
// logged and skipped; the feed keeps going.
func (s *Simulator) Run(ctx context.Context) error {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Simulator) tick(ctx context.Context) {
	now := time.Now().In(s.loc)
	reading := s.nextReading(now)
	metrics.SimulatedReadings.Inc()

	vector, err := features.Assemble(reading, now)
	if err != nil {
		log.Printf("simulate: assemble: %v", err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	start := time.Now()
	co2, err := s.model.Predict(opCtx, vector)
	metrics.InferenceLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("inference_error").Inc()
		log.Printf("simulate: predict: %v", err)
		return
	}
	metrics.PredictionsTotal.WithLabelValues("ok").Inc()

	rec := advisor.Recommend(co2, reading.AppliancePower, s.co2Threshold)

	if _, err := s.store.Append(opCtx, co2, reading); err != nil {
		metrics.HistoryAppends.WithLabelValues("error").Inc()
		log.Printf("simulate: append: %v", err)
		return
	}
	metrics.HistoryAppends.WithLabelValues("ok").Inc()

	log.Printf("simulate: %.6f kg predicted (kettle %.0fW, wm %.0fW) - %s",
		co2, reading.AppliancePower[models.Kettle], reading.AppliancePower[models.WashingMachine], rec)
}

// nextReading advances the weather walk and rolls the appliance states.
func (s *Simulator) nextReading(now time.Time) models.Reading {
	s.tempC = clamp(s.tempC+s.rng.Float64()-0.5, -10, 40)
	s.humidityPct = clamp(s.humidityPct+2*(s.rng.Float64()-0.5), 0, 100)
	if s.rng.Float64() < 0.05 {
		s.rainMM = clamp(s.rng.Float64()*4, 0, 10)
	} else {
		s.rainMM = clamp(s.rainMM-0.5, 0, 10)
	}

	power := map[models.Appliance]float64{
		models.FridgeFreezer:    55 + s.rng.Float64()*15,
		models.HiFi:             10,
		models.Dishwasher:       0,
		models.Toaster:          0,
		models.OvenExtractorFan: 0,
		models.Television:       0,
		models.Kettle:           0,
		models.WashingMachine:   0,
		models.Microwave:        0,
	}

	hour := now.Hour()

	// Television most evenings.
	if hour >= 18 && hour <= 23 && s.rng.Float64() < 0.8 {
		power[models.Television] = 40 + s.rng.Float64()*10
	}

	// Kettle: short bursts, clustered around waking hours.
	kettleChance := 0.02
	if hour >= 7 && hour <= 9 {
		kettleChance = 0.15
	}
	if s.rng.Float64() < kettleChance {
		power[models.Kettle] = 1800 + s.rng.Float64()*700
	}

	// Washing machine and dishwasher run multi-tick cycles.
	if s.wmTicksLeft == 0 && s.rng.Float64() < 0.01 {
		s.wmTicksLeft = 4 + s.rng.Intn(4)
	}
	if s.wmTicksLeft > 0 {
		s.wmTicksLeft--
		power[models.WashingMachine] = 400 + s.rng.Float64()*1400
	}
	if s.dwTicksLeft == 0 && hour >= 20 && s.rng.Float64() < 0.02 {
		s.dwTicksLeft = 3 + s.rng.Intn(3)
	}
	if s.dwTicksLeft > 0 {
		s.dwTicksLeft--
		power[models.Dishwasher] = 1000 + s.rng.Float64()*500
	}

	if s.rng.Float64() < 0.03 {
		power[models.Microwave] = 800 + s.rng.Float64()*400
	}
	if hour >= 7 && hour <= 8 && s.rng.Float64() < 0.1 {
		power[models.Toaster] = 850 + s.rng.Float64()*150
	}

	return models.Reading{
		AppliancePower: power,
		TempC:          s.tempC,
		HumidityPct:    s.humidityPct,
		RainMM:         s.rainMM,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
