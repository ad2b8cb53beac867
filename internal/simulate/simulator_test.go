package simulate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/lkane/hearthwatch/internal/features"
	"github.com/lkane/hearthwatch/internal/models"
)

func TestNextReadingStaysAssemblable(t *testing.T) {
	s := &Simulator{
		rng:         rand.New(rand.NewSource(1)),
		loc:         time.UTC,
		tempC:       15,
		humidityPct: 60,
	}

	now := time.Date(2025, 6, 9, 7, 30, 0, 0, time.UTC)
	for i := 0; i < 1000; i++ {
		r := s.nextReading(now)

		if _, err := features.Assemble(r, now); err != nil {
			t.Fatalf("iteration %d: synthetic reading failed assembly: %v", i, err)
		}
		if r.TempC < -10 || r.TempC > 40 {
			t.Fatalf("iteration %d: temperature %v out of range", i, r.TempC)
		}
		if r.AppliancePower[models.Kettle] > 2500 {
			t.Fatalf("iteration %d: kettle %vW above slider range", i, r.AppliancePower[models.Kettle])
		}
		now = now.Add(15 * time.Minute)
	}
}

func TestNextReadingRunsApplianceCycles(t *testing.T) {
	s := &Simulator{
		rng:         rand.New(rand.NewSource(42)),
		loc:         time.UTC,
		tempC:       15,
		humidityPct: 60,
	}

	now := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	sawWM := false
	for i := 0; i < 2000; i++ {
		r := s.nextReading(now)
		if r.AppliancePower[models.WashingMachine] > 0 {
			sawWM = true
			// A started cycle must continue for multiple ticks.
			next := s.nextReading(now)
			if s.wmTicksLeft > 0 && next.AppliancePower[models.WashingMachine] == 0 {
				t.Fatal("washing machine cycle stopped mid-run")
			}
			break
		}
	}
	if !sawWM {
		t.Error("washing machine never ran in 2000 ticks")
	}
}
