package features

import (
	"errors"
	"fmt"
	"time"

	"github.com/lkane/hearthwatch/internal/models"
)

// VectorLen is the input length the trained model expects: nine appliance
// wattages, three clock features, three weather features.
const VectorLen = 15

// ErrSchemaMismatch indicates a reading that violates the feature contract.
// Missing appliance keys are a hard error rather than a silent zero: a sensor
// dropping off the wire should be visible, not folded into the prediction.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// Assemble builds the model input vector from a reading and the clock.
//
// The output order is a fixed contract with the trained model: appliance
// wattages in canonical order, then Hour_of_Day, Day_of_Week (0=Monday),
// Is_Weekend, then temperature, humidity, rainfall. Reordering corrupts
// predictions without any error surfacing, so nothing here iterates the
// appliance map directly.
func Assemble(r models.Reading, now time.Time) ([]float64, error) {
	v := make([]float64, 0, VectorLen)

	for _, a := range models.ApplianceOrder {
		watts, ok := r.AppliancePower[a]
		if !ok {
			return nil, fmt.Errorf("%w: missing appliance %q", ErrSchemaMismatch, a)
		}
		if watts < 0 {
			return nil, fmt.Errorf("%w: negative wattage %.1f for %q", ErrSchemaMismatch, watts, a)
		}
		v = append(v, watts)
	}

	if r.HumidityPct < 0 || r.HumidityPct > 100 {
		return nil, fmt.Errorf("%w: humidity %.1f%% outside [0,100]", ErrSchemaMismatch, r.HumidityPct)
	}
	if r.RainMM < 0 {
		return nil, fmt.Errorf("%w: negative rainfall %.1fmm", ErrSchemaMismatch, r.RainMM)
	}

	dow := mondayIndexed(now.Weekday())
	weekend := 0.0
	if dow >= 5 {
		weekend = 1.0
	}

	v = append(v, float64(now.Hour()), float64(dow), weekend)
	v = append(v, r.TempC, r.HumidityPct, r.RainMM)
	return v, nil
}

// mondayIndexed converts Go's Sunday-first weekday to the model's
// Monday=0..Sunday=6 convention.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}
