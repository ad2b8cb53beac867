package advisor

import (
	"fmt"

	"github.com/lkane/hearthwatch/internal/models"
)

const (
	// DefaultCO2Threshold is the predicted-kg level above which a prediction
	// counts as "high emissions". Earlier deployments ran at 0.01, so this is
	// configurable rather than baked in.
	DefaultCO2Threshold = 0.05

	// highPowerWatts separates background load from appliances worth naming
	// in a recommendation.
	highPowerWatts = 400.0
)

const (
	msgNormal  = "Emissions are normal. For consistent savings, consider using high-power appliances during off-peak hours."
	msgGeneric = "High emissions detected! No single appliance stands out - this is likely weather-driven heating or combined background usage."
)

// Recommend maps a prediction and the appliance readings behind it to a short
// advisory. Pure and deterministic: identical inputs always produce the
// identical string, with ties between equal-wattage appliances broken by
// canonical appliance order.
func Recommend(predictedCO2 float64, power map[models.Appliance]float64, threshold float64) string {
	if predictedCO2 <= threshold {
		return msgNormal
	}

	var culprit models.Appliance
	var culpritWatts float64
	for _, a := range models.ApplianceOrder {
		if w := power[a]; w > highPowerWatts && w > culpritWatts {
			culprit = a
			culpritWatts = w
		}
	}

	if culprit == "" {
		return msgGeneric
	}
	return fmt.Sprintf("High emissions detected! The %s is drawing %.0fW - delaying or shortening its use would cut the next reading.",
		culprit, culpritWatts)
}
