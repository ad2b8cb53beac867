package models

import "time"

// Appliance identifies one of the monitored household appliances. The set is
// closed: the trained model was fitted against exactly these nine circuits.
type Appliance string

const (
	FridgeFreezer    Appliance = "Fridge-Freezer"
	WashingMachine   Appliance = "Washing_Machine"
	Dishwasher       Appliance = "Dishwasher"
	Television       Appliance = "Television"
	Microwave        Appliance = "Microwave"
	Toaster          Appliance = "Toaster"
	HiFi             Appliance = "Hi-Fi"
	Kettle           Appliance = "Kettle"
	OvenExtractorFan Appliance = "Oven_Extractor_Fan"
)

// ApplianceOrder is the canonical appliance ordering used throughout: it is
// the order the regression model was trained with, so it doubles as the
// feature order and as the deterministic tie-break order for recommendations.
var ApplianceOrder = []Appliance{
	FridgeFreezer,
	WashingMachine,
	Dishwasher,
	Television,
	Microwave,
	Toaster,
	HiFi,
	Kettle,
	OvenExtractorFan,
}

// Reading is a snapshot of the inputs at prediction time.
type Reading struct {
	AppliancePower map[Appliance]float64 // watts, one entry per monitored appliance
	TempC          float64
	HumidityPct    float64
	RainMM         float64
}

// PredictionRecord is one persisted row of the history log. Rows are written
// exactly once per prediction and never updated or deleted.
type PredictionRecord struct {
	Timestamp    time.Time
	PredictedCO2 float64 // kg over the prediction horizon
	Reading      Reading
}
