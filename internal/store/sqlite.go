package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lkane/hearthwatch/internal/models"
)

// ErrPersistence wraps any I/O failure in the history store. It is surfaced
// to callers rather than swallowed; a prediction whose save failed is still a
// valid prediction.
var ErrPersistence = errors.New("persistence failure")

// timeLayout is the persisted timestamp format: local time, second precision.
const timeLayout = "2006-01-02 15:04:05"

// Store is the append-only prediction history. Rows are never updated or
// deleted here; retention is out of scope.
type Store struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc, now: time.Now}
}

// Append persists one prediction with the reading that produced it. The
// timestamp is assigned here from the store's own clock; callers cannot
// supply one, which keeps clock-skewed or spoofed timestamps out of the log.
func (s *Store) Append(ctx context.Context, predictedCO2 float64, r models.Reading) (models.PredictionRecord, error) {
	ts := s.now().In(s.loc).Truncate(time.Second)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history
			(timestamp, predicted_co2, temp_c, humidity_p, rain_mm,
			 kettle_w, fridge_w, tv_w, wm_w, mw_w,
			 dishwasher_w, toaster_w, hifi_w, oven_fan_w)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ts.Format(timeLayout), predictedCO2, r.TempC, r.HumidityPct, r.RainMM,
		r.AppliancePower[models.Kettle], r.AppliancePower[models.FridgeFreezer],
		r.AppliancePower[models.Television], r.AppliancePower[models.WashingMachine],
		r.AppliancePower[models.Microwave], r.AppliancePower[models.Dishwasher],
		r.AppliancePower[models.Toaster], r.AppliancePower[models.HiFi],
		r.AppliancePower[models.OvenExtractorFan],
	)
	if err != nil {
		return models.PredictionRecord{}, fmt.Errorf("%w: insert history: %v", ErrPersistence, err)
	}

	return models.PredictionRecord{Timestamp: ts, PredictedCO2: predictedCO2, Reading: r}, nil
}

// All returns the full history ordered ascending by timestamp. An empty store
// yields an empty slice, not an error.
func (s *Store) All(ctx context.Context) ([]models.PredictionRecord, error) {
	return s.query(ctx, `
		SELECT timestamp, predicted_co2, temp_c, humidity_p, rain_mm,
		       kettle_w, fridge_w, tv_w, wm_w, mw_w,
		       dishwasher_w, toaster_w, hifi_w, oven_fan_w
		FROM history
		ORDER BY timestamp ASC
	`)
}

// Range returns history rows with start <= timestamp < end, ascending.
func (s *Store) Range(ctx context.Context, start, end time.Time) ([]models.PredictionRecord, error) {
	return s.query(ctx, `
		SELECT timestamp, predicted_co2, temp_c, humidity_p, rain_mm,
		       kettle_w, fridge_w, tv_w, wm_w, mw_w,
		       dishwasher_w, toaster_w, hifi_w, oven_fan_w
		FROM history
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC
	`, start.In(s.loc).Format(timeLayout), end.In(s.loc).Format(timeLayout))
}

// Count returns the number of history rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count history: %v", ErrPersistence, err)
	}
	return n, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]models.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query history: %v", ErrPersistence, err)
	}
	defer rows.Close()

	records := []models.PredictionRecord{}
	for rows.Next() {
		var ts string
		var rec models.PredictionRecord
		var kettle, fridge, tv, wm, mw, dw, toaster, hifi, fan float64

		if err := rows.Scan(&ts, &rec.PredictedCO2,
			&rec.Reading.TempC, &rec.Reading.HumidityPct, &rec.Reading.RainMM,
			&kettle, &fridge, &tv, &wm, &mw, &dw, &toaster, &hifi, &fan,
		); err != nil {
			return nil, fmt.Errorf("%w: scan history: %v", ErrPersistence, err)
		}

		rec.Timestamp, err = time.ParseInLocation(timeLayout, ts, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: parse timestamp %q: %v", ErrPersistence, ts, err)
		}

		rec.Reading.AppliancePower = map[models.Appliance]float64{
			models.Kettle:           kettle,
			models.FridgeFreezer:    fridge,
			models.Television:       tv,
			models.WashingMachine:   wm,
			models.Microwave:        mw,
			models.Dishwasher:       dw,
			models.Toaster:          toaster,
			models.HiFi:             hifi,
			models.OvenExtractorFan: fan,
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate history: %v", ErrPersistence, err)
	}
	return records, nil
}
