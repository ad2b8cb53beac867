package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lkane/hearthwatch/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db, time.UTC)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func testReading(kettleW float64) models.Reading {
	power := make(map[models.Appliance]float64)
	for _, a := range models.ApplianceOrder {
		power[a] = 0
	}
	power[models.Kettle] = kettleW
	power[models.FridgeFreezer] = 60
	return models.Reading{AppliancePower: power, TempC: 15, HumidityPct: 60, RainMM: 0}
}

func TestAppendAndAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	clock := time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	if _, err := store.Append(ctx, 0.04, testReading(2000)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	clock = clock.Add(10 * time.Minute)
	if _, err := store.Append(ctx, 0.06, testReading(0)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if !records[0].Timestamp.Before(records[1].Timestamp) {
		t.Error("records not ascending by timestamp")
	}
	if records[0].PredictedCO2 != 0.04 {
		t.Errorf("PredictedCO2 = %v, want 0.04", records[0].PredictedCO2)
	}
	if got := records[0].Reading.AppliancePower[models.Kettle]; got != 2000 {
		t.Errorf("Kettle = %v, want 2000", got)
	}
	if got := records[0].Reading.AppliancePower[models.HiFi]; got != 0 {
		t.Errorf("Hi-Fi = %v, want 0", got)
	}
	if records[0].Reading.TempC != 15 || records[0].Reading.HumidityPct != 60 {
		t.Errorf("weather round-trip: %+v", records[0].Reading)
	}
}

func TestAppendAssignsStoreTimestamp(t *testing.T) {
	store := setupTestStore(t)

	fixed := time.Date(2025, 6, 9, 10, 30, 45, 987654321, time.UTC)
	store.now = func() time.Time { return fixed }

	rec, err := store.Append(context.Background(), 0.01, testReading(0))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	want := fixed.Truncate(time.Second)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v (second precision)", rec.Timestamp, want)
	}

	records, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if !records[0].Timestamp.Equal(want) {
		t.Errorf("persisted Timestamp = %v, want %v", records[0].Timestamp, want)
	}
}

func TestAllEmptyStore(t *testing.T) {
	store := setupTestStore(t)

	records, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("All on empty store = %v, want empty non-nil slice", records)
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestRange(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	clock := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	for i := 0; i < 4; i++ {
		if _, err := store.Append(ctx, float64(i), testReading(0)); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
		clock = clock.Add(time.Hour)
	}

	start := time.Date(2025, 6, 9, 1, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 9, 3, 0, 0, 0, time.UTC)
	records, err := store.Range(ctx, start, end)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].PredictedCO2 != 1 || records[1].PredictedCO2 != 2 {
		t.Errorf("Range returned wrong rows: %v, %v", records[0].PredictedCO2, records[1].PredictedCO2)
	}
}

func TestAppendSurfacesPersistenceError(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := New(db, time.UTC)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.Close()

	_, err = store.Append(context.Background(), 0.01, testReading(0))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}
