package series

import (
	"testing"
	"time"

	"github.com/lkane/hearthwatch/internal/models"
)

func recordsAt(minutes ...int) []models.PredictionRecord {
	base := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	out := make([]models.PredictionRecord, len(minutes))
	for i, m := range minutes {
		out[i] = models.PredictionRecord{
			Timestamp:    base.Add(time.Duration(m) * time.Minute),
			PredictedCO2: float64(i),
		}
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		minutes   []int
		threshold time.Duration
		wantLens  []int
	}{
		{"empty input", nil, DefaultGapThreshold, nil},
		{"single record", []int{0}, DefaultGapThreshold, []int{1}},
		{"all within threshold", []int{0, 10, 20, 30}, DefaultGapThreshold, []int{4}},
		{"gap splits run", []int{0, 5, 40}, 30 * time.Minute, []int{2, 1}},
		{"gap equal to threshold stays joined", []int{0, 30}, 30 * time.Minute, []int{2}},
		{"every gap exceeds threshold", []int{0, 60, 120}, 30 * time.Minute, []int{1, 1, 1}},
		{"identical timestamps stay joined", []int{0, 0, 0}, 30 * time.Minute, []int{3}},
		{"multiple gaps", []int{0, 5, 90, 95, 100, 200}, 30 * time.Minute, []int{2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := recordsAt(tt.minutes...)
			segments := Split(records, tt.threshold)

			if len(segments) != len(tt.wantLens) {
				t.Fatalf("got %d segments, want %d", len(segments), len(tt.wantLens))
			}
			for i, seg := range segments {
				if len(seg.Records) != tt.wantLens[i] {
					t.Errorf("segment %d has %d records, want %d", i, len(seg.Records), tt.wantLens[i])
				}
			}

			// Segments must partition the input: every record exactly once,
			// in order, each internal gap within threshold.
			var total int
			for _, seg := range segments {
				for i, r := range seg.Records {
					if r.PredictedCO2 != float64(total) {
						t.Errorf("record out of order: got marker %v, want %d", r.PredictedCO2, total)
					}
					if i > 0 {
						gap := r.Timestamp.Sub(seg.Records[i-1].Timestamp)
						if gap > tt.threshold {
							t.Errorf("internal gap %v exceeds threshold %v", gap, tt.threshold)
						}
					}
					total++
				}
			}
			if total != len(records) {
				t.Errorf("segments cover %d records, want %d", total, len(records))
			}
		})
	}
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	records := recordsAt(0, 5, 40, 45)
	before := make([]models.PredictionRecord, len(records))
	copy(before, records)

	Split(records, 30*time.Minute)

	for i := range records {
		if !records[i].Timestamp.Equal(before[i].Timestamp) || records[i].PredictedCO2 != before[i].PredictedCO2 {
			t.Fatalf("input mutated at index %d", i)
		}
	}
}

func TestSegmentBounds(t *testing.T) {
	records := recordsAt(0, 5, 40)
	segments := Split(records, 30*time.Minute)

	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if !segments[0].Start().Equal(records[0].Timestamp) || !segments[0].End().Equal(records[1].Timestamp) {
		t.Errorf("segment 0 bounds = [%v, %v]", segments[0].Start(), segments[0].End())
	}
	if !segments[1].Start().Equal(records[2].Timestamp) {
		t.Errorf("segment 1 start = %v, want %v", segments[1].Start(), records[2].Timestamp)
	}
}
