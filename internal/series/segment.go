package series

import (
	"time"

	"github.com/lkane/hearthwatch/internal/models"
)

// DefaultGapThreshold is the largest gap between consecutive records that
// still counts as continuous monitoring. Beyond it the chart should break
// rather than draw a line across hours of idle time.
const DefaultGapThreshold = 30 * time.Minute

// Segment is a maximal contiguous run of history records in which every
// adjacent pair is within the gap threshold.
type Segment struct {
	Records []models.PredictionRecord
}

// Start returns the timestamp of the first record in the segment.
func (s Segment) Start() time.Time {
	return s.Records[0].Timestamp
}

// End returns the timestamp of the last record in the segment.
func (s Segment) End() time.Time {
	return s.Records[len(s.Records)-1].Timestamp
}

// Split partitions a time-ascending record slice into segments, starting a
// new segment wherever the gap between neighbours exceeds threshold. It never
// fails and never mutates its input; segments alias the input's backing array.
func Split(records []models.PredictionRecord, threshold time.Duration) []Segment {
	if len(records) == 0 {
		return nil
	}

	var segments []Segment
	start := 0
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Sub(records[i-1].Timestamp) > threshold {
			segments = append(segments, Segment{Records: records[start:i:i]})
			start = i
		}
	}
	segments = append(segments, Segment{Records: records[start:]})
	return segments
}
