package inference

import (
	"context"
	"errors"
	"testing"
)

func TestPredictRejectsWrongVectorLength(t *testing.T) {
	m := &ONNXModel{}

	_, err := m.Predict(context.Background(), make([]float64, 3))
	if !errors.Is(err, ErrInference) {
		t.Fatalf("err = %v, want ErrInference", err)
	}
}

func TestPredictRejectsUnloadedSession(t *testing.T) {
	m := &ONNXModel{}

	_, err := m.Predict(context.Background(), make([]float64, 15))
	if !errors.Is(err, ErrInference) {
		t.Fatalf("err = %v, want ErrInference", err)
	}
}
