package inference

import (
	"context"
	"fmt"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"github.com/lkane/hearthwatch/internal/features"
)

// Tensor names follow the skl2onnx export convention for sklearn regressors.
const (
	inputName  = "float_input"
	outputName = "variable"
)

// ONNXModel wraps an ONNX Runtime session around the exported CO2 regressor.
// The session is created once at startup and is immutable for the process
// lifetime; it is never reloaded.
type ONNXModel struct {
	session *onnxruntime.DynamicAdvancedSession
}

// Load initialises the ONNX runtime and opens a session on the model file.
func Load(modelPath string) (*ONNXModel, error) {
	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("%w: initialize runtime: %v", ErrModelUnavailable, err)
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: session options: %v", ErrModelUnavailable, err)
	}
	defer options.Destroy()

	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName}, options)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrModelUnavailable, modelPath, err)
	}

	return &ONNXModel{session: session}, nil
}

// Predict runs the regressor on one feature vector. The vector length is
// asserted here so a reordered or truncated assembly fails loudly instead of
// silently producing garbage predictions.
func (m *ONNXModel) Predict(ctx context.Context, fv []float64) (float64, error) {
	if len(fv) != features.VectorLen {
		return 0, fmt.Errorf("%w: feature vector has %d elements, model expects %d",
			ErrInference, len(fv), features.VectorLen)
	}
	if m.session == nil {
		return 0, fmt.Errorf("%w: session not loaded", ErrInference)
	}

	type result struct {
		value float64
		err   error
	}

	// The runtime has no native cancellation, so the run races the context
	// deadline. Tensors are owned by the goroutine and destroyed only after
	// Run returns, even if the caller has already given up.
	results := make(chan result, 1)
	go func() {
		v, err := m.run(fv)
		results <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %v", ErrInference, ctx.Err())
	case r := <-results:
		if r.err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInference, r.err)
		}
		return r.value, nil
	}
}

func (m *ONNXModel) run(fv []float64) (float64, error) {
	input := make([]float32, len(fv))
	for i, f := range fv {
		input[i] = float32(f)
	}

	inputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, int64(len(input))), input)
	if err != nil {
		return 0, fmt.Errorf("input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	output := make([]float32, 1)
	outputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, 1), output)
	if err != nil {
		return 0, fmt.Errorf("output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := m.session.Run(
		[]onnxruntime.Value{inputTensor},
		[]onnxruntime.Value{outputTensor},
	); err != nil {
		return 0, err
	}
	return float64(output[0]), nil
}

// Close releases the ONNX session.
func (m *ONNXModel) Close() error {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	return nil
}
