package detection

import "errors"

var (
	// ErrModelLoad is returned when the pretrained model cannot be fetched or initialized.
	ErrModelLoad = errors.New("detection: model load failed")

	// ErrInference is returned when a detect call fails.
	ErrInference = errors.New("detection: inference failed")

	// ErrNotLoaded is returned when Detect is called before Load completed.
	// It is a precondition violation, not a transient failure.
	ErrNotLoaded = errors.New("detection: model not loaded")

	// ErrTensorsUnsupported is returned by models that only produce plain coordinates.
	ErrTensorsUnsupported = errors.New("detection: tensor output not supported")
)
