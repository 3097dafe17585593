package frameloop

import "time"

// State is the lifecycle state of a Driver.
type State int

const (
	StateUninitialized State = iota
	StateStarting
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of a Driver.
type Status struct {
	State     string    `json:"state"`
	Session   string    `json:"session,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`

	// Surface size, set once the stream is acquired
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	Ticks             uint64  `json:"ticks"`
	Faces             int     `json:"faces"`
	InferenceFailures uint64  `json:"inference_failures"`
	FPS               float64 `json:"fps"`

	FailureKind    string `json:"failure_kind,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
	Error          string `json:"error,omitempty"`
}
