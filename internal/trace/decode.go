package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTrace reports a trace that is empty or structurally malformed.
// Load failures wrapping it are user-visible and retryable.
var ErrInvalidTrace = errors.New("invalid trace")

// Decode reads a JSON trace and validates its structure.
func Decode(r io.Reader) (*Trace, error) {
	var t Trace
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidTrace, err)
	}
	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Parse is Decode over a byte slice.
func Parse(data []byte) (*Trace, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeYAML reads a trace fixture written in YAML.
func DecodeYAML(r io.Reader) (*Trace, error) {
	var t Trace
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidTrace, err)
	}
	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks structural well-formedness only: steps exist, each has a
// type, and every prediction point lands inside the trace. Question content
// (choices, correctAnswer, several points on one step) is not checked; the
// first point on a step wins and an answer matching no choice scores wrong.
func Validate(t *Trace) error {
	if t == nil || len(t.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidTrace)
	}
	for i, s := range t.Steps {
		if strings.TrimSpace(s.Type) == "" {
			return fmt.Errorf("%w: step[%d]: type is required", ErrInvalidTrace, i)
		}
	}
	for i, p := range t.Metadata.PredictionPoints {
		if p.StepIndex < 0 || p.StepIndex >= len(t.Steps) {
			return fmt.Errorf("%w: predictionPoints[%d]: stepIndex %d outside [0,%d)", ErrInvalidTrace, i, p.StepIndex, len(t.Steps))
		}
	}
	return nil
}
