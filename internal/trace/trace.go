// Package trace defines the recorded execution trace the player steps through
// and decodes it from the JSON (or YAML fixture) shape produced by the trace
// service.
package trace

// TypeComplete marks the final step of a finished algorithm run.
const TypeComplete = "COMPLETE"

// Trace is an ordered, immutable record of one algorithm run. A Trace is
// replaced wholesale when a new one loads and is never mutated in place.
type Trace struct {
	Steps    []Step   `json:"steps" yaml:"steps"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Metadata carries everything about a trace that is not a step.
type Metadata struct {
	Algorithm        string            `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	DisplayName      string            `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	PredictionPoints []PredictionPoint `json:"predictionPoints,omitempty" yaml:"predictionPoints,omitempty"`
}

// Step is one recorded state. Data is opaque to the player apart from the
// active frame convention read by the highlight engine.
type Step struct {
	Type        string         `json:"type" yaml:"type"`
	Step        int            `json:"step,omitempty" yaml:"step,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Data        map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// PredictionPoint asks the user to guess the decision recorded at StepIndex
// before that step is shown.
type PredictionPoint struct {
	StepIndex     int      `json:"stepIndex" yaml:"stepIndex"`
	Question      string   `json:"question" yaml:"question"`
	Choices       []Choice `json:"choices" yaml:"choices"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	Hint          string   `json:"hint,omitempty" yaml:"hint,omitempty"`
	Explanation   string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

type Choice struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Len returns the number of steps; a nil trace has none.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Steps)
}

// At returns the step at i, or false when i is out of range.
func (t *Trace) At(i int) (*Step, bool) {
	if t == nil || i < 0 || i >= len(t.Steps) {
		return nil, false
	}
	return &t.Steps[i], true
}

// PointAt returns the prediction point keyed to step index i.
func (t *Trace) PointAt(i int) (*PredictionPoint, bool) {
	if t == nil {
		return nil, false
	}
	for k := range t.Metadata.PredictionPoints {
		if t.Metadata.PredictionPoints[k].StepIndex == i {
			return &t.Metadata.PredictionPoints[k], true
		}
	}
	return nil, false
}

// Title is the name shown in the player header.
func (t *Trace) Title() string {
	if t == nil {
		return ""
	}
	if t.Metadata.DisplayName != "" {
		return t.Metadata.DisplayName
	}
	return t.Metadata.Algorithm
}

// ChoiceLabel returns the label of the choice with the given id, or the id
// itself when the point has no such choice.
func (p *PredictionPoint) ChoiceLabel(id string) string {
	for _, c := range p.Choices {
		if c.ID == id {
			return c.Label
		}
	}
	return id
}

// IsComplete reports whether s is the completion marker.
func (s *Step) IsComplete() bool {
	return s != nil && s.Type == TypeComplete
}
