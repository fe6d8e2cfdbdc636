package trace

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeFixture(t *testing.T) {
	f, err := os.Open("testdata/interval_coverage.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tr, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tr.Len() != 6 {
		t.Fatalf("steps = %d, want 6", tr.Len())
	}
	if tr.Title() != "Interval Coverage" {
		t.Fatalf("title = %q", tr.Title())
	}
	p, ok := tr.PointAt(2)
	if !ok {
		t.Fatal("expected prediction point at step 2")
	}
	want := []Choice{{ID: "keep", Label: "Keep"}, {ID: "covered", Label: "Covered"}}
	if diff := cmp.Diff(want, p.Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
	if got := p.ChoiceLabel("covered"); got != "Covered" {
		t.Fatalf("ChoiceLabel = %q", got)
	}
	last, _ := tr.At(tr.Len() - 1)
	if !last.IsComplete() {
		t.Fatalf("last step type = %q, want COMPLETE", last.Type)
	}
}

func TestDecodeYAMLFixture(t *testing.T) {
	f, err := os.Open("testdata/two_steps.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tr, err := DecodeYAML(f)
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if tr.Len() != 2 || tr.Metadata.Algorithm != "tiny" {
		t.Fatalf("unexpected trace: %+v", tr)
	}
	if _, ok := tr.Steps[0].Data["call_stack_state"]; !ok {
		t.Fatalf("expected nested data to survive yaml decode: %+v", tr.Steps[0].Data)
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	choices := []Choice{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}}
	tests := []struct {
		name string
		tr   *Trace
		want string
	}{
		{name: "nil", tr: nil, want: "no steps"},
		{name: "empty", tr: &Trace{}, want: "no steps"},
		{name: "missing type", tr: &Trace{Steps: []Step{{Type: "INITIAL"}, {Type: " "}}}, want: "step[1]"},
		{
			name: "point out of range",
			tr: &Trace{Steps: []Step{{Type: "INITIAL"}}, Metadata: Metadata{PredictionPoints: []PredictionPoint{
				{StepIndex: 1, Choices: choices, CorrectAnswer: "a"},
			}}},
			want: "outside",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tr)
			if !errors.Is(err, ErrInvalidTrace) {
				t.Fatalf("Validate err = %v, want ErrInvalidTrace", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate err = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestParseBadJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"steps": [`)); !errors.Is(err, ErrInvalidTrace) {
		t.Fatalf("Parse err = %v, want ErrInvalidTrace", err)
	}
}

func TestValidateToleratesQuestionContent(t *testing.T) {
	choices := []Choice{{ID: "keep", Label: "Keep"}, {ID: "covered", Label: "Covered"}}
	steps := []Step{{Type: "INITIAL"}, {Type: "DECISION_MADE"}, {Type: TypeComplete}}
	tests := []struct {
		name   string
		points []PredictionPoint
	}{
		{name: "answer not a choice", points: []PredictionPoint{{StepIndex: 1, Choices: choices, CorrectAnswer: "KEEP"}}},
		{name: "no choices", points: []PredictionPoint{{StepIndex: 1, CorrectAnswer: "keep"}}},
		{name: "empty choice id", points: []PredictionPoint{{StepIndex: 1, Choices: []Choice{{Label: "?"}}}}},
		{name: "two points on one step", points: []PredictionPoint{
			{StepIndex: 1, Choices: choices, CorrectAnswer: "keep", Question: "first"},
			{StepIndex: 1, Choices: choices, CorrectAnswer: "covered", Question: "second"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Trace{Steps: steps, Metadata: Metadata{PredictionPoints: tt.points}}
			if err := Validate(tr); err != nil {
				t.Fatalf("Validate err = %v, want nil", err)
			}
			p, ok := tr.PointAt(1)
			if !ok || p.Question != tt.points[0].Question {
				t.Fatalf("PointAt(1) = %+v, want the first point on the step", p)
			}
		})
	}
}

func TestParseAnswerOutsideChoices(t *testing.T) {
	data := []byte(`{"steps":[{"type":"INITIAL"},{"type":"DECISION_MADE"},{"type":"COMPLETE"}],
		"metadata":{"predictionPoints":[{"stepIndex":1,"question":"keep?",
		"choices":[{"id":"keep","label":"Keep"},{"id":"covered","label":"Covered"}],"correctAnswer":"KEEP"}]}}`)
	tr, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(tr.Metadata.PredictionPoints); got != 1 {
		t.Fatalf("points = %d, want 1", got)
	}
}
