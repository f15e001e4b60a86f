package answer

import (
	"errors"
	"strings"
	"testing"
)

func TestSelect(t *testing.T) {
	failed := PathResult{Path: PathAlternate, Err: errors.New("timeout")}

	tests := []struct {
		name       string
		local      PathResult
		alternate  PathResult
		wantSource PathName
		wantAnswer string
	}{
		{
			name:       "local succeeds alternate fails",
			local:      PathResult{Path: PathLocal, Answer: "The exam is on May 5th."},
			alternate:  failed,
			wantSource: PathLocal,
			wantAnswer: "The exam is on May 5th.",
		},
		{
			name:       "alternate succeeds local fails",
			local:      PathResult{Path: PathLocal, Err: errors.New("connection refused")},
			alternate:  PathResult{Path: PathAlternate, Answer: "May 5th."},
			wantSource: PathAlternate,
			wantAnswer: "May 5th.",
		},
		{
			name:       "refusal loses to substantive answer",
			local:      PathResult{Path: PathLocal, Answer: "I don't know based on the context."},
			alternate:  PathResult{Path: PathAlternate, Answer: "The exam is scheduled for May 5th."},
			wantSource: PathAlternate,
			wantAnswer: "The exam is scheduled for May 5th.",
		},
		{
			name:       "more specific answer wins",
			local:      PathResult{Path: PathLocal, Answer: "It happens in May."},
			alternate:  PathResult{Path: PathAlternate, Answer: "The final exam takes place on May 5th at 9am in room 204."},
			wantSource: PathAlternate,
		},
		{
			name:       "local wins ties",
			local:      PathResult{Path: PathLocal, Answer: "The answer is yes."},
			alternate:  PathResult{Path: PathAlternate, Answer: "The answer is yes."},
			wantSource: PathLocal,
		},
		{
			name:       "empty answer counts as failure",
			local:      PathResult{Path: PathLocal, Answer: "   "},
			alternate:  PathResult{Path: PathAlternate, Answer: "Something concrete."},
			wantSource: PathAlternate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Select(tt.local, tt.alternate)
			if sel.Source != tt.wantSource {
				t.Errorf("source = %s, want %s (reason: %s)", sel.Source, tt.wantSource, sel.Reason)
			}
			if tt.wantAnswer != "" && sel.Answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", sel.Answer, tt.wantAnswer)
			}
			if sel.Reason == "" {
				t.Error("reason must never be empty")
			}
		})
	}
}

func TestSelect_BothFail(t *testing.T) {
	sel := Select(
		PathResult{Path: PathLocal, Err: errors.New("down")},
		PathResult{Path: PathAlternate, Err: errors.New("also down")},
	)
	if sel.Answer != "" {
		t.Errorf("answer should be empty, got %q", sel.Answer)
	}
	if sel.Reason != "both generation paths failed" {
		t.Errorf("reason = %q", sel.Reason)
	}
}

func TestIsRefusal(t *testing.T) {
	refusals := []string{
		"I don't know the answer to that.",
		"The context does not contain this information.",
		"I am unable to find that in the provided passages.",
	}
	for _, s := range refusals {
		if !isRefusal(s) {
			t.Errorf("%q should count as a refusal", s)
		}
	}
	if isRefusal("The exam is on May 5th.") {
		t.Error("a concrete answer is not a refusal")
	}
}

func TestSpecificity_DigitsWeighMore(t *testing.T) {
	vague := specificity("The exam is sometime in spring.")
	dated := specificity("The exam is on May 5th.")
	if dated <= vague {
		t.Errorf("dated answer should score higher: %d vs %d", dated, vague)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("when is the exam?", []string{"passage one", "passage two"})
	for _, want := range []string{"[1] passage one", "[2] passage two", "Question: when is the exam?"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
