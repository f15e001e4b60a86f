package answer

import (
	"context"
	"errors"
	"testing"
)

type stubGenerator struct {
	name   string
	answer string
	err    error
}

func (g *stubGenerator) Generate(ctx context.Context, query string, passages []string) (string, error) {
	return g.answer, g.err
}

func (g *stubGenerator) Name() string { return g.name }

func TestDualRunner_NoPathsConfigured(t *testing.T) {
	d := NewDualRunner(nil, nil, 0, nil)
	sel, info, err := d.Run(context.Background(), "anything", []string{"passage"})
	if !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("err = %v, want ErrNoAnswer", err)
	}
	if info != nil {
		t.Error("dual answer detail must be absent with no paths")
	}
	if sel.Answer != "" {
		t.Errorf("answer = %q", sel.Answer)
	}
}

func TestDualRunner_SinglePath(t *testing.T) {
	local := &stubGenerator{name: "local", answer: "The exam is on May 5th."}
	d := NewDualRunner(local, nil, 0, nil)

	sel, info, err := d.Run(context.Background(), "when is the exam?", []string{"The exam is on May 5th."})
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Error("dual answer detail must be absent with one path")
	}
	if sel.Answer != "The exam is on May 5th." || sel.Source != PathLocal {
		t.Errorf("selection = %+v", sel)
	}
}

func TestDualRunner_BothPaths(t *testing.T) {
	failed := errors.New("endpoint unreachable")
	tests := []struct {
		name       string
		local      *stubGenerator
		alternate  *stubGenerator
		wantErr    error
		wantSource PathName
		wantAnswer string
	}{
		{
			name:      "both paths fail",
			local:     &stubGenerator{err: failed},
			alternate: &stubGenerator{err: failed},
			wantErr:   ErrNoAnswer,
		},
		{
			name:       "local fails, alternate answers",
			local:      &stubGenerator{err: failed},
			alternate:  &stubGenerator{answer: "Attendance is mandatory."},
			wantSource: PathAlternate,
			wantAnswer: "Attendance is mandatory.",
		},
		{
			name:       "alternate fails, local answers",
			local:      &stubGenerator{answer: "Attendance is mandatory."},
			alternate:  &stubGenerator{err: failed},
			wantSource: PathLocal,
			wantAnswer: "Attendance is mandatory.",
		},
		{
			name:       "more specific answer wins",
			local:      &stubGenerator{answer: "It is due soon."},
			alternate:  &stubGenerator{answer: "The report is due on March 12 at 5pm."},
			wantSource: PathAlternate,
			wantAnswer: "The report is due on March 12 at 5pm.",
		},
		{
			name:       "local wins exact ties",
			local:      &stubGenerator{answer: "Attendance is mandatory."},
			alternate:  &stubGenerator{answer: "Attendance is compulsory."},
			wantSource: PathLocal,
			wantAnswer: "Attendance is mandatory.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDualRunner(tt.local, tt.alternate, 0, nil)
			sel, info, err := d.Run(context.Background(), "question", []string{"passage"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if info == nil {
				t.Fatal("dual answer detail must be present when both paths run")
			}
			if sel.Source != tt.wantSource && tt.wantErr == nil {
				t.Errorf("source = %s, want %s", sel.Source, tt.wantSource)
			}
			if sel.Answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", sel.Answer, tt.wantAnswer)
			}
			if info.LocalAnswer != tt.local.answer || info.AlternateAnswer != tt.alternate.answer {
				t.Errorf("per-path detail = %+v", info)
			}
		})
	}
}

func TestSummarizer_StubGenerator(t *testing.T) {
	s := NewSummarizer(&stubGenerator{answer: " A concise summary. "}, 100, nil)
	got := s.Summarize(context.Background(), "notes.txt", "Some document body.")
	if got == nil || *got != "A concise summary." {
		t.Errorf("summary = %v", got)
	}

	failing := NewSummarizer(&stubGenerator{err: errors.New("down")}, 100, nil)
	if got := failing.Summarize(context.Background(), "notes.txt", "body"); got != nil {
		t.Errorf("failed summarization must yield nil, got %q", *got)
	}

	disabled := NewSummarizer(nil, 100, nil)
	if got := disabled.Summarize(context.Background(), "notes.txt", "body"); got != nil {
		t.Error("nil generator must disable summarization")
	}
}
