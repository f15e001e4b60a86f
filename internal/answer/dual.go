package answer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
)

// DualRunner executes the local and alternate generation paths concurrently
// and selects the better answer. Either generator may be nil (path disabled).
type DualRunner struct {
	local       Generator
	alternate   Generator
	pathTimeout time.Duration
	logger      *zap.Logger
}

// NewDualRunner creates a runner over the configured paths.
func NewDualRunner(local, alternate Generator, pathTimeout time.Duration, logger *zap.Logger) *DualRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DualRunner{local: local, alternate: alternate, pathTimeout: pathTimeout, logger: logger}
}

// Run generates on both paths and returns the selection plus the per-path
// detail for the response payload. With only one path configured, that
// path's result is returned alone and the dual-answer detail is omitted.
// Every path failing returns ErrNoAnswer.
func (d *DualRunner) Run(ctx context.Context, query string, passages []string) (Selection, *models.DualAnswerInfo, error) {
	if d.local == nil || d.alternate == nil {
		return d.runSingle(ctx, query, passages)
	}

	localCh := d.launch(ctx, d.local, PathLocal, query, passages)
	altCh := d.launch(ctx, d.alternate, PathAlternate, query, passages)
	local := <-localCh
	alternate := <-altCh

	if local.Err != nil {
		d.logger.Warn("local generation path failed", zap.Error(local.Err))
	}
	if alternate.Err != nil {
		d.logger.Warn("alternate generation path failed", zap.Error(alternate.Err))
	}

	sel := Select(local, alternate)
	info := &models.DualAnswerInfo{
		LocalAnswer:     local.Answer,
		AlternateAnswer: alternate.Answer,
		SelectedSource:  string(sel.Source),
		SelectionReason: sel.Reason,
	}
	if !local.OK() && !alternate.OK() {
		return sel, info, ErrNoAnswer
	}
	return sel, info, nil
}

// runSingle handles the one-path configuration.
func (d *DualRunner) runSingle(ctx context.Context, query string, passages []string) (Selection, *models.DualAnswerInfo, error) {
	gen := d.local
	path := PathLocal
	if gen == nil {
		gen = d.alternate
		path = PathAlternate
	}
	if gen == nil {
		return Selection{Reason: "no generation paths configured"}, nil, ErrNoAnswer
	}
	result := <-d.launch(ctx, gen, path, query, passages)
	if !result.OK() {
		if result.Err != nil {
			d.logger.Warn("generation failed", zap.String("path", string(path)), zap.Error(result.Err))
		}
		return Selection{Source: path, Reason: "generation failed"}, nil, ErrNoAnswer
	}
	return Selection{Answer: result.Answer, Source: path, Reason: "single path"}, nil, nil
}

// launch starts one path in a goroutine; a nil generator resolves
// immediately as a failed path.
func (d *DualRunner) launch(ctx context.Context, gen Generator, path PathName, query string, passages []string) <-chan PathResult {
	ch := make(chan PathResult, 1)
	go func() {
		if gen == nil {
			ch <- PathResult{Path: path, Err: ErrGenerationFailed}
			return
		}
		pathCtx := ctx
		if d.pathTimeout > 0 {
			var cancel context.CancelFunc
			pathCtx, cancel = context.WithTimeout(ctx, d.pathTimeout)
			defer cancel()
		}
		answer, model, err := generate(pathCtx, gen, query, passages)
		ch <- PathResult{Path: path, Answer: answer, Model: model, Err: err}
	}()
	return ch
}

// generate runs one generator and, when it can report which model variant
// answered, captures that too.
func generate(ctx context.Context, gen Generator, query string, passages []string) (string, string, error) {
	if mc, ok := gen.(interface {
		GenerateWithModel(ctx context.Context, query string, passages []string) (string, string, error)
	}); ok {
		return mc.GenerateWithModel(ctx, query, passages)
	}
	answer, err := gen.Generate(ctx, query, passages)
	return answer, "", err
}
