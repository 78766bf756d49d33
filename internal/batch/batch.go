// Package batch runs the voucher pipeline across many image files
// with a bounded worker pool. Images share no state, so the batch is
// embarrassingly parallel; one file's failure is recorded in its own
// result and never aborts the others unless configured to.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/receiptworks/voucherscan/internal/pipeline"
)

// Result is the per-file outcome. Exactly one of Pipeline or Err is
// set, except for cancelled files which carry the context error.
type Result struct {
	Path     string           `json:"path" yaml:"path"`
	Pipeline *pipeline.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Err      error            `json:"-" yaml:"-"`
}

// Runner schedules pipeline runs over a worker pool.
type Runner struct {
	cfg    Config
	pipe   *pipeline.Pipeline
	logger *slog.Logger

	mu        sync.Mutex
	processed int
	failed    int
}

// NewRunner creates a Runner. Workers below 1 fall back to the
// default pool size; a nil logger falls back to the default logger.
func NewRunner(cfg Config, pipe *pipeline.Pipeline, logger *slog.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultConfig().Workers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, pipe: pipe, logger: logger}
}

// Run processes every path and returns one Result per input, in
// input order. Cancelling ctx stops scheduling new files; files
// already in flight finish and are reported normally.
func (r *Runner) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, path := range paths {
		results[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			start := time.Now()
			res, err := r.pipe.ProcessFile(gctx, path)
			r.record(&results[i], res, err, time.Since(start))
			if err != nil && !r.cfg.ContinueOnError {
				// cancels gctx so pending files are skipped
				return err
			}
			return nil
		})
	}

	// the only error is the first failure under ContinueOnError=false,
	// and it is already recorded in its own result
	_ = g.Wait()
	return results
}

func (r *Runner) record(out *Result, res *pipeline.Result, err error, elapsed time.Duration) {
	processingDuration.Observe(elapsed.Seconds())

	ok := err == nil && !res.OCR.Failed()
	if ok {
		out.Pipeline = res
		if res.Voucher != nil {
			parseConfidence.Observe(float64(res.Voucher.Metadata.ParseConfidence))
		}
		imagesProcessed.WithLabelValues("ok").Inc()
	} else {
		out.Err = err
		if err == nil {
			// engine failure surfaced as marker text, keep the result
			out.Pipeline = res
		}
		imagesProcessed.WithLabelValues("error").Inc()
		r.logger.Warn("batch item failed", "path", out.Path, "err", err)
	}

	r.mu.Lock()
	r.processed++
	if !ok {
		r.failed++
	}
	r.mu.Unlock()
}

// Progress reports how many files have finished and how many of
// those failed. Safe to call from another goroutine mid-run.
func (r *Runner) Progress() (processed, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed, r.failed
}
