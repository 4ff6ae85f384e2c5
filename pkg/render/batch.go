package render

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-invoicedoc/pkg/document"
)

// DefaultBatchLimit bounds RenderBatch when the caller passes limit <= 0.
const DefaultBatchLimit = 4

// BatchJob is one record to render in a batch.
type BatchJob struct {
	Record  document.Record
	Kind    document.Kind
	Options Options
}

// BatchResult carries the outcome of one job. Err is set instead of HTML when
// that record failed.
type BatchResult struct {
	Index  int
	Number string
	HTML   string
	Err    error
}

// RenderBatch renders jobs with at most limit renders in flight. Results keep
// the order of jobs. A failing record never aborts the others; once ctx is
// cancelled jobs that have not started report ctx.Err().
func (e *Engine) RenderBatch(ctx context.Context, jobs []BatchJob, limit int) []BatchResult {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	results := make([]BatchResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range jobs {
		i := i
		results[i] = BatchResult{Index: i, Number: jobs[i].Record.Number}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			html, err := e.Render(gctx, jobs[i].Record, jobs[i].Kind, jobs[i].Options)
			results[i].HTML = html
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed returns the results that carry an error.
func Failed(results []BatchResult) []BatchResult {
	var out []BatchResult
	for _, result := range results {
		if result.Err != nil {
			out = append(out, result)
		}
	}
	return out
}
