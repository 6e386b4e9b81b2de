package dispatch

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// Outcome pairs one document with whatever its dispatch produced.
type Outcome struct {
	Doc    Document
	Result *Result
	Err    error
}

// DispatchBatch runs the documents through a bounded worker pool. One
// document failing at the storage level does not stop the others; every
// outcome is reported in input order.
func (d *Dispatcher) DispatchBatch(ctx context.Context, docs []Document, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]Outcome, len(docs))
	p := pool.New().WithMaxGoroutines(workers)
	for i, doc := range docs {
		i, doc := i, doc
		p.Go(func() {
			res, err := d.Dispatch(ctx, doc)
			outcomes[i] = Outcome{Doc: doc, Result: res, Err: err}
		})
	}
	p.Wait()
	return outcomes
}
