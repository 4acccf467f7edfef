package panel

import (
	"context"
	"runtime"
	"sync"
)

// Outcome is the result of one panel in a batch. Exactly one of Result and
// Err is meaningful.
type Outcome struct {
	Name   string
	Result Result
	Err    error
}

// ProcessAll lays out polys on a pool of workers and returns the outcomes
// in input order. workers <= 0 uses one worker per CPU. Once ctx is done no
// further panels are started and the rest report ctx.Err().
func ProcessAll(ctx context.Context, polys []Polygon, opts Options, workers int) []Outcome {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	outcomes := make([]Outcome, len(polys))
	for i, p := range polys {
		outcomes[i].Name = p.Name
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := Process(polys[idx], opts)
				outcomes[idx].Result, outcomes[idx].Err = res, err
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(polys); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(polys); i++ {
		outcomes[i].Err = ctx.Err()
	}
	return outcomes
}
