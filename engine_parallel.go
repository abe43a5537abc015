package codesnippet

import (
	"context"
	"runtime"
	"sync"

	"github.com/jward/codesnippet/internal/scan"
	"github.com/jward/codesnippet/internal/source"
)

type workItem struct {
	index int
	file  source.File
}

type workResult struct {
	index int
	res   scan.Result
	err   error
}

// scanFilesParallel scans files with a worker pool:
//
//	Workers (parallel): read, decode and scan one file each.
//	Writer (serial):    apply results strictly in input order.
//
// The writer stops at the first error; remaining workers are cancelled.
func (e *Engine) scanFilesParallel(ctx context.Context, sc *scan.Scanner, files []source.File, apply func(scan.Result) error) error {
	if len(files) == 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numWorkers := min(runtime.NumCPU(), len(files))
	if numWorkers < 1 {
		numWorkers = 1
	}

	workCh := make(chan workItem, len(files))
	for i, f := range files {
		workCh <- workItem{index: i, file: f}
	}
	close(workCh)

	resultCh := make(chan workResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				res, err := sc.File(ctx, item.file)
				resultCh <- workResult{index: item.index, res: res, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	pending := make(map[int]workResult)
	next := 0
	for wr := range resultCh {
		pending[wr.index] = wr
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if ready.err != nil {
				return ready.err
			}
			if err := apply(ready.res); err != nil {
				return err
			}
		}
	}
	return nil
}
