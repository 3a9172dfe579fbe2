package randomid

import (
	"context"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

const fillCheckInterval = 256

// Fill writes Permute(start+i) into dst[i] for every i, splitting the counter
// range into one contiguous chunk per worker.  Workers <= 0 uses GOMAXPROCS.
// The first error stops the remaining chunks; dst is then partially written.
func (e *Engine) Fill(ctx context.Context, dst []uint64, start uint64, workers int) error {
	count := uint64(len(dst))
	if count == 0 {
		return nil
	}
	if start >= e.n || count > e.n-start {
		return errors.Mark(
			errors.Newf("range [%d, %d+%d) is outside range of permutation [0, %d)", start, start, count, e.n),
			ErrOutOfRange)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(dst))
	chunk := (len(dst) + workers - 1) / workers

	pool, err := ants.NewPool(workers)
	if err != nil {
		return errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		workersWG sync.WaitGroup
		errOnce   sync.Once
		firstErr  error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for lo := 0; lo < len(dst); lo += chunk {
		hi := min(lo+chunk, len(dst))
		workersWG.Add(1)
		if err := pool.Submit(func() {
			defer workersWG.Done()
			for i := lo; i < hi; i++ {
				if (i-lo)%fillCheckInterval == 0 && ctx.Err() != nil {
					fail(context.Cause(ctx))
					return
				}
				y, err := e.Permute(start + uint64(i))
				if err != nil {
					fail(err)
					return
				}
				dst[i] = y
			}
		}); err != nil {
			workersWG.Done()
			fail(errors.Wrap(err, "submit chunk to worker pool"))
			break
		}
	}
	workersWG.Wait()
	return firstErr
}
