package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TheusHen/sigdh/sigdh/params"
)

// Result summarizes one handshake run by RunConcurrent.
type Result struct {
	Index   int
	Elapsed time.Duration
	// Fingerprint identifies the derived keys without revealing them. Both
	// roles of a successful run report the same value.
	Fingerprint string
	Err         error
}

// RunConcurrent runs n independent in-memory handshakes, at most limit at
// a time (limit <= 0 means unbounded). Sessions share nothing but cfg and
// the logger; each pair is closed before its result is recorded. The
// returned error is the first failure, and results are indexed by run.
func RunConcurrent(ctx context.Context, cfg *params.Config, n, limit int, opts Options) ([]Result, error) {
	if n <= 0 {
		return nil, nil
	}
	results := make([]Result, n)
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	var mu sync.Mutex
	for i := 0; i < n; i++ {
		g.Go(func() error {
			r := runPair(gctx, cfg, opts)
			r.Index = i
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return r.Err
		})
	}
	return results, g.Wait()
}

func runPair(ctx context.Context, cfg *params.Config, opts Options) Result {
	ini, res, err := Pair(ctx, cfg, opts)
	if err != nil {
		return Result{Err: err}
	}
	defer ini.Close()
	defer res.Close()

	ka, err := ini.Keys()
	if err != nil {
		return Result{Err: err}
	}
	defer ka.Wipe()
	kb, err := res.Keys()
	if err != nil {
		return Result{Err: err}
	}
	defer kb.Wipe()
	if !ka.Equal(&kb) {
		return Result{Err: ErrKeyMismatch}
	}
	return Result{Elapsed: ini.Elapsed(), Fingerprint: ka.Fingerprint()}
}
