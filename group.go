package animix

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// AdvanceAll advances independent mixers by dt concurrently, at most
// GOMAXPROCS at a time. The mixers must not share targets or event sinks that
// are unsafe for concurrent use. Mixers not yet started when ctx is cancelled
// are skipped and ctx.Err() is returned.
func AdvanceAll(ctx context.Context, dt float64, mixers ...*Mixer) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, m := range mixers {
		if m == nil {
			continue
		}
		m := m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m.Advance(dt)
			return nil
		})
	}
	return g.Wait()
}
