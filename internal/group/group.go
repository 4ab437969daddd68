// Package group runs a set of goroutines that share a lifetime.
package group

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

// A G is a set of goroutines started from a common context. When any one
// of them returns the context is canceled, asking the rest to exit.
type G struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu  sync.Mutex
	err error
}

// New returns an empty group derived from ctx.
func New(ctx context.Context) *G {
	ctx, cancel := context.WithCancel(ctx)
	return &G{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add runs fn in its own goroutine. fn should return once its context is
// canceled.
func (g *G) Add(fn func(context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.cancel()
		if err := fn(g.ctx); err != nil {
			g.mu.Lock()
			if g.err == nil {
				g.err = err
			}
			g.mu.Unlock()
		}
	}()
}

// AddSignals adds a goroutine which returns when one of sigs is received,
// stopping the group.
func (g *G) AddSignals(sigs ...os.Signal) {
	ctx, stop := signal.NotifyContext(g.ctx, sigs...)
	g.Add(func(context.Context) error {
		defer stop()
		<-ctx.Done()
		return nil
	})
}

// Wait waits for every goroutine in the group to return and reports the
// first error, if any.
func (g *G) Wait() error {
	g.wg.Wait()
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
