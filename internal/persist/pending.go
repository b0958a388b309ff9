package persist

import (
	"context"
	"errors"
	"sync"
)

// Pending is the completion signal of one scheduled snapshot write.
// Callers may wait on it or drop it; the write happens either way.
type Pending struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Resolved returns a Pending that has already completed with err.
func Resolved(err error) *Pending {
	p := newPending()
	p.resolve(err)
	return p
}

func (p *Pending) resolve(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once the write finished (successfully or not).
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the write error. It is nil until Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the write finished or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join returns a Pending that completes once every p has completed. Its error
// joins the individual errors.
func Join(ps ...*Pending) *Pending {
	joined := newPending()
	go func() {
		var errs []error
		for _, p := range ps {
			<-p.done
			if p.err != nil {
				errs = append(errs, p.err)
			}
		}
		joined.resolve(errors.Join(errs...))
	}()
	return joined
}
