package engine

import (
	"context"
	"sync"
)

// completer is a single-shot future backing Ask: exactly one of fulfill's
// calls has effect, and await blocks until that call happens or the context
// is done.
type completer struct {
	once   sync.Once
	result chan completerResult
}

type completerResult struct {
	data any
	err  error
}

func newCompleter() *completer {
	return &completer{result: make(chan completerResult, 1)}
}

// fulfill resolves the completer. Only the first call has effect; later
// calls (e.g. a double Reply) are silently dropped.
func (c *completer) fulfill(data any, err error) {
	c.once.Do(func() {
		c.result <- completerResult{data: data, err: err}
	})
}

// await blocks for a result until ctx is done, returning ErrAskTimeout if
// the context expires first.
func (c *completer) await(ctx context.Context) (any, error) {
	select {
	case r := <-c.result:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ErrAskTimeout
	}
}
