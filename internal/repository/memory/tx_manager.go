// Package memory holds process-local repositories for tests. Units of work
// are serialised but never rolled back, so nothing here is fit to serve
// traffic.
package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// TxManager serialises every unit of work behind one mutex. There is no
// rollback: a failing fn leaves earlier writes in place. Nested Do calls run
// inside the outer unit.
type TxManager struct {
	mu sync.Mutex
}

func NewTxManager() *TxManager {
	return &TxManager{}
}

func (tm *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == tm {
		return fn(ctx)
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, tm))
}
