package core

import (
	"context"
	"sync"
	"time"

	"github.com/valter-silva-au/todo/internal/storage"
	"go.uber.org/zap"
)

// snapshotWriter writes full-collection snapshots to a single key without
// blocking the caller. Each snapshot carries a generation number; a snapshot
// older than the last committed one is dropped, so writes that finish out of
// order still leave the newest state in the slot.
type snapshotWriter struct {
	kv      storage.KVStore
	key     string
	timeout time.Duration
	log     *zap.Logger

	mu        sync.Mutex // serializes Set calls and guards committed
	committed uint64

	wg sync.WaitGroup
}

func newSnapshotWriter(kv storage.KVStore, key string, timeout time.Duration, log *zap.Logger) *snapshotWriter {
	return &snapshotWriter{kv: kv, key: key, timeout: timeout, log: log}
}

// schedule starts an asynchronous write of data tagged with gen.
func (w *snapshotWriter) schedule(gen uint64, data []byte) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.write(gen, data)
	}()
}

func (w *snapshotWriter) write(gen uint64, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen <= w.committed {
		w.log.Debug("dropping stale snapshot",
			zap.Uint64("generation", gen),
			zap.Uint64("committed", w.committed))
		return
	}

	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if err := w.kv.Set(ctx, w.key, data); err != nil {
		w.log.Error("saving tasks failed",
			zap.String("key", w.key),
			zap.Uint64("generation", gen),
			zap.Error(err))
		return
	}
	w.committed = gen
}

// wait blocks until every scheduled write has finished.
func (w *snapshotWriter) wait() {
	w.wg.Wait()
}
