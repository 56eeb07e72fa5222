package drafts

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ariefcatur/gametrust/internal/logger"
)

const DefaultAutosaveInterval = 30 * time.Second

type pending struct {
	draft Draft
	seq   uint64
}

// Autosaver buffers the newest draft per seller and writes the buffer to the
// store on a fixed interval and on Close.
type Autosaver struct {
	store    Store
	interval time.Duration
	log      *slog.Logger

	flushMu sync.Mutex // one Flush at a time

	mu        sync.Mutex
	seq       uint64
	pending   map[string]pending
	discarded map[string]uint64 // seller -> seq of the last Discard during a flush

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewAutosaver(store Store, interval time.Duration, log *slog.Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		store:     store,
		interval:  interval,
		log:       log,
		pending:   map[string]pending{},
		discarded: map[string]uint64{},
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the flush loop until ctx is cancelled or Close is called.
func (a *Autosaver) Start(ctx context.Context) {
	if !a.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(a.done)
		t := time.NewTicker(a.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := a.Flush(ctx); err != nil {
					a.log.Warn("draft autosave incomplete", logger.Err(err))
				}
			case <-ctx.Done():
				a.finalFlush()
				return
			case <-a.stop:
				a.finalFlush()
				return
			}
		}
	}()
}

func (a *Autosaver) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Flush(ctx); err != nil {
		a.log.Error("draft flush on shutdown failed", logger.Err(err))
	}
}

// Put replaces the buffered draft for d.Seller.
func (a *Autosaver) Put(d Draft) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	a.pending[d.Seller] = pending{draft: d, seq: a.seq}
}

func (a *Autosaver) Get(seller string) (Draft, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pending[seller]
	return p.draft, ok
}

// Discard forgets an unsaved draft. A flush already writing that draft
// deletes it again once its write returns.
func (a *Autosaver) Discard(seller string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	delete(a.pending, seller)
	a.discarded[seller] = a.seq
}

func (a *Autosaver) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Flush writes every buffered draft. Drafts that fail to save stay buffered
// for the next round; a draft replaced during the write stays buffered too.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	// No write is in flight here, so earlier discards have nothing left to undo.
	clear(a.discarded)
	batch := make([]pending, 0, len(a.pending))
	for _, p := range a.pending {
		batch = append(batch, p)
	}
	a.mu.Unlock()

	var errs []error
	for _, p := range batch {
		seller := p.draft.Seller
		if err := a.store.Save(ctx, p.draft); err != nil {
			errs = append(errs, err)
			continue
		}
		a.mu.Lock()
		if cur, ok := a.pending[seller]; ok && cur.seq == p.seq {
			delete(a.pending, seller)
		}
		undo := a.discarded[seller] > p.seq
		a.mu.Unlock()
		if undo {
			if err := a.store.Delete(ctx, seller); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(batch) > 0 {
		a.log.Debug("drafts autosaved", slog.Int("count", len(batch)-len(errs)), slog.Int("failed", len(errs)))
	}
	return errors.Join(errs...)
}

// Close stops the loop and waits for the final flush. Safe to call more than once.
func (a *Autosaver) Close() {
	a.stopOnce.Do(func() { close(a.stop) })
	if !a.started.Load() {
		a.finalFlush()
		return
	}
	<-a.done
}
