// Package persist writes state store snapshots to durable storage in the
// background and reads them back once when a store is hydrated.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"fitpulse/internal/kv"
)

const (
	// DefaultWorkerCount is the default number of writer goroutines
	DefaultWorkerCount = 4

	// DefaultQueueSize is the default number of keys awaiting a write per worker
	DefaultQueueSize = 256

	// DefaultWriteTimeout bounds a single storage write
	DefaultWriteTimeout = 5 * time.Second
)

var (
	// ErrWriterClosed resolves saves scheduled after Stop.
	ErrWriterClosed = errors.New("persist: writer stopped")

	// ErrQueueFull resolves saves of a new key while its worker already holds
	// QueueSize keys awaiting a write.
	ErrQueueFull = errors.New("persist: write queue full")
)

// Snapshotter is what a state store needs from the persistence layer.
type Snapshotter interface {
	// Save schedules v to be written under key and returns immediately.
	Save(key string, v any) *Pending

	// Load decodes the snapshot under key into dst. It returns false when the
	// snapshot is absent or unreadable; dst must then be ignored.
	Load(ctx context.Context, key string, dst any) bool
}

// job is the latest snapshot of one key and every save it answers.
type job struct {
	key      string
	value    []byte
	pendings []*Pending
}

// lane holds the jobs of one writer goroutine. A key has at most one waiting
// job: saving it again replaces the value, so only the newest snapshot is
// written.
type lane struct {
	mu     sync.Mutex
	ready  *sync.Cond
	jobs   map[string]*job
	order  []string
	limit  int
	closed bool
}

func newLane(limit int) *lane {
	l := &lane{jobs: make(map[string]*job), limit: limit}
	l.ready = sync.NewCond(&l.mu)
	return l
}

// put never blocks on storage.
func (l *lane) put(key string, value []byte, p *Pending) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrWriterClosed
	}
	if j, ok := l.jobs[key]; ok {
		j.value = value
		j.pendings = append(j.pendings, p)
		return nil
	}
	if len(l.order) >= l.limit {
		return ErrQueueFull
	}
	l.jobs[key] = &job{key: key, value: value, pendings: []*Pending{p}}
	l.order = append(l.order, key)
	l.ready.Signal()
	return nil
}

// take waits for the oldest job. It returns false once the lane is closed
// and empty.
func (l *lane) take() (*job, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.order) == 0 && !l.closed {
		l.ready.Wait()
	}
	if len(l.order) == 0 {
		return nil, false
	}
	key := l.order[0]
	l.order = l.order[1:]
	j := l.jobs[key]
	delete(l.jobs, key)
	return j, true
}

func (l *lane) close() {
	l.mu.Lock()
	l.closed = true
	l.ready.Broadcast()
	l.mu.Unlock()
}

// WriterConfig holds configuration for the snapshot writer.
type WriterConfig struct {
	WorkerCount  int           // Number of writer goroutines
	QueueSize    int           // Keys awaiting a write per goroutine
	WriteTimeout time.Duration // Deadline of one storage write
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		WorkerCount:  DefaultWorkerCount,
		QueueSize:    DefaultQueueSize,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Writer serializes snapshots and hands them to a pool of goroutines.
// A key always maps to the same goroutine, so writes of one record land in
// the order they were scheduled and the last snapshot wins. Save never waits
// for storage: a slow backend only delays the Pending.
type Writer struct {
	storage kv.Storage
	lanes   []*lane
	timeout time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewWriter creates a writer. Call Start to begin draining and Stop to flush.
func NewWriter(storage kv.Storage, cfg WriterConfig) *Writer {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	lanes := make([]*lane, cfg.WorkerCount)
	for i := range lanes {
		lanes[i] = newLane(cfg.QueueSize)
	}

	return &Writer{
		storage: storage,
		lanes:   lanes,
		timeout: cfg.WriteTimeout,
	}
}

// Start begins the writer goroutines.
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true

	for i, l := range w.lanes {
		w.wg.Add(1)
		go w.run(i+1, l)
	}
	log.Printf("[Persist] Started %d writers", len(w.lanes))
}

// Stop refuses new saves, drains every waiting write and waits for the writers.
func (w *Writer) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	started := w.started
	for _, l := range w.lanes {
		l.close()
	}
	w.mu.Unlock()

	if !started {
		// Never started: fail whatever was waiting.
		for _, l := range w.lanes {
			for j, ok := l.take(); ok; j, ok = l.take() {
				j.resolve(ErrWriterClosed)
			}
		}
		return
	}

	w.wg.Wait()
	log.Printf("[Persist] All writers stopped")
}

// Save marshals v now and schedules the write. It does not block.
func (w *Writer) Save(key string, v any) *Pending {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Persist] Save FAILED: key=%s err=%v", key, err)
		return Resolved(fmt.Errorf("marshal snapshot: %w", err))
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		log.Printf("[Persist] Save DROPPED: key=%s (writer stopped)", key)
		return Resolved(ErrWriterClosed)
	}

	p := newPending()
	if err := w.lanes[w.shard(key)].put(key, data, p); err != nil {
		log.Printf("[Persist] Save DROPPED: key=%s err=%v", key, err)
		p.resolve(err)
	}
	return p
}

// Load reads one snapshot. Absence and failures are logged, never returned.
func (w *Writer) Load(ctx context.Context, key string, dst any) bool {
	data, err := w.storage.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		log.Printf("[Persist] Load: key=%s (absent, using defaults)", key)
		return false
	}
	if err != nil {
		log.Printf("[Persist] Load FAILED: key=%s err=%v (using defaults)", key, err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Printf("[Persist] Load FAILED: key=%s decode err=%v (using defaults)", key, err)
		return false
	}
	return true
}

func (w *Writer) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(w.lanes)))
}

// run is the main loop of one writer goroutine.
func (w *Writer) run(workerID int, l *lane) {
	defer w.wg.Done()

	for j, ok := l.take(); ok; j, ok = l.take() {
		w.write(workerID, j)
	}
}

func (j *job) resolve(err error) {
	for _, p := range j.pendings {
		p.resolve(err)
	}
}

func (w *Writer) write(workerID int, j *job) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	startTime := time.Now()
	err := w.storage.Set(ctx, j.key, j.value)
	if err != nil {
		// Not retried: the in-memory state stays authoritative.
		log.Printf("[Persist-%d] Write FAILED: key=%s err=%v", workerID, j.key, err)
		j.resolve(fmt.Errorf("write snapshot %s: %w", j.key, err))
		return
	}

	log.Printf("[Persist-%d] Write OK: key=%s bytes=%d saves=%d duration=%v",
		workerID, j.key, len(j.value), len(j.pendings), time.Since(startTime))
	j.resolve(nil)
}

// Discard is a Snapshotter that keeps nothing. Stores built with it are
// memory-only and always hydrate to defaults.
type Discard struct{}

func (Discard) Save(string, any) *Pending              { return Resolved(nil) }
func (Discard) Load(context.Context, string, any) bool { return false }
