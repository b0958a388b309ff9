package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitpulse/internal/kv"
)

// recordingStorage wraps MemoryStorage and remembers the order of writes.
type recordingStorage struct {
	*kv.MemoryStorage

	mu     sync.Mutex
	writes []string
	setErr error
	getErr error
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{MemoryStorage: kv.NewMemoryStorage()}
}

func (r *recordingStorage) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	r.writes = append(r.writes, key+"="+string(value))
	err := r.setErr
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.MemoryStorage.Set(ctx, key, value)
}

func (r *recordingStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.MemoryStorage.Get(ctx, key)
}

type snapshot struct {
	IDs []string `json:"ids"`
}

func waitTimeout(t *testing.T, p *Pending) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.Wait(ctx)
}

func TestWriter_SaveAndLoad(t *testing.T) {
	storage := newRecordingStorage()
	w := NewWriter(storage, DefaultWriterConfig())
	w.Start()
	defer w.Stop()

	p := w.Save("recipe-storage:d1", snapshot{IDs: []string{"1", "2"}})
	require.NoError(t, waitTimeout(t, p))

	var got snapshot
	require.True(t, w.Load(context.Background(), "recipe-storage:d1", &got))
	assert.Equal(t, []string{"1", "2"}, got.IDs)
}

func TestWriter_SameKeyKeepsScheduleOrder(t *testing.T) {
	storage := newRecordingStorage()
	w := NewWriter(storage, WriterConfig{WorkerCount: 8, QueueSize: 64})
	w.Start()

	pendings := make([]*Pending, 0, 50)
	for i := 0; i < 50; i++ {
		pendings = append(pendings, w.Save("k", snapshot{IDs: []string{fmt.Sprint(i)}}))
	}
	w.Stop()

	for _, p := range pendings {
		assert.NoError(t, waitTimeout(t, p))
	}

	var got snapshot
	require.True(t, w.Load(context.Background(), "k", &got))
	assert.Equal(t, []string{"49"}, got.IDs, "last scheduled snapshot wins")

	// Waiting snapshots of one key are coalesced; those written keep their order.
	storage.mu.Lock()
	defer storage.mu.Unlock()
	require.NotEmpty(t, storage.writes)
	prev := -1
	for _, write := range storage.writes {
		var n int
		_, err := fmt.Sscanf(write, `k={"ids":["%d"]}`, &n)
		require.NoError(t, err, write)
		assert.Greater(t, n, prev, "writes out of order: %v", storage.writes)
		prev = n
	}
	assert.Equal(t, 49, prev)
}

// hangingStorage blocks every Set until its context expires.
type hangingStorage struct {
	*kv.MemoryStorage
	entered chan string
}

func newHangingStorage() *hangingStorage {
	return &hangingStorage{MemoryStorage: kv.NewMemoryStorage(), entered: make(chan string, 16)}
}

func (h *hangingStorage) Set(ctx context.Context, key string, value []byte) error {
	h.entered <- key
	<-ctx.Done()
	return ctx.Err()
}

func TestWriter_SaveDoesNotBlockOnSlowStorage(t *testing.T) {
	storage := newHangingStorage()
	w := NewWriter(storage, WriterConfig{WorkerCount: 1, QueueSize: 2, WriteTimeout: time.Second})
	w.Start()

	first := w.Save("a", snapshot{})
	select {
	case <-storage.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("writer never picked up the first save")
	}

	type result struct {
		b1, b2, c, d *Pending
	}
	done := make(chan result, 1)
	go func() {
		var r result
		r.b1 = w.Save("b", snapshot{IDs: []string{"1"}})
		r.c = w.Save("c", snapshot{})
		r.b2 = w.Save("b", snapshot{IDs: []string{"2"}})
		r.d = w.Save("d", snapshot{})
		for i := 0; i < 20; i++ {
			w.Save("b", snapshot{IDs: []string{fmt.Sprint(i)}})
		}
		done <- r
	}()

	var r result
	select {
	case r = <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Save blocked behind a hanging write")
	}

	// b and c wait in the lane; d does not fit.
	assert.ErrorIs(t, r.d.Err(), ErrQueueFull)
	select {
	case <-r.b1.Done():
		t.Fatal("b resolved before its write ran")
	default:
	}

	w.Stop()

	assert.ErrorIs(t, waitTimeout(t, first), context.DeadlineExceeded)
	assert.ErrorIs(t, waitTimeout(t, r.b1), context.DeadlineExceeded)
	assert.ErrorIs(t, waitTimeout(t, r.b2), context.DeadlineExceeded)
	assert.ErrorIs(t, waitTimeout(t, r.c), context.DeadlineExceeded)
}

func TestWriter_FailureIsReportedNotRetried(t *testing.T) {
	storage := newRecordingStorage()
	storage.setErr = errors.New("disk full")
	w := NewWriter(storage, DefaultWriterConfig())
	w.Start()
	defer w.Stop()

	err := waitTimeout(t, w.Save("k", snapshot{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.setErr)

	storage.mu.Lock()
	assert.Len(t, storage.writes, 1)
	storage.mu.Unlock()
}

func TestWriter_UnmarshalableValue(t *testing.T) {
	w := NewWriter(newRecordingStorage(), DefaultWriterConfig())

	p := w.Save("k", map[string]any{"bad": make(chan int)})
	select {
	case <-p.Done():
	default:
		t.Fatal("marshal failure should resolve immediately")
	}
	assert.Error(t, p.Err())
}

func TestWriter_StopDrainsQueue(t *testing.T) {
	storage := newRecordingStorage()
	w := NewWriter(storage, WriterConfig{WorkerCount: 2, QueueSize: 100})
	w.Start()

	pendings := make([]*Pending, 0, 20)
	for i := 0; i < 20; i++ {
		pendings = append(pendings, w.Save(fmt.Sprintf("key-%d", i), snapshot{}))
	}
	w.Stop()

	for _, p := range pendings {
		select {
		case <-p.Done():
			assert.NoError(t, p.Err())
		default:
			t.Fatal("Stop returned before a queued write finished")
		}
	}
	assert.Equal(t, 20, storage.Len())
}

func TestWriter_SaveAfterStop(t *testing.T) {
	w := NewWriter(newRecordingStorage(), DefaultWriterConfig())
	w.Start()
	w.Stop()
	w.Stop() // idempotent

	err := waitTimeout(t, w.Save("k", snapshot{}))
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestWriter_StopWithoutStartFailsQueued(t *testing.T) {
	w := NewWriter(newRecordingStorage(), DefaultWriterConfig())
	p := w.Save("k", snapshot{})
	w.Stop()

	assert.ErrorIs(t, waitTimeout(t, p), ErrWriterClosed)
}

func TestWriter_LoadFallsBack(t *testing.T) {
	storage := newRecordingStorage()
	w := NewWriter(storage, DefaultWriterConfig())
	ctx := context.Background()
	var dst snapshot

	assert.False(t, w.Load(ctx, "absent", &dst))

	require.NoError(t, storage.MemoryStorage.Set(ctx, "garbage", []byte("{not json")))
	assert.False(t, w.Load(ctx, "garbage", &dst))

	storage.getErr = errors.New("timeout")
	assert.False(t, w.Load(ctx, "absent", &dst))
}

func TestPending_WaitHonorsContext(t *testing.T) {
	p := newPending()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
	assert.NoError(t, p.Err(), "unresolved pending has no error yet")

	p.resolve(errors.New("first"))
	p.resolve(errors.New("second"))
	assert.EqualError(t, p.Err(), "first")
}

func TestDiscard(t *testing.T) {
	var d Snapshotter = Discard{}
	assert.NoError(t, d.Save("k", snapshot{}).Err())
	assert.False(t, d.Load(context.Background(), "k", &snapshot{}))
}

func TestJoin(t *testing.T) {
	a, b := newPending(), newPending()
	joined := Join(a, b, Resolved(nil))

	a.resolve(nil)
	select {
	case <-joined.Done():
		t.Fatal("joined resolved before every part")
	case <-time.After(20 * time.Millisecond):
	}

	b.resolve(errors.New("disk full"))
	require.Error(t, joined.Wait(context.Background()))
	assert.Contains(t, joined.Err().Error(), "disk full")
	assert.NoError(t, Join().Wait(context.Background()))
}
