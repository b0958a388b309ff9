package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fitpulse/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second

	// readRetryDelay is the pause after a failed stream read.
	readRetryDelay = time.Second
)

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Consumers in the group
	BatchSize    int64         // Entries per read
	BlockTimeout time.Duration // XREADGROUP block time
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// Manager runs a group of consumers over the preference stream and feeds
// every event to the Handler. A batch is acknowledged as a whole once handled,
// including entries that failed to parse or to apply.
type Manager struct {
	consumer queue.Consumer
	handler  *Handler
	cfg      ManagerConfig

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	defaults := DefaultManagerConfig()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaults.WorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = defaults.BlockTimeout
	}
	return &Manager{consumer: consumer, handler: handler, cfg: cfg}
}

// Start creates the consumer group if needed and launches the workers.
// They run until ctx is done or Stop is called.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences); err != nil {
		return err
	}

	ctx, m.cancel = context.WithCancel(ctx)
	for i := 1; i <= m.cfg.WorkerCount; i++ {
		name := fmt.Sprintf("worker-%d", i)
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.run(ctx, name)
		}()
	}

	log.Printf("[Manager] Started %d workers: stream=%s group=%s",
		m.cfg.WorkerCount, queue.StreamPreferences, queue.ConsumerGroupPreferences)
	return nil
}

// Stop cancels the workers and waits for them. Safe to call without Start.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	log.Printf("[Manager] Workers stopped")
}

// run drains the entries this consumer left unacknowledged before a restart,
// then polls for new ones.
func (m *Manager) run(ctx context.Context, name string) {
	for ctx.Err() == nil {
		batch, err := m.consumer.ReadPending(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences, name, m.cfg.BatchSize)
		if err != nil {
			log.Printf("[Worker] %s ReadPending FAILED: %v", name, err)
			break
		}
		if len(batch) == 0 {
			break
		}
		log.Printf("[Worker] %s recovering %d pending entries", name, len(batch))
		m.process(ctx, name, batch)
	}

	for ctx.Err() == nil {
		batch, err := m.consumer.Read(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences, name, m.cfg.BatchSize, m.cfg.BlockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Worker] %s Read FAILED: %v", name, err)
			select {
			case <-ctx.Done():
			case <-time.After(readRetryDelay):
			}
			continue
		}
		m.process(ctx, name, batch)
	}
}

func (m *Manager) process(ctx context.Context, name string, batch []queue.Message) {
	if len(batch) == 0 {
		return
	}

	ids := make([]string, 0, len(batch))
	for _, msg := range batch {
		ids = append(ids, msg.ID)
		if msg.Err != nil {
			log.Printf("[Worker] %s dropping malformed entry id=%s: %v", name, msg.ID, msg.Err)
			continue
		}
		if err := m.handler.HandleEvent(ctx, msg.Event); err != nil {
			log.Printf("[Worker] %s handle FAILED id=%s type=%s: %v", name, msg.ID, msg.Event.Type, err)
		}
	}

	if err := m.consumer.Ack(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences, ids...); err != nil {
		log.Printf("[Worker] %s Ack FAILED ids=%v: %v", name, ids, err)
	}
}
