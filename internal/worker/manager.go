package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bloodconnect/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second

	// handleTimeout bounds a single store write
	handleTimeout = 10 * time.Second

	// pendingSweepInterval is how often a worker retries its unacked messages
	pendingSweepInterval = time.Minute
)

// Manager orchestrates worker goroutines that consume from Redis Streams.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	log         zerolog.Logger
	workerCount int
	batchSize   int64
	blockTime   time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Number of worker goroutines
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// NewManager creates a new worker manager.
func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig, logger zerolog.Logger) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		log:         logger,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
	}
}

// Start begins the worker goroutines.
// Call Stop() to gracefully shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamDonorActivity, queue.ConsumerGroupActivity); err != nil {
		m.cancel()
		return err
	}

	for i := 0; i < m.workerCount; i++ {
		workerID := i + 1
		m.wg.Add(1)
		go m.runWorker(workerID, consumerNameForWorker(workerID))
	}

	m.log.Info().
		Int("workers", m.workerCount).
		Str("stream", queue.StreamDonorActivity).
		Str("group", queue.ConsumerGroupActivity).
		Msg("workers started")
	return nil
}

// Stop gracefully shuts down all workers.
// Blocks until all workers have finished.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.log.Info().Msg("all workers stopped")
}

// runWorker is the main loop for a single worker goroutine.
func (m *Manager) runWorker(workerID int, consumerName string) {
	defer m.wg.Done()

	log := m.log.With().Int("worker", workerID).Logger()

	// Crash recovery: finish what this consumer name left unacked.
	m.processPending(log, consumerName)
	lastSweep := time.Now()

	for {
		select {
		case <-m.ctx.Done():
			log.Debug().Msg("shutting down")
			return
		default:
			m.processMessages(log, consumerName)
			if time.Since(lastSweep) >= pendingSweepInterval {
				m.processPending(log, consumerName)
				lastSweep = time.Now()
			}
		}
	}
}

// processPending handles messages that were delivered but not acknowledged.
func (m *Manager) processPending(log zerolog.Logger, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamDonorActivity, queue.ConsumerGroupActivity, consumerName, m.batchSize)
		if err != nil {
			log.Error().Err(err).Msg("read pending failed")
			return
		}
		if len(messages) == 0 {
			return
		}

		log.Info().Int("count", len(messages)).Msg("processing pending messages")
		if !m.handleMessages(log, messages) {
			return
		}
	}
}

// processMessages reads and handles a batch of messages.
func (m *Manager) processMessages(log zerolog.Logger, consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx,
		queue.StreamDonorActivity,
		queue.ConsumerGroupActivity,
		consumerName,
		m.batchSize,
		m.blockTime,
	)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("read failed")
		select {
		case <-m.ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	if len(messages) > 0 {
		m.handleMessages(log, messages)
	}
}

// handleMessages writes each event and acks the ones that were stored.
// A failed write stays pending and is retried by the next pending sweep.
// Returns false when any message was left unacked.
func (m *Manager) handleMessages(log zerolog.Logger, messages []queue.Message) bool {
	allAcked := true
	for _, msg := range messages {
		ctx, cancel := context.WithTimeout(m.ctx, handleTimeout)
		err := m.handler.HandleEvent(ctx, msg.Event)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Msg("handle failed")
			allAcked = false
			continue
		}

		if err := m.consumer.Ack(m.ctx, queue.StreamDonorActivity, queue.ConsumerGroupActivity, msg.ID); err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Msg("ack failed")
			allAcked = false
		}
	}
	return allAcked
}

// consumerNameForWorker generates a unique consumer name for each worker.
func consumerNameForWorker(workerID int) string {
	return fmt.Sprintf("worker-%d", workerID)
}
