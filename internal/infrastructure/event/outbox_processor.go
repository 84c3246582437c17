package event

import (
	"context"
	"sync"
	"time"

	"github.com/obralink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Relay results reported to a RelayObserver
const (
	RelaySent   = "sent"
	RelayFailed = "failed"
	RelayDead   = "dead"
)

// RelayObserver is told the result of every relayed outbox entry
type RelayObserver interface {
	RecordAuditRelay(ctx context.Context, eventType, result string)
}

// OutboxProcessorConfig tunes the audit relay. Zero fields take the defaults.
type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// StaleAfter reclaims entries left PROCESSING by a crashed replica
	StaleAfter       time.Duration
	CleanupRetention time.Duration
}

func (c OutboxProcessorConfig) withDefaults() OutboxProcessorConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 5 * time.Minute
	}
	if c.CleanupRetention <= 0 {
		c.CleanupRetention = 7 * 24 * time.Hour
	}
	return c
}

// OutboxProcessor relays job events from the outbox to the in-process bus,
// where the audit log handler writes them
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	bus        shared.EventPublisher
	serializer *EventSerializer
	config     OutboxProcessorConfig
	observer   RelayObserver
	logger     *zap.Logger
	now        func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	bus shared.EventPublisher,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxProcessor{
		repo:       repo,
		bus:        bus,
		serializer: serializer,
		config:     config.withDefaults(),
		logger:     logger.Named("outbox_relay"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ObserveWith reports relay results to o. Call it before Start.
func (p *OutboxProcessor) ObserveWith(o RelayObserver) *OutboxProcessor {
	p.observer = o
	return p
}

// Start polls the outbox every PollInterval until Stop or ctx is done
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.loop(ctx)
	p.logger.Info("Outbox relay started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval))
	return nil
}

func (p *OutboxProcessor) loop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// Stop cancels polling and waits for the current batch until ctx expires
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.logger.Info("Outbox relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessBatch claims one batch and relays it, returning how many entries were sent
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) int {
	entries, err := p.repo.ClaimBatch(ctx, p.now(), p.config.StaleAfter, p.config.BatchSize)
	if err != nil {
		p.logger.Error("Failed to claim outbox entries", zap.Error(err))
		return 0
	}
	sent := 0
	for _, entry := range entries {
		result := p.relay(ctx, entry)
		if p.observer != nil {
			p.observer.RecordAuditRelay(ctx, entry.EventType, result)
		}
		if result == RelaySent {
			sent++
		}
	}
	return sent
}

// relay decodes and publishes one entry, then stores the outcome on the row.
// A row whose outcome cannot be stored is reclaimed once it goes stale.
func (p *OutboxProcessor) relay(ctx context.Context, entry *shared.OutboxEntry) string {
	log := p.logger.With(
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType))

	err := p.publish(ctx, entry)
	if err == nil {
		entry.MarkSent(p.now())
		if err := p.repo.Update(ctx, entry); err != nil {
			log.Error("Failed to mark outbox entry sent", zap.Error(err))
			return RelayFailed
		}
		return RelaySent
	}

	entry.MarkFailed(err.Error(), p.now())
	result := RelayFailed
	if entry.IsDead() {
		result = RelayDead
		log.Warn("Outbox entry moved to dead letter", zap.Int("retry_count", entry.RetryCount), zap.Error(err))
	} else {
		log.Error("Failed to deliver outbox entry", zap.Int("retry_count", entry.RetryCount), zap.Error(err))
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		log.Error("Failed to update outbox entry", zap.Error(err))
	}
	return result
}

func (p *OutboxProcessor) publish(ctx context.Context, entry *shared.OutboxEntry) error {
	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		return err
	}
	return p.bus.Publish(ctx, event)
}

// Cleanup deletes sent entries processed before now minus CleanupRetention
func (p *OutboxProcessor) Cleanup(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("Cleaned up outbox entries", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}
