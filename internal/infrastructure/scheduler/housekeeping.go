package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is one periodic maintenance function
type Task func(ctx context.Context) error

// Housekeeping runs maintenance tasks on cron schedules with a seconds field.
// A run is skipped while the previous run of the same task is still going.
type Housekeeping struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
	entries map[string]cron.EntryID
}

// NewHousekeeping creates a scheduler; timeout bounds each task run
func NewHousekeeping(timeout time.Duration, logger *zap.Logger) *Housekeeping {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger = logger.Named("housekeeping")
	cronLogger := zapCronLogger{logger: logger.Sugar()}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Housekeeping{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(
				cron.SkipIfStillRunning(cronLogger),
				cron.Recover(cronLogger),
			),
		),
		logger:  logger,
		timeout: timeout,
		baseCtx: baseCtx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// Register schedules a named task
func (h *Housekeeping) Register(name, spec string, task Task) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.entries[name]; exists {
		return fmt.Errorf("%w: task %q already registered", ErrInvalidConfig, name)
	}

	id, err := h.cron.AddFunc(spec, func() { h.RunNow(name, task) })
	if err != nil {
		return fmt.Errorf("%w: task %q: %v", ErrInvalidConfig, name, err)
	}
	h.entries[name] = id
	h.logger.Info("Housekeeping task registered", zap.String("task", name), zap.String("schedule", spec))
	return nil
}

// RunNow executes a task synchronously with the configured timeout
func (h *Housekeeping) RunNow(name string, task Task) {
	ctx, cancel := context.WithTimeout(h.baseCtx, h.timeout)
	defer cancel()

	started := time.Now()
	if err := task(ctx); err != nil {
		h.logger.Error("Housekeeping task failed", zap.String("task", name), zap.Error(err))
		return
	}
	h.logger.Debug("Housekeeping task finished",
		zap.String("task", name),
		zap.Duration("elapsed", time.Since(started)))
}

// Next returns the next activation of a task, or the zero time if unknown
func (h *Housekeeping) Next(name string) time.Time {
	h.mu.Lock()
	id, ok := h.entries[name]
	h.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return h.cron.Entry(id).Next
}

// Start begins running tasks in the background
func (h *Housekeeping) Start() {
	h.cron.Start()
}

// Stop prevents new runs, cancels running tasks and waits for them until ctx expires
func (h *Housekeeping) Stop(ctx context.Context) error {
	stopped := h.cron.Stop()
	h.cancel()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// zapCronLogger adapts zap to the cron.Logger interface
type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
