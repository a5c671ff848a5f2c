package delivery

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/foxzi/wadesk/internal/metrics"
	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/server/repository"
)

// Worker advances the status of outbound messages one step per tick:
// sent, then delivered, then read
type Worker struct {
	logger  *slog.Logger
	chats   *repository.ChatRepository
	metrics *metrics.Metrics
	now     func() time.Time

	interval time.Duration
	delay    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds worker configuration
type Config struct {
	// Interval between ticks
	Interval time.Duration
	// Delay is the minimum message age before it moves
	Delay time.Duration
}

// DefaultConfig returns default worker configuration
func DefaultConfig() Config {
	return Config{
		Interval: 2 * time.Second,
		Delay:    time.Second,
	}
}

// New creates a delivery worker. m may be nil.
func New(db *sql.DB, m *metrics.Metrics, logger *slog.Logger, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		logger:   logger.With("component", "delivery"),
		chats:    repository.NewChatRepository(db),
		metrics:  m,
		now:      time.Now,
		interval: cfg.Interval,
		delay:    cfg.Delay,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the worker
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
	w.logger.Info("delivery worker started", "interval", w.interval, "delay", w.delay)
}

// Stop stops the worker gracefully
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	w.logger.Info("delivery worker stopped")
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Tick()
		}
	}
}

// Tick performs one delivery step. Read is advanced before delivered so a
// message never moves twice in one tick.
func (w *Worker) Tick() {
	cutoff := w.now().Add(-w.delay)

	steps := []struct{ from, to models.MessageStatus }{
		{models.MessageDelivered, models.MessageRead},
		{models.MessageSent, models.MessageDelivered},
	}
	for _, s := range steps {
		n, err := w.chats.AdvanceOutbound(s.from, s.to, cutoff)
		if err != nil {
			w.logger.Error("failed to advance messages", "from", s.from, "to", s.to, "error", err)
			continue
		}
		if n == 0 {
			continue
		}
		for range n {
			w.metrics.MessageStatus(string(s.to))
		}
		w.logger.Debug("messages advanced", "to", s.to, "count", n)
	}
}
