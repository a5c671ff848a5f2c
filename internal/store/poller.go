package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/foxzi/wadesk/internal/models"
)

// Poller refreshes the chat store on a fixed interval. It is owned by the
// view that shows the inbox and must be stopped when that view goes away.
type Poller struct {
	chats    *Chats
	interval time.Duration
	logger   *slog.Logger

	// OnPoll, when set, is called after every refresh with the messages
	// that arrived in the selected chat
	OnPoll func(received []models.Message, err error)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller for chats
func NewPoller(chats *Chats, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		chats:    chats,
		interval: interval,
		logger:   loggerOrDefault(logger).With("component", "poller"),
	}
}

// Start starts polling until Stop is called or ctx is done. Starting a
// running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
	p.logger.Debug("poller started", "interval", p.interval)
}

// Stop stops polling and waits for an in-flight refresh to finish
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Debug("poller stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			received, err := p.chats.PollMessages(ctx)
			if ctx.Err() != nil {
				return
			}
			if p.OnPoll != nil {
				p.OnPoll(received, err)
			}
		}
	}
}
