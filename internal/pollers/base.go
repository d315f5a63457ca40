package pollers

import (
	"context"
	"sync"
	"time"

	"github.com/rmitchellscott/halftone/internal/logging"
)

// BasePoller runs its task once at start and then every Interval
type BasePoller struct {
	cfg  Config
	task Task

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewBasePoller(cfg Config, task Task) *BasePoller {
	cfg.Attempts = max(cfg.Attempts, 1)
	return &BasePoller{cfg: cfg, task: task}
}

func (p *BasePoller) Name() string {
	return p.cfg.Name
}

// Start launches the loop. Disabled pollers return nil and stay stopped.
func (p *BasePoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return nil
	}
	if !p.cfg.Enabled {
		logging.DebugWithComponent(logging.ComponentPoller, "poller disabled", "name", p.cfg.Name)
		return nil
	}

	logging.InfoWithComponent(logging.ComponentPoller, "starting poller", "name", p.cfg.Name, "interval", p.cfg.Interval)

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(loopCtx, p.done)
	return nil
}

// Stop cancels the loop and waits for an in-flight run to return
func (p *BasePoller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		return nil
	}
	p.cancel()
	<-p.done
	p.done, p.cancel = nil, nil

	logging.DebugWithComponent(logging.ComponentPoller, "poller stopped", "name", p.cfg.Name)
	return nil
}

func (p *BasePoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

func (p *BasePoller) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		p.tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// tick runs the task, retrying after RetryDelay until Attempts is spent
func (p *BasePoller) tick(ctx context.Context) {
	for attempt := 1; attempt <= p.cfg.Attempts; attempt++ {
		err := p.runOnce(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}

		logging.WarnWithComponent(logging.ComponentPoller, "poll failed",
			"name", p.cfg.Name, "attempt", attempt, "attempts", p.cfg.Attempts, "error", err)

		if attempt == p.cfg.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.RetryDelay):
		}
	}
	logging.ErrorWithComponent(logging.ComponentPoller, "poller gave up", "name", p.cfg.Name, "attempts", p.cfg.Attempts)
}

func (p *BasePoller) runOnce(ctx context.Context) error {
	if p.cfg.Timeout <= 0 {
		return p.task(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	return p.task(ctx)
}
