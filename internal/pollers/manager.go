package pollers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rmitchellscott/halftone/internal/logging"
)

// Manager starts and stops a set of pollers together
type Manager struct {
	mu      sync.Mutex
	pollers []Poller
	running bool
}

func NewManager() *Manager {
	return &Manager{}
}

// Register adds a poller. Names must be unique.
func (m *Manager) Register(p Poller) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.pollers {
		if existing.Name() == p.Name() {
			return fmt.Errorf("poller %q already registered", p.Name())
		}
	}
	m.pollers = append(m.pollers, p)
	return nil
}

// Start starts every poller in registration order. A poller that fails to
// start does not prevent the others from starting.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	m.running = true

	var errs []error
	for _, p := range m.pollers {
		if err := p.Start(ctx); err != nil {
			logging.ErrorWithComponent(logging.ComponentPoller, "failed to start poller", "name", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Stop stops all running pollers concurrently and waits for them
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}
	m.running = false

	errs := make([]error, len(m.pollers))
	var wg sync.WaitGroup
	for i, p := range m.pollers {
		if !p.IsRunning() {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Stop(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", p.Name(), err)
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Names lists registered pollers in registration order
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.pollers))
	for i, p := range m.pollers {
		names[i] = p.Name()
	}
	return names
}
