// Package pollers runs periodic maintenance tasks for the HTTP service.
package pollers

import (
	"context"
	"time"
)

// Poller is a background task run on a fixed interval
type Poller interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}

// Task is one maintenance run. It should honor ctx cancellation.
type Task func(ctx context.Context) error

// Config controls scheduling and retries for a BasePoller
type Config struct {
	Name     string
	Interval time.Duration
	Enabled  bool
	// Attempts per tick, including the first
	Attempts   int
	RetryDelay time.Duration
	// Timeout bounds a single attempt; zero means none
	Timeout time.Duration
}

// DefaultConfig enables the poller when interval is positive
func DefaultConfig(name string, interval time.Duration) Config {
	return Config{
		Name:       name,
		Interval:   interval,
		Enabled:    interval > 0,
		Attempts:   3,
		RetryDelay: 30 * time.Second,
		Timeout:    5 * time.Minute,
	}
}
