// Package health tracks the state of the service dependencies behind /healthz.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AI2HU/bizreview/internal/logger"
)

// Check results
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// DefaultSchedule is how often the checks run in the background
const DefaultSchedule = "@every 30s"

// checkTimeout bounds a single check
const checkTimeout = 5 * time.Second

// CheckFunc performs one health check
type CheckFunc func(ctx context.Context) error

// Result is the outcome of the last run of a check
type Result struct {
	Name        string
	Healthy     bool
	Message     string
	LastChecked time.Time
}

type namedCheck struct {
	name string
	fn   CheckFunc
}

// Monitor runs named checks on a cron schedule and keeps their latest results
type Monitor struct {
	checks   []namedCheck
	schedule string
	cron     *cron.Cron

	mu      sync.RWMutex
	results map[string]*Result
	running bool
}

// NewMonitor creates a monitor. An empty schedule uses DefaultSchedule.
func NewMonitor(schedule string) *Monitor {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Monitor{
		schedule: schedule,
		cron:     cron.New(),
		results:  make(map[string]*Result),
	}
}

// Register adds a check. Checks must be registered before Start.
func (m *Monitor) Register(name string, fn CheckFunc) {
	m.checks = append(m.checks, namedCheck{name: name, fn: fn})
}

// Start runs every check once and then schedules them
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("health monitor already running")
	}
	m.mu.Unlock()

	m.RunChecks(ctx)

	if _, err := m.cron.AddFunc(m.schedule, func() { m.RunChecks(ctx) }); err != nil {
		return fmt.Errorf("invalid health check schedule %q: %w", m.schedule, err)
	}

	m.mu.Lock()
	m.cron.Start()
	m.running = true
	m.mu.Unlock()

	logger.Info("Health monitor started (%d checks, %s)", len(m.checks), m.schedule)
	return nil
}

// Stop stops the schedule and waits for a running pass to finish
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	<-m.cron.Stop().Done()
	logger.Info("Health monitor stopped")
}

// RunChecks executes every check now
func (m *Monitor) RunChecks(ctx context.Context) {
	for _, c := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.fn(checkCtx)
		cancel()

		result := &Result{
			Name:        c.name,
			Healthy:     err == nil,
			Message:     StatusOK,
			LastChecked: time.Now(),
		}
		if err != nil {
			result.Message = err.Error()
		}

		m.mu.Lock()
		previous, seen := m.results[c.name]
		m.results[c.name] = result
		m.mu.Unlock()

		switch {
		case err != nil && (!seen || previous.Healthy):
			logger.Warning("Health check %s failed: %v", c.name, err)
		case err == nil && seen && !previous.Healthy:
			logger.Info("Health check %s recovered", c.name)
		}
	}
}

// Status returns the overall status and the message of each check. No results
// yet counts as ok; some failing checks is degraded; all failing is down.
func (m *Monitor) Status() (string, map[string]string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	checks := make(map[string]string, len(m.results))
	failing := 0
	for name, r := range m.results {
		checks[name] = r.Message
		if !r.Healthy {
			failing++
		}
	}

	switch {
	case failing == 0:
		return StatusOK, checks
	case failing < len(m.results):
		return StatusDegraded, checks
	default:
		return StatusDown, checks
	}
}

// Results returns a copy of the latest results
func (m *Monitor) Results() []Result {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Result, 0, len(m.results))
	for _, r := range m.results {
		results = append(results, *r)
	}
	return results
}
