package health

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/dmitrymomot/onair/pkg/logger"
)

const defaultTimeout = 3 * time.Second

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

var ErrCheckTimeout = errors.New("health: check timed out")

// CheckFunc reports whether a dependency is usable.
// store.Healthcheck and redis.Healthcheck return one.
type CheckFunc func(ctx context.Context) error

// Report is the result of running every check.
type Report struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// Checker runs named readiness checks concurrently.
type Checker struct {
	log     *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds one run of all checks. Default 3s.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(log *slog.Logger) Option {
	return func(c *Checker) {
		if log != nil {
			c.log = log
		}
	}
}

// NewChecker returns a Checker with no checks.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		log:     logger.NewNope(),
		timeout: defaultTimeout,
		checks:  make(map[string]CheckFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers a check under name, replacing any previous one.
// Nil checks are ignored.
func (c *Checker) Add(name string, fn CheckFunc) *Checker {
	if fn == nil {
		return c
	}
	c.mu.Lock()
	c.checks[name] = fn
	c.mu.Unlock()
	return c
}

// Run executes all checks in parallel.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	if len(checks) == 0 {
		return Report{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checks))
		failed  bool
	)
	for name, check := range checks {
		wg.Go(func() {
			res := CheckResult{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = errors.Join(ErrCheckTimeout, err)
				}
				res = CheckResult{Status: StatusUnhealthy, Error: err.Error()}
				c.log.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			results[name] = res
			if res.Status == StatusUnhealthy {
				failed = true
			}
			mu.Unlock()
		})
	}
	wg.Wait()

	status := StatusHealthy
	if failed {
		status = StatusUnhealthy
	}
	return Report{Status: status, Checks: results}
}
