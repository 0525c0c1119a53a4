package handlers

import (
	"context"
	"strings"
	"sync"
	"time"
)

// HealthChecker reports the health of the service.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// HealthCheckFunc returns nil when the dependency it checks is usable.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Healthy bool                   `json:"healthy"`
	Message string                 `json:"message,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
	Uptime  string                 `json:"uptime,omitempty"`
	Version string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

type namedCheck struct {
	name string
	fn   HealthCheckFunc
}

// CompositeHealthChecker runs its checks in parallel, each bounded by the
// per-check timeout. The service is healthy when every check passes.
type CompositeHealthChecker struct {
	mu      sync.RWMutex
	checks  []namedCheck
	started time.Time
	version string
	timeout time.Duration
}

var _ HealthChecker = (*CompositeHealthChecker)(nil)

// DefaultCheckTimeout bounds each check unless SetTimeout changes it.
const DefaultCheckTimeout = 5 * time.Second

func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		started: time.Now(),
		version: version,
		timeout: DefaultCheckTimeout,
	}
}

func (c *CompositeHealthChecker) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// AddCheck registers a check. Re-using a name replaces the earlier check.
func (c *CompositeHealthChecker) AddCheck(name string, fn HealthCheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.checks {
		if c.checks[i].name == name {
			c.checks[i].fn = fn
			return
		}
	}
	c.checks = append(c.checks, namedCheck{name: name, fn: fn})
}

func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := append([]namedCheck(nil), c.checks...)
	timeout := c.timeout
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy: true,
		Uptime:  time.Since(c.started).Round(time.Second).String(),
		Version: c.version,
	}
	if len(checks) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, chk := range checks {
		i, chk := i, chk
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = run(ctx, chk.fn, timeout)
		}()
	}
	wg.Wait()

	status.Checks = make(map[string]CheckResult, len(checks))
	var failed []string
	for i, chk := range checks {
		status.Checks[chk.name] = results[i]
		if !results[i].Healthy {
			failed = append(failed, chk.name)
		}
	}

	if len(failed) == 0 {
		status.Message = "All checks passed"
		return status
	}
	status.Healthy = false
	status.Message = "Some checks failed: " + strings.Join(failed, ", ")
	return status
}

func run(ctx context.Context, fn HealthCheckFunc, timeout time.Duration) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	res := CheckResult{
		Healthy:  err == nil,
		Message:  "OK",
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		res.Message = err.Error()
	}
	return res
}

// Pinger is anything that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewPingCheck(p Pinger) HealthCheckFunc {
	return p.Ping
}
