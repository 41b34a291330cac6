package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	clientErrors    uint64
	totalDurationMs uint64

	mu             sync.Mutex
	sourceFailures map[string]*uint64
}

func New() *Collector {
	return &Collector{sourceFailures: map[string]*uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordSourceFailure counts a swallowed upstream failure by source name.
func (c *Collector) RecordSourceFailure(source string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	counter, ok := c.sourceFailures[source]
	if !ok {
		counter = new(uint64)
		c.sourceFailures[source] = counter
	}
	c.mu.Unlock()
	atomic.AddUint64(counter, 1)
}

func (c *Collector) SourceFailures(source string) uint64 {
	c.mu.Lock()
	counter, ok := c.sourceFailures[source]
	c.mu.Unlock()
	if !ok {
		return 0
	}
	return atomic.LoadUint64(counter)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	clientErrs := atomic.LoadUint64(&c.clientErrors)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	names := make([]string, 0, len(c.sourceFailures))
	for name := range c.sourceFailures {
		names = append(names, name)
	}
	c.mu.Unlock()
	sort.Strings(names)
	failures := make(map[string]uint64, len(names))
	for _, name := range names {
		failures[name] = c.SourceFailures(name)
	}

	return map[string]any{
		"requestsTotal":       total,
		"errorsTotal":         errs,
		"clientErrorsTotal":   clientErrs,
		"avgDurationMs":       avg,
		"totalDurationMs":     totalMs,
		"sourceFailuresTotal": failures,
	}
}
