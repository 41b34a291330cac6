package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(404, 20*time.Millisecond)
	c.Record(502, 30*time.Millisecond)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 || snap["clientErrorsTotal"].(uint64) != 1 {
		t.Fatalf("unexpected error counters %+v", snap)
	}
	if snap["avgDurationMs"].(float64) != 20 {
		t.Fatalf("expected avg 20ms, got %v", snap["avgDurationMs"])
	}
}

func TestSourceFailuresConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordSourceFailure("documents.experience")
		}()
	}
	wg.Wait()
	c.RecordSourceFailure("onboarding")

	if got := c.SourceFailures("documents.experience"); got != 50 {
		t.Fatalf("expected 50 failures, got %d", got)
	}
	failures := c.Snapshot()["sourceFailuresTotal"].(map[string]uint64)
	if failures["onboarding"] != 1 || len(failures) != 2 {
		t.Fatalf("unexpected failures %+v", failures)
	}
	if c.SourceFailures("user_management") != 0 {
		t.Fatalf("expected zero for unseen source")
	}
}
