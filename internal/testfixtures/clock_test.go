package testfixtures

import (
	"sync"
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if got := clock.Date(); got != "2025-01-02" {
		t.Fatalf("Date() = %q", got)
	}

	if got := clock.Advance(10 * time.Hour); got.Format("2006-01-02") != "2025-01-03" {
		t.Fatalf("expected advance across midnight, got %v", got)
	}
	if got := clock.Date(); got != "2025-01-03" {
		t.Fatalf("Date() after advance = %q", got)
	}
}

func TestClock_ConcurrentAdvance(t *testing.T) {
	clock := NewClock(ReferenceTime())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Minute)
		}()
	}
	wg.Wait()

	if got := clock.Now().Sub(ReferenceTime()); got != 50*time.Minute {
		t.Fatalf("expected 50m elapsed, got %v", got)
	}
}
