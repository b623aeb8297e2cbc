package engine

import (
	"sync"
	"testing"
	"time"
)

func TestMonotonicTimeProvider(t *testing.T) {
	provider := NewMonotonicTimeProvider()

	t1 := provider.Now()
	time.Sleep(5 * time.Millisecond)
	t2 := provider.Now()

	if !t2.After(t1) {
		t.Errorf("Expected t2 to be after t1, got t1=%v, t2=%v", t1, t2)
	}
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)

	if !mock.Now().Equal(start) {
		t.Errorf("Expected initial time %v, got %v", start, mock.Now())
	}

	got := mock.Advance(90 * time.Second)
	if want := start.Add(90 * time.Second); !got.Equal(want) || !mock.Now().Equal(want) {
		t.Errorf("Expected %v after Advance, got %v", want, got)
	}
}

func TestMockTimeProviderConcurrency(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				mock.Advance(time.Millisecond)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = mock.Now()
			}
		}()
	}
	wg.Wait()

	if want := start.Add(250 * time.Millisecond); !mock.Now().Equal(want) {
		t.Errorf("Expected %v after concurrent advances, got %v", want, mock.Now())
	}
}

func TestPausableClock_FreezesWhilePaused(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)
	clock := NewPausableClock(mock)

	mock.Advance(2 * time.Second)
	clock.Pause()
	clock.Pause()
	frozen := clock.Now()

	mock.Advance(10 * time.Second)
	if !clock.Now().Equal(frozen) {
		t.Errorf("Expected frozen game time %v, got %v", frozen, clock.Now())
	}
	if !clock.IsPaused() {
		t.Errorf("Expected clock to report paused")
	}
	if clock.TotalPauseDuration() != 10*time.Second {
		t.Errorf("Expected 10s paused so far, got %v", clock.TotalPauseDuration())
	}

	clock.Resume()
	mock.Advance(time.Second)
	if want := start.Add(3 * time.Second); !clock.Now().Equal(want) {
		t.Errorf("Expected game time %v after resume, got %v", want, clock.Now())
	}
}

func TestTimeProviderInterface(t *testing.T) {
	var _ TimeProvider = &MonotonicTimeProvider{}
	var _ TimeProvider = &MockTimeProvider{}
}
