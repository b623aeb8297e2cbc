package status

import (
	"sync"
	"testing"
)

func TestMetricMap_GetReturnsSamePointer(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()

	a := m.Get("track.cursor")
	b := m.Get("track.cursor")
	if a != b {
		t.Fatal("Expected cached pointer on second Get")
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 metric, got %d", m.Count())
	}
}

func TestMetricMap_RangeSorted(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()
	for _, k := range []string{"c", "a", "b"} {
		m.Get(k)
	}

	var keys []string
	m.Range(func(k string, _ *AtomicFloat) { keys = append(keys, k) })

	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("Expected sorted keys [a b c], got %v", keys)
	}
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Bools.Get("track.in_flight").Store(true)
	r.Ints.Get("track.spawned").Store(7)
	r.Floats.Get("track.cursor").Set(400)

	s := r.Snapshot()
	if !s.Bools["track.in_flight"] {
		t.Errorf("Expected in_flight true in snapshot")
	}
	if s.Ints["track.spawned"] != 7 {
		t.Errorf("Expected spawned 7, got %d", s.Ints["track.spawned"])
	}
	if s.Floats["track.cursor"] != 400 {
		t.Errorf("Expected cursor 400, got %v", s.Floats["track.cursor"])
	}
	if r.TotalCount() != 3 {
		t.Errorf("Expected 3 metrics, got %d", r.TotalCount())
	}
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Ints.Get("shared").Add(1)
			}
		}()
	}
	wg.Wait()

	if got := r.Ints.Get("shared").Load(); got != 800 {
		t.Errorf("Expected 800, got %d", got)
	}
}
