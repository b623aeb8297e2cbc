package status

import "sync/atomic"

// Registry is the metrics facade shared by the generator, the session and the hosts
// Writers cache pointers at construction; readers take a Snapshot
type Registry struct {
	Bools  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// Snapshot is a point-in-time copy of every metric
type Snapshot struct {
	Bools  map[string]bool    `json:"bools,omitempty"`
	Ints   map[string]int64   `json:"ints,omitempty"`
	Floats map[string]float64 `json:"floats,omitempty"`
}

// Snapshot copies current values; individual metrics are read atomically, not the set as a whole
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		Bools:  make(map[string]bool, r.Bools.Count()),
		Ints:   make(map[string]int64, r.Ints.Count()),
		Floats: make(map[string]float64, r.Floats.Count()),
	}
	r.Bools.Range(func(k string, p *atomic.Bool) { s.Bools[k] = p.Load() })
	r.Ints.Range(func(k string, p *atomic.Int64) { s.Ints[k] = p.Load() })
	r.Floats.Range(func(k string, p *AtomicFloat) { s.Floats[k] = p.Get() })
	return s
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count()
}
