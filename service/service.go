// Package service starts and stops a host's long-lived parts in dependency order
package service

// Service is one long-lived part of a host: a tick loop, a feed, a listener
//
// Lifecycle:
//  1. Construction, fully configured
//  2. Start() - launch background goroutines
//  3. [runtime operation]
//  4. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must start before this one
	Dependencies() []string

	Start() error

	// Stop must be idempotent
	Stop() error
}

// Func adapts plain functions to Service; nil Start or Stop is a no-op
type Func struct {
	ID       string
	Requires []string
	OnStart  func() error
	OnStop   func() error
}

func (f *Func) Name() string           { return f.ID }
func (f *Func) Dependencies() []string { return f.Requires }

func (f *Func) Start() error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart()
}

func (f *Func) Stop() error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop()
}
