package parameter

// Network feed
const (
	// ListenAddress is the default bind address of the headless host
	ListenAddress = ":8080"

	// MaxSubscribers bounds concurrent feed connections
	MaxSubscribers = 64

	// SubscriberQueueSize is the per-subscriber frame backlog before frames are dropped
	SubscriberQueueSize = 8
)
