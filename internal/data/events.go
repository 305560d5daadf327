package data

import "sync"

// Topic is one of the closed set of invalidation subjects. Subscribers use
// them to drop stale in-memory copies; payloads are intentionally absent, a
// notified party re-reads through the service.
type Topic string

const (
	TopicGoalsChanged    Topic = "goals"
	TopicScheduleChanged Topic = "schedule"
	TopicSleepLogChanged Topic = "sleep_log"
	TopicNotesChanged    Topic = "notes"
	TopicSettingsChanged Topic = "settings"
)

// Bus is a minimal synchronous pub/sub channel for cache invalidation.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]func(Topic)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]func(Topic))}
}

func (b *Bus) Subscribe(topic Topic, fn func(Topic)) {
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], fn)
	b.mu.Unlock()
}

// Publish dispatches synchronously on the caller's goroutine. Handlers must
// not publish back to the same topic.
func (b *Bus) Publish(topic Topic) {
	b.mu.RLock()
	handlers := append([]func(Topic){}, b.subs[topic]...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(topic)
	}
}
