package broadcast

import (
	"sync"
	"time"
)

// Sink receives Events in order, generalizing the Design Notes'
// "Callbacks... map to a trait/interface object (Sink<Event>)." Deliver
// must not block the fabric; implementations that front a slow transport
// (a WebSocket) should buffer internally, as the teacher's pubsub
// subscriber channel does.
type Sink interface {
	Deliver(Event)
}

// Fabric fans Events out to every registered Sink, rate-limiting the two
// categories spec §4.8 calls out explicitly (per-universe input-frame
// broadcasts, per-group value broadcasts) while leaving every other
// event kind — including both reject variants — unthrottled.
type Fabric struct {
	mu    sync.RWMutex
	sinks []Sink

	universeThrottle time.Duration
	groupThrottle    time.Duration

	lastUniverseBroadcast map[int]time.Time
	lastGroupBroadcast    map[string]time.Time
	lastGroupValue        map[string]byte
}

// NewFabric creates a fabric with the spec-default 100ms throttles.
func NewFabric() *Fabric {
	return &Fabric{
		universeThrottle:      100 * time.Millisecond,
		groupThrottle:         100 * time.Millisecond,
		lastUniverseBroadcast: make(map[int]time.Time),
		lastGroupBroadcast:    make(map[string]time.Time),
		lastGroupValue:        make(map[string]byte),
	}
}

// AddSink registers a subscriber.
func (f *Fabric) AddSink(s Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, s)
}

// RemoveSink unregisters a subscriber.
func (f *Fabric) RemoveSink(s Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.sinks {
		if existing == s {
			f.sinks = append(f.sinks[:i], f.sinks[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every sink immediately, with no rate limiting.
// Used for every event kind except the two explicitly-throttled ones
// below.
func (f *Fabric) Publish(e Event) {
	f.mu.RLock()
	sinks := make([]Sink, len(f.sinks))
	copy(sinks, f.sinks)
	f.mu.RUnlock()

	for _, s := range sinks {
		s.Deliver(e)
	}
}

// PublishUniverseFrame delivers a per-universe input-frame event (Values
// or InputToUI), throttled to one broadcast per universe per 100ms.
func (f *Fabric) PublishUniverseFrame(universe int, e Event) {
	f.mu.Lock()
	last, ok := f.lastUniverseBroadcast[universe]
	now := time.Now()
	if ok && now.Sub(last) < f.universeThrottle {
		f.mu.Unlock()
		return
	}
	f.lastUniverseBroadcast[universe] = now
	f.mu.Unlock()

	f.Publish(e)
}

// PublishGroupValue delivers a GroupValueChangedEvent, throttled to one
// broadcast per group per 100ms and suppressed entirely when the value
// is unchanged since the last broadcast.
func (f *Fabric) PublishGroupValue(e GroupValueChangedEvent) {
	f.mu.Lock()
	if last, ok := f.lastGroupValue[e.GroupID]; ok && last == e.Value {
		f.mu.Unlock()
		return
	}

	lastTime, ok := f.lastGroupBroadcast[e.GroupID]
	now := time.Now()
	if ok && now.Sub(lastTime) < f.groupThrottle {
		f.mu.Unlock()
		return
	}
	f.lastGroupBroadcast[e.GroupID] = now
	f.lastGroupValue[e.GroupID] = e.Value
	f.mu.Unlock()

	f.Publish(e)
}

// ResetGroupThrottle clears the per-group throttle state, used when
// releasing input bypass so groups re-emit immediately (spec §4.8).
func (f *Fabric) ResetGroupThrottle(groupID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lastGroupBroadcast, groupID)
	delete(f.lastGroupValue, groupID)
}
