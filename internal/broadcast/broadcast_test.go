package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishGroupValueDedupsSameValue(t *testing.T) {
	f := NewFabric()
	sink := NewChannelSink(10)
	f.AddSink(sink)

	f.PublishGroupValue(GroupValueChangedEvent{GroupID: "g1", Value: 100})
	f.PublishGroupValue(GroupValueChangedEvent{GroupID: "g1", Value: 100})

	assert.Len(t, sink.Events, 1)
}

func TestPublishGroupValueThrottlesRapidChanges(t *testing.T) {
	f := NewFabric()
	sink := NewChannelSink(10)
	f.AddSink(sink)

	f.PublishGroupValue(GroupValueChangedEvent{GroupID: "g1", Value: 100})
	f.PublishGroupValue(GroupValueChangedEvent{GroupID: "g1", Value: 150})

	assert.Len(t, sink.Events, 1)
}

func TestPublishUniverseFrameThrottles(t *testing.T) {
	f := NewFabric()
	sink := NewChannelSink(10)
	f.AddSink(sink)

	f.PublishUniverseFrame(1, ValuesEvent{Universe: 1})
	f.PublishUniverseFrame(1, ValuesEvent{Universe: 1})
	assert.Len(t, sink.Events, 1)

	time.Sleep(110 * time.Millisecond)
	f.PublishUniverseFrame(1, ValuesEvent{Universe: 1})
	assert.Len(t, sink.Events, 2)
}

func TestPublishNeverThrottlesRejectEvents(t *testing.T) {
	f := NewFabric()
	sink := NewChannelSink(10)
	f.AddSink(sink)

	for i := 0; i < 5; i++ {
		f.Publish(ParkRejectEvent{Universe: 1, Channel: 1, Value: 10})
	}
	assert.Len(t, sink.Events, 5)
}

func TestRemoveSinkStopsDelivery(t *testing.T) {
	f := NewFabric()
	sink := NewChannelSink(10)
	f.AddSink(sink)
	f.RemoveSink(sink)

	f.Publish(BlackoutEvent{Active: true})
	assert.Len(t, sink.Events, 0)
}
