package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightstage/dmxcore/internal/broadcast"
	"github.com/brightstage/dmxcore/internal/groups"
	"github.com/brightstage/dmxcore/internal/mapping"
	"github.com/brightstage/dmxcore/internal/transport/mock"
)

func newTestEngine() (*Engine, *mock.Sender) {
	fabric := broadcast.NewFabric()
	e := New(2, fabric)
	sender := mock.NewSender(false, 8)
	e.AddUniverse(1)
	e.AttachOutput(1, sender)
	return e, sender
}

func TestSetChannelWritesThroughToOutput(t *testing.T) {
	e, sender := newTestEngine()
	e.SetChannel(1, 5, 200, SourceLocal)
	frame := sender.LatestFrame()
	assert.EqualValues(t, 200, frame[4])
}

func TestBlackoutForcesZeroAndRestores(t *testing.T) {
	e, sender := newTestEngine()
	e.SetChannel(1, 1, 255, SourceLocal)

	e.Blackout()
	assert.EqualValues(t, 0, sender.LatestFrame()[0])

	e.ReleaseBlackout()
	assert.EqualValues(t, 255, sender.LatestFrame()[0])
}

func TestParkPinsValueAndRejectsUserWrite(t *testing.T) {
	e, sender := newTestEngine()
	e.ParkChannel(1, 3, 128)
	assert.EqualValues(t, 128, sender.LatestFrame()[2])

	// Grandmaster scaling still applies to the parked slot, per the
	// second-half policy order (park overwrite precedes grandmaster scale).
	e.SetUniverseGrandmaster(1, 0)
	assert.EqualValues(t, 0, sender.LatestFrame()[2])
	e.SetUniverseGrandmaster(1, 255)

	sink := broadcast.NewChannelSink(4)
	e.fabric.AddSink(sink)
	e.SetChannel(1, 3, 50, SourceLocal)

	assert.Len(t, sink.Events, 1)
	reject, ok := (<-sink.Events).(broadcast.ParkRejectEvent)
	assert.True(t, ok)
	assert.EqualValues(t, 128, reject.Value)
}

func TestGrandmasterScalingIsLinear(t *testing.T) {
	e, sender := newTestEngine()
	e.SetChannel(1, 1, 255, SourceLocal)
	e.SetGlobalGrandmaster(128)
	assert.EqualValues(t, 128, sender.LatestFrame()[0])

	e.SetGlobalGrandmaster(255)
	e.SetUniverseGrandmaster(1, 128)
	assert.EqualValues(t, 128, sender.LatestFrame()[0])
}

func TestHighlightReplacesNonHighlightedChannels(t *testing.T) {
	e, sender := newTestEngine()
	e.SetChannel(1, 1, 10, SourceLocal)
	e.SetChannel(1, 2, 20, SourceLocal)
	e.AddToHighlight(1, 1)

	e.StartHighlight(30)
	frame := sender.LatestFrame()
	assert.EqualValues(t, 255, frame[0])
	assert.EqualValues(t, 30, frame[1])

	e.StopHighlight()
	frame = sender.LatestFrame()
	assert.EqualValues(t, 10, frame[0])
	assert.EqualValues(t, 20, frame[1])
}

func TestInputPassthroughHTPTakesMax(t *testing.T) {
	e, sender := newTestEngine()
	e.SetChannel(1, 1, 100, SourceLocal)

	e.SetInputConfig(1, InputConfig{RangeStart: 1, RangeEnd: 512, Passthrough: PassthroughFadersOutput, Merge: MergeHTP})

	var frame [512]byte
	frame[0] = 60
	e.OnInputFrame(1, frame)
	assert.EqualValues(t, 100, sender.LatestFrame()[0], "HTP must not lower below local fader value")

	frame[0] = 200
	e.OnInputFrame(1, frame)
	assert.EqualValues(t, 200, sender.LatestFrame()[0])
}

func TestInputPassthroughLTPSuppressesJitter(t *testing.T) {
	e, sender := newTestEngine()
	e.SetInputConfig(1, InputConfig{RangeStart: 1, RangeEnd: 512, Passthrough: PassthroughFadersOutput, Merge: MergeLTP})

	var frame [512]byte
	frame[0] = 100
	e.OnInputFrame(1, frame)
	assert.EqualValues(t, 100, sender.LatestFrame()[0])

	frame[0] = 101 // within jitter threshold of 2
	e.OnInputFrame(1, frame)
	assert.EqualValues(t, 100, sender.LatestFrame()[0], "small jitter must not move the output")

	frame[0] = 110
	e.OnInputFrame(1, frame)
	assert.EqualValues(t, 110, sender.LatestFrame()[0])
}

func TestMappingSelectivelyRoutesOnlyMappedSlots(t *testing.T) {
	e, sender := newTestEngine()
	e.AddUniverse(2)
	sender2 := mock.NewSender(false, 4)
	e.AttachOutput(2, sender2)

	e.SetChannelMapping([]mapping.Entry{
		{SrcUniverse: 1, SrcChannel: 1, Destinations: []mapping.Destination{{Kind: mapping.DestChannel, Universe: 2, Channel: 10}}},
	}, mapping.UnmappedIgnore)
	e.SetInputConfig(1, InputConfig{RangeStart: 1, RangeEnd: 512, Passthrough: PassthroughFadersOutput, Merge: MergeHTP})

	var frame [512]byte
	frame[0] = 77  // mapped: universe 1 channel 1 -> universe 2 channel 10
	frame[1] = 88  // unmapped, ignored per UnmappedIgnore
	e.OnInputFrame(1, frame)

	assert.EqualValues(t, 77, sender2.LatestFrame()[9])
	assert.EqualValues(t, 0, sender.LatestFrame()[1])
}

func TestGroupReverseRoutingRecalculatesMaster(t *testing.T) {
	e, sender := newTestEngine()
	g := &groups.Group{
		ID: "g1", Mode: groups.ModeProportional, Enabled: true,
		PhysicalMaster: &groups.ChannelRef{Universe: 1, Channel: 10},
		Members: []groups.Member{
			{Kind: groups.MemberChannel, Universe: 1, Channel: 1, Base: 200},
		},
	}
	e.AddGroup(g)
	e.ApplyGroupDirect("g1", 255)
	assert.EqualValues(t, 200, sender.LatestFrame()[0])

	// Fader move on the member reverse-routes to a new master value.
	e.SetChannel(1, 1, 100, SourceLocal)
	assert.EqualValues(t, 100, sender.LatestFrame()[0])
	assert.EqualValues(t, 128, sender.LatestFrame()[9], "master channel should reflect the recalculated master (round(100*255/200))")
}

func TestGroupReverseRoutingAmbiguousMembershipRejects(t *testing.T) {
	e, sender := newTestEngine()
	g1 := &groups.Group{ID: "g1", Mode: groups.ModeFollow, Enabled: true, Members: []groups.Member{
		{Kind: groups.MemberChannel, Universe: 1, Channel: 1},
	}}
	g2 := &groups.Group{ID: "g2", Mode: groups.ModeFollow, Enabled: true, Members: []groups.Member{
		{Kind: groups.MemberChannel, Universe: 1, Channel: 1},
	}}
	e.AddGroup(g1)
	e.AddGroup(g2)

	sink := broadcast.NewChannelSink(4)
	e.fabric.AddSink(sink)
	e.SetChannel(1, 1, 50, SourceLocal)

	assert.EqualValues(t, 0, sender.LatestFrame()[0], "ambiguous membership must not write the channel")
	_, ok := (<-sink.Events).(broadcast.GroupRejectEvent)
	assert.True(t, ok)
}
