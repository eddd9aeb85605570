package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeDMX struct {
	output           map[int][512]byte
	inputControlled  map[universeChannel]bool
	groupControlled  map[universeChannel]bool
	bypass           bool
	sets             []map[int]map[int]byte // one entry per SetChannels/SetChannelsSilent call
	globalGM         byte
	universeGM       map[int]byte
	groupMaster      map[string]byte
	groupMasterInput map[string]bool
	activeScene      string
}

func newFakeDMX() *fakeDMX {
	return &fakeDMX{
		output:           make(map[int][512]byte),
		inputControlled:  make(map[universeChannel]bool),
		groupControlled:  make(map[universeChannel]bool),
		universeGM:       make(map[int]byte),
		groupMaster:      make(map[string]byte),
		groupMasterInput: make(map[string]bool),
	}
}

func (f *fakeDMX) Snapshot(universeID int) [512]byte { return f.output[universeID] }
func (f *fakeDMX) IsInputControlled(u, c int) bool    { return f.inputControlled[universeChannel{u, c}] }
func (f *fakeDMX) IsGroupControlled(u, c int) bool     { return f.groupControlled[universeChannel{u, c}] }
func (f *fakeDMX) InputBypassActive() bool             { return f.bypass }

func (f *fakeDMX) SetChannels(universeID int, values map[int]byte, source string) {
	frame := f.output[universeID]
	for c, v := range values {
		frame[c-1] = v
	}
	f.output[universeID] = frame
	f.sets = append(f.sets, map[int]map[int]byte{universeID: values})
}

func (f *fakeDMX) SetChannelsSilent(universeID int, values map[int]byte, source string) {
	f.SetChannels(universeID, values, source)
}

func (f *fakeDMX) GroupMasterInputControlled(groupID string) bool { return f.groupMasterInput[groupID] }
func (f *fakeDMX) RestoreGroupMaster(groupID string, master byte) { f.groupMaster[groupID] = master }
func (f *fakeDMX) SetGlobalGrandmaster(value byte)                { f.globalGM = value }
func (f *fakeDMX) SetUniverseGrandmaster(universeID int, value byte) {
	f.universeGM[universeID] = value
}
func (f *fakeDMX) SetActiveScene(sceneID string) { f.activeScene = sceneID }

func TestRecallInstantAppliesTargetsImmediately(t *testing.T) {
	dmx := newFakeDMX()
	e := New(dmx)

	s := &Scene{ID: "s1", Channels: []ChannelTarget{{Universe: 1, Channel: 1, Value: 200}}}
	e.Recall(s, TransitionInstant, 0, false)

	assert.EqualValues(t, 200, dmx.output[1][0])
	assert.Equal(t, "s1", e.ActiveScene())
	assert.Equal(t, "s1", dmx.activeScene)
}

func TestRecallFiltersInputControlledChannels(t *testing.T) {
	dmx := newFakeDMX()
	dmx.inputControlled[universeChannel{1, 1}] = true
	e := New(dmx)

	s := &Scene{ID: "s1", Channels: []ChannelTarget{
		{Universe: 1, Channel: 1, Value: 200},
		{Universe: 1, Channel: 2, Value: 150},
	}}
	e.Recall(s, TransitionInstant, 0, false)

	assert.EqualValues(t, 0, dmx.output[1][0], "input-controlled channel must not be touched")
	assert.EqualValues(t, 150, dmx.output[1][1])
}

func TestRecallBypassIgnoresFilters(t *testing.T) {
	dmx := newFakeDMX()
	dmx.inputControlled[universeChannel{1, 1}] = true
	e := New(dmx)

	s := &Scene{ID: "s1", Channels: []ChannelTarget{{Universe: 1, Channel: 1, Value: 200}}}
	e.Recall(s, TransitionInstant, 0, true)

	assert.EqualValues(t, 200, dmx.output[1][0])
}

func TestRecallFadeReachesTargetValue(t *testing.T) {
	dmx := newFakeDMX()
	e := New(dmx)

	s := &Scene{ID: "s1", Channels: []ChannelTarget{{Universe: 1, Channel: 1, Value: 255}}}
	start := time.Now()
	e.Recall(s, TransitionFade, 100, false)
	assert.True(t, time.Since(start) >= 50*time.Millisecond, "fade should step across multiple ticks rather than apply instantly")
	assert.EqualValues(t, 255, dmx.output[1][0])
}

func TestRecallRestoresGroupsSkippingInputControlledMaster(t *testing.T) {
	dmx := newFakeDMX()
	dmx.groupMasterInput["g-blocked"] = true
	e := New(dmx)

	s := &Scene{ID: "s1", Groups: []GroupTarget{
		{GroupID: "g-ok", Master: 100},
		{GroupID: "g-blocked", Master: 200},
	}}
	e.Recall(s, TransitionInstant, 0, false)

	assert.EqualValues(t, 100, dmx.groupMaster["g-ok"])
	_, restored := dmx.groupMaster["g-blocked"]
	assert.False(t, restored)
}

func TestRecallRestoresGrandmasters(t *testing.T) {
	dmx := newFakeDMX()
	e := New(dmx)

	s := &Scene{ID: "s1", Masters: []MasterTarget{
		{Universe: -1, Value: 200},
		{Universe: 1, Value: 150},
	}}
	e.Recall(s, TransitionInstant, 0, false)

	assert.EqualValues(t, 200, dmx.globalGM)
	assert.EqualValues(t, 150, dmx.universeGM[1])
}

func TestCrossfadeReleasesChannelsNotInNewScene(t *testing.T) {
	dmx := newFakeDMX()
	dmx.output[1] = [512]byte{0: 255}
	e := New(dmx)

	first := &Scene{ID: "s1", Channels: []ChannelTarget{{Universe: 1, Channel: 1, Value: 255}}}
	e.Recall(first, TransitionInstant, 0, false)

	second := &Scene{ID: "s2", Channels: []ChannelTarget{{Universe: 1, Channel: 2, Value: 100}}}
	e.Recall(second, TransitionCrossfade, 66, false)

	assert.EqualValues(t, 0, dmx.output[1][0], "channel 1 should have released to zero")
	assert.EqualValues(t, 100, dmx.output[1][1])
}
