// Package broadcast is the client broadcast fabric (spec §4.8/§9):
// rate-limited change-event fan-out to subscribed Sinks. It is the
// teacher's internal/services/pubsub package, generalized from GraphQL
// subscription topics to the tagged Event variants named in spec §6.
package broadcast

// Kind tags a concrete Event's variant, mirroring spec §6's tagged event
// stream.
type Kind string

const (
	KindChannelChange    Kind = "channel_change"
	KindValues           Kind = "values"
	KindInputToUI        Kind = "input_to_ui"
	KindBlackout         Kind = "blackout"
	KindGroupValueChange Kind = "group_value_changed"
	KindGroupsChanged    Kind = "groups_changed"
	KindScenesChanged    Kind = "scenes_changed"
	KindPatchesChanged   Kind = "patches_changed"
	KindGrandmaster      Kind = "grandmaster_changed"
	KindActiveScene      Kind = "active_scene_changed"
	KindParkUpdate       Kind = "park_update"
	KindHighlightUpdate  Kind = "highlight_update"
	KindMIDIActivity     Kind = "midi_activity"
	KindParkReject       Kind = "park_reject"
	KindGroupReject      Kind = "group_reject"
)

// Event is implemented by every concrete event struct below. Sinks
// type-switch on the concrete type (or use EventKind for routing) rather
// than reflecting on a generic envelope.
type Event interface {
	EventKind() Kind
}

// ChannelChangeEvent reports a single channel's new composed value.
type ChannelChangeEvent struct {
	Universe int
	Channel  int
	Value    byte
	Source   string
}

func (ChannelChangeEvent) EventKind() Kind { return KindChannelChange }

// ValuesEvent carries a full 512-slot universe snapshot.
type ValuesEvent struct {
	Universe int
	Values   [512]byte
}

func (ValuesEvent) EventKind() Kind { return KindValues }

// InputToUIEvent mirrors a raw input frame to the UI, using -1 as the
// "no update" sentinel for slots outside the input's range (spec §6).
type InputToUIEvent struct {
	Universe int
	Values   [512]int
}

func (InputToUIEvent) EventKind() Kind { return KindInputToUI }

// BlackoutEvent reports a blackout toggle.
type BlackoutEvent struct {
	Active bool
}

func (BlackoutEvent) EventKind() Kind { return KindBlackout }

// GroupValueChangedEvent reports a group's new master value.
type GroupValueChangedEvent struct {
	GroupID string
	Value   byte
	Source  string
}

func (GroupValueChangedEvent) EventKind() Kind { return KindGroupValueChange }

// GroupsChangedEvent signals the group roster changed (add/remove/update).
type GroupsChangedEvent struct{}

func (GroupsChangedEvent) EventKind() Kind { return KindGroupsChanged }

// ScenesChangedEvent signals the scene roster changed.
type ScenesChangedEvent struct{}

func (ScenesChangedEvent) EventKind() Kind { return KindScenesChanged }

// PatchesChangedEvent signals the channel mapping configuration changed.
type PatchesChangedEvent struct{}

func (PatchesChangedEvent) EventKind() Kind { return KindPatchesChanged }

// GrandmasterChangedEvent reports a grandmaster change. Universe is -1
// for the global grandmaster.
type GrandmasterChangedEvent struct {
	Universe int
	Value    byte
}

func (GrandmasterChangedEvent) EventKind() Kind { return KindGrandmaster }

// ActiveSceneChangedEvent reports which scene is now active (empty id
// means none).
type ActiveSceneChangedEvent struct {
	SceneID string
}

func (ActiveSceneChangedEvent) EventKind() Kind { return KindActiveScene }

// ParkUpdateEvent reports a park/unpark of a single channel.
type ParkUpdateEvent struct {
	Universe int
	Channel  int
	Value    byte
	Parked   bool
}

func (ParkUpdateEvent) EventKind() Kind { return KindParkUpdate }

// HighlightUpdateEvent reports a highlight-state change.
type HighlightUpdateEvent struct {
	Universe  int
	Active    bool
	DimLevel  byte
	Channels  []int
}

func (HighlightUpdateEvent) EventKind() Kind { return KindHighlightUpdate }

// MIDIActivityEvent reports raw MIDI traffic for diagnostics/learn mode.
type MIDIActivityEvent struct {
	Description string
}

func (MIDIActivityEvent) EventKind() Kind { return KindMIDIActivity }

// ParkRejectEvent is fired when a write targets a parked channel; it
// carries the authoritative value so the UI can snap its fader back.
// Never throttled.
type ParkRejectEvent struct {
	Universe int
	Channel  int
	Value    byte
}

func (ParkRejectEvent) EventKind() Kind { return KindParkReject }

// GroupRejectEvent is fired when a fader move on a group member is
// rejected (ambiguous group membership, or the group's master is
// input-controlled). Never throttled.
type GroupRejectEvent struct {
	Universe int
	Channel  int
	Value    byte
}

func (GroupRejectEvent) EventKind() Kind { return KindGroupReject }
