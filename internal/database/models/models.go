// Package models contains the database model definitions. These models
// persist engine configuration (universes, patches, groups, scenes, MIDI
// mappings) so it survives a restart; none of them participate in the
// hot merge path itself, which runs entirely in memory.
package models

import "time"

// Universe is one configured DMX universe.
// Table: universes
type Universe struct {
	ID                  int       `gorm:"column:id;primaryKey"`
	Name                string    `gorm:"column:name"`
	UniverseGrandmaster int       `gorm:"column:universe_grandmaster;default:255"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Outputs []OutputDescriptor `gorm:"foreignKey:UniverseID"`
	Inputs  []InputDescriptor  `gorm:"foreignKey:UniverseID"`
}

func (Universe) TableName() string { return "universes" }

// OutputDescriptor is one output transport attached to a universe
// (Art-Net unicast/broadcast, sACN multicast/unicast, or a mock sink).
// Table: output_descriptors
type OutputDescriptor struct {
	ID           string  `gorm:"column:id;primaryKey"`
	UniverseID   int     `gorm:"column:universe_id;index"`
	Protocol     string  `gorm:"column:protocol"` // artnet | sacn | mock
	WireUniverse int     `gorm:"column:wire_universe"`
	Target       *string `gorm:"column:target"` // unicast target (Art-Net: host, port from Port; sACN: host:port), nil for broadcast/multicast
	Port         int     `gorm:"column:port"`
	Interface    *string `gorm:"column:interface"`
	Enabled      bool    `gorm:"column:enabled;default:true"`
}

func (OutputDescriptor) TableName() string { return "output_descriptors" }

// InputDescriptor is one input transport attached to a universe (Art-Net
// or sACN receiver, or a MIDI device feeding synthetic per-universe
// frames).
// Table: input_descriptors
type InputDescriptor struct {
	ID          string  `gorm:"column:id;primaryKey"`
	UniverseID  int     `gorm:"column:universe_id;index"`
	Protocol    string  `gorm:"column:protocol"` // artnet | sacn | midi
	WireUniverse int    `gorm:"column:wire_universe"`
	Interface   *string `gorm:"column:interface"`
	RangeStart  int     `gorm:"column:range_start;default:1"`
	RangeEnd    int     `gorm:"column:range_end;default:512"`
	Passthrough string  `gorm:"column:passthrough"` // off | view_only | faders_output | output_only
	Merge       string  `gorm:"column:merge"`       // htp | ltp
	IgnoreSelf  bool    `gorm:"column:ignore_self;default:true"`
	Enabled     bool    `gorm:"column:enabled;default:true"`
}

func (InputDescriptor) TableName() string { return "input_descriptors" }

// ChannelMappingConfig is the single active channel mapping configuration
// (spec §4.4). Only one row is ever current; reconfiguring replaces it
// and its entries wholesale.
// Table: channel_mapping_configs
type ChannelMappingConfig struct {
	ID               string    `gorm:"column:id;primaryKey"`
	UnmappedBehavior string    `gorm:"column:unmapped_behavior"` // passthrough | ignore
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Entries []ChannelMappingEntry `gorm:"foreignKey:ConfigID"`
}

func (ChannelMappingConfig) TableName() string { return "channel_mapping_configs" }

// ChannelMappingEntry routes one source slot to one destination. A
// multi-destination mapping entry is persisted as several rows sharing
// SrcUniverse/SrcChannel.
// Table: channel_mapping_entries
type ChannelMappingEntry struct {
	ID             string `gorm:"column:id;primaryKey"`
	ConfigID       string `gorm:"column:config_id;index"`
	SrcUniverse    int    `gorm:"column:src_universe"`
	SrcChannel     int    `gorm:"column:src_channel"`
	DestKind       string `gorm:"column:dest_kind"` // channel | universe_master | global_master
	DestUniverse   int    `gorm:"column:dest_universe"`
	DestChannel    int    `gorm:"column:dest_channel"`
}

func (ChannelMappingEntry) TableName() string { return "channel_mapping_entries" }

// Group is one fader group (spec §4.6).
// Table: groups
type Group struct {
	ID                   string  `gorm:"column:id;primaryKey"`
	Name                 string  `gorm:"column:name"`
	Mode                 string  `gorm:"column:mode"` // proportional | follow | color_mixer
	Enabled              bool    `gorm:"column:enabled;default:true"`
	Master               int     `gorm:"column:master;default:0"`
	PhysicalMasterUniv   *int    `gorm:"column:physical_master_universe"`
	PhysicalMasterChan   *int    `gorm:"column:physical_master_channel"`
	ColorH               float64 `gorm:"column:color_h;default:0"`
	ColorS               float64 `gorm:"column:color_s;default:0"`
	ColorL               float64 `gorm:"column:color_l;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Members []GroupMember `gorm:"foreignKey:GroupID"`
}

func (Group) TableName() string { return "groups" }

// GroupMember is one member channel of a group.
// Table: group_members
type GroupMember struct {
	ID       string `gorm:"column:id;primaryKey"`
	GroupID  string `gorm:"column:group_id;index"`
	Kind     string `gorm:"column:kind"` // channel | universe_master | global_master | color_role
	Universe int    `gorm:"column:universe"`
	Channel  int    `gorm:"column:channel"`
	Base     int    `gorm:"column:base;default:255"` // proportional base value
	Role     string `gorm:"column:role"`             // color_role only
}

func (GroupMember) TableName() string { return "group_members" }

// ParkedChannel is one pinned (universe, channel, value) override.
// Table: parked_channels
type ParkedChannel struct {
	ID       string `gorm:"column:id;primaryKey"`
	Universe int    `gorm:"column:universe;index"`
	Channel  int    `gorm:"column:channel"`
	Value    int    `gorm:"column:value"`
}

func (ParkedChannel) TableName() string { return "parked_channels" }

// Scene is a stored lighting state for later recall (spec §4.7).
// Table: scenes
type Scene struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Name          string    `gorm:"column:name"`
	Description   *string   `gorm:"column:description"`
	SortOrder     int       `gorm:"column:sort_order;default:0"`
	DefaultFadeMS int       `gorm:"column:default_fade_ms;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`

	ChannelValues []SceneChannelValue `gorm:"foreignKey:SceneID"`
	GroupValues   []SceneGroupValue   `gorm:"foreignKey:SceneID"`
	MasterValues  []SceneMasterValue  `gorm:"foreignKey:SceneID"`
}

func (Scene) TableName() string { return "scenes" }

// SceneChannelValue is one captured (universe, channel) target value.
// Table: scene_channel_values
type SceneChannelValue struct {
	ID       string `gorm:"column:id;primaryKey"`
	SceneID  string `gorm:"column:scene_id;index"`
	Universe int    `gorm:"column:universe"`
	Channel  int    `gorm:"column:channel"`
	Value    int    `gorm:"column:value"`
}

func (SceneChannelValue) TableName() string { return "scene_channel_values" }

// SceneGroupValue is one captured group master value, restored only for
// groups not under input control at recall time.
// Table: scene_group_values
type SceneGroupValue struct {
	ID      string `gorm:"column:id;primaryKey"`
	SceneID string `gorm:"column:scene_id;index"`
	GroupID string `gorm:"column:group_id;index"`
	Master  int    `gorm:"column:master"`
}

func (SceneGroupValue) TableName() string { return "scene_group_values" }

// SceneMasterValue is one captured grandmaster value; Universe -1 means
// the global grandmaster.
// Table: scene_master_values
type SceneMasterValue struct {
	ID       string `gorm:"column:id;primaryKey"`
	SceneID  string `gorm:"column:scene_id;index"`
	Universe int    `gorm:"column:universe"`
	Value    int    `gorm:"column:value"`
}

func (SceneMasterValue) TableName() string { return "scene_master_values" }

// MIDICCMapping binds one MIDI control-change number to a DMX slot
// (spec §6).
// Table: midi_cc_mappings
type MIDICCMapping struct {
	ID          string `gorm:"column:id;primaryKey"`
	CCNumber    int    `gorm:"column:cc_number"`
	MIDIChannel int    `gorm:"column:midi_channel"`
	Universe    int    `gorm:"column:universe"`
	Channel     int    `gorm:"column:channel"`
}

func (MIDICCMapping) TableName() string { return "midi_cc_mappings" }

// MIDITrigger binds one MIDI note to a scene/blackout/group action.
// Table: midi_triggers
type MIDITrigger struct {
	ID          string `gorm:"column:id;primaryKey"`
	Note        int    `gorm:"column:note"`
	MIDIChannel int    `gorm:"column:midi_channel"`
	Action      string `gorm:"column:action"` // scene | blackout | group (midi.NoteAction values)
	TargetID    string `gorm:"column:target_id"`
}

func (MIDITrigger) TableName() string { return "midi_triggers" }

// SceneBoard is a named group of scene-shortcut buttons (spec §7
// supplemented feature, carried over from the teacher's SceneBoard
// model), letting an operator trigger scenes without addressing them by
// ID directly.
// Table: scene_boards
type SceneBoard struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Buttons []SceneBoardButton `gorm:"foreignKey:BoardID"`
}

func (SceneBoard) TableName() string { return "scene_boards" }

// SceneBoardButton is one shortcut button on a SceneBoard, recalling one
// scene with a fixed transition.
// Table: scene_board_buttons
type SceneBoardButton struct {
	ID         string `gorm:"column:id;primaryKey"`
	BoardID    string `gorm:"column:board_id;index"`
	SceneID    string `gorm:"column:scene_id;index"`
	Label      string `gorm:"column:label"`
	Position   int    `gorm:"column:position;default:0"`
	Transition string `gorm:"column:transition"` // instant | fade | crossfade
	FadeMS     int    `gorm:"column:fade_ms;default:0"`
}

func (SceneBoardButton) TableName() string { return "scene_board_buttons" }

// Setting is a single system setting, kept from the teacher schema
// unchanged — a flat key/value store suits both projects equally.
// Table: settings
type Setting struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Key       string    `gorm:"column:key;uniqueIndex"`
	Value     string    `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string { return "settings" }

// AllModels lists every model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Universe{}, &OutputDescriptor{}, &InputDescriptor{},
		&ChannelMappingConfig{}, &ChannelMappingEntry{},
		&Group{}, &GroupMember{},
		&ParkedChannel{},
		&Scene{}, &SceneChannelValue{}, &SceneGroupValue{}, &SceneMasterValue{},
		&MIDICCMapping{}, &MIDITrigger{},
		&SceneBoard{}, &SceneBoardButton{},
		&Setting{},
	}
}
