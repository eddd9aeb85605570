package models

import "testing"

func TestTableNames(t *testing.T) {
	tests := []struct {
		name      string
		model     interface{ TableName() string }
		tableName string
	}{
		{"Universe", Universe{}, "universes"},
		{"OutputDescriptor", OutputDescriptor{}, "output_descriptors"},
		{"InputDescriptor", InputDescriptor{}, "input_descriptors"},
		{"ChannelMappingConfig", ChannelMappingConfig{}, "channel_mapping_configs"},
		{"ChannelMappingEntry", ChannelMappingEntry{}, "channel_mapping_entries"},
		{"Group", Group{}, "groups"},
		{"GroupMember", GroupMember{}, "group_members"},
		{"ParkedChannel", ParkedChannel{}, "parked_channels"},
		{"Scene", Scene{}, "scenes"},
		{"SceneChannelValue", SceneChannelValue{}, "scene_channel_values"},
		{"SceneGroupValue", SceneGroupValue{}, "scene_group_values"},
		{"SceneMasterValue", SceneMasterValue{}, "scene_master_values"},
		{"MIDICCMapping", MIDICCMapping{}, "midi_cc_mappings"},
		{"MIDITrigger", MIDITrigger{}, "midi_triggers"},
		{"SceneBoard", SceneBoard{}, "scene_boards"},
		{"SceneBoardButton", SceneBoardButton{}, "scene_board_buttons"},
		{"Setting", Setting{}, "settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.model.TableName(); got != tt.tableName {
				t.Errorf("%s.TableName() = %q, want %q", tt.name, got, tt.tableName)
			}
		})
	}
}

func TestAllModelsCoversEveryTable(t *testing.T) {
	if got := len(AllModels()); got != 17 {
		t.Errorf("AllModels() returned %d entries, want 17", got)
	}
}
