package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyMasterProportional(t *testing.T) {
	g := &Group{
		ID:      "g1",
		Mode:    ModeProportional,
		Enabled: true,
		Members: []Member{
			{Kind: MemberChannel, Universe: 1, Channel: 10, Base: 255},
			{Kind: MemberChannel, Universe: 1, Channel: 11, Base: 128},
		},
	}
	table := NewContributionTable()

	res := ApplyMaster(g, 255, table, nil)
	assert.ElementsMatch(t, []ChannelWrite{
		{Universe: 1, Channel: 10, Value: 255},
		{Universe: 1, Channel: 11, Value: 128},
	}, res.ChannelWrites)

	res = ApplyMaster(g, 128, table, nil)
	assert.ElementsMatch(t, []ChannelWrite{
		{Universe: 1, Channel: 10, Value: 128},
		{Universe: 1, Channel: 11, Value: 64},
	}, res.ChannelWrites)
}

func TestApplyMasterSkipsParkedSlots(t *testing.T) {
	g := &Group{
		ID:      "g1",
		Mode:    ModeProportional,
		Enabled: true,
		Members: []Member{
			{Kind: MemberChannel, Universe: 1, Channel: 10, Base: 255},
			{Kind: MemberChannel, Universe: 1, Channel: 11, Base: 128},
		},
	}
	table := NewContributionTable()
	parked := func(u, c int) bool { return u == 1 && c == 10 }

	res := ApplyMaster(g, 255, table, parked)
	assert.ElementsMatch(t, []ChannelWrite{{Universe: 1, Channel: 11, Value: 128}}, res.ChannelWrites)
}

func TestContributionTableHTPAcrossGroups(t *testing.T) {
	table := NewContributionTable()
	key := ContributionKey{Universe: 1, Channel: 5}

	assert.Equal(t, byte(100), table.Set(key, "a", 100))
	assert.Equal(t, byte(150), table.Set(key, "b", 150))
	assert.Equal(t, byte(150), table.Set(key, "a", 50))

	affected := table.ClearGroup("b")
	assert.Equal(t, byte(50), affected[key])

	affected = table.ClearGroup("a")
	assert.Equal(t, byte(0), affected[key])
}

func TestReverseMaster(t *testing.T) {
	assert.Equal(t, byte(200), ReverseMaster(ModeFollow, 200, 255))
	assert.Equal(t, byte(255), ReverseMaster(ModeProportional, 200, 157))
	assert.Equal(t, byte(0), ReverseMaster(ModeProportional, 0, 255))
}

func TestHSLToRGBPureWhite(t *testing.T) {
	r, g, b := HSLToRGB(0, 0, 100)
	assert.Equal(t, byte(255), r)
	assert.Equal(t, byte(255), g)
	assert.Equal(t, byte(255), b)
}

func TestHSLToRGBPureRed(t *testing.T) {
	r, g, b := HSLToRGB(0, 100, 50)
	assert.Equal(t, byte(255), r)
	assert.Equal(t, byte(0), g)
	assert.Equal(t, byte(0), b)
}

func TestApplyColorWhiteGroup(t *testing.T) {
	g := &Group{
		ID:   "color1",
		Mode: ModeColorMixer,
		Members: []Member{
			{Kind: MemberColorRole, Universe: 1, Channel: 1, Role: RoleRed},
			{Kind: MemberColorRole, Universe: 1, Channel: 2, Role: RoleGreen},
			{Kind: MemberColorRole, Universe: 1, Channel: 3, Role: RoleBlue},
		},
		Color: HSL{H: 0, S: 0, L: 100},
	}
	writes := ApplyColor(g, 255)
	assert.ElementsMatch(t, []ChannelWrite{
		{Universe: 1, Channel: 1, Value: 255},
		{Universe: 1, Channel: 2, Value: 255},
		{Universe: 1, Channel: 3, Value: 255},
	}, writes)
}

func TestApplyColorRedGroupWithMaster(t *testing.T) {
	g := &Group{
		ID:   "color1",
		Mode: ModeColorMixer,
		Members: []Member{
			{Kind: MemberColorRole, Universe: 1, Channel: 1, Role: RoleRed},
			{Kind: MemberColorRole, Universe: 1, Channel: 2, Role: RoleGreen},
			{Kind: MemberColorRole, Universe: 1, Channel: 3, Role: RoleBlue},
		},
		Color: HSL{H: 0, S: 100, L: 50},
	}
	writes := ApplyColor(g, 200)
	assert.ElementsMatch(t, []ChannelWrite{
		{Universe: 1, Channel: 1, Value: 200},
		{Universe: 1, Channel: 2, Value: 0},
		{Universe: 1, Channel: 3, Value: 0},
	}, writes)
}

func TestRoleValueAmberRequiresBlueBelowMin(t *testing.T) {
	assert.Equal(t, byte(100), RoleValue(RoleAmber, 100, 150, 50))
	assert.Equal(t, byte(0), RoleValue(RoleAmber, 100, 150, 150))
}
