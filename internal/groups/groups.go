// Package groups implements the group engine (spec §4.6): proportional
// and follow modes driving an HTP contribution table, and a color-mixer
// mode that writes channels directly from HSL state. Reverse
// master-calculation for fader moves on group members also lives here,
// since it is mode-specific.
package groups

import (
	"math"
	"sync"
)

// Mode is a group's operating mode.
type Mode int

const (
	ModeProportional Mode = iota
	ModeFollow
	ModeColorMixer
)

// ColorRole identifies a color-mixer member's role.
type ColorRole string

const (
	RoleRed       ColorRole = "red"
	RoleGreen     ColorRole = "green"
	RoleBlue      ColorRole = "blue"
	RoleWhite     ColorRole = "white"
	RoleWarmWhite ColorRole = "warm_white"
	RoleCoolWhite ColorRole = "cool_white"
	RoleAmber     ColorRole = "amber"
	RoleUV        ColorRole = "uv"
	RoleLime      ColorRole = "lime"
	RoleCyan      ColorRole = "cyan"
	RoleMagenta   ColorRole = "magenta"
	RoleYellow    ColorRole = "yellow"
	RoleOrange    ColorRole = "orange"
)

// MemberKind tags what a group member drives.
type MemberKind int

const (
	MemberChannel MemberKind = iota
	MemberUniverseMaster
	MemberGlobalMaster
	MemberColorRole
)

// Member is one group member.
type Member struct {
	Kind     MemberKind
	Universe int
	Channel  int
	Base     byte // proportional base value; unused in follow/color mode
	Role     ColorRole
}

// ChannelRef identifies a physical master channel.
type ChannelRef struct {
	Universe int
	Channel  int
}

// HSL is a color-mixer group's hue/saturation/lightness state.
type HSL struct {
	H float64 // 0..360
	S float64 // 0..100
	L float64 // 0..100
}

// Group is one group's full configuration.
type Group struct {
	ID             string
	Name           string
	Mode           Mode
	PhysicalMaster *ChannelRef
	Master         byte
	Enabled        bool
	Members        []Member
	Color          HSL
}

// HasMember reports whether (universe, channel) appears as a Channel
// member of this group.
func (g *Group) HasMember(universe, channel int) (Member, bool) {
	for _, m := range g.Members {
		if m.Kind == MemberChannel && m.Universe == universe && m.Channel == channel {
			return m, true
		}
	}
	return Member{}, false
}

// ContributionKey identifies one universe slot in the HTP contribution
// table.
type ContributionKey struct {
	Universe int
	Channel  int
}

// ContributionTable holds, per slot, the per-group contributed value; the
// composed value for a slot is the max over all contributors (spec's
// group_contributions[(u,c)][group_id]).
type ContributionTable struct {
	mu   sync.Mutex
	data map[ContributionKey]map[string]byte
}

// NewContributionTable returns an empty table.
func NewContributionTable() *ContributionTable {
	return &ContributionTable{data: make(map[ContributionKey]map[string]byte)}
}

// Set records groupID's contribution to key and returns the new HTP max
// for that slot.
func (t *ContributionTable) Set(key ContributionKey, groupID string, value byte) byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	contributors, ok := t.data[key]
	if !ok {
		contributors = make(map[string]byte)
		t.data[key] = contributors
	}
	contributors[groupID] = value
	return maxOf(contributors)
}

// ClearGroup removes every contribution made by groupID and returns the
// affected slots along with each slot's new HTP max (0 if no contributors
// remain, per spec's "if no contributors remain, the slot reverts to
// zero").
func (t *ContributionTable) ClearGroup(groupID string) map[ContributionKey]byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	affected := make(map[ContributionKey]byte)
	for key, contributors := range t.data {
		if _, ok := contributors[groupID]; !ok {
			continue
		}
		delete(contributors, groupID)
		if len(contributors) == 0 {
			delete(t.data, key)
			affected[key] = 0
		} else {
			affected[key] = maxOf(contributors)
		}
	}
	return affected
}

func maxOf(m map[string]byte) byte {
	var best byte
	for _, v := range m {
		if v > best {
			best = v
		}
	}
	return best
}

// ChannelWrite is one resolved (universe, channel, value) write.
type ChannelWrite struct {
	Universe int
	Channel  int
	Value    byte
}

// MasterWrite is one resolved grandmaster write; Universe -1 means global.
type MasterWrite struct {
	Universe int
	Value    byte
}

// ApplyResult is everything ApplyMaster or ApplyColor resolved.
type ApplyResult struct {
	ChannelWrites []ChannelWrite
	MasterWrites  []MasterWrite
}

// IsParkedFunc reports whether (universe, channel) is parked; parked
// slots are skipped by proportional/follow application per spec §4.6.
type IsParkedFunc func(universe, channel int) bool

// ApplyMaster applies a new master value to a proportional or follow
// group, updating the shared contribution table and resolving the HTP
// max for every affected channel slot. Universe/global-master members
// bypass the contribution table and call the grandmaster setters
// directly.
func ApplyMaster(g *Group, master byte, table *ContributionTable, isParked IsParkedFunc) ApplyResult {
	var res ApplyResult
	g.Master = master

	for _, m := range g.Members {
		switch m.Kind {
		case MemberChannel:
			if isParked != nil && isParked(m.Universe, m.Channel) {
				continue
			}
			contribution := contributionFor(g.Mode, master, m.Base)
			key := ContributionKey{m.Universe, m.Channel}
			value := table.Set(key, g.ID, contribution)
			res.ChannelWrites = append(res.ChannelWrites, ChannelWrite{m.Universe, m.Channel, value})
		case MemberUniverseMaster:
			res.MasterWrites = append(res.MasterWrites, MasterWrite{m.Universe, master})
		case MemberGlobalMaster:
			res.MasterWrites = append(res.MasterWrites, MasterWrite{-1, master})
		}
	}
	return res
}

func contributionFor(mode Mode, master, base byte) byte {
	if mode == ModeFollow {
		return master
	}
	// proportional
	v := int(math.Round(float64(base) * float64(master) / 255.0))
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return byte(v)
}

// ReverseMaster computes the master value implied by a direct fader move
// on a single group member channel (spec §4.5.3).
func ReverseMaster(mode Mode, value, base byte) byte {
	if mode == ModeFollow {
		return value
	}
	if base == 0 {
		return 0
	}
	v := int(math.Round(float64(value) * 255.0 / float64(base)))
	if v > 255 {
		v = 255
	}
	return byte(v)
}

// ApplyColor computes direct channel writes for a color-mixer group from
// its current HSL state and brightness master. Color-mixer groups never
// touch the contribution table.
func ApplyColor(g *Group, master byte) []ChannelWrite {
	r, gr, b := HSLToRGB(g.Color.H, g.Color.S, g.Color.L)

	var writes []ChannelWrite
	for _, m := range g.Members {
		if m.Kind != MemberColorRole {
			continue
		}
		roleValue := RoleValue(m.Role, r, gr, b)
		v := int(math.Round(float64(roleValue) * float64(master) / 255.0))
		writes = append(writes, ChannelWrite{m.Universe, m.Channel, clampByte(v)})
	}
	return writes
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// HSLToRGB converts h∈[0,360], s∈[0,100], l∈[0,100] to 8-bit RGB using
// the standard HSL algorithm with a saturation-zero shortcut, keeping
// arithmetic in floats to avoid staircasing (per Design Notes) and
// clamping only at the very end.
func HSLToRGB(h, s, l float64) (byte, byte, byte) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	sNorm := s / 100
	lNorm := l / 100

	if sNorm == 0 {
		gray := clampByte(int(math.Round(lNorm * 255)))
		return gray, gray, gray
	}

	var q float64
	if lNorm < 0.5 {
		q = lNorm * (1 + sNorm)
	} else {
		q = lNorm + sNorm - lNorm*sNorm
	}
	p := 2*lNorm - q

	hk := h / 360
	r := hueToRGB(p, q, hk+1.0/3.0)
	g := hueToRGB(p, q, hk)
	b := hueToRGB(p, q, hk-1.0/3.0)

	return clampByte(int(math.Round(r * 255))), clampByte(int(math.Round(g * 255))), clampByte(int(math.Round(b * 255)))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

// RoleValue maps a color role to its channel value from the computed RGB
// triple, per the static role table in spec §4.6.
func RoleValue(role ColorRole, r, g, b byte) byte {
	min2 := func(a, b byte) byte {
		if a < b {
			return a
		}
		return b
	}
	min3 := func(a, b, c byte) byte {
		return min2(min2(a, b), c)
	}

	switch role {
	case RoleRed:
		return r
	case RoleGreen:
		return g
	case RoleBlue, RoleUV:
		return b
	case RoleYellow:
		return min2(r, g)
	case RoleCyan:
		return min2(g, b)
	case RoleMagenta:
		return min2(r, b)
	case RoleWhite, RoleWarmWhite, RoleCoolWhite:
		return min3(r, g, b)
	case RoleOrange:
		if r > g && b < min2(r, g) {
			doubled := int(g) * 2
			if doubled > 255 {
				doubled = 255
			}
			return min2(r, byte(doubled))
		}
		return 0
	case RoleAmber:
		if r > 0 && g > 0 && b < min2(r, g) {
			return min2(r, g)
		}
		return 0
	case RoleLime:
		if g > r && b < min2(r, g) {
			doubled := int(r) * 2
			if doubled > 255 {
				doubled = 255
			}
			return min2(g, byte(doubled))
		}
		return 0
	default:
		return 0
	}
}
