package engine

import (
	"github.com/brightstage/dmxcore/internal/broadcast"
	"github.com/brightstage/dmxcore/internal/groups"
)

// AddGroup registers a new group.
func (e *Engine) AddGroup(g *groups.Group) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.groupsByID[g.ID] = g
	e.fabric.Publish(broadcast.GroupsChangedEvent{})
}

// UpdateGroup replaces a group's configuration. If the mode or member
// list changed the caller is responsible for deciding whether to
// re-apply the current master; UpdateGroup itself only swaps the
// definition.
func (e *Engine) UpdateGroup(g *groups.Group) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.groupsByID[g.ID] = g
	e.fabric.Publish(broadcast.GroupsChangedEvent{})
}

// RemoveGroup deletes a group, clearing its HTP contributions so the
// affected slots revert to whatever other groups (or zero) remain.
func (e *Engine) RemoveGroup(groupID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.groupsByID, groupID)
	affected := e.contribution.ClearGroup(groupID)

	dirty := make(map[int]*universeState)
	for key, value := range affected {
		u := e.universeLocked(key.Universe)
		u.output.SetByte(key.Channel, value)
		dirty[key.Universe] = u
	}
	for _, u := range dirty {
		e.emitLocked(u)
	}
	e.fabric.Publish(broadcast.GroupsChangedEvent{})
}

// ApplyGroupDirect sets a group's master value directly (a UI group
// fader move, not a reverse-routed member move).
func (e *Engine) ApplyGroupDirect(groupID string, master byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.groupsByID[groupID]
	if !ok {
		return
	}
	master = clampByte(int(master))
	e.applyGroupLocked(g, master, SourceGroup)
}

// SetGroupColor updates a color-mixer group's HSL state and re-applies
// it at the group's current master brightness.
func (e *Engine) SetGroupColor(groupID string, h, s, l float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.groupsByID[groupID]
	if !ok || g.Mode != groups.ModeColorMixer {
		return
	}
	g.Color = groups.HSL{H: h, S: s, L: l}
	e.applyGroupLocked(g, g.Master, SourceGroup)
}

// applyGroupLocked resolves a group's member writes for the given
// master/brightness value and pushes them through the non-reentrant
// write path, then emits every touched universe.
func (e *Engine) applyGroupLocked(g *groups.Group, master byte, source string) {
	dirty := make(map[int]*universeState)

	isParked := func(universeID, channel int) bool {
		parked, _ := e.parkedLocked(universeID, channel)
		return parked
	}

	switch g.Mode {
	case groups.ModeColorMixer:
		g.Master = master
		for _, w := range groups.ApplyColor(g, master) {
			u := e.universeLocked(w.Universe)
			e.writeComposed(u, w.Channel, w.Value, source)
			dirty[w.Universe] = u
		}
	default:
		res := groups.ApplyMaster(g, master, e.contribution, isParked)
		for _, w := range res.ChannelWrites {
			u := e.universeLocked(w.Universe)
			e.writeComposed(u, w.Channel, w.Value, source)
			dirty[w.Universe] = u
		}
		for _, w := range res.MasterWrites {
			if w.Universe == -1 {
				e.setGlobalGrandmasterLocked(w.Value)
			} else {
				e.setUniverseGrandmasterLocked(w.Universe, w.Value)
				dirty[w.Universe] = e.universeLocked(w.Universe)
			}
		}
	}

	for _, u := range dirty {
		e.emitLocked(u)
	}
	e.fabric.PublishGroupValue(broadcast.GroupValueChangedEvent{GroupID: g.ID, Value: master, Source: source})
}
