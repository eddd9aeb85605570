package engine

import (
	"github.com/brightstage/dmxcore/internal/broadcast"
	"github.com/brightstage/dmxcore/internal/mapping"
)

// setGlobalGrandmasterLocked is the non-reentrant write used by both the
// public setter and internal writers (mapped master channels, group
// MemberGlobalMaster writes).
func (e *Engine) setGlobalGrandmasterLocked(value byte) {
	e.globalGrandmaster = clampByte(int(value))
	e.fabric.Publish(broadcast.GrandmasterChangedEvent{Universe: -1, Value: e.globalGrandmaster})
}

func (e *Engine) setUniverseGrandmasterLocked(universeID int, value byte) {
	u := e.universeLocked(universeID)
	u.universeGrandmaster = clampByte(int(value))
	e.fabric.Publish(broadcast.GrandmasterChangedEvent{Universe: universeID, Value: u.universeGrandmaster})
}

// SetGlobalGrandmaster sets the global grandmaster and re-emits every
// universe, since it scales all of them.
func (e *Engine) SetGlobalGrandmaster(value byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setGlobalGrandmasterLocked(value)
	for _, u := range e.universes {
		e.emitLocked(u)
	}
}

// SetUniverseGrandmaster sets one universe's grandmaster and re-emits it.
func (e *Engine) SetUniverseGrandmaster(universeID int, value byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setUniverseGrandmasterLocked(universeID, value)
	e.emitLocked(e.universeLocked(universeID))
}

// ParkChannel pins a channel to a fixed output value until unparked,
// overriding every other policy except blackout (spec §4.5.2).
func (e *Engine) ParkChannel(universeID, channel int, value byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	value = clampByte(int(value))
	e.park[chanKey{universeID, channel}] = value
	e.fabric.Publish(broadcast.ParkUpdateEvent{Universe: universeID, Channel: channel, Value: value, Parked: true})
	e.emitLocked(e.universeLocked(universeID))
}

// UnparkChannel releases a park override.
func (e *Engine) UnparkChannel(universeID, channel int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := chanKey{universeID, channel}
	delete(e.park, key)
	u := e.universeLocked(universeID)
	e.fabric.Publish(broadcast.ParkUpdateEvent{Universe: universeID, Channel: channel, Value: u.output.Get(channel), Parked: false})
	e.emitLocked(u)
}

// StartHighlight enables the highlight override: highlighted channels
// snap to full, every other channel on an affected universe dims to
// dimLevel, overriding everything except park and blackout.
func (e *Engine) StartHighlight(dimLevel byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highlight.active = true
	e.highlight.dimLevel = clampByte(int(dimLevel))
	e.emitAllLocked()
	e.broadcastHighlightLocked()
}

// StopHighlight disables the highlight override.
func (e *Engine) StopHighlight() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highlight.active = false
	e.emitAllLocked()
	e.broadcastHighlightLocked()
}

// AddToHighlight adds a channel to the highlighted set for a universe.
func (e *Engine) AddToHighlight(universeID, channel int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	set, ok := e.highlight.channels[universeID]
	if !ok {
		set = make(map[int]bool)
		e.highlight.channels[universeID] = set
	}
	set[channel] = true
	if e.highlight.active {
		e.emitLocked(e.universeLocked(universeID))
	}
	e.broadcastHighlightLocked()
}

// RemoveFromHighlight removes a channel from the highlighted set.
func (e *Engine) RemoveFromHighlight(universeID, channel int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if set, ok := e.highlight.channels[universeID]; ok {
		delete(set, channel)
	}
	if e.highlight.active {
		e.emitLocked(e.universeLocked(universeID))
	}
	e.broadcastHighlightLocked()
}

func (e *Engine) broadcastHighlightLocked() {
	for universeID, set := range e.highlight.channels {
		channels := make([]int, 0, len(set))
		for c := range set {
			channels = append(channels, c)
		}
		e.fabric.Publish(broadcast.HighlightUpdateEvent{
			Universe: universeID, Active: e.highlight.active, DimLevel: e.highlight.dimLevel, Channels: channels,
		})
	}
}

// Blackout forces every universe's wire frame to zero, saving the
// pre-blackout composed output for restore on release.
func (e *Engine) Blackout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blackoutActive = true
	for _, u := range e.universes {
		saved := u.output
		u.preBlackout = &saved
	}
	e.emitAllLocked()
	e.fabric.Publish(broadcast.BlackoutEvent{Active: true})
}

// ReleaseBlackout restores every universe's pre-blackout composed output.
func (e *Engine) ReleaseBlackout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blackoutActive = false
	for _, u := range e.universes {
		if u.preBlackout != nil {
			u.output = *u.preBlackout
			u.preBlackout = nil
		}
	}
	e.emitAllLocked()
	e.fabric.Publish(broadcast.BlackoutEvent{Active: false})
}

// SetInputBypass toggles global input bypass. Releasing bypass
// force-zeroes each active input's local baseline so the next input
// frame wins the first HTP comparison, and clears every group's
// broadcast throttle so groups re-emit immediately (spec §4.8).
func (e *Engine) SetInputBypass(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasOn := e.inputBypass
	e.inputBypass = on
	if wasOn && !on {
		for _, u := range e.universes {
			if u.inputCfg == nil {
				continue
			}
			for c := u.inputCfg.RangeStart; c <= u.inputCfg.RangeEnd && c >= 1 && c <= 512; c++ {
				u.local.SetByte(c, 0)
			}
		}
		for groupID := range e.groupsByID {
			e.fabric.ResetGroupThrottle(groupID)
		}
	}
}

// SetChannelMapping atomically replaces the active channel mapping
// configuration.
func (e *Engine) SetChannelMapping(entries []mapping.Entry, unmapped mapping.UnmappedBehavior) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mappingTable.Load(entries, unmapped)
	e.fabric.Publish(broadcast.PatchesChangedEvent{})
}

func (e *Engine) emitAllLocked() {
	for _, u := range e.universes {
		e.emitLocked(u)
	}
}
