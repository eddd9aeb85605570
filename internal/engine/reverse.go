package engine

import (
	"github.com/brightstage/dmxcore/internal/broadcast"
	"github.com/brightstage/dmxcore/internal/groups"
)

// tryGroupReverseLocked implements spec §4.5.3's reverse-write rule: a
// fader move on a channel that belongs to exactly one enabled group
// reverse-calculates that group's master and re-applies it, instead of
// writing the channel directly. Ambiguous membership (2+ groups) or a
// master that is itself input-controlled rejects with a group_reject
// snap-back.
func (e *Engine) tryGroupReverseLocked(universeID, channel int, value byte) bool {
	var owner *groups.Group
	var member groups.Member
	matches := 0

	for _, g := range e.groupsByID {
		if !g.Enabled {
			continue
		}
		if m, ok := g.HasMember(universeID, channel); ok {
			matches++
			owner = g
			member = m
		}
	}

	if matches == 0 {
		return false
	}
	if matches > 1 {
		u := e.universeLocked(universeID)
		e.fabric.Publish(broadcast.GroupRejectEvent{Universe: universeID, Channel: channel, Value: u.output.Get(channel)})
		return true
	}

	if owner.PhysicalMaster != nil {
		pm := owner.PhysicalMaster
		mu := e.universeLocked(pm.Universe)
		if e.inputControlsLocked(mu, pm.Channel) {
			u := e.universeLocked(universeID)
			e.fabric.Publish(broadcast.GroupRejectEvent{Universe: universeID, Channel: channel, Value: u.output.Get(channel)})
			return true
		}
	}

	newMaster := groups.ReverseMaster(owner.Mode, value, member.Base)
	e.applyGroupLocked(owner, newMaster, SourceGroupReverse)

	if owner.PhysicalMaster != nil {
		pm := owner.PhysicalMaster
		pmu := e.universeLocked(pm.Universe)
		pmu.output.SetByte(pm.Channel, newMaster)
		e.fabric.Publish(broadcast.ChannelChangeEvent{
			Universe: pm.Universe, Channel: pm.Channel, Value: newMaster, Source: SourceGroupReverse,
		})
		e.emitLocked(pmu)
	}

	return true
}
