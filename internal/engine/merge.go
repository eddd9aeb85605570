package engine

import (
	"math"

	"github.com/brightstage/dmxcore/internal/broadcast"
	"github.com/brightstage/dmxcore/internal/transport"
)

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// writeComposed is the single non-reentrant write path every internal
// producer (group apply, input passthrough, scene recall) goes through.
// It never rejects: park/group-reverse rejection is strictly a property
// of the user-facing SetChannel entry point.
func (e *Engine) writeComposed(u *universeState, channel int, value byte, source string) {
	u.output.SetByte(channel, value)
	if source == SourceLocal || (len(source) > len(userSourcePrefix) && source[:len(userSourcePrefix)] == userSourcePrefix) {
		u.local.SetByte(channel, value)
	}
	e.fabric.Publish(broadcast.ChannelChangeEvent{Universe: u.id, Channel: channel, Value: value, Source: source})
}

// SetChannel is the façade entry point for a single fader move (spec
// §4.8): parked slots and input-controlled slots reject with a snap-back
// event; a single unambiguous group membership reverse-routes through
// the group's master instead of writing the channel directly.
func (e *Engine) SetChannel(universeID, channel int, value byte, source string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.universeLocked(universeID)
	value = clampByte(int(value))

	if !isUserSource(source) {
		e.writeComposed(u, channel, value, source)
		e.emitLocked(u)
		return
	}

	if parked, pv := e.parkedLocked(universeID, channel); parked {
		e.fabric.Publish(broadcast.ParkRejectEvent{Universe: universeID, Channel: channel, Value: pv})
		return
	}

	if e.inputControlsLocked(u, channel) {
		e.fabric.Publish(broadcast.ParkRejectEvent{Universe: universeID, Channel: channel, Value: u.output.Get(channel)})
		return
	}

	if handled := e.tryGroupReverseLocked(universeID, channel, value); handled {
		return
	}

	e.writeComposed(u, channel, value, source)
	e.emitLocked(u)
}

// SetChannels applies SetChannel's per-channel semantics for a batch but
// broadcasts once, per spec §4.8.
func (e *Engine) SetChannels(universeID int, values map[int]byte, source string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.universeLocked(universeID)
	for channel, value := range values {
		value = clampByte(int(value))

		if !isUserSource(source) {
			u.output.SetByte(channel, value)
			if source == SourceLocal {
				u.local.SetByte(channel, value)
			}
			continue
		}

		if parked, pv := e.parkedLocked(universeID, channel); parked {
			e.fabric.Publish(broadcast.ParkRejectEvent{Universe: universeID, Channel: channel, Value: pv})
			continue
		}
		if e.inputControlsLocked(u, channel) {
			e.fabric.Publish(broadcast.ParkRejectEvent{Universe: universeID, Channel: channel, Value: u.output.Get(channel)})
			continue
		}
		if e.tryGroupReverseLocked(universeID, channel, value) {
			continue
		}

		u.output.SetByte(channel, value)
		u.local.SetByte(channel, value)
	}

	e.emitLocked(u)
	e.fabric.Publish(broadcast.ValuesEvent{Universe: universeID, Values: u.output.GetAll()})
}

// SetChannelsSilent writes a batch without per-channel change events, for
// scene-fade intermediate steps; the emit still publishes the universe's
// throttled values frame.
func (e *Engine) SetChannelsSilent(universeID int, values map[int]byte, source string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.universeLocked(universeID)
	for channel, value := range values {
		value = clampByte(int(value))
		u.output.SetByte(channel, value)
		if source == SourceLocal {
			u.local.SetByte(channel, value)
		}
	}
	e.emitLocked(u)
}

func (e *Engine) parkedLocked(universeID, channel int) (bool, byte) {
	v, ok := e.park[chanKey{universeID, channel}]
	return ok, v
}

// inputControlsLocked reports whether channel currently falls inside an
// active, non-bypassed passthrough input's configured range.
func (e *Engine) inputControlsLocked(u *universeState, channel int) bool {
	if e.inputBypass || u.inputCfg == nil {
		return false
	}
	cfg := u.inputCfg
	if cfg.Passthrough != PassthroughFadersOutput && cfg.Passthrough != PassthroughOutputOnly {
		return false
	}
	return cfg.InRange(channel)
}

// OnInputFrame is the FrameHandler every transport receiver calls. It
// implements spec §4.5.1's direct/mapped passthrough, selective HTP/LTP
// application, and UI mirroring.
func (e *Engine) OnInputFrame(universeID int, frame transport.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.universeLocked(universeID)
	u.input = frame

	cfg := u.inputCfg
	if cfg == nil || cfg.Passthrough == PassthroughOff {
		return
	}

	if cfg.Passthrough == PassthroughViewOnly || cfg.Passthrough == PassthroughFadersOutput {
		mirrored := mirrorForUI(frame, cfg)
		e.fabric.PublishUniverseFrame(universeID, broadcast.InputToUIEvent{Universe: universeID, Values: mirrored})
	}

	if e.inputBypass {
		return
	}
	if cfg.Passthrough != PassthroughFadersOutput && cfg.Passthrough != PassthroughOutputOnly {
		return
	}

	resolved := e.mappingTable.Resolve(universeID, frame, cfg.RangeStart, cfg.RangeEnd)

	dirty := make(map[int]*universeState)
	written := make(map[chanKey]bool, len(resolved.ChannelWrites))
	for _, w := range resolved.ChannelWrites {
		destU := e.universeLocked(w.Universe)
		e.applyPassthroughWrite(destU, w.Channel, w.Value, cfg.Merge)
		dirty[w.Universe] = destU
		written[chanKey{w.Universe, w.Channel}] = true
	}
	for _, w := range resolved.MasterWrites {
		if w.Universe == -1 {
			e.setGlobalGrandmasterLocked(w.Value)
		} else {
			e.setUniverseGrandmasterLocked(w.Universe, w.Value)
			dirty[w.Universe] = e.universeLocked(w.Universe)
		}
	}

	e.triggerGroupMastersLocked(dirty, written)

	for _, du := range dirty {
		e.emitLocked(du)
	}
}

func mirrorForUI(frame transport.Frame, cfg *InputConfig) [512]int {
	var out [512]int
	for i := range out {
		out[i] = -1
	}
	for c := cfg.RangeStart; c <= cfg.RangeEnd && c >= 1 && c <= 512; c++ {
		out[c-1] = int(frame[c-1])
	}
	return out
}

// applyPassthroughWrite writes a single resolved passthrough value to a
// destination universe slot, per the source input's merge policy.
func (e *Engine) applyPassthroughWrite(u *universeState, channel int, value byte, policy MergePolicy) {
	switch policy {
	case MergeHTP:
		current := u.local.Get(channel)
		applied := value
		if current > applied {
			applied = current
		}
		u.output.SetByte(channel, applied)
		u.lastAppliedInput.SetByte(channel, value)
		e.fabric.Publish(broadcast.ChannelChangeEvent{Universe: u.id, Channel: channel, Value: applied, Source: SourceInput})
	case MergeLTP:
		last := u.lastAppliedInput.Get(channel)
		if value == 0 || absDiff(value, last) > e.jitterThreshold {
			u.output.SetByte(channel, value)
			e.fabric.Publish(broadcast.ChannelChangeEvent{Universe: u.id, Channel: channel, Value: value, Source: SourceInput})
		}
		u.lastAppliedInput.SetByte(channel, value)
	}
}

// triggerGroupMastersLocked re-applies any group whose physical master
// channel was just written by the input pipeline, letting the group's
// own value broadcast (itself throttled) record the UI-visible change.
func (e *Engine) triggerGroupMastersLocked(dirty map[int]*universeState, written map[chanKey]bool) {
	for _, g := range e.groupsByID {
		if !g.Enabled || g.PhysicalMaster == nil {
			continue
		}
		if !written[chanKey{g.PhysicalMaster.Universe, g.PhysicalMaster.Channel}] {
			continue
		}
		du := dirty[g.PhysicalMaster.Universe]
		master := du.output.Get(g.PhysicalMaster.Channel)
		e.applyGroupLocked(g, master, SourceInput)
	}
}

// emitLocked composes the wire frame from the output track plus every
// policy override (highlight replace, park overwrite, grandmaster scale,
// blackout force-zero) and fans it to every registered output sender
// (spec §4.5.2).
func (e *Engine) emitLocked(u *universeState) {
	frame := u.output.GetAll()

	if e.highlight.active {
		set := e.highlight.channels[u.id]
		for c := 1; c <= 512; c++ {
			if set != nil && set[c] {
				frame[c-1] = 255
			} else {
				frame[c-1] = e.highlight.dimLevel
			}
		}
	}

	for key, v := range e.park {
		if key.universe == u.id {
			frame[key.channel-1] = v
		}
	}

	gGM := int(e.globalGrandmaster)
	uGM := int(u.universeGrandmaster)
	if gGM != 255 || uGM != 255 {
		for i := range frame {
			frame[i] = clampByte(int(math.Round(float64(frame[i]) * float64(uGM) * float64(gGM) / 65025.0)))
		}
	}

	if e.blackoutActive {
		frame = [512]byte{}
	}

	for _, sender := range u.outputs {
		sender.Send(u.id, frame)
	}

	e.fabric.PublishUniverseFrame(u.id, broadcast.ValuesEvent{Universe: u.id, Values: frame})
}
