// Package scene implements the scene recall engine (spec §4.7): instant,
// fade, and crossfade transitions from the current composed state to a
// stored set of target values, adapted from the teacher's
// internal/services/fade ticker/easing engine and the state-machine shape
// of internal/services/playback/service.go (with cue-list chaining
// dropped — scenes here are independently recalled, never queued).
package scene

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightstage/dmxcore/internal/services/fade"
)

// Transition is how a scene's channel values move to their targets.
type Transition int

const (
	TransitionInstant Transition = iota
	TransitionFade
	TransitionCrossfade
)

// ChannelTarget is one captured (universe, channel) value.
type ChannelTarget struct {
	Universe int
	Channel  int
	Value    byte
}

// GroupTarget is one captured group master value.
type GroupTarget struct {
	GroupID string
	Master  byte
}

// MasterTarget is one captured grandmaster value; Universe -1 is global.
type MasterTarget struct {
	Universe int
	Value    byte
}

// Scene is a stored lighting state.
type Scene struct {
	ID            string
	Name          string
	Channels      []ChannelTarget
	Groups        []GroupTarget
	Masters       []MasterTarget
	DefaultFadeMS int
}

// dmxFacade is the subset of *engine.Engine the scene engine drives,
// kept as an interface so scene tests can fake it without constructing a
// full engine.
type dmxFacade interface {
	Snapshot(universeID int) [512]byte
	IsInputControlled(universeID, channel int) bool
	IsGroupControlled(universeID, channel int) bool
	InputBypassActive() bool
	SetChannels(universeID int, values map[int]byte, source string)
	SetChannelsSilent(universeID int, values map[int]byte, source string)
	GroupMasterInputControlled(groupID string) bool
	RestoreGroupMaster(groupID string, master byte)
	SetGlobalGrandmaster(value byte)
	SetUniverseGrandmaster(universeID int, value byte)
	SetActiveScene(sceneID string)
}

const sourceSceneRecall = "scene_recall"

// stepInterval is the ~30fps fade tick rate spec §4.7 specifies.
const stepInterval = 33 * time.Millisecond

// Engine drives scene recall against a dmxFacade.
type Engine struct {
	mu sync.Mutex

	dmx dmxFacade

	activeSceneID string
	lastTargets   map[universeChannel]bool // channels the most recently recalled scene touched, for crossfade release

	generation atomic.Int64
}

type universeChannel struct {
	universe int
	channel  int
}

// New creates a scene engine driving dmx.
func New(dmx dmxFacade) *Engine {
	return &Engine{dmx: dmx, lastTargets: make(map[universeChannel]bool)}
}

// ActiveScene returns the id of the most recently fully-recalled scene,
// or "" if none.
func (e *Engine) ActiveScene() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeSceneID
}

// Recall plays s using transition over durationMs (ignored for
// TransitionInstant). bypass disables the input/group-control target
// filter, letting the scene drive every captured channel regardless of
// who else currently controls it.
func (e *Engine) Recall(s *Scene, transition Transition, durationMs int, bypass bool) {
	targets := e.filterTargets(s, bypass)

	gen := e.generation.Add(1)

	switch transition {
	case TransitionInstant:
		e.applyByUniverse(targets, e.dmx.SetChannels)
	case TransitionCrossfade:
		released := e.releaseTargets(targets)
		e.runFade(append(targets, released...), durationMs, gen)
	default:
		e.runFade(targets, durationMs, gen)
	}

	e.restoreGroups(s)
	e.restoreMasters(s)

	e.mu.Lock()
	e.activeSceneID = s.ID
	e.lastTargets = make(map[universeChannel]bool, len(targets))
	for _, t := range targets {
		e.lastTargets[universeChannel{t.Universe, t.Channel}] = true
	}
	e.mu.Unlock()

	e.dmx.SetActiveScene(s.ID)
}

// filterTargets drops channels under direct input control or group
// control from the scene's target set, unless bypass is set (spec
// §4.7's input-filtering step).
func (e *Engine) filterTargets(s *Scene, bypass bool) []ChannelTarget {
	if bypass {
		out := make([]ChannelTarget, len(s.Channels))
		copy(out, s.Channels)
		return out
	}

	var out []ChannelTarget
	for _, c := range s.Channels {
		if e.dmx.IsInputControlled(c.Universe, c.Channel) {
			continue
		}
		if e.dmx.IsGroupControlled(c.Universe, c.Channel) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// releaseTargets returns a zero-value target for every channel the
// previously active scene touched but the new scene's target set does
// not, so a crossfade genuinely fades the old look out instead of
// leaving its channels stuck at their last value.
func (e *Engine) releaseTargets(newTargets []ChannelTarget) []ChannelTarget {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := make(map[universeChannel]bool, len(newTargets))
	for _, t := range newTargets {
		in[universeChannel{t.Universe, t.Channel}] = true
	}

	var released []ChannelTarget
	for uc := range e.lastTargets {
		if in[uc] {
			continue
		}
		released = append(released, ChannelTarget{Universe: uc.universe, Channel: uc.channel, Value: 0})
	}
	return released
}

func (e *Engine) applyByUniverse(targets []ChannelTarget, apply func(universeID int, values map[int]byte, source string)) {
	byUniverse := groupByUniverse(targets)
	for universeID, values := range byUniverse {
		apply(universeID, values, sourceSceneRecall)
	}
}

func groupByUniverse(targets []ChannelTarget) map[int]map[int]byte {
	out := make(map[int]map[int]byte)
	for _, t := range targets {
		m, ok := out[t.Universe]
		if !ok {
			m = make(map[int]byte)
			out[t.Universe] = m
		}
		m[t.Channel] = t.Value
	}
	return out
}

// runFade steps every target channel from its current composed value to
// its target over durationMs at ~30fps, correcting for scheduling drift
// against a monotonic clock, then commits the final values with a single
// broadcast. gen preempts a stale fade if a newer Recall started.
func (e *Engine) runFade(targets []ChannelTarget, durationMs int, gen int64) {
	if len(targets) == 0 {
		return
	}

	type step struct {
		universe, channel int
		start, end        float64
	}
	steps := make([]step, len(targets))
	for i, t := range targets {
		snap := e.dmx.Snapshot(t.Universe)
		steps[i] = step{t.Universe, t.Channel, float64(snap[t.channelIndex()]), float64(t.Value)}
	}

	duration := time.Duration(durationMs) * time.Millisecond
	if duration <= 0 {
		duration = stepInterval
	}
	stepCount := int(duration / stepInterval)
	if stepCount < 1 {
		stepCount = 1
	}

	start := time.Now()
	for i := 1; i <= stepCount; i++ {
		if e.generation.Load() != gen {
			return // superseded by a newer recall
		}

		progress := float64(i) / float64(stepCount)
		eased := fade.ApplyEasing(progress, fade.EasingLinear)

		values := make(map[int]map[int]byte)
		for _, s := range steps {
			v := s.start + (s.end-s.start)*eased
			byUniverse, ok := values[s.universe]
			if !ok {
				byUniverse = make(map[int]byte)
				values[s.universe] = byUniverse
			}
			byUniverse[s.channel] = clamp(v)
		}

		final := i == stepCount
		for universeID, vals := range values {
			if final {
				e.dmx.SetChannels(universeID, vals, sourceSceneRecall)
			} else {
				e.dmx.SetChannelsSilent(universeID, vals, sourceSceneRecall)
			}
		}

		if final {
			break
		}

		target := start.Add(time.Duration(i) * stepInterval)
		if sleep := time.Until(target); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

func (t ChannelTarget) channelIndex() int {
	c := t.Channel
	if c < 1 {
		c = 1
	}
	if c > 512 {
		c = 512
	}
	return c - 1
}

func clamp(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

// restoreGroups re-applies every captured group master, skipping groups
// whose physical master channel is currently input-controlled (spec
// §4.7).
func (e *Engine) restoreGroups(s *Scene) {
	for _, g := range s.Groups {
		if e.dmx.GroupMasterInputControlled(g.GroupID) {
			continue
		}
		e.dmx.RestoreGroupMaster(g.GroupID, g.Master)
	}
}

// restoreMasters re-applies every captured grandmaster value.
func (e *Engine) restoreMasters(s *Scene) {
	for _, m := range s.Masters {
		if m.Universe == -1 {
			e.dmx.SetGlobalGrandmaster(m.Value)
		} else {
			e.dmx.SetUniverseGrandmaster(m.Universe, m.Value)
		}
	}
}
