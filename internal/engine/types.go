// Package engine is the DMX interface façade and merge pipeline (spec
// §4.5, §4.8): the explicit owned struct Design Notes asks for in place
// of "a single façade object holding every universe, input, output,
// group" as a module-level singleton.
package engine

import (
	"sync"

	"github.com/brightstage/dmxcore/internal/broadcast"
	"github.com/brightstage/dmxcore/internal/groups"
	"github.com/brightstage/dmxcore/internal/mapping"
	"github.com/brightstage/dmxcore/internal/transport"
	"github.com/brightstage/dmxcore/internal/universe"
)

// PassthroughMode is a universe's input-routing policy.
type PassthroughMode int

const (
	PassthroughOff PassthroughMode = iota
	PassthroughViewOnly
	PassthroughFadersOutput
	PassthroughOutputOnly
)

// MergePolicy is the conflict-resolution rule applied when input
// passthrough writes a slot.
type MergePolicy int

const (
	MergeHTP MergePolicy = iota
	MergeLTP
)

// Source tags record the most recent writer of a channel, for
// diagnostics and for the reverse-input snap logic.
const (
	SourceLocal        = "local"
	SourceInput        = "input"
	SourceGroup        = "group"
	SourceSceneRecall   = "scene_recall"
	SourceRemoteAPI     = "remote_api"
	SourceMIDI          = "midi"
	SourceGroupReverse  = "group_reverse"
	SourceParkReject    = "park_reject"
	SourceGroupReject   = "group_reject"
	userSourcePrefix    = "user_"
)

// InputConfig is a universe's input descriptor (spec §3).
type InputConfig struct {
	Protocol      transport.Protocol
	RangeStart    int
	RangeEnd      int
	Passthrough   PassthroughMode
	Merge         MergePolicy
}

// InRange reports whether channel falls inside the input's configured
// channel range.
func (c InputConfig) InRange(channel int) bool {
	return channel >= c.RangeStart && channel <= c.RangeEnd
}

// universeState holds one universe's four parallel value tracks plus its
// registered output senders.
type universeState struct {
	id int

	output           universe.Frame // last composed frame (intent)
	local            universe.Frame // values set by fader sources
	input            universe.Frame // last raw input frame
	lastAppliedInput universe.Frame // LTP jitter-suppression baseline

	enabled bool
	inputCfg  *InputConfig

	outputs []transport.Sender

	universeGrandmaster byte // default 255

	preBlackout *universe.Frame // saved output frame, set only while blackout active
}

func newUniverseState(id int) *universeState {
	return &universeState{id: id, enabled: true, universeGrandmaster: 255}
}

// chanKey indexes the per-(universe,channel) park map.
type chanKey struct {
	universe int
	channel  int
}

// highlightState is the global highlight toggle plus a per-universe
// highlighted-channel set (spec §3).
type highlightState struct {
	active   bool
	dimLevel byte
	channels map[int]map[int]bool // universe -> channel -> true
}

func newHighlightState() *highlightState {
	return &highlightState{channels: make(map[int]map[int]bool)}
}

// Engine owns every universe, input, output, group, and policy map for
// the process. It serializes all mutation behind mu, matching the
// single-threaded cooperative scheduling model of spec §5: receivers and
// senders run their own goroutines, but only ever touch Engine state
// through these methods.
type Engine struct {
	mu sync.Mutex

	universes map[int]*universeState

	mappingTable *mapping.Table
	contribution *groups.ContributionTable
	groupsByID   map[string]*groups.Group

	park      map[chanKey]byte
	highlight *highlightState

	globalGrandmaster byte

	blackoutActive bool

	inputBypass bool

	fabric *broadcast.Fabric

	jitterThreshold int
}

// New creates an empty engine. jitterThreshold is the LTP threshold
// (spec default 2), and fabric is the broadcast fan-out the engine
// publishes every Event to.
func New(jitterThreshold int, fabric *broadcast.Fabric) *Engine {
	if jitterThreshold <= 0 {
		jitterThreshold = 2
	}
	return &Engine{
		universes:         make(map[int]*universeState),
		mappingTable:      mapping.NewTable(),
		contribution:      groups.NewContributionTable(),
		groupsByID:        make(map[string]*groups.Group),
		park:              make(map[chanKey]byte),
		highlight:         newHighlightState(),
		globalGrandmaster: 255,
		fabric:            fabric,
		jitterThreshold:   jitterThreshold,
	}
}

// AddUniverse registers a universe, creating its state if new.
func (e *Engine) AddUniverse(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.universes[id]; !ok {
		e.universes[id] = newUniverseState(id)
	}
}

// SetInputConfig attaches or replaces a universe's input descriptor.
func (e *Engine) SetInputConfig(universeID int, cfg InputConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	u := e.universeLocked(universeID)
	u.inputCfg = &cfg
}

// AttachOutput registers an output sender for a universe.
func (e *Engine) AttachOutput(universeID int, s transport.Sender) {
	e.mu.Lock()
	defer e.mu.Unlock()
	u := e.universeLocked(universeID)
	u.outputs = append(u.outputs, s)
}

func (e *Engine) universeLocked(id int) *universeState {
	u, ok := e.universes[id]
	if !ok {
		u = newUniverseState(id)
		e.universes[id] = u
	}
	return u
}

func isUserSource(source string) bool {
	return source == SourceLocal || len(source) > len(userSourcePrefix) && source[:len(userSourcePrefix)] == userSourcePrefix
}
