// Package mapping implements the channel mapping table (spec §4.4):
// forward routing of one source slot to one or more destinations, with an
// unmapped-passthrough policy that protects mapped destination slots.
package mapping

import "sync"

// DestinationKind tags what a mapping entry routes to.
type DestinationKind int

const (
	DestChannel DestinationKind = iota
	DestUniverseMaster
	DestGlobalMaster
)

// Destination is one routing target for a source slot.
type Destination struct {
	Kind     DestinationKind
	Universe int // meaningful for DestChannel and DestUniverseMaster
	Channel  int // meaningful for DestChannel only
}

// Entry routes one source slot to any number of destinations.
type Entry struct {
	SrcUniverse  int
	SrcChannel   int
	Destinations []Destination
}

// UnmappedBehavior governs source slots with no mapping entry.
type UnmappedBehavior int

const (
	UnmappedPassthrough UnmappedBehavior = iota
	UnmappedIgnore
)

type sourceKey struct {
	universe int
	channel  int
}

// Table is the active channel mapping configuration. Only one
// configuration is active at a time; Load atomically replaces it.
type Table struct {
	mu sync.RWMutex

	bySource         map[sourceKey]Entry
	mappedDestSlots  map[sourceKey]bool // destination (universe, channel) slots protected from passthrough
	unmappedBehavior UnmappedBehavior
}

// NewTable returns an empty table (everything unmapped, passthrough).
func NewTable() *Table {
	return &Table{
		bySource:        make(map[sourceKey]Entry),
		mappedDestSlots: make(map[sourceKey]bool),
	}
}

// Load replaces the active configuration, indexing it by source key and
// precomputing the protected-destination set used by unmapped passthrough.
func (t *Table) Load(entries []Entry, unmapped UnmappedBehavior) {
	bySource := make(map[sourceKey]Entry, len(entries))
	dest := make(map[sourceKey]bool)

	for _, e := range entries {
		bySource[sourceKey{e.SrcUniverse, e.SrcChannel}] = e
		for _, d := range e.Destinations {
			if d.Kind == DestChannel {
				dest[sourceKey{d.Universe, d.Channel}] = true
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.bySource = bySource
	t.mappedDestSlots = dest
	t.unmappedBehavior = unmapped
}

// ChannelWrite is one resolved (universe, channel, value) write produced
// by resolving an input frame against the table.
type ChannelWrite struct {
	Universe int
	Channel  int
	Value    byte
}

// MasterWrite is one resolved grandmaster write. Universe is -1 for the
// global grandmaster.
type MasterWrite struct {
	Universe int
	Value    byte
}

// Resolved is the result of applying an input frame through the mapping
// table, ready for the merge pipeline's HTP/LTP selective-application
// step.
type Resolved struct {
	ChannelWrites []ChannelWrite
	MasterWrites  []MasterWrite
}

// Resolve routes one input universe's frame (only slots within
// [rangeStart, rangeEnd] are considered, per the input descriptor's
// channel range) through the mapping table, per spec §4.4 steps 1-2.
func (t *Table) Resolve(srcUniverse int, frame [512]byte, rangeStart, rangeEnd int) Resolved {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out Resolved

	for slot := 1; slot <= 512; slot++ {
		if slot < rangeStart || slot > rangeEnd {
			continue
		}
		value := frame[slot-1]

		if entry, ok := t.bySource[sourceKey{srcUniverse, slot}]; ok {
			for _, d := range entry.Destinations {
				switch d.Kind {
				case DestChannel:
					out.ChannelWrites = append(out.ChannelWrites, ChannelWrite{d.Universe, d.Channel, value})
				case DestUniverseMaster:
					out.MasterWrites = append(out.MasterWrites, MasterWrite{d.Universe, value})
				case DestGlobalMaster:
					out.MasterWrites = append(out.MasterWrites, MasterWrite{-1, value})
				}
			}
			continue
		}

		if t.unmappedBehavior != UnmappedPassthrough {
			continue
		}
		if t.mappedDestSlots[sourceKey{srcUniverse, slot}] {
			continue // protected: this slot is somebody else's mapped destination
		}
		if value == 0 {
			continue // unmapped passthrough suppresses zero to avoid wiping local fader values
		}
		out.ChannelWrites = append(out.ChannelWrites, ChannelWrite{srcUniverse, slot, value})
	}

	return out
}

// IsMappedDestination reports whether (universe, channel) is the
// destination of a Channel mapping entry.
func (t *Table) IsMappedDestination(universe, channel int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mappedDestSlots[sourceKey{universe, channel}]
}
