// Package midi wraps gitlab.com/gomidi/midi/v2 for CC/Note ingestion,
// grounded on jdginn-arpad's use of the same driver/port-lookup API
// (midi.GetOutPorts, midi.FindInPort, rtmididrv registration). Output-side
// DMX->MIDI scaling (v>>1) lives alongside the input scaling for symmetry,
// per spec §6.
package midi

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/brightstage/dmxcore/internal/transport"
)

// CCMapping maps one MIDI CC to one DMX input channel. MIDIChannel of -1
// matches any channel, per spec §6.
type CCMapping struct {
	ID          string
	CCNumber    uint8
	MIDIChannel int8
	UniverseID  int
	Channel     int
}

// NoteAction names what a note trigger does.
type NoteAction string

const (
	NoteActionScene     NoteAction = "scene"
	NoteActionBlackout  NoteAction = "blackout"
	NoteActionGroup     NoteAction = "group"
)

// NoteTrigger maps one MIDI note to an engine action.
type NoteTrigger struct {
	ID          string
	Note        uint8
	MIDIChannel int8
	Action      NoteAction
	TargetID    string
}

// ValueToDMX scales a 0..=127 MIDI value to 0..=255.
func ValueToDMX(v uint8) byte {
	return byte((int(v)*255 + 63) / 127)
}

// DMXToValue scales a 0..=255 DMX value down to 0..=127 (the inverse used
// for MIDI feedback), per spec §6: "DMX->MIDI uses the inverse, v>>1".
func DMXToValue(v byte) uint8 {
	return uint8(v >> 1)
}

// NoteHandler receives fired note triggers.
type NoteHandler func(trigger NoteTrigger)

// Receiver owns one open MIDI input port and dispatches CC/Note messages
// into per-universe synthetic input frames.
type Receiver struct {
	mu          sync.Mutex
	portName    string
	stop        func()
	ccMappings  []CCMapping
	noteTriggers []NoteTrigger
	frames      map[int]*transport.Frame
	frameHandler transport.FrameHandler
	noteHandler  NoteHandler

	learning    bool
	lastMessage string
}

// NewReceiver creates a receiver bound to portName. For a name prefixed
// "network:<peer>" the prefix is stripped and <peer> is looked up among
// the driver's input ports like any other port name; there is no separate
// rtpMIDI session lookup.
func NewReceiver(portName string) *Receiver {
	return &Receiver{
		portName: portName,
		frames:   make(map[int]*transport.Frame),
	}
}

// SetMappings replaces the active CC/note mapping tables.
func (r *Receiver) SetMappings(cc []CCMapping, notes []NoteTrigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ccMappings = cc
	r.noteTriggers = notes
}

// SetFrameHandler registers the callback invoked with the updated
// synthetic input frame for a universe whenever a mapped CC changes.
func (r *Receiver) SetFrameHandler(h transport.FrameHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frameHandler = h
}

// SetNoteHandler registers the callback invoked when a mapped note fires.
func (r *Receiver) SetNoteHandler(h NoteHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteHandler = h
}

// StartMIDILearn captures the next CC or note message instead of routing
// it, per the supplemented MIDI-learn feature.
func (r *Receiver) StartMIDILearn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.learning = true
	r.lastMessage = ""
}

// StopMIDILearn ends learn mode.
func (r *Receiver) StopMIDILearn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.learning = false
}

// LastMIDIMessage returns the last captured learn-mode message, e.g.
// "cc:1:7" or "note:1:60".
func (r *Receiver) LastMIDIMessage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastMessage
}

// Start opens the port and begins listening.
func (r *Receiver) Start() error {
	in, err := findInPort(r.portName)
	if err != nil {
		return err
	}

	stop, err := midi.ListenTo(in, r.onMessage)
	if err != nil {
		return err
	}
	r.stop = stop
	log.Printf("[midi] listening on %q", r.portName)
	return nil
}

// Stop closes the port.
func (r *Receiver) Stop() error {
	if r.stop != nil {
		r.stop()
	}
	return nil
}

func findInPort(name string) (midi.In, error) {
	if strings.HasPrefix(name, "network:") {
		peer := strings.TrimPrefix(name, "network:")
		return midi.FindInPort(peer)
	}
	return midi.FindInPort(name)
}

func (r *Receiver) onMessage(msg midi.Message, timestampms int32) {
	var channel, control, value uint8
	if msg.GetControlChange(&channel, &control, &value) {
		r.handleCC(channel, control, value)
		return
	}

	var key, velocity uint8
	if msg.GetNoteOn(&channel, &key, &velocity) {
		r.handleNote(channel, key)
		return
	}
}

func (r *Receiver) handleCC(channel, control, value uint8) {
	r.mu.Lock()
	if r.learning {
		r.lastMessage = fmt.Sprintf("cc:%d:%d", channel, control)
		r.mu.Unlock()
		return
	}

	var matched []CCMapping
	for _, m := range r.ccMappings {
		if m.CCNumber == control && (m.MIDIChannel < 0 || uint8(m.MIDIChannel) == channel) {
			matched = append(matched, m)
		}
	}
	handler := r.frameHandler
	r.mu.Unlock()

	if handler == nil {
		return
	}
	dmxValue := ValueToDMX(value)
	for _, m := range matched {
		r.mu.Lock()
		frame, ok := r.frames[m.UniverseID]
		if !ok {
			frame = &transport.Frame{}
			r.frames[m.UniverseID] = frame
		}
		frame[m.Channel-1] = dmxValue
		snapshot := *frame
		r.mu.Unlock()

		handler(m.UniverseID, snapshot)
	}
}

func (r *Receiver) handleNote(channel, note uint8) {
	r.mu.Lock()
	if r.learning {
		r.lastMessage = fmt.Sprintf("note:%d:%d", channel, note)
		r.mu.Unlock()
		return
	}

	var matched []NoteTrigger
	for _, t := range r.noteTriggers {
		if t.Note == note && (t.MIDIChannel < 0 || uint8(t.MIDIChannel) == channel) {
			matched = append(matched, t)
		}
	}
	handler := r.noteHandler
	r.mu.Unlock()

	if handler == nil {
		return
	}
	for _, t := range matched {
		handler(t)
	}
}
