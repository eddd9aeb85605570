// Package mock provides a Sender that records frames instead of sending
// them anywhere, used whenever a real protocol is unavailable (spec §4.2).
package mock

import (
	"log"
	"sync"

	"github.com/brightstage/dmxcore/internal/transport"
)

// Sender records the most recent frame and, optionally, a bounded ring of
// history for test introspection.
type Sender struct {
	mu      sync.Mutex
	debug   bool
	history []transport.Frame
	historyCap int
	status  transport.Status
}

// NewSender creates a mock sender. historyCap of 0 keeps only the latest
// frame.
func NewSender(debug bool, historyCap int) *Sender {
	return &Sender{debug: debug, historyCap: historyCap, status: transport.Status{Running: true}}
}

// Send records the frame.
func (s *Sender) Send(wireUniverse int, frame transport.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.PacketCount++
	s.status.WireUniverse = wireUniverse
	if s.historyCap > 0 {
		s.history = append(s.history, frame)
		if len(s.history) > s.historyCap {
			s.history = s.history[len(s.history)-s.historyCap:]
		}
	} else {
		s.history = []transport.Frame{frame}
	}

	if s.debug {
		log.Printf("[mock] universe=%d frame[0:4]=%v", wireUniverse, frame[:4])
	}
	return nil
}

// LatestFrame returns the most recently recorded frame.
func (s *Sender) LatestFrame() transport.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return transport.Frame{}
	}
	return s.history[len(s.history)-1]
}

// History returns every recorded frame when historyCap > 0.
func (s *Sender) History() []transport.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transport.Frame, len(s.history))
	copy(out, s.history)
	return out
}

// Status returns the current status snapshot.
func (s *Sender) Status() transport.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close is a no-op.
func (s *Sender) Close() error { return nil }
