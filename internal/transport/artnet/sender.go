// Package artnet implements the Art-Net output sender and input receiver.
// The wire packet format is owned by pkg/artnet; this package owns the
// adaptive send-rate loop and the UDP socket lifecycle, adapted from the
// teacher's internal/services/dmx transmit loop but generalized from "the
// one Art-Net output" to "one sender per output descriptor."
package artnet

import (
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightstage/dmxcore/internal/transport"
	"github.com/brightstage/dmxcore/pkg/artnet"
)

// SenderConfig configures one Art-Net output destination.
type SenderConfig struct {
	Target        string // host or broadcast address, without port (Port supplies it)
	Port          int
	WireUniverse  int // 1-indexed on the wire (protocol subtracts 1 internally)
	TargetFPS     int
	IdleKeepAlive time.Duration // defaults to 2s per spec
}

// Sender transmits ArtDmx packets for one (target, wire-universe) pair,
// sharing its UDP socket with any other Sender dialing the same target
// through the supplied pool.
type Sender struct {
	cfg  SenderConfig
	pool *transport.ConnPool

	mu       sync.Mutex
	conn     *net.UDPConn
	release  func() error
	frame    transport.Frame
	dirty    bool
	sequence byte

	status atomic.Value // transport.Status

	stopCh   chan struct{}
	resetCh  chan struct{}
	wg       sync.WaitGroup
	lastSend time.Time
}

// NewSender dials (or reuses) the shared socket for cfg.Target and starts
// the adaptive transmit loop.
func NewSender(cfg SenderConfig, pool *transport.ConnPool) (*Sender, error) {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 44
	}
	if cfg.IdleKeepAlive <= 0 {
		cfg.IdleKeepAlive = 2 * time.Second
	}

	s := &Sender{
		cfg:     cfg,
		pool:    pool,
		stopCh:  make(chan struct{}),
		resetCh: make(chan struct{}, 1),
	}
	s.status.Store(transport.Status{})

	key := fmt.Sprintf("artnet:%s:%d", cfg.Target, cfg.Port)
	conn, release, err := pool.Acquire(key, func() (*net.UDPConn, error) {
		addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", cfg.Target, cfg.Port))
		if err != nil {
			return nil, err
		}
		return net.DialUDP("udp", nil, addr)
	})
	if err != nil {
		s.status.Store(transport.Status{Degraded: true, LastError: err.Error()})
		return s, err
	}
	s.conn = conn
	s.release = release
	s.status.Store(transport.Status{Running: true, BindAddr: conn.RemoteAddr().String()})

	s.wg.Add(1)
	go s.transmitLoop()
	return s, nil
}

// Send records a new frame for the given wire universe and wakes the
// transmit loop if it was idling.
func (s *Sender) Send(wireUniverse int, frame transport.Frame) error {
	s.mu.Lock()
	s.frame = frame
	s.dirty = true
	s.mu.Unlock()

	select {
	case s.resetCh <- struct{}{}:
	default:
	}
	return nil
}

// Status returns the current sender status snapshot.
func (s *Sender) Status() transport.Status {
	return s.status.Load().(transport.Status)
}

// Close stops the transmit loop and releases the shared socket.
func (s *Sender) Close() error {
	close(s.stopCh)
	s.wg.Wait()
	if s.release != nil {
		return s.release()
	}
	return nil
}

func (s *Sender) transmitLoop() {
	defer s.wg.Done()

	activeRate := time.Second / time.Duration(s.cfg.TargetFPS)
	ticker := time.NewTicker(activeRate)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-s.resetCh:
			ticker.Reset(activeRate)
			s.transmit()
		case <-ticker.C:
			s.mu.Lock()
			idle := !s.dirty && time.Since(s.lastSend) < s.cfg.IdleKeepAlive
			s.mu.Unlock()
			if idle {
				continue
			}
			s.transmit()
		}
	}
}

func (s *Sender) transmit() {
	s.mu.Lock()
	frame := s.frame
	s.dirty = false
	s.sequence++
	if s.sequence == 0 {
		s.sequence = 1
	}
	seq := s.sequence
	s.mu.Unlock()

	packet := artnet.BuildDMXPacket(s.cfg.WireUniverse, frame[:], seq)

	st := s.Status()
	if _, err := s.conn.Write(packet); err != nil {
		st.Degraded = true
		st.LastError = err.Error()
		log.Printf("[artnet] send to %s failed: %v", s.cfg.Target, err)
	} else {
		st.Degraded = false
		st.LastError = ""
		st.PacketCount++
		st.LastSequence = seq
		s.lastSend = time.Now()
	}
	st.Running = true
	s.status.Store(st)
}
