// Package sacn adapts github.com/gopatchy/sacn into the engine's output
// and input transport shape, grounded on gopatchy/artmap's use of the same
// library (shared sender across universes, per-universe registration,
// discovery announcements).
package sacn

import (
	"net"
	"sync/atomic"
	"time"

	upstream "github.com/gopatchy/sacn"

	"github.com/brightstage/dmxcore/internal/transport"
)

// SenderConfig configures the shared sACN sender used by every sACN
// output on a given network interface.
type SenderConfig struct {
	SourceName string // E1.31 source name announced via discovery
	Interface  string // empty = default interface
}

// SharedSender wraps one upstream sacn.Sender, reused across every
// wire-universe that multicasts or unicasts through it — mirroring the
// spec's "shares a transport per multicast group or per unicast target."
type SharedSender struct {
	inner *upstream.Sender
}

// NewSharedSender dials the upstream sender and starts universe
// discovery announcements.
func NewSharedSender(cfg SenderConfig) (*SharedSender, error) {
	s, err := upstream.NewSender(cfg.SourceName, cfg.Interface)
	if err != nil {
		return nil, err
	}
	s.StartDiscovery()
	return &SharedSender{inner: s}, nil
}

// Close tears down the shared sender.
func (s *SharedSender) Close() error {
	return s.inner.Close()
}

// UniverseSender sends composed frames for one wire universe, either to
// its multicast group (registered with the shared sender) or to a fixed
// unicast target.
type UniverseSender struct {
	shared       *SharedSender
	wireUniverse int
	unicast      *net.UDPAddr

	targetFPS     int
	idleKeepAlive time.Duration

	status atomic.Value
	lastSend time.Time
	lastFrame transport.Frame
	dirty     bool
}

// NewUniverseSender registers wireUniverse with the shared sender (for
// multicast) or records a fixed unicast target.
func NewUniverseSender(shared *SharedSender, wireUniverse int, unicastTarget string, targetFPS int) (*UniverseSender, error) {
	u := &UniverseSender{
		shared:        shared,
		wireUniverse:  wireUniverse,
		targetFPS:     targetFPS,
		idleKeepAlive: 2 * time.Second,
	}
	u.status.Store(transport.Status{WireUniverse: wireUniverse})

	if unicastTarget != "" {
		addr, err := net.ResolveUDPAddr("udp", unicastTarget)
		if err != nil {
			return nil, err
		}
		u.unicast = addr
	} else {
		shared.inner.RegisterUniverse(wireUniverse)
	}

	st := u.Status()
	st.Running = true
	u.status.Store(st)
	return u, nil
}

// Send transmits the frame immediately. Unlike the Art-Net sender, the
// upstream sacn.Sender already paces multicast traffic per its own
// discovery/keep-alive cycle, so this transport only enforces the
// configured FPS ceiling locally (spec's "send rate is capped at the
// configured FPS").
func (u *UniverseSender) Send(wireUniverse int, frame transport.Frame) error {
	if u.targetFPS > 0 {
		minInterval := time.Second / time.Duration(u.targetFPS)
		if time.Since(u.lastSend) < minInterval {
			u.lastFrame = frame
			u.dirty = true
			return nil
		}
	}
	return u.transmit(frame)
}

func (u *UniverseSender) transmit(frame transport.Frame) error {
	var err error
	if u.unicast != nil {
		err = u.shared.inner.SendDMXUnicast(u.unicast, u.wireUniverse, frame[:])
	} else {
		err = u.shared.inner.SendDMX(u.wireUniverse, frame[:])
	}

	st := u.Status()
	if err != nil {
		st.Degraded = true
		st.LastError = err.Error()
	} else {
		st.Degraded = false
		st.LastError = ""
		st.PacketCount++
		u.lastSend = time.Now()
		u.dirty = false
	}
	u.status.Store(st)
	return err
}

// Status returns the current status snapshot.
func (u *UniverseSender) Status() transport.Status {
	return u.status.Load().(transport.Status)
}

// Close is a no-op per universe; the shared sender owns the socket.
func (u *UniverseSender) Close() error {
	return nil
}
