package artnet

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightstage/dmxcore/internal/transport"
	"github.com/brightstage/dmxcore/pkg/artnet"
)

// ReceiverConfig configures one Art-Net input. Filtering order on every
// datagram follows spec §4.3 exactly: header check, loopback filter,
// whitelist/blacklist, then wire-universe match.
type ReceiverConfig struct {
	BindAddr      string // e.g. "0.0.0.0:6454"; defaults to ":6454"
	EngineUniverseID int  // the local universe this input feeds
	WireUniverse  int    // 1-indexed; packets for any other wire universe are dropped
	IgnoreSelf    bool
	LocalIPs      map[string]bool // computed once at startup by the caller
	SourceIP      string          // accept-only filter; empty disables
	IgnoreIP      string          // drop filter; empty disables
	Handler       transport.FrameHandler
}

// Receiver is a UDP listener that decodes ArtDmx packets and dispatches
// them to the engine via Handler, grounded on the pack's standalone
// Art-Net receiver (frame capture/parse logic) generalized from a test
// fixture into a live input transport.
type Receiver struct {
	cfg  ReceiverConfig
	conn *net.UDPConn

	stopCh chan struct{}
	wg     sync.WaitGroup
	status atomic.Value
}

// NewReceiver constructs a Receiver without starting it.
func NewReceiver(cfg ReceiverConfig) *Receiver {
	if cfg.BindAddr == "" {
		cfg.BindAddr = ":6454"
	}
	r := &Receiver{cfg: cfg, stopCh: make(chan struct{})}
	r.status.Store(transport.Status{WireUniverse: cfg.WireUniverse})
	return r
}

// Start binds the UDP socket and begins the receive loop.
func (r *Receiver) Start() error {
	addr, err := net.ResolveUDPAddr("udp", r.cfg.BindAddr)
	if err != nil {
		r.markDegraded(err)
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		r.markDegraded(err)
		return err
	}
	r.conn = conn

	st := r.Status()
	st.Running = true
	st.BindAddr = conn.LocalAddr().String()
	r.status.Store(st)

	r.wg.Add(1)
	go r.receiveLoop()
	return nil
}

// Stop closes the socket and waits for the receive loop to exit.
func (r *Receiver) Stop() error {
	close(r.stopCh)
	if r.conn != nil {
		_ = r.conn.Close()
	}
	r.wg.Wait()

	st := r.Status()
	st.Running = false
	r.status.Store(st)
	return nil
}

// Status returns the current status snapshot.
func (r *Receiver) Status() transport.Status {
	return r.status.Load().(transport.Status)
}

func (r *Receiver) markDegraded(err error) {
	st := r.Status()
	st.Degraded = true
	st.LastError = err.Error()
	r.status.Store(st)
}

func (r *Receiver) receiveLoop() {
	defer r.wg.Done()

	buf := make([]byte, 2048)
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		_ = r.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, srcAddr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-r.stopCh:
				return
			default:
				log.Printf("[artnet] read error on %s: %v", r.cfg.BindAddr, err)
				continue
			}
		}

		pkt, err := artnet.ParseDMXPacket(buf[:n])
		if err != nil {
			continue // malformed/non-DMX packet: silent drop, counter not incremented
		}

		sourceIP := srcAddr.IP.String()
		if r.cfg.IgnoreSelf && r.cfg.LocalIPs != nil && r.cfg.LocalIPs[sourceIP] {
			continue
		}
		if r.cfg.IgnoreIP != "" && sourceIP == r.cfg.IgnoreIP {
			continue
		}
		if r.cfg.SourceIP != "" && sourceIP != r.cfg.SourceIP {
			continue
		}
		if r.cfg.WireUniverse != 0 && pkt.Universe != r.cfg.WireUniverse {
			continue
		}

		st := r.Status()
		st.PacketCount++
		st.LastSequence = pkt.Sequence
		r.status.Store(st)

		if r.cfg.Handler != nil {
			r.cfg.Handler(r.cfg.EngineUniverseID, pkt.Data)
		}
	}
}
