package sacn

import (
	"net"
	"sync/atomic"

	upstream "github.com/gopatchy/sacn"

	"github.com/brightstage/dmxcore/internal/transport"
)

// ReceiverConfig configures one sACN input, grounded on
// gopatchy/artmap's per-universe sacn.NewUniverseReceiver usage.
type ReceiverConfig struct {
	Interface        string // empty = default
	WireUniverse     int
	EngineUniverseID int
	IgnoreSelf       bool
	LocalIPs         map[string]bool
	SourceIP         string
	IgnoreIP         string
	Handler          transport.FrameHandler
}

// Receiver wraps one upstream sacn.Receiver for a single universe.
type Receiver struct {
	cfg    ReceiverConfig
	inner  *upstream.Receiver
	status atomic.Value
}

// NewReceiver constructs (but does not start) a sACN input for one
// wire-universe.
func NewReceiver(cfg ReceiverConfig) (*Receiver, error) {
	var iface *net.Interface
	if cfg.Interface != "" {
		var err error
		iface, err = net.InterfaceByName(cfg.Interface)
		if err != nil {
			return nil, err
		}
	}

	inner, err := upstream.NewUniverseReceiver(iface, cfg.WireUniverse)
	if err != nil {
		return nil, err
	}

	r := &Receiver{cfg: cfg, inner: inner}
	r.status.Store(transport.Status{WireUniverse: cfg.WireUniverse})

	inner.SetHandler(func(src *net.UDPAddr, pkt interface{}) {
		data, ok := pkt.(*upstream.DataPacket)
		if !ok {
			return
		}
		r.handle(src, data)
	})
	return r, nil
}

func (r *Receiver) handle(src *net.UDPAddr, data *upstream.DataPacket) {
	sourceIP := src.IP.String()
	if r.cfg.IgnoreSelf && r.cfg.LocalIPs != nil && r.cfg.LocalIPs[sourceIP] {
		return
	}
	if r.cfg.IgnoreIP != "" && sourceIP == r.cfg.IgnoreIP {
		return
	}
	if r.cfg.SourceIP != "" && sourceIP != r.cfg.SourceIP {
		return
	}
	if data.Universe != r.cfg.WireUniverse {
		return
	}

	var frame transport.Frame
	copy(frame[:], data.Data)

	st := r.Status()
	st.PacketCount++
	r.status.Store(st)

	if r.cfg.Handler != nil {
		r.cfg.Handler(r.cfg.EngineUniverseID, frame)
	}
}

// Start begins receiving.
func (r *Receiver) Start() error {
	r.inner.Start()
	st := r.Status()
	st.Running = true
	r.status.Store(st)
	return nil
}

// Stop tears down the receiver.
func (r *Receiver) Stop() error {
	err := r.inner.Close()
	st := r.Status()
	st.Running = false
	r.status.Store(st)
	return err
}

// Status returns the current status snapshot.
func (r *Receiver) Status() transport.Status {
	return r.status.Load().(transport.Status)
}
