package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/brightstage/dmxcore/internal/broadcast"
	"github.com/brightstage/dmxcore/internal/config"
	"github.com/brightstage/dmxcore/internal/database/models"
	"github.com/brightstage/dmxcore/internal/database/repositories"
	"github.com/brightstage/dmxcore/internal/engine"
	"github.com/brightstage/dmxcore/internal/groups"
	"github.com/brightstage/dmxcore/internal/mapping"
	"github.com/brightstage/dmxcore/internal/netdiscover"
	"github.com/brightstage/dmxcore/internal/scene"
	"github.com/brightstage/dmxcore/internal/transport"
	"github.com/brightstage/dmxcore/internal/transport/artnet"
	"github.com/brightstage/dmxcore/internal/transport/mock"
	"github.com/brightstage/dmxcore/internal/transport/sacn"
	"github.com/brightstage/dmxcore/internal/transport/midi"
)

// runningTransports collects every transport this process started, so
// shutdown can tear them all down regardless of protocol.
type runningTransports struct {
	receivers []transport.Receiver
	senders   []transport.Sender
	midiRecvs []*midi.Receiver
	sacnSenders []*sacn.SharedSender
}

// logSink is the default broadcast.Sink when no external caller has
// supplied a websocket connection to wrap — every event still reaches a
// log line instead of being silently dropped.
type logSink struct{}

func (logSink) Deliver(e broadcast.Event) {
	log.Printf("[broadcast] %s", e.EventKind())
}

// buildFabric sets up the client broadcast fabric with the always-on
// logging sink.
func buildFabric() *broadcast.Fabric {
	f := broadcast.NewFabric()
	f.AddSink(logSink{})
	return f
}

// loadUniverses reads every persisted universe and its output/input
// descriptors, registers them with eng, and starts their concrete
// transports. It returns the set of running transports for shutdown.
func loadUniverses(
	ctx context.Context,
	cfg *config.Config,
	eng *engine.Engine,
	sceneEng *scene.Engine,
	universeRepo *repositories.UniverseRepository,
	midiRepo *repositories.MIDIRepository,
	pool *transport.ConnPool,
	sharedSACN **sacn.SharedSender,
	sceneByID map[string]*scene.Scene,
) (*runningTransports, error) {
	rt := &runningTransports{}

	localIPs, err := netdiscover.LocalIPs()
	if err != nil {
		return nil, fmt.Errorf("resolve local interface addresses: %w", err)
	}

	universes, err := universeRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universes: %w", err)
	}

	ccMappings, err := midiRepo.FindAllCCMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load MIDI CC mappings: %w", err)
	}
	noteTriggers, err := midiRepo.FindAllTriggers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load MIDI note triggers: %w", err)
	}

	for _, u := range universes {
		eng.AddUniverse(u.ID)
		eng.SetUniverseGrandmaster(u.ID, byte(u.UniverseGrandmaster))

		for _, out := range u.Outputs {
			if !out.Enabled || !protocolEnabled(cfg, out.Protocol) {
				continue
			}
			sender, err := attachOutput(cfg, pool, sharedSACN, out)
			if err != nil {
				log.Printf("[engine] universe %d: output %s (%s) failed to start: %v", u.ID, out.ID, out.Protocol, err)
				continue
			}
			eng.AttachOutput(u.ID, sender)
			rt.senders = append(rt.senders, sender)
		}

		for _, in := range u.Inputs {
			if !in.Enabled || !protocolEnabled(cfg, in.Protocol) {
				continue
			}
			eng.SetInputConfig(u.ID, inputConfigFromModel(in))

			switch in.Protocol {
			case "artnet", "sacn":
				recv, err := attachNetReceiver(cfg, localIPs, eng, in)
				if err != nil {
					log.Printf("[engine] universe %d: input %s (%s) failed to start: %v", u.ID, in.ID, in.Protocol, err)
					continue
				}
				rt.receivers = append(rt.receivers, recv)
			case "midi":
				recv := attachMIDIReceiver(eng, sceneEng, sceneByID, in, ccMappings, noteTriggers)
				if err := recv.Start(); err != nil {
					log.Printf("[engine] universe %d: MIDI input %s failed to start: %v", u.ID, in.ID, err)
					continue
				}
				rt.midiRecvs = append(rt.midiRecvs, recv)
			default:
				log.Printf("[engine] universe %d: input %s has unknown protocol %q, skipping", u.ID, in.ID, in.Protocol)
			}
		}
	}

	return rt, nil
}

// attachOutput builds the concrete sender for one output descriptor.
func attachOutput(cfg *config.Config, pool *transport.ConnPool, sharedSACN **sacn.SharedSender, out models.OutputDescriptor) (transport.Sender, error) {
	switch out.Protocol {
	case "artnet":
		target := ""
		if out.Target != nil {
			target = *out.Target
		} else {
			iface := ""
			if out.Interface != nil {
				iface = *out.Interface
			}
			resolved, err := netdiscover.ResolveBroadcast(iface)
			if err != nil {
				return nil, err
			}
			target = resolved
		}
		port := out.Port
		if port == 0 {
			port = cfg.ArtNetPort
		}
		return artnet.NewSender(artnet.SenderConfig{
			Target:        target,
			Port:          port,
			WireUniverse:  out.WireUniverse,
			TargetFPS:     cfg.ArtNetTargetFPS,
			IdleKeepAlive: cfg.ArtNetIdleKeepAlive,
		}, pool)
	case "sacn":
		if *sharedSACN == nil {
			iface := ""
			if out.Interface != nil {
				iface = *out.Interface
			}
			shared, err := sacn.NewSharedSender(sacn.SenderConfig{SourceName: "dmxcore", Interface: iface})
			if err != nil {
				return nil, err
			}
			*sharedSACN = shared
		}
		target := ""
		if out.Target != nil {
			target = *out.Target
		}
		return sacn.NewUniverseSender(*sharedSACN, out.WireUniverse, target, cfg.ArtNetTargetFPS)
	case "mock":
		return mock.NewSender(cfg.IsDevelopment(), 16), nil
	default:
		return nil, fmt.Errorf("unknown output protocol %q", out.Protocol)
	}
}

// attachNetReceiver builds the concrete Art-Net or sACN receiver for one
// input descriptor, wiring its frames straight into the engine.
func attachNetReceiver(cfg *config.Config, localIPs map[string]bool, eng *engine.Engine, in models.InputDescriptor) (transport.Receiver, error) {
	iface := ""
	if in.Interface != nil {
		iface = *in.Interface
	}

	switch in.Protocol {
	case "artnet":
		r := artnet.NewReceiver(artnet.ReceiverConfig{
			BindAddr:         fmt.Sprintf(":%d", cfg.ArtNetPort),
			EngineUniverseID: in.UniverseID,
			WireUniverse:     in.WireUniverse,
			IgnoreSelf:       in.IgnoreSelf,
			LocalIPs:         localIPs,
			Handler:          eng.OnInputFrame,
		})
		if err := r.Start(); err != nil {
			return nil, err
		}
		return r, nil
	case "sacn":
		r, err := sacn.NewReceiver(sacn.ReceiverConfig{
			Interface:        iface,
			WireUniverse:     in.WireUniverse,
			EngineUniverseID: in.UniverseID,
			IgnoreSelf:       in.IgnoreSelf,
			LocalIPs:         localIPs,
			Handler:          eng.OnInputFrame,
		})
		if err != nil {
			return nil, err
		}
		if err := r.Start(); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown net protocol %q", in.Protocol)
	}
}

// attachMIDIReceiver builds the MIDI input for one descriptor. The
// descriptor's Interface field carries the MIDI port name (or
// "network:<peer>" for an rtpMIDI session), reusing the same column the
// network transports use for their interface name.
func attachMIDIReceiver(
	eng *engine.Engine,
	sceneEng *scene.Engine,
	sceneByID map[string]*scene.Scene,
	in models.InputDescriptor,
	ccMappings []models.MIDICCMapping,
	noteTriggers []models.MIDITrigger,
) *midi.Receiver {
	portName := ""
	if in.Interface != nil {
		portName = *in.Interface
	}
	recv := midi.NewReceiver(portName)
	recv.SetMappings(ccMappingsFromModels(in.UniverseID, ccMappings), noteTriggersFromModels(noteTriggers))
	recv.SetFrameHandler(eng.OnInputFrame)
	recv.SetNoteHandler(func(trigger midi.NoteTrigger) {
		dispatchNoteTrigger(eng, sceneEng, sceneByID, trigger)
	})
	return recv
}

// dispatchNoteTrigger applies one fired MIDI note trigger's action (spec
// §6): recall a scene, activate blackout, or apply a group's master
// directly. A blackout trigger only activates blackout; it never
// releases it.
func dispatchNoteTrigger(eng *engine.Engine, sceneEng *scene.Engine, sceneByID map[string]*scene.Scene, trigger midi.NoteTrigger) {
	switch trigger.Action {
	case midi.NoteActionScene:
		if s, ok := sceneByID[trigger.TargetID]; ok {
			sceneEng.Recall(s, scene.TransitionFade, s.DefaultFadeMS, false)
		}
	case midi.NoteActionBlackout:
		eng.Blackout()
	case midi.NoteActionGroup:
		eng.ApplyGroupDirect(trigger.TargetID, 255)
	}
}

func ccMappingsFromModels(universeID int, rows []models.MIDICCMapping) []midi.CCMapping {
	var out []midi.CCMapping
	for _, r := range rows {
		if r.Universe != universeID {
			continue
		}
		out = append(out, midi.CCMapping{
			ID:          r.ID,
			CCNumber:    uint8(r.CCNumber),
			MIDIChannel: int8(r.MIDIChannel),
			UniverseID:  r.Universe,
			Channel:     r.Channel,
		})
	}
	return out
}

func noteTriggersFromModels(rows []models.MIDITrigger) []midi.NoteTrigger {
	out := make([]midi.NoteTrigger, len(rows))
	for i, r := range rows {
		out[i] = midi.NoteTrigger{
			ID:          r.ID,
			Note:        uint8(r.Note),
			MIDIChannel: int8(r.MIDIChannel),
			Action:      midi.NoteAction(r.Action),
			TargetID:    r.TargetID,
		}
	}
	return out
}

func inputConfigFromModel(in models.InputDescriptor) engine.InputConfig {
	return engine.InputConfig{
		Protocol:    protocolFromString(in.Protocol),
		RangeStart:  in.RangeStart,
		RangeEnd:    in.RangeEnd,
		Passthrough: passthroughFromString(in.Passthrough),
		Merge:       mergeFromString(in.Merge),
	}
}

// protocolEnabled reports whether cfg permits starting a transport for
// protocol ("artnet" | "sacn" | "midi" | "mock"). Mock outputs/inputs are
// always allowed — they exist for development and testing regardless of
// which real transports are enabled.
func protocolEnabled(cfg *config.Config, protocol string) bool {
	switch protocol {
	case "artnet":
		return cfg.ArtNetEnabled
	case "sacn":
		return cfg.SACNEnabled
	case "midi":
		return cfg.MIDIEnabled
	default:
		return true
	}
}

func protocolFromString(s string) transport.Protocol {
	switch s {
	case "artnet":
		return transport.ProtocolArtNet
	case "sacn":
		return transport.ProtocolSACN
	case "midi":
		return transport.ProtocolMIDI
	case "mock":
		return transport.ProtocolMock
	default:
		return transport.ProtocolNone
	}
}

func passthroughFromString(s string) engine.PassthroughMode {
	switch s {
	case "view_only":
		return engine.PassthroughViewOnly
	case "faders_output":
		return engine.PassthroughFadersOutput
	case "output_only":
		return engine.PassthroughOutputOnly
	default:
		return engine.PassthroughOff
	}
}

func mergeFromString(s string) engine.MergePolicy {
	if s == "ltp" {
		return engine.MergeLTP
	}
	return engine.MergeHTP
}

// loadMapping reads the single current channel mapping configuration (if
// any) and loads it into the engine's mapping table.
func loadMapping(ctx context.Context, eng *engine.Engine, repo *repositories.MappingRepository) error {
	cfg, err := repo.FindCurrent(ctx)
	if err != nil {
		return fmt.Errorf("load channel mapping: %w", err)
	}
	if cfg == nil {
		return nil
	}

	byKey := make(map[[2]int]*mapping.Entry)
	var order [][2]int
	for _, row := range cfg.Entries {
		key := [2]int{row.SrcUniverse, row.SrcChannel}
		entry, ok := byKey[key]
		if !ok {
			entry = &mapping.Entry{SrcUniverse: row.SrcUniverse, SrcChannel: row.SrcChannel}
			byKey[key] = entry
			order = append(order, key)
		}
		entry.Destinations = append(entry.Destinations, mapping.Destination{
			Kind:     destKindFromString(row.DestKind),
			Universe: row.DestUniverse,
			Channel:  row.DestChannel,
		})
	}

	entries := make([]mapping.Entry, 0, len(order))
	for _, key := range order {
		entries = append(entries, *byKey[key])
	}

	unmapped := mapping.UnmappedPassthrough
	if cfg.UnmappedBehavior == "ignore" {
		unmapped = mapping.UnmappedIgnore
	}
	eng.SetChannelMapping(entries, unmapped)
	return nil
}

func destKindFromString(s string) mapping.DestinationKind {
	switch s {
	case "universe_master":
		return mapping.DestUniverseMaster
	case "global_master":
		return mapping.DestGlobalMaster
	default:
		return mapping.DestChannel
	}
}

// loadGroups reads every persisted group and registers it with the
// engine.
func loadGroups(ctx context.Context, eng *engine.Engine, repo *repositories.GroupRepository) error {
	rows, err := repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}
	for _, row := range rows {
		eng.AddGroup(groupFromModel(row))
	}
	return nil
}

func groupFromModel(row models.Group) *groups.Group {
	g := &groups.Group{
		ID:      row.ID,
		Name:    row.Name,
		Mode:    groupModeFromString(row.Mode),
		Master:  byte(row.Master),
		Enabled: row.Enabled,
		Color:   groups.HSL{H: row.ColorH, S: row.ColorS, L: row.ColorL},
	}
	if row.PhysicalMasterUniv != nil && row.PhysicalMasterChan != nil {
		g.PhysicalMaster = &groups.ChannelRef{Universe: *row.PhysicalMasterUniv, Channel: *row.PhysicalMasterChan}
	}
	for _, m := range row.Members {
		g.Members = append(g.Members, groups.Member{
			Kind:     memberKindFromString(m.Kind),
			Universe: m.Universe,
			Channel:  m.Channel,
			Base:     byte(m.Base),
			Role:     groups.ColorRole(m.Role),
		})
	}
	return g
}

func groupModeFromString(s string) groups.Mode {
	switch s {
	case "follow":
		return groups.ModeFollow
	case "color_mixer":
		return groups.ModeColorMixer
	default:
		return groups.ModeProportional
	}
}

func memberKindFromString(s string) groups.MemberKind {
	switch s {
	case "universe_master":
		return groups.MemberUniverseMaster
	case "global_master":
		return groups.MemberGlobalMaster
	case "color_role":
		return groups.MemberColorRole
	default:
		return groups.MemberChannel
	}
}

// loadParked re-applies every pinned channel override.
func loadParked(ctx context.Context, eng *engine.Engine, repo *repositories.ParkedRepository) error {
	rows, err := repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load parked channels: %w", err)
	}
	for _, row := range rows {
		eng.ParkChannel(row.Universe, row.Channel, byte(row.Value))
	}
	return nil
}

// loadScenes reads every stored scene into an in-memory lookup table the
// scene engine and MIDI note triggers recall from.
func loadScenes(ctx context.Context, repo *repositories.SceneRepository) (map[string]*scene.Scene, error) {
	rows, err := repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scenes: %w", err)
	}

	out := make(map[string]*scene.Scene, len(rows))
	for _, row := range rows {
		full, err := repo.FindByID(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("load scene %s: %w", row.ID, err)
		}
		if full == nil {
			continue
		}
		out[full.ID] = sceneFromModel(full)
	}
	return out, nil
}

func sceneFromModel(row *models.Scene) *scene.Scene {
	s := &scene.Scene{
		ID:            row.ID,
		Name:          row.Name,
		DefaultFadeMS: row.DefaultFadeMS,
	}
	for _, c := range row.ChannelValues {
		s.Channels = append(s.Channels, scene.ChannelTarget{Universe: c.Universe, Channel: c.Channel, Value: byte(c.Value)})
	}
	for _, g := range row.GroupValues {
		s.Groups = append(s.Groups, scene.GroupTarget{GroupID: g.GroupID, Master: byte(g.Master)})
	}
	for _, m := range row.MasterValues {
		s.Masters = append(s.Masters, scene.MasterTarget{Universe: m.Universe, Value: byte(m.Value)})
	}
	return s
}

// shutdown tears down every running transport concurrently via
// errgroup, logging (rather than failing) individual teardown errors
// since a stuck socket on one universe should never block the rest of
// the process from exiting.
func (rt *runningTransports) shutdown() {
	var g errgroup.Group

	for _, r := range rt.receivers {
		r := r
		g.Go(func() error {
			if err := r.Stop(); err != nil {
				log.Printf("[engine] receiver stop error: %v", err)
			}
			return nil
		})
	}
	for _, r := range rt.midiRecvs {
		r := r
		g.Go(func() error {
			if err := r.Stop(); err != nil {
				log.Printf("[engine] MIDI receiver stop error: %v", err)
			}
			return nil
		})
	}
	for _, s := range rt.senders {
		s := s
		g.Go(func() error {
			if err := s.Close(); err != nil {
				log.Printf("[engine] sender close error: %v", err)
			}
			return nil
		})
	}
	for _, s := range rt.sacnSenders {
		s := s
		g.Go(func() error {
			if err := s.Close(); err != nil {
				log.Printf("[engine] sACN shared sender close error: %v", err)
			}
			return nil
		})
	}

	_ = g.Wait()
}
