package engine

import "github.com/brightstage/dmxcore/internal/broadcast"

// Snapshot returns a copy of a universe's composed output track (the
// pre-policy-override intent), the baseline a scene capture reads (spec
// §9 OQ1).
func (e *Engine) Snapshot(universeID int) [512]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.universeLocked(universeID).output.GetAll()
}

// IsInputControlled reports whether an active, non-bypassed passthrough
// input currently owns (universeID, channel).
func (e *Engine) IsInputControlled(universeID, channel int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inputControlsLocked(e.universeLocked(universeID), channel)
}

// IsGroupControlled reports whether (universeID, channel) is a member of
// any enabled group — "indirectly controlled" for scene-target filtering
// purposes (spec §4.7).
func (e *Engine) IsGroupControlled(universeID, channel int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, g := range e.groupsByID {
		if !g.Enabled {
			continue
		}
		if _, ok := g.HasMember(universeID, channel); ok {
			return true
		}
	}
	return false
}

// InputBypassActive reports whether global input bypass is on.
func (e *Engine) InputBypassActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inputBypass
}

// GlobalGrandmaster returns the current global grandmaster value.
func (e *Engine) GlobalGrandmaster() byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.globalGrandmaster
}

// UniverseGrandmaster returns universeID's current grandmaster value.
func (e *Engine) UniverseGrandmaster(universeID int) byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.universeLocked(universeID).universeGrandmaster
}

// GroupMaster returns a group's current master value and whether the
// group exists.
func (e *Engine) GroupMaster(groupID string) (byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groupsByID[groupID]
	if !ok {
		return 0, false
	}
	return g.Master, true
}

// GroupMasterInputControlled reports whether groupID's physical master
// channel (if any) is currently input-controlled — scene recall skips
// restoring such groups' masters (spec §4.7).
func (e *Engine) GroupMasterInputControlled(groupID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groupsByID[groupID]
	if !ok || g.PhysicalMaster == nil {
		return false
	}
	return e.inputControlsLocked(e.universeLocked(g.PhysicalMaster.Universe), g.PhysicalMaster.Channel)
}

// RestoreGroupMaster applies a scene-captured master value to a group,
// tagged as a scene_recall write.
func (e *Engine) RestoreGroupMaster(groupID string, master byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groupsByID[groupID]
	if !ok {
		return
	}
	e.applyGroupLocked(g, master, SourceSceneRecall)
}

// SetActiveScene broadcasts which scene is now active (empty id means
// none); it performs no channel writes of its own.
func (e *Engine) SetActiveScene(sceneID string) {
	e.fabric.Publish(broadcast.ActiveSceneChangedEvent{SceneID: sceneID})
}
