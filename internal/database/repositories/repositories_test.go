package repositories

import (
	"context"
	"testing"

	"github.com/brightstage/dmxcore/internal/database/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB holds the test database.
type testDB struct {
	DB *gorm.DB
}

// setupTestDB creates an in-memory SQLite database for testing repositories.
func setupTestDB(t *testing.T) (*testDB, func()) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}

	return &testDB{DB: db}, cleanup
}

func TestUniverseRepository_CRUD(t *testing.T) {
	testDB, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUniverseRepository(testDB.DB)
	ctx := context.Background()

	u := &models.Universe{ID: 1, Name: "Stage", UniverseGrandmaster: 255}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.AddOutput(ctx, &models.OutputDescriptor{UniverseID: 1, Protocol: "artnet", WireUniverse: 0, Enabled: true}); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}
	if err := repo.AddInput(ctx, &models.InputDescriptor{UniverseID: 1, Protocol: "artnet", RangeStart: 1, RangeEnd: 512, Passthrough: "faders_output", Merge: "htp"}); err != nil {
		t.Fatalf("AddInput failed: %v", err)
	}

	found, err := repo.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected universe to be found")
	}
	if len(found.Outputs) != 1 || len(found.Inputs) != 1 {
		t.Errorf("expected 1 output and 1 input, got %d outputs and %d inputs", len(found.Outputs), len(found.Inputs))
	}

	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	found, err = repo.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindByID after delete failed: %v", err)
	}
	if found != nil {
		t.Error("expected universe to be gone after Delete")
	}
}

func TestMappingRepository_ReplaceIsWholesale(t *testing.T) {
	testDB, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewMappingRepository(testDB.DB)
	ctx := context.Background()

	first := &models.ChannelMappingConfig{
		UnmappedBehavior: "passthrough",
		Entries: []models.ChannelMappingEntry{
			{SrcUniverse: 1, SrcChannel: 1, DestKind: "channel", DestUniverse: 2, DestChannel: 1},
		},
	}
	if err := repo.Replace(ctx, first); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	second := &models.ChannelMappingConfig{
		UnmappedBehavior: "ignore",
		Entries: []models.ChannelMappingEntry{
			{SrcUniverse: 1, SrcChannel: 2, DestKind: "universe_master", DestUniverse: 3},
		},
	}
	if err := repo.Replace(ctx, second); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	current, err := repo.FindCurrent(ctx)
	if err != nil {
		t.Fatalf("FindCurrent failed: %v", err)
	}
	if current.UnmappedBehavior != "ignore" {
		t.Errorf("expected the second config to be current, got %q", current.UnmappedBehavior)
	}
	if len(current.Entries) != 1 || current.Entries[0].SrcChannel != 2 {
		t.Errorf("expected the first config's entries to be gone, got %+v", current.Entries)
	}
}

func TestGroupRepository_CreateWithMembersAndReplace(t *testing.T) {
	testDB, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGroupRepository(testDB.DB)
	ctx := context.Background()

	g := &models.Group{
		Name: "Wash",
		Mode: "proportional",
		Members: []models.GroupMember{
			{Kind: "channel", Universe: 1, Channel: 1, Base: 255},
			{Kind: "channel", Universe: 1, Channel: 2, Base: 200},
		},
	}
	if err := repo.CreateWithMembers(ctx, g); err != nil {
		t.Fatalf("CreateWithMembers failed: %v", err)
	}
	if g.ID == "" {
		t.Fatal("expected group ID to be set after Create")
	}

	found, err := repo.FindByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(found.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(found.Members))
	}

	if err := repo.ReplaceMembers(ctx, g.ID, []models.GroupMember{
		{Kind: "channel", Universe: 1, Channel: 3, Base: 128},
	}); err != nil {
		t.Fatalf("ReplaceMembers failed: %v", err)
	}

	found, err = repo.FindByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("FindByID after replace failed: %v", err)
	}
	if len(found.Members) != 1 || found.Members[0].Channel != 3 {
		t.Errorf("expected replaced member set, got %+v", found.Members)
	}
}

func TestParkedRepository_UpsertAndDelete(t *testing.T) {
	testDB, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewParkedRepository(testDB.DB)
	ctx := context.Background()

	if err := repo.Upsert(ctx, 1, 5, 128); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.Upsert(ctx, 1, 5, 200); err != nil {
		t.Fatalf("Upsert (update) failed: %v", err)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 || all[0].Value != 200 {
		t.Errorf("expected a single parked channel with value 200, got %+v", all)
	}

	if err := repo.Delete(ctx, 1, 5); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	all, err = repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll after delete failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no parked channels after Delete, got %+v", all)
	}
}

func TestSceneRepository_CreateAndReplaceValues(t *testing.T) {
	testDB, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSceneRepository(testDB.DB)
	ctx := context.Background()

	s := &models.Scene{
		Name: "Cue 1",
		ChannelValues: []models.SceneChannelValue{
			{Universe: 1, Channel: 1, Value: 255},
		},
		MasterValues: []models.SceneMasterValue{
			{Universe: -1, Value: 255},
		},
	}
	if err := repo.CreateWithValues(ctx, s); err != nil {
		t.Fatalf("CreateWithValues failed: %v", err)
	}

	found, err := repo.FindByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(found.ChannelValues) != 1 || len(found.MasterValues) != 1 {
		t.Fatalf("expected captured values to round-trip, got %+v", found)
	}

	found.ChannelValues = []models.SceneChannelValue{
		{Universe: 1, Channel: 2, Value: 100},
	}
	found.MasterValues = nil
	if err := repo.ReplaceValues(ctx, found); err != nil {
		t.Fatalf("ReplaceValues failed: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("FindByID after replace failed: %v", err)
	}
	if len(reloaded.ChannelValues) != 1 || reloaded.ChannelValues[0].Channel != 2 {
		t.Errorf("expected replaced channel values, got %+v", reloaded.ChannelValues)
	}
	if len(reloaded.MasterValues) != 0 {
		t.Errorf("expected master values cleared, got %+v", reloaded.MasterValues)
	}
}

func TestMIDIRepository_CCMappingsAndTriggers(t *testing.T) {
	testDB, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewMIDIRepository(testDB.DB)
	ctx := context.Background()

	if err := repo.CreateCCMapping(ctx, &models.MIDICCMapping{CCNumber: 1, MIDIChannel: 1, Universe: 1, Channel: 1}); err != nil {
		t.Fatalf("CreateCCMapping failed: %v", err)
	}
	if err := repo.CreateTrigger(ctx, &models.MIDITrigger{Note: 60, MIDIChannel: 1, Action: "scene_recall", TargetID: "s1"}); err != nil {
		t.Fatalf("CreateTrigger failed: %v", err)
	}

	mappings, err := repo.FindAllCCMappings(ctx)
	if err != nil {
		t.Fatalf("FindAllCCMappings failed: %v", err)
	}
	if len(mappings) != 1 {
		t.Errorf("expected 1 CC mapping, got %d", len(mappings))
	}

	triggers, err := repo.FindAllTriggers(ctx)
	if err != nil {
		t.Fatalf("FindAllTriggers failed: %v", err)
	}
	if len(triggers) != 1 {
		t.Errorf("expected 1 trigger, got %d", len(triggers))
	}
}

func TestSceneBoardRepository_CreateAndReplaceButtons(t *testing.T) {
	testDB, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSceneBoardRepository(testDB.DB)
	ctx := context.Background()

	board := &models.SceneBoard{
		Name: "Act 1",
		Buttons: []models.SceneBoardButton{
			{SceneID: "scene-1", Label: "Open", Position: 0, Transition: "fade", FadeMS: 2000},
		},
	}
	if err := repo.CreateWithButtons(ctx, board); err != nil {
		t.Fatalf("CreateWithButtons failed: %v", err)
	}

	found, err := repo.FindByID(ctx, board.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found == nil || len(found.Buttons) != 1 {
		t.Fatalf("expected 1 button to round-trip, got %+v", found)
	}

	found.Buttons = []models.SceneBoardButton{
		{SceneID: "scene-2", Label: "Blackout", Position: 0, Transition: "instant"},
		{SceneID: "scene-3", Label: "Close", Position: 1, Transition: "crossfade", FadeMS: 3000},
	}
	if err := repo.ReplaceButtons(ctx, found); err != nil {
		t.Fatalf("ReplaceButtons failed: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, board.ID)
	if err != nil {
		t.Fatalf("FindByID after replace failed: %v", err)
	}
	if len(reloaded.Buttons) != 2 || reloaded.Buttons[0].Label != "Blackout" {
		t.Errorf("expected replaced buttons in position order, got %+v", reloaded.Buttons)
	}

	if err := repo.Delete(ctx, board.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	gone, err := repo.FindByID(ctx, board.ID)
	if err != nil {
		t.Fatalf("FindByID after delete failed: %v", err)
	}
	if gone != nil {
		t.Error("expected board to be gone after Delete")
	}
}
