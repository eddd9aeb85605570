// Package main is the entry point for the DMX engine process: it loads
// persisted configuration, starts every configured Art-Net/sACN/MIDI
// transport, and runs the merge pipeline and scene engine until
// interrupted. It does not serve HTTP or WebSocket connections itself —
// that belongs to an external collaborator (spec §1); broadcast.Fabric's
// sinks are built to accept an externally-supplied connection once one
// exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/brightstage/dmxcore/internal/config"
	"github.com/brightstage/dmxcore/internal/database"
	"github.com/brightstage/dmxcore/internal/database/models"
	"github.com/brightstage/dmxcore/internal/database/repositories"
	"github.com/brightstage/dmxcore/internal/engine"
	"github.com/brightstage/dmxcore/internal/scene"
	"github.com/brightstage/dmxcore/internal/transport"
	"github.com/brightstage/dmxcore/internal/transport/sacn"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	printBanner(cfg)

	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 5,
		MaxOpenConn: 10,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations complete")

	universeRepo := repositories.NewUniverseRepository(db)
	mappingRepo := repositories.NewMappingRepository(db)
	groupRepo := repositories.NewGroupRepository(db)
	parkedRepo := repositories.NewParkedRepository(db)
	sceneRepo := repositories.NewSceneRepository(db)
	midiRepo := repositories.NewMIDIRepository(db)

	ctx := context.Background()

	fabric := buildFabric()
	eng := engine.New(cfg.JitterThreshold, fabric)
	sceneEng := scene.New(eng)

	sceneByID, err := loadScenes(ctx, sceneRepo)
	if err != nil {
		log.Fatalf("Failed to load scenes: %v", err)
	}

	pool := transport.NewConnPool()
	var sharedSACN *sacn.SharedSender

	rt, err := loadUniverses(ctx, cfg, eng, sceneEng, universeRepo, midiRepo, pool, &sharedSACN, sceneByID)
	if err != nil {
		log.Fatalf("Failed to load universes: %v", err)
	}
	if sharedSACN != nil {
		rt.sacnSenders = append(rt.sacnSenders, sharedSACN)
	}

	if err := loadMapping(ctx, eng, mappingRepo); err != nil {
		log.Fatalf("Failed to load channel mapping: %v", err)
	}
	if err := loadGroups(ctx, eng, groupRepo); err != nil {
		log.Fatalf("Failed to load groups: %v", err)
	}
	if err := loadParked(ctx, eng, parkedRepo); err != nil {
		log.Fatalf("Failed to load parked channels: %v", err)
	}

	log.Printf("Engine running: %d scene(s) loaded, %d output(s) and %d input(s) started",
		len(sceneByID), len(rt.senders), len(rt.receivers)+len(rt.midiRecvs))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down engine...")

	rt.shutdown()

	log.Println("Engine stopped")
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println("============================================")
	fmt.Println("  dmxcore engine")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  Art-Net:     %v (port %d, target %d fps)\n", cfg.ArtNetEnabled, cfg.ArtNetPort, cfg.ArtNetTargetFPS)
	fmt.Printf("  sACN:        %v\n", cfg.SACNEnabled)
	fmt.Printf("  MIDI:        %v\n", cfg.MIDIEnabled)
	fmt.Println("============================================")
}
