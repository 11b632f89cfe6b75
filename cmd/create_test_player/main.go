package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"kushklicker/internal/db"
	"kushklicker/internal/domain"
	"kushklicker/internal/game"
	"kushklicker/internal/repository"
)

func main() {
	username := flag.String("username", "", "player name (random when empty)")
	kush := flag.Int64("kush", 0, "starting KUSH balance")
	flag.Parse()

	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	engine := game.NewEngine(repository.NewPostgresStore(pool), game.Options{})
	if err := engine.SeedCatalog(ctx); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	name := *username
	if name == "" {
		name = game.GenerateUsername()
	}

	p, err := engine.GetPlayerByUsername(ctx, name)
	switch {
	case err == nil:
		log.Printf("player already exists id=%s\n", p.ID)
	case errors.Is(err, domain.ErrNotFound):
		p, err = engine.CreatePlayer(ctx, game.NewPlayerInput{Username: name})
		if err != nil {
			log.Fatalf("create player failed: %v", err)
		}
		log.Printf("player created id=%s\n", p.ID)
	default:
		log.Fatalf("lookup failed: %v", err)
	}

	if *kush > 0 {
		p, err = engine.UpdatePlayer(ctx, p.ID, domain.PlayerPatch{TotalKush: kush})
		if err != nil {
			log.Fatalf("set balance failed: %v", err)
		}
	}

	log.Printf("player id=%s username=%s kush=%d clicks=%d per_click=%d\n",
		p.ID, p.Username, p.TotalKush, p.TotalClicks, p.PerClickMultiplier)
}
