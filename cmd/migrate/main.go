package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/database"
	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "number of migrations to run (0 = all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	dir, verb := migrate.Up, "Applied"
	if *down {
		dir, verb = migrate.Down, "Rolled back"
	}

	n, err := database.Migrate(db, dir, *steps)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("✅ %s %d migration(s)!\n", verb, n)
}
