package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/PortNumber53/lifesync-pro/backend/internal/config"
	"github.com/PortNumber53/lifesync-pro/backend/internal/migrations"
)

const usage = `Usage: %[1]s [command]

Manages the LifeSync Pro schema (users, subscriptions, payments, contacts,
newsletters). The provider-managed stripe.* tables are never touched.

Commands:
  (none)            apply pending migrations
  status            print the schema version and dirty flag
  fix               roll a dirty schema back to the last clean version
  force <version>   record <version> as applied without running SQL
`

func main() {
	_ = godotenv.Load(
		"../.env",
		".env",
	)

	cmd, args := "up", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("dbtool: load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("dbtool: open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("dbtool: ping database: %v", err)
	}

	if err := run(db, cmd, args); err != nil {
		log.Fatalf("dbtool %s: %v", cmd, err)
	}
}

func run(db *sql.DB, cmd string, args []string) error {
	switch cmd {
	case "up":
		log.Printf("dbtool: applying LifeSync Pro schema migrations")
		if err := migrations.Up(db); err != nil {
			return err
		}
		log.Printf("dbtool: schema is up to date")

	case "status":
		version, dirty, err := migrations.Status(db)
		if err != nil {
			return err
		}
		if version == 0 {
			log.Printf("dbtool: LifeSync Pro schema not installed yet")
			return nil
		}
		log.Printf("dbtool: LifeSync Pro schema at version %d (dirty: %t)", version, dirty)

	case "fix":
		log.Printf("dbtool: clearing dirty flag on LifeSync Pro schema")
		if err := migrations.FixDirtyDatabase(db); err != nil {
			return err
		}
		log.Printf("dbtool: dirty flag cleared; rerun without arguments to reapply")

	case "force":
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one version argument")
		}
		v, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		log.Printf("dbtool: recording LifeSync Pro schema version %d", v)
		if err := migrations.ForceVersion(db, uint(v)); err != nil {
			return err
		}

	default:
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}
	return nil
}
