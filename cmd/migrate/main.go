// Command migrate manages the database schema. It applies the SQL files
// under migrations/ with golang-migrate and can scaffold new ones.
//
// Usage:
//
//	migrate up                  apply all pending migrations
//	migrate down                roll back everything
//	migrate step <n>            apply n migrations (negative rolls back)
//	migrate version             print the current schema version
//	migrate force <version>     reset a dirty version marker
//	migrate create <name>       scaffold an empty up/down pair
//	migrate list                list available migrations
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/retailcore/backend/internal/infrastructure/migration"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "migrations", "path to the migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	command := args[0]

	log := logger.New(config.LogConfig{Level: logLevel, Format: "console", Output: "stdout"})
	defer func() { _ = log.Sync() }()

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("resolve migrations path", zap.Error(err))
	}
	migrationsPath = absPath

	// create and list work without a database.
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("migration name required: migrate create <name>")
		}
		pair, err := migration.CreateFiles(migrationsPath, args[1])
		if err != nil {
			log.Fatal("create migration", zap.Error(err))
		}
		log.Info("migration created",
			zap.String("version", pair.Version),
			zap.String("up", pair.UpPath),
			zap.String("down", pair.DownPath))
		return
	case "list":
		names, err := migration.ListFiles(migrationsPath)
		if err != nil {
			log.Fatal("list migrations", zap.Error(err))
		}
		if len(names) == 0 {
			log.Info("no migrations found", zap.String("path", migrationsPath))
			return
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("migrate up", zap.Error(err))
		}
	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("migrate down", zap.Error(err))
		}
	case "step":
		if len(args) < 2 {
			log.Fatal("step count required: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("migrate step", zap.Error(err))
		}
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("read version", zap.Error(err))
		}
		if version == 0 {
			log.Info("no migrations applied")
			return
		}
		log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	case "force":
		if len(args) < 2 {
			log.Fatal("version required: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid version", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("force version", zap.Error(err))
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-path dir] [-log-level level] <up|down|step|version|force|create|list> [args]")
}
