// Command migrate applies, inspects and rolls back the forum schema.
//
//	migrate up            apply pending SQL migrations
//	migrate auto          run gorm AutoMigrate (refused in production)
//	migrate status        print the schema plan and pending migrations
//	migrate down <ver>    roll back one SQL migration
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"

	"gorm.io/gorm"
)

type command func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error

var commands = map[string]command{
	"up":     migrateUp,
	"auto":   migrateAuto,
	"status": migrateStatus,
	"down":   migrateDown,
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate <up|auto|status|down> [version]")
	}
	flag.Parse()

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("load config", err)
	}
	db, err := database.Open(cfg)
	if err != nil {
		fatal("open database", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := cmd(context.Background(), db, cfg, flag.Args()[1:]); err != nil {
		_ = database.Close(db)
		fatal(flag.Arg(0), err)
	}
}

func fatal(step string, err error) {
	middleware.Logger.Error("migrate failed", slog.String("step", step), slog.String("error", err.Error()))
	os.Exit(1)
}

func migrateUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}
	middleware.Logger.Info("sql migrations applied")
	return nil
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return err
	}
	middleware.Logger.Info("automigrate finished", slog.Int("models", len(database.PersistentModels())))
	return nil
}

func migrateStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}
	fmt.Println(status.SchemaPlan)
	fmt.Printf("applied: %v\n", status.AppliedVersions)
	if len(status.PendingMigrations) == 0 {
		fmt.Println("pending: none")
	}
	for _, m := range status.PendingMigrations {
		fmt.Printf("pending: %s\n", m.String())
	}
	return nil
}

func migrateDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("down needs exactly one version")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("version %q: %w", args[0], err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return err
	}
	middleware.Logger.Info("migration rolled back", slog.Int("version", version))
	return nil
}
