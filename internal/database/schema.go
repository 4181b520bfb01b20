package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/config"
	"agora/internal/middleware"

	"gorm.io/gorm"
)

// Schema management modes selected by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is what ApplySchema will do for a configuration.
type SchemaPlan struct {
	Driver  string
	Mode    string
	Env     string
	RunSQL  bool
	RunAuto bool
}

func (p SchemaPlan) String() string {
	return fmt.Sprintf("driver=%s mode=%s env=%s sql=%t automigrate=%t", p.Driver, p.Mode, p.Env, p.RunSQL, p.RunAuto)
}

// SchemaStatus is a SchemaPlan plus the migration bookkeeping.
type SchemaStatus struct {
	SchemaPlan
	AppliedVersions   []int
	PendingMigrations []Migration
}

var prodLikeEnvs = map[string]bool{"production": true, "prod": true, "staging": true, "stage": true}

// PlanSchema resolves DB_SCHEMA_MODE against the driver and environment.
// SQLite always uses AutoMigrate because the embedded SQL targets
// PostgreSQL. Production-like environments never AutoMigrate PostgreSQL.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{
		Driver: strings.ToLower(strings.TrimSpace(cfg.DBDriver)),
		Mode:   strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)),
		Env:    cfg.Env,
	}
	if plan.Driver == "" {
		plan.Driver = DriverPostgres
	}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}
	switch plan.Mode {
	case SchemaModeHybrid, SchemaModeSQL, SchemaModeAuto:
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}

	if plan.Driver == DriverSQLite {
		plan.RunAuto = true
		return plan, nil
	}

	prodLike := prodLikeEnvs[strings.ToLower(strings.TrimSpace(cfg.Env))]
	plan.RunSQL = plan.Mode != SchemaModeAuto
	plan.RunAuto = plan.Mode == SchemaModeAuto || (plan.Mode == SchemaModeHybrid && !prodLike)
	if plan.Mode == SchemaModeAuto && prodLike {
		return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q; use sql migrations", cfg.Env)
	}
	return plan, nil
}

// ApplySchema brings the schema up to date following PlanSchema.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}
	middleware.Logger.Info("applying schema", slog.String("plan", plan.String()))

	if plan.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.RunAuto {
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// GetSchemaStatus reports the plan and, when SQL migrations are in play,
// which versions are applied and which are pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan}
	if !plan.RunSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	done := make(map[int]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}
	for _, m := range GetMigrations() {
		if _, ok := done[m.Version]; !ok {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}
	return status, nil
}
