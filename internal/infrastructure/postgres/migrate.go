package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed migrations/landlord/*.sql migrations/tenant/*.sql
var migrationFiles embed.FS

// Conjuntos de migraciones embebidos.
const (
	LandlordMigrations = "migrations/landlord"
	TenantMigrations   = "migrations/tenant"
)

const migrationsSchemaSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description VARCHAR(255) NOT NULL,
		applied_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`

var migrationName = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// Migration par up/down de un mismo número de versión.
type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// MigrationStatus estado de una base frente a un conjunto de migraciones.
type MigrationStatus struct {
	CurrentVersion    int   `json:"current_version"`
	PendingMigrations []int `json:"pending_migrations"`
	TotalMigrations   int   `json:"total_migrations"`
}

// Migrator aplica un conjunto de migraciones SQL sobre un pool. Cada migración va en su propia transacción.
type Migrator struct {
	pool       *pgxpool.Pool
	migrations []Migration
	log        zerolog.Logger
}

// NewMigrator carga el conjunto dir (LandlordMigrations o TenantMigrations) de los archivos embebidos.
func NewMigrator(pool *pgxpool.Pool, dir string, log zerolog.Logger) (*Migrator, error) {
	sub, err := fs.Sub(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("migraciones %s: %w", dir, err)
	}
	migrations, err := LoadMigrations(sub)
	if err != nil {
		return nil, err
	}
	return &Migrator{pool: pool, migrations: migrations, log: log.With().Str("migrations", path.Base(dir)).Logger()}, nil
}

// LoadMigrations lee NNNN_descripcion.up.sql / .down.sql de fsys, ordenadas por versión.
// Toda versión debe tener ambos archivos.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}
	byVersion := make(map[int]*Migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("versión inválida en %s: %w", e.Name(), err)
		}
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", e.Name(), err)
		}
		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Description: m[2]}
			byVersion[version] = mig
		}
		if m[3] == "up" {
			mig.Up = string(body)
		} else {
			mig.Down = string(body)
		}
	}
	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migración %04d_%s incompleta: falta up o down", m.Version, m.Description)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (m *Migrator) initialize(ctx context.Context) error {
	if _, err := m.pool.Exec(ctx, migrationsSchemaSQL); err != nil {
		return fmt.Errorf("crear schema_migrations: %w", err)
	}
	return nil
}

// CurrentVersion última versión aplicada (0 si ninguna).
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.initialize(ctx); err != nil {
		return 0, err
	}
	var v int
	if err := m.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("versión actual: %w", err)
	}
	return v, nil
}

// Status versión actual y pendientes.
func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	st := &MigrationStatus{CurrentVersion: current, TotalMigrations: len(m.migrations), PendingMigrations: []int{}}
	for _, mig := range m.migrations {
		if mig.Version > current {
			st.PendingMigrations = append(st.PendingMigrations, mig.Version)
		}
	}
	return st, nil
}

// Up aplica todas las migraciones pendientes.
func (m *Migrator) Up(ctx context.Context) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		m.log.Info().Int("version", mig.Version).Str("description", mig.Description).Msg("aplicando migración")
		err := m.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.Up); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`, mig.Version, mig.Description)
			return err
		})
		if err != nil {
			return fmt.Errorf("migración %d: %w", mig.Version, err)
		}
	}
	return nil
}

// Down revierte la última migración aplicada.
func (m *Migrator) Down(ctx context.Context) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		return fmt.Errorf("no hay migraciones aplicadas")
	}
	for _, mig := range m.migrations {
		if mig.Version != current {
			continue
		}
		m.log.Info().Int("version", mig.Version).Str("description", mig.Description).Msg("revirtiendo migración")
		return m.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.Down); err != nil {
				return fmt.Errorf("revertir %d: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, mig.Version)
			return err
		})
	}
	return fmt.Errorf("versión %d aplicada pero sin archivo de migración", current)
}

func (m *Migrator) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
