package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo tabla document_sequences.
type SequenceRepo struct {
	q           Querier
	lockTimeout time.Duration
}

// NewSequenceRepository construye el adaptador. lockTimeout 0 no acota la espera.
func NewSequenceRepository(q Querier, lockTimeout time.Duration) *SequenceRepo {
	return &SequenceRepo{q: q, lockTimeout: lockTimeout}
}

const sequenceColumns = `id, company_id, type, prefix, year, current, pattern, created_at, updated_at`

// incrementSQL crea la fila con current = 1 o incrementa la existente bajo su bloqueo de fila.
// Una sola sentencia: no hay ventana entre leer y escribir.
const incrementSQL = `
	INSERT INTO document_sequences (` + sequenceColumns + `)
	VALUES ($1, $2, $3, $4, $5, 1, $6, now(), now())
	ON CONFLICT (company_id, type, year)
	DO UPDATE SET current = document_sequences.current + 1, updated_at = now()
	RETURNING ` + sequenceColumns

// Increment debe ejecutarse dentro de una transacción para que lock_timeout aplique.
func (r *SequenceRepo) Increment(ctx context.Context, key entity.SequenceKey, defaults entity.SequenceDefaults) (*entity.DocumentSequence, error) {
	if r.lockTimeout > 0 {
		if _, err := r.q.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, lockTimeoutSetting(r.lockTimeout)); err != nil {
			return nil, mapSequenceError("set lock_timeout", err)
		}
	}
	seq, err := scanSequence(r.q.QueryRow(ctx, incrementSQL,
		uuid.New().String(), key.CompanyID, key.Type, defaults.Prefix, key.Year, defaults.Pattern,
	))
	if err != nil {
		return nil, mapSequenceError("increment sequence", err)
	}
	return seq, nil
}

// Get lectura sin bloqueo. nil, nil si la fila no existe.
func (r *SequenceRepo) Get(ctx context.Context, key entity.SequenceKey) (*entity.DocumentSequence, error) {
	seq, err := scanSequence(r.q.QueryRow(ctx,
		`SELECT `+sequenceColumns+` FROM document_sequences WHERE company_id = $1 AND type = $2 AND year = $3`,
		key.CompanyID, key.Type, key.Year,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sequence: %w", err)
	}
	return seq, nil
}

func scanSequence(row pgx.Row) (*entity.DocumentSequence, error) {
	var s entity.DocumentSequence
	if err := row.Scan(
		&s.ID, &s.CompanyID, &s.Type, &s.Prefix, &s.Year, &s.Current, &s.Pattern, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// lockTimeoutSetting formatea la duración como la espera PostgreSQL ("250ms").
func lockTimeoutSetting(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("%dms", ms)
}
