package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// Querier lo cumplen *pgxpool.Pool y pgx.Tx: los repositorios no distinguen si van en transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql builder con placeholders $n.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// whereable lo cumplen sq.SelectBuilder, sq.UpdateBuilder y sq.DeleteBuilder.
type whereable[T any] interface {
	Where(pred interface{}, args ...interface{}) T
}

// applyScope añade "<column> = $n" si el scope acota a una empresa.
func applyScope[T whereable[T]](b T, scope repository.Scope, column string) T {
	if id, ok := scope.CompanyID(); ok {
		return b.Where(sq.Eq{column: id})
	}
	return b
}

// Códigos SQLSTATE usados.
const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isContention bloqueo no disponible, fallo de serialización o deadlock.
func isContention(err error) bool {
	switch pgCode(err) {
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// mapError traduce errores de PostgreSQL a errores de dominio, conservando el original en el mensaje.
// La contención fuera de los consecutivos es un conflicto genérico.
func mapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isContention(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// mapSequenceError como mapError, pero la contención es domain.ErrSequenceContention (reintentable).
func mapSequenceError(op string, err error) error {
	if err != nil && isContention(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrSequenceContention, err)
	}
	return mapError(op, err)
}

// affectedOne retorna domain.ErrNotFound si la sentencia no tocó filas (inexistente o fuera de scope).
func affectedOne(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
