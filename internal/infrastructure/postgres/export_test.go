package postgres

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var (
	ContactListQuery   = contactListQuery
	ContactUpdateQuery = contactUpdateQuery
	MigrationFiles     = migrationFiles
	MapError           = mapError
	MapSequenceError   = mapSequenceError
)

func ScopedSelect(scope repository.Scope) sq.SelectBuilder {
	return applyScope(psql.Select("id").From("contacts"), scope, "company_id")
}

func ScopedDelete(scope repository.Scope, id string) sq.DeleteBuilder {
	return applyScope(psql.Delete("contacts").Where(sq.Eq{"id": id}), scope, "company_id")
}
