package repositories

import (
	"errors"
	"strings"

	"casestore/internal/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func notFound(entity, id string) error {
	return apperrors.New(apperrors.ErrNotFound, "%s with ID %s not found", entity, id)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate reports whether err is a unique constraint violation on either driver.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// statusStrings converts statuses for use in IN clauses.
func statusStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// orderClause maps a public sort key such as "-price" onto an ORDER BY clause.
// Unknown keys fall back to def.
func orderClause(sort string, columns map[string]string, def string) string {
	desc := strings.HasPrefix(sort, "-")
	column, ok := columns[strings.TrimPrefix(sort, "-")]
	if !ok {
		if def == "" {
			return ""
		}
		return orderClause(def, columns, "")
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}
