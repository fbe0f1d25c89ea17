package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type constraintViolation int

const (
	noViolation constraintViolation = iota
	uniqueViolation
	foreignKeyViolation
)

// classifyConstraintError maps vendor specific constraint failures onto the
// two kinds the services react to. SQLite only reports them in the message.
func classifyConstraintError(err error) constraintViolation {
	if err == nil {
		return noViolation
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return uniqueViolation
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return foreignKeyViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return uniqueViolation
		case "23503":
			return foreignKeyViolation
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return uniqueViolation
		case 1451, 1452:
			return foreignKeyViolation
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "unique constraint"), strings.Contains(lower, "duplicate"):
		return uniqueViolation
	case strings.Contains(lower, "foreign key constraint"):
		return foreignKeyViolation
	}
	return noViolation
}

func isUniqueConstraintError(err error) bool {
	return classifyConstraintError(err) == uniqueViolation
}

func isForeignKeyError(err error) bool {
	return classifyConstraintError(err) == foreignKeyViolation
}
