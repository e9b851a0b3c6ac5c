package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL のエラーコード
const (
	codeUniqueViolation           = "23505"
	codeExclusionViolation        = "23P01"
	codeInvalidTextRepresentation = "22P02"
)

func pgCode(err error) string {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return string(pgErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func isExclusionViolation(err error) bool {
	return pgCode(err) == codeExclusionViolation
}

// isInvalidID は UUID として解釈できないIDが渡されたかを返す
func isInvalidID(err error) bool {
	return pgCode(err) == codeInvalidTextRepresentation
}
