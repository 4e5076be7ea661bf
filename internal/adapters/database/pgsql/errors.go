package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the ledger reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeIdleInTxTimeout      = "25P03"
)

// Constraint names from the ledger schema.
const (
	constraintAccountCode  = "uq_accounts_code"
	constraintEntrySource  = "uq_journal_entries_source"
	constraintEntryAccount = "fk_journal_entry_lines_account"
)

// isRetryable reports whether err aborted the transaction for reasons unrelated to its input.
func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled, codeIdleInTxTimeout:
			return true
		}
	}
	return false
}

// classifyError maps driver errors onto the ledger's error taxonomy.
// Errors that already carry an apperrors sentinel pass through untouched.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrRetryable) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) {
		return err
	}
	if isRetryable(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrRetryable, err)
	}
	return err
}

// uniqueViolation returns the violated constraint name when err is a unique violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// foreignKeyViolation returns the violated constraint name when err is a foreign key violation.
func foreignKeyViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
