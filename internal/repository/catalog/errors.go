package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// mapErr translates driver errors to domain sentinels, keeping the cause in the chain.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrProductNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrAlreadyExists, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w: %w", op, domain.ErrAlreadyExists, err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w: unknown reference: %w", op, domain.ErrInvalidRequest, err)
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrAlreadyExists, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
