package loyalty

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

type ProgramRepository interface {
	FindByTenant(ctx context.Context, tenantID string, tx *sql.Tx) (Program, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type programRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewProgramRepository(logger *logrus.Logger, db *sql.DB) ProgramRepository {
	return &programRepository{
		logger: logger,
		db:     db,
	}
}

// FindByTenant implements ProgramRepository.
func (r *programRepository) FindByTenant(ctx context.Context, tenantID string, tx *sql.Tx) (Program, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			tenant_id, earn_rate, redemption_value, active
		FROM loyalty_program
		WHERE
			tenant_id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Program{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting loyalty program")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, tenantID)

	var data Program

	err = row.Scan(&data.TenantID, &data.EarnRate, &data.RedemptionValue, &data.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return Program{}, errors.New(http.StatusNotFound, status.NOT_FOUND, "no loyalty program is configured for this tenant")
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Program{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting loyalty program")
	}

	return data, nil
}
