package payment

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

type ChargeRepository interface {
	// SaveIfNonePending inserts the charge only when no unexpired WAITING
	// charge exists for the same order. Returns false when the insert lost
	// to an existing charge.
	SaveIfNonePending(ctx context.Context, c Charge, tx *sql.Tx) (bool, error)
	FindByID(ctx context.Context, ID string, tx *sql.Tx) (Charge, error)
	FindByExternalID(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (Charge, error)
	FindWaitingByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error)
	FindPaidByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error)
	// UpdateStatusIfCurrent flips the charge status only when it still has
	// the expected one; returns the number of rows changed (0 or 1).
	UpdateStatusIfCurrent(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error)
}

type chargeRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewChargeRepository(logger *logrus.Logger, db *sql.DB) ChargeRepository {
	return &chargeRepository{
		logger: logger,
		db:     db,
	}
}

const chargeColumns = `
	id, order_id, tenant_id, provider, external_id, amount, status, qr_payload,
	expires_at, created_at, updated_at
`

// SaveIfNonePending implements ChargeRepository. The existence check and the
// insert run as one statement so concurrent generate-pix requests cannot both
// create a WAITING charge.
func (r *chargeRepository) SaveIfNonePending(ctx context.Context, c Charge, tx *sql.Tx) (bool, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO payment_charge
		(
			id, order_id, tenant_id, provider, external_id, amount, status,
			qr_payload, expires_at, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		WHERE NOT EXISTS (
			SELECT 1
			FROM payment_charge
			WHERE
				order_id = $2
			AND
				status = $12
			AND
				expires_at > $10
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving payment charge")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		c.ID, c.OrderID, c.TenantID, c.Provider, c.ExternalID, c.Amount, c.Status,
		c.QRPayload, c.ExpiresAt, c.CreatedAt, c.UpdatedAt, ChargeStatusWaiting,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving payment charge")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving payment charge")
	}

	return rows == 1, nil
}

// FindByID implements ChargeRepository.
func (r *chargeRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Charge, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payment_charge
		WHERE
			id = $1
		LIMIT 1
	`, chargeColumns)

	return r.findOne(ctx, tx, query, ID)
}

// FindByExternalID implements ChargeRepository.
func (r *chargeRepository) FindByExternalID(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (Charge, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payment_charge
		WHERE
			tenant_id = $1
		AND
			external_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, chargeColumns)

	return r.findOne(ctx, tx, query, tenantID, externalID)
}

// FindWaitingByOrderID implements ChargeRepository.
func (r *chargeRepository) FindWaitingByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payment_charge
		WHERE
			order_id = $1
		AND
			status = '%s'
		ORDER BY created_at DESC
		LIMIT 1
	`, chargeColumns, ChargeStatusWaiting)

	return r.findOne(ctx, tx, query, orderID)
}

// FindPaidByOrderID implements ChargeRepository.
func (r *chargeRepository) FindPaidByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payment_charge
		WHERE
			order_id = $1
		AND
			status = '%s'
		ORDER BY created_at DESC
		LIMIT 1
	`, chargeColumns, ChargeStatusPaid)

	return r.findOne(ctx, tx, query, orderID)
}

// UpdateStatusIfCurrent implements ChargeRepository. Concurrent webhook
// deliveries race on this statement; the loser updates zero rows.
func (r *chargeRepository) UpdateStatusIfCurrent(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE payment_charge
		SET
			status = $1,
			updated_at = now()
		WHERE
			id = $2
		AND
			status = $3
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating payment charge")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, newStatus, ID, currentStatus)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating payment charge")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating payment charge")
	}

	return rows, nil
}

func (r *chargeRepository) findOne(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (Charge, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Charge{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment charge")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, args...)

	var data Charge
	var externalID sql.NullString

	err = row.Scan(
		&data.ID, &data.OrderID, &data.TenantID, &data.Provider, &externalID, &data.Amount, &data.Status, &data.QRPayload,
		&data.ExpiresAt, &data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Charge{}, errors.New(http.StatusNotFound, status.UNKNOWN_CHARGE, "payment charge is not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Charge{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment charge")
	}

	if externalID.Valid {
		data.ExternalID = externalID.String
	}

	return data, nil
}
