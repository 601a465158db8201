package loyalty

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

// TransactionRepository is append-only; transactions are never mutated or
// deleted, and corrections are expressed as reversal rows.
type TransactionRepository interface {
	Save(ctx context.Context, t Transaction, tx *sql.Tx) error
	// SaveEarnIfAbsent inserts the earn transaction only when the order has
	// none yet, so a retried settlement cannot double-award points.
	SaveEarnIfAbsent(ctx context.Context, t Transaction, tx *sql.Tx) (bool, error)
	// SaveReversalForOrder appends the exact negation of the order's earn
	// transaction, once; a no-op when there is nothing to reverse or the
	// reversal already exists.
	SaveReversalForOrder(ctx context.Context, ID string, orderID string, tx *sql.Tx) (bool, error)
	SumPointsByCustomer(ctx context.Context, tenantID string, customerID string, tx *sql.Tx) (int64, error)
	FindManyByCustomer(ctx context.Context, tenantID string, customerID string, tx *sql.Tx) ([]Transaction, error)
}

type transactionRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewTransactionRepository(logger *logrus.Logger, db *sql.DB) TransactionRepository {
	return &transactionRepository{
		logger: logger,
		db:     db,
	}
}

// Save implements TransactionRepository.
func (r *transactionRepository) Save(ctx context.Context, t Transaction, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO loyalty_transaction
		(
			id, tenant_id, customer_id, order_id, type, points, created_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving loyalty transaction")
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, t.ID, t.TenantID, t.CustomerID, t.OrderID, t.Type, t.Points, t.CreatedAt); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving loyalty transaction")
	}

	return nil
}

// SaveEarnIfAbsent implements TransactionRepository.
func (r *transactionRepository) SaveEarnIfAbsent(ctx context.Context, t Transaction, tx *sql.Tx) (bool, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO loyalty_transaction
		(
			id, tenant_id, customer_id, order_id, type, points, created_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1
			FROM loyalty_transaction
			WHERE
				order_id = $4
			AND
				type = $5
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving loyalty transaction")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, t.ID, t.TenantID, t.CustomerID, t.OrderID, TransactionEarn, t.Points, t.CreatedAt)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving loyalty transaction")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving loyalty transaction")
	}

	return rows == 1, nil
}

// SaveReversalForOrder implements TransactionRepository. Runs as a single
// statement so concurrent reversal attempts cannot both insert.
func (r *transactionRepository) SaveReversalForOrder(ctx context.Context, ID string, orderID string, tx *sql.Tx) (bool, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO loyalty_transaction
		(
			id, tenant_id, customer_id, order_id, type, points, created_at
		)
		SELECT $1, t.tenant_id, t.customer_id, t.order_id, $3, -t.points, now()
		FROM loyalty_transaction t
		WHERE
			t.order_id = $2
		AND
			t.type = $4
		AND NOT EXISTS (
			SELECT 1
			FROM loyalty_transaction
			WHERE
				order_id = $2
			AND
				type = $3
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while reversing loyalty transaction")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, ID, orderID, TransactionReversal, TransactionEarn)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while reversing loyalty transaction")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while reversing loyalty transaction")
	}

	return rows == 1, nil
}

// SumPointsByCustomer implements TransactionRepository. The ledger sum is the
// balance; there is no cached column to drift from it.
func (r *transactionRepository) SumPointsByCustomer(ctx context.Context, tenantID string, customerID string, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT COALESCE(SUM(points), 0)
		FROM loyalty_transaction
		WHERE
			tenant_id = $1
		AND
			customer_id = $2
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while summing loyalty points")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, tenantID, customerID)

	var balance int64

	if err := row.Scan(&balance); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while summing loyalty points")
	}

	return balance, nil
}

// FindManyByCustomer implements TransactionRepository.
func (r *transactionRepository) FindManyByCustomer(ctx context.Context, tenantID string, customerID string, tx *sql.Tx) ([]Transaction, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, tenant_id, customer_id, order_id, type, points, created_at
		FROM loyalty_transaction
		WHERE
			tenant_id = $1
		AND
			customer_id = $2
		ORDER BY created_at DESC
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting loyalty transactions")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, tenantID, customerID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting loyalty transactions")
	}

	defer rows.Close()

	var data = make([]Transaction, 0)

	for rows.Next() {
		var t Transaction

		if err := rows.Scan(&t.ID, &t.TenantID, &t.CustomerID, &t.OrderID, &t.Type, &t.Points, &t.CreatedAt); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting loyalty transactions")
		}

		data = append(data, t)
	}

	return data, nil
}
