package order

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

type OrderRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(ctx context.Context, tx *sql.Tx) error
	Rollback(ctx context.Context, tx *sql.Tx) error

	Save(ctx context.Context, o Order, tx *sql.Tx) error
	FindByID(ctx context.Context, ID string, tx *sql.Tx) (Order, error)
	FindMany(ctx context.Context, tenantID string, offset, limit int64, tx *sql.Tx) ([]Order, error)
	Count(ctx context.Context, tenantID string, tx *sql.Tx) (int64, error)
	CountActiveByTable(ctx context.Context, tenantID string, tableRef string, tx *sql.Tx) (int64, error)
	// UpdateStatusIfCurrent persists o's status and reasons only when the
	// stored status still matches currentStatus; returns rows changed.
	UpdateStatusIfCurrent(ctx context.Context, ID string, currentStatus string, o Order, tx *sql.Tx) (int64, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type orderRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewOrderRepository(logger *logrus.Logger, db *sql.DB) OrderRepository {
	return &orderRepository{
		logger: logger,
		db:     db,
	}
}

// BeginTx implements OrderRepository.
func (r *orderRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to begin transaction")
	}

	return tx, nil
}

// CommitTx implements OrderRepository.
func (r *orderRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to commit transaction")
	}

	return nil
}

// Rollback implements OrderRepository.
func (r *orderRepository) Rollback(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to rollback transaction")
	}

	return nil
}

const orderColumns = `
	id, tenant_id, customer_id, customer_name, customer_phone, delivery_mode,
	address_street, address_number, address_district, address_city, address_complement,
	table_ref, payment_method, subtotal, delivery_fee, discount, redeemed_points,
	total_amount, status, rejection_reason, cancellation_reason, driver_id,
	refund_flagged, created_at, updated_at
`

// Save implements OrderRepository.
func (r *orderRepository) Save(ctx context.Context, o Order, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		INSERT INTO restaurant_order
		(
			%s
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25
		)
	`, orderColumns)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order's properties")
	}
	defer stmt.Close()

	var street, number, district, city, complement sql.NullString
	if o.Address != nil {
		street = sql.NullString{String: o.Address.Street, Valid: true}
		number = sql.NullString{String: o.Address.Number, Valid: true}
		district = sql.NullString{String: o.Address.District, Valid: true}
		city = sql.NullString{String: o.Address.City, Valid: true}
		complement = sql.NullString{String: o.Address.Complement, Valid: true}
	}

	_, err = stmt.ExecContext(ctx,
		o.ID, o.TenantID, o.CustomerID, o.CustomerName, o.CustomerPhone, o.DeliveryMode,
		street, number, district, city, complement,
		nullableString(o.TableRef), o.PaymentMethod, o.Subtotal, o.DeliveryFee, o.Discount, o.RedeemedPoints,
		o.Total, o.Status, nullableString(o.RejectionReason), nullableString(o.CancellationReason), nullableString(o.DriverID),
		o.RefundFlagged, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order's properties")
	}

	return nil
}

// FindByID implements OrderRepository.
func (r *orderRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Order, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM restaurant_order
		WHERE
			id = $1
		LIMIT 1
	`, orderColumns)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	data, err := r.scanOrder(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("order with id '%s' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}

	return data, nil
}

// FindMany implements OrderRepository.
func (r *orderRepository) FindMany(ctx context.Context, tenantID string, offset, limit int64, tx *sql.Tx) ([]Order, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM restaurant_order
		WHERE
			tenant_id = $1
		ORDER BY created_at DESC
		OFFSET $2
		LIMIT $3
	`, orderColumns)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, tenantID, offset, limit)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
	}

	defer rows.Close()

	var data = make([]Order, 0)

	for rows.Next() {
		o, err := r.scanOrder(rows.Scan)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
		}

		data = append(data, o)
	}

	return data, nil
}

// Count implements OrderRepository.
func (r *orderRepository) Count(ctx context.Context, tenantID string, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT count(id)
		FROM restaurant_order
		WHERE
			tenant_id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting order's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, tenantID)

	var count int64

	if err := row.Scan(&count); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting order's properties")
	}

	return count, nil
}

// CountActiveByTable implements OrderRepository. Active means any
// non-terminal status.
func (r *orderRepository) CountActiveByTable(ctx context.Context, tenantID string, tableRef string, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT count(id)
		FROM restaurant_order
		WHERE
			tenant_id = $1
		AND
			table_ref = $2
		AND
			status NOT IN ($3, $4, $5)
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting active table orders")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, tenantID, tableRef, StatusDelivered, StatusCancelled, StatusRejected)

	var count int64

	if err := row.Scan(&count); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting active table orders")
	}

	return count, nil
}

// UpdateStatusIfCurrent implements OrderRepository. Combined with the
// per-order lock this keeps two concurrent transitions from both succeeding
// on stale state.
func (r *orderRepository) UpdateStatusIfCurrent(ctx context.Context, ID string, currentStatus string, o Order, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE restaurant_order
		SET
			status = $1,
			rejection_reason = $2,
			cancellation_reason = $3,
			refund_flagged = $4,
			updated_at = $5
		WHERE
			id = $6
		AND
			status = $7
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		o.Status, nullableString(o.RejectionReason), nullableString(o.CancellationReason),
		o.RefundFlagged, o.UpdatedAt, ID, currentStatus,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}

	return rows, nil
}

func (r *orderRepository) scanOrder(scan func(dest ...interface{}) error) (Order, error) {
	var o Order
	var street, number, district, city, complement sql.NullString
	var tableRef, rejectionReason, cancellationReason, driverID sql.NullString

	err := scan(
		&o.ID, &o.TenantID, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.DeliveryMode,
		&street, &number, &district, &city, &complement,
		&tableRef, &o.PaymentMethod, &o.Subtotal, &o.DeliveryFee, &o.Discount, &o.RedeemedPoints,
		&o.Total, &o.Status, &rejectionReason, &cancellationReason, &driverID,
		&o.RefundFlagged, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}

	if street.Valid {
		o.Address = &Address{
			Street:     street.String,
			Number:     number.String,
			District:   district.String,
			City:       city.String,
			Complement: complement.String,
		}
	}

	if tableRef.Valid {
		o.TableRef = &tableRef.String
	}
	if rejectionReason.Valid {
		o.RejectionReason = &rejectionReason.String
	}
	if cancellationReason.Valid {
		o.CancellationReason = &cancellationReason.String
	}
	if driverID.Valid {
		o.DriverID = &driverID.String
	}

	return o, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}
