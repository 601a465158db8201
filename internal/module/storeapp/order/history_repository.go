package order

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

// StatusHistoryRepository is insert-only. Rows are never updated or deleted;
// the order's current status is derived state, the history is the record.
type StatusHistoryRepository interface {
	Save(ctx context.Context, h StatusHistory, tx *sql.Tx) error
	FindManyByOrderID(ctx context.Context, orderID string, tx *sql.Tx) ([]StatusHistory, error)
}

type statusHistoryRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewStatusHistoryRepository(logger *logrus.Logger, db *sql.DB) StatusHistoryRepository {
	return &statusHistoryRepository{
		logger: logger,
		db:     db,
	}
}

// Save implements StatusHistoryRepository.
func (r *statusHistoryRepository) Save(ctx context.Context, h StatusHistory, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO order_status_history
		(
			order_id, status, actor, note, created_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order status history")
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, h.OrderID, h.Status, h.Actor, h.Note, h.CreatedAt); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order status history")
	}

	return nil
}

// FindManyByOrderID implements StatusHistoryRepository.
func (r *statusHistoryRepository) FindManyByOrderID(ctx context.Context, orderID string, tx *sql.Tx) ([]StatusHistory, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, order_id, status, actor, note, created_at
		FROM order_status_history
		WHERE
			order_id = $1
		ORDER BY id
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order status history")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, orderID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order status history")
	}

	defer rows.Close()

	var data = make([]StatusHistory, 0)

	for rows.Next() {
		var h StatusHistory

		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Actor, &h.Note, &h.CreatedAt); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order status history")
		}

		data = append(data, h)
	}

	return data, nil
}
