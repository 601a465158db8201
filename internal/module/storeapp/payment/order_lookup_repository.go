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

// OrderSummary is the slice of an order the payment module is allowed to see.
type OrderSummary struct {
	ID       string
	TenantID string
	Total    float64
	Status   string
}

type OrderLookupRepository interface {
	FindByID(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error)
}

type orderLookupRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewOrderLookupRepository(logger *logrus.Logger, db *sql.DB) OrderLookupRepository {
	return &orderLookupRepository{
		logger: logger,
		db:     db,
	}
}

// FindByID implements OrderLookupRepository.
func (r *orderLookupRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, tenant_id, total_amount, status
		FROM restaurant_order
		WHERE
			id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return OrderSummary{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order summary")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	var data OrderSummary

	err = row.Scan(&data.ID, &data.TenantID, &data.Total, &data.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return OrderSummary{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("order with id '%s' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return OrderSummary{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order summary")
	}

	return data, nil
}
