package paymentconfig

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

type ConfigRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(ctx context.Context, tx *sql.Tx) error
	Rollback(ctx context.Context, tx *sql.Tx) error

	Save(ctx context.Context, c Config, tx *sql.Tx) (int64, error)
	FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Config, error)
	FindMany(ctx context.Context, tenantID string, offset, limit int64, tx *sql.Tx) ([]Config, error)
	// DeactivateAll switches off every active row for the tenant and method.
	DeactivateAll(ctx context.Context, tenantID string, method string, tx *sql.Tx) error
	// Activate switches one row on.
	Activate(ctx context.Context, ID int64, activatedAt time.Time, tx *sql.Tx) (int64, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type configRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewConfigRepository(logger *logrus.Logger, db *sql.DB) ConfigRepository {
	return &configRepository{
		logger: logger,
		db:     db,
	}
}

const configColumns = `
	id, tenant_id, method, provider, pix_key, merchant_name, merchant_city,
	api_key, webhook_secret, sandbox, active, activated_at, created_at
`

// BeginTx implements ConfigRepository.
func (r *configRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while starting transaction")
	}

	return tx, nil
}

// CommitTx implements ConfigRepository.
func (r *configRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while committing transaction")
	}

	return nil
}

// Rollback implements ConfigRepository.
func (r *configRepository) Rollback(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while rolling back transaction")
	}

	return nil
}

// Save implements ConfigRepository.
func (r *configRepository) Save(ctx context.Context, c Config, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO tenant_payment_config (
			tenant_id, method, provider, pix_key, merchant_name, merchant_city,
			api_key, webhook_secret, sandbox, active, activated_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving payment config")
	}
	defer stmt.Close()

	var id int64
	err = stmt.QueryRowContext(ctx,
		c.TenantID, c.Method, c.Provider, c.PixKey, c.MerchantName, c.MerchantCity,
		c.APIKey, c.WebhookSecret, c.Sandbox, c.Active, c.ActivatedAt, c.CreatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving payment config")
	}

	return id, nil
}

// FindByID implements ConfigRepository.
func (r *configRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Config, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tenant_payment_config
		WHERE id = $1
	`, configColumns)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Config{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment config")
	}
	defer stmt.Close()

	var data Config

	err = stmt.QueryRowContext(ctx, ID).Scan(
		&data.ID, &data.TenantID, &data.Method, &data.Provider, &data.PixKey, &data.MerchantName, &data.MerchantCity,
		&data.APIKey, &data.WebhookSecret, &data.Sandbox, &data.Active, &data.ActivatedAt, &data.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Config{}, errors.New(http.StatusNotFound, status.NOT_FOUND, "payment config is not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Config{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment config")
	}

	return data, nil
}

// FindMany implements ConfigRepository.
func (r *configRepository) FindMany(ctx context.Context, tenantID string, offset, limit int64, tx *sql.Tx) ([]Config, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tenant_payment_config
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		OFFSET $2
		LIMIT $3
	`, configColumns)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment configs")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, tenantID, offset, limit)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment configs")
	}
	defer rows.Close()

	configs := []Config{}
	for rows.Next() {
		var data Config
		err = rows.Scan(
			&data.ID, &data.TenantID, &data.Method, &data.Provider, &data.PixKey, &data.MerchantName, &data.MerchantCity,
			&data.APIKey, &data.WebhookSecret, &data.Sandbox, &data.Active, &data.ActivatedAt, &data.CreatedAt,
		)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment configs")
		}

		configs = append(configs, data)
	}

	return configs, nil
}

// DeactivateAll implements ConfigRepository.
func (r *configRepository) DeactivateAll(ctx context.Context, tenantID string, method string, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE tenant_payment_config
		SET active = false
		WHERE
			tenant_id = $1
		AND
			method = $2
		AND
			active = true
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while deactivating payment configs")
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, tenantID, method); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while deactivating payment configs")
	}

	return nil
}

// Activate implements ConfigRepository.
func (r *configRepository) Activate(ctx context.Context, ID int64, activatedAt time.Time, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE tenant_payment_config
		SET
			active = true,
			activated_at = $1
		WHERE id = $2
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while activating payment config")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, activatedAt, ID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while activating payment config")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while activating payment config")
	}

	return rows, nil
}
