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

type TenantConfigRepository interface {
	FindActive(ctx context.Context, tenantID string, method string, tx *sql.Tx) (TenantConfig, error)
	FindActiveByProvider(ctx context.Context, tenantID string, provider string, tx *sql.Tx) (TenantConfig, error)
	FindLatestByProvider(ctx context.Context, tenantID string, provider string, tx *sql.Tx) (TenantConfig, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type tenantConfigRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewTenantConfigRepository(logger *logrus.Logger, db *sql.DB) TenantConfigRepository {
	return &tenantConfigRepository{
		logger: logger,
		db:     db,
	}
}

const tenantConfigColumns = `
	id, tenant_id, method, provider, pix_key, merchant_name, merchant_city,
	api_key, webhook_secret, sandbox, active, activated_at, created_at
`

// FindActive implements TenantConfigRepository. Most-recently-activated wins
// should more than one row slip through.
func (r *tenantConfigRepository) FindActive(ctx context.Context, tenantID string, method string, tx *sql.Tx) (TenantConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tenant_payment_config
		WHERE
			tenant_id = $1
		AND
			method = $2
		AND
			active = true
		ORDER BY activated_at DESC
		LIMIT 1
	`, tenantConfigColumns)

	return r.findOne(ctx, tx, query, tenantID, method)
}

// FindActiveByProvider implements TenantConfigRepository.
func (r *tenantConfigRepository) FindActiveByProvider(ctx context.Context, tenantID string, provider string, tx *sql.Tx) (TenantConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tenant_payment_config
		WHERE
			tenant_id = $1
		AND
			provider = $2
		AND
			active = true
		ORDER BY activated_at DESC
		LIMIT 1
	`, tenantConfigColumns)

	return r.findOne(ctx, tx, query, tenantID, provider)
}

// FindLatestByProvider implements TenantConfigRepository. Used for refunds,
// which must still reach a gateway whose config has since been deactivated.
func (r *tenantConfigRepository) FindLatestByProvider(ctx context.Context, tenantID string, provider string, tx *sql.Tx) (TenantConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tenant_payment_config
		WHERE
			tenant_id = $1
		AND
			provider = $2
		ORDER BY activated_at DESC
		LIMIT 1
	`, tenantConfigColumns)

	return r.findOne(ctx, tx, query, tenantID, provider)
}

func (r *tenantConfigRepository) findOne(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (TenantConfig, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return TenantConfig{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting tenant payment config")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, args...)

	var data TenantConfig

	err = row.Scan(
		&data.ID, &data.TenantID, &data.Method, &data.Provider, &data.PixKey, &data.MerchantName, &data.MerchantCity,
		&data.APIKey, &data.WebhookSecret, &data.Sandbox, &data.Active, &data.ActivatedAt, &data.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TenantConfig{}, errors.New(http.StatusNotFound, status.NOT_CONFIGURED, "no payment provider is configured for this tenant")
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return TenantConfig{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting tenant payment config")
	}

	return data, nil
}
