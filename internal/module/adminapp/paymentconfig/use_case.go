package paymentconfig

import (
	"context"
	"net/http"
	"time"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

type ConfigUseCase interface {
	CreateConfig(ctx context.Context, tenantID string, req CreateConfigRequest) (ConfigResponse, error)
	// ActivateConfig makes the config the tenant's active one for its method,
	// deactivating the previous active row in the same transaction.
	ActivateConfig(ctx context.Context, tenantID string, configID int64) (ConfigResponse, error)
	GetManyConfig(ctx context.Context, tenantID string, req GetManyConfigRequest) (GetManyConfigResponse, error)
}

type configUseCase struct {
	logger     *logrus.Logger
	timeout    time.Duration
	configRepo ConfigRepository
}

type ConfigUseCaseProperty struct {
	Logger           *logrus.Logger
	Timeout          time.Duration
	ConfigRepository ConfigRepository
}

func NewConfigUseCase(props ConfigUseCaseProperty) ConfigUseCase {
	return &configUseCase{
		logger:     props.Logger,
		timeout:    props.Timeout,
		configRepo: props.ConfigRepository,
	}
}

// CreateConfig implements ConfigUseCase.
func (u *configUseCase) CreateConfig(ctx context.Context, tenantID string, req CreateConfigRequest) (ConfigResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	if err := validateCredentials(req); err != nil {
		return ConfigResponse{}, err
	}

	now := time.Now()
	config := Config{
		TenantID:      tenantID,
		Method:        req.Method,
		Provider:      req.Provider,
		PixKey:        req.PixKey,
		MerchantName:  req.MerchantName,
		MerchantCity:  req.MerchantCity,
		APIKey:        req.APIKey,
		WebhookSecret: req.WebhookSecret,
		Sandbox:       req.Sandbox,
		Active:        false,
		CreatedAt:     now,
	}

	id, err := u.configRepo.Save(ctx, config, nil)
	if err != nil {
		return ConfigResponse{}, err
	}
	config.ID = id

	resp := ConfigResponse{}
	resp.PopulateFromEntity(config)

	return resp, nil
}

// validateCredentials rejects configs that could never produce a charge.
func validateCredentials(req CreateConfigRequest) error {
	switch req.Provider {
	case "local":
		if req.PixKey == "" || req.MerchantName == "" || req.MerchantCity == "" {
			return errors.New(http.StatusBadRequest, status.VALIDATION_FAILED, "local provider requires pix_key, merchant_name and merchant_city")
		}
	case "openpix":
		if req.APIKey == "" || req.WebhookSecret == "" {
			return errors.New(http.StatusBadRequest, status.VALIDATION_FAILED, "openpix provider requires api_key and webhook_secret")
		}
	}

	return nil
}

// ActivateConfig implements ConfigUseCase.
func (u *configUseCase) ActivateConfig(ctx context.Context, tenantID string, configID int64) (ConfigResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	tx, err := u.configRepo.BeginTx(ctx)
	if err != nil {
		return ConfigResponse{}, err
	}

	config, err := u.configRepo.FindByID(ctx, configID, tx)
	if err != nil {
		u.configRepo.Rollback(ctx, tx)
		return ConfigResponse{}, err
	}

	if config.TenantID != tenantID {
		u.configRepo.Rollback(ctx, tx)
		return ConfigResponse{}, errors.New(http.StatusNotFound, status.NOT_FOUND, "payment config is not found")
	}

	if err := u.configRepo.DeactivateAll(ctx, tenantID, config.Method, tx); err != nil {
		u.configRepo.Rollback(ctx, tx)
		return ConfigResponse{}, err
	}

	now := time.Now()
	rows, err := u.configRepo.Activate(ctx, configID, now, tx)
	if err != nil {
		u.configRepo.Rollback(ctx, tx)
		return ConfigResponse{}, err
	}
	if rows == 0 {
		u.configRepo.Rollback(ctx, tx)
		return ConfigResponse{}, errors.New(http.StatusNotFound, status.NOT_FOUND, "payment config is not found")
	}

	if err := u.configRepo.CommitTx(ctx, tx); err != nil {
		return ConfigResponse{}, err
	}

	config.Active = true
	config.ActivatedAt = now

	resp := ConfigResponse{}
	resp.PopulateFromEntity(config)

	return resp, nil
}

// GetManyConfig implements ConfigUseCase.
func (u *configUseCase) GetManyConfig(ctx context.Context, tenantID string, req GetManyConfigRequest) (GetManyConfigResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	offset := (req.Page - 1) * req.Size

	configs, err := u.configRepo.FindMany(ctx, tenantID, offset, req.Size, nil)
	if err != nil {
		return nil, err
	}

	resp := make(GetManyConfigResponse, len(configs))
	for k, c := range configs {
		resp[k].PopulateFromEntity(c)
	}

	return resp, nil
}
