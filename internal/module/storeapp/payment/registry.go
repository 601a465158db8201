package payment

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ProviderRegistry resolves which PIX provider implementation serves a tenant,
// based on the stored tenant payment configuration.
type ProviderRegistry interface {
	Resolve(ctx context.Context, tenantID string, method string) (Provider, error)
	ResolveByName(ctx context.Context, tenantID string, providerName string) (Provider, error)
	ResolveForRefund(ctx context.Context, tenantID string, providerName string) (Provider, error)
}

type providerRegistry struct {
	logger         *logrus.Logger
	openPixBaseURL string
	hc             *http.Client
	configRepo     TenantConfigRepository
}

type ProviderRegistryProperty struct {
	Logger         *logrus.Logger
	OpenPixBaseURL string
	HTTPClient     *http.Client
	ConfigRepo     TenantConfigRepository
}

func NewProviderRegistry(props ProviderRegistryProperty) ProviderRegistry {
	return &providerRegistry{
		logger:         props.Logger,
		openPixBaseURL: props.OpenPixBaseURL,
		hc:             props.HTTPClient,
		configRepo:     props.ConfigRepo,
	}
}

// Resolve implements ProviderRegistry.
func (r *providerRegistry) Resolve(ctx context.Context, tenantID string, method string) (Provider, error) {
	cfg, err := r.configRepo.FindActive(ctx, tenantID, method, nil)
	if err != nil {
		return nil, err
	}

	return r.build(cfg)
}

// ResolveByName implements ProviderRegistry. Used by webhook ingestion, where
// the gateway tells us who it is.
func (r *providerRegistry) ResolveByName(ctx context.Context, tenantID string, providerName string) (Provider, error) {
	cfg, err := r.configRepo.FindActiveByProvider(ctx, tenantID, providerName, nil)
	if err != nil {
		return nil, err
	}

	return r.build(cfg)
}

// ResolveForRefund implements ProviderRegistry. Refunds of old charges must
// work even after the tenant switched providers, so the lookup ignores the
// active flag.
func (r *providerRegistry) ResolveForRefund(ctx context.Context, tenantID string, providerName string) (Provider, error) {
	cfg, err := r.configRepo.FindLatestByProvider(ctx, tenantID, providerName, nil)
	if err != nil {
		return nil, err
	}

	return r.build(cfg)
}

func (r *providerRegistry) build(cfg TenantConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderOpenPix:
		return NewOpenPixProvider(r.openPixBaseURL, r.logger, r.hc, cfg), nil
	default:
		return NewLocalProvider(r.logger, cfg), nil
	}
}
