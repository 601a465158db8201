package payment

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/gctasks"
	"github.com/opamenu/om-order/pkg/status"
)

type mockChargeRepository struct {
	SaveIfNonePendingFunc     func(ctx context.Context, c Charge, tx *sql.Tx) (bool, error)
	FindByIDFunc              func(ctx context.Context, ID string, tx *sql.Tx) (Charge, error)
	FindByExternalIDFunc      func(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (Charge, error)
	FindWaitingByOrderIDFunc  func(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error)
	FindPaidByOrderIDFunc     func(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error)
	UpdateStatusIfCurrentFunc func(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error)
}

func (m *mockChargeRepository) SaveIfNonePending(ctx context.Context, c Charge, tx *sql.Tx) (bool, error) {
	return m.SaveIfNonePendingFunc(ctx, c, tx)
}

func (m *mockChargeRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Charge, error) {
	return m.FindByIDFunc(ctx, ID, tx)
}

func (m *mockChargeRepository) FindByExternalID(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (Charge, error) {
	return m.FindByExternalIDFunc(ctx, tenantID, externalID, tx)
}

func (m *mockChargeRepository) FindWaitingByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error) {
	if m.FindWaitingByOrderIDFunc == nil {
		return Charge{}, errors.New(http.StatusNotFound, status.UNKNOWN_CHARGE, "charge is not found")
	}
	return m.FindWaitingByOrderIDFunc(ctx, orderID, tx)
}

func (m *mockChargeRepository) FindPaidByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error) {
	if m.FindPaidByOrderIDFunc == nil {
		return Charge{}, errors.New(http.StatusNotFound, status.UNKNOWN_CHARGE, "charge is not found")
	}
	return m.FindPaidByOrderIDFunc(ctx, orderID, tx)
}

func (m *mockChargeRepository) UpdateStatusIfCurrent(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error) {
	return m.UpdateStatusIfCurrentFunc(ctx, ID, currentStatus, newStatus, tx)
}

type mockOrderLookupRepository struct {
	FindByIDFunc func(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error)
}

func (m *mockOrderLookupRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error) {
	return m.FindByIDFunc(ctx, ID, tx)
}

type mockProvider struct {
	name                string
	CreateChargeFunc    func(ctx context.Context, req CreateChargeRequest) (CreateChargeResponse, error)
	VerifySignatureFunc func(rawBody []byte, signature string) error
	ParseWebhookFunc    func(rawBody []byte) (WebhookResult, error)
	RefundFunc          func(ctx context.Context, externalID string, amount float64) error
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) CreateCharge(ctx context.Context, req CreateChargeRequest) (CreateChargeResponse, error) {
	return m.CreateChargeFunc(ctx, req)
}

func (m *mockProvider) VerifySignature(rawBody []byte, signature string) error {
	if m.VerifySignatureFunc == nil {
		return nil
	}
	return m.VerifySignatureFunc(rawBody, signature)
}

func (m *mockProvider) ParseWebhook(rawBody []byte) (WebhookResult, error) {
	return m.ParseWebhookFunc(rawBody)
}

func (m *mockProvider) Refund(ctx context.Context, externalID string, amount float64) error {
	return m.RefundFunc(ctx, externalID, amount)
}

type mockProviderRegistry struct {
	ResolveFunc          func(ctx context.Context, tenantID string, method string) (Provider, error)
	ResolveByNameFunc    func(ctx context.Context, tenantID string, providerName string) (Provider, error)
	ResolveForRefundFunc func(ctx context.Context, tenantID string, providerName string) (Provider, error)
}

func (m *mockProviderRegistry) Resolve(ctx context.Context, tenantID string, method string) (Provider, error) {
	return m.ResolveFunc(ctx, tenantID, method)
}

func (m *mockProviderRegistry) ResolveByName(ctx context.Context, tenantID string, providerName string) (Provider, error) {
	return m.ResolveByNameFunc(ctx, tenantID, providerName)
}

func (m *mockProviderRegistry) ResolveForRefund(ctx context.Context, tenantID string, providerName string) (Provider, error) {
	return m.ResolveForRefundFunc(ctx, tenantID, providerName)
}

type mockTenantConfigRepository struct {
	FindActiveFunc           func(ctx context.Context, tenantID string, method string, tx *sql.Tx) (TenantConfig, error)
	FindActiveByProviderFunc func(ctx context.Context, tenantID string, provider string, tx *sql.Tx) (TenantConfig, error)
	FindLatestByProviderFunc func(ctx context.Context, tenantID string, provider string, tx *sql.Tx) (TenantConfig, error)
}

func (m *mockTenantConfigRepository) FindActive(ctx context.Context, tenantID string, method string, tx *sql.Tx) (TenantConfig, error) {
	return m.FindActiveFunc(ctx, tenantID, method, tx)
}

func (m *mockTenantConfigRepository) FindActiveByProvider(ctx context.Context, tenantID string, provider string, tx *sql.Tx) (TenantConfig, error) {
	return m.FindActiveByProviderFunc(ctx, tenantID, provider, tx)
}

func (m *mockTenantConfigRepository) FindLatestByProvider(ctx context.Context, tenantID string, provider string, tx *sql.Tx) (TenantConfig, error) {
	return m.FindLatestByProviderFunc(ctx, tenantID, provider, tx)
}

type mockCloudTask struct {
	CreateTaskFunc            func(queueID string, request gctasks.Request) error
	DeferCreateTaskInTimeFunc func(queueID string, request gctasks.Request, schedule time.Time) error
	DeferredCount             int
}

func (m *mockCloudTask) CreateTask(queueID string, request gctasks.Request) error {
	if m.CreateTaskFunc == nil {
		return nil
	}
	return m.CreateTaskFunc(queueID, request)
}

func (m *mockCloudTask) DeferCreateTaskInTime(queueID string, request gctasks.Request, schedule time.Time) error {
	m.DeferredCount++
	if m.DeferCreateTaskInTimeFunc == nil {
		return nil
	}
	return m.DeferCreateTaskInTimeFunc(queueID, request, schedule)
}

func (m *mockCloudTask) Close() error {
	return nil
}

type mockOrderConfirmer struct {
	ConfirmPaidOrderFunc func(ctx context.Context, orderID string) error
	Calls                int
}

func (m *mockOrderConfirmer) ConfirmPaidOrder(ctx context.Context, orderID string) error {
	m.Calls++
	if m.ConfirmPaidOrderFunc == nil {
		return nil
	}
	return m.ConfirmPaidOrderFunc(ctx, orderID)
}
