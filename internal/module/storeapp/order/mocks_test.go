package order

import (
	"context"
	"database/sql"

	"github.com/opamenu/om-order/internal/module/storeapp/payment"
)

type mockOrderRepository struct {
	BeginTxFunc               func(ctx context.Context) (*sql.Tx, error)
	CommitTxFunc              func(ctx context.Context, tx *sql.Tx) error
	RollbackFunc              func(ctx context.Context, tx *sql.Tx) error
	SaveFunc                  func(ctx context.Context, o Order, tx *sql.Tx) error
	FindByIDFunc              func(ctx context.Context, ID string, tx *sql.Tx) (Order, error)
	FindManyFunc              func(ctx context.Context, tenantID string, offset, limit int64, tx *sql.Tx) ([]Order, error)
	CountFunc                 func(ctx context.Context, tenantID string, tx *sql.Tx) (int64, error)
	CountActiveByTableFunc    func(ctx context.Context, tenantID string, tableRef string, tx *sql.Tx) (int64, error)
	UpdateStatusIfCurrentFunc func(ctx context.Context, ID string, currentStatus string, o Order, tx *sql.Tx) (int64, error)
}

func (m *mockOrderRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	if m.BeginTxFunc == nil {
		return nil, nil
	}
	return m.BeginTxFunc(ctx)
}

func (m *mockOrderRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	if m.CommitTxFunc == nil {
		return nil
	}
	return m.CommitTxFunc(ctx, tx)
}

func (m *mockOrderRepository) Rollback(ctx context.Context, tx *sql.Tx) error {
	if m.RollbackFunc == nil {
		return nil
	}
	return m.RollbackFunc(ctx, tx)
}

func (m *mockOrderRepository) Save(ctx context.Context, o Order, tx *sql.Tx) error {
	return m.SaveFunc(ctx, o, tx)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Order, error) {
	return m.FindByIDFunc(ctx, ID, tx)
}

func (m *mockOrderRepository) FindMany(ctx context.Context, tenantID string, offset, limit int64, tx *sql.Tx) ([]Order, error) {
	return m.FindManyFunc(ctx, tenantID, offset, limit, tx)
}

func (m *mockOrderRepository) Count(ctx context.Context, tenantID string, tx *sql.Tx) (int64, error) {
	return m.CountFunc(ctx, tenantID, tx)
}

func (m *mockOrderRepository) CountActiveByTable(ctx context.Context, tenantID string, tableRef string, tx *sql.Tx) (int64, error) {
	return m.CountActiveByTableFunc(ctx, tenantID, tableRef, tx)
}

func (m *mockOrderRepository) UpdateStatusIfCurrent(ctx context.Context, ID string, currentStatus string, o Order, tx *sql.Tx) (int64, error) {
	return m.UpdateStatusIfCurrentFunc(ctx, ID, currentStatus, o, tx)
}

type mockChargeRepository struct {
	FindPaidByOrderIDFunc func(ctx context.Context, orderID string, tx *sql.Tx) (payment.Charge, error)
}

func (m *mockChargeRepository) SaveIfNonePending(ctx context.Context, c payment.Charge, tx *sql.Tx) (bool, error) {
	return false, nil
}

func (m *mockChargeRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (payment.Charge, error) {
	return payment.Charge{}, nil
}

func (m *mockChargeRepository) FindByExternalID(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (payment.Charge, error) {
	return payment.Charge{}, nil
}

func (m *mockChargeRepository) FindWaitingByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (payment.Charge, error) {
	return payment.Charge{}, nil
}

func (m *mockChargeRepository) FindPaidByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (payment.Charge, error) {
	return m.FindPaidByOrderIDFunc(ctx, orderID, tx)
}

func (m *mockChargeRepository) UpdateStatusIfCurrent(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error) {
	return 0, nil
}

type mockOrchestrator struct {
	RefundFunc func(ctx context.Context, orderID string) error
}

func (m *mockOrchestrator) GeneratePix(ctx context.Context, orderID string) (payment.PixChargeResult, error) {
	return payment.PixChargeResult{}, nil
}

func (m *mockOrchestrator) GetCharge(ctx context.Context, chargeID string) (payment.PixChargeResult, error) {
	return payment.PixChargeResult{}, nil
}

func (m *mockOrchestrator) ProcessWebhook(ctx context.Context, tenantID string, providerName string, rawBody []byte, signature string) error {
	return nil
}

func (m *mockOrchestrator) Refund(ctx context.Context, orderID string) error {
	return m.RefundFunc(ctx, orderID)
}

func (m *mockOrchestrator) OnExpireCharge(ctx context.Context, e payment.ExpireChargeEvent) error {
	return nil
}

func (m *mockOrchestrator) SetOrderConfirmer(confirmer payment.OrderConfirmer) {}
