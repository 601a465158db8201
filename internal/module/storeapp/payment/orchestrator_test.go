package payment

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(registry ProviderRegistry, chargeRepo ChargeRepository, orderLookup *mockOrderLookupRepository, cloudTask *mockCloudTask) Orchestrator {
	logger := logrus.New()

	return NewOrchestrator(OrchestratorProperty{
		Logger:       logger,
		Timeout:      5 * time.Second,
		BaseURL:      "http://localhost:9000",
		ChargeExpiry: 30 * time.Minute,
		Registry:     registry,
		ChargeRepo:   chargeRepo,
		OrderLookup:  orderLookup,
		CloudTask:    cloudTask,
	})
}

func TestGeneratePix_CreatesChargeAndSchedulesExpiry(t *testing.T) {
	orderLookup := &mockOrderLookupRepository{
		FindByIDFunc: func(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error) {
			return OrderSummary{ID: ID, TenantID: "tenant-1", Total: 42.50, Status: "PENDING"}, nil
		},
	}
	var saved Charge
	chargeRepo := &mockChargeRepository{
		SaveIfNonePendingFunc: func(ctx context.Context, c Charge, tx *sql.Tx) (bool, error) {
			saved = c
			return true, nil
		},
	}
	registry := &mockProviderRegistry{
		ResolveFunc: func(ctx context.Context, tenantID string, method string) (Provider, error) {
			return &mockProvider{
				name: ProviderLocal,
				CreateChargeFunc: func(ctx context.Context, req CreateChargeRequest) (CreateChargeResponse, error) {
					return CreateChargeResponse{ExternalID: req.ChargeID, QRPayload: "00020126..."}, nil
				},
			}, nil
		},
	}
	cloudTask := &mockCloudTask{}

	o := newTestOrchestrator(registry, chargeRepo, orderLookup, cloudTask)

	result, err := o.GeneratePix(context.Background(), "OM123")
	require.NoError(t, err)

	assert.Equal(t, "OM123", saved.OrderID)
	assert.Equal(t, ChargeStatusWaiting, saved.Status)
	assert.Equal(t, 42.50, saved.Amount)
	assert.Equal(t, "00020126...", result.QRPayload)
	assert.Equal(t, 1, cloudTask.DeferredCount)
}

func TestGeneratePix_ReturnsExistingWaitingCharge(t *testing.T) {
	orderLookup := &mockOrderLookupRepository{
		FindByIDFunc: func(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error) {
			return OrderSummary{ID: ID, TenantID: "tenant-1", Total: 10, Status: "PENDING"}, nil
		},
	}
	existing := Charge{
		ID:        "charge-1",
		OrderID:   "OM123",
		Status:    ChargeStatusWaiting,
		QRPayload: "reused-payload",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	chargeRepo := &mockChargeRepository{
		FindWaitingByOrderIDFunc: func(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error) {
			return existing, nil
		},
	}
	registry := &mockProviderRegistry{
		ResolveFunc: func(ctx context.Context, tenantID string, method string) (Provider, error) {
			t.Fatal("a pending charge must not reach the provider again")
			return nil, nil
		},
	}
	cloudTask := &mockCloudTask{}

	o := newTestOrchestrator(registry, chargeRepo, orderLookup, cloudTask)

	result, err := o.GeneratePix(context.Background(), "OM123")
	require.NoError(t, err)

	assert.Equal(t, "charge-1", result.ChargeID)
	assert.Equal(t, "reused-payload", result.QRPayload)
	assert.Equal(t, 0, cloudTask.DeferredCount)
}

func TestGeneratePix_RejectsAlreadyPaidOrder(t *testing.T) {
	orderLookup := &mockOrderLookupRepository{
		FindByIDFunc: func(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error) {
			return OrderSummary{ID: ID, TenantID: "tenant-1", Total: 10, Status: "CONFIRMED"}, nil
		},
	}
	chargeRepo := &mockChargeRepository{
		FindPaidByOrderIDFunc: func(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error) {
			return Charge{ID: "charge-1", OrderID: orderID, Status: ChargeStatusPaid}, nil
		},
	}
	registry := &mockProviderRegistry{}
	cloudTask := &mockCloudTask{}

	o := newTestOrchestrator(registry, chargeRepo, orderLookup, cloudTask)

	_, err := o.GeneratePix(context.Background(), "OM123")
	require.Error(t, err)

	ae := errors.Destruct(err)
	assert.Equal(t, status.ORDER_ALREADY_PAID, ae.Status)
	assert.Equal(t, http.StatusConflict, ae.HTTPStatusCode)
}

func TestGeneratePix_NotConfiguredTenant(t *testing.T) {
	orderLookup := &mockOrderLookupRepository{
		FindByIDFunc: func(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error) {
			return OrderSummary{ID: ID, TenantID: "tenant-1", Total: 10, Status: "PENDING"}, nil
		},
	}
	chargeRepo := &mockChargeRepository{}
	registry := &mockProviderRegistry{
		ResolveFunc: func(ctx context.Context, tenantID string, method string) (Provider, error) {
			return nil, errors.New(http.StatusNotFound, status.NOT_CONFIGURED, "no payment provider is configured for this tenant")
		},
	}
	cloudTask := &mockCloudTask{}

	o := newTestOrchestrator(registry, chargeRepo, orderLookup, cloudTask)

	_, err := o.GeneratePix(context.Background(), "OM123")
	require.Error(t, err)
	assert.Equal(t, status.NOT_CONFIGURED, errors.Destruct(err).Status)
}

func TestGeneratePix_LostInsertRaceReturnsWinner(t *testing.T) {
	orderLookup := &mockOrderLookupRepository{
		FindByIDFunc: func(ctx context.Context, ID string, tx *sql.Tx) (OrderSummary, error) {
			return OrderSummary{ID: ID, TenantID: "tenant-1", Total: 10, Status: "PENDING"}, nil
		},
	}
	winner := Charge{ID: "winner", OrderID: "OM123", Status: ChargeStatusWaiting, ExpiresAt: time.Now().Add(30 * time.Minute)}
	lookups := 0
	chargeRepo := &mockChargeRepository{
		SaveIfNonePendingFunc: func(ctx context.Context, c Charge, tx *sql.Tx) (bool, error) {
			return false, nil
		},
		FindWaitingByOrderIDFunc: func(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error) {
			lookups++
			// First lookup happens before the provider call and must miss so
			// the flow reaches the insert.
			if lookups == 1 {
				return Charge{}, errors.New(http.StatusNotFound, status.UNKNOWN_CHARGE, "charge is not found")
			}
			return winner, nil
		},
	}
	registry := &mockProviderRegistry{
		ResolveFunc: func(ctx context.Context, tenantID string, method string) (Provider, error) {
			return &mockProvider{
				name: ProviderLocal,
				CreateChargeFunc: func(ctx context.Context, req CreateChargeRequest) (CreateChargeResponse, error) {
					return CreateChargeResponse{ExternalID: req.ChargeID, QRPayload: "p"}, nil
				},
			}, nil
		},
	}
	cloudTask := &mockCloudTask{}

	o := newTestOrchestrator(registry, chargeRepo, orderLookup, cloudTask)

	result, err := o.GeneratePix(context.Background(), "OM123")
	require.NoError(t, err)
	assert.Equal(t, "winner", result.ChargeID)
	assert.Equal(t, 0, cloudTask.DeferredCount)
}

func TestProcessWebhook_PaidConfirmsOrderOnce(t *testing.T) {
	charge := Charge{ID: "charge-1", OrderID: "OM123", TenantID: "tenant-1", Status: ChargeStatusWaiting}

	updates := 0
	chargeRepo := &mockChargeRepository{
		FindByExternalIDFunc: func(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (Charge, error) {
			return charge, nil
		},
		UpdateStatusIfCurrentFunc: func(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error) {
			updates++
			if charge.Status != currentStatus {
				return 0, nil
			}
			charge.Status = newStatus
			return 1, nil
		},
	}
	registry := &mockProviderRegistry{
		ResolveByNameFunc: func(ctx context.Context, tenantID string, providerName string) (Provider, error) {
			return &mockProvider{
				name: ProviderLocal,
				ParseWebhookFunc: func(rawBody []byte) (WebhookResult, error) {
					return WebhookResult{ExternalID: "ext-1", Status: ChargeStatusPaid, Amount: 10}, nil
				},
			}, nil
		},
	}
	cloudTask := &mockCloudTask{}

	o := newTestOrchestrator(registry, chargeRepo, &mockOrderLookupRepository{}, cloudTask)

	confirmer := &mockOrderConfirmer{}
	o.SetOrderConfirmer(confirmer)

	body := []byte(`{"transaction_id":"ext-1","status":"paid","amount":10}`)

	require.NoError(t, o.ProcessWebhook(context.Background(), "tenant-1", ProviderLocal, body, "sig"))
	require.NoError(t, o.ProcessWebhook(context.Background(), "tenant-1", ProviderLocal, body, "sig"))

	assert.Equal(t, ChargeStatusPaid, charge.Status)
	assert.Equal(t, 2, updates)
	// The second delivery still asks for confirmation; the order side is the
	// one that makes it a no-op.
	assert.Equal(t, 2, confirmer.Calls)
}

func TestProcessWebhook_TamperedSignatureChangesNothing(t *testing.T) {
	chargeRepo := &mockChargeRepository{
		FindByExternalIDFunc: func(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (Charge, error) {
			t.Fatal("unverified webhook must not reach the charge store")
			return Charge{}, nil
		},
		UpdateStatusIfCurrentFunc: func(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error) {
			t.Fatal("unverified webhook must not change state")
			return 0, nil
		},
	}
	registry := &mockProviderRegistry{
		ResolveByNameFunc: func(ctx context.Context, tenantID string, providerName string) (Provider, error) {
			return &mockProvider{
				name: ProviderLocal,
				VerifySignatureFunc: func(rawBody []byte, signature string) error {
					return errors.New(http.StatusUnauthorized, status.SIGNATURE_VERIFICATION_FAILED, "webhook signature does not match")
				},
			}, nil
		},
	}

	o := newTestOrchestrator(registry, chargeRepo, &mockOrderLookupRepository{}, &mockCloudTask{})
	o.SetOrderConfirmer(&mockOrderConfirmer{})

	err := o.ProcessWebhook(context.Background(), "tenant-1", ProviderLocal, []byte(`{}`), "bad")
	require.Error(t, err)
	assert.Equal(t, status.SIGNATURE_VERIFICATION_FAILED, errors.Destruct(err).Status)
}

func TestProcessWebhook_UnknownChargeIsAcknowledged(t *testing.T) {
	chargeRepo := &mockChargeRepository{
		FindByExternalIDFunc: func(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (Charge, error) {
			return Charge{}, errors.New(http.StatusNotFound, status.UNKNOWN_CHARGE, "charge is not found")
		},
	}
	registry := &mockProviderRegistry{
		ResolveByNameFunc: func(ctx context.Context, tenantID string, providerName string) (Provider, error) {
			return &mockProvider{
				name: ProviderLocal,
				ParseWebhookFunc: func(rawBody []byte) (WebhookResult, error) {
					return WebhookResult{ExternalID: "ghost", Status: ChargeStatusPaid}, nil
				},
			}, nil
		},
	}

	o := newTestOrchestrator(registry, chargeRepo, &mockOrderLookupRepository{}, &mockCloudTask{})
	o.SetOrderConfirmer(&mockOrderConfirmer{})

	assert.NoError(t, o.ProcessWebhook(context.Background(), "tenant-1", ProviderLocal, []byte(`{}`), "sig"))
}

func TestProcessWebhook_LatePaymentForExpiredCharge(t *testing.T) {
	charge := Charge{ID: "charge-1", OrderID: "OM123", Status: ChargeStatusExpired}

	chargeRepo := &mockChargeRepository{
		FindByExternalIDFunc: func(ctx context.Context, tenantID string, externalID string, tx *sql.Tx) (Charge, error) {
			return charge, nil
		},
		UpdateStatusIfCurrentFunc: func(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error) {
			return 0, nil
		},
	}
	registry := &mockProviderRegistry{
		ResolveByNameFunc: func(ctx context.Context, tenantID string, providerName string) (Provider, error) {
			return &mockProvider{
				name: ProviderLocal,
				ParseWebhookFunc: func(rawBody []byte) (WebhookResult, error) {
					return WebhookResult{ExternalID: "ext-1", Status: ChargeStatusPaid}, nil
				},
			}, nil
		},
	}

	o := newTestOrchestrator(registry, chargeRepo, &mockOrderLookupRepository{}, &mockCloudTask{})

	confirmer := &mockOrderConfirmer{}
	o.SetOrderConfirmer(confirmer)

	require.NoError(t, o.ProcessWebhook(context.Background(), "tenant-1", ProviderLocal, []byte(`{}`), "sig"))
	assert.Equal(t, 0, confirmer.Calls)
}

func TestRefund_PaidChargeBecomesRefunded(t *testing.T) {
	charge := Charge{ID: "charge-1", OrderID: "OM123", TenantID: "tenant-1", Provider: ProviderOpenPix, ExternalID: "ext-1", Amount: 55, Status: ChargeStatusPaid}

	refunded := false
	chargeRepo := &mockChargeRepository{
		FindPaidByOrderIDFunc: func(ctx context.Context, orderID string, tx *sql.Tx) (Charge, error) {
			return charge, nil
		},
		UpdateStatusIfCurrentFunc: func(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error) {
			require.Equal(t, ChargeStatusPaid, currentStatus)
			require.Equal(t, ChargeStatusRefunded, newStatus)
			charge.Status = newStatus
			return 1, nil
		},
	}
	registry := &mockProviderRegistry{
		ResolveForRefundFunc: func(ctx context.Context, tenantID string, providerName string) (Provider, error) {
			require.Equal(t, ProviderOpenPix, providerName)
			return &mockProvider{
				name: ProviderOpenPix,
				RefundFunc: func(ctx context.Context, externalID string, amount float64) error {
					refunded = true
					require.Equal(t, "ext-1", externalID)
					require.Equal(t, 55.0, amount)
					return nil
				},
			}, nil
		},
	}

	o := newTestOrchestrator(registry, chargeRepo, &mockOrderLookupRepository{}, &mockCloudTask{})

	require.NoError(t, o.Refund(context.Background(), "OM123"))
	assert.True(t, refunded)
	assert.Equal(t, ChargeStatusRefunded, charge.Status)
}

func TestOnExpireCharge_PaidChargeIsLeftAlone(t *testing.T) {
	chargeRepo := &mockChargeRepository{
		UpdateStatusIfCurrentFunc: func(ctx context.Context, ID string, currentStatus string, newStatus string, tx *sql.Tx) (int64, error) {
			require.Equal(t, ChargeStatusWaiting, currentStatus)
			require.Equal(t, ChargeStatusExpired, newStatus)
			return 0, nil
		},
	}

	o := newTestOrchestrator(&mockProviderRegistry{}, chargeRepo, &mockOrderLookupRepository{}, &mockCloudTask{})

	assert.NoError(t, o.OnExpireCharge(context.Background(), ExpireChargeEvent{ChargeID: "charge-1"}))
}
