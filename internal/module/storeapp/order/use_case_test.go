package order

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/opamenu/om-order/internal/module/storeapp/payment"
	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newRefundTestUseCase(chargeRepo *mockChargeRepository, orchestrator *mockOrchestrator) *orderUseCase {
	return &orderUseCase{
		logger:       logrus.New(),
		chargeRepo:   chargeRepo,
		orchestrator: orchestrator,
	}
}

func TestHandleCancellationRefund_NoPaidChargeIsANoOp(t *testing.T) {
	chargeRepo := &mockChargeRepository{
		FindPaidByOrderIDFunc: func(ctx context.Context, orderID string, tx *sql.Tx) (payment.Charge, error) {
			return payment.Charge{}, errors.New(http.StatusNotFound, status.UNKNOWN_CHARGE, "payment charge is not found")
		},
	}
	orchestrator := &mockOrchestrator{
		RefundFunc: func(ctx context.Context, orderID string) error {
			t.Fatal("an unpaid order must not be refunded")
			return nil
		},
	}

	u := newRefundTestUseCase(chargeRepo, orchestrator)

	o := Order{ID: "OM123"}
	u.handleCancellationRefund(context.Background(), &o)

	assert.False(t, o.RefundFlagged)
}

func TestHandleCancellationRefund_LookupFailureFlagsOrder(t *testing.T) {
	chargeRepo := &mockChargeRepository{
		FindPaidByOrderIDFunc: func(ctx context.Context, orderID string, tx *sql.Tx) (payment.Charge, error) {
			return payment.Charge{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an unexpected error occurred")
		},
	}
	orchestrator := &mockOrchestrator{
		RefundFunc: func(ctx context.Context, orderID string) error {
			t.Fatal("a refund must not run when the paid charge is unknown")
			return nil
		},
	}

	u := newRefundTestUseCase(chargeRepo, orchestrator)

	o := Order{ID: "OM123"}
	u.handleCancellationRefund(context.Background(), &o)

	assert.True(t, o.RefundFlagged)
}

func TestHandleCancellationRefund_RefundFailureFlagsOrder(t *testing.T) {
	chargeRepo := &mockChargeRepository{
		FindPaidByOrderIDFunc: func(ctx context.Context, orderID string, tx *sql.Tx) (payment.Charge, error) {
			return payment.Charge{ID: "charge-1", OrderID: orderID, Status: payment.ChargeStatusPaid}, nil
		},
	}
	orchestrator := &mockOrchestrator{
		RefundFunc: func(ctx context.Context, orderID string) error {
			return errors.New(http.StatusBadGateway, status.INTERNAL_SERVER_ERROR, "payment unavailable, try again")
		},
	}

	u := newRefundTestUseCase(chargeRepo, orchestrator)

	o := Order{ID: "OM123"}
	u.handleCancellationRefund(context.Background(), &o)

	assert.True(t, o.RefundFlagged)
}

func TestHandleCancellationRefund_SuccessfulRefundLeavesOrderClean(t *testing.T) {
	refunds := 0
	chargeRepo := &mockChargeRepository{
		FindPaidByOrderIDFunc: func(ctx context.Context, orderID string, tx *sql.Tx) (payment.Charge, error) {
			return payment.Charge{ID: "charge-1", OrderID: orderID, Status: payment.ChargeStatusPaid}, nil
		},
	}
	orchestrator := &mockOrchestrator{
		RefundFunc: func(ctx context.Context, orderID string) error {
			refunds++
			return nil
		},
	}

	u := newRefundTestUseCase(chargeRepo, orchestrator)

	o := Order{ID: "OM123"}
	u.handleCancellationRefund(context.Background(), &o)

	assert.Equal(t, 1, refunds)
	assert.False(t, o.RefundFlagged)
}
