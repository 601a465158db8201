package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/google/uuid"
	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/gctasks"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

// OrderConfirmer moves a still-pending order to confirmed once its charge is
// paid. Implemented by the order use case; injected after construction to
// break the build-order cycle between the two modules.
type OrderConfirmer interface {
	ConfirmPaidOrder(ctx context.Context, orderID string) error
}

type Orchestrator interface {
	GeneratePix(ctx context.Context, orderID string) (PixChargeResult, error)
	GetCharge(ctx context.Context, chargeID string) (PixChargeResult, error)
	ProcessWebhook(ctx context.Context, tenantID string, providerName string, rawBody []byte, signature string) error
	Refund(ctx context.Context, orderID string) error
	OnExpireCharge(ctx context.Context, e ExpireChargeEvent) error
	SetOrderConfirmer(confirmer OrderConfirmer)
}

type orchestrator struct {
	logger         *logrus.Logger
	timeout        time.Duration
	baseURL        string
	chargeExpiry   time.Duration
	registry       ProviderRegistry
	chargeRepo     ChargeRepository
	orderLookup    OrderLookupRepository
	cloudTask      gctasks.Client
	orderConfirmer OrderConfirmer
}

type OrchestratorProperty struct {
	Logger       *logrus.Logger
	Timeout      time.Duration
	BaseURL      string
	ChargeExpiry time.Duration
	Registry     ProviderRegistry
	ChargeRepo   ChargeRepository
	OrderLookup  OrderLookupRepository
	CloudTask    gctasks.Client
}

func NewOrchestrator(props OrchestratorProperty) Orchestrator {
	return &orchestrator{
		logger:       props.Logger,
		timeout:      props.Timeout,
		baseURL:      props.BaseURL,
		chargeExpiry: props.ChargeExpiry,
		registry:     props.Registry,
		chargeRepo:   props.ChargeRepo,
		orderLookup:  props.OrderLookup,
		cloudTask:    props.CloudTask,
	}
}

func (o *orchestrator) SetOrderConfirmer(confirmer OrderConfirmer) {
	o.orderConfirmer = confirmer
}

// GeneratePix implements Orchestrator.
func (o *orchestrator) GeneratePix(ctx context.Context, orderID string) (PixChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	order, err := o.orderLookup.FindByID(ctx, orderID, nil)
	if err != nil {
		return PixChargeResult{}, err
	}

	if _, err := o.chargeRepo.FindPaidByOrderID(ctx, orderID, nil); err == nil {
		return PixChargeResult{}, errors.New(http.StatusConflict, status.ORDER_ALREADY_PAID, "order already has a paid charge")
	}

	now := time.Now()

	// Re-requesting while a charge is still pending hands back the existing
	// one instead of opening a duplicate at the gateway.
	if existing, err := o.chargeRepo.FindWaitingByOrderID(ctx, orderID, nil); err == nil && existing.ExpiresAt.After(now) {
		result := PixChargeResult{}
		result.PopulateFromEntity(existing)
		return result, nil
	}

	provider, err := o.registry.Resolve(ctx, order.TenantID, MethodPix)
	if err != nil {
		return PixChargeResult{}, err
	}

	charge := Charge{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		TenantID:  order.TenantID,
		Provider:  provider.Name(),
		Amount:    order.Total,
		Status:    ChargeStatusWaiting,
		ExpiresAt: now.Add(o.chargeExpiry),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := provider.CreateCharge(ctx, CreateChargeRequest{
		ChargeID:  charge.ID,
		OrderID:   order.ID,
		Amount:    order.Total,
		ExpiresAt: charge.ExpiresAt,
	})
	if err != nil {
		return PixChargeResult{}, err
	}

	charge.ExternalID = created.ExternalID
	charge.QRPayload = created.QRPayload

	inserted, err := o.chargeRepo.SaveIfNonePending(ctx, charge, nil)
	if err != nil {
		return PixChargeResult{}, err
	}

	if !inserted {
		// Lost the race to a concurrent request; hand back the winner.
		existing, err := o.chargeRepo.FindWaitingByOrderID(ctx, orderID, nil)
		if err != nil {
			return PixChargeResult{}, errors.New(http.StatusConflict, status.CHARGE_ALREADY_PENDING, "a pending charge already exists for this order")
		}
		result := PixChargeResult{}
		result.PopulateFromEntity(existing)
		return result, nil
	}

	o.scheduleExpiry(ctx, charge)

	result := PixChargeResult{}
	result.PopulateFromEntity(charge)

	return result, nil
}

// GetCharge implements Orchestrator. Serves the app polling the charge while
// the customer has the QR code on screen.
func (o *orchestrator) GetCharge(ctx context.Context, chargeID string) (PixChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	charge, err := o.chargeRepo.FindByID(ctx, chargeID, nil)
	if err != nil {
		return PixChargeResult{}, err
	}

	result := PixChargeResult{}
	result.PopulateFromEntity(charge)

	return result, nil
}

func (o *orchestrator) scheduleExpiry(ctx context.Context, charge Charge) {
	eventBuff, _ := json.Marshal(ExpireChargeEvent{ChargeID: charge.ID})

	taskRequest := gctasks.Request{
		URL:    fmt.Sprintf("%s/om-order/v1/storeapp/payments/on-expire-charge", o.baseURL),
		Method: cloudtaskspb.HttpMethod_POST,
		Body:   eventBuff,
	}

	if err := o.cloudTask.DeferCreateTaskInTime("expire-charge", taskRequest, charge.ExpiresAt); err != nil {
		o.logger.WithContext(ctx).WithField("chargeId", charge.ID).WithError(err).Error()
	}
}

// ProcessWebhook implements Orchestrator. The raw body is verified before it
// is parsed; unverified payloads are rejected, never processed.
func (o *orchestrator) ProcessWebhook(ctx context.Context, tenantID string, providerName string, rawBody []byte, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	provider, err := o.registry.ResolveByName(ctx, tenantID, providerName)
	if err != nil {
		return err
	}

	if err := provider.VerifySignature(rawBody, signature); err != nil {
		o.logger.WithContext(ctx).WithFields(logrus.Fields{
			"tenantId": tenantID,
			"provider": providerName,
		}).Warn("webhook signature verification failed")
		return err
	}

	result, err := provider.ParseWebhook(rawBody)
	if err != nil {
		return err
	}

	charge, err := o.chargeRepo.FindByExternalID(ctx, tenantID, result.ExternalID, nil)
	if err != nil {
		ae := errors.Destruct(err)
		if ae.Status == status.UNKNOWN_CHARGE {
			// The gateway cannot resolve this either; acknowledge so it
			// stops retrying.
			o.logger.WithContext(ctx).WithFields(logrus.Fields{
				"tenantId":   tenantID,
				"provider":   providerName,
				"externalId": result.ExternalID,
			}).Warn("webhook references unknown charge")
			return nil
		}
		return err
	}

	switch result.Status {
	case ChargeStatusPaid:
		return o.applyPaid(ctx, charge)
	case ChargeStatusExpired, ChargeStatusFailed:
		// Losing the conditional update means the charge already left
		// WAITING; duplicate deliveries land here as no-ops.
		_, err := o.chargeRepo.UpdateStatusIfCurrent(ctx, charge.ID, ChargeStatusWaiting, result.Status, nil)
		return err
	default:
		return nil
	}
}

func (o *orchestrator) applyPaid(ctx context.Context, charge Charge) error {
	rows, err := o.chargeRepo.UpdateStatusIfCurrent(ctx, charge.ID, ChargeStatusWaiting, ChargeStatusPaid, nil)
	if err != nil {
		return err
	}

	if rows == 0 && charge.Status != ChargeStatusPaid {
		// Charge already expired or failed; a late payment needs manual
		// attention, not an automatic confirmation.
		o.logger.WithContext(ctx).WithFields(logrus.Fields{
			"chargeId": charge.ID,
			"status":   charge.Status,
		}).Warn("paid webhook for non-waiting charge")
		return nil
	}

	// Runs on duplicate deliveries too; the confirmation itself is
	// conditional on the order still being pending.
	if err := o.orderConfirmer.ConfirmPaidOrder(ctx, charge.OrderID); err != nil {
		o.logger.WithContext(ctx).WithField("orderId", charge.OrderID).WithError(err).Error()
		return err
	}

	return nil
}

// Refund implements Orchestrator.
func (o *orchestrator) Refund(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	charge, err := o.chargeRepo.FindPaidByOrderID(ctx, orderID, nil)
	if err != nil {
		return err
	}

	provider, err := o.registry.ResolveForRefund(ctx, charge.TenantID, charge.Provider)
	if err != nil {
		return err
	}

	if err := provider.Refund(ctx, charge.ExternalID, charge.Amount); err != nil {
		return err
	}

	if _, err := o.chargeRepo.UpdateStatusIfCurrent(ctx, charge.ID, ChargeStatusPaid, ChargeStatusRefunded, nil); err != nil {
		return err
	}

	return nil
}

// OnExpireCharge implements Orchestrator. Invoked by the deferred task; a
// charge that got paid in the meantime is left alone.
func (o *orchestrator) OnExpireCharge(ctx context.Context, e ExpireChargeEvent) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	_, err := o.chargeRepo.UpdateStatusIfCurrent(ctx, e.ChargeID, ChargeStatusWaiting, ChargeStatusExpired, nil)
	return err
}
