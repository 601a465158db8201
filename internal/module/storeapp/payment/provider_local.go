package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/pix"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/sirupsen/logrus"
)

// localProvider serves tenants that registered a bare PIX key: the BR-Code is
// built in-process and payment confirmation arrives through the tenant's bank
// integration posting to the webhook endpoint.
type localProvider struct {
	logger *logrus.Logger
	config TenantConfig
}

func NewLocalProvider(logger *logrus.Logger, config TenantConfig) Provider {
	return &localProvider{
		logger: logger,
		config: config,
	}
}

func (p *localProvider) Name() string {
	return ProviderLocal
}

// CreateCharge implements Provider.
func (p *localProvider) CreateCharge(ctx context.Context, req CreateChargeRequest) (CreateChargeResponse, error) {
	payload := pix.BuildPayload(req.Amount, p.config.PixKey, p.config.MerchantName, p.config.MerchantCity, req.ChargeID)

	return CreateChargeResponse{
		ExternalID: req.ChargeID,
		QRPayload:  payload,
	}, nil
}

// VerifySignature implements Provider.
func (p *localProvider) VerifySignature(rawBody []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(p.config.WebhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New(http.StatusUnauthorized, status.SIGNATURE_VERIFICATION_FAILED, "webhook signature mismatch")
	}

	return nil
}

type localWebhookPayload struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
}

// ParseWebhook implements Provider.
func (p *localProvider) ParseWebhook(rawBody []byte) (WebhookResult, error) {
	var payload localWebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return WebhookResult{}, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, "malformed webhook payload")
	}

	var chargeStatus string
	switch payload.Status {
	case "paid":
		chargeStatus = ChargeStatusPaid
	case "expired":
		chargeStatus = ChargeStatusExpired
	default:
		chargeStatus = ChargeStatusFailed
	}

	return WebhookResult{
		ExternalID: payload.TransactionID,
		Status:     chargeStatus,
		Amount:     payload.Amount,
	}, nil
}

// Refund implements Provider. A bare PIX key has no refund API; the transfer
// back to the customer has to be made manually.
func (p *localProvider) Refund(ctx context.Context, externalID string, amount float64) error {
	return errors.New(http.StatusNotImplemented, status.NOT_CONFIGURED, "local pix charges require manual refunds")
}
