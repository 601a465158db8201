package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type openPixChargeRequest struct {
	CorrelationID string `json:"correlationID"`
	Value         int64  `json:"value"`
	ExpiresIn     int64  `json:"expiresIn"`
	Comment       string `json:"comment"`
}

type openPixChargeResponse struct {
	Charge struct {
		TransactionID string `json:"transactionID"`
		BRCode        string `json:"brCode"`
		Status        string `json:"status"`
	} `json:"charge"`
}

type openPixWebhookPayload struct {
	Event  string `json:"event"`
	Charge struct {
		TransactionID string `json:"transactionID"`
		Status        string `json:"status"`
		Value         int64  `json:"value"`
	} `json:"charge"`
}

type openPixRefundRequest struct {
	TransactionID string `json:"transactionID"`
	Value         int64  `json:"value"`
}

// openPixProvider wraps the OpenPix gateway. Amounts cross the wire in
// centavos.
type openPixProvider struct {
	baseURL string
	logger  *logrus.Logger
	hc      *http.Client
	config  TenantConfig
}

func NewOpenPixProvider(baseURL string, logger *logrus.Logger, hc *http.Client, config TenantConfig) Provider {
	return &openPixProvider{
		baseURL: baseURL,
		logger:  logger,
		hc:      hc,
		config:  config,
	}
}

func (p *openPixProvider) Name() string {
	return ProviderOpenPix
}

// CreateCharge implements Provider.
func (p *openPixProvider) CreateCharge(ctx context.Context, req CreateChargeRequest) (CreateChargeResponse, error) {
	expiresIn := int64(math.Max(time.Until(req.ExpiresAt).Seconds(), 60))

	gatewayReq := openPixChargeRequest{
		CorrelationID: req.ChargeID,
		Value:         toCentavos(req.Amount),
		ExpiresIn:     expiresIn,
		Comment:       fmt.Sprintf("order %s", req.OrderID),
	}

	respBody, err := p.do(ctx, http.MethodPost, "/api/v1/charge", gatewayReq)
	if err != nil {
		return CreateChargeResponse{}, err
	}

	var resp openPixChargeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error()
		return CreateChargeResponse{}, errors.New(http.StatusBadGateway, status.INTERNAL_SERVER_ERROR, "payment unavailable, try again")
	}

	return CreateChargeResponse{
		ExternalID: resp.Charge.TransactionID,
		QRPayload:  resp.Charge.BRCode,
	}, nil
}

// VerifySignature implements Provider.
func (p *openPixProvider) VerifySignature(rawBody []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(p.config.WebhookSecret))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New(http.StatusUnauthorized, status.SIGNATURE_VERIFICATION_FAILED, "webhook signature mismatch")
	}

	return nil
}

// ParseWebhook implements Provider.
func (p *openPixProvider) ParseWebhook(rawBody []byte) (WebhookResult, error) {
	var payload openPixWebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return WebhookResult{}, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, "malformed webhook payload")
	}

	var chargeStatus string
	switch payload.Charge.Status {
	case "COMPLETED":
		chargeStatus = ChargeStatusPaid
	case "EXPIRED":
		chargeStatus = ChargeStatusExpired
	default:
		chargeStatus = ChargeStatusFailed
	}

	return WebhookResult{
		ExternalID: payload.Charge.TransactionID,
		Status:     chargeStatus,
		Amount:     fromCentavos(payload.Charge.Value),
	}, nil
}

// Refund implements Provider.
func (p *openPixProvider) Refund(ctx context.Context, externalID string, amount float64) error {
	gatewayReq := openPixRefundRequest{
		TransactionID: externalID,
		Value:         toCentavos(amount),
	}

	_, err := p.do(ctx, http.MethodPost, "/api/v1/charge/refund", gatewayReq)
	return err
}

// do posts to the gateway with one retry on transport failures. Backoff is a
// flat second; the gateway timeout already bounds each attempt.
func (p *openPixProvider) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	reqBuff, _ := json.Marshal(body)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil, errors.New(http.StatusGatewayTimeout, status.GATEWAY_TIMEOUT, "payment unavailable, try again")
			}
		}

		respBody, err := p.doOnce(ctx, method, path, bytes.NewBuffer(reqBuff))
		if err == nil {
			return respBody, nil
		}

		lastErr = err
		if !isTransient(err) {
			return nil, err
		}
	}

	p.logger.WithContext(ctx).WithError(lastErr).Error()
	return nil, errors.New(http.StatusGatewayTimeout, status.GATEWAY_TIMEOUT, "payment unavailable, try again")
}

func (p *openPixProvider) doOnce(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := fmt.Sprintf("%s%s", p.baseURL, path)

	hr, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "payment unavailable, try again")
	}

	hr.Header.Add("Content-Type", "application/json")
	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("Authorization", p.config.APIKey)

	hresp, err := p.hc.Do(hr)
	if err != nil {
		return nil, &transientError{cause: err}
	}

	defer hresp.Body.Close()

	respBody, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, &transientError{cause: err}
	}

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		p.logger.WithContext(ctx).WithField("gatewayStatus", hresp.StatusCode).Error(string(respBody))
		return nil, errors.New(http.StatusBadGateway, status.INTERNAL_SERVER_ERROR, "payment unavailable, try again")
	}

	return respBody, nil
}

type transientError struct {
	cause error
}

func (e *transientError) Error() string {
	return e.cause.Error()
}

func isTransient(err error) bool {
	if _, ok := err.(*transientError); ok {
		return true
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

func toCentavos(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).IntPart()
}

func fromCentavos(value int64) float64 {
	f, _ := decimal.NewFromInt(value).Div(decimal.NewFromInt(100)).Float64()
	return f
}
