package payment

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	internalMiddleware "github.com/opamenu/om-order/internal/pkg/middleware"
	"github.com/opamenu/om-order/pkg/errors"
	publicMiddleware "github.com/opamenu/om-order/pkg/middleware"
	"github.com/opamenu/om-order/pkg/response"
	"github.com/opamenu/om-order/pkg/status"
)

const signatureHeader = "X-Webhook-Signature"

type HTTPHandler struct {
	Orchestrator Orchestrator
}

func InitHTTPHandler(router *mux.Router, tenantResolver *internalMiddleware.TenantResolver, orchestrator Orchestrator) {
	handler := &HTTPHandler{
		Orchestrator: orchestrator,
	}

	router.HandleFunc("/om-order/v1/storeapp/orders/{orderId}/pix", publicMiddleware.SetRouteChain(handler.GeneratePix, tenantResolver.Resolve)).Methods(http.MethodPost)
	router.HandleFunc("/om-order/v1/storeapp/tenants/{tenantId}/payments/{provider}/webhook", handler.ProcessWebhook).Methods(http.MethodPost)
	router.HandleFunc("/om-order/v1/storeapp/payments/charges/{chargeId}", publicMiddleware.SetRouteChain(handler.GetCharge, tenantResolver.Resolve)).Methods(http.MethodGet)
	router.HandleFunc("/om-order/v1/storeapp/payments/on-expire-charge", handler.OnExpireCharge).Methods(http.MethodPost)
}

func (handler HTTPHandler) GeneratePix(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := mux.Vars(r)["orderId"]

	resp, err := handler.Orchestrator.GeneratePix(ctx, orderID)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusCreated, response.RESTEnvelope{
		Status:  status.CREATED,
		Message: "pix charge has been successfully generated",
		Data:    resp,
		Meta:    nil,
	})
}

func (handler HTTPHandler) GetCharge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chargeID := mux.Vars(r)["chargeId"]

	resp, err := handler.Orchestrator.GetCharge(ctx, chargeID)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "charge has been successfully retrieved",
		Data:    resp,
		Meta:    nil,
	})
}

// ProcessWebhook forwards the raw body untouched; nothing may parse or mutate
// it before signature verification.
func (handler HTTPHandler) ProcessWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	tenantID := vars["tenantId"]
	providerName := vars["provider"]

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: "unreadable webhook payload",
		})

		return
	}

	if err := handler.Orchestrator.ProcessWebhook(ctx, tenantID, providerName, rawBody, r.Header.Get(signatureHeader)); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "webhook has been processed",
		Data:    nil,
		Meta:    nil,
	})
}

func (handler HTTPHandler) OnExpireCharge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	e := ExpireChargeEvent{}
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.Orchestrator.OnExpireCharge(ctx, e); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "charge has been expired if it was still waiting",
		Data:    nil,
		Meta:    nil,
	})
}
