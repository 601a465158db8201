package loyalty

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	internalMiddleware "github.com/opamenu/om-order/internal/pkg/middleware"
	"github.com/opamenu/om-order/pkg/errors"
	publicMiddleware "github.com/opamenu/om-order/pkg/middleware"
	"github.com/opamenu/om-order/pkg/response"
	"github.com/opamenu/om-order/pkg/status"
)

type BalanceResponse struct {
	CustomerID string `json:"customer_id"`
	Balance    int64  `json:"balance"`
}

type TransactionResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Type      string    `json:"type"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

type HTTPHandler struct {
	Settlement Settlement
}

func InitHTTPHandler(router *mux.Router, tenantResolver *internalMiddleware.TenantResolver, settlement Settlement) {
	handler := &HTTPHandler{
		Settlement: settlement,
	}

	router.HandleFunc("/om-order/v1/storeapp/loyalty/balance", publicMiddleware.SetRouteChain(handler.GetBalance, tenantResolver.Resolve)).Methods(http.MethodGet)
	router.HandleFunc("/om-order/v1/storeapp/loyalty/transactions", publicMiddleware.SetRouteChain(handler.GetTransactions, tenantResolver.Resolve)).Methods(http.MethodGet)
}

func (handler HTTPHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, _ := internalMiddleware.GetTenantFromCtx(ctx)
	customerID := r.URL.Query().Get("customer_id")

	if customerID == "" {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "customer_id is required",
		})

		return
	}

	balance, err := handler.Settlement.Balance(ctx, tenantID, customerID)
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
		Message: "customer loyalty balance",
		Data: BalanceResponse{
			CustomerID: customerID,
			Balance:    balance,
		},
		Meta: nil,
	})
}

func (handler HTTPHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, _ := internalMiddleware.GetTenantFromCtx(ctx)
	customerID := r.URL.Query().Get("customer_id")

	if customerID == "" {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "customer_id is required",
		})

		return
	}

	transactions, err := handler.Settlement.Ledger(ctx, tenantID, customerID)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	data := make([]TransactionResponse, len(transactions))
	for k, t := range transactions {
		data[k] = TransactionResponse{
			ID:        t.ID,
			OrderID:   t.OrderID,
			Type:      t.Type,
			Points:    t.Points,
			CreatedAt: t.CreatedAt,
		}
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "customer loyalty transactions",
		Data:    data,
		Meta:    nil,
	})
}
