package order

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	internalMiddleware "github.com/opamenu/om-order/internal/pkg/middleware"
	"github.com/opamenu/om-order/pkg/errors"
	publicMiddleware "github.com/opamenu/om-order/pkg/middleware"
	"github.com/opamenu/om-order/pkg/response"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/opamenu/om-order/pkg/validator"
)

type HTTPHandler struct {
	OrderUseCase OrderUseCase
}

func InitHTTPHandler(router *mux.Router, tenantResolver *internalMiddleware.TenantResolver, orderUseCase OrderUseCase) {
	handler := &HTTPHandler{
		OrderUseCase: orderUseCase,
	}

	router.HandleFunc("/om-order/v1/storeapp/orders", publicMiddleware.SetRouteChain(handler.PlaceOrder, tenantResolver.Resolve)).Methods(http.MethodPost)
	router.HandleFunc("/om-order/v1/storeapp/orders", publicMiddleware.SetRouteChain(handler.GetManyOrder, tenantResolver.Resolve)).Methods(http.MethodGet)
	router.HandleFunc("/om-order/v1/storeapp/orders/{orderId}", handler.GetOrder).Methods(http.MethodGet)
	router.HandleFunc("/om-order/v1/storeapp/orders/{orderId}/status", handler.TransitionStatus).Methods(http.MethodPatch)
}

func (handler HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := internalMiddleware.GetTenantFromCtx(ctx)
	if !ok {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "missing tenant header",
		})

		return
	}

	req := PlaceOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := validator.Get().StructCtx(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.OrderUseCase.PlaceOrder(ctx, tenantID, req)
	if err != nil {
		var ve *ValidationError
		if stderrors.As(err, &ve) {
			response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
				Status:  status.VALIDATION_FAILED,
				Message: "order validation failed",
				Data:    ve.Result,
			})

			return
		}

		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusCreated, response.RESTEnvelope{
		Status:  status.CREATED,
		Message: "order has been successfully placed",
		Data:    resp,
		Meta:    nil,
	})
}

func (handler HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := mux.Vars(r)["orderId"]

	resp, err := handler.OrderUseCase.GetOrder(ctx, orderID)
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
		Message: "order has been successfully retrieved",
		Data:    resp,
		Meta:    nil,
	})
}

func (handler HTTPHandler) GetManyOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := internalMiddleware.GetTenantFromCtx(ctx)
	if !ok {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "missing tenant header",
		})

		return
	}

	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	size, _ := strconv.ParseInt(r.URL.Query().Get("size"), 10, 64)
	if size < 1 {
		size = 20
	}

	req := GetManyOrderRequest{Page: page, Size: size}
	if err := validator.Get().StructCtx(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, total, err := handler.OrderUseCase.GetManyOrder(ctx, tenantID, req)
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
		Message: "orders have been successfully retrieved",
		Data:    resp,
		Meta: map[string]interface{}{
			"page":  page,
			"size":  size,
			"total": total,
		},
	})
}

func (handler HTTPHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := TransitionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}
	req.OrderID = mux.Vars(r)["orderId"]

	if err := validator.Get().StructCtx(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.OrderUseCase.TransitionStatus(ctx, req)
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
		Message: "order status has been successfully updated",
		Data:    resp,
		Meta:    nil,
	})
}
