package paymentconfig

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/response"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/opamenu/om-order/pkg/validator"
)

type HTTPHandler struct {
	ConfigUseCase ConfigUseCase
}

func InitHTTPHandler(router *mux.Router, configUseCase ConfigUseCase) {
	handler := &HTTPHandler{
		ConfigUseCase: configUseCase,
	}

	router.HandleFunc("/om-order/v1/adminapp/tenants/{tenantId}/payment-configs", handler.CreateConfig).Methods(http.MethodPost)
	router.HandleFunc("/om-order/v1/adminapp/tenants/{tenantId}/payment-configs", handler.GetManyConfig).Methods(http.MethodGet)
	router.HandleFunc("/om-order/v1/adminapp/tenants/{tenantId}/payment-configs/{configId}/activate", handler.ActivateConfig).Methods(http.MethodPost)
}

func (handler HTTPHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID := mux.Vars(r)["tenantId"]

	req := CreateConfigRequest{}
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

	resp, err := handler.ConfigUseCase.CreateConfig(ctx, tenantID, req)
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
		Message: "payment config has been successfully created",
		Data:    resp,
		Meta:    nil,
	})
}

func (handler HTTPHandler) ActivateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	tenantID := vars["tenantId"]

	configID, err := strconv.ParseInt(vars["configId"], 10, 64)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "invalid config id",
		})

		return
	}

	resp, err := handler.ConfigUseCase.ActivateConfig(ctx, tenantID, configID)
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
		Message: "payment config has been successfully activated",
		Data:    resp,
		Meta:    nil,
	})
}

func (handler HTTPHandler) GetManyConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID := mux.Vars(r)["tenantId"]

	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	size, _ := strconv.ParseInt(r.URL.Query().Get("size"), 10, 64)
	if size < 1 {
		size = 20
	}

	req := GetManyConfigRequest{Page: page, Size: size}
	if err := validator.Get().StructCtx(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.ConfigUseCase.GetManyConfig(ctx, tenantID, req)
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
		Message: "payment configs have been successfully retrieved",
		Data:    resp,
		Meta: map[string]interface{}{
			"page": page,
			"size": size,
		},
	})
}
