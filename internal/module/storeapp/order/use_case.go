package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opamenu/om-order/internal/module/storeapp/loyalty"
	"github.com/opamenu/om-order/internal/module/storeapp/payment"
	"github.com/opamenu/om-order/internal/pkg/util"
	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/pubsub"
	"github.com/opamenu/om-order/pkg/status"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type OrderUseCase interface {
	PlaceOrder(ctx context.Context, tenantID string, req PlaceOrderRequest) (PlaceOrderResponse, error)
	TransitionStatus(ctx context.Context, req TransitionRequest) (TransitionResponse, error)
	GetOrder(ctx context.Context, orderID string) (OrderResponse, error)
	GetManyOrder(ctx context.Context, tenantID string, req GetManyOrderRequest) (GetManyOrderResponse, int64, error)
	// ConfirmPaidOrder satisfies payment.OrderConfirmer: a paid charge moves
	// a still-pending order to confirmed. Idempotent.
	ConfirmPaidOrder(ctx context.Context, orderID string) error
}

type orderUseCase struct {
	logger            *logrus.Logger
	timeout           time.Duration
	validationService ValidationService
	orderRepo         OrderRepository
	itemRepo          ItemRepository
	historyRepo       StatusHistoryRepository
	chargeRepo        payment.ChargeRepository
	orchestrator      payment.Orchestrator
	settlement        loyalty.Settlement
	publisher         pubsub.Publisher
	rc                *goredis.Client
}

type OrderUseCaseProperty struct {
	Logger            *logrus.Logger
	Timeout           time.Duration
	ValidationService ValidationService
	OrderRepository   OrderRepository
	ItemRepository    ItemRepository
	HistoryRepository StatusHistoryRepository
	ChargeRepository  payment.ChargeRepository
	Orchestrator      payment.Orchestrator
	Settlement        loyalty.Settlement
	Publisher         pubsub.Publisher
	Redis             *goredis.Client
}

func NewOrderUseCase(props OrderUseCaseProperty) OrderUseCase {
	return &orderUseCase{
		logger:            props.Logger,
		timeout:           props.Timeout,
		validationService: props.ValidationService,
		orderRepo:         props.OrderRepository,
		itemRepo:          props.ItemRepository,
		historyRepo:       props.HistoryRepository,
		chargeRepo:        props.ChargeRepository,
		orchestrator:      props.Orchestrator,
		settlement:        props.Settlement,
		publisher:         props.Publisher,
		rc:                props.Redis,
	}
}

// PlaceOrder implements OrderUseCase.
func (u *orderUseCase) PlaceOrder(ctx context.Context, tenantID string, req PlaceOrderRequest) (PlaceOrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	validation, err := u.validationService.ValidatePlacement(ctx, tenantID, req)
	if err != nil {
		return PlaceOrderResponse{}, err
	}
	if !validation.Valid() {
		return PlaceOrderResponse{}, &ValidationError{Result: validation}
	}

	now := time.Now()
	order := Order{
		ID:            util.GenerateTimestampWithPrefix("OM"),
		TenantID:      tenantID,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DeliveryMode:  req.DeliveryMode,
		TableRef:      req.TableRef,
		PaymentMethod: req.PaymentMethod,
		DeliveryFee:   req.DeliveryFee,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if req.Address != nil {
		order.Address = &Address{
			Street:     req.Address.Street,
			Number:     req.Address.Number,
			District:   req.Address.District,
			City:       req.Address.City,
			Complement: req.Address.Complement,
		}
	}

	var subtotal float64
	items := make([]Item, len(req.Items))
	for k, ir := range req.Items {
		addons := make([]Addon, len(ir.Addons))
		var addonTotal float64
		for j, ar := range ir.Addons {
			addons[j] = Addon{ID: ar.ID, Name: ar.Name, Price: ar.Price}
			addonTotal += ar.Price
		}

		items[k] = Item{
			OrderID:     order.ID,
			ProductID:   ir.ProductID,
			ProductName: ir.ProductName,
			Quantity:    ir.Quantity,
			UnitPrice:   ir.UnitPrice,
			Addons:      addons,
			Notes:       ir.Notes,
		}

		subtotal += float64(ir.Quantity) * (ir.UnitPrice + addonTotal)
	}
	order.Items = items
	order.Subtotal = subtotal

	if req.RedeemPoints > 0 && req.CustomerID != "" {
		points, discount, err := u.settlement.ApplyRedemption(ctx, loyalty.RedemptionInput{
			OrderID:         order.ID,
			TenantID:        tenantID,
			CustomerID:      req.CustomerID,
			Subtotal:        subtotal,
			RequestedPoints: req.RedeemPoints,
		})
		if err != nil {
			return PlaceOrderResponse{}, err
		}
		order.RedeemedPoints = points
		order.Discount = discount
	}

	order.Total = order.Subtotal + order.DeliveryFee - order.Discount

	tx, err := u.orderRepo.BeginTx(ctx)
	if err != nil {
		return PlaceOrderResponse{}, err
	}

	if err := u.orderRepo.Save(ctx, order, tx); err != nil {
		u.orderRepo.Rollback(ctx, tx)
		return PlaceOrderResponse{}, err
	}

	for _, item := range order.Items {
		if err := u.itemRepo.Save(ctx, item, tx); err != nil {
			u.orderRepo.Rollback(ctx, tx)
			return PlaceOrderResponse{}, err
		}
	}

	history := StatusHistory{
		OrderID:   order.ID,
		Status:    StatusPending,
		Actor:     "customer",
		Note:      "order placed",
		CreatedAt: now,
	}
	if err := u.historyRepo.Save(ctx, history, tx); err != nil {
		u.orderRepo.Rollback(ctx, tx)
		return PlaceOrderResponse{}, err
	}

	if err := u.orderRepo.CommitTx(ctx, tx); err != nil {
		return PlaceOrderResponse{}, err
	}

	u.publishOrderCreated(ctx, order)

	resp := PlaceOrderResponse{}
	resp.Order.PopulateFromEntity(order)

	if req.PaymentMethod == PaymentPix {
		pixResult, err := u.orchestrator.GeneratePix(ctx, order.ID)
		if err != nil {
			// PIX is advisory at placement: without a configured provider
			// the order falls back to pay-on-delivery, and a gateway
			// hiccup never blocks order creation.
			u.logger.WithContext(ctx).WithField("orderId", order.ID).WithError(err).Warn("pix generation skipped at placement")
		} else {
			resp.Pix = &pixResult
		}
	}

	return resp, nil
}

// TransitionStatus implements OrderUseCase.
func (u *orderUseCase) TransitionStatus(ctx context.Context, req TransitionRequest) (TransitionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	unlock, err := u.lockOrder(ctx, req.OrderID)
	if err != nil {
		return TransitionResponse{}, err
	}
	defer unlock()

	return u.applyTransition(ctx, req)
}

func (u *orderUseCase) applyTransition(ctx context.Context, req TransitionRequest) (TransitionResponse, error) {
	order, err := u.orderRepo.FindByID(ctx, req.OrderID, nil)
	if err != nil {
		return TransitionResponse{}, err
	}

	if err := ValidateTransition(order, req.TargetStatus, req.Reason); err != nil {
		return TransitionResponse{}, err
	}

	oldStatus := order.Status
	now := time.Now()
	order.Status = req.TargetStatus
	order.UpdatedAt = now

	switch req.TargetStatus {
	case StatusRejected:
		order.RejectionReason = &req.Reason
	case StatusCancelled:
		if req.Reason != "" {
			order.CancellationReason = &req.Reason
		}
		u.handleCancellationRefund(ctx, &order)
	}

	tx, err := u.orderRepo.BeginTx(ctx)
	if err != nil {
		return TransitionResponse{}, err
	}

	rows, err := u.orderRepo.UpdateStatusIfCurrent(ctx, order.ID, oldStatus, order, tx)
	if err != nil {
		u.orderRepo.Rollback(ctx, tx)
		return TransitionResponse{}, err
	}
	if rows == 0 {
		u.orderRepo.Rollback(ctx, tx)
		return TransitionResponse{}, errors.New(http.StatusConflict, status.CONFLICT, "order status changed concurrently, retry")
	}

	history := StatusHistory{
		OrderID:   order.ID,
		Status:    req.TargetStatus,
		Actor:     req.Actor,
		Note:      req.Note,
		CreatedAt: now,
	}
	if err := u.historyRepo.Save(ctx, history, tx); err != nil {
		u.orderRepo.Rollback(ctx, tx)
		return TransitionResponse{}, err
	}

	if err := u.orderRepo.CommitTx(ctx, tx); err != nil {
		return TransitionResponse{}, err
	}

	u.publishStatusChanged(ctx, order, oldStatus, req)

	switch req.TargetStatus {
	case StatusDelivered:
		u.settleDelivered(ctx, order)
	case StatusCancelled:
		if err := u.settlement.OnOrderReversed(ctx, order.ID); err != nil {
			u.logger.WithContext(ctx).WithField("orderId", order.ID).WithError(err).Error()
		}
	}

	return TransitionResponse{
		OrderID:   order.ID,
		OldStatus: oldStatus,
		NewStatus: req.TargetStatus,
	}, nil
}

// handleCancellationRefund triggers the refund of an already-paid charge. A
// failed refund never blocks the cancellation; the order is flagged for
// manual reconciliation instead.
func (u *orderUseCase) handleCancellationRefund(ctx context.Context, order *Order) {
	if _, err := u.chargeRepo.FindPaidByOrderID(ctx, order.ID, nil); err != nil {
		if errors.Destruct(err).Status == status.UNKNOWN_CHARGE {
			return
		}

		u.logger.WithContext(ctx).WithField("orderId", order.ID).WithError(err).Error("paid charge lookup failed, order flagged for reconciliation")
		order.RefundFlagged = true
		return
	}

	if err := u.orchestrator.Refund(ctx, order.ID); err != nil {
		u.logger.WithContext(ctx).WithField("orderId", order.ID).WithError(err).Error("refund failed, order flagged for reconciliation")
		order.RefundFlagged = true
	}
}

func (u *orderUseCase) settleDelivered(ctx context.Context, order Order) {
	err := u.settlement.OnOrderDelivered(ctx, loyalty.SettlementInput{
		OrderID:    order.ID,
		TenantID:   order.TenantID,
		CustomerID: order.CustomerID,
		Total:      order.Total,
	})
	if err != nil {
		u.logger.WithContext(ctx).WithField("orderId", order.ID).WithError(err).Error()
	}
}

// ConfirmPaidOrder implements OrderUseCase and payment.OrderConfirmer.
func (u *orderUseCase) ConfirmPaidOrder(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	unlock, err := u.lockOrder(ctx, orderID)
	if err != nil {
		return err
	}
	defer unlock()

	order, err := u.orderRepo.FindByID(ctx, orderID, nil)
	if err != nil {
		return err
	}

	if order.Status != StatusPending {
		return nil
	}

	_, err = u.applyTransition(ctx, TransitionRequest{
		OrderID:      orderID,
		TargetStatus: StatusConfirmed,
		Actor:        "payment-webhook",
		Note:         "pix payment confirmed",
	})

	return err
}

// GetOrder implements OrderUseCase.
func (u *orderUseCase) GetOrder(ctx context.Context, orderID string) (OrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	order, err := u.orderRepo.FindByID(ctx, orderID, nil)
	if err != nil {
		return OrderResponse{}, err
	}

	items, err := u.itemRepo.FindManyByOrderID(ctx, orderID, nil)
	if err != nil {
		return OrderResponse{}, err
	}
	order.Items = items

	history, err := u.historyRepo.FindManyByOrderID(ctx, orderID, nil)
	if err != nil {
		return OrderResponse{}, err
	}

	resp := OrderResponse{}
	resp.PopulateFromEntity(order)

	resp.History = make([]StatusHistoryResponse, len(history))
	for k, h := range history {
		resp.History[k] = StatusHistoryResponse{
			Status:    h.Status,
			Actor:     h.Actor,
			Note:      h.Note,
			CreatedAt: h.CreatedAt,
		}
	}

	return resp, nil
}

// GetManyOrder implements OrderUseCase. The second return value is the total
// number of the tenant's orders, for pagination.
func (u *orderUseCase) GetManyOrder(ctx context.Context, tenantID string, req GetManyOrderRequest) (GetManyOrderResponse, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	offset := (req.Page - 1) * req.Size

	orders, err := u.orderRepo.FindMany(ctx, tenantID, offset, req.Size, nil)
	if err != nil {
		return nil, 0, err
	}

	total, err := u.orderRepo.Count(ctx, tenantID, nil)
	if err != nil {
		return nil, 0, err
	}

	resp := make(GetManyOrderResponse, len(orders))
	for k, o := range orders {
		resp[k].PopulateFromEntity(o)
	}

	return resp, total, nil
}

func (u *orderUseCase) lockOrder(ctx context.Context, orderID string) (func(), error) {
	key := fmt.Sprintf("om-order:order-lock:%s", orderID)

	acquired, err := u.rc.SetNX(ctx, key, "1", 10*time.Second).Result()
	if err != nil {
		u.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while locking the order")
	}
	if !acquired {
		return nil, errors.New(http.StatusConflict, status.CONFLICT, "another update is in progress for this order")
	}

	return func() {
		u.rc.Del(context.Background(), key)
	}, nil
}

func (u *orderUseCase) publishOrderCreated(ctx context.Context, order Order) {
	event := OrderCreatedEvent{
		OrderID:      order.ID,
		TenantID:     order.TenantID,
		CustomerID:   order.CustomerID,
		DeliveryMode: order.DeliveryMode,
		Total:        order.Total,
		Status:       order.Status,
	}

	eventBuff, _ := json.Marshal(event)
	if err := u.publisher.Publish(ctx, TopicOrderCreated, order.ID, nil, eventBuff); err != nil {
		u.logger.WithContext(ctx).WithField("orderId", order.ID).WithError(err).Error()
	}
}

func (u *orderUseCase) publishStatusChanged(ctx context.Context, order Order, oldStatus string, req TransitionRequest) {
	event := StatusChangedEvent{
		OrderID:   order.ID,
		TenantID:  order.TenantID,
		OldStatus: oldStatus,
		NewStatus: order.Status,
		Actor:     req.Actor,
		Note:      req.Note,
	}

	eventBuff, _ := json.Marshal(event)
	if err := u.publisher.Publish(ctx, TopicOrderStatusChanged, order.ID, nil, eventBuff); err != nil {
		u.logger.WithContext(ctx).WithField("orderId", order.ID).WithError(err).Error()
	}
}
