package loyalty

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type SettlementInput struct {
	OrderID    string
	TenantID   string
	CustomerID string
	Total      float64
}

type RedemptionInput struct {
	OrderID         string
	TenantID        string
	CustomerID      string
	Subtotal        float64
	RequestedPoints int64
}

type Settlement interface {
	// OnOrderDelivered awards points for a delivered order when the
	// tenant's program is active. Safe to retry; points are awarded once.
	OnOrderDelivered(ctx context.Context, input SettlementInput) error
	// OnOrderReversed appends the negation of the order's earn transaction.
	// A no-op when the order never earned points.
	OnOrderReversed(ctx context.Context, orderID string) error
	// ApplyRedemption spends points as an order discount, capped by the
	// customer's balance and the order subtotal.
	ApplyRedemption(ctx context.Context, input RedemptionInput) (int64, float64, error)
	Balance(ctx context.Context, tenantID string, customerID string) (int64, error)
	Ledger(ctx context.Context, tenantID string, customerID string) ([]Transaction, error)
}

type settlement struct {
	logger          *logrus.Logger
	programRepo     ProgramRepository
	transactionRepo TransactionRepository
}

type SettlementProperty struct {
	Logger          *logrus.Logger
	ProgramRepo     ProgramRepository
	TransactionRepo TransactionRepository
}

func NewSettlement(props SettlementProperty) Settlement {
	return &settlement{
		logger:          props.Logger,
		programRepo:     props.ProgramRepo,
		transactionRepo: props.TransactionRepo,
	}
}

// OnOrderDelivered implements Settlement.
func (s *settlement) OnOrderDelivered(ctx context.Context, input SettlementInput) error {
	program, err := s.programRepo.FindByTenant(ctx, input.TenantID, nil)
	if err != nil {
		ae := errors.Destruct(err)
		if ae.HTTPStatusCode == http.StatusNotFound {
			return nil
		}
		return err
	}

	if !program.Active {
		return nil
	}

	points := earnedPoints(input.Total, program.EarnRate)
	if points <= 0 {
		return nil
	}

	transaction := Transaction{
		ID:         uuid.NewString(),
		TenantID:   input.TenantID,
		CustomerID: input.CustomerID,
		OrderID:    input.OrderID,
		Type:       TransactionEarn,
		Points:     points,
		CreatedAt:  time.Now(),
	}

	inserted, err := s.transactionRepo.SaveEarnIfAbsent(ctx, transaction, nil)
	if err != nil {
		return err
	}

	if !inserted {
		s.logger.WithContext(ctx).WithField("orderId", input.OrderID).Info("loyalty points already awarded for order")
	}

	return nil
}

// OnOrderReversed implements Settlement.
func (s *settlement) OnOrderReversed(ctx context.Context, orderID string) error {
	_, err := s.transactionRepo.SaveReversalForOrder(ctx, uuid.NewString(), orderID, nil)
	return err
}

// ApplyRedemption implements Settlement.
func (s *settlement) ApplyRedemption(ctx context.Context, input RedemptionInput) (int64, float64, error) {
	if input.RequestedPoints <= 0 {
		return 0, 0, nil
	}

	program, err := s.programRepo.FindByTenant(ctx, input.TenantID, nil)
	if err != nil {
		return 0, 0, err
	}

	if !program.Active {
		return 0, 0, errors.New(http.StatusUnprocessableEntity, status.NOT_CONFIGURED, "the loyalty program is not active for this tenant")
	}

	if program.RedemptionValue <= 0 {
		return 0, 0, nil
	}

	balance, err := s.transactionRepo.SumPointsByCustomer(ctx, input.TenantID, input.CustomerID, nil)
	if err != nil {
		return 0, 0, err
	}

	// Redemption may never push the order total negative: cap at the
	// balance and at the points the subtotal can absorb.
	maxBySubtotal := decimal.NewFromFloat(input.Subtotal).
		Div(decimal.NewFromFloat(program.RedemptionValue)).
		Floor().IntPart()

	points := input.RequestedPoints
	if points > balance {
		points = balance
	}
	if points > maxBySubtotal {
		points = maxBySubtotal
	}
	if points <= 0 {
		return 0, 0, nil
	}

	discount, _ := decimal.NewFromInt(points).
		Mul(decimal.NewFromFloat(program.RedemptionValue)).
		Round(2).Float64()

	transaction := Transaction{
		ID:         uuid.NewString(),
		TenantID:   input.TenantID,
		CustomerID: input.CustomerID,
		OrderID:    input.OrderID,
		Type:       TransactionRedeem,
		Points:     -points,
		CreatedAt:  time.Now(),
	}

	if err := s.transactionRepo.Save(ctx, transaction, nil); err != nil {
		return 0, 0, err
	}

	return points, discount, nil
}

// Balance implements Settlement.
func (s *settlement) Balance(ctx context.Context, tenantID string, customerID string) (int64, error) {
	return s.transactionRepo.SumPointsByCustomer(ctx, tenantID, customerID, nil)
}

// Ledger implements Settlement.
func (s *settlement) Ledger(ctx context.Context, tenantID string, customerID string) ([]Transaction, error) {
	return s.transactionRepo.FindManyByCustomer(ctx, tenantID, customerID, nil)
}

func earnedPoints(total float64, earnRate float64) int64 {
	return decimal.NewFromFloat(total).
		Mul(decimal.NewFromFloat(earnRate)).
		Floor().IntPart()
}
