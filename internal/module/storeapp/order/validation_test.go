package order

import (
	"context"
	"database/sql"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(result ValidationResult) []string {
	names := make([]string, len(result.Errors))
	for k, fe := range result.Errors {
		names[k] = fe.Field
	}
	return names
}

func validPlacementRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerName:  "Ana Souza",
		CustomerPhone: "+5511999990000",
		Items: []ItemRequest{
			{ProductID: "p1", ProductName: "X-Burger", Quantity: 1, UnitPrice: 25},
		},
		DeliveryMode:  ModePickup,
		PaymentMethod: PaymentOnDelivery,
	}
}

func TestValidatePlacement_AccumulatesAllErrors(t *testing.T) {
	s := NewValidationService(logrus.New(), &mockOrderRepository{})

	req := PlaceOrderRequest{
		DeliveryMode:  ModeDelivery,
		PaymentMethod: PaymentOnDelivery,
		Items: []ItemRequest{
			{ProductID: "p1", Quantity: 0, UnitPrice: 10},
		},
	}

	result, err := s.ValidatePlacement(context.Background(), "tenant-1", req)
	require.NoError(t, err)
	require.False(t, result.Valid())

	assert.ElementsMatch(t, []string{
		"items[0].quantity",
		"customer_name",
		"customer_phone",
		"address",
	}, fields(result))
}

func TestValidatePlacement_EmptyItems(t *testing.T) {
	s := NewValidationService(logrus.New(), &mockOrderRepository{})

	req := validPlacementRequest()
	req.Items = nil

	result, err := s.ValidatePlacement(context.Background(), "tenant-1", req)
	require.NoError(t, err)
	assert.Contains(t, fields(result), "items")
}

func TestValidatePlacement_CounterSaleIsAnonymous(t *testing.T) {
	s := NewValidationService(logrus.New(), &mockOrderRepository{})

	req := validPlacementRequest()
	req.CustomerName = ""
	req.CustomerPhone = ""
	req.DeliveryMode = ModeCounter

	result, err := s.ValidatePlacement(context.Background(), "tenant-1", req)
	require.NoError(t, err)
	assert.True(t, result.Valid())
}

func TestValidatePlacement_DineInRequiresFreeTable(t *testing.T) {
	tableRef := "T7"

	repo := &mockOrderRepository{
		CountActiveByTableFunc: func(ctx context.Context, tenantID string, table string, tx *sql.Tx) (int64, error) {
			require.Equal(t, "T7", table)
			return 1, nil
		},
	}
	s := NewValidationService(logrus.New(), repo)

	req := validPlacementRequest()
	req.DeliveryMode = ModeDineIn
	req.TableRef = &tableRef

	result, err := s.ValidatePlacement(context.Background(), "tenant-1", req)
	require.NoError(t, err)
	assert.Equal(t, []string{"table_ref"}, fields(result))
}

func TestValidatePlacement_DineInRequiresTableRef(t *testing.T) {
	s := NewValidationService(logrus.New(), &mockOrderRepository{})

	req := validPlacementRequest()
	req.DeliveryMode = ModeDineIn
	req.TableRef = nil

	result, err := s.ValidatePlacement(context.Background(), "tenant-1", req)
	require.NoError(t, err)
	assert.Equal(t, []string{"table_ref"}, fields(result))
}

func TestValidatePlacement_ValidRequest(t *testing.T) {
	tableRef := "T2"

	repo := &mockOrderRepository{
		CountActiveByTableFunc: func(ctx context.Context, tenantID string, table string, tx *sql.Tx) (int64, error) {
			return 0, nil
		},
	}
	s := NewValidationService(logrus.New(), repo)

	req := validPlacementRequest()
	req.DeliveryMode = ModeDineIn
	req.TableRef = &tableRef

	result, err := s.ValidatePlacement(context.Background(), "tenant-1", req)
	require.NoError(t, err)
	assert.True(t, result.Valid())
}
