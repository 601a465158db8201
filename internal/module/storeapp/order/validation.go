package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult accumulates every problem found so the caller can surface
// them all at once instead of failing on the first.
type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// ValidationError carries the field-level list through the error return so
// handlers can render it.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	messages := make([]string, len(e.Result.Errors))
	for k, fe := range e.Result.Errors {
		messages[k] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}

	return strings.Join(messages, ", ")
}

type ValidationService interface {
	ValidatePlacement(ctx context.Context, tenantID string, req PlaceOrderRequest) (ValidationResult, error)
}

type validationService struct {
	logger    *logrus.Logger
	orderRepo OrderRepository
}

func NewValidationService(logger *logrus.Logger, orderRepo OrderRepository) ValidationService {
	return &validationService{
		logger:    logger,
		orderRepo: orderRepo,
	}
}

// ValidatePlacement implements ValidationService.
func (s *validationService) ValidatePlacement(ctx context.Context, tenantID string, req PlaceOrderRequest) (ValidationResult, error) {
	var result ValidationResult

	if len(req.Items) == 0 {
		result.add("items", "order must contain at least one item")
	}

	for k, item := range req.Items {
		if item.Quantity < 1 {
			result.add(fmt.Sprintf("items[%d].quantity", k), "quantity must be at least 1")
		}
	}

	// Counter sales are anonymous; every other channel requires a
	// registered customer.
	if req.DeliveryMode != ModeCounter {
		if strings.TrimSpace(req.CustomerName) == "" {
			result.add("customer_name", "customer name is required")
		}
		if strings.TrimSpace(req.CustomerPhone) == "" {
			result.add("customer_phone", "customer phone is required")
		}
	}

	if req.DeliveryMode == ModeDelivery && req.Address == nil {
		result.add("address", "a delivery address is required for delivery orders")
	}

	if req.DeliveryMode == ModeDineIn {
		if req.TableRef == nil || strings.TrimSpace(*req.TableRef) == "" {
			result.add("table_ref", "a table reference is required for dine-in orders")
			return result, nil
		}

		count, err := s.orderRepo.CountActiveByTable(ctx, tenantID, *req.TableRef, nil)
		if err != nil {
			return ValidationResult{}, err
		}
		if count > 0 {
			result.add("table_ref", "the table already has an active order")
		}
	}

	return result, nil
}
