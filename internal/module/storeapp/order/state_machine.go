package order

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
)

// transitionTable is the single source of truth for legal status moves.
// Delivery-mode gating on the READY row is applied on top of it.
var transitionTable = map[string][]string{
	StatusPending:        {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReady, StatusCancelled},
	StatusReady:          {StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusCancelled:      {},
	StatusRejected:       {},
}

func IsTerminal(orderStatus string) bool {
	next, known := transitionTable[orderStatus]
	return known && len(next) == 0
}

// NextStatuses lists the statuses o may legally move to, delivery-mode gating
// included.
func NextStatuses(o Order) []string {
	allowed := make([]string, 0, 3)
	for _, target := range transitionTable[o.Status] {
		if modeAllows(o, target) {
			allowed = append(allowed, target)
		}
	}

	return allowed
}

func modeAllows(o Order, target string) bool {
	if o.Status != StatusReady {
		return true
	}

	switch target {
	case StatusOutForDelivery:
		return o.DeliveryMode == ModeDelivery
	case StatusDelivered:
		return o.DeliveryMode != ModeDelivery
	default:
		return true
	}
}

// ValidateTransition reports whether o may move to target. Rejection demands
// a non-empty reason.
func ValidateTransition(o Order, target string, reason string) error {
	if IsTerminal(o.Status) {
		return errors.New(http.StatusConflict, status.ALREADY_TERMINAL,
			fmt.Sprintf("order is already in terminal status '%s'", o.Status))
	}

	if target == StatusRejected && strings.TrimSpace(reason) == "" {
		return errors.New(http.StatusBadRequest, status.MISSING_REASON, "rejecting an order requires a reason")
	}

	for _, allowed := range transitionTable[o.Status] {
		if allowed == target && modeAllows(o, target) {
			return nil
		}
	}

	return errors.New(http.StatusUnprocessableEntity, status.INVALID_TRANSITION,
		fmt.Sprintf("transition from '%s' to '%s' is not allowed", o.Status, target))
}
