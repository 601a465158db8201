package order

import (
	"testing"

	"github.com/opamenu/om-order/pkg/errors"
	"github.com/opamenu/om-order/pkg/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []string{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
	StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRejected,
}

func TestValidateTransition_FullTable(t *testing.T) {
	allowed := map[string]map[string]bool{
		StatusPending:        {StatusConfirmed: true, StatusRejected: true, StatusCancelled: true},
		StatusConfirmed:      {StatusPreparing: true, StatusCancelled: true},
		StatusPreparing:      {StatusReady: true, StatusCancelled: true},
		StatusReady:          {StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true},
		StatusOutForDelivery: {StatusDelivered: true, StatusCancelled: true},
		StatusDelivered:      {},
		StatusCancelled:      {},
		StatusRejected:       {},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			o := Order{Status: from, DeliveryMode: ModeDelivery}
			err := ValidateTransition(o, to, "some reason")

			if allowed[from][to] {
				assert.NoErrorf(t, err, "%s -> %s should be allowed", from, to)
			} else {
				assert.Errorf(t, err, "%s -> %s should be blocked", from, to)
			}
		}
	}
}

func TestValidateTransition_TerminalStatusConflicts(t *testing.T) {
	for _, terminal := range []string{StatusDelivered, StatusCancelled, StatusRejected} {
		o := Order{Status: terminal}

		err := ValidateTransition(o, StatusConfirmed, "")
		require.Error(t, err)
		assert.Equal(t, status.ALREADY_TERMINAL, errors.Destruct(err).Status)
	}
}

func TestValidateTransition_RejectionRequiresReason(t *testing.T) {
	o := Order{Status: StatusPending}

	err := ValidateTransition(o, StatusRejected, "  ")
	require.Error(t, err)
	assert.Equal(t, status.MISSING_REASON, errors.Destruct(err).Status)

	assert.NoError(t, ValidateTransition(o, StatusRejected, "kitchen closed"))
}

func TestValidateTransition_ReadyGatedByDeliveryMode(t *testing.T) {
	deliveryOrder := Order{Status: StatusReady, DeliveryMode: ModeDelivery}
	pickupOrder := Order{Status: StatusReady, DeliveryMode: ModePickup}
	dineInOrder := Order{Status: StatusReady, DeliveryMode: ModeDineIn}

	assert.NoError(t, ValidateTransition(deliveryOrder, StatusOutForDelivery, ""))
	assert.Error(t, ValidateTransition(deliveryOrder, StatusDelivered, ""))

	assert.Error(t, ValidateTransition(pickupOrder, StatusOutForDelivery, ""))
	assert.NoError(t, ValidateTransition(pickupOrder, StatusDelivered, ""))

	assert.Error(t, ValidateTransition(dineInOrder, StatusOutForDelivery, ""))
	assert.NoError(t, ValidateTransition(dineInOrder, StatusDelivered, ""))
}

func TestNextStatuses(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{StatusConfirmed, StatusRejected, StatusCancelled},
		NextStatuses(Order{Status: StatusPending}),
	)

	assert.ElementsMatch(t,
		[]string{StatusOutForDelivery, StatusCancelled},
		NextStatuses(Order{Status: StatusReady, DeliveryMode: ModeDelivery}),
	)

	assert.ElementsMatch(t,
		[]string{StatusDelivered, StatusCancelled},
		NextStatuses(Order{Status: StatusReady, DeliveryMode: ModeCounter}),
	)

	assert.Empty(t, NextStatuses(Order{Status: StatusDelivered}))
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []string{StatusDelivered, StatusCancelled, StatusRejected} {
		assert.True(t, IsTerminal(s), s)
	}
	for _, s := range []string{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusOutForDelivery} {
		assert.False(t, IsTerminal(s), s)
	}
}
