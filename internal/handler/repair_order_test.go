package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/truckpitstop/garage-backend/internal/model"
)

func TestOrderTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{model.OrderDraft, model.OrderQuoted},
		{model.OrderQuoted, model.OrderApproved},
		{model.OrderApproved, model.OrderInProgress},
		{model.OrderInProgress, model.OrderCompleted},
		{model.OrderCompleted, model.OrderInvoiced},
		{model.OrderInvoiced, model.OrderPaid},
	}
	for _, tc := range allowed {
		assert.True(t, canTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{model.OrderDraft, model.OrderApproved},
		{model.OrderQuoted, model.OrderInProgress},
		{model.OrderCompleted, model.OrderPaid},
		{model.OrderPaid, model.OrderDraft},
		{model.OrderCancelled, model.OrderDraft},
		{model.OrderInProgress, model.OrderDraft},
	}
	for _, tc := range denied {
		assert.False(t, canTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestCancellableFromAnyOpenStatus(t *testing.T) {
	open := []string{
		model.OrderDraft, model.OrderQuoted, model.OrderApproved,
		model.OrderInProgress, model.OrderCompleted, model.OrderInvoiced,
	}
	for _, from := range open {
		assert.True(t, canTransition(from, model.OrderCancelled), "%s should be cancellable", from)
	}
	assert.False(t, canTransition(model.OrderPaid, model.OrderCancelled))
	assert.False(t, canTransition(model.OrderCancelled, model.OrderCancelled))
}

func TestNewRefNumberFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ref := newRefNumber("RO")
		parts := strings.Split(ref, "-")
		assert.Len(t, parts, 3)
		assert.Equal(t, "RO", parts[0])
		assert.Len(t, parts[1], 8)
		assert.Len(t, parts[2], 6)
		assert.False(t, seen[ref], "reference numbers should not repeat: %s", ref)
		seen[ref] = true
	}
}
