package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusShipped, OrderStatusCancelled},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	t.Parallel()

	if !OrderStatusDelivered.IsTerminal() || !OrderStatusCancelled.IsTerminal() {
		t.Fatal("delivered and cancelled must be terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	if got, err := ParseOrderStatus("SHIPPED"); err != nil || got != OrderStatusShipped {
		t.Fatalf("unexpected parse result %v %v", got, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("statuses are uppercase on the wire; lowercase must fail")
	}
}
