package lifecycle

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusAccepted) {
		t.Fatal("expected pending -> accepted to be allowed")
	}
	if !CanTransition(StatusAccepted, StatusPreparing) {
		t.Fatal("expected accepted -> preparing to be allowed")
	}
	if !CanTransition(StatusPreparing, StatusOutForDelivery) {
		t.Fatal("expected preparing -> out_for_delivery to be allowed")
	}
	if !CanTransition(StatusOutForDelivery, StatusDelivered) {
		t.Fatal("expected out_for_delivery -> delivered to be allowed")
	}
	if CanTransition(StatusPending, StatusDelivered) {
		t.Fatal("unexpected transition allowed")
	}
	if CanTransition(StatusDelivered, StatusCanceled) {
		t.Fatal("delivered orders must not cancel")
	}
	if CanTransition(StatusCanceled, StatusAccepted) {
		t.Fatal("canceled is terminal")
	}
}

func TestCancelable(t *testing.T) {
	for _, status := range []string{StatusPending, StatusAccepted, StatusPreparing, StatusOutForDelivery} {
		if !Cancelable(status) {
			t.Fatalf("expected %s to be cancelable", status)
		}
	}
	for _, status := range []string{StatusDelivered, StatusCanceled} {
		if Cancelable(status) {
			t.Fatalf("expected %s not to be cancelable", status)
		}
	}
}
