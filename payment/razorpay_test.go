package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateOrderMockConvertsToPaise(t *testing.T) {
	c := NewClient("rzp_test_key", "secret", true)

	order, err := c.CreateOrder(context.Background(), 499.50, "booking_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Amount != 49950 {
		t.Fatalf("expected 49950 paise, got %d", order.Amount)
	}
	if order.Currency != "INR" {
		t.Fatalf("expected INR, got %s", order.Currency)
	}
	if order.Receipt != "booking_1" {
		t.Fatalf("receipt not carried through: %s", order.Receipt)
	}
	if !strings.HasPrefix(order.ID, "order_") {
		t.Fatalf("mock order id missing prefix: %s", order.ID)
	}
}

func TestCreateOrderMockIDsAreUnique(t *testing.T) {
	c := NewClient("rzp_test_key", "secret", true)

	a, err := c.CreateOrder(context.Background(), 100, "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := c.CreateOrder(context.Background(), 100, "r2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("two orders share id %s", a.ID)
	}
}

func TestCreateOrderRejectsNonPositiveAmounts(t *testing.T) {
	c := NewClient("rzp_test_key", "secret", true)

	for _, amount := range []float64{0, -1, -499.99} {
		if _, err := c.CreateOrder(context.Background(), amount, "r"); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestFetchPaymentMock(t *testing.T) {
	c := NewClient("rzp_test_key", "secret", true)

	p, err := c.FetchPayment(context.Background(), "pay_mock1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "pay_mock1" {
		t.Fatalf("expected pay_mock1, got %s", p.ID)
	}
	if p.Status != "captured" {
		t.Fatalf("expected captured, got %s", p.Status)
	}
}

func TestGatewayErrorMessage(t *testing.T) {
	err := &GatewayError{StatusCode: 502, Detail: "upstream down"}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("status missing from error: %s", err.Error())
	}
}
