package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"closed connection", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"wrapped", fmt.Errorf("publish: %w", errors.New("connection refused")), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	if client.isCircuitOpen() {
		t.Fatal("circuit breaker should be closed initially")
	}

	for i := 0; i < maxFailures-1; i++ {
		client.recordFailure()
	}
	if client.isCircuitOpen() {
		t.Fatal("circuit should stay closed below the failure threshold")
	}
	client.recordFailure()
	if !client.isCircuitOpen() {
		t.Fatal("circuit should open at the failure threshold")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should turn half-open after the timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", client.state)
	}

	client.recordFailure()
	if !client.isCircuitOpen() {
		t.Fatal("a failure while half-open reopens the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success must close the circuit and reset failures")
	}
}

func TestPublishInvoiceEventShortCircuits(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}
	ev := NewInvoiceEvent(EventInvoiceCreated, "inv-1", "pending")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.PublishInvoiceEvent(ctx, ev); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled context: got %v", err)
	}

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	err := client.PublishInvoiceEvent(context.Background(), ev)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open circuit: got %v", err)
	}
	if !strings.Contains(err.Error(), "invoice.created") {
		t.Errorf("error should name the event type: %v", err)
	}
}

func TestInvoiceEventFromJSON(t *testing.T) {
	ev := NewInvoiceEvent(EventInvoiceStatusChanged, "inv-9", "paid")
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := InvoiceEventFromJSON(body)
	if err != nil {
		t.Fatalf("InvoiceEventFromJSON: %v", err)
	}
	if got.InvoiceID != "inv-9" || got.Status != "paid" || got.Type != EventInvoiceStatusChanged {
		t.Errorf("got %+v", got)
	}

	bad := map[string]string{
		"not json":        `{`,
		"unknown type":    `{"type":"invoice.deleted","invoice_id":"x"}`,
		"missing invoice": `{"type":"invoice.created"}`,
	}
	for name, body := range bad {
		if _, err := InvoiceEventFromJSON([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
