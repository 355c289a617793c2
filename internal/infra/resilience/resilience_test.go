package resilience_test

import (
	"errors"
	"testing"

	"github.com/catalogo-ips/registration-gateway/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	out, err := cb.Execute(func() (any, error) {
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "ok" {
		t.Errorf("expected 'ok', got %v", out)
	}
}

func TestCircuitBreaker_SurfacesError(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	callCount := 0
	_, err := cb.Execute(func() (any, error) {
		callCount++
		return nil, errors.New("backend down")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if callCount != 1 {
		t.Errorf("expected exactly 1 call (no retries), got %d", callCount)
	}
}

func TestCircuitBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	for i := 0; i < 10; i++ {
		cb.Execute(func() (any, error) {
			return nil, errors.New("backend down")
		})
	}

	_, err := cb.Execute(func() (any, error) {
		t.Fatal("breaker should be open, fn must not run")
		return nil, nil
	})

	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
}
