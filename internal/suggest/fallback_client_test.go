package suggest

import (
	"context"
	"errors"
	"testing"
)

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &scriptedLLM{text: "primary"}
	fallback := &scriptedLLM{text: "fallback"}
	client := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "primary" {
		t.Fatalf("expected primary response, got %q", resp.Text)
	}
	if len(fallback.requests) != 0 {
		t.Error("fallback should not be consulted when primary succeeds")
	}
}

func TestFallback_PrimaryFails(t *testing.T) {
	primary := &scriptedLLM{err: errors.New("quota exceeded")}
	fallback := &scriptedLLM{text: "fallback"}
	client := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "fallback" {
		t.Fatalf("expected fallback response, got %q", resp.Text)
	}
}

func TestFallback_BothFail(t *testing.T) {
	primary := &scriptedLLM{err: errors.New("primary down")}
	fallback := &scriptedLLM{err: errors.New("fallback down")}
	client := NewFallbackLLMClient(primary, fallback, nil)

	if _, err := client.Complete(context.Background(), LLMRequest{}); err == nil {
		t.Fatal("expected error when both providers fail")
	}
}

func TestFallback_NoFallbackConfigured(t *testing.T) {
	primaryErr := errors.New("primary down")
	client := NewFallbackLLMClient(&scriptedLLM{err: primaryErr}, nil, nil)

	if _, err := client.Complete(context.Background(), LLMRequest{}); !errors.Is(err, primaryErr) {
		t.Fatalf("expected the primary error, got %v", err)
	}
}
