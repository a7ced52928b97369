package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestContext_RoundTrip(t *testing.T) {
	logger := NewDiscard()
	ctx := NewContext(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Errorf("FromContext() = %p, want %p", got, logger)
	}
}

func TestFromContext_Default(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext() without a logger should return slog.Default()")
	}
	//nolint:staticcheck // nil context is part of the contract
	if got := FromContext(nil); got != slog.Default() {
		t.Error("FromContext(nil) should return slog.Default()")
	}
}
