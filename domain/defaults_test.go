package domain

import (
	"testing"
)

func TestDefaultValueConsistency(t *testing.T) {
	if DefaultMaxRoutes <= 0 {
		t.Errorf("DefaultMaxRoutes must be positive, got %d", DefaultMaxRoutes)
	}
	if DefaultMaxTreeNodes <= 0 {
		t.Errorf("DefaultMaxTreeNodes must be positive, got %d", DefaultMaxTreeNodes)
	}
	if DefaultMaxGoroutines <= 0 {
		t.Errorf("DefaultMaxGoroutines must be positive, got %d", DefaultMaxGoroutines)
	}
	if DefaultTimeoutSeconds <= 0 {
		t.Errorf("DefaultTimeoutSeconds must be positive, got %d", DefaultTimeoutSeconds)
	}
	if _, ok := ParseOutputFormat(string(DefaultOutputFormat)); !ok {
		t.Errorf("DefaultOutputFormat %q is not a known format", DefaultOutputFormat)
	}
}
