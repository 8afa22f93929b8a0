package domain

import (
	"errors"
	"testing"
)

func TestNewAmountRange(t *testing.T) {
	tests := []struct {
		name    string
		value   int64
		wantErr bool
	}{
		{
			name:  "zero is allowed",
			value: 0,
		},
		{
			name:  "typical donation amount",
			value: 50000,
		},
		{
			name:  "upper bound is allowed",
			value: MaxSafeAmount,
		},
		{
			name:    "negative value is rejected",
			value:   -1,
			wantErr: true,
		},
		{
			name:    "value past upper bound is rejected",
			value:   MaxSafeAmount + 1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := NewAmount(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrAmountOutOfRange) {
					t.Fatalf("expected ErrAmountOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if amount.Value() != tt.value {
				t.Fatalf("expected stored value %d, got %d", tt.value, amount.Value())
			}
		})
	}
}

func TestAmountMajorUnitsRoundTrip(t *testing.T) {
	for _, value := range []int64{0, 1, 99, 100, 50000, 123456789} {
		amount, err := NewAmount(value)
		if err != nil {
			t.Fatalf("unexpected error for %d: %v", value, err)
		}
		if got := int64(amount.MajorUnits() * 100); got != value {
			t.Fatalf("round trip mismatch for %d: got %d", value, got)
		}
	}
}

func TestAmountCurrencyIsFixed(t *testing.T) {
	amount, err := NewAmount(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount.Currency() != "INR" {
		t.Fatalf("expected INR, got %q", amount.Currency())
	}
}

func TestMaxSafeAmountDerivation(t *testing.T) {
	// floor((2^53 - 1) / 10^2): the largest integer the checkout client can
	// represent exactly, scaled down by the sub-unit multiplier.
	want := int64(90071992547409)
	if MaxSafeAmount != want {
		t.Fatalf("expected MaxSafeAmount %d, got %d", want, MaxSafeAmount)
	}
}
