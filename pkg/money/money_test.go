package money

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		currency Currency
		minor    int64
		want     string
	}{
		{INR, 0, "₹0.00"},
		{INR, 5, "₹0.05"},
		{INR, 40000, "₹400.00"},
		{INR, 200000, "₹2,000.00"},
		{INR, -123456, "-₹1,234.56"},
		{INR, 123456789012, "₹1,234,567,890.12"},
		{Currency{Exponent: 0, Symbol: "¥"}, 1500, "¥1,500"},
		{Currency{Exponent: 3, Symbol: "KD "}, 1005, "KD 1.005"},
	}

	for _, tt := range tests {
		if got := tt.currency.Format(tt.minor); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}

func TestFormatAbs(t *testing.T) {
	if got := INR.FormatAbs(-40000); got != "₹400.00" {
		t.Errorf("FormatAbs(-40000) = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{"12.5", 1250, nil},
		{"₹2,000", 200000, nil},
		{" 0.01 ", 1, nil},
		{"-3", -300, nil},
		{"1.234", 0, ErrTooPrecise},
		{"abc", 0, ErrInvalidAmount},
		{"", 0, ErrInvalidAmount},
	}

	for _, tt := range tests {
		got, err := INR.Parse(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
