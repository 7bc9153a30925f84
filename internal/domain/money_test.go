package domain

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "whole units", input: "50", want: 5000},
		{name: "two decimals", input: "50.00", want: 5000},
		{name: "cents precision", input: "75000.65", want: 7500065},
		{name: "single decimal", input: "0.5", want: 50},
		{name: "negative parses", input: "-5.00", want: -500},
		{name: "surrounding whitespace", input: " 12.34 ", want: 1234},
		{name: "sub-cent precision rejected", input: "0.005", wantErr: true},
		{name: "non-numeric rejected", input: "abc", wantErr: true},
		{name: "grouped digits rejected", input: "1,000", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{cents: 5000, want: "50.00"},
		{cents: 7500065, want: "75000.65"},
		{cents: 0, want: "0.00"},
		{cents: 1, want: "0.01"},
		{cents: -500, want: "-5.00"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.cents); got != tt.want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
