package utils

import "testing"

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-9876543, "-9,876,543"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := FormatCount(tt.input); result != tt.expected {
				t.Errorf("FormatCount(%d) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{950, "950"},
		{1000, "1K"},
		{12345, "12.35K"},
		{2500000, "2.5M"},
		{3000000000, "3B"},
		{-1500, "-1.5K"},
	}

	for _, tt := range tests {
		if result := FormatCompact(tt.input); result != tt.expected {
			t.Errorf("FormatCompact(%d) = %s, want %s", tt.input, result, tt.expected)
		}
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{2.5, "+2.50"},
		{-1, "-1.00"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if result := FormatScore(tt.input); result != tt.expected {
			t.Errorf("FormatScore(%v) = %s, want %s", tt.input, result, tt.expected)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(66.6); got != "67%" {
		t.Errorf("FormatPct(66.6) = %s, want 67%%", got)
	}
}
