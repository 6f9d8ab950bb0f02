package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUSD(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{name: "zero", value: 0, expected: "$0"},
		{name: "whole", value: 15000, expected: "$15,000"},
		{name: "millions", value: 1234567, expected: "$1,234,567"},
		{name: "cents", value: 9999.99, expected: "$9,999.99"},
		{name: "small", value: 42, expected: "$42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, USD(tt.value))
		})
	}
}

func TestLegendLine(t *testing.T) {
	assert.Equal(t, "12 accounts, $1,234,567", LegendLine(12, 1234567))
	assert.Equal(t, "0 accounts, $0", LegendLine(0, 0))
}
