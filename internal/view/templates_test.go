package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestFormatMoney(t *testing.T) {
	printer := message.NewPrinter(language.English)
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"42.5", "42.50"},
		{"1234.5", "1,234.50"},
		{"-3.456", "-3.46"},
		{"-0.4", "-0.40"},
		// Beyond float64 precision; must not round-trip through a float.
		{"12345678901234567.89", "12,345,678,901,234,567.89"},
	}
	for _, tc := range cases {
		got := formatMoney(printer, decimal.RequireFromString(tc.in))
		assert.Equal(t, tc.want, got, "formatMoney(%s)", tc.in)
	}
}
