package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

func TestTotalsByCurrency(t *testing.T) {
	t.Parallel()

	events := []domain.FinancialEvent{
		{Currency: "EUR", Amount: decimal.RequireFromString("120.00")},
		{Currency: "EUR", Amount: decimal.RequireFromString("-120.00")},
		{Currency: "EUR", Amount: decimal.RequireFromString("240.50")},
		{Currency: "GBP", Amount: decimal.RequireFromString("10")},
	}

	assert.Equal(t, map[string]string{"EUR": "240.50", "GBP": "10.00"}, totalsByCurrency(events))
	assert.Empty(t, totalsByCurrency(nil))
}
