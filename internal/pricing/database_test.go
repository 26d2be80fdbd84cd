package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCost(t *testing.T) {
	mp := GetDatabase().GetPricing("gpt-4o-mini")
	require.NotNil(t, mp)
	// 1M in at $0.15 + 1M out at $0.60
	assert.InDelta(t, 0.75, mp.CalculateCost(1_000_000, 1_000_000), 1e-9)
}

func TestEstimateCost(t *testing.T) {
	db := GetDatabase()

	cost := db.EstimateCost("gemini-2.5-pro", 2_000_000, 0)
	require.NotNil(t, cost)
	assert.InDelta(t, 2.50, *cost, 1e-9)

	assert.Nil(t, db.EstimateCost("llama3.2:latest", 100, 100))
}

func TestFormatTokenUsage(t *testing.T) {
	db := GetDatabase()
	out := FormatTokenUsage(1234, 56789, db.GetPricing("claude-3-5-haiku-20241022"), db.LastUpdated)
	assert.Contains(t, out, "Input:  1,234 tokens")
	assert.Contains(t, out, "Output: 56,789 tokens")
	assert.Contains(t, out, "Total:  58,023 tokens")
	assert.Contains(t, out, "https://www.anthropic.com/pricing")

	out = FormatTokenUsage(10, 20, nil, db.LastUpdated)
	assert.Contains(t, out, "Unknown")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
