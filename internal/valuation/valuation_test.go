package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

func TestQualityMultiplier(t *testing.T) {
	tests := []struct {
		grade    domain.QualityGrade
		expected string
	}{
		{domain.GradePremium, "1.3"},
		{domain.GradeStandard, "1"},
		{domain.GradeSeconds, "0.7"},
		{domain.GradeProcessing, "0.4"},
		{"unknown_grade", "1"},
		{"", "1"},
	}

	for _, tt := range tests {
		t.Run(string(tt.grade), func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(QualityMultiplier(tt.grade)))
		})
	}
}

func TestEstimateValue(t *testing.T) {
	ten := decimal.NewFromInt(10)
	price := decimal.RequireFromString("5.00")

	tests := []struct {
		name     string
		quantity decimal.Decimal
		grade    domain.QualityGrade
		expected string
	}{
		{"premium", ten, domain.GradePremium, "65.00"},
		{"standard", ten, domain.GradeStandard, "50.00"},
		{"seconds", ten, domain.GradeSeconds, "35.00"},
		{"processing", ten, domain.GradeProcessing, "20.00"},
		{"unknown grade defaults to standard", ten, "unknown_grade", "50.00"},
		{"zero quantity", decimal.Zero, domain.GradePremium, "0"},
		{"negative quantity is arithmetic", decimal.NewFromInt(-2), domain.GradeStandard, "-10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateValue(tt.quantity, price, tt.grade)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestIsKnownGrade(t *testing.T) {
	assert.True(t, IsKnownGrade(domain.GradePremium))
	assert.False(t, IsKnownGrade("bruised"))
}
