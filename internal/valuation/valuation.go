// Package valuation converts raw harvest figures into an estimated monetary value.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/utils"
)

var qualityMultipliers = map[domain.QualityGrade]decimal.Decimal{
	domain.GradePremium:    decimal.RequireFromString("1.3"),
	domain.GradeStandard:   decimal.NewFromInt(1),
	domain.GradeSeconds:    decimal.RequireFromString("0.7"),
	domain.GradeProcessing: decimal.RequireFromString("0.4"),
}

// IsKnownGrade reports whether grade has a dedicated multiplier
func IsKnownGrade(grade domain.QualityGrade) bool {
	_, ok := qualityMultipliers[grade]
	return ok
}

// QualityMultiplier returns the price multiplier for a grade.
// Unrecognised grades price as standard (1.0).
func QualityMultiplier(grade domain.QualityGrade) decimal.Decimal {
	if m, ok := qualityMultipliers[grade]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// EstimateValue returns quantity * pricePerUnit * QualityMultiplier(grade), rounded to cents.
// Zero or negative inputs are computed arithmetically; callers validate.
func EstimateValue(quantity, pricePerUnit decimal.Decimal, grade domain.QualityGrade) decimal.Decimal {
	return utils.Round2(quantity.Mul(pricePerUnit).Mul(QualityMultiplier(grade)))
}
