package wallgen

import (
	"math"
	"unicode/utf8"
)

// TokenEstimator estimates how many tokens a prompt costs against a limiter.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// SimpleTokenEstimator approximates four characters per token, padded by a
// safety margin. Good enough for limiter accounting, not for billing.
type SimpleTokenEstimator struct {
	SafetyMargin float64
}

func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{
		SafetyMargin: 1.2,
	}
}

func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	estimate := float64(utf8.RuneCountInString(text)) / 4.0 * e.SafetyMargin

	return int(math.Ceil(estimate)) + 3
}
