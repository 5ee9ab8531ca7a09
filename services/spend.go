package services

import (
	"github.com/shopspring/decimal"

	"market-dashboard/config"
)

// SpendModel estimates post-delivery household spend from sale value, using
// the per-tier percentages and category weights of the market configuration.
type SpendModel struct {
	market *config.Market
}

// NewSpendModel creates a SpendModel over market.
func NewSpendModel(market *config.Market) *SpendModel {
	return &SpendModel{market: market}
}

// Tier returns the construction-standard tier of a neighborhood.
func (s *SpendModel) Tier(neighborhood string) config.Tier {
	return s.market.TierOf(neighborhood)
}

// Spend is saleValue times the neighborhood tier percentage.
func (s *SpendModel) Spend(neighborhood string, saleValue decimal.Decimal) decimal.Decimal {
	return saleValue.Mul(s.market.Percentage(s.Tier(neighborhood)))
}

// ByCategory splits the spend of saleValue across the expense categories.
// Category weights add up exactly to the tier percentage, so the parts add
// up exactly to Spend(neighborhood, saleValue).
func (s *SpendModel) ByCategory(neighborhood string, saleValue decimal.Decimal) map[string]decimal.Decimal {
	tier := s.Tier(neighborhood)
	parts := make(map[string]decimal.Decimal, len(s.market.Categories))
	for _, c := range s.market.Categories {
		parts[c.Name] = saleValue.Mul(c.Weights[tier])
	}
	return parts
}

// Categories returns the expense category names in configuration order.
func (s *SpendModel) Categories() []string {
	return s.market.CategoryNames()
}
