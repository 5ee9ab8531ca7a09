package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"market-dashboard/utils"
)

//go:embed market.yaml
var defaultMarketYAML []byte

// Tier is a neighborhood's construction-standard tier.
type Tier string

const (
	TierHigh    Tier = "high"
	TierMid     Tier = "mid"
	TierPopular Tier = "popular"
)

// TierSpec describes one tier of the post-delivery spend model.
type TierSpec struct {
	Label         string
	Percentage    decimal.Decimal
	Neighborhoods []string
}

// SpendCategory is one expense category with its share of the sale value per tier.
type SpendCategory struct {
	Name    string
	Weights map[Tier]decimal.Decimal
}

// Market is the configuration data behind the post-delivery spend model.
type Market struct {
	DefaultTier Tier
	Tiers       map[Tier]TierSpec
	Categories  []SpendCategory

	lookup map[string]Tier
}

type marketFile struct {
	DefaultTier string `yaml:"default_tier"`
	Tiers       map[string]struct {
		Label         string   `yaml:"label"`
		Percentage    string   `yaml:"percentage"`
		Neighborhoods []string `yaml:"neighborhoods"`
	} `yaml:"tiers"`
	Categories []struct {
		Name    string            `yaml:"name"`
		Weights map[string]string `yaml:"weights"`
	} `yaml:"categories"`
}

// LoadMarket reads the market configuration at path, or the embedded default
// when path is empty.
func LoadMarket(path string) (*Market, error) {
	data := defaultMarketYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("market: read %q: %w", path, err)
		}
		data = b
	}
	return ParseMarket(data)
}

// DefaultMarket returns the embedded market configuration. It panics if the
// embedded file is invalid.
func DefaultMarket() *Market {
	m, err := ParseMarket(defaultMarketYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded market.yaml: %v", err))
	}
	return m
}

// ParseMarket decodes and validates a market configuration document.
func ParseMarket(data []byte) (*Market, error) {
	var f marketFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("market: decode: %w", err)
	}

	m := &Market{
		DefaultTier: Tier(f.DefaultTier),
		Tiers:       make(map[Tier]TierSpec, len(f.Tiers)),
		lookup:      make(map[string]Tier),
	}

	for name, t := range f.Tiers {
		tier := Tier(name)
		pct, err := decimal.NewFromString(t.Percentage)
		if err != nil {
			return nil, fmt.Errorf("market: tier %q percentage %q: %w", name, t.Percentage, err)
		}
		m.Tiers[tier] = TierSpec{Label: t.Label, Percentage: pct, Neighborhoods: t.Neighborhoods}
		for _, n := range t.Neighborhoods {
			key := utils.Fold(n)
			if prev, dup := m.lookup[key]; dup && prev != tier {
				return nil, fmt.Errorf("market: neighborhood %q listed in tiers %q and %q", n, prev, tier)
			}
			m.lookup[key] = tier
		}
	}

	if _, ok := m.Tiers[m.DefaultTier]; !ok {
		return nil, fmt.Errorf("market: default tier %q is not defined", f.DefaultTier)
	}

	for _, c := range f.Categories {
		cat := SpendCategory{Name: c.Name, Weights: make(map[Tier]decimal.Decimal, len(c.Weights))}
		for name, w := range c.Weights {
			if _, ok := m.Tiers[Tier(name)]; !ok {
				return nil, fmt.Errorf("market: category %q weights unknown tier %q", c.Name, name)
			}
			d, err := decimal.NewFromString(w)
			if err != nil {
				return nil, fmt.Errorf("market: category %q weight %q: %w", c.Name, w, err)
			}
			cat.Weights[Tier(name)] = d
		}
		m.Categories = append(m.Categories, cat)
	}

	if err := m.validateWeights(); err != nil {
		return nil, err
	}
	return m, nil
}

// Category weights of every tier must add up exactly to the tier percentage.
func (m *Market) validateWeights() error {
	if len(m.Categories) == 0 {
		return nil
	}
	for _, tier := range m.TierNames() {
		sum := decimal.Zero
		for _, c := range m.Categories {
			w, ok := c.Weights[tier]
			if !ok {
				return fmt.Errorf("market: category %q has no weight for tier %q", c.Name, tier)
			}
			sum = sum.Add(w)
		}
		if pct := m.Tiers[tier].Percentage; !sum.Equal(pct) {
			return fmt.Errorf("market: tier %q category weights sum to %s, want %s", tier, sum, pct)
		}
	}
	return nil
}

// TierOf classifies a neighborhood. Unlisted neighborhoods get DefaultTier.
func (m *Market) TierOf(neighborhood string) Tier {
	if t, ok := m.lookup[utils.Fold(neighborhood)]; ok {
		return t
	}
	return m.DefaultTier
}

// Percentage returns the share of the sale value spent after delivery in tier.
func (m *Market) Percentage(tier Tier) decimal.Decimal {
	return m.Tiers[tier].Percentage
}

// TierNames returns the configured tiers in a stable order.
func (m *Market) TierNames() []Tier {
	names := make([]Tier, 0, len(m.Tiers))
	for t := range m.Tiers {
		names = append(names, t)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// CategoryNames returns the expense categories in configuration order.
func (m *Market) CategoryNames() []string {
	names := make([]string, len(m.Categories))
	for i, c := range m.Categories {
		names[i] = c.Name
	}
	return names
}
