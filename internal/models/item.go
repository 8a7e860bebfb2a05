package models

import "strings"

// PricingRule selects the multiplier applied to an item's base price.
type PricingRule string

const (
	RuleNone    PricingRule = ""
	RulePeak    PricingRule = "Peak"
	RuleOffPeak PricingRule = "OffPeak"
)

const (
	peakMultiplier    = 1.20
	offPeakMultiplier = 0.90
)

// Multiplier returns the factor for the rule; unknown tags price at base.
func (r PricingRule) Multiplier() float64 {
	switch r {
	case RulePeak:
		return peakMultiplier
	case RuleOffPeak:
		return offPeakMultiplier
	default:
		return 1
	}
}

func (r PricingRule) String() string {
	if r == RuleNone {
		return "None"
	}
	return string(r)
}

// ParsePricingRule maps operator input onto a rule tag.
func ParsePricingRule(s string) (PricingRule, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "", "none":
		return RuleNone, true
	case "peak":
		return RulePeak, true
	case "offpeak":
		return RuleOffPeak, true
	default:
		return RuleNone, false
	}
}

// Item represents a service or product guests can order.
type Item struct {
	ID          int         `db:"item_id" json:"item_id"`
	Name        string      `db:"name" json:"name"`
	Price       float64     `db:"price" json:"price"`
	PricingRule PricingRule `db:"pricing_rule" json:"pricing_rule"`
}

// EffectivePrice is the base price with the pricing rule applied. It is
// derived on every read and never stored.
func (i Item) EffectivePrice() float64 {
	return i.Price * i.PricingRule.Multiplier()
}

// ItemRequest is used for item creation/update
type ItemRequest struct {
	ID          int
	Name        string
	Price       float64
	PricingRule PricingRule
}
