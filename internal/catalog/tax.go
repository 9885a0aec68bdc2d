package catalog

import "github.com/shopspring/decimal"

// TaxRule turns a net price into a gross price.
type TaxRule func(price decimal.Decimal) decimal.Decimal

// FlatRate returns a rule adding percent to the price.
func FlatRate(percent decimal.Decimal) TaxRule {
	factor := decimal.NewFromInt(1).Add(percent.Div(decimal.NewFromInt(100)))
	return func(price decimal.Decimal) decimal.Decimal {
		return price.Mul(factor).Round(2)
	}
}

// TaxPolicy maps an item kind to its tax rule. Kinds without an entry use Fallback.
type TaxPolicy struct {
	Rules    map[Kind]TaxRule
	Fallback TaxRule
}

// DefaultTaxPolicy taxes software at 5% and everything else at 10%.
func DefaultTaxPolicy() TaxPolicy {
	standard := FlatRate(decimal.NewFromInt(10))
	return TaxPolicy{
		Rules: map[Kind]TaxRule{
			KindStandard: standard,
			KindBook:     standard,
			KindSoftware: FlatRate(decimal.NewFromInt(5)),
		},
		Fallback: standard,
	}
}

// TaxedPrice applies the rule registered for the item's kind.
func (p TaxPolicy) TaxedPrice(item Item) decimal.Decimal {
	if rule, ok := p.Rules[item.Kind]; ok {
		return rule(item.Price)
	}
	if p.Fallback != nil {
		return p.Fallback(item.Price)
	}
	return item.Price
}
