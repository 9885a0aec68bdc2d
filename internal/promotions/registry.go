package promotions

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Registry holds the active promotion codes.
type Registry struct {
	byCode map[string]Promotion
}

func NewRegistry() *Registry {
	return &Registry{byCode: map[string]Promotion{}}
}

// Register activates code with the given effect. Re-registering an active code is a no-op.
// percent is ignored for free_shipping and must be in (0, 100] for percent_discount.
func (r *Registry) Register(code string, kind Kind, percent decimal.Decimal) RegisterResult {
	code = strings.TrimSpace(code)
	if code == "" {
		return Rejected
	}
	if _, ok := r.byCode[code]; ok {
		return AlreadyActive
	}

	p := Promotion{Code: code, Kind: kind}
	switch kind {
	case KindFreeShipping:
	case KindPercentDiscount:
		if !percent.IsPositive() || percent.GreaterThan(hundred) {
			return Rejected
		}
		p.Percent = percent
	default:
		return Rejected
	}

	r.byCode[code] = p
	return Registered
}

// Resolve returns the promotion for code. Unknown codes resolve to false.
func (r *Registry) Resolve(code string) (Promotion, bool) {
	p, ok := r.byCode[strings.TrimSpace(code)]
	return p, ok
}

// Codes lists the active codes in lexical order.
func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.byCode))
	for c := range r.byCode {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int { return len(r.byCode) }
