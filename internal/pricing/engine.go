package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-order-pricing/internal/catalog"
	"github.com/imrishuroy/go-order-pricing/internal/promotions"
)

// Line skip reasons.
const (
	ReasonNotFound        = "product_not_found"
	ReasonInvalidQuantity = "invalid_quantity"
)

var hundred = decimal.NewFromInt(100)

// ItemLookup resolves catalog items.
type ItemLookup interface {
	GetItem(id int64) (catalog.Item, bool)
}

// PromotionResolver resolves promotion codes.
type PromotionResolver interface {
	Resolve(code string) (promotions.Promotion, bool)
}

// Engine prices orders against a catalog and a promotion registry.
type Engine struct {
	items   ItemLookup
	promos  PromotionResolver
	opts    Options
	nowFunc func() time.Time
}

func NewEngine(items ItemLookup, promos PromotionResolver, opts Options) *Engine {
	return &Engine{
		items:   items,
		promos:  promos,
		opts:    opts,
		nowFunc: time.Now,
	}
}

// PriceOrder validates and prices req. It never fails: problems are reported through the
// returned order's Status, line details and promotion outcome.
func (e *Engine) PriceOrder(req Request) PricedOrder {
	o := PricedOrder{
		OrderID:       req.OrderID,
		CustomerEmail: strings.TrimSpace(req.Customer.Email),
		Lines:         make([]LineDetail, 0, len(req.Lines)),
		Subtotal:      decimal.Zero,
		Discount:      decimal.Zero,
		Shipping:      decimal.Zero,
		FinalTotal:    decimal.Zero,
		Promotion:     PromotionOutcome{Code: strings.TrimSpace(req.PromotionCode), Status: PromotionNone},
		Status:        StatusPending,
		CreatedAt:     e.nowFunc().UTC(),
	}
	if req.Destination != nil {
		o.Destination = req.Destination.String()
		o.Domestic = e.isDomestic(req.Destination)
	}

	if len(req.Lines) == 0 {
		o.Status = StatusFailedNoItems
		return o
	}
	if o.CustomerEmail == "" {
		o.Status = StatusFailedMissingCustomer
		return o
	}

	subtotal, missing := e.priceLines(req.Lines, &o)
	o.Subtotal = subtotal

	discount := decimal.Zero
	freeShipping := false
	if o.Promotion.Code != "" {
		promo, ok := e.promos.Resolve(o.Promotion.Code)
		if !ok {
			o.Promotion.Status = PromotionNotFound
		} else {
			o.Promotion.Status = PromotionApplied
			o.Promotion.Kind = string(promo.Kind)
			switch promo.Kind {
			case promotions.KindFreeShipping:
				freeShipping = true
			case promotions.KindPercentDiscount:
				discount = subtotal.Mul(promo.Percent).Div(hundred).Round(2)
			}
		}
	}

	shipping := e.shippingFor(o.Domestic, subtotal.Sub(discount))
	if freeShipping {
		shipping = decimal.Zero
		discount = discount.Add(e.opts.DomesticLowRate)
	}

	final := subtotal.Sub(discount).Add(shipping)
	if final.IsNegative() {
		final = decimal.Zero
	}

	o.Discount = discount.Round(2)
	o.Shipping = shipping.Round(2)
	o.FinalTotal = final.Round(2)
	if missing {
		o.Status = StatusFailedProductNotFound
	} else {
		o.Status = StatusCompleted
	}
	return o
}

// priceLines fills o.Lines and returns the subtotal of every found line.
func (e *Engine) priceLines(lines []Line, o *PricedOrder) (decimal.Decimal, bool) {
	subtotal := decimal.Zero
	missing := false
	for _, l := range lines {
		d := LineDetail{ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: decimal.Zero, LineTotal: decimal.Zero}

		item, ok := e.items.GetItem(l.ItemID)
		switch {
		case !ok:
			d.Reason = ReasonNotFound
			missing = true
		case l.Quantity <= 0:
			d.Name = item.Name
			d.UnitPrice = item.Price
			d.Reason = ReasonInvalidQuantity
		default:
			d.Found = true
			d.Name = item.Name
			d.UnitPrice = item.Price
			d.LineTotal = item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
			subtotal = subtotal.Add(d.LineTotal)
		}
		o.Lines = append(o.Lines, d)
	}
	return subtotal.Round(2), missing
}

func (e *Engine) isDomestic(d Destination) bool {
	return strings.EqualFold(d.Country(), e.opts.DomesticCountry)
}

// shippingFor picks the tier for a (possibly discounted) subtotal.
func (e *Engine) shippingFor(domestic bool, base decimal.Decimal) decimal.Decimal {
	if !domestic {
		return e.opts.InternationalRate
	}
	if base.LessThan(e.opts.HighTierThreshold) {
		return e.opts.DomesticLowRate
	}
	return e.opts.DomesticHighRate
}
