package validation

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// exactly one of address / ship_to
	v.RegisterStructValidation(placeOrderStructValidation, PlaceOrderRequest{})
	// percent_discount needs a percent
	v.RegisterStructValidation(registerPromotionStructValidation, RegisterPromotionRequest{})

	return v
}

func placeOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(PlaceOrderRequest)

	hasLine := strings.TrimSpace(req.Address) != ""
	hasStruct := req.ShipTo != nil
	switch {
	case hasLine && hasStruct:
		sl.ReportError(req.ShipTo, "ship_to", "ShipTo", "address_xor_ship_to", "")
	case !hasLine && !hasStruct:
		sl.ReportError(req.Address, "address", "Address", "address_xor_ship_to", "")
	}
}

func registerPromotionStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(RegisterPromotionRequest)
	if req.Kind == "percent_discount" && req.Percent == nil {
		sl.ReportError(req.Percent, "percent", "Percent", "required_for_percent_discount", "")
	}
}
