// Package billing holds the shared payment computation used by both the
// reconciliation worker and the admin finalization flow.  Everything in
// this package is pure: monetary values are integers in pence and the
// same inputs always produce the same outputs, which is what keeps the
// two call paths from ever diverging.
package billing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Configuration keys the pricing depends on.  Both are GBP amounts and
// both must be present and finite; there is no default price.
const (
	KeyPricePerPerson  = "price_per_person_gbp"
	KeyVICCommissionPP = "vic_commission_per_person_gbp"
)

// Pricing carries the two tariff parameters in pence.  The GBP-to-pence
// conversion happens exactly once, here, so per-transaction rounding can
// never occur downstream.
type Pricing struct {
	PricePerPersonPence         int64
	VICCommissionPerPersonPence int64
}

// PricingFromConfig validates and converts the raw configuration map into
// a Pricing.  A missing or non-finite value is a hard error: billing with
// a silently defaulted tariff would corrupt every payment derived from it.
func PricingFromConfig(cfg map[string]float64) (Pricing, error) {
	price, err := penceValue(cfg, KeyPricePerPerson)
	if err != nil {
		return Pricing{}, err
	}
	commission, err := penceValue(cfg, KeyVICCommissionPP)
	if err != nil {
		return Pricing{}, err
	}
	return Pricing{
		PricePerPersonPence:         price,
		VICCommissionPerPersonPence: commission,
	}, nil
}

// penceValue reads one GBP-valued key and converts it to pence, rounding
// half away from zero to the nearest penny.
func penceValue(cfg map[string]float64, key string) (int64, error) {
	v, ok := cfg[key]
	if !ok {
		return 0, fmt.Errorf("configuration key %q is missing", key)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("configuration key %q is not a finite number", key)
	}
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
