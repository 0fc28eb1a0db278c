package billing

import (
	"math"
	"strings"
	"testing"
)

func TestPricingFromConfig_ConvertsOnce(t *testing.T) {
	cfg := map[string]float64{
		KeyPricePerPerson:  12.5,
		KeyVICCommissionPP: 2,
	}
	p, err := PricingFromConfig(cfg)
	if err != nil {
		t.Fatalf("PricingFromConfig error: %v", err)
	}
	if p.PricePerPersonPence != 1250 {
		t.Fatalf("price per person expected 1250 pence, got %d", p.PricePerPersonPence)
	}
	if p.VICCommissionPerPersonPence != 200 {
		t.Fatalf("commission per person expected 200 pence, got %d", p.VICCommissionPerPersonPence)
	}
}

func TestPricingFromConfig_Rejects(t *testing.T) {
	cases := []struct {
		name string
		cfg  map[string]float64
		want string
	}{
		{"missing price", map[string]float64{KeyVICCommissionPP: 2}, KeyPricePerPerson},
		{"missing commission", map[string]float64{KeyPricePerPerson: 10}, KeyVICCommissionPP},
		{"nan price", map[string]float64{KeyPricePerPerson: math.NaN(), KeyVICCommissionPP: 2}, "finite"},
		{"inf commission", map[string]float64{KeyPricePerPerson: 10, KeyVICCommissionPP: math.Inf(1)}, "finite"},
	}
	for _, tc := range cases {
		if _, err := PricingFromConfig(tc.cfg); err == nil {
			t.Fatalf("%s: expected error, got nil", tc.name)
		} else if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

// Gross multiplies the rounded unit price by the person count; the unit
// price is rounded to the penny exactly once.
func TestCompute_Deterministic(t *testing.T) {
	p, err := PricingFromConfig(map[string]float64{
		KeyPricePerPerson:  12.5,
		KeyVICCommissionPP: 0,
	})
	if err != nil {
		t.Fatalf("PricingFromConfig error: %v", err)
	}
	att := Attendance{Total: 5, VIC: 5}
	for i := 0; i < 3; i++ {
		got := Compute(att, p)
		if got.GrossPence != 6250 {
			t.Fatalf("gross expected 6250, got %d", got.GrossPence)
		}
	}
}

// Locks in the flat per-person commission policy: commission is
// VIC persons times the per-person commission, never a rate on gross.
func TestCompute_CommissionPolicy(t *testing.T) {
	p := Pricing{PricePerPersonPence: 1000, VICCommissionPerPersonPence: 200}
	cases := []struct {
		name string
		att  Attendance
		want Amounts
	}{
		{
			"all vic",
			Attendance{Total: 4, VIC: 4},
			Amounts{GrossPence: 4000, CommissionPence: 800, NetPence: 3200},
		},
		{
			"mixed channels commission only on vic",
			Attendance{Total: 6, VIC: 3, Online: 3},
			Amounts{GrossPence: 6000, CommissionPence: 600, NetPence: 5400},
		},
		{
			"online only carries no commission",
			Attendance{Total: 3, Online: 3},
			Amounts{GrossPence: 3000, CommissionPence: 0, NetPence: 3000},
		},
		{
			"zero attendance",
			Attendance{},
			Amounts{},
		},
	}
	for _, tc := range cases {
		if got := Compute(tc.att, p); got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestCompute_NetClampedAtZero(t *testing.T) {
	p := Pricing{PricePerPersonPence: 100, VICCommissionPerPersonPence: 500}
	got := Compute(Attendance{Total: 2, VIC: 2}, p)
	if got.NetPence != 0 {
		t.Fatalf("net expected clamp at 0, got %d", got.NetPence)
	}
	if got.GrossPence != 200 || got.CommissionPence != 1000 {
		t.Fatalf("gross/commission unexpectedly changed by clamp: %+v", got)
	}
}
