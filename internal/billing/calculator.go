package billing

// Amounts is the result of one payment computation, all values in pence.
type Amounts struct {
	GrossPence      int64
	CommissionPence int64
	NetPence        int64
}

// Compute derives the payable amounts for a slot from its attendance and
// the active tariff.
//
// Gross charges the full attendance at the per-person price.  Commission
// is the flat per-person VIC commission applied to VIC attendance only:
// online sales settle through a separate payment path and carry no VIC
// commission.  Net is gross minus commission, clamped at zero so a
// commission misconfiguration can never produce a negative payable.
func Compute(att Attendance, p Pricing) Amounts {
	gross := att.Total * p.PricePerPersonPence
	commission := att.VIC * p.VICCommissionPerPersonPence
	net := gross - commission
	if net < 0 {
		net = 0
	}
	return Amounts{
		GrossPence:      gross,
		CommissionPence: commission,
		NetPence:        net,
	}
}
