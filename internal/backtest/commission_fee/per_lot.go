package commission_fee

import "math"

// PerLotCommissionFee charges a fixed amount per lot and leg, the usual
// futures exchange plus broker fee.
type PerLotCommissionFee struct {
	fee float64
}

// NewPerLotCommissionFee creates a fee model charging fee per lot.
func NewPerLotCommissionFee(fee float64) CommissionFee {
	return &PerLotCommissionFee{fee: fee}
}

// Calculate returns fee times the absolute quantity.
func (c *PerLotCommissionFee) Calculate(quantity float64) float64 {
	return c.fee * math.Abs(quantity)
}
