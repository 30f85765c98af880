// Package sizing computes position sizes from account risk parameters.
package sizing

import "github.com/shopspring/decimal"

// LotSize returns the lot size for risking riskAmount over riskPips on the
// given instrument, rounded half away from zero to 3 decimal places.
//
// It is total: non-positive inputs, the Withdrawal pseudo-instrument, and
// unknown instruments all return 0.
func LotSize(riskAmount float64, instrument Instrument, riskPips float64) float64 {
	if riskAmount <= 0 || riskPips <= 0 {
		return 0
	}

	var lot float64
	switch instrument {
	case StepIndex:
		lot = riskAmount / riskPips
	case Volatility75s, Volatility75, Volatility25s, Volatility10s:
		lot = riskAmount / riskPips * 100
	case Volatility25:
		// Quoted on a 1/1000 pip scale.
		lot = riskAmount / (riskPips / 1000)
	default:
		return 0
	}

	rounded, _ := decimal.NewFromFloat(lot).Round(3).Float64()
	return rounded
}
