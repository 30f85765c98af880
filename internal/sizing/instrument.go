package sizing

// Instrument is one of the fixed set of synthetic indices the journal knows
// about, plus the Withdrawal pseudo-instrument used for cash-out rows.
type Instrument string

const (
	StepIndex     Instrument = "Step Index"
	Volatility75s Instrument = "Volatility 75 (1s)"
	Volatility75  Instrument = "Volatility 75"
	Volatility25s Instrument = "Volatility 25 (1s)"
	Volatility25  Instrument = "Volatility 25"
	// Volatility10s sizes like the other (1s) indices but is not offered in
	// the entry form. Kept so copied-in fills on it still size correctly.
	Volatility10s Instrument = "Volatility 10 (1s)"
	Withdrawal    Instrument = "Withdrawal"
)

// Selectable lists the instruments offered in the trade entry form, in
// display order.
func Selectable() []Instrument {
	return []Instrument{
		StepIndex,
		Volatility75s,
		Volatility75,
		Volatility25s,
		Volatility25,
		Withdrawal,
	}
}

// Valid reports whether i is a known instrument.
func (i Instrument) Valid() bool {
	switch i {
	case StepIndex, Volatility75s, Volatility75, Volatility25s, Volatility25, Volatility10s, Withdrawal:
		return true
	}
	return false
}

// Tradable reports whether lot sizing applies to i. Withdrawal rows are
// cash markers, not positions.
func (i Instrument) Tradable() bool {
	return i.Valid() && i != Withdrawal
}

// Strategy is a named entry pattern attached to a trade for analytics.
type Strategy string

const (
	TrendSetup Strategy = "Ultimate M1 Trend setup"
	RangeSetup Strategy = "Ultimate M1 Range setup"
)

// Strategies lists the strategies offered in the entry form.
func Strategies() []Strategy {
	return []Strategy{TrendSetup, RangeSetup}
}
