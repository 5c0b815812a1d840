package iap

// CostRates converts token usage into Korean-won cost. Rates are
// configuration, not code (spec.md §9 "cost tracking").
type CostRates struct {
	InputKRWPerThousandTokens  float64
	OutputKRWPerThousandTokens float64
}

// DefaultCostRates is a reasonable starting point; cmd/iap-batch passes it
// to NewGenerator unchanged, and other callers may pass their own CostRates.
var DefaultCostRates = CostRates{
	InputKRWPerThousandTokens:  4.5,
	OutputKRWPerThousandTokens: 22.5,
}

// CostKRW computes the won cost of one usage record.
func (r CostRates) CostKRW(u Usage) float64 {
	return float64(u.InputTokens)/1000*r.InputKRWPerThousandTokens +
		float64(u.OutputTokens)/1000*r.OutputKRWPerThousandTokens
}
