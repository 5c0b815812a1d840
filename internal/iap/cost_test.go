package iap

import "testing"

func TestCostKRW(t *testing.T) {
	rates := CostRates{InputKRWPerThousandTokens: 4.5, OutputKRWPerThousandTokens: 22.5}
	got := rates.CostKRW(Usage{InputTokens: 2000, OutputTokens: 1000})
	want := 2.0*4.5 + 1.0*22.5
	if got != want {
		t.Errorf("CostKRW = %v, want %v", got, want)
	}
}

func TestCostKRWZeroUsage(t *testing.T) {
	if got := DefaultCostRates.CostKRW(Usage{}); got != 0 {
		t.Errorf("CostKRW of zero usage = %v, want 0", got)
	}
}
