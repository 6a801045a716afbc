package loan

import (
	"fmt"
	"sort"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
)

type tier struct {
	min, max, fee int64
}

// FeeTable maps a loan amount to its upfront service fee.
type FeeTable struct {
	tiers []tier
}

func NewFeeTable(tiers []config.FeeTierConfig) (*FeeTable, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("fee table needs at least one tier")
	}
	t := &FeeTable{tiers: make([]tier, 0, len(tiers))}
	for _, c := range tiers {
		if c.Min > c.Max {
			return nil, fmt.Errorf("fee tier %d-%d is inverted", c.Min, c.Max)
		}
		if c.Fee <= 0 || c.Fee >= c.Min {
			return nil, fmt.Errorf("fee %d for tier %d-%d must be positive and below the tier minimum", c.Fee, c.Min, c.Max)
		}
		t.tiers = append(t.tiers, tier{min: c.Min, max: c.Max, fee: c.Fee})
	}
	sort.Slice(t.tiers, func(i, j int) bool { return t.tiers[i].min < t.tiers[j].min })
	for i := 1; i < len(t.tiers); i++ {
		if t.tiers[i].min <= t.tiers[i-1].max {
			return nil, fmt.Errorf("fee tiers %d-%d and %d-%d overlap",
				t.tiers[i-1].min, t.tiers[i-1].max, t.tiers[i].min, t.tiers[i].max)
		}
	}
	return t, nil
}

// Fee returns the service fee for amount. ok is false when no tier covers it.
func (t *FeeTable) Fee(amount int64) (fee int64, ok bool) {
	i := sort.Search(len(t.tiers), func(i int) bool { return t.tiers[i].max >= amount })
	if i == len(t.tiers) || amount < t.tiers[i].min {
		return 0, false
	}
	return t.tiers[i].fee, true
}
