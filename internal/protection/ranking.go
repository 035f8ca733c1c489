/*

This file contains the option ranking strategies. Ranking is stable so
options with equal keys keep their generation order.

*/

package protection

import (
	"sort"

	"github.com/solvency-labs/sentinel/internal/types"
)

// rankOptions orders a copy of the options per the strategy. Unrecognized
// strategies fall back to yield-optimized.
func rankOptions(options []types.ProtectionOption, strategy types.RankingStrategy) []types.ProtectionOption {
	ranked := make([]types.ProtectionOption, len(options))
	copy(ranked, options)

	switch strategy {
	case types.StrategyCostOptimized:
		// Smallest immediate capital outlay first.
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].CapitalCostUSD < ranked[j].CapitalCostUSD
		})
	case types.StrategySpeedOptimized:
		// Highest resulting health factor first, cost ignored.
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].ResultingHF > ranked[j].ResultingHF
		})
	default:
		// Lowest ongoing yield cost first.
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].YieldCostAnnualUSD < ranked[j].YieldCostAnnualUSD
		})
	}

	return ranked
}
