// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math"
	"strconv"
	"time"

	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/reverts"
)

var (
	metricOperations = metrics.LazyLoadCounterVec("ledger_operations_count", []string{"op", "status"})
	metricDuration   = metrics.LazyLoadHistogramVec("ledger_operation_duration_us", []string{"op"}, []int64{1, 5, 10, 50, 100, 500, 1000, 5000})
	metricStaked     = metrics.LazyLoadGaugeVec("pool_total_staked", []string{"pool"})
)

func observeOperation(op string, err error, elapsed time.Duration) {
	status := "committed"
	switch {
	case err == nil:
	case reverts.IsRevertErr(err):
		status = "reverted"
	default:
		status = "failed"
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "status": status})
	metricDuration().ObserveWithLabels(elapsed.Microseconds(), map[string]string{"op": op})
}

// observeStaked reports a pool's total stake, saturated to the gauge range.
func observeStaked(pools *pool.Registry, id uint64) {
	p, err := pools.Get(id)
	if err != nil {
		return
	}
	v := int64(math.MaxInt64)
	if p.TotalStaked.IsInt64() {
		v = p.TotalStaked.Int64()
	}
	metricStaked().SetWithLabel(v, map[string]string{"pool": strconv.FormatUint(id, 10)})
}
