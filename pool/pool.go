// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NativeAsset marks pools staking the native coin rather than a token.
var NativeAsset = common.Address{}

// Params are the admin controlled settings of a pool.
type Params struct {
	Asset       common.Address // the staked asset, NativeAsset for the native coin
	Weight      uint64         // share of the global emission relative to the total weight
	MinDeposit  *big.Int       // smallest first deposit into a position
	UnlockDelay uint64         // ticks a withdrawal request waits before it can be executed
}

// Pool is one stakeable asset class and its running reward accumulator.
type Pool struct {
	ID          uint64
	Asset       common.Address
	Weight      uint64
	MinDeposit  *big.Int
	UnlockDelay uint64

	TotalStaked       *big.Int // sum of all live stakes in the pool
	AccRewardPerShare *big.Int // reward per staked unit since inception, scaled by fixedpoint.Precision
	LastUpdateTick    uint64   // tick the accumulator was last brought current
}

// IsEmpty returns whether nothing is staked in the pool.
func (p *Pool) IsEmpty() bool {
	return p.TotalStaked == nil || p.TotalStaked.Sign() == 0
}

// Params returns the admin controlled settings of the pool.
func (p *Pool) Params() Params {
	return Params{
		Asset:       p.Asset,
		Weight:      p.Weight,
		MinDeposit:  new(big.Int).Set(p.MinDeposit),
		UnlockDelay: p.UnlockDelay,
	}
}

// Clone returns a deep copy, so staged changes never alias committed state.
func (p *Pool) Clone() *Pool {
	return &Pool{
		ID:                p.ID,
		Asset:             p.Asset,
		Weight:            p.Weight,
		MinDeposit:        new(big.Int).Set(p.MinDeposit),
		UnlockDelay:       p.UnlockDelay,
		TotalStaked:       new(big.Int).Set(p.TotalStaked),
		AccRewardPerShare: new(big.Int).Set(p.AccRewardPerShare),
		LastUpdateTick:    p.LastUpdateTick,
	}
}
