// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/position"
)

type Pool struct {
	ID                uint64                `json:"id"`
	Asset             common.Address        `json:"asset"`
	Weight            uint64                `json:"weight"`
	MinDeposit        *math.HexOrDecimal256 `json:"minDeposit"`
	UnlockDelay       uint64                `json:"unlockDelay"`
	TotalStaked       *math.HexOrDecimal256 `json:"totalStaked"`
	AccRewardPerShare *math.HexOrDecimal256 `json:"accRewardPerShare"`
	LastUpdateTick    uint64                `json:"lastUpdateTick"`
}

type Request struct {
	Index      uint64                `json:"index"`
	Amount     *math.HexOrDecimal256 `json:"amount"`
	UnlockTick uint64                `json:"unlockTick"`
	Unlocked   bool                  `json:"unlocked"`
}

type Position struct {
	Pool         uint64                `json:"pool"`
	Account      common.Address        `json:"account"`
	StakedAmount *math.HexOrDecimal256 `json:"stakedAmount"`
	RewardDebt   *math.HexOrDecimal256 `json:"rewardDebt"`
	Owed         *math.HexOrDecimal256 `json:"owed"`
	Requests     []*Request            `json:"requests"`
}

type Pending struct {
	Pending  *math.HexOrDecimal256 `json:"pending"`
	Tick     uint64                `json:"tick"`
	Revision uint64                `json:"revision"`
}

func hexOrDecimal(x *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).Set(x))
}

func convertPool(p *pool.Pool) *Pool {
	return &Pool{
		ID:                p.ID,
		Asset:             p.Asset,
		Weight:            p.Weight,
		MinDeposit:        hexOrDecimal(p.MinDeposit),
		UnlockDelay:       p.UnlockDelay,
		TotalStaked:       hexOrDecimal(p.TotalStaked),
		AccRewardPerShare: hexOrDecimal(p.AccRewardPerShare),
		LastUpdateTick:    p.LastUpdateTick,
	}
}

func convertPosition(poolID uint64, account common.Address, p *position.Position, now uint64) *Position {
	requests := make([]*Request, 0, len(p.Requests))
	for i, r := range p.Requests {
		requests = append(requests, &Request{
			Index:      uint64(i),
			Amount:     hexOrDecimal(r.Amount),
			UnlockTick: r.UnlockTick,
			Unlocked:   r.Unlocked(now),
		})
	}
	return &Position{
		Pool:         poolID,
		Account:      account,
		StakedAmount: hexOrDecimal(p.StakedAmount),
		RewardDebt:   hexOrDecimal(p.RewardDebt),
		Owed:         hexOrDecimal(p.Owed),
		Requests:     requests,
	}
}
