// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/fixedpoint"
	"github.com/vechain/stakepool/pool"
)

// Scheduler brings pool accumulators up to date with the clock. Emission is
// split across pools by weight and, inside a pool, across stake.
type Scheduler struct {
	emissionPerTick *big.Int
	startTick       uint64
}

// NewScheduler creates a scheduler emitting rate per tick from startTick onwards.
func NewScheduler(rate *big.Int, startTick uint64) (*Scheduler, error) {
	if err := fixedpoint.ValidEmission(rate); err != nil {
		return nil, errors.WithMessagef(err, "emission rate %v", rate)
	}
	return &Scheduler{
		emissionPerTick: new(big.Int).Set(rate),
		startTick:       startTick,
	}, nil
}

// EmissionPerTick returns the total reward emitted per tick across all pools.
func (s *Scheduler) EmissionPerTick() *big.Int {
	return new(big.Int).Set(s.emissionPerTick)
}

// StartTick returns the first tick that emits reward.
func (s *Scheduler) StartTick() uint64 {
	return s.startTick
}

// SetEmissionPerTick changes the rate. Every pool must be settled under the old rate first.
func (s *Scheduler) SetEmissionPerTick(rate *big.Int) error {
	if err := fixedpoint.ValidEmission(rate); err != nil {
		return errors.WithMessagef(err, "emission rate %v", rate)
	}
	s.emissionPerTick = new(big.Int).Set(rate)
	return nil
}

// Preview returns the accumulator p would hold if settled at now, without touching p.
func (s *Scheduler) Preview(p *pool.Pool, totalWeight, now uint64) (*big.Int, error) {
	if now <= p.LastUpdateTick {
		return new(big.Int).Set(p.AccRewardPerShare), nil
	}
	from := max(p.LastUpdateTick, s.startTick)
	if now <= from || p.IsEmpty() || totalWeight == 0 {
		// nothing to emit, or emission for an empty pool is forfeited
		return new(big.Int).Set(p.AccRewardPerShare), nil
	}

	reward, err := fixedpoint.Emission(now-from, s.emissionPerTick, p.Weight, totalWeight)
	if err != nil {
		return nil, errors.Wrapf(err, "emission of pool %d", p.ID)
	}
	delta, err := fixedpoint.RewardPerShare(reward, p.TotalStaked)
	if err != nil {
		return nil, errors.Wrapf(err, "reward per share of pool %d", p.ID)
	}
	return fixedpoint.Add(p.AccRewardPerShare, delta)
}

// Settle advances p's accumulator to now. It is a no-op when now is not past the last update.
func (s *Scheduler) Settle(p *pool.Pool, totalWeight, now uint64) error {
	if now <= p.LastUpdateTick {
		return nil
	}
	acc, err := s.Preview(p, totalWeight, now)
	if err != nil {
		return err
	}
	p.AccRewardPerShare = acc
	p.LastUpdateTick = now
	return nil
}

// SettleAll settles every pool, as required before any change to the emission
// rate, a pool weight or the total weight.
func (s *Scheduler) SettleAll(pools []*pool.Pool, totalWeight, now uint64) error {
	for _, p := range pools {
		if err := s.Settle(p, totalWeight, now); err != nil {
			return err
		}
	}
	return nil
}
