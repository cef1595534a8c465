// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/reverts"
)

// Registry is the append-only arena of pools. A pool id is its index and is never reused.
// Registry is not safe for concurrent use, the ledger serializes access.
type Registry struct {
	pools       []*Pool
	totalWeight uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Len returns the number of registered pools.
func (r *Registry) Len() int {
	return len(r.pools)
}

// TotalWeight returns the sum of all pool weights.
func (r *Registry) TotalWeight() uint64 {
	return r.totalWeight
}

// Get returns the committed pool. Callers must Clone before mutating.
func (r *Registry) Get(id uint64) (*Pool, error) {
	if id >= uint64(len(r.pools)) {
		return nil, reverts.ErrInvalidPool
	}
	return r.pools[id], nil
}

// All returns the committed pools in id order.
func (r *Registry) All() []*Pool {
	all := make([]*Pool, len(r.pools))
	copy(all, r.pools)
	return all
}

// Next returns the id the next appended pool receives.
func (r *Registry) Next() uint64 {
	return uint64(len(r.pools))
}

// New builds an empty pool with the next id, without registering it.
func (r *Registry) New(params Params, now uint64) *Pool {
	return &Pool{
		ID:                r.Next(),
		Asset:             params.Asset,
		Weight:            params.Weight,
		MinDeposit:        new(big.Int).Set(params.MinDeposit),
		UnlockDelay:       params.UnlockDelay,
		TotalStaked:       new(big.Int),
		AccRewardPerShare: new(big.Int),
		LastUpdateTick:    now,
	}
}

// WeightAfter returns the total weight once p replaces (or is appended as) its id.
func (r *Registry) WeightAfter(p *Pool) (uint64, error) {
	total := r.totalWeight
	if p.ID < uint64(len(r.pools)) {
		total -= r.pools[p.ID].Weight
	} else if p.ID != r.Next() {
		return 0, errors.Errorf("pool id %d out of sequence, next is %d", p.ID, r.Next())
	}
	total, carry := bits.Add64(total, p.Weight, 0)
	if carry != 0 {
		return 0, reverts.ErrOverflow
	}
	return total, nil
}

// Put commits p, appending it when its id is the next one and replacing the
// existing pool otherwise. The total weight follows the change.
func (r *Registry) Put(p *Pool) error {
	total, err := r.WeightAfter(p)
	if err != nil {
		return err
	}
	if p.ID == r.Next() {
		r.pools = append(r.pools, p)
	} else {
		r.pools[p.ID] = p
	}
	r.totalWeight = total
	return nil
}
