// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"
	"slices"

	"github.com/vechain/stakepool/fixedpoint"
	"github.com/vechain/stakepool/reverts"
)

// Request is a pending withdrawal. Its amount has already left the stake and earns nothing.
type Request struct {
	Amount     *big.Int
	UnlockTick uint64
}

// Unlocked returns whether the request can be executed at the given tick.
func (r *Request) Unlocked(now uint64) bool {
	return now >= r.UnlockTick
}

// Position is the stake of one account in one pool.
type Position struct {
	StakedAmount *big.Int
	RewardDebt   *big.Int  // accumulator value already accounted for
	Owed         *big.Int  // reward banked at earlier touches and not yet claimed
	Requests     []Request // pending withdrawals in request order
}

// New creates an empty position with zeroed amounts.
func New() *Position {
	return &Position{
		StakedAmount: new(big.Int),
		RewardDebt:   new(big.Int),
		Owed:         new(big.Int),
	}
}

// IsEmpty returns whether the position holds nothing at all.
func (p *Position) IsEmpty() bool {
	return p.StakedAmount.Sign() == 0 && p.Owed.Sign() == 0 && len(p.Requests) == 0
}

// Clone returns a deep copy.
func (p *Position) Clone() *Position {
	c := &Position{
		StakedAmount: new(big.Int).Set(p.StakedAmount),
		RewardDebt:   new(big.Int).Set(p.RewardDebt),
		Owed:         new(big.Int).Set(p.Owed),
	}
	if len(p.Requests) > 0 {
		c.Requests = make([]Request, len(p.Requests))
		for i, r := range p.Requests {
			c.Requests[i] = Request{Amount: new(big.Int).Set(r.Amount), UnlockTick: r.UnlockTick}
		}
	}
	return c
}

// Accrued returns the reward earned by the current stake since the last touch.
func (p *Position) Accrued(acc *big.Int) (*big.Int, error) {
	return fixedpoint.Accrued(p.StakedAmount, acc, p.RewardDebt)
}

// Pending returns banked plus accrued reward against the accumulator value acc.
func (p *Position) Pending(acc *big.Int) (*big.Int, error) {
	accrued, err := p.Accrued(acc)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Add(p.Owed, accrued)
}

// Bank moves the accrued reward into Owed and resets the debt to acc.
// It must run before the stake changes.
func (p *Position) Bank(acc *big.Int) error {
	owed, err := p.Pending(acc)
	if err != nil {
		return err
	}
	p.Owed = owed
	p.RewardDebt = new(big.Int).Set(acc)
	return nil
}

// Take banks the reward against acc and returns it, leaving nothing owed.
func (p *Position) Take(acc *big.Int) (*big.Int, error) {
	if err := p.Bank(acc); err != nil {
		return nil, err
	}
	owed := p.Owed
	p.Owed = new(big.Int)
	return owed, nil
}

// Request returns a copy of the pending withdrawal at index i.
func (p *Position) Request(i uint64) (Request, error) {
	if i >= uint64(len(p.Requests)) {
		return Request{}, reverts.ErrInvalidRequestIndex
	}
	r := p.Requests[i]
	return Request{Amount: new(big.Int).Set(r.Amount), UnlockTick: r.UnlockTick}, nil
}

// RemoveRequest deletes the request at index i. Remaining requests keep their order.
func (p *Position) RemoveRequest(i uint64) (Request, error) {
	if i >= uint64(len(p.Requests)) {
		return Request{}, reverts.ErrInvalidRequestIndex
	}
	r := p.Requests[i]
	p.Requests = slices.Delete(p.Requests, int(i), int(i)+1)
	return r, nil
}

// Locked returns the sum of all pending withdrawals.
func (p *Position) Locked() *big.Int {
	total := new(big.Int)
	for _, r := range p.Requests {
		total.Add(total, r.Amount)
	}
	return total
}
