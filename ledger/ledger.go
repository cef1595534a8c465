// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger is the staking engine. It keeps pools and positions, settles
// reward before every touch and moves assets through an external bank.
package ledger

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/position"
	"github.com/vechain/stakepool/reward"
)

var logger = log.WithContext("pkg", "ledger")

// Clock yields the current tick. Ticks never decrease.
type Clock interface {
	Now() uint64
}

// Bank moves assets on behalf of the ledger. Any error aborts the operation
// that requested the transfer.
type Bank interface {
	// Pull moves amount of asset from an account into ledger custody.
	Pull(asset, from common.Address, amount *big.Int) error
	// Push releases amount of asset from ledger custody to an account.
	Push(asset, to common.Address, amount *big.Int) error
	// Mint creates amount of the reward asset for an account.
	Mint(to common.Address, amount *big.Int) error
}

// Config holds the global reward parameters of a new ledger.
type Config struct {
	EmissionPerTick *big.Int
	StartTick       uint64
}

// Globals is a read-only view of the global state.
type Globals struct {
	EmissionPerTick *big.Int
	TotalWeight     uint64
	StartTick       uint64
	PoolCount       uint64
	Paused          bool
}

// Head identifies a state of the ledger: the tick it was read at and the
// number of committed mutations.
type Head struct {
	Tick     uint64
	Revision uint64
}

// Ledger is safe for concurrent use. Every operation, queries included, runs
// under a single lock.
type Ledger struct {
	mu         sync.Mutex
	dispatchMu sync.Mutex
	clock      Clock
	bank       Bank
	auth       Authorizer
	sinks      []Sink

	scheduler *reward.Scheduler
	pools     *pool.Registry
	positions *position.Book
	paused    bool
	pausedOps map[Operation]bool
	revision  uint64
}

// New creates an empty ledger.
func New(cfg Config, clock Clock, bank Bank, auth Authorizer) (*Ledger, error) {
	if clock == nil || bank == nil || auth == nil {
		return nil, errors.New("clock, bank and authorizer are required")
	}
	scheduler, err := reward.NewScheduler(cfg.EmissionPerTick, cfg.StartTick)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		clock:     clock,
		bank:      bank,
		auth:      auth,
		scheduler: scheduler,
		pools:     pool.NewRegistry(),
		positions: position.NewBook(),
		pausedOps: make(map[Operation]bool),
	}, nil
}

// AddSink registers a consumer of committed events.
func (l *Ledger) AddSink(sink Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, sink)
}

// IsAuthorized reports whether caller may perform the administrative action.
func (l *Ledger) IsAuthorized(caller common.Address, action Action) bool {
	return l.auth.IsAuthorized(caller, action)
}

// Paused reports whether op is currently disabled, either on its own or by the global pause.
func (l *Ledger) Paused(op Operation) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused || l.pausedOps[op]
}

// Head returns the current tick and the revision of the last committed operation.
func (l *Ledger) Head() Head {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Head{Tick: l.clock.Now(), Revision: l.revision}
}

// Globals returns the emission settings and pool totals.
func (l *Ledger) Globals() Globals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Globals{
		EmissionPerTick: l.scheduler.EmissionPerTick(),
		TotalWeight:     l.pools.TotalWeight(),
		StartTick:       l.scheduler.StartTick(),
		PoolCount:       uint64(l.pools.Len()),
		Paused:          l.paused,
	}
}

// PoolCount returns the number of registered pools.
func (l *Ledger) PoolCount() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return uint64(l.pools.Len())
}

// Pool returns a copy of the pool as last settled.
func (l *Ledger) Pool(id uint64) (*pool.Pool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, err := l.pools.Get(id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Pools returns copies of all pools in id order.
func (l *Ledger) Pools() []*pool.Pool {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := l.pools.All()
	for i, p := range all {
		all[i] = p.Clone()
	}
	return all
}

// Position returns a copy of the account's position in the pool. An account
// that never staked gets an empty position.
func (l *Ledger) Position(poolID uint64, account common.Address) (*position.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.pools.Get(poolID); err != nil {
		return nil, err
	}
	return l.positions.Load(position.Key{Pool: poolID, Account: account}), nil
}

// PendingReward returns what ClaimReward would pay out right now, without
// changing any state.
func (l *Ledger) PendingReward(poolID uint64, account common.Address) (*big.Int, error) {
	pending, _, err := l.PendingRewardWithHead(poolID, account)
	return pending, err
}

// PendingRewardWithHead is PendingReward together with the head it was computed at.
func (l *Ledger) PendingRewardWithHead(poolID uint64, account common.Address) (*big.Int, Head, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	head := Head{Tick: l.clock.Now(), Revision: l.revision}
	p, err := l.pools.Get(poolID)
	if err != nil {
		return nil, head, err
	}
	acc, err := l.scheduler.Preview(p, l.pools.TotalWeight(), head.Tick)
	if err != nil {
		return nil, head, err
	}
	pos := l.positions.Get(position.Key{Pool: poolID, Account: account})
	if pos == nil {
		return new(big.Int), head, nil
	}
	pending, err := pos.Pending(acc)
	if err != nil {
		return nil, head, err
	}
	return pending, head, nil
}

// RequestCount returns the number of outstanding withdrawal requests of the position.
func (l *Ledger) RequestCount(poolID uint64, account common.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.pools.Get(poolID); err != nil {
		return 0, err
	}
	pos := l.positions.Get(position.Key{Pool: poolID, Account: account})
	if pos == nil {
		return 0, nil
	}
	return uint64(len(pos.Requests)), nil
}

// Request returns the withdrawal request at index.
func (l *Ledger) Request(poolID uint64, account common.Address, index uint64) (position.Request, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.pools.Get(poolID); err != nil {
		return position.Request{}, err
	}
	return l.positions.Load(position.Key{Pool: poolID, Account: account}).Request(index)
}
