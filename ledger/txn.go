// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/position"
	"github.com/vechain/stakepool/reverts"
)

// txn stages the changes of one operation on copies of the touched records.
// Nothing reaches the ledger until commit.
type txn struct {
	l      *Ledger
	caller common.Address
	now    uint64

	pools     map[uint64]*pool.Pool
	positions map[position.Key]*position.Position
	emission  *big.Int
	paused    *bool
	pausedOps map[Operation]bool
	events    []*Event
}

func (l *Ledger) begin(caller common.Address) *txn {
	return &txn{
		l:         l,
		caller:    caller,
		now:       l.clock.Now(),
		pools:     make(map[uint64]*pool.Pool),
		positions: make(map[position.Key]*position.Position),
		pausedOps: make(map[Operation]bool),
	}
}

// pool returns the staged copy of a pool.
func (tx *txn) pool(id uint64) (*pool.Pool, error) {
	if p, ok := tx.pools[id]; ok {
		return p, nil
	}
	p, err := tx.l.pools.Get(id)
	if err != nil {
		return nil, err
	}
	staged := p.Clone()
	tx.pools[id] = staged
	return staged, nil
}

// addPool stages a new pool and returns it.
func (tx *txn) addPool(params pool.Params) (*pool.Pool, error) {
	p := tx.l.pools.New(params, tx.now)
	if _, err := tx.l.pools.WeightAfter(p); err != nil {
		return nil, err
	}
	tx.pools[p.ID] = p
	return p, nil
}

// settledPool returns the staged copy of a pool with its accumulator brought up to now.
func (tx *txn) settledPool(id uint64) (*pool.Pool, error) {
	p, err := tx.pool(id)
	if err != nil {
		return nil, err
	}
	if err := tx.l.scheduler.Settle(p, tx.l.pools.TotalWeight(), tx.now); err != nil {
		return nil, err
	}
	return p, nil
}

// settleAll brings every registered pool up to now under the current weights and rate.
func (tx *txn) settleAll() error {
	for id := range uint64(tx.l.pools.Len()) {
		if _, err := tx.settledPool(id); err != nil {
			return err
		}
	}
	return nil
}

// position returns the staged copy of the caller's position in a pool.
func (tx *txn) position(poolID uint64) *position.Position {
	key := position.Key{Pool: poolID, Account: tx.caller}
	if pos, ok := tx.positions[key]; ok {
		return pos
	}
	pos := tx.l.positions.Load(key)
	tx.positions[key] = pos
	return pos
}

func (tx *txn) emit(ev *Event) {
	ev.Tick = tx.now
	ev.Caller = tx.caller
	tx.events = append(tx.events, ev)
}

// transfer runs an external asset movement. A failure is reported as ErrTransferFailed.
func (tx *txn) transfer(move func() error) error {
	if err := move(); err != nil {
		return errors.WithMessage(reverts.ErrTransferFailed, err.Error())
	}
	return nil
}

// commit applies the staged state and returns the events stamped with the new revision.
func (tx *txn) commit() ([]*Event, error) {
	l := tx.l

	ids := make([]uint64, 0, len(tx.pools))
	for id := range tx.pools {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := l.pools.Put(tx.pools[id]); err != nil {
			// weight changes are validated while staging
			return nil, errors.Wrap(err, "commit pool")
		}
	}
	for key, pos := range tx.positions {
		l.positions.Put(key, pos)
	}
	if tx.emission != nil {
		if err := l.scheduler.SetEmissionPerTick(tx.emission); err != nil {
			return nil, errors.Wrap(err, "commit emission")
		}
	}
	if tx.paused != nil {
		l.paused = *tx.paused
	}
	for op, paused := range tx.pausedOps {
		if paused {
			l.pausedOps[op] = true
		} else {
			delete(l.pausedOps, op)
		}
	}

	l.revision++
	for i, ev := range tx.events {
		ev.Revision = l.revision
		ev.Index = uint32(i)
	}
	for _, id := range ids {
		observeStaked(l.pools, id)
	}
	return tx.events, nil
}

// run executes fn as one atomic operation. The staged changes are committed
// only when fn succeeds, and the resulting events are delivered to the sinks
// in commit order.
func (l *Ledger) run(name string, caller common.Address, fn func(tx *txn) error) error {
	start := time.Now()

	l.mu.Lock()
	tx := l.begin(caller)
	err := fn(tx)
	var events []*Event
	if err == nil {
		events, err = tx.commit()
	}
	sinks := l.sinks

	// hand over to the dispatch lock before releasing the state, so sinks see
	// revisions in order
	l.dispatchMu.Lock()
	l.mu.Unlock()
	defer l.dispatchMu.Unlock()

	observeOperation(name, err, time.Since(start))
	if err != nil {
		logger.Info("operation failed", "op", name, "caller", caller, "tick", tx.now, "error", err)
		return err
	}
	logger.Debug("operation committed", "op", name, "caller", caller, "tick", tx.now, "events", len(events))

	for _, sink := range sinks {
		if err := sink.Consume(events); err != nil {
			logger.Warn("event sink failed", "op", name, "error", err)
		}
	}
	return nil
}
