// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/position"
)

// Entry is a position together with its key.
type Entry struct {
	Key      position.Key
	Position *position.Position
}

// Snapshot is a deep copy of the complete ledger state.
type Snapshot struct {
	Revision        uint64
	EmissionPerTick *big.Int
	StartTick       uint64
	Paused          bool
	PausedOps       []Operation
	Pools           []*pool.Pool
	Positions       []Entry // sorted by key
}

// lockDispatched takes the state lock and waits until the events of every
// committed revision were consumed by the sinks.
func (l *Ledger) lockDispatched() func() {
	l.mu.Lock()
	l.dispatchMu.Lock()
	return func() {
		l.dispatchMu.Unlock()
		l.mu.Unlock()
	}
}

// Snapshot copies the current state. The sinks have consumed every revision
// up to the snapshot's when it returns.
func (l *Ledger) Snapshot() *Snapshot {
	defer l.lockDispatched()()
	return l.snapshot()
}

// SnapshotFunc calls fn with a copy of the current state while holding the
// ledger lock. Nothing, the bank included, is mutated through the ledger until
// fn returns, so fn can capture external state consistent with the snapshot.
// Every revision up to the snapshot's has reached the sinks before fn is called.
// fn must not call back into the ledger.
func (l *Ledger) SnapshotFunc(fn func(*Snapshot) error) error {
	defer l.lockDispatched()()
	return fn(l.snapshot())
}

func (l *Ledger) snapshot() *Snapshot {
	snap := &Snapshot{
		Revision:        l.revision,
		EmissionPerTick: l.scheduler.EmissionPerTick(),
		StartTick:       l.scheduler.StartTick(),
		Paused:          l.paused,
	}
	for _, op := range Operations {
		if l.pausedOps[op] {
			snap.PausedOps = append(snap.PausedOps, op)
		}
	}
	for _, p := range l.pools.All() {
		snap.Pools = append(snap.Pools, p.Clone())
	}
	for _, key := range l.positions.Keys() {
		snap.Positions = append(snap.Positions, Entry{Key: key, Position: l.positions.Get(key).Clone()})
	}
	return snap
}

// Restore builds a ledger from a snapshot. The snapshot is checked for
// consistency: pools must be in id order and every pool's total must match
// the stakes of its positions.
func Restore(snap *Snapshot, clock Clock, bank Bank, auth Authorizer) (*Ledger, error) {
	l, err := New(Config{EmissionPerTick: snap.EmissionPerTick, StartTick: snap.StartTick}, clock, bank, auth)
	if err != nil {
		return nil, err
	}
	for _, p := range snap.Pools {
		if err := l.pools.Put(p.Clone()); err != nil {
			return nil, errors.Wrapf(err, "restore pool %d", p.ID)
		}
	}
	for _, e := range snap.Positions {
		if _, err := l.pools.Get(e.Key.Pool); err != nil {
			return nil, errors.Wrapf(err, "restore position of %v in pool %d", e.Key.Account, e.Key.Pool)
		}
		l.positions.Put(e.Key, e.Position.Clone())
	}
	for _, p := range l.pools.All() {
		if staked := l.positions.Staked(p.ID); staked.Cmp(p.TotalStaked) != 0 {
			return nil, errors.Errorf("pool %d total staked %v does not match positions %v", p.ID, p.TotalStaked, staked)
		}
		observeStaked(l.pools, p.ID)
	}
	for _, op := range snap.PausedOps {
		if !op.Valid() {
			return nil, errors.Errorf("unknown paused operation %q", op)
		}
		l.pausedOps[op] = true
	}
	l.paused = snap.Paused
	l.revision = snap.Revision
	return l, nil
}
