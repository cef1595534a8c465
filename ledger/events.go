// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind names what a committed operation did.
type EventKind string

const (
	EventPoolAdded           EventKind = "PoolAdded"
	EventPoolUpdated         EventKind = "PoolUpdated"
	EventEmissionChanged     EventKind = "EmissionChanged"
	EventStaked              EventKind = "Staked"
	EventWithdrawalRequested EventKind = "WithdrawalRequested"
	EventWithdrawn           EventKind = "Withdrawn"
	EventRewardClaimed       EventKind = "RewardClaimed"
	EventPauseChanged        EventKind = "PauseChanged"
	EventEmergencyWithdrawn  EventKind = "EmergencyWithdrawn"
)

// EventKinds lists every kind in a stable order.
var EventKinds = []EventKind{
	EventPoolAdded, EventPoolUpdated, EventEmissionChanged,
	EventStaked, EventWithdrawalRequested, EventWithdrawn, EventRewardClaimed,
	EventPauseChanged, EventEmergencyWithdrawn,
}

// Event is emitted for every committed mutation. Fields that do not apply to
// the kind are left zero.
type Event struct {
	Kind     EventKind
	Revision uint64 // revision that committed the event
	Index    uint32 // position among the events of the revision
	Tick     uint64
	Caller   common.Address

	Pool  uint64
	Asset common.Address

	// Staked, WithdrawalRequested, Withdrawn, RewardClaimed, EmergencyWithdrawn:
	// the amount moved. EmissionChanged: the new rate.
	Amount       *big.Int
	UnlockTick   uint64 // WithdrawalRequested
	RequestIndex uint64 // Withdrawn

	// PoolAdded, PoolUpdated
	Weight      uint64
	MinDeposit  *big.Int
	UnlockDelay uint64

	// PauseChanged. An empty Operation is the global pause.
	Operation Operation
	Paused    bool
}

// Sink consumes committed events in commit order. Errors are logged and do not
// undo the commit. Consume must not call back into the ledger.
type Sink interface {
	Consume(events []*Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(events []*Event) error

func (f SinkFunc) Consume(events []*Event) error { return f(events) }
