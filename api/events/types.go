// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/eventlog"
	"github.com/vechain/stakepool/ledger"
)

type Range struct {
	From *uint64 `json:"from"`
	To   *uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	Pool    *uint64            `json:"pool"`
	Caller  *common.Address    `json:"caller"`
	Kinds   []ledger.EventKind `json:"kinds"`
	Range   *Range             `json:"range"`
	Options *Options           `json:"options"`
	Order   eventlog.Order     `json:"order"`
}

type FilteredEvent struct {
	Kind         ledger.EventKind      `json:"kind"`
	Revision     uint64                `json:"revision"`
	Index        uint32                `json:"index"`
	Tick         uint64                `json:"tick"`
	Caller       common.Address        `json:"caller"`
	Pool         uint64                `json:"pool"`
	Asset        common.Address        `json:"asset"`
	Amount       *math.HexOrDecimal256 `json:"amount,omitempty"`
	UnlockTick   uint64                `json:"unlockTick,omitempty"`
	RequestIndex uint64                `json:"requestIndex,omitempty"`
	Weight       uint64                `json:"weight,omitempty"`
	MinDeposit   *math.HexOrDecimal256 `json:"minDeposit,omitempty"`
	UnlockDelay  uint64                `json:"unlockDelay,omitempty"`
	Operation    ledger.Operation      `json:"operation,omitempty"`
	Paused       bool                  `json:"paused,omitempty"`
}

func convertFilter(ef *EventFilter) (*eventlog.Filter, error) {
	f := &eventlog.Filter{
		Pool:   ef.Pool,
		Caller: ef.Caller,
		Kinds:  ef.Kinds,
		Order:  ef.Order,
	}
	switch ef.Order {
	case "", eventlog.ASC, eventlog.DESC:
	default:
		return nil, errors.Errorf("invalid order %q", ef.Order)
	}
	for _, k := range ef.Kinds {
		if !slices.Contains(ledger.EventKinds, k) {
			return nil, errors.Errorf("invalid kind %q", k)
		}
	}
	if r := ef.Range; r != nil && (r.From != nil || r.To != nil) {
		// eventlog treats To below From as open ended
		f.Range = &eventlog.Range{}
		if r.From != nil {
			f.Range.From = *r.From
		}
		if r.To != nil {
			if *r.To < f.Range.From {
				return nil, errors.New("range.to must be greater than or equal to range.from")
			}
			f.Range.To = *r.To
		} else if f.Range.From == 0 {
			f.Range = nil
		}
	}
	if ef.Options != nil {
		f.Options = &eventlog.Options{Offset: ef.Options.Offset, Limit: ef.Options.Limit}
	}
	return f, nil
}

func optionalBig(x *big.Int) *math.HexOrDecimal256 {
	if x == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(x)
}

// ConvertEvent renders a ledger event for json output.
func ConvertEvent(ev *ledger.Event) *FilteredEvent {
	return &FilteredEvent{
		Kind:         ev.Kind,
		Revision:     ev.Revision,
		Index:        ev.Index,
		Tick:         ev.Tick,
		Caller:       ev.Caller,
		Pool:         ev.Pool,
		Asset:        ev.Asset,
		Amount:       optionalBig(ev.Amount),
		UnlockTick:   ev.UnlockTick,
		RequestIndex: ev.RequestIndex,
		Weight:       ev.Weight,
		MinDeposit:   optionalBig(ev.MinDeposit),
		UnlockDelay:  ev.UnlockDelay,
		Operation:    ev.Operation,
		Paused:       ev.Paused,
	}
}
