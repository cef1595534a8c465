// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakepool/ledger"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive tick range. A To below From leaves the range open ended.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects events. Unset fields match everything.
type Filter struct {
	Pool    *uint64
	Caller  *common.Address
	Kinds   []ledger.EventKind
	Range   *Range
	Order   Order
	Options *Options
}
