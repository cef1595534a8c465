// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ops

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/ledger"
)

// Every request names the caller it acts for. The api trusts it, so the
// endpoints must only be exposed to a trusted front.

type StakeRequest struct {
	Caller common.Address        `json:"caller"`
	Pool   uint64                `json:"pool"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type ExecuteRequest struct {
	Caller common.Address `json:"caller"`
	Pool   uint64         `json:"pool"`
	Index  uint64         `json:"index"`
}

type ClaimRequest struct {
	Caller common.Address `json:"caller"`
	Pool   uint64         `json:"pool"`
}

type PoolRequest struct {
	Caller      common.Address        `json:"caller"`
	Asset       common.Address        `json:"asset"`
	Weight      uint64                `json:"weight"`
	MinDeposit  *math.HexOrDecimal256 `json:"minDeposit"`
	UnlockDelay uint64                `json:"unlockDelay"`
}

type EmissionRequest struct {
	Caller          common.Address        `json:"caller"`
	EmissionPerTick *math.HexOrDecimal256 `json:"emissionPerTick"`
}

type PauseRequest struct {
	Caller    common.Address   `json:"caller"`
	Operation ledger.Operation `json:"operation"` // empty for every operation
	Paused    bool             `json:"paused"`
}

type EmergencyRequest struct {
	Caller common.Address        `json:"caller"`
	Asset  common.Address        `json:"asset"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Result struct {
	ID         *uint64               `json:"id,omitempty"`
	Amount     *math.HexOrDecimal256 `json:"amount,omitempty"`
	UnlockTick *uint64               `json:"unlockTick,omitempty"`
	Revision   uint64                `json:"revision"`
}
