// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakepool/reverts"
)

// Operation is a category of user operation that can be paused.
type Operation string

const (
	OpStake    Operation = "stake"    // Stake
	OpUnstake  Operation = "unstake"  // RequestWithdrawal
	OpWithdraw Operation = "withdraw" // ExecuteWithdrawal
	OpClaim    Operation = "claim"    // ClaimReward
)

// Operations lists every pausable category.
var Operations = []Operation{OpStake, OpUnstake, OpWithdraw, OpClaim}

func (op Operation) Valid() bool {
	switch op {
	case OpStake, OpUnstake, OpWithdraw, OpClaim:
		return true
	}
	return false
}

// Action is an administrative operation subject to authorization.
type Action string

const (
	ActionAddPool           Action = "addPool"
	ActionUpdatePool        Action = "updatePool"
	ActionSetEmission       Action = "setEmissionPerTick"
	ActionPause             Action = "pause"
	ActionEmergencyWithdraw Action = "emergencyWithdraw"
)

// Authorizer decides who may run administrative actions. Role storage is up
// to the implementation.
type Authorizer interface {
	IsAuthorized(caller common.Address, action Action) bool
}

// AdminSet authorizes a fixed set of addresses for every action.
type AdminSet map[common.Address]struct{}

func NewAdminSet(admins ...common.Address) AdminSet {
	set := make(AdminSet, len(admins))
	for _, a := range admins {
		set[a] = struct{}{}
	}
	return set
}

func (s AdminSet) IsAuthorized(caller common.Address, _ Action) bool {
	_, ok := s[caller]
	return ok
}

func (l *Ledger) authorize(caller common.Address, action Action) error {
	if !l.auth.IsAuthorized(caller, action) {
		return reverts.ErrUnauthorized
	}
	return nil
}

func (l *Ledger) checkPaused(op Operation) error {
	if l.paused || l.pausedOps[op] {
		return reverts.ErrPaused
	}
	return nil
}
