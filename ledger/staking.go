// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakepool/fixedpoint"
	"github.com/vechain/stakepool/position"
	"github.com/vechain/stakepool/reverts"
)

// validAmount rejects malformed and zero amounts.
func validAmount(amount *big.Int) error {
	if _, err := fixedpoint.FromBig(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return reverts.ErrAmountZero
	}
	return nil
}

// Stake deposits amount of the pool's asset from caller. The first deposit
// into an empty position must reach the pool's minimum.
func (l *Ledger) Stake(caller common.Address, poolID uint64, amount *big.Int) error {
	return l.run("stake", caller, func(tx *txn) error {
		if err := l.checkPaused(OpStake); err != nil {
			return err
		}
		p, err := tx.pool(poolID)
		if err != nil {
			return err
		}
		if err := validAmount(amount); err != nil {
			return err
		}
		pos := tx.position(poolID)
		if pos.StakedAmount.Sign() == 0 && amount.Cmp(p.MinDeposit) < 0 {
			return reverts.ErrBelowMinimum
		}

		if p, err = tx.settledPool(poolID); err != nil {
			return err
		}
		if err := pos.Bank(p.AccRewardPerShare); err != nil {
			return err
		}
		staked, err := fixedpoint.Add(pos.StakedAmount, amount)
		if err != nil {
			return err
		}
		total, err := fixedpoint.Add(p.TotalStaked, amount)
		if err != nil {
			return err
		}
		pos.StakedAmount = staked
		p.TotalStaked = total

		if err := tx.transfer(func() error { return l.bank.Pull(p.Asset, caller, amount) }); err != nil {
			return err
		}
		tx.emit(&Event{
			Kind:   EventStaked,
			Pool:   poolID,
			Asset:  p.Asset,
			Amount: new(big.Int).Set(amount),
		})
		return nil
	})
}

// RequestWithdrawal takes amount out of the caller's stake and queues it for
// release once the pool's unlock delay has passed. It returns the unlock tick.
func (l *Ledger) RequestWithdrawal(caller common.Address, poolID uint64, amount *big.Int) (uint64, error) {
	var unlockTick uint64
	err := l.run("requestWithdrawal", caller, func(tx *txn) error {
		if err := l.checkPaused(OpUnstake); err != nil {
			return err
		}
		if _, err := tx.pool(poolID); err != nil {
			return err
		}
		if err := validAmount(amount); err != nil {
			return err
		}
		pos := tx.position(poolID)
		if amount.Cmp(pos.StakedAmount) > 0 {
			return reverts.ErrInsufficientStake
		}

		p, err := tx.settledPool(poolID)
		if err != nil {
			return err
		}
		if err := pos.Bank(p.AccRewardPerShare); err != nil {
			return err
		}
		staked, err := fixedpoint.Sub(pos.StakedAmount, amount)
		if err != nil {
			return err
		}
		total, err := fixedpoint.Sub(p.TotalStaked, amount)
		if err != nil {
			return err
		}
		pos.StakedAmount = staked
		p.TotalStaked = total

		unlockTick = tx.now + p.UnlockDelay
		if unlockTick < tx.now {
			return reverts.ErrOverflow
		}
		pos.Requests = append(pos.Requests, position.Request{
			Amount:     new(big.Int).Set(amount),
			UnlockTick: unlockTick,
		})
		tx.emit(&Event{
			Kind:       EventWithdrawalRequested,
			Pool:       poolID,
			Asset:      p.Asset,
			Amount:     new(big.Int).Set(amount),
			UnlockTick: unlockTick,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return unlockTick, nil
}

// ExecuteWithdrawal releases the request at index to the caller once it is
// unlocked. The remaining requests keep their order.
func (l *Ledger) ExecuteWithdrawal(caller common.Address, poolID uint64, index uint64) (*big.Int, error) {
	var released *big.Int
	err := l.run("executeWithdrawal", caller, func(tx *txn) error {
		if err := l.checkPaused(OpWithdraw); err != nil {
			return err
		}
		p, err := tx.pool(poolID)
		if err != nil {
			return err
		}
		pos := tx.position(poolID)
		req, err := pos.Request(index)
		if err != nil {
			return err
		}
		if !req.Unlocked(tx.now) {
			return reverts.ErrStillLocked
		}
		if _, err := pos.RemoveRequest(index); err != nil {
			return err
		}

		if err := tx.transfer(func() error { return l.bank.Push(p.Asset, caller, req.Amount) }); err != nil {
			return err
		}
		released = req.Amount
		tx.emit(&Event{
			Kind:         EventWithdrawn,
			Pool:         poolID,
			Asset:        p.Asset,
			Amount:       new(big.Int).Set(req.Amount),
			UnlockTick:   req.UnlockTick,
			RequestIndex: index,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// ClaimReward mints everything the caller has earned in the pool, including
// reward banked before the stake was withdrawn.
func (l *Ledger) ClaimReward(caller common.Address, poolID uint64) (*big.Int, error) {
	var owed *big.Int
	err := l.run("claimReward", caller, func(tx *txn) error {
		if err := l.checkPaused(OpClaim); err != nil {
			return err
		}
		p, err := tx.settledPool(poolID)
		if err != nil {
			return err
		}
		pos := tx.position(poolID)
		amount, err := pos.Take(p.AccRewardPerShare)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return reverts.ErrNoReward
		}

		if err := tx.transfer(func() error { return l.bank.Mint(caller, amount) }); err != nil {
			return err
		}
		owed = amount
		tx.emit(&Event{
			Kind:   EventRewardClaimed,
			Pool:   poolID,
			Asset:  p.Asset,
			Amount: new(big.Int).Set(amount),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return owed, nil
}
