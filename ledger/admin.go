// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/fixedpoint"
	"github.com/vechain/stakepool/pool"
)

func validParams(params pool.Params) error {
	if _, err := fixedpoint.FromBig(params.MinDeposit); err != nil {
		return errors.WithMessage(err, "min deposit")
	}
	return nil
}

// AddPool registers a new pool and returns its id. Every existing pool is
// settled first so accrual up to now uses the old total weight.
func (l *Ledger) AddPool(caller common.Address, params pool.Params) (uint64, error) {
	var id uint64
	err := l.run("addPool", caller, func(tx *txn) error {
		if err := l.authorize(caller, ActionAddPool); err != nil {
			return err
		}
		if err := validParams(params); err != nil {
			return err
		}
		if err := tx.settleAll(); err != nil {
			return err
		}
		p, err := tx.addPool(params)
		if err != nil {
			return err
		}
		id = p.ID
		tx.emit(&Event{
			Kind:        EventPoolAdded,
			Pool:        p.ID,
			Asset:       p.Asset,
			Weight:      p.Weight,
			MinDeposit:  new(big.Int).Set(p.MinDeposit),
			UnlockDelay: p.UnlockDelay,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("added pool", "id", id, "asset", params.Asset, "weight", params.Weight, "unlockDelay", params.UnlockDelay)
	return id, nil
}

// UpdatePool changes the weight, minimum deposit and unlock delay of a pool.
// The staked asset cannot change. Requests already queued keep their unlock tick.
func (l *Ledger) UpdatePool(caller common.Address, id uint64, weight uint64, minDeposit *big.Int, unlockDelay uint64) error {
	err := l.run("updatePool", caller, func(tx *txn) error {
		if err := l.authorize(caller, ActionUpdatePool); err != nil {
			return err
		}
		if _, err := tx.pool(id); err != nil {
			return err
		}
		if _, err := fixedpoint.FromBig(minDeposit); err != nil {
			return errors.WithMessage(err, "min deposit")
		}
		// a weight change moves the share of every pool
		if err := tx.settleAll(); err != nil {
			return err
		}
		p, err := tx.pool(id)
		if err != nil {
			return err
		}
		p.Weight = weight
		p.MinDeposit = new(big.Int).Set(minDeposit)
		p.UnlockDelay = unlockDelay
		if _, err := l.pools.WeightAfter(p); err != nil {
			return err
		}
		tx.emit(&Event{
			Kind:        EventPoolUpdated,
			Pool:        p.ID,
			Asset:       p.Asset,
			Weight:      p.Weight,
			MinDeposit:  new(big.Int).Set(p.MinDeposit),
			UnlockDelay: p.UnlockDelay,
		})
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("updated pool", "id", id, "weight", weight, "unlockDelay", unlockDelay)
	return nil
}

// SetEmissionPerTick changes the global reward rate after settling every pool at the old rate.
func (l *Ledger) SetEmissionPerTick(caller common.Address, rate *big.Int) error {
	err := l.run("setEmissionPerTick", caller, func(tx *txn) error {
		if err := l.authorize(caller, ActionSetEmission); err != nil {
			return err
		}
		if err := fixedpoint.ValidEmission(rate); err != nil {
			return errors.WithMessage(err, "emission rate")
		}
		if err := tx.settleAll(); err != nil {
			return err
		}
		tx.emission = new(big.Int).Set(rate)
		tx.emit(&Event{
			Kind:   EventEmissionChanged,
			Amount: new(big.Int).Set(rate),
		})
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("set emission rate", "rate", rate)
	return nil
}

// SetPaused enables or disables one operation category.
func (l *Ledger) SetPaused(caller common.Address, op Operation, paused bool) error {
	if !op.Valid() {
		return errors.Errorf("unknown operation %q", op)
	}
	return l.setPaused(caller, op, paused)
}

// Pause disables every user operation regardless of the per-category flags.
func (l *Ledger) Pause(caller common.Address) error {
	return l.setPaused(caller, "", true)
}

// Unpause lifts the global pause. Categories paused on their own stay paused.
func (l *Ledger) Unpause(caller common.Address) error {
	return l.setPaused(caller, "", false)
}

func (l *Ledger) setPaused(caller common.Address, op Operation, paused bool) error {
	err := l.run("setPaused", caller, func(tx *txn) error {
		if err := l.authorize(caller, ActionPause); err != nil {
			return err
		}
		if op == "" {
			tx.paused = &paused
		} else {
			tx.pausedOps[op] = paused
		}
		tx.emit(&Event{
			Kind:      EventPauseChanged,
			Operation: op,
			Paused:    paused,
		})
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("pause changed", "op", op, "paused", paused)
	return nil
}

// EmergencyWithdraw pushes amount of any asset held by the ledger to the
// caller. Ledger accounting is not adjusted.
func (l *Ledger) EmergencyWithdraw(caller common.Address, asset common.Address, amount *big.Int) error {
	err := l.run("emergencyWithdraw", caller, func(tx *txn) error {
		if err := l.authorize(caller, ActionEmergencyWithdraw); err != nil {
			return err
		}
		if err := validAmount(amount); err != nil {
			return err
		}
		if err := tx.transfer(func() error { return l.bank.Push(asset, caller, amount) }); err != nil {
			return err
		}
		tx.emit(&Event{
			Kind:   EventEmergencyWithdrawn,
			Asset:  asset,
			Amount: new(big.Int).Set(amount),
		})
		return nil
	})
	if err != nil {
		return err
	}
	logger.Warn("emergency withdrawal", "caller", caller, "asset", asset, "amount", amount)
	return nil
}
