// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bank keeps asset balances in memory. It backs the ledger in tests
// and in hosts that do not settle against a real chain.
package bank

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientCustody = errors.New("insufficient custody")
	ErrMintCapExceeded     = errors.New("mint cap exceeded")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// Memory holds per-asset account balances, the assets in ledger custody and
// the minted reward supply.
type Memory struct {
	mu       sync.Mutex
	balances map[common.Address]map[common.Address]*big.Int // asset => account => balance
	custody  map[common.Address]*big.Int                    // asset => amount held for the ledger
	rewards  map[common.Address]*big.Int                    // account => reward balance
	supply   *big.Int
	mintCap  *big.Int // nil for unlimited
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[common.Address]map[common.Address]*big.Int),
		custody:  make(map[common.Address]*big.Int),
		rewards:  make(map[common.Address]*big.Int),
		supply:   new(big.Int),
	}
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func get(m map[common.Address]*big.Int, key common.Address) *big.Int {
	if v, ok := m[key]; ok {
		return v
	}
	v := new(big.Int)
	m[key] = v
	return v
}

func (m *Memory) balance(asset, account common.Address) *big.Int {
	accounts, ok := m.balances[asset]
	if !ok {
		accounts = make(map[common.Address]*big.Int)
		m.balances[asset] = accounts
	}
	return get(accounts, account)
}

// Credit gives account amount of asset out of thin air.
func (m *Memory) Credit(asset, account common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balance(asset, account)
	b.Add(b, amount)
	return nil
}

// SetMintCap limits the total reward supply. A nil cap removes the limit.
func (m *Memory) SetMintCap(limit *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit == nil {
		m.mintCap = nil
		return
	}
	m.mintCap = new(big.Int).Set(limit)
}

func (m *Memory) Pull(asset, from common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balance(asset, from)
	if b.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%v has %v of %v, needs %v", from, b, asset, amount)
	}
	b.Sub(b, amount)
	c := get(m.custody, asset)
	c.Add(c, amount)
	return nil
}

func (m *Memory) Push(asset, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := get(m.custody, asset)
	if c.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientCustody, "holding %v of %v, needs %v", c, asset, amount)
	}
	c.Sub(c, amount)
	b := m.balance(asset, to)
	b.Add(b, amount)
	return nil
}

func (m *Memory) Mint(to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	supply := new(big.Int).Add(m.supply, amount)
	if m.mintCap != nil && supply.Cmp(m.mintCap) > 0 {
		return errors.Wrapf(ErrMintCapExceeded, "supply %v, cap %v", supply, m.mintCap)
	}
	m.supply = supply
	r := get(m.rewards, to)
	r.Add(r, amount)
	return nil
}

func (m *Memory) BalanceOf(asset, account common.Address) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if accounts, ok := m.balances[asset]; ok {
		if b, ok := accounts[account]; ok {
			return new(big.Int).Set(b)
		}
	}
	return new(big.Int)
}

// Custody returns how much of asset is held on behalf of the ledger.
func (m *Memory) Custody(asset common.Address) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.custody[asset]; ok {
		return new(big.Int).Set(c)
	}
	return new(big.Int)
}

func (m *Memory) RewardOf(account common.Address) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rewards[account]; ok {
		return new(big.Int).Set(r)
	}
	return new(big.Int)
}

// Supply returns the total reward minted so far.
func (m *Memory) Supply() *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.supply)
}
