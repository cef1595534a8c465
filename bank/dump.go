// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"bytes"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Entry is one non-zero amount. Custody entries leave Account zero, reward
// entries leave Asset zero.
type Entry struct {
	Asset   common.Address
	Account common.Address
	Amount  *big.Int
}

// Dump is a deterministic copy of the book, suitable for persisting.
// The mint cap is configuration and is not part of it.
type Dump struct {
	Balances []Entry
	Custody  []Entry
	Rewards  []Entry
	Supply   *big.Int
}

func compareEntries(a, b Entry) int {
	if c := bytes.Compare(a.Asset[:], b.Asset[:]); c != 0 {
		return c
	}
	return bytes.Compare(a.Account[:], b.Account[:])
}

// Dump copies the book, sorted by asset then account.
func (m *Memory) Dump() *Dump {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := &Dump{Supply: new(big.Int).Set(m.supply)}
	for asset, accounts := range m.balances {
		for account, b := range accounts {
			if b.Sign() > 0 {
				d.Balances = append(d.Balances, Entry{asset, account, new(big.Int).Set(b)})
			}
		}
	}
	for asset, c := range m.custody {
		if c.Sign() > 0 {
			d.Custody = append(d.Custody, Entry{Asset: asset, Amount: new(big.Int).Set(c)})
		}
	}
	for account, r := range m.rewards {
		if r.Sign() > 0 {
			d.Rewards = append(d.Rewards, Entry{Account: account, Amount: new(big.Int).Set(r)})
		}
	}
	slices.SortFunc(d.Balances, compareEntries)
	slices.SortFunc(d.Custody, compareEntries)
	slices.SortFunc(d.Rewards, compareEntries)
	return d
}

// Load rebuilds a book from a dump. The minted rewards must add up to the supply.
func Load(d *Dump) (*Memory, error) {
	m := NewMemory()
	rewards := new(big.Int)
	for _, e := range d.Balances {
		if err := checkAmount(e.Amount); err != nil {
			return nil, errors.WithMessagef(err, "balance of %v in %v", e.Account, e.Asset)
		}
		b := m.balance(e.Asset, e.Account)
		b.Add(b, e.Amount)
	}
	for _, e := range d.Custody {
		if err := checkAmount(e.Amount); err != nil {
			return nil, errors.WithMessagef(err, "custody of %v", e.Asset)
		}
		c := get(m.custody, e.Asset)
		c.Add(c, e.Amount)
	}
	for _, e := range d.Rewards {
		if err := checkAmount(e.Amount); err != nil {
			return nil, errors.WithMessagef(err, "reward of %v", e.Account)
		}
		r := get(m.rewards, e.Account)
		r.Add(r, e.Amount)
		rewards.Add(rewards, e.Amount)
	}
	if err := checkAmount(d.Supply); err != nil {
		return nil, errors.WithMessage(err, "supply")
	}
	if rewards.Cmp(d.Supply) != 0 {
		return nil, errors.Errorf("rewards %v do not add up to supply %v", rewards, d.Supply)
	}
	m.supply.Set(d.Supply)
	return m, nil
}
