// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"bytes"
	"cmp"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// Key identifies a position.
type Key struct {
	Pool    uint64
	Account common.Address
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.Pool, b.Pool); c != 0 {
		return c
	}
	return bytes.Compare(a.Account[:], b.Account[:])
}

// Book holds every position of the ledger. Positions are created on first
// touch and never removed. Book is not safe for concurrent use.
type Book struct {
	positions map[Key]*Position
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{positions: make(map[Key]*Position)}
}

// Len returns the number of positions ever opened.
func (b *Book) Len() int {
	return len(b.positions)
}

// Get returns the committed position, or nil when the account never touched the pool.
func (b *Book) Get(key Key) *Position {
	return b.positions[key]
}

// Load returns a copy of the position that can be staged, a fresh one when absent.
func (b *Book) Load(key Key) *Position {
	if p, ok := b.positions[key]; ok {
		return p.Clone()
	}
	return New()
}

// Put commits the position.
func (b *Book) Put(key Key, p *Position) {
	b.positions[key] = p
}

// Keys returns all position keys ordered by pool then account.
func (b *Book) Keys() []Key {
	keys := make([]Key, 0, len(b.positions))
	for k := range b.positions {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// Staked sums the stake of every position in the pool.
func (b *Book) Staked(pool uint64) *big.Int {
	total := new(big.Int)
	for k, p := range b.positions {
		if k.Pool == pool {
			total.Add(total, p.StakedAmount)
		}
	}
	return total
}
