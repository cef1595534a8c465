// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store persists ledger snapshots in a key-value store. Records are
// rlp encoded and snappy compressed, and a snapshot is written in one batch.
package store

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/bank"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/position"
)

const (
	metaBucket     = kv.Bucket("m")
	poolBucket     = kv.Bucket("p")
	positionBucket = kv.Bucket("u")
	bankBucket     = kv.Bucket("b")

	version = 1
)

var (
	metaKey = []byte("snapshot")
	bankKey = []byte("balances")
)

// ErrNoSnapshot is returned by Load when nothing was saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

type metaRecord struct {
	Version         uint
	Revision        uint64
	EmissionPerTick *big.Int
	StartTick       uint64
	Paused          bool
	PausedOps       []string
	PoolCount       uint64
	PositionCount   uint64
}

type poolRecord struct {
	Asset             common.Address
	Weight            uint64
	MinDeposit        *big.Int
	UnlockDelay       uint64
	TotalStaked       *big.Int
	AccRewardPerShare *big.Int
	LastUpdateTick    uint64
}

type requestRecord struct {
	Amount     *big.Int
	UnlockTick uint64
}

type positionRecord struct {
	StakedAmount *big.Int
	RewardDebt   *big.Int
	Owed         *big.Int
	Requests     []requestRecord
}

// Store saves and loads ledger snapshots.
type Store struct {
	db        kv.Store
	meta      kv.Store
	pools     kv.Store
	positions kv.Store
	balances  kv.Store
}

func New(db kv.Store) *Store {
	return &Store{
		db:        db,
		meta:      metaBucket.NewStore(db),
		pools:     poolBucket.NewStore(db),
		positions: positionBucket.NewStore(db),
		balances:  bankBucket.NewStore(db),
	}
}

func encode(val any) ([]byte, error) {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, data), nil
}

func decode(data []byte, val any) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(raw, val)
}

func poolKey(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

func positionKey(key position.Key) []byte {
	return append(binary.BigEndian.AppendUint64(nil, key.Pool), key.Account[:]...)
}

func parsePositionKey(k []byte) (position.Key, error) {
	if len(k) != 8+common.AddressLength {
		return position.Key{}, errors.Errorf("malformed position key %x", k)
	}
	return position.Key{
		Pool:    binary.BigEndian.Uint64(k),
		Account: common.BytesToAddress(k[8:]),
	}, nil
}

// Save replaces the stored snapshot with snap, and the stored balances with
// balances when not nil. Both land in one batch.
func (s *Store) Save(snap *ledger.Snapshot, balances *bank.Dump) error {
	batch := s.db.NewBatch()
	meta := metaBucket.NewBatch(batch)
	pools := poolBucket.NewBatch(batch)
	positions := positionBucket.NewBatch(batch)

	// positions are never removed by the ledger, but a restored store may hold stale ones
	keep := make(map[string]struct{}, len(snap.Positions))
	for _, e := range snap.Positions {
		keep[string(positionKey(e.Key))] = struct{}{}
	}
	it := s.positions.Iterate(kv.Range{})
	for it.Next() {
		if _, ok := keep[string(it.Key())]; !ok {
			if err := positions.Delete(append([]byte(nil), it.Key()...)); err != nil {
				it.Release()
				return err
			}
		}
	}
	it.Release()
	if err := it.Error(); err != nil {
		return errors.Wrap(err, "scan positions")
	}

	rec := metaRecord{
		Version:         version,
		Revision:        snap.Revision,
		EmissionPerTick: snap.EmissionPerTick,
		StartTick:       snap.StartTick,
		Paused:          snap.Paused,
		PoolCount:       uint64(len(snap.Pools)),
		PositionCount:   uint64(len(snap.Positions)),
	}
	for _, op := range snap.PausedOps {
		rec.PausedOps = append(rec.PausedOps, string(op))
	}
	data, err := encode(&rec)
	if err != nil {
		return errors.Wrap(err, "encode meta")
	}
	if err := meta.Put(metaKey, data); err != nil {
		return err
	}

	for _, p := range snap.Pools {
		data, err := encode(&poolRecord{
			Asset:             p.Asset,
			Weight:            p.Weight,
			MinDeposit:        p.MinDeposit,
			UnlockDelay:       p.UnlockDelay,
			TotalStaked:       p.TotalStaked,
			AccRewardPerShare: p.AccRewardPerShare,
			LastUpdateTick:    p.LastUpdateTick,
		})
		if err != nil {
			return errors.Wrapf(err, "encode pool %d", p.ID)
		}
		if err := pools.Put(poolKey(p.ID), data); err != nil {
			return err
		}
	}

	for _, e := range snap.Positions {
		rec := positionRecord{
			StakedAmount: e.Position.StakedAmount,
			RewardDebt:   e.Position.RewardDebt,
			Owed:         e.Position.Owed,
		}
		for _, r := range e.Position.Requests {
			rec.Requests = append(rec.Requests, requestRecord{Amount: r.Amount, UnlockTick: r.UnlockTick})
		}
		data, err := encode(&rec)
		if err != nil {
			return errors.Wrapf(err, "encode position %v", e.Key)
		}
		if err := positions.Put(positionKey(e.Key), data); err != nil {
			return err
		}
	}

	if balances != nil {
		data, err := encode(balances)
		if err != nil {
			return errors.Wrap(err, "encode balances")
		}
		if err := bankBucket.NewBatch(batch).Put(bankKey, data); err != nil {
			return err
		}
	}

	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	return nil
}

// LoadBalances reads the stored balances. It returns nil when none were saved.
func (s *Store) LoadBalances() (*bank.Dump, error) {
	data, err := s.balances.Get(bankKey)
	if err != nil {
		if s.balances.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var d bank.Dump
	if err := decode(data, &d); err != nil {
		return nil, errors.Wrap(err, "decode balances")
	}
	return &d, nil
}

// Load reads the stored snapshot. It returns ErrNoSnapshot on an empty store.
func (s *Store) Load() (*ledger.Snapshot, error) {
	data, err := s.meta.Get(metaKey)
	if err != nil {
		if s.meta.IsNotFound(err) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	var meta metaRecord
	if err := decode(data, &meta); err != nil {
		return nil, errors.Wrap(err, "decode meta")
	}
	if meta.Version != version {
		return nil, errors.Errorf("unsupported snapshot version %d", meta.Version)
	}

	snap := &ledger.Snapshot{
		Revision:        meta.Revision,
		EmissionPerTick: meta.EmissionPerTick,
		StartTick:       meta.StartTick,
		Paused:          meta.Paused,
	}
	for _, op := range meta.PausedOps {
		snap.PausedOps = append(snap.PausedOps, ledger.Operation(op))
	}

	for id := range meta.PoolCount {
		data, err := s.pools.Get(poolKey(id))
		if err != nil {
			return nil, errors.Wrapf(err, "get pool %d", id)
		}
		var rec poolRecord
		if err := decode(data, &rec); err != nil {
			return nil, errors.Wrapf(err, "decode pool %d", id)
		}
		snap.Pools = append(snap.Pools, &pool.Pool{
			ID:                id,
			Asset:             rec.Asset,
			Weight:            rec.Weight,
			MinDeposit:        rec.MinDeposit,
			UnlockDelay:       rec.UnlockDelay,
			TotalStaked:       rec.TotalStaked,
			AccRewardPerShare: rec.AccRewardPerShare,
			LastUpdateTick:    rec.LastUpdateTick,
		})
	}

	it := s.positions.Iterate(kv.Range{})
	defer it.Release()
	for it.Next() {
		key, err := parsePositionKey(it.Key())
		if err != nil {
			return nil, err
		}
		var rec positionRecord
		if err := decode(it.Value(), &rec); err != nil {
			return nil, errors.Wrapf(err, "decode position %v", key)
		}
		pos := &position.Position{
			StakedAmount: rec.StakedAmount,
			RewardDebt:   rec.RewardDebt,
			Owed:         rec.Owed,
		}
		for _, r := range rec.Requests {
			pos.Requests = append(pos.Requests, position.Request{Amount: r.Amount, UnlockTick: r.UnlockTick})
		}
		snap.Positions = append(snap.Positions, ledger.Entry{Key: key, Position: pos})
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "scan positions")
	}
	if uint64(len(snap.Positions)) != meta.PositionCount {
		return nil, errors.Errorf("found %d positions, expected %d", len(snap.Positions), meta.PositionCount)
	}
	return snap, nil
}
