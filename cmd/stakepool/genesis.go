// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/bank"
	"github.com/vechain/stakepool/eventlog"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/store"
)

// Genesis describes a new ledger. Amounts are decimal or 0x prefixed hex strings.
type Genesis struct {
	GenesisTime     time.Time        `yaml:"genesisTime"`
	TickInterval    time.Duration    `yaml:"tickInterval"`
	EmissionPerTick string           `yaml:"emissionPerTick"`
	StartTick       uint64           `yaml:"startTick"`
	MintCap         string           `yaml:"mintCap"`
	Admins          []string         `yaml:"admins"`
	Pools           []GenesisPool    `yaml:"pools"`
	Balances        []GenesisBalance `yaml:"balances"`
}

type GenesisPool struct {
	Asset       string `yaml:"asset"`
	Weight      uint64 `yaml:"weight"`
	MinDeposit  string `yaml:"minDeposit"`
	UnlockDelay uint64 `yaml:"unlockDelay"`
}

type GenesisBalance struct {
	Asset   string `yaml:"asset"`
	Account string `yaml:"account"`
	Amount  string `yaml:"amount"`
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func parseAddress(s string) (common.Address, error) {
	if s == "" {
		return pool.NativeAsset, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// parsedGenesis is Genesis with every field validated and converted.
type parsedGenesis struct {
	genesisTime  time.Time
	tickInterval time.Duration
	config       ledger.Config
	mintCap      *big.Int // nil for unlimited
	admins       []common.Address
	pools        []pool.Params
	balances     []bank.Entry
}

func decodeGenesis(r io.Reader) (*parsedGenesis, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var gen Genesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}

	if gen.GenesisTime.IsZero() {
		return nil, errors.New("genesisTime is required")
	}
	if gen.TickInterval <= 0 {
		return nil, errors.New("tickInterval must be positive")
	}
	p := &parsedGenesis{genesisTime: gen.GenesisTime, tickInterval: gen.TickInterval}

	rate, err := parseAmount(gen.EmissionPerTick)
	if err != nil {
		return nil, errors.WithMessage(err, "emissionPerTick")
	}
	p.config = ledger.Config{EmissionPerTick: rate, StartTick: gen.StartTick}

	if gen.MintCap != "" {
		if p.mintCap, err = parseAmount(gen.MintCap); err != nil {
			return nil, errors.WithMessage(err, "mintCap")
		}
	}

	for i, a := range gen.Admins {
		if !common.IsHexAddress(a) {
			return nil, errors.Errorf("admins[%d]: invalid address %q", i, a)
		}
		p.admins = append(p.admins, common.HexToAddress(a))
	}
	if len(gen.Pools) > 0 && len(p.admins) == 0 {
		return nil, errors.New("pools need at least one admin")
	}

	for i, gp := range gen.Pools {
		asset, err := parseAddress(gp.Asset)
		if err != nil {
			return nil, errors.WithMessagef(err, "pools[%d].asset", i)
		}
		minDeposit, err := parseAmount(gp.MinDeposit)
		if err != nil {
			return nil, errors.WithMessagef(err, "pools[%d].minDeposit", i)
		}
		p.pools = append(p.pools, pool.Params{
			Asset:       asset,
			Weight:      gp.Weight,
			MinDeposit:  minDeposit,
			UnlockDelay: gp.UnlockDelay,
		})
	}

	for i, gb := range gen.Balances {
		asset, err := parseAddress(gb.Asset)
		if err != nil {
			return nil, errors.WithMessagef(err, "balances[%d].asset", i)
		}
		if !common.IsHexAddress(gb.Account) {
			return nil, errors.Errorf("balances[%d].account: invalid address %q", i, gb.Account)
		}
		amount, err := parseAmount(gb.Amount)
		if err != nil {
			return nil, errors.WithMessagef(err, "balances[%d].amount", i)
		}
		p.balances = append(p.balances, bank.Entry{Asset: asset, Account: common.HexToAddress(gb.Account), Amount: amount})
	}
	return p, nil
}

func loadGenesis(path string) (*parsedGenesis, error) {
	if path == "" {
		return nil, errors.New("genesis file not specified")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis file")
	}
	defer f.Close()
	return decodeGenesis(f)
}

// build creates the ledger and its bank as the genesis describes them. Sinks
// are attached before the first admin adds the pools.
func (g *parsedGenesis) build(clock ledger.Clock, sinks ...ledger.Sink) (*ledger.Ledger, *bank.Memory, error) {
	b := bank.NewMemory()
	for _, e := range g.balances {
		if err := b.Credit(e.Asset, e.Account, e.Amount); err != nil {
			return nil, nil, err
		}
	}
	b.SetMintCap(g.mintCap)

	l, err := ledger.New(g.config, clock, b, ledger.NewAdminSet(g.admins...))
	if err != nil {
		return nil, nil, err
	}
	for _, sink := range sinks {
		l.AddSink(sink)
	}
	for i, params := range g.pools {
		if _, err := l.AddPool(g.admins[0], params); err != nil {
			return nil, nil, errors.WithMessagef(err, "add pool %d", i)
		}
	}
	return l, b, nil
}

// openLedger restores the ledger from the stored snapshot, or builds it from
// the genesis when the store is empty. Events journaled after the snapshot
// are dropped since the state they describe was never saved.
func openLedger(g *parsedGenesis, st *store.Store, eventLog *eventlog.EventLog, clock ledger.Clock) (*ledger.Ledger, *bank.Memory, error) {
	snap, err := st.Load()
	if errors.Is(err, store.ErrNoSnapshot) {
		log.Info("no snapshot found, building ledger from genesis")
		if err := eventLog.Truncate(0); err != nil {
			return nil, nil, errors.Wrap(err, "truncate event log")
		}
		return g.build(clock, eventLog)
	}
	if err != nil {
		return nil, nil, errors.WithMessage(err, "load snapshot")
	}

	dump, err := st.LoadBalances()
	if err != nil {
		return nil, nil, errors.WithMessage(err, "load balances")
	}
	if dump == nil {
		return nil, nil, errors.New("snapshot has no balances")
	}
	b, err := bank.Load(dump)
	if err != nil {
		return nil, nil, err
	}
	b.SetMintCap(g.mintCap)

	l, err := ledger.Restore(snap, clock, b, ledger.NewAdminSet(g.admins...))
	if err != nil {
		return nil, nil, err
	}

	last, err := eventLog.LastRevision()
	if err != nil {
		return nil, nil, errors.Wrap(err, "read event log")
	}
	if last > snap.Revision {
		log.Warn("dropping events after snapshot", "snapshot", snap.Revision, "journal", last)
	}
	if err := eventLog.Truncate(snap.Revision); err != nil {
		return nil, nil, errors.Wrap(err, "truncate event log")
	}
	l.AddSink(eventLog)
	log.Info("ledger restored", "revision", snap.Revision, "pools", len(snap.Pools), "positions", len(snap.Positions))
	return l, b, nil
}
