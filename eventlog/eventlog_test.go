// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/bank"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/pool"
)

var (
	admin = common.HexToAddress("0xad")
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
	token = common.HexToAddress("0x7070")
)

func newEventLog(t *testing.T) *EventLog {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// feed runs a short ledger history with the event log attached.
func feed(t *testing.T, db *EventLog) {
	c, b := clock.NewManual(0), bank.NewMemory()
	l, err := ledger.New(ledger.Config{EmissionPerTick: big.NewInt(100)}, c, b, ledger.NewAdminSet(admin))
	require.NoError(t, err)
	l.AddSink(db)

	for _, weight := range []uint64{10, 20} {
		_, err := l.AddPool(admin, pool.Params{Asset: token, Weight: weight, MinDeposit: big.NewInt(1), UnlockDelay: 2})
		require.NoError(t, err)
	}
	require.NoError(t, b.Credit(token, alice, big.NewInt(1000)))
	require.NoError(t, b.Credit(token, bob, big.NewInt(1000)))

	require.NoError(t, l.Stake(alice, 0, big.NewInt(100)))
	require.NoError(t, l.Stake(bob, 1, big.NewInt(200)))
	c.Advance(5)
	_, err = l.RequestWithdrawal(alice, 0, big.NewInt(40))
	require.NoError(t, err)
	_, err = l.ClaimReward(bob, 1)
	require.NoError(t, err)
	c.Advance(5)
	_, err = l.ExecuteWithdrawal(alice, 0, 0)
	require.NoError(t, err)
	require.NoError(t, l.SetPaused(admin, ledger.OpStake, true))
	require.NoError(t, l.SetEmissionPerTick(admin, big.NewInt(0)))
}

func TestConsumeAndFilter(t *testing.T) {
	db := newEventLog(t)
	feed(t, db)
	ctx := context.Background()

	all, err := db.Filter(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 9)
	for i, ev := range all {
		assert.Equal(t, uint64(i+1), ev.Revision)
	}

	added := all[0]
	assert.Equal(t, ledger.EventPoolAdded, added.Kind)
	assert.Equal(t, admin, added.Caller)
	assert.Equal(t, token, added.Asset)
	assert.Equal(t, uint64(10), added.Weight)
	assert.Equal(t, big.NewInt(1), added.MinDeposit)
	assert.Equal(t, uint64(2), added.UnlockDelay)
	assert.Nil(t, added.Amount)

	requested := all[4]
	assert.Equal(t, ledger.EventWithdrawalRequested, requested.Kind)
	assert.Equal(t, alice, requested.Caller)
	assert.Equal(t, big.NewInt(40), requested.Amount)
	assert.Equal(t, uint64(5), requested.Tick)
	assert.Equal(t, uint64(7), requested.UnlockTick)

	paused := all[7]
	assert.Equal(t, ledger.EventPauseChanged, paused.Kind)
	assert.Equal(t, ledger.OpStake, paused.Operation)
	assert.True(t, paused.Paused)

	emission := all[8]
	assert.Equal(t, ledger.EventEmissionChanged, emission.Kind)
	assert.Equal(t, 0, emission.Amount.Sign())

	last, err := db.LastRevision()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), last)
}

func TestFilterCriteria(t *testing.T) {
	db := newEventLog(t)
	feed(t, db)
	ctx := context.Background()

	kindsOf := func(events []*ledger.Event) (kinds []ledger.EventKind) {
		for _, ev := range events {
			kinds = append(kinds, ev.Kind)
		}
		return
	}

	poolZero := uint64(0)
	events, err := db.Filter(ctx, &Filter{Pool: &poolZero, Caller: &alice})
	require.NoError(t, err)
	assert.Equal(t, []ledger.EventKind{
		ledger.EventStaked, ledger.EventWithdrawalRequested, ledger.EventWithdrawn,
	}, kindsOf(events))

	events, err = db.Filter(ctx, &Filter{Kinds: []ledger.EventKind{ledger.EventStaked, ledger.EventRewardClaimed}, Order: DESC})
	require.NoError(t, err)
	assert.Equal(t, []ledger.EventKind{
		ledger.EventRewardClaimed, ledger.EventStaked, ledger.EventStaked,
	}, kindsOf(events))
	assert.Equal(t, bob, events[0].Caller)

	events, err = db.Filter(ctx, &Filter{Range: &Range{From: 5, To: 5}})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = db.Filter(ctx, &Filter{Range: &Range{From: 10}})
	require.NoError(t, err)
	assert.Len(t, events, 3)

	events, err = db.Filter(ctx, &Filter{Options: &Options{Offset: 2, Limit: 3}})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, uint64(3), events[0].Revision)

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = db.Filter(ctx, nil)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	db := newEventLog(t)
	feed(t, db)

	n, err := db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(9), n)

	require.NoError(t, db.Truncate(4))
	last, err := db.LastRevision()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), last)
	n, err = db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	// a revision written again replaces the old rows
	require.NoError(t, db.Consume([]*ledger.Event{{Kind: ledger.EventStaked, Revision: 4, Caller: bob, Amount: big.NewInt(7)}}))
	events, err := db.Filter(context.Background(), &Filter{Range: &Range{From: 0}, Options: &Options{Offset: 3, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, bob, events[0].Caller)
	assert.Equal(t, big.NewInt(7), events[0].Amount)
}

func TestPersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())
	require.NoError(t, db.Consume([]*ledger.Event{{Kind: ledger.EventPoolAdded, Revision: 1}}))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	last, err := db.LastRevision()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), last)
}
