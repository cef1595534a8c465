// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/bank"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/pool"
)

func TestExportEvents(t *testing.T) {
	old := exportPageSize
	exportPageSize = 2
	defer func() { exportPageSize = old }()

	_, eventLog := newStores(t)
	b := bank.NewMemory()
	c := clock.NewManual(0)
	l, err := ledger.New(ledger.Config{EmissionPerTick: big.NewInt(10)}, c, b, ledger.NewAdminSet(admin))
	require.NoError(t, err)
	l.AddSink(eventLog)

	_, err = l.AddPool(admin, pool.Params{Asset: token, Weight: 1, MinDeposit: big.NewInt(1)})
	require.NoError(t, err)
	require.NoError(t, b.Credit(token, alice, big.NewInt(100)))
	for range 3 {
		require.NoError(t, l.Stake(alice, 0, big.NewInt(10)))
	}
	c.Advance(4)
	_, err = l.ClaimReward(alice, 0)
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := exportEvents(context.Background(), eventLog, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	var kinds []ledger.EventKind
	scanner := bufio.NewScanner(&out)
	for i := uint64(1); scanner.Scan(); i++ {
		var ev events.FilteredEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		assert.Equal(t, i, ev.Revision)
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []ledger.EventKind{
		ledger.EventPoolAdded,
		ledger.EventStaked, ledger.EventStaked, ledger.EventStaked,
		ledger.EventRewardClaimed,
	}, kinds)
}

func TestExportEventsEmpty(t *testing.T) {
	_, eventLog := newStores(t)
	var out, progress bytes.Buffer
	n, err := exportEvents(context.Background(), eventLog, &out, &progress)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, out.Len())
}
