// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/bank"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/pool"
)

var (
	admin = common.HexToAddress("0xad")
	alice = common.HexToAddress("0xa11ce")
	token = common.HexToAddress("0x7070")
)

func TestParseFilter(t *testing.T) {
	f, err := parseFilter(url.Values{"pool": {"0x2"}, "caller": {alice.Hex()}, "kind": {"Staked", "Withdrawn"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), *f.pool)
	assert.Equal(t, alice, *f.caller)
	assert.Equal(t, []ledger.EventKind{ledger.EventStaked, ledger.EventWithdrawn}, f.kinds)

	assert.True(t, f.match(&ledger.Event{Kind: ledger.EventStaked, Pool: 2, Caller: alice}))
	assert.False(t, f.match(&ledger.Event{Kind: ledger.EventStaked, Pool: 1, Caller: alice}))
	assert.False(t, f.match(&ledger.Event{Kind: ledger.EventStaked, Pool: 2, Caller: admin}))
	assert.False(t, f.match(&ledger.Event{Kind: ledger.EventRewardClaimed, Pool: 2, Caller: alice}))

	empty, err := parseFilter(url.Values{})
	require.NoError(t, err)
	assert.True(t, empty.match(&ledger.Event{Kind: ledger.EventPauseChanged}))

	for _, q := range []url.Values{
		{"pool": {"one"}},
		{"caller": {"0x12"}},
		{"kind": {"Minted"}},
	} {
		_, err := parseFilter(q)
		assert.Error(t, err, q.Encode())
	}
}

func newServer(t *testing.T, backlog int) (*ledger.Ledger, *bank.Memory, *Subscriptions, *httptest.Server) {
	b := bank.NewMemory()
	l, err := ledger.New(ledger.Config{EmissionPerTick: big.NewInt(10)}, clock.NewManual(0), b, ledger.NewAdminSet(admin))
	require.NoError(t, err)

	subs := New([]string{"http://example.com"}, backlog)
	l.AddSink(subs)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		subs.Close()
		ts.Close()
	})
	return l, b, subs, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/events", RawQuery: query}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *events.FilteredEvent {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev events.FilteredEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	return &ev
}

func TestStream(t *testing.T) {
	l, b, subs, ts := newServer(t, 16)
	conn := dial(t, ts, "pool=1")
	assert.Equal(t, 1, subs.Count())

	for range 2 {
		_, err := l.AddPool(admin, pool.Params{Asset: token, Weight: 1, MinDeposit: big.NewInt(1)})
		require.NoError(t, err)
	}
	require.NoError(t, b.Credit(token, alice, big.NewInt(500)))
	require.NoError(t, l.Stake(alice, 0, big.NewInt(100)))
	require.NoError(t, l.Stake(alice, 1, big.NewInt(200)))

	ev := readEvent(t, conn)
	assert.Equal(t, ledger.EventPoolAdded, ev.Kind)
	assert.Equal(t, uint64(1), ev.Pool)
	assert.Equal(t, uint64(2), ev.Revision)

	ev = readEvent(t, conn)
	assert.Equal(t, ledger.EventStaked, ev.Kind)
	assert.Equal(t, alice, ev.Caller)
	assert.Equal(t, int64(200), (*big.Int)(ev.Amount).Int64())
}

func TestBadRequest(t *testing.T) {
	_, _, subs, ts := newServer(t, 1)

	res, err := http.Get(ts.URL + "/subscriptions/events?kind=Minted")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/events"}
	_, resp, err := websocket.DefaultDialer.Dial(u.String(), http.Header{"Origin": {"http://evil.com"}})
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Eventually(t, func() bool { return subs.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSlowSubscriberDropped(t *testing.T) {
	subs := New(nil, 1)
	sub := subs.subscribe(&filter{})

	require.NoError(t, subs.Consume([]*ledger.Event{
		{Kind: ledger.EventStaked, Revision: 1},
		{Kind: ledger.EventStaked, Revision: 2},
	}))
	assert.Equal(t, 0, subs.Count())

	ev, ok := <-sub.ch
	require.True(t, ok)
	assert.Equal(t, uint64(1), ev.Revision)
	_, ok = <-sub.ch
	assert.False(t, ok)

	// a second removal is harmless
	subs.unsubscribe(sub)
}

func TestClose(t *testing.T) {
	_, _, subs, ts := newServer(t, 4)
	conn := dial(t, ts, "")

	subs.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error %v", err)
	assert.Eventually(t, func() bool { return subs.Count() == 0 }, time.Second, 10*time.Millisecond)
}
