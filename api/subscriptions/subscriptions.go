// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed ledger events over websocket.
package subscriptions

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
)

var (
	_ ledger.Sink = (*Subscriptions)(nil)

	logger            = log.WithContext("pkg", "subscriptions")
	metricSubscribers = metrics.LazyLoadGauge("api_active_subscriptions")
)

type filter struct {
	pool   *uint64
	caller *common.Address
	kinds  []ledger.EventKind
}

func (f *filter) match(ev *ledger.Event) bool {
	if f.pool != nil && *f.pool != ev.Pool {
		return false
	}
	if f.caller != nil && *f.caller != ev.Caller {
		return false
	}
	return len(f.kinds) == 0 || slices.Contains(f.kinds, ev.Kind)
}

func parseFilter(q url.Values) (*filter, error) {
	var f filter
	if s := q.Get("pool"); s != "" {
		id, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "pool")
		}
		f.pool = &id
	}
	if s := q.Get("caller"); s != "" {
		if !common.IsHexAddress(s) {
			return nil, errors.Errorf("caller: invalid address %q", s)
		}
		caller := common.HexToAddress(s)
		f.caller = &caller
	}
	for _, s := range q["kind"] {
		k := ledger.EventKind(s)
		if !slices.Contains(ledger.EventKinds, k) {
			return nil, errors.Errorf("kind: invalid kind %q", s)
		}
		f.kinds = append(f.kinds, k)
	}
	return &f, nil
}

type subscriber struct {
	filter *filter
	ch     chan *events.FilteredEvent
}

// Subscriptions is a ledger sink fanning events out to websocket clients.
// A client that falls more than backlog events behind is disconnected.
type Subscriptions struct {
	lock      sync.Mutex
	subs      map[*subscriber]struct{}
	backlog   int
	upgrader  *websocket.Upgrader
	done      chan struct{}
	closeOnce sync.Once
}

func New(allowedOrigins []string, backlog int) *Subscriptions {
	checkOrigin := func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
	return &Subscriptions{
		subs:     make(map[*subscriber]struct{}),
		backlog:  max(backlog, 1),
		upgrader: &websocket.Upgrader{EnableCompression: true, CheckOrigin: checkOrigin},
		done:     make(chan struct{}),
	}
}

// Consume never blocks the ledger.
func (s *Subscriptions) Consume(evs []*ledger.Event) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for sub := range s.subs {
		for _, ev := range evs {
			if !sub.filter.match(ev) {
				continue
			}
			select {
			case sub.ch <- events.ConvertEvent(ev):
				continue
			default:
			}
			logger.Debug("dropping slow subscriber")
			s.remove(sub)
			break
		}
	}
	return nil
}

// remove must be called with the lock held.
func (s *Subscriptions) remove(sub *subscriber) {
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub.ch)
		metricSubscribers().Add(-1)
	}
}

func (s *Subscriptions) subscribe(f *filter) *subscriber {
	s.lock.Lock()
	defer s.lock.Unlock()

	sub := &subscriber{filter: f, ch: make(chan *events.FilteredEvent, s.backlog)}
	s.subs[sub] = struct{}{}
	metricSubscribers().Add(1)
	return sub
}

func (s *Subscriptions) unsubscribe(sub *subscriber) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.remove(sub)
}

// Count returns the number of connected subscribers.
func (s *Subscriptions) Count() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.subs)
}

// Close disconnects every subscriber. Hijacked connections are not closed by
// http.Server.Shutdown.
func (s *Subscriptions) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func closeWith(conn *websocket.Conn, code int, text string) {
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	f, err := parseFilter(req.URL.Query())
	if err != nil {
		return utils.BadRequest(err)
	}

	// subscribe first so nothing committed after the handshake is missed
	sub := s.subscribe(f)
	defer s.unsubscribe(sub)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has replied already
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	// the reader only serves control frames and notices the peer leaving
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			closeWith(conn, websocket.CloseGoingAway, "")
			return nil
		case <-closed:
			return nil
		case ev, ok := <-sub.ch:
			if !ok {
				closeWith(conn, websocket.CloseTryAgainLater, "subscriber too slow")
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("failed to write event", "err", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("subscriptions_events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
