// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the http surface of the ledger.
package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/middleware"
	"github.com/vechain/stakepool/api/ops"
	"github.com/vechain/stakepool/api/pools"
	"github.com/vechain/stakepool/api/status"
	"github.com/vechain/stakepool/api/subscriptions"
	"github.com/vechain/stakepool/eventlog"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	EnableOps            bool // mount the write endpoints
	EventsLimit          uint64
	PendingCacheSize     int
	SubscriptionBacklog  int // zero disables the websocket event stream
}

// New returns the api handler, the pool query handlers, whose cache
// statistics the caller may report, and a func closing open subscriptions.
func New(l *ledger.Ledger, eventLog *eventlog.EventLog, opts Options) (http.Handler, *pools.Pools, func(), error) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	status.New(l).
		Mount(router, "/status")
	p, err := pools.New(l, opts.PendingCacheSize)
	if err != nil {
		return nil, nil, nil, err
	}
	p.Mount(router, "/pools")
	if eventLog != nil {
		events.New(eventLog, opts.EventsLimit).
			Mount(router, "/events")
	}
	closeSubs := func() {}
	if opts.SubscriptionBacklog > 0 {
		subs := subscriptions.New(origins, opts.SubscriptionBacklog)
		l.AddSink(subs)
		subs.Mount(router, "/subscriptions")
		closeSubs = subs.Close
	}
	if opts.EnableOps {
		ops.New(l).
			Mount(router, "/ops")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut}),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = new(atomic.Bool)
	}
	handler = middleware.RequestLogger(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return handler, p, closeSubs, nil
}
