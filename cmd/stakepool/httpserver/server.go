// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/admin"
	"github.com/vechain/stakepool/metrics"
)

const shutdownTimeout = 5 * time.Second

// serve runs handler on addr until the returned func is called.
func serve(name, addr string, handler http.Handler) (net.Addr, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes sync.WaitGroup
	goes.Go(func() {
		srv.Serve(listener)
	})
	return listener.Addr(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
		}
		goes.Wait()
	}, nil
}

func StartAPIServer(addr string, handler http.Handler) (string, func(), error) {
	listenAddr, closeFunc, err := serve("API", addr, handler)
	if err != nil {
		return "", nil, err
	}
	return "http://" + listenAddr.String() + "/", closeFunc, nil
}

func StartMetricsServer(addr string) (string, func(), error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())

	listenAddr, closeFunc, err := serve("metrics API", addr, handlers.CompressHandler(router))
	if err != nil {
		return "", nil, err
	}
	return "http://" + listenAddr.String() + "/metrics", closeFunc, nil
}

func StartAdminServer(addr string, logLevel *slog.LevelVar, apiLogs *atomic.Bool, health *admin.Health) (string, func(), error) {
	listenAddr, closeFunc, err := serve("admin API", addr, admin.New(logLevel, apiLogs, health))
	if err != nil {
		return "", nil, err
	}
	return "http://" + listenAddr.String() + "/admin", closeFunc, nil
}
