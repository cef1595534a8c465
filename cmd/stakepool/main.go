// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/api/admin"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/cmd/stakepool/httpserver"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/store"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stakepool",
		Usage:     "Pooled staking and reward ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			snapshotIntervalFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEnableOpsFlag,
			apiEventsLimitFlag,
			apiPendingCacheFlag,
			apiSubscriptionBacklogFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			ntpServerFlag,
			disableNTPFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "export-events",
				Usage: "export the event journal as json lines",
				Flags: []cli.Flag{
					dataDirFlag,
					outFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: exportEventsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}

	// meters bind to the backend on first use, so it is chosen before the ledger runs
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gen, err := loadGenesis(ctx.String(genesisFlag.Name))
	if err != nil {
		return err
	}
	tickClock, err := clock.NewInterval(gen.genesisTime, gen.tickInterval)
	if err != nil {
		return err
	}

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	snapshotDB, err := openSnapshotDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing snapshot database..."); snapshotDB.Close() }()

	eventLog, err := openEventLog(dataDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing event database..."); eventLog.Close() }()

	st := store.New(snapshotDB)
	l, b, err := openLedger(gen, st, eventLog, tickClock)
	if err != nil {
		return err
	}

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	apiLogs := new(atomic.Bool)
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler, pools, closeSubs, err := api.New(l, eventLog, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableOps:            ctx.Bool(apiEnableOpsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		PendingCacheSize:     ctx.Int(apiPendingCacheFlag.Name),
		SubscriptionBacklog:  ctx.Int(apiSubscriptionBacklogFlag.Name),
	})
	if err != nil {
		return err
	}
	if ctx.Bool(apiEnableOpsFlag.Name) {
		log.Warn("write endpoints enabled, callers are not authenticated")
	}
	apiURL, closeAPI, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); closeSubs(); closeAPI() }()

	interval := ctx.Duration(snapshotIntervalFlag.Name)
	if interval <= 0 {
		return fmt.Errorf("invalid %s %v", snapshotIntervalFlag.Name, interval)
	}
	health := admin.NewHealth(3 * interval)

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, health)
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	printStartupMessage(os.Stdout, dataDir, l.Head(), l.Globals(), apiURL, metricsURL, adminURL)

	p := &persister{
		ledger:  l,
		bank:    b,
		store:   st,
		health:  health,
		onSaved: pools.LogCacheStats,
	}
	// the first snapshot marks a freshly built ledger as saved
	if err := p.save(); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(exitSignal)
	group.Go(func() error {
		return p.run(groupCtx, interval)
	})
	if !ctx.Bool(disableNTPFlag.Name) {
		group.Go(func() error {
			checkClock(groupCtx, ctx.String(ntpServerFlag.Name), gen.tickInterval)
			return nil
		})
	}
	return group.Wait()
}

// checkClock compares the host clock with NTP now and then every hour.
func checkClock(ctx context.Context, server string, interval time.Duration) {
	server = strings.TrimSpace(server)
	if server == "" {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		if _, err := clock.CheckOffset(server, interval); err != nil {
			log.Debug("clock check failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
