// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/vechain/stakepool/api/admin"
	"github.com/vechain/stakepool/bank"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/store"
)

var (
	metricSnapshotCount    = metrics.LazyLoadCounterVec("snapshot_count", []string{"status"})
	metricSnapshotDuration = metrics.LazyLoadHistogramVec("snapshot_duration_ms", []string{"status"}, []int64{1, 5, 10, 50, 100, 500, 1000, 5000})
	metricSnapshotRevision = metrics.LazyLoadGauge("snapshot_revision")
)

// persister writes the ledger and the bank to the store, periodically and
// once more when stopped.
type persister struct {
	ledger   *ledger.Ledger
	bank     *bank.Memory
	store    *store.Store
	health   *admin.Health
	onSaved  func() // optional, called after every attempt
	saved    uint64
	hasSaved bool
}

// save skips the write when nothing was committed since the last one.
func (p *persister) save() error {
	start := time.Now()
	var (
		revision uint64
		written  bool
	)
	err := p.ledger.SnapshotFunc(func(snap *ledger.Snapshot) error {
		revision = snap.Revision
		if p.hasSaved && snap.Revision == p.saved {
			return nil
		}
		if err := p.store.Save(snap, p.bank.Dump()); err != nil {
			return err
		}
		written = true
		return nil
	})

	status := "ok"
	switch {
	case err != nil:
		status = "failed"
	case !written:
		status = "skipped"
	default:
		p.saved, p.hasSaved = revision, true
		metricSnapshotRevision().Set(int64(revision))
	}
	metricSnapshotCount().AddWithLabel(1, map[string]string{"status": status})
	metricSnapshotDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"status": status})

	if p.health != nil {
		p.health.Record(revision, err)
	}
	if p.onSaved != nil {
		p.onSaved()
	}
	if err != nil {
		return err
	}
	if written {
		log.Debug("snapshot saved", "revision", revision, "elapsed", common.PrettyDuration(time.Since(start)))
	}
	return nil
}

func (p *persister) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("saving final snapshot...")
			return p.save()
		case <-ticker.C:
			if err := p.save(); err != nil {
				log.Warn("failed to save snapshot", "err", err)
			}
		}
	}
}
